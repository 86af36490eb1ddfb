package api

import (
	"net/http"
	"strconv"

	"rentease/internal/catalog"
)

// handleListings lists every unit, or explores one location with ?location=.
func (s *HTTPServer) handleListings(w http.ResponseWriter, r *http.Request) {
	location := r.URL.Query().Get("location")
	if location == "" {
		writeJSON(w, http.StatusOK, map[string]any{"listings": s.svc.Catalog.Listings()})
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"listings": s.svc.Catalog.Explore(location)})
}

func (s *HTTPServer) handleSearch(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	tenants := 1
	if raw := q.Get("tenants"); raw != "" {
		n, err := strconv.Atoi(raw)
		if err != nil {
			s.fail(w, r, catalog.ErrTenantsInvalid)
			return
		}
		tenants = n
	}

	results, err := s.svc.Catalog.Search(catalog.SearchQuery{
		Location: q.Get("location"),
		MoveIn:   q.Get("move_in"),
		Tenants:  tenants,
	})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]any{"listings": results})
}

func (s *HTTPServer) handleGenerate(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Count int `json:"count"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	added, err := s.svc.Catalog.GenerateMore(body.Count)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]any{"listings": added})
}

func (s *HTTPServer) handleListing(w http.ResponseWriter, r *http.Request) {
	l, ok := s.svc.Catalog.Listing(r.PathValue("id"))
	if !ok {
		writeError(w, http.StatusNotFound, "listing not found")
		return
	}
	writeJSON(w, http.StatusOK, l)
}

func (s *HTTPServer) handleLocations(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"locations": s.svc.Catalog.Locations()})
}

func (s *HTTPServer) handleSubscribe(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email string `json:"email"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	if err := s.svc.Catalog.Subscribe(r.Context(), body.Email); err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, map[string]string{"message": "Thanks! You have been subscribed to RentEase updates."})
}

func (s *HTTPServer) handleNotifications(w http.ResponseWriter, _ *http.Request) {
	feed := s.svc.Catalog.Feed()
	writeJSON(w, http.StatusOK, map[string]any{
		"notifications": feed.List(),
		"unread":        feed.Unread(),
	})
}

func (s *HTTPServer) handleNotificationRead(w http.ResponseWriter, r *http.Request) {
	id, err := strconv.ParseInt(r.PathValue("id"), 10, 64)
	if err != nil {
		writeError(w, http.StatusBadRequest, "invalid notification id")
		return
	}
	if !s.svc.Catalog.Feed().MarkRead(id) {
		writeError(w, http.StatusNotFound, "notification not found")
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleNotificationsReadAll(w http.ResponseWriter, _ *http.Request) {
	n := s.svc.Catalog.Feed().MarkAllRead()
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}
