package api

import (
	"net/http"

	"rentease/internal/models"
	"rentease/internal/service"
)

// users

func (s *HTTPServer) handleListUsers(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	users := s.svc.Users.List(service.UserFilter{Role: q.Get("role"), Status: q.Get("status"), Query: q.Get("q")})
	writeJSON(w, http.StatusOK, map[string]any{"users": users})
}

func (s *HTTPServer) handleCreateUser(w http.ResponseWriter, r *http.Request) {
	var in service.UserInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	u, err := s.svc.Users.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, u)
}

func (s *HTTPServer) handleGetUser(w http.ResponseWriter, r *http.Request) {
	d, ok := s.svc.Users.Detail(r.PathValue("id"))
	if !ok {
		s.fail(w, r, service.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, d)
}

func (s *HTTPServer) handleUpdateUser(w http.ResponseWriter, r *http.Request) {
	var patch models.UserPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	u, err := s.svc.Users.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *HTTPServer) handleDeleteUser(w http.ResponseWriter, r *http.Request) {
	if !s.svc.Users.Delete(r.Context(), r.PathValue("id")) {
		s.fail(w, r, service.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleToggleUser(w http.ResponseWriter, r *http.Request) {
	u, ok := s.svc.Users.ToggleStatus(r.Context(), r.PathValue("id"))
	if !ok {
		s.fail(w, r, service.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, u)
}

func (s *HTTPServer) handleBulkStatus(w http.ResponseWriter, r *http.Request) {
	var body struct {
		IDs    []string `json:"ids"`
		Status string   `json:"status"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	n, err := s.svc.Users.BulkSetStatus(r.Context(), body.IDs, body.Status)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]int{"updated": n})
}

// bookings

func (s *HTTPServer) handleListBookings(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	bookings := s.svc.Bookings.List(service.BookingFilter{Query: q.Get("q"), Status: q.Get("status"), PropertyID: q.Get("property_id")})
	writeJSON(w, http.StatusOK, map[string]any{"bookings": bookings})
}

func (s *HTTPServer) handleCreateBooking(w http.ResponseWriter, r *http.Request) {
	var in service.BookingInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	b, err := s.svc.Bookings.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, b)
}

func (s *HTTPServer) handleGetBooking(w http.ResponseWriter, r *http.Request) {
	b, ok := s.svc.Bookings.Get(r.PathValue("id"))
	if !ok {
		s.fail(w, r, service.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *HTTPServer) handleUpdateBooking(w http.ResponseWriter, r *http.Request) {
	var patch models.BookingPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	b, err := s.svc.Bookings.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *HTTPServer) handleDeleteBooking(w http.ResponseWriter, r *http.Request) {
	if !s.svc.Bookings.Delete(r.Context(), r.PathValue("id")) {
		s.fail(w, r, service.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleCheckIn(w http.ResponseWriter, r *http.Request) {
	b, ok := s.svc.Bookings.CheckIn(r.Context(), r.PathValue("id"))
	if !ok {
		s.fail(w, r, service.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *HTTPServer) handleCancel(w http.ResponseWriter, r *http.Request) {
	b, ok := s.svc.Bookings.Cancel(r.Context(), r.PathValue("id"))
	if !ok {
		s.fail(w, r, service.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, b)
}

func (s *HTTPServer) handleSettle(w http.ResponseWriter, r *http.Request) {
	rental, err := s.svc.Rentals.Settle(r.Context(), r.PathValue("id"))
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, rental)
}

// rentals

func (s *HTTPServer) handleListRentals(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	rentals := s.svc.Rentals.List(service.RentalFilter{Query: q.Get("q"), PropertyID: q.Get("property_id")})
	writeJSON(w, http.StatusOK, map[string]any{"rentals": rentals})
}

func (s *HTTPServer) handleGetRental(w http.ResponseWriter, r *http.Request) {
	rental, ok := s.svc.Rentals.Get(r.PathValue("id"))
	if !ok {
		s.fail(w, r, service.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, rental)
}

func (s *HTTPServer) handleDeleteRental(w http.ResponseWriter, r *http.Request) {
	if !s.svc.Rentals.Delete(r.Context(), r.PathValue("id")) {
		s.fail(w, r, service.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// properties

func (s *HTTPServer) handleListProperties(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"properties": s.svc.Properties.List(r.URL.Query().Get("q"))})
}

func (s *HTTPServer) handleCreateProperty(w http.ResponseWriter, r *http.Request) {
	var in service.PropertyInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, err := s.svc.Properties.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, p)
}

func (s *HTTPServer) handleGetProperty(w http.ResponseWriter, r *http.Request) {
	p, ok := s.svc.Properties.Get(r.PathValue("id"))
	if !ok {
		s.fail(w, r, service.ErrNotFound)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *HTTPServer) handleUpdateProperty(w http.ResponseWriter, r *http.Request) {
	var patch models.PropertyPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	p, err := s.svc.Properties.Update(r.Context(), r.PathValue("id"), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, p)
}

func (s *HTTPServer) handleDeleteProperty(w http.ResponseWriter, r *http.Request) {
	if !s.svc.Properties.Delete(r.Context(), r.PathValue("id")) {
		s.fail(w, r, service.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}

// transactions

func (s *HTTPServer) handleListTransactions(w http.ResponseWriter, r *http.Request) {
	txs := s.svc.Transactions.All()
	if userID := r.URL.Query().Get("user_id"); userID != "" {
		txs = s.svc.Transactions.ForUser(userID)
	}
	writeJSON(w, http.StatusOK, map[string]any{"transactions": txs})
}

func (s *HTTPServer) handleCreateTransaction(w http.ResponseWriter, r *http.Request) {
	var in service.TransactionInput
	if err := decodeJSON(r, &in); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	tx, err := s.svc.Transactions.Create(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusCreated, tx)
}

func (s *HTTPServer) handleDeleteTransaction(w http.ResponseWriter, r *http.Request) {
	if !s.svc.Transactions.Delete(r.Context(), r.PathValue("id")) {
		s.fail(w, r, service.ErrNotFound)
		return
	}
	w.WriteHeader(http.StatusNoContent)
}
