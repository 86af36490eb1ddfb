package api

import (
	"bytes"
	"errors"
	"fmt"
	"net/http"
	"path/filepath"
	"strings"
	"time"

	"rentease/internal/export"
	"rentease/internal/metrics"
	"rentease/internal/models"
	"rentease/internal/service"
	"rentease/internal/table"
)

func (s *HTTPServer) handleKPIs(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Dashboard.KPIs())
}

func (s *HTTPServer) handleUpcoming(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]any{"bookings": s.svc.Dashboard.Upcoming()})
}

func (s *HTTPServer) handleAlerts(w http.ResponseWriter, _ *http.Request) {
	alerts := s.svc.Dashboard.Alerts()
	if alerts == nil {
		alerts = []models.Alert{}
	}
	writeJSON(w, http.StatusOK, map[string]any{"alerts": alerts})
}

func (s *HTTPServer) handleGetSettings(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, s.svc.Settings.Get())
}

func (s *HTTPServer) handleUpdateSettings(w http.ResponseWriter, r *http.Request) {
	var patch models.SettingsPatch
	if err := decodeJSON(r, &patch); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}
	updated, err := s.svc.Settings.Update(r.Context(), patch)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, updated)
}

func viewParams(r *http.Request) service.ViewParams {
	q := r.URL.Query()
	return service.ViewParams{
		Query:      q.Get("q"),
		Status:     q.Get("status"),
		Role:       q.Get("role"),
		PropertyID: q.Get("property_id"),
		UserID:     q.Get("user_id"),
	}
}

// renderView builds the requested view and remembers it for later diffs.
func (s *HTTPServer) renderView(w http.ResponseWriter, r *http.Request) (table.View, string, bool) {
	v, err := s.svc.Tables.View(r.PathValue("table"), viewParams(r))
	if err != nil {
		if errors.Is(err, service.ErrUnknownTable) {
			writeError(w, http.StatusNotFound, err.Error())
		} else {
			s.fail(w, r, err)
		}
		return table.View{}, "", false
	}
	etag := v.ETag()
	s.views.put(etag, v)
	return v, etag, true
}

func notModified(r *http.Request, etag string) bool {
	for _, candidate := range strings.Split(r.Header.Get("If-None-Match"), ",") {
		if strings.TrimSpace(candidate) == etag {
			return true
		}
	}
	return false
}

func (s *HTTPServer) handleTableJSON(w http.ResponseWriter, r *http.Request) {
	v, etag, ok := s.renderView(w, r)
	if !ok {
		return
	}
	w.Header().Set("ETag", etag)
	if notModified(r, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}
	writeJSON(w, http.StatusOK, v)
}

func (s *HTTPServer) handleTableHTML(w http.ResponseWriter, r *http.Request) {
	v, etag, ok := s.renderView(w, r)
	if !ok {
		return
	}
	w.Header().Set("ETag", etag)
	if notModified(r, etag) {
		w.WriteHeader(http.StatusNotModified)
		return
	}

	var buf bytes.Buffer
	if err := v.WriteHTML(&buf); err != nil {
		s.fail(w, r, err)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleTableChanges returns row changes since the view identified by ?since=<etag>.
// An unknown or missing etag returns the full view with reset=true.
func (s *HTTPServer) handleTableChanges(w http.ResponseWriter, r *http.Request) {
	v, etag, ok := s.renderView(w, r)
	if !ok {
		return
	}
	w.Header().Set("ETag", etag)

	since := r.URL.Query().Get("since")
	old, known := s.views.get(since)
	if !known || old.Name != v.Name {
		writeJSON(w, http.StatusOK, map[string]any{"etag": etag, "reset": true, "view": v})
		return
	}
	changes := table.Diff(old, v)
	if changes == nil {
		changes = []table.Change{}
	}
	writeJSON(w, http.StatusOK, map[string]any{
		"etag":    etag,
		"version": v.Version,
		"reset":   false,
		"changes": changes,
	})
}

// handleExport streams a dataset as CSV (default) or XLSX (?format=xlsx).
func (s *HTTPServer) handleExport(w http.ResponseWriter, r *http.Request) {
	name := r.PathValue("name")
	format := strings.ToLower(r.URL.Query().Get("format"))
	if format == "" {
		format = export.FormatCSV
	}

	data, err := s.svc.Tables.Export(name, viewParams(r))
	if err != nil {
		if errors.Is(err, service.ErrUnknownExport) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.fail(w, r, err)
		return
	}

	var buf bytes.Buffer
	switch format {
	case export.FormatCSV:
		if err := export.WriteCSV(&buf, data.Headers, data.Rows); err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "text/csv; charset=utf-8")
	case export.FormatXLSX:
		if err := export.WriteXLSX(&buf, data.Name, data.Headers, data.Rows); err != nil {
			s.fail(w, r, err)
			return
		}
		w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	default:
		writeError(w, http.StatusBadRequest, fmt.Sprintf("unsupported format %q", format))
		return
	}

	metrics.IncExport(format)
	w.Header().Set("Content-Disposition", fmt.Sprintf(`attachment; filename="%s.%s"`, data.Name, format))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(buf.Bytes())
}

// handleArchiveExport saves the dataset as an XLSX file under the export directory.
func (s *HTTPServer) handleArchiveExport(w http.ResponseWriter, r *http.Request) {
	data, err := s.svc.Tables.Export(r.PathValue("name"), viewParams(r))
	if err != nil {
		if errors.Is(err, service.ErrUnknownExport) {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		s.fail(w, r, err)
		return
	}

	path, err := export.SaveXLSX(s.svc.ExportDir, data.Name, data.Headers, data.Rows, time.Now())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	metrics.IncExport(export.FormatXLSX)
	requestLogger(r.Context(), s.logger).Info().Str("export", data.Name).Str("file", path).Msg("export archived")
	writeJSON(w, http.StatusCreated, map[string]any{"file": filepath.Base(path), "rows": len(data.Rows)})
}
