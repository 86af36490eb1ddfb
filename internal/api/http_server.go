package api

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"time"

	"rentease/internal/auth"
	"rentease/internal/catalog"
	"rentease/internal/config"
	"rentease/internal/domain"
	"rentease/internal/service"

	"github.com/rs/zerolog"
)

// Services are the application components the HTTP layer dispatches to.
type Services struct {
	Auth         *auth.Service
	Users        *service.UserService
	Bookings     *service.BookingService
	Rentals      *service.RentalService
	Properties   *service.PropertyService
	Transactions *service.TransactionService
	Settings     *service.SettingsService
	Dashboard    *service.DashboardService
	Tables       *service.Tables
	Catalog      *catalog.Service
	KV           domain.KeyValueStore

	// ExportDir receives archived XLSX exports.
	ExportDir string
}

// HTTPServer exposes the JSON API and the dashboard table fragments.
type HTTPServer struct {
	cfg     config.HTTPConfig
	svc     Services
	limiter *rateLimiter
	views   *viewCache
	server  *http.Server
	handler http.Handler
	logger  *zerolog.Logger
}

func NewHTTPServer(cfg config.HTTPConfig, svc Services, logger *zerolog.Logger) *HTTPServer {
	s := &HTTPServer{
		cfg:     cfg,
		svc:     svc,
		limiter: newRateLimiter(cfg.RateLimit),
		views:   newViewCache(defaultViewCacheSize),
		logger:  logger,
	}

	mux := http.NewServeMux()
	s.routes(mux)
	s.handler = chain(mux, s.loggingMiddleware, s.rateLimitMiddleware)

	s.server = &http.Server{
		Addr:              fmt.Sprintf(":%d", cfg.Port),
		Handler:           s.handler,
		ReadHeaderTimeout: 5 * time.Second,
		WriteTimeout:      30 * time.Second,
	}
	return s
}

// Handler returns the full middleware-wrapped handler.
func (s *HTTPServer) Handler() http.Handler { return s.handler }

func (s *HTTPServer) routes(mux *http.ServeMux) {
	mux.HandleFunc("GET /healthz", s.handleHealth)
	mux.HandleFunc("GET /readyz", s.handleReady)

	// storefront
	mux.HandleFunc("POST /api/v1/auth/register", s.handleRegister)
	mux.HandleFunc("POST /api/v1/auth/login", s.handleLogin)
	mux.HandleFunc("POST /api/v1/auth/demo", s.handleDemoSignIn)
	mux.HandleFunc("POST /api/v1/auth/logout", s.handleLogout)
	mux.HandleFunc("GET /api/v1/auth/remembered", s.handleRemembered)
	mux.Handle("GET /api/v1/auth/session", s.requireSession(permSignedIn, s.handleSession))

	mux.HandleFunc("GET /api/v1/listings", s.handleListings)
	mux.HandleFunc("GET /api/v1/listings/search", s.handleSearch)
	mux.HandleFunc("POST /api/v1/listings/generate", s.handleGenerate)
	mux.HandleFunc("GET /api/v1/listings/{id}", s.handleListing)
	mux.HandleFunc("GET /api/v1/locations", s.handleLocations)
	mux.HandleFunc("POST /api/v1/subscribe", s.handleSubscribe)
	mux.HandleFunc("GET /api/v1/notifications", s.handleNotifications)
	mux.HandleFunc("POST /api/v1/notifications/read-all", s.handleNotificationsReadAll)
	mux.HandleFunc("POST /api/v1/notifications/{id}/read", s.handleNotificationRead)

	// dashboard
	mux.Handle("GET /api/v1/users", s.requireSession(permRead, s.handleListUsers))
	mux.Handle("POST /api/v1/users", s.requireSession(permManage, s.handleCreateUser))
	mux.Handle("POST /api/v1/users/bulk-status", s.requireSession(permManage, s.handleBulkStatus))
	mux.Handle("GET /api/v1/users/{id}", s.requireSession(permRead, s.handleGetUser))
	mux.Handle("PATCH /api/v1/users/{id}", s.requireSession(permManage, s.handleUpdateUser))
	mux.Handle("DELETE /api/v1/users/{id}", s.requireSession(permManage, s.handleDeleteUser))
	mux.Handle("POST /api/v1/users/{id}/toggle-status", s.requireSession(permManage, s.handleToggleUser))

	mux.Handle("GET /api/v1/bookings", s.requireSession(permRead, s.handleListBookings))
	mux.Handle("POST /api/v1/bookings", s.requireSession(permManageBookings, s.handleCreateBooking))
	mux.Handle("GET /api/v1/bookings/{id}", s.requireSession(permRead, s.handleGetBooking))
	mux.Handle("PATCH /api/v1/bookings/{id}", s.requireSession(permManageBookings, s.handleUpdateBooking))
	mux.Handle("DELETE /api/v1/bookings/{id}", s.requireSession(permManageBookings, s.handleDeleteBooking))
	mux.Handle("POST /api/v1/bookings/{id}/check-in", s.requireSession(permManageBookings, s.handleCheckIn))
	mux.Handle("POST /api/v1/bookings/{id}/cancel", s.requireSession(permManageBookings, s.handleCancel))
	mux.Handle("POST /api/v1/bookings/{id}/settle", s.requireSession(permManage, s.handleSettle))

	mux.Handle("GET /api/v1/rentals", s.requireSession(permRead, s.handleListRentals))
	mux.Handle("GET /api/v1/rentals/{id}", s.requireSession(permRead, s.handleGetRental))
	mux.Handle("DELETE /api/v1/rentals/{id}", s.requireSession(permManage, s.handleDeleteRental))

	mux.Handle("GET /api/v1/properties", s.requireSession(permRead, s.handleListProperties))
	mux.Handle("POST /api/v1/properties", s.requireSession(permManage, s.handleCreateProperty))
	mux.Handle("GET /api/v1/properties/{id}", s.requireSession(permRead, s.handleGetProperty))
	mux.Handle("PATCH /api/v1/properties/{id}", s.requireSession(permManage, s.handleUpdateProperty))
	mux.Handle("DELETE /api/v1/properties/{id}", s.requireSession(permManage, s.handleDeleteProperty))

	mux.Handle("GET /api/v1/transactions", s.requireSession(permRead, s.handleListTransactions))
	mux.Handle("POST /api/v1/transactions", s.requireSession(permManage, s.handleCreateTransaction))
	mux.Handle("DELETE /api/v1/transactions/{id}", s.requireSession(permManage, s.handleDeleteTransaction))

	mux.Handle("GET /api/v1/dashboard/kpis", s.requireSession(permRead, s.handleKPIs))
	mux.Handle("GET /api/v1/dashboard/upcoming", s.requireSession(permRead, s.handleUpcoming))
	mux.Handle("GET /api/v1/dashboard/alerts", s.requireSession(permRead, s.handleAlerts))

	mux.Handle("GET /api/v1/settings", s.requireSession(permRead, s.handleGetSettings))
	mux.Handle("PATCH /api/v1/settings", s.requireSession(permManage, s.handleUpdateSettings))

	mux.Handle("GET /api/v1/tables/{table}", s.requireSession(permRead, s.handleTableJSON))
	mux.Handle("GET /api/v1/tables/{table}/changes", s.requireSession(permRead, s.handleTableChanges))
	mux.Handle("GET /dashboard/tables/{table}", s.requireSession(permRead, s.handleTableHTML))

	mux.Handle("GET /api/v1/exports/{name}", s.requireSession(permRead, s.handleExport))
	mux.Handle("POST /api/v1/exports/{name}/archive", s.requireSession(permManage, s.handleArchiveExport))
}

func (s *HTTPServer) Start() error {
	if s.server == nil {
		return errors.New("http server is not initialized")
	}
	s.logger.Info().Str("addr", s.server.Addr).Msg("HTTP API listening")
	if err := s.server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func (s *HTTPServer) Shutdown(ctx context.Context) error {
	if s.server == nil {
		return nil
	}
	return s.server.Shutdown(ctx)
}

func (s *HTTPServer) handleHealth(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{"status": "ok"})
}

func (s *HTTPServer) handleReady(w http.ResponseWriter, r *http.Request) {
	if s.svc.KV != nil {
		ctx, cancel := context.WithTimeout(r.Context(), 2*time.Second)
		defer cancel()
		if err := s.svc.KV.Ping(ctx); err != nil {
			writeJSON(w, http.StatusServiceUnavailable, map[string]string{"status": "unavailable", "error": err.Error()})
			return
		}
	}
	writeJSON(w, http.StatusOK, map[string]string{"status": "ready"})
}
