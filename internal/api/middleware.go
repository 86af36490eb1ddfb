package api

import (
	"context"
	"net/http"
	"strings"
	"time"

	"rentease/internal/metrics"
	"rentease/internal/models"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	headerRequestID = "X-Request-ID"
	sessionCookie   = "rentease_session"
)

type ctxKey int

const (
	ctxKeyLogger ctxKey = iota
	ctxKeySession
)

// middleware wraps a handler.
type middleware func(http.Handler) http.Handler

// chain applies mws so that the first one runs outermost.
func chain(h http.Handler, mws ...middleware) http.Handler {
	for i := len(mws) - 1; i >= 0; i-- {
		h = mws[i](h)
	}
	return h
}

func requestLogger(ctx context.Context, fallback *zerolog.Logger) *zerolog.Logger {
	if l, ok := ctx.Value(ctxKeyLogger).(*zerolog.Logger); ok {
		return l
	}
	return fallback
}

func sessionFrom(ctx context.Context) (models.Session, bool) {
	sess, ok := ctx.Value(ctxKeySession).(models.Session)
	return sess, ok
}

type statusRecorder struct {
	http.ResponseWriter
	status int
}

func (r *statusRecorder) WriteHeader(status int) {
	r.status = status
	r.ResponseWriter.WriteHeader(status)
}

// loggingMiddleware tags each request with an id, logs it and counts it by route pattern.
func (s *HTTPServer) loggingMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()

		reqID := strings.TrimSpace(r.Header.Get(headerRequestID))
		if reqID == "" {
			reqID = uuid.NewString()
		}
		w.Header().Set(headerRequestID, reqID)

		logger := s.logger.With().Str("request_id", reqID).Logger()
		r = r.WithContext(context.WithValue(r.Context(), ctxKeyLogger, &logger))

		recorder := &statusRecorder{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(recorder, r)

		endpoint := r.Pattern
		if endpoint == "" {
			endpoint = "unmatched"
		}
		metrics.IncHTTP(endpoint)

		logger.Info().
			Str("method", r.Method).
			Str("path", r.URL.Path).
			Int("status", recorder.status).
			Dur("duration", time.Since(start)).
			Msg("http request")
	})
}

func (s *HTTPServer) rateLimitMiddleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if !s.limiter.allow(clientKey(r)) {
			writeError(w, http.StatusTooManyRequests, "rate limit exceeded")
			return
		}
		next.ServeHTTP(w, r)
	})
}

func sessionToken(r *http.Request) string {
	if h := r.Header.Get("Authorization"); h != "" {
		if token, ok := strings.CutPrefix(h, "Bearer "); ok {
			return strings.TrimSpace(token)
		}
	}
	if c, err := r.Cookie(sessionCookie); err == nil {
		return c.Value
	}
	return ""
}

// permission is the minimum a role needs for a route.
type permission int

const (
	permSignedIn       permission = iota // any session, storefront accounts included
	permRead                             // any dashboard role
	permManageBookings                   // manager or staff
	permManage                           // manager only
)

func allowed(role string, p permission) bool {
	switch p {
	case permSignedIn:
		return true
	case permRead:
		return models.ValidRole(role)
	case permManageBookings:
		return role == models.RoleManager || role == models.RoleStaff
	case permManage:
		return role == models.RoleManager
	default:
		return false
	}
}

// requireSession resolves the session token and enforces p before calling next.
func (s *HTTPServer) requireSession(p permission, next http.HandlerFunc) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		sess, err := s.svc.Auth.Session(r.Context(), sessionToken(r))
		if err != nil {
			s.fail(w, r, err)
			return
		}
		if !allowed(sess.Role, p) {
			writeError(w, http.StatusForbidden, "permission denied")
			return
		}
		next.ServeHTTP(w, r.WithContext(context.WithValue(r.Context(), ctxKeySession, sess)))
	})
}
