package api

import (
	"errors"
	"io"
	"net/http"
	"time"

	"rentease/internal/auth"
	"rentease/internal/models"
)

const multipartOverhead = 1 << 20

func (s *HTTPServer) setSessionCookie(w http.ResponseWriter, sess models.Session) {
	http.SetCookie(w, &http.Cookie{
		Name:     sessionCookie,
		Value:    sess.Token,
		Path:     "/",
		Expires:  sess.ExpiresAt,
		HttpOnly: true,
		SameSite: http.SameSiteLaxMode,
	})
}

// handleRegister accepts a multipart form with an id_file upload.
func (s *HTTPServer) handleRegister(w http.ResponseWriter, r *http.Request) {
	limit := s.svc.Auth.MaxUploadBytes()
	r.Body = http.MaxBytesReader(w, r.Body, limit+multipartOverhead)
	if err := r.ParseMultipartForm(limit + multipartOverhead); err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.fail(w, r, auth.ErrFileTooLarge)
			return
		}
		writeError(w, http.StatusBadRequest, "invalid multipart form")
		return
	}

	in := auth.RegisterInput{
		Name:            r.FormValue("name"),
		Email:           r.FormValue("email"),
		Address:         r.FormValue("address"),
		Password:        r.FormValue("password"),
		ConfirmPassword: r.FormValue("confirm_password"),
	}
	if file, _, err := r.FormFile("id_file"); err == nil {
		data, err := io.ReadAll(io.LimitReader(file, limit+1))
		_ = file.Close()
		if err != nil {
			writeError(w, http.StatusBadRequest, "could not read id_file")
			return
		}
		in.IDFile = data
	}

	account, sess, err := s.svc.Auth.Register(r.Context(), in)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setSessionCookie(w, sess)
	writeJSON(w, http.StatusCreated, map[string]any{"account": account, "session": sess})
}

func (s *HTTPServer) handleLogin(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Password string `json:"password"`
		Remember bool   `json:"remember"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess, err := s.svc.Auth.Login(r.Context(), auth.LoginInput{Email: body.Email, Password: body.Password, Remember: body.Remember})
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setSessionCookie(w, sess)
	writeJSON(w, http.StatusOK, sess)
}

func (s *HTTPServer) handleDemoSignIn(w http.ResponseWriter, r *http.Request) {
	var body struct {
		Email    string `json:"email"`
		Remember bool   `json:"remember"`
	}
	if err := decodeJSON(r, &body); err != nil {
		writeError(w, http.StatusBadRequest, "invalid JSON body")
		return
	}

	sess, err := s.svc.Auth.DemoSignIn(r.Context(), body.Email, body.Remember)
	if err != nil {
		s.fail(w, r, err)
		return
	}
	s.setSessionCookie(w, sess)
	writeJSON(w, http.StatusOK, sess)
}

func (s *HTTPServer) handleLogout(w http.ResponseWriter, r *http.Request) {
	if err := s.svc.Auth.Logout(r.Context(), sessionToken(r)); err != nil {
		s.fail(w, r, err)
		return
	}
	http.SetCookie(w, &http.Cookie{Name: sessionCookie, Value: "", Path: "/", Expires: time.Unix(0, 0), MaxAge: -1})
	w.WriteHeader(http.StatusNoContent)
}

func (s *HTTPServer) handleSession(w http.ResponseWriter, r *http.Request) {
	sess, _ := sessionFrom(r.Context())
	writeJSON(w, http.StatusOK, sess)
}

func (s *HTTPServer) handleRemembered(w http.ResponseWriter, r *http.Request) {
	email, err := s.svc.Auth.RememberedEmail(r.Context())
	if err != nil {
		s.fail(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, map[string]string{"email": email})
}
