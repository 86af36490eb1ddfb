// Package auth handles storefront accounts, dashboard demo sign-in and sessions.
package auth

import (
	"context"
	"encoding/base64"
	"fmt"
	"net/http"
	"regexp"
	"strings"
	"sync"
	"time"

	"rentease/internal/config"
	"rentease/internal/domain"
	"rentease/internal/idgen"
	"rentease/internal/metrics"
	"rentease/internal/models"
	"rentease/internal/repository"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
)

const (
	loginAttemptLimit  = 5
	loginAttemptWindow = 5 * time.Minute

	demoGuestID = "guest"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// UserDirectory resolves dashboard users for demo sign-in.
type UserDirectory interface {
	FindByEmail(email string) (models.User, bool)
}

type RegisterInput struct {
	Name            string
	Email           string
	Address         string
	Password        string
	ConfirmPassword string
	IDFile          []byte
}

type LoginInput struct {
	Email    string
	Password string
	Remember bool
}

type Service struct {
	mu     sync.Mutex // serializes read-modify-write of the account list
	kv     domain.KeyValueStore
	users  UserDirectory
	ids    idgen.Generator
	cfg    config.AuthConfig
	now    func() time.Time
	logger *zerolog.Logger
}

func NewService(kv domain.KeyValueStore, users UserDirectory, ids idgen.Generator, cfg config.AuthConfig, logger *zerolog.Logger) *Service {
	if ids == nil {
		ids = idgen.NewUUID("u_")
	}
	return &Service{
		kv:     kv,
		users:  users,
		ids:    ids,
		cfg:    cfg,
		now:    time.Now,
		logger: logger,
	}
}

func (s *Service) sessionTTL() time.Duration {
	if s.cfg.SessionTTLMinutes <= 0 {
		return 12 * time.Hour
	}
	return time.Duration(s.cfg.SessionTTLMinutes) * time.Minute
}

func (s *Service) accounts(ctx context.Context) ([]models.Account, error) {
	var list []models.Account
	if _, err := repository.GetJSON(ctx, s.kv, models.KeyAccounts, &list); err != nil {
		return nil, fmt.Errorf("load accounts: %w", err)
	}
	return list, nil
}

// validateIDFile checks size then type. Only PNG and JPEG are accepted.
func (s *Service) validateIDFile(data []byte) (string, error) {
	if int64(len(data)) > s.MaxUploadBytes() {
		return "", ErrFileTooLarge
	}
	contentType := http.DetectContentType(data)
	switch contentType {
	case "image/png", "image/jpeg":
	default:
		return "", ErrUnsupportedFile
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// Register validates the form in order and stores the account only when every check passes.
// On success the new account is signed in.
func (s *Service) Register(ctx context.Context, in RegisterInput) (models.Account, models.Session, error) {
	name := strings.TrimSpace(in.Name)
	email := strings.TrimSpace(in.Email)
	address := strings.TrimSpace(in.Address)
	if name == "" || email == "" || address == "" || in.Password == "" || in.ConfirmPassword == "" || len(in.IDFile) == 0 {
		return models.Account{}, models.Session{}, ErrMissingFields
	}
	if !emailPattern.MatchString(email) {
		return models.Account{}, models.Session{}, ErrInvalidEmail
	}
	if minLen := s.cfg.MinPasswordLength; len(in.Password) < minLen {
		return models.Account{}, models.Session{}, fmt.Errorf("%w: at least %d characters", ErrPasswordTooShort, minLen)
	}
	if in.Password != in.ConfirmPassword {
		return models.Account{}, models.Session{}, ErrPasswordMismatch
	}
	idData, err := s.validateIDFile(in.IDFile)
	if err != nil {
		return models.Account{}, models.Session{}, err
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.accounts(ctx)
	if err != nil {
		return models.Account{}, models.Session{}, err
	}
	for _, a := range list {
		if strings.EqualFold(a.Email, email) {
			return models.Account{}, models.Session{}, ErrEmailTaken
		}
	}

	hash, err := HashPassword(in.Password, s.cfg.PasswordHashCost)
	if err != nil {
		return models.Account{}, models.Session{}, fmt.Errorf("hash password: %w", err)
	}
	account := models.Account{
		ID:           s.ids.Next(),
		Name:         name,
		Email:        email,
		Address:      address,
		PasswordHash: hash,
		IDFileData:   idData,
		CreatedAt:    s.now().UTC(),
	}
	if err := repository.SetJSON(ctx, s.kv, models.KeyAccounts, append(list, account), 0); err != nil {
		return models.Account{}, models.Session{}, fmt.Errorf("save accounts: %w", err)
	}

	s.logger.Info().Str("account_id", account.ID).Msg("account registered")

	session, err := s.startSession(ctx, models.Session{UserID: account.ID, Email: account.Email, Name: account.Name})
	if err != nil {
		return models.Account{}, models.Session{}, err
	}
	return account.Public(), session, nil
}

// Login signs in a registered account. Remember-me stores the email, unchecked clears it.
func (s *Service) Login(ctx context.Context, in LoginInput) (models.Session, error) {
	email := strings.TrimSpace(in.Email)
	if email == "" || in.Password == "" {
		return models.Session{}, ErrMissingFields
	}

	allowed, err := s.kv.CheckRateLimit(ctx, "login:"+strings.ToLower(email), loginAttemptLimit, loginAttemptWindow)
	if err != nil {
		return models.Session{}, fmt.Errorf("check login rate: %w", err)
	}
	if !allowed {
		s.logger.Warn().Str("email", email).Msg("login rate limited")
		return models.Session{}, ErrTooManyAttempts
	}

	list, err := s.accounts(ctx)
	if err != nil {
		return models.Session{}, err
	}
	var account *models.Account
	for i := range list {
		if strings.EqualFold(list[i].Email, email) {
			account = &list[i]
			break
		}
	}
	if account == nil || !VerifyPassword(in.Password, account.PasswordHash) {
		return models.Session{}, ErrInvalidCredentials
	}

	if err := s.remember(ctx, email, in.Remember); err != nil {
		return models.Session{}, err
	}
	return s.startSession(ctx, models.Session{UserID: account.ID, Email: account.Email, Name: account.Name})
}

// DemoSignIn opens a dashboard session for any non-empty email without a password.
// A known dashboard user keeps their role; anyone else becomes a guest manager.
func (s *Service) DemoSignIn(ctx context.Context, email string, remember bool) (models.Session, error) {
	if !s.cfg.DemoSignInEnabled {
		return models.Session{}, ErrDemoDisabled
	}
	email = strings.TrimSpace(email)
	if email == "" {
		return models.Session{}, ErrMissingFields
	}

	sess := models.Session{Demo: true}
	if u, ok := s.lookupUser(email); ok {
		sess.UserID, sess.Email, sess.Name, sess.Role = u.ID, u.Email, u.Name, u.Role
	} else {
		name, _, _ := strings.Cut(email, "@")
		sess.UserID, sess.Email, sess.Name, sess.Role = demoGuestID, email, name, models.RoleManager
	}

	if err := s.remember(ctx, email, remember); err != nil {
		return models.Session{}, err
	}
	return s.startSession(ctx, sess)
}

func (s *Service) lookupUser(email string) (models.User, bool) {
	if s.users == nil {
		return models.User{}, false
	}
	return s.users.FindByEmail(email)
}

func (s *Service) remember(ctx context.Context, email string, on bool) error {
	if on {
		return s.kv.Set(ctx, models.KeyRememberedEmail, email, 0)
	}
	return s.kv.Delete(ctx, models.KeyRememberedEmail)
}

// RememberedEmail returns the email saved by the last remember-me sign-in, or "".
func (s *Service) RememberedEmail(ctx context.Context) (string, error) {
	email, _, err := s.kv.Get(ctx, models.KeyRememberedEmail)
	return email, err
}

func (s *Service) startSession(ctx context.Context, sess models.Session) (models.Session, error) {
	now := s.now().UTC()
	ttl := s.sessionTTL()
	sess.Token = uuid.NewString()
	sess.CreatedAt = now
	sess.ExpiresAt = now.Add(ttl)

	if err := repository.SetJSON(ctx, s.kv, models.KeySessionPrefix+sess.Token, sess, ttl); err != nil {
		return models.Session{}, fmt.Errorf("store session: %w", err)
	}
	metrics.SessionStarted()
	s.logger.Info().Str("user_id", sess.UserID).Bool("demo", sess.Demo).Msg("session started")
	return sess, nil
}

// Session resolves a token to a live session.
func (s *Service) Session(ctx context.Context, token string) (models.Session, error) {
	if token == "" {
		return models.Session{}, ErrSessionNotFound
	}
	var sess models.Session
	ok, err := repository.GetJSON(ctx, s.kv, models.KeySessionPrefix+token, &sess)
	if err != nil {
		return models.Session{}, err
	}
	if !ok || sess.Expired(s.now()) {
		return models.Session{}, ErrSessionNotFound
	}
	return sess, nil
}

func (s *Service) Logout(ctx context.Context, token string) error {
	if token == "" {
		return nil
	}
	if err := s.kv.Delete(ctx, models.KeySessionPrefix+token); err != nil {
		return err
	}
	metrics.SessionEnded()
	return nil
}

// Account returns the public view of a registered account.
func (s *Service) Account(ctx context.Context, id string) (models.Account, bool, error) {
	list, err := s.accounts(ctx)
	if err != nil {
		return models.Account{}, false, err
	}
	for _, a := range list {
		if a.ID == id {
			return a.Public(), true, nil
		}
	}
	return models.Account{}, false, nil
}

// MaxUploadBytes is the ID upload limit, or 4 MiB when unset.
func (s *Service) MaxUploadBytes() int64 {
	if s.cfg.MaxIDUploadBytes > 0 {
		return s.cfg.MaxIDUploadBytes
	}
	return models.MaxIDUploadBytes
}
