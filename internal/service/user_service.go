package service

import (
	"context"
	"errors"
	"regexp"
	"strings"

	"rentease/internal/events"
	"rentease/internal/idgen"
	"rentease/internal/models"
	"rentease/internal/query"
	"rentease/internal/store"

	"github.com/rs/zerolog"
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// ValidEmail reports whether s looks like an email address.
func ValidEmail(s string) bool { return emailPattern.MatchString(s) }

// UserInput is the create form for dashboard users.
type UserInput struct {
	Name            string `json:"name"`
	Email           string `json:"email"`
	Role            string `json:"role"`
	Status          string `json:"status"`
	LifetimeRevenue int64  `json:"lifetime_revenue"`
}

type UserFilter struct {
	Role   string
	Status string
	Query  string
}

// UserDetail is the user view with transactions newest first.
type UserDetail struct {
	User         models.User          `json:"user"`
	Transactions []models.Transaction `json:"transactions"`
}

type UserService struct {
	store    *store.Store
	ids      idgen.Generator
	eventBus *events.EventBus
	clock    Clock
	logger   *zerolog.Logger
}

func NewUserService(st *store.Store, ids idgen.Generator, eventBus *events.EventBus, clock Clock, logger *zerolog.Logger) *UserService {
	return &UserService{
		store:    st,
		ids:      ids,
		eventBus: eventBus,
		clock:    clock,
		logger:   logger,
	}
}

func userFilter(f UserFilter) query.Predicate[models.User] {
	return query.All(
		query.Equals(f.Role, func(u models.User) string { return u.Role }),
		query.Equals(f.Status, func(u models.User) string { return u.Status }),
		query.Text(f.Query,
			func(u models.User) string { return u.Name },
			func(u models.User) string { return u.Email },
		),
	)
}

func (s *UserService) List(f UserFilter) []models.User {
	return s.store.Users.Filter(userFilter(f))
}

func (s *UserService) Get(id string) (models.User, bool) {
	return s.store.Users.Get(id)
}

func (s *UserService) FindByEmail(email string) (models.User, bool) {
	email = strings.ToLower(trimmed(email))
	return s.store.Users.Find(func(u models.User) bool { return u.Email == email })
}

func (s *UserService) Detail(id string) (UserDetail, bool) {
	u, ok := s.store.Users.Get(id)
	if !ok {
		return UserDetail{}, false
	}
	return UserDetail{User: u, Transactions: transactionsFor(s.store, id)}, true
}

func (s *UserService) Create(ctx context.Context, in UserInput) (models.User, error) {
	name := trimmed(in.Name)
	email := strings.ToLower(trimmed(in.Email))
	if name == "" || email == "" {
		return models.User{}, ErrMissingFields
	}
	if !ValidEmail(email) {
		return models.User{}, ErrInvalidEmail
	}

	role := in.Role
	if role == "" {
		role = models.RoleStaff
	}
	if !models.ValidRole(role) {
		return models.User{}, ErrInvalidRole
	}
	status := in.Status
	if status == "" {
		status = models.UserActive
	}
	if !models.ValidUserStatus(status) {
		return models.User{}, ErrInvalidStatus
	}

	u := models.User{
		ID:              s.ids.Next(),
		Name:            name,
		Email:           email,
		Role:            role,
		Status:          status,
		JoinedAt:        s.clock.today(),
		LifetimeRevenue: in.LifetimeRevenue,
	}
	if err := s.store.Users.InsertUnique(u, sameEmail(email)); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return models.User{}, ErrEmailTaken
		}
		return models.User{}, err
	}

	s.logger.Info().Str("user_id", u.ID).Str("role", u.Role).Msg("user created")
	return u, nil
}

// Update shallow-merges the non-nil patch fields.
func (s *UserService) Update(ctx context.Context, id string, patch models.UserPatch) (models.User, error) {
	if patch.Email != nil {
		email := strings.ToLower(trimmed(*patch.Email))
		if email == "" {
			return models.User{}, ErrMissingFields
		}
		if !ValidEmail(email) {
			return models.User{}, ErrInvalidEmail
		}
		patch.Email = &email
	}
	if patch.Name != nil && trimmed(*patch.Name) == "" {
		return models.User{}, ErrMissingFields
	}
	if patch.Role != nil && !models.ValidRole(*patch.Role) {
		return models.User{}, ErrInvalidRole
	}
	if patch.Status != nil && !models.ValidUserStatus(*patch.Status) {
		return models.User{}, ErrInvalidStatus
	}

	var conflict func(models.User) bool
	if patch.Email != nil {
		conflict = sameEmail(*patch.Email)
	}
	u, ok, err := s.store.Users.UpdateUnique(id, conflict, func(u *models.User) {
		if patch.Name != nil {
			u.Name = trimmed(*patch.Name)
		}
		if patch.Email != nil {
			u.Email = *patch.Email
		}
		if patch.Role != nil {
			u.Role = *patch.Role
		}
		if patch.Status != nil {
			u.Status = *patch.Status
		}
	})
	if !ok {
		return models.User{}, ErrNotFound
	}
	if errors.Is(err, store.ErrConflict) {
		return models.User{}, ErrEmailTaken
	}
	return u, err
}

func sameEmail(email string) func(models.User) bool {
	return func(u models.User) bool { return u.Email == email }
}

func (s *UserService) Delete(ctx context.Context, id string) bool {
	return s.store.Users.Delete(id)
}

// ToggleStatus flips active and inactive.
func (s *UserService) ToggleStatus(ctx context.Context, id string) (models.User, bool) {
	u, ok := s.store.Users.Update(id, func(u *models.User) {
		if u.Status == models.UserActive {
			u.Status = models.UserInactive
		} else {
			u.Status = models.UserActive
		}
	})
	if ok {
		s.publishStatus(u.ID, u.Status)
	}
	return u, ok
}

// BulkSetStatus sets status on every listed user that exists and returns how many changed.
// Unknown ids are skipped.
func (s *UserService) BulkSetStatus(ctx context.Context, ids []string, status string) (int, error) {
	if len(ids) == 0 {
		return 0, ErrNoSelection
	}
	if !models.ValidUserStatus(status) {
		return 0, ErrInvalidStatus
	}

	n := s.store.Users.UpdateEach(ids, func(u *models.User) { u.Status = status })
	s.logger.Info().Int("requested", len(ids)).Int("updated", n).Str("status", status).Msg("bulk status change")
	if n > 0 {
		s.publishStatus("", status)
	}
	return n, nil
}

func (s *UserService) publishStatus(id, status string) {
	err := s.eventBus.PublishJSON(events.EventStatusChanged, events.RecordEventPayload{
		Entity:  store.EntityUser,
		ID:      id,
		Status:  status,
		Version: s.store.Version(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("status event handler failed")
	}
}
