// Package catalog serves the public storefront: listing search, locations,
// newsletter subscriptions and the notification feed.
package catalog

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"sync"
	"time"

	"rentease/internal/domain"
	"rentease/internal/models"
	"rentease/internal/query"
	"rentease/internal/repository"
	"rentease/internal/store"

	"github.com/rs/zerolog"
)

var (
	ErrLocationRequired  = errors.New("please enter a location to search")
	ErrMoveInRequired    = errors.New("please choose a move-in date")
	ErrInvalidMoveIn     = errors.New("move-in date must be YYYY-MM-DD")
	ErrTenantsInvalid    = errors.New("please enter at least 1 tenant")
	ErrInvalidEmail      = errors.New("please enter a valid email address")
	ErrAlreadySubscribed = errors.New("you are already subscribed with this email")
	ErrTooManyUnits      = fmt.Errorf("at most %d units can be generated at once", models.MaxGeneratedUnits)
)

var emailPattern = regexp.MustCompile(`^[^\s@]+@[^\s@]+\.[^\s@]+$`)

// sampleCities is the rotation used for generated units.
var sampleCities = []string{
	"Dagupan, Pangasinan",
	"Laoag, Ilocos Norte",
	"San Fernando, La Union",
	"Vigan, Ilocos Sur",
}

const (
	generatedImage       = "https://images.unsplash.com/photo-1560184897-6f6c7f6b6f6f?auto=format&fit=crop&w=1000&q=60"
	generatedDescription = "Auto-generated listing to explore more units."
)

type SearchQuery struct {
	Location string `json:"location"`
	MoveIn   string `json:"move_in"`
	Tenants  int    `json:"tenants"`
}

type Service struct {
	mu     sync.Mutex // guards generation and the subscriber list
	store  *store.Store
	kv     domain.KeyValueStore
	feed   *Feed
	logger *zerolog.Logger
}

func NewService(st *store.Store, kv domain.KeyValueStore, feed *Feed, logger *zerolog.Logger) *Service {
	return &Service{
		store:  st,
		kv:     kv,
		feed:   feed,
		logger: logger,
	}
}

func (s *Service) Feed() *Feed { return s.feed }

func (s *Service) Listings() []models.Listing {
	return s.store.Listings.All()
}

func (s *Service) Listing(id string) (models.Listing, bool) {
	return s.store.Listings.Get(id)
}

func (s *Service) Locations() []models.Location {
	return s.store.Locations.All()
}

func locationMatch(q string) query.Predicate[models.Listing] {
	return query.Text(q, func(l models.Listing) string { return l.Location })
}

// Search returns listings whose location contains q.Location (case-insensitive)
// and whose capacity fits q.Tenants.
func (s *Service) Search(q SearchQuery) ([]models.Listing, error) {
	loc := strings.TrimSpace(q.Location)
	if loc == "" {
		return nil, ErrLocationRequired
	}
	moveIn := strings.TrimSpace(q.MoveIn)
	if moveIn == "" {
		return nil, ErrMoveInRequired
	}
	if _, err := time.Parse(models.DateLayout, moveIn); err != nil {
		return nil, ErrInvalidMoveIn
	}
	if q.Tenants < 1 {
		return nil, ErrTenantsInvalid
	}

	results := s.store.Listings.Filter(query.All(
		locationMatch(loc),
		func(l models.Listing) bool { return l.Capacity() >= q.Tenants },
	))
	s.logger.Debug().Str("location", loc).Int("tenants", q.Tenants).Int("results", len(results)).Msg("listing search")
	return results, nil
}

// Explore lists units in a location. A blank location returns everything.
func (s *Service) Explore(location string) []models.Listing {
	return s.store.Listings.Filter(locationMatch(location))
}

// GenerateMore appends count deterministic units numbered after the current listing count.
// A non-positive count generates models.DefaultGeneratedUnits; more than
// models.MaxGeneratedUnits is refused.
func (s *Service) GenerateMore(count int) ([]models.Listing, error) {
	if count <= 0 {
		count = models.DefaultGeneratedUnits
	}
	if count > models.MaxGeneratedUnits {
		return nil, ErrTooManyUnits
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	base := s.store.Listings.Len()
	added := make([]models.Listing, 0, count)
	for i := 1; i <= count; i++ {
		l := generateUnit(base + i)
		if err := s.store.Listings.Append(l); err != nil {
			s.logger.Warn().Err(err).Str("listing_id", l.ID).Msg("generated unit skipped")
			continue
		}
		added = append(added, l)
	}
	s.logger.Info().Int("count", len(added)).Msg("generated more units")
	return added, nil
}

func generateUnit(idx int) models.Listing {
	return models.Listing{
		ID:          fmt.Sprintf("gen%d", idx),
		Title:       fmt.Sprintf("Generated Unit %d", idx),
		Location:    sampleCities[idx%len(sampleCities)],
		Price:       8000 + int64(idx)*1200,
		Beds:        idx % 4,
		Baths:       1 + idx%2,
		Image:       generatedImage,
		Verified:    idx%3 == 0,
		Description: generatedDescription,
	}
}

// Subscribe adds email to the newsletter list. Duplicates are matched exactly.
func (s *Service) Subscribe(ctx context.Context, email string) error {
	email = strings.TrimSpace(email)
	if !emailPattern.MatchString(email) {
		return ErrInvalidEmail
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	list, err := s.subscribers(ctx)
	if err != nil {
		return err
	}
	for _, e := range list {
		if e == email {
			return ErrAlreadySubscribed
		}
	}
	if err := repository.SetJSON(ctx, s.kv, models.KeySubscribers, append(list, email), 0); err != nil {
		return fmt.Errorf("save subscribers: %w", err)
	}
	s.logger.Info().Msg("newsletter subscription added")
	return nil
}

func (s *Service) Subscribers(ctx context.Context) ([]string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.subscribers(ctx)
}

func (s *Service) subscribers(ctx context.Context) ([]string, error) {
	var list []string
	if _, err := repository.GetJSON(ctx, s.kv, models.KeySubscribers, &list); err != nil {
		return nil, fmt.Errorf("load subscribers: %w", err)
	}
	return list, nil
}
