package service

import (
	"context"

	"rentease/internal/domain"
	"rentease/internal/idgen"
	"rentease/internal/models"
	"rentease/internal/query"
	"rentease/internal/repository"
	"rentease/internal/store"

	"github.com/rs/zerolog"
)

const (
	defaultPropertyType     = "Hotel"
	defaultPropertyLocation = "Unknown"
)

type PropertyInput struct {
	Name     string `json:"name"`
	Type     string `json:"type"`
	Location string `json:"location"`
	Rooms    int    `json:"rooms"`
	Image    string `json:"image"`
}

// PropertyService manages dashboard properties and mirrors the list to the
// key-value store under models.KeyProperties after every change.
type PropertyService struct {
	store     *store.Store
	ids       idgen.Generator
	kv        domain.KeyValueStore
	snapshots domain.SnapshotQueue
	logger    *zerolog.Logger
}

func NewPropertyService(st *store.Store, ids idgen.Generator, kv domain.KeyValueStore, snapshots domain.SnapshotQueue, logger *zerolog.Logger) *PropertyService {
	return &PropertyService{
		store:     st,
		ids:       ids,
		kv:        kv,
		snapshots: snapshots,
		logger:    logger,
	}
}

// Restore replaces the seeded properties with the persisted list when one exists.
func (s *PropertyService) Restore(ctx context.Context) (bool, error) {
	var saved []models.Property
	ok, err := repository.GetJSON(ctx, s.kv, models.KeyProperties, &saved)
	if err != nil || !ok {
		return false, err
	}
	s.store.Properties.Replace(saved)
	for _, p := range saved {
		idgen.Observe(s.ids, p.ID)
	}
	s.logger.Info().Int("count", len(saved)).Msg("properties restored from key-value store")
	return true, nil
}

func propertyFilter(q string) query.Predicate[models.Property] {
	return query.Text(q,
		func(p models.Property) string { return p.Name },
		func(p models.Property) string { return p.Location },
		func(p models.Property) string { return p.Type },
	)
}

func (s *PropertyService) List(q string) []models.Property {
	return s.store.Properties.Filter(propertyFilter(q))
}

func (s *PropertyService) Get(id string) (models.Property, bool) {
	return s.store.Properties.Get(id)
}

func (s *PropertyService) Create(ctx context.Context, in PropertyInput) (models.Property, error) {
	name := trimmed(in.Name)
	if name == "" {
		return models.Property{}, ErrMissingFields
	}

	p := models.Property{
		ID:       s.ids.Next(),
		Name:     name,
		Type:     trimmed(in.Type),
		Location: trimmed(in.Location),
		Rooms:    in.Rooms,
		Image:    trimmed(in.Image),
	}
	if p.Type == "" {
		p.Type = defaultPropertyType
	}
	if p.Location == "" {
		p.Location = defaultPropertyLocation
	}
	if p.Rooms < 0 {
		p.Rooms = 0
	}

	if err := s.store.Properties.Insert(p); err != nil {
		return models.Property{}, err
	}
	s.persist(ctx)
	return p, nil
}

func (s *PropertyService) Update(ctx context.Context, id string, patch models.PropertyPatch) (models.Property, error) {
	if patch.Name != nil && trimmed(*patch.Name) == "" {
		return models.Property{}, ErrMissingFields
	}

	p, ok := s.store.Properties.Update(id, func(p *models.Property) {
		if patch.Name != nil {
			p.Name = trimmed(*patch.Name)
		}
		if patch.Type != nil {
			p.Type = trimmed(*patch.Type)
		}
		if patch.Location != nil {
			p.Location = trimmed(*patch.Location)
		}
		if patch.Rooms != nil && *patch.Rooms >= 0 {
			p.Rooms = *patch.Rooms
		}
		if patch.Image != nil {
			p.Image = trimmed(*patch.Image)
		}
	})
	if !ok {
		return models.Property{}, ErrNotFound
	}
	s.persist(ctx)
	return p, nil
}

func (s *PropertyService) Delete(ctx context.Context, id string) bool {
	if !s.store.Properties.Delete(id) {
		return false
	}
	s.persist(ctx)
	return true
}

func (s *PropertyService) persist(ctx context.Context) {
	all := s.store.Properties.All()
	if s.snapshots != nil {
		err := s.snapshots.Enqueue(ctx, models.KeyProperties, all)
		if err == nil {
			return
		}
		s.logger.Warn().Err(err).Msg("property snapshot not queued, writing directly")
	}
	if err := repository.SetJSON(ctx, s.kv, models.KeyProperties, all, 0); err != nil {
		s.logger.Error().Err(err).Msg("failed to persist properties")
	}
}
