package service

import (
	"context"
	"math"
	"time"

	"rentease/internal/config"
	"rentease/internal/events"
	"rentease/internal/idgen"
	"rentease/internal/models"
	"rentease/internal/query"
	"rentease/internal/store"

	"github.com/rs/zerolog"
)

type BookingInput struct {
	Guest      string `json:"guest"`
	PropertyID string `json:"property_id"`
	CheckIn    string `json:"check_in"`
	CheckOut   string `json:"check_out"`
}

type BookingFilter struct {
	Query      string
	Status     string
	PropertyID string
}

type BookingService struct {
	store       *store.Store
	ids         idgen.Generator
	eventBus    *events.EventBus
	nightlyRate int64
	clock       Clock
	logger      *zerolog.Logger
}

func NewBookingService(st *store.Store, ids idgen.Generator, eventBus *events.EventBus, cfg config.BookingConfig, clock Clock, logger *zerolog.Logger) *BookingService {
	rate := cfg.NightlyRate
	if rate <= 0 {
		rate = 100
	}
	return &BookingService{
		store:       st,
		ids:         ids,
		eventBus:    eventBus,
		nightlyRate: rate,
		clock:       clock,
		logger:      logger,
	}
}

// Nights is max(1, round(days between checkIn and checkOut)). Unparsable dates count as one night.
func Nights(checkIn, checkOut string) int {
	in, err := time.Parse(models.DateLayout, checkIn)
	if err != nil {
		return 1
	}
	out, err := time.Parse(models.DateLayout, checkOut)
	if err != nil {
		return 1
	}
	n := int(math.Round(out.Sub(in).Hours() / 24))
	if n < 1 {
		return 1
	}
	return n
}

func (s *BookingService) NightlyRate() int64 { return s.nightlyRate }

func bookingFilter(st *store.Store, f BookingFilter) query.Predicate[models.Booking] {
	return query.All(
		query.Equals(f.Status, func(b models.Booking) string { return b.Status }),
		query.Equals(f.PropertyID, func(b models.Booking) string { return b.PropertyID }),
		query.Text(f.Query,
			func(b models.Booking) string { return b.ID },
			func(b models.Booking) string { return b.Guest },
			func(b models.Booking) string { return st.PropertyName(b.PropertyID) },
		),
	)
}

func (s *BookingService) List(f BookingFilter) []models.Booking {
	return s.store.Bookings.Filter(bookingFilter(s.store, f))
}

func (s *BookingService) Get(id string) (models.Booking, bool) {
	return s.store.Bookings.Get(id)
}

func (s *BookingService) Create(ctx context.Context, in BookingInput) (models.Booking, error) {
	in.Guest = trimmed(in.Guest)
	in.PropertyID = trimmed(in.PropertyID)
	in.CheckIn = trimmed(in.CheckIn)
	in.CheckOut = trimmed(in.CheckOut)
	if in.Guest == "" || in.PropertyID == "" || in.CheckIn == "" || in.CheckOut == "" {
		return models.Booking{}, ErrMissingFields
	}

	nights := Nights(in.CheckIn, in.CheckOut)
	b := models.Booking{
		ID:            s.ids.Next(),
		Guest:         in.Guest,
		PropertyID:    in.PropertyID,
		CheckIn:       in.CheckIn,
		CheckOut:      in.CheckOut,
		Nights:        nights,
		Amount:        int64(nights) * s.nightlyRate,
		Status:        models.StatusConfirmed,
		PaymentStatus: models.PaymentPending,
		CreatedAt:     s.clock.today(),
	}
	if err := s.store.Bookings.Insert(b); err != nil {
		return models.Booking{}, err
	}

	s.logger.Info().Str("booking_id", b.ID).Str("property_id", b.PropertyID).Int("nights", nights).Msg("booking created")
	return b, nil
}

// Update merges the patch. Changing either date recomputes nights and amount.
func (s *BookingService) Update(ctx context.Context, id string, patch models.BookingPatch) (models.Booking, error) {
	if patch.Status != nil && !models.ValidBookingStatus(*patch.Status) {
		return models.Booking{}, ErrInvalidStatus
	}
	if patch.PaymentStatus != nil && !models.ValidPaymentStatus(*patch.PaymentStatus) {
		return models.Booking{}, ErrInvalidStatus
	}
	for _, f := range []*string{patch.Guest, patch.PropertyID, patch.CheckIn, patch.CheckOut} {
		if f != nil && trimmed(*f) == "" {
			return models.Booking{}, ErrMissingFields
		}
	}

	b, ok := s.store.Bookings.Update(id, func(b *models.Booking) {
		if patch.Guest != nil {
			b.Guest = trimmed(*patch.Guest)
		}
		if patch.PropertyID != nil {
			b.PropertyID = trimmed(*patch.PropertyID)
		}
		if patch.CheckIn != nil || patch.CheckOut != nil {
			if patch.CheckIn != nil {
				b.CheckIn = trimmed(*patch.CheckIn)
			}
			if patch.CheckOut != nil {
				b.CheckOut = trimmed(*patch.CheckOut)
			}
			b.Nights = Nights(b.CheckIn, b.CheckOut)
			b.Amount = int64(b.Nights) * s.nightlyRate
		}
		if patch.Status != nil {
			b.Status = *patch.Status
		}
		if patch.PaymentStatus != nil {
			b.PaymentStatus = *patch.PaymentStatus
		}
	})
	if !ok {
		return models.Booking{}, ErrNotFound
	}
	return b, nil
}

func (s *BookingService) Delete(ctx context.Context, id string) bool {
	return s.store.Bookings.Delete(id)
}

func (s *BookingService) CheckIn(ctx context.Context, id string) (models.Booking, bool) {
	return s.setStatus(id, models.StatusCheckedIn)
}

func (s *BookingService) Cancel(ctx context.Context, id string) (models.Booking, bool) {
	return s.setStatus(id, models.StatusCancelled)
}

func (s *BookingService) setStatus(id, status string) (models.Booking, bool) {
	b, ok := s.store.Bookings.Update(id, func(b *models.Booking) { b.Status = status })
	if !ok {
		return b, false
	}

	s.logger.Info().Str("booking_id", id).Str("status", status).Msg("booking status changed")
	err := s.eventBus.PublishJSON(events.EventStatusChanged, events.RecordEventPayload{
		Entity:  store.EntityBooking,
		ID:      id,
		Status:  status,
		Version: s.store.Version(),
	})
	if err != nil {
		s.logger.Warn().Err(err).Msg("status event handler failed")
	}
	return b, true
}
