package service

import (
	"context"
	"errors"
	"math"

	"rentease/internal/config"
	"rentease/internal/idgen"
	"rentease/internal/models"
	"rentease/internal/query"
	"rentease/internal/store"

	"github.com/rs/zerolog"
)

type RentalFilter struct {
	Query      string
	PropertyID string
}

type RentalService struct {
	store   *store.Store
	ids     idgen.Generator
	feeRate float64
	logger  *zerolog.Logger
}

func NewRentalService(st *store.Store, ids idgen.Generator, cfg config.BookingConfig, logger *zerolog.Logger) *RentalService {
	return &RentalService{
		store:   st,
		ids:     ids,
		feeRate: cfg.RentalFeeRate,
		logger:  logger,
	}
}

func rentalFilter(st *store.Store, f RentalFilter) query.Predicate[models.Rental] {
	return query.All(
		query.Equals(f.PropertyID, func(r models.Rental) string { return r.PropertyID }),
		query.Text(f.Query,
			func(r models.Rental) string { return r.ID },
			func(r models.Rental) string { return st.BookingGuest(r.BookingID) },
			func(r models.Rental) string { return st.PropertyName(r.PropertyID) },
		),
	)
}

func (s *RentalService) List(f RentalFilter) []models.Rental {
	return s.store.Rentals.Filter(rentalFilter(s.store, f))
}

func (s *RentalService) Get(id string) (models.Rental, bool) {
	return s.store.Rentals.Get(id)
}

// Fees returns the platform fee for a gross amount, rounded to whole units.
func (s *RentalService) Fees(gross int64) int64 {
	return int64(math.Round(float64(gross) * s.feeRate))
}

// Settle turns a booking into a rental over the booking period.
func (s *RentalService) Settle(ctx context.Context, bookingID string) (models.Rental, error) {
	b, ok := s.store.Bookings.Get(bookingID)
	if !ok {
		return models.Rental{}, ErrNotFound
	}
	if b.Status == models.StatusCancelled {
		return models.Rental{}, ErrNotSettleable
	}

	fees := s.Fees(b.Amount)
	r := models.Rental{
		ID:          s.ids.Next(),
		BookingID:   b.ID,
		PropertyID:  b.PropertyID,
		PeriodStart: b.CheckIn,
		PeriodEnd:   b.CheckOut,
		Nights:      b.Nights,
		Gross:       b.Amount,
		Fees:        fees,
		Net:         b.Amount - fees,
	}
	settled := func(x models.Rental) bool { return x.BookingID == bookingID }
	if err := s.store.Rentals.InsertUnique(r, settled); err != nil {
		if errors.Is(err, store.ErrConflict) {
			return models.Rental{}, ErrAlreadySettled
		}
		return models.Rental{}, err
	}

	s.logger.Info().Str("rental_id", r.ID).Str("booking_id", b.ID).Int64("gross", r.Gross).Msg("booking settled")
	return r, nil
}

func (s *RentalService) Delete(ctx context.Context, id string) bool {
	return s.store.Rentals.Delete(id)
}
