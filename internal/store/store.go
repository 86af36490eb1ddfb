// Package store owns the in-memory entity collections.
package store

import (
	"sync/atomic"

	"rentease/internal/events"
	"rentease/internal/logging"
	"rentease/internal/models"

	"github.com/rs/zerolog"
)

const (
	EntityUser        = "user"
	EntityBooking     = "booking"
	EntityRental      = "rental"
	EntityProperty    = "property"
	EntityTransaction = "transaction"
	EntityListing     = "listing"
	EntityLocation    = "location"
)

// Store is the single owner of every entity collection.
type Store struct {
	clock atomic.Uint64

	Users        *Collection[models.User]
	Bookings     *Collection[models.Booking]
	Rentals      *Collection[models.Rental]
	Properties   *Collection[models.Property]
	Transactions *Collection[models.Transaction]
	Listings     *Collection[models.Listing]
	Locations    *Collection[models.Location]
}

func New(bus *events.EventBus, logger *zerolog.Logger) *Store {
	log := logging.Component(logger, "store")
	s := &Store{}
	s.Users = NewCollection[models.User](EntityUser, &s.clock, bus, log)
	s.Bookings = NewCollection[models.Booking](EntityBooking, &s.clock, bus, log)
	s.Rentals = NewCollection[models.Rental](EntityRental, &s.clock, bus, log)
	s.Properties = NewCollection[models.Property](EntityProperty, &s.clock, bus, log)
	s.Transactions = NewCollection[models.Transaction](EntityTransaction, &s.clock, bus, log)
	s.Listings = NewCollection[models.Listing](EntityListing, &s.clock, bus, log)
	s.Locations = NewCollection[models.Location](EntityLocation, &s.clock, bus, log)
	return s
}

// Version increases with every mutation of any collection.
func (s *Store) Version() uint64 {
	return s.clock.Load()
}

// PropertyName resolves a property id to its name, or "" when unknown.
func (s *Store) PropertyName(id string) string {
	if p, ok := s.Properties.Get(id); ok {
		return p.Name
	}
	return ""
}

// BookingGuest resolves a booking id to its guest, or "" when unknown.
func (s *Store) BookingGuest(id string) string {
	if b, ok := s.Bookings.Get(id); ok {
		return b.Guest
	}
	return ""
}
