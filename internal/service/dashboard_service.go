package service

import (
	"fmt"
	"math"
	"time"

	"rentease/internal/models"
	"rentease/internal/store"
)

const day = 24 * time.Hour

// DashboardService computes the manager overview figures.
type DashboardService struct {
	store    *store.Store
	settings *SettingsService
	clock    Clock
}

func NewDashboardService(st *store.Store, settings *SettingsService, clock Clock) *DashboardService {
	return &DashboardService{store: st, settings: settings, clock: clock}
}

func (s *DashboardService) KPIs() models.KPIs {
	props := s.store.Properties.Len()
	active := len(s.store.Bookings.Filter(models.Booking.Active))

	var revenue int64
	for _, r := range s.store.Rentals.All() {
		revenue += r.Gross
	}

	denom := props
	if denom < 1 {
		denom = 1
	}
	return models.KPIs{
		TotalProperties: props,
		ActiveBookings:  active,
		OccupancyRate:   int(math.Round(float64(active) / float64(denom) * 100)),
		Revenue:         revenue,
		RevenueDisplay:  s.settings.Format(revenue),
	}
}

// Upcoming lists bookings checking in within the next 30 days, first 5 in store order.
func (s *DashboardService) Upcoming() []models.Booking {
	now := s.clock.now()
	limit := now.Add(models.UpcomingWindowDays * day)

	out := make([]models.Booking, 0, models.UpcomingLimit)
	for _, b := range s.store.Bookings.All() {
		in, ok := b.CheckInTime()
		if !ok || in.Before(now) || !in.Before(limit) {
			continue
		}
		out = append(out, b)
		if len(out) == models.UpcomingLimit {
			break
		}
	}
	return out
}

// Alerts flags confirmed check-ins 0 to 7 calendar days out and every cancelled booking.
func (s *DashboardService) Alerts() []models.Alert {
	today, _ := time.Parse(models.DateLayout, s.clock.today())
	var alerts []models.Alert
	for _, b := range s.store.Bookings.All() {
		if in, ok := b.CheckInTime(); ok && b.Status == models.StatusConfirmed {
			days := int(in.Sub(today) / day)
			if days >= 0 && days <= models.AlertWindowDays {
				alerts = append(alerts, models.Alert{
					BookingID: b.ID,
					Kind:      models.AlertUpcoming,
					Title:     "Upcoming check-in: " + b.Guest,
					Body:      fmt.Sprintf("%s • %s", b.ID, b.CheckIn),
				})
			}
		}
		if b.Status == models.StatusCancelled {
			alerts = append(alerts, models.Alert{
				BookingID: b.ID,
				Kind:      models.AlertCancelled,
				Title:     "Cancelled booking: " + b.ID,
				Body:      b.Guest,
			})
		}
	}
	return alerts
}
