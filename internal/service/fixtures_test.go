package service

import (
	"testing"
	"time"

	"rentease/internal/events"
	"rentease/internal/idgen"
	"rentease/internal/models"
	"rentease/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/require"
)

var fixedNow = time.Date(2025, 10, 28, 12, 0, 0, 0, time.UTC)

func fixedClock() time.Time { return fixedNow }

func nopLogger() *zerolog.Logger {
	l := zerolog.Nop()
	return &l
}

type fixture struct {
	store *store.Store
	bus   *events.EventBus
}

func newFixture(t *testing.T) fixture {
	t.Helper()
	bus := events.NewEventBus()
	st := store.New(bus, nopLogger())

	for _, p := range []models.Property{
		{ID: "p1", Name: "Seaside Villa", Type: "Villa", Location: "Dagupan", Rooms: 4},
		{ID: "p2", Name: "City Loft", Type: "Apartment", Location: "Laoag", Rooms: 1},
	} {
		require.NoError(t, st.Properties.Append(p))
	}
	for _, u := range []models.User{
		{ID: "u1", Name: "Ava Santos", Email: "ava@example.com", Role: models.RoleManager, Status: models.UserActive, JoinedAt: "2023-02-12", LifetimeRevenue: 12000},
		{ID: "u2", Name: "Carlos Reyes", Email: "carlos@example.com", Role: models.RoleStaff, Status: models.UserActive, JoinedAt: "2023-06-01"},
		{ID: "u3", Name: "Maya Cruz", Email: "maya@example.com", Role: models.RoleReadonly, Status: models.UserInactive, JoinedAt: "2024-01-20"},
	} {
		require.NoError(t, st.Users.Append(u))
	}
	for _, b := range []models.Booking{
		{ID: "B-1001", Guest: "John Doe", PropertyID: "p1", CheckIn: "2025-11-01", CheckOut: "2025-11-04", Nights: 3, Amount: 300, Status: models.StatusConfirmed},
		{ID: "B-1002", Guest: "Jane Smith", PropertyID: "p2", CheckIn: "2025-10-20", CheckOut: "2025-10-30", Nights: 10, Amount: 1000, Status: models.StatusCheckedIn},
		{ID: "B-1003", Guest: "Mark Lee", PropertyID: "p1", CheckIn: "2025-12-15", CheckOut: "2025-12-18", Nights: 3, Amount: 300, Status: models.StatusCancelled},
		{ID: "B-1004", Guest: "Lia Gomez", PropertyID: "p9", CheckIn: "2025-11-20", CheckOut: "2025-11-22", Nights: 2, Amount: 200, Status: models.StatusConfirmed},
	} {
		require.NoError(t, st.Bookings.Append(b))
	}
	require.NoError(t, st.Rentals.Append(models.Rental{
		ID: "R-2001", BookingID: "B-1002", PropertyID: "p2", PeriodStart: "2025-10-20", PeriodEnd: "2025-10-30",
		Nights: 10, Gross: 1200, Fees: 240, Net: 960,
	}))
	for _, tx := range []models.Transaction{
		{ID: "T-3001", UserID: "u1", Date: "2025-09-01", Type: models.TxPayout, Amount: 500},
		{ID: "T-3002", UserID: "u1", Date: "2025-10-05", Type: models.TxRefund, Amount: -50},
		{ID: "T-3003", UserID: "u2", Date: "2025-08-11", Type: models.TxPayout, Amount: 300},
	} {
		require.NoError(t, st.Transactions.Append(tx))
	}

	return fixture{store: st, bus: bus}
}

func seq(prefix string, start int64, ids ...string) idgen.Generator {
	g := idgen.NewSequence(prefix, start)
	idgen.Observe(g, ids...)
	return g
}

func ptr[T any](v T) *T { return &v }
