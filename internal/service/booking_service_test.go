package service

import (
	"context"
	"testing"

	"rentease/internal/config"
	"rentease/internal/events"
	"rentease/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newBookingService(t *testing.T) (*BookingService, fixture) {
	f := newFixture(t)
	ids := seq("B-", 1001, "B-1001", "B-1002", "B-1003", "B-1004")
	return NewBookingService(f.store, ids, f.bus, config.BookingConfig{NightlyRate: 100}, fixedClock, nopLogger()), f
}

func TestNights(t *testing.T) {
	tests := []struct {
		in, out string
		want    int
	}{
		{"2025-11-01", "2025-11-03", 2},
		{"2025-11-01", "2025-11-01", 1},
		{"2025-11-05", "2025-11-01", 1},
		{"garbage", "2025-11-03", 1},
		{"2025-11-01", "", 1},
		{"2025-02-27", "2025-03-02", 3},
	}
	for _, tt := range tests {
		t.Run(tt.in+"_"+tt.out, func(t *testing.T) {
			assert.Equal(t, tt.want, Nights(tt.in, tt.out))
		})
	}
}

func TestBookingService_Create(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBookingService(t)

	b, err := svc.Create(ctx, BookingInput{Guest: "Ana", PropertyID: "p1", CheckIn: "2025-11-01", CheckOut: "2025-11-03"})
	require.NoError(t, err)

	assert.Equal(t, "B-1005", b.ID)
	assert.Equal(t, 2, b.Nights)
	assert.Equal(t, int64(200), b.Amount)
	assert.Equal(t, models.StatusConfirmed, b.Status)
	assert.Equal(t, models.PaymentPending, b.PaymentStatus)
	assert.Equal(t, "2025-10-28", b.CreatedAt)
	assert.Equal(t, "B-1005", svc.List(BookingFilter{})[0].ID)

	_, err = svc.Create(ctx, BookingInput{Guest: "Ana", PropertyID: "p1", CheckIn: "2025-11-01"})
	assert.ErrorIs(t, err, ErrMissingFields)
}

func TestBookingService_List(t *testing.T) {
	svc, _ := newBookingService(t)

	t.Run("search by property name", func(t *testing.T) {
		got := svc.List(BookingFilter{Query: "seaside"})
		require.Len(t, got, 2)
		assert.Equal(t, "B-1001", got[0].ID)
		assert.Equal(t, "B-1003", got[1].ID)
	})

	t.Run("status and property", func(t *testing.T) {
		got := svc.List(BookingFilter{Status: models.StatusConfirmed, PropertyID: "p1"})
		require.Len(t, got, 1)
		assert.Equal(t, "B-1001", got[0].ID)
	})

	t.Run("no match", func(t *testing.T) {
		assert.Empty(t, svc.List(BookingFilter{Query: "zzz"}))
	})
}

func TestBookingService_UpdateRecomputes(t *testing.T) {
	ctx := context.Background()
	svc, _ := newBookingService(t)

	b, err := svc.Update(ctx, "B-1001", models.BookingPatch{CheckOut: ptr("2025-11-08")})
	require.NoError(t, err)
	assert.Equal(t, 7, b.Nights)
	assert.Equal(t, int64(700), b.Amount)

	b, err = svc.Update(ctx, "B-1001", models.BookingPatch{Guest: ptr("Johnny")})
	require.NoError(t, err)
	assert.Equal(t, int64(700), b.Amount, "amount untouched without a date change")

	_, err = svc.Update(ctx, "B-1001", models.BookingPatch{Status: ptr("lost")})
	assert.ErrorIs(t, err, ErrInvalidStatus)

	t.Run("payment status", func(t *testing.T) {
		before, _ := svc.Get("B-1001")

		_, err := svc.Update(ctx, "B-1001", models.BookingPatch{PaymentStatus: ptr("gift-card")})
		assert.ErrorIs(t, err, ErrInvalidStatus)
		after, _ := svc.Get("B-1001")
		assert.Equal(t, before.PaymentStatus, after.PaymentStatus)

		b, err := svc.Update(ctx, "B-1001", models.BookingPatch{PaymentStatus: ptr(models.PaymentRefunded)})
		require.NoError(t, err)
		assert.Equal(t, models.PaymentRefunded, b.PaymentStatus)
	})

	_, err = svc.Update(ctx, "B-9999", models.BookingPatch{Guest: ptr("X")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestBookingService_StatusActions(t *testing.T) {
	ctx := context.Background()
	svc, f := newBookingService(t)

	var got []string
	f.bus.Subscribe(func(e *events.Event) error {
		var p events.RecordEventPayload
		if err := e.Decode(&p); err != nil {
			return err
		}
		got = append(got, p.ID+":"+p.Status)
		return nil
	}, events.EventStatusChanged)

	b, ok := svc.CheckIn(ctx, "B-1001")
	require.True(t, ok)
	assert.Equal(t, models.StatusCheckedIn, b.Status)

	b, ok = svc.Cancel(ctx, "B-1004")
	require.True(t, ok)
	assert.Equal(t, models.StatusCancelled, b.Status)

	_, ok = svc.Cancel(ctx, "B-0000")
	assert.False(t, ok)

	assert.Equal(t, []string{"B-1001:checked_in", "B-1004:cancelled"}, got)
}

func TestBookingService_DeleteKeepsOrder(t *testing.T) {
	svc, _ := newBookingService(t)
	require.True(t, svc.Delete(context.Background(), "B-1002"))

	var ids []string
	for _, b := range svc.List(BookingFilter{}) {
		ids = append(ids, b.ID)
	}
	assert.Equal(t, []string{"B-1001", "B-1003", "B-1004"}, ids)
}
