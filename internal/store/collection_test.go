package store

import (
	"sync"
	"testing"

	"rentease/internal/events"
	"rentease/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func ids[T Record](items []T) []string {
	out := make([]string, len(items))
	for i, it := range items {
		out[i] = it.GetID()
	}
	return out
}

func newUsers(t *testing.T) *Collection[models.User] {
	t.Helper()
	c := NewCollection[models.User](EntityUser, nil, nil, nil)
	for _, id := range []string{"u1", "u2", "u3", "u4"} {
		require.NoError(t, c.Append(models.User{ID: id, Status: models.UserActive}))
	}
	return c
}

func TestCollection_InsertPrepends(t *testing.T) {
	c := newUsers(t)
	require.NoError(t, c.Insert(models.User{ID: "u5"}))
	assert.Equal(t, []string{"u5", "u1", "u2", "u3", "u4"}, ids(c.All()))

	assert.ErrorIs(t, c.Insert(models.User{ID: "u2"}), ErrDuplicateID)
	assert.Equal(t, 5, c.Len())
}

func TestCollection_DeleteKeepsOrder(t *testing.T) {
	c := newUsers(t)

	assert.True(t, c.Delete("u2"))
	assert.Equal(t, []string{"u1", "u3", "u4"}, ids(c.All()))

	t.Run("UnknownIsNoop", func(t *testing.T) {
		before := c.Version()
		assert.False(t, c.Delete("missing"))
		assert.Equal(t, before, c.Version())
		assert.Equal(t, 3, c.Len())
	})
}

func TestCollection_Update(t *testing.T) {
	c := newUsers(t)

	updated, ok := c.Update("u3", func(u *models.User) { u.Name = "Maya" })
	require.True(t, ok)
	assert.Equal(t, "Maya", updated.Name)

	got, ok := c.Get("u3")
	require.True(t, ok)
	assert.Equal(t, "Maya", got.Name)

	_, ok = c.Update("nope", func(u *models.User) { u.Name = "x" })
	assert.False(t, ok)
}

func TestCollection_UpdateEachSkipsUnknown(t *testing.T) {
	c := newUsers(t)
	n := c.UpdateEach([]string{"u1", "ghost", "u4"}, func(u *models.User) { u.Status = models.UserInactive })
	assert.Equal(t, 2, n)

	u1, _ := c.Get("u1")
	u2, _ := c.Get("u2")
	u4, _ := c.Get("u4")
	assert.Equal(t, models.UserInactive, u1.Status)
	assert.Equal(t, models.UserActive, u2.Status)
	assert.Equal(t, models.UserInactive, u4.Status)

	before := c.Version()
	assert.Equal(t, 0, c.UpdateEach([]string{"ghost"}, func(u *models.User) {}))
	assert.Equal(t, before, c.Version())
}

func TestCollection_ReadsAreCopies(t *testing.T) {
	c := newUsers(t)
	all := c.All()
	all[0].Name = "mutated"
	got, _ := c.Get("u1")
	assert.Empty(t, got.Name)
}

func TestCollection_Filter(t *testing.T) {
	c := newUsers(t)
	_, _ = c.Update("u2", func(u *models.User) { u.Status = models.UserInactive })

	inactive := c.Filter(func(u models.User) bool { return u.Status == models.UserInactive })
	assert.Equal(t, []string{"u2"}, ids(inactive))
	assert.Len(t, c.Filter(nil), 4)

	found, ok := c.Find(func(u models.User) bool { return u.ID == "u4" })
	assert.True(t, ok)
	assert.Equal(t, "u4", found.ID)
}

func TestCollection_Replace(t *testing.T) {
	c := newUsers(t)
	c.Replace([]models.User{{ID: "x"}})
	assert.Equal(t, []string{"x"}, ids(c.All()))
}

func TestCollection_PublishesEvents(t *testing.T) {
	bus := events.NewEventBus()
	var got []events.RecordEventPayload
	bus.Subscribe(func(e *events.Event) error {
		var p events.RecordEventPayload
		require.NoError(t, e.Decode(&p))
		got = append(got, p)
		return nil
	}, events.EventRecordCreated, events.EventRecordDeleted)

	c := NewCollection[models.Property](EntityProperty, nil, bus, nil)
	require.NoError(t, c.Insert(models.Property{ID: "p1"}))
	c.Delete("p1")

	require.Len(t, got, 2)
	assert.Equal(t, "p1", got[0].ID)
	assert.Equal(t, EntityProperty, got[1].Entity)
	assert.Greater(t, got[1].Version, got[0].Version)
}

func TestCollection_Concurrent(t *testing.T) {
	c := NewCollection[models.Booking](EntityBooking, nil, nil, nil)
	var wg sync.WaitGroup
	for i := 0; i < 50; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_ = c.Insert(models.Booking{ID: string(rune('A' + i))})
			_ = c.All()
		}(i)
	}
	wg.Wait()
	assert.Equal(t, 50, c.Len())
}

func TestCollection_InsertUnique(t *testing.T) {
	c := newUsers(t)
	c.UpdateEach([]string{"u1"}, func(u *models.User) { u.Email = "ava@example.com" })
	taken := func(email string) func(models.User) bool {
		return func(u models.User) bool { return u.Email == email }
	}

	require.NoError(t, c.InsertUnique(models.User{ID: "u5", Email: "new@example.com"}, taken("new@example.com")))
	assert.ErrorIs(t, c.InsertUnique(models.User{ID: "u6", Email: "ava@example.com"}, taken("ava@example.com")), ErrConflict)
	assert.ErrorIs(t, c.InsertUnique(models.User{ID: "u5"}, nil), ErrDuplicateID)
	assert.Equal(t, 5, c.Len())

	t.Run("Concurrent", func(t *testing.T) {
		var (
			wg sync.WaitGroup
			mu sync.Mutex
			ok int
		)
		for i := 0; i < 32; i++ {
			wg.Add(1)
			go func(i int) {
				defer wg.Done()
				u := models.User{ID: string(rune('a' + i)), Email: "race@example.com"}
				if c.InsertUnique(u, taken("race@example.com")) == nil {
					mu.Lock()
					ok++
					mu.Unlock()
				}
			}(i)
		}
		wg.Wait()
		assert.Equal(t, 1, ok)
		assert.Len(t, c.Filter(taken("race@example.com")), 1)
	})
}

func TestCollection_UpdateUnique(t *testing.T) {
	c := newUsers(t)
	c.UpdateEach([]string{"u1"}, func(u *models.User) { u.Email = "ava@example.com" })
	isAva := func(u models.User) bool { return u.Email == "ava@example.com" }
	setAva := func(u *models.User) { u.Email = "ava@example.com" }

	_, ok, err := c.UpdateUnique("u2", isAva, setAva)
	assert.True(t, ok)
	assert.ErrorIs(t, err, ErrConflict)
	got, _ := c.Get("u2")
	assert.Empty(t, got.Email)

	updated, ok, err := c.UpdateUnique("u1", isAva, func(u *models.User) { u.Name = "Ava" })
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "Ava", updated.Name, "the record itself never conflicts")

	_, ok, err = c.UpdateUnique("missing", isAva, setAva)
	assert.False(t, ok)
	assert.NoError(t, err)
}

func TestStore_SharedVersion(t *testing.T) {
	s := New(nil, nil)
	assert.Equal(t, uint64(0), s.Version())

	require.NoError(t, s.Properties.Append(models.Property{ID: "p1", Name: "Seaside Villa"}))
	require.NoError(t, s.Bookings.Append(models.Booking{ID: "B-1", Guest: "John", PropertyID: "p1"}))
	assert.Equal(t, uint64(2), s.Version())
	assert.Equal(t, uint64(2), s.Bookings.Version())
	assert.Equal(t, uint64(1), s.Properties.Version())

	assert.Equal(t, "Seaside Villa", s.PropertyName("p1"))
	assert.Equal(t, "", s.PropertyName("p9"))
	assert.Equal(t, "John", s.BookingGuest("B-1"))
	assert.Equal(t, "", s.BookingGuest("B-9"))
}
