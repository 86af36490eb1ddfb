package seed

import (
	"os"
	"path/filepath"
	"testing"

	"rentease/internal/idgen"
	"rentease/internal/models"
	"rentease/internal/store"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDemo(t *testing.T) {
	d, err := Demo()
	require.NoError(t, err)

	assert.Len(t, d.Properties, 4)
	assert.Len(t, d.Users, 4)
	assert.Len(t, d.Bookings, 4)
	assert.Len(t, d.Rentals, 2)
	assert.Len(t, d.Transactions, 4)
	assert.Len(t, d.Listings, 4)
	assert.Len(t, d.Locations, 4)

	assert.Equal(t, models.User{
		ID: "u1", Name: "Ava Santos", Email: "ava@example.com", Role: models.RoleManager,
		Status: models.UserActive, JoinedAt: "2023-02-12", LifetimeRevenue: 12000,
	}, d.Users[0])
	assert.Equal(t, 0, d.Listings[1].Beds)
	assert.Equal(t, int64(-50), d.Transactions[2].Amount)
	assert.Equal(t, models.StatusCheckedOut, d.Bookings[3].Status)
}

func TestApplyAndObserve(t *testing.T) {
	logger := zerolog.Nop()
	st := store.New(nil, &logger)
	d, err := Demo()
	require.NoError(t, err)

	Apply(st, d)
	assert.Equal(t, 4, st.Users.Len())
	assert.Equal(t, "Seaside Villa", st.PropertyName("p1"))
	assert.Equal(t, "Liza Gomez", st.BookingGuest("B-1004"))

	gens := Generators{
		Users:        idgen.NewSequence("u", 1),
		Bookings:     idgen.NewSequence("B-", 1001),
		Rentals:      idgen.NewSequence("R-", 2001),
		Properties:   idgen.NewSequence("p", 1),
		Transactions: idgen.NewUUID("T-"),
	}
	gens.Observe(d)
	assert.Equal(t, "u5", gens.Users.Next())
	assert.Equal(t, "B-1005", gens.Bookings.Next())
	assert.Equal(t, "R-2003", gens.Rentals.Next())
	assert.Equal(t, "p5", gens.Properties.Next())
}

func TestLoad(t *testing.T) {
	t.Run("empty path uses demo", func(t *testing.T) {
		d, err := Load("")
		require.NoError(t, err)
		assert.Len(t, d.Users, 4)
	})

	t.Run("custom file", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
users:
  - {id: u9, name: Test, email: t@example.com, role: staff, status: active}
`), 0o644))

		d, err := Load(path)
		require.NoError(t, err)
		require.Len(t, d.Users, 1)
		assert.Equal(t, "u9", d.Users[0].ID)
		assert.Empty(t, d.Bookings)
	})

	t.Run("duplicate ids", func(t *testing.T) {
		path := filepath.Join(t.TempDir(), "seed.yaml")
		require.NoError(t, os.WriteFile(path, []byte(`
properties:
  - {id: p1, name: A}
  - {id: p1, name: B}
`), 0o644))

		_, err := Load(path)
		assert.ErrorIs(t, err, store.ErrDuplicateID)
	})

	t.Run("missing file", func(t *testing.T) {
		_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		assert.Error(t, err)
	})
}
