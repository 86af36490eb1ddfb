package service

import (
	"context"
	"sync"
	"testing"

	"rentease/internal/events"
	"rentease/internal/models"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newUserService(t *testing.T) (*UserService, fixture) {
	f := newFixture(t)
	ids := seq("u", 1, "u1", "u2", "u3")
	return NewUserService(f.store, ids, f.bus, fixedClock, nopLogger()), f
}

func TestUserService_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("defaults", func(t *testing.T) {
		svc, _ := newUserService(t)
		u, err := svc.Create(ctx, UserInput{Name: " Jon Paul ", Email: "Jon@Example.COM"})
		require.NoError(t, err)

		assert.Equal(t, "u4", u.ID)
		assert.Equal(t, "Jon Paul", u.Name)
		assert.Equal(t, "jon@example.com", u.Email)
		assert.Equal(t, models.RoleStaff, u.Role)
		assert.Equal(t, models.UserActive, u.Status)
		assert.Equal(t, "2025-10-28", u.JoinedAt)

		first := svc.List(UserFilter{})[0]
		assert.Equal(t, "u4", first.ID, "new users are prepended")
	})

	t.Run("validation", func(t *testing.T) {
		svc, f := newUserService(t)
		before := f.store.Users.Len()

		cases := []struct {
			name string
			in   UserInput
			err  error
		}{
			{"missing name", UserInput{Email: "x@example.com"}, ErrMissingFields},
			{"bad email", UserInput{Name: "X", Email: "not-an-email"}, ErrInvalidEmail},
			{"bad role", UserInput{Name: "X", Email: "x@example.com", Role: "owner"}, ErrInvalidRole},
			{"duplicate email", UserInput{Name: "X", Email: "AVA@example.com"}, ErrEmailTaken},
		}
		for _, tc := range cases {
			t.Run(tc.name, func(t *testing.T) {
				_, err := svc.Create(ctx, tc.in)
				assert.ErrorIs(t, err, tc.err)
			})
		}
		assert.Equal(t, before, f.store.Users.Len())
	})
}

func TestUserService_CreateConcurrentSameEmail(t *testing.T) {
	ctx := context.Background()
	svc, f := newUserService(t)
	before := f.store.Users.Len()

	const n = 32
	errs := make([]error, n)
	var wg sync.WaitGroup
	for i := 0; i < n; i++ {
		wg.Add(1)
		go func(i int) {
			defer wg.Done()
			_, errs[i] = svc.Create(ctx, UserInput{Name: "Dup", Email: "dup@example.com"})
		}(i)
	}
	wg.Wait()

	created := 0
	for _, err := range errs {
		if err == nil {
			created++
			continue
		}
		assert.ErrorIs(t, err, ErrEmailTaken)
	}
	assert.Equal(t, 1, created)
	assert.Equal(t, before+1, f.store.Users.Len())
	assert.Len(t, svc.List(UserFilter{Query: "dup@example.com"}), 1)
}

func TestUserService_ListFilters(t *testing.T) {
	svc, _ := newUserService(t)

	managers := svc.List(UserFilter{Role: models.RoleManager})
	require.Len(t, managers, 1)
	assert.Equal(t, "u1", managers[0].ID)

	assert.Len(t, svc.List(UserFilter{Query: "EXAMPLE.com"}), 3)
	assert.Len(t, svc.List(UserFilter{Query: "carlos"}), 1)
	assert.Empty(t, svc.List(UserFilter{Role: models.RoleStaff, Query: "maya"}))
}

func TestUserService_Update(t *testing.T) {
	ctx := context.Background()
	svc, f := newUserService(t)

	u, err := svc.Update(ctx, "u2", models.UserPatch{Role: ptr(models.RoleManager)})
	require.NoError(t, err)
	assert.Equal(t, models.RoleManager, u.Role)
	assert.Equal(t, "Carlos Reyes", u.Name, "fields not in the patch are kept")

	_, err = svc.Update(ctx, "u2", models.UserPatch{Email: ptr("ava@example.com")})
	assert.ErrorIs(t, err, ErrEmailTaken)
	got, _ := f.store.Users.Get("u2")
	assert.NotEqual(t, "ava@example.com", got.Email, "rejected patch leaves the record alone")

	t.Run("own email is not a conflict", func(t *testing.T) {
		_, err := svc.Update(ctx, "u2", models.UserPatch{Email: ptr(got.Email)})
		assert.NoError(t, err)
	})

	_, err = svc.Update(ctx, "missing", models.UserPatch{Name: ptr("X")})
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestUserService_ToggleStatusTwiceRestores(t *testing.T) {
	ctx := context.Background()
	svc, f := newUserService(t)

	var published []events.RecordEventPayload
	f.bus.Subscribe(func(e *events.Event) error {
		var p events.RecordEventPayload
		require.NoError(t, e.Decode(&p))
		published = append(published, p)
		return nil
	}, events.EventStatusChanged)

	u, ok := svc.ToggleStatus(ctx, "u1")
	require.True(t, ok)
	assert.Equal(t, models.UserInactive, u.Status)

	u, ok = svc.ToggleStatus(ctx, "u1")
	require.True(t, ok)
	assert.Equal(t, models.UserActive, u.Status)

	require.Len(t, published, 2)
	assert.Equal(t, "u1", published[0].ID)
	assert.Equal(t, models.UserInactive, published[0].Status)

	_, ok = svc.ToggleStatus(ctx, "nope")
	assert.False(t, ok)
}

func TestUserService_DeleteKeepsOrder(t *testing.T) {
	svc, _ := newUserService(t)

	assert.True(t, svc.Delete(context.Background(), "u2"))
	assert.False(t, svc.Delete(context.Background(), "u2"))

	var ids []string
	for _, u := range svc.List(UserFilter{}) {
		ids = append(ids, u.ID)
	}
	assert.Equal(t, []string{"u1", "u3"}, ids)
}

func TestUserService_BulkSetStatus(t *testing.T) {
	ctx := context.Background()
	svc, _ := newUserService(t)

	n, err := svc.BulkSetStatus(ctx, []string{"u1", "ghost", "u2"}, models.UserInactive)
	require.NoError(t, err)
	assert.Equal(t, 2, n)
	assert.Len(t, svc.List(UserFilter{Status: models.UserInactive}), 3)

	_, err = svc.BulkSetStatus(ctx, nil, models.UserActive)
	assert.ErrorIs(t, err, ErrNoSelection)

	_, err = svc.BulkSetStatus(ctx, []string{"u1"}, "banned")
	assert.ErrorIs(t, err, ErrInvalidStatus)
}

func TestUserService_Detail(t *testing.T) {
	svc, _ := newUserService(t)

	d, ok := svc.Detail("u1")
	require.True(t, ok)
	assert.Equal(t, "Ava Santos", d.User.Name)
	require.Len(t, d.Transactions, 2)
	assert.Equal(t, "T-3002", d.Transactions[0].ID, "newest first")

	_, ok = svc.Detail("missing")
	assert.False(t, ok)
}
