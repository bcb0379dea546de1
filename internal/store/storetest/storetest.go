// Package storetest is a behaviour suite shared by every store backend.
package storetest

import (
	"context"
	"testing"

	"github.com/geocoder89/usershub/internal/domain/user"
	"github.com/stretchr/testify/require"
)

// Store is the subset of store.Store the suite drives. Declared here to
// keep the package importable from backend tests without a cycle.
type Store interface {
	List(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, f user.Fields) (user.User, error)
	Get(ctx context.Context, id string) (user.User, error)
	Update(ctx context.Context, id string, f user.Fields) (user.User, error)
	Delete(ctx context.Context, id string) error
}

// Factory returns an empty store for one subtest.
type Factory func(t *testing.T) Store

// UnknownID is well formed for every backend but never issued.
const UnknownID = "65f0c0ffee0000000000beef"

var Ana = user.Fields{Name: "Ana", Email: "ana@x.com", Age: 30, City: "Rome"}

func Run(t *testing.T, newStore Factory) {
	t.Run("empty_list", func(t *testing.T) {
		s := newStore(t)

		list, err := s.List(context.Background())
		require.NoError(t, err)
		require.Empty(t, list)
	})

	t.Run("create_then_list", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		created, err := s.Create(ctx, Ana)
		require.NoError(t, err)
		require.NotEmpty(t, created.ID)
		require.False(t, created.CreatedAt.IsZero())
		require.True(t, created.ModifiedAt.Equal(created.CreatedAt))
		require.Equal(t, Ana, created.Fields())

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, created.ID, list[0].ID)
		require.Equal(t, Ana, list[0].Fields())
		require.True(t, list[0].CreatedAt.Equal(created.CreatedAt))
	})

	t.Run("ids_are_unique", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		seen := map[string]bool{}
		for i := 0; i < 5; i++ {
			u, err := s.Create(ctx, Ana)
			require.NoError(t, err)
			require.False(t, seen[u.ID])
			seen[u.ID] = true
		}

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 5)
	})

	t.Run("update_replaces_fields", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		created, err := s.Create(ctx, Ana)
		require.NoError(t, err)

		older := Ana
		older.Age = 31

		updated, err := s.Update(ctx, created.ID, older)
		require.NoError(t, err)
		require.Equal(t, created.ID, updated.ID)
		require.Equal(t, 31, updated.Age)
		require.True(t, updated.CreatedAt.Equal(created.CreatedAt))
		require.False(t, updated.ModifiedAt.Before(created.ModifiedAt))

		got, err := s.Get(ctx, created.ID)
		require.NoError(t, err)
		require.Equal(t, older, got.Fields())
	})

	t.Run("delete_twice", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		created, err := s.Create(ctx, Ana)
		require.NoError(t, err)

		require.NoError(t, s.Delete(ctx, created.ID))

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Empty(t, list)

		require.ErrorIs(t, s.Delete(ctx, created.ID), user.ErrNotFound)
	})

	t.Run("unknown_id", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		existing, err := s.Create(ctx, Ana)
		require.NoError(t, err)

		for _, id := range []string{UnknownID, "not-an-id"} {
			_, err = s.Update(ctx, id, Ana)
			require.ErrorIs(t, err, user.ErrNotFound)
			require.ErrorIs(t, s.Delete(ctx, id), user.ErrNotFound)
			_, err = s.Get(ctx, id)
			require.ErrorIs(t, err, user.ErrNotFound)
		}

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Len(t, list, 1)
		require.Equal(t, existing.ID, list[0].ID)
		require.Equal(t, Ana, list[0].Fields())
	})

	t.Run("missing_field", func(t *testing.T) {
		ctx := context.Background()
		s := newStore(t)

		bad := Ana
		bad.Name = ""

		for i := 0; i < 2; i++ {
			_, err := s.Create(ctx, bad)
			var ve *user.ValidationError
			require.ErrorAs(t, err, &ve)
			require.Equal(t, "name", ve.Field)
		}

		list, err := s.List(ctx)
		require.NoError(t, err)
		require.Empty(t, list)
	})
}
