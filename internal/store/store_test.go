package store_test

import (
	"context"
	"testing"

	"github.com/geocoder89/usershub/internal/domain/user"
	"github.com/geocoder89/usershub/internal/observability"
	"github.com/geocoder89/usershub/internal/store"
	"github.com/geocoder89/usershub/internal/store/storetest"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/require"
)

func TestBackendFor(t *testing.T) {
	tests := []struct {
		url     string
		want    store.Backend
		wantErr bool
	}{
		{url: "memory://", want: store.BackendMemory},
		{url: "postgres://u:p@localhost:5432/users?sslmode=disable", want: store.BackendPostgres},
		{url: "postgresql://localhost/users", want: store.BackendPostgres},
		{url: "mongodb://localhost:27017/mern_crud_demo", want: store.BackendMongo},
		{url: "mongodb+srv://cluster.example.com/users", want: store.BackendMongo},
		{url: "mysql://localhost/users", wantErr: true},
		{url: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.url, func(t *testing.T) {
			got, err := store.BackendFor(tt.url)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			require.Equal(t, tt.want, got)
		})
	}
}

func TestRedact(t *testing.T) {
	require.Equal(t, "postgres://app:xxxxx@db:5432/users", store.Redact("postgres://app:secret@db:5432/users"))
	require.Equal(t, "mongodb://localhost:27017/mern_crud_demo", store.Redact("mongodb://localhost:27017/mern_crud_demo"))
}

func TestOpenMemory(t *testing.T) {
	s, err := store.Open(context.Background(), "memory://", nil)
	require.NoError(t, err)
	require.NoError(t, s.Ping(context.Background()))
	require.NoError(t, s.Close(context.Background()))
}

func TestObservedConformance(t *testing.T) {
	storetest.Run(t, func(t *testing.T) storetest.Store {
		s, err := store.Open(context.Background(), "memory://", nil)
		require.NoError(t, err)
		return store.NewObserved(s, observability.NewProm(prometheus.NewRegistry()))
	})
}

func TestObservedRecordsOps(t *testing.T) {
	ctx := context.Background()
	prom := observability.NewProm(prometheus.NewRegistry())

	inner, err := store.Open(ctx, "memory://", nil)
	require.NoError(t, err)
	s := store.NewObserved(inner, prom)

	_, err = s.Create(ctx, storetest.Ana)
	require.NoError(t, err)

	err = s.Delete(ctx, storetest.UnknownID)
	require.ErrorIs(t, err, user.ErrNotFound)

	require.Equal(t, 2, testutil.CollectAndCount(prom.StoreOpDuration))
	require.Equal(t, 0, testutil.CollectAndCount(prom.StoreErrorsTotal))
}
