package api_test

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/geocoder89/usershub/internal/client/api"
	"github.com/geocoder89/usershub/internal/domain/user"
	"github.com/stretchr/testify/require"
)

func newClient(t *testing.T, h http.HandlerFunc) *api.Client {
	t.Helper()

	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)

	c, err := api.New(srv.URL+"/api/users", 2*time.Second)
	require.NoError(t, err)

	return c
}

func TestListDecodesData(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodGet, r.Method)
		require.Equal(t, "/api/users", r.URL.Path)

		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data":  []user.User{{ID: "1", Name: "Ana", Email: "ana@x.com", Age: 30, City: "Rome"}},
			"count": 1,
		})
	})

	users, err := c.List(context.Background())
	require.NoError(t, err)
	require.Len(t, users, 1)
	require.Equal(t, "Ana", users[0].Name)
}

func TestCreateSendsJSON(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, http.MethodPost, r.Method)
		require.Equal(t, "application/json", r.Header.Get("Content-Type"))

		var p api.Payload
		require.NoError(t, json.NewDecoder(r.Body).Decode(&p))
		require.Equal(t, 30, p.Age)

		w.WriteHeader(http.StatusCreated)
		_ = json.NewEncoder(w).Encode(map[string]any{
			"data": user.User{ID: "abc", Name: p.Name, Email: p.Email, Age: p.Age, City: p.City},
		})
	})

	u, err := c.Create(context.Background(), api.Payload{Name: "Ana", Email: "ana@x.com", Age: 30, City: "Rome"})
	require.NoError(t, err)
	require.Equal(t, "abc", u.ID)
}

func TestErrorBodyBecomesResponseError(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		require.Equal(t, "/api/users/missing", r.URL.Path)

		w.WriteHeader(http.StatusNotFound)
		_, _ = w.Write([]byte(`{"message":"User not found","error":{"code":"not_found","message":"User not found"}}`))
	})

	err := c.Delete(context.Background(), "missing")

	var re *api.ResponseError
	require.True(t, errors.As(err, &re))
	require.Equal(t, http.StatusNotFound, re.Status)
	require.Equal(t, "not_found", re.Code)
	require.Equal(t, "User not found", api.Message(err))
}

func TestErrorWithoutBodyUsesStatus(t *testing.T) {
	c := newClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusBadGateway)
	})

	_, err := c.List(context.Background())
	require.Error(t, err)
	require.Equal(t, "request failed with status code 502", api.Message(err))
}

func TestTransportError(t *testing.T) {
	srv := httptest.NewServer(http.NotFoundHandler())
	url := srv.URL
	srv.Close()

	c, err := api.New(url+"/api/users", time.Second)
	require.NoError(t, err)

	_, err = c.List(context.Background())

	var te *api.TransportError
	require.True(t, errors.As(err, &te))
	require.Equal(t, err.Error(), api.Message(err))
}

func TestNewRejectsBadURL(t *testing.T) {
	_, err := api.New("localhost:5000", time.Second)
	require.Error(t, err)
}
