// Package store selects and opens the record store named by a connection
// string and decorates it with metrics and tracing.
package store

import (
	"context"
	"fmt"
	"log/slog"
	"net/url"
	"strings"

	"github.com/geocoder89/usershub/internal/clock"
	"github.com/geocoder89/usershub/internal/db"
	"github.com/geocoder89/usershub/internal/domain/user"
	"github.com/geocoder89/usershub/internal/repo/memory"
	"github.com/geocoder89/usershub/internal/repo/mongodb"
	"github.com/geocoder89/usershub/internal/repo/postgres"
)

// Store is the record store contract every backend satisfies.
type Store interface {
	List(ctx context.Context) ([]user.User, error)
	Create(ctx context.Context, f user.Fields) (user.User, error)
	Get(ctx context.Context, id string) (user.User, error)
	Update(ctx context.Context, id string, f user.Fields) (user.User, error)
	Delete(ctx context.Context, id string) error
	Ping(ctx context.Context) error
	Close(ctx context.Context) error
}

type Backend string

const (
	BackendMemory   Backend = "memory"
	BackendPostgres Backend = "postgres"
	BackendMongo    Backend = "mongodb"
)

// BackendFor maps the scheme of a connection string to a backend.
func BackendFor(rawURL string) (Backend, error) {
	u, err := url.Parse(rawURL)

	if err != nil {
		return "", fmt.Errorf("parse store url: %w", err)
	}

	switch strings.ToLower(u.Scheme) {
	case "memory", "mem":
		return BackendMemory, nil
	case "postgres", "postgresql":
		return BackendPostgres, nil
	case "mongodb", "mongodb+srv":
		return BackendMongo, nil
	default:
		return "", fmt.Errorf("unsupported store scheme %q", u.Scheme)
	}
}

// Open connects to the store behind rawURL and makes sure its table or
// collection exists.
func Open(ctx context.Context, rawURL string, log *slog.Logger) (Store, error) {
	backend, err := BackendFor(rawURL)

	if err != nil {
		return nil, err
	}

	if log == nil {
		log = slog.Default()
	}

	log.InfoContext(ctx, "opening store", "backend", string(backend), "url", Redact(rawURL))

	switch backend {
	case BackendMemory:
		return memory.NewUsersRepo(clock.Real()), nil

	case BackendPostgres:
		pool, err := db.NewPool(ctx, rawURL)

		if err != nil {
			return nil, fmt.Errorf("connect postgres: %w: %v", user.ErrStoreUnavailable, err)
		}

		err = db.EnsureSchema(ctx, pool)

		if err != nil {
			pool.Close()
			return nil, fmt.Errorf("ensure postgres schema: %w", err)
		}

		return postgres.NewUsersRepo(pool), nil

	case BackendMongo:
		client, dbName, err := db.NewMongoClient(ctx, rawURL)

		if err != nil {
			return nil, fmt.Errorf("connect mongodb: %w: %v", user.ErrStoreUnavailable, err)
		}

		repo := mongodb.NewUsersRepo(client, dbName)

		err = repo.EnsureCollection(ctx)

		if err != nil {
			_ = repo.Close(context.Background())
			return nil, fmt.Errorf("ensure mongodb collection: %w", err)
		}

		return repo, nil
	}

	return nil, fmt.Errorf("unsupported store backend %q", backend)
}

// Redact hides the password of a connection string for logging.
func Redact(rawURL string) string {
	u, err := url.Parse(rawURL)

	if err != nil {
		return "invalid-url"
	}

	return u.Redacted()
}

var (
	_ Store = (*memory.UsersRepo)(nil)
	_ Store = (*postgres.UsersRepo)(nil)
	_ Store = (*mongodb.UsersRepo)(nil)
	_ Store = (*Observed)(nil)
)
