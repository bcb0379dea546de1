package memory

import (
	"context"
	"sort"
	"sync"

	"github.com/geocoder89/usershub/internal/clock"
	"github.com/geocoder89/usershub/internal/domain/user"
)

type UsersRepo struct {
	mu    sync.RWMutex
	clock clock.Clock
	seq   uint64
	items map[string]entry // {"id": record}
}

// seq keeps List in creation order even when two records share a timestamp
type entry struct {
	seq uint64
	u   user.User
}

func NewUsersRepo(c clock.Clock) *UsersRepo {
	if c == nil {
		c = clock.Real()
	}

	return &UsersRepo{
		clock: c,
		items: make(map[string]entry),
	}
}

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	r.mu.RLock()
	entries := make([]entry, 0, len(r.items))
	for _, e := range r.items {
		entries = append(entries, e)
	}
	r.mu.RUnlock()

	sort.Slice(entries, func(i, j int) bool {
		return entries[i].seq < entries[j].seq
	})

	out := make([]user.User, 0, len(entries))
	for _, e := range entries {
		out = append(out, e.u)
	}

	return out, nil
}

func (r *UsersRepo) Create(ctx context.Context, f user.Fields) (user.User, error) {
	err := f.Validate()

	if err != nil {
		return user.User{}, err
	}

	u := user.New(f, r.clock.Now())

	r.mu.Lock()
	r.seq++
	r.items[u.ID] = entry{seq: r.seq, u: u}
	r.mu.Unlock()

	return u, nil
}

func (r *UsersRepo) Get(ctx context.Context, id string) (user.User, error) {
	r.mu.RLock()
	e, ok := r.items[id]
	r.mu.RUnlock()

	if !ok {
		return user.User{}, user.ErrNotFound
	}

	return e.u, nil
}

func (r *UsersRepo) Update(ctx context.Context, id string, f user.Fields) (user.User, error) {
	err := f.Validate()

	if err != nil {
		return user.User{}, err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	e, ok := r.items[id]
	if !ok {
		return user.User{}, user.ErrNotFound
	}

	e.u = e.u.Apply(f, r.clock.Now())
	r.items[id] = e

	return e.u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.items[id]; !ok {
		return user.ErrNotFound
	}

	delete(r.items, id)

	return nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return nil
}

func (r *UsersRepo) Close(ctx context.Context) error {
	return nil
}
