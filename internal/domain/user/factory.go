package user

import (
	"time"

	"github.com/google/uuid"
)

// New builds a record with a fresh id. createdAt and modifiedAt start equal.
func New(f Fields, now time.Time) User {
	now = now.UTC()
	f = f.Normalize()

	return User{
		ID:         uuid.NewString(),
		Name:       f.Name,
		Email:      f.Email,
		Age:        f.Age,
		City:       f.City,
		CreatedAt:  now,
		ModifiedAt: now,
	}
}

// Apply overwrites the mutable fields and refreshes modifiedAt. The
// timestamp never moves backwards.
func (u User) Apply(f Fields, now time.Time) User {
	f = f.Normalize()
	now = now.UTC()

	u.Name = f.Name
	u.Email = f.Email
	u.Age = f.Age
	u.City = f.City

	if now.After(u.ModifiedAt) {
		u.ModifiedAt = now
	}

	return u
}
