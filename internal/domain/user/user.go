package user

import (
	"errors"
	"time"
)

type User struct {
	ID         string    `json:"id"`
	Name       string    `json:"name"`
	Email      string    `json:"email"`
	Age        int       `json:"age"`
	City       string    `json:"city"`
	CreatedAt  time.Time `json:"createdAt"`
	ModifiedAt time.Time `json:"modifiedAt"`
}

// Fields are the four client supplied values of a record. The store owns
// everything else.
type Fields struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Age   int    `json:"age"`
	City  string `json:"city"`
}

var (
	ErrNotFound = errors.New("user not found")

	// ErrStoreUnavailable wraps infrastructure failures of the backing store
	ErrStoreUnavailable = errors.New("store unavailable")
)

// Fields returns the mutable part of the record.
func (u User) Fields() Fields {
	return Fields{
		Name:  u.Name,
		Email: u.Email,
		Age:   u.Age,
		City:  u.City,
	}
}

// full create/update payload. both verbs replace all four fields.
type CreateUserRequest struct {
	Name  string `json:"name" binding:"required,max=120"`
	Email string `json:"email" binding:"required,email,max=254"`
	Age   int    `json:"age" binding:"required,min=1,max=120"`
	City  string `json:"city" binding:"required,max=120"`
}

type UpdateUserRequest struct {
	Name  string `json:"name" binding:"required,max=120"`
	Email string `json:"email" binding:"required,email,max=254"`
	Age   int    `json:"age" binding:"required,min=1,max=120"`
	City  string `json:"city" binding:"required,max=120"`
}

func (r CreateUserRequest) Fields() Fields {
	return Fields{Name: r.Name, Email: r.Email, Age: r.Age, City: r.City}
}

func (r UpdateUserRequest) Fields() Fields {
	return Fields{Name: r.Name, Email: r.Email, Age: r.Age, City: r.City}
}
