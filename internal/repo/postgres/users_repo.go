package postgres

import (
	"context"
	"errors"
	"fmt"
	"net"
	"time"

	"github.com/geocoder89/usershub/internal/domain/user"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

type UsersRepo struct {
	pool *pgxpool.Pool
	now  func() time.Time
}

// constructor function

func NewUsersRepo(pool *pgxpool.Pool) *UsersRepo {
	return &UsersRepo{
		pool: pool,
		now:  time.Now,
	}
}

const userColumns = `id, name, email, age, city, created_at, modified_at`

func (r *UsersRepo) List(ctx context.Context) ([]user.User, error) {
	rows, err := r.pool.Query(ctx,
		`SELECT `+userColumns+`
		FROM users
		ORDER BY created_at ASC, id ASC`)

	if err != nil {
		return nil, storeErr(err)
	}

	defer rows.Close()

	output := make([]user.User, 0)

	for rows.Next() {
		var u user.User

		err = rows.Scan(&u.ID, &u.Name, &u.Email, &u.Age, &u.City, &u.CreatedAt, &u.ModifiedAt)

		if err != nil {
			return nil, err
		}

		output = append(output, u)
	}

	err = rows.Err()

	if err != nil {
		return nil, storeErr(err)
	}

	return output, nil
}

func (r *UsersRepo) Create(ctx context.Context, f user.Fields) (user.User, error) {
	err := f.Validate()

	if err != nil {
		return user.User{}, err
	}

	u := user.New(f, r.now().Truncate(time.Microsecond))

	_, err = r.pool.Exec(ctx,
		`INSERT INTO users(`+userColumns+`) VALUES($1,$2,$3,$4,$5,$6,$7)`,
		u.ID, u.Name, u.Email, u.Age, u.City, u.CreatedAt, u.ModifiedAt)

	if err != nil {
		return user.User{}, storeErr(err)
	}

	return u, nil
}

func (r *UsersRepo) Get(ctx context.Context, id string) (user.User, error) {
	var u user.User

	err := r.pool.QueryRow(ctx,
		`SELECT `+userColumns+` FROM users WHERE id = $1`, id).
		Scan(&u.ID, &u.Name, &u.Email, &u.Age, &u.City, &u.CreatedAt, &u.ModifiedAt)

	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		return user.User{}, storeErr(err)
	}

	return u, nil
}

func (r *UsersRepo) Update(ctx context.Context, id string, f user.Fields) (user.User, error) {
	err := f.Validate()

	if err != nil {
		return user.User{}, err
	}

	f = f.Normalize()

	var u user.User

	// GREATEST keeps modified_at monotonic if the db clock steps back
	err = r.pool.QueryRow(
		ctx,
		`UPDATE users
			SET name = $2,
					email = $3,
					age = $4,
					city = $5,
					modified_at = GREATEST($6, modified_at)
		WHERE id = $1
		RETURNING `+userColumns,
		id,
		f.Name,
		f.Email,
		f.Age,
		f.City,
		r.now().UTC().Truncate(time.Microsecond),
	).Scan(
		&u.ID,
		&u.Name,
		&u.Email,
		&u.Age,
		&u.City,
		&u.CreatedAt,
		&u.ModifiedAt,
	)

	if err != nil {
		// if there are no rows matching the id
		if errors.Is(err, pgx.ErrNoRows) {
			return user.User{}, user.ErrNotFound
		}
		// if it is any other type of error
		return user.User{}, storeErr(err)
	}

	return u, nil
}

func (r *UsersRepo) Delete(ctx context.Context, id string) error {
	tag, err := r.pool.Exec(ctx, `
		DELETE FROM users WHERE id = $1
	`, id)

	if err != nil {
		return storeErr(err)
	}

	// if no rows were deleted as a result return a not found error
	if tag.RowsAffected() == 0 {
		return user.ErrNotFound
	}

	return nil
}

func (r *UsersRepo) Ping(ctx context.Context) error {
	return storeErr(r.pool.Ping(ctx))
}

func (r *UsersRepo) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

// storeErr marks connectivity failures with user.ErrStoreUnavailable.
func storeErr(err error) error {
	if err == nil {
		return nil
	}

	var connectErr *pgconn.ConnectError
	var netErr net.Error

	switch {
	case errors.As(err, &connectErr),
		errors.As(err, &netErr),
		errors.Is(err, context.DeadlineExceeded),
		pgconn.Timeout(err):
		return fmt.Errorf("%w: %v", user.ErrStoreUnavailable, err)
	}

	return err
}
