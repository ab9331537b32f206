package repository

import (
	"context"
	"errors"
	"fmt"

	"github.com/deppfellow/jobly/internal/errs"
	"github.com/deppfellow/jobly/internal/sqlerr"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
)

// DBTX is the subset of *pgxpool.Pool (and pgx.Tx) repositories use.
type DBTX interface {
	Exec(ctx context.Context, sql string, args ...any) (pgconn.CommandTag, error)
	Query(ctx context.Context, sql string, args ...any) (pgx.Rows, error)
	QueryRow(ctx context.Context, sql string, args ...any) pgx.Row
}

// User is a row of the users table. Password holds the bcrypt hash and is
// never serialized.
type User struct {
	Username  string `json:"username"`
	Password  string `json:"-"`
	FirstName string `json:"firstName"`
	LastName  string `json:"lastName"`
	Email     string `json:"email"`
	IsAdmin   bool   `json:"isAdmin"`
}

// CreateUserParams is the input of UserRepository.Create.
type CreateUserParams struct {
	Username       string
	HashedPassword string
	FirstName      string
	LastName       string
	Email          string
	IsAdmin        bool
}

// userColumns translates API field names into users columns.
var userColumns = map[string]string{
	"firstName": "first_name",
	"lastName":  "last_name",
	"isAdmin":   "is_admin",
}

const userReturning = `username, first_name, last_name, email, is_admin`

type UserRepository struct {
	db DBTX
}

func NewUserRepository(db DBTX) *UserRepository {
	return &UserRepository{db: db}
}

func (r *UserRepository) Create(ctx context.Context, p CreateUserParams) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx,
		`INSERT INTO users (username, password, first_name, last_name, email, is_admin)
		 VALUES ($1, $2, $3, $4, $5, $6)
		 RETURNING `+userReturning,
		p.Username, p.HashedPassword, p.FirstName, p.LastName, p.Email, p.IsAdmin,
	).Scan(&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return &u, nil
}

// GetWithPassword returns the user including the password hash.
func (r *UserRepository) GetWithPassword(ctx context.Context, username string) (*User, error) {
	var u User
	err := r.db.QueryRow(ctx,
		`SELECT password, `+userReturning+` FROM users WHERE username = $1`,
		username,
	).Scan(&u.Password, &u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin)
	if err != nil {
		return nil, notFoundOr(err, username)
	}
	return &u, nil
}

func (r *UserRepository) Get(ctx context.Context, username string) (*User, error) {
	u, err := r.GetWithPassword(ctx, username)
	if err != nil {
		return nil, err
	}
	u.Password = ""
	return u, nil
}

func (r *UserRepository) List(ctx context.Context) ([]User, error) {
	rows, err := r.db.Query(ctx, `SELECT `+userReturning+` FROM users ORDER BY username`)
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}

	users, err := pgx.CollectRows(rows, func(row pgx.CollectableRow) (User, error) {
		var u User
		err := row.Scan(&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin)
		return u, err
	})
	if err != nil {
		return nil, sqlerr.HandleError(err)
	}
	return users, nil
}

// Update applies a partial update. Field names are the API names
// (firstName, lastName, email, password, isAdmin); the caller is
// responsible for hashing a new password.
func (r *UserRepository) Update(ctx context.Context, username string, spec UpdateSpec) (*User, error) {
	clause, err := PartialUpdate(spec, userColumns)
	if err != nil {
		return nil, err
	}

	query := fmt.Sprintf(`UPDATE users SET %s WHERE username = %s RETURNING %s`,
		clause.Columns, clause.NextPlaceholder(), userReturning)
	args := append(append(make([]any, 0, len(clause.Values)+1), clause.Values...), username)

	var u User
	err = r.db.QueryRow(ctx, query, args...).
		Scan(&u.Username, &u.FirstName, &u.LastName, &u.Email, &u.IsAdmin)
	if err != nil {
		return nil, notFoundOr(err, username)
	}
	return &u, nil
}

func (r *UserRepository) Delete(ctx context.Context, username string) error {
	tag, err := r.db.Exec(ctx, `DELETE FROM users WHERE username = $1`, username)
	if err != nil {
		return sqlerr.HandleError(err)
	}
	if tag.RowsAffected() == 0 {
		return errs.NewNotFoundError("No user: "+username, true, nil)
	}
	return nil
}

func notFoundOr(err error, username string) error {
	if errors.Is(err, pgx.ErrNoRows) {
		return errs.NewNotFoundError("No user: "+username, true, nil)
	}
	return sqlerr.HandleError(err)
}
