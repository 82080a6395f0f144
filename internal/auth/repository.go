package auth

import (
	"context"
	"errors"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// Repository abstracts account persistence.
type Repository interface {
	Create(ctx context.Context, u User) (User, error)
	GetByEmail(ctx context.Context, email string) (User, error)
	GetByID(ctx context.Context, id int64) (User, error)
	ListByRoles(ctx context.Context, roles ...shared.Role) ([]User, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository persists accounts in PostgreSQL.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const userColumns = "id, name, email, password_hash, role, is_active, created_at, updated_at"

func scanUser(row pgx.Row) (User, error) {
	var u User
	err := row.Scan(&u.ID, &u.Name, &u.Email, &u.PasswordHash, &u.Role, &u.IsActive, &u.CreatedAt, &u.UpdatedAt)
	return u, err
}

func (r *repository) Create(ctx context.Context, u User) (User, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `INSERT INTO users (name, email, password_hash, role, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $6)
		RETURNING `+userColumns,
		u.Name, u.Email, u.PasswordHash, u.Role, u.IsActive, now)
	created, err := scanUser(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return User{}, shared.NewError(shared.KindConflict, "email", "email already registered")
		}
		return User{}, shared.Storage(err)
	}
	return created, nil
}

func (r *repository) GetByEmail(ctx context.Context, email string) (User, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE email = $1", email)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.NewError(shared.KindNotFound, "email", "user not found")
		}
		return User{}, shared.Storage(err)
	}
	return u, nil
}

func (r *repository) GetByID(ctx context.Context, id int64) (User, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+userColumns+" FROM users WHERE id = $1", id)
	u, err := scanUser(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return User{}, shared.NewError(shared.KindNotFound, "id", "user not found")
		}
		return User{}, shared.Storage(err)
	}
	return u, nil
}

func (r *repository) ListByRoles(ctx context.Context, roles ...shared.Role) ([]User, error) {
	names := make([]string, 0, len(roles))
	for _, role := range roles {
		names = append(names, string(role))
	}
	rows, err := r.pool.Query(ctx, "SELECT "+userColumns+" FROM users WHERE is_active AND role = ANY($1) ORDER BY id", names)
	if err != nil {
		return nil, shared.Storage(err)
	}
	defer rows.Close()

	var users []User
	for rows.Next() {
		u, err := scanUser(rows)
		if err != nil {
			return nil, shared.Storage(err)
		}
		users = append(users, u)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage(err)
	}
	return users, nil
}
