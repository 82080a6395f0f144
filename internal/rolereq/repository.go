package rolereq

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantage-erp/vantage-erp/internal/platform/db"
	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// Repository abstracts role-request persistence.
type Repository interface {
	Create(ctx context.Context, req RoleRequest) (RoleRequest, error)
	HasPending(ctx context.Context, userID int64) (bool, error)
	Get(ctx context.Context, id int64) (RoleRequest, error)
	ListByUser(ctx context.Context, userID int64) ([]RoleRequest, error)
	ListAll(ctx context.Context, page, limit int) ([]RoleRequest, int, error)
	// Decide moves a pending request to approved or declined. Approval
	// also updates the requester's role in the same transaction.
	Decide(ctx context.Context, id int64, status Status, decidedBy int64) (RoleRequest, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository persists role requests in PostgreSQL.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

const requestColumns = "id, user_id, requested_role, message, status, decided_by, decided_at, created_at, updated_at"

func scanRequest(row pgx.Row) (RoleRequest, error) {
	var rr RoleRequest
	err := row.Scan(&rr.ID, &rr.UserID, &rr.RequestedRole, &rr.Message, &rr.Status,
		&rr.DecidedBy, &rr.DecidedAt, &rr.CreatedAt, &rr.UpdatedAt)
	return rr, err
}

func (r *repository) Create(ctx context.Context, req RoleRequest) (RoleRequest, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO role_requests (user_id, requested_role, message, status)
		VALUES ($1, $2, $3, $4)
		RETURNING `+requestColumns,
		req.UserID, req.RequestedRole, req.Message, StatusPending)
	created, err := scanRequest(row)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == "23505" {
			return RoleRequest{}, shared.NewError(shared.KindConflict, "userId", "you already have a pending role request")
		}
		return RoleRequest{}, shared.Storage(err)
	}
	return created, nil
}

func (r *repository) HasPending(ctx context.Context, userID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx,
		"SELECT EXISTS (SELECT 1 FROM role_requests WHERE user_id = $1 AND status = $2)",
		userID, StatusPending).Scan(&exists)
	if err != nil {
		return false, shared.Storage(err)
	}
	return exists, nil
}

func (r *repository) Get(ctx context.Context, id int64) (RoleRequest, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+requestColumns+" FROM role_requests WHERE id = $1", id)
	rr, err := scanRequest(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return RoleRequest{}, shared.NewError(shared.KindNotFound, "id", "role request not found")
		}
		return RoleRequest{}, shared.Storage(err)
	}
	return rr, nil
}

func (r *repository) ListByUser(ctx context.Context, userID int64) ([]RoleRequest, error) {
	rows, err := r.pool.Query(ctx,
		"SELECT "+requestColumns+" FROM role_requests WHERE user_id = $1 ORDER BY created_at DESC",
		userID)
	if err != nil {
		return nil, shared.Storage(err)
	}
	defer rows.Close()

	var requests []RoleRequest
	for rows.Next() {
		rr, err := scanRequest(rows)
		if err != nil {
			return nil, shared.Storage(err)
		}
		requests = append(requests, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage(err)
	}
	return requests, nil
}

func (r *repository) ListAll(ctx context.Context, page, limit int) ([]RoleRequest, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM role_requests").Scan(&total); err != nil {
		return nil, 0, shared.Storage(err)
	}

	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `SELECT rr.id, rr.user_id, u.name, u.email, rr.requested_role,
		rr.message, rr.status, rr.decided_by, rr.decided_at, rr.created_at, rr.updated_at
		FROM role_requests rr
		JOIN users u ON u.id = rr.user_id
		ORDER BY rr.created_at DESC
		LIMIT $1 OFFSET $2`, limit, offset)
	if err != nil {
		return nil, 0, shared.Storage(err)
	}
	defer rows.Close()

	var requests []RoleRequest
	for rows.Next() {
		var rr RoleRequest
		if err := rows.Scan(&rr.ID, &rr.UserID, &rr.UserName, &rr.UserEmail, &rr.RequestedRole,
			&rr.Message, &rr.Status, &rr.DecidedBy, &rr.DecidedAt, &rr.CreatedAt, &rr.UpdatedAt); err != nil {
			return nil, 0, shared.Storage(err)
		}
		requests = append(requests, rr)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.Storage(err)
	}
	return requests, total, nil
}

func (r *repository) Decide(ctx context.Context, id int64, status Status, decidedBy int64) (RoleRequest, error) {
	var decided RoleRequest
	err := db.WithTx(ctx, r.pool, func(tx pgx.Tx) error {
		row := tx.QueryRow(ctx, "SELECT "+requestColumns+" FROM role_requests WHERE id = $1 FOR UPDATE", id)
		current, err := scanRequest(row)
		if err != nil {
			if errors.Is(err, pgx.ErrNoRows) {
				return shared.NewError(shared.KindNotFound, "id", "role request not found")
			}
			return shared.Storage(err)
		}
		if current.Status != StatusPending {
			return shared.NewError(shared.KindConflict, "status", "Request already processed")
		}

		row = tx.QueryRow(ctx, `UPDATE role_requests
			SET status = $1, decided_by = $2, decided_at = NOW(), updated_at = NOW()
			WHERE id = $3
			RETURNING `+requestColumns, status, decidedBy, id)
		decided, err = scanRequest(row)
		if err != nil {
			return shared.Storage(err)
		}

		if status == StatusApproved {
			if _, err := tx.Exec(ctx, "UPDATE users SET role = $1, updated_at = NOW() WHERE id = $2",
				decided.RequestedRole, decided.UserID); err != nil {
				return shared.Storage(err)
			}
		}
		return nil
	})
	if err != nil {
		return RoleRequest{}, err
	}
	return decided, nil
}
