package users

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// Repository abstracts notification and task persistence. Every query
// is scoped to a single user; cross-user reads are not expressible.
type Repository interface {
	ListNotifications(ctx context.Context, userID int64, page, limit int) ([]Notification, int, error)
	InsertNotification(ctx context.Context, n Notification) (Notification, error)
	MarkNotificationRead(ctx context.Context, id, userID int64) (Notification, error)
	ListTasks(ctx context.Context, userID int64, filter TaskFilter) ([]Task, int, error)
	InsertTask(ctx context.Context, t Task) (Task, error)
	UpdateTask(ctx context.Context, t Task) (Task, error)
	GetTask(ctx context.Context, id, userID int64) (Task, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository persists notifications and tasks in PostgreSQL.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const notificationColumns = "id, user_id, title, message, type, read, action_url, created_at"

func scanNotification(row pgx.Row) (Notification, error) {
	var n Notification
	err := row.Scan(&n.ID, &n.UserID, &n.Title, &n.Message, &n.Type, &n.Read, &n.ActionURL, &n.CreatedAt)
	return n, err
}

func (r *repository) ListNotifications(ctx context.Context, userID int64, page, limit int) ([]Notification, int, error) {
	var total int
	if err := r.pool.QueryRow(ctx, "SELECT COUNT(*) FROM notifications WHERE user_id = $1", userID).Scan(&total); err != nil {
		return nil, 0, shared.Storage(err)
	}

	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, "SELECT "+notificationColumns+` FROM notifications
		WHERE user_id = $1 ORDER BY created_at DESC, id DESC LIMIT $2 OFFSET $3`, userID, limit, offset)
	if err != nil {
		return nil, 0, shared.Storage(err)
	}
	defer rows.Close()

	var notifications []Notification
	for rows.Next() {
		n, err := scanNotification(rows)
		if err != nil {
			return nil, 0, shared.Storage(err)
		}
		notifications = append(notifications, n)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.Storage(err)
	}
	return notifications, total, nil
}

func (r *repository) InsertNotification(ctx context.Context, n Notification) (Notification, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO notifications (user_id, title, message, type, read, action_url, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7)
		RETURNING `+notificationColumns,
		n.UserID, n.Title, n.Message, n.Type, n.Read, n.ActionURL, time.Now().UTC())
	created, err := scanNotification(row)
	if err != nil {
		return Notification{}, shared.Storage(err)
	}
	return created, nil
}

func (r *repository) MarkNotificationRead(ctx context.Context, id, userID int64) (Notification, error) {
	row := r.pool.QueryRow(ctx, `UPDATE notifications SET read = TRUE
		WHERE id = $1 AND user_id = $2
		RETURNING `+notificationColumns, id, userID)
	n, err := scanNotification(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Notification{}, shared.NewError(shared.KindNotFound, "id", "notification not found")
		}
		return Notification{}, shared.Storage(err)
	}
	return n, nil
}

const taskColumns = "id, user_id, title, description, status, priority, due_date, assigned_by, created_at, updated_at"

func scanTask(row pgx.Row) (Task, error) {
	var t Task
	err := row.Scan(&t.ID, &t.UserID, &t.Title, &t.Description, &t.Status, &t.Priority, &t.DueDate, &t.AssignedBy, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func (r *repository) ListTasks(ctx context.Context, userID int64, filter TaskFilter) ([]Task, int, error) {
	where := sq.And{sq.Eq{"user_id": userID}}
	if filter.Status != "" {
		where = append(where, sq.Eq{"status": filter.Status})
	}
	if filter.Priority != "" {
		where = append(where, sq.Eq{"priority": filter.Priority})
	}

	sql, args, err := psql.Select("COUNT(*)").From("tasks").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, shared.Storage(err)
	}

	query := psql.Select(taskColumns).From("tasks").Where(where).OrderBy("due_date ASC", "created_at DESC")
	if filter.Limit > 0 {
		offset := (filter.Page - 1) * filter.Limit
		if offset < 0 {
			offset = 0
		}
		query = query.Limit(uint64(filter.Limit)).Offset(uint64(offset))
	}
	sql, args, err = query.ToSql()
	if err != nil {
		return nil, 0, err
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, 0, shared.Storage(err)
	}
	defer rows.Close()

	var tasks []Task
	for rows.Next() {
		t, err := scanTask(rows)
		if err != nil {
			return nil, 0, shared.Storage(err)
		}
		tasks = append(tasks, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.Storage(err)
	}
	return tasks, total, nil
}

func (r *repository) InsertTask(ctx context.Context, t Task) (Task, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `INSERT INTO tasks (user_id, title, description, status, priority, due_date, assigned_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $8)
		RETURNING `+taskColumns,
		t.UserID, t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.AssignedBy, now)
	created, err := scanTask(row)
	if err != nil {
		return Task{}, shared.Storage(err)
	}
	return created, nil
}

func (r *repository) UpdateTask(ctx context.Context, t Task) (Task, error) {
	row := r.pool.QueryRow(ctx, `UPDATE tasks SET
		title = $1, description = $2, status = $3, priority = $4, due_date = $5, updated_at = NOW()
		WHERE id = $6 AND user_id = $7
		RETURNING `+taskColumns,
		t.Title, t.Description, t.Status, t.Priority, t.DueDate, t.ID, t.UserID)
	updated, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, shared.NewError(shared.KindNotFound, "id", "task not found")
		}
		return Task{}, shared.Storage(err)
	}
	return updated, nil
}

func (r *repository) GetTask(ctx context.Context, id, userID int64) (Task, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+taskColumns+" FROM tasks WHERE id = $1 AND user_id = $2", id, userID)
	t, err := scanTask(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Task{}, shared.NewError(shared.KindNotFound, "id", "task not found")
		}
		return Task{}, shared.Storage(err)
	}
	return t, nil
}
