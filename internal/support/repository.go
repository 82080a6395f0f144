package support

import (
	"context"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// Repository abstracts support-content persistence. Announcements,
// topics and FAQs are seeded content; only feedback is written through
// the API.
type Repository interface {
	ListAnnouncements(ctx context.Context, role string, page, limit int) ([]Announcement, int, error)
	ListHelpTopics(ctx context.Context, category, search string, page, limit int) ([]HelpTopic, int, error)
	BumpTopicViews(ctx context.Context, ids []int64) error
	ListFAQs(ctx context.Context, category string, page, limit int) ([]FAQ, int, error)
	InsertFeedback(ctx context.Context, f Feedback) (Feedback, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository persists support content in PostgreSQL.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

func (r *repository) ListAnnouncements(ctx context.Context, role string, page, limit int) ([]Announcement, int, error) {
	var total int
	err := r.pool.QueryRow(ctx, `SELECT COUNT(*) FROM announcements
		WHERE published AND $1 = ANY(target_roles)
		AND (expires_at IS NULL OR expires_at > NOW())`, role).Scan(&total)
	if err != nil {
		return nil, 0, shared.Storage(err)
	}

	offset := (page - 1) * limit
	if offset < 0 {
		offset = 0
	}
	rows, err := r.pool.Query(ctx, `SELECT a.id, a.title, a.content, a.author_id, u.name, a.importance,
			a.target_roles, a.published, a.expires_at, a.created_at
		FROM announcements a
		JOIN users u ON u.id = a.author_id
		WHERE a.published AND $1 = ANY(a.target_roles)
		AND (a.expires_at IS NULL OR a.expires_at > NOW())
		ORDER BY a.created_at DESC, a.id DESC
		LIMIT $2 OFFSET $3`, role, limit, offset)
	if err != nil {
		return nil, 0, shared.Storage(err)
	}
	defer rows.Close()

	var announcements []Announcement
	for rows.Next() {
		var a Announcement
		err := rows.Scan(&a.ID, &a.Title, &a.Content, &a.AuthorID, &a.AuthorName, &a.Importance,
			&a.TargetRoles, &a.Published, &a.ExpiresAt, &a.CreatedAt)
		if err != nil {
			return nil, 0, shared.Storage(err)
		}
		announcements = append(announcements, a)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.Storage(err)
	}
	return announcements, total, nil
}

func (r *repository) ListHelpTopics(ctx context.Context, category, search string, page, limit int) ([]HelpTopic, int, error) {
	where := sq.And{sq.Eq{"published": true}}
	if category != "" {
		where = append(where, sq.Eq{"category": category})
	}
	if search != "" {
		like := "%" + search + "%"
		where = append(where, sq.Or{sq.ILike{"title": like}, sq.ILike{"content": like}})
	}

	sql, args, err := psql.Select("COUNT(*)").From("help_topics").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, shared.Storage(err)
	}

	query := psql.Select("id, title, content, category, tags, view_count, published, sort_order, created_at").
		From("help_topics").Where(where).OrderBy("sort_order ASC", "created_at DESC")
	if limit > 0 {
		offset := (page - 1) * limit
		if offset < 0 {
			offset = 0
		}
		query = query.Limit(uint64(limit)).Offset(uint64(offset))
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

	var topics []HelpTopic
	for rows.Next() {
		var t HelpTopic
		err := rows.Scan(&t.ID, &t.Title, &t.Content, &t.Category, &t.Tags, &t.ViewCount, &t.Published, &t.Order, &t.CreatedAt)
		if err != nil {
			return nil, 0, shared.Storage(err)
		}
		topics = append(topics, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.Storage(err)
	}
	return topics, total, nil
}

func (r *repository) BumpTopicViews(ctx context.Context, ids []int64) error {
	if len(ids) == 0 {
		return nil
	}
	_, err := r.pool.Exec(ctx, "UPDATE help_topics SET view_count = view_count + 1 WHERE id = ANY($1)", ids)
	if err != nil {
		return shared.Storage(err)
	}
	return nil
}

func (r *repository) ListFAQs(ctx context.Context, category string, page, limit int) ([]FAQ, int, error) {
	where := sq.And{sq.Eq{"published": true}}
	if category != "" {
		where = append(where, sq.Eq{"category": category})
	}

	sql, args, err := psql.Select("COUNT(*)").From("faqs").Where(where).ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, shared.Storage(err)
	}

	query := psql.Select("id, question, answer, category, view_count, helpful, not_helpful, published, sort_order").
		From("faqs").Where(where).OrderBy("sort_order ASC", "view_count DESC")
	if limit > 0 {
		offset := (page - 1) * limit
		if offset < 0 {
			offset = 0
		}
		query = query.Limit(uint64(limit)).Offset(uint64(offset))
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

	var faqs []FAQ
	for rows.Next() {
		var f FAQ
		err := rows.Scan(&f.ID, &f.Question, &f.Answer, &f.Category, &f.ViewCount, &f.Helpful, &f.NotHelpful, &f.Published, &f.Order)
		if err != nil {
			return nil, 0, shared.Storage(err)
		}
		faqs = append(faqs, f)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.Storage(err)
	}
	return faqs, total, nil
}

func (r *repository) InsertFeedback(ctx context.Context, f Feedback) (Feedback, error) {
	row := r.pool.QueryRow(ctx, `INSERT INTO feedback (user_id, message, category, status, priority, email, user_agent, created_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8)
		RETURNING id, user_id, message, category, status, priority, email, user_agent, created_at`,
		f.UserID, f.Message, f.Category, f.Status, f.Priority, f.Email, f.UserAgent, time.Now().UTC())
	var created Feedback
	err := row.Scan(&created.ID, &created.UserID, &created.Message, &created.Category, &created.Status,
		&created.Priority, &created.Email, &created.UserAgent, &created.CreatedAt)
	if err != nil {
		return Feedback{}, shared.Storage(err)
	}
	return created, nil
}
