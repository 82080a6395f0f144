package finance

import (
	"context"
	"errors"
	"time"

	sq "github.com/Masterminds/squirrel"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// Repository abstracts transaction persistence.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Transaction, int, error)
	Get(ctx context.Context, id int64) (Transaction, error)
	Insert(ctx context.Context, tx Transaction) (Transaction, error)
	Update(ctx context.Context, tx Transaction) (Transaction, error)
	Delete(ctx context.Context, id int64) error
	CategoryTotals(ctx context.Context, status Status, from, to *time.Time) (map[Category]float64, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository persists transactions in PostgreSQL.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const txColumns = "id, date, vendor, amount, status, category, description, invoice_number, payment_method, created_by, created_at, updated_at"

func scanTransaction(row pgx.Row) (Transaction, error) {
	var t Transaction
	err := row.Scan(&t.ID, &t.Date, &t.Vendor, &t.Amount, &t.Status, &t.Category, &t.Description,
		&t.InvoiceNumber, &t.PaymentMethod, &t.CreatedBy, &t.CreatedAt, &t.UpdatedAt)
	return t, err
}

func listWhere(filter ListFilter) sq.And {
	where := sq.And{}
	if filter.Status != "" {
		where = append(where, sq.Eq{"status": filter.Status})
	}
	if filter.Category != "" {
		where = append(where, sq.Eq{"category": filter.Category})
	}
	if filter.From != nil {
		where = append(where, sq.GtOrEq{"date": *filter.From})
	}
	if filter.To != nil {
		where = append(where, sq.LtOrEq{"date": *filter.To})
	}
	return where
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Transaction, int, error) {
	where := listWhere(filter)

	countQuery := psql.Select("COUNT(*)").From("transactions")
	if len(where) > 0 {
		countQuery = countQuery.Where(where)
	}
	sql, args, err := countQuery.ToSql()
	if err != nil {
		return nil, 0, err
	}
	var total int
	if err := r.pool.QueryRow(ctx, sql, args...).Scan(&total); err != nil {
		return nil, 0, shared.Storage(err)
	}

	query := psql.Select(txColumns).From("transactions").OrderBy("date DESC", "id DESC")
	if len(where) > 0 {
		query = query.Where(where)
	}
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

	var transactions []Transaction
	for rows.Next() {
		t, err := scanTransaction(rows)
		if err != nil {
			return nil, 0, shared.Storage(err)
		}
		transactions = append(transactions, t)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.Storage(err)
	}
	return transactions, total, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Transaction, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+txColumns+" FROM transactions WHERE id = $1", id)
	t, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, shared.NewError(shared.KindNotFound, "id", "transaction not found")
		}
		return Transaction{}, shared.Storage(err)
	}
	return t, nil
}

func (r *repository) Insert(ctx context.Context, t Transaction) (Transaction, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `INSERT INTO transactions
		(date, vendor, amount, status, category, description, invoice_number, payment_method, created_by, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $10)
		RETURNING `+txColumns,
		t.Date, t.Vendor, t.Amount, t.Status, t.Category, t.Description, t.InvoiceNumber, t.PaymentMethod, t.CreatedBy, now)
	created, err := scanTransaction(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Transaction{}, shared.NewError(shared.KindConflict, "invoiceNumber", "invoice number already exists")
		}
		return Transaction{}, shared.Storage(err)
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, t Transaction) (Transaction, error) {
	row := r.pool.QueryRow(ctx, `UPDATE transactions SET
		date = $1, vendor = $2, amount = $3, status = $4, category = $5, description = $6,
		invoice_number = $7, payment_method = $8, updated_at = NOW()
		WHERE id = $9
		RETURNING `+txColumns,
		t.Date, t.Vendor, t.Amount, t.Status, t.Category, t.Description, t.InvoiceNumber, t.PaymentMethod, t.ID)
	updated, err := scanTransaction(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Transaction{}, shared.NewError(shared.KindNotFound, "id", "transaction not found")
		}
		if isUniqueViolation(err) {
			return Transaction{}, shared.NewError(shared.KindConflict, "invoiceNumber", "invoice number already exists")
		}
		return Transaction{}, shared.Storage(err)
	}
	return updated, nil
}

func (r *repository) Delete(ctx context.Context, id int64) error {
	tag, err := r.pool.Exec(ctx, "DELETE FROM transactions WHERE id = $1", id)
	if err != nil {
		return shared.Storage(err)
	}
	if tag.RowsAffected() == 0 {
		return shared.NewError(shared.KindNotFound, "id", "transaction not found")
	}
	return nil
}

func (r *repository) CategoryTotals(ctx context.Context, status Status, from, to *time.Time) (map[Category]float64, error) {
	where := sq.And{sq.Eq{"status": status}}
	if from != nil {
		where = append(where, sq.GtOrEq{"date": *from})
	}
	if to != nil {
		where = append(where, sq.LtOrEq{"date": *to})
	}
	sql, args, err := psql.Select("category", "COALESCE(SUM(amount), 0)").
		From("transactions").Where(where).GroupBy("category").ToSql()
	if err != nil {
		return nil, err
	}

	rows, err := r.pool.Query(ctx, sql, args...)
	if err != nil {
		return nil, shared.Storage(err)
	}
	defer rows.Close()

	totals := make(map[Category]float64)
	for rows.Next() {
		var category Category
		var total float64
		if err := rows.Scan(&category, &total); err != nil {
			return nil, shared.Storage(err)
		}
		totals[category] = total
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage(err)
	}
	return totals, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
