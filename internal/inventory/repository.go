package inventory

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

// Repository abstracts product persistence for the service.
type Repository interface {
	List(ctx context.Context, filter ListFilter) ([]Product, int, error)
	Get(ctx context.Context, id int64) (Product, error)
	ListActive(ctx context.Context) ([]Product, error)
	ListActiveByIDs(ctx context.Context, ids []int64) ([]Product, error)
	Insert(ctx context.Context, p Product) (Product, error)
	Update(ctx context.Context, p Product) (Product, error)
	SKUExists(ctx context.Context, sku string, excludeID int64) (bool, error)
	AddQuantity(ctx context.Context, id int64, delta int, restock bool) (Product, error)
	Deactivate(ctx context.Context, id int64) (Product, error)
}

type repository struct {
	pool *pgxpool.Pool
}

// NewRepository persists products in PostgreSQL.
func NewRepository(pool *pgxpool.Pool) Repository {
	return &repository{pool: pool}
}

var psql = sq.StatementBuilder.PlaceholderFormat(sq.Dollar)

const productColumns = "id, sku, name, category, description, supplier, location, quantity_on_hand, unit_cost, reorder_level, is_active, last_restocked, created_at, updated_at"

func scanProduct(row pgx.Row) (Product, error) {
	var p Product
	err := row.Scan(&p.ID, &p.SKU, &p.Name, &p.Category, &p.Description, &p.Supplier, &p.Location,
		&p.QuantityOnHand, &p.UnitCost, &p.ReorderLevel, &p.IsActive, &p.LastRestocked, &p.CreatedAt, &p.UpdatedAt)
	return p, err
}

func (r *repository) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	where := sq.And{}
	if filter.Category != "" {
		where = append(where, sq.Eq{"category": filter.Category})
	}
	if filter.Active != nil {
		where = append(where, sq.Eq{"is_active": *filter.Active})
	}
	if filter.Search != "" {
		like := "%" + filter.Search + "%"
		where = append(where, sq.Or{sq.ILike{"name": like}, sq.ILike{"sku": like}})
	}

	countQuery := psql.Select("COUNT(*)").From("products")
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

	query := psql.Select(productColumns).From("products").OrderBy("name ASC")
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

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, 0, shared.Storage(err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, 0, shared.Storage(err)
	}
	return products, total, nil
}

func (r *repository) Get(ctx context.Context, id int64) (Product, error) {
	row := r.pool.QueryRow(ctx, "SELECT "+productColumns+" FROM products WHERE id = $1", id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.NewError(shared.KindNotFound, "id", "product not found")
		}
		return Product{}, shared.Storage(err)
	}
	return p, nil
}

func (r *repository) ListActive(ctx context.Context) ([]Product, error) {
	rows, err := r.pool.Query(ctx, "SELECT "+productColumns+" FROM products WHERE is_active ORDER BY id")
	if err != nil {
		return nil, shared.Storage(err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, shared.Storage(err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage(err)
	}
	return products, nil
}

func (r *repository) ListActiveByIDs(ctx context.Context, ids []int64) ([]Product, error) {
	if len(ids) == 0 {
		return nil, nil
	}
	rows, err := r.pool.Query(ctx, "SELECT "+productColumns+" FROM products WHERE is_active AND id = ANY($1) ORDER BY id", ids)
	if err != nil {
		return nil, shared.Storage(err)
	}
	defer rows.Close()

	var products []Product
	for rows.Next() {
		p, err := scanProduct(rows)
		if err != nil {
			return nil, shared.Storage(err)
		}
		products = append(products, p)
	}
	if err := rows.Err(); err != nil {
		return nil, shared.Storage(err)
	}
	return products, nil
}

func (r *repository) Insert(ctx context.Context, p Product) (Product, error) {
	now := time.Now().UTC()
	row := r.pool.QueryRow(ctx, `INSERT INTO products
		(sku, name, category, description, supplier, location, quantity_on_hand, unit_cost, reorder_level, is_active, created_at, updated_at)
		VALUES ($1, $2, $3, $4, $5, $6, $7, $8, $9, $10, $11, $11)
		RETURNING `+productColumns,
		p.SKU, p.Name, p.Category, p.Description, p.Supplier, p.Location,
		p.QuantityOnHand, p.UnitCost, p.ReorderLevel, p.IsActive, now)
	created, err := scanProduct(row)
	if err != nil {
		if isUniqueViolation(err) {
			return Product{}, shared.NewError(shared.KindDuplicateSKU, "sku", "product with this SKU already exists")
		}
		return Product{}, shared.Storage(err)
	}
	return created, nil
}

func (r *repository) Update(ctx context.Context, p Product) (Product, error) {
	row := r.pool.QueryRow(ctx, `UPDATE products SET
		sku = $1, name = $2, category = $3, description = $4, supplier = $5, location = $6,
		quantity_on_hand = $7, unit_cost = $8, reorder_level = $9, is_active = $10, updated_at = NOW()
		WHERE id = $11
		RETURNING `+productColumns,
		p.SKU, p.Name, p.Category, p.Description, p.Supplier, p.Location,
		p.QuantityOnHand, p.UnitCost, p.ReorderLevel, p.IsActive, p.ID)
	updated, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.NewError(shared.KindNotFound, "id", "product not found")
		}
		if isUniqueViolation(err) {
			return Product{}, shared.NewError(shared.KindDuplicateSKU, "sku", "product with this SKU already exists")
		}
		return Product{}, shared.Storage(err)
	}
	return updated, nil
}

func (r *repository) SKUExists(ctx context.Context, sku string, excludeID int64) (bool, error) {
	var exists bool
	err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM products WHERE sku = $1 AND id <> $2)", sku, excludeID).Scan(&exists)
	if err != nil {
		return false, shared.Storage(err)
	}
	return exists, nil
}

// AddQuantity applies a signed delta as a single atomic conditional
// update; two concurrent adjustments on the same product cannot lose a
// delta. The guard rejects any result below zero at the storage layer.
func (r *repository) AddQuantity(ctx context.Context, id int64, delta int, restock bool) (Product, error) {
	query := `UPDATE products SET quantity_on_hand = quantity_on_hand + $1, updated_at = NOW()
		WHERE id = $2 AND quantity_on_hand + $1 >= 0
		RETURNING ` + productColumns
	if restock {
		query = `UPDATE products SET quantity_on_hand = quantity_on_hand + $1, last_restocked = NOW(), updated_at = NOW()
			WHERE id = $2 AND quantity_on_hand + $1 >= 0
			RETURNING ` + productColumns
	}
	row := r.pool.QueryRow(ctx, query, delta, id)
	p, err := scanProduct(row)
	if err == nil {
		return p, nil
	}
	if !errors.Is(err, pgx.ErrNoRows) {
		return Product{}, shared.Storage(err)
	}

	// Miss: distinguish a missing row from a rejected negative result.
	var exists bool
	if err := r.pool.QueryRow(ctx, "SELECT EXISTS(SELECT 1 FROM products WHERE id = $1)", id).Scan(&exists); err != nil {
		return Product{}, shared.Storage(err)
	}
	if !exists {
		return Product{}, shared.NewError(shared.KindNotFound, "id", "product not found")
	}
	return Product{}, shared.NewError(shared.KindInsufficientQuantity, "quantity", "adjustment would drive quantity below zero")
}

func (r *repository) Deactivate(ctx context.Context, id int64) (Product, error) {
	row := r.pool.QueryRow(ctx, `UPDATE products SET is_active = FALSE, updated_at = NOW() WHERE id = $1 RETURNING `+productColumns, id)
	p, err := scanProduct(row)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return Product{}, shared.NewError(shared.KindNotFound, "id", "product not found")
		}
		return Product{}, shared.Storage(err)
	}
	return p, nil
}

func isUniqueViolation(err error) bool {
	var pgErr *pgconn.PgError
	return errors.As(err, &pgErr) && pgErr.Code == "23505"
}
