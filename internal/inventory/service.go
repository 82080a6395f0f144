package inventory

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	"github.com/google/uuid"

	"github.com/vantage-erp/vantage-erp/internal/platform/cache"
	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// AuditPort abstracts audit logging functionality.
type AuditPort interface {
	Record(ctx context.Context, log shared.AuditLog) error
}

// Service is the only component permitted to mutate quantity on hand.
// Derived reads (metrics, classification, forecasts) go through a
// versioned cache that mutations invalidate.
type Service struct {
	repo   Repository
	audit  AuditPort
	cache  *cache.JSONCache
	logger *slog.Logger
}

// NewService builds Service. audit and cache may be nil in tests.
func NewService(repo Repository, audit AuditPort, derived *cache.JSONCache, logger *slog.Logger) *Service {
	if logger == nil {
		logger = slog.Default()
	}
	return &Service{repo: repo, audit: audit, cache: derived, logger: logger}
}

// List returns a filtered product page plus the unpaginated total. The
// low-stock filter applies after the query because the predicate is
// derived, never stored.
func (s *Service) List(ctx context.Context, filter ListFilter) ([]Product, int, error) {
	products, total, err := s.repo.List(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	if filter.LowStock {
		filtered := products[:0]
		for _, p := range products {
			if p.IsLowStock() {
				filtered = append(filtered, p)
			}
		}
		products = filtered
	}
	return products, total, nil
}

// Get loads a single product.
func (s *Service) Get(ctx context.Context, id int64) (Product, error) {
	return s.repo.Get(ctx, id)
}

// CreateProduct inserts a new product. SKU uniqueness is enforced
// against active and inactive rows alike; soft-deleted records keep
// their SKU reserved.
func (s *Service) CreateProduct(ctx context.Context, in CreateProductInput) (Product, error) {
	sku := NormalizeSKU(in.SKU)
	if sku == "" {
		return Product{}, shared.Invalid("sku", "sku is required")
	}
	if in.Name == "" {
		return Product{}, shared.Invalid("name", "name is required")
	}
	if in.Category == "" {
		return Product{}, shared.Invalid("category", "category is required")
	}
	if in.UnitCost < 0 {
		return Product{}, shared.Invalid("unitCost", "unit cost must be >= 0")
	}

	quantity := 0
	if in.Quantity != nil {
		if *in.Quantity < 0 {
			return Product{}, shared.Invalid("quantityOnHand", "quantity must be >= 0")
		}
		quantity = *in.Quantity
	}
	reorder := defaultReorderLevel
	if in.ReorderLevel != nil {
		if *in.ReorderLevel < 0 {
			return Product{}, shared.Invalid("reorderLevel", "reorder level must be >= 0")
		}
		reorder = *in.ReorderLevel
	}

	exists, err := s.repo.SKUExists(ctx, sku, 0)
	if err != nil {
		return Product{}, err
	}
	if exists {
		return Product{}, shared.NewError(shared.KindDuplicateSKU, "sku", "product with this SKU already exists")
	}

	created, err := s.repo.Insert(ctx, Product{
		SKU:            sku,
		Name:           in.Name,
		Category:       in.Category,
		Description:    in.Description,
		Supplier:       in.Supplier,
		Location:       in.Location,
		QuantityOnHand: quantity,
		UnitCost:       in.UnitCost,
		ReorderLevel:   reorder,
		IsActive:       true,
	})
	if err != nil {
		return Product{}, err
	}
	s.recordAudit(ctx, "inventory:create", created.ID, map[string]any{"sku": created.SKU})
	s.bumpDerived(ctx)
	return created, nil
}

// UpdateProduct applies a sparse patch. A SKU change re-runs the
// duplicate check excluding the product's own id.
func (s *Service) UpdateProduct(ctx context.Context, id int64, patch UpdateProductInput) (Product, error) {
	p, err := s.repo.Get(ctx, id)
	if err != nil {
		return Product{}, err
	}

	if patch.SKU != nil {
		sku := NormalizeSKU(*patch.SKU)
		if sku == "" {
			return Product{}, shared.Invalid("sku", "sku must not be empty")
		}
		if sku != p.SKU {
			exists, err := s.repo.SKUExists(ctx, sku, id)
			if err != nil {
				return Product{}, err
			}
			if exists {
				return Product{}, shared.NewError(shared.KindDuplicateSKU, "sku", "product with this SKU already exists")
			}
		}
		p.SKU = sku
	}
	if patch.Name != nil {
		if *patch.Name == "" {
			return Product{}, shared.Invalid("name", "name must not be empty")
		}
		p.Name = *patch.Name
	}
	if patch.Category != nil {
		p.Category = *patch.Category
	}
	if patch.Description != nil {
		p.Description = *patch.Description
	}
	if patch.Supplier != nil {
		p.Supplier = *patch.Supplier
	}
	if patch.Location != nil {
		p.Location = *patch.Location
	}
	if patch.UnitCost != nil {
		if *patch.UnitCost < 0 {
			return Product{}, shared.Invalid("unitCost", "unit cost must be >= 0")
		}
		p.UnitCost = *patch.UnitCost
	}
	if patch.Quantity != nil {
		if *patch.Quantity < 0 {
			return Product{}, shared.Invalid("quantityOnHand", "quantity must be >= 0")
		}
		p.QuantityOnHand = *patch.Quantity
	}
	if patch.ReorderLevel != nil {
		if *patch.ReorderLevel < 0 {
			return Product{}, shared.Invalid("reorderLevel", "reorder level must be >= 0")
		}
		p.ReorderLevel = *patch.ReorderLevel
	}
	if patch.IsActive != nil {
		p.IsActive = *patch.IsActive
	}

	updated, err := s.repo.Update(ctx, p)
	if err != nil {
		return Product{}, err
	}
	s.recordAudit(ctx, "inventory:update", updated.ID, map[string]any{"sku": updated.SKU})
	s.bumpDerived(ctx)
	return updated, nil
}

// Restock adds quantity and stamps last_restocked. No upper bound.
func (s *Service) Restock(ctx context.Context, id int64, quantity int, ref string) (Product, error) {
	if quantity < 1 {
		return Product{}, shared.Invalid("quantity", "restock quantity must be >= 1")
	}
	if err := validateRef(ref); err != nil {
		return Product{}, err
	}
	p, err := s.repo.AddQuantity(ctx, id, quantity, true)
	if err != nil {
		return Product{}, err
	}
	s.recordAudit(ctx, "inventory:restock", p.ID, map[string]any{"sku": p.SKU, "quantity": quantity, "ref": ref})
	s.bumpDerived(ctx)
	return p, nil
}

// Adjust applies a signed delta. The storage layer rejects any result
// below zero and the record is left unchanged. The reason travels into
// the audit log only; it is not stored on the product row.
func (s *Service) Adjust(ctx context.Context, id int64, delta int, reason, ref string) (Product, error) {
	if err := validateRef(ref); err != nil {
		return Product{}, err
	}
	p, err := s.repo.AddQuantity(ctx, id, delta, false)
	if err != nil {
		return Product{}, err
	}
	s.recordAudit(ctx, "inventory:adjust", p.ID, map[string]any{"sku": p.SKU, "delta": delta, "reason": reason, "ref": ref})
	s.bumpDerived(ctx)
	return p, nil
}

// Deactivate soft-deletes a product. Re-deactivating is a no-op.
func (s *Service) Deactivate(ctx context.Context, id int64) (Product, error) {
	p, err := s.repo.Deactivate(ctx, id)
	if err != nil {
		return Product{}, err
	}
	s.recordAudit(ctx, "inventory:deactivate", p.ID, map[string]any{"sku": p.SKU})
	s.bumpDerived(ctx)
	return p, nil
}

// LowStock lists active products at or below their reorder level.
func (s *Service) LowStock(ctx context.Context) ([]Product, error) {
	products, err := s.repo.ListActive(ctx)
	if err != nil {
		return nil, err
	}
	low := make([]Product, 0)
	for _, p := range products {
		if p.IsLowStock() {
			low = append(low, p)
		}
	}
	return low, nil
}

// Metrics aggregates stock figures across active products. Results are
// served from the derived cache; mutations bump the version.
func (s *Service) Metrics(ctx context.Context) (Metrics, error) {
	var metrics Metrics
	key, err := s.cacheKey(ctx, "inventory", "metrics")
	if err != nil {
		return Metrics{}, err
	}
	err = s.cache.FetchJSON(ctx, key, &metrics, func(ctx context.Context) (interface{}, error) {
		products, err := s.repo.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		return AggregateMetrics(products), nil
	})
	if err != nil {
		return Metrics{}, err
	}
	return metrics, nil
}

// StockOptimization classifies every active product. Snapshot reads are
// best-effort with respect to concurrent writes.
func (s *Service) StockOptimization(ctx context.Context) (OptimizationReport, error) {
	var report OptimizationReport
	key, err := s.cacheKey(ctx, "inventory", "optimization")
	if err != nil {
		return OptimizationReport{}, err
	}
	err = s.cache.FetchJSON(ctx, key, &report, func(ctx context.Context) (interface{}, error) {
		products, err := s.repo.ListActive(ctx)
		if err != nil {
			return nil, err
		}
		rep, err := BuildOptimization(products, time.Now().UTC())
		if err != nil {
			return nil, err
		}
		return rep, nil
	})
	if err != nil {
		return OptimizationReport{}, err
	}
	return report, nil
}

// PredictDemand forecasts the given products over the horizon. Ids that
// resolve to nothing active yield NoEligibleProducts.
func (s *Service) PredictDemand(ctx context.Context, productIDs []int64, horizonDays int) (ForecastReport, error) {
	if len(productIDs) == 0 {
		return ForecastReport{}, shared.Invalid("productIds", "at least one product id is required")
	}
	if horizonDays == 0 {
		horizonDays = DefaultHorizonDays
	}
	if horizonDays < MinHorizonDays || horizonDays > MaxHorizonDays {
		return ForecastReport{}, shared.Invalid("forecastDays", fmt.Sprintf("forecast horizon must be between %d and %d days", MinHorizonDays, MaxHorizonDays))
	}
	products, err := s.repo.ListActiveByIDs(ctx, productIDs)
	if err != nil {
		return ForecastReport{}, err
	}
	return ForecastAll(products, horizonDays, time.Now().UTC())
}

func (s *Service) cacheKey(ctx context.Context, parts ...string) (string, error) {
	return s.cache.BuildKey(ctx, parts...)
}

func (s *Service) bumpDerived(ctx context.Context) {
	if err := s.cache.Bump(ctx); err != nil {
		s.logger.Warn("bump derived cache", slog.Any("error", err))
	}
}

func (s *Service) recordAudit(ctx context.Context, action string, productID int64, meta map[string]any) {
	if s.audit == nil {
		return
	}
	var actorID int64
	if id, ok := shared.IdentityFromContext(ctx); ok {
		actorID = id.UserID
	}
	err := s.audit.Record(ctx, shared.AuditLog{
		ActorID:  actorID,
		Action:   action,
		Entity:   "product",
		EntityID: fmt.Sprintf("%d", productID),
		Meta:     meta,
	})
	if err != nil {
		s.logger.Warn("record audit", slog.String("action", action), slog.Any("error", err))
	}
}

func validateRef(ref string) error {
	if ref == "" {
		return nil
	}
	if _, err := uuid.Parse(ref); err != nil {
		return shared.Invalid("ref", "movement reference must be a valid UUID")
	}
	return nil
}
