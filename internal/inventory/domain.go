// Package inventory owns product stock records and the derived
// stock-health computations built on top of them.
package inventory

import (
	"math"
	"strings"
	"time"
)

// Product is a stock-keeping record. QuantityOnHand is mutated only
// through the service's restock/adjust/update operations and never goes
// negative.
type Product struct {
	ID             int64
	SKU            string
	Name           string
	Category       string
	Description    string
	Supplier       string
	Location       string
	QuantityOnHand int
	UnitCost       float64
	ReorderLevel   int
	IsActive       bool
	LastRestocked  *time.Time
	CreatedAt      time.Time
	UpdatedAt      time.Time
}

// IsLowStock reports whether the product sits at or below its reorder
// level. Always recomputed, never cached.
func (p Product) IsLowStock() bool {
	return p.QuantityOnHand <= p.ReorderLevel
}

// TotalValue is the current on-hand valuation.
func (p Product) TotalValue() float64 {
	return float64(p.QuantityOnHand) * p.UnitCost
}

// NormalizeSKU trims and upper-cases a SKU; SKUs are case-normalised
// identity keys distinct from the row id.
func NormalizeSKU(sku string) string {
	return strings.ToUpper(strings.TrimSpace(sku))
}

// ListFilter narrows product listings.
type ListFilter struct {
	Category string
	Active   *bool
	Search   string
	LowStock bool
	Page     int
	Limit    int
}

// CreateProductInput carries a new product. Quantity and reorder level
// fall back to 0 and 10 when unset.
type CreateProductInput struct {
	SKU          string
	Name         string
	Category     string
	Description  string
	Supplier     string
	Location     string
	UnitCost     float64
	Quantity     *int
	ReorderLevel *int
}

// UpdateProductInput is a sparse patch; nil fields are left unchanged.
type UpdateProductInput struct {
	SKU          *string
	Name         *string
	Category     *string
	Description  *string
	Supplier     *string
	Location     *string
	UnitCost     *float64
	Quantity     *int
	ReorderLevel *int
	IsActive     *bool
}

const defaultReorderLevel = 10

func round2(v float64) float64 {
	return math.Round(v*100) / 100
}
