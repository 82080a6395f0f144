package inventory

import (
	"time"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// ProductView is the API projection of a product with derived fields
// recomputed at serialisation time.
type ProductView struct {
	ID             int64      `json:"id"`
	SKU            string     `json:"sku"`
	Name           string     `json:"name"`
	Category       string     `json:"category"`
	Description    string     `json:"description,omitempty"`
	Supplier       string     `json:"supplier,omitempty"`
	Location       string     `json:"location,omitempty"`
	QuantityOnHand int        `json:"quantityOnHand"`
	UnitCost       float64    `json:"unitCost"`
	ReorderLevel   int        `json:"reorderLevel"`
	IsActive       bool       `json:"isActive"`
	IsLowStock     bool       `json:"isLowStock"`
	TotalValue     float64    `json:"totalValue"`
	LastRestocked  *time.Time `json:"lastRestocked"`
	CreatedAt      time.Time  `json:"createdAt"`
	UpdatedAt      time.Time  `json:"updatedAt"`
}

// NewProductView projects a product for the API.
func NewProductView(p Product) ProductView {
	return ProductView{
		ID:             p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		Category:       p.Category,
		Description:    p.Description,
		Supplier:       p.Supplier,
		Location:       p.Location,
		QuantityOnHand: p.QuantityOnHand,
		UnitCost:       p.UnitCost,
		ReorderLevel:   p.ReorderLevel,
		IsActive:       p.IsActive,
		IsLowStock:     p.IsLowStock(),
		TotalValue:     p.TotalValue(),
		LastRestocked:  p.LastRestocked,
		CreatedAt:      p.CreatedAt,
		UpdatedAt:      p.UpdatedAt,
	}
}

func newProductViews(products []Product) []ProductView {
	views := make([]ProductView, 0, len(products))
	for _, p := range products {
		views = append(views, NewProductView(p))
	}
	return views
}

type createProductRequest struct {
	SKU          string  `json:"sku" validate:"required"`
	Name         string  `json:"name" validate:"required"`
	Category     string  `json:"category" validate:"required"`
	Description  string  `json:"description"`
	Supplier     string  `json:"supplier"`
	Location     string  `json:"location"`
	UnitCost     float64 `json:"unitCost" validate:"gte=0"`
	Quantity     *int    `json:"quantityOnHand" validate:"omitempty,gte=0"`
	ReorderLevel *int    `json:"reorderLevel" validate:"omitempty,gte=0"`
}

type updateProductRequest struct {
	SKU          *string  `json:"sku" validate:"omitempty,min=1"`
	Name         *string  `json:"name" validate:"omitempty,min=1"`
	Category     *string  `json:"category"`
	Description  *string  `json:"description"`
	Supplier     *string  `json:"supplier"`
	Location     *string  `json:"location"`
	UnitCost     *float64 `json:"unitCost" validate:"omitempty,gte=0"`
	Quantity     *int     `json:"quantityOnHand" validate:"omitempty,gte=0"`
	ReorderLevel *int     `json:"reorderLevel" validate:"omitempty,gte=0"`
	IsActive     *bool    `json:"isActive"`
}

type restockRequest struct {
	Quantity int    `json:"quantity" validate:"required,gte=1"`
	Ref      string `json:"ref" validate:"omitempty,uuid"`
}

// adjustRequest deliberately has no validate tags: a zero delta is a
// valid no-op and the negativity guard lives at the storage layer.
type adjustRequest struct {
	Quantity int    `json:"quantity"`
	Reason   string `json:"reason"`
	Ref      string `json:"ref"`
}

type predictDemandRequest struct {
	ProductIDs   []int64 `json:"productIds" validate:"required,min=1"`
	ForecastDays int     `json:"forecastDays" validate:"omitempty,min=1,max=90"`
}

type listResponse struct {
	Products   []ProductView     `json:"products"`
	Pagination shared.Pagination `json:"pagination"`
}
