package inventory

import (
	"time"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// StockStatus classifies a product's stock health.
type StockStatus string

const (
	StatusCritical  StockStatus = "critical"
	StatusLow       StockStatus = "low"
	StatusOptimal   StockStatus = "optimal"
	StatusHigh      StockStatus = "high"
	StatusOverstock StockStatus = "overstock"
)

// Classification is the per-product result of stock-health analysis.
type Classification struct {
	ProductID      int64       `json:"productId"`
	SKU            string      `json:"sku"`
	Name           string      `json:"name"`
	CurrentStock   int         `json:"currentStock"`
	ReorderLevel   int         `json:"reorderLevel"`
	StockRatio     float64     `json:"stockRatio"`
	Status         StockStatus `json:"status"`
	Recommendation string      `json:"recommendation"`
	Value          float64     `json:"value"`
	Category       string      `json:"category"`
}

// Classify computes stock health from a single product snapshot. A
// reorder level of 0 is treated as 1 to guard the division.
func Classify(p Product) Classification {
	reorder := p.ReorderLevel
	if reorder < 1 {
		reorder = 1
	}
	ratio := float64(p.QuantityOnHand) / float64(reorder)

	status := StatusOptimal
	recommendation := "Stock levels are healthy"
	switch {
	case ratio < 0.5:
		status = StatusCritical
		recommendation = "Immediate reorder required"
	case ratio < 1:
		status = StatusLow
		recommendation = "Plan reorder soon"
	case ratio > 5:
		status = StatusOverstock
		recommendation = "Consider reducing future orders"
	case ratio > 3:
		status = StatusHigh
		recommendation = "Stock levels above normal"
	}

	return Classification{
		ProductID:      p.ID,
		SKU:            p.SKU,
		Name:           p.Name,
		CurrentStock:   p.QuantityOnHand,
		ReorderLevel:   p.ReorderLevel,
		StockRatio:     round2(ratio),
		Status:         status,
		Recommendation: recommendation,
		Value:          p.TotalValue(),
		Category:       p.Category,
	}
}

// Metrics aggregates catalog-wide stock figures.
type Metrics struct {
	TotalItems      int      `json:"totalItems"`
	LowStockItems   int      `json:"lowStockItems"`
	TotalValue      float64  `json:"totalValue"`
	CategoriesCount int      `json:"categoriesCount"`
	TotalProducts   int      `json:"totalProducts"`
	Categories      []string `json:"categories"`
}

// AggregateMetrics sums stock levels and valuation across active
// products. Categories keep first-seen order. Pure function of the
// input snapshot.
func AggregateMetrics(products []Product) Metrics {
	var m Metrics
	seen := make(map[string]struct{})
	var totalValue float64
	for _, p := range products {
		if !p.IsActive {
			continue
		}
		m.TotalItems += p.QuantityOnHand
		if p.IsLowStock() {
			m.LowStockItems++
		}
		totalValue += p.TotalValue()
		if _, ok := seen[p.Category]; !ok {
			seen[p.Category] = struct{}{}
			m.Categories = append(m.Categories, p.Category)
		}
		m.TotalProducts++
	}
	m.TotalValue = round2(totalValue)
	m.CategoriesCount = len(m.Categories)
	if m.Categories == nil {
		m.Categories = []string{}
	}
	return m
}

// OptimizationSummary counts products per status bucket.
type OptimizationSummary struct {
	TotalProducts       int     `json:"totalProducts"`
	Critical            int     `json:"critical"`
	Low                 int     `json:"low"`
	Optimal             int     `json:"optimal"`
	High                int     `json:"high"`
	Overstock           int     `json:"overstock"`
	TotalInventoryValue float64 `json:"totalInventoryValue"`
}

// OptimizationReport is the full stock-optimization analysis.
type OptimizationReport struct {
	Analysis     []Classification                 `json:"analysis"`
	Summary      OptimizationSummary              `json:"summary"`
	StatusGroups map[StockStatus][]Classification `json:"statusGroups"`
	GeneratedAt  time.Time                        `json:"generatedAt"`
}

// BuildOptimization classifies every product and groups the results by
// status. An empty snapshot is reported as NoEligibleProducts rather
// than an empty success.
func BuildOptimization(products []Product, now time.Time) (OptimizationReport, error) {
	if len(products) == 0 {
		return OptimizationReport{}, shared.NewError(shared.KindNoEligibleProducts, "products", "no active products to analyse")
	}

	analysis := make([]Classification, 0, len(products))
	groups := map[StockStatus][]Classification{
		StatusCritical:  {},
		StatusLow:       {},
		StatusOptimal:   {},
		StatusHigh:      {},
		StatusOverstock: {},
	}
	var totalValue float64
	for _, p := range products {
		c := Classify(p)
		analysis = append(analysis, c)
		groups[c.Status] = append(groups[c.Status], c)
		totalValue += p.TotalValue()
	}

	return OptimizationReport{
		Analysis: analysis,
		Summary: OptimizationSummary{
			TotalProducts:       len(products),
			Critical:            len(groups[StatusCritical]),
			Low:                 len(groups[StatusLow]),
			Optimal:             len(groups[StatusOptimal]),
			High:                len(groups[StatusHigh]),
			Overstock:           len(groups[StatusOverstock]),
			TotalInventoryValue: round2(totalValue),
		},
		StatusGroups: groups,
		GeneratedAt:  now,
	}, nil
}
