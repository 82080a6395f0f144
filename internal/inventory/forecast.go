package inventory

import (
	"fmt"
	"math"
	"sort"
	"time"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

// Horizon bounds for demand forecasts, in days.
const (
	MinHorizonDays     = 1
	MaxHorizonDays     = 90
	DefaultHorizonDays = 30

	// referenceCycleDays is the fixed reorder-cycle assumption behind
	// the heuristic: daily usage is reorder level spread over 30 days.
	// A deliberate simplification, kept for behaviour compatibility;
	// no historical sales data feeds this model.
	referenceCycleDays = 30
)

// ForecastResult is the per-product demand projection.
type ForecastResult struct {
	ProductID        int64   `json:"productId"`
	SKU              string  `json:"sku"`
	ProductName      string  `json:"productName"`
	CurrentStock     int     `json:"currentStock"`
	PredictedDemand  int     `json:"predictedDemand"`
	ForecastedStock  int     `json:"forecastedStock"`
	RecommendedOrder int     `json:"recommendedOrder"`
	ReorderLevel     int     `json:"reorderLevel"`
	Confidence       float64 `json:"confidence"`
	ForecastPeriod   string  `json:"forecastPeriod"`
	Category         string  `json:"category"`
}

// ForecastSummary aggregates a batch of forecasts.
type ForecastSummary struct {
	TotalProducts          int     `json:"totalProducts"`
	ProductsNeedingReorder int     `json:"productsNeedingReorder"`
	TotalRecommendedOrder  int     `json:"totalRecommendedOrder"`
	AverageConfidence      float64 `json:"averageConfidence"`
}

// ForecastReport is the batch forecast response.
type ForecastReport struct {
	Forecasts   []ForecastResult `json:"forecasts"`
	Summary     ForecastSummary  `json:"summary"`
	GeneratedAt time.Time        `json:"generatedAt"`
}

// Forecast projects demand for one product over horizonDays. The
// forecasted stock is clamped at zero for output, but the unclamped
// value drives the reorder recommendation.
func Forecast(p Product, horizonDays int) ForecastResult {
	dailyUsage := float64(p.ReorderLevel) / referenceCycleDays
	predicted := int(math.Round(dailyUsage * float64(horizonDays)))
	forecasted := p.QuantityOnHand - predicted

	safetyStock := int(math.Round(float64(p.ReorderLevel) * 0.5))
	recommended := 0
	if forecasted < p.ReorderLevel {
		recommended = p.ReorderLevel + safetyStock - forecasted
		if recommended < 0 {
			recommended = 0
		}
	}

	reorder := p.ReorderLevel
	if reorder < 1 {
		reorder = 1
	}
	stockRatio := float64(p.QuantityOnHand) / float64(reorder)
	confidence := 0.85
	switch {
	case stockRatio < 0.5:
		confidence = 0.70
	case stockRatio > 3:
		confidence = 0.75
	case stockRatio >= 1 && stockRatio <= 2:
		confidence = 0.92
	}

	clamped := forecasted
	if clamped < 0 {
		clamped = 0
	}

	return ForecastResult{
		ProductID:        p.ID,
		SKU:              p.SKU,
		ProductName:      p.Name,
		CurrentStock:     p.QuantityOnHand,
		PredictedDemand:  predicted,
		ForecastedStock:  clamped,
		RecommendedOrder: recommended,
		ReorderLevel:     p.ReorderLevel,
		Confidence:       round2(confidence),
		ForecastPeriod:   fmt.Sprintf("%d days", horizonDays),
		Category:         p.Category,
	}
}

// ForecastAll forecasts every product and orders the results most
// urgent first: ascending by forecasted stock over reorder level, ties
// keeping input order. An empty batch is an error, never an empty
// success.
func ForecastAll(products []Product, horizonDays int, now time.Time) (ForecastReport, error) {
	if len(products) == 0 {
		return ForecastReport{}, shared.NewError(shared.KindNoEligibleProducts, "productIds", "no valid products found")
	}

	forecasts := make([]ForecastResult, 0, len(products))
	for _, p := range products {
		forecasts = append(forecasts, Forecast(p, horizonDays))
	}

	sort.SliceStable(forecasts, func(i, j int) bool {
		return urgency(forecasts[i]) < urgency(forecasts[j])
	})

	var summary ForecastSummary
	summary.TotalProducts = len(forecasts)
	var confidenceSum float64
	for _, f := range forecasts {
		if f.RecommendedOrder > 0 {
			summary.ProductsNeedingReorder++
		}
		summary.TotalRecommendedOrder += f.RecommendedOrder
		confidenceSum += f.Confidence
	}
	summary.AverageConfidence = round2(confidenceSum / float64(len(forecasts)))

	return ForecastReport{Forecasts: forecasts, Summary: summary, GeneratedAt: now}, nil
}

func urgency(f ForecastResult) float64 {
	reorder := f.ReorderLevel
	if reorder < 1 {
		reorder = 1
	}
	return float64(f.ForecastedStock) / float64(reorder)
}
