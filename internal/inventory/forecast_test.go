package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

func TestForecastWorkedExample(t *testing.T) {
	// reorderLevel=100 over a 30-day cycle burns 100 units in a 30-day
	// horizon; 450 on hand leaves 350, comfortably above reorder level.
	p := Product{ID: 7, SKU: "WID-1", Name: "Widget", QuantityOnHand: 450, ReorderLevel: 100, Category: "Hardware"}

	f := Forecast(p, 30)
	require.Equal(t, 100, f.PredictedDemand)
	require.Equal(t, 350, f.ForecastedStock)
	require.Equal(t, 0, f.RecommendedOrder)
	require.InDelta(t, 0.75, f.Confidence, 0.0001) // 450/100 > 3
	require.Equal(t, "30 days", f.ForecastPeriod)
}

func TestForecastDepletionClampsOutputNotRecommendation(t *testing.T) {
	// dailyUsage=1, predicted=30, forecasted=10-30=-20. The output is
	// clamped to zero but the recommendation uses the raw deficit:
	// 30 + 15 - (-20) = 65.
	p := Product{QuantityOnHand: 10, ReorderLevel: 30}

	f := Forecast(p, 30)
	require.Equal(t, 30, f.PredictedDemand)
	require.Equal(t, 0, f.ForecastedStock)
	require.Equal(t, 65, f.RecommendedOrder)
	require.InDelta(t, 0.70, f.Confidence, 0.0001) // 10/30 < 0.5
}

func TestForecastConfidenceBands(t *testing.T) {
	cases := []struct {
		name     string
		quantity int
		reorder  int
		want     float64
	}{
		{"under half reorder", 4, 10, 0.70},
		{"between one and two times reorder", 15, 10, 0.92},
		{"exactly twice reorder", 20, 10, 0.92},
		{"between two and three times", 25, 10, 0.85},
		{"above three times", 31, 10, 0.75},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			f := Forecast(Product{QuantityOnHand: tc.quantity, ReorderLevel: tc.reorder}, 1)
			require.InDelta(t, tc.want, f.Confidence, 0.0001)
		})
	}
}

func TestForecastZeroReorderLevel(t *testing.T) {
	// No reorder level means no modelled usage at all.
	f := Forecast(Product{QuantityOnHand: 50, ReorderLevel: 0}, 90)
	require.Equal(t, 0, f.PredictedDemand)
	require.Equal(t, 50, f.ForecastedStock)
	require.Equal(t, 0, f.RecommendedOrder)
	require.InDelta(t, 0.75, f.Confidence, 0.0001)
}

func TestForecastAllOrdersByUrgency(t *testing.T) {
	now := time.Now()
	products := []Product{
		{ID: 1, QuantityOnHand: 450, ReorderLevel: 100}, // forecasted 350, ratio 3.5
		{ID: 2, QuantityOnHand: 10, ReorderLevel: 30},   // forecasted clamps to 0
		{ID: 3, QuantityOnHand: 160, ReorderLevel: 100}, // forecasted 60, ratio 0.6
	}

	report, err := ForecastAll(products, 30, now)
	require.NoError(t, err)
	require.Len(t, report.Forecasts, 3)
	require.Equal(t, int64(2), report.Forecasts[0].ProductID)
	require.Equal(t, int64(3), report.Forecasts[1].ProductID)
	require.Equal(t, int64(1), report.Forecasts[2].ProductID)
	require.Equal(t, now, report.GeneratedAt)
}

func TestForecastAllStableOnTies(t *testing.T) {
	// Identical urgency keeps input order.
	products := []Product{
		{ID: 5, QuantityOnHand: 200, ReorderLevel: 100},
		{ID: 6, QuantityOnHand: 200, ReorderLevel: 100},
		{ID: 7, QuantityOnHand: 200, ReorderLevel: 100},
	}

	report, err := ForecastAll(products, 30, time.Now())
	require.NoError(t, err)
	require.Equal(t, int64(5), report.Forecasts[0].ProductID)
	require.Equal(t, int64(6), report.Forecasts[1].ProductID)
	require.Equal(t, int64(7), report.Forecasts[2].ProductID)
}

func TestForecastAllSummary(t *testing.T) {
	products := []Product{
		{ID: 1, QuantityOnHand: 450, ReorderLevel: 100}, // no reorder, 0.75
		{ID: 2, QuantityOnHand: 10, ReorderLevel: 30},   // reorder 65, 0.70
	}

	report, err := ForecastAll(products, 30, time.Now())
	require.NoError(t, err)
	require.Equal(t, 2, report.Summary.TotalProducts)
	require.Equal(t, 1, report.Summary.ProductsNeedingReorder)
	require.Equal(t, 65, report.Summary.TotalRecommendedOrder)
	require.InDelta(t, 0.73, report.Summary.AverageConfidence, 0.0001)
}

func TestForecastAllEmptyIsError(t *testing.T) {
	_, err := ForecastAll(nil, 30, time.Now())
	require.ErrorIs(t, err, shared.ErrNoEligibleProducts)
}
