package inventory

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/vantage-erp/vantage-erp/internal/shared"
)

func TestClassifyBoundaries(t *testing.T) {
	cases := []struct {
		name     string
		quantity int
		reorder  int
		want     StockStatus
	}{
		{"exactly half is low, not critical", 50, 100, StatusLow},
		{"just under half is critical", 49, 100, StatusCritical},
		{"exactly reorder level is optimal", 100, 100, StatusOptimal},
		{"three times reorder is optimal", 300, 100, StatusOptimal},
		{"just above three times is high", 301, 100, StatusHigh},
		{"exactly five times is high, not overstock", 500, 100, StatusHigh},
		{"above five times is overstock", 501, 100, StatusOverstock},
		{"zero stock is critical", 0, 100, StatusCritical},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			c := Classify(Product{QuantityOnHand: tc.quantity, ReorderLevel: tc.reorder})
			require.Equal(t, tc.want, c.Status)
		})
	}
}

func TestClassifyZeroReorderLevelGuard(t *testing.T) {
	// reorderLevel=0 is treated as 1 to guard the division.
	c := Classify(Product{QuantityOnHand: 10, ReorderLevel: 0})
	require.Equal(t, StatusOverstock, c.Status)
	require.InDelta(t, 10.0, c.StockRatio, 0.001)

	c = Classify(Product{QuantityOnHand: 0, ReorderLevel: 0})
	require.Equal(t, StatusCritical, c.Status)
}

func TestClassifyRecommendations(t *testing.T) {
	require.Equal(t, "Immediate reorder required", Classify(Product{QuantityOnHand: 1, ReorderLevel: 100}).Recommendation)
	require.Equal(t, "Plan reorder soon", Classify(Product{QuantityOnHand: 60, ReorderLevel: 100}).Recommendation)
	require.Equal(t, "Stock levels are healthy", Classify(Product{QuantityOnHand: 150, ReorderLevel: 100}).Recommendation)
	require.Equal(t, "Stock levels above normal", Classify(Product{QuantityOnHand: 400, ReorderLevel: 100}).Recommendation)
	require.Equal(t, "Consider reducing future orders", Classify(Product{QuantityOnHand: 600, ReorderLevel: 100}).Recommendation)
}

func TestAggregateMetrics(t *testing.T) {
	products := []Product{
		{Category: "Hardware", QuantityOnHand: 5, UnitCost: 10.555, ReorderLevel: 10, IsActive: true},
		{Category: "Hardware", QuantityOnHand: 100, UnitCost: 1, ReorderLevel: 10, IsActive: true},
		{Category: "Software", QuantityOnHand: 0, UnitCost: 99.99, ReorderLevel: 0, IsActive: true},
		{Category: "Retired", QuantityOnHand: 1000, UnitCost: 1000, ReorderLevel: 10, IsActive: false},
	}

	m := AggregateMetrics(products)
	require.Equal(t, 105, m.TotalItems)
	require.Equal(t, 2, m.LowStockItems) // 5<=10 and 0<=0
	require.InDelta(t, 152.78, m.TotalValue, 0.0001)
	require.Equal(t, 3, m.TotalProducts)
	require.Equal(t, 2, m.CategoriesCount)
	require.Equal(t, []string{"Hardware", "Software"}, m.Categories)
}

func TestAggregateMetricsEmpty(t *testing.T) {
	m := AggregateMetrics(nil)
	require.Zero(t, m.TotalItems)
	require.Zero(t, m.TotalProducts)
	require.NotNil(t, m.Categories)
	require.Empty(t, m.Categories)
}

func TestDerivedFieldsAlwaysRecomputed(t *testing.T) {
	p := Product{QuantityOnHand: 10, ReorderLevel: 10, UnitCost: 2.5}
	require.True(t, p.IsLowStock())
	require.InDelta(t, 25.0, p.TotalValue(), 0.0001)

	p.QuantityOnHand = 11
	require.False(t, p.IsLowStock())
	require.InDelta(t, 27.5, p.TotalValue(), 0.0001)
}

func TestBuildOptimizationGroupsByStatus(t *testing.T) {
	now := time.Now()
	products := []Product{
		{ID: 1, QuantityOnHand: 10, ReorderLevel: 100, IsActive: true},  // critical
		{ID: 2, QuantityOnHand: 60, ReorderLevel: 100, IsActive: true},  // low
		{ID: 3, QuantityOnHand: 200, ReorderLevel: 100, IsActive: true}, // optimal
		{ID: 4, QuantityOnHand: 400, ReorderLevel: 100, IsActive: true}, // high
		{ID: 5, QuantityOnHand: 600, ReorderLevel: 100, IsActive: true}, // overstock
	}

	report, err := BuildOptimization(products, now)
	require.NoError(t, err)
	require.Len(t, report.Analysis, 5)
	require.Equal(t, 1, report.Summary.Critical)
	require.Equal(t, 1, report.Summary.Low)
	require.Equal(t, 1, report.Summary.Optimal)
	require.Equal(t, 1, report.Summary.High)
	require.Equal(t, 1, report.Summary.Overstock)
	require.Equal(t, 5, report.Summary.TotalProducts)
	require.Len(t, report.StatusGroups[StatusCritical], 1)
	require.Equal(t, int64(1), report.StatusGroups[StatusCritical][0].ProductID)
	require.Equal(t, now, report.GeneratedAt)
}

func TestBuildOptimizationEmptyIsError(t *testing.T) {
	_, err := BuildOptimization(nil, time.Now())
	require.ErrorIs(t, err, shared.ErrNoEligibleProducts)
}
