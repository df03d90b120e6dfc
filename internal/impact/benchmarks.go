package impact

import "math"

// Placeholder until real distribution data backs the percentile.
const placeholderPercentile = 50.0

// comparisonTolerance is the relative band around the benchmark treated as
// "average" rather than above/below.
const comparisonTolerance = 0.05

// Comparator compares buyer metrics against the fixed industry benchmark
// table from the engine configuration.
type Comparator struct {
	cfg EngineConfig
}

// NewComparator creates a new benchmark comparator
func NewComparator(cfg EngineConfig) *Comparator {
	return &Comparator{cfg: cfg}
}

// Compare produces one ImpactComparison per configured benchmark metric,
// in a fixed display order.
func (c *Comparator) Compare(portfolio *BuyerPortfolio, total *TotalImpactSummary) []ImpactComparison {
	ordered := []struct {
		metric BenchmarkMetric
		value  float64
	}{
		{BenchmarkCostPerCredit, portfolio.Performance.AverageCostPerCredit},
		{BenchmarkDiversification, portfolio.Risk.DiversificationScore},
		{BenchmarkImpactEfficiency, portfolio.Performance.ImpactEfficiency},
		{BenchmarkCarbonOffset, total.TotalCarbonOffset},
	}

	comparisons := make([]ImpactComparison, 0, len(ordered))
	for _, m := range ordered {
		entry, ok := c.cfg.Benchmarks[m.metric]
		if !ok {
			continue
		}
		comparisons = append(comparisons, ImpactComparison{
			Metric:         string(m.metric),
			BuyerValue:     m.value,
			BenchmarkValue: entry.Value,
			Percentile:     placeholderPercentile,
			Status:         bucket(m.value, entry),
			Unit:           entry.Unit,
		})
	}

	return comparisons
}

// bucket classifies a buyer value against a benchmark entry. Values within
// the tolerance band are "average"; direction flips for lower-is-better
// metrics such as cost per credit.
func bucket(value float64, entry BenchmarkEntry) ComparisonStatus {
	if entry.Value == 0 {
		return ComparisonAverage
	}
	delta := (value - entry.Value) / entry.Value
	if math.Abs(delta) <= comparisonTolerance {
		return ComparisonAverage
	}

	better := delta > 0
	if entry.LowerIsBetter {
		better = delta < 0
	}
	if better {
		return ComparisonAboveAverage
	}
	return ComparisonBelowAverage
}
