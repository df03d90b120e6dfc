package impact

import (
	"fmt"
	"sort"
)

// RecommendationRule inspects the portfolio shape and either fires one
// recommendation or returns nil. Rules are independent of each other; new
// rules are added to the Recommender's list without touching existing ones.
type RecommendationRule interface {
	Evaluate(portfolio *BuyerPortfolio, summaries []ProjectImpactSummary) *BuyerRecommendation
}

// Recommender runs a fixed rule list over the portfolio
type Recommender struct {
	rules []RecommendationRule
}

// NewRecommender creates a recommender with the shipped rule set
func NewRecommender(cfg EngineConfig) *Recommender {
	return &Recommender{
		rules: []RecommendationRule{
			diversificationRule{},
			riskMitigationRule{},
			costOptimizationRule{benchmark: cfg.Benchmarks[BenchmarkCostPerCredit].Value},
			impactEnhancementRule{benchmark: cfg.Benchmarks[BenchmarkImpactEfficiency].Value},
		},
	}
}

// Recommend evaluates every rule and returns fired recommendations ordered
// by priority (high first). An empty list means no rule fired.
func (r *Recommender) Recommend(portfolio *BuyerPortfolio, summaries []ProjectImpactSummary) []BuyerRecommendation {
	recommendations := []BuyerRecommendation{}
	for _, rule := range r.rules {
		if rec := rule.Evaluate(portfolio, summaries); rec != nil {
			recommendations = append(recommendations, *rec)
		}
	}

	priorityOrder := map[string]int{"high": 0, "medium": 1, "low": 2}
	sort.SliceStable(recommendations, func(i, j int) bool {
		return priorityOrder[recommendations[i].Priority] < priorityOrder[recommendations[j].Priority]
	})

	return recommendations
}

// diversificationRule fires when credits span fewer than three project types
type diversificationRule struct{}

func (diversificationRule) Evaluate(portfolio *BuyerPortfolio, _ []ProjectImpactSummary) *BuyerRecommendation {
	distinctTypes := len(portfolio.ByType)
	if distinctTypes == 0 || distinctTypes >= 3 {
		return nil
	}

	return &BuyerRecommendation{
		Category: RecommendationDiversification,
		Priority: "high",
		Title:    "Diversify across more project types",
		Description: fmt.Sprintf(
			"Your credits currently span %d of %d supported project types. "+
				"Concentration in few types exposes the portfolio to methodology and regional risk.",
			distinctTypes, len(AllProjectTypes)),
		ImplementationPlan: []string{
			"Review project types absent from the current portfolio",
			"Allocate the next purchases to at least two new project types",
			"Rebalance toward an even split once holdings exceed three types",
			"Re-run the impact report to confirm the improved diversification score",
		},
		EstimatedRiskReduction: 25,
		EstimatedImpactGain:    10,
	}
}

// riskMitigationRule fires when one project holds more than 60% of the
// buyer's credits. Type diversification is the diversificationRule's
// concern; this rule watches single-project concentration.
type riskMitigationRule struct{}

func (riskMitigationRule) Evaluate(portfolio *BuyerPortfolio, summaries []ProjectImpactSummary) *BuyerRecommendation {
	if portfolio.TotalCreditsOwned == 0 || len(summaries) < 2 {
		return nil
	}

	var dominant *ProjectImpactSummary
	for i := range summaries {
		s := &summaries[i]
		if s.CreditsOwned/portfolio.TotalCreditsOwned > 0.6 {
			dominant = s
			break
		}
	}
	if dominant == nil {
		return nil
	}

	return &BuyerRecommendation{
		Category: RecommendationRiskMitigation,
		Priority: "medium",
		Title:    "Reduce single-project concentration",
		Description: fmt.Sprintf(
			"Project %q holds %.0f%% of your credits. A setback in one project would dominate portfolio impact.",
			dominant.ProjectName, dominant.CreditsOwned/portfolio.TotalCreditsOwned*100),
		ImplementationPlan: []string{
			"Cap any single project at a fixed share of total credits",
			"Direct upcoming purchases to other verified, active projects",
		},
		EstimatedRiskReduction: 15,
		EstimatedImpactGain:    5,
	}
}

// costOptimizationRule fires when the average cost per credit exceeds the
// industry benchmark
type costOptimizationRule struct {
	benchmark float64
}

func (r costOptimizationRule) Evaluate(portfolio *BuyerPortfolio, _ []ProjectImpactSummary) *BuyerRecommendation {
	cost := portfolio.Performance.AverageCostPerCredit
	if cost <= r.benchmark {
		return nil
	}

	return &BuyerRecommendation{
		Category: RecommendationPortfolioOptimization,
		Priority: "medium",
		Title:    "Lower the average cost per credit",
		Description: fmt.Sprintf(
			"The portfolio averages $%.2f per credit against an industry benchmark of $%.2f.",
			cost, r.benchmark),
		ImplementationPlan: []string{
			"Compare unit prices across listed projects before purchasing",
			"Favor forward purchases from early-stage verified projects",
		},
		EstimatedRiskReduction: 0,
		EstimatedImpactGain:    cost - r.benchmark,
	}
}

// impactEnhancementRule fires when impact efficiency trails the benchmark
type impactEnhancementRule struct {
	benchmark float64
}

func (r impactEnhancementRule) Evaluate(portfolio *BuyerPortfolio, _ []ProjectImpactSummary) *BuyerRecommendation {
	efficiency := portfolio.Performance.ImpactEfficiency
	if efficiency == 0 || efficiency >= r.benchmark {
		return nil
	}

	return &BuyerRecommendation{
		Category: RecommendationImpactEnhancement,
		Priority: "low",
		Title:    "Increase impact per dollar invested",
		Description: fmt.Sprintf(
			"The portfolio yields %.1f credits per $1000 invested; the benchmark is %.1f.",
			efficiency, r.benchmark),
		ImplementationPlan: []string{
			"Shift new purchases toward projects with higher measured carbon impact per credit",
		},
		EstimatedRiskReduction: 0,
		EstimatedImpactGain:    r.benchmark - efficiency,
	}
}
