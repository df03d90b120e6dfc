package impact

import (
	"math"
	"sort"
	"time"
)

// Calculator rolls per-project summaries into portfolio-wide impact totals.
// All conversion tables come from the injected EngineConfig.
type Calculator struct {
	cfg EngineConfig
}

// NewCalculator creates a new total impact calculator
func NewCalculator(cfg EngineConfig) *Calculator {
	return &Calculator{cfg: cfg}
}

// CalculateTotalImpact computes the TotalImpactSummary for a set of project
// summaries. An empty input produces an all-zero summary, never a division
// error.
func (c *Calculator) CalculateTotalImpact(summaries []ProjectImpactSummary) TotalImpactSummary {
	total := TotalImpactSummary{
		SDGContributions:      []SDGContribution{},
		EnvironmentalBenefits: []string{},
		SocialBenefits:        []string{},
		EconomicBenefits:      []string{},
	}

	for _, s := range summaries {
		total.TotalCarbonOffset += s.Impact.CarbonImpactToDate
	}

	total.Equivalences = c.equivalences(total.TotalCarbonOffset)
	total.SDGContributions = c.sdgContributions(summaries)
	total.EnvironmentalBenefits, total.SocialBenefits, total.EconomicBenefits = c.benefits(summaries)
	total.Cumulative = c.cumulative(summaries, total.TotalCarbonOffset)

	return total
}

func (c *Calculator) equivalences(offset float64) EquivalenceMetrics {
	f := c.cfg.Equivalence
	eq := EquivalenceMetrics{
		TreesEquivalent:  offset * f.TreesPerTonne,
		FuelSavedGallons: offset * f.FuelGallonsPerTonne,
	}
	if f.TonnesPerCarYear > 0 {
		eq.CarsOffRoad = offset / f.TonnesPerCarYear
	}
	if f.TonnesPerHomeYear > 0 {
		eq.HomesPowered = offset / f.TonnesPerHomeYear
	}
	return eq
}

// sdgContributions aggregates carbon impact and distinct project counts per
// UN goal via the configured type-to-goal mapping.
func (c *Calculator) sdgContributions(summaries []ProjectImpactSummary) []SDGContribution {
	type sdgAgg struct {
		title    string
		impact   float64
		projects int
	}

	byGoal := make(map[int]*sdgAgg)
	for _, s := range summaries {
		for _, goal := range c.cfg.SDGMapping[s.ProjectType] {
			agg, ok := byGoal[goal.Number]
			if !ok {
				agg = &sdgAgg{title: goal.Title}
				byGoal[goal.Number] = agg
			}
			agg.impact += s.Impact.CarbonImpactToDate
			agg.projects++
		}
	}

	contributions := make([]SDGContribution, 0, len(byGoal))
	for number, agg := range byGoal {
		contributions = append(contributions, SDGContribution{
			Goal:         number,
			Title:        agg.title,
			CarbonImpact: agg.impact,
			ProjectCount: agg.projects,
		})
	}

	sort.Slice(contributions, func(i, j int) bool {
		return contributions[i].Goal < contributions[j].Goal
	})

	return contributions
}

// benefits collects the qualitative benefit wording for each distinct
// project type present in the portfolio, in deterministic type order.
func (c *Calculator) benefits(summaries []ProjectImpactSummary) (environmental, social, economic []string) {
	environmental = []string{}
	social = []string{}
	economic = []string{}

	present := make(map[ProjectType]bool)
	for _, s := range summaries {
		present[s.ProjectType] = true
	}

	for _, t := range AllProjectTypes {
		if !present[t] {
			continue
		}
		b, ok := c.cfg.Benefits[t]
		if !ok {
			continue
		}
		environmental = append(environmental, b.Environmental)
		social = append(social, b.Social)
		economic = append(economic, b.Economic)
	}

	return environmental, social, economic
}

func (c *Calculator) cumulative(summaries []ProjectImpactSummary, totalOffset float64) CumulativeImpact {
	cumulative := CumulativeImpact{ProjectCount: len(summaries)}

	var minPurchase, maxPurchase time.Time
	for _, s := range summaries {
		cumulative.TotalInvestment += s.Financials.TotalInvestment
		if s.FirstPurchase.IsZero() {
			continue
		}
		if minPurchase.IsZero() || s.FirstPurchase.Before(minPurchase) {
			minPurchase = s.FirstPurchase
		}
		if maxPurchase.IsZero() || s.FirstPurchase.After(maxPurchase) {
			maxPurchase = s.FirstPurchase
		}
	}

	if len(summaries) > 1 && !minPurchase.IsZero() {
		days := maxPurchase.Sub(minPurchase).Hours() / 24
		cumulative.TimespanYears = int(math.Ceil(days / 365))
	}

	if len(summaries) > 0 {
		cumulative.AverageProjectSize = totalOffset / float64(len(summaries))
	}

	// Annualized offset accumulation; a single-year portfolio reports the
	// full offset as its growth rate.
	years := cumulative.TimespanYears
	if years < 1 {
		years = 1
	}
	cumulative.GrowthRate = totalOffset / float64(years)

	return cumulative
}
