package impact

import (
	"fmt"
	"math"
	"sort"

	"github.com/google/uuid"
)

// Aggregator groups a buyer's completed purchases into a portfolio view
type Aggregator struct {
	cfg EngineConfig
}

// NewAggregator creates a new portfolio aggregator
func NewAggregator(cfg EngineConfig) *Aggregator {
	return &Aggregator{cfg: cfg}
}

// BuildPortfolio computes the BuyerPortfolio from completed purchases and the
// distinct projects they reference. Projects missing from the map are counted
// in totals but skipped in type/geography grouping; callers resolve as many
// projects as they can and pass the rest through.
func (a *Aggregator) BuildPortfolio(purchases []Purchase, projects map[uuid.UUID]*Project) BuyerPortfolio {
	portfolio := BuyerPortfolio{
		ByType:      []TypeBreakdown{},
		ByGeography: []GeographyBreakdown{},
		ByVintage:   []VintageBreakdown{},
	}

	for _, p := range purchases {
		portfolio.TotalCreditsOwned += p.CreditAmount
		portfolio.TotalInvestment += p.TotalAmount
	}

	portfolio.ActiveProjects, portfolio.CompletedProjects = countProjectStatuses(purchases, projects)

	portfolio.ByType = a.breakdownByType(purchases, projects, portfolio.TotalCreditsOwned)
	portfolio.ByGeography = a.breakdownByGeography(purchases, projects, portfolio.TotalCreditsOwned)
	portfolio.ByVintage = a.breakdownByVintage(purchases, portfolio.TotalCreditsOwned)

	portfolio.Risk = a.assessRisk(portfolio.ByType)
	portfolio.Performance = a.assessPerformance(portfolio.TotalCreditsOwned, portfolio.TotalInvestment)

	return portfolio
}

// countProjectStatuses counts distinct projects that are active/approved vs completed
func countProjectStatuses(purchases []Purchase, projects map[uuid.UUID]*Project) (active, completed int) {
	seen := make(map[uuid.UUID]bool)
	for _, p := range purchases {
		if seen[p.ProjectID] {
			continue
		}
		seen[p.ProjectID] = true

		project, ok := projects[p.ProjectID]
		if !ok {
			continue
		}
		switch project.Status {
		case ProjectStatusActive, ProjectStatusApproved:
			active++
		case ProjectStatusCompleted:
			completed++
		}
	}
	return active, completed
}

type groupTotals struct {
	credits    float64
	investment float64
	projects   map[uuid.UUID]bool
}

func newGroupTotals() *groupTotals {
	return &groupTotals{projects: make(map[uuid.UUID]bool)}
}

func (g *groupTotals) add(p Purchase) {
	g.credits += p.CreditAmount
	g.investment += p.TotalAmount
	g.projects[p.ProjectID] = true
}

func (a *Aggregator) breakdownByType(purchases []Purchase, projects map[uuid.UUID]*Project, totalCredits float64) []TypeBreakdown {
	groups := make(map[ProjectType]*groupTotals)
	for _, p := range purchases {
		project, ok := projects[p.ProjectID]
		if !ok {
			continue
		}
		g, ok := groups[project.Type]
		if !ok {
			g = newGroupTotals()
			groups[project.Type] = g
		}
		g.add(p)
	}

	breakdown := make([]TypeBreakdown, 0, len(groups))
	for projectType, g := range groups {
		breakdown = append(breakdown, TypeBreakdown{
			ProjectType:  projectType,
			CreditsOwned: g.credits,
			Investment:   g.investment,
			ProjectCount: len(g.projects),
			Percentage:   share(g.credits, totalCredits),
		})
	}

	// Largest holdings first; type name breaks ties so output is deterministic.
	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].CreditsOwned != breakdown[j].CreditsOwned {
			return breakdown[i].CreditsOwned > breakdown[j].CreditsOwned
		}
		return breakdown[i].ProjectType < breakdown[j].ProjectType
	})

	return breakdown
}

func (a *Aggregator) breakdownByGeography(purchases []Purchase, projects map[uuid.UUID]*Project, totalCredits float64) []GeographyBreakdown {
	type geoKey struct {
		country string
		region  string
	}

	groups := make(map[geoKey]*groupTotals)
	for _, p := range purchases {
		project, ok := projects[p.ProjectID]
		if !ok {
			continue
		}
		key := geoKey{country: project.Location.Country, region: project.Location.Region}
		g, ok := groups[key]
		if !ok {
			g = newGroupTotals()
			groups[key] = g
		}
		g.add(p)
	}

	breakdown := make([]GeographyBreakdown, 0, len(groups))
	for key, g := range groups {
		breakdown = append(breakdown, GeographyBreakdown{
			Country:      key.country,
			Region:       key.region,
			CreditsOwned: g.credits,
			Investment:   g.investment,
			ProjectCount: len(g.projects),
			Percentage:   share(g.credits, totalCredits),
		})
	}

	sort.Slice(breakdown, func(i, j int) bool {
		if breakdown[i].CreditsOwned != breakdown[j].CreditsOwned {
			return breakdown[i].CreditsOwned > breakdown[j].CreditsOwned
		}
		ki := fmt.Sprintf("%s/%s", breakdown[i].Country, breakdown[i].Region)
		kj := fmt.Sprintf("%s/%s", breakdown[j].Country, breakdown[j].Region)
		return ki < kj
	})

	return breakdown
}

func (a *Aggregator) breakdownByVintage(purchases []Purchase, totalCredits float64) []VintageBreakdown {
	groups := make(map[int]*groupTotals)
	for _, p := range purchases {
		year := p.CreatedAt.Year()
		g, ok := groups[year]
		if !ok {
			g = newGroupTotals()
			groups[year] = g
		}
		g.add(p)
	}

	breakdown := make([]VintageBreakdown, 0, len(groups))
	for year, g := range groups {
		breakdown = append(breakdown, VintageBreakdown{
			Year:         year,
			CreditsOwned: g.credits,
			Investment:   g.investment,
			ProjectCount: len(g.projects),
			Percentage:   share(g.credits, totalCredits),
		})
	}

	sort.Slice(breakdown, func(i, j int) bool {
		return breakdown[i].Year > breakdown[j].Year
	})

	return breakdown
}

// assessRisk scores diversification against the fixed project-type set
func (a *Aggregator) assessRisk(byType []TypeBreakdown) RiskAssessment {
	distinctTypes := len(byType)
	score := math.Min(float64(distinctTypes)/float64(len(AllProjectTypes)), 1) * 100
	score = math.Round(score*100) / 100

	level := RiskLevelHigh
	if score > 60 {
		level = RiskLevelLow
	} else if score > 30 {
		level = RiskLevelMedium
	}

	var factors []string
	if distinctTypes == 0 {
		factors = append(factors, "No completed purchases on record")
	} else if distinctTypes < 3 {
		factors = append(factors, fmt.Sprintf("Credits concentrated in %d project type(s)", distinctTypes))
	}

	return RiskAssessment{
		DiversificationScore: score,
		OverallRisk:          level,
		Factors:              factors,
	}
}

// assessPerformance computes cost and impact efficiency, guarding zero divisions
func (a *Aggregator) assessPerformance(totalCredits, totalInvestment float64) PortfolioPerformance {
	benchmark := a.cfg.Benchmarks[BenchmarkCostPerCredit].Value

	perf := PortfolioPerformance{CostBenchmark: benchmark}
	if totalInvestment > 0 {
		perf.ImpactEfficiency = totalCredits / totalInvestment * 1000
	}
	if totalCredits > 0 {
		perf.AverageCostPerCredit = totalInvestment / totalCredits
	}
	perf.Outperforming = perf.AverageCostPerCredit > 0 && perf.AverageCostPerCredit < benchmark

	return perf
}

// share returns part/total as a percentage, 0 when total is 0
func share(part, total float64) float64 {
	if total == 0 {
		return 0
	}
	return part / total * 100
}
