package impact

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func buildPurchase(buyerID, projectID uuid.UUID, credits, total float64, createdAt time.Time) Purchase {
	unitPrice := 0.0
	if credits > 0 {
		unitPrice = total / credits
	}
	return Purchase{
		ID:           uuid.New(),
		BuyerID:      buyerID,
		ProjectID:    projectID,
		CreditAmount: credits,
		UnitPrice:    unitPrice,
		TotalAmount:  total,
		Status:       PaymentStatusCompleted,
		CreatedAt:    createdAt,
	}
}

func buildProject(id uuid.UUID, projectType ProjectType, status ProjectStatus, country string) *Project {
	return &Project{
		ID:                 id,
		Name:               "Project " + id.String()[:8],
		Type:               projectType,
		Status:             status,
		Location:           Location{Country: country, Region: "North"},
		Budget:             100000,
		TargetCarbonImpact: 1000,
	}
}

func TestBuildPortfolioTwoTypes(t *testing.T) {
	agg := NewAggregator(DefaultEngineConfig())

	buyerID := uuid.New()
	solarID := uuid.New()
	forestID := uuid.New()
	now := time.Date(2026, 3, 10, 12, 0, 0, 0, time.UTC)

	purchases := []Purchase{
		buildPurchase(buyerID, solarID, 100, 3000, now),
		buildPurchase(buyerID, forestID, 50, 1500, now.AddDate(0, 1, 0)),
	}
	projects := map[uuid.UUID]*Project{
		solarID:  buildProject(solarID, ProjectTypeSolar, ProjectStatusActive, "Kenya"),
		forestID: buildProject(forestID, ProjectTypeReforestation, ProjectStatusCompleted, "Brazil"),
	}

	portfolio := agg.BuildPortfolio(purchases, projects)

	assert.Equal(t, 150.0, portfolio.TotalCreditsOwned)
	assert.Equal(t, 4500.0, portfolio.TotalInvestment)
	assert.Equal(t, 1, portfolio.ActiveProjects)
	assert.Equal(t, 1, portfolio.CompletedProjects)

	assert.Len(t, portfolio.ByType, 2)
	assert.Equal(t, ProjectTypeSolar, portfolio.ByType[0].ProjectType)
	assert.InDelta(t, 66.7, portfolio.ByType[0].Percentage, 0.1)
	assert.Equal(t, ProjectTypeReforestation, portfolio.ByType[1].ProjectType)
	assert.InDelta(t, 33.3, portfolio.ByType[1].Percentage, 0.1)

	assert.InDelta(t, 33.33, portfolio.Risk.DiversificationScore, 0.01)
	assert.Equal(t, RiskLevelMedium, portfolio.Risk.OverallRisk)
}

func TestBuildPortfolioTotalsInvariant(t *testing.T) {
	agg := NewAggregator(DefaultEngineConfig())

	buyerID := uuid.New()
	now := time.Now()
	projects := make(map[uuid.UUID]*Project)
	var purchases []Purchase

	types := []ProjectType{ProjectTypeSolar, ProjectTypeWind, ProjectTypeBiogas, ProjectTypeReforestation}
	for i, projectType := range types {
		projectID := uuid.New()
		projects[projectID] = buildProject(projectID, projectType, ProjectStatusActive, "India")
		purchases = append(purchases,
			buildPurchase(buyerID, projectID, float64(10*(i+1)), float64(250*(i+1)), now.AddDate(0, 0, -i)))
	}

	portfolio := agg.BuildPortfolio(purchases, projects)

	var typeSum, pctSum float64
	for _, b := range portfolio.ByType {
		typeSum += b.CreditsOwned
		pctSum += b.Percentage
	}
	assert.InDelta(t, portfolio.TotalCreditsOwned, typeSum, 1e-9)
	assert.InDelta(t, 100, pctSum, 0.01)

	pctSum = 0
	for _, b := range portfolio.ByGeography {
		pctSum += b.Percentage
	}
	assert.InDelta(t, 100, pctSum, 0.01)

	pctSum = 0
	for _, b := range portfolio.ByVintage {
		pctSum += b.Percentage
	}
	assert.InDelta(t, 100, pctSum, 0.01)
}

func TestBuildPortfolioZeroPurchases(t *testing.T) {
	agg := NewAggregator(DefaultEngineConfig())

	portfolio := agg.BuildPortfolio(nil, map[uuid.UUID]*Project{})

	assert.Zero(t, portfolio.TotalCreditsOwned)
	assert.Zero(t, portfolio.TotalInvestment)
	assert.Zero(t, portfolio.ActiveProjects)
	assert.Zero(t, portfolio.CompletedProjects)
	assert.Empty(t, portfolio.ByType)
	assert.Empty(t, portfolio.ByGeography)
	assert.Empty(t, portfolio.ByVintage)
	assert.Equal(t, 0.0, portfolio.Risk.DiversificationScore)
	assert.Equal(t, RiskLevelHigh, portfolio.Risk.OverallRisk)
	assert.Zero(t, portfolio.Performance.AverageCostPerCredit)
	assert.Zero(t, portfolio.Performance.ImpactEfficiency)
	assert.False(t, portfolio.Performance.Outperforming)
}

func TestBuildPortfolioDeterministic(t *testing.T) {
	agg := NewAggregator(DefaultEngineConfig())

	buyerID := uuid.New()
	now := time.Date(2026, 1, 15, 0, 0, 0, 0, time.UTC)
	projects := make(map[uuid.UUID]*Project)
	var purchases []Purchase

	for i := 0; i < 6; i++ {
		projectID := uuid.New()
		projects[projectID] = buildProject(projectID, AllProjectTypes[i%len(AllProjectTypes)], ProjectStatusActive, "Chile")
		purchases = append(purchases, buildPurchase(buyerID, projectID, 20, 500, now.AddDate(0, i, 0)))
	}

	first := agg.BuildPortfolio(purchases, projects)
	second := agg.BuildPortfolio(purchases, projects)

	assert.Equal(t, first, second)
}

func TestAssessPerformanceOutperforming(t *testing.T) {
	agg := NewAggregator(DefaultEngineConfig())

	buyerID := uuid.New()
	projectID := uuid.New()
	purchases := []Purchase{
		// $20 per credit, below the $25 benchmark
		buildPurchase(buyerID, projectID, 100, 2000, time.Now()),
	}
	projects := map[uuid.UUID]*Project{
		projectID: buildProject(projectID, ProjectTypeWind, ProjectStatusActive, "Spain"),
	}

	portfolio := agg.BuildPortfolio(purchases, projects)

	assert.Equal(t, 20.0, portfolio.Performance.AverageCostPerCredit)
	assert.Equal(t, 50.0, portfolio.Performance.ImpactEfficiency)
	assert.True(t, portfolio.Performance.Outperforming)
}

func TestBuildPortfolioSkipsUnresolvedProjects(t *testing.T) {
	agg := NewAggregator(DefaultEngineConfig())

	buyerID := uuid.New()
	knownID := uuid.New()
	unknownID := uuid.New()
	purchases := []Purchase{
		buildPurchase(buyerID, knownID, 60, 1200, time.Now()),
		buildPurchase(buyerID, unknownID, 40, 800, time.Now()),
	}
	projects := map[uuid.UUID]*Project{
		knownID: buildProject(knownID, ProjectTypeBiogas, ProjectStatusActive, "Vietnam"),
	}

	portfolio := agg.BuildPortfolio(purchases, projects)

	// Totals still count every purchase; grouping only covers resolved projects.
	assert.Equal(t, 100.0, portfolio.TotalCreditsOwned)
	assert.Len(t, portfolio.ByType, 1)
	assert.Equal(t, 60.0, portfolio.ByType[0].CreditsOwned)
}
