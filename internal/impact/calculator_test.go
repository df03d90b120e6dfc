package impact

import (
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
)

func buildSummary(projectType ProjectType, impact, investment float64, firstPurchase time.Time) ProjectImpactSummary {
	return ProjectImpactSummary{
		ProjectID:   uuid.New(),
		ProjectName: "Test " + string(projectType),
		ProjectType: projectType,
		Impact:      ImpactMetrics{CarbonImpactToDate: impact},
		Financials:  ProjectFinancials{TotalInvestment: investment},
		FirstPurchase: firstPurchase,
	}
}

func TestCalculateTotalImpactEmpty(t *testing.T) {
	calc := NewCalculator(DefaultEngineConfig())

	total := calc.CalculateTotalImpact(nil)

	assert.Zero(t, total.TotalCarbonOffset)
	assert.Zero(t, total.Equivalences.TreesEquivalent)
	assert.Zero(t, total.Equivalences.CarsOffRoad)
	assert.Empty(t, total.SDGContributions)
	assert.Empty(t, total.EnvironmentalBenefits)
	assert.Zero(t, total.Cumulative.ProjectCount)
	assert.Zero(t, total.Cumulative.AverageProjectSize)
}

func TestCalculateEquivalences(t *testing.T) {
	calc := NewCalculator(DefaultEngineConfig())
	now := time.Now()

	summaries := []ProjectImpactSummary{
		buildSummary(ProjectTypeSolar, 46, 1000, now),
	}

	total := calc.CalculateTotalImpact(summaries)

	assert.Equal(t, 46.0, total.TotalCarbonOffset)
	assert.Equal(t, 46.0*40, total.Equivalences.TreesEquivalent)
	assert.InDelta(t, 10.0, total.Equivalences.CarsOffRoad, 1e-9)
	assert.InDelta(t, 46.0/7.3, total.Equivalences.HomesPowered, 1e-9)
	assert.Equal(t, 46.0*113, total.Equivalences.FuelSavedGallons)
}

func TestSDGContributions(t *testing.T) {
	calc := NewCalculator(DefaultEngineConfig())
	now := time.Now()

	summaries := []ProjectImpactSummary{
		buildSummary(ProjectTypeSolar, 100, 2000, now),         // goals 7, 13
		buildSummary(ProjectTypeReforestation, 50, 1000, now),  // goals 13, 15
	}

	total := calc.CalculateTotalImpact(summaries)

	assert.Len(t, total.SDGContributions, 3)
	assert.Equal(t, 7, total.SDGContributions[0].Goal)
	assert.Equal(t, 100.0, total.SDGContributions[0].CarbonImpact)
	assert.Equal(t, 1, total.SDGContributions[0].ProjectCount)

	assert.Equal(t, 13, total.SDGContributions[1].Goal)
	assert.Equal(t, 150.0, total.SDGContributions[1].CarbonImpact)
	assert.Equal(t, 2, total.SDGContributions[1].ProjectCount)

	assert.Equal(t, 15, total.SDGContributions[2].Goal)
	assert.Equal(t, 50.0, total.SDGContributions[2].CarbonImpact)
}

func TestBenefitsPerDistinctType(t *testing.T) {
	calc := NewCalculator(DefaultEngineConfig())
	now := time.Now()

	summaries := []ProjectImpactSummary{
		buildSummary(ProjectTypeSolar, 10, 200, now),
		buildSummary(ProjectTypeSolar, 20, 400, now),
		buildSummary(ProjectTypeBiogas, 5, 100, now),
	}

	total := calc.CalculateTotalImpact(summaries)

	// One entry per distinct type, not per project
	assert.Len(t, total.EnvironmentalBenefits, 2)
	assert.Len(t, total.SocialBenefits, 2)
	assert.Len(t, total.EconomicBenefits, 2)
}

func TestCumulativeImpact(t *testing.T) {
	calc := NewCalculator(DefaultEngineConfig())

	early := time.Date(2023, 1, 1, 0, 0, 0, 0, time.UTC)
	late := time.Date(2025, 6, 1, 0, 0, 0, 0, time.UTC)
	summaries := []ProjectImpactSummary{
		buildSummary(ProjectTypeSolar, 90, 2000, early),
		buildSummary(ProjectTypeWind, 60, 1000, late),
	}

	total := calc.CalculateTotalImpact(summaries)

	assert.Equal(t, 2, total.Cumulative.ProjectCount)
	assert.Equal(t, 3000.0, total.Cumulative.TotalInvestment)
	assert.Equal(t, 3, total.Cumulative.TimespanYears)
	assert.Equal(t, 75.0, total.Cumulative.AverageProjectSize)
	assert.Equal(t, 50.0, total.Cumulative.GrowthRate)
}

func TestCumulativeSingleProject(t *testing.T) {
	calc := NewCalculator(DefaultEngineConfig())

	summaries := []ProjectImpactSummary{
		buildSummary(ProjectTypeSolar, 80, 2000, time.Now()),
	}

	total := calc.CalculateTotalImpact(summaries)

	assert.Zero(t, total.Cumulative.TimespanYears)
	// Single-year portfolio reports the full offset as the rate
	assert.Equal(t, 80.0, total.Cumulative.GrowthRate)
}

func TestCalculateTotalImpactDeterministic(t *testing.T) {
	calc := NewCalculator(DefaultEngineConfig())
	now := time.Now()

	summaries := []ProjectImpactSummary{
		buildSummary(ProjectTypeMangroveRestoration, 30, 600, now),
		buildSummary(ProjectTypeWasteManagement, 20, 500, now),
		buildSummary(ProjectTypeSolar, 50, 1500, now),
	}

	assert.Equal(t, calc.CalculateTotalImpact(summaries), calc.CalculateTotalImpact(summaries))
}
