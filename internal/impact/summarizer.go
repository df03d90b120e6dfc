package impact

import (
	"time"
)

// Verification cadence is a fixed placeholder until the verification
// workflow exposes a real schedule.
const verificationCadence = 30 * 24 * time.Hour

const recentUpdateLimit = 3

// Summarizer joins one project with the buyer's purchases and the project's
// progress updates to produce a per-project impact snapshot.
type Summarizer struct {
	now func() time.Time
}

// NewSummarizer creates a new project impact summarizer
func NewSummarizer() *Summarizer {
	return &Summarizer{now: time.Now}
}

// Summarize builds the ProjectImpactSummary for a single project. Purchases
// must already be filtered to this project; updates must be ordered newest
// first. An empty updates slice is valid input, not an error.
func (s *Summarizer) Summarize(project *Project, purchases []Purchase, updates []ProgressUpdate) ProjectImpactSummary {
	var creditsOwned, totalInvestment float64
	firstPurchase := time.Time{}
	for _, p := range purchases {
		creditsOwned += p.CreditAmount
		totalInvestment += p.TotalAmount
		if firstPurchase.IsZero() || p.CreatedAt.Before(firstPurchase) {
			firstPurchase = p.CreatedAt
		}
	}

	purchasePrice := 0.0
	if creditsOwned > 0 {
		purchasePrice = totalInvestment / creditsOwned
	}

	summary := ProjectImpactSummary{
		ProjectID:    project.ID,
		ProjectName:  project.Name,
		ProjectType:  project.Type,
		CreditsOwned: creditsOwned,
		Status:       project.Status,
		Location:     project.Location,
		Timeline: ProjectTimeline{
			StartDate: project.StartDate,
			EndDate:   project.EndDate,
		},
		Financials: ProjectFinancials{
			TotalInvestment: totalInvestment,
			PurchasePrice:   purchasePrice,
			ProjectBudget:   project.Budget,
		},
		FirstPurchase: firstPurchase,
	}

	summary.Impact = s.impactMetrics(project, updates)
	summary.Progress = s.progressSnapshot(project, updates)
	summary.Verification = VerificationSnapshot{
		NextVerification: s.now().Add(verificationCadence),
		Status:           "scheduled",
	}
	summary.RiskFactors = riskFactors(project)
	summary.RecentUpdates = recentUpdates(updates)

	return summary
}

// impactMetrics takes the latest update's carbon figure; absence of progress
// updates means zero impact to date, not an error.
func (s *Summarizer) impactMetrics(project *Project, updates []ProgressUpdate) ImpactMetrics {
	metrics := ImpactMetrics{TargetCarbonImpact: project.TargetCarbonImpact}
	if len(updates) > 0 {
		metrics.CarbonImpactToDate = updates[0].CarbonImpactToDate
	}
	if project.TargetCarbonImpact > 0 {
		metrics.CompletionRatio = metrics.CarbonImpactToDate / project.TargetCarbonImpact
	}
	return metrics
}

func (s *Summarizer) progressSnapshot(project *Project, updates []ProgressUpdate) ProgressSnapshot {
	snapshot := ProgressSnapshot{
		// Status-based simplification; no historical trend check.
		OnTrack: project.Status == ProjectStatusActive,
	}
	if len(updates) > 0 {
		snapshot.Percentage = updates[0].ProgressPercentage
	}
	return snapshot
}

func riskFactors(project *Project) []string {
	var factors []string
	if project.Status == ProjectStatusSuspended {
		factors = append(factors, "Project is currently suspended")
	}
	if project.EndDate != nil && project.EndDate.Before(time.Now()) && project.Status != ProjectStatusCompleted {
		factors = append(factors, "Project passed its planned end date without completing")
	}
	return factors
}

// recentUpdates returns the newest updates re-tagged with a fixed severity.
// No severity classification exists upstream yet.
func recentUpdates(updates []ProgressUpdate) []RecentUpdate {
	limit := recentUpdateLimit
	if len(updates) < limit {
		limit = len(updates)
	}

	recent := make([]RecentUpdate, 0, limit)
	for _, u := range updates[:limit] {
		recent = append(recent, RecentUpdate{
			Title:              u.Title,
			CarbonImpactToDate: u.CarbonImpactToDate,
			Impact:             "medium",
			Date:               u.CreatedAt,
		})
	}
	return recent
}
