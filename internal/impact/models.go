package impact

import (
	"time"

	"github.com/google/uuid"
)

// =====================================================
// Enums and Constants
// =====================================================

// ProjectType represents the category of a carbon project
type ProjectType string

const (
	ProjectTypeReforestation       ProjectType = "reforestation"
	ProjectTypeSolar               ProjectType = "solar"
	ProjectTypeWind                ProjectType = "wind"
	ProjectTypeBiogas              ProjectType = "biogas"
	ProjectTypeWasteManagement     ProjectType = "waste_management"
	ProjectTypeMangroveRestoration ProjectType = "mangrove_restoration"
)

// AllProjectTypes lists every supported project type. The size of this set
// is the denominator of the diversification score.
var AllProjectTypes = []ProjectType{
	ProjectTypeReforestation,
	ProjectTypeSolar,
	ProjectTypeWind,
	ProjectTypeBiogas,
	ProjectTypeWasteManagement,
	ProjectTypeMangroveRestoration,
}

// ProjectStatus represents the lifecycle status of a project
type ProjectStatus string

const (
	ProjectStatusDraft     ProjectStatus = "draft"
	ProjectStatusPending   ProjectStatus = "pending"
	ProjectStatusApproved  ProjectStatus = "approved"
	ProjectStatusActive    ProjectStatus = "active"
	ProjectStatusCompleted ProjectStatus = "completed"
	ProjectStatusSuspended ProjectStatus = "suspended"
)

// PaymentStatus represents the payment status of a purchase
type PaymentStatus string

const (
	PaymentStatusPending   PaymentStatus = "pending"
	PaymentStatusCompleted PaymentStatus = "completed"
	PaymentStatusFailed    PaymentStatus = "failed"
	PaymentStatusRefunded  PaymentStatus = "refunded"
)

// ReportStatus represents the lifecycle status of an impact report
type ReportStatus string

const (
	ReportStatusDraft     ReportStatus = "draft"
	ReportStatusFinal     ReportStatus = "final"
	ReportStatusCertified ReportStatus = "certified"
	ReportStatusArchived  ReportStatus = "archived"
)

// ReportType represents the kind of impact report requested
type ReportType string

const (
	ReportTypeComprehensive ReportType = "comprehensive"
	ReportTypePortfolio     ReportType = "portfolio"
	ReportTypeImpact        ReportType = "impact"
)

// RiskLevel represents an overall portfolio risk bucket
type RiskLevel string

const (
	RiskLevelLow    RiskLevel = "low"
	RiskLevelMedium RiskLevel = "medium"
	RiskLevelHigh   RiskLevel = "high"
)

// ComparisonStatus buckets a buyer metric relative to a benchmark
type ComparisonStatus string

const (
	ComparisonAboveAverage ComparisonStatus = "above_average"
	ComparisonAverage      ComparisonStatus = "average"
	ComparisonBelowAverage ComparisonStatus = "below_average"
)

// RecommendationCategory classifies advisory output
type RecommendationCategory string

const (
	RecommendationDiversification       RecommendationCategory = "diversification"
	RecommendationRiskMitigation        RecommendationCategory = "risk_mitigation"
	RecommendationPortfolioOptimization RecommendationCategory = "portfolio_optimization"
	RecommendationImpactEnhancement     RecommendationCategory = "impact_enhancement"
)

// CertificateType represents the kind of offset certificate issued
type CertificateType string

const (
	CertificateTypeOffset     CertificateType = "carbon_offset"
	CertificateTypeRetirement CertificateType = "credit_retirement"
)

// ReportExpiryDays is the soft-delete window for generated reports.
const ReportExpiryDays = 90

// =====================================================
// External Read Models
// =====================================================

// Purchase is a completed credit purchase from the transaction ledger.
// The engine never mutates purchases; they are read-only input.
type Purchase struct {
	ID           uuid.UUID     `json:"id" db:"id"`
	BuyerID      uuid.UUID     `json:"buyer_id" db:"buyer_id"`
	ProjectID    uuid.UUID     `json:"project_id" db:"project_id"`
	CreditAmount float64       `json:"credit_amount" db:"credit_amount"`
	UnitPrice    float64       `json:"unit_price" db:"unit_price"`
	TotalAmount  float64       `json:"total_amount" db:"total_amount"`
	Status       PaymentStatus `json:"status" db:"status"`
	CreatedAt    time.Time     `json:"created_at" db:"created_at"`
}

// Location is a project's geographic placement
type Location struct {
	Country   string   `json:"country" db:"country"`
	Region    string   `json:"region" db:"region"`
	Latitude  *float64 `json:"latitude,omitempty" db:"latitude"`
	Longitude *float64 `json:"longitude,omitempty" db:"longitude"`
}

// Project is a read-only view of a carbon project record
type Project struct {
	ID                 uuid.UUID     `json:"id" db:"id"`
	Name               string        `json:"name" db:"name"`
	Type               ProjectType   `json:"type" db:"type"`
	Status             ProjectStatus `json:"status" db:"status"`
	Location           Location      `json:"location"`
	Budget             float64       `json:"budget" db:"budget"`
	StartDate          *time.Time    `json:"start_date,omitempty" db:"start_date"`
	EndDate            *time.Time    `json:"end_date,omitempty" db:"end_date"`
	TargetCarbonImpact float64       `json:"target_carbon_impact" db:"target_carbon_impact"`
}

// Buyer is the minimal buyer profile the engine needs
type Buyer struct {
	ID           uuid.UUID `json:"id" db:"id"`
	Name         string    `json:"name" db:"name"`
	Organization *string   `json:"organization,omitempty" db:"organization"`
}

// MeasurementData is the per-type evidence attached to a progress update.
// Only the fields matching the project type are populated; the rest stay nil.
type MeasurementData struct {
	Type                 ProjectType `json:"type"`
	TreesPlanted         *int        `json:"trees_planted,omitempty"`
	EnergyGeneratedKWh   *float64    `json:"energy_generated_kwh,omitempty"`
	WasteProcessedTonnes *float64    `json:"waste_processed_tonnes,omitempty"`
	AreaRestoredHectares *float64    `json:"area_restored_hectares,omitempty"`
}

// ProgressUpdate is a time-ordered per-project progress record
type ProgressUpdate struct {
	ID                 uuid.UUID        `json:"id" db:"id"`
	ProjectID          uuid.UUID        `json:"project_id" db:"project_id"`
	Title              string           `json:"title" db:"title"`
	CarbonImpactToDate float64          `json:"carbon_impact_to_date" db:"carbon_impact_to_date"`
	ProgressPercentage float64          `json:"progress_percentage" db:"progress_percentage"`
	Measurement        *MeasurementData `json:"measurement,omitempty"`
	CreatedAt          time.Time        `json:"created_at" db:"created_at"`
}

// =====================================================
// Computed: Portfolio
// =====================================================

// TypeBreakdown groups a buyer's holdings by project type
type TypeBreakdown struct {
	ProjectType  ProjectType `json:"project_type"`
	CreditsOwned float64     `json:"credits_owned"`
	Investment   float64     `json:"investment"`
	ProjectCount int         `json:"project_count"`
	Percentage   float64     `json:"percentage"`
}

// GeographyBreakdown groups holdings by (country, region)
type GeographyBreakdown struct {
	Country      string  `json:"country"`
	Region       string  `json:"region"`
	CreditsOwned float64 `json:"credits_owned"`
	Investment   float64 `json:"investment"`
	ProjectCount int     `json:"project_count"`
	Percentage   float64 `json:"percentage"`
}

// VintageBreakdown groups holdings by purchase calendar year
type VintageBreakdown struct {
	Year         int     `json:"year"`
	CreditsOwned float64 `json:"credits_owned"`
	Investment   float64 `json:"investment"`
	ProjectCount int     `json:"project_count"`
	Percentage   float64 `json:"percentage"`
}

// RiskAssessment summarizes concentration risk across the portfolio
type RiskAssessment struct {
	DiversificationScore float64   `json:"diversification_score"`
	OverallRisk          RiskLevel `json:"overall_risk"`
	Factors              []string  `json:"factors,omitempty"`
}

// PortfolioPerformance summarizes cost and impact efficiency
type PortfolioPerformance struct {
	ImpactEfficiency     float64 `json:"impact_efficiency"` // credits per $1000 invested
	AverageCostPerCredit float64 `json:"average_cost_per_credit"`
	CostBenchmark        float64 `json:"cost_benchmark"`
	Outperforming        bool    `json:"outperforming"`
}

// BuyerPortfolio is the aggregated view of a buyer's completed purchases
type BuyerPortfolio struct {
	TotalCreditsOwned float64              `json:"total_credits_owned"`
	TotalInvestment   float64              `json:"total_investment"`
	ActiveProjects    int                  `json:"active_projects"`
	CompletedProjects int                  `json:"completed_projects"`
	ByType            []TypeBreakdown      `json:"by_type"`
	ByGeography       []GeographyBreakdown `json:"by_geography"`
	ByVintage         []VintageBreakdown   `json:"by_vintage"`
	Risk              RiskAssessment       `json:"risk"`
	Performance       PortfolioPerformance `json:"performance"`
}

// =====================================================
// Computed: Per-Project Summary
// =====================================================

// ImpactMetrics carries the latest measured impact of a project
type ImpactMetrics struct {
	CarbonImpactToDate float64 `json:"carbon_impact_to_date"`
	TargetCarbonImpact float64 `json:"target_carbon_impact"`
	CompletionRatio    float64 `json:"completion_ratio"`
}

// ProgressSnapshot is the current progress view of a project
type ProgressSnapshot struct {
	Percentage float64 `json:"percentage"`
	OnTrack    bool    `json:"on_track"`
}

// VerificationSnapshot is the verification cadence view of a project
type VerificationSnapshot struct {
	LastVerified     *time.Time `json:"last_verified,omitempty"`
	NextVerification time.Time  `json:"next_verification"`
	Status           string     `json:"status"`
}

// RecentUpdate is a progress update re-tagged for report display
type RecentUpdate struct {
	Title              string    `json:"title"`
	CarbonImpactToDate float64   `json:"carbon_impact_to_date"`
	Impact             string    `json:"impact"`
	Date               time.Time `json:"date"`
}

// ProjectFinancials summarizes the buyer's financial position in a project
type ProjectFinancials struct {
	TotalInvestment float64 `json:"total_investment"`
	PurchasePrice   float64 `json:"purchase_price"`
	ProjectBudget   float64 `json:"project_budget"`
}

// ProjectTimeline is the start/end window of a project
type ProjectTimeline struct {
	StartDate *time.Time `json:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty"`
}

// ProjectImpactSummary is the per-project snapshot for a buyer
type ProjectImpactSummary struct {
	ProjectID     uuid.UUID            `json:"project_id"`
	ProjectName   string               `json:"project_name"`
	ProjectType   ProjectType          `json:"project_type"`
	CreditsOwned  float64              `json:"credits_owned"`
	Status        ProjectStatus        `json:"status"`
	Impact        ImpactMetrics        `json:"impact"`
	Progress      ProgressSnapshot     `json:"progress"`
	Verification  VerificationSnapshot `json:"verification"`
	Location      Location             `json:"location"`
	Timeline      ProjectTimeline      `json:"timeline"`
	Financials    ProjectFinancials    `json:"financials"`
	RiskFactors   []string             `json:"risk_factors,omitempty"`
	RecentUpdates []RecentUpdate       `json:"recent_updates"`
	FirstPurchase time.Time            `json:"first_purchase"`
}

// =====================================================
// Computed: Total Impact
// =====================================================

// EquivalenceMetrics converts the offset total into intuitive units
type EquivalenceMetrics struct {
	TreesEquivalent  float64 `json:"trees_equivalent"`
	CarsOffRoad      float64 `json:"cars_off_road"`
	HomesPowered     float64 `json:"homes_powered"`
	FuelSavedGallons float64 `json:"fuel_saved_gallons"`
}

// SDGContribution aggregates impact per UN Sustainable Development Goal
type SDGContribution struct {
	Goal         int     `json:"goal"`
	Title        string  `json:"title"`
	CarbonImpact float64 `json:"carbon_impact"`
	ProjectCount int     `json:"project_count"`
}

// CumulativeImpact summarizes the portfolio across time
type CumulativeImpact struct {
	ProjectCount       int     `json:"project_count"`
	TotalInvestment    float64 `json:"total_investment"`
	TimespanYears      int     `json:"timespan_years"`
	GrowthRate         float64 `json:"growth_rate"`
	AverageProjectSize float64 `json:"average_project_size"`
}

// TotalImpactSummary rolls per-project summaries into portfolio-wide impact
type TotalImpactSummary struct {
	TotalCarbonOffset     float64            `json:"total_carbon_offset"`
	Equivalences          EquivalenceMetrics `json:"equivalences"`
	SDGContributions      []SDGContribution  `json:"sdg_contributions"`
	EnvironmentalBenefits []string           `json:"environmental_benefits"`
	SocialBenefits        []string           `json:"social_benefits"`
	EconomicBenefits      []string           `json:"economic_benefits"`
	Cumulative            CumulativeImpact   `json:"cumulative"`
}

// =====================================================
// Computed: Certificates
// =====================================================

// AuditEntry is one append-only line in a certificate's audit trail
type AuditEntry struct {
	Action    string    `json:"action"`
	Actor     string    `json:"actor"`
	Timestamp time.Time `json:"timestamp"`
	Detail    string    `json:"detail,omitempty"`
}

// ImpactCertificate is an immutable, verifiable offset certificate
type ImpactCertificate struct {
	ID             uuid.UUID       `json:"id" db:"id"`
	BuyerID        uuid.UUID       `json:"buyer_id" db:"buyer_id"`
	Type           CertificateType `json:"type" db:"type"`
	Quantification float64         `json:"quantification" db:"quantification"`
	Unit           string          `json:"unit" db:"unit"`
	Issuer         string          `json:"issuer" db:"issuer"`
	Verifier       string          `json:"verifier" db:"verifier"`
	SerialNumber   string          `json:"serial_number" db:"serial_number"`
	IssueDate      time.Time       `json:"issue_date" db:"issue_date"`
	ValidUntil     time.Time       `json:"valid_until" db:"valid_until"`
	ProjectIDs     []uuid.UUID     `json:"project_ids"`
	AuditTrail     []AuditEntry    `json:"audit_trail"`
}

// =====================================================
// Computed: Recommendations, Comparisons, Sustainability
// =====================================================

// BuyerRecommendation is a priority-ranked advisory entry
type BuyerRecommendation struct {
	Category               RecommendationCategory `json:"category"`
	Priority               string                 `json:"priority"` // high, medium, low
	Title                  string                 `json:"title"`
	Description            string                 `json:"description"`
	ImplementationPlan     []string               `json:"implementation_plan"`
	EstimatedRiskReduction float64                `json:"estimated_risk_reduction"`
	EstimatedImpactGain    float64                `json:"estimated_impact_gain"`
}

// ImpactComparison compares one buyer metric against an industry benchmark
type ImpactComparison struct {
	Metric         string           `json:"metric"`
	BuyerValue     float64          `json:"buyer_value"`
	BenchmarkValue float64          `json:"benchmark_value"`
	Percentile     float64          `json:"percentile"`
	Status         ComparisonStatus `json:"status"`
	Unit           string           `json:"unit,omitempty"`
}

// SustainabilityMetrics is the ESG-style scoring block of a report
type SustainabilityMetrics struct {
	ESGScore               float64  `json:"esg_score"`
	EnvironmentalAlignment float64  `json:"environmental_alignment"`
	SocialAlignment        float64  `json:"social_alignment"`
	GovernanceAlignment    float64  `json:"governance_alignment"`
	ReportingFrameworks    []string `json:"reporting_frameworks"`
	Certifications         []string `json:"certifications,omitempty"`
	TransparencyScore      float64  `json:"transparency_score"`
}

// =====================================================
// Aggregate Root
// =====================================================

// ReportPeriod bounds the purchases considered for a report
type ReportPeriod struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// BuyerImpactReport is the persisted aggregate composed by the assembler.
// Content is frozen once the report reaches final; certification and
// archival are status transitions only.
type BuyerImpactReport struct {
	ID               uuid.UUID              `json:"id"`
	BuyerID          uuid.UUID              `json:"buyer_id"`
	BuyerName        string                 `json:"buyer_name"`
	ReportType       ReportType             `json:"report_type"`
	Period           *ReportPeriod          `json:"period,omitempty"`
	Portfolio        BuyerPortfolio         `json:"portfolio"`
	ProjectSummaries []ProjectImpactSummary `json:"project_summaries"`
	TotalImpact      TotalImpactSummary     `json:"total_impact"`
	Recommendations  []BuyerRecommendation  `json:"recommendations"`
	Comparisons      []ImpactComparison     `json:"comparisons"`
	Sustainability   SustainabilityMetrics  `json:"sustainability"`
	GeneratedBy      string                 `json:"generated_by"`
	GeneratedAt      time.Time              `json:"generated_at"`
	ExpiresAt        time.Time              `json:"expires_at"`
	Status           ReportStatus           `json:"status"`
}

// ReportSummary is the list-view projection of a stored report
type ReportSummary struct {
	ID                uuid.UUID    `json:"id" db:"id"`
	BuyerID           uuid.UUID    `json:"buyer_id" db:"buyer_id"`
	ReportType        ReportType   `json:"report_type" db:"report_type"`
	Status            ReportStatus `json:"status" db:"status"`
	TotalCarbonOffset float64      `json:"total_carbon_offset" db:"total_carbon_offset"`
	GeneratedAt       time.Time    `json:"generated_at" db:"generated_at"`
	ExpiresAt         time.Time    `json:"expires_at" db:"expires_at"`
}

// =====================================================
// Request Types
// =====================================================

// GenerateReportRequest is the request to assemble a new report
type GenerateReportRequest struct {
	BuyerID    uuid.UUID     `json:"buyer_id" binding:"required"`
	ReportType ReportType    `json:"report_type,omitempty"`
	Period     *ReportPeriod `json:"period,omitempty"`
}

// IssueCertificateRequest is the request to issue an offset certificate
type IssueCertificateRequest struct {
	BuyerID    uuid.UUID       `json:"buyer_id" binding:"required"`
	Type       CertificateType `json:"type,omitempty"`
	ProjectIDs []uuid.UUID     `json:"project_ids,omitempty"`
	Period     *ReportPeriod   `json:"period,omitempty"`
}

// TransitionReportRequest moves a report to a later lifecycle status
type TransitionReportRequest struct {
	Status ReportStatus `json:"status" binding:"required"`
}

// ReportFilters narrows report listings
type ReportFilters struct {
	BuyerID    uuid.UUID
	ReportType *ReportType
	Limit      int
}
