package impact

// EquivalenceFactors converts a carbon-offset total (tonnes CO2e) into
// intuitive real-world units. The defaults are domain approximations, not
// physical constants; they are injected so they can be tuned without
// touching the calculator.
type EquivalenceFactors struct {
	TreesPerTonne       float64 `json:"trees_per_tonne"`
	TonnesPerCarYear    float64 `json:"tonnes_per_car_year"`
	TonnesPerHomeYear   float64 `json:"tonnes_per_home_year"`
	FuelGallonsPerTonne float64 `json:"fuel_gallons_per_tonne"`
}

// SDGGoal is one UN Sustainable Development Goal referenced by number
type SDGGoal struct {
	Number int    `json:"number"`
	Title  string `json:"title"`
}

// BenchmarkMetric names the fixed industry benchmarks used for comparison
type BenchmarkMetric string

const (
	BenchmarkCostPerCredit    BenchmarkMetric = "cost_per_credit"
	BenchmarkDiversification  BenchmarkMetric = "diversification_score"
	BenchmarkImpactEfficiency BenchmarkMetric = "impact_efficiency"
	BenchmarkCarbonOffset     BenchmarkMetric = "total_carbon_offset"
)

// BenchmarkEntry is one row of the fixed benchmark table
type BenchmarkEntry struct {
	Value float64 `json:"value"`
	Unit  string  `json:"unit"`
	// LowerIsBetter flips the above/below bucketing for cost-like metrics.
	LowerIsBetter bool `json:"lower_is_better"`
}

// EngineConfig is the process-wide, immutable parameter set of the engine.
// Loaded once at startup and injected into components.
type EngineConfig struct {
	Equivalence EquivalenceFactors                  `json:"equivalence"`
	SDGMapping  map[ProjectType][]SDGGoal           `json:"sdg_mapping"`
	Benchmarks  map[BenchmarkMetric]BenchmarkEntry  `json:"benchmarks"`
	Benefits    map[ProjectType]ProjectTypeBenefits `json:"benefits"`
	Issuer      string                              `json:"issuer"`
	Verifier    string                              `json:"verifier"`
}

// ProjectTypeBenefits is the qualitative benefit wording per project type
type ProjectTypeBenefits struct {
	Environmental string `json:"environmental"`
	Social        string `json:"social"`
	Economic      string `json:"economic"`
}

// DefaultEngineConfig returns the shipped parameter set. Callers must treat
// the returned maps as read-only.
func DefaultEngineConfig() EngineConfig {
	return EngineConfig{
		Equivalence: EquivalenceFactors{
			TreesPerTonne:       40,
			TonnesPerCarYear:    4.6,
			TonnesPerHomeYear:   7.3,
			FuelGallonsPerTonne: 113,
		},
		SDGMapping: map[ProjectType][]SDGGoal{
			ProjectTypeReforestation: {
				{Number: 13, Title: "Climate Action"},
				{Number: 15, Title: "Life on Land"},
			},
			ProjectTypeSolar: {
				{Number: 7, Title: "Affordable and Clean Energy"},
				{Number: 13, Title: "Climate Action"},
			},
			ProjectTypeWind: {
				{Number: 7, Title: "Affordable and Clean Energy"},
				{Number: 13, Title: "Climate Action"},
			},
			ProjectTypeBiogas: {
				{Number: 7, Title: "Affordable and Clean Energy"},
				{Number: 12, Title: "Responsible Consumption and Production"},
			},
			ProjectTypeWasteManagement: {
				{Number: 11, Title: "Sustainable Cities and Communities"},
				{Number: 12, Title: "Responsible Consumption and Production"},
			},
			ProjectTypeMangroveRestoration: {
				{Number: 13, Title: "Climate Action"},
				{Number: 14, Title: "Life Below Water"},
				{Number: 15, Title: "Life on Land"},
			},
		},
		Benchmarks: map[BenchmarkMetric]BenchmarkEntry{
			BenchmarkCostPerCredit:    {Value: 25, Unit: "USD/credit", LowerIsBetter: true},
			BenchmarkDiversification:  {Value: 50, Unit: "score"},
			BenchmarkImpactEfficiency: {Value: 40, Unit: "credits/$1000"},
			BenchmarkCarbonOffset:     {Value: 100, Unit: "tCO2e"},
		},
		Benefits: map[ProjectType]ProjectTypeBenefits{
			ProjectTypeReforestation: {
				Environmental: "Restored forest cover and biodiversity habitat",
				Social:        "Employment for local forestry communities",
				Economic:      "Sustainable timber and non-timber forest income",
			},
			ProjectTypeSolar: {
				Environmental: "Displaced fossil-fuel electricity generation",
				Social:        "Clean energy access for surrounding communities",
				Economic:      "Reduced long-term energy costs",
			},
			ProjectTypeWind: {
				Environmental: "Zero-emission power generation at scale",
				Social:        "Lease income for rural landholders",
				Economic:      "Stable regional energy pricing",
			},
			ProjectTypeBiogas: {
				Environmental: "Captured methane from organic waste",
				Social:        "Cleaner cooking fuel for rural households",
				Economic:      "Fertilizer by-product revenue for farms",
			},
			ProjectTypeWasteManagement: {
				Environmental: "Diverted waste from open landfill",
				Social:        "Improved sanitation and public health",
				Economic:      "Jobs in collection and recycling",
			},
			ProjectTypeMangroveRestoration: {
				Environmental: "Coastal carbon sink and storm buffering",
				Social:        "Protected fishing livelihoods",
				Economic:      "Revived coastal fishery yields",
			},
		},
		Issuer:   "CarbonDesk Registry",
		Verifier: "CarbonDesk Verification Services",
	}
}
