package model

// Feature is a single amenity found near a listing.
type Feature struct {
	Name     string `json:"feature"`
	Category string `json:"category"`
	Weight   int    `json:"score_contribution"`
}

// LocalityReport is the canonical locality payload. OverallScore is on a
// 0-25 scale.
type LocalityReport struct {
	ListingID        string    `json:"listing_id"`
	Address          string    `json:"address,omitempty"`
	Schools          []Feature `json:"schools,omitempty"`
	Shopping         []Feature `json:"shopping,omitempty"`
	Restaurants      []Feature `json:"restaurants,omitempty"`
	Transportation   []Feature `json:"transportation,omitempty"`
	ParksRecreation  []Feature `json:"parks_recreation,omitempty"`
	Amenities        []Feature `json:"amenities,omitempty"`
	WalkabilityScore int       `json:"walkability_score"`
	OverallScore     float64   `json:"overall_score"`
	Rating           string    `json:"neighborhood_rating,omitempty"`
	CenterDistanceKm float64   `json:"center_distance_km,omitempty"`
	Pros             []string  `json:"pros,omitempty"`
	Cons             []string  `json:"cons,omitempty"`
}

// RiskLevel is a coarse hazard grade as stored in the neighborhoods table.
type RiskLevel string

const (
	RiskLow     RiskLevel = "Low"
	RiskMedium  RiskLevel = "Medium"
	RiskHigh    RiskLevel = "High"
	RiskUnknown RiskLevel = "Unknown"
)

// HazardReport is the canonical hazard payload. OverallRiskScore is 1-10
// (lower is better); OverallSafetyScore is the 0-25 rescaling used by the
// scoring engine.
type HazardReport struct {
	ListingID              string    `json:"listing_id"`
	Neighborhood           string    `json:"neighborhood_name,omitempty"`
	FloodZone              string    `json:"fema_flood_zone,omitempty"`
	FloodRisk              RiskLevel `json:"flood_risk"`
	FloodInsuranceRequired bool      `json:"flood_insurance_required"`
	TornadoRisk            RiskLevel `json:"tornado_risk"`
	WildfireRisk           RiskLevel `json:"wildfire_risk"`
	EarthquakeRisk         RiskLevel `json:"earthquake_risk"`
	OverallRiskScore       float64   `json:"overall_risk_score"`
	OverallSafetyScore     float64   `json:"overall_safety_score"`
	Summary                string    `json:"risk_summary,omitempty"`
	Recommendations        []string  `json:"recommendations,omitempty"`
}

// MonthlyCosts itemizes the estimated monthly cost of ownership.
type MonthlyCosts struct {
	Mortgage    float64 `json:"mortgage_payment"`
	PropertyTax float64 `json:"property_tax"`
	Insurance   float64 `json:"insurance"`
	HOA         float64 `json:"hoa"`
	Utilities   float64 `json:"utilities"`
	Maintenance float64 `json:"maintenance"`
	Total       float64 `json:"total_monthly"`
}

// Financing summarizes the loan terms used in the affordability analysis.
type Financing struct {
	DownPayment  float64 `json:"down_payment_required"`
	LoanAmount   float64 `json:"loan_amount"`
	InterestRate float64 `json:"interest_rate"`
	TermYears    int     `json:"loan_term_years"`
}

// Investment holds the simple value-for-money assessment.
type Investment struct {
	PricePerSqft float64 `json:"price_per_sqft"`
	PropertyAge  int     `json:"property_age"`
	Score        int     `json:"investment_score"`
	Good         bool    `json:"good_investment"`
}

// AffordabilityReport is the canonical affordability payload.
type AffordabilityReport struct {
	ListingID         string       `json:"listing_id"`
	PropertyPrice     float64      `json:"property_price"`
	IsAffordable      bool         `json:"is_affordable"`
	BackEndRatio      float64      `json:"back_end_ratio"`
	MonthlyIncome     float64      `json:"monthly_income"`
	MaxMonthlyPayment float64      `json:"max_monthly_payment"`
	MonthlySurplus    float64      `json:"monthly_surplus"`
	Costs             MonthlyCosts `json:"monthly_costs"`
	Financing         Financing    `json:"financing"`
	Investment        Investment   `json:"investment_analysis"`
}

// Tier is a discrete recommendation bucket derived from composite score.
type Tier string

const (
	TierUnset             Tier = ""
	TierHighlyRecommended Tier = "highly_recommended"
	TierRecommended       Tier = "recommended"
	TierCaution           Tier = "consider_with_caution"
	TierNotRecommended    Tier = "not_recommended"
	TierNone              Tier = "none"
)

// AnalysisRecord is the merged, scored, per-listing result. It is written
// exactly once by each pipeline stage: the coordinator fills the three
// partials, the scoring engine fills score/pros/cons, the ranker fills Tier.
type AnalysisRecord struct {
	Listing        Listing                      `json:"listing"`
	Locality       Partial[LocalityReport]      `json:"locality_analysis"`
	Hazard         Partial[HazardReport]        `json:"hazard_analysis"`
	Affordability  Partial[AffordabilityReport] `json:"affordability_analysis"`
	CompositeScore float64                      `json:"composite_score"`
	Pros           []string                     `json:"pros"`
	Cons           []string                     `json:"cons"`
	Tier           Tier                         `json:"tier"`
}

// FullyFailed reports whether all three analysis dimensions failed.
func (r *AnalysisRecord) FullyFailed() bool {
	return !r.Locality.OK() && !r.Hazard.OK() && !r.Affordability.OK()
}

// SetSummary is the aggregate view attached to a RecommendationSet.
type SetSummary struct {
	TotalListings          int     `json:"total_listings"`
	HighlyRecommendedCount int     `json:"highly_recommended_count"`
	RecommendedCount       int     `json:"recommended_count"`
	CautionCount           int     `json:"caution_count"`
	AverageScore           float64 `json:"average_score"`
	Status                 string  `json:"recommendation_status"`
}

// RecommendationSet is the final pipeline output. Records holds the surfaced
// listings in rank order; AllRanked holds every analyzed listing so that no
// candidate is dropped silently.
type RecommendationSet struct {
	Records         []AnalysisRecord `json:"records"`
	AllRanked       []AnalysisRecord `json:"all_listings_ranked"`
	TierShown       Tier             `json:"tier_shown"`
	GuidanceMessage string           `json:"guidance_message"`
	Writeup         string           `json:"best_property_writeup,omitempty"`
	Summary         SetSummary       `json:"summary"`
}
