package model

// Listing represents a single candidate property record. A Listing is
// immutable once fetched; it is owned by the fan-out coordinator for the
// duration of one analysis and then folded into an AnalysisRecord.
type Listing struct {
	ID             string  `json:"listing_id"`
	Price          float64 `json:"price"`
	Bedrooms       float64 `json:"bedrooms"`
	Bathrooms      float64 `json:"bathrooms"`
	SquareFootage  float64 `json:"square_footage,omitempty"`
	YearBuilt      int     `json:"year_built,omitempty"`
	PropertyType   string  `json:"property_type,omitempty"`
	Address        string  `json:"address,omitempty"`
	NeighborhoodID string  `json:"neighborhood_id,omitempty"`
	Description    string  `json:"description,omitempty"`
	Lon            float64 `json:"lon,omitempty"`
	Lat            float64 `json:"lat,omitempty"`
	Similarity     float64 `json:"similarity_score,omitempty"`
}

// Neighborhood holds the locality and hazard source data for an area.
// Description is free text mined by the locality evaluator for amenity
// keywords; the risk columns feed the hazard evaluator.
type Neighborhood struct {
	ID              string  `json:"neighborhood_id"`
	Name            string  `json:"neighborhood_name"`
	Description     string  `json:"description,omitempty"`
	FEMAFloodZone   string  `json:"fema_flood_zone_designation,omitempty"`
	TornadoRisk     string  `json:"tornado_risk_level,omitempty"`
	WildfireRisk    string  `json:"wildfire_risk_level,omitempty"`
	EarthquakeRisk  string  `json:"earthquake_risk_level,omitempty"`
	DominantWeather string  `json:"dominant_weather_pattern,omitempty"`
	Lon             float64 `json:"lon,omitempty"`
	Lat             float64 `json:"lat,omitempty"`
}

// SearchCriteria narrows the candidate listing search.
type SearchCriteria struct {
	PriceMin     float64  `json:"price_min,omitempty"`
	PriceMax     float64  `json:"price_max,omitempty"`
	BedroomsMin  float64  `json:"bedrooms_min,omitempty"`
	BathroomsMin float64  `json:"bathrooms_min,omitempty"`
	PropertyType string   `json:"property_type,omitempty"`
	Keywords     []string `json:"keywords,omitempty"`
}

// FinancialInfo carries the buyer's financial profile. Zero fields are
// filled from configured defaults before the pipeline runs.
type FinancialInfo struct {
	AnnualIncome       float64 `json:"annual_income,omitempty"`
	DownPaymentPercent float64 `json:"down_payment_percent,omitempty"`
	InterestRate       float64 `json:"interest_rate,omitempty"`
	LoanTermYears      int     `json:"loan_term_years,omitempty"`
	DTIMaxPercent      float64 `json:"debt_to_income_ratio_max,omitempty"`
	MonthlyDebts       float64 `json:"monthly_debts,omitempty"`
}

// UserContext bundles the read-only per-request user state handed to every
// evaluator. Evaluators must not mutate it.
type UserContext struct {
	Financial  FinancialInfo `json:"financial"`
	Priorities []string      `json:"priorities,omitempty"`
}
