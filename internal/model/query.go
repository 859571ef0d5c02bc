package model

import "time"

// QueryStatus represents the current state of a recommendation query.
type QueryStatus string

const (
	QueryStatusQueued    QueryStatus = "queued"
	QueryStatusSearching QueryStatus = "searching"
	QueryStatusAnalyzing QueryStatus = "analyzing"
	QueryStatusRanking   QueryStatus = "ranking"
	QueryStatusComplete  QueryStatus = "complete"
	QueryStatusFailed    QueryStatus = "failed"
)

// QueryInput is the full request recorded with each query.
type QueryInput struct {
	Criteria   SearchCriteria `json:"search_criteria"`
	Financial  FinancialInfo  `json:"user_financial_info"`
	Priorities []string       `json:"priorities,omitempty"`
}

// QueryResult summarizes the outcome of one pipeline run for history.
type QueryResult struct {
	TierShown     Tier               `json:"tier_shown"`
	SurfacedCount int                `json:"surfaced_count"`
	TotalListings int                `json:"total_listings"`
	TopScore      float64            `json:"top_score"`
	Error         string             `json:"error,omitempty"`
	Set           *RecommendationSet `json:"set,omitempty"`
}

// Query is one recorded recommendation request.
type Query struct {
	ID        string       `json:"id"`
	Input     QueryInput   `json:"input"`
	Status    QueryStatus  `json:"status"`
	Result    *QueryResult `json:"result,omitempty"`
	CreatedAt time.Time    `json:"created_at"`
	UpdatedAt time.Time    `json:"updated_at"`
}
