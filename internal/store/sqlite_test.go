package store

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homescout-ai/homescout/internal/model"
)

func newTestSQLiteStore(t *testing.T) *SQLiteStore {
	t.Helper()
	dbPath := filepath.Join(t.TempDir(), "test.db")
	st, err := NewSQLite(dbPath)
	require.NoError(t, err)
	t.Cleanup(func() { st.Close() }) //nolint:errcheck
	require.NoError(t, st.Migrate(context.Background()))
	return st
}

func testListing(id string, price float64) model.Listing {
	return model.Listing{
		ID:             id,
		Price:          price,
		Bedrooms:       3,
		Bathrooms:      2,
		SquareFootage:  1800,
		YearBuilt:      2005,
		PropertyType:   "single_family",
		Address:        "12 Maple St",
		NeighborhoodID: "nbhd-1",
		Description:    "Charming home near parks and good schools",
	}
}

// --- Listings ---

func TestSQLite_Listings_UpsertAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.UpsertListings(ctx, []model.Listing{testListing("l1", 350000)})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := st.GetListing(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, 350000.0, got.Price)
	assert.Equal(t, "single_family", got.PropertyType)
	assert.Equal(t, "nbhd-1", got.NeighborhoodID)
}

func TestSQLite_Listings_GetMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetListing(context.Background(), "nope")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_Listings_UpsertOverwrites(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.UpsertListings(ctx, []model.Listing{testListing("l1", 350000)})
	require.NoError(t, err)

	updated := testListing("l1", 375000)
	updated.Description = "price reduced"
	_, err = st.UpsertListings(ctx, []model.Listing{updated})
	require.NoError(t, err)

	got, err := st.GetListing(ctx, "l1")
	require.NoError(t, err)
	assert.Equal(t, 375000.0, got.Price)
	assert.Equal(t, "price reduced", got.Description)
}

func TestSQLite_Listings_UpsertEmptyID(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.UpsertListings(context.Background(), []model.Listing{{Price: 100}})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "empty id")
}

func TestSQLite_SearchListings_PriceRange(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.UpsertListings(ctx, []model.Listing{
		testListing("cheap", 200000),
		testListing("mid", 350000),
		testListing("high", 600000),
	})
	require.NoError(t, err)

	got, err := st.SearchListings(ctx, ListingFilter{PriceMin: 250000, PriceMax: 500000})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "mid", got[0].ID)
}

func TestSQLite_SearchListings_BedroomsAndType(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	condo := testListing("c1", 300000)
	condo.PropertyType = "condo"
	condo.Bedrooms = 2
	house := testListing("h1", 400000)

	_, err := st.UpsertListings(ctx, []model.Listing{condo, house})
	require.NoError(t, err)

	got, err := st.SearchListings(ctx, ListingFilter{BedroomsMin: 3})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "h1", got[0].ID)

	got, err = st.SearchListings(ctx, ListingFilter{PropertyType: "Condo"})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "c1", got[0].ID)
}

func TestSQLite_SearchListings_Keywords(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	pool := testListing("p1", 450000)
	pool.Description = "Resort style backyard with POOL and spa"
	plain := testListing("p2", 420000)
	plain.Description = "Cozy starter home"

	_, err := st.UpsertListings(ctx, []model.Listing{pool, plain})
	require.NoError(t, err)

	got, err := st.SearchListings(ctx, ListingFilter{Keywords: []string{"pool"}})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, "p1", got[0].ID)
}

func TestSQLite_SearchListings_LimitAndOrder(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	var listings []model.Listing
	for i := 0; i < 5; i++ {
		listings = append(listings, testListing(fmt.Sprintf("l%d", i), float64(500000-i*10000)))
	}
	_, err := st.UpsertListings(ctx, listings)
	require.NoError(t, err)

	got, err := st.SearchListings(ctx, ListingFilter{Limit: 3})
	require.NoError(t, err)
	require.Len(t, got, 3)
	// Cheapest first
	assert.Equal(t, "l4", got[0].ID)
}

func TestSQLite_SearchListings_NoMatches(t *testing.T) {
	st := newTestSQLiteStore(t)

	got, err := st.SearchListings(context.Background(), ListingFilter{PriceMin: 1})
	require.NoError(t, err)
	assert.Empty(t, got)
}

// --- Neighborhoods ---

func TestSQLite_Neighborhoods_UpsertAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	n, err := st.UpsertNeighborhoods(ctx, []model.Neighborhood{{
		ID:             "nbhd-1",
		Name:           "Oak Hills",
		Description:    "Quiet area with top rated schools and parks",
		FEMAFloodZone:  "X",
		TornadoRisk:    "Low",
		WildfireRisk:   "Medium",
		EarthquakeRisk: "Low",
	}})
	require.NoError(t, err)
	assert.Equal(t, 1, n)

	got, err := st.GetNeighborhood(ctx, "nbhd-1")
	require.NoError(t, err)
	assert.Equal(t, "Oak Hills", got.Name)
	assert.Equal(t, "X", got.FEMAFloodZone)
	assert.Equal(t, "Medium", got.WildfireRisk)
}

func TestSQLite_Neighborhoods_GetMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	_, err := st.GetNeighborhood(context.Background(), "nowhere")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

// --- Query history ---

func testQueryInput() model.QueryInput {
	return model.QueryInput{
		Criteria:   model.SearchCriteria{PriceMax: 500000, BedroomsMin: 3},
		Financial:  model.FinancialInfo{AnnualIncome: 95000},
		Priorities: []string{"good schools"},
	}
}

func TestSQLite_Query_CreateAndGet(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	q, err := st.CreateQuery(ctx, testQueryInput())
	require.NoError(t, err)
	assert.NotEmpty(t, q.ID)
	assert.Equal(t, model.QueryStatusQueued, q.Status)

	got, err := st.GetQuery(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, 500000.0, got.Input.Criteria.PriceMax)
	assert.Equal(t, []string{"good schools"}, got.Input.Priorities)
	assert.Nil(t, got.Result)
}

func TestSQLite_Query_UpdateStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	q, err := st.CreateQuery(ctx, testQueryInput())
	require.NoError(t, err)

	require.NoError(t, st.UpdateQueryStatus(ctx, q.ID, model.QueryStatusAnalyzing))

	got, err := st.GetQuery(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QueryStatusAnalyzing, got.Status)
}

func TestSQLite_Query_UpdateStatusMissing(t *testing.T) {
	st := newTestSQLiteStore(t)

	err := st.UpdateQueryStatus(context.Background(), "ghost", model.QueryStatusFailed)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not found")
}

func TestSQLite_Query_UpdateResultComplete(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	q, err := st.CreateQuery(ctx, testQueryInput())
	require.NoError(t, err)

	result := &model.QueryResult{
		TierShown:     model.TierHighlyRecommended,
		SurfacedCount: 2,
		TotalListings: 8,
		TopScore:      87.5,
	}
	require.NoError(t, st.UpdateQueryResult(ctx, q.ID, result))

	got, err := st.GetQuery(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QueryStatusComplete, got.Status)
	require.NotNil(t, got.Result)
	assert.Equal(t, model.TierHighlyRecommended, got.Result.TierShown)
	assert.Equal(t, 87.5, got.Result.TopScore)
}

func TestSQLite_Query_UpdateResultWithErrorMarksFailed(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	q, err := st.CreateQuery(ctx, testQueryInput())
	require.NoError(t, err)

	require.NoError(t, st.UpdateQueryResult(ctx, q.ID, &model.QueryResult{Error: "search unavailable"}))

	got, err := st.GetQuery(ctx, q.ID)
	require.NoError(t, err)
	assert.Equal(t, model.QueryStatusFailed, got.Status)
}

func TestSQLite_Query_ListFiltersByStatus(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	q1, err := st.CreateQuery(ctx, testQueryInput())
	require.NoError(t, err)
	_, err = st.CreateQuery(ctx, testQueryInput())
	require.NoError(t, err)

	require.NoError(t, st.UpdateQueryStatus(ctx, q1.ID, model.QueryStatusComplete))

	got, err := st.ListQueries(ctx, QueryFilter{Status: model.QueryStatusComplete})
	require.NoError(t, err)
	require.Len(t, got, 1)
	assert.Equal(t, q1.ID, got[0].ID)

	all, err := st.ListQueries(ctx, QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestSQLite_Query_PruneKeepsMostRecent(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := st.CreateQuery(ctx, testQueryInput())
		require.NoError(t, err)
	}

	deleted, err := st.PruneQueries(ctx, 3)
	require.NoError(t, err)
	assert.Equal(t, 2, deleted)

	remaining, err := st.ListQueries(ctx, QueryFilter{})
	require.NoError(t, err)
	assert.Len(t, remaining, 3)
}

func TestSQLite_Query_PruneZeroKeepsNothing(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.CreateQuery(ctx, testQueryInput())
	require.NoError(t, err)

	deleted, err := st.PruneQueries(ctx, 0)
	require.NoError(t, err)
	assert.Equal(t, 1, deleted)
}

func TestSQLite_Query_PruneNoOpUnderLimit(t *testing.T) {
	st := newTestSQLiteStore(t)
	ctx := context.Background()

	_, err := st.CreateQuery(ctx, testQueryInput())
	require.NoError(t, err)

	deleted, err := st.PruneQueries(ctx, 50)
	require.NoError(t, err)
	assert.Equal(t, 0, deleted)
}
