package pipeline

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/homescout-ai/homescout/internal/config"
	"github.com/homescout-ai/homescout/internal/model"
)

func newTestRanker() *Ranker {
	return NewRanker(config.DefaultScoring())
}

func scoredRecord(id string, score float64) model.AnalysisRecord {
	return model.AnalysisRecord{
		Listing:        model.Listing{ID: id},
		CompositeScore: score,
	}
}

func surfacedIDs(set model.RecommendationSet) []string {
	ids := make([]string, 0, len(set.Records))
	for _, rec := range set.Records {
		ids = append(ids, rec.Listing.ID)
	}
	return ids
}

func TestRank_OrdersByScoreDescending(t *testing.T) {
	r := newTestRanker()

	set := r.Rank([]model.AnalysisRecord{
		scoredRecord("L1", 62),
		scoredRecord("L2", 91),
		scoredRecord("L3", 85),
	})

	require.Len(t, set.AllRanked, 3)
	assert.Equal(t, "L2", set.AllRanked[0].Listing.ID)
	assert.Equal(t, "L3", set.AllRanked[1].Listing.ID)
	assert.Equal(t, "L1", set.AllRanked[2].Listing.ID)
}

func TestRank_TieBreaksByListingID(t *testing.T) {
	r := newTestRanker()

	set := r.Rank([]model.AnalysisRecord{
		scoredRecord("L9", 85),
		scoredRecord("L2", 85),
		scoredRecord("L5", 85),
	})

	assert.Equal(t, []string{"L2", "L5", "L9"}, surfacedIDs(set))
}

func TestRank_AssignsTiers(t *testing.T) {
	r := newTestRanker()

	set := r.Rank([]model.AnalysisRecord{
		scoredRecord("L1", 80),
		scoredRecord("L2", 60),
		scoredRecord("L3", 40),
		scoredRecord("L4", 39),
	})

	assert.Equal(t, model.TierHighlyRecommended, set.AllRanked[0].Tier)
	assert.Equal(t, model.TierRecommended, set.AllRanked[1].Tier)
	assert.Equal(t, model.TierCaution, set.AllRanked[2].Tier)
	assert.Equal(t, model.TierNotRecommended, set.AllRanked[3].Tier)
}

func TestRank_SurfacesHighestNonEmptyTier(t *testing.T) {
	r := newTestRanker()

	set := r.Rank([]model.AnalysisRecord{
		scoredRecord("L1", 72),
		scoredRecord("L2", 65),
		scoredRecord("L3", 45),
	})

	assert.Equal(t, model.TierRecommended, set.TierShown)
	assert.Equal(t, []string{"L1", "L2"}, surfacedIDs(set))
	assert.Contains(t, set.GuidanceMessage, "solid overall matches")
	assert.Equal(t, "good", set.Summary.Status)
}

func TestRank_CautionFallbackLimited(t *testing.T) {
	r := newTestRanker()

	set := r.Rank([]model.AnalysisRecord{
		scoredRecord("L1", 55),
		scoredRecord("L2", 52),
		scoredRecord("L3", 48),
		scoredRecord("L4", 45),
		scoredRecord("L5", 41),
	})

	assert.Equal(t, model.TierCaution, set.TierShown)
	assert.Equal(t, []string{"L1", "L2", "L3"}, surfacedIDs(set))
	require.Len(t, set.AllRanked, 5)
	assert.Contains(t, set.GuidanceMessage, "Review the noted concerns")
	assert.Equal(t, "caution", set.Summary.Status)
}

func TestRank_CautionFallbackFewerThanMax(t *testing.T) {
	r := newTestRanker()

	set := r.Rank([]model.AnalysisRecord{
		scoredRecord("L1", 45),
		scoredRecord("L2", 42),
	})

	assert.Equal(t, []string{"L1", "L2"}, surfacedIDs(set))
}

func TestRank_TopNTruncation(t *testing.T) {
	r := newTestRanker()

	set := r.Rank([]model.AnalysisRecord{
		scoredRecord("L1", 95),
		scoredRecord("L2", 92),
		scoredRecord("L3", 88),
		scoredRecord("L4", 85),
		scoredRecord("L5", 81),
	})

	assert.Equal(t, model.TierHighlyRecommended, set.TierShown)
	assert.Equal(t, []string{"L1", "L2", "L3"}, surfacedIDs(set))
	assert.Len(t, set.AllRanked, 5)
	assert.Equal(t, "excellent", set.Summary.Status)
}

func TestRank_EmptyInput(t *testing.T) {
	r := newTestRanker()

	set := r.Rank(nil)

	assert.Empty(t, set.Records)
	assert.Empty(t, set.AllRanked)
	assert.Equal(t, model.TierNone, set.TierShown)
	assert.Contains(t, set.GuidanceMessage, "widening your price range")
	assert.Equal(t, "none", set.Summary.Status)
	assert.Equal(t, 0.0, set.Summary.AverageScore)
}

func TestRank_OnlyNotRecommended(t *testing.T) {
	r := newTestRanker()

	set := r.Rank([]model.AnalysisRecord{
		scoredRecord("L1", 20),
		scoredRecord("L2", 5),
	})

	assert.Empty(t, set.Records)
	assert.Equal(t, model.TierNone, set.TierShown)
	assert.Len(t, set.AllRanked, 2)
	assert.Equal(t, "none", set.Summary.Status)
}

func TestRank_SummaryCountsAndAverage(t *testing.T) {
	r := newTestRanker()

	set := r.Rank([]model.AnalysisRecord{
		scoredRecord("L1", 90),
		scoredRecord("L2", 70),
		scoredRecord("L3", 50),
		scoredRecord("L4", 10),
	})

	assert.Equal(t, 4, set.Summary.TotalListings)
	assert.Equal(t, 1, set.Summary.HighlyRecommendedCount)
	assert.Equal(t, 1, set.Summary.RecommendedCount)
	assert.Equal(t, 1, set.Summary.CautionCount)
	assert.InDelta(t, 55.0, set.Summary.AverageScore, 0.001)
}

func TestRank_DoesNotMutateInput(t *testing.T) {
	r := newTestRanker()
	records := []model.AnalysisRecord{
		scoredRecord("L1", 40),
		scoredRecord("L2", 90),
	}

	_ = r.Rank(records)

	assert.Equal(t, "L1", records[0].Listing.ID)
	assert.Equal(t, "L2", records[1].Listing.ID)
}
