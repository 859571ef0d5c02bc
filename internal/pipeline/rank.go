package pipeline

import (
	"sort"

	"go.uber.org/zap"

	"github.com/homescout-ai/homescout/internal/config"
	"github.com/homescout-ai/homescout/internal/model"
)

// Ranker orders scored records, assigns tiers, and picks which tier to
// surface. When the best tier is empty the ranker falls back down the
// cascade rather than returning nothing, and the guidance message says so:
// degraded results are never presented as top-tier matches.
type Ranker struct {
	cfg config.ScoringConfig
}

// NewRanker creates a Ranker with the given thresholds.
func NewRanker(cfg config.ScoringConfig) *Ranker {
	return &Ranker{cfg: cfg}
}

// Rank produces the final recommendation set. Every input record appears in
// AllRanked regardless of tier; Records carries only the surfaced subset.
func (r *Ranker) Rank(records []model.AnalysisRecord) model.RecommendationSet {
	ranked := make([]model.AnalysisRecord, len(records))
	copy(ranked, records)

	sort.SliceStable(ranked, func(i, j int) bool {
		if ranked[i].CompositeScore != ranked[j].CompositeScore {
			return ranked[i].CompositeScore > ranked[j].CompositeScore
		}
		return ranked[i].Listing.ID < ranked[j].Listing.ID
	})

	var highly, recommended, caution []model.AnalysisRecord
	for i := range ranked {
		ranked[i].Tier = r.tierFor(ranked[i].CompositeScore)
		switch ranked[i].Tier {
		case model.TierHighlyRecommended:
			highly = append(highly, ranked[i])
		case model.TierRecommended:
			recommended = append(recommended, ranked[i])
		case model.TierCaution:
			caution = append(caution, ranked[i])
		}
	}

	var surfaced []model.AnalysisRecord
	var tierShown model.Tier
	switch {
	case len(highly) > 0:
		surfaced, tierShown = highly, model.TierHighlyRecommended
	case len(recommended) > 0:
		surfaced, tierShown = recommended, model.TierRecommended
	case len(caution) > 0:
		n := r.cfg.CautionMaxShow
		if n <= 0 {
			n = 3
		}
		if n > len(caution) {
			n = len(caution)
		}
		surfaced, tierShown = caution[:n], model.TierCaution
	default:
		surfaced, tierShown = nil, model.TierNone
	}

	if topN := r.cfg.TopN; topN > 0 && len(surfaced) > topN {
		surfaced = surfaced[:topN]
	}

	set := model.RecommendationSet{
		Records:         surfaced,
		AllRanked:       ranked,
		TierShown:       tierShown,
		GuidanceMessage: guidanceFor(tierShown),
		Summary:         summarize(ranked, highly, recommended, caution),
	}

	zap.L().Info("listings ranked",
		zap.Int("total", len(ranked)),
		zap.Int("surfaced", len(surfaced)),
		zap.String("tier_shown", string(tierShown)),
	)
	return set
}

func (r *Ranker) tierFor(score float64) model.Tier {
	switch {
	case score >= r.cfg.TierHighly:
		return model.TierHighlyRecommended
	case score >= r.cfg.TierRecommended:
		return model.TierRecommended
	case score >= r.cfg.TierCaution:
		return model.TierCaution
	default:
		return model.TierNotRecommended
	}
}

func guidanceFor(tier model.Tier) string {
	switch tier {
	case model.TierHighlyRecommended:
		return "Excellent matches found. These properties score highly across affordability, location, and safety."
	case model.TierRecommended:
		return "No listings crossed the highly recommended bar, so these are solid overall matches worth a closer look."
	case model.TierCaution:
		return "Only lower scoring matches were found. Review the noted concerns carefully before proceeding."
	default:
		return "No suitable listings matched your criteria. Consider widening your price range or adjusting your priorities."
	}
}

func summarize(ranked, highly, recommended, caution []model.AnalysisRecord) model.SetSummary {
	summary := model.SetSummary{
		TotalListings:          len(ranked),
		HighlyRecommendedCount: len(highly),
		RecommendedCount:       len(recommended),
		CautionCount:           len(caution),
	}

	if len(ranked) > 0 {
		var sum float64
		for _, rec := range ranked {
			sum += rec.CompositeScore
		}
		summary.AverageScore = sum / float64(len(ranked))
	}

	switch {
	case len(highly) > 0:
		summary.Status = "excellent"
	case len(recommended) > 0:
		summary.Status = "good"
	case len(caution) > 0:
		summary.Status = "caution"
	default:
		summary.Status = "none"
	}
	return summary
}
