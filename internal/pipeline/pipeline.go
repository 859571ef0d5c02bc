// Package pipeline orchestrates the recommendation flow: search for
// candidate listings, analyze each one across locality, hazard, and
// affordability, score, rank, and write up the top pick.
package pipeline

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/homescout-ai/homescout/internal/config"
	"github.com/homescout-ai/homescout/internal/model"
	"github.com/homescout-ai/homescout/internal/search"
	"github.com/homescout-ai/homescout/internal/store"
	"github.com/homescout-ai/homescout/pkg/anthropic"
)

// Pipeline wires the recommendation stages together. The ai client is
// optional; when nil the deterministic writeup is used as-is.
type Pipeline struct {
	cfg      *config.Config
	store    store.Store
	searcher search.Searcher
	analyzer *Analyzer
	engine   *Engine
	ranker   *Ranker
	ai       anthropic.Client
}

// New assembles a Pipeline from its stages.
func New(cfg *config.Config, st store.Store, searcher search.Searcher, analyzer *Analyzer, ai anthropic.Client) *Pipeline {
	return &Pipeline{
		cfg:      cfg,
		store:    st,
		searcher: searcher,
		analyzer: analyzer,
		engine:   NewEngine(cfg.Scoring),
		ranker:   NewRanker(cfg.Scoring),
		ai:       ai,
	}
}

// Run executes one recommendation query end to end. The candidate search
// is the only fatal stage: per-listing evaluation failures degrade to
// failed partials and an empty candidate slate returns an empty set with
// guidance rather than an error. History recording is best effort and
// never fails the run.
func (p *Pipeline) Run(ctx context.Context, input model.QueryInput) (*model.RecommendationSet, error) {
	user := model.UserContext{
		Financial:  input.Financial,
		Priorities: input.Priorities,
	}

	query, err := p.store.CreateQuery(ctx, input)
	if err != nil {
		zap.L().Warn("failed to record query", zap.Error(err))
		query = nil
	}

	zap.L().Info("recommendation query started",
		zap.String("query", search.QueryText(input.Criteria)),
		zap.Int("priorities", len(input.Priorities)),
	)

	p.setStatus(ctx, query, model.QueryStatusSearching)
	listings, err := p.searcher.Search(ctx, input.Criteria)
	if err != nil {
		p.recordResult(ctx, query, &model.QueryResult{Error: err.Error()})
		return nil, eris.Wrap(err, "pipeline: candidate search")
	}

	if len(listings) == 0 {
		zap.L().Info("no candidate listings matched")
		set := p.ranker.Rank(nil)
		p.recordResult(ctx, query, resultFromSet(&set))
		return &set, nil
	}

	p.setStatus(ctx, query, model.QueryStatusAnalyzing)
	records := make([]model.AnalysisRecord, 0, len(listings))
	for _, listing := range listings {
		rec := p.analyzer.Analyze(ctx, listing, user)
		p.engine.Score(&rec, user)
		records = append(records, rec)
	}

	p.setStatus(ctx, query, model.QueryStatusRanking)
	set := p.ranker.Rank(records)

	if len(set.Records) > 0 {
		set.Writeup = p.polish(ctx, BuildWriteup(set.Records[0]))
	}

	p.recordResult(ctx, query, resultFromSet(&set))
	return &set, nil
}

// polish runs the optional language-model pass over the deterministic
// draft. Any failure keeps the draft.
func (p *Pipeline) polish(ctx context.Context, draft string) string {
	if p.ai == nil {
		return draft
	}
	polished, err := p.ai.PolishWriteup(ctx, draft)
	if err != nil {
		zap.L().Warn("writeup polish failed, keeping draft", zap.Error(err))
		return draft
	}
	return polished
}

func (p *Pipeline) setStatus(ctx context.Context, query *model.Query, status model.QueryStatus) {
	if query == nil {
		return
	}
	if err := p.store.UpdateQueryStatus(ctx, query.ID, status); err != nil {
		zap.L().Warn("failed to update query status",
			zap.String("query_id", query.ID),
			zap.String("status", string(status)),
			zap.Error(err),
		)
	}
}

func (p *Pipeline) recordResult(ctx context.Context, query *model.Query, result *model.QueryResult) {
	if query == nil {
		return
	}
	if err := p.store.UpdateQueryResult(ctx, query.ID, result); err != nil {
		zap.L().Warn("failed to record query result",
			zap.String("query_id", query.ID),
			zap.Error(err),
		)
		return
	}
	if keep := p.cfg.History.Keep; keep > 0 {
		if _, err := p.store.PruneQueries(ctx, keep); err != nil {
			zap.L().Warn("failed to prune query history", zap.Error(err))
		}
	}
}

func resultFromSet(set *model.RecommendationSet) *model.QueryResult {
	result := &model.QueryResult{
		TierShown:     set.TierShown,
		SurfacedCount: len(set.Records),
		TotalListings: set.Summary.TotalListings,
		Set:           set,
	}
	if len(set.AllRanked) > 0 {
		result.TopScore = set.AllRanked[0].CompositeScore
	}
	return result
}
