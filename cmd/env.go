package main

import (
	"context"

	"github.com/rotisserie/eris"
	"go.uber.org/zap"

	"github.com/homescout-ai/homescout/internal/evaluator"
	"github.com/homescout-ai/homescout/internal/pipeline"
	"github.com/homescout-ai/homescout/internal/search"
	"github.com/homescout-ai/homescout/internal/store"
	"github.com/homescout-ai/homescout/pkg/anthropic"
)

// pipelineEnv holds the initialized store and pipeline used by the run and
// serve commands.
type pipelineEnv struct {
	Store    store.Store
	Pipeline *pipeline.Pipeline
}

// Close releases resources held by the pipeline environment.
func (pe *pipelineEnv) Close() {
	if pe.Store != nil {
		_ = pe.Store.Close()
	}
}

func initStore(ctx context.Context) (store.Store, error) {
	switch cfg.Store.Driver {
	case "sqlite":
		dsn := cfg.Store.DatabaseURL
		if dsn == "" {
			dsn = "homescout.db"
		}
		return store.NewSQLite(dsn)
	case "postgres":
		return store.NewPostgres(ctx, cfg.Store.DatabaseURL, nil)
	default:
		return nil, eris.Errorf("unsupported store driver: %s", cfg.Store.Driver)
	}
}

// initPipeline sets up the store and evaluators and builds the Pipeline.
// Callers should defer env.Close().
func initPipeline(ctx context.Context, mode string) (*pipelineEnv, error) {
	if err := cfg.Validate(mode); err != nil {
		return nil, err
	}

	st, err := initStore(ctx)
	if err != nil {
		return nil, err
	}

	if err := st.Migrate(ctx); err != nil {
		_ = st.Close()
		return nil, eris.Wrap(err, "migrate store")
	}

	searcher := search.NewStoreSearcher(st, cfg.Search.Limit, cfg.Search.MaxRetries)
	analyzer := pipeline.NewAnalyzer(
		evaluator.NewStoreLocality(st),
		evaluator.NewStoreHazard(st),
		evaluator.NewCalculator(cfg.Affordability),
		cfg.Evaluator.TimeoutSecs,
	)

	// Writeup polish stays off unless a key is configured.
	var ai anthropic.Client
	if cfg.Anthropic.Key != "" {
		ai = anthropic.NewClient(anthropic.Config{
			APIKey:            cfg.Anthropic.Key,
			Model:             cfg.Anthropic.Model,
			MaxTokens:         int64(cfg.Anthropic.MaxTokens),
			RequestsPerMinute: cfg.Anthropic.RequestsPerMinute,
		})
		zap.L().Info("writeup polish enabled", zap.String("model", cfg.Anthropic.Model))
	}

	return &pipelineEnv{
		Store:    st,
		Pipeline: pipeline.New(cfg, st, searcher, analyzer, ai),
	}, nil
}
