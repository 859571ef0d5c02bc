package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestLoadDefaults(t *testing.T) {
	// Change to temp dir so no config.yaml is found
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "sqlite", cfg.Store.Driver)
	assert.Equal(t, "homescout.db", cfg.Store.DatabaseURL)
	assert.Equal(t, "info", cfg.Log.Level)
	assert.Equal(t, "json", cfg.Log.Format)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, 15, cfg.Search.Limit)
	assert.Equal(t, 30, cfg.Evaluator.TimeoutSecs)
	assert.InDelta(t, 15, cfg.Scoring.AffordableBase, 0.001)
	assert.InDelta(t, 0.28, cfg.Scoring.DTIExcellentMax, 0.001)
	assert.InDelta(t, 0.36, cfg.Scoring.DTIGoodMax, 0.001)
	assert.InDelta(t, 80, cfg.Scoring.TierHighly, 0.001)
	assert.InDelta(t, 60, cfg.Scoring.TierRecommended, 0.001)
	assert.InDelta(t, 40, cfg.Scoring.TierCaution, 0.001)
	assert.Equal(t, 3, cfg.Scoring.TopN)
	assert.Equal(t, 3, cfg.Scoring.CautionMaxShow)
	assert.InDelta(t, 80000, cfg.Affordability.AnnualIncome, 0.001)
	assert.InDelta(t, 6.5, cfg.Affordability.InterestRate, 0.001)
	assert.Equal(t, 30, cfg.Affordability.LoanTermYears)
	assert.InDelta(t, 28, cfg.Affordability.DTIMaxPercent, 0.001)
	assert.Equal(t, "claude-haiku-4-5-20251001", cfg.Anthropic.Model)
	assert.Equal(t, 50, cfg.History.Keep)
}

func TestLoadFromYAML(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: postgres
  database_url: postgres://localhost/homescout
log:
  level: debug
  format: console
server:
  port: 9090
search:
  limit: 25
scoring:
  top_n: 5
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "debug", cfg.Log.Level)
	assert.Equal(t, "console", cfg.Log.Format)
	assert.Equal(t, 9090, cfg.Server.Port)
	assert.Equal(t, 25, cfg.Search.Limit)
	assert.Equal(t, 5, cfg.Scoring.TopN)
	// Defaults still apply for unset values
	assert.Equal(t, 30, cfg.Evaluator.TimeoutSecs)
	assert.InDelta(t, 80, cfg.Scoring.TierHighly, 0.001)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	yaml := `
store:
  driver: sqlite
log:
  level: debug
`
	require.NoError(t, os.WriteFile(filepath.Join(dir, "config.yaml"), []byte(yaml), 0644))

	t.Setenv("HOMESCOUT_STORE_DRIVER", "postgres")
	t.Setenv("HOMESCOUT_LOG_LEVEL", "warn")

	cfg, err := Load()
	require.NoError(t, err)

	// Env overrides file
	assert.Equal(t, "postgres", cfg.Store.Driver)
	assert.Equal(t, "warn", cfg.Log.Level)
}

func TestLoadEnvOverridesDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	t.Setenv("HOMESCOUT_SERVER_PORT", "3000")

	cfg, err := Load()
	require.NoError(t, err)
	assert.Equal(t, 3000, cfg.Server.Port)
}

func TestDefaultScoringMatchesLoadDefaults(t *testing.T) {
	dir := t.TempDir()
	origDir, _ := os.Getwd()
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { os.Chdir(origDir) })

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, DefaultScoring(), cfg.Scoring)
}

func TestInitLoggerConsole(t *testing.T) {
	err := InitLogger(LogConfig{Level: "debug", Format: "console"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerJSON(t *testing.T) {
	err := InitLogger(LogConfig{Level: "info", Format: "json"})
	require.NoError(t, err)
	assert.NotNil(t, zap.L())
}

func TestInitLoggerInvalidLevel(t *testing.T) {
	err := InitLogger(LogConfig{Level: "invalid", Format: "json"})
	assert.Error(t, err)
}

// validDefaults returns a Config with every field validation cares about set.
func validDefaults() *Config {
	return &Config{
		Store:     StoreConfig{Driver: "sqlite", DatabaseURL: "homescout.db"},
		Server:    ServerConfig{Port: 8080},
		Search:    SearchConfig{Limit: 15, MaxRetries: 3},
		Evaluator: EvaluatorConfig{TimeoutSecs: 30},
		Scoring:   DefaultScoring(),
		History:   HistoryConfig{Keep: 50},
	}
}

func TestValidateRun_OK(t *testing.T) {
	assert.NoError(t, validDefaults().Validate("run"))
}

func TestValidateServe_InvalidPort(t *testing.T) {
	cfg := validDefaults()
	cfg.Server.Port = 0

	err := cfg.Validate("serve")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "server.port must be > 0")
}

func TestValidateBadDriver(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.Driver = "mysql"

	err := cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.driver")
}

func TestValidateSearchLimitBounds(t *testing.T) {
	cfg := validDefaults()

	cfg.Search.Limit = 0
	err := cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "search.limit must be between 1 and 100")

	cfg.Search.Limit = 101
	err = cfg.Validate("run")
	assert.Error(t, err)

	cfg.Search.Limit = 100
	assert.NoError(t, cfg.Validate("run"))
}

func TestValidateTierOrdering(t *testing.T) {
	cfg := validDefaults()
	cfg.Scoring.TierCaution = 90

	err := cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "tier thresholds")
}

func TestValidateUnknownMode(t *testing.T) {
	err := validDefaults().Validate("unknown")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "unknown mode")
}

func TestValidateCollectsAllProblems(t *testing.T) {
	cfg := validDefaults()
	cfg.Store.DatabaseURL = ""
	cfg.Evaluator.TimeoutSecs = 0

	err := cfg.Validate("run")
	assert.Error(t, err)
	assert.Contains(t, err.Error(), "store.database_url is required")
	assert.Contains(t, err.Error(), "evaluator.timeout_secs must be > 0")
}
