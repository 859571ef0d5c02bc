package config

import (
	"strings"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	Store         StoreConfig         `yaml:"store" mapstructure:"store"`
	Server        ServerConfig        `yaml:"server" mapstructure:"server"`
	Log           LogConfig           `yaml:"log" mapstructure:"log"`
	Search        SearchConfig        `yaml:"search" mapstructure:"search"`
	Evaluator     EvaluatorConfig     `yaml:"evaluator" mapstructure:"evaluator"`
	Scoring       ScoringConfig       `yaml:"scoring" mapstructure:"scoring"`
	Affordability AffordabilityConfig `yaml:"affordability" mapstructure:"affordability"`
	Anthropic     AnthropicConfig     `yaml:"anthropic" mapstructure:"anthropic"`
	History       HistoryConfig       `yaml:"history" mapstructure:"history"`
}

// StoreConfig configures the database backend.
type StoreConfig struct {
	Driver      string `yaml:"driver" mapstructure:"driver"`
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ServerConfig configures the HTTP API server.
type ServerConfig struct {
	Port           int      `yaml:"port" mapstructure:"port"`
	AllowedOrigins []string `yaml:"allowed_origins" mapstructure:"allowed_origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// SearchConfig configures candidate listing retrieval.
type SearchConfig struct {
	Limit      int `yaml:"limit" mapstructure:"limit"`
	MaxRetries int `yaml:"max_retries" mapstructure:"max_retries"`
}

// EvaluatorConfig bounds each per-listing evaluator call.
type EvaluatorConfig struct {
	TimeoutSecs int `yaml:"timeout_secs" mapstructure:"timeout_secs"`
}

// ScoringConfig holds the point budgets, bonuses, and tier thresholds used
// by the scoring engine and ranker.
type ScoringConfig struct {
	AffordableBase    float64 `yaml:"affordable_base" mapstructure:"affordable_base"`
	DTIExcellentMax   float64 `yaml:"dti_excellent_max" mapstructure:"dti_excellent_max"`
	DTIExcellentBonus float64 `yaml:"dti_excellent_bonus" mapstructure:"dti_excellent_bonus"`
	DTIGoodMax        float64 `yaml:"dti_good_max" mapstructure:"dti_good_max"`
	DTIGoodBonus      float64 `yaml:"dti_good_bonus" mapstructure:"dti_good_bonus"`
	InvestmentBonus   float64 `yaml:"investment_bonus" mapstructure:"investment_bonus"`
	ConditionBase     float64 `yaml:"condition_base" mapstructure:"condition_base"`
	PriorityBonus     float64 `yaml:"priority_bonus" mapstructure:"priority_bonus"`
	PriorityCap       float64 `yaml:"priority_cap" mapstructure:"priority_cap"`

	TierHighly      float64 `yaml:"tier_highly" mapstructure:"tier_highly"`
	TierRecommended float64 `yaml:"tier_recommended" mapstructure:"tier_recommended"`
	TierCaution     float64 `yaml:"tier_caution" mapstructure:"tier_caution"`

	TopN           int `yaml:"top_n" mapstructure:"top_n"`
	CautionMaxShow int `yaml:"caution_max_show" mapstructure:"caution_max_show"`
}

// AffordabilityConfig holds the default financial parameters applied when
// the buyer's profile leaves a field unset. Rates are percentages.
type AffordabilityConfig struct {
	AnnualIncome       float64 `yaml:"annual_income" mapstructure:"annual_income"`
	DownPaymentPercent float64 `yaml:"down_payment_percent" mapstructure:"down_payment_percent"`
	InterestRate       float64 `yaml:"interest_rate" mapstructure:"interest_rate"`
	LoanTermYears      int     `yaml:"loan_term_years" mapstructure:"loan_term_years"`
	DTIMaxPercent      float64 `yaml:"debt_to_income_ratio_max" mapstructure:"debt_to_income_ratio_max"`
	PropertyTaxRate    float64 `yaml:"property_tax_rate" mapstructure:"property_tax_rate"`
	InsuranceAnnual    float64 `yaml:"insurance_annual" mapstructure:"insurance_annual"`
	HOAMonthly         float64 `yaml:"hoa_monthly" mapstructure:"hoa_monthly"`
	UtilitiesMonthly   float64 `yaml:"utilities_monthly" mapstructure:"utilities_monthly"`
	MaintenancePercent float64 `yaml:"maintenance_percent" mapstructure:"maintenance_percent"`
}

// AnthropicConfig holds settings for the optional writeup polish. The
// feature stays off unless a key is configured.
type AnthropicConfig struct {
	Key               string `yaml:"key" mapstructure:"key"`
	Model             string `yaml:"model" mapstructure:"model"`
	MaxTokens         int    `yaml:"max_tokens" mapstructure:"max_tokens"`
	RequestsPerMinute int    `yaml:"requests_per_minute" mapstructure:"requests_per_minute"`
}

// HistoryConfig configures query-history retention.
type HistoryConfig struct {
	Keep int `yaml:"keep" mapstructure:"keep"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("HOMESCOUT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.database_url", "homescout.db")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allowed_origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")
	v.SetDefault("search.limit", 15)
	v.SetDefault("search.max_retries", 3)
	v.SetDefault("evaluator.timeout_secs", 30)
	v.SetDefault("scoring.affordable_base", 15)
	v.SetDefault("scoring.dti_excellent_max", 0.28)
	v.SetDefault("scoring.dti_excellent_bonus", 5)
	v.SetDefault("scoring.dti_good_max", 0.36)
	v.SetDefault("scoring.dti_good_bonus", 3)
	v.SetDefault("scoring.investment_bonus", 5)
	v.SetDefault("scoring.condition_base", 15)
	v.SetDefault("scoring.priority_bonus", 2)
	v.SetDefault("scoring.priority_cap", 10)
	v.SetDefault("scoring.tier_highly", 80)
	v.SetDefault("scoring.tier_recommended", 60)
	v.SetDefault("scoring.tier_caution", 40)
	v.SetDefault("scoring.top_n", 3)
	v.SetDefault("scoring.caution_max_show", 3)
	v.SetDefault("affordability.annual_income", 80000)
	v.SetDefault("affordability.down_payment_percent", 20)
	v.SetDefault("affordability.interest_rate", 6.5)
	v.SetDefault("affordability.loan_term_years", 30)
	v.SetDefault("affordability.debt_to_income_ratio_max", 28)
	v.SetDefault("affordability.property_tax_rate", 1.2)
	v.SetDefault("affordability.insurance_annual", 1200)
	v.SetDefault("affordability.hoa_monthly", 0)
	v.SetDefault("affordability.utilities_monthly", 200)
	v.SetDefault("affordability.maintenance_percent", 1.0)
	v.SetDefault("anthropic.model", "claude-haiku-4-5-20251001")
	v.SetDefault("anthropic.max_tokens", 1024)
	v.SetDefault("anthropic.requests_per_minute", 20)
	v.SetDefault("history.keep", 50)

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// DefaultScoring returns the built-in point scheme. Library callers and
// tests use it to avoid touching config files.
func DefaultScoring() ScoringConfig {
	return ScoringConfig{
		AffordableBase:    15,
		DTIExcellentMax:   0.28,
		DTIExcellentBonus: 5,
		DTIGoodMax:        0.36,
		DTIGoodBonus:      3,
		InvestmentBonus:   5,
		ConditionBase:     15,
		PriorityBonus:     2,
		PriorityCap:       10,
		TierHighly:        80,
		TierRecommended:   60,
		TierCaution:       40,
		TopN:              3,
		CautionMaxShow:    3,
	}
}

// DefaultAffordability returns the built-in financial defaults.
func DefaultAffordability() AffordabilityConfig {
	return AffordabilityConfig{
		AnnualIncome:       80000,
		DownPaymentPercent: 20,
		InterestRate:       6.5,
		LoanTermYears:      30,
		DTIMaxPercent:      28,
		PropertyTaxRate:    1.2,
		InsuranceAnnual:    1200,
		UtilitiesMonthly:   200,
		MaintenancePercent: 1.0,
	}
}

// Validate checks that the configuration is usable for the given mode
// ("run", "serve", or "seed"). Errors are collected so a misconfigured
// deployment reports every problem at once.
func (c *Config) Validate(mode string) error {
	var problems []string

	check := func(ok bool, msg string) {
		if !ok {
			problems = append(problems, msg)
		}
	}

	check(c.Store.Driver == "sqlite" || c.Store.Driver == "postgres",
		"store.driver must be sqlite or postgres")
	check(c.Store.DatabaseURL != "", "store.database_url is required")
	check(c.Search.Limit >= 1 && c.Search.Limit <= 100,
		"search.limit must be between 1 and 100")
	check(c.Evaluator.TimeoutSecs > 0, "evaluator.timeout_secs must be > 0")
	check(c.Scoring.TopN >= 1, "scoring.top_n must be >= 1")
	check(c.Scoring.TierHighly >= c.Scoring.TierRecommended &&
		c.Scoring.TierRecommended >= c.Scoring.TierCaution,
		"scoring tier thresholds must be ordered highly >= recommended >= caution")
	check(c.History.Keep >= 0, "history.keep must be >= 0")

	switch mode {
	case "run", "seed":
	case "serve":
		check(c.Server.Port > 0, "server.port must be > 0")
	default:
		problems = append(problems, "unknown mode: "+mode)
	}

	if len(problems) > 0 {
		return eris.New("invalid config: " + strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
