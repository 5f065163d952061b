package config

import (
	"errors"
	"flag"
	"fmt"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/futig/oportune/internal/entity"
	pkgRetry "github.com/futig/oportune/internal/pkg/retry"
	"github.com/joho/godotenv"
)

// Config holds the application configuration
type Config struct {
	// Server configuration
	ServerAddr      string        `env:"SERVER_ADDR" envDefault:":8000"`
	ReadTimeout     time.Duration `env:"SERVER_READ_TIMEOUT" envDefault:"15s"`
	WriteTimeout    time.Duration `env:"SERVER_WRITE_TIMEOUT" envDefault:"10m"`
	ShutdownTimeout time.Duration `env:"SERVER_SHUTDOWN_TIMEOUT" envDefault:"30s"`

	// External service configurations
	LLMCfg LLMConfig `envPrefix:"LLM_"`
	RAGCfg RAGConfig `envPrefix:"RAG_"`

	// Pipeline configuration
	ExtractorCfg ExtractorConfig `envPrefix:"EXTRACTOR_"`
	RunCfg       RunConfig       `envPrefix:"RUN_"`

	// Sessions, exports and publishing
	SessionCfg SessionConfig `envPrefix:"SESSION_"`
	ExportCfg  ExportConfig  `envPrefix:"EXPORT_"`
	SheetsCfg  SheetsConfig  `envPrefix:"SHEETS_"`

	// Run completion webhooks
	CallbackCfg CallbackConfig `envPrefix:"CALLBACK_"`

	// Request limits
	ValidationCfg ValidationConfig `envPrefix:"VALIDATION_"`

	// Logging configuration
	LogLevel  string `env:"LOG_LEVEL" envDefault:"info"`
	LogFormat string `env:"LOG_FORMAT" envDefault:"json"`

	// Mock configuration
	EnableMocks bool `env:"ENABLE_MOCKS" envDefault:"false"`

	// Environment (set from flag, not from env var)
	Environment string
}

const (
	LLMProviderHTTP      = "http"
	LLMProviderLangchain = "langchain"
)

type LLMConfig struct {
	HTTPClientConfig
	Provider            string               `env:"PROVIDER" envDefault:"http"`
	Model               string               `env:"MODEL" envDefault:"gpt-4o"`
	CompletionsEndpoint string               `env:"COMPLETIONS_ENDPOINT" envDefault:"/v1/chat/completions"`
	Temperature         float64              `env:"TEMPERATURE" envDefault:"0.2"`
	MaxTokens           int                  `env:"MAX_TOKENS" envDefault:"2048"`
	MaxOpportunities    int                  `env:"MAX_OPPORTUNITIES" envDefault:"10"`
	Retry               pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type RAGConfig struct {
	HTTPClientConfig
	GraphQLEndpoint string               `env:"GRAPHQL_ENDPOINT" envDefault:"/v1/graphql"`
	ClassName       string               `env:"CLASS_NAME" envDefault:"DocsOportunidades"`
	TextProperty    string               `env:"TEXT_PROPERTY" envDefault:"oportunidade_melhoria"`
	VectorizerKey   string               `env:"VECTORIZER_KEY"`
	CacheTTL        time.Duration        `env:"CACHE_TTL" envDefault:"10m"`
	Retry           pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type ExtractorConfig struct {
	Strategy       string  `env:"STRATEGY" envDefault:"regex"`
	Temperature    float64 `env:"TEMPERATURE" envDefault:"0.1"`
	MaxTokens      int     `env:"MAX_TOKENS" envDefault:"2048"`
	RepairAttempts int     `env:"REPAIR_ATTEMPTS" envDefault:"1"`
}

type RunConfig struct {
	Concurrency   int           `env:"CONCURRENCY" envDefault:"4"`
	TopK          int           `env:"TOP_K" envDefault:"5"`
	FailurePolicy string        `env:"FAILURE_POLICY" envDefault:"skip"`
	Timeout       time.Duration `env:"TIMEOUT" envDefault:"5m"`
}

type SessionConfig struct {
	TTL             time.Duration `env:"TTL" envDefault:"2h"`
	CleanupInterval time.Duration `env:"CLEANUP_INTERVAL" envDefault:"10m"`
}

type ExportConfig struct {
	OfficeLicenseKey string `env:"OFFICE_LICENSE_KEY"`
	PDFFontPath      string `env:"PDF_FONT_PATH"`
	MaxColumnWidth   int    `env:"MAX_COLUMN_WIDTH" envDefault:"80"`
}

type SheetsConfig struct {
	Enabled         bool   `env:"ENABLED" envDefault:"false"`
	CredentialsFile string `env:"CREDENTIALS_FILE"`
	SpreadsheetID   string `env:"SPREADSHEET_ID"`
	SheetName       string `env:"SHEET_NAME" envDefault:"Oportunidade de melhorias"`
	Endpoint        string `env:"ENDPOINT"`
}

type CallbackConfig struct {
	RequestTimeout time.Duration        `env:"TIMEOUT" envDefault:"10s"`
	ConnTimeout    time.Duration        `env:"CONN_TIMEOUT" envDefault:"5s"`
	Retry          pkgRetry.RetryConfig `envPrefix:"RETRY_"`
}

type ValidationConfig struct {
	MaxFieldLength  int `env:"MAX_FIELD_LENGTH" envDefault:"2000"`
	MaxDirections   int `env:"MAX_DIRECTIONS" envDefault:"30"`
	MaxAnswerLength int `env:"MAX_ANSWER_LENGTH" envDefault:"100000"`
}

type HTTPClientConfig struct {
	RequestTimeout        time.Duration `env:"TIMEOUT" envDefault:"120s"`
	ConnTimeout           time.Duration `env:"CONN_TIMEOUT" envDefault:"10s"`
	KeepAlive             time.Duration `env:"KEEP_ALIVE" envDefault:"90s"`
	IdleConnTimeout       time.Duration `env:"IDLE_CONN_TIMEOUT" envDefault:"90s"`
	ResponseHeaderTimeout time.Duration `env:"RESPONSE_HEADER_TIMEOUT" envDefault:"110s"`
	Token                 string        `env:"TOKEN"`
	Url                   string        `env:"SERVICE_URL,notEmpty"`
}

// LoadConfig reads the -env flag and loads the matching configuration.
func LoadConfig() (*Config, error) {
	envFlag := flag.String("env", "local", "Environment to run (local, prod, or custom)")
	flag.Parse()

	return Load(*envFlag)
}

// Load reads .env.<environment> when present, then the process environment.
func Load(environment string) (*Config, error) {
	envFile := getEnvFile(environment)
	// Try to load env file, but don't fail if it's missing.
	// In containerized/prod environments variables are usually set externally.
	if err := godotenv.Load(envFile); err != nil {
		fmt.Printf("Warning: could not load %s file (this is ok if env vars are set externally): %v\n", envFile, err)
	}

	cfg := &Config{}
	if err := env.Parse(cfg); err != nil {
		return nil, err
	}

	cfg.Environment = environment

	if err := validateConfig(cfg); err != nil {
		return nil, fmt.Errorf("config validation failed: %w", err)
	}

	return cfg, nil
}

func validateConfig(cfg *Config) error {
	var errs []error

	switch cfg.LLMCfg.Provider {
	case LLMProviderHTTP, LLMProviderLangchain:
	default:
		errs = append(errs, fmt.Errorf("LLM_PROVIDER must be %q or %q, got %q", LLMProviderHTTP, LLMProviderLangchain, cfg.LLMCfg.Provider))
	}

	if !cfg.EnableMocks && strings.TrimSpace(cfg.LLMCfg.Token) == "" {
		errs = append(errs, errors.New("LLM_TOKEN is required unless ENABLE_MOCKS is set"))
	}

	if cfg.LLMCfg.Temperature < 0 || cfg.LLMCfg.Temperature > 2 {
		errs = append(errs, fmt.Errorf("LLM_TEMPERATURE must be between 0 and 2, got %v", cfg.LLMCfg.Temperature))
	}

	if cfg.LLMCfg.MaxOpportunities < 1 || cfg.LLMCfg.MaxOpportunities > 30 {
		errs = append(errs, fmt.Errorf("LLM_MAX_OPPORTUNITIES must be between 1 and 30, got %d", cfg.LLMCfg.MaxOpportunities))
	}

	if cfg.ExtractorCfg.Strategy != "regex" && cfg.ExtractorCfg.Strategy != "llm" {
		errs = append(errs, fmt.Errorf("EXTRACTOR_STRATEGY must be \"regex\" or \"llm\", got %q", cfg.ExtractorCfg.Strategy))
	}

	if cfg.RunCfg.Concurrency < 1 || cfg.RunCfg.Concurrency > 32 {
		errs = append(errs, fmt.Errorf("RUN_CONCURRENCY must be between 1 and 32, got %d", cfg.RunCfg.Concurrency))
	}

	if cfg.RunCfg.TopK < 1 || cfg.RunCfg.TopK > 50 {
		errs = append(errs, fmt.Errorf("RUN_TOP_K must be between 1 and 50, got %d", cfg.RunCfg.TopK))
	}

	if !entity.FailurePolicy(cfg.RunCfg.FailurePolicy).IsValid() {
		errs = append(errs, fmt.Errorf("RUN_FAILURE_POLICY must be \"skip\" or \"abort\", got %q", cfg.RunCfg.FailurePolicy))
	}

	if cfg.SessionCfg.TTL <= 0 {
		errs = append(errs, fmt.Errorf("SESSION_TTL must be positive, got %s", cfg.SessionCfg.TTL))
	}

	if cfg.SheetsCfg.Enabled {
		if cfg.SheetsCfg.CredentialsFile == "" {
			errs = append(errs, errors.New("SHEETS_CREDENTIALS_FILE is required when SHEETS_ENABLED is set"))
		}
		if cfg.SheetsCfg.SpreadsheetID == "" {
			errs = append(errs, errors.New("SHEETS_SPREADSHEET_ID is required when SHEETS_ENABLED is set"))
		}
	}

	return errors.Join(errs...)
}

func getEnvFile(environment string) string {
	switch environment {
	case "prod", "production":
		return ".env.prod"
	case "local", "dev", "development":
		return ".env.local"
	default:
		return fmt.Sprintf(".env.%s", environment)
	}
}
