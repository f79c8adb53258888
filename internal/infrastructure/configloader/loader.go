package configloader

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"strings"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"gopkg.in/yaml.v3"
)

// ServerConfig holds server-specific configurations. Timeouts are in seconds.
type ServerConfig struct {
	Port         string `yaml:"port"`
	ReadTimeout  int    `yaml:"readTimeout"`
	WriteTimeout int    `yaml:"writeTimeout"`
	IdleTimeout  int    `yaml:"idleTimeout"`
}

// LoggingConfig holds logging-specific configurations.
type LoggingConfig struct {
	Level string `yaml:"level"` // "debug", "info", "warn", "error"
	File  string `yaml:"file"`
}

// BitsCrunchConfig holds the analytics API client configuration.
type BitsCrunchConfig struct {
	BaseURL                  string `yaml:"baseURL"`
	APIKey                   string `yaml:"apiKey"`
	RequestTimeoutMillis     int64  `yaml:"requestTimeoutMillis"`
	MinRequestIntervalMillis int64  `yaml:"minRequestIntervalMillis"` // 0 disables pacing
	DefaultBlockchain        string `yaml:"defaultBlockchain"`
}

// LLMConfig holds the narrative generator configuration.
type LLMConfig struct {
	Provider             string  `yaml:"provider"` // "openai" (any OpenAI-compatible API, e.g. Groq) or "anthropic"
	BaseURL              string  `yaml:"baseURL"`
	APIKey               string  `yaml:"apiKey"`
	Model                string  `yaml:"model"`
	Temperature          float64 `yaml:"temperature"`
	MaxTokens            int     `yaml:"maxTokens"`
	RequestTimeoutMillis int64   `yaml:"requestTimeoutMillis"`
}

// RiskConfig holds the risk classification thresholds.
type RiskConfig struct {
	LargeHolderBalanceUSD float64 `yaml:"largeHolderBalanceUsd"`
	MixerVolumeThreshold  float64 `yaml:"mixerVolumeThreshold"`
	SanctionVolumeThresh  float64 `yaml:"sanctionVolumeThreshold"`
}

// ReportConfig holds report orchestration settings.
type ReportConfig struct {
	TransactionLimit      int    `yaml:"transactionLimit"`
	TransactionTimeRange  string `yaml:"transactionTimeRange"`
	MaxConcurrentRequests int    `yaml:"maxConcurrentRequests"`
}

// OnchainConfig enables reading the native balance from an RPC node when the
// analytics API does not report one.
type OnchainConfig struct {
	Enabled                  bool `yaml:"enabled"`
	ConnectionTimeoutSeconds int  `yaml:"connectionTimeoutSeconds"`
	RPCCallTimeoutSeconds    int  `yaml:"rpcCallTimeoutSeconds"`
}

// SwaggerConfig holds configuration for Swagger UI.
type SwaggerConfig struct {
	Enabled  bool   `yaml:"enabled"`
	Path     string `yaml:"path"`
	SpecFile string `yaml:"specFile"`
}

// CORSConfig holds the allowed origins for browser clients.
type CORSConfig struct {
	AllowedOrigins []string `yaml:"allowedOrigins"`
}

// Config is the top-level configuration structure.
type Config struct {
	Server     ServerConfig     `yaml:"server"`
	Logging    LoggingConfig    `yaml:"logging"`
	BitsCrunch BitsCrunchConfig `yaml:"bitsCrunch"`
	LLM        LLMConfig        `yaml:"llm"`
	Risk       RiskConfig       `yaml:"risk"`
	Report     ReportConfig     `yaml:"report"`
	Onchain    OnchainConfig    `yaml:"onchain"`
	Networks   []string         `yaml:"networks"` // enabled blockchain identifiers; empty enables all known
	Swagger    SwaggerConfig    `yaml:"swagger"`
	CORS       CORSConfig       `yaml:"cors"`
}

// Load reads the YAML configuration file, overlays environment variables
// (after loading an optional .env file) and applies defaults.
// A missing file is not an error: defaults and environment are enough to run.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil {
		logrus.Debugf("No .env file loaded: %v", err)
	}

	var cfg Config
	data, err := os.ReadFile(path)
	switch {
	case err == nil:
		if err := yaml.Unmarshal(data, &cfg); err != nil {
			return nil, fmt.Errorf("failed to unmarshal config data from %s: %w", path, err)
		}
		logrus.Infof("Loaded configuration from %s", path)
	case errors.Is(err, os.ErrNotExist):
		logrus.Warnf("Config file %s not found, using defaults and environment", path)
	default:
		return nil, fmt.Errorf("failed to read config file %s: %w", path, err)
	}

	ApplyEnv(&cfg)
	ApplyDefaults(&cfg)
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// ApplyEnv overlays secrets and the most common overrides from the environment.
func ApplyEnv(cfg *Config) {
	if v := os.Getenv("BITSCRUNCH_API_KEY"); v != "" {
		cfg.BitsCrunch.APIKey = v
	}
	if v := os.Getenv("BITSCRUNCH_BASE_URL"); v != "" {
		cfg.BitsCrunch.BaseURL = v
	}
	if v := os.Getenv("LLM_API_KEY"); v != "" {
		cfg.LLM.APIKey = v
	} else if v := os.Getenv("GROQ_API_KEY"); v != "" && cfg.LLM.APIKey == "" {
		cfg.LLM.APIKey = v
	}
	if v := os.Getenv("LLM_PROVIDER"); v != "" {
		cfg.LLM.Provider = v
	}
	if v := os.Getenv("LLM_BASE_URL"); v != "" {
		cfg.LLM.BaseURL = v
	}
	if v := os.Getenv("LLM_MODEL"); v != "" {
		cfg.LLM.Model = v
	}
	if v := os.Getenv("SERVER_PORT"); v != "" {
		cfg.Server.Port = v
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		cfg.Logging.Level = v
	}
	if v := os.Getenv("ONCHAIN_ENABLED"); v != "" {
		if enabled, err := strconv.ParseBool(v); err == nil {
			cfg.Onchain.Enabled = enabled
		} else {
			logrus.Warnf("Ignoring invalid ONCHAIN_ENABLED value %q", v)
		}
	}
}

// ApplyDefaults fills every unset field with its default.
func ApplyDefaults(cfg *Config) {
	if cfg.Server.Port == "" {
		cfg.Server.Port = "8000"
	}
	if !strings.HasPrefix(cfg.Server.Port, ":") {
		cfg.Server.Port = ":" + cfg.Server.Port
	}
	if cfg.Server.ReadTimeout <= 0 {
		cfg.Server.ReadTimeout = 15
	}
	if cfg.Server.WriteTimeout <= 0 {
		// A report waits on the analytics API and the LLM in sequence.
		cfg.Server.WriteTimeout = 180
	}
	if cfg.Server.IdleTimeout <= 0 {
		cfg.Server.IdleTimeout = 60
	}
	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}

	if cfg.BitsCrunch.BaseURL == "" {
		cfg.BitsCrunch.BaseURL = "https://api.unleashnfts.com/api/v2"
		logrus.Infof("BitsCrunch.BaseURL not set, defaulting to %s", cfg.BitsCrunch.BaseURL)
	}
	if cfg.BitsCrunch.RequestTimeoutMillis <= 0 {
		cfg.BitsCrunch.RequestTimeoutMillis = 60000
	}
	if cfg.BitsCrunch.MinRequestIntervalMillis < 0 {
		cfg.BitsCrunch.MinRequestIntervalMillis = 0
	}
	if cfg.BitsCrunch.DefaultBlockchain == "" {
		cfg.BitsCrunch.DefaultBlockchain = "ethereum"
	}

	if cfg.LLM.Provider == "" {
		cfg.LLM.Provider = "openai"
	}
	cfg.LLM.Provider = strings.ToLower(cfg.LLM.Provider)
	if cfg.LLM.BaseURL == "" {
		switch cfg.LLM.Provider {
		case "anthropic":
			cfg.LLM.BaseURL = "https://api.anthropic.com/v1"
		default:
			cfg.LLM.BaseURL = "https://api.groq.com/openai/v1"
		}
		logrus.Infof("LLM.BaseURL not set, defaulting to %s", cfg.LLM.BaseURL)
	}
	if cfg.LLM.Model == "" {
		switch cfg.LLM.Provider {
		case "anthropic":
			cfg.LLM.Model = "claude-3-5-haiku-latest"
		default:
			cfg.LLM.Model = "llama3-8b-8192"
		}
	}
	if cfg.LLM.MaxTokens <= 0 {
		cfg.LLM.MaxTokens = 2048
	}
	if cfg.LLM.RequestTimeoutMillis <= 0 {
		cfg.LLM.RequestTimeoutMillis = 90000
	}

	if cfg.Risk.LargeHolderBalanceUSD <= 0 {
		cfg.Risk.LargeHolderBalanceUSD = 1_000_000
	}

	if cfg.Report.TransactionLimit <= 0 {
		cfg.Report.TransactionLimit = 10
	}
	if cfg.Report.TransactionTimeRange == "" {
		cfg.Report.TransactionTimeRange = "30d"
	}
	if cfg.Report.MaxConcurrentRequests <= 0 {
		cfg.Report.MaxConcurrentRequests = 4
	}

	if cfg.Onchain.ConnectionTimeoutSeconds <= 0 {
		cfg.Onchain.ConnectionTimeoutSeconds = 10
	}
	if cfg.Onchain.RPCCallTimeoutSeconds <= 0 {
		cfg.Onchain.RPCCallTimeoutSeconds = 10
	}

	if cfg.Swagger.Path == "" {
		cfg.Swagger.Path = "/swagger"
	}
	if cfg.Swagger.SpecFile == "" {
		cfg.Swagger.SpecFile = "./docs/swagger.yaml"
	}
	if len(cfg.CORS.AllowedOrigins) == 0 {
		cfg.CORS.AllowedOrigins = []string{"*"}
	}
}

// Validate reports configuration that cannot work.
func (c *Config) Validate() error {
	if c.BitsCrunch.APIKey == "" {
		return errors.New("bitsCrunch API key is not configured (set BITSCRUNCH_API_KEY)")
	}
	switch c.LLM.Provider {
	case "openai", "anthropic":
	default:
		return fmt.Errorf("unknown LLM provider %q", c.LLM.Provider)
	}
	if c.LLM.APIKey == "" {
		logrus.Warn("LLM API key is not configured, narrative generation will fail")
	}
	return nil
}
