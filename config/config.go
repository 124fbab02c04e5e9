package config

import (
	"fmt"
	"time"

	"github.com/spf13/viper"
)

// Config is the full runtime configuration of the assistant. Values come
// from, in ascending precedence: built-in defaults, an optional config file,
// and CINE_* environment variables.
type Config struct {
	Server     ServerConfig     `mapstructure:"server"`
	Model      ModelConfig      `mapstructure:"model"`
	Vector     VectorConfig     `mapstructure:"vector"`
	Relational RelationalConfig `mapstructure:"relational"`
	Cache      CacheConfig      `mapstructure:"cache"`
	Data       DataConfig       `mapstructure:"data"`
	Log        LogConfig        `mapstructure:"log"`
}

type ServerConfig struct {
	Host string `mapstructure:"host"`
	Port int    `mapstructure:"port"`
}

// ModelConfig points at the OpenAI-compatible inference server.
type ModelConfig struct {
	BaseURL     string        `mapstructure:"base_url"`
	Name        string        `mapstructure:"name"`
	Token       string        `mapstructure:"token"`
	Temperature float64       `mapstructure:"temperature"`
	MaxTokens   int           `mapstructure:"max_tokens"`
	Timeout     time.Duration `mapstructure:"timeout"`
}

type VectorConfig struct {
	EmbeddingModel string `mapstructure:"embedding_model"`
	TopK           int    `mapstructure:"top_k"`
}

// RelationalConfig selects the movie-graph backend. Driver is one of
// "falkordb", "sqlite" or "postgres"; DSN is the backend's connection string.
type RelationalConfig struct {
	Driver string `mapstructure:"driver"`
	DSN    string `mapstructure:"dsn"`
}

// CacheConfig controls the optional Redis read-through cache in front of
// retrieval. An empty Addr disables caching.
type CacheConfig struct {
	Addr   string        `mapstructure:"addr"`
	Prefix string        `mapstructure:"prefix"`
	TTL    time.Duration `mapstructure:"ttl"`
}

type DataConfig struct {
	MoviesCSV    string `mapstructure:"movies_csv"`
	CreditsCSV   string `mapstructure:"credits_csv"`
	TrainingFile string `mapstructure:"training_file"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
}

// Load reads the configuration. configPath may be empty, in which case only
// the search paths are consulted and a missing file is not an error.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	v.SetConfigName("cineanalyst")
	v.SetConfigType("yaml")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
		v.AddConfigPath("$HOME/.cineanalyst")
	}

	setDefaults(v)

	v.SetEnvPrefix("CINE")
	v.AutomaticEnv()
	bindEnvVars(v)

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	config := &Config{}
	if err := v.Unmarshal(config); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := config.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return config, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8001)

	v.SetDefault("model.base_url", "http://localhost:8000/v1")
	v.SetDefault("model.name", "tuned_adapter")
	v.SetDefault("model.token", "EMPTY")
	v.SetDefault("model.temperature", 0.2)
	v.SetDefault("model.max_tokens", 1024)
	v.SetDefault("model.timeout", "30s")

	v.SetDefault("vector.embedding_model", "text-embedding-3-small")
	v.SetDefault("vector.top_k", 3)

	v.SetDefault("relational.driver", "falkordb")
	v.SetDefault("relational.dsn", "falkordb://localhost:6379/movies")

	v.SetDefault("cache.addr", "")
	v.SetDefault("cache.prefix", "cineanalyst:")
	v.SetDefault("cache.ttl", "5m")

	v.SetDefault("data.movies_csv", "./data/movies.csv")
	v.SetDefault("data.credits_csv", "./data/credits.csv")
	v.SetDefault("data.training_file", "./data/train.jsonl")

	v.SetDefault("log.level", "info")
}

func bindEnvVars(v *viper.Viper) {
	bindings := map[string]string{
		"server.host":            "CINE_SERVER_HOST",
		"server.port":            "CINE_SERVER_PORT",
		"model.base_url":         "CINE_MODEL_BASE_URL",
		"model.name":             "CINE_MODEL_NAME",
		"model.token":            "CINE_MODEL_TOKEN",
		"model.temperature":      "CINE_MODEL_TEMPERATURE",
		"model.max_tokens":       "CINE_MODEL_MAX_TOKENS",
		"model.timeout":          "CINE_MODEL_TIMEOUT",
		"vector.embedding_model": "CINE_VECTOR_EMBEDDING_MODEL",
		"vector.top_k":           "CINE_VECTOR_TOP_K",
		"relational.driver":      "CINE_RELATIONAL_DRIVER",
		"relational.dsn":         "CINE_RELATIONAL_DSN",
		"cache.addr":             "CINE_CACHE_ADDR",
		"cache.prefix":           "CINE_CACHE_PREFIX",
		"cache.ttl":              "CINE_CACHE_TTL",
		"data.movies_csv":        "CINE_DATA_MOVIES_CSV",
		"data.credits_csv":       "CINE_DATA_CREDITS_CSV",
		"data.training_file":     "CINE_DATA_TRAINING_FILE",
		"log.level":              "CINE_LOG_LEVEL",
	}
	for key, env := range bindings {
		// BindEnv only errors on an empty key.
		_ = v.BindEnv(key, env)
	}
}

// Validate rejects configurations the runtime cannot start with.
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.Host == "" {
		return fmt.Errorf("server host cannot be empty")
	}

	if c.Model.BaseURL == "" {
		return fmt.Errorf("model base URL cannot be empty")
	}
	if c.Model.Name == "" {
		return fmt.Errorf("model name cannot be empty")
	}
	if c.Model.Temperature < 0 || c.Model.Temperature > 2 {
		return fmt.Errorf("temperature out of range: %f", c.Model.Temperature)
	}
	if c.Model.MaxTokens <= 0 {
		return fmt.Errorf("max tokens must be positive: %d", c.Model.MaxTokens)
	}
	if c.Model.Timeout <= 0 {
		return fmt.Errorf("model timeout must be positive: %s", c.Model.Timeout)
	}

	if c.Vector.TopK <= 0 {
		return fmt.Errorf("topK must be positive: %d", c.Vector.TopK)
	}

	switch c.Relational.Driver {
	case "falkordb", "sqlite", "postgres":
	default:
		return fmt.Errorf("unknown relational driver: %s", c.Relational.Driver)
	}
	if c.Relational.DSN == "" {
		return fmt.Errorf("relational DSN cannot be empty")
	}

	if c.Cache.Addr != "" && c.Cache.TTL <= 0 {
		return fmt.Errorf("cache TTL must be positive: %s", c.Cache.TTL)
	}

	return nil
}
