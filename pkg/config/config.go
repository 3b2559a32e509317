package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment"`
	Server      struct {
		Port            int           `yaml:"port"`
		ReadTimeout     time.Duration `yaml:"read_timeout"`
		WriteTimeout    time.Duration `yaml:"write_timeout"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`
	} `yaml:"server"`
	Logging struct {
		Level  string `yaml:"level"`
		Format string `yaml:"format"`
		Output string `yaml:"output"`
	} `yaml:"logging"`
	Data struct {
		Root        string `yaml:"root"`
		StocksDir   string `yaml:"stocks_dir"`
		FredDir     string `yaml:"fred_dir"`
		MetadataDir string `yaml:"metadata_dir"`
		CacheDir    string `yaml:"cache_dir"`
	} `yaml:"data"`
	Correlations struct {
		DefaultStartYear int `yaml:"default_start_year"`
		MaxShown         int `yaml:"max_shown"`
		SeriesCacheSize  int `yaml:"series_cache_size"`
	} `yaml:"correlations"`
	Fred struct {
		APIKey  string        `yaml:"api_key"`
		BaseURL string        `yaml:"base_url"`
		Timeout time.Duration `yaml:"timeout"`
		RPS     float64       `yaml:"rps"`
	} `yaml:"fred"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Addr     string `yaml:"addr"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
	} `yaml:"redis"`
	ClickHouse struct {
		Enabled          bool          `yaml:"enabled"`
		Host             string        `yaml:"host"`
		Port             int           `yaml:"port"`
		Database         string        `yaml:"database"`
		User             string        `yaml:"user"`
		Password         string        `yaml:"password"`
		Table            string        `yaml:"table"`
		UseHTTP          bool          `yaml:"use_http"`
		DialTimeout      time.Duration `yaml:"dial_timeout"`
		ReadTimeout      time.Duration `yaml:"read_timeout"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		Topic        string        `yaml:"topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"kafka"`
	Refresh struct {
		Enabled  bool   `yaml:"enabled"`
		Schedule string `yaml:"schedule"` // cron expression
	} `yaml:"refresh"`
	Recorder struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"recorder"`
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	c.applyDefaults()
	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := os.Getenv("DATA_DIR"); v != "" {
		c.Data.Root = v
	}
	if v := os.Getenv("FRED_API_KEY"); v != "" {
		c.Fred.APIKey = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Redis.Enabled = true
		c.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Enabled = true
		c.Kafka.Brokers = strings.Split(v, ",")
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Server.Port == 0 {
		c.Server.Port = 8080
	}
	if c.Server.ReadTimeout == 0 {
		c.Server.ReadTimeout = 30 * time.Second
	}
	if c.Server.WriteTimeout == 0 {
		c.Server.WriteTimeout = 60 * time.Second
	}
	if c.Server.ShutdownTimeout == 0 {
		c.Server.ShutdownTimeout = 10 * time.Second
	}
	if c.Logging.Level == "" {
		c.Logging.Level = "info"
	}
	if c.Logging.Format == "" {
		c.Logging.Format = "console"
	}
	if c.Logging.Output == "" {
		c.Logging.Output = "stdout"
	}
	if c.Data.StocksDir == "" {
		c.Data.StocksDir = "stocks"
	}
	if c.Data.FredDir == "" {
		c.Data.FredDir = "fred"
	}
	if c.Data.MetadataDir == "" {
		c.Data.MetadataDir = "metadata"
	}
	if c.Data.CacheDir == "" {
		c.Data.CacheDir = "cache"
	}
	if c.Correlations.DefaultStartYear == 0 {
		c.Correlations.DefaultStartYear = 2010
	}
	if c.Correlations.MaxShown == 0 {
		c.Correlations.MaxShown = 100
	}
	if c.Correlations.SeriesCacheSize == 0 {
		c.Correlations.SeriesCacheSize = 5000
	}
	if c.Fred.BaseURL == "" {
		c.Fred.BaseURL = "https://api.stlouisfed.org/fred"
	}
	if c.Fred.Timeout == 0 {
		c.Fred.Timeout = 15 * time.Second
	}
	if c.Fred.RPS == 0 {
		c.Fred.RPS = 2
	}
	if c.Kafka.Topic == "" {
		c.Kafka.Topic = "corrscope.results"
	}
	if c.Kafka.Compression == "" {
		c.Kafka.Compression = "gzip"
	}
	if c.Kafka.MaxAttempts == 0 {
		c.Kafka.MaxAttempts = 3
	}
	if c.Kafka.WriteTimeout == 0 {
		c.Kafka.WriteTimeout = 10 * time.Second
	}
	if c.Refresh.Schedule == "" {
		c.Refresh.Schedule = "0 3 * * *"
	}
	if c.Recorder.Path == "" {
		c.Recorder.Path = "runs.db"
	}
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Data.Root == "" {
		return fmt.Errorf("data.root is required")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers required when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host required when clickhouse is enabled")
	}
	return nil
}

// StocksPath returns the absolute stocks data directory.
func (c *Config) StocksPath() string { return filepath.Join(c.Data.Root, c.Data.StocksDir) }

// FredPath returns the absolute FRED data directory.
func (c *Config) FredPath() string { return filepath.Join(c.Data.Root, c.Data.FredDir) }

// MetadataPath returns the absolute metadata directory.
func (c *Config) MetadataPath() string { return filepath.Join(c.Data.Root, c.Data.MetadataDir) }

// CachePath returns the absolute cached-results directory.
func (c *Config) CachePath() string { return filepath.Join(c.Data.Root, c.Data.CacheDir) }
