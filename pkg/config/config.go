package config

import (
	"fmt"
	"os"
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
	Metrics struct {
		Enabled bool   `yaml:"enabled"`
		Path    string `yaml:"path"`
	} `yaml:"metrics"`
	Dataset struct {
		Symbol        string        `yaml:"symbol"`         // e.g. BTCUSDT
		HistoryDays   int           `yaml:"history_days"`   // daily bars pulled per build
		IndexDays     int           `yaml:"index_days"`     // index history window per build
		QuoteTTL      time.Duration `yaml:"quote_ttl"`      // live scalar staleness threshold
		RefreshCron   string        `yaml:"refresh_cron"`   // optional cron spec for auto refresh
		SnapshotKey   string        `yaml:"snapshot_key"`   // durable blob identifier
		BuildTimeout  time.Duration `yaml:"build_timeout"`  // upper bound for one full rebuild
	} `yaml:"dataset"`
	Binance struct {
		BaseURL      string        `yaml:"base_url"`
		WebSocketURL string        `yaml:"websocket_url"`
		StreamLive   bool          `yaml:"stream_live"`
		Timeout      time.Duration `yaml:"timeout"`
		MaxAttempts  int           `yaml:"max_attempts"`
		Backoff      time.Duration `yaml:"backoff"`
	} `yaml:"binance"`
	Cboe struct {
		HistoryURL string        `yaml:"history_url"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"cboe"`
	Model struct {
		ServiceURL string        `yaml:"service_url"`
		Timeout    time.Duration `yaml:"timeout"`
	} `yaml:"model"`
	Redis struct {
		Enabled  bool   `yaml:"enabled"`
		Host     string `yaml:"host"`
		Port     int    `yaml:"port"`
		Password string `yaml:"password"`
		DB       int    `yaml:"db"`
		Prefix   string `yaml:"prefix"`
	} `yaml:"redis"`
	ClickHouse struct {
		Enabled      bool          `yaml:"enabled"`
		Host         string        `yaml:"host"`
		Port         int           `yaml:"port"`
		Database     string        `yaml:"database"`
		User         string        `yaml:"user"`
		Password     string        `yaml:"password"`
		DialTimeout  time.Duration `yaml:"dial_timeout"`
		ReadTimeout  time.Duration `yaml:"read_timeout"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool          `yaml:"enabled"`
		Brokers      []string      `yaml:"brokers"`
		RefreshTopic string        `yaml:"refresh_topic"`
		PredictTopic string        `yaml:"predict_topic"`
		RequiredAcks int           `yaml:"required_acks"`
		Compression  string        `yaml:"compression"`
		MaxAttempts  int           `yaml:"max_attempts"`
		WriteTimeout time.Duration `yaml:"write_timeout"`
	} `yaml:"kafka"`
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

	if v := os.Getenv("SYMBOL"); v != "" {
		c.Dataset.Symbol = v
	}
	if v := os.Getenv("REDIS_HOST"); v != "" {
		c.Redis.Host = v
	}
	if v := os.Getenv("REDIS_PASSWORD"); v != "" {
		c.Redis.Password = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
	}
	if v := os.Getenv("MODEL_SERVICE_URL"); v != "" {
		c.Model.ServiceURL = v
	}
	if v := os.Getenv("CLICKHOUSE_PASSWORD"); v != "" {
		c.ClickHouse.Password = v
	}

	return c, nil
}

func (c *Config) applyDefaults() {
	if c.Metrics.Path == "" {
		c.Metrics.Path = "/metrics"
	}
	if c.Dataset.Symbol == "" {
		c.Dataset.Symbol = "BTCUSDT"
	}
	if c.Dataset.HistoryDays <= 0 {
		c.Dataset.HistoryDays = 10
	}
	if c.Dataset.IndexDays <= 0 {
		c.Dataset.IndexDays = 30
	}
	if c.Dataset.QuoteTTL <= 0 {
		c.Dataset.QuoteTTL = 60 * time.Minute
	}
	if c.Dataset.SnapshotKey == "" {
		c.Dataset.SnapshotKey = "market_data_snapshot"
	}
	if c.Dataset.BuildTimeout <= 0 {
		c.Dataset.BuildTimeout = 2 * time.Minute
	}
	if c.Binance.BaseURL == "" {
		c.Binance.BaseURL = "https://api.binance.com"
	}
	if c.Binance.WebSocketURL == "" {
		c.Binance.WebSocketURL = "wss://stream.binance.com:9443/ws"
	}
	if c.Binance.Timeout <= 0 {
		c.Binance.Timeout = 15 * time.Second
	}
	if c.Binance.MaxAttempts <= 0 {
		c.Binance.MaxAttempts = 3
	}
	if c.Binance.Backoff <= 0 {
		c.Binance.Backoff = time.Second
	}
	if c.Cboe.HistoryURL == "" {
		c.Cboe.HistoryURL = "https://cdn.cboe.com/api/global/us_indices/daily_prices/VIX_History.csv"
	}
	if c.Cboe.Timeout <= 0 {
		c.Cboe.Timeout = 30 * time.Second
	}
	if c.Model.Timeout <= 0 {
		c.Model.Timeout = 5 * time.Second
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
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if c.Environment == "" {
		return fmt.Errorf("environment is required")
	}
	if c.Server.Port <= 0 {
		return fmt.Errorf("server.port is required")
	}
	if c.Dataset.HistoryDays < 3 {
		return fmt.Errorf("dataset.history_days must be at least 3, got %d", c.Dataset.HistoryDays)
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.ClickHouse.Enabled && c.ClickHouse.Host == "" {
		return fmt.Errorf("clickhouse.host is required when clickhouse is enabled")
	}
	return nil
}
