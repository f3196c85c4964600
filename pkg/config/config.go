package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"FinLiquidity/internal/domain/models"
	"FinLiquidity/pkg/logger"
	"FinLiquidity/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Server      struct {
		Host            string        `yaml:"host" default:"0.0.0.0"`
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"60s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
		SlowThreshold   time.Duration `yaml:"slow_threshold" default:"2s"`
		DisableCORS     bool          `yaml:"disable_cors"`
		RateLimit       struct {
			RPS   float64 `yaml:"rps" default:"20"`
			Burst int     `yaml:"burst" default:"40"`
		} `yaml:"rate_limit"`
	} `yaml:"server"`
	Metrics struct {
		Disabled bool `yaml:"disabled"`
	} `yaml:"metrics"`
	Logger logger.Config `yaml:"logger"`
	Source struct {
		Type string `yaml:"type" default:"fred" validate:"oneof=fred clickhouse"`
		Fred struct {
			BaseURL        string            `yaml:"base_url" default:"https://fred.stlouisfed.org" validate:"required,url"`
			Timeout        time.Duration     `yaml:"timeout" default:"20s"`
			DateColumns    []string          `yaml:"date_columns"`
			ValueFallbacks []string          `yaml:"value_fallbacks"`
			SeriesColumns  map[string]string `yaml:"series_columns"`
		} `yaml:"fred"`
	} `yaml:"source"`
	Price struct {
		BaseURL    string        `yaml:"base_url" default:"https://api.coingecko.com/api/v3" validate:"required,url"`
		Timeout    time.Duration `yaml:"timeout" default:"10s"`
		VsCurrency string        `yaml:"vs_currency" default:"usd"`
		TTL        time.Duration `yaml:"ttl" default:"60s"`
		RPS        float64       `yaml:"rps" default:"0.5"`
		Burst      int           `yaml:"burst" default:"2"`
		Coins      []string      `yaml:"coins"`
	} `yaml:"price"`
	Catalog []models.CatalogEntry `yaml:"catalog" validate:"dive"`
	Assets  map[string]string     `yaml:"assets"`
	Engine  struct {
		DefaultStart string  `yaml:"default_start" default:"2015-01-01"`
		MinStart     string  `yaml:"min_start" default:"2002-01-01"`
		Parallel     bool    `yaml:"parallel"`
		Epsilon      float64 `yaml:"epsilon" default:"1e-9" validate:"gt=0"`
	} `yaml:"engine"`
	Cache struct {
		Backend    string        `yaml:"backend" default:"memory" validate:"oneof=memory redis layered"`
		SeriesTTL  time.Duration `yaml:"series_ttl" default:"1h"`
		FrameTTL   time.Duration `yaml:"frame_ttl" default:"1h"`
		PriceTTL   time.Duration `yaml:"price_ttl" default:"60s"`
		MaxEntries int           `yaml:"max_entries" default:"1000"`
		L1TTL      time.Duration `yaml:"l1_ttl" default:"1m"`
		Redis      struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			PoolSize int    `yaml:"pool_size" default:"10"`
			Prefix   string `yaml:"prefix" default:"finliquidity"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	ClickHouse struct {
		Host             string        `yaml:"host" default:"localhost"`
		Port             int           `yaml:"port" default:"9000"`
		Database         string        `yaml:"database" default:"default"`
		User             string        `yaml:"user" default:"default"`
		Password         string        `yaml:"password"`
		UseHTTP          bool          `yaml:"use_http"`
		Table            string        `yaml:"table" default:"observations"`
		DialTimeout      time.Duration `yaml:"dial_timeout" default:"5s"`
		ReadTimeout      time.Duration `yaml:"read_timeout" default:"30s"`
		MaxExecutionTime time.Duration `yaml:"max_execution_time" default:"60s"`
	} `yaml:"clickhouse"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		IndexTopic   string   `yaml:"index_topic" default:"liquidity.index"`
		RefreshTopic string   `yaml:"refresh_topic" default:"liquidity.refresh"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"10ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"10s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"10s"`
		} `yaml:"producer"`
		Consumer struct {
			GroupID    string        `yaml:"group_id"`
			Workers    int           `yaml:"workers" default:"1"`
			BufferSize int           `yaml:"buffer_size" default:"16"`
			RetryMax   int           `yaml:"retry_max" default:"3"`
			BackoffMin time.Duration `yaml:"backoff_min" default:"100ms"`
			BackoffMax time.Duration `yaml:"backoff_max" default:"5s"`
			MinBytes   int           `yaml:"min_bytes" default:"1"`
			MaxBytes   int           `yaml:"max_bytes" default:"1048576"`
		} `yaml:"consumer"`
	} `yaml:"kafka"`
	Stream struct {
		Interval time.Duration `yaml:"interval" default:"30s"`
	} `yaml:"stream"`
}

var validate = validator.New()

// Default returns a configuration populated only from struct defaults.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	c.applyDomainDefaults()
	return &c
}

// Load reads and parses a YAML configuration file.
// A missing path yields the defaults.
func Load(path string) (*Config, error) {
	var c Config
	if path != "" {
		b, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("read config: %w", err)
		}
		if err := yaml.Unmarshal(b, &c); err != nil {
			return nil, fmt.Errorf("parse config: %w", err)
		}
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}
	c.applyDomainDefaults()

	// Validate required fields
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

	// Override with environment variables
	if v := os.Getenv("FRED_BASE_URL"); v != "" {
		c.Source.Fred.BaseURL = v
	}
	if v := os.Getenv("COINGECKO_BASE_URL"); v != "" {
		c.Price.BaseURL = v
	}
	if v := os.Getenv("SOURCE_TYPE"); v != "" {
		c.Source.Type = v
	}
	if v := os.Getenv("CACHE_BACKEND"); v != "" {
		c.Cache.Backend = v
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		c.Cache.Redis.Addr = v
	}
	if v := os.Getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
	if v := os.Getenv("LOG_LEVEL"); v != "" {
		c.Logger.Level = v
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	if _, err := models.NewCatalog(c.Catalog...); err != nil {
		return err
	}
	def, ok := util.ParseDate(c.Engine.DefaultStart)
	if !ok {
		return fmt.Errorf("engine.default_start %q is not a date", c.Engine.DefaultStart)
	}
	floor, ok := util.ParseDate(c.Engine.MinStart)
	if !ok {
		return fmt.Errorf("engine.min_start %q is not a date", c.Engine.MinStart)
	}
	if def.Before(floor) {
		return errors.New("engine.default_start must not precede engine.min_start")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return errors.New("kafka.brokers cannot be empty when kafka is enabled")
	}
	if c.Cache.Backend != "memory" && c.Cache.Redis.Addr == "" {
		return fmt.Errorf("cache.redis.addr is required for backend %q", c.Cache.Backend)
	}
	return nil
}

// CatalogValue returns the configured catalog as an immutable value.
func (c *Config) CatalogValue() (models.Catalog, error) {
	return models.NewCatalog(c.Catalog...)
}

func (c *Config) applyDomainDefaults() {
	if len(c.Catalog) == 0 {
		c.Catalog = models.DefaultCatalogEntries()
	}
	if len(c.Assets) == 0 {
		c.Assets = map[string]string{
			"SP500": "SP500",
			"BTC":   "CBBTCUSD",
			"ETH":   "CBETHUSD",
		}
	}
	if len(c.Source.Fred.DateColumns) == 0 {
		c.Source.Fred.DateColumns = []string{"DATE", "observation_date"}
	}
	if len(c.Source.Fred.ValueFallbacks) == 0 {
		c.Source.Fred.ValueFallbacks = []string{"VALUE"}
	}
	if len(c.Price.Coins) == 0 {
		c.Price.Coins = []string{"bitcoin", "ethereum"}
	}
}
