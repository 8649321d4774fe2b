package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"DeBrief/pkg/util"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"
)

type Config struct {
	Environment string `yaml:"environment" default:"development" validate:"required"`
	Log         struct {
		Level      string `yaml:"level" default:"info" validate:"oneof=debug info warn error"`
		Format     string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output     string `yaml:"output" default:"stdout"`
		File       string `yaml:"file" default:"data/debrief.log"`
		TimeFormat string `yaml:"time_format"`
		Collector  struct {
			Enabled        bool          `yaml:"enabled"`
			FlushInterval  time.Duration `yaml:"flush_interval" default:"30s"`
			CountThreshold int           `yaml:"count_threshold" default:"100"`
		} `yaml:"collector"`
	} `yaml:"log"`
	Server struct {
		Enabled         bool          `yaml:"enabled" default:"true"`
		Port            int           `yaml:"port" default:"8080" validate:"min=1,max=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"10s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Store struct {
		LocalPath   string        `yaml:"local_path" default:"data/config.json" validate:"required"`
		Backend     string        `yaml:"backend" default:"none" validate:"oneof=none redis http"`
		Timeout     time.Duration `yaml:"timeout" default:"5s"`
		SecretsFile string        `yaml:"secrets_file" default:".env"`
		Redis       struct {
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
			Key      string `yaml:"key" default:"debrief:config"`
		} `yaml:"redis"`
		HTTP struct {
			URL   string `yaml:"url"`
			Token string `yaml:"token"`
		} `yaml:"http"`
	} `yaml:"store"`
	Monitor struct {
		Interval        time.Duration `yaml:"interval" default:"60s"`
		Workers         int           `yaml:"workers" default:"3" validate:"min=1,max=5"`
		ProviderTimeout time.Duration `yaml:"provider_timeout" default:"10s"`
		RestartBackoff  time.Duration `yaml:"restart_backoff" default:"10s"`
		QuoteSource     string        `yaml:"quote_source" default:"yahoo" validate:"oneof=yahoo finnhub"`
		NewsSource      string        `yaml:"news_source" default:"google" validate:"oneof=google finnhub"`
		HistoryBars     int           `yaml:"history_bars" default:"260"`
		Price           struct {
			Threshold float64 `yaml:"threshold" default:"3.0" validate:"gt=0"`
			RearmStep float64 `yaml:"rearm_step" default:"1.0" validate:"gt=0"`
		} `yaml:"price"`
		News struct {
			MaxAge          time.Duration `yaml:"max_age" default:"24h"`
			BreakingWindow  time.Duration `yaml:"breaking_window" default:"1h"`
			HistoryCap      int           `yaml:"history_cap" default:"50" validate:"min=1"`
			ExcludeKeywords []string      `yaml:"exclude_keywords"`
		} `yaml:"news"`
		RSI struct {
			Period     int     `yaml:"period" default:"14" validate:"min=2"`
			Overbought float64 `yaml:"overbought" default:"70"`
			Oversold   float64 `yaml:"oversold" default:"30"`
			ResetLow   float64 `yaml:"reset_low" default:"35"`
			ResetHigh  float64 `yaml:"reset_high" default:"65"`
		} `yaml:"rsi"`
	} `yaml:"monitor"`
	Digest struct {
		Enabled   bool     `yaml:"enabled" default:"true"`
		At        string   `yaml:"at" default:"08:00"`
		Timezone  string   `yaml:"timezone" default:"Asia/Seoul"`
		Countries []string `yaml:"countries"`
		MinImpact string   `yaml:"min_impact" default:"medium" validate:"oneof=low medium high"`
	} `yaml:"digest"`
	Telegram struct {
		APIURL          string        `yaml:"api_url" default:"https://api.telegram.org"`
		Timeout         time.Duration `yaml:"timeout" default:"10s"`
		RatePerSecond   float64       `yaml:"rate_per_second" default:"1"`
		Burst           int           `yaml:"burst" default:"3"`
		ListenerEnabled bool          `yaml:"listener_enabled" default:"true"`
		PollTimeout     time.Duration `yaml:"poll_timeout" default:"25s"`
	} `yaml:"telegram"`
	Finnhub struct {
		APIKey        string `yaml:"api_key"`
		BaseURL       string `yaml:"base_url" default:"https://finnhub.io/api/v1"`
		RatePerMinute int    `yaml:"rate_per_minute" default:"60"`
	} `yaml:"finnhub"`
	Yahoo struct {
		BaseURL string `yaml:"base_url" default:"https://query1.finance.yahoo.com"`
	} `yaml:"yahoo"`
	Feeds struct {
		GoogleNewsURL string `yaml:"google_news_url" default:"https://news.google.com/rss/search"`
		Language      string `yaml:"language" default:"ko"`
		Region        string `yaml:"region" default:"KR"`
		EdgarURL      string `yaml:"edgar_url" default:"https://www.sec.gov/cgi-bin/browse-edgar"`
		UserAgent     string `yaml:"user_agent" default:"DeBrief/1.0 (ops@debrief.local)"`
		MaxItems      int    `yaml:"max_items" default:"10"`
	} `yaml:"feeds"`
	Kafka struct {
		Enabled      bool     `yaml:"enabled"`
		Brokers      []string `yaml:"brokers"`
		AlertTopic   string   `yaml:"alert_topic" default:"debrief.alerts"`
		LogTopic     string   `yaml:"log_topic" default:"debrief.logs"`
		RequiredAcks int      `yaml:"required_acks" default:"1"`
		Compression  string   `yaml:"compression" default:"snappy"`
		Producer     struct {
			MaxAttempts  int           `yaml:"max_attempts" default:"3"`
			Linger       time.Duration `yaml:"linger" default:"200ms"`
			BatchBytes   int           `yaml:"batch_bytes" default:"1048576"`
			BatchSize    int           `yaml:"batch_size" default:"100"`
			WriteTimeout time.Duration `yaml:"write_timeout" default:"5s"`
			ReadTimeout  time.Duration `yaml:"read_timeout" default:"5s"`
			Async        bool          `yaml:"async"`
		} `yaml:"producer"`
	} `yaml:"kafka"`
	Cache struct {
		QuoteTTL time.Duration `yaml:"quote_ttl" default:"15s"`
		Redis    struct {
			Enabled  bool   `yaml:"enabled"`
			Addr     string `yaml:"addr" default:"localhost:6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db"`
		} `yaml:"redis"`
	} `yaml:"cache"`
}

var validate = validator.New()

// Default returns a Config populated only from struct defaults.
func Default() *Config {
	var c Config
	_ = defaults.Set(&c)
	return &c
}

// Load reads and parses a YAML configuration file. Keys missing from the
// file keep their struct defaults.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	c, err := Parse(b)
	if err != nil {
		return nil, err
	}
	return c, nil
}

// Parse decodes YAML bytes on top of the defaults and validates the result.
func Parse(b []byte) (*Config, error) {
	c := Default()
	if err := yaml.Unmarshal(b, c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	c.applyEnv(os.Getenv)

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}
	return c, nil
}

func (c *Config) applyEnv(getenv func(string) string) {
	if v := getenv("DEBRIEF_ENV"); v != "" {
		c.Environment = v
	}
	if v := getenv("DEBRIEF_LOG_LEVEL"); v != "" {
		c.Log.Level = strings.ToLower(v)
	}
	if v := getenv("DEBRIEF_HTTP_PORT"); v != "" {
		if port, err := strconv.Atoi(v); err == nil {
			c.Server.Port = port
		}
	}
	if v := getenv("DEBRIEF_STORE_BACKEND"); v != "" {
		c.Store.Backend = v
	}
	if v := getenv("DEBRIEF_REDIS_ADDR"); v != "" {
		c.Store.Redis.Addr = v
		c.Cache.Redis.Addr = v
	}
	if v := getenv("DEBRIEF_STORE_URL"); v != "" {
		c.Store.HTTP.URL = v
	}
	if v := getenv("DEBRIEF_STORE_TOKEN"); v != "" {
		c.Store.HTTP.Token = v
	}
	if v := getenv("FINNHUB_API_KEY"); v != "" {
		c.Finnhub.APIKey = v
	}
	if v := getenv("KAFKA_BROKERS"); v != "" {
		c.Kafka.Brokers = strings.Split(v, ",")
		c.Kafka.Enabled = true
	}
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		return err
	}
	switch c.Store.Backend {
	case "redis":
		if c.Store.Redis.Addr == "" {
			return fmt.Errorf("store.redis.addr is required for redis backend")
		}
	case "http":
		if c.Store.HTTP.URL == "" {
			return fmt.Errorf("store.http.url is required for http backend")
		}
	}
	if c.Monitor.RSI.ResetLow <= c.Monitor.RSI.Oversold || c.Monitor.RSI.ResetHigh >= c.Monitor.RSI.Overbought {
		return fmt.Errorf("monitor.rsi reset band must sit strictly inside the oversold/overbought thresholds")
	}
	if c.Kafka.Enabled && len(c.Kafka.Brokers) == 0 {
		return fmt.Errorf("kafka.brokers cannot be empty when kafka is enabled")
	}
	if _, _, err := util.ParseClock(c.Digest.At); err != nil {
		return fmt.Errorf("digest.at: %w", err)
	}
	if _, err := time.LoadLocation(c.Digest.Timezone); err != nil {
		return fmt.Errorf("digest.timezone: %w", err)
	}
	if c.Monitor.QuoteSource == "finnhub" && c.Finnhub.APIKey == "" {
		return fmt.Errorf("finnhub.api_key is required when monitor.quote_source is finnhub")
	}
	return nil
}

// Location returns the digest time zone, falling back to UTC.
func (c *Config) Location() *time.Location {
	loc, err := time.LoadLocation(c.Digest.Timezone)
	if err != nil {
		return time.UTC
	}
	return loc
}
