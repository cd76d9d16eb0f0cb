package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/mitchellh/mapstructure"
	"github.com/spf13/viper"
)

type HTTPConfig struct {
	Host string
	Port int
}

type StoreConfig struct {
	// Driver is "sqlite" (on-device file) or "postgres".
	Driver string
	Path   string
	DSN    string
}

type GoogleConfig struct {
	APIKey          string
	ClassifierModel string
	StylistModel    string
	ImageModel      string
}

type EnrichmentConfig struct {
	// Backend is "local" (goroutine per item) or "asynq" (redis-backed worker).
	Backend      string
	Concurrency  int
	Timeout      time.Duration
	RedisAddr    string
	Queue        string
	MaxRetry     int
	PollInterval time.Duration
	Retention    time.Duration
}

type CacheConfig struct {
	Enabled     bool
	NumCounters int64
	MaxCost     int64
	TTL         time.Duration
}

type ImagesConfig struct {
	MaxDimension int
	JPEGQuality  int
}

type ExportConfig struct {
	Bucket          string
	AccountID       string
	AccessKeyID     string
	AccessKeySecret string
	Endpoint        string
	Region          string
	URLExpiry       time.Duration
}

type SentryConfig struct {
	DSN     string
	Release string
}

type SecurityConfig struct {
	JWTSecret string
	TokenTTL  time.Duration
}

type AppConfig struct {
	Environment string
	HTTP        HTTPConfig
	Store       StoreConfig
	Google      GoogleConfig
	Enrichment  EnrichmentConfig
	Cache       CacheConfig
	Images      ImagesConfig
	Export      ExportConfig
	Sentry      SentryConfig
	Security    SecurityConfig
}

func (c HTTPConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

func Load() (*AppConfig, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetEnvPrefix("LETRY")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	setDefaults(v)
	if err := bindSecrets(v); err != nil {
		return nil, err
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("load config file: %w", err)
		}
	}
	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg, func(dc *mapstructure.DecoderConfig) {
		dc.TagName = "mapstructure"
		dc.DecodeHook = mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
		)
	}); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if cfg.Store.Driver != "sqlite" && cfg.Store.Driver != "postgres" {
		return nil, fmt.Errorf("unsupported store driver %q", cfg.Store.Driver)
	}
	if cfg.Enrichment.Backend != "local" && cfg.Enrichment.Backend != "asynq" {
		return nil, fmt.Errorf("unsupported enrichment backend %q", cfg.Enrichment.Backend)
	}
	return &cfg, nil
}

// secretKeys have no default, so Unmarshal only sees them once bound to the
// environment.
var secretKeys = []string{
	"google.apikey",
	"store.dsn",
	"sentry.dsn",
	"security.jwtsecret",
	"export.bucket",
	"export.accountid",
	"export.accesskeyid",
	"export.accesskeysecret",
	"export.endpoint",
}

func bindSecrets(v *viper.Viper) error {
	for _, key := range secretKeys {
		if err := v.BindEnv(key); err != nil {
			return fmt.Errorf("bind %s: %w", key, err)
		}
	}
	return nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("environment", "development")

	v.SetDefault("http.host", "127.0.0.1")
	v.SetDefault("http.port", 8083)

	v.SetDefault("store.driver", "sqlite")
	v.SetDefault("store.path", "./data/studio.db")

	v.SetDefault("google.classifiermodel", "gemini-2.5-flash")
	v.SetDefault("google.stylistmodel", "gemini-2.5-flash")
	v.SetDefault("google.imagemodel", "gemini-2.5-flash-image-preview")

	v.SetDefault("enrichment.backend", "local")
	v.SetDefault("enrichment.concurrency", 0) // unbounded
	v.SetDefault("enrichment.timeout", "90s")
	v.SetDefault("enrichment.redisaddr", "127.0.0.1:6379")
	v.SetDefault("enrichment.queue", "enrich")
	v.SetDefault("enrichment.maxretry", 0) // failed classifications are terminal
	v.SetDefault("enrichment.pollinterval", "1s")
	v.SetDefault("enrichment.retention", "1h")

	v.SetDefault("cache.enabled", true)
	v.SetDefault("cache.numcounters", 1e5)
	v.SetDefault("cache.maxcost", 1e4)
	v.SetDefault("cache.ttl", "24h")

	v.SetDefault("images.maxdimension", 1536)
	v.SetDefault("images.jpegquality", 90)

	v.SetDefault("export.region", "auto")
	v.SetDefault("export.urlexpiry", "15m")

	v.SetDefault("sentry.release", "letrystudio@1.0.0")

	v.SetDefault("security.tokenttl", "72h")
}
