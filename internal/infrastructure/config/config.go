package config

import (
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config holds all application configuration
type Config struct {
	App       AppConfig
	Database  DatabaseConfig
	Redis     RedisConfig
	Log       LogConfig
	HTTP      HTTPConfig
	Telemetry TelemetryConfig
	Matching  MatchingConfig
}

// AppConfig holds application-specific settings
type AppConfig struct {
	Name string
	Env  string
	Port string
}

// DatabaseConfig holds database connection settings
type DatabaseConfig struct {
	Host            string
	Port            int
	User            string
	Password        string
	DBName          string
	SSLMode         string
	MaxOpenConns    int
	MaxIdleConns    int
	ConnMaxLifetime int // in minutes
	ConnMaxIdleTime int // in minutes
}

// RedisConfig holds Redis connection settings
type RedisConfig struct {
	Host     string
	Port     int
	Password string
	DB       int
}

// LogConfig holds logging configuration
type LogConfig struct {
	Level  string // debug, info, warn, error
	Format string // json, console
	Output string // stdout, stderr, or file path
}

// HTTPConfig holds HTTP server configuration
type HTTPConfig struct {
	ReadTimeout    time.Duration
	WriteTimeout   time.Duration
	IdleTimeout    time.Duration
	MaxHeaderBytes int
}

// TelemetryConfig holds OpenTelemetry tracing settings
type TelemetryConfig struct {
	Enabled           bool
	CollectorEndpoint string
	SamplingRatio     float64
	Insecure          bool
	TraceDB           bool
}

// MatchingConfig holds the resolution engine's tunable policy. The values
// are business policy observed against labeled exports, so they ship as
// configuration rather than constants.
type MatchingConfig struct {
	MinAddressKeyLen     int
	ScoreExactName       int
	ScoreNameContainment int
	ScoreExactAddress    int
	ScoreZipMatch        int

	RetailPrefixes          []string
	MarketplaceMarker       string
	MarketplaceMarkerMinLen int
	MarketplaceCodeMinLen   int
	DirectMinDigits         int
	DirectMaxDigits         int

	DirectFilterNameTokens    []string
	DirectFilterRepTokens     []string
	DirectFilterOrderPrefixes []string
	DirectFilterOrderTokens   []string

	WriterBatchSize int
	ReportCacheTTL  time.Duration
}

// Load loads configuration from TOML file and environment variables
// Priority (highest to lowest):
// 1. Environment variables with SALESOPS_ prefix (e.g., SALESOPS_DATABASE_PASSWORD)
// 2. config.toml
// 3. Built-in defaults
func Load() (*Config, error) {
	v := viper.New()

	v.SetConfigName("config")
	v.SetConfigType("toml")
	v.AddConfigPath(".")
	v.AddConfigPath("./backend")
	v.AddConfigPath("/app")

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("error reading config file: %w", err)
		}
		// Config file not found is OK, we'll use defaults and env vars
	}

	v.SetEnvPrefix("SALESOPS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	cfg := &Config{
		App: AppConfig{
			Name: v.GetString("app.name"),
			Env:  v.GetString("app.env"),
			Port: v.GetString("app.port"),
		},
		Database: DatabaseConfig{
			Host:            v.GetString("database.host"),
			Port:            v.GetInt("database.port"),
			User:            v.GetString("database.user"),
			Password:        v.GetString("database.password"),
			DBName:          v.GetString("database.dbname"),
			SSLMode:         v.GetString("database.sslmode"),
			MaxOpenConns:    v.GetInt("database.max_open_conns"),
			MaxIdleConns:    v.GetInt("database.max_idle_conns"),
			ConnMaxLifetime: v.GetInt("database.conn_max_lifetime"),
			ConnMaxIdleTime: v.GetInt("database.conn_max_idle_time"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("redis.host"),
			Port:     v.GetInt("redis.port"),
			Password: v.GetString("redis.password"),
			DB:       v.GetInt("redis.db"),
		},
		Log: LogConfig{
			Level:  v.GetString("log.level"),
			Format: v.GetString("log.format"),
			Output: v.GetString("log.output"),
		},
		HTTP: HTTPConfig{
			ReadTimeout:    v.GetDuration("http.read_timeout"),
			WriteTimeout:   v.GetDuration("http.write_timeout"),
			IdleTimeout:    v.GetDuration("http.idle_timeout"),
			MaxHeaderBytes: v.GetInt("http.max_header_bytes"),
		},
		Telemetry: TelemetryConfig{
			Enabled:           v.GetBool("telemetry.enabled"),
			CollectorEndpoint: v.GetString("telemetry.collector_endpoint"),
			SamplingRatio:     v.GetFloat64("telemetry.sampling_ratio"),
			Insecure:          v.GetBool("telemetry.insecure"),
			TraceDB:           v.GetBool("telemetry.trace_db"),
		},
		Matching: MatchingConfig{
			MinAddressKeyLen:     v.GetInt("matching.min_address_key_len"),
			ScoreExactName:       v.GetInt("matching.score_exact_name"),
			ScoreNameContainment: v.GetInt("matching.score_name_containment"),
			ScoreExactAddress:    v.GetInt("matching.score_exact_address"),
			ScoreZipMatch:        v.GetInt("matching.score_zip_match"),

			RetailPrefixes:          v.GetStringSlice("matching.retail_prefixes"),
			MarketplaceMarker:       v.GetString("matching.marketplace_marker"),
			MarketplaceMarkerMinLen: v.GetInt("matching.marketplace_marker_min_len"),
			MarketplaceCodeMinLen:   v.GetInt("matching.marketplace_code_min_len"),
			DirectMinDigits:         v.GetInt("matching.direct_min_digits"),
			DirectMaxDigits:         v.GetInt("matching.direct_max_digits"),

			DirectFilterNameTokens:    v.GetStringSlice("matching.direct_filter_name_tokens"),
			DirectFilterRepTokens:     v.GetStringSlice("matching.direct_filter_rep_tokens"),
			DirectFilterOrderPrefixes: v.GetStringSlice("matching.direct_filter_order_prefixes"),
			DirectFilterOrderTokens:   v.GetStringSlice("matching.direct_filter_order_tokens"),

			WriterBatchSize: v.GetInt("matching.writer_batch_size"),
			ReportCacheTTL:  v.GetDuration("matching.report_cache_ttl"),
		},
	}

	applyDefaults(cfg)

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// applyDefaults sets default values for any empty config fields
func applyDefaults(cfg *Config) {
	if cfg.App.Name == "" {
		cfg.App.Name = "salesops-backend"
	}
	if cfg.App.Env == "" {
		cfg.App.Env = "development"
	}
	if cfg.App.Port == "" {
		cfg.App.Port = "8080"
	}
	if cfg.Database.Host == "" {
		cfg.Database.Host = "localhost"
	}
	if cfg.Database.Port == 0 {
		cfg.Database.Port = 5432
	}
	if cfg.Database.User == "" {
		cfg.Database.User = "postgres"
	}
	if cfg.Database.DBName == "" {
		cfg.Database.DBName = "salesops"
	}
	if cfg.Database.SSLMode == "" {
		cfg.Database.SSLMode = "disable"
	}
	if cfg.Database.MaxOpenConns == 0 {
		cfg.Database.MaxOpenConns = 25
	}
	if cfg.Database.MaxIdleConns == 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetime == 0 {
		cfg.Database.ConnMaxLifetime = 60
	}
	if cfg.Database.ConnMaxIdleTime == 0 {
		cfg.Database.ConnMaxIdleTime = 30
	}
	if cfg.Redis.Host == "" {
		cfg.Redis.Host = "localhost"
	}
	if cfg.Redis.Port == 0 {
		cfg.Redis.Port = 6379
	}
	if cfg.Log.Level == "" {
		cfg.Log.Level = "info"
	}
	if cfg.Log.Format == "" {
		cfg.Log.Format = "console"
	}
	if cfg.Log.Output == "" {
		cfg.Log.Output = "stdout"
	}
	if cfg.HTTP.ReadTimeout == 0 {
		cfg.HTTP.ReadTimeout = 15 * time.Second
	}
	if cfg.HTTP.WriteTimeout == 0 {
		// Analysis runs stream full datasets; give responses room.
		cfg.HTTP.WriteTimeout = 120 * time.Second
	}
	if cfg.HTTP.IdleTimeout == 0 {
		cfg.HTTP.IdleTimeout = 60 * time.Second
	}
	if cfg.HTTP.MaxHeaderBytes == 0 {
		cfg.HTTP.MaxHeaderBytes = 1 << 20 // 1MB
	}
	if cfg.Telemetry.CollectorEndpoint == "" {
		cfg.Telemetry.CollectorEndpoint = "localhost:4317"
	}
	if cfg.Telemetry.SamplingRatio == 0 {
		cfg.Telemetry.SamplingRatio = 1.0
	}
	if cfg.Matching.MinAddressKeyLen == 0 {
		cfg.Matching.MinAddressKeyLen = 5
	}
	if cfg.Matching.ScoreExactName == 0 {
		cfg.Matching.ScoreExactName = 5
	}
	if cfg.Matching.ScoreNameContainment == 0 {
		cfg.Matching.ScoreNameContainment = 3
	}
	if cfg.Matching.ScoreExactAddress == 0 {
		cfg.Matching.ScoreExactAddress = 2
	}
	if cfg.Matching.ScoreZipMatch == 0 {
		cfg.Matching.ScoreZipMatch = 1
	}
	if len(cfg.Matching.RetailPrefixes) == 0 {
		cfg.Matching.RetailPrefixes = []string{"sh"}
	}
	if cfg.Matching.MarketplaceMarker == "" {
		cfg.Matching.MarketplaceMarker = "#"
	}
	if cfg.Matching.MarketplaceMarkerMinLen == 0 {
		cfg.Matching.MarketplaceMarkerMinLen = 10
	}
	if cfg.Matching.MarketplaceCodeMinLen == 0 {
		cfg.Matching.MarketplaceCodeMinLen = 10
	}
	if cfg.Matching.DirectMinDigits == 0 {
		cfg.Matching.DirectMinDigits = 4
	}
	if cfg.Matching.DirectMaxDigits == 0 {
		cfg.Matching.DirectMaxDigits = 6
	}
	if len(cfg.Matching.DirectFilterNameTokens) == 0 {
		cfg.Matching.DirectFilterNameTokens = []string{"shopify"}
	}
	if len(cfg.Matching.DirectFilterOrderPrefixes) == 0 {
		cfg.Matching.DirectFilterOrderPrefixes = []string{"#"}
	}
	if len(cfg.Matching.DirectFilterOrderTokens) == 0 {
		cfg.Matching.DirectFilterOrderTokens = []string{"qpq", "000000"}
	}
	if cfg.Matching.WriterBatchSize == 0 {
		cfg.Matching.WriterBatchSize = 400
	}
	if cfg.Matching.ReportCacheTTL == 0 {
		cfg.Matching.ReportCacheTTL = 6 * time.Hour
	}
}

// validate performs validation on the configuration
func (c *Config) validate() error {
	if c.Database.MaxOpenConns <= 0 {
		return fmt.Errorf("database.max_open_conns must be positive")
	}
	if c.Database.MaxIdleConns < 0 {
		return fmt.Errorf("database.max_idle_conns cannot be negative")
	}
	if c.Database.MaxIdleConns > c.Database.MaxOpenConns {
		return fmt.Errorf("database.max_idle_conns (%d) cannot exceed database.max_open_conns (%d)",
			c.Database.MaxIdleConns, c.Database.MaxOpenConns)
	}

	if c.App.Env == "production" {
		if c.Database.Password == "" {
			return fmt.Errorf("database.password is required in production")
		}
		if c.Database.SSLMode == "disable" {
			return fmt.Errorf("database.sslmode cannot be 'disable' in production")
		}
	}

	if c.Matching.MinAddressKeyLen < 1 {
		return fmt.Errorf("matching.min_address_key_len must be positive")
	}
	if c.Matching.DirectMinDigits > c.Matching.DirectMaxDigits {
		return fmt.Errorf("matching.direct_min_digits (%d) cannot exceed matching.direct_max_digits (%d)",
			c.Matching.DirectMinDigits, c.Matching.DirectMaxDigits)
	}
	if c.Matching.WriterBatchSize <= 0 {
		return fmt.Errorf("matching.writer_batch_size must be positive")
	}

	return nil
}

// DSN returns the database connection string with properly escaped values
func (d *DatabaseConfig) DSN() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(d.User, d.Password),
		Host:   fmt.Sprintf("%s:%d", d.Host, d.Port),
		Path:   d.DBName,
	}
	q := u.Query()
	q.Set("sslmode", d.SSLMode)
	u.RawQuery = q.Encode()
	return u.String()
}
