package config

import (
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

// Config holds all application configuration.
type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Database  DatabaseConfig  `mapstructure:"database"`
	NATS      NATSConfig      `mapstructure:"nats"`
	Valkey    ValkeyConfig    `mapstructure:"valkey"`
	Location  LocationConfig  `mapstructure:"location"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	Telemetry TelemetryConfig `mapstructure:"telemetry"`
}

type ServerConfig struct {
	Port         int `mapstructure:"port"`
	ReadTimeout  int `mapstructure:"read_timeout"`
	WriteTimeout int `mapstructure:"write_timeout"`
}

type DatabaseConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
}

func (d DatabaseConfig) DSN() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%d/%s?sslmode=%s",
		d.User, d.Password, d.Host, d.Port, d.DBName, d.SSLMode,
	)
}

type NATSConfig struct {
	URL string `mapstructure:"url"`
}

type ValkeyConfig struct {
	Addr string `mapstructure:"addr"`
}

// LocationConfig configures the device-gateway location source.
type LocationConfig struct {
	GatewayURL   string `mapstructure:"gateway_url"`
	TimeoutMs    int    `mapstructure:"timeout_ms"`
	WaitBudgetMs int    `mapstructure:"wait_budget_ms"`
}

// DiscoveryConfig holds the search and suggestion tuning knobs.
type DiscoveryConfig struct {
	DefaultRadiusKm    float64 `mapstructure:"default_radius_km"`
	ViewportMargin     float64 `mapstructure:"viewport_margin"`
	ViewportMinSpanDeg float64 `mapstructure:"viewport_min_span_deg"`
	SuggestionLimit    int     `mapstructure:"suggestion_limit"`
	DebounceMs         int     `mapstructure:"debounce_ms"`
	VocabRefreshMin    int     `mapstructure:"vocab_refresh_min"`
}

type TelemetryConfig struct {
	ServiceName string `mapstructure:"service_name"`
	OTLPAddr    string `mapstructure:"otlp_addr"`
	Enabled     bool   `mapstructure:"enabled"`
}

// Load reads configuration from file and environment variables.
func Load(service string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.read_timeout", 10)
	v.SetDefault("server.write_timeout", 10)
	v.SetDefault("database.host", "localhost")
	v.SetDefault("database.port", 5432)
	v.SetDefault("database.user", "clicbook")
	v.SetDefault("database.password", "")
	v.SetDefault("database.dbname", "clicbook")
	v.SetDefault("database.sslmode", "disable")
	v.SetDefault("nats.url", "nats://localhost:4222")
	v.SetDefault("valkey.addr", "localhost:6379")
	v.SetDefault("location.gateway_url", "http://localhost:8090")
	v.SetDefault("location.timeout_ms", 3000)
	v.SetDefault("location.wait_budget_ms", 4000)
	v.SetDefault("discovery.default_radius_km", 20)
	v.SetDefault("discovery.viewport_margin", 1.5)
	v.SetDefault("discovery.viewport_min_span_deg", 0.05)
	v.SetDefault("discovery.suggestion_limit", 5)
	v.SetDefault("discovery.debounce_ms", 250)
	v.SetDefault("discovery.vocab_refresh_min", 5)
	v.SetDefault("telemetry.service_name", service)
	v.SetDefault("telemetry.otlp_addr", "tempo:4317")
	v.SetDefault("telemetry.enabled", true)

	// Config file (optional)
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// Environment variables: CLICBOOK_DATABASE_HOST -> database.host
	v.SetEnvPrefix("CLICBOOK")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

// Validate checks that required configuration fields are present and sane.
func (c *Config) Validate() error {
	var errs []string

	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		errs = append(errs, fmt.Sprintf("server.port must be 1-65535, got %d", c.Server.Port))
	}
	if c.Database.Host == "" {
		errs = append(errs, "database.host is required")
	}
	if c.Database.Port <= 0 || c.Database.Port > 65535 {
		errs = append(errs, fmt.Sprintf("database.port must be 1-65535, got %d", c.Database.Port))
	}
	if c.Database.User == "" {
		errs = append(errs, "database.user is required")
	}
	if c.Database.DBName == "" {
		errs = append(errs, "database.dbname is required")
	}
	if c.NATS.URL == "" {
		errs = append(errs, "nats.url is required")
	}
	if c.Valkey.Addr == "" {
		errs = append(errs, "valkey.addr is required")
	}
	if c.Location.GatewayURL == "" {
		errs = append(errs, "location.gateway_url is required")
	}
	if c.Location.TimeoutMs <= 0 {
		errs = append(errs, "location.timeout_ms must be positive")
	}
	if c.Discovery.DefaultRadiusKm <= 0 {
		errs = append(errs, "discovery.default_radius_km must be positive")
	}
	if c.Discovery.ViewportMargin < 1 {
		errs = append(errs, "discovery.viewport_margin must be >= 1")
	}
	if c.Server.ReadTimeout <= 0 {
		errs = append(errs, "server.read_timeout must be positive")
	}
	if c.Server.WriteTimeout <= 0 {
		errs = append(errs, "server.write_timeout must be positive")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
