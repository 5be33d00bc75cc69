package config

import (
	"log"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

// Config represents the overall application configuration.
type Config struct {
	API      APIConfig      `yaml:"api"`
	UI       UIConfig       `yaml:"ui"`
	Logging  LoggingConfig  `yaml:"logging"`
	Server   ServerConfig   `yaml:"server"`
	Database DatabaseConfig `yaml:"database"`
	Mailer   MailerConfig   `yaml:"mailer"`
}

// APIConfig describes the garment backend the desk talks to.
type APIConfig struct {
	BaseURL        string            `yaml:"base_url"`
	CreatePath     string            `yaml:"create_path"`
	SearchPath     string            `yaml:"search_path"`
	UpdatePath     string            `yaml:"update_path"` // must contain {id}
	UpdateMethod   string            `yaml:"update_method"`
	TimeoutSeconds int               `yaml:"timeout_seconds"`
	Timeout        time.Duration     `yaml:"-"` // Ignored by YAML parser
	HTTPProxy      string            `yaml:"http_proxy"`
	Headers        map[string]string `yaml:"headers"`
}

// UIConfig holds the timings of the desk's surfaced messages and dialogs.
type UIConfig struct {
	AlertAutoHideMS    int           `yaml:"alert_auto_hide_ms"`
	AlertAutoHide      time.Duration `yaml:"-"`
	DialogCloseDelayMS int           `yaml:"dialog_close_delay_ms"`
	DialogCloseDelay   time.Duration `yaml:"-"`
	Timezone           string        `yaml:"timezone"`
}

// LoggingConfig selects the zap level, encoding and destination.
type LoggingConfig struct {
	Level  string `yaml:"level"`
	Format string `yaml:"format"`
	File   string `yaml:"file"`
}

// ServerConfig holds the dev backend's HTTP settings.
type ServerConfig struct {
	Port            int      `yaml:"port"`
	RateLimitPerSec float64  `yaml:"rate_limit_per_sec"`
	RateLimitBurst  int      `yaml:"rate_limit_burst"`
	CacheTTLSeconds int      `yaml:"cache_ttl_seconds"`
	CORSOrigins     []string `yaml:"cors_origins"`
}

// DatabaseConfig holds the database connection configuration.
type DatabaseConfig struct {
	DSN                    string `yaml:"dsn"`
	MaxOpenConns           int    `yaml:"max_open_conns"`
	MaxIdleConns           int    `yaml:"max_idle_conns"`
	ConnMaxLifetimeMinutes int    `yaml:"conn_max_lifetime_minutes"`
}

// MailerConfig controls the owner-email worker pool of the dev backend.
type MailerConfig struct {
	Enabled   bool   `yaml:"enabled"`
	From      string `yaml:"from"`
	PoolSize  int    `yaml:"pool_size"`
	QueueSize int    `yaml:"queue_size"`
}

// Default returns a configuration with every default applied.
func Default() *Config {
	var cfg Config
	cfg.applyDefaults()
	return &cfg
}

// Load reads the configuration from the given path.
func Load(path string) (*Config, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	var cfg Config
	decoder := yaml.NewDecoder(f)
	if err := decoder.Decode(&cfg); err != nil {
		return nil, err
	}

	cfg.applyDefaults()
	return &cfg, nil
}

func (cfg *Config) applyDefaults() {
	if cfg.API.BaseURL == "" {
		cfg.API.BaseURL = "http://localhost:8000"
	}
	cfg.API.BaseURL = strings.TrimRight(cfg.API.BaseURL, "/")
	if cfg.API.CreatePath == "" {
		cfg.API.CreatePath = "/prendas"
	}
	if cfg.API.SearchPath == "" {
		cfg.API.SearchPath = "/api/buscar"
	}
	if cfg.API.UpdatePath == "" {
		cfg.API.UpdatePath = "/api/prendas/{id}/estado"
	}
	cfg.API.UpdateMethod = strings.ToUpper(strings.TrimSpace(cfg.API.UpdateMethod))
	switch cfg.API.UpdateMethod {
	case "PATCH", "PUT":
	case "":
		cfg.API.UpdateMethod = "PATCH"
	default:
		log.Printf("api.update_method %q is not PATCH or PUT; defaulting to PATCH", cfg.API.UpdateMethod)
		cfg.API.UpdateMethod = "PATCH"
	}
	if cfg.API.TimeoutSeconds <= 0 {
		cfg.API.TimeoutSeconds = 30
	}
	cfg.API.Timeout = time.Duration(cfg.API.TimeoutSeconds) * time.Second

	if cfg.UI.AlertAutoHideMS <= 0 {
		cfg.UI.AlertAutoHideMS = 6000
	}
	cfg.UI.AlertAutoHide = time.Duration(cfg.UI.AlertAutoHideMS) * time.Millisecond
	if cfg.UI.DialogCloseDelayMS <= 0 {
		cfg.UI.DialogCloseDelayMS = 500
	}
	cfg.UI.DialogCloseDelay = time.Duration(cfg.UI.DialogCloseDelayMS) * time.Millisecond
	if cfg.UI.Timezone == "" {
		cfg.UI.Timezone = "America/Santiago"
	}

	if cfg.Logging.Level == "" {
		cfg.Logging.Level = "info"
	}
	if cfg.Logging.Format == "" {
		cfg.Logging.Format = "json"
	}

	if cfg.Server.Port <= 0 {
		cfg.Server.Port = 8000
	}
	if cfg.Server.RateLimitPerSec <= 0 {
		cfg.Server.RateLimitPerSec = 10
	}
	if cfg.Server.RateLimitBurst <= 0 {
		cfg.Server.RateLimitBurst = 5
	}
	if cfg.Server.CacheTTLSeconds <= 0 {
		cfg.Server.CacheTTLSeconds = 60
	}

	if cfg.Database.DSN == "" {
		cfg.Database.DSN = "file:prendas.db?cache=shared"
	}
	if cfg.Database.MaxOpenConns <= 0 {
		cfg.Database.MaxOpenConns = 10
	}
	if cfg.Database.MaxIdleConns <= 0 {
		cfg.Database.MaxIdleConns = 5
	}
	if cfg.Database.ConnMaxLifetimeMinutes <= 0 {
		cfg.Database.ConnMaxLifetimeMinutes = 30
	}

	if cfg.Mailer.From == "" {
		cfg.Mailer.From = "objetos-perdidos@localhost"
	}
	if cfg.Mailer.PoolSize <= 0 {
		cfg.Mailer.PoolSize = 1
	}
	if cfg.Mailer.QueueSize <= 0 {
		cfg.Mailer.QueueSize = 16
	}
}
