package config

import (
	"strings"
	"time"

	"github.com/rotisserie/eris"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// Config holds the full application configuration.
type Config struct {
	WFS      WFSConfig      `yaml:"wfs" mapstructure:"wfs"`
	Fetch    FetchConfig    `yaml:"fetch" mapstructure:"fetch"`
	Profile  ProfileConfig  `yaml:"profile" mapstructure:"profile"`
	Snapshot SnapshotConfig `yaml:"snapshot" mapstructure:"snapshot"`
	DB       DBConfig       `yaml:"db" mapstructure:"db"`
	Export   ExportConfig   `yaml:"export" mapstructure:"export"`
	Server   ServerConfig   `yaml:"server" mapstructure:"server"`
	Log      LogConfig      `yaml:"log" mapstructure:"log"`
}

// WFSConfig configures the feature service the registry is built from.
type WFSConfig struct {
	URL         string  `yaml:"url" mapstructure:"url"`
	Version     string  `yaml:"version" mapstructure:"version"`
	FeatureType string  `yaml:"feature_type" mapstructure:"feature_type"`
	TimeoutSecs int     `yaml:"timeout_secs" mapstructure:"timeout_secs"`
	RatePerSec  float64 `yaml:"rate_per_sec" mapstructure:"rate_per_sec"`
	RateBurst   int     `yaml:"rate_burst" mapstructure:"rate_burst"`
	MaxFeatures int     `yaml:"max_features" mapstructure:"max_features"`
}

// Timeout returns the request timeout as a duration.
func (w WFSConfig) Timeout() time.Duration {
	return time.Duration(w.TimeoutSecs) * time.Second
}

// FetchConfig configures dump retrieval.
type FetchConfig struct {
	Concurrency int    `yaml:"concurrency" mapstructure:"concurrency"`
	TempDir     string `yaml:"temp_dir" mapstructure:"temp_dir"`
}

// ProfileConfig points at an optional field-profile YAML file. Empty means
// the built-in HSY building layer profile.
type ProfileConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
}

// SnapshotConfig configures the snapshot archive.
type SnapshotConfig struct {
	Path string `yaml:"path" mapstructure:"path"`
	Keep int    `yaml:"keep" mapstructure:"keep"`
}

// DBConfig configures the PostgreSQL export target.
type DBConfig struct {
	DatabaseURL string `yaml:"database_url" mapstructure:"database_url"`
}

// ExportConfig configures record export.
type ExportConfig struct {
	Table string `yaml:"table" mapstructure:"table"`
	SRID  int    `yaml:"srid" mapstructure:"srid"`
}

// ServerConfig configures the REST read surface.
type ServerConfig struct {
	Port    int      `yaml:"port" mapstructure:"port"`
	Origins []string `yaml:"origins" mapstructure:"origins"`
}

// LogConfig configures logging.
type LogConfig struct {
	Level  string `yaml:"level" mapstructure:"level"`
	Format string `yaml:"format" mapstructure:"format"`
}

// Load reads configuration from file and environment.
func Load() (*Config, error) {
	v := viper.New()

	// Config file
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")

	// Environment
	v.SetEnvPrefix("RAKENNUS")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Defaults
	v.SetDefault("wfs.url", "https://kartta.hsy.fi/geoserver/wfs")
	v.SetDefault("wfs.version", "1.1.0")
	v.SetDefault("wfs.feature_type", "asuminen_ja_maankaytto:pks_rakennukset_paivittyva")
	v.SetDefault("wfs.timeout_secs", 300)
	v.SetDefault("wfs.rate_per_sec", 1.0)
	v.SetDefault("wfs.rate_burst", 1)
	v.SetDefault("wfs.max_features", 0)
	v.SetDefault("fetch.concurrency", 3)
	v.SetDefault("fetch.temp_dir", "/tmp/rakennus")
	v.SetDefault("snapshot.path", "rakennus.db")
	v.SetDefault("snapshot.keep", 10)
	v.SetDefault("export.table", "rakennukset")
	v.SetDefault("export.srid", 3879)
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.origins", []string{"*"})
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "json")

	// Read config file (optional)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, eris.Wrap(err, "config: read file")
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, eris.Wrap(err, "config: unmarshal")
	}

	return &cfg, nil
}

// Validate checks the settings a command mode depends on. Modes: "fetch",
// "export-pg", "serve".
func (c *Config) Validate(mode string) error {
	var problems []string

	if c.Fetch.Concurrency < 1 || c.Fetch.Concurrency > 16 {
		problems = append(problems, "fetch.concurrency must be between 1 and 16")
	}

	switch mode {
	case "fetch":
		if c.WFS.URL == "" {
			problems = append(problems, "wfs.url is required")
		}
		if c.WFS.FeatureType == "" {
			problems = append(problems, "wfs.feature_type is required")
		}
	case "export-pg":
		if c.DB.DatabaseURL == "" {
			problems = append(problems, "db.database_url is required")
		}
		if c.Export.Table == "" {
			problems = append(problems, "export.table is required")
		}
	case "serve":
		if c.Server.Port <= 0 || c.Server.Port > 65535 {
			problems = append(problems, "server.port must be > 0")
		}
	default:
		return eris.Errorf("config: unknown mode %q", mode)
	}

	if len(problems) > 0 {
		return eris.Errorf("config: %s", strings.Join(problems, "; "))
	}
	return nil
}

// InitLogger initializes the global zap logger.
func InitLogger(cfg LogConfig) error {
	var zapCfg zap.Config
	if cfg.Format == "console" {
		zapCfg = zap.NewDevelopmentConfig()
	} else {
		zapCfg = zap.NewProductionConfig()
	}

	level, err := zapcore.ParseLevel(cfg.Level)
	if err != nil {
		return eris.Wrap(err, "config: parse log level")
	}
	zapCfg.Level.SetLevel(level)

	logger, err := zapCfg.Build()
	if err != nil {
		return eris.Wrap(err, "config: build logger")
	}
	zap.ReplaceGlobals(logger)

	return nil
}
