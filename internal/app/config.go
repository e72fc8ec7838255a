package app

import (
	"fmt"
	"os"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/adknaupp/cytometry-manager/internal/data/db"
	"github.com/adknaupp/cytometry-manager/internal/observability"
	"github.com/adknaupp/cytometry-manager/internal/platform/envutil"
)

// ConfigFileEnv names the optional YAML file overlaid on the environment.
const ConfigFileEnv = "CYTOMETRY_CONFIG"

type Config struct {
	LogMode string `yaml:"log_mode"`
	Port    string `yaml:"port"`

	DB          db.Config `yaml:"db"`
	AutoMigrate bool      `yaml:"auto_migrate"`

	RedisAddr     string        `yaml:"redis_addr"`
	IngestLockTTL time.Duration `yaml:"ingest_lock_ttl"`

	// GCSEnabled allows gs://bucket/object ingestion sources.
	GCSEnabled bool `yaml:"gcs_enabled"`

	// DatasetLegacyZeroTime stores a submitted time of 0 as "no filter".
	DatasetLegacyZeroTime bool `yaml:"dataset_legacy_zero_time"`

	MetricsEnabled  bool          `yaml:"metrics_enabled"`
	CORSOrigins     []string      `yaml:"cors_origins"`
	ShutdownTimeout time.Duration `yaml:"shutdown_timeout"`

	Otel        observability.OtelConfig        `yaml:"otel"`
	DataQuality observability.DataQualityConfig `yaml:"data_quality"`
}

// LoadConfig reads the environment, then overlays the YAML file named by
// CYTOMETRY_CONFIG when set. Keys present in the file win.
func LoadConfig() (Config, error) {
	cfg := configFromEnv()
	if path := strings.TrimSpace(os.Getenv(ConfigFileEnv)); path != "" {
		if err := overlayFile(&cfg, path); err != nil {
			return Config{}, err
		}
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

func configFromEnv() Config {
	return Config{
		LogMode: envutil.String("LOG_MODE", "development"),
		Port:    envutil.String("PORT", "8080"),
		DB: db.Config{
			Driver:           envutil.String("DB_DRIVER", db.DriverSQLite),
			SQLitePath:       envutil.String("SQLITE_PATH", "cytometry.db"),
			PostgresHost:     envutil.String("POSTGRES_HOST", "localhost"),
			PostgresPort:     envutil.String("POSTGRES_PORT", "5432"),
			PostgresUser:     envutil.String("POSTGRES_USER", "postgres"),
			PostgresPassword: envutil.String("POSTGRES_PASSWORD", ""),
			PostgresName:     envutil.String("POSTGRES_NAME", "cytometry"),
			PostgresSSLMode:  envutil.String("POSTGRES_SSLMODE", "disable"),
			PostgresMaxConns: int32(envutil.Int("POSTGRES_MAX_CONNS", 10)),
			SlowQuery:        envutil.Duration("DB_SLOW_QUERY", 500*time.Millisecond),
		},
		AutoMigrate:           envutil.Bool("DB_AUTO_MIGRATE", true),
		RedisAddr:             envutil.String("REDIS_ADDR", ""),
		IngestLockTTL:         envutil.Duration("INGEST_LOCK_TTL", 10*time.Minute),
		GCSEnabled:            envutil.Bool("GCS_ENABLED", false),
		DatasetLegacyZeroTime: envutil.Bool("DATASET_LEGACY_ZERO_TIME", false),
		MetricsEnabled:        envutil.Bool("METRICS_ENABLED", false),
		CORSOrigins:           splitList(envutil.String("CORS_ALLOWED_ORIGINS", "")),
		ShutdownTimeout:       envutil.Duration("SHUTDOWN_TIMEOUT", 15*time.Second),
		Otel: observability.OtelConfig{
			Enabled:     envutil.Bool("OTEL_ENABLED", false),
			ServiceName: envutil.String("OTEL_SERVICE_NAME", observability.DefaultServiceName),
			Environment: envutil.String("OTEL_ENVIRONMENT", envutil.String("LOG_MODE", "development")),
			Version:     envutil.String("OTEL_SERVICE_VERSION", ""),
			Endpoint:    envutil.String("OTEL_EXPORTER_OTLP_ENDPOINT", ""),
			Headers:     observability.ParseHeaders(envutil.String("OTEL_EXPORTER_OTLP_HEADERS", "")),
			Insecure:    envutil.Bool("OTEL_EXPORTER_OTLP_INSECURE", false),
			SampleRatio: envutil.Float("OTEL_SAMPLER_RATIO", 0.1),
		},
		DataQuality: observability.DataQualityConfig{
			WebhookURL:  envutil.String("DATA_QUALITY_ALERT_WEBHOOK_URL", ""),
			MinInterval: envutil.Duration("DATA_QUALITY_ALERT_MIN_INTERVAL", 5*time.Minute),
		},
	}
}

func overlayFile(cfg *Config, path string) error {
	raw, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read %s: %w", ConfigFileEnv, err)
	}
	if err := yaml.Unmarshal(raw, cfg); err != nil {
		return fmt.Errorf("parse %s: %w", path, err)
	}
	return nil
}

func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.DB.Driver)) {
	case db.DriverPostgres:
		if c.DB.PostgresHost == "" || c.DB.PostgresName == "" {
			return fmt.Errorf("postgres driver requires POSTGRES_HOST and POSTGRES_NAME")
		}
	case db.DriverSQLite:
		if c.DB.SQLitePath == "" {
			return fmt.Errorf("sqlite driver requires SQLITE_PATH")
		}
	default:
		return fmt.Errorf("unknown DB_DRIVER %q (want postgres or sqlite)", c.DB.Driver)
	}
	if strings.TrimSpace(c.Port) == "" {
		return fmt.Errorf("PORT is required")
	}
	return nil
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if p := strings.TrimSpace(part); p != "" {
			out = append(out, p)
		}
	}
	return out
}
