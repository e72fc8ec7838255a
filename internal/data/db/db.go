package db

import (
	"context"
	"fmt"
	"strings"
	"time"

	"gorm.io/gorm"
	gormLogger "gorm.io/gorm/logger"

	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// Config selects and parameterizes the entity store.
type Config struct {
	Driver string `yaml:"driver"`

	SQLitePath string `yaml:"sqlite_path"`

	PostgresHost     string `yaml:"postgres_host"`
	PostgresPort     string `yaml:"postgres_port"`
	PostgresUser     string `yaml:"postgres_user"`
	PostgresPassword string `yaml:"postgres_password"`
	PostgresName     string `yaml:"postgres_name"`
	PostgresSSLMode  string `yaml:"postgres_sslmode"`
	PostgresMaxConns int32  `yaml:"postgres_max_conns"`

	SlowQuery time.Duration `yaml:"slow_query"`
}

func (c Config) PostgresDSN() string {
	sslmode := c.PostgresSSLMode
	if sslmode == "" {
		sslmode = "disable"
	}
	return fmt.Sprintf(
		"postgres://%s:%s@%s:%s/%s?sslmode=%s",
		c.PostgresUser,
		c.PostgresPassword,
		c.PostgresHost,
		c.PostgresPort,
		c.PostgresName,
		sslmode,
	)
}

// Service owns the gorm handle and the dialect-specific transaction options.
type Service struct {
	db      *gorm.DB
	driver  string
	closeFn func() error
	log     *logger.Logger
}

// Open connects to the configured store.
func Open(ctx context.Context, cfg Config, log *logger.Logger) (*Service, error) {
	switch strings.ToLower(strings.TrimSpace(cfg.Driver)) {
	case DriverPostgres:
		return NewPostgresService(ctx, cfg, log)
	case DriverSQLite, "":
		return NewSQLiteService(cfg, log)
	default:
		return nil, fmt.Errorf("unknown DB_DRIVER %q", cfg.Driver)
	}
}

func (s *Service) DB() *gorm.DB    { return s.db }
func (s *Service) Driver() string { return s.driver }

func (s *Service) Close() error {
	if s == nil || s.closeFn == nil {
		return nil
	}
	return s.closeFn()
}

// Ping checks the underlying connection.
func (s *Service) Ping(ctx context.Context) error {
	sqlDB, err := s.db.DB()
	if err != nil {
		return err
	}
	return sqlDB.PingContext(ctx)
}

func gormConfig(cfg Config, log *logger.Logger) *gorm.Config {
	slow := cfg.SlowQuery
	if slow <= 0 {
		slow = time.Second
	}
	return &gorm.Config{
		Logger: gormLogger.New(
			zapWriter{log: log},
			gormLogger.Config{
				SlowThreshold:             slow,
				LogLevel:                  gormLogger.Warn,
				IgnoreRecordNotFoundError: true,
				Colorful:                  false,
			},
		),
	}
}

// zapWriter routes gorm's printf-style logger into zap.
type zapWriter struct {
	log *logger.Logger
}

func (w zapWriter) Printf(format string, args ...interface{}) {
	if w.log == nil {
		return
	}
	w.log.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)), "component", "gorm")
}
