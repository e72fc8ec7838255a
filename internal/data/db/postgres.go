package db

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jackc/pgx/v5/stdlib"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"

	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

// NewPostgresService opens a pgx pool and hands it to gorm.
func NewPostgresService(ctx context.Context, cfg Config, logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "PostgresService")

	poolCfg, err := pgxpool.ParseConfig(cfg.PostgresDSN())
	if err != nil {
		return nil, fmt.Errorf("parse postgres config: %w", err)
	}
	if cfg.PostgresMaxConns > 0 {
		poolCfg.MaxConns = cfg.PostgresMaxConns
	}
	pool, err := pgxpool.NewWithConfig(ctx, poolCfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create pgx pool: %w", err)
	}
	sqlDB := stdlib.OpenDBFromPool(pool)

	db, err := gorm.Open(postgres.New(postgres.Config{Conn: sqlDB}), gormConfig(cfg, serviceLog))
	if err != nil {
		_ = sqlDB.Close()
		pool.Close()
		return nil, fmt.Errorf("failed to connect to Postgres: %w", err)
	}

	serviceLog.Info("Connected to Postgres",
		"host", cfg.PostgresHost,
		"database", cfg.PostgresName,
		"max_conns", poolCfg.MaxConns,
	)

	return &Service{
		db:     db,
		driver: DriverPostgres,
		log:    serviceLog,
		closeFn: func() error {
			err := sqlDB.Close()
			pool.Close()
			return err
		},
	}, nil
}
