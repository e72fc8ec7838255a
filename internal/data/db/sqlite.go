package db

import (
	"fmt"
	"strings"

	"gorm.io/driver/sqlite"
	"gorm.io/gorm"

	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

const sqliteParams = "_foreign_keys=1&_busy_timeout=5000"

// SQLiteDSN appends the connection parameters the store relies on.
func SQLiteDSN(path string) string {
	if strings.TrimSpace(path) == "" {
		path = "cytometry.db"
	}
	sep := "?"
	if strings.Contains(path, "?") {
		sep = "&"
	}
	return path + sep + sqliteParams
}

func NewSQLiteService(cfg Config, logg *logger.Logger) (*Service, error) {
	serviceLog := logg.With("service", "SQLiteService")

	db, err := gorm.Open(sqlite.Open(SQLiteDSN(cfg.SQLitePath)), gormConfig(cfg, serviceLog))
	if err != nil {
		return nil, fmt.Errorf("failed to open SQLite: %w", err)
	}
	sqlDB, err := db.DB()
	if err != nil {
		return nil, fmt.Errorf("sqlite handle: %w", err)
	}
	// SQLite serializes writers; one connection keeps transactions honest.
	sqlDB.SetMaxOpenConns(1)

	serviceLog.Info("Opened SQLite", "path", cfg.SQLitePath)

	return &Service{
		db:      db,
		driver:  DriverSQLite,
		log:     serviceLog,
		closeFn: sqlDB.Close,
	}, nil
}
