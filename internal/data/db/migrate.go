package db

import (
	"fmt"

	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"gorm.io/gorm"
)

func AutoMigrateAll(db *gorm.DB) error {
	return db.AutoMigrate(types.Models()...)
}

// EnsureCytometryIndexes adds the composite indexes resolution scans use.
func EnsureCytometryIndexes(db *gorm.DB) error {
	stmts := []struct {
		name string
		sql  string
	}{
		{"idx_subject_criteria", `CREATE INDEX IF NOT EXISTS idx_subject_criteria ON subject(condition, sex, treatment);`},
		{"idx_sample_subject_type_time", `CREATE INDEX IF NOT EXISTS idx_sample_subject_type_time ON sample(subject_id, type, time_from_treatment_start);`},
		{"idx_ingest_run_started_at", `CREATE INDEX IF NOT EXISTS idx_ingest_run_started_at ON ingest_run(started_at DESC);`},
	}
	for _, s := range stmts {
		if err := db.Exec(s.sql).Error; err != nil {
			return fmt.Errorf("create %s: %w", s.name, err)
		}
	}
	return nil
}

// Migrate runs schema migration and index creation.
func Migrate(db *gorm.DB) error {
	if err := AutoMigrateAll(db); err != nil {
		return fmt.Errorf("auto migrate: %w", err)
	}
	return EnsureCytometryIndexes(db)
}
