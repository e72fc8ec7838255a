package testutil

import (
	"context"
	"testing"

	"gorm.io/gorm"

	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
)

func SeedProject(tb testing.TB, ctx context.Context, tx *gorm.DB, name string) *types.Project {
	tb.Helper()
	p := &types.Project{Name: name}
	if err := tx.WithContext(ctx).Create(p).Error; err != nil {
		tb.Fatalf("seed project: %v", err)
	}
	return p
}

// SeedSubject creates a subject; response "" leaves it absent.
func SeedSubject(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, sex cytometry.Sex, condition, treatment, response string) *types.Subject {
	tb.Helper()
	s := &types.Subject{
		Name:      name,
		Condition: condition,
		Age:       60,
		Sex:       sex,
		Treatment: treatment,
	}
	if response != "" {
		r := cytometry.Response(response)
		s.Response = &r
	}
	if err := tx.WithContext(ctx).Create(s).Error; err != nil {
		tb.Fatalf("seed subject: %v", err)
	}
	return s
}

func SeedSample(tb testing.TB, ctx context.Context, tx *gorm.DB, name string, subjectID, projectID uint, sampleType string, time int) *types.Sample {
	tb.Helper()
	m := &types.Sample{
		Name:                   name,
		SubjectID:              subjectID,
		ProjectID:              projectID,
		Type:                   sampleType,
		TimeFromTreatmentStart: time,
		BCell:                  10,
		CD8TCell:               20,
		CD4TCell:               30,
		NKCell:                 25,
		Monocyte:               15,
	}
	if err := tx.WithContext(ctx).Omit("Subject", "Project").Create(m).Error; err != nil {
		tb.Fatalf("seed sample: %v", err)
	}
	if err := tx.WithContext(ctx).Model(&types.Project{}).Where("id = ?", projectID).
		UpdateColumn("num_samples", gorm.Expr("num_samples + 1")).Error; err != nil {
		tb.Fatalf("seed sample project count: %v", err)
	}
	return m
}
