package services

import (
	"context"
	"strings"

	"gorm.io/gorm"

	"github.com/adknaupp/cytometry-manager/internal/data/db"
	"github.com/adknaupp/cytometry-manager/internal/data/repos"
	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

type SampleInput struct {
	Name                   string `json:"name" validate:"required,max=255"`
	SubjectID              uint   `json:"subject_id" validate:"required"`
	ProjectID              uint   `json:"project_id" validate:"required"`
	Type                   string `json:"sample_type" validate:"required,max=64"`
	TimeFromTreatmentStart int    `json:"time_from_treatment_start" validate:"gte=0"`
	BCell                  int    `json:"b_cell" validate:"gte=0"`
	CD8TCell               int    `json:"cd8_t_cell" validate:"gte=0"`
	CD4TCell               int    `json:"cd4_t_cell" validate:"gte=0"`
	NKCell                 int    `json:"nk_cell" validate:"gte=0"`
	Monocyte               int    `json:"monocyte" validate:"gte=0"`
}

type SampleService interface {
	Add(ctx context.Context, in SampleInput) (*types.Sample, error)
	Get(dbc dbctx.Context, id uint) (*types.Sample, error)
	List(dbc dbctx.Context, filter repos.SampleFilter) ([]*types.Sample, error)
	Delete(ctx context.Context, id uint) error
}

type sampleService struct {
	tx       db.TxRunner
	log      *logger.Logger
	lock     IngestLock
	samples  repos.SampleRepo
	subjects repos.SubjectRepo
	projects repos.ProjectRepo
}

func NewSampleService(
	gdb *gorm.DB,
	log *logger.Logger,
	lock IngestLock,
	samples repos.SampleRepo,
	subjects repos.SubjectRepo,
	projects repos.ProjectRepo,
) SampleService {
	return &sampleService{
		tx:       db.NewGormTxRunner(gdb),
		log:      log.With("service", "SampleService"),
		lock:     lock,
		samples:  samples,
		subjects: subjects,
		projects: projects,
	}
}

// Add creates a sample under an existing subject and project and keeps the
// project's sample count in step.
func (s *sampleService) Add(ctx context.Context, in SampleInput) (*types.Sample, error) {
	const op = "AddSample"
	in.Name = strings.TrimSpace(in.Name)
	in.Type = strings.TrimSpace(in.Type)
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	if err := guardWrites(ctx, s.lock, op); err != nil {
		return nil, err
	}

	sample := &types.Sample{
		Name:                   in.Name,
		SubjectID:              in.SubjectID,
		ProjectID:              in.ProjectID,
		Type:                   in.Type,
		TimeFromTreatmentStart: in.TimeFromTreatmentStart,
		BCell:                  in.BCell,
		CD8TCell:               in.CD8TCell,
		CD4TCell:               in.CD4TCell,
		NKCell:                 in.NKCell,
		Monocyte:               in.Monocyte,
	}
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		subj, err := s.subjects.GetByID(dbc, in.SubjectID)
		if err != nil {
			return db.MapError(op, err)
		}
		if subj == nil {
			return cytometry.Validationf(op, "subject %d does not exist", in.SubjectID)
		}
		proj, err := s.projects.GetByID(dbc, in.ProjectID)
		if err != nil {
			return db.MapError(op, err)
		}
		if proj == nil {
			return cytometry.Validationf(op, "project %d does not exist", in.ProjectID)
		}
		if _, err := s.samples.Create(dbc, []*types.Sample{sample}); err != nil {
			return db.MapError(op, err)
		}
		return db.MapError(op, s.projects.AdjustSampleCount(dbc, in.ProjectID, 1))
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("sample added", "sample_id", sample.ID, "subject_id", sample.SubjectID, "project_id", sample.ProjectID)
	return sample, nil
}

func (s *sampleService) Get(dbc dbctx.Context, id uint) (*types.Sample, error) {
	m, err := s.samples.GetByID(dbc, id)
	if err != nil {
		return nil, db.MapError("GetSample", err)
	}
	if m == nil {
		return nil, cytometry.NotFound("GetSample", "sample", id)
	}
	return m, nil
}

func (s *sampleService) List(dbc dbctx.Context, filter repos.SampleFilter) ([]*types.Sample, error) {
	out, err := s.samples.List(dbc, filter)
	if err != nil {
		return nil, db.MapError("ListSamples", err)
	}
	return out, nil
}

func (s *sampleService) Delete(ctx context.Context, id uint) error {
	const op = "DeleteSample"
	if err := guardWrites(ctx, s.lock, op); err != nil {
		return err
	}
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		m, err := s.samples.GetByID(dbc, id)
		if err != nil {
			return db.MapError(op, err)
		}
		if m == nil {
			return cytometry.NotFound(op, "sample", id)
		}
		if _, err := s.samples.DeleteByIDs(dbc, []uint{id}); err != nil {
			return db.MapError(op, err)
		}
		return db.MapError(op, s.projects.AdjustSampleCount(dbc, m.ProjectID, -1))
	})
	if err != nil {
		return err
	}
	s.log.Info("sample deleted", "sample_id", id)
	return nil
}
