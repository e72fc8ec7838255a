package cytometry

import (
	"github.com/google/uuid"
	"gorm.io/gorm"

	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

type IngestRunRepo interface {
	Create(dbc dbctx.Context, runs []*types.IngestRun) ([]*types.IngestRun, error)
	GetByID(dbc dbctx.Context, id uuid.UUID) (*types.IngestRun, error)
	UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error
	ListRecent(dbc dbctx.Context, limit int) ([]*types.IngestRun, error)
}

type ingestRunRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewIngestRunRepo(db *gorm.DB, baseLog *logger.Logger) IngestRunRepo {
	return &ingestRunRepo{
		db:  db,
		log: baseLog.With("repo", "IngestRunRepo"),
	}
}

func (r *ingestRunRepo) Create(dbc dbctx.Context, runs []*types.IngestRun) ([]*types.IngestRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(runs) == 0 {
		return []*types.IngestRun{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&runs).Error; err != nil {
		return nil, err
	}
	return runs, nil
}

func (r *ingestRunRepo) GetByID(dbc dbctx.Context, id uuid.UUID) (*types.IngestRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil {
		return nil, nil
	}
	var run types.IngestRun
	if err := transaction.WithContext(dbc.Ctx).
		Where("id = ?", id).
		Limit(1).
		Find(&run).Error; err != nil {
		return nil, err
	}
	if run.ID == uuid.Nil {
		return nil, nil
	}
	return &run, nil
}

func (r *ingestRunRepo) UpdateFields(dbc dbctx.Context, id uuid.UUID, updates map[string]interface{}) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if id == uuid.Nil || len(updates) == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.IngestRun{}).
		Where("id = ?", id).
		Updates(updates).Error
}

func (r *ingestRunRepo) ListRecent(dbc dbctx.Context, limit int) ([]*types.IngestRun, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if limit <= 0 {
		limit = 20
	}
	var out []*types.IngestRun
	if err := transaction.WithContext(dbc.Ctx).
		Order("started_at DESC").
		Limit(limit).
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
