package cytometry

import (
	"gorm.io/gorm"

	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

type DatasetRepo interface {
	Create(dbc dbctx.Context, datasets []*types.Dataset) ([]*types.Dataset, error)
	GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Dataset, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Dataset, error)
	List(dbc dbctx.Context) ([]*types.Dataset, error)
}

type datasetRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewDatasetRepo(db *gorm.DB, baseLog *logger.Logger) DatasetRepo {
	return &datasetRepo{
		db:  db,
		log: baseLog.With("repo", "DatasetRepo"),
	}
}

func (r *datasetRepo) Create(dbc dbctx.Context, datasets []*types.Dataset) ([]*types.Dataset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(datasets) == 0 {
		return []*types.Dataset{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&datasets).Error; err != nil {
		return nil, err
	}
	return datasets, nil
}

func (r *datasetRepo) GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Dataset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Dataset
	if len(ids) == 0 {
		return out, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Where("id IN ?", ids).
		Order("id ASC").
		Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *datasetRepo) GetByID(dbc dbctx.Context, id uint) (*types.Dataset, error) {
	rows, err := r.GetByIDs(dbc, []uint{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *datasetRepo) List(dbc dbctx.Context) ([]*types.Dataset, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Dataset
	if err := transaction.WithContext(dbc.Ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}
