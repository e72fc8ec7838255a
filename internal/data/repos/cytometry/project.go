package cytometry

import (
	"gorm.io/gorm"

	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

type ProjectRepo interface {
	Create(dbc dbctx.Context, projects []*types.Project) ([]*types.Project, error)
	GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Project, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Project, error)
	List(dbc dbctx.Context) ([]*types.Project, error)
	Search(dbc dbctx.Context, q string, limit int) ([]*types.Project, error)
	AdjustSampleCount(dbc dbctx.Context, id uint, delta int) error
	Count(dbc dbctx.Context) (int64, error)
}

type projectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return &projectRepo{
		db:  db,
		log: baseLog.With("repo", "ProjectRepo"),
	}
}

func (r *projectRepo) Create(dbc dbctx.Context, projects []*types.Project) ([]*types.Project, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(projects) == 0 {
		return []*types.Project{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).CreateInBatches(&projects, createBatchSize).Error; err != nil {
		return nil, err
	}
	return projects, nil
}

func (r *projectRepo) GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Project, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Project
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

func (r *projectRepo) GetByID(dbc dbctx.Context, id uint) (*types.Project, error) {
	rows, err := r.GetByIDs(dbc, []uint{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *projectRepo) List(dbc dbctx.Context) ([]*types.Project, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Project
	if err := transaction.WithContext(dbc.Ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) Search(dbc dbctx.Context, q string, limit int) ([]*types.Project, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Project
	query := transaction.WithContext(dbc.Ctx).Model(&types.Project{})
	if q != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likeContains(q))
	}
	if err := query.Order("name ASC").Limit(searchLimit(limit)).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *projectRepo) AdjustSampleCount(dbc dbctx.Context, id uint, delta int) error {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if delta == 0 {
		return nil
	}
	return transaction.WithContext(dbc.Ctx).
		Model(&types.Project{}).
		Where("id = ?", id).
		UpdateColumn("num_samples", gorm.Expr("num_samples + ?", delta)).Error
}

func (r *projectRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).Model(&types.Project{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
