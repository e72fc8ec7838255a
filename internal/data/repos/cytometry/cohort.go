package cytometry

import (
	"gorm.io/gorm"

	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

type CohortRepo interface {
	Create(dbc dbctx.Context, cohorts []*types.Cohort) ([]*types.Cohort, error)
	GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Cohort, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Cohort, error)
	List(dbc dbctx.Context) ([]*types.Cohort, error)
	Search(dbc dbctx.Context, q string, limit int) ([]*types.Cohort, error)
	DeleteByIDs(dbc dbctx.Context, ids []uint) (int64, error)
}

type cohortRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewCohortRepo(db *gorm.DB, baseLog *logger.Logger) CohortRepo {
	return &cohortRepo{
		db:  db,
		log: baseLog.With("repo", "CohortRepo"),
	}
}

func (r *cohortRepo) Create(dbc dbctx.Context, cohorts []*types.Cohort) ([]*types.Cohort, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(cohorts) == 0 {
		return []*types.Cohort{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).Create(&cohorts).Error; err != nil {
		return nil, err
	}
	return cohorts, nil
}

func (r *cohortRepo) GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Cohort, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Cohort
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

func (r *cohortRepo) GetByID(dbc dbctx.Context, id uint) (*types.Cohort, error) {
	rows, err := r.GetByIDs(dbc, []uint{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *cohortRepo) List(dbc dbctx.Context) ([]*types.Cohort, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Cohort
	if err := transaction.WithContext(dbc.Ctx).Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *cohortRepo) Search(dbc dbctx.Context, q string, limit int) ([]*types.Cohort, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Cohort
	query := transaction.WithContext(dbc.Ctx).Model(&types.Cohort{})
	if q != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likeContains(q))
	}
	if err := query.Order("name ASC").Limit(searchLimit(limit)).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// DeleteByIDs removes cohorts without touching datasets that reference them.
// Such datasets fail to resolve afterwards.
func (r *cohortRepo) DeleteByIDs(dbc dbctx.Context, ids []uint) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&types.Cohort{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}
