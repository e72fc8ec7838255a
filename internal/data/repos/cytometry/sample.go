package cytometry

import (
	"sort"

	"gorm.io/gorm"

	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

// SampleFilter narrows sample listings. Zero values are ignored.
type SampleFilter struct {
	ProjectID  uint
	SubjectID  uint
	Type       string
	NamePrefix string
}

type SampleRepo interface {
	Create(dbc dbctx.Context, samples []*types.Sample) ([]*types.Sample, error)
	GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Sample, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Sample, error)
	List(dbc dbctx.Context, filter SampleFilter) ([]*types.Sample, error)
	ListForSubjects(dbc dbctx.Context, subjectIDs []uint, preds []types.Predicate) ([]*types.Sample, error)
	DeleteByIDs(dbc dbctx.Context, ids []uint) (int64, error)
	DistinctTypes(dbc dbctx.Context, q string, limit int) ([]string, error)
	Count(dbc dbctx.Context) (int64, error)
}

type sampleRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSampleRepo(db *gorm.DB, baseLog *logger.Logger) SampleRepo {
	return &sampleRepo{
		db:  db,
		log: baseLog.With("repo", "SampleRepo"),
	}
}

func (r *sampleRepo) Create(dbc dbctx.Context, samples []*types.Sample) ([]*types.Sample, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(samples) == 0 {
		return []*types.Sample{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).
		Omit("Subject", "Project").
		CreateInBatches(&samples, createBatchSize).Error; err != nil {
		return nil, err
	}
	return samples, nil
}

func (r *sampleRepo) GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Sample, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Sample
	for _, chunk := range chunkIDs(ids, inChunkSize) {
		var rows []*types.Sample
		if err := transaction.WithContext(dbc.Ctx).
			Where("id IN ?", chunk).
			Order("id ASC").
			Find(&rows).Error; err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	return out, nil
}

func (r *sampleRepo) GetByID(dbc dbctx.Context, id uint) (*types.Sample, error) {
	rows, err := r.GetByIDs(dbc, []uint{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *sampleRepo) List(dbc dbctx.Context, filter SampleFilter) ([]*types.Sample, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Sample{})
	if filter.ProjectID != 0 {
		q = q.Where("project_id = ?", filter.ProjectID)
	}
	if filter.SubjectID != 0 {
		q = q.Where("subject_id = ?", filter.SubjectID)
	}
	if filter.Type != "" {
		q = q.Where("type = ?", filter.Type)
	}
	if filter.NamePrefix != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePrefix(filter.NamePrefix))
	}
	var out []*types.Sample
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListForSubjects returns samples owned by any of subjectIDs that also satisfy
// preds. The id list is queried in chunks to stay under bind-parameter limits.
func (r *sampleRepo) ListForSubjects(dbc dbctx.Context, subjectIDs []uint, preds []types.Predicate) ([]*types.Sample, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	out := []*types.Sample{}
	for _, chunk := range chunkIDs(subjectIDs, inChunkSize) {
		var rows []*types.Sample
		q := transaction.WithContext(dbc.Ctx).Model(&types.Sample{}).Where("subject_id IN ?", chunk)
		if err := applyPredicates(q, preds).Find(&rows).Error; err != nil {
			return nil, err
		}
		out = append(out, rows...)
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID < out[j].ID })
	return out, nil
}

func (r *sampleRepo) DeleteByIDs(dbc dbctx.Context, ids []uint) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(ids) == 0 {
		return 0, nil
	}
	res := transaction.WithContext(dbc.Ctx).Where("id IN ?", ids).Delete(&types.Sample{})
	if res.Error != nil {
		return 0, res.Error
	}
	return res.RowsAffected, nil
}

func (r *sampleRepo) DistinctTypes(dbc dbctx.Context, q string, limit int) ([]string, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	query := transaction.WithContext(dbc.Ctx).Model(&types.Sample{}).Distinct("type")
	if q != "" {
		query = query.Where(`LOWER(type) LIKE ? ESCAPE '\'`, likeContains(q))
	}
	var out []string
	if err := query.Order("type ASC").Limit(searchLimit(limit)).Pluck("type", &out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *sampleRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).Model(&types.Sample{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
