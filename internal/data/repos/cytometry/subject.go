package cytometry

import (
	"gorm.io/gorm"

	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

// SubjectFilter narrows subject listings. Empty or "Any" fields are ignored.
type SubjectFilter struct {
	Sex        string
	Response   string
	Treatment  string
	NamePrefix string
}

type SubjectRepo interface {
	Create(dbc dbctx.Context, subjects []*types.Subject) ([]*types.Subject, error)
	GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Subject, error)
	GetByID(dbc dbctx.Context, id uint) (*types.Subject, error)
	List(dbc dbctx.Context, filter SubjectFilter) ([]*types.Subject, error)
	ListMatching(dbc dbctx.Context, preds []types.Predicate) ([]*types.Subject, error)
	Search(dbc dbctx.Context, q string, limit int) ([]*types.Subject, error)
	Count(dbc dbctx.Context) (int64, error)
}

type subjectRepo struct {
	db  *gorm.DB
	log *logger.Logger
}

func NewSubjectRepo(db *gorm.DB, baseLog *logger.Logger) SubjectRepo {
	return &subjectRepo{
		db:  db,
		log: baseLog.With("repo", "SubjectRepo"),
	}
}

func (r *subjectRepo) Create(dbc dbctx.Context, subjects []*types.Subject) ([]*types.Subject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	if len(subjects) == 0 {
		return []*types.Subject{}, nil
	}
	if err := transaction.WithContext(dbc.Ctx).CreateInBatches(&subjects, createBatchSize).Error; err != nil {
		return nil, err
	}
	return subjects, nil
}

func (r *subjectRepo) GetByIDs(dbc dbctx.Context, ids []uint) ([]*types.Subject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Subject
	for _, chunk := range chunkIDs(ids, inChunkSize) {
		var rows []*types.Subject
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

func (r *subjectRepo) GetByID(dbc dbctx.Context, id uint) (*types.Subject, error) {
	rows, err := r.GetByIDs(dbc, []uint{id})
	if err != nil || len(rows) == 0 {
		return nil, err
	}
	return rows[0], nil
}

func (r *subjectRepo) List(dbc dbctx.Context, filter SubjectFilter) ([]*types.Subject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	q := transaction.WithContext(dbc.Ctx).Model(&types.Subject{})
	if filter.Sex != "" && filter.Sex != cytometry.Any {
		q = q.Where("sex = ?", filter.Sex)
	}
	if filter.Response != "" && filter.Response != cytometry.Any {
		q = q.Where("response = ?", filter.Response)
	}
	if filter.Treatment != "" && filter.Treatment != cytometry.Any {
		q = q.Where("treatment = ?", filter.Treatment)
	}
	if filter.NamePrefix != "" {
		q = q.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likePrefix(filter.NamePrefix))
	}
	var out []*types.Subject
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

// ListMatching returns every subject satisfying all predicates, by id.
func (r *subjectRepo) ListMatching(dbc dbctx.Context, preds []types.Predicate) ([]*types.Subject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Subject
	q := applyPredicates(transaction.WithContext(dbc.Ctx).Model(&types.Subject{}), preds)
	if err := q.Order("id ASC").Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subjectRepo) Search(dbc dbctx.Context, q string, limit int) ([]*types.Subject, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var out []*types.Subject
	query := transaction.WithContext(dbc.Ctx).Model(&types.Subject{})
	if q != "" {
		query = query.Where(`LOWER(name) LIKE ? ESCAPE '\'`, likeContains(q))
	}
	if err := query.Order("name ASC").Limit(searchLimit(limit)).Find(&out).Error; err != nil {
		return nil, err
	}
	return out, nil
}

func (r *subjectRepo) Count(dbc dbctx.Context) (int64, error) {
	transaction := dbc.Tx
	if transaction == nil {
		transaction = r.db
	}
	var n int64
	if err := transaction.WithContext(dbc.Ctx).Model(&types.Subject{}).Count(&n).Error; err != nil {
		return 0, err
	}
	return n, nil
}
