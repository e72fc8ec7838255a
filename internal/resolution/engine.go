// Package resolution computes cohort and dataset membership from the current
// contents of the entity store. Nothing is cached: every call re-reads.
package resolution

import (
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"
	"gorm.io/gorm"

	"github.com/adknaupp/cytometry-manager/internal/data/db"
	"github.com/adknaupp/cytometry-manager/internal/data/repos"
	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/observability"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

const (
	kindCohort  = "cohort"
	kindDataset = "dataset"
)

// DatasetResolution is a resolved dataset together with the cohort stage
// that produced it.
type DatasetResolution struct {
	Dataset  *types.Dataset
	Cohort   *types.Cohort
	Subjects map[uint]*types.Subject
	Samples  []*types.Sample
}

type Engine struct {
	tx       db.TxRunner
	log      *logger.Logger
	metrics  *observability.Metrics
	subjects repos.SubjectRepo
	samples  repos.SampleRepo
	cohorts  repos.CohortRepo
	datasets repos.DatasetRepo
}

func NewEngine(
	gdb *gorm.DB,
	baseLog *logger.Logger,
	metrics *observability.Metrics,
	subjects repos.SubjectRepo,
	samples repos.SampleRepo,
	cohorts repos.CohortRepo,
	datasets repos.DatasetRepo,
) *Engine {
	return &Engine{
		tx:       db.NewGormTxRunner(gdb),
		log:      baseLog.With("component", "ResolutionEngine"),
		metrics:  metrics,
		subjects: subjects,
		samples:  samples,
		cohorts:  cohorts,
		datasets: datasets,
	}
}

// ResolveCohort returns the subjects matching a stored cohort, by id.
func (e *Engine) ResolveCohort(dbc dbctx.Context, cohortID uint) ([]*types.Subject, error) {
	const op = "ResolveCohort"
	start := time.Now()
	ctx, span := observability.Tracer().Start(dbc.Context(), "resolution.ResolveCohort")
	defer span.End()
	span.SetAttributes(attribute.Int64("cohort.id", int64(cohortID)))
	dbc.Ctx = ctx

	var out []*types.Subject
	err := e.read(dbc, func(dbc dbctx.Context) error {
		cohort, err := e.cohorts.GetByID(dbc, cohortID)
		if err != nil {
			return db.MapError(op, err)
		}
		if cohort == nil {
			return cytometry.NotFound(op, "cohort", cohortID)
		}
		out, err = e.CohortSubjects(dbc, cohort)
		return err
	})
	e.finish(span, kindCohort, len(out), start, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// ResolveDataset returns the samples of a stored dataset, by id.
func (e *Engine) ResolveDataset(dbc dbctx.Context, datasetID uint) ([]*types.Sample, error) {
	res, err := e.ResolveDatasetDetail(dbc, datasetID)
	if err != nil {
		return nil, err
	}
	return res.Samples, nil
}

// ResolveDatasetDetail resolves a dataset and keeps the intermediate cohort
// stage for callers that need subject attributes.
func (e *Engine) ResolveDatasetDetail(dbc dbctx.Context, datasetID uint) (*DatasetResolution, error) {
	const op = "ResolveDataset"
	start := time.Now()
	ctx, span := observability.Tracer().Start(dbc.Context(), "resolution.ResolveDataset")
	defer span.End()
	span.SetAttributes(attribute.Int64("dataset.id", int64(datasetID)))
	dbc.Ctx = ctx

	var out *DatasetResolution
	err := e.read(dbc, func(dbc dbctx.Context) error {
		ds, err := e.datasets.GetByID(dbc, datasetID)
		if err != nil {
			return db.MapError(op, err)
		}
		if ds == nil {
			return cytometry.NotFound(op, "dataset", datasetID)
		}
		out, err = e.DatasetMembers(dbc, ds)
		return err
	})
	members := 0
	if out != nil {
		members = len(out.Samples)
	}
	e.finish(span, kindDataset, members, start, err)
	if err != nil {
		return nil, err
	}
	return out, nil
}

// CohortSubjects evaluates a loaded cohort's criteria.
func (e *Engine) CohortSubjects(dbc dbctx.Context, cohort *types.Cohort) ([]*types.Subject, error) {
	subjects, err := e.subjects.ListMatching(dbc, cohort.Criteria().Predicates())
	if err != nil {
		return nil, db.MapError("CohortSubjects", err)
	}
	return subjects, nil
}

// CohortSamples returns every sample owned by the cohort's subjects.
func (e *Engine) CohortSamples(dbc dbctx.Context, cohort *types.Cohort) ([]*types.Sample, error) {
	subjects, err := e.CohortSubjects(dbc, cohort)
	if err != nil {
		return nil, err
	}
	samples, err := e.samples.ListForSubjects(dbc, subjectIDs(subjects), nil)
	if err != nil {
		return nil, db.MapError("CohortSamples", err)
	}
	return samples, nil
}

// DatasetMembers runs the two resolution stages for a loaded dataset. A
// dataset whose cohort no longer exists is a referential-integrity failure.
func (e *Engine) DatasetMembers(dbc dbctx.Context, ds *types.Dataset) (*DatasetResolution, error) {
	const op = "ResolveDataset"
	cohort, err := e.cohorts.GetByID(dbc, ds.CohortID)
	if err != nil {
		return nil, db.MapError(op, err)
	}
	if cohort == nil {
		return nil, cytometry.NewError(
			cytometry.CodeReferentialIntegrity,
			op,
			"dataset references missing cohort",
			cytometry.NotFound(op, "cohort", ds.CohortID),
		)
	}
	subjects, err := e.CohortSubjects(dbc, cohort)
	if err != nil {
		return nil, err
	}
	samples, err := e.samples.ListForSubjects(dbc, subjectIDs(subjects), ds.Criteria().SamplePredicates())
	if err != nil {
		return nil, db.MapError(op, err)
	}
	byID := make(map[uint]*types.Subject, len(subjects))
	for _, s := range subjects {
		byID[s.ID] = s
	}
	return &DatasetResolution{
		Dataset:  ds,
		Cohort:   cohort,
		Subjects: byID,
		Samples:  samples,
	}, nil
}

// read reuses the caller's transaction or opens a read transaction.
func (e *Engine) read(dbc dbctx.Context, fn func(dbc dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return e.tx.InReadTx(dbc.Context(), fn)
}

func (e *Engine) finish(span trace.Span, kind string, members int, start time.Time, err error) {
	dur := time.Since(start)
	status := "ok"
	if err != nil {
		status = string(cytometry.CodeOf(err))
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		e.log.Debug("resolution failed", "kind", kind, "error", err, "duration_ms", dur.Milliseconds())
	} else {
		span.SetAttributes(attribute.Int("members", members))
	}
	e.metrics.ObserveResolution(kind, status, members, dur)
}

func subjectIDs(subjects []*types.Subject) []uint {
	ids := make([]uint, 0, len(subjects))
	for _, s := range subjects {
		ids = append(ids, s.ID)
	}
	return ids
}
