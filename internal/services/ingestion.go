package services

import (
	"context"
	"encoding/json"
	"io"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"gorm.io/datatypes"

	"github.com/adknaupp/cytometry-manager/internal/data/db"
	"github.com/adknaupp/cytometry-manager/internal/data/repos"
	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/ingestion"
	"github.com/adknaupp/cytometry-manager/internal/ingestion/pipeline"
	"github.com/adknaupp/cytometry-manager/internal/ingestion/tabular"
	"github.com/adknaupp/cytometry-manager/internal/observability"
	"github.com/adknaupp/cytometry-manager/internal/platform/ctxutil"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

type IngestOptions struct {
	// SkipIfPopulated leaves a store that already holds samples untouched.
	SkipIfPopulated bool
}

// IngestSummary reports the outcome of one ingestion.
type IngestSummary struct {
	RunID    uuid.UUID       `json:"run_id"`
	Source   string          `json:"source"`
	Status   string          `json:"status"`
	Result   pipeline.Result `json:"result"`
	Duration time.Duration   `json:"duration_ns"`
}

type IngestionService interface {
	Ingest(ctx context.Context, source string, opts IngestOptions) (*IngestSummary, error)
	IngestReader(ctx context.Context, name string, r io.Reader, opts IngestOptions) (*IngestSummary, error)
	Runs(dbc dbctx.Context, limit int) ([]*types.IngestRun, error)
}

type ingestionService struct {
	tx       db.TxRunner
	log      *logger.Logger
	metrics  *observability.Metrics
	quality  *observability.DataQualityReporter
	lock     IngestLock
	opener   *ingestion.Opener
	pipeline *pipeline.Pipeline
	samples  repos.SampleRepo
	runs     repos.IngestRunRepo
}

func NewIngestionService(
	tx db.TxRunner,
	log *logger.Logger,
	metrics *observability.Metrics,
	quality *observability.DataQualityReporter,
	lock IngestLock,
	opener *ingestion.Opener,
	pl *pipeline.Pipeline,
	samples repos.SampleRepo,
	runs repos.IngestRunRepo,
) IngestionService {
	if lock == nil {
		lock = NewLocalIngestLock()
	}
	return &ingestionService{
		tx:       tx,
		log:      log.With("service", "IngestionService"),
		metrics:  metrics,
		quality:  quality,
		lock:     lock,
		opener:   opener,
		pipeline: pl,
		samples:  samples,
		runs:     runs,
	}
}

// Ingest opens source (a local path or gs:// URI) and imports it.
func (s *ingestionService) Ingest(ctx context.Context, source string, opts IngestOptions) (*IngestSummary, error) {
	start := time.Now()
	rc, err := s.opener.Open(ctx, source)
	if err != nil {
		s.log.Warn("ingest source unavailable", "source", source, "error", err)
		s.metrics.ObserveIngest(cytometry.IngestStatusFailed, 0, 0, time.Since(start))
		return nil, err
	}
	defer rc.Close()
	return s.IngestReader(ctx, source, rc, opts)
}

// IngestReader parses r completely, then commits every row in one
// transaction while holding the ingestion lock. Nothing is written when
// parsing or any insert fails.
func (s *ingestionService) IngestReader(ctx context.Context, name string, r io.Reader, opts IngestOptions) (*IngestSummary, error) {
	const op = "Ingest"
	start := time.Now()
	ctx, span := observability.Tracer().Start(ctx, "ingestion.Ingest")
	defer span.End()
	span.SetAttributes(attribute.String("ingest.source", name))
	log := s.log.With(ctxutil.LogFields(ctx)...)

	fail := func(err error) (*IngestSummary, error) {
		span.RecordError(err)
		span.SetStatus(codes.Error, err.Error())
		s.metrics.ObserveIngest(cytometry.IngestStatusFailed, 0, 0, time.Since(start))
		return nil, err
	}

	rows, err := tabular.Parse(r)
	if err != nil {
		log.Warn("ingest source rejected", "source", name, "error", err)
		return fail(err)
	}

	runID := uuid.New()
	release, err := s.lock.Acquire(ctx, runID.String())
	if err != nil {
		return fail(lockErr(op, err))
	}
	defer func() {
		if err := release(context.WithoutCancel(ctx)); err != nil {
			log.Warn("ingest lock release failed", "run_id", runID, "error", err)
		}
	}()

	if opts.SkipIfPopulated {
		n, err := s.samples.Count(dbctx.Context{Ctx: ctx})
		if err != nil {
			return fail(db.MapError(op, err))
		}
		if n > 0 {
			return s.skip(ctx, runID, name, n, start)
		}
	}

	run := &types.IngestRun{ID: runID, Source: name, Status: cytometry.IngestStatusRunning}
	if _, err := s.runs.Create(dbctx.Context{Ctx: ctx}, []*types.IngestRun{run}); err != nil {
		return fail(db.MapError(op, err))
	}
	log.Info("ingest started", "run_id", runID, "source", name, "rows", len(rows))

	var res *pipeline.Result
	err = s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		var err error
		res, err = s.pipeline.Run(dbc, rows)
		return err
	})
	dur := time.Since(start)

	if err != nil {
		s.finishRun(ctx, runID, map[string]interface{}{
			"status":      cytometry.IngestStatusFailed,
			"error":       err.Error(),
			"finished_at": time.Now().UTC(),
		})
		log.Error("ingest failed", "run_id", runID, "source", name, "error", err)
		return fail(cytometry.Wrap(cytometry.CodeIngest, op, err))
	}

	s.finishRun(ctx, runID, map[string]interface{}{
		"status":            cytometry.IngestStatusSucceeded,
		"rows":              res.Rows,
		"projects":          res.Projects,
		"subjects":          res.Subjects,
		"samples":           res.Samples,
		"subject_conflicts": res.SubjectConflicts,
		"details":           runDetails(res, dur),
		"finished_at":       time.Now().UTC(),
	})
	s.metrics.ObserveIngest(cytometry.IngestStatusSucceeded, res.Rows, res.SubjectConflicts, dur)
	s.quality.Report(ctx, name, map[string]int{
		observability.IssueSubjectConflict: res.SubjectConflicts,
		observability.IssueMissingResponse: res.SubjectsWithoutResponse,
		observability.IssueZeroTotalCells:  res.ZeroTotalSamples,
	})
	span.SetAttributes(
		attribute.Int("ingest.rows", res.Rows),
		attribute.Int("ingest.subjects", res.Subjects),
		attribute.Int("ingest.subject_conflicts", res.SubjectConflicts),
	)
	log.Info("ingest succeeded",
		"run_id", runID,
		"source", name,
		"projects", res.Projects,
		"subjects", res.Subjects,
		"samples", res.Samples,
		"duration_ms", dur.Milliseconds(),
	)
	return &IngestSummary{
		RunID:    runID,
		Source:   name,
		Status:   cytometry.IngestStatusSucceeded,
		Result:   *res,
		Duration: dur,
	}, nil
}

func (s *ingestionService) Runs(dbc dbctx.Context, limit int) ([]*types.IngestRun, error) {
	out, err := s.runs.ListRecent(dbc, limit)
	if err != nil {
		return nil, db.MapError("ListIngestRuns", err)
	}
	return out, nil
}

func (s *ingestionService) skip(ctx context.Context, runID uuid.UUID, name string, existing int64, start time.Time) (*IngestSummary, error) {
	finished := time.Now().UTC()
	run := &types.IngestRun{
		ID:         runID,
		Source:     name,
		Status:     cytometry.IngestStatusSkipped,
		FinishedAt: &finished,
	}
	if _, err := s.runs.Create(dbctx.Context{Ctx: ctx}, []*types.IngestRun{run}); err != nil {
		return nil, db.MapError("Ingest", err)
	}
	dur := time.Since(start)
	s.metrics.ObserveIngest(cytometry.IngestStatusSkipped, 0, 0, dur)
	s.log.Info("ingest skipped: store already populated", "run_id", runID, "source", name, "samples", existing)
	return &IngestSummary{RunID: runID, Source: name, Status: cytometry.IngestStatusSkipped, Duration: dur}, nil
}

// finishRun records the outcome even if the caller's context was cancelled.
func (s *ingestionService) finishRun(ctx context.Context, runID uuid.UUID, updates map[string]interface{}) {
	dbc := dbctx.Context{Ctx: context.WithoutCancel(ctx)}
	if err := s.runs.UpdateFields(dbc, runID, updates); err != nil {
		s.log.Error("ingest run update failed", "run_id", runID, "error", err)
	}
}

func runDetails(res *pipeline.Result, dur time.Duration) datatypes.JSON {
	b, err := json.Marshal(map[string]interface{}{
		"result":      res,
		"duration_ms": dur.Milliseconds(),
	})
	if err != nil {
		return nil
	}
	return datatypes.JSON(b)
}
