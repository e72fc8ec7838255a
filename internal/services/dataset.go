package services

import (
	"context"
	"strings"

	"golang.org/x/sync/errgroup"

	"github.com/adknaupp/cytometry-manager/internal/data/db"
	"github.com/adknaupp/cytometry-manager/internal/data/repos"
	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
	"github.com/adknaupp/cytometry-manager/internal/resolution"
)

const datasetListConcurrency = 4

// DatasetInput is the criteria of a new dataset. A nil or empty SampleType
// and a nil TimeFromTreatmentStart leave those filters open.
type DatasetInput struct {
	Name                   string  `json:"name" validate:"required,max=255"`
	CohortID               uint    `json:"cohort_id" validate:"required"`
	SampleType             *string `json:"sample_type" validate:"omitempty,max=64"`
	TimeFromTreatmentStart *int    `json:"time_from_treatment_start" validate:"omitempty,gte=0"`
}

// DatasetSampleFilter narrows the samples view by subject attributes.
type DatasetSampleFilter struct {
	Response string
	Sex      string
}

type DatasetService interface {
	Add(ctx context.Context, in DatasetInput) (*types.Dataset, error)
	Get(dbc dbctx.Context, id uint) (*types.Dataset, error)
	List(ctx context.Context) ([]types.DatasetSummary, error)
	Resolve(dbc dbctx.Context, id uint) ([]*types.Sample, error)
	Content(dbc dbctx.Context, id uint, view types.DatasetView, filter DatasetSampleFilter) (*types.DatasetContent, error)
}

type datasetService struct {
	tx         db.TxRunner
	log        *logger.Logger
	legacyZero bool
	cohorts    repos.CohortRepo
	datasets   repos.DatasetRepo
	engine     *resolution.Engine
}

// NewDatasetService builds the dataset service. With legacyZeroTime set, a
// submitted time of 0 is stored as "no time filter".
func NewDatasetService(
	tx db.TxRunner,
	log *logger.Logger,
	legacyZeroTime bool,
	cohorts repos.CohortRepo,
	datasets repos.DatasetRepo,
	engine *resolution.Engine,
) DatasetService {
	return &datasetService{
		tx:         tx,
		log:        log.With("service", "DatasetService"),
		legacyZero: legacyZeroTime,
		cohorts:    cohorts,
		datasets:   datasets,
		engine:     engine,
	}
}

func (s *datasetService) Add(ctx context.Context, in DatasetInput) (*types.Dataset, error) {
	const op = "AddDataset"
	in.Name = strings.TrimSpace(in.Name)
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	ds := &types.Dataset{
		Name:                   in.Name,
		CohortID:               in.CohortID,
		SampleType:             sampleTypeFilter(in.SampleType),
		TimeFromTreatmentStart: cytometry.TimeFilter(in.TimeFromTreatmentStart, s.legacyZero),
	}
	err := s.tx.InTx(ctx, func(dbc dbctx.Context) error {
		cohort, err := s.cohorts.GetByID(dbc, in.CohortID)
		if err != nil {
			return db.MapError(op, err)
		}
		if cohort == nil {
			return cytometry.Validationf(op, "cohort %d does not exist", in.CohortID)
		}
		_, err = s.datasets.Create(dbc, []*types.Dataset{ds})
		return db.MapError(op, err)
	})
	if err != nil {
		return nil, err
	}
	s.log.Info("dataset added", "dataset_id", ds.ID, "cohort_id", ds.CohortID)
	return ds, nil
}

func (s *datasetService) Get(dbc dbctx.Context, id uint) (*types.Dataset, error) {
	ds, err := s.datasets.GetByID(dbc, id)
	if err != nil {
		return nil, db.MapError("GetDataset", err)
	}
	if ds == nil {
		return nil, cytometry.NotFound("GetDataset", "dataset", id)
	}
	return ds, nil
}

// List returns every dataset with its cohort name and live sample count.
// Counts resolve in parallel, each in its own read transaction; a dataset
// that fails to resolve carries the error instead of failing the listing.
func (s *datasetService) List(ctx context.Context) ([]types.DatasetSummary, error) {
	const op = "ListDatasets"
	var (
		datasets []*types.Dataset
		names    = map[uint]string{}
	)
	err := s.tx.InReadTx(ctx, func(dbc dbctx.Context) error {
		var err error
		datasets, err = s.datasets.List(dbc)
		if err != nil {
			return db.MapError(op, err)
		}
		ids := make([]uint, 0, len(datasets))
		for _, ds := range datasets {
			ids = append(ids, ds.CohortID)
		}
		cohorts, err := s.cohorts.GetByIDs(dbc, ids)
		if err != nil {
			return db.MapError(op, err)
		}
		for _, c := range cohorts {
			names[c.ID] = c.Name
		}
		return nil
	})
	if err != nil {
		return nil, err
	}

	out := make([]types.DatasetSummary, len(datasets))
	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(datasetListConcurrency)
	for i, ds := range datasets {
		out[i] = types.DatasetSummary{Dataset: ds, CohortName: names[ds.CohortID]}
		g.Go(func() error {
			samples, err := s.engine.ResolveDataset(dbctx.Context{Ctx: gctx}, ds.ID)
			if err != nil {
				if cytometry.CodeOf(err) == cytometry.CodeInternal {
					return err
				}
				out[i].Err = err.Error()
				return nil
			}
			out[i].SampleCount = len(samples)
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return out, nil
}

func (s *datasetService) Resolve(dbc dbctx.Context, id uint) ([]*types.Sample, error) {
	return s.engine.ResolveDataset(dbc, id)
}

func (s *datasetService) Content(dbc dbctx.Context, id uint, view types.DatasetView, filter DatasetSampleFilter) (*types.DatasetContent, error) {
	const op = "DatasetContent"
	out := &types.DatasetContent{View: view}
	switch view {
	case cytometry.DatasetDetails:
		err := s.read(dbc, func(dbc dbctx.Context) error {
			ds, err := s.Get(dbc, id)
			if err != nil {
				return err
			}
			detail := &types.DatasetDetail{Dataset: ds}
			cohort, err := s.cohorts.GetByID(dbc, ds.CohortID)
			if err != nil {
				return db.MapError(op, err)
			}
			if cohort != nil {
				detail.CohortName = cohort.Name
			}
			out.Detail = detail
			return nil
		})
		if err != nil {
			return nil, err
		}
	case cytometry.DatasetSamples:
		res, err := s.engine.ResolveDatasetDetail(dbc, id)
		if err != nil {
			return nil, err
		}
		rows, err := sampleRows(res, filter)
		if err != nil {
			return nil, err
		}
		out.Samples = rows
	case cytometry.DatasetVisualizations:
		res, err := s.engine.ResolveDatasetDetail(dbc, id)
		if err != nil {
			return nil, err
		}
		out.Report = cytometry.FrequencyReport(res.Samples, res.Subjects)
	default:
		return nil, cytometry.Validationf(op, "unknown dataset view %s", view)
	}
	return out, nil
}

func (s *datasetService) read(dbc dbctx.Context, fn func(dbc dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return s.tx.InReadTx(dbc.Context(), fn)
}

// sampleRows joins resolved samples with their subjects. Filters of "" or
// Any are open.
func sampleRows(res *resolution.DatasetResolution, filter DatasetSampleFilter) ([]types.DatasetSampleRow, error) {
	const op = "DatasetSamples"
	var (
		wantSex  types.Sex
		wantResp *types.Response
	)
	if v := strings.TrimSpace(filter.Sex); v != "" && !strings.EqualFold(v, cytometry.Any) {
		sex, err := cytometry.ParseSex(v)
		if err != nil {
			return nil, cytometry.Validation(op, err.Error())
		}
		wantSex = sex
	}
	if v := strings.TrimSpace(filter.Response); v != "" && !strings.EqualFold(v, cytometry.Any) {
		resp, err := cytometry.ParseResponse(v)
		if err != nil {
			return nil, cytometry.Validation(op, err.Error())
		}
		wantResp = resp
	}

	rows := make([]types.DatasetSampleRow, 0, len(res.Samples))
	for _, m := range res.Samples {
		subj := res.Subjects[m.SubjectID]
		if subj == nil {
			continue
		}
		if wantSex != "" && subj.Sex != wantSex {
			continue
		}
		if wantResp != nil && (subj.Response == nil || *subj.Response != *wantResp) {
			continue
		}
		rows = append(rows, types.DatasetSampleRow{
			SampleID:    m.ID,
			Name:        m.Name,
			SubjectID:   subj.ID,
			SubjectName: subj.Name,
			Sex:         subj.Sex,
			Response:    subj.Response,
			Type:        m.Type,
			Time:        m.TimeFromTreatmentStart,
		})
	}
	return rows, nil
}

func sampleTypeFilter(v *string) *string {
	if v == nil {
		return nil
	}
	t := strings.TrimSpace(*v)
	if t == "" || strings.EqualFold(t, cytometry.Any) {
		return nil
	}
	return &t
}
