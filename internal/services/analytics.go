package services

import (
	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
	"github.com/adknaupp/cytometry-manager/internal/resolution"
)

type AnalyticsService interface {
	PopulationFrequencies(dbc dbctx.Context, sampleID uint) (map[types.CellType]float64, error)
	DatasetFrequencyReport(dbc dbctx.Context, datasetID uint) ([]types.ReportRow, error)
}

type analyticsService struct {
	log     *logger.Logger
	samples SampleService
	engine  *resolution.Engine
}

func NewAnalyticsService(log *logger.Logger, samples SampleService, engine *resolution.Engine) AnalyticsService {
	return &analyticsService{
		log:     log.With("service", "AnalyticsService"),
		samples: samples,
		engine:  engine,
	}
}

func (s *analyticsService) PopulationFrequencies(dbc dbctx.Context, sampleID uint) (map[types.CellType]float64, error) {
	m, err := s.samples.Get(dbc, sampleID)
	if err != nil {
		return nil, err
	}
	return cytometry.PopulationFrequencies(m), nil
}

// DatasetFrequencyReport resolves the dataset and reports every sample whose
// subject has a recorded response.
func (s *analyticsService) DatasetFrequencyReport(dbc dbctx.Context, datasetID uint) ([]types.ReportRow, error) {
	res, err := s.engine.ResolveDatasetDetail(dbc, datasetID)
	if err != nil {
		return nil, err
	}
	rows := cytometry.FrequencyReport(res.Samples, res.Subjects)
	if excluded := len(res.Samples) - len(rows); excluded > 0 {
		s.log.Debug("report excluded samples without response", "dataset_id", datasetID, "excluded", excluded)
	}
	return rows, nil
}

