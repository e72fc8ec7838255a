package app

import (
	"gorm.io/gorm"

	"github.com/adknaupp/cytometry-manager/internal/data/db"
	"github.com/adknaupp/cytometry-manager/internal/ingestion"
	"github.com/adknaupp/cytometry-manager/internal/ingestion/pipeline"
	"github.com/adknaupp/cytometry-manager/internal/observability"
	"github.com/adknaupp/cytometry-manager/internal/platform/gcp"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
	"github.com/adknaupp/cytometry-manager/internal/resolution"
	"github.com/adknaupp/cytometry-manager/internal/services"
)

type Services struct {
	Engine    *resolution.Engine
	Project   services.ProjectService
	Subject   services.SubjectService
	Sample    services.SampleService
	Cohort    services.CohortService
	Dataset   services.DatasetService
	Analytics services.AnalyticsService
	Search    services.SearchService
	Ingestion services.IngestionService
}

type serviceDeps struct {
	db      *gorm.DB
	log     *logger.Logger
	cfg     Config
	repos   Repos
	metrics *observability.Metrics
	lock    services.IngestLock
	objects gcp.ObjectReader
}

func wireServices(d serviceDeps) Services {
	d.log.Info("Wiring services...")
	tx := db.NewGormTxRunner(d.db)
	r := d.repos

	engine := resolution.NewEngine(d.db, d.log, d.metrics, r.Subject, r.Sample, r.Cohort, r.Dataset)
	sample := services.NewSampleService(d.db, d.log, d.lock, r.Sample, r.Subject, r.Project)
	quality := observability.NewDataQualityReporter(d.log, d.metrics, d.cfg.DataQuality)
	pl := pipeline.New(d.db, d.log, r.Project, r.Subject, r.Sample)

	return Services{
		Engine:    engine,
		Project:   services.NewProjectService(d.log, r.Project),
		Subject:   services.NewSubjectService(d.log, d.lock, r.Subject),
		Sample:    sample,
		Cohort:    services.NewCohortService(tx, d.log, r.Cohort, engine),
		Dataset:   services.NewDatasetService(tx, d.log, d.cfg.DatasetLegacyZeroTime, r.Cohort, r.Dataset, engine),
		Analytics: services.NewAnalyticsService(d.log, sample, engine),
		Search:    services.NewSearchService(d.log, r.Project, r.Subject, r.Sample, r.Cohort),
		Ingestion: services.NewIngestionService(tx, d.log, d.metrics, quality, d.lock,
			ingestion.NewOpener(d.objects), pl, r.Sample, r.IngestRun),
	}
}
