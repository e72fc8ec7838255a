package app

import (
	"context"

	httpH "github.com/adknaupp/cytometry-manager/internal/http/handlers"
)

type Handlers struct {
	Ingest  *httpH.IngestHandler
	Project *httpH.ProjectHandler
	Subject *httpH.SubjectHandler
	Sample  *httpH.SampleHandler
	Cohort  *httpH.CohortHandler
	Dataset *httpH.DatasetHandler
	Search  *httpH.SearchHandler
	Health  *httpH.HealthHandler
}

func wireHandlers(s Services, ping func(ctx context.Context) error) Handlers {
	return Handlers{
		Ingest:  httpH.NewIngestHandler(s.Ingestion),
		Project: httpH.NewProjectHandler(s.Project),
		Subject: httpH.NewSubjectHandler(s.Subject),
		Sample:  httpH.NewSampleHandler(s.Sample, s.Analytics),
		Cohort:  httpH.NewCohortHandler(s.Cohort),
		Dataset: httpH.NewDatasetHandler(s.Dataset, s.Analytics),
		Search:  httpH.NewSearchHandler(s.Search),
		Health:  httpH.NewHealthHandler(ping),
	}
}
