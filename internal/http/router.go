package http

import (
	"github.com/gin-gonic/gin"
	"go.opentelemetry.io/contrib/instrumentation/github.com/gin-gonic/gin/otelgin"

	httpH "github.com/adknaupp/cytometry-manager/internal/http/handlers"
	httpMW "github.com/adknaupp/cytometry-manager/internal/http/middleware"
	"github.com/adknaupp/cytometry-manager/internal/observability"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

type RouterConfig struct {
	Log         *logger.Logger
	Metrics     *observability.Metrics
	CORSOrigins []string
	// TraceService names the otelgin server spans; empty disables them.
	TraceService string

	IngestHandler  *httpH.IngestHandler
	ProjectHandler *httpH.ProjectHandler
	SubjectHandler *httpH.SubjectHandler
	SampleHandler  *httpH.SampleHandler
	CohortHandler  *httpH.CohortHandler
	DatasetHandler *httpH.DatasetHandler
	SearchHandler  *httpH.SearchHandler

	HealthHandler *httpH.HealthHandler
}

func NewRouter(cfg RouterConfig) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery())
	if cfg.TraceService != "" {
		r.Use(otelgin.Middleware(cfg.TraceService))
	}
	r.Use(httpMW.AttachTraceContext())
	r.Use(httpMW.RequestLogger(cfg.Log))
	r.Use(httpMW.Metrics(cfg.Metrics))
	r.Use(httpMW.CORS(cfg.CORSOrigins))

	// Health
	if cfg.HealthHandler != nil {
		r.GET("/healthcheck", cfg.HealthHandler.HealthCheck)
	}
	if cfg.Metrics != nil {
		r.GET("/metrics", gin.WrapH(cfg.Metrics.Handler()))
	}

	api := r.Group("/api")
	{
		// Ingestion
		if cfg.IngestHandler != nil {
			api.POST("/ingest", cfg.IngestHandler.Ingest)
			api.GET("/ingest/runs", cfg.IngestHandler.ListRuns)
		}

		// Projects
		if cfg.ProjectHandler != nil {
			api.GET("/projects", cfg.ProjectHandler.ListProjects)
			api.GET("/projects/:id", cfg.ProjectHandler.GetProject)
		}

		// Subjects
		if cfg.SubjectHandler != nil {
			api.GET("/subjects", cfg.SubjectHandler.ListSubjects)
			api.POST("/subjects", cfg.SubjectHandler.CreateSubject)
			api.GET("/subjects/:id", cfg.SubjectHandler.GetSubject)
		}

		// Samples
		if cfg.SampleHandler != nil {
			api.GET("/samples", cfg.SampleHandler.ListSamples)
			api.POST("/samples", cfg.SampleHandler.CreateSample)
			api.GET("/samples/:id", cfg.SampleHandler.GetSample)
			api.DELETE("/samples/:id", cfg.SampleHandler.DeleteSample)
			api.GET("/samples/:id/frequencies", cfg.SampleHandler.GetFrequencies)
		}

		// Cohorts
		if cfg.CohortHandler != nil {
			api.GET("/cohorts", cfg.CohortHandler.ListCohorts)
			api.POST("/cohorts", cfg.CohortHandler.CreateCohort)
			api.GET("/cohorts/:id/:kind", cfg.CohortHandler.GetCohortContent)
		}

		// Datasets (kind "report" serves the frequency report)
		if cfg.DatasetHandler != nil {
			api.GET("/datasets", cfg.DatasetHandler.ListDatasets)
			api.POST("/datasets", cfg.DatasetHandler.CreateDataset)
			api.GET("/datasets/:id/:kind", cfg.DatasetHandler.GetDatasetContent)
		}

		// Search
		if cfg.SearchHandler != nil {
			api.GET("/search/projects", cfg.SearchHandler.SearchProjects)
			api.GET("/search/subjects", cfg.SearchHandler.SearchSubjects)
			api.GET("/search/cohorts", cfg.SearchHandler.SearchCohorts)
			api.GET("/search/sample-types", cfg.SearchHandler.SearchSampleTypes)
		}
	}

	return r
}
