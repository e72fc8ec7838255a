package http

import (
	"bytes"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"

	"github.com/adknaupp/cytometry-manager/internal/data/db"
	"github.com/adknaupp/cytometry-manager/internal/data/repos"
	"github.com/adknaupp/cytometry-manager/internal/data/repos/testutil"
	httpH "github.com/adknaupp/cytometry-manager/internal/http/handlers"
	"github.com/adknaupp/cytometry-manager/internal/ingestion"
	"github.com/adknaupp/cytometry-manager/internal/ingestion/pipeline"
	"github.com/adknaupp/cytometry-manager/internal/observability"
	"github.com/adknaupp/cytometry-manager/internal/resolution"
	"github.com/adknaupp/cytometry-manager/internal/services"
)

const source = "project,subject,condition,age,sex,treatment,response,sample,sample_type,time_from_treatment_start,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte\n" +
	"prj1,sbj1,melanoma,70,M,miraclib,yes,s1,PBMC,0,10,10,10,10,10\n" +
	"prj1,sbj2,melanoma,60,F,miraclib,no,s2,PBMC,0,1,1,1,1,1\n" +
	"prj1,sbj1,melanoma,70,M,miraclib,yes,s3,PBMC,7,5,5,5,5,5\n"

func newTestRouter(t *testing.T) (*gin.Engine, *observability.Metrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	gdb := testutil.DB(t)
	log := testutil.Logger(t)
	tx := db.NewGormTxRunner(gdb)
	lock := services.NewLocalIngestLock()
	metrics := observability.New()

	projectRepo := repos.NewProjectRepo(gdb, log)
	subjectRepo := repos.NewSubjectRepo(gdb, log)
	sampleRepo := repos.NewSampleRepo(gdb, log)
	cohortRepo := repos.NewCohortRepo(gdb, log)
	datasetRepo := repos.NewDatasetRepo(gdb, log)
	runRepo := repos.NewIngestRunRepo(gdb, log)
	engine := resolution.NewEngine(gdb, log, metrics, subjectRepo, sampleRepo, cohortRepo, datasetRepo)

	samples := services.NewSampleService(gdb, log, lock, sampleRepo, subjectRepo, projectRepo)
	analytics := services.NewAnalyticsService(log, samples, engine)
	ingest := services.NewIngestionService(tx, log, metrics, nil, lock, ingestion.NewOpener(nil),
		pipeline.New(gdb, log, projectRepo, subjectRepo, sampleRepo), sampleRepo, runRepo)

	r := NewRouter(RouterConfig{
		Log:            log,
		Metrics:        metrics,
		IngestHandler:  httpH.NewIngestHandler(ingest),
		ProjectHandler: httpH.NewProjectHandler(services.NewProjectService(log, projectRepo)),
		SubjectHandler: httpH.NewSubjectHandler(services.NewSubjectService(log, lock, subjectRepo)),
		SampleHandler:  httpH.NewSampleHandler(samples, analytics),
		CohortHandler:  httpH.NewCohortHandler(services.NewCohortService(tx, log, cohortRepo, engine)),
		DatasetHandler: httpH.NewDatasetHandler(services.NewDatasetService(tx, log, false, cohortRepo, datasetRepo, engine), analytics),
		SearchHandler:  httpH.NewSearchHandler(services.NewSearchService(log, projectRepo, subjectRepo, sampleRepo, cohortRepo)),
		HealthHandler:  httpH.NewHealthHandler(nil),
	})
	return r, metrics
}

func do(t *testing.T, r http.Handler, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var rd *bytes.Reader
	if body != nil {
		b, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("marshal: %v", err)
		}
		rd = bytes.NewReader(b)
	} else {
		rd = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, rd)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func decode(t *testing.T, rec *httptest.ResponseRecorder, dst any) {
	t.Helper()
	if err := json.Unmarshal(rec.Body.Bytes(), dst); err != nil {
		t.Fatalf("decode %q: %v", rec.Body.String(), err)
	}
}

func upload(t *testing.T, r http.Handler, name, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", name)
	if err != nil {
		t.Fatalf("form file: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write form: %v", err)
	}
	if err := mw.Close(); err != nil {
		t.Fatalf("close form: %v", err)
	}
	req := httptest.NewRequest(http.MethodPost, "/api/ingest", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	rec := httptest.NewRecorder()
	r.ServeHTTP(rec, req)
	return rec
}

func TestAPIEndToEnd(t *testing.T) {
	r, _ := newTestRouter(t)

	rec := upload(t, r, "cell-count.csv", source)
	if rec.Code != http.StatusCreated {
		t.Fatalf("ingest: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = do(t, r, http.MethodPost, "/api/cohorts", map[string]any{"name": "males", "sex": "M"})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create cohort: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var cohortResp struct {
		Cohort struct {
			ID uint `json:"id"`
		} `json:"cohort"`
	}
	decode(t, rec, &cohortResp)

	rec = do(t, r, http.MethodPost, "/api/datasets", map[string]any{"name": "male samples", "cohort_id": cohortResp.Cohort.ID})
	if rec.Code != http.StatusCreated {
		t.Fatalf("create dataset: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var dsResp struct {
		Dataset struct {
			ID uint `json:"id"`
		} `json:"dataset"`
	}
	decode(t, rec, &dsResp)

	rec = do(t, r, http.MethodGet, "/api/datasets/"+itoa(dsResp.Dataset.ID)+"/samples", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("dataset samples: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var samplesResp struct {
		View    string `json:"view"`
		Content struct {
			Samples []struct {
				Name        string `json:"name"`
				SubjectName string `json:"subject_name"`
			} `json:"samples"`
		} `json:"content"`
	}
	decode(t, rec, &samplesResp)
	if samplesResp.View != "samples" || len(samplesResp.Content.Samples) != 2 {
		t.Fatalf("dataset samples: got=%+v", samplesResp)
	}
	for _, s := range samplesResp.Content.Samples {
		if s.SubjectName != "sbj1" {
			t.Fatalf("sample from wrong subject: %+v", s)
		}
	}

	rec = do(t, r, http.MethodGet, "/api/datasets/"+itoa(dsResp.Dataset.ID)+"/report", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("report: status=%d body=%s", rec.Code, rec.Body.String())
	}
	var reportResp struct {
		Report []struct {
			SampleName  string             `json:"sample_name"`
			Frequencies map[string]float64 `json:"frequencies"`
			Response    string             `json:"response"`
		} `json:"report"`
	}
	decode(t, rec, &reportResp)
	if len(reportResp.Report) != 2 || reportResp.Report[0].Frequencies["B Cell"] != 20 || reportResp.Report[0].Response != "yes" {
		t.Fatalf("report: got=%+v", reportResp.Report)
	}

	rec = do(t, r, http.MethodGet, "/api/datasets", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"sample_count":2`) {
		t.Fatalf("dataset list: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = do(t, r, http.MethodGet, "/api/search/sample-types?q=pb", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"value":"PBMC"`) {
		t.Fatalf("search: status=%d body=%s", rec.Code, rec.Body.String())
	}

	rec = do(t, r, http.MethodGet, "/api/ingest/runs", nil)
	if rec.Code != http.StatusOK || !strings.Contains(rec.Body.String(), `"status":"succeeded"`) {
		t.Fatalf("runs: status=%d body=%s", rec.Code, rec.Body.String())
	}
}

func TestAPIErrorMapping(t *testing.T) {
	r, _ := newTestRouter(t)
	cases := []struct {
		name   string
		method string
		path   string
		body   any
		status int
		code   string
	}{
		{"missing subject", http.MethodGet, "/api/subjects/42", nil, http.StatusNotFound, "not_found"},
		{"bad id", http.MethodGet, "/api/samples/abc", nil, http.StatusBadRequest, "validation"},
		{"bad view", http.MethodGet, "/api/cohorts/1/everything", nil, http.StatusBadRequest, "validation"},
		{"bad sex", http.MethodPost, "/api/subjects", map[string]any{"name": "a", "condition": "c", "sex": "Q"}, http.StatusBadRequest, "validation"},
		{"missing source", http.MethodPost, "/api/ingest", map[string]any{"source": "/nonexistent/cell-count.csv"}, http.StatusUnprocessableEntity, "ingest"},
		{"missing dataset", http.MethodGet, "/api/datasets/7/report", nil, http.StatusNotFound, "not_found"},
		{"delete missing sample", http.MethodDelete, "/api/samples/5", nil, http.StatusNotFound, "not_found"},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			rec := do(t, r, tc.method, tc.path, tc.body)
			if rec.Code != tc.status {
				t.Fatalf("status: want=%d got=%d body=%s", tc.status, rec.Code, rec.Body.String())
			}
			var env struct {
				Error struct {
					Code      string `json:"code"`
					RequestID string `json:"request_id"`
				} `json:"error"`
			}
			decode(t, rec, &env)
			if env.Error.Code != tc.code {
				t.Fatalf("code: want=%s got=%s", tc.code, env.Error.Code)
			}
			if env.Error.RequestID == "" {
				t.Fatalf("request id missing from error envelope")
			}
		})
	}
}

func TestHealthAndMetricsRoutes(t *testing.T) {
	r, _ := newTestRouter(t)
	rec := do(t, r, http.MethodGet, "/healthcheck", nil)
	if rec.Code != http.StatusOK || rec.Body.String() != "ok" {
		t.Fatalf("healthcheck: status=%d body=%s", rec.Code, rec.Body.String())
	}
	do(t, r, http.MethodGet, "/api/projects", nil)
	rec = do(t, r, http.MethodGet, "/metrics", nil)
	if rec.Code != http.StatusOK {
		t.Fatalf("metrics: status=%d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), `cytometry_api_requests_total{method="GET",route="/api/projects",status="200"} 1`) {
		t.Fatalf("metrics missing api request sample")
	}
}

func itoa(v uint) string {
	b, _ := json.Marshal(v)
	return string(b)
}
