package observability

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

func TestDataQualityReporterAlertsOncePerInterval(t *testing.T) {
	var posts atomic.Int32
	var got map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		posts.Add(1)
		_ = json.NewDecoder(r.Body).Decode(&got)
		w.WriteHeader(http.StatusNoContent)
	}))
	defer srv.Close()

	m := New()
	rep := NewDataQualityReporter(logger.Nop(), m, DataQualityConfig{WebhookURL: srv.URL, MinInterval: time.Hour})
	ctx := context.Background()

	if !rep.Report(ctx, "cell-count.csv", map[string]int{IssueSubjectConflict: 2, IssueZeroTotalCells: 0}) {
		t.Fatalf("first report should alert")
	}
	if rep.Report(ctx, "cell-count.csv", map[string]int{IssueMissingResponse: 1}) {
		t.Fatalf("second report inside interval should not alert")
	}
	if posts.Load() != 1 {
		t.Fatalf("posts: want=1 got=%d", posts.Load())
	}
	issues, _ := got["issues"].(map[string]any)
	if len(issues) != 1 || issues[IssueSubjectConflict] != float64(2) {
		t.Fatalf("payload issues: got=%v", got["issues"])
	}

	rec := httptest.NewRecorder()
	m.Handler().ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/metrics", nil))
	body := rec.Body.String()
	for _, line := range []string{
		`cytometry_ingest_data_quality_issues_total{issue="subject_conflict"} 2`,
		`cytometry_ingest_data_quality_issues_total{issue="missing_response"} 1`,
	} {
		if !strings.Contains(body, line) {
			t.Fatalf("exposition missing %q", line)
		}
	}
}

func TestDataQualityReporterQuietWithoutIssues(t *testing.T) {
	rep := NewDataQualityReporter(logger.Nop(), nil, DataQualityConfig{})
	if rep.Report(context.Background(), "x.csv", map[string]int{IssueSubjectConflict: 0}) {
		t.Fatalf("no issues should not alert")
	}
	var nilRep *DataQualityReporter
	if nilRep.Report(context.Background(), "x.csv", map[string]int{IssueSubjectConflict: 1}) {
		t.Fatalf("nil reporter should not alert")
	}
}
