package observability

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"sync"
	"time"

	"github.com/adknaupp/cytometry-manager/internal/platform/ctxutil"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

// Data-quality issue kinds found in otherwise valid ingestion sources.
const (
	IssueSubjectConflict = "subject_conflict"
	IssueMissingResponse = "missing_response"
	IssueZeroTotalCells  = "zero_total_cells"
)

type DataQualityConfig struct {
	WebhookURL  string        `yaml:"webhook_url"`
	MinInterval time.Duration `yaml:"min_interval"`
}

// DataQualityReporter logs and counts data-quality issues per ingestion and,
// when a webhook is configured, posts a rate-limited alert.
type DataQualityReporter struct {
	log     *logger.Logger
	metrics *Metrics
	cfg     DataQualityConfig
	client  *http.Client

	mu   sync.Mutex
	last time.Time
}

func NewDataQualityReporter(log *logger.Logger, metrics *Metrics, cfg DataQualityConfig) *DataQualityReporter {
	if cfg.MinInterval <= 0 {
		cfg.MinInterval = 5 * time.Minute
	}
	return &DataQualityReporter{
		log:     log.With("component", "DataQuality"),
		metrics: metrics,
		cfg:     cfg,
		client:  &http.Client{Timeout: 5 * time.Second},
	}
}

// Report records the non-zero issue counts of one ingestion. It reports
// whether an alert was sent.
func (r *DataQualityReporter) Report(ctx context.Context, source string, issues map[string]int) bool {
	if r == nil {
		return false
	}
	found := map[string]int{}
	for issue, n := range issues {
		if n > 0 {
			found[issue] = n
			r.metrics.IncDataQuality(issue, n)
		}
	}
	if len(found) == 0 {
		return false
	}
	meta := map[string]any{"source": source}
	kv := ctxutil.LogFields(ctx)
	for i := 0; i+1 < len(kv); i += 2 {
		meta[kv[i].(string)] = kv[i+1]
	}
	r.log.Warn("data quality issues detected", "issues", found, "meta", meta)
	return r.alert(ctx, found, meta)
}

func (r *DataQualityReporter) alert(ctx context.Context, issues map[string]int, meta map[string]any) bool {
	if r.cfg.WebhookURL == "" {
		return false
	}
	r.mu.Lock()
	if !r.last.IsZero() && time.Since(r.last) < r.cfg.MinInterval {
		r.mu.Unlock()
		return false
	}
	r.last = time.Now()
	r.mu.Unlock()

	kinds := make([]string, 0, len(issues))
	for k := range issues {
		kinds = append(kinds, k)
	}
	sort.Strings(kinds)
	body, _ := json.Marshal(map[string]any{
		"title":     "Cytometry ingestion data quality",
		"kinds":     kinds,
		"issues":    issues,
		"meta":      meta,
		"timestamp": time.Now().UTC().Format(time.RFC3339),
	})
	req, err := http.NewRequestWithContext(context.WithoutCancel(ctx), http.MethodPost, r.cfg.WebhookURL, bytes.NewReader(body))
	if err != nil {
		r.log.Warn("data quality alert request build failed", "error", err)
		return false
	}
	req.Header.Set("Content-Type", "application/json")
	resp, err := r.client.Do(req)
	if err != nil {
		r.log.Warn("data quality alert post failed", "error", err)
		return false
	}
	_ = resp.Body.Close()
	r.log.Info("data quality alert sent", "status", resp.StatusCode)
	return true
}
