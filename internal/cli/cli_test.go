package cli

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"testing"

	"github.com/adknaupp/cytometry-manager/internal/app"
	"github.com/adknaupp/cytometry-manager/internal/services"
)

const sourceCSV = "project,subject,condition,age,sex,treatment,response,sample,sample_type,time_from_treatment_start,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte\n" +
	"prj1,sbj1,melanoma,70,M,miraclib,yes,s1,PBMC,0,10,10,10,10,10\n" +
	"prj1,sbj2,melanoma,55,F,miraclib,no,s2,PBMC,0,20,0,0,0,0\n" +
	"prj1,sbj2,melanoma,55,F,miraclib,no,s3,WB,7,5,5,5,5,5\n"

func setupEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv(app.ConfigFileEnv, "")
	t.Setenv("DB_DRIVER", "sqlite")
	t.Setenv("SQLITE_PATH", filepath.Join(dir, "cli.db"))
	t.Setenv("LOG_MODE", "test")
	t.Setenv("METRICS_ENABLED", "false")
	t.Setenv("REDIS_ADDR", "")

	src := filepath.Join(dir, "cell-count.csv")
	if err := os.WriteFile(src, []byte(sourceCSV), 0o600); err != nil {
		t.Fatalf("write source: %v", err)
	}
	return src
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	root := NewRootCmd()
	var out bytes.Buffer
	root.SetOut(&out)
	root.SetErr(&out)
	root.SetArgs(args)
	err := root.Execute()
	return out.String(), err
}

func mustRun(t *testing.T, args ...string) string {
	t.Helper()
	out, err := run(t, args...)
	if err != nil {
		t.Fatalf("%v: %v\n%s", args, err, out)
	}
	return out
}

func TestMigrateIngestRuns(t *testing.T) {
	src := setupEnv(t)

	if out := mustRun(t, "migrate"); !strings.Contains(out, "Schema migrated") {
		t.Fatalf("migrate output: %q", out)
	}

	out := mustRun(t, "ingest", src)
	if !strings.Contains(out, "succeeded") {
		t.Fatalf("ingest output missing status: %q", out)
	}
	if !strings.Contains(out, "3 ") {
		t.Fatalf("ingest output missing row count: %q", out)
	}

	out = mustRun(t, "ingest", src, "--skip-if-populated")
	if !strings.Contains(out, "skipped") {
		t.Fatalf("second ingest should skip: %q", out)
	}

	out = mustRun(t, "runs")
	if strings.Count(out, "cell-count.csv") != 2 {
		t.Fatalf("runs should list both attempts: %q", out)
	}
}

func TestIngestMissingSource(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "ingest", filepath.Join(t.TempDir(), "nope.csv")); err == nil {
		t.Fatalf("expected error for missing source")
	}
}

func TestResolveAndReport(t *testing.T) {
	src := setupEnv(t)
	mustRun(t, "ingest", src)

	cfg, err := app.LoadConfig()
	if err != nil {
		t.Fatalf("LoadConfig: %v", err)
	}
	a, err := app.New(context.Background(), cfg)
	if err != nil {
		t.Fatalf("app.New: %v", err)
	}
	cohort, err := a.Services.Cohort.Add(context.Background(), services.CohortInput{
		Name: "women", Condition: "melanoma", Sex: "F",
	})
	if err != nil {
		a.Close()
		t.Fatalf("add cohort: %v", err)
	}
	pbmc := "PBMC"
	ds, err := a.Services.Dataset.Add(context.Background(), services.DatasetInput{
		Name: "all pbmc", CohortID: cohort.ID, SampleType: &pbmc,
	})
	if err != nil {
		a.Close()
		t.Fatalf("add dataset: %v", err)
	}
	a.Close()

	out := mustRun(t, "resolve", "cohort", strconv.FormatUint(uint64(cohort.ID), 10))
	if !strings.Contains(out, "sbj2") || strings.Contains(out, "sbj1") {
		t.Fatalf("cohort resolution: %q", out)
	}

	out = mustRun(t, "resolve", "dataset", strconv.FormatUint(uint64(ds.ID), 10))
	if !strings.Contains(out, "s2") || strings.Contains(out, "s3") || !strings.Contains(out, "1 sample(s)") {
		t.Fatalf("dataset resolution: %q", out)
	}

	out = mustRun(t, "report", strconv.FormatUint(uint64(ds.ID), 10))
	if !strings.Contains(out, "s2") || !strings.Contains(out, "100.00") {
		t.Fatalf("report: %q", out)
	}

	out = mustRun(t, "report", strconv.FormatUint(uint64(ds.ID), 10), "--json")
	if !strings.Contains(out, `"sample_name": "s2"`) {
		t.Fatalf("json report: %q", out)
	}
}

func TestResolveRejectsBadID(t *testing.T) {
	setupEnv(t)
	if _, err := run(t, "resolve", "cohort", "abc"); err == nil {
		t.Fatalf("expected invalid id error")
	}
	if _, err := run(t, "report", "0"); err == nil {
		t.Fatalf("expected invalid id error")
	}
}

func TestReportMissingDataset(t *testing.T) {
	setupEnv(t)
	mustRun(t, "migrate")
	_, err := run(t, "report", "42")
	if err == nil || !strings.Contains(err.Error(), "report dataset 42") {
		t.Fatalf("expected not-found error, got %v", err)
	}
}
