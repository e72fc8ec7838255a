package resolution

import (
	"context"
	"errors"
	"testing"

	"gorm.io/gorm"

	"github.com/adknaupp/cytometry-manager/internal/data/repos"
	"github.com/adknaupp/cytometry-manager/internal/data/repos/testutil"
	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/observability"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
)

type fixture struct {
	engine *Engine
	tx     *gorm.DB
	dbc    dbctx.Context
	ctx    context.Context
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	gdb := testutil.DB(t)
	tx := testutil.Tx(t, gdb)
	log := testutil.Logger(t)
	ctx := context.Background()
	e := NewEngine(gdb, log, observability.New(),
		repos.NewSubjectRepo(gdb, log),
		repos.NewSampleRepo(gdb, log),
		repos.NewCohortRepo(gdb, log),
		repos.NewDatasetRepo(gdb, log),
	)
	return &fixture{engine: e, tx: tx, dbc: dbctx.Context{Ctx: ctx, Tx: tx}, ctx: ctx}
}

// seed loads three subjects and four samples:
//
//	sbj1 M melanoma miraclib yes: s1 PBMC@0
//	sbj2 F melanoma miraclib no:  s2 PBMC@0, s3 WB@7
//	sbj3 F carcinoma phauximab:   s4 PBMC@0
func (f *fixture) seed(t *testing.T) {
	t.Helper()
	p := testutil.SeedProject(t, f.ctx, f.tx, "prj1")
	s1 := testutil.SeedSubject(t, f.ctx, f.tx, "sbj1", cytometry.SexMale, "melanoma", "miraclib", "yes")
	s2 := testutil.SeedSubject(t, f.ctx, f.tx, "sbj2", cytometry.SexFemale, "melanoma", "miraclib", "no")
	s3 := testutil.SeedSubject(t, f.ctx, f.tx, "sbj3", cytometry.SexFemale, "carcinoma", "phauximab", "")
	testutil.SeedSample(t, f.ctx, f.tx, "s1", s1.ID, p.ID, "PBMC", 0)
	testutil.SeedSample(t, f.ctx, f.tx, "s2", s2.ID, p.ID, "PBMC", 0)
	testutil.SeedSample(t, f.ctx, f.tx, "s3", s2.ID, p.ID, "WB", 7)
	testutil.SeedSample(t, f.ctx, f.tx, "s4", s3.ID, p.ID, "PBMC", 0)
}

func (f *fixture) cohort(t *testing.T, c *types.Cohort) *types.Cohort {
	t.Helper()
	if err := f.tx.WithContext(f.ctx).Create(c).Error; err != nil {
		t.Fatalf("create cohort: %v", err)
	}
	return c
}

func (f *fixture) dataset(t *testing.T, d *types.Dataset) *types.Dataset {
	t.Helper()
	if err := f.tx.WithContext(f.ctx).Create(d).Error; err != nil {
		t.Fatalf("create dataset: %v", err)
	}
	return d
}

func subjectNames(in []*types.Subject) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, s.Name)
	}
	return out
}

func sampleNames(in []*types.Sample) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		out = append(out, s.Name)
	}
	return out
}

func equal(a, b []string) bool {
	if len(a) != len(b) {
		return false
	}
	for i := range a {
		if a[i] != b[i] {
			return false
		}
	}
	return true
}

func TestResolveCohortCriteria(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	cases := []struct {
		name   string
		cohort types.Cohort
		want   []string
	}{
		{"all any", types.Cohort{Condition: cytometry.Any, Sex: cytometry.SexAny, Treatment: cytometry.TreatmentAny}, []string{"sbj1", "sbj2", "sbj3"}},
		{"women", types.Cohort{Condition: cytometry.Any, Sex: cytometry.SexFemale, Treatment: cytometry.TreatmentAny}, []string{"sbj2", "sbj3"}},
		{"melanoma women", types.Cohort{Condition: "melanoma", Sex: cytometry.SexFemale, Treatment: cytometry.TreatmentAny}, []string{"sbj2"}},
		{"phauximab", types.Cohort{Condition: cytometry.Any, Sex: cytometry.SexAny, Treatment: cytometry.TreatmentPhauximab}, []string{"sbj3"}},
		{"no match", types.Cohort{Condition: "lupus", Sex: cytometry.SexAny, Treatment: cytometry.TreatmentAny}, []string{}},
	}
	for _, tc := range cases {
		c := tc.cohort
		c.Name = tc.name
		f.cohort(t, &c)
		got, err := f.engine.ResolveCohort(f.dbc, c.ID)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if !equal(subjectNames(got), tc.want) {
			t.Fatalf("%s: got=%v want=%v", tc.name, subjectNames(got), tc.want)
		}
	}
}

func TestResolveDatasetFilters(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	c := f.cohort(t, &types.Cohort{Name: "melanoma", Condition: "melanoma", Sex: cytometry.SexAny, Treatment: cytometry.TreatmentAny})

	pbmc := "PBMC"
	seven := 7
	zero := 0
	cases := []struct {
		name string
		ds   types.Dataset
		want []string
	}{
		{"unfiltered", types.Dataset{}, []string{"s1", "s2", "s3"}},
		{"pbmc", types.Dataset{SampleType: &pbmc}, []string{"s1", "s2"}},
		{"day seven", types.Dataset{TimeFromTreatmentStart: &seven}, []string{"s3"}},
		{"pbmc baseline", types.Dataset{SampleType: &pbmc, TimeFromTreatmentStart: &zero}, []string{"s1", "s2"}},
	}
	for _, tc := range cases {
		ds := tc.ds
		ds.Name = tc.name
		ds.CohortID = c.ID
		f.dataset(t, &ds)
		got, err := f.engine.ResolveDataset(f.dbc, ds.ID)
		if err != nil {
			t.Fatalf("%s: %v", tc.name, err)
		}
		if !equal(sampleNames(got), tc.want) {
			t.Fatalf("%s: got=%v want=%v", tc.name, sampleNames(got), tc.want)
		}
	}
}

func TestResolveDatasetDetailKeepsCohortStage(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	c := f.cohort(t, &types.Cohort{Name: "women", Condition: cytometry.Any, Sex: cytometry.SexFemale, Treatment: cytometry.TreatmentAny})
	ds := f.dataset(t, &types.Dataset{Name: "women", CohortID: c.ID})

	res, err := f.engine.ResolveDatasetDetail(f.dbc, ds.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if res.Cohort.ID != c.ID || len(res.Subjects) != 2 {
		t.Fatalf("cohort stage: cohort=%d subjects=%d", res.Cohort.ID, len(res.Subjects))
	}
	for _, m := range res.Samples {
		if _, ok := res.Subjects[m.SubjectID]; !ok {
			t.Fatalf("sample %s outside cohort", m.Name)
		}
	}
}

func TestResolveSeesLaterWrites(t *testing.T) {
	f := newFixture(t)
	f.seed(t)
	c := f.cohort(t, &types.Cohort{Name: "women", Condition: cytometry.Any, Sex: cytometry.SexFemale, Treatment: cytometry.TreatmentAny})

	before, err := f.engine.ResolveCohort(f.dbc, c.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	testutil.SeedSubject(t, f.ctx, f.tx, "sbj4", cytometry.SexFemale, "melanoma", "miraclib", "yes")
	after, err := f.engine.ResolveCohort(f.dbc, c.ID)
	if err != nil {
		t.Fatalf("resolve: %v", err)
	}
	if len(after) != len(before)+1 {
		t.Fatalf("new subject not observed: before=%d after=%d", len(before), len(after))
	}
}

func TestResolveMissingEntities(t *testing.T) {
	f := newFixture(t)
	f.seed(t)

	if _, err := f.engine.ResolveCohort(f.dbc, 404); !errors.Is(err, cytometry.ErrNotFound) {
		t.Fatalf("missing cohort: got=%v", err)
	}
	if _, err := f.engine.ResolveDataset(f.dbc, 404); !errors.Is(err, cytometry.ErrNotFound) {
		t.Fatalf("missing dataset: got=%v", err)
	}

	orphan := f.dataset(t, &types.Dataset{Name: "orphan", CohortID: 999})
	_, err := f.engine.ResolveDataset(f.dbc, orphan.ID)
	if cytometry.CodeOf(err) != cytometry.CodeReferentialIntegrity {
		t.Fatalf("orphan dataset: code=%s err=%v", cytometry.CodeOf(err), err)
	}
}
