package pipeline

import (
	"context"
	"strings"
	"testing"

	"github.com/adknaupp/cytometry-manager/internal/data/repos"
	"github.com/adknaupp/cytometry-manager/internal/data/repos/testutil"
	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/ingestion/tabular"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
)

const header = "project,subject,condition,age,sex,treatment,response,sample,sample_type,time_from_treatment_start,b_cell,cd8_t_cell,cd4_t_cell,nk_cell,monocyte\n"

func parse(t *testing.T, body string) []tabular.Row {
	t.Helper()
	rows, err := tabular.Parse(strings.NewReader(header + body))
	if err != nil {
		t.Fatalf("Parse: %v", err)
	}
	return rows
}

func TestPlanFirstSubjectWins(t *testing.T) {
	rows := parse(t,
		"prj1,sbj1,melanoma,70,M,miraclib,yes,s1,PBMC,0,1,1,1,1,1\n"+
			"prj2,sbj1,carcinoma,40,F,phauximab,no,s2,PBMC,7,1,1,1,1,1\n"+
			"prj1,sbj1,melanoma,70,M,miraclib,yes,s3,PBMC,14,1,1,1,1,1\n")
	g := plan(rows)
	if len(g.subjects) != 1 {
		t.Fatalf("subjects: want=1 got=%d", len(g.subjects))
	}
	s := g.subjects[0]
	if s.Condition != "melanoma" || s.Sex != cytometry.SexMale || s.Age != 70 || *s.Response != cytometry.ResponseYes {
		t.Fatalf("first row attributes not kept: %+v", s)
	}
	if g.conflicts != 1 {
		t.Fatalf("conflicts: want=1 got=%d", g.conflicts)
	}
	if len(g.projects) != 2 || g.projects[0].NumSamples != 2 || g.projects[1].NumSamples != 1 {
		t.Fatalf("projects: got=%+v %+v", g.projects[0], g.projects[1])
	}
}

func TestRunCommitsGraph(t *testing.T) {
	db := testutil.DB(t)
	tx := testutil.Tx(t, db)
	ctx := context.Background()
	dbc := dbctx.Context{Ctx: ctx, Tx: tx}
	log := testutil.Logger(t)

	projects := repos.NewProjectRepo(db, log)
	subjects := repos.NewSubjectRepo(db, log)
	samples := repos.NewSampleRepo(db, log)
	p := New(db, log, projects, subjects, samples)

	rows := parse(t,
		"prj1,sbj1,melanoma,70,M,miraclib,yes,s1,PBMC,0,1,1,1,1,1\n"+
			"prj1,sbj1,carcinoma,40,F,phauximab,no,s2,PBMC,7,1,1,1,1,1\n"+
			"prj1,sbj2,melanoma,55,F,miraclib,,s3,WB,0,0,0,0,0,0\n")
	res, err := p.Run(dbc, rows)
	if err != nil {
		t.Fatalf("Run: %v", err)
	}
	if res.Rows != 3 || res.Projects != 1 || res.Subjects != 2 || res.Samples != 3 || res.SubjectConflicts != 1 {
		t.Fatalf("result: got=%+v", res)
	}
	if res.SubjectsWithoutResponse != 1 || res.ZeroTotalSamples != 1 {
		t.Fatalf("quality counts: got=%+v", res)
	}

	allSubjects, err := subjects.List(dbc, repos.SubjectFilter{})
	if err != nil {
		t.Fatalf("List subjects: %v", err)
	}
	if len(allSubjects) != 2 {
		t.Fatalf("subjects: want=2 got=%d", len(allSubjects))
	}
	byName := map[string]*types.Subject{}
	byID := map[uint]*types.Subject{}
	for _, s := range allSubjects {
		byName[s.Name] = s
		byID[s.ID] = s
	}
	if sbj1 := byName["sbj1"]; sbj1.Condition != "melanoma" || sbj1.Sex != cytometry.SexMale {
		t.Fatalf("sbj1 should carry first row attributes: %+v", sbj1)
	}
	if byName["sbj2"].Response != nil {
		t.Fatalf("sbj2 response should be absent")
	}

	allProjects, err := projects.List(dbc)
	if err != nil || len(allProjects) != 1 || allProjects[0].NumSamples != 3 {
		t.Fatalf("projects: got=%v err=%v", allProjects, err)
	}

	allSamples, err := samples.List(dbc, repos.SampleFilter{})
	if err != nil || len(allSamples) != 3 {
		t.Fatalf("samples: got=%v err=%v", allSamples, err)
	}
	for _, m := range allSamples {
		if byID[m.SubjectID] == nil {
			t.Fatalf("sample %s has orphan subject ref %d", m.Name, m.SubjectID)
		}
		if m.ProjectID != allProjects[0].ID {
			t.Fatalf("sample %s has orphan project ref %d", m.Name, m.ProjectID)
		}
	}
}

func TestRunRequiresTransaction(t *testing.T) {
	db := testutil.DB(t)
	log := testutil.Logger(t)
	p := New(db, log, repos.NewProjectRepo(db, log), repos.NewSubjectRepo(db, log), repos.NewSampleRepo(db, log))
	if _, err := p.Run(dbctx.Background(), nil); err == nil {
		t.Fatalf("Run without tx: expected error")
	}
}
