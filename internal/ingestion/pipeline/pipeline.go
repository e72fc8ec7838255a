// Package pipeline builds the project/subject/sample graph from parsed rows.
package pipeline

import (
	"fmt"

	"gorm.io/gorm"

	"github.com/adknaupp/cytometry-manager/internal/data/db"
	"github.com/adknaupp/cytometry-manager/internal/data/repos"
	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/ingestion/tabular"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

// Result counts what one run committed.
type Result struct {
	Rows             int `json:"rows"`
	Projects         int `json:"projects"`
	Subjects         int `json:"subjects"`
	Samples          int `json:"samples"`
	SubjectConflicts int `json:"subject_conflicts"`

	// Committed but noteworthy: subjects without a response are left out of
	// frequency reports, samples with no cells have all-zero frequencies.
	SubjectsWithoutResponse int `json:"subjects_without_response"`
	ZeroTotalSamples        int `json:"zero_total_samples"`
}

// Pipeline writes rows in three bulk stages: projects, then subjects, then
// samples carrying the identities assigned by the first two.
type Pipeline struct {
	db       *gorm.DB
	log      *logger.Logger
	projects repos.ProjectRepo
	subjects repos.SubjectRepo
	samples  repos.SampleRepo
}

func New(
	gdb *gorm.DB,
	baseLog *logger.Logger,
	projects repos.ProjectRepo,
	subjects repos.SubjectRepo,
	samples repos.SampleRepo,
) *Pipeline {
	return &Pipeline{
		db:       gdb,
		log:      baseLog.With("component", "IngestPipeline"),
		projects: projects,
		subjects: subjects,
		samples:  samples,
	}
}

// graph is the pass-one output: one record per natural key, in first-seen
// order.
type graph struct {
	projects     []*types.Project
	projectByKey map[string]*types.Project
	subjects     []*types.Subject
	subjectByKey map[string]*types.Subject
	conflicts    int
}

// plan runs pass one. The first row for a subject name fixes that subject's
// attributes; later rows with different attributes are counted, not applied.
func plan(rows []tabular.Row) *graph {
	g := &graph{
		projectByKey: map[string]*types.Project{},
		subjectByKey: map[string]*types.Subject{},
	}
	for _, row := range rows {
		p, ok := g.projectByKey[row.Project]
		if !ok {
			p = &types.Project{Name: row.Project}
			g.projectByKey[row.Project] = p
			g.projects = append(g.projects, p)
		}
		p.NumSamples++

		candidate := row.SubjectRecord()
		s, ok := g.subjectByKey[row.Subject]
		if !ok {
			g.subjectByKey[row.Subject] = candidate
			g.subjects = append(g.subjects, candidate)
			continue
		}
		if !s.SameAttributes(candidate) {
			g.conflicts++
		}
	}
	return g
}

// Run commits rows inside dbc's transaction. Callers own the transaction so
// that any failure leaves the store untouched.
func (p *Pipeline) Run(dbc dbctx.Context, rows []tabular.Row) (*Result, error) {
	const op = "IngestPipeline.Run"
	if dbc.Tx == nil {
		return nil, cytometry.NewError(cytometry.CodeInternal, op, "ingestion requires a transaction", nil)
	}
	g := plan(rows)

	if _, err := p.projects.Create(dbc, g.projects); err != nil {
		return nil, db.MapError(op, fmt.Errorf("create projects: %w", err))
	}
	if _, err := p.subjects.Create(dbc, g.subjects); err != nil {
		return nil, db.MapError(op, fmt.Errorf("create subjects: %w", err))
	}

	missingResponse := 0
	for _, subj := range g.subjects {
		if !subj.HasResponse() {
			missingResponse++
		}
	}

	zeroTotal := 0
	samples := make([]*types.Sample, 0, len(rows))
	for _, row := range rows {
		subj := g.subjectByKey[row.Subject]
		proj := g.projectByKey[row.Project]
		samples = append(samples, &types.Sample{
			Name:                   row.Sample,
			SubjectID:              subj.ID,
			ProjectID:              proj.ID,
			Type:                   row.SampleType,
			TimeFromTreatmentStart: row.TimeFromTreatmentStart,
			BCell:                  row.BCell,
			CD8TCell:               row.CD8TCell,
			CD4TCell:               row.CD4TCell,
			NKCell:                 row.NKCell,
			Monocyte:               row.Monocyte,
		})
		if samples[len(samples)-1].TotalCells() == 0 {
			zeroTotal++
		}
	}
	if _, err := p.samples.Create(dbc, samples); err != nil {
		return nil, db.MapError(op, fmt.Errorf("create samples: %w", err))
	}

	if g.conflicts > 0 {
		p.log.Warn("subject rows disagree with first occurrence; first row kept",
			"conflicting_rows", g.conflicts,
		)
	}
	return &Result{
		Rows:             len(rows),
		Projects:         len(g.projects),
		Subjects:         len(g.subjects),
		Samples:          len(samples),
		SubjectConflicts: g.conflicts,

		SubjectsWithoutResponse: missingResponse,
		ZeroTotalSamples:        zeroTotal,
	}, nil
}
