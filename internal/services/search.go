package services

import (
	"strconv"
	"strings"

	"github.com/adknaupp/cytometry-manager/internal/data/db"
	"github.com/adknaupp/cytometry-manager/internal/data/repos"
	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

// SearchService serves value/label options for pickers. Matching is a
// case-insensitive substring on the name; an empty query returns the first
// entries by name.
type SearchService interface {
	Projects(dbc dbctx.Context, q string, limit int) ([]types.Option, error)
	Subjects(dbc dbctx.Context, q string, limit int) ([]types.Option, error)
	Cohorts(dbc dbctx.Context, q string, limit int) ([]types.Option, error)
	SampleTypes(dbc dbctx.Context, q string, limit int) ([]types.Option, error)
}

type searchService struct {
	log      *logger.Logger
	projects repos.ProjectRepo
	subjects repos.SubjectRepo
	samples  repos.SampleRepo
	cohorts  repos.CohortRepo
}

func NewSearchService(
	log *logger.Logger,
	projects repos.ProjectRepo,
	subjects repos.SubjectRepo,
	samples repos.SampleRepo,
	cohorts repos.CohortRepo,
) SearchService {
	return &searchService{
		log:      log.With("service", "SearchService"),
		projects: projects,
		subjects: subjects,
		samples:  samples,
		cohorts:  cohorts,
	}
}

func (s *searchService) Projects(dbc dbctx.Context, q string, limit int) ([]types.Option, error) {
	rows, err := s.projects.Search(dbc, strings.TrimSpace(q), limit)
	if err != nil {
		return nil, db.MapError("SearchProjects", err)
	}
	out := make([]types.Option, 0, len(rows))
	for _, p := range rows {
		out = append(out, idOption(p.ID, p.Name))
	}
	return out, nil
}

func (s *searchService) Subjects(dbc dbctx.Context, q string, limit int) ([]types.Option, error) {
	rows, err := s.subjects.Search(dbc, strings.TrimSpace(q), limit)
	if err != nil {
		return nil, db.MapError("SearchSubjects", err)
	}
	out := make([]types.Option, 0, len(rows))
	for _, subj := range rows {
		out = append(out, idOption(subj.ID, subj.Name))
	}
	return out, nil
}

func (s *searchService) Cohorts(dbc dbctx.Context, q string, limit int) ([]types.Option, error) {
	rows, err := s.cohorts.Search(dbc, strings.TrimSpace(q), limit)
	if err != nil {
		return nil, db.MapError("SearchCohorts", err)
	}
	out := make([]types.Option, 0, len(rows))
	for _, c := range rows {
		out = append(out, idOption(c.ID, c.Name))
	}
	return out, nil
}

func (s *searchService) SampleTypes(dbc dbctx.Context, q string, limit int) ([]types.Option, error) {
	rows, err := s.samples.DistinctTypes(dbc, strings.TrimSpace(q), limit)
	if err != nil {
		return nil, db.MapError("SearchSampleTypes", err)
	}
	out := make([]types.Option, 0, len(rows))
	for _, t := range rows {
		out = append(out, types.Option{Value: t, Label: t})
	}
	return out, nil
}

func idOption(id uint, name string) types.Option {
	return types.Option{Value: strconv.FormatUint(uint64(id), 10), Label: name}
}
