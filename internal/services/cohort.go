package services

import (
	"context"
	"strings"

	"github.com/adknaupp/cytometry-manager/internal/data/db"
	"github.com/adknaupp/cytometry-manager/internal/data/repos"
	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
	"github.com/adknaupp/cytometry-manager/internal/resolution"
)

// CohortInput is the criteria of a new cohort. Empty criteria mean Any.
type CohortInput struct {
	Name      string `json:"name" validate:"required,max=255"`
	Condition string `json:"condition" validate:"max=255"`
	Sex       string `json:"sex" validate:"omitempty,oneof=M F Any"`
	Treatment string `json:"treatment" validate:"omitempty,oneof=miraclib phauximab Any"`
}

type CohortService interface {
	Add(ctx context.Context, in CohortInput) (*types.Cohort, error)
	Get(dbc dbctx.Context, id uint) (*types.Cohort, error)
	List(dbc dbctx.Context) ([]*types.Cohort, error)
	Resolve(dbc dbctx.Context, id uint) ([]*types.Subject, error)
	Content(dbc dbctx.Context, id uint, view types.CohortView) (*types.CohortContent, error)
}

type cohortService struct {
	tx      db.TxRunner
	log     *logger.Logger
	cohorts repos.CohortRepo
	engine  *resolution.Engine
}

func NewCohortService(tx db.TxRunner, log *logger.Logger, cohorts repos.CohortRepo, engine *resolution.Engine) CohortService {
	return &cohortService{
		tx:      tx,
		log:     log.With("service", "CohortService"),
		cohorts: cohorts,
		engine:  engine,
	}
}

func (s *cohortService) Add(ctx context.Context, in CohortInput) (*types.Cohort, error) {
	const op = "AddCohort"
	in.Name = strings.TrimSpace(in.Name)
	in.Sex = strings.TrimSpace(in.Sex)
	in.Treatment = strings.TrimSpace(in.Treatment)
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	sex, err := cytometry.ParseSexCriterion(in.Sex)
	if err != nil {
		return nil, cytometry.Validation(op, err.Error())
	}
	treatment, err := cytometry.ParseTreatmentCriterion(in.Treatment)
	if err != nil {
		return nil, cytometry.Validation(op, err.Error())
	}
	cohort := &types.Cohort{
		Name:      in.Name,
		Condition: cytometry.ParseConditionCriterion(in.Condition),
		Sex:       sex,
		Treatment: treatment,
	}
	if _, err := s.cohorts.Create(dbctx.Context{Ctx: ctx}, []*types.Cohort{cohort}); err != nil {
		return nil, db.MapError(op, err)
	}
	s.log.Info("cohort added",
		"cohort_id", cohort.ID,
		"condition", cohort.Condition,
		"sex", cohort.Sex,
		"treatment", cohort.Treatment,
	)
	return cohort, nil
}

func (s *cohortService) Get(dbc dbctx.Context, id uint) (*types.Cohort, error) {
	c, err := s.cohorts.GetByID(dbc, id)
	if err != nil {
		return nil, db.MapError("GetCohort", err)
	}
	if c == nil {
		return nil, cytometry.NotFound("GetCohort", "cohort", id)
	}
	return c, nil
}

func (s *cohortService) List(dbc dbctx.Context) ([]*types.Cohort, error) {
	out, err := s.cohorts.List(dbc)
	if err != nil {
		return nil, db.MapError("ListCohorts", err)
	}
	return out, nil
}

func (s *cohortService) Resolve(dbc dbctx.Context, id uint) ([]*types.Subject, error) {
	return s.engine.ResolveCohort(dbc, id)
}

// Content renders one view of a cohort from a single consistent read.
func (s *cohortService) Content(dbc dbctx.Context, id uint, view types.CohortView) (*types.CohortContent, error) {
	out := &types.CohortContent{View: view}
	err := s.read(dbc, func(dbc dbctx.Context) error {
		cohort, err := s.Get(dbc, id)
		if err != nil {
			return err
		}
		switch view {
		case cytometry.CohortDetails:
			out.Cohort = cohort
		case cytometry.CohortSubjects:
			subjects, err := s.engine.CohortSubjects(dbc, cohort)
			if err != nil {
				return err
			}
			out.Subjects = subjects
		case cytometry.CohortSamples:
			samples, err := s.engine.CohortSamples(dbc, cohort)
			if err != nil {
				return err
			}
			out.Samples = samples
		default:
			return cytometry.Validationf("CohortContent", "unknown cohort view %s", view)
		}
		return nil
	})
	if err != nil {
		return nil, err
	}
	return out, nil
}

func (s *cohortService) read(dbc dbctx.Context, fn func(dbc dbctx.Context) error) error {
	if dbc.Tx != nil {
		return fn(dbc)
	}
	return s.tx.InReadTx(dbc.Context(), fn)
}
