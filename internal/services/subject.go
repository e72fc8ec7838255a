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
)

type SubjectInput struct {
	Name      string `json:"name" validate:"required,max=255"`
	Condition string `json:"condition" validate:"required,max=255"`
	Age       int    `json:"age" validate:"gte=0"`
	Sex       string `json:"sex" validate:"required,oneof=M F"`
	Treatment string `json:"treatment" validate:"max=255"`
	Response  string `json:"response" validate:"omitempty,oneof=yes no"`
}

type SubjectService interface {
	Add(ctx context.Context, in SubjectInput) (*types.Subject, error)
	Get(dbc dbctx.Context, id uint) (*types.Subject, error)
	List(dbc dbctx.Context, filter repos.SubjectFilter) ([]*types.Subject, error)
}

type subjectService struct {
	log      *logger.Logger
	lock     IngestLock
	subjects repos.SubjectRepo
}

func NewSubjectService(log *logger.Logger, lock IngestLock, subjects repos.SubjectRepo) SubjectService {
	return &subjectService{
		log:      log.With("service", "SubjectService"),
		lock:     lock,
		subjects: subjects,
	}
}

func (s *subjectService) Add(ctx context.Context, in SubjectInput) (*types.Subject, error) {
	const op = "AddSubject"
	in.Name = strings.TrimSpace(in.Name)
	in.Condition = strings.TrimSpace(in.Condition)
	in.Treatment = strings.TrimSpace(in.Treatment)
	if err := validateInput(op, in); err != nil {
		return nil, err
	}
	if err := guardWrites(ctx, s.lock, op); err != nil {
		return nil, err
	}
	resp, err := cytometry.ParseResponse(in.Response)
	if err != nil {
		return nil, cytometry.Validation(op, err.Error())
	}
	subj := &types.Subject{
		Name:      in.Name,
		Condition: in.Condition,
		Age:       in.Age,
		Sex:       cytometry.Sex(in.Sex),
		Treatment: in.Treatment,
		Response:  resp,
	}
	if _, err := s.subjects.Create(dbctx.Context{Ctx: ctx}, []*types.Subject{subj}); err != nil {
		return nil, db.MapError(op, err)
	}
	s.log.Info("subject added", "subject_id", subj.ID, "name", subj.Name)
	return subj, nil
}

func (s *subjectService) Get(dbc dbctx.Context, id uint) (*types.Subject, error) {
	subj, err := s.subjects.GetByID(dbc, id)
	if err != nil {
		return nil, db.MapError("GetSubject", err)
	}
	if subj == nil {
		return nil, cytometry.NotFound("GetSubject", "subject", id)
	}
	return subj, nil
}

func (s *subjectService) List(dbc dbctx.Context, filter repos.SubjectFilter) ([]*types.Subject, error) {
	out, err := s.subjects.List(dbc, filter)
	if err != nil {
		return nil, db.MapError("ListSubjects", err)
	}
	return out, nil
}
