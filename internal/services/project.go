package services

import (
	"github.com/adknaupp/cytometry-manager/internal/data/db"
	"github.com/adknaupp/cytometry-manager/internal/data/repos"
	types "github.com/adknaupp/cytometry-manager/internal/domain"
	"github.com/adknaupp/cytometry-manager/internal/domain/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/platform/dbctx"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

type ProjectService interface {
	List(dbc dbctx.Context) ([]*types.Project, error)
	Get(dbc dbctx.Context, id uint) (*types.Project, error)
}

type projectService struct {
	log      *logger.Logger
	projects repos.ProjectRepo
}

func NewProjectService(log *logger.Logger, projects repos.ProjectRepo) ProjectService {
	return &projectService{
		log:      log.With("service", "ProjectService"),
		projects: projects,
	}
}

func (s *projectService) List(dbc dbctx.Context) ([]*types.Project, error) {
	out, err := s.projects.List(dbc)
	if err != nil {
		return nil, db.MapError("ListProjects", err)
	}
	return out, nil
}

func (s *projectService) Get(dbc dbctx.Context, id uint) (*types.Project, error) {
	p, err := s.projects.GetByID(dbc, id)
	if err != nil {
		return nil, db.MapError("GetProject", err)
	}
	if p == nil {
		return nil, cytometry.NotFound("GetProject", "project", id)
	}
	return p, nil
}
