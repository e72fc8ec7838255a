package app

import (
	"gorm.io/gorm"

	"github.com/adknaupp/cytometry-manager/internal/data/repos"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
)

type Repos struct {
	Project   repos.ProjectRepo
	Subject   repos.SubjectRepo
	Sample    repos.SampleRepo
	Cohort    repos.CohortRepo
	Dataset   repos.DatasetRepo
	IngestRun repos.IngestRunRepo
}

func wireRepos(db *gorm.DB, log *logger.Logger) Repos {
	log.Info("Wiring repos...")
	return Repos{
		Project:   repos.NewProjectRepo(db, log),
		Subject:   repos.NewSubjectRepo(db, log),
		Sample:    repos.NewSampleRepo(db, log),
		Cohort:    repos.NewCohortRepo(db, log),
		Dataset:   repos.NewDatasetRepo(db, log),
		IngestRun: repos.NewIngestRunRepo(db, log),
	}
}
