package repos

import (
	"github.com/adknaupp/cytometry-manager/internal/data/repos/cytometry"
	"github.com/adknaupp/cytometry-manager/internal/platform/logger"
	"gorm.io/gorm"
)

type ProjectRepo = cytometry.ProjectRepo
type SubjectRepo = cytometry.SubjectRepo
type SampleRepo = cytometry.SampleRepo
type CohortRepo = cytometry.CohortRepo
type DatasetRepo = cytometry.DatasetRepo
type IngestRunRepo = cytometry.IngestRunRepo

type SubjectFilter = cytometry.SubjectFilter
type SampleFilter = cytometry.SampleFilter

func NewProjectRepo(db *gorm.DB, baseLog *logger.Logger) ProjectRepo {
	return cytometry.NewProjectRepo(db, baseLog)
}
func NewSubjectRepo(db *gorm.DB, baseLog *logger.Logger) SubjectRepo {
	return cytometry.NewSubjectRepo(db, baseLog)
}
func NewSampleRepo(db *gorm.DB, baseLog *logger.Logger) SampleRepo {
	return cytometry.NewSampleRepo(db, baseLog)
}
func NewCohortRepo(db *gorm.DB, baseLog *logger.Logger) CohortRepo {
	return cytometry.NewCohortRepo(db, baseLog)
}
func NewDatasetRepo(db *gorm.DB, baseLog *logger.Logger) DatasetRepo {
	return cytometry.NewDatasetRepo(db, baseLog)
}
func NewIngestRunRepo(db *gorm.DB, baseLog *logger.Logger) IngestRunRepo {
	return cytometry.NewIngestRunRepo(db, baseLog)
}
