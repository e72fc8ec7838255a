package domain

import "github.com/adknaupp/cytometry-manager/internal/domain/cytometry"

type (
	Project   = cytometry.Project
	Subject   = cytometry.Subject
	Sample    = cytometry.Sample
	Cohort    = cytometry.Cohort
	Dataset   = cytometry.Dataset
	IngestRun = cytometry.IngestRun

	Sex       = cytometry.Sex
	Response  = cytometry.Response
	Treatment = cytometry.Treatment
	CellType  = cytometry.CellType

	CohortCriteria  = cytometry.CohortCriteria
	DatasetCriteria = cytometry.DatasetCriteria
	Predicate       = cytometry.Predicate
	ReportRow       = cytometry.ReportRow

	CohortView       = cytometry.CohortView
	DatasetView      = cytometry.DatasetView
	CohortContent    = cytometry.CohortContent
	DatasetContent   = cytometry.DatasetContent
	DatasetDetail    = cytometry.DatasetDetail
	DatasetSampleRow = cytometry.DatasetSampleRow
	DatasetSummary   = cytometry.DatasetSummary
	Option           = cytometry.Option
)

// Models returns every persisted entity in migration order.
func Models() []any {
	return []any{
		&Project{},
		&Subject{},
		&Sample{},
		&Cohort{},
		&Dataset{},
		&IngestRun{},
	}
}
