package cytometry

import (
	"fmt"
	"strings"
)

// CohortView selects which content of a cohort to render.
type CohortView int

const (
	CohortDetails CohortView = iota + 1
	CohortSubjects
	CohortSamples
)

func (v CohortView) String() string {
	switch v {
	case CohortDetails:
		return "details"
	case CohortSubjects:
		return "subjects"
	case CohortSamples:
		return "samples"
	default:
		return fmt.Sprintf("CohortView(%d)", int(v))
	}
}

func ParseCohortView(raw string) (CohortView, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "details":
		return CohortDetails, nil
	case "subjects":
		return CohortSubjects, nil
	case "samples":
		return CohortSamples, nil
	default:
		return 0, Validationf("ParseCohortView", "unknown cohort view %q", raw)
	}
}

// DatasetView selects which content of a dataset to render.
type DatasetView int

const (
	DatasetDetails DatasetView = iota + 1
	DatasetSamples
	DatasetVisualizations
)

func (v DatasetView) String() string {
	switch v {
	case DatasetDetails:
		return "details"
	case DatasetSamples:
		return "samples"
	case DatasetVisualizations:
		return "visualizations"
	default:
		return fmt.Sprintf("DatasetView(%d)", int(v))
	}
}

func ParseDatasetView(raw string) (DatasetView, error) {
	switch strings.ToLower(strings.TrimSpace(raw)) {
	case "details":
		return DatasetDetails, nil
	case "samples":
		return DatasetSamples, nil
	case "visualizations":
		return DatasetVisualizations, nil
	default:
		return 0, Validationf("ParseDatasetView", "unknown dataset view %q", raw)
	}
}

// CohortContent is the result of rendering one CohortView. Exactly one of the
// payload fields is set, matching View.
type CohortContent struct {
	View     CohortView `json:"-"`
	Cohort   *Cohort    `json:"cohort,omitempty"`
	Subjects []*Subject `json:"subjects,omitempty"`
	Samples  []*Sample  `json:"samples,omitempty"`
}

// DatasetSampleRow is a dataset sample joined with its subject attributes.
type DatasetSampleRow struct {
	SampleID    uint      `json:"sample_id"`
	Name        string    `json:"name"`
	SubjectID   uint      `json:"subject_id"`
	SubjectName string    `json:"subject_name"`
	Sex         Sex       `json:"sex"`
	Response    *Response `json:"response"`
	Type        string    `json:"type"`
	Time        int       `json:"time_from_treatment_start"`
}

// DatasetDetail is a dataset together with its cohort's name.
type DatasetDetail struct {
	Dataset    *Dataset `json:"dataset"`
	CohortName string   `json:"cohort_name"`
}

type DatasetContent struct {
	View    DatasetView        `json:"-"`
	Detail  *DatasetDetail     `json:"detail,omitempty"`
	Samples []DatasetSampleRow `json:"samples,omitempty"`
	Report  []ReportRow        `json:"report,omitempty"`
}

// DatasetSummary is a dataset listing entry with its live member count.
type DatasetSummary struct {
	Dataset     *Dataset `json:"dataset"`
	CohortName  string   `json:"cohort_name"`
	SampleCount int      `json:"sample_count"`
	Err         string   `json:"error,omitempty"`
}

// Option is a search result entry.
type Option struct {
	Value string `json:"value"`
	Label string `json:"label"`
}
