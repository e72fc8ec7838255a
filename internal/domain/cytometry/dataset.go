package cytometry

import "time"

// Dataset layers sample-level filters over a cohort. CohortID carries no
// database constraint so that a missing cohort is observed at resolution time.
type Dataset struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	Name                   string    `gorm:"column:name;not null;index" json:"name"`
	CohortID               uint      `gorm:"column:cohort_id;not null;index" json:"cohort_id"`
	SampleType             *string   `gorm:"column:sample_type" json:"sample_type"`
	TimeFromTreatmentStart *int      `gorm:"column:time_from_treatment_start" json:"time_from_treatment_start"`
	CreatedAt              time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Dataset) TableName() string { return "dataset" }

func (d *Dataset) Criteria() DatasetCriteria {
	return DatasetCriteria{
		CohortID:               d.CohortID,
		SampleType:             d.SampleType,
		TimeFromTreatmentStart: d.TimeFromTreatmentStart,
	}
}
