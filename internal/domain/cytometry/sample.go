package cytometry

import "time"

type Sample struct {
	ID                     uint      `gorm:"primaryKey" json:"id"`
	Name                   string    `gorm:"column:name;not null;index" json:"name"`
	SubjectID              uint      `gorm:"column:subject_id;not null;index" json:"subject_id"`
	Subject                *Subject  `gorm:"foreignKey:SubjectID;references:ID;constraint:OnDelete:RESTRICT" json:"subject,omitempty"`
	ProjectID              uint      `gorm:"column:project_id;not null;index" json:"project_id"`
	Project                *Project  `gorm:"foreignKey:ProjectID;references:ID;constraint:OnDelete:RESTRICT" json:"project,omitempty"`
	Type                   string    `gorm:"column:type;not null;index" json:"type"`
	TimeFromTreatmentStart int       `gorm:"column:time_from_treatment_start;not null;index" json:"time_from_treatment_start"`
	BCell                  int       `gorm:"column:b_cell;not null" json:"b_cell"`
	CD8TCell               int       `gorm:"column:cd8_t_cell;not null" json:"cd8_t_cell"`
	CD4TCell               int       `gorm:"column:cd4_t_cell;not null" json:"cd4_t_cell"`
	NKCell                 int       `gorm:"column:nk_cell;not null" json:"nk_cell"`
	Monocyte               int       `gorm:"column:monocyte;not null" json:"monocyte"`
	CreatedAt              time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Sample) TableName() string { return "sample" }

// Counts returns the five population counts keyed by cell type.
func (s *Sample) Counts() map[CellType]int {
	return map[CellType]int{
		CellB:        s.BCell,
		CellCD8T:     s.CD8TCell,
		CellCD4T:     s.CD4TCell,
		CellNK:       s.NKCell,
		CellMonocyte: s.Monocyte,
	}
}

func (s *Sample) TotalCells() int {
	return s.BCell + s.CD8TCell + s.CD4TCell + s.NKCell + s.Monocyte
}
