package cytometry

import "time"

// Cohort stores only its criteria. Members are resolved on every read.
type Cohort struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;index" json:"name"`
	Condition string    `gorm:"column:condition;not null;default:'Any'" json:"condition"`
	Sex       Sex       `gorm:"column:sex;type:varchar(3);not null;default:'Any'" json:"sex"`
	Treatment Treatment `gorm:"column:treatment;type:varchar(32);not null;default:'Any'" json:"treatment"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
}

func (Cohort) TableName() string { return "cohort" }

func (c *Cohort) Criteria() CohortCriteria {
	return CohortCriteria{Condition: c.Condition, Sex: c.Sex, Treatment: c.Treatment}
}
