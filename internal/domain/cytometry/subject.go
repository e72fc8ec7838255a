package cytometry

import "time"

type Subject struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	Name      string    `gorm:"column:name;not null;index" json:"name"`
	Condition string    `gorm:"column:condition;not null;index" json:"condition"`
	Age       int       `gorm:"column:age;not null" json:"age"`
	Sex       Sex       `gorm:"column:sex;type:varchar(3);not null;index" json:"sex"`
	Treatment string    `gorm:"column:treatment;index" json:"treatment"`
	Response  *Response `gorm:"column:response;type:varchar(8)" json:"response"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Subject) TableName() string { return "subject" }

// HasResponse reports whether a treatment response was recorded.
func (s *Subject) HasResponse() bool {
	return s != nil && s.Response != nil && *s.Response != ""
}

// SameAttributes compares everything but identity and name.
func (s *Subject) SameAttributes(o *Subject) bool {
	if s == nil || o == nil {
		return s == o
	}
	if s.Condition != o.Condition || s.Age != o.Age || s.Sex != o.Sex || s.Treatment != o.Treatment {
		return false
	}
	switch {
	case s.Response == nil && o.Response == nil:
		return true
	case s.Response == nil || o.Response == nil:
		return false
	default:
		return *s.Response == *o.Response
	}
}
