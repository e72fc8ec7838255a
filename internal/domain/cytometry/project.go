package cytometry

import "time"

type Project struct {
	ID         uint      `gorm:"primaryKey" json:"id"`
	Name       string    `gorm:"column:name;not null;index" json:"name"`
	NumSamples int       `gorm:"column:num_samples;not null;default:0" json:"num_samples"`
	CreatedAt  time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt  time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (Project) TableName() string { return "project" }
