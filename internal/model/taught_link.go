package model

import "time"

// TaughtLink records that an instructor teaches a discipline (taught_links).
// At most one row per (instructor_id, discipline_id).
type TaughtLink struct {
	TaughtLinkID uint      `gorm:"primaryKey;autoIncrement"                                  json:"taught_link_id"`
	InstructorID uint      `gorm:"not null;uniqueIndex:uq_taught_links_pair"                 json:"instructor_id"`
	DisciplineID uint      `gorm:"not null;uniqueIndex:uq_taught_links_pair;index"           json:"discipline_id"`
	CreatedAt    time.Time `gorm:"not null;default:CURRENT_TIMESTAMP"                        json:"created_at"`

	Discipline *Discipline `gorm:"foreignKey:DisciplineID;references:DisciplineID" json:"discipline,omitempty"`
}

// TableName table name
func (TaughtLink) TableName() string { return "taught_links" }
