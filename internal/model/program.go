package model

// Program curriculum track (programs)
type Program struct {
	ProgramID      uint   `gorm:"primaryKey;autoIncrement"                 json:"program_id"`
	Name           string `gorm:"type:varchar(512);not null;uniqueIndex"   json:"name"`
	ShortCode      string `gorm:"type:varchar(128);not null;uniqueIndex"   json:"short_code"`
	EnrollmentYear int    `gorm:"not null;default:0"                       json:"enrollment_year"`
	BaseModel

	Disciplines []Discipline `gorm:"foreignKey:ProgramID;constraint:OnDelete:CASCADE" json:"disciplines,omitempty"`
}

// TableName table name
func (Program) TableName() string { return "programs" }
