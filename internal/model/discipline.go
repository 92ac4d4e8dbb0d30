package model

// Discipline curriculum line item (disciplines)
type Discipline struct {
	DisciplineID       uint     `gorm:"primaryKey;autoIncrement"          json:"discipline_id"`
	ProgramID          uint     `gorm:"not null;index"                    json:"program_id"`
	Title              string   `gorm:"type:varchar(512);not null"        json:"title"`
	Department         string   `gorm:"type:varchar(512);not null"        json:"department"`
	Semesters          IntArray `gorm:"type:integer[]"                    json:"semesters"` // NULL = unspecified
	LectureHours       float64  `gorm:"not null;default:0"                json:"lecture_hours"`
	PracticeHours      float64  `gorm:"not null;default:0"                json:"practice_hours"`
	LabHours           float64  `gorm:"not null;default:0"                json:"lab_hours"`
	ExamHours          float64  `gorm:"not null;default:0"                json:"exam_hours"`
	TestHours          float64  `gorm:"not null;default:0"                json:"test_hours"`
	CourseProjectHours float64  `gorm:"not null;default:0"                json:"course_project_hours"`
	FinalWorkHours     float64  `gorm:"not null;default:0"                json:"final_work_hours"`
	TotalHours         float64  `gorm:"not null;default:0"                json:"total_hours"`
	BaseModel

	Program *Program `gorm:"foreignKey:ProgramID;references:ProgramID" json:"program,omitempty"`
}

// TableName table name
func (Discipline) TableName() string { return "disciplines" }

// SumHours recomputes TotalHours from the seven hour fields.
func (d *Discipline) SumHours() {
	d.TotalHours = d.LectureHours + d.PracticeHours + d.LabHours + d.ExamHours +
		d.TestHours + d.CourseProjectHours + d.FinalWorkHours
}
