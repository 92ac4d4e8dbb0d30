package model

// Instructor teaching staff member (instructors).
// NameKey is the normalized full name and carries the uniqueness constraint.
type Instructor struct {
	InstructorID           uint   `gorm:"primaryKey;autoIncrement"                 json:"instructor_id"`
	FullName               string `gorm:"type:varchar(255);not null"               json:"full_name"`
	NameKey                string `gorm:"type:varchar(255);not null;uniqueIndex"   json:"-"`
	Position               string `gorm:"type:varchar(255)"                        json:"position"`
	EducationLevel         string `gorm:"type:text"                                json:"education_level"`
	Specialty              string `gorm:"type:text"                                json:"specialty,omitempty"`
	AcademicDegree         string `gorm:"type:varchar(255)"                        json:"academic_degree,omitempty"`
	AcademicTitle          string `gorm:"type:varchar(255)"                        json:"academic_title,omitempty"`
	TotalExperience        int    `gorm:"not null;default:0"                       json:"total_experience"`
	TeachingExperience     int    `gorm:"not null;default:0"                       json:"teaching_experience"`
	ProfessionalExperience int    `gorm:"not null;default:0"                       json:"professional_experience"`
	DisciplinesRaw         string `gorm:"type:text"                                json:"disciplines_raw,omitempty"`
	QualificationsRaw      string `gorm:"type:text"                                json:"qualifications_raw,omitempty"`
	ProgramsRaw            string `gorm:"type:text"                                json:"programs_raw,omitempty"`
	BaseModel

	Qualifications []Qualification `gorm:"foreignKey:InstructorID;constraint:OnDelete:CASCADE" json:"qualifications,omitempty"`
	Retrainings    []Retraining    `gorm:"foreignKey:InstructorID;constraint:OnDelete:CASCADE" json:"retrainings,omitempty"`
}

// TableName table name
func (Instructor) TableName() string { return "instructors" }

// Qualification refresher course (qualifications)
type Qualification struct {
	QualificationID uint   `gorm:"primaryKey;autoIncrement"   json:"qualification_id"`
	InstructorID    uint   `gorm:"not null;index"             json:"instructor_id"`
	CourseName      string `gorm:"type:text;not null"         json:"course_name"`
	Year            int    `gorm:"not null"                   json:"year"`
}

// TableName table name
func (Qualification) TableName() string { return "qualifications" }

// Retraining professional retraining program (retrainings)
type Retraining struct {
	RetrainingID uint   `gorm:"primaryKey;autoIncrement"   json:"retraining_id"`
	InstructorID uint   `gorm:"not null;index"             json:"instructor_id"`
	ProgramName  string `gorm:"type:text;not null"         json:"program_name"`
	Year         int    `gorm:"not null"                   json:"year"`
}

// TableName table name
func (Retraining) TableName() string { return "retrainings" }

// InstructorProgram instructor ↔ program join (instructor_programs)
type InstructorProgram struct {
	InstructorID uint `gorm:"primaryKey" json:"instructor_id"`
	ProgramID    uint `gorm:"primaryKey" json:"program_id"`
}

// TableName table name
func (InstructorProgram) TableName() string { return "instructor_programs" }
