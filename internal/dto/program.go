package dto

// ── Programs ──

// CreateProgramRequest create a program by full name
type CreateProgramRequest struct {
	Name           string `json:"name" binding:"required,max=512"`
	EnrollmentYear int    `json:"year" binding:"omitempty,min=1900,max=2100"`
}

// ProgramResponse program with its curriculum size
type ProgramResponse struct {
	ID              uint   `json:"id"`
	Name            string `json:"name"`
	ShortCode       string `json:"short_code"`
	EnrollmentYear  int    `json:"enrollment_year"`
	DisciplineCount int64  `json:"discipline_count"`
}

// DisciplineResponse one curriculum line item
type DisciplineResponse struct {
	ID                 uint    `json:"id"`
	Title              string  `json:"title"`
	Department         string  `json:"department"`
	Semesters          []int   `json:"semesters"` // null = unspecified
	LectureHours       float64 `json:"lecture_hours"`
	PracticeHours      float64 `json:"practice_hours"`
	LabHours           float64 `json:"lab_hours"`
	ExamHours          float64 `json:"exam_hours"`
	TestHours          float64 `json:"test_hours"`
	CourseProjectHours float64 `json:"course_project_hours"`
	FinalWorkHours     float64 `json:"final_work_hours"`
	TotalHours         float64 `json:"total_hours"`
}

// CurriculumResponse a program's disciplines
type CurriculumResponse struct {
	Program     ProgramResponse      `json:"program"`
	Disciplines []DisciplineResponse `json:"disciplines"`
}

// DepartmentHours hour totals of one department within a program
type DepartmentHours struct {
	Department      string  `json:"department"`
	DisciplineCount int     `json:"discipline_count"`
	LectureHours    float64 `json:"lecture_hours"`
	PracticeHours   float64 `json:"practice_hours"`
	LabHours        float64 `json:"lab_hours"`
	ControlHours    float64 `json:"control_hours"` // exam + test + course project + final work
	TotalHours      float64 `json:"total_hours"`
}

// DepartmentSummaryResponse per-department report of one program
type DepartmentSummaryResponse struct {
	ProgramID   uint              `json:"program_id"`
	ProgramName string            `json:"program_name"`
	Departments []DepartmentHours `json:"departments"`
	TotalHours  float64           `json:"total_hours"`
}
