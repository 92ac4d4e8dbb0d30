package dto

// ── Instructors ──

// CredentialResponse a qualification or retraining entry
type CredentialResponse struct {
	Name string `json:"name"`
	Year int    `json:"year"`
}

// TaughtDisciplineResponse a discipline the instructor is linked to
type TaughtDisciplineResponse struct {
	ID          uint    `json:"id"`
	Title       string  `json:"title"`
	ProgramID   uint    `json:"program_id"`
	ProgramCode string  `json:"program_code,omitempty"`
	TotalHours  float64 `json:"total_hours"`
}

// InstructorDetailResponse instructor with credentials and links
type InstructorDetailResponse struct {
	ID                     uint                       `json:"id"`
	FullName               string                     `json:"full_name"`
	Position               string                     `json:"position"`
	EducationLevel         string                     `json:"education_level"`
	Specialty              string                     `json:"specialty,omitempty"`
	AcademicDegree         string                     `json:"academic_degree,omitempty"`
	AcademicTitle          string                     `json:"academic_title,omitempty"`
	TotalExperience        int                        `json:"total_experience"`
	TeachingExperience     int                        `json:"teaching_experience"`
	ProfessionalExperience int                        `json:"professional_experience"`
	Qualifications         []CredentialResponse       `json:"qualifications"`
	Retrainings            []CredentialResponse       `json:"retrainings"`
	Programs               []ProgramResponse          `json:"programs"`
	Disciplines            []TaughtDisciplineResponse `json:"disciplines"`
}
