package dto

// ── Ingestion ──

// InstructorImportRequest form fields accompanying a staffing document
type InstructorImportRequest struct {
	// EnrollmentYear year for programs first seen in this document;
	// 0 falls back to a year in the filename, then the current year
	EnrollmentYear int `form:"enrollment_year" binding:"omitempty,min=1900,max=2100"`
}

// ImportSummary result of one committed ingestion run
type ImportSummary struct {
	RunID         string   `json:"run_id"`
	Status        string   `json:"status"`
	ImportedCount int      `json:"imported_count"`
	ProgramID     uint     `json:"program_id,omitempty"`
	ProgramName   string   `json:"program_name,omitempty"`
	Disciplines   []string `json:"disciplines,omitempty"`
	Departments   []string `json:"departments"`
	Created       int      `json:"created"`
	Updated       int      `json:"updated"`
	Skipped       int      `json:"skipped"`
}

// ImportAccepted returned when a run continues in the background
type ImportAccepted struct {
	RunID  string `json:"run_id"`
	Status string `json:"status"`
}

// ImportRunResponse persisted state of a run
type ImportRunResponse struct {
	RunID        string   `json:"run_id"`
	Kind         string   `json:"kind"`
	Filename     string   `json:"filename"`
	Stage        string   `json:"stage"`
	Status       string   `json:"status"`
	ProgramID    *uint    `json:"program_id,omitempty"`
	ProgramName  string   `json:"program_name,omitempty"`
	Created      int      `json:"created"`
	Updated      int      `json:"updated"`
	Skipped      int      `json:"skipped"`
	Departments  []string `json:"departments"`
	ErrorKind    string   `json:"error_kind,omitempty"`
	ErrorMessage string   `json:"error_message,omitempty"`
	Advice       string   `json:"advice,omitempty"`
	CreatedAt    string   `json:"created_at"`
	FinishedAt   string   `json:"finished_at,omitempty"`
}
