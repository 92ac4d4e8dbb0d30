package model

import "time"

// Import kinds
const (
	ImportKindInstructors = "instructors"
	ImportKindCurriculum  = "curriculum"
)

// Pipeline stages, in order. A run ends in either committed or failed.
const (
	StageReceived   = "received"
	StageParsed     = "parsed"
	StageResolved   = "resolved"
	StageNormalized = "normalized"
	StageReconciled = "reconciled"
	StageCommitted  = "committed"
	StageFailed     = "failed"
)

// Run status
const (
	RunStatusPending = "pending"
	RunStatusSuccess = "success"
	RunStatusError   = "error"
)

// ImportRun one ingestion attempt (import_runs)
type ImportRun struct {
	ImportRunID  string     `gorm:"type:uuid;primaryKey"                    json:"import_run_id"`
	Kind         string     `gorm:"type:varchar(32);not null;index"         json:"kind"`
	Filename     string     `gorm:"type:varchar(512);not null"              json:"filename"`
	Stage        string     `gorm:"type:varchar(32);not null"               json:"stage"`
	Status       string     `gorm:"type:varchar(32);not null"               json:"status"`
	ProgramID    *uint      `                                               json:"program_id,omitempty"`
	ProgramName  string     `gorm:"type:varchar(512)"                       json:"program_name,omitempty"`
	Created      int        `gorm:"not null;default:0"                      json:"created"`
	Updated      int        `gorm:"not null;default:0"                      json:"updated"`
	Skipped      int        `gorm:"not null;default:0"                      json:"skipped"`
	Departments  string     `gorm:"type:text"                               json:"departments,omitempty"`
	ErrorKind    string     `gorm:"type:varchar(64)"                        json:"error_kind,omitempty"`
	ErrorMessage string     `gorm:"type:text"                               json:"error_message,omitempty"`
	Advice       string     `gorm:"type:text"                               json:"advice,omitempty"`
	FinishedAt   *time.Time `                                               json:"finished_at,omitempty"`
	BaseModel
}

// TableName table name
func (ImportRun) TableName() string { return "import_runs" }

// Finished reports whether the run reached a terminal stage.
func (r *ImportRun) Finished() bool {
	return r.Stage == StageCommitted || r.Stage == StageFailed
}
