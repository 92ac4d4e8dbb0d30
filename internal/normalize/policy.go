// Package normalize turns resolved cell text into typed domain values.
//
// Everything here is a pure function of its input and the Policy; the
// institution-specific constants live in configuration.
package normalize

import (
	"strings"

	"github.com/kama950028/KadrSp/config"
)

// Policy institution accounting rules applied during normalization
type Policy struct {
	Stopwords          map[string]struct{}
	PlaceholderTitles  []string
	PracticumKeywords  []string
	FinalWorkKeywords  []string
	DefaultDepartment  string
	FinalWorkHours     float64
	ExamHoursPerExam   float64
	TestHoursPerPass   float64
	CourseProjectHours float64
}

// NewPolicy builds a Policy from ingestion settings
func NewPolicy(cfg config.IngestConfig) Policy {
	stop := make(map[string]struct{}, len(cfg.Stopwords))
	for _, w := range cfg.Stopwords {
		stop[Fold(w)] = struct{}{}
	}
	return Policy{
		Stopwords:          stop,
		PlaceholderTitles:  foldAll(cfg.PlaceholderTitles),
		PracticumKeywords:  foldAll(cfg.PracticumKeywords),
		FinalWorkKeywords:  foldAll(cfg.FinalWorkKeywords),
		DefaultDepartment:  cfg.DefaultDepartment,
		FinalWorkHours:     cfg.FinalWorkHours,
		ExamHoursPerExam:   cfg.ExamHoursPerExam,
		TestHoursPerPass:   cfg.TestHoursPerPass,
		CourseProjectHours: cfg.CourseProjectHours,
	}
}

// DefaultPolicy the built-in policy
func DefaultPolicy() Policy {
	return NewPolicy(config.DefaultIngest())
}

func foldAll(in []string) []string {
	out := make([]string, 0, len(in))
	for _, s := range in {
		if s = Fold(s); s != "" {
			out = append(out, s)
		}
	}
	return out
}

func containsAny(s string, needles []string) bool {
	for _, n := range needles {
		if strings.Contains(s, n) {
			return true
		}
	}
	return false
}
