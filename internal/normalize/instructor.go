package normalize

import (
	"fmt"
	"strconv"
	"strings"
	"unicode/utf8"

	"github.com/kama950028/KadrSp/internal/model"
	pkgerrors "github.com/kama950028/KadrSp/pkg/errors"
)

const maxNameLen = 255

// InstructorRow resolved cells of one staffing-table row
type InstructorRow struct {
	Row                    int
	FullName               string
	Position               string
	EducationLevel         string
	Specialty              string
	Degree                 string
	AcademicTitle          string
	TotalExperience        string
	TeachingExperience     string
	ProfessionalExperience string
	Disciplines            string
	Qualifications         string
	Retraining             string
	Programs               string
}

// InstructorRecord normalized instructor with its split lists
type InstructorRecord struct {
	Row            int
	Instructor     model.Instructor
	Qualifications []model.Qualification
	Retrainings    []model.Retraining
	Disciplines    []string
	Programs       []string
}

// ParseExperience integer years from a cell that is purely digits, else 0
func ParseExperience(cell string) int {
	s := strings.TrimSpace(cell)
	if s == "" {
		return 0
	}
	for _, r := range s {
		if r < '0' || r > '9' {
			return 0
		}
	}
	n, err := strconv.Atoi(s)
	if err != nil {
		return 0
	}
	return n
}

// Instructor normalizes one row. An empty or oversized name is a row error.
func (p Policy) Instructor(in InstructorRow) (*InstructorRecord, error) {
	name := CleanText(in.FullName)
	if name == "" {
		return nil, &pkgerrors.RecordNormalizationError{Row: in.Row, Reason: "empty full name"}
	}
	if utf8.RuneCountInString(name) > maxNameLen {
		return nil, &pkgerrors.RecordNormalizationError{
			Row:    in.Row,
			Reason: fmt.Sprintf("full name longer than %d characters", maxNameLen),
		}
	}

	creds := SplitCredentials(in.Qualifications)
	creds.Retrainings = append(creds.Retrainings, SplitRetrainings(in.Retraining)...)

	rec := &InstructorRecord{
		Row: in.Row,
		Instructor: model.Instructor{
			FullName:               name,
			NameKey:                NameKey(name),
			Position:               CleanText(in.Position),
			EducationLevel:         CleanText(in.EducationLevel),
			Specialty:              Optional(in.Specialty),
			AcademicDegree:         Optional(in.Degree),
			AcademicTitle:          Optional(in.AcademicTitle),
			TotalExperience:        ParseExperience(in.TotalExperience),
			TeachingExperience:     ParseExperience(in.TeachingExperience),
			ProfessionalExperience: ParseExperience(in.ProfessionalExperience),
			DisciplinesRaw:         CleanText(in.Disciplines),
			QualificationsRaw:      joinNonEmpty("; ", in.Qualifications, in.Retraining),
			ProgramsRaw:            CleanText(in.Programs),
		},
		Qualifications: creds.Qualifications,
		Retrainings:    dedupeRetrainings(creds.Retrainings),
		Disciplines:    SplitList(in.Disciplines),
		Programs:       SplitList(in.Programs),
	}
	return rec, nil
}

func dedupeRetrainings(in []model.Retraining) []model.Retraining {
	seen := make(map[string]struct{}, len(in))
	out := in[:0]
	for _, r := range in {
		k := Fold(r.ProgramName) + "|" + strconv.Itoa(r.Year)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, r)
	}
	return out
}

func joinNonEmpty(sep string, parts ...string) string {
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = CleanText(p); p != "" {
			out = append(out, p)
		}
	}
	return strings.Join(out, sep)
}
