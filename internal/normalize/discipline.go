package normalize

import (
	"fmt"
	"unicode/utf8"

	"github.com/kama950028/KadrSp/internal/model"
	pkgerrors "github.com/kama950028/KadrSp/pkg/errors"
)

const maxTitleLen = 512

// Line-item kinds with their own hour accounting
const (
	KindOrdinary  = "ordinary"
	KindPracticum = "practicum"
	KindFinalWork = "final_work"
)

// CurriculumRow resolved cells of one curriculum line item
type CurriculumRow struct {
	Row        int
	Title      string
	Department string

	Lecture  []string
	Practice []string
	Lab      []string
	Control  []string

	ExamFlags          []string
	PassFlags          []string
	CourseProjectFlags []string
}

// IsPlaceholder reports whether a title is an administrative placeholder:
// empty, the literal "0", or an elective-block phrase.
func (p Policy) IsPlaceholder(title string) bool {
	t := Fold(title)
	if t == "" || t == "0" {
		return true
	}
	return containsAny(t, p.PlaceholderTitles)
}

// Kind classifies a title. Final work is checked first: its defense line
// items can mention practice too.
func (p Policy) Kind(title string) string {
	t := Fold(title)
	switch {
	case containsAny(t, p.FinalWorkKeywords):
		return KindFinalWork
	case containsAny(t, p.PracticumKeywords):
		return KindPracticum
	}
	return KindOrdinary
}

// Discipline normalizes one row. A nil result with nil error means the row is
// a placeholder and is dropped by policy.
func (p Policy) Discipline(in CurriculumRow) (*model.Discipline, error) {
	title := CleanText(in.Title)
	if p.IsPlaceholder(title) {
		return nil, nil
	}
	if utf8.RuneCountInString(title) > maxTitleLen {
		return nil, &pkgerrors.RecordNormalizationError{
			Row:    in.Row,
			Reason: fmt.Sprintf("title longer than %d characters", maxTitleLen),
		}
	}

	dept := CleanText(in.Department)
	if dept == "" {
		dept = p.DefaultDepartment
	}

	exams := ParseFlags(in.ExamFlags)
	passes := ParseFlags(in.PassFlags)
	projects := ParseFlags(in.CourseProjectFlags)

	d := &model.Discipline{
		Title:      title,
		Department: dept,
		Semesters:  SemesterSet(exams, passes),
	}

	switch p.Kind(title) {
	case KindFinalWork:
		d.FinalWorkHours = Round2(p.FinalWorkHours)
	case KindPracticum:
		d.PracticeHours = SumHours(in.Practice)
		d.ExamHours = SumHours(in.Control)
	default:
		d.LectureHours = SumHours(in.Lecture)
		d.PracticeHours = SumHours(in.Practice)
		d.LabHours = SumHours(in.Lab)
		d.ExamHours = Times(p.ExamHoursPerExam, exams.Occurrences())
		d.TestHours = Times(p.TestHoursPerPass, passes.Occurrences())
		d.CourseProjectHours = Times(p.CourseProjectHours, projects.Occurrences())
	}
	d.SumHours()
	d.TotalHours = Round2(d.TotalHours)
	return d, nil
}
