package schema

import "github.com/kama950028/KadrSp/internal/document"

// ── Curriculum fields ──

const (
	FieldCountInPlan       Field = "count_in_plan"
	FieldIndex             Field = "index"
	FieldTitle             Field = "title"
	FieldDepartment        Field = "department"
	FieldExamFlag          Field = "exam_flag"
	FieldPassFlag          Field = "pass_flag"
	FieldCourseProjectFlag Field = "course_project_flag"
	FieldControlHours      Field = "control_hours"
	FieldLecture           Field = "lecture_hours"
	FieldPractice          Field = "practice_hours"
	FieldLab               Field = "lab_hours"
)

// ── Instructor fields ──

const (
	FieldFullName               Field = "full_name"
	FieldPosition               Field = "position"
	FieldEducationLevel         Field = "education_level"
	FieldSpecialty              Field = "specialty"
	FieldDegree                 Field = "academic_degree"
	FieldAcademicTitle          Field = "academic_title"
	FieldTotalExperience        Field = "total_experience"
	FieldTeachingExperience     Field = "teaching_experience"
	FieldProfessionalExperience Field = "professional_experience"
	FieldDisciplines            Field = "disciplines"
	FieldQualifications         Field = "qualifications"
	FieldRetraining             Field = "retraining"
	FieldPrograms               Field = "programs"
)

// CurriculumSummary the aggregate sheet: one row per discipline with its
// owning department. The department block repeats the "Наименование" label,
// which the reader suffixes to "Наименование.1".
var CurriculumSummary = RuleSet{
	Name: "curriculum_summary",
	Rules: []Rule{
		{Field: FieldCountInPlan, Match: Contains("считать в плане")},
		{Field: FieldIndex, Match: Equals("индекс")},
		{Field: FieldTitle, Match: Any(Equals("наименование", "дисциплина"), Contains("наименование дисциплин"))},
		{Field: FieldDepartment, Match: Any(HasPrefix("наименование."), Contains("кафедр"))},
	},
	Mandatory: []Field{FieldTitle},
}

// CurriculumDetail the per-semester sheet carrying control forms and hours.
//
// Order matters: control-form flags come before hour columns, practical
// training ("пр. подгот.") is claimed before the generic "пр" practice rule,
// and "контроль" counts only inside semester blocks, right of the first lecture
// column, so the totals block is not added twice.
var CurriculumDetail = RuleSet{
	Name: "curriculum_detail",
	Rules: []Rule{
		{Field: FieldCountInPlan, Match: Contains("считать в плане")},
		{Field: FieldIndex, Match: Equals("индекс")},
		{Field: FieldTitle, Match: Any(Equals("наименование", "дисциплина"), Contains("наименование дисциплин"))},
		{Field: FieldDepartment, Match: Any(HasPrefix("наименование."), Contains("кафедр"))},
		{Field: FieldExamFlag, Match: All(Contains("экза"), Not(Contains("контрол", "час")))},
		{Field: FieldPassFlag, Match: Contains("зачет")},
		{Field: FieldCourseProjectFlag, Match: Any(Word("кп", "кр"), Contains("курсов"))},
		{Field: Skip, Match: Contains("подгот")},
		{Field: FieldControlHours, Match: Contains("контроль"), After: FieldLecture},
		{Field: FieldLab, Match: Contains("лаб")},
		{Field: FieldLecture, Match: Contains("лек")},
		{Field: FieldPractice, Match: Any(Word("пр"), Contains("практ"))},
	},
	Mandatory: []Field{FieldTitle},
}

// Instructors the staffing table of the word-processor document.
// Programs and qualification headers mention "образования"/"квалификация" too,
// so they are claimed before education level.
var Instructors = RuleSet{
	Name: "instructors",
	Rules: []Rule{
		{Field: FieldFullName, Match: Contains("ф.и.о", "фио", "фамилия")},
		{Field: FieldPosition, Match: Contains("должност")},
		{Field: FieldPrograms, Match: Contains("программ")},
		{Field: FieldQualifications, Match: Contains("повышени")},
		{Field: FieldRetraining, Match: Contains("переподготовк")},
		{Field: FieldEducationLevel, Match: Contains("уровень", "уровни", "образовани")},
		{Field: FieldDegree, Match: Contains("степен")},
		{Field: FieldAcademicTitle, Match: Contains("звани")},
		{Field: FieldTotalExperience, Match: All(Contains("стаж"), Contains("общий"))},
		{Field: FieldTeachingExperience, Match: All(Contains("стаж"), Contains("специальност", "педагогическ"))},
		{Field: FieldProfessionalExperience, Match: Contains("стаж")},
		{Field: FieldDisciplines, Match: Contains("дисциплин")},
		{Field: FieldSpecialty, Match: Contains("направлени", "специальност")},
	},
	Mandatory: []Field{FieldFullName},
}

// Signature returns a header-row detector: a cell qualifies when the first rule
// it matches is one of f's rules.
func (s RuleSet) Signature(f Field) document.Signature {
	return func(cell string) bool {
		h := NewHeader(cell)
		if h.Compact == "" {
			return false
		}
		for _, rule := range s.Rules {
			if rule.After != "" {
				continue
			}
			if rule.Match(h) {
				return rule.Field == f
			}
		}
		return false
	}
}
