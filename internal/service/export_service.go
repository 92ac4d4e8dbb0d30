package service

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"strconv"
	"strings"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"
	"gorm.io/gorm"

	"github.com/kama950028/KadrSp/internal/model"
	"github.com/kama950028/KadrSp/internal/normalize"
	"github.com/kama950028/KadrSp/internal/repository"
)

// ── Export errors ──

var (
	ErrExportNoDisciplines = errors.New("program has no disciplines")
	ErrExportGenerateFail  = errors.New("failed to build the spreadsheet")
)

// ExportService curriculum export
//
// The workbook holds one sheet: a title row, a header row, one row per
// discipline ordered as stored, and a totals row. The buffer is returned to the
// handler, which sets the download headers.
type ExportService interface {
	// ExportCurriculum returns the xlsx content and a suggested filename
	ExportCurriculum(ctx context.Context, programID uint) (*bytes.Buffer, string, error)
}

type exportService struct {
	repo   *repository.Repository
	logger *zap.Logger
}

// NewExportService creates an ExportService
func NewExportService(repo *repository.Repository, logger *zap.Logger) ExportService {
	return &exportService{repo: repo, logger: logger}
}

const curriculumSheet = "Учебный план"

var curriculumHeaders = []string{
	"№", "Дисциплина", "Кафедра", "Семестры",
	"Лекции", "Практика", "Лабораторные", "Экзамены", "Зачеты", "Курсовые", "ВКР", "Всего",
}

func (s *exportService) ExportCurriculum(ctx context.Context, programID uint) (*bytes.Buffer, string, error) {
	// 1. program and its disciplines
	program, err := s.repo.Program.GetByID(ctx, programID)
	if err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return nil, "", ErrProgramNotFound
		}
		s.logger.Error("find program failed", zap.Error(err))
		return nil, "", err
	}
	disciplines, err := s.repo.Discipline.ListByProgram(ctx, programID)
	if err != nil {
		s.logger.Error("list disciplines failed", zap.Error(err))
		return nil, "", err
	}
	if len(disciplines) == 0 {
		return nil, "", ErrExportNoDisciplines
	}

	// 2. workbook
	f := excelize.NewFile()
	defer f.Close()

	idx, _ := f.NewSheet(curriculumSheet)
	f.SetActiveSheet(idx)
	f.DeleteSheet("Sheet1")

	f.SetColWidth(curriculumSheet, "A", "A", 6)
	f.SetColWidth(curriculumSheet, "B", "B", 60)
	f.SetColWidth(curriculumSheet, "C", "C", 40)
	f.SetColWidth(curriculumSheet, "D", "D", 12)
	f.SetColWidth(curriculumSheet, "E", colName(len(curriculumHeaders)-1), 12)

	headerStyle, _ := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Size: 11},
		Fill:      excelize.Fill{Type: "pattern", Color: []string{"#D9E1F2"}, Pattern: 1},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center", WrapText: true},
	})
	boldStyle, _ := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true}})

	// title
	last := colName(len(curriculumHeaders) - 1)
	f.SetCellValue(curriculumSheet, "A1", fmt.Sprintf("%s (%s)", program.Name, program.ShortCode))
	f.MergeCell(curriculumSheet, "A1", cell(last, 1))
	f.SetCellStyle(curriculumSheet, "A1", "A1", boldStyle)

	// header
	for i, h := range curriculumHeaders {
		f.SetCellValue(curriculumSheet, cell(colName(i), 2), h)
	}
	f.SetCellStyle(curriculumSheet, "A2", cell(last, 2), headerStyle)

	// rows
	row := 3
	for i, d := range disciplines {
		values := []interface{}{
			i + 1, d.Title, d.Department, semesterText(d.Semesters),
			d.LectureHours, d.PracticeHours, d.LabHours, d.ExamHours,
			d.TestHours, d.CourseProjectHours, d.FinalWorkHours, d.TotalHours,
		}
		if err := f.SetSheetRow(curriculumSheet, cell("A", row), &values); err != nil {
			s.logger.Error("write curriculum row failed", zap.Int("row", row), zap.Error(err))
			return nil, "", ErrExportGenerateFail
		}
		row++
	}

	// totals
	f.SetCellValue(curriculumSheet, cell("B", row), "Итого")
	for col := 4; col < len(curriculumHeaders); col++ {
		f.SetCellValue(curriculumSheet, cell(colName(col), row), columnTotal(disciplines, col))
	}
	f.SetCellStyle(curriculumSheet, cell("A", row), cell(last, row), boldStyle)

	// 3. buffer
	buf := new(bytes.Buffer)
	if err := f.Write(buf); err != nil {
		s.logger.Error("write workbook failed", zap.Error(err))
		return nil, "", ErrExportGenerateFail
	}

	return buf, program.ShortCode + "_curriculum.xlsx", nil
}

// columnTotal sums the hour column at header index col
func columnTotal(disciplines []model.Discipline, col int) float64 {
	values := make([]float64, 0, len(disciplines))
	for _, d := range disciplines {
		hours := []float64{
			d.LectureHours, d.PracticeHours, d.LabHours, d.ExamHours,
			d.TestHours, d.CourseProjectHours, d.FinalWorkHours, d.TotalHours,
		}
		values = append(values, hours[col-4])
	}
	return normalize.Sum(values...)
}

func semesterText(set model.IntArray) string {
	if !set.Specified() {
		return ""
	}
	parts := make([]string, len(set))
	for i, n := range set {
		parts[i] = strconv.Itoa(n)
	}
	return strings.Join(parts, ", ")
}

// ── Helpers ──

func colName(idx int) string {
	name, _ := excelize.ColumnNumberToName(idx + 1)
	return name
}

func cell(col string, row int) string {
	return fmt.Sprintf("%s%d", col, row)
}
