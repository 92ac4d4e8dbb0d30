package service

import (
	"archive/zip"
	"bytes"
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"testing"

	"github.com/xuri/excelize/v2"
	"go.uber.org/zap"

	"github.com/kama950028/KadrSp/config"
	"github.com/kama950028/KadrSp/internal/normalize"
	"github.com/kama950028/KadrSp/internal/repository"
	"github.com/kama950028/KadrSp/pkg/tempfile"
	"github.com/kama950028/KadrSp/pkg/worker"
)

// ── Collaborators ──

// syncDispatcher runs tasks inline so tests observe the finished run
type syncDispatcher struct{}

func (syncDispatcher) Go(_ string, task worker.Task) error {
	_ = task(context.Background())
	return nil
}

type rejectingDispatcher struct{}

func (rejectingDispatcher) Go(string, worker.Task) error { return worker.ErrShuttingDown }

type fakeReleaser struct {
	mu       sync.Mutex
	released []string
}

func (r *fakeReleaser) Release(path string) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.released = append(r.released, path)
}

func (r *fakeReleaser) count() int {
	r.mu.Lock()
	defer r.mu.Unlock()
	return len(r.released)
}

type importHarness struct {
	svc      ImportService
	store    *memStore
	repo     *repository.Repository
	releaser *fakeReleaser
}

func setupImportService(t *testing.T, dispatcher Dispatcher) *importHarness {
	t.Helper()
	store := newMemStore()
	repo := newMockRepository(store)
	cfg := config.DefaultIngest()
	logger := zap.NewNop()
	rel := &fakeReleaser{}
	if dispatcher == nil {
		dispatcher = syncDispatcher{}
	}
	svc := NewImportService(repo, cfg, NewReconciler(normalize.NewPolicy(cfg), logger),
		NewLocalLocker(), rel, dispatcher, nil, logger)
	return &importHarness{svc: svc, store: store, repo: repo, releaser: rel}
}

// writeUpload stores data the way the upload handler would
func writeUpload(t *testing.T, filename string, data []byte) *tempfile.File {
	t.Helper()
	path := filepath.Join(t.TempDir(), "upload"+strings.ToLower(filepath.Ext(filename)))
	if err := os.WriteFile(path, data, 0o600); err != nil {
		t.Fatalf("write upload: %v", err)
	}
	return &tempfile.File{Path: path, Filename: filename, Size: int64(len(data))}
}

// ── Curriculum workbook ──

type planRow struct {
	title      string
	department string
	exam       string
	pass       string
	project    string
	lecture    string
	lab        string
	practice   string
	inPlan     string
	noDetail   bool
}

func ordinaryRow(title string) planRow {
	return planRow{title: title, department: "Кафедра ИС", exam: "5", lecture: "36", practice: "18", inPlan: "+"}
}

var (
	summaryHeader = []interface{}{"Индекс", "Наименование", "Кафедра"}
	detailHeader  = []interface{}{"Считать в плане", "Индекс", "Наименование", "Экза мен", "Зачет", "КП", "Лек", "Лаб", "Пр", "Контроль"}
)

func buildCurriculum(t *testing.T, rows []planRow) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	if err := f.SetSheetName("Sheet1", "ПланСвод"); err != nil {
		t.Fatalf("rename sheet: %v", err)
	}
	if _, err := f.NewSheet("План"); err != nil {
		t.Fatalf("new sheet: %v", err)
	}

	summary := [][]interface{}{{"Учебный план"}, summaryHeader}
	detail := [][]interface{}{detailHeader}
	for i, r := range rows {
		index := fmt.Sprintf("Б1.О.%02d", i+1)
		summary = append(summary, []interface{}{index, r.title, r.department})
		if r.noDetail {
			continue
		}
		detail = append(detail, []interface{}{r.inPlan, index, r.title, r.exam, r.pass, r.project, r.lecture, r.lab, r.practice, ""})
	}
	setRows(t, f, "ПланСвод", summary)
	setRows(t, f, "План", detail)

	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	return buf.Bytes()
}

func setRows(t *testing.T, f *excelize.File, sheet string, rows [][]interface{}) {
	t.Helper()
	for i, row := range rows {
		cell, _ := excelize.CoordinatesToCellName(1, i+1)
		if err := f.SetSheetRow(sheet, cell, &row); err != nil {
			t.Fatalf("set row: %v", err)
		}
	}
}

// ── Staffing document ──

var staffHeader = []string{
	"Ф.И.О.",
	"Должность преподавателя",
	"Перечень преподаваемых дисциплин",
	"Уровень (уровни) профессионального образования, квалификация",
	"Учёная степень (при наличии)",
	"Учёное звание (при наличии)",
	"Сведения о повышении квалификации (за последние 3 года) и сведения о профессиональной переподготовке (при наличии)",
	"Общий стаж работы",
	"Стаж работы по специальности",
	"Профессиональный стаж",
	"Наименование образовательных программ, в реализации которых участвует педагогический работник",
}

type staffRow struct {
	name        string
	position    string
	disciplines string
	quals       string
	programs    string
}

func buildStaffDocx(t *testing.T, rows []staffRow) []byte {
	t.Helper()
	var body strings.Builder
	body.WriteString("<w:p><w:r><w:t>Кадровое обеспечение</w:t></w:r></w:p><w:tbl>")
	writeRow := func(cells []string) {
		body.WriteString("<w:tr>")
		for _, c := range cells {
			body.WriteString("<w:tc><w:p><w:r><w:t>" + c + "</w:t></w:r></w:p></w:tc>")
		}
		body.WriteString("</w:tr>")
	}
	writeRow(staffHeader)
	for _, r := range rows {
		writeRow([]string{r.name, r.position, r.disciplines, "высшее, магистр", "кандидат наук", "доцент", r.quals, "20", "15", "5", r.programs})
	}
	body.WriteString("</w:tbl>")

	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8"?><w:document xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"><w:body>` +
		body.String() + `</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}
