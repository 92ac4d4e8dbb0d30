package document

import (
	"archive/zip"
	"bytes"
	"errors"
	"strings"
	"testing"

	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/kama950028/KadrSp/pkg/errors"
)

// ── Fixtures ──

const docxNS = `xmlns:w="http://schemas.openxmlformats.org/wordprocessingml/2006/main"`

func docxCell(text string) string {
	var b strings.Builder
	b.WriteString("<w:tc>")
	for _, p := range strings.Split(text, "\n") {
		b.WriteString("<w:p><w:r><w:t>" + p + "</w:t></w:r></w:p>")
	}
	b.WriteString("</w:tc>")
	return b.String()
}

func docxTable(rows [][]string) string {
	var b strings.Builder
	b.WriteString("<w:tbl>")
	for _, r := range rows {
		b.WriteString("<w:tr>")
		for _, c := range r {
			b.WriteString(docxCell(c))
		}
		b.WriteString("</w:tr>")
	}
	b.WriteString("</w:tbl>")
	return b.String()
}

func buildDocx(t *testing.T, body string) []byte {
	t.Helper()
	var buf bytes.Buffer
	zw := zip.NewWriter(&buf)
	w, err := zw.Create("word/document.xml")
	if err != nil {
		t.Fatalf("zip create: %v", err)
	}
	doc := `<?xml version="1.0" encoding="UTF-8"?><w:document ` + docxNS + `><w:body>` + body + `</w:body></w:document>`
	if _, err := w.Write([]byte(doc)); err != nil {
		t.Fatalf("zip write: %v", err)
	}
	if err := zw.Close(); err != nil {
		t.Fatalf("zip close: %v", err)
	}
	return buf.Bytes()
}

func buildXlsx(t *testing.T, sheets map[string][][]interface{}, order []string) []byte {
	t.Helper()
	f := excelize.NewFile()
	defer f.Close()
	for i, name := range order {
		if i == 0 {
			if err := f.SetSheetName("Sheet1", name); err != nil {
				t.Fatalf("rename sheet: %v", err)
			}
		} else if _, err := f.NewSheet(name); err != nil {
			t.Fatalf("new sheet: %v", err)
		}
		for r, row := range sheets[name] {
			cell, _ := excelize.CoordinatesToCellName(1, r+1)
			if err := f.SetSheetRow(name, cell, &row); err != nil {
				t.Fatalf("set row: %v", err)
			}
		}
	}
	buf, err := f.WriteToBuffer()
	if err != nil {
		t.Fatalf("write xlsx: %v", err)
	}
	return buf.Bytes()
}

func nameSignature(cell string) bool { return cell == "наименование" }

// ── DetectFormat ──

func TestDetectFormat(t *testing.T) {
	if f, err := DetectFormat("Преподаватели.DOCX"); err != nil || f != FormatDocx {
		t.Errorf("expected docx, got %q %v", f, err)
	}
	if f, err := DetectFormat("09.04.04_plan.xlsx"); err != nil || f != FormatXlsx {
		t.Errorf("expected xlsx, got %q %v", f, err)
	}

	_, err := DetectFormat("09.04.04_plan.xls")
	if !errors.Is(err, pkgerrors.ErrUnsupportedFormat) {
		t.Fatalf("expected ErrUnsupportedFormat, got %v", err)
	}
	if pkgerrors.KindOf(err) != pkgerrors.KindMalformedDocument {
		t.Errorf("expected malformed document kind, got %q", pkgerrors.KindOf(err))
	}
	if !strings.Contains(pkgerrors.Advice(err), ".xlsx") {
		t.Errorf("expected re-save advice, got %q", pkgerrors.Advice(err))
	}
}

func TestCollapse(t *testing.T) {
	cases := map[string]string{
		"  Иванов\n Иван\tИванович ": "Иванов Иван Иванович",
		"Учёная степень":        "Учёная степень",
		"":                           "",
		"\n\n":                       "",
	}
	for in, want := range cases {
		if got := Collapse(in); got != want {
			t.Errorf("Collapse(%q) = %q, want %q", in, got, want)
		}
	}
}

// ── docx ──

func TestReadDocx_FirstTable(t *testing.T) {
	body := `<w:p><w:r><w:t>Сведения о кадровом обеспечении</w:t></w:r></w:p>` +
		docxTable([][]string{
			{"Ф.И.О.", "Должность\nпреподавателя", "Перечень преподаваемых дисциплин"},
			{"Иванов Иван\nИванович", "доцент", "Базы данных; Сети"},
			{"", "", ""},
			{"Петрова Анна", "профессор"},
		}) +
		docxTable([][]string{{"second", "table"}})
	data := buildDocx(t, body)

	tbl, err := ReadDocx(bytes.NewReader(data), int64(len(data)), Options{})
	if err != nil {
		t.Fatalf("ReadDocx: %v", err)
	}
	if len(tbl.Headers) != 3 || tbl.Headers[1] != "Должность преподавателя" {
		t.Fatalf("unexpected headers: %#v", tbl.Headers)
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 data rows (empty row skipped), got %d", len(tbl.Rows))
	}
	if tbl.Rows[0].Cell(0) != "Иванов Иван Иванович" {
		t.Errorf("expected collapsed name, got %q", tbl.Rows[0].Cell(0))
	}
	if tbl.Rows[1].Cell(2) != "" {
		t.Errorf("short row should pad with empty cells, got %q", tbl.Rows[1].Cell(2))
	}
	if tbl.Rows[1].Index != 4 {
		t.Errorf("expected physical row 4, got %d", tbl.Rows[1].Index)
	}
}

func TestReadDocx_HeaderSignatureSkipsTitleRows(t *testing.T) {
	body := docxTable([][]string{
		{"Кадровое обеспечение", ""},
		{"ФИО", "Должность"},
		{"Сидоров", "ассистент"},
	})
	data := buildDocx(t, body)

	tbl, err := ReadDocx(bytes.NewReader(data), int64(len(data)), Options{
		Signature: func(c string) bool { return c == "фио" },
	})
	if err != nil {
		t.Fatalf("ReadDocx: %v", err)
	}
	if tbl.Headers[0] != "ФИО" || len(tbl.Rows) != 1 {
		t.Errorf("expected header on second row, got %#v / %d rows", tbl.Headers, len(tbl.Rows))
	}
}

func TestReadDocx_NoTable(t *testing.T) {
	data := buildDocx(t, `<w:p><w:r><w:t>no table here</w:t></w:r></w:p>`)

	_, err := ReadDocx(bytes.NewReader(data), int64(len(data)), Options{})
	var md *pkgerrors.MalformedDocumentError
	if !errors.As(err, &md) {
		t.Fatalf("expected MalformedDocumentError, got %v", err)
	}
}

func TestReadDocx_NotZip(t *testing.T) {
	data := []byte("plain text")
	_, err := ReadDocx(bytes.NewReader(data), int64(len(data)), Options{})
	if pkgerrors.KindOf(err) != pkgerrors.KindMalformedDocument {
		t.Errorf("expected malformed document, got %v", err)
	}
}

// ── xlsx ──

func TestWorkbook_FindSheetExactName(t *testing.T) {
	data := buildXlsx(t, map[string][][]interface{}{
		"ПланСвод": {{"x"}},
		"План":     {{"y"}},
	}, []string{"ПланСвод", "План"})

	wb, err := OpenWorkbook(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenWorkbook: %v", err)
	}
	defer wb.Close()

	if s, ok := wb.FindSheet([]string{"план"}); !ok || s != "План" {
		t.Errorf("expected detail sheet План, got %q", s)
	}
	if s, ok := wb.FindSheet([]string{"плансвод"}); !ok || s != "ПланСвод" {
		t.Errorf("expected summary sheet ПланСвод, got %q", s)
	}

	_, err = wb.RequireSheet("summary", []string{"итоги"})
	var md *pkgerrors.MalformedDocumentError
	if !errors.As(err, &md) {
		t.Fatalf("expected MalformedDocumentError, got %v", err)
	}
	if !strings.Contains(md.Advice, "ПланСвод") {
		t.Errorf("advice should list sheets, got %q", md.Advice)
	}
}

func TestWorkbook_ReadSheet_HeaderDetectionAndDuplicates(t *testing.T) {
	data := buildXlsx(t, map[string][][]interface{}{
		"ПланСвод": {
			{"Учебный план"},
			{""},
			{"", "Форма контроля", "", "Закрепленная кафедра"},
			{"Индекс", "Наименование", "Экза мен", "Код", "Наименование"},
			{"Б1.О.01", "Базы данных", "2", "12", "Кафедра ИС"},
			{},
			{"Б1.О.02", "Сети", "", "12", "Кафедра ИС"},
		},
	}, []string{"ПланСвод"})

	wb, err := OpenWorkbook(bytes.NewReader(data))
	if err != nil {
		t.Fatalf("OpenWorkbook: %v", err)
	}
	defer wb.Close()

	tbl, err := wb.ReadSheet("ПланСвод", Options{HeaderScanRows: 6, Signature: nameSignature})
	if err != nil {
		t.Fatalf("ReadSheet: %v", err)
	}
	want := []string{"Индекс", "Наименование", "Экза мен", "Код", "Наименование.1"}
	if len(tbl.Headers) != len(want) {
		t.Fatalf("headers %#v", tbl.Headers)
	}
	for i := range want {
		if tbl.Headers[i] != want[i] {
			t.Errorf("header %d = %q, want %q", i, tbl.Headers[i], want[i])
		}
	}
	if len(tbl.Rows) != 2 {
		t.Fatalf("expected 2 rows, got %d", len(tbl.Rows))
	}
	if tbl.Rows[0].Index != 5 || tbl.Rows[1].Index != 7 {
		t.Errorf("unexpected physical rows %d %d", tbl.Rows[0].Index, tbl.Rows[1].Index)
	}
	if tbl.Rows[1].Cell(4) != "Кафедра ИС" {
		t.Errorf("department cell = %q", tbl.Rows[1].Cell(4))
	}
}

func TestOpenWorkbook_Garbage(t *testing.T) {
	_, err := OpenWorkbook(bytes.NewReader([]byte("not a workbook")))
	if pkgerrors.KindOf(err) != pkgerrors.KindMalformedDocument {
		t.Errorf("expected malformed document, got %v", err)
	}
}
