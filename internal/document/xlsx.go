package document

import (
	"fmt"
	"io"
	"strings"

	"github.com/xuri/excelize/v2"

	pkgerrors "github.com/kama950028/KadrSp/pkg/errors"
)

// Workbook an opened .xlsx file
type Workbook struct {
	f      *excelize.File
	sheets []string
}

// OpenWorkbook reads a .xlsx stream
func OpenWorkbook(r io.Reader) (*Workbook, error) {
	f, err := excelize.OpenReader(r)
	if err != nil {
		return nil, &pkgerrors.MalformedDocumentError{
			Reason: "cannot open workbook",
			Advice: "make sure the file is an Excel .xlsx workbook",
			Err:    err,
		}
	}
	return &Workbook{f: f, sheets: f.GetSheetList()}, nil
}

// SheetNames in workbook order
func (w *Workbook) SheetNames() []string {
	return append([]string(nil), w.sheets...)
}

// FindSheet returns the first sheet whose trimmed, case-folded name equals one
// of names. Exact equality keeps "План" from matching "ПланСвод".
func (w *Workbook) FindSheet(names []string) (string, bool) {
	for _, want := range names {
		want = strings.ToLower(strings.TrimSpace(want))
		for _, s := range w.sheets {
			if strings.ToLower(strings.TrimSpace(s)) == want {
				return s, true
			}
		}
	}
	return "", false
}

// RequireSheet is FindSheet that fails with a MalformedDocumentError
func (w *Workbook) RequireSheet(role string, names []string) (string, error) {
	if s, ok := w.FindSheet(names); ok {
		return s, nil
	}
	return "", &pkgerrors.MalformedDocumentError{
		Reason: fmt.Sprintf("%s sheet not found (expected one of %s)", role, strings.Join(names, ", ")),
		Advice: "sheets present: " + strings.Join(w.sheets, ", "),
	}
}

// ReadSheet returns the sheet's rows below its detected header row
func (w *Workbook) ReadSheet(name string, opts Options) (*Table, error) {
	raw, err := w.f.GetRows(name, excelize.Options{RawCellValue: true})
	if err != nil {
		return nil, &pkgerrors.MalformedDocumentError{
			Reason: fmt.Sprintf("cannot read sheet %q", name),
			Err:    err,
		}
	}
	t, ok := buildTable(name, raw, opts)
	if !ok {
		return nil, &pkgerrors.MalformedDocumentError{
			Reason: fmt.Sprintf("sheet %q is empty", name),
		}
	}
	return t, nil
}

// Close releases the workbook
func (w *Workbook) Close() error {
	return w.f.Close()
}
