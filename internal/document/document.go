// Package document reads tabular office documents into header-keyed rows.
//
// Two shapes are supported: the first table of a word-processor document (.docx)
// and named sheets of a spreadsheet (.xlsx). Legacy binary formats are rejected
// with advice to re-save.
package document

import (
	"fmt"
	"path/filepath"
	"strconv"
	"strings"
	"unicode"

	pkgerrors "github.com/kama950028/KadrSp/pkg/errors"
)

// Format document container format
type Format string

const (
	FormatDocx Format = "docx"
	FormatXlsx Format = "xlsx"
)

// Table a header row plus the data rows below it
type Table struct {
	Name    string // sheet name; empty for docx
	Headers []string
	Rows    []Row
}

// Row one physical data row, cells aligned with Table.Headers
type Row struct {
	Index int // 1-based physical row number in the source
	Cells []string
}

// Cell returns the i-th cell, or "" when the row is short
func (r Row) Cell(i int) string {
	if i < 0 || i >= len(r.Cells) {
		return ""
	}
	return r.Cells[i]
}

// Signature reports whether a collapsed header cell marks the header row
type Signature func(cell string) bool

// Options header detection settings
type Options struct {
	// HeaderScanRows how many leading physical rows may hold the header
	HeaderScanRows int
	// Signature identifies the header row. Nil takes the first non-empty row.
	Signature Signature
}

func (o Options) scanRows() int {
	if o.HeaderScanRows <= 0 {
		return 10
	}
	return o.HeaderScanRows
}

// DetectFormat maps a filename to a supported format
func DetectFormat(filename string) (Format, error) {
	switch strings.ToLower(filepath.Ext(filename)) {
	case ".docx":
		return FormatDocx, nil
	case ".xlsx":
		return FormatXlsx, nil
	case ".xls":
		return "", &pkgerrors.MalformedDocumentError{
			Reason: "legacy .xls workbook",
			Advice: "open the file in a spreadsheet editor and save it as .xlsx",
			Err:    pkgerrors.ErrUnsupportedFormat,
		}
	case ".doc":
		return "", &pkgerrors.MalformedDocumentError{
			Reason: "legacy .doc document",
			Advice: "open the file in a word processor and save it as .docx",
			Err:    pkgerrors.ErrUnsupportedFormat,
		}
	}
	return "", &pkgerrors.MalformedDocumentError{
		Reason: fmt.Sprintf("unsupported file type %q", filepath.Ext(filename)),
		Advice: "upload a .docx (instructors) or .xlsx (curriculum) file",
		Err:    pkgerrors.ErrUnsupportedFormat,
	}
}

// Collapse trims s and folds every whitespace run (newlines, tabs, NBSP) into one space
func Collapse(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	space := false
	for _, r := range s {
		if unicode.IsSpace(r) {
			space = true
			continue
		}
		if space && b.Len() > 0 {
			b.WriteByte(' ')
		}
		space = false
		b.WriteRune(r)
	}
	return b.String()
}

// buildTable locates the header among raw rows and aligns the rest under it
func buildTable(name string, raw [][]string, opts Options) (*Table, bool) {
	hdr := detectHeader(raw, opts)
	if hdr < 0 {
		return nil, false
	}

	headers := dedupeHeaders(raw[hdr])
	t := &Table{Name: name, Headers: headers}
	for i := hdr + 1; i < len(raw); i++ {
		cells := make([]string, len(headers))
		empty := true
		for j := range cells {
			if j < len(raw[i]) {
				cells[j] = Collapse(raw[i][j])
				if cells[j] != "" {
					empty = false
				}
			}
		}
		if empty {
			continue
		}
		t.Rows = append(t.Rows, Row{Index: i + 1, Cells: cells})
	}
	return t, true
}

// detectHeader returns the index of the header row, or -1 when nothing qualifies.
// Without a signature match in the scan window the first non-empty row is taken,
// leaving the column resolver to report what it could not find.
func detectHeader(raw [][]string, opts Options) int {
	limit := opts.scanRows()
	if limit > len(raw) {
		limit = len(raw)
	}
	if opts.Signature != nil {
		for i := 0; i < limit; i++ {
			for _, c := range raw[i] {
				if opts.Signature(strings.ToLower(Collapse(c))) {
					return i
				}
			}
		}
	}
	for i := range raw {
		for _, c := range raw[i] {
			if Collapse(c) != "" {
				return i
			}
		}
	}
	return -1
}

// dedupeHeaders collapses header text and suffixes repeats as "name.1", "name.2".
// Curriculum sheets carry two "Наименование" columns (discipline and department);
// the suffix keeps them addressable.
func dedupeHeaders(row []string) []string {
	seen := make(map[string]int, len(row))
	out := make([]string, len(row))
	for i, h := range row {
		h = Collapse(h)
		key := strings.ToLower(h)
		if n, ok := seen[key]; ok && h != "" {
			out[i] = h + "." + strconv.Itoa(n)
			seen[key] = n + 1
			continue
		}
		seen[key] = 1
		out[i] = h
	}
	return out
}
