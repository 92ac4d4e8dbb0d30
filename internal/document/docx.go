package document

import (
	"archive/zip"
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"io"
	"strings"

	pkgerrors "github.com/kama950028/KadrSp/pkg/errors"
)

const docxBody = "word/document.xml"

// ReadDocx returns the first table of a .docx document.
func ReadDocx(r io.ReaderAt, size int64, opts Options) (*Table, error) {
	zr, err := zip.NewReader(r, size)
	if err != nil {
		return nil, &pkgerrors.MalformedDocumentError{
			Reason: "not a .docx (zip) container",
			Advice: "save the document as Word .docx",
			Err:    err,
		}
	}

	body, err := readZipFile(zr.File, docxBody)
	if err != nil {
		return nil, &pkgerrors.MalformedDocumentError{
			Reason: "document body missing",
			Err:    err,
		}
	}

	raw, err := firstTable(body)
	if err != nil {
		return nil, &pkgerrors.MalformedDocumentError{Reason: "cannot decode document body", Err: err}
	}
	if len(raw) == 0 {
		return nil, &pkgerrors.MalformedDocumentError{
			Reason: "no table found in document",
			Advice: "the instructor list must be a table whose header row starts with the full name column",
		}
	}

	t, ok := buildTable("", raw, opts)
	if !ok {
		return nil, &pkgerrors.MalformedDocumentError{Reason: "table has no non-empty rows"}
	}
	return t, nil
}

func readZipFile(files []*zip.File, target string) ([]byte, error) {
	for _, f := range files {
		if f == nil {
			continue
		}
		if strings.EqualFold(strings.TrimSpace(f.Name), target) {
			rc, err := f.Open()
			if err != nil {
				return nil, err
			}
			defer rc.Close()
			return io.ReadAll(rc)
		}
	}
	return nil, fmt.Errorf("file not found: %s", target)
}

// firstTable streams document.xml and returns the cell text of the first
// top-level table. Text of nested tables folds into the enclosing cell.
// Paragraph ends, breaks and tabs become spaces.
func firstTable(body []byte) ([][]string, error) {
	dec := xml.NewDecoder(bytes.NewReader(body))
	var (
		depth  int // table nesting level
		inText bool
		rows   [][]string
		row    []string
		cell   strings.Builder
		inCell bool
	)

	for {
		tok, err := dec.Token()
		if err != nil {
			if errors.Is(err, io.EOF) {
				return rows, nil
			}
			return nil, err
		}
		switch t := tok.(type) {
		case xml.StartElement:
			switch t.Name.Local {
			case "tbl":
				depth++
			case "tr":
				if depth == 1 {
					row = nil
				}
			case "tc":
				if depth == 1 {
					cell.Reset()
					inCell = true
				}
			case "t":
				inText = inCell
			case "br", "tab", "cr":
				if inCell {
					cell.WriteByte(' ')
				}
			}
		case xml.CharData:
			if inText {
				cell.Write(t)
			}
		case xml.EndElement:
			switch t.Name.Local {
			case "t":
				inText = false
			case "p":
				if inCell {
					cell.WriteByte('\n')
				}
			case "tc":
				if depth == 1 {
					row = append(row, Collapse(cell.String()))
					inCell = false
				}
			case "tr":
				if depth == 1 {
					rows = append(rows, row)
				}
			case "tbl":
				depth--
				if depth == 0 {
					return rows, nil
				}
			}
		}
	}
}
