package normalize

import (
	"path/filepath"
	"regexp"
	"strconv"
	"strings"

	pkgerrors "github.com/kama950028/KadrSp/pkg/errors"
)

var filenameYear = regexp.MustCompile(`(?:^|\D)((?:19|20)\d{2})(?:\D|$)`)

// CurriculumFile what a curriculum upload's name encodes
type CurriculumFile struct {
	Stem   string // name without directory and extension
	Prefix string // program short-code prefix, the text before the first '_'
	Year   int    // first plausible year in the name, 0 when absent
}

// ParseCurriculumFilename validates "<code>_<rest>.xlsx|.xls"
func ParseCurriculumFilename(filename string) (CurriculumFile, error) {
	base := filepath.Base(strings.ReplaceAll(filename, "\\", "/"))
	ext := strings.ToLower(filepath.Ext(base))
	if ext != ".xlsx" && ext != ".xls" {
		return CurriculumFile{}, &pkgerrors.FilenameFormatError{Filename: filename}
	}
	stem := strings.TrimSpace(base[:len(base)-len(ext)])
	prefix, rest, ok := strings.Cut(stem, "_")
	prefix = strings.TrimSpace(prefix)
	if !ok || prefix == "" || strings.TrimSpace(rest) == "" {
		return CurriculumFile{}, &pkgerrors.FilenameFormatError{Filename: filename}
	}
	return CurriculumFile{Stem: stem, Prefix: prefix, Year: YearIn(rest)}, nil
}

// YearIn returns the first 19xx/20xx number in s, or 0
func YearIn(s string) int {
	m := filenameYear.FindStringSubmatch(s)
	if m == nil {
		return 0
	}
	y, _ := strconv.Atoi(m[1])
	return y
}
