package normalize

import (
	"strings"
	"unicode"

	"golang.org/x/text/cases"
	"golang.org/x/text/unicode/norm"

	"github.com/kama950028/KadrSp/internal/document"
)

var folder = cases.Fold()

// Fold canonical comparison form: NFC, case-folded, ё→е, whitespace collapsed.
func Fold(s string) string {
	s = norm.NFC.String(document.Collapse(s))
	s = folder.String(s)
	return strings.ReplaceAll(s, "ё", "е")
}

// NameKey reconciliation key for an instructor's full name.
// Trailing punctuation is dropped so "Иванов И.И." and "Иванов И.И" agree.
func NameKey(fullName string) string {
	return strings.TrimRight(Fold(fullName), ".,; ")
}

// TitleKey join key for discipline titles: Fold with punctuation turned into
// spaces, so "Базы данных (БД)" and "базы данных бд" agree.
func TitleKey(title string) string {
	f := Fold(title)
	var b strings.Builder
	b.Grow(len(f))
	for _, r := range f {
		if unicode.IsLetter(r) || unicode.IsDigit(r) {
			b.WriteRune(r)
		} else {
			b.WriteByte(' ')
		}
	}
	return strings.Join(strings.Fields(b.String()), " ")
}

// CleanText trims and collapses a free-text cell
func CleanText(s string) string {
	return document.Collapse(s)
}

// absentMarkers cell values meaning "none"
var absentMarkers = map[string]struct{}{
	"отсутствует": {}, "отсутствуют": {}, "нет": {}, "не имеет": {},
	"-": {}, "—": {}, "–": {},
}

// Optional returns "" for cells that only say the value is absent
func Optional(s string) string {
	s = CleanText(s)
	if _, ok := absentMarkers[Fold(s)]; ok {
		return ""
	}
	return s
}

// SplitList splits a free-text list on ';' and newlines, trimming and dropping
// empties and repeats (first spelling wins).
func SplitList(s string) []string {
	parts := strings.FieldsFunc(s, func(r rune) bool { return r == ';' || r == '\n' || r == '\r' })
	seen := make(map[string]struct{}, len(parts))
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		p = strings.Trim(CleanText(p), " .,")
		if p == "" {
			continue
		}
		k := Fold(p)
		if _, ok := seen[k]; ok {
			continue
		}
		seen[k] = struct{}{}
		out = append(out, p)
	}
	return out
}
