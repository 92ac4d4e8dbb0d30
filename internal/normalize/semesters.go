package normalize

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/kama950028/KadrSp/internal/model"
)

var firstInt = regexp.MustCompile(`\d+`)

// flagTokens splits control-form cells on ';', ',', '/' and whitespace
func flagTokens(cells []string) []string {
	var out []string
	for _, c := range cells {
		out = append(out, strings.FieldsFunc(c, func(r rune) bool {
			switch r {
			case ';', ',', '/', ' ', '\t', '\n', '\u00a0':
				return true
			}
			return false
		})...)
	}
	return out
}

// Flags the parsed control-form cells of one row
type Flags struct {
	Semesters []int // first integer of each token, unsorted, may repeat
	Marked    bool  // at least one non-empty token, digit or not
}

// ParseFlags reads control-form cells. Each token contributes its first integer
// literal; tokens without digits only mark the form as present.
func ParseFlags(cells []string) Flags {
	var f Flags
	for _, tok := range flagTokens(cells) {
		f.Marked = true
		if m := firstInt.FindString(tok); m != "" {
			if n, err := strconv.Atoi(m); err == nil {
				f.Semesters = append(f.Semesters, n)
			}
		}
	}
	return f
}

// Occurrences how many times the control form happens: distinct semesters, or
// once when the form is marked without a semester number.
func (f Flags) Occurrences() int {
	if n := len(model.NewSemesterSet(f.Semesters...)); n > 0 {
		return n
	}
	if f.Marked {
		return 1
	}
	return 0
}

// SemesterSet merges the semesters of several flag groups. No semesters at all
// yields the unspecified (nil) marker, never {0}.
func SemesterSet(groups ...Flags) model.IntArray {
	var all []int
	for _, g := range groups {
		all = append(all, g.Semesters...)
	}
	return model.NewSemesterSet(all...)
}

// ParseSemesters is SemesterSet over raw cells
func ParseSemesters(cells ...string) model.IntArray {
	return SemesterSet(ParseFlags(cells))
}
