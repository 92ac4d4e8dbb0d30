// Package schema infers which canonical field each raw column header carries.
//
// Rule sets are ordered (predicate, field) tables. Every header is tested against
// the rules in declaration order and the first matching rule claims it, so more
// specific rules are listed before generic ones. Several headers may resolve to
// the same field; their values are combined downstream.
package schema

import (
	"strings"
	"unicode"

	"github.com/kama950028/KadrSp/internal/document"
	pkgerrors "github.com/kama950028/KadrSp/pkg/errors"
)

// Field canonical semantic field
type Field string

// Skip claims a header without mapping it, shielding it from later rules.
const Skip Field = "_skip"

// Header a raw column label in the forms the matchers look at
type Header struct {
	Raw     string
	Lower   string // collapsed, lower-cased, ё folded to е
	Compact string // Lower without any whitespace
}

// NewHeader normalizes a raw label
func NewHeader(raw string) Header {
	lower := strings.ReplaceAll(strings.ToLower(document.Collapse(raw)), "ё", "е")
	return Header{
		Raw:     raw,
		Lower:   lower,
		Compact: strings.ReplaceAll(lower, " ", ""),
	}
}

// Words splits the header into letter/digit tokens
func (h Header) Words() []string {
	return strings.FieldsFunc(h.Lower, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
}

// Rule one (predicate, field) entry
type Rule struct {
	Field Field
	Match Matcher
	// After restricts the rule to headers placed to the right of the first
	// column already resolved to this field.
	After Field
}

// RuleSet an ordered rule table plus the fields a document cannot do without
type RuleSet struct {
	Name      string
	Rules     []Rule
	Mandatory []Field
}

// Mapping resolution result for one header row
type Mapping struct {
	Headers []string
	columns map[Field][]int
}

// Resolve maps every header to at most one field. A mandatory field with no
// header yields a SchemaInferenceError listing the detected headers.
func Resolve(headers []string, set RuleSet) (*Mapping, error) {
	m := &Mapping{Headers: headers, columns: make(map[Field][]int)}
	seen := make(map[Field]bool)

	for i, raw := range headers {
		h := NewHeader(raw)
		if h.Compact == "" {
			continue
		}
		for _, rule := range set.Rules {
			if rule.After != "" && !seen[rule.After] {
				continue
			}
			if !rule.Match(h) {
				continue
			}
			seen[rule.Field] = true
			if rule.Field != Skip {
				m.columns[rule.Field] = append(m.columns[rule.Field], i)
			}
			break
		}
	}

	for _, f := range set.Mandatory {
		if !m.Has(f) {
			return nil, &pkgerrors.SchemaInferenceError{Field: string(f), Headers: nonEmpty(headers)}
		}
	}
	return m, nil
}

// Has reports whether at least one header resolved to f
func (m *Mapping) Has(f Field) bool { return len(m.columns[f]) > 0 }

// Columns header indexes resolved to f, left to right
func (m *Mapping) Columns(f Field) []int { return m.columns[f] }

// Value first non-empty cell among f's columns
func (m *Mapping) Value(cells []string, f Field) string {
	for _, i := range m.columns[f] {
		if i < len(cells) {
			if v := strings.TrimSpace(cells[i]); v != "" {
				return v
			}
		}
	}
	return ""
}

// Values every cell of f's columns, empties included, in column order
func (m *Mapping) Values(cells []string, f Field) []string {
	cols := m.columns[f]
	out := make([]string, 0, len(cols))
	for _, i := range cols {
		if i < len(cells) {
			out = append(out, cells[i])
		} else {
			out = append(out, "")
		}
	}
	return out
}

// Fields resolved fields, for diagnostics
func (m *Mapping) Fields() map[Field][]string {
	out := make(map[Field][]string, len(m.columns))
	for f, cols := range m.columns {
		for _, i := range cols {
			out[f] = append(out[f], m.Headers[i])
		}
	}
	return out
}

func nonEmpty(headers []string) []string {
	out := make([]string, 0, len(headers))
	for _, h := range headers {
		if strings.TrimSpace(h) != "" {
			out = append(out, h)
		}
	}
	return out
}
