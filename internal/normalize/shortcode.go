package normalize

import (
	"context"
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"unicode"
)

var (
	// "09.04.04 Магистратура (Архитектура и разработка ПО)"
	programTitle = regexp.MustCompile(`^\s*(\d{2}\.\d{2}\.\d{2})\s+(.*?)\s*\((.+)\)\s*$`)
	programCode  = regexp.MustCompile(`^\s*(\d{2}\.\d{2}\.\d{2})\b\s*(.*)$`)
)

// maxSuffix bounds the collision search
const maxSuffix = 1000

// ShortCode derives "<code>_<initials>_<year>" from a program title.
//
// Initials are the upper-cased first letters of the words in the parenthesized
// profile phrase, skipping stopwords. A title without a profile phrase uses the
// words after the code; a title without a code uses all of its words.
func (p Policy) ShortCode(name string, year int) (string, error) {
	var code, phrase string
	if m := programTitle.FindStringSubmatch(name); m != nil {
		code, phrase = m[1], m[3]
	} else if m := programCode.FindStringSubmatch(name); m != nil {
		code, phrase = m[1], m[2]
	} else {
		phrase = name
	}

	initials := p.initials(phrase)
	if initials == "" {
		return "", fmt.Errorf("cannot derive short code from %q", name)
	}

	parts := make([]string, 0, 3)
	if code != "" {
		parts = append(parts, code)
	}
	parts = append(parts, initials)
	if year > 0 {
		parts = append(parts, strconv.Itoa(year))
	}
	return strings.Join(parts, "_"), nil
}

func (p Policy) initials(phrase string) string {
	words := strings.FieldsFunc(phrase, func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r)
	})
	var b strings.Builder
	for _, w := range words {
		if _, stop := p.Stopwords[Fold(w)]; stop {
			continue
		}
		for _, r := range w {
			if unicode.IsLetter(r) {
				b.WriteRune(unicode.ToUpper(r))
			}
			break
		}
	}
	return b.String()
}

// UniqueShortCode returns base when free, otherwise the first free of
// base_1 ... base_<maxSuffix> as reported by exists.
func UniqueShortCode(ctx context.Context, base string, exists func(ctx context.Context, code string) (bool, error)) (string, error) {
	for n := 0; n <= maxSuffix; n++ {
		candidate := base
		if n > 0 {
			candidate = base + "_" + strconv.Itoa(n)
		}
		taken, err := exists(ctx, candidate)
		if err != nil {
			return "", err
		}
		if !taken {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("short code %q: no free suffix up to %d", base, maxSuffix)
}
