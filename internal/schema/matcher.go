package schema

import "strings"

// Matcher header predicate
type Matcher func(h Header) bool

// Contains matches when the compact header contains any needle.
// Needles are compared without whitespace, so "экза мен" still matches "экзамен".
func Contains(needles ...string) Matcher {
	compact := make([]string, len(needles))
	for i, n := range needles {
		compact[i] = NewHeader(n).Compact
	}
	return func(h Header) bool {
		for _, n := range compact {
			if strings.Contains(h.Compact, n) {
				return true
			}
		}
		return false
	}
}

// Equals matches the whole compact header
func Equals(values ...string) Matcher {
	compact := make([]string, len(values))
	for i, v := range values {
		compact[i] = NewHeader(v).Compact
	}
	return func(h Header) bool {
		for _, v := range compact {
			if h.Compact == v {
				return true
			}
		}
		return false
	}
}

// HasPrefix matches the start of the compact header
func HasPrefix(prefixes ...string) Matcher {
	compact := make([]string, len(prefixes))
	for i, p := range prefixes {
		compact[i] = NewHeader(p).Compact
	}
	return func(h Header) bool {
		for _, p := range compact {
			if strings.HasPrefix(h.Compact, p) {
				return true
			}
		}
		return false
	}
}

// Word matches when any token of the header equals one of words.
// Short abbreviations ("пр", "кп") need whole-token matching.
func Word(words ...string) Matcher {
	set := make(map[string]struct{}, len(words))
	for _, w := range words {
		set[NewHeader(w).Compact] = struct{}{}
	}
	return func(h Header) bool {
		for _, t := range h.Words() {
			if _, ok := set[t]; ok {
				return true
			}
		}
		return false
	}
}

// All every matcher holds
func All(ms ...Matcher) Matcher {
	return func(h Header) bool {
		for _, m := range ms {
			if !m(h) {
				return false
			}
		}
		return true
	}
}

// Any at least one matcher holds
func Any(ms ...Matcher) Matcher {
	return func(h Header) bool {
		for _, m := range ms {
			if m(h) {
				return true
			}
		}
		return false
	}
}

// Not negates m
func Not(m Matcher) Matcher {
	return func(h Header) bool { return !m(h) }
}
