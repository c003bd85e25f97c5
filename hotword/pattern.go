package hotword

import (
	"sort"
	"strings"
	"unicode"
	"unicode/utf8"
)

// Pattern is one literal form of a term: a primary form or a variant.
type Pattern struct {
	Literal string
	Term    *Term

	folded      []rune
	logographic bool
}

// Len is the length of the literal in characters.
func (p Pattern) Len() int { return len(p.folded) }

// Logographic reports whether the literal is matched without word boundaries.
func (p Pattern) Logographic() bool { return p.logographic }

// Compile flattens the primary forms and variants of terms into patterns sorted
// by literal length, longest first. Ties keep their original order.
// terms must not be modified afterwards; patterns point into it.
func Compile(terms []Term) []Pattern {
	var out []Pattern
	for i := range terms {
		t := &terms[i]
		seen := make(map[string]bool)
		add := func(lit string) {
			lit = strings.TrimSpace(lit)
			if lit == "" {
				return
			}
			folded := fold(lit)
			if seen[string(folded)] {
				return
			}
			seen[string(folded)] = true
			out = append(out, Pattern{
				Literal:     lit,
				Term:        t,
				folded:      folded,
				logographic: hasLogographic(lit),
			})
		}
		add(t.Chinese)
		add(t.English)
		for _, v := range t.Variants {
			add(v)
		}
	}
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Len() > out[j].Len()
	})
	return out
}

// fold lower-cases rune by rune so that offsets in the folded text line up
// with offsets in the original.
func fold(s string) []rune {
	rs := make([]rune, 0, utf8.RuneCountInString(s))
	for _, r := range s {
		rs = append(rs, unicode.ToLower(r))
	}
	return rs
}

// IsLogographic reports whether r belongs to a logographic script
// (CJK ideographs and the Japanese syllabaries used alongside them).
func IsLogographic(r rune) bool {
	return unicode.Is(unicode.Han, r) ||
		unicode.Is(unicode.Hiragana, r) ||
		unicode.Is(unicode.Katakana, r)
}

func hasLogographic(s string) bool {
	for _, r := range s {
		if IsLogographic(r) {
			return true
		}
	}
	return false
}

// IsWordRune reports whether r is part of an alphanumeric word. Logographic
// characters are not: each of them stands on its own.
func IsWordRune(r rune) bool {
	if IsLogographic(r) {
		return false
	}
	return unicode.IsLetter(r) || unicode.IsDigit(r)
}
