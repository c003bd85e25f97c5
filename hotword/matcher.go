package hotword

import (
	"sort"

	"github.com/maastricht-university/transcript-analyzer/analysis"
)

// Match is one valid occurrence of a pattern. Position and Length are in characters.
type Match struct {
	Term           *Term
	MatchedLiteral string
	Position       int
	Length         int
	SegmentIndex   int
	Timestamp      float64
}

type span struct{ from, to int }

func (s span) overlaps(o span) bool { return s.from < o.to && o.from < s.to }

// Scan finds every valid occurrence of patterns in text, case-insensitively.
//
// Non-logographic patterns must sit on word boundaries: neither neighbouring
// character may be alphanumeric. Logographic patterns match anywhere.
// Overlapping hits of the same term keep only the longest, which relies on
// patterns being ordered longest first as Compile returns them.
func Scan(text string, patterns []Pattern) []Match {
	if text == "" || len(patterns) == 0 {
		return nil
	}
	orig := []rune(text)
	folded := fold(text)

	accepted := make(map[string][]span)
	var out []Match
	for _, p := range patterns {
		n := p.Len()
		if n == 0 || n > len(folded) {
			continue
		}
		for i := indexRunes(folded, p.folded, 0); i >= 0; i = indexRunes(folded, p.folded, i+1) {
			if !p.logographic && !onWordBoundary(folded, i, i+n) {
				continue
			}
			s := span{i, i + n}
			if overlapsAny(accepted[p.Term.Key], s) {
				continue
			}
			accepted[p.Term.Key] = append(accepted[p.Term.Key], s)
			out = append(out, Match{
				Term:           p.Term,
				MatchedLiteral: string(orig[i : i+n]),
				Position:       i,
				Length:         n,
			})
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Position < out[j].Position })
	return out
}

func onWordBoundary(text []rune, from, to int) bool {
	if from > 0 && IsWordRune(text[from-1]) {
		return false
	}
	if to < len(text) && IsWordRune(text[to]) {
		return false
	}
	return true
}

func overlapsAny(spans []span, s span) bool {
	for _, o := range spans {
		if o.overlaps(s) {
			return true
		}
	}
	return false
}

func indexRunes(hay, needle []rune, from int) int {
	last := len(hay) - len(needle)
outer:
	for i := from; i <= last; i++ {
		for j, r := range needle {
			if hay[i+j] != r {
				continue outer
			}
		}
		return i
	}
	return -1
}

// UniqueTerms returns the distinct terms of matches in first-seen order.
func UniqueTerms(matches []Match) []*Term {
	seen := make(map[string]bool)
	var out []*Term
	for _, m := range matches {
		if seen[m.Term.Key] {
			continue
		}
		seen[m.Term.Key] = true
		out = append(out, m.Term)
	}
	return out
}

// MatchSegments scans every segment and tags each match with the segment's
// index and start time. Matches are returned in chronological order.
func MatchSegments(db *Database, segs []analysis.Segment) []Match {
	if db == nil {
		return nil
	}
	var out []Match
	for i, s := range segs {
		for _, m := range Scan(s.Text, db.Patterns) {
			m.SegmentIndex = i
			m.Timestamp = s.Start
			out = append(out, m)
		}
	}
	return out
}

// Frequencies groups matches by term. Count is the number of raw occurrences,
// Timestamps are deduplicated in chronological order. The result is sorted by
// count, highest first, ties by first occurrence.
func Frequencies(matches []Match) []analysis.TermFrequency {
	index := make(map[string]int)
	var out []analysis.TermFrequency
	for _, m := range matches {
		i, ok := index[m.Term.Key]
		if !ok {
			i = len(out)
			index[m.Term.Key] = i
			out = append(out, analysis.TermFrequency{Term: m.Term.Ref(), Timestamps: []float64{}})
		}
		f := &out[i]
		f.Count++
		if n := len(f.Timestamps); n == 0 || f.Timestamps[n-1] != m.Timestamp {
			f.Timestamps = append(f.Timestamps, m.Timestamp)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Count > out[j].Count })
	return out
}

// Summarize builds the hotword summary of a domain from chronological matches.
func Summarize(domain string, matches []Match) analysis.HotwordSummary {
	terms := Frequencies(matches)
	if terms == nil {
		terms = []analysis.TermFrequency{}
	}
	return analysis.HotwordSummary{
		Domain:          domain,
		TotalMatches:    len(matches),
		UniqueTermCount: len(UniqueTerms(matches)),
		Terms:           terms,
	}
}
