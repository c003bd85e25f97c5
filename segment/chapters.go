package segment

import (
	"fmt"
	"math"
	"sort"
	"strings"

	"github.com/maastricht-university/transcript-analyzer/analysis"
	"github.com/maastricht-university/transcript-analyzer/hotword"
)

// DefaultIdleGap is the silence, in seconds, that starts a new fallback chapter.
const DefaultIdleGap = 600.0

// Boundary is a chapter interval, as proposed by the inference backend or by
// the time-bucket fallback.
type Boundary struct {
	Title string  `json:"title"`
	Start float64 `json:"start"`
	End   float64 `json:"end"`
}

func defaultTitle(i int) string { return fmt.Sprintf("Chapter %d", i+1) }

// Partition normalizes arbitrary boundaries into a contiguous, non-overlapping
// partition of [0, duration]: boundaries are sorted by start, those outside the
// timeline dropped, the first snapped to 0, each end set to the next start and
// the last end set to duration. It returns nil when nothing usable remains.
func Partition(bounds []Boundary, duration float64) []Boundary {
	var valid []Boundary
	for _, b := range bounds {
		if math.IsNaN(b.Start) || math.IsInf(b.Start, 0) || b.Start >= duration {
			continue
		}
		if b.Start < 0 {
			b.Start = 0
		}
		valid = append(valid, b)
	}
	if len(valid) == 0 {
		return nil
	}
	sort.SliceStable(valid, func(i, j int) bool { return valid[i].Start < valid[j].Start })

	out := make([]Boundary, 0, len(valid))
	for _, b := range valid {
		if n := len(out); n > 0 && b.Start <= out[n-1].Start {
			continue
		}
		out = append(out, b)
	}
	out[0].Start = 0
	for i := range out {
		if i+1 < len(out) {
			out[i].End = out[i+1].Start
		} else {
			out[i].End = duration
		}
		out[i].Title = strings.TrimSpace(out[i].Title)
		if out[i].Title == "" {
			out[i].Title = defaultTitle(i)
		}
	}
	return out
}

// TimeBuckets is the deterministic chaptering used when no external boundaries
// are available. A new chapter starts when the silence between the end of the
// previous segment and the start of the next exceeds idleGap, or, when maxLen
// is positive, when the current chapter would grow longer than maxLen. The
// chapters partition [0, last segment end].
func TimeBuckets(segs []analysis.Segment, idleGap, maxLen float64) []Boundary {
	if len(segs) == 0 {
		return nil
	}
	if idleGap <= 0 {
		idleGap = DefaultIdleGap
	}

	var out []Boundary
	chapStart := 0.0
	lastEnd := segs[0].End
	for _, s := range segs[1:] {
		gap := s.Start - lastEnd
		tooLong := maxLen > 0 && s.End-chapStart > maxLen
		if (gap > idleGap || tooLong) && s.Start > chapStart {
			out = append(out, Boundary{Title: defaultTitle(len(out)), Start: chapStart, End: s.Start})
			chapStart = s.Start
		}
		lastEnd = math.Max(lastEnd, s.End)
	}
	out = append(out, Boundary{Title: defaultTitle(len(out)), Start: chapStart, End: segs[len(segs)-1].End})
	return out
}

// Contains reports whether seg lies entirely inside [start, end]. Segments that
// straddle a boundary belong to neither side.
func Contains(start, end float64, seg analysis.Segment) bool {
	return seg.Start >= start && seg.End <= end
}

// SegmentsIn returns the indices of the segments contained in [start, end].
func SegmentsIn(segs []analysis.Segment, start, end float64) []int {
	var out []int
	for i, s := range segs {
		if Contains(start, end, s) {
			out = append(out, i)
		}
	}
	return out
}

// ChapterText concatenates the text of the given segments.
func ChapterText(segs []analysis.Segment, idx []int) string {
	parts := make([]string, 0, len(idx))
	for _, i := range idx {
		if t := strings.TrimSpace(segs[i].Text); t != "" {
			parts = append(parts, t)
		}
	}
	return strings.Join(parts, " ")
}

// BuildChapters turns boundaries into chapters carrying the terms matched in
// their segments and their professional density. Summary and keywords are left
// for enrichment.
func BuildChapters(segs []analysis.Segment, bounds []Boundary, matches []hotword.Match) []analysis.Chapter {
	bySegment := make(map[int][]hotword.Match)
	for _, m := range matches {
		bySegment[m.SegmentIndex] = append(bySegment[m.SegmentIndex], m)
	}

	out := make([]analysis.Chapter, 0, len(bounds))
	for _, b := range bounds {
		idx := SegmentsIn(segs, b.Start, b.End)

		var chapterMatches []hotword.Match
		tokens := 0
		for _, i := range idx {
			chapterMatches = append(chapterMatches, bySegment[i]...)
			tokens += TokenCount(segs[i].Text)
		}
		hot := hotword.Frequencies(chapterMatches)
		if hot == nil {
			hot = []analysis.TermFrequency{}
		}

		out = append(out, analysis.Chapter{
			Title:               b.Title,
			Start:               b.Start,
			End:                 b.End,
			Hotwords:            hot,
			ProfessionalDensity: Density(len(chapterMatches), tokens),
			SegmentCount:        len(idx),
		})
	}
	return out
}
