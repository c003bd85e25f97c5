package analysis

import (
	"encoding/json"
	"slices"
	"sort"
	"strings"
)

// Segment is one time-stamped piece of a transcript paired with its speaker label.
type Segment struct {
	Start   float64 `json:"start"` // sec
	End     float64 `json:"end"`   // sec
	Text    string  `json:"text"`
	Speaker string  `json:"speaker,omitempty"`
}

// Duration returns End-Start.
func (s Segment) Duration() float64 { return s.End - s.Start }

// Transcript is the input to the analysis pipeline. Segments are chronological.
type Transcript struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
}

// wireTranscript is the collaborator-facing shape, where speaker labels may arrive
// as a sequence parallel to segments.
type wireTranscript struct {
	Text     string    `json:"text"`
	Segments []Segment `json:"segments"`
	Speakers []string  `json:"speakers,omitempty"`
}

// UnmarshalJSON accepts a parallel "speakers" array and folds it into the segments.
// A speaker already present on a segment wins.
func (t *Transcript) UnmarshalJSON(data []byte) error {
	var w wireTranscript
	if err := json.Unmarshal(data, &w); err != nil {
		return err
	}
	for i := range w.Segments {
		if w.Segments[i].Speaker == "" && i < len(w.Speakers) {
			w.Segments[i].Speaker = w.Speakers[i]
		}
	}
	t.Text = w.Text
	t.Segments = w.Segments
	return nil
}

// Duration is the end of the last segment.
func (t *Transcript) Duration() float64 {
	if t == nil || len(t.Segments) == 0 {
		return 0
	}
	return t.Segments[len(t.Segments)-1].End
}

// FullText returns Text, or the segment texts joined with spaces when Text is empty.
func (t *Transcript) FullText() string {
	if strings.TrimSpace(t.Text) != "" {
		return t.Text
	}
	parts := make([]string, 0, len(t.Segments))
	for _, s := range t.Segments {
		if s := strings.TrimSpace(s.Text); s != "" {
			parts = append(parts, s)
		}
	}
	return strings.Join(parts, " ")
}

// Clone returns a copy of t whose segments can be repaired without touching t.
func (t *Transcript) Clone() *Transcript {
	if t == nil {
		return nil
	}
	return &Transcript{Text: t.Text, Segments: slices.Clone(t.Segments)}
}

// Normalize validates the transcript and repairs ordering so that segments are
// sorted by start and non-overlapping. It modifies t.Segments in place; use
// Clone first to keep the original. Structural problems are InputInvalid.
func (t *Transcript) Normalize() error {
	const op = "transcript.normalize"
	if t == nil {
		return Errorf(InputInvalid, op, "transcript is missing")
	}
	if len(t.Segments) == 0 {
		return Errorf(InputInvalid, op, "segment list is empty")
	}

	hasText := strings.TrimSpace(t.Text) != ""
	for i, s := range t.Segments {
		if s.Start < 0 || s.End < 0 {
			return Errorf(InputInvalid, op, "segment %d has negative time", i)
		}
		if s.End < s.Start {
			return Errorf(InputInvalid, op, "segment %d ends before it starts (%.2f < %.2f)", i, s.End, s.Start)
		}
		if strings.TrimSpace(s.Text) != "" {
			hasText = true
		}
	}
	if !hasText {
		return Errorf(InputInvalid, op, "transcript has no text")
	}

	sort.SliceStable(t.Segments, func(i, j int) bool {
		return t.Segments[i].Start < t.Segments[j].Start
	})
	for i := 1; i < len(t.Segments); i++ {
		prev, cur := t.Segments[i-1], &t.Segments[i]
		if cur.Start < prev.End {
			cur.Start = prev.End
			if cur.End < cur.Start {
				cur.End = cur.Start
			}
		}
	}
	return nil
}
