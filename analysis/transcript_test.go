package analysis

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestTranscript_UnmarshalParallelSpeakers(t *testing.T) {
	raw := `{
		"text": "hello there general",
		"segments": [
			{"start": 0, "end": 1.5, "text": "hello"},
			{"start": 1.5, "end": 3, "text": "there", "speaker": "B"},
			{"start": 3, "end": 4, "text": "general"}
		],
		"speakers": ["A", "A", "C"]
	}`

	var tr Transcript
	if err := json.Unmarshal([]byte(raw), &tr); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	want := []string{"A", "B", "C"}
	for i, s := range tr.Segments {
		if s.Speaker != want[i] {
			t.Errorf("segment %d speaker = %q, want %q", i, s.Speaker, want[i])
		}
	}
	if tr.Duration() != 4 {
		t.Errorf("duration = %v, want 4", tr.Duration())
	}
}

func TestTranscript_NormalizeRejectsInvalid(t *testing.T) {
	tests := []struct {
		name string
		tr   *Transcript
	}{
		{"nil", nil},
		{"no segments", &Transcript{Text: "something"}},
		{"empty segment list", &Transcript{Text: "x", Segments: []Segment{}}},
		{"no text", &Transcript{Segments: []Segment{{Start: 0, End: 1, Text: "  "}}}},
		{"end before start", &Transcript{Segments: []Segment{{Start: 5, End: 1, Text: "x"}}}},
		{"negative", &Transcript{Segments: []Segment{{Start: -1, End: 1, Text: "x"}}}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.tr.Normalize()
			if err == nil {
				t.Fatal("expected error")
			}
			if !errors.Is(err, ErrInputInvalid) {
				t.Errorf("expected ErrInputInvalid, got %v", err)
			}
			if !KindOf(err).Fatal() {
				t.Errorf("expected fatal kind, got %s", KindOf(err))
			}
		})
	}
}

func TestTranscript_NormalizeSortsAndClamps(t *testing.T) {
	tr := &Transcript{Segments: []Segment{
		{Start: 10, End: 12, Text: "c"},
		{Start: 0, End: 5, Text: "a"},
		{Start: 4, End: 9, Text: "b"},
	}}
	if err := tr.Normalize(); err != nil {
		t.Fatalf("normalize: %v", err)
	}
	got := []string{tr.Segments[0].Text, tr.Segments[1].Text, tr.Segments[2].Text}
	if got[0] != "a" || got[1] != "b" || got[2] != "c" {
		t.Fatalf("order = %v", got)
	}
	if tr.Segments[1].Start != 5 {
		t.Errorf("overlapping start not clamped: %v", tr.Segments[1].Start)
	}
	if tr.FullText() != "a b c" {
		t.Errorf("full text = %q", tr.FullText())
	}
}

func TestError_IsAndKind(t *testing.T) {
	base := errors.New("boom")
	err := NewError(ParseFailed, "topic.decode", base)

	if !errors.Is(err, ErrParseFailed) {
		t.Error("expected errors.Is ErrParseFailed")
	}
	if errors.Is(err, ErrInputInvalid) {
		t.Error("did not expect ErrInputInvalid")
	}
	if !errors.Is(err, base) {
		t.Error("expected wrapped cause to be reachable")
	}
	if KindOf(base) != ExternalCallFailed {
		t.Errorf("unclassified kind = %s", KindOf(base))
	}
}

func TestTranscript_CloneIsolatesRepairs(t *testing.T) {
	orig := &Transcript{Segments: []Segment{
		{Start: 5, End: 9, Text: "second"},
		{Start: 0, End: 6, Text: "first"},
	}}
	c := orig.Clone()
	if err := c.Normalize(); err != nil {
		t.Fatal(err)
	}
	if c.Segments[0].Text != "first" || c.Segments[1].Start != 6 {
		t.Errorf("clone = %+v", c.Segments)
	}
	if orig.Segments[0].Text != "second" || orig.Segments[0].Start != 5 {
		t.Errorf("original changed: %+v", orig.Segments)
	}
	if (*Transcript)(nil).Clone() != nil {
		t.Error("nil clone must be nil")
	}
}
