package segment

import (
	"strings"
	"testing"

	"github.com/maastricht-university/transcript-analyzer/analysis"
	"github.com/maastricht-university/transcript-analyzer/hotword"
)

func TestMergeSpeakers(t *testing.T) {
	segs := []analysis.Segment{
		{Start: 0, End: 2, Text: "hi", Speaker: "A"},
		{Start: 2, End: 4, Text: "there", Speaker: "A"},
		{Start: 4, End: 6, Text: "hello", Speaker: "B"},
		{Start: 6, End: 7, Text: "back", Speaker: "A"},
	}
	blocks := MergeSpeakers(segs)
	if len(blocks) != 3 {
		t.Fatalf("blocks = %d, want 3", len(blocks))
	}
	b := blocks[0]
	if b.Speaker != "A" || b.Start != 0 || b.End != 4 || b.Text != "hi there" || b.First != 0 || b.Last != 1 {
		t.Errorf("first block = %+v", b)
	}
}

func TestMergeSpeakers_NoSpeakerData(t *testing.T) {
	segs := []analysis.Segment{
		{Start: 0, End: 2, Text: "one"},
		{Start: 2, End: 4, Text: "two"},
		{Start: 5, End: 6, Text: "three"},
	}
	blocks := MergeSpeakers(segs)
	if len(blocks) != 1 {
		t.Fatalf("blocks = %d, want 1", len(blocks))
	}
	if blocks[0].Speaker != UnknownSpeaker || blocks[0].End != 6 || blocks[0].Text != "one two three" {
		t.Errorf("block = %+v", blocks[0])
	}
}

func TestFormatBlocks(t *testing.T) {
	segs := []analysis.Segment{{Start: 65, End: 3725, Text: "你好世界", Speaker: "A"}}
	got := FormatBlocks(segs, MergeSpeakers(segs), 0)
	if got != "[01:05-01:02:05] A:\n  [01:05-01:02:05] 你好世界\n" {
		t.Errorf("got %q", got)
	}
	if cut := FormatBlocks(segs, MergeSpeakers(segs), 20); len([]rune(cut)) != 20 {
		t.Errorf("truncation not rune-safe: %q", cut)
	}
}

func TestFormatBlocks_KeepsSegmentTimestamps(t *testing.T) {
	segs := []analysis.Segment{
		{Start: 0, End: 2, Text: "one"},
		{Start: 2, End: 4, Text: " "},
		{Start: 700, End: 710, Text: "three"},
	}
	want := "[00:00-11:50] unknown:\n" +
		"  [00:00-00:02] one\n" +
		"  [11:40-11:50] three\n"
	if got := FormatBlocks(segs, MergeSpeakers(segs), 0); got != want {
		t.Errorf("got %q, want %q", got, want)
	}
}

// assertPartition checks that chapters cover [0, end) without gaps or overlaps.
func assertPartition(t *testing.T, chapters []Boundary, end float64) {
	t.Helper()
	if len(chapters) == 0 {
		t.Fatal("no chapters")
	}
	if chapters[0].Start != 0 {
		t.Errorf("first chapter starts at %v", chapters[0].Start)
	}
	for i := 1; i < len(chapters); i++ {
		if chapters[i].Start != chapters[i-1].End {
			t.Errorf("gap/overlap between chapter %d and %d: %v vs %v", i-1, i, chapters[i-1].End, chapters[i].Start)
		}
	}
	for i, c := range chapters {
		if c.Start >= c.End {
			t.Errorf("chapter %d is empty: %+v", i, c)
		}
	}
	if last := chapters[len(chapters)-1].End; last != end {
		t.Errorf("last chapter ends at %v, want %v", last, end)
	}
}

func TestTimeBuckets_IdleGap(t *testing.T) {
	segs := []analysis.Segment{
		{Start: 3, End: 10, Text: "a"},
		{Start: 12, End: 20, Text: "b"},
		{Start: 700, End: 710, Text: "c"}, // 680s of silence
		{Start: 711, End: 720, Text: "d"},
	}
	chapters := TimeBuckets(segs, 600, 0)
	if len(chapters) != 2 {
		t.Fatalf("chapters = %d, want 2", len(chapters))
	}
	assertPartition(t, chapters, 720)
	if chapters[1].Start != 700 {
		t.Errorf("second chapter starts at %v, want 700", chapters[1].Start)
	}

	// every segment falls in exactly one chapter
	for i, s := range segs {
		n := 0
		for _, c := range chapters {
			if Contains(c.Start, c.End, s) {
				n++
			}
		}
		if n != 1 {
			t.Errorf("segment %d contained in %d chapters", i, n)
		}
	}
}

func TestTimeBuckets_MaxLength(t *testing.T) {
	var segs []analysis.Segment
	for i := 0; i < 10; i++ {
		segs = append(segs, analysis.Segment{Start: float64(i * 100), End: float64(i*100 + 100), Text: "x"})
	}
	chapters := TimeBuckets(segs, 600, 300)
	assertPartition(t, chapters, 1000)
	if len(chapters) < 3 {
		t.Errorf("expected max length to split chapters, got %d", len(chapters))
	}
	for _, c := range chapters {
		if c.End-c.Start > 300 {
			t.Errorf("chapter longer than 300s: %+v", c)
		}
	}
}

func TestPartition_NormalizesModelOutput(t *testing.T) {
	bounds := []Boundary{
		{Title: "Second", Start: 120, End: 90}, // end ignored
		{Title: "First", Start: 5, End: 100},
		{Title: "dup", Start: 120, End: 200},
		{Title: "Out of range", Start: 999, End: 1200},
		{Title: "", Start: 200, End: 250},
	}
	got := Partition(bounds, 300)
	assertPartition(t, got, 300)
	if len(got) != 3 {
		t.Fatalf("chapters = %d, want 3: %+v", len(got), got)
	}
	if got[0].Title != "First" || got[1].Title != "Second" || got[2].Title != "Chapter 3" {
		t.Errorf("titles = %q %q %q", got[0].Title, got[1].Title, got[2].Title)
	}
	if Partition([]Boundary{{Start: 500}}, 300) != nil {
		t.Error("expected nil when nothing is usable")
	}
}

func TestContains_StraddlingSegmentExcluded(t *testing.T) {
	seg := analysis.Segment{Start: 95, End: 105}
	if Contains(0, 100, seg) || Contains(100, 200, seg) {
		t.Error("straddling segment must belong to neither chapter")
	}
}

func TestTokenCountAndDensity(t *testing.T) {
	if n := TokenCount("我们讨论 AI 和 machine-learning 2024"); n != 4+1+1+2+1 {
		t.Errorf("token count = %d, want 9", n)
	}
	if TokenCount("  ,,, ") != 0 {
		t.Error("punctuation should not count")
	}
	if Density(3, 0) != 0 {
		t.Error("density with no tokens must be 0")
	}
	if got := Density(1, 3); got != 33.3 {
		t.Errorf("density = %v, want 33.3", got)
	}
}

func TestDensity_DoublesWithMatches(t *testing.T) {
	tokens := 40
	for _, m := range []int{1, 2, 3, 5} {
		if d1, d2 := Density(m, tokens), Density(2*m, tokens); d2 != 2*d1 {
			t.Errorf("Density(%d)=%v, Density(%d)=%v", m, d1, 2*m, d2)
		}
	}
}

func TestBuildChapters(t *testing.T) {
	db, err := hotword.Parse("t.json", []byte(`{"domain":"t","terms":[{"chinese":"芯片","english":"Chip"}]}`))
	if err != nil {
		t.Fatal(err)
	}
	segs := []analysis.Segment{
		{Start: 0, End: 10, Text: "芯片 chip chip"},
		{Start: 10, End: 20, Text: "nothing here"},
		{Start: 20, End: 30, Text: "chip"},
	}
	matches := hotword.MatchSegments(db, segs)
	bounds := []Boundary{{Title: "A", Start: 0, End: 20}, {Title: "B", Start: 20, End: 30}}

	chapters := BuildChapters(segs, bounds, matches)
	if len(chapters) != 2 {
		t.Fatalf("chapters = %d", len(chapters))
	}
	a := chapters[0]
	if a.SegmentCount != 2 || len(a.Hotwords) != 1 || a.Hotwords[0].Count != 3 {
		t.Errorf("chapter A = %+v", a)
	}
	// 3 matches over 4+2 tokens
	if a.ProfessionalDensity != 50 {
		t.Errorf("density = %v, want 50", a.ProfessionalDensity)
	}
	if chapters[1].Hotwords[0].Timestamps[0] != 20 {
		t.Errorf("chapter B timestamps = %v", chapters[1].Hotwords[0].Timestamps)
	}
	if a.Summary != "" || strings.TrimSpace(a.Title) != "A" {
		t.Errorf("unexpected enrichment: %+v", a)
	}
}
