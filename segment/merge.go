// Package segment turns a flat, chronological segment sequence into larger
// units: contiguous speaker blocks and chapters that partition the timeline.
package segment

import (
	"fmt"
	"math"
	"strings"
	"unicode/utf8"

	"github.com/maastricht-university/transcript-analyzer/analysis"
)

// UnknownSpeaker labels segments that carry no speaker.
const UnknownSpeaker = "unknown"

// Block is a run of consecutive segments spoken by the same speaker.
type Block struct {
	Speaker string
	Start   float64
	End     float64
	Text    string
	First   int // index of the first segment
	Last    int // index of the last segment
}

func speakerOf(s analysis.Segment) string {
	if sp := strings.TrimSpace(s.Speaker); sp != "" {
		return sp
	}
	return UnknownSpeaker
}

// MergeSpeakers merges contiguous segments that share a speaker. Segments
// without speaker data count as one constant unknown speaker, so a transcript
// with no speaker labels becomes a single block.
func MergeSpeakers(segs []analysis.Segment) []Block {
	var out []Block
	for i, s := range segs {
		sp := speakerOf(s)
		text := strings.TrimSpace(s.Text)
		if n := len(out); n > 0 && out[n-1].Speaker == sp {
			b := &out[n-1]
			b.End = s.End
			b.Last = i
			if text != "" {
				if b.Text != "" {
					b.Text += " "
				}
				b.Text += text
			}
			continue
		}
		out = append(out, Block{Speaker: sp, Start: s.Start, End: s.End, Text: text, First: i, Last: i})
	}
	return out
}

// FormatTimestamp renders seconds as mm:ss, or hh:mm:ss past the hour.
func FormatTimestamp(sec float64) string {
	if sec < 0 || math.IsNaN(sec) {
		sec = 0
	}
	total := int(sec)
	h, m, s := total/3600, (total%3600)/60, total%60
	if h > 0 {
		return fmt.Sprintf("%02d:%02d:%02d", h, m, s)
	}
	return fmt.Sprintf("%02d:%02d", m, s)
}

// FormatBlocks renders each block as a speaker header followed by one
// timestamped line per segment in it, cut to at most limit characters
// (limit <= 0 means no limit). blocks must come from MergeSpeakers(segs).
func FormatBlocks(segs []analysis.Segment, blocks []Block, limit int) string {
	var sb strings.Builder
	for _, b := range blocks {
		fmt.Fprintf(&sb, "[%s-%s] %s:\n", FormatTimestamp(b.Start), FormatTimestamp(b.End), b.Speaker)
		for _, s := range segs[b.First : b.Last+1] {
			text := strings.TrimSpace(s.Text)
			if text == "" {
				continue
			}
			fmt.Fprintf(&sb, "  [%s-%s] %s\n", FormatTimestamp(s.Start), FormatTimestamp(s.End), text)
		}
	}
	return Truncate(sb.String(), limit)
}

// Truncate cuts s to at most limit characters without splitting a rune.
func Truncate(s string, limit int) string {
	if limit <= 0 || utf8.RuneCountInString(s) <= limit {
		return s
	}
	rs := []rune(s)
	return string(rs[:limit])
}
