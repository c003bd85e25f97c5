package report

import (
	"fmt"
	"sort"
	"strings"

	"github.com/maastricht-university/transcript-analyzer/analysis"
	"github.com/maastricht-university/transcript-analyzer/segment"
)

// maxTermRows bounds the term table.
const maxTermRows = 20

// Markdown renders res as a human-readable report with fixed sections.
func Markdown(res *analysis.AnalysisResult) string {
	var b strings.Builder
	st := res.Statistics

	b.WriteString("# Transcript Analysis Report\n\n")

	b.WriteString("## Basic Info\n\n")
	fmt.Fprintf(&b, "- **ID**: %s\n", res.ID)
	fmt.Fprintf(&b, "- **Generated**: %s\n", res.Timestamp.Format("2006-01-02 15:04:05 MST"))
	fmt.Fprintf(&b, "- **Duration**: %s\n", segment.FormatTimestamp(st.TotalDuration))
	fmt.Fprintf(&b, "- **Segments**: %d\n", st.TotalSegments)
	fmt.Fprintf(&b, "- **Speakers**: %d\n", st.SpeakerCount)
	fmt.Fprintf(&b, "- **Chapters**: %d\n\n", len(res.Chapters))

	t := res.Topic
	b.WriteString("## Topic Classification\n\n")
	fmt.Fprintf(&b, "- **Main topic**: %s\n", t.MainTopic)
	fmt.Fprintf(&b, "- **Sub topic**: %s\n", t.SubTopic)
	fmt.Fprintf(&b, "- **Confidence**: %.0f%%\n", t.Confidence*100)
	if len(t.Keywords) > 0 {
		fmt.Fprintf(&b, "- **Keywords**: %s\n", strings.Join(t.Keywords, ", "))
	}
	if t.Description != "" {
		fmt.Fprintf(&b, "\n%s\n", t.Description)
	}
	b.WriteString("\n")

	hs := res.HotwordSummary
	b.WriteString("## Professional Terms\n\n")
	if len(hs.Terms) == 0 {
		b.WriteString("No domain terms detected.\n\n")
	} else {
		fmt.Fprintf(&b, "Domain **%s**: %d matches of %d distinct terms.\n\n", hs.Domain, hs.TotalMatches, hs.UniqueTermCount)
		b.WriteString("| Term | Count | First heard at |\n|---|---|---|\n")
		for i, tf := range hs.Terms {
			if i == maxTermRows {
				break
			}
			fmt.Fprintf(&b, "| %s | %d | %s |\n", tf.Term.Label(), tf.Count, stamps(tf.Timestamps, 3))
		}
		b.WriteString("\n")
	}

	b.WriteString("## Chapters\n\n")
	for i, c := range res.Chapters {
		fmt.Fprintf(&b, "### %d. %s (%s - %s)\n\n", i+1, c.Title, segment.FormatTimestamp(c.Start), segment.FormatTimestamp(c.End))
		if c.Summary != "" {
			fmt.Fprintf(&b, "%s\n\n", c.Summary)
		}
		if len(c.Keywords) > 0 {
			fmt.Fprintf(&b, "- **Keywords**: %s\n", strings.Join(c.Keywords, ", "))
		}
		if len(c.Hotwords) > 0 {
			labels := make([]string, 0, len(c.Hotwords))
			for _, h := range c.Hotwords {
				labels = append(labels, fmt.Sprintf("%s ×%d", h.Term.Label(), h.Count))
			}
			fmt.Fprintf(&b, "- **Terms**: %s\n", strings.Join(labels, ", "))
		}
		fmt.Fprintf(&b, "- **Professional density**: %.1f%%\n\n", c.ProfessionalDensity)
	}

	b.WriteString("## Insights\n\n")
	if emo, n := dominantEmotion(st.EmotionDistribution); n > 0 {
		fmt.Fprintf(&b, "- **Dominant emotion**: %s (%d tags)\n", emo, n)
	}
	fmt.Fprintf(&b, "- **Sentiment**: %d positive, %d neutral, %d negative (average %.2f)\n",
		st.SentimentCounts[analysis.Positive], st.SentimentCounts[analysis.Neutral], st.SentimentCounts[analysis.Negative], st.AverageSentiment)
	fmt.Fprintf(&b, "- **Terminology level**: %s (%.1f%%)\n", DensityLevel(st.ProfessionalDensity), st.ProfessionalDensity)
	if len(st.DegradedStages) > 0 {
		fmt.Fprintf(&b, "- **Degraded stages**: %s\n", strings.Join(st.DegradedStages, ", "))
	}
	return b.String()
}

// DensityLevel buckets a professional density percentage.
func DensityLevel(d float64) string {
	switch {
	case d >= 5:
		return "high"
	case d >= 2:
		return "medium"
	default:
		return "low"
	}
}

// dominantEmotion returns the most frequent emotion, ties broken by name.
func dominantEmotion(dist map[string]int) (string, int) {
	keys := make([]string, 0, len(dist))
	for k := range dist {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	best, n := "", 0
	for _, k := range keys {
		if dist[k] > n {
			best, n = k, dist[k]
		}
	}
	return best, n
}

func stamps(ts []float64, limit int) string {
	parts := make([]string, 0, limit)
	for i, t := range ts {
		if i == limit {
			parts = append(parts, "…")
			break
		}
		parts = append(parts, segment.FormatTimestamp(t))
	}
	return strings.Join(parts, ", ")
}
