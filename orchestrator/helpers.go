package orchestrator

import (
	"math"
	"strings"

	"github.com/maastricht-university/transcript-analyzer/analysis"
	"github.com/maastricht-university/transcript-analyzer/hotword"
	"github.com/maastricht-university/transcript-analyzer/segment"
)

// speakingShare returns each speaker's fraction of the total speaking time.
// Unlabelled segments count toward segment.UnknownSpeaker.
func speakingShare(segs []analysis.Segment) (map[string]float64, int) {
	share := map[string]float64{}
	labelled := map[string]bool{}
	total := 0.0
	for _, s := range segs {
		spk := strings.TrimSpace(s.Speaker)
		if spk == "" {
			spk = segment.UnknownSpeaker
		} else {
			labelled[spk] = true
		}
		d := math.Max(0, s.End-s.Start)
		total += d
		share[spk] += d
	}
	if total > 0 {
		for k := range share {
			share[k] = round(share[k]/total, 3)
		}
	}
	return share, len(labelled)
}

func round(v float64, places int) float64 {
	p := math.Pow(10, float64(places))
	return math.Round(v*p) / p
}

func statistics(tr *analysis.Transcript, matches []hotword.Match, res *analysis.AnalysisResult, degraded []string) analysis.Statistics {
	share, speakers := speakingShare(tr.Segments)

	tokens := 0
	for _, s := range tr.Segments {
		tokens += segment.TokenCount(s.Text)
	}

	dist := map[string]int{}
	sentiments := map[analysis.Sentiment]int{}
	sum := 0.0
	for _, e := range res.Emotions {
		for _, t := range e.Tags {
			dist[t.Emotion]++
		}
		sentiments[e.OverallSentiment]++
		sum += e.SentimentScore
	}
	avg := 0.0
	if n := len(res.Emotions); n > 0 {
		avg = round(sum/float64(n), 3)
	}
	if degraded == nil {
		degraded = []string{}
	}

	return analysis.Statistics{
		TotalSegments:       len(tr.Segments),
		TotalDuration:       tr.Duration(),
		SpeakerCount:        speakers,
		SpeakingShare:       share,
		ChapterCount:        len(res.Chapters),
		TotalMatches:        res.HotwordSummary.TotalMatches,
		UniqueTermCount:     res.HotwordSummary.UniqueTermCount,
		ProfessionalDensity: segment.Density(len(matches), tokens),
		EmotionDistribution: dist,
		SentimentCounts:     sentiments,
		AverageSentiment:    avg,
		DegradedStages:      degraded,
	}
}
