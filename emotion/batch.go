package emotion

import (
	"context"
	"sync/atomic"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/maastricht-university/transcript-analyzer/analysis"
)

// Report is the outcome of scoring a whole transcript.
type Report struct {
	Emotions  []analysis.SegmentEmotion
	Escalated int // segments sent to the backend
	Fallbacks int // segments tagged with FallbackTag
}

// ScoreAll scores every segment in fixed-size batches. Segments of a batch are
// scored concurrently; results keep transcript order. A fixed delay separates
// consecutive batches that both need backend calls.
func (s *Scorer) ScoreAll(ctx context.Context, segs []analysis.Segment) Report {
	out := make([]analysis.SegmentEmotion, len(segs))
	var escalated, fallbacks atomic.Int64
	calledBefore := false

	for start := 0; start < len(segs); start += s.opts.BatchSize {
		end := min(start+s.opts.BatchSize, len(segs))

		needs := false
		for i := start; i < end; i++ {
			if s.needsEscalation(segs[i].Text) {
				needs = true
				break
			}
		}
		if needs && calledBefore && s.opts.BatchDelay > 0 {
			s.log.WithFields(logrus.Fields{
				"batch_start": start,
				"delay":       s.opts.BatchDelay,
			}).Debug("emotion: throttling before next batch")
			s.sleep(ctx, s.opts.BatchDelay)
		}

		var g errgroup.Group
		for i := start; i < end; i++ {
			i := i
			g.Go(func() error {
				e, called := s.Score(ctx, segs, i)
				if called {
					escalated.Add(1)
				}
				if hasFallback(e.Tags) {
					fallbacks.Add(1)
				}
				out[i] = e
				return nil
			})
		}
		_ = g.Wait()
		calledBefore = calledBefore || needs
	}

	r := Report{Emotions: out, Escalated: int(escalated.Load()), Fallbacks: int(fallbacks.Load())}
	s.log.WithFields(logrus.Fields{
		"segments":  len(segs),
		"escalated": r.Escalated,
		"fallbacks": r.Fallbacks,
	}).Info("emotion: scoring complete")
	return r
}

func hasFallback(tags []analysis.EmotionTag) bool {
	for _, t := range tags {
		if t.Method == analysis.MethodFallback {
			return true
		}
	}
	return false
}
