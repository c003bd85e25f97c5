// Package orchestrator runs the analysis stages over one transcript:
// topic, terms, chapters, chapter enrichment and emotions. Every stage that
// depends on the inference backend has a deterministic fallback, so only an
// invalid transcript fails a run.
package orchestrator

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/transcript-analyzer/analysis"
	"github.com/maastricht-university/transcript-analyzer/clients"
	cfg "github.com/maastricht-university/transcript-analyzer/config"
	"github.com/maastricht-university/transcript-analyzer/emotion"
	"github.com/maastricht-university/transcript-analyzer/hotword"
	"github.com/maastricht-university/transcript-analyzer/inference"
	"github.com/maastricht-university/transcript-analyzer/segment"
)

type Pipeline struct {
	cfg     *cfg.Root
	http    *clients.HTTP
	ai      *inference.Client
	matcher *hotword.Matcher
	scorer  *emotion.Scorer
	log     logrus.FieldLogger
	now     func() time.Time
}

// NewPipeline wires a pipeline. A nil completer runs every inference stage on
// its fallback. Term databases come from c.Paths.Terms when set, else the
// built-in ones.
func NewPipeline(c *cfg.Root, completer inference.Completer, log logrus.FieldLogger) *Pipeline {
	if log == nil {
		log = logrus.StandardLogger()
	}
	var terms fs.FS
	if c.Paths.Terms != "" {
		terms = os.DirFS(c.Paths.Terms)
	}

	ai := inference.NewClient(completer, cfg.DurSeconds(c.Services.Inference.TimeoutSeconds), log)
	return &Pipeline{
		cfg:     c,
		http:    clients.NewHTTP(),
		ai:      ai,
		matcher: hotword.NewMatcher(hotword.NewLoader(terms, log), log),
		scorer: emotion.NewScorer(ai, emotion.Options{
			Escalate:   c.Features.EmotionEscalation,
			BatchSize:  c.Features.EmotionBatchSize,
			BatchDelay: cfg.DurMillis(c.Features.EmotionBatchDelayMs),
		}, log),
		log: log,
		now: func() time.Time { return time.Now().UTC() },
	}
}

// Transcribe sends an audio file to the configured transcription service.
func (p *Pipeline) Transcribe(ctx context.Context, audioPath string) (*analysis.Transcript, error) {
	asr, err := p.http.ASR(ctx, p.cfg.Services.ASR.URL, audioPath)
	if err != nil {
		return nil, err
	}
	return asr.ToTranscript(), nil
}

// Run analyzes tr and wraps the outcome in a Response. It never fails: an
// invalid transcript yields Success=false with the error message. tr itself is
// not modified; repairs apply to a copy.
func (p *Pipeline) Run(ctx context.Context, tr *analysis.Transcript) *Response {
	id := uuid.NewString()
	res, err := p.analyze(ctx, id, tr)
	if err != nil {
		return &Response{ID: id, Success: false, Error: err.Error(), Timestamp: p.now()}
	}
	return &Response{ID: id, Success: true, Timestamp: res.Timestamp, Result: res}
}

// Analyze runs all stages over tr. The only error it returns is InputInvalid.
func (p *Pipeline) Analyze(ctx context.Context, tr *analysis.Transcript) (*analysis.AnalysisResult, error) {
	return p.analyze(ctx, uuid.NewString(), tr)
}

type run struct {
	id       string
	stage    Stage
	degraded []string
	log      logrus.FieldLogger
}

func (r *run) advance(s Stage) {
	r.stage = s
	r.log.WithField("stage", s).Debug("orchestrator: stage complete")
}

func (r *run) degrade(name string, err error) {
	r.degraded = append(r.degraded, name)
	f := logrus.Fields{"stage": r.stage, "fallback": name}
	if err != nil {
		f["kind"] = analysis.KindOf(err)
		f["error"] = err
	}
	r.log.WithFields(f).Warn("orchestrator: stage degraded")
}

func (p *Pipeline) analyze(ctx context.Context, id string, tr *analysis.Transcript) (*analysis.AnalysisResult, error) {
	r := &run{id: id, stage: StageStart, log: p.log.WithField("run_id", id)}
	start := time.Now()

	tr = tr.Clone()
	if err := tr.Normalize(); err != nil {
		r.log.WithError(err).Error("orchestrator: invalid transcript, run aborted")
		return nil, err
	}
	segs := tr.Segments

	topicRes := p.classifyTopic(ctx, tr)
	topic := topicRes.Or(analysis.DefaultTopic())
	if !topicRes.OK() {
		r.degrade(degradedTopic, topicRes.Err)
	}
	r.advance(StageTopicClassified)

	terms := p.matcher.MatchTranscript(topic.MainTopic, segs)
	if terms.Domain == "" {
		r.degrade(degradedTerms, nil)
	}
	r.advance(StageTermsMatched)

	boundsRes := p.detectChapters(ctx, tr)
	bounds := boundsRes.Value
	if !boundsRes.OK() {
		r.degrade(degradedChapters, boundsRes.Err)
		bounds = segment.TimeBuckets(segs, float64(p.cfg.Features.IdleGapSeconds), float64(p.cfg.Features.MaxChapterSeconds))
	}
	chapters := segment.BuildChapters(segs, bounds, terms.Matches)
	r.advance(StageChaptered)

	if failed := p.summarizeChapters(ctx, segs, chapters, r.log); failed > 0 {
		r.degrade(degradedSummaries, errors.New("one or more chapter summaries unavailable"))
	}
	r.advance(StageChaptersEnriched)

	emo := p.scorer.ScoreAll(ctx, segs)
	if emo.Fallbacks > 0 {
		r.degrade(degradedEmotions, nil)
	}
	r.advance(StageEmotionsScored)

	res := &analysis.AnalysisResult{
		ID:             id,
		Topic:          topic,
		HotwordSummary: terms.Summary,
		Chapters:       chapters,
		Emotions:       emo.Emotions,
		Timestamp:      p.now(),
	}
	res.Statistics = statistics(tr, terms.Matches, res, r.degraded)
	r.advance(StageAssembled)

	r.log.WithFields(logrus.Fields{
		"topic":    topic.MainTopic,
		"chapters": len(chapters),
		"matches":  terms.Summary.TotalMatches,
		"degraded": r.degraded,
		"elapsed":  time.Since(start).Round(time.Millisecond),
	}).Info("orchestrator: analysis complete")
	return res, nil
}
