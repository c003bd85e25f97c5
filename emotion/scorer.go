package emotion

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/sirupsen/logrus"

	"github.com/maastricht-university/transcript-analyzer/analysis"
	"github.com/maastricht-university/transcript-analyzer/inference"
)

// Defaults for batch processing.
const (
	DefaultBatchSize  = 10
	DefaultBatchDelay = time.Second
)

// FallbackTag marks a segment whose escalation failed.
var FallbackTag = analysis.EmotionTag{Emotion: NeutralTag, Confidence: 0.5, Method: analysis.MethodFallback}

const judgeOp = "emotion.judge"

const judgeSystemPrompt = `You judge the emotion expressed by one segment of a spoken conversation.
Context segments are given only to disambiguate; judge the marked segment.
Reply with a single JSON object and nothing else:
{"emotion": "<one word, e.g. joy, surprise, worry, anger, sadness, calm, agreement, neutral>",
 "confidence": <number between 0 and 1>,
 "sentiment": "positive" | "negative" | "neutral"}`

// Options configures a Scorer.
type Options struct {
	Escalate   bool
	BatchSize  int
	BatchDelay time.Duration
}

// Scorer tags segments with emotions.
type Scorer struct {
	lex    *Lexicon
	client *inference.Client
	opts   Options
	log    logrus.FieldLogger

	sleep func(ctx context.Context, d time.Duration)
}

// NewScorer builds a Scorer. A nil client, or one without a backend, never escalates.
func NewScorer(client *inference.Client, opts Options, log logrus.FieldLogger) *Scorer {
	if opts.BatchSize <= 0 {
		opts.BatchSize = DefaultBatchSize
	}
	if opts.BatchDelay < 0 {
		opts.BatchDelay = 0
	}
	if log == nil {
		log = logrus.StandardLogger()
	}
	return &Scorer{
		lex:    NewLexicon(),
		client: client,
		opts:   opts,
		log:    log,
		sleep:  sleepCtx,
	}
}

func sleepCtx(ctx context.Context, d time.Duration) {
	t := time.NewTimer(d)
	defer t.Stop()
	select {
	case <-ctx.Done():
	case <-t.C:
	}
}

type judgement struct {
	Emotion    string  `json:"emotion"`
	Confidence float64 `json:"confidence"`
	Sentiment  string  `json:"sentiment"`
}

var errNoEmotion = errors.New("reply names no emotion")

// canEscalate reports whether escalation is enabled and a backend is configured.
func (s *Scorer) canEscalate() bool {
	return s.opts.Escalate && s.client.Enabled()
}

// needsEscalation reports whether scoring text would call the backend.
func (s *Scorer) needsEscalation(text string) bool {
	return s.canEscalate() && len(s.lex.KeywordTags(text)) == 0
}

// Score tags segment i of segs. Neighbouring segments are used as context
// when the segment is escalated. escalated reports whether a backend call was
// made. With escalation enabled but no backend configured, a segment without
// keyword tags gets FallbackTag and no call is made.
func (s *Scorer) Score(ctx context.Context, segs []analysis.Segment, i int) (out analysis.SegmentEmotion, escalated bool) {
	seg := segs[i]
	out = analysis.SegmentEmotion{Index: i, Start: seg.Start, End: seg.End}

	tags := s.lex.KeywordTags(seg.Text)
	var hint map[string]analysis.Sentiment
	switch {
	case len(tags) > 0 || !s.opts.Escalate:
	case !s.client.Enabled():
		tags = append(tags, FallbackTag)
	default:
		escalated = true
		res := s.judge(ctx, segs, i)
		if res.OK() {
			j := res.Value
			tags = append(tags, analysis.EmotionTag{Emotion: j.Emotion, Confidence: clamp01(j.Confidence), Method: analysis.MethodAI})
			if p := analysis.Sentiment(strings.ToLower(strings.TrimSpace(j.Sentiment))); p == analysis.Positive || p == analysis.Negative {
				hint = map[string]analysis.Sentiment{j.Emotion: p}
			}
		} else {
			s.log.WithFields(logrus.Fields{
				"segment": i,
				"kind":    res.Kind(),
				"error":   res.Err,
			}).Warn("emotion: escalation failed, using fallback tag")
			tags = append(tags, FallbackTag)
		}
	}
	tags = append(tags, StructuralTags(seg.Text)...)
	if tags == nil {
		tags = []analysis.EmotionTag{}
	}

	out.Tags = tags
	out.OverallSentiment, out.SentimentScore = aggregate(tags, hint)
	return out, escalated
}

func (s *Scorer) judge(ctx context.Context, segs []analysis.Segment, i int) inference.Result[judgement] {
	var b strings.Builder
	if i > 0 {
		fmt.Fprintf(&b, "Previous segment: %s\n", strings.TrimSpace(segs[i-1].Text))
	}
	fmt.Fprintf(&b, "Segment to judge: %s\n", strings.TrimSpace(segs[i].Text))
	if i+1 < len(segs) {
		fmt.Fprintf(&b, "Next segment: %s\n", strings.TrimSpace(segs[i+1].Text))
	}

	res := inference.Structured[judgement](ctx, s.client, judgeOp, inference.Request{
		System:      judgeSystemPrompt,
		User:        b.String(),
		Temperature: 0.2,
		MaxTokens:   200,
	})
	if !res.OK() {
		return res
	}
	res.Value.Emotion = strings.ToLower(strings.TrimSpace(res.Value.Emotion))
	if res.Value.Emotion == "" {
		return inference.Fail[judgement](analysis.ParseFailed, judgeOp, errNoEmotion)
	}
	return res
}
