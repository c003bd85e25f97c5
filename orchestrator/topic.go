package orchestrator

import (
	"context"
	"errors"
	"math"
	"strings"

	"github.com/maastricht-university/transcript-analyzer/analysis"
	"github.com/maastricht-university/transcript-analyzer/inference"
	"github.com/maastricht-university/transcript-analyzer/segment"
)

const topicOp = "topic.classify"

const topicSystemPrompt = `You classify the subject of a conversation transcript.
Reply with a single JSON object and nothing else:
{"mainTopic": "technology" | "business" | "finance" | "health" | "education" | "general",
 "subTopic": "<short label>",
 "confidence": <number between 0 and 1>,
 "keywords": ["<up to 8 keywords>"],
 "description": "<one sentence>"}`

var errNoMainTopic = errors.New("reply names no main topic")

// classifyTopic asks the backend for the transcript's topic.
func (p *Pipeline) classifyTopic(ctx context.Context, tr *analysis.Transcript) inference.Result[analysis.Topic] {
	text := segment.Truncate(tr.FullText(), p.cfg.Features.TopicPromptChars)
	res := inference.Structured[topicReply](ctx, p.ai, topicOp, inference.Request{
		System:      topicSystemPrompt,
		User:        text,
		Temperature: 0.3,
		MaxTokens:   500,
	})
	if !res.OK() {
		return inference.Result[analysis.Topic]{Err: res.Err}
	}

	r := res.Value
	main := strings.ToLower(strings.TrimSpace(r.MainTopic))
	if main == "" {
		return inference.Fail[analysis.Topic](analysis.ParseFailed, topicOp, errNoMainTopic)
	}
	conf := r.Confidence
	if math.IsNaN(conf) {
		conf = 0
	}
	return inference.Ok(analysis.Topic{
		MainTopic:   main,
		SubTopic:    strings.TrimSpace(r.SubTopic),
		Confidence:  math.Max(0, math.Min(1, conf)),
		Keywords:    cleanKeywords(r.Keywords),
		Description: strings.TrimSpace(r.Description),
	})
}

// cleanKeywords trims and dedupes keywords, keeping their order. Never nil.
func cleanKeywords(in []string) []string {
	out := make([]string, 0, len(in))
	seen := make(map[string]bool)
	for _, k := range in {
		k = strings.TrimSpace(k)
		if k == "" || seen[strings.ToLower(k)] {
			continue
		}
		seen[strings.ToLower(k)] = true
		out = append(out, k)
	}
	return out
}
