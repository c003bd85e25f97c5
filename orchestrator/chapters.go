package orchestrator

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"strings"

	"github.com/sirupsen/logrus"
	"golang.org/x/sync/errgroup"

	"github.com/maastricht-university/transcript-analyzer/analysis"
	"github.com/maastricht-university/transcript-analyzer/inference"
	"github.com/maastricht-university/transcript-analyzer/segment"
)

const (
	chaptersOp = "chapters.detect"
	summaryOp  = "chapters.summarize"
)

const chaptersSystemPrompt = `You split a timestamped conversation transcript into chapters by topic.
Each speaker turn starts with a header [start-end] speaker: followed by one
indented [start-end] text line per utterance, with times as mm:ss or hh:mm:ss.
Reply with a JSON array and nothing else, times in seconds:
[{"title": "<short title>", "start": <seconds>, "end": <seconds>}]`

const summarySystemPrompt = `You summarize one chapter of a conversation.
Reply with a single JSON object and nothing else:
{"summary": "<two or three sentences>", "keywords": ["<up to 5 keywords>"]}`

var errNoUsableChapters = errors.New("reply holds no usable chapter boundary")

// chapterReply accepts both a bare array and an object wrapping it, as models
// produce either.
type chapterReply []segment.Boundary

func (c *chapterReply) UnmarshalJSON(data []byte) error {
	if t := bytes.TrimSpace(data); len(t) > 0 && t[0] == '{' {
		var wrapped struct {
			Chapters []segment.Boundary `json:"chapters"`
		}
		if err := json.Unmarshal(t, &wrapped); err != nil {
			return err
		}
		*c = wrapped.Chapters
		return nil
	}
	var list []segment.Boundary
	if err := json.Unmarshal(data, &list); err != nil {
		return err
	}
	*c = list
	return nil
}

// detectChapters asks the backend for chapter boundaries and normalizes them
// into a partition of the timeline.
func (p *Pipeline) detectChapters(ctx context.Context, tr *analysis.Transcript) inference.Result[[]segment.Boundary] {
	blocks := segment.MergeSpeakers(tr.Segments)
	res := inference.Structured[chapterReply](ctx, p.ai, chaptersOp, inference.Request{
		System:      chaptersSystemPrompt,
		User:        segment.FormatBlocks(tr.Segments, blocks, p.cfg.Features.ChapterPromptChars),
		Temperature: 0.3,
		MaxTokens:   1500,
	})
	if !res.OK() {
		return inference.Result[[]segment.Boundary]{Err: res.Err}
	}
	bounds := segment.Partition(res.Value, tr.Duration())
	if bounds == nil {
		return inference.Fail[[]segment.Boundary](analysis.ParseFailed, chaptersOp, errNoUsableChapters)
	}
	return inference.Ok(bounds)
}

// summarizeChapters fills in summaries and keywords concurrently. A failed
// chapter keeps its structural fields. It returns the number of failures.
func (p *Pipeline) summarizeChapters(ctx context.Context, segs []analysis.Segment, chapters []analysis.Chapter, log logrus.FieldLogger) int {
	failed := make([]bool, len(chapters))

	var g errgroup.Group
	g.SetLimit(max(1, p.cfg.Features.EmotionBatchSize))
	for i := range chapters {
		text := segment.ChapterText(segs, segment.SegmentsIn(segs, chapters[i].Start, chapters[i].End))
		if text == "" {
			continue
		}
		i := i
		g.Go(func() error {
			res := inference.Structured[summaryReply](ctx, p.ai, summaryOp, inference.Request{
				System:      summarySystemPrompt,
				User:        segment.Truncate(text, p.cfg.Features.SummaryPromptChars),
				Temperature: 0.3,
				MaxTokens:   500,
			})
			summary := strings.TrimSpace(res.Value.Summary)
			if !res.OK() || summary == "" {
				failed[i] = true
				log.WithFields(logrus.Fields{
					"chapter": i,
					"kind":    res.Kind(),
					"error":   res.Err,
				}).Warn("orchestrator: chapter summary unavailable")
				return nil
			}
			chapters[i].Summary = summary
			chapters[i].Keywords = cleanKeywords(res.Value.Keywords)
			return nil
		})
	}
	_ = g.Wait()

	n := 0
	for _, f := range failed {
		if f {
			n++
		}
	}
	return n
}
