package orchestrator

import (
	"time"

	"github.com/maastricht-university/transcript-analyzer/analysis"
)

// Stage is a step of one pipeline run. Stages run strictly in this order.
type Stage string

const (
	StageStart            Stage = "start"
	StageTopicClassified  Stage = "topic_classified"
	StageTermsMatched     Stage = "terms_matched"
	StageChaptered        Stage = "chaptered"
	StageChaptersEnriched Stage = "chapters_enriched"
	StageEmotionsScored   Stage = "emotions_scored"
	StageAssembled        Stage = "assembled"
)

// Names recorded in Statistics.DegradedStages when a stage falls back.
const (
	degradedTopic     = "topic"
	degradedTerms     = "terms"
	degradedChapters  = "chapters"
	degradedSummaries = "summaries"
	degradedEmotions  = "emotions"
)

// Response is the envelope of one run. Only invalid input makes Success false;
// Result is nil in that case.
type Response struct {
	ID        string                   `json:"id"`
	Success   bool                     `json:"success"`
	Error     string                   `json:"error,omitempty"`
	Timestamp time.Time                `json:"timestamp"`
	Result    *analysis.AnalysisResult `json:"result,omitempty"`
}

// topicReply is the judgement requested from the inference backend.
type topicReply struct {
	MainTopic   string   `json:"mainTopic"`
	SubTopic    string   `json:"subTopic"`
	Confidence  float64  `json:"confidence"`
	Keywords    []string `json:"keywords"`
	Description string   `json:"description"`
}

type summaryReply struct {
	Summary  string   `json:"summary"`
	Keywords []string `json:"keywords"`
}
