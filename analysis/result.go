package analysis

import "time"

// Topic is the classification of a whole transcript.
type Topic struct {
	MainTopic   string   `json:"mainTopic" yaml:"mainTopic" bson:"main_topic"`
	SubTopic    string   `json:"subTopic" yaml:"subTopic" bson:"sub_topic"`
	Confidence  float64  `json:"confidence" yaml:"confidence" bson:"confidence"`
	Keywords    []string `json:"keywords" yaml:"keywords" bson:"keywords"`
	Description string   `json:"description" yaml:"description" bson:"description"`
}

// DefaultTopic is used whenever classification fails.
func DefaultTopic() Topic {
	return Topic{
		MainTopic:  "general",
		SubTopic:   "unclassified",
		Confidence: 0.5,
		Keywords:   []string{},
	}
}

// TermRef identifies a domain term by its primary forms.
type TermRef struct {
	Key     string `json:"key" yaml:"key" bson:"key"`
	Chinese string `json:"chinese,omitempty" yaml:"chinese,omitempty" bson:"chinese,omitempty"`
	English string `json:"english,omitempty" yaml:"english,omitempty" bson:"english,omitempty"`
}

// Label is the display form of the term.
func (r TermRef) Label() string {
	switch {
	case r.Chinese != "" && r.English != "":
		return r.Chinese + " (" + r.English + ")"
	case r.Chinese != "":
		return r.Chinese
	default:
		return r.English
	}
}

// TermFrequency counts the occurrences of one term.
// Count is raw occurrences; Timestamps is deduplicated and chronological.
type TermFrequency struct {
	Term       TermRef   `json:"term" yaml:"term" bson:"term"`
	Count      int       `json:"count" yaml:"count" bson:"count"`
	Timestamps []float64 `json:"timestamps" yaml:"timestamps" bson:"timestamps"`
}

// HotwordSummary aggregates all term matches of a transcript.
type HotwordSummary struct {
	Domain          string          `json:"domain" yaml:"domain" bson:"domain"`
	TotalMatches    int             `json:"totalMatches" yaml:"totalMatches" bson:"total_matches"`
	UniqueTermCount int             `json:"uniqueTermCount" yaml:"uniqueTermCount" bson:"unique_term_count"`
	Terms           []TermFrequency `json:"terms" yaml:"terms" bson:"terms"`
}

// Chapter is one contiguous slice of the transcript timeline.
type Chapter struct {
	Title               string          `json:"title" yaml:"title" bson:"title"`
	Start               float64         `json:"start" yaml:"start" bson:"start"`
	End                 float64         `json:"end" yaml:"end" bson:"end"`
	Summary             string          `json:"summary,omitempty" yaml:"summary,omitempty" bson:"summary,omitempty"`
	Keywords            []string        `json:"keywords,omitempty" yaml:"keywords,omitempty" bson:"keywords,omitempty"`
	Hotwords            []TermFrequency `json:"hotwords" yaml:"hotwords" bson:"hotwords"`
	ProfessionalDensity float64         `json:"professionalDensity" yaml:"professionalDensity" bson:"professional_density"`
	SegmentCount        int             `json:"segmentCount" yaml:"segmentCount" bson:"segment_count"`
}

// Method records which heuristic produced an emotion tag.
type Method string

const (
	MethodKeyword     Method = "keyword"
	MethodPunctuation Method = "punctuation"
	MethodRepetition  Method = "repetition"
	MethodAI          Method = "ai"
	MethodFallback    Method = "fallback"
)

// Sentiment is the aggregate polarity of a segment.
type Sentiment string

const (
	Positive Sentiment = "positive"
	Negative Sentiment = "negative"
	Neutral  Sentiment = "neutral"
)

// EmotionTag is one detected emotion.
type EmotionTag struct {
	Emotion    string  `json:"emotion" yaml:"emotion" bson:"emotion"`
	Confidence float64 `json:"confidence" yaml:"confidence" bson:"confidence"`
	Method     Method  `json:"method" yaml:"method" bson:"method"`
}

// SegmentEmotion is the scored emotion of one transcript segment.
type SegmentEmotion struct {
	Index            int          `json:"index" yaml:"index" bson:"index"`
	Start            float64      `json:"start" yaml:"start" bson:"start"`
	End              float64      `json:"end" yaml:"end" bson:"end"`
	Tags             []EmotionTag `json:"tags" yaml:"tags" bson:"tags"`
	OverallSentiment Sentiment    `json:"overallSentiment" yaml:"overallSentiment" bson:"overall_sentiment"`
	SentimentScore   float64      `json:"sentimentScore" yaml:"sentimentScore" bson:"sentiment_score"`
}

// Statistics summarizes a run.
type Statistics struct {
	TotalSegments       int                `json:"totalSegments" yaml:"totalSegments" bson:"total_segments"`
	TotalDuration       float64            `json:"totalDuration" yaml:"totalDuration" bson:"total_duration"`
	SpeakerCount        int                `json:"speakerCount" yaml:"speakerCount" bson:"speaker_count"`
	SpeakingShare       map[string]float64 `json:"speakingShare" yaml:"speakingShare" bson:"speaking_share"`
	ChapterCount        int                `json:"chapterCount" yaml:"chapterCount" bson:"chapter_count"`
	TotalMatches        int                `json:"totalMatches" yaml:"totalMatches" bson:"total_matches"`
	UniqueTermCount     int                `json:"uniqueTermCount" yaml:"uniqueTermCount" bson:"unique_term_count"`
	ProfessionalDensity float64            `json:"professionalDensity" yaml:"professionalDensity" bson:"professional_density"`
	EmotionDistribution map[string]int     `json:"emotionDistribution" yaml:"emotionDistribution" bson:"emotion_distribution"`
	SentimentCounts     map[Sentiment]int  `json:"sentimentCounts" yaml:"sentimentCounts" bson:"sentiment_counts"`
	AverageSentiment    float64            `json:"averageSentiment" yaml:"averageSentiment" bson:"average_sentiment"`
	DegradedStages      []string           `json:"degradedStages" yaml:"degradedStages" bson:"degraded_stages"`
}

// AnalysisResult is the root aggregate of one pipeline run.
type AnalysisResult struct {
	ID             string           `json:"id" yaml:"id" bson:"_id"`
	Topic          Topic            `json:"topic" yaml:"topic" bson:"topic"`
	HotwordSummary HotwordSummary   `json:"hotwordSummary" yaml:"hotwordSummary" bson:"hotword_summary"`
	Chapters       []Chapter        `json:"chapters" yaml:"chapters" bson:"chapters"`
	Emotions       []SegmentEmotion `json:"emotions" yaml:"emotions" bson:"emotions"`
	Statistics     Statistics       `json:"statistics" yaml:"statistics" bson:"statistics"`
	Timestamp      time.Time        `json:"timestamp" yaml:"timestamp" bson:"timestamp"`
}
