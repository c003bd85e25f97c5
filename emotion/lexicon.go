// Package emotion scores the emotional tone of transcript segments. Local
// heuristics (trigger words, punctuation, repetition) run first; segments they
// cannot place are escalated to the inference backend when enabled.
package emotion

import (
	"math"
	"sort"
	"strings"

	"github.com/maastricht-university/transcript-analyzer/analysis"
)

// Emotion categories.
const (
	Joy          = "joy"
	Surprise     = "surprise"
	Deliberation = "deliberation"
	Agreement    = "agreement"
	Inquiry      = "inquiry"
	Worry        = "worry"
	Anger        = "anger"
	Sadness      = "sadness"
	Calm         = "calm"
	Excitement   = "excitement"
	Emphasis     = "emphasis"
	NeutralTag   = "neutral"
)

var triggers = map[string][]string{
	Joy: {
		"开心", "高兴", "快乐", "哈哈", "太棒", "棒", "很好", "非常好", "真好", "不错", "喜欢", "满意",
		"happy", "glad", "great", "awesome", "wonderful", "love it", "haha",
	},
	Surprise: {
		"哇", "天哪", "竟然", "居然", "没想到", "真的吗", "震惊",
		"wow", "unbelievable", "no way", "surprising", "amazing",
	},
	Deliberation: {
		"我觉得", "我认为", "可能", "也许", "或许", "让我想想", "考虑", "嗯",
		"maybe", "perhaps", "i think", "let me think", "probably",
	},
	Agreement: {
		"是的", "没错", "对的", "对对", "同意", "赞同", "确实", "当然",
		"agree", "exactly", "absolutely", "that's right", "of course",
	},
	Inquiry: {
		"为什么", "怎么", "是不是", "如何", "请问",
		"why", "how come", "what if", "wonder",
	},
	Worry: {
		"担心", "害怕", "焦虑", "紧张", "不安", "恐怕",
		"worried", "afraid", "anxious", "nervous", "concerned",
	},
	Anger: {
		"生气", "愤怒", "气死", "讨厌", "烦", "受不了",
		"angry", "furious", "annoying", "hate", "ridiculous",
	},
	Sadness: {
		"难过", "伤心", "遗憾", "可惜", "失望", "哭",
		"sad", "sorry", "unfortunately", "disappointed", "regret",
	},
	Calm: {
		"平静", "放松", "冷静", "慢慢来", "没关系", "淡定",
		"calm", "relax", "take it easy", "no worries", "peaceful",
	},
}

// modifiers scale keyword confidence. Only the strongest one present applies.
var modifiers = map[string]float64{
	"极其": 1.8, "超级": 1.6, "非常": 1.5, "特别": 1.5, "十分": 1.4, "太": 1.3, "真": 1.2, "很": 1.2,
	"extremely": 1.8, "super": 1.5, "very": 1.3, "totally": 1.4, "really": 1.2, "so": 1.2,
}

var polarity = map[string]analysis.Sentiment{
	Joy:        analysis.Positive,
	Agreement:  analysis.Positive,
	Calm:       analysis.Positive,
	Excitement: analysis.Positive,
	Worry:      analysis.Negative,
	Anger:      analysis.Negative,
	Sadness:    analysis.Negative,
}

// Polarity returns the sentiment an emotion category contributes to.
// Unknown categories are neutral.
func Polarity(emotion string) analysis.Sentiment {
	if p, ok := polarity[emotion]; ok {
		return p
	}
	return analysis.Neutral
}

// Known reports whether emotion is one of the categories the scorer knows.
func Known(emotion string) bool {
	if _, ok := triggers[emotion]; ok {
		return true
	}
	switch emotion {
	case Excitement, Emphasis, NeutralTag:
		return true
	}
	return false
}

// Lexicon holds the trigger and modifier tables in case-folded form. A trigger
// or modifier counts wherever it occurs as a substring of the text.
type Lexicon struct {
	triggers  []trigger
	modifiers []modifier
}

type trigger struct {
	category string
	word     string
}

type modifier struct {
	word   string
	factor float64
}

// NewLexicon folds the built-in trigger and modifier tables.
func NewLexicon() *Lexicon {
	l := &Lexicon{}

	cats := make([]string, 0, len(triggers))
	for c := range triggers {
		cats = append(cats, c)
	}
	sort.Strings(cats)
	for _, c := range cats {
		for _, w := range triggers[c] {
			l.triggers = append(l.triggers, trigger{category: c, word: strings.ToLower(w)})
		}
	}

	for w, f := range modifiers {
		l.modifiers = append(l.modifiers, modifier{word: strings.ToLower(w), factor: f})
	}
	return l
}

// Intensity returns the largest modifier present in text, or 1.
func (l *Lexicon) Intensity(text string) float64 {
	folded := strings.ToLower(text)
	strongest := 1.0
	for _, m := range l.modifiers {
		if strings.Contains(folded, m.word) {
			strongest = math.Max(strongest, m.factor)
		}
	}
	return strongest
}

// KeywordTags scores each category by the number of distinct triggers present,
// scaled by the text's intensity and normalized by 3. Tags are ordered by the
// first occurrence of their category in text.
func (l *Lexicon) KeywordTags(text string) []analysis.EmotionTag {
	folded := strings.ToLower(text)

	distinct := make(map[string]int)
	first := make(map[string]int)
	var order []string
	for _, t := range l.triggers {
		at := strings.Index(folded, t.word)
		if at < 0 {
			continue
		}
		if distinct[t.category] == 0 {
			order = append(order, t.category)
			first[t.category] = at
		} else {
			first[t.category] = min(first[t.category], at)
		}
		distinct[t.category]++
	}
	if len(order) == 0 {
		return nil
	}
	sort.SliceStable(order, func(i, j int) bool { return first[order[i]] < first[order[j]] })

	intensity := l.Intensity(text)
	out := make([]analysis.EmotionTag, 0, len(order))
	for _, c := range order {
		out = append(out, analysis.EmotionTag{
			Emotion:    c,
			Confidence: clamp01(float64(distinct[c]) * intensity / 3),
			Method:     analysis.MethodKeyword,
		})
	}
	return out
}

// StructuralTags applies the punctuation and repetition heuristics.
func StructuralTags(text string) []analysis.EmotionTag {
	var out []analysis.EmotionTag
	var question, exclaim bool
	run, prev := 0, rune(-1)
	repeated := false
	for _, r := range text {
		switch r {
		case '?', '？':
			question = true
		case '!', '！':
			exclaim = true
		}
		if r == prev {
			run++
		} else {
			run, prev = 1, r
		}
		if run >= 3 && !isSpace(r) {
			repeated = true
		}
	}
	if question {
		out = append(out, analysis.EmotionTag{Emotion: Inquiry, Confidence: 0.7, Method: analysis.MethodPunctuation})
	}
	if exclaim {
		out = append(out, analysis.EmotionTag{Emotion: Excitement, Confidence: 0.6, Method: analysis.MethodPunctuation})
	}
	if repeated {
		out = append(out, analysis.EmotionTag{Emotion: Emphasis, Confidence: 0.8, Method: analysis.MethodRepetition})
	}
	return out
}

func isSpace(r rune) bool {
	return r == ' ' || r == '\t' || r == '\n' || r == '\r' || r == '　'
}

func clamp01(v float64) float64 {
	return math.Max(0, math.Min(1, v))
}

// Aggregate derives the overall sentiment and score of a tag set.
func Aggregate(tags []analysis.EmotionTag) (analysis.Sentiment, float64) {
	return aggregate(tags, nil)
}

// aggregate sums confidences per polarity. hint overrides the polarity of
// emotions outside the known categories, as reported by the backend.
func aggregate(tags []analysis.EmotionTag, hint map[string]analysis.Sentiment) (analysis.Sentiment, float64) {
	var pos, neg float64
	for _, t := range tags {
		p := Polarity(t.Emotion)
		if h, ok := hint[t.Emotion]; ok && !Known(t.Emotion) {
			p = h
		}
		switch p {
		case analysis.Positive:
			pos += t.Confidence
		case analysis.Negative:
			neg += t.Confidence
		}
	}

	score := math.Max(-1, math.Min(1, (pos-neg)/2))
	switch {
	case pos-neg > 0.2:
		return analysis.Positive, score
	case neg-pos > 0.2:
		return analysis.Negative, score
	default:
		return analysis.Neutral, score
	}
}
