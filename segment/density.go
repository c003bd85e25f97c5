package segment

import (
	"math"

	"github.com/maastricht-university/transcript-analyzer/hotword"
)

// TokenCount approximates the number of words in text independently of
// language: every logographic character counts as one token, as does every
// run of alphanumeric characters.
func TokenCount(text string) int {
	n := 0
	inWord := false
	for _, r := range text {
		switch {
		case hotword.IsLogographic(r):
			n++
			inWord = false
		case hotword.IsWordRune(r):
			if !inWord {
				n++
				inWord = true
			}
		default:
			inWord = false
		}
	}
	return n
}

// Density is the share of matched terms per hundred tokens, rounded to one
// decimal. It is 0 when there are no tokens.
func Density(matchCount, tokenCount int) float64 {
	if tokenCount <= 0 {
		return 0
	}
	return math.Round(float64(matchCount)/float64(tokenCount)*1000) / 10
}
