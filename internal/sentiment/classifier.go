// Package sentiment classifies article text into a polarity score and a
// three-way label under fixed thresholds.
package sentiment

import (
	"strings"
	"unicode/utf8"

	"github.com/quantfolio/quantfolio/internal/db"
)

// Fixed classification thresholds. Polarity strictly above positiveThreshold
// maps to positive, strictly below negativeThreshold to negative, everything
// else (boundaries included) to neutral. These are design parameters, not
// runtime-tunable: identical input must always classify identically.
const (
	positiveThreshold = 0.1
	negativeThreshold = -0.1
)

// Scorer produces a polarity score in [-1, 1] for a piece of text. Scorers
// must be deterministic for identical input.
type Scorer interface {
	Score(text string) float64
}

// Classifier maps text to a (label, polarity) pair via a pluggable Scorer
type Classifier struct {
	scorer Scorer
}

// NewClassifier creates a classifier backed by the given scorer. A nil scorer
// falls back to the embedded lexicon.
func NewClassifier(scorer Scorer) *Classifier {
	if scorer == nil {
		scorer = NewLexiconScorer()
	}
	return &Classifier{scorer: scorer}
}

// Classify returns the sentiment label and polarity for text. Pure function:
// no side effects, no dependency on prior calls.
func (c *Classifier) Classify(text string) (string, float64) {
	polarity := c.scorer.Score(text)
	return LabelFor(polarity), polarity
}

// LabelFor maps a polarity score to its label under the fixed thresholds
func LabelFor(polarity float64) string {
	switch {
	case polarity > positiveThreshold:
		return db.SentimentPositive
	case polarity < negativeThreshold:
		return db.SentimentNegative
	default:
		return db.SentimentNeutral
	}
}

// Summarize truncates content at the last word boundary within maxLen and
// appends an ellipsis. Content already within maxLen is returned unchanged.
func Summarize(content string, maxLen int) string {
	if maxLen <= 0 || len(content) <= maxLen {
		return content
	}
	// maxLen is a byte count; back up to a rune boundary so a multi-byte
	// character is never split.
	cut := maxLen
	for cut > 0 && !utf8.RuneStart(content[cut]) {
		cut--
	}
	truncated := content[:cut]
	if idx := strings.LastIndex(truncated, " "); idx > 0 {
		truncated = truncated[:idx]
	}
	return truncated + "..."
}
