package sentiment

import "strings"

// LexiconScorer scores text as the mean valence of matched lexicon words,
// with a simple negation flip for words directly preceded by a negator.
// Deterministic for identical input; suitable as the default Scorer where no
// model-backed scorer is wired in.
type LexiconScorer struct {
	valences map[string]float64
	negators map[string]bool
}

// NewLexiconScorer creates a scorer over the embedded finance/news lexicon
func NewLexiconScorer() *LexiconScorer {
	return &LexiconScorer{
		valences: defaultValences,
		negators: map[string]bool{
			"not": true, "no": true, "never": true, "without": true,
			"hardly": true, "barely": true,
		},
	}
}

// Score returns the polarity of text in [-1, 1]. Text with no lexicon matches
// scores 0 (neutral).
func (s *LexiconScorer) Score(text string) float64 {
	words := tokenize(text)

	var sum float64
	var matched int
	for i, w := range words {
		valence, ok := s.valences[w]
		if !ok {
			continue
		}
		if i > 0 && s.negators[words[i-1]] {
			valence = -valence
		}
		sum += valence
		matched++
	}

	if matched == 0 {
		return 0
	}

	polarity := sum / float64(matched)
	if polarity > 1 {
		polarity = 1
	} else if polarity < -1 {
		polarity = -1
	}
	return polarity
}

// tokenize lowercases and strips non-letter characters from word edges
func tokenize(text string) []string {
	fields := strings.Fields(strings.ToLower(text))
	words := make([]string, 0, len(fields))
	for _, f := range fields {
		w := strings.TrimFunc(f, func(r rune) bool {
			return (r < 'a' || r > 'z') && (r < '0' || r > '9')
		})
		if w != "" {
			words = append(words, w)
		}
	}
	return words
}

// defaultValences is a compact valence lexicon oriented toward market and
// news vocabulary. Values are in [-1, 1].
var defaultValences = map[string]float64{
	// positive
	"gain": 0.6, "gains": 0.6, "surge": 0.8, "surges": 0.8, "surged": 0.8,
	"rally": 0.7, "rallies": 0.7, "rallied": 0.7, "soar": 0.8, "soars": 0.8,
	"soared": 0.8, "beat": 0.5, "beats": 0.5, "strong": 0.5, "stronger": 0.5,
	"growth": 0.5, "profit": 0.6, "profits": 0.6, "profitable": 0.6,
	"record": 0.4, "upgrade": 0.6, "upgraded": 0.6, "bullish": 0.7,
	"optimistic": 0.6, "positive": 0.5, "outperform": 0.6, "outperformed": 0.6,
	"rise": 0.5, "rises": 0.5, "rose": 0.5, "jump": 0.6, "jumps": 0.6,
	"jumped": 0.6, "boom": 0.7, "recovery": 0.5, "rebound": 0.5,
	"win": 0.5, "wins": 0.5, "success": 0.6, "successful": 0.6,
	"good": 0.4, "great": 0.6, "excellent": 0.8, "impressive": 0.6,
	"robust": 0.5, "momentum": 0.3, "opportunity": 0.4, "innovative": 0.4,

	// negative
	"loss": -0.6, "losses": -0.6, "plunge": -0.8, "plunges": -0.8,
	"plunged": -0.8, "crash": -0.9, "crashes": -0.9, "crashed": -0.9,
	"fall": -0.5, "falls": -0.5, "fell": -0.5, "drop": -0.5, "drops": -0.5,
	"dropped": -0.5, "tumble": -0.7, "tumbles": -0.7, "tumbled": -0.7,
	"weak": -0.5, "weaker": -0.5, "decline": -0.5, "declines": -0.5,
	"declined": -0.5, "miss": -0.5, "misses": -0.5, "missed": -0.5,
	"downgrade": -0.6, "downgraded": -0.6, "bearish": -0.7, "negative": -0.5,
	"pessimistic": -0.6, "underperform": -0.6, "underperformed": -0.6,
	"slump": -0.7, "recession": -0.7, "crisis": -0.8, "bankruptcy": -0.9,
	"bankrupt": -0.9, "fraud": -0.9, "lawsuit": -0.5, "investigation": -0.4,
	"risk": -0.3, "risky": -0.4, "warning": -0.5, "warns": -0.5,
	"fear": -0.6, "fears": -0.6, "concern": -0.4, "concerns": -0.4,
	"bad": -0.4, "poor": -0.5, "terrible": -0.8, "disappointing": -0.6,
	"layoffs": -0.6, "default": -0.7, "volatile": -0.3, "selloff": -0.7,
}
