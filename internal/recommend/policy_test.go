package recommend

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/quantfolio/quantfolio/internal/db"
)

func TestConfidenceFor(t *testing.T) {
	tests := []struct {
		kind     db.RecommendationKind
		expected float64
	}{
		{db.RecommendationRisk, 0.8},
		{db.RecommendationSentiment, 0.7},
		{db.RecommendationOpportunity, 0.65},
	}

	for _, tt := range tests {
		t.Run(string(tt.kind), func(t *testing.T) {
			assert.Equal(t, tt.expected, ConfidenceFor(tt.kind))
		})
	}
}

func TestConfidenceForUnknownKindIsZero(t *testing.T) {
	assert.Zero(t, ConfidenceFor(db.RecommendationKind("astrology")))
}
