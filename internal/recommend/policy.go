package recommend

import "github.com/quantfolio/quantfolio/internal/db"

// Rule parameters. Confidence values are a coarse provenance tag identifying
// which rule fired, not calibrated probabilities; they are not comparable
// across kinds without recalibration.
const (
	// VaR percentage above which the risk rule fires
	varAlertThreshold = 5.0

	// Maximum opportunity recommendations emitted per synthesis call
	maxOpportunities = 2
)

// confidencePolicy maps each rule kind to its fixed confidence tag. Kept as
// a table rather than inline literals so the policy is auditable and testable
// in isolation.
var confidencePolicy = map[db.RecommendationKind]float64{
	db.RecommendationRisk:        0.8,
	db.RecommendationSentiment:   0.7,
	db.RecommendationOpportunity: 0.65,
}

// ConfidenceFor returns the fixed confidence tag for a rule kind
func ConfidenceFor(kind db.RecommendationKind) float64 {
	return confidencePolicy[kind]
}
