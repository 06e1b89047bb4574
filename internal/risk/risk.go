// Package risk maps numeric fraud scores to risk levels and verdicts.
package risk

import "github.com/digirakshak/kavach/internal/domain"

// ScamThreshold is the score at or above which a message is flagged as a
// scam. It is intentionally decoupled from the level boundaries: a score
// of 55 is flagged while still classifying as Medium.
const ScamThreshold = 50

// Level boundaries, inclusive lower bounds.
const (
	CriticalThreshold = 80
	HighThreshold     = 60
	MediumThreshold   = 40
	LowThreshold      = 20
)

// Classify maps a score in [0,100] to a risk level.
func Classify(score int) domain.RiskLevel {
	switch {
	case score >= CriticalThreshold:
		return domain.RiskCritical
	case score >= HighThreshold:
		return domain.RiskHigh
	case score >= MediumThreshold:
		return domain.RiskMedium
	case score >= LowThreshold:
		return domain.RiskLow
	default:
		return domain.RiskSafe
	}
}

// IsScam reports whether the score crosses the scam threshold.
func IsScam(score int) bool {
	return score >= ScamThreshold
}
