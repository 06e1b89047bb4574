package risk

import (
	"testing"

	"github.com/digirakshak/kavach/internal/domain"
)

func TestClassify(t *testing.T) {
	tests := []struct {
		score int
		want  domain.RiskLevel
	}{
		{0, domain.RiskSafe},
		{19, domain.RiskSafe},
		{20, domain.RiskLow},
		{39, domain.RiskLow},
		{40, domain.RiskMedium},
		{59, domain.RiskMedium},
		{60, domain.RiskHigh},
		{79, domain.RiskHigh},
		{80, domain.RiskCritical},
		{100, domain.RiskCritical},
	}

	for _, tt := range tests {
		if got := Classify(tt.score); got != tt.want {
			t.Errorf("Classify(%d) = %s, want %s", tt.score, got, tt.want)
		}
	}
}

func TestIsScam(t *testing.T) {
	tests := []struct {
		score int
		want  bool
	}{
		{0, false},
		{49, false},
		{50, true},
		{100, true},
	}

	for _, tt := range tests {
		if got := IsScam(tt.score); got != tt.want {
			t.Errorf("IsScam(%d) = %v, want %v", tt.score, got, tt.want)
		}
	}
}

// Scores in [50,60) are flagged as scams while classifying as Medium.
// The verdict threshold and the level boundaries move independently.
func TestScamVerdictBelowHighBoundary(t *testing.T) {
	for score := 50; score < 60; score++ {
		if !IsScam(score) {
			t.Errorf("IsScam(%d) = false, want true", score)
		}
		if got := Classify(score); got != domain.RiskMedium {
			t.Errorf("Classify(%d) = %s, want %s", score, got, domain.RiskMedium)
		}
	}
}
