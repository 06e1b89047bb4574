package engine

import (
	"reflect"
	"regexp"
	"testing"

	"github.com/digirakshak/kavach/internal/domain"
	"github.com/digirakshak/kavach/internal/risk"
	"github.com/digirakshak/kavach/internal/rules"
)

func TestEvaluateSafeMessage(t *testing.T) {
	e := NewDefault()

	result := e.Evaluate("RAHUL", "Hey, are we still meeting at 5pm near the park?")

	if result.Score != 0 {
		t.Errorf("score = %d, want 0", result.Score)
	}
	if result.IsScam {
		t.Error("IsScam = true, want false")
	}
	if result.RiskLevel != domain.RiskSafe {
		t.Errorf("risk = %s, want %s", result.RiskLevel, domain.RiskSafe)
	}
	if len(result.Reasons) != 0 {
		t.Errorf("reasons = %v, want none", result.Reasons)
	}
}

func TestEvaluateLotteryScam(t *testing.T) {
	e := NewDefault()

	result := e.Evaluate("+919812345678",
		"Congratulations! You have won Rs 25 lakh in lottery. Click http://bit.ly/xyz to claim")

	if result.Score != 100 {
		t.Errorf("score = %d, want 100", result.Score)
	}
	if !result.IsScam {
		t.Error("IsScam = false, want true")
	}
	if result.RiskLevel != domain.RiskCritical {
		t.Errorf("risk = %s, want %s", result.RiskLevel, domain.RiskCritical)
	}
	if len(result.Reasons) == 0 || len(result.Reasons) > 5 {
		t.Errorf("reasons = %d, want 1..5", len(result.Reasons))
	}
	if result.TrustedSender {
		t.Error("TrustedSender = true, want false")
	}
}

func TestEvaluateTrustedTransactionalDampening(t *testing.T) {
	e := NewDefault()

	result := e.Evaluate("HDFCBK",
		"Your account XX1234 credited with Rs.5000 on 01-Jan. Avl bal Rs.15000")

	if !result.TrustedSender {
		t.Fatal("TrustedSender = false, want true")
	}
	if result.Score != 0 {
		t.Errorf("score = %d, want 0 after dampening", result.Score)
	}
	if result.IsScam {
		t.Error("IsScam = true, want false")
	}
	if result.RiskLevel != domain.RiskSafe {
		t.Errorf("risk = %s, want %s", result.RiskLevel, domain.RiskSafe)
	}
}

// The same notification text forwarded from a personal number keeps its
// full score: dampening requires a trusted sender.
func TestEvaluateUntrustedSenderNoDampening(t *testing.T) {
	e := NewDefault()

	result := e.Evaluate("+919876543210",
		"Your account XX1234 credited with Rs.5000 on 01-Jan. Avl bal Rs.15000")

	if result.TrustedSender {
		t.Fatal("TrustedSender = true, want false")
	}
	if result.Score != 75 {
		t.Errorf("score = %d, want 75", result.Score)
	}
	if result.RiskLevel != domain.RiskHigh {
		t.Errorf("risk = %s, want %s", result.RiskLevel, domain.RiskHigh)
	}
}

func TestEvaluateCredentialRefundScam(t *testing.T) {
	e := NewDefault()

	result := e.Evaluate("+919876543210", "Share your OTP to receive refund of Rs 500")

	if !result.IsScam {
		t.Fatal("IsScam = false, want true")
	}
	if result.Score != 100 {
		t.Errorf("score = %d, want 100", result.Score)
	}
	if result.Matches != 4 {
		t.Errorf("matches = %d, want 4", result.Matches)
	}
	if result.Reasons[0] != "Asks you to share OTP, PIN or password" {
		t.Errorf("first reason = %q, want the credential-sharing rule", result.Reasons[0])
	}
}

// A pattern occurring several times in one message contributes its weight
// exactly once.
func TestEvaluateWeightOncePerRule(t *testing.T) {
	e := NewDefault()

	result := e.Evaluate("", "Visit bit.ly/a or bit.ly/b or bit.ly/c")

	if result.Score != 90 {
		t.Errorf("score = %d, want 90", result.Score)
	}
	if result.Matches != 1 {
		t.Errorf("matches = %d, want 1", result.Matches)
	}
	if len(result.Reasons) != 1 {
		t.Errorf("reasons = %v, want exactly one", result.Reasons)
	}
}

func TestEvaluateCompoundBonus(t *testing.T) {
	content := make([]domain.Rule, 0, 6)
	for _, word := range []string{"one", "two", "three", "four", "five", "six"} {
		content = append(content, domain.Rule{
			Pattern:  regexp.MustCompile(`\b` + word + `\b`),
			Weight:   7,
			Reason:   "matched " + word,
			Category: domain.CategoryLow,
		})
	}
	e := New(rules.NewStoreFrom(content, nil, nil, nil), domain.DefaultEngineConfig())

	// Four matches: below the threshold, no bonus.
	result := e.Evaluate("", "one two three four")
	if result.Score != 28 {
		t.Errorf("4 matches: score = %d, want 28", result.Score)
	}
	if result.IsScam {
		t.Error("4 matches: IsScam = true, want false")
	}

	// Five matches: bonus fires, crossing the scam threshold.
	result = e.Evaluate("", "one two three four five")
	if result.Score != 55 {
		t.Errorf("5 matches: score = %d, want 55", result.Score)
	}
	if !result.IsScam {
		t.Error("5 matches: IsScam = false, want true")
	}
	if result.RiskLevel != domain.RiskMedium {
		t.Errorf("5 matches: risk = %s, want %s", result.RiskLevel, domain.RiskMedium)
	}

	// Six matches: the bonus is flat, not per match above the threshold.
	result = e.Evaluate("", "one two three four five six")
	if result.Score != 62 {
		t.Errorf("6 matches: score = %d, want 62 (bonus applied once)", result.Score)
	}
}

func TestEvaluateEmptyInputs(t *testing.T) {
	e := NewDefault()

	result := e.Evaluate("", "")
	if result.Score != 0 || result.IsScam || len(result.Reasons) != 0 {
		t.Errorf("empty scan = %+v, want zero result", result)
	}

	// An empty body from a suspicious sender still scores the sender.
	result = e.Evaluate("+919876543210", "")
	if result.Score != 45 {
		t.Errorf("score = %d, want 45 from sender rule alone", result.Score)
	}
	if result.Matches != 1 {
		t.Errorf("matches = %d, want 1", result.Matches)
	}
}

func TestEvaluateDeterministic(t *testing.T) {
	e := NewDefault()
	sender := "+919876543210"
	content := "URGENT: your KYC will expire today, click http://bit.ly/kyc to verify your account"

	a := e.Evaluate(sender, content)
	b := e.Evaluate(sender, content)

	a.Timestamp = b.Timestamp
	if !reflect.DeepEqual(a, b) {
		t.Errorf("repeated scans differ:\n%+v\n%+v", a, b)
	}
}

func TestEvaluateReasonCap(t *testing.T) {
	e := NewDefault()

	result := e.Evaluate("+919876543210",
		"URGENT! Your KYC will expire, account blocked. Share your OTP now and "+
			"click http://bit.ly/x to verify your account immediately. You have won a lucky draw!")

	if len(result.Reasons) != 5 {
		t.Errorf("reasons = %d, want capped at 5", len(result.Reasons))
	}
	if result.Matches <= 5 {
		t.Errorf("matches = %d, want more than the reason cap", result.Matches)
	}
	if result.Score != 100 {
		t.Errorf("score = %d, want clamped at 100", result.Score)
	}
}

func TestEvaluateDevanagariContent(t *testing.T) {
	e := NewDefault()

	result := e.Evaluate("+919876543210", "आपने लॉटरी जीती है! तुरंत पैसे भेजें")

	if !result.IsScam {
		t.Error("IsScam = false, want true")
	}
	if result.RiskLevel != domain.RiskCritical {
		t.Errorf("risk = %s, want %s", result.RiskLevel, domain.RiskCritical)
	}
}

// Invariants that must hold for any input whatsoever.
func TestEvaluateInvariants(t *testing.T) {
	e := NewDefault()

	samples := []struct{ sender, content string }{
		{"", ""},
		{"HDFCBK", "credited Rs.1"},
		{"+911111111111", "share your otp pin cvv password urgent now bank account"},
		{"WINNER", "you won won won won jackpot lucky draw kbc lottery bit.ly http://x"},
		{"VM-UNKNWN", "मुफ़्त"},
		{"x", "\x00\xff garbage ‮ bytes"},
		{"56789", "работа из дома"},
	}

	for _, s := range samples {
		result := e.Evaluate(s.sender, s.content)
		if result.Score < 0 || result.Score > 100 {
			t.Errorf("score %d out of range for %q", result.Score, s.content)
		}
		if result.IsScam != risk.IsScam(result.Score) {
			t.Errorf("verdict inconsistent with score %d", result.Score)
		}
		if result.RiskLevel != risk.Classify(result.Score) {
			t.Errorf("level inconsistent with score %d", result.Score)
		}
		if len(result.Reasons) > 5 {
			t.Errorf("%d reasons for %q", len(result.Reasons), s.content)
		}
	}
}
