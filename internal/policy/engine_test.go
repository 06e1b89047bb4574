package policy

import (
	"context"
	"testing"

	"github.com/digirakshak/kavach/internal/domain"
)

func newTestEngine(t *testing.T, getter SenderScanGetter) *Engine {
	t.Helper()
	e, err := NewEngine(getter, 4)
	if err != nil {
		t.Fatalf("NewEngine: %v", err)
	}
	return e
}

func scamResult() *domain.ScanResult {
	return &domain.ScanResult{
		Sender:        "+919876543210",
		Content:       "Share your OTP to receive refund",
		Score:         100,
		IsScam:        true,
		RiskLevel:     domain.RiskCritical,
		Reasons:       []string{"Asks you to share OTP, PIN or password"},
		TrustedSender: false,
		Matches:       4,
	}
}

func TestLoadPolicy(t *testing.T) {
	e := newTestEngine(t, nil)

	err := e.LoadPolicy(&domain.AlertPolicy{
		ID:         "p1",
		Name:       "critical scans",
		Expression: `score >= 80`,
		Enabled:    true,
	})
	if err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}
	if e.PoliciesCount() != 1 {
		t.Errorf("PoliciesCount = %d, want 1", e.PoliciesCount())
	}
}

func TestLoadPolicyInvalidExpression(t *testing.T) {
	e := newTestEngine(t, nil)

	err := e.LoadPolicy(&domain.AlertPolicy{
		ID:         "bad",
		Expression: `score >>> 80`,
		Enabled:    true,
	})
	if err == nil {
		t.Fatal("expected compile error for invalid expression")
	}
}

func TestLoadPolicyNonBoolExpression(t *testing.T) {
	e := newTestEngine(t, nil)

	err := e.LoadPolicy(&domain.AlertPolicy{
		ID:         "nonbool",
		Expression: `score + 1`,
		Enabled:    true,
	})
	if err == nil {
		t.Fatal("expected rejection of non-bool expression")
	}
}

func TestValidatePolicyDoesNotLoad(t *testing.T) {
	e := newTestEngine(t, nil)

	if err := e.ValidatePolicy(&domain.AlertPolicy{ID: "v", Expression: `is_scam`}); err != nil {
		t.Fatalf("ValidatePolicy: %v", err)
	}
	if e.PoliciesCount() != 0 {
		t.Errorf("PoliciesCount = %d, want 0 after validate", e.PoliciesCount())
	}
}

func TestEvaluateAll(t *testing.T) {
	e := newTestEngine(t, nil)

	policies := []*domain.AlertPolicy{
		{ID: "critical", Expression: `score >= 80`, Enabled: true},
		{ID: "untrusted-scam", Expression: `is_scam && !trusted`, Enabled: true},
		{ID: "safe-only", Expression: `risk == "safe"`, Enabled: true},
		{ID: "disabled", Expression: `true`, Enabled: false},
	}
	if err := e.LoadPolicies(policies); err != nil {
		t.Fatalf("LoadPolicies: %v", err)
	}
	if e.PoliciesCount() != 3 {
		t.Fatalf("PoliciesCount = %d, want 3 (disabled skipped)", e.PoliciesCount())
	}

	decisions, err := e.EvaluateAll(context.Background(), &EvaluateInput{
		TenantID: "tenant-1",
		Result:   scamResult(),
	})
	if err != nil {
		t.Fatalf("EvaluateAll: %v", err)
	}
	if len(decisions) != 3 {
		t.Fatalf("decisions = %d, want 3", len(decisions))
	}

	matched := make(map[string]bool)
	for _, d := range decisions {
		if d.Error != "" {
			t.Errorf("policy %s error: %s", d.PolicyID, d.Error)
		}
		matched[d.PolicyID] = d.Matched
	}

	if !matched["critical"] {
		t.Error("policy critical should match score 100")
	}
	if !matched["untrusted-scam"] {
		t.Error("policy untrusted-scam should match")
	}
	if matched["safe-only"] {
		t.Error("policy safe-only should not match a critical result")
	}

	if !ShouldAlert(decisions) {
		t.Error("ShouldAlert = false, want true")
	}
}

func TestEvaluateAllSenderScans(t *testing.T) {
	getter := func(ctx context.Context, tenantID, sender string, windowSecs int) (int64, error) {
		if tenantID != "tenant-1" || sender != "+919876543210" {
			t.Errorf("unexpected getter args: %s %s", tenantID, sender)
		}
		return 12, nil
	}
	e := newTestEngine(t, getter)

	if err := e.LoadPolicy(&domain.AlertPolicy{
		ID:         "burst",
		Expression: `sender_scans > 10`,
		Enabled:    true,
	}); err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}

	decisions, err := e.EvaluateAll(context.Background(), &EvaluateInput{
		TenantID:         "tenant-1",
		Result:           scamResult(),
		SenderScanWindow: 3600,
	})
	if err != nil {
		t.Fatalf("EvaluateAll: %v", err)
	}
	if len(decisions) != 1 || !decisions[0].Matched {
		t.Errorf("decisions = %+v, want burst matched", decisions)
	}
}

func TestEvaluateAllNoPolicies(t *testing.T) {
	e := newTestEngine(t, nil)

	decisions, err := e.EvaluateAll(context.Background(), &EvaluateInput{
		TenantID: "tenant-1",
		Result:   scamResult(),
	})
	if err != nil {
		t.Fatalf("EvaluateAll: %v", err)
	}
	if decisions != nil {
		t.Errorf("decisions = %v, want nil", decisions)
	}
	if ShouldAlert(decisions) {
		t.Error("ShouldAlert = true with no policies")
	}
}

func TestReloadPolicies(t *testing.T) {
	e := newTestEngine(t, nil)

	if err := e.LoadPolicy(&domain.AlertPolicy{ID: "old", Expression: `true`, Enabled: true}); err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}

	err := e.ReloadPolicies([]*domain.AlertPolicy{
		{ID: "new-1", Expression: `matches >= 3`, Enabled: true},
		{ID: "new-2", Expression: `sender == "SPAMMER"`, Enabled: true},
	})
	if err != nil {
		t.Fatalf("ReloadPolicies: %v", err)
	}
	if e.PoliciesCount() != 2 {
		t.Fatalf("PoliciesCount = %d, want 2", e.PoliciesCount())
	}

	for _, p := range e.GetLoadedPolicies() {
		if p.ID == "old" {
			t.Error("reload kept a stale policy")
		}
	}
}

func TestReasonsVariable(t *testing.T) {
	e := newTestEngine(t, nil)

	if err := e.LoadPolicy(&domain.AlertPolicy{
		ID:         "reason-match",
		Expression: `reasons.exists(r, r.contains("OTP"))`,
		Enabled:    true,
	}); err != nil {
		t.Fatalf("LoadPolicy: %v", err)
	}

	decisions, err := e.EvaluateAll(context.Background(), &EvaluateInput{
		TenantID: "tenant-1",
		Result:   scamResult(),
	})
	if err != nil {
		t.Fatalf("EvaluateAll: %v", err)
	}
	if !decisions[0].Matched {
		t.Error("reasons.exists should match an OTP reason")
	}
}
