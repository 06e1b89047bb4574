package domain

import "time"

// AlertPolicy decides whether a finished scan is escalated to the alert
// topic. Policies are CEL expressions over scan-result fields; they never
// change the score or the verdict, only the routing.
type AlertPolicy struct {
	ID          string `json:"id"`
	TenantID    string `json:"tenantId,omitempty"`
	Name        string `json:"name"`
	Description string `json:"description"`

	// Expression is a CEL expression returning bool, e.g.
	// "is_scam && trusted == false" or "score >= 80 || sender_scans > 10".
	Expression string `json:"expression"`

	// Whether policy is active
	Enabled bool `json:"enabled"`

	// Audit timestamps
	CreatedAt time.Time `json:"createdAt,omitempty"`
	UpdatedAt time.Time `json:"updatedAt,omitempty"`
}

// PolicyDecision is the outcome of evaluating one policy against a scan.
type PolicyDecision struct {
	PolicyID  string `json:"policyId"`
	Matched   bool   `json:"matched"`
	Error     string `json:"error,omitempty"`
	ProcessMs int64  `json:"processMs"`
}
