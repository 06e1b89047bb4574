package domain

import (
	"time"
)

// RiskLevel is the discrete risk tier derived from a scan score.
type RiskLevel string

const (
	RiskCritical RiskLevel = "critical"
	RiskHigh     RiskLevel = "high"
	RiskMedium   RiskLevel = "medium"
	RiskLow      RiskLevel = "low"
	RiskSafe     RiskLevel = "safe"
)

// ScanResult is the complete outcome of scoring a single message.
// Created fresh on every scan; the engine keeps no reference after returning.
type ScanResult struct {
	ID       string `json:"id,omitempty"`
	TenantID string `json:"tenantId,omitempty"`

	// Raw inputs, echoed back for the caller
	Sender  string `json:"sender"`
	Content string `json:"content"`

	// Score is the aggregate fraud score, always in [0, 100].
	Score int `json:"score"`

	// IsScam is the binary block/warn verdict (score >= 50).
	// Deliberately independent of the tier boundaries: a Medium-tier
	// result at score 50-59 is already flagged as a scam.
	IsScam bool `json:"isScam"`

	// RiskLevel is the descriptive tier for the UI.
	RiskLevel RiskLevel `json:"riskLevel"`

	// Reasons are human-readable match explanations in catalogue order,
	// deduplicated, capped at 5.
	Reasons []string `json:"reasons"`

	// TrustedSender reports whether the sender matched the allow-list.
	TrustedSender bool `json:"trustedSender"`

	// Matches is the number of distinct rules that matched.
	Matches int `json:"matches"`

	Timestamp time.Time `json:"timestamp"`
}

// ScanRequest is the API request payload for a single message scan.
type ScanRequest struct {
	Sender  string `json:"sender"`
	Content string `json:"content"`
}

// ScanStats holds aggregate counters over a time window.
type ScanStats struct {
	TenantID string    `json:"tenantId"`
	Since    time.Time `json:"since"`
	Total    int64     `json:"total"`
	Scams    int64     `json:"scams"`
}
