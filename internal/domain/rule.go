package domain

import "regexp"

// Category partitions the content-rule catalogue by severity tier.
type Category string

const (
	// CategoryCritical covers signals that are near-certain fraud:
	// credential solicitation, lottery wins, remote-access tools.
	CategoryCritical Category = "critical"

	// CategoryHigh covers strong fraud signals: account-block threats,
	// KYC demands, job/investment lures.
	CategoryHigh Category = "high"

	// CategoryMedium covers generic verification requests, artificial
	// deadlines and reward offers.
	CategoryMedium Category = "medium"

	// CategoryLow covers weak signals: bare urgency words and generic
	// banking vocabulary.
	CategoryLow Category = "low"

	// CategoryLanguageVariant covers the same fraud intents expressed in
	// Hindi/Hinglish and Devanagari script.
	CategoryLanguageVariant Category = "language_variant"
)

// Rule is a weighted association between a textual pattern and a
// fraud-signal reason. Rules are immutable once the store is built.
type Rule struct {
	// Pattern is a case-insensitive matcher over the message body.
	// One or more occurrences count as a single match.
	Pattern *regexp.Regexp

	// Weight contributes to the score once per scan, range 0..100.
	Weight int

	// Reason is the human-readable explanation shown to the user.
	Reason string

	Category Category
}

// SenderRule flags a suspicious sender identifier format: personal
// mobile numbers, unverified short codes, prize-themed sender names.
type SenderRule struct {
	Pattern *regexp.Regexp
	Weight  int
	Reason  string
}
