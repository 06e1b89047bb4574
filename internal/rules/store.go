// Package rules holds the immutable fraud-detection rule catalogue.
//
// The store is built once at process start and is read-only thereafter:
// every scan iterates the same rules in the same order, so results are
// reproducible and concurrent access needs no locking.
package rules

import (
	"regexp"
	"strings"

	"github.com/digirakshak/kavach/internal/domain"
)

// CatalogueVersion identifies the rule database shipped with this build.
// Bumped whenever rules are added or re-weighted.
const CatalogueVersion = "2.1.0"

// Store is the immutable rule catalogue.
type Store struct {
	version       string
	content       []domain.Rule
	senders       []domain.SenderRule
	trusted       []*regexp.Regexp
	transactional []string
}

// NewStore builds the store from the built-in catalogue. Content rules are
// ordered Critical, High, Medium, Low, LanguageVariant; within a category
// the declaration order is preserved. This order is part of the contract:
// reasons are reported earliest-match first.
func NewStore() *Store {
	content := make([]domain.Rule, 0,
		len(criticalRules)+len(highRiskRules)+len(mediumRiskRules)+len(lowRiskRules)+len(languageVariantRules))
	content = append(content, criticalRules...)
	content = append(content, highRiskRules...)
	content = append(content, mediumRiskRules...)
	content = append(content, lowRiskRules...)
	content = append(content, languageVariantRules...)

	return &Store{
		version:       CatalogueVersion,
		content:       content,
		senders:       suspiciousSenderRules,
		trusted:       trustedSenderPatterns,
		transactional: transactionalKeywords,
	}
}

// NewStoreFrom builds a store from explicit rule sets. Used by tests and
// by callers that need a reduced catalogue.
func NewStoreFrom(content []domain.Rule, senders []domain.SenderRule, trusted []*regexp.Regexp, transactional []string) *Store {
	return &Store{
		version:       CatalogueVersion,
		content:       content,
		senders:       senders,
		trusted:       trusted,
		transactional: transactional,
	}
}

// Version returns the catalogue version string.
func (s *Store) Version() string {
	return s.version
}

// ContentRules returns all content rules in catalogue order.
// The returned slice is shared and must not be modified.
func (s *Store) ContentRules() []domain.Rule {
	return s.content
}

// SenderRules returns the suspicious-sender rules.
// The returned slice is shared and must not be modified.
func (s *Store) SenderRules() []domain.SenderRule {
	return s.senders
}

// IsTrusted reports whether the sender matches a verified institutional
// sender-ID format. Matching is exact-format and case-insensitive.
func (s *Store) IsTrusted(sender string) bool {
	if sender == "" {
		return false
	}
	for _, p := range s.trusted {
		if p.MatchString(sender) {
			return true
		}
	}
	return false
}

// HasTransactionalKeyword reports whether the content contains any of the
// transactional keywords (case-insensitive substring match). Used only to
// dampen false positives on trusted senders.
func (s *Store) HasTransactionalKeyword(content string) bool {
	lower := strings.ToLower(content)
	for _, kw := range s.transactional {
		if strings.Contains(lower, kw) {
			return true
		}
	}
	return false
}

// RuleCount returns the total number of content rules.
func (s *Store) RuleCount() int {
	return len(s.content)
}

// CategoryCounts returns the number of content rules per category.
func (s *Store) CategoryCounts() map[domain.Category]int {
	counts := make(map[domain.Category]int)
	for _, r := range s.content {
		counts[r.Category]++
	}
	return counts
}
