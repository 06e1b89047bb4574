// Package engine implements the deterministic fraud-scoring pipeline.
//
// Evaluate is a pure function of (sender, content) and the immutable rule
// store: no I/O, no persistence, no randomness. Identical inputs always
// produce identical scores, verdicts and reasons, which makes results
// cacheable by content hash and trivially testable.
package engine

import (
	"time"

	"github.com/digirakshak/kavach/internal/domain"
	"github.com/digirakshak/kavach/internal/risk"
	"github.com/digirakshak/kavach/internal/rules"
)

// Engine scores messages against a fixed rule catalogue.
type Engine struct {
	store *rules.Store
	cfg   domain.EngineConfig
}

// New creates an engine over the given store. Zero-valued config fields
// fall back to the defaults, so tests can override a single knob.
func New(store *rules.Store, cfg domain.EngineConfig) *Engine {
	def := domain.DefaultEngineConfig()
	if cfg.DampeningPenalty == 0 {
		cfg.DampeningPenalty = def.DampeningPenalty
	}
	if cfg.CompoundThreshold == 0 {
		cfg.CompoundThreshold = def.CompoundThreshold
	}
	if cfg.CompoundBonus == 0 {
		cfg.CompoundBonus = def.CompoundBonus
	}
	if cfg.MaxReasons == 0 {
		cfg.MaxReasons = def.MaxReasons
	}
	return &Engine{store: store, cfg: cfg}
}

// NewDefault creates an engine over the built-in catalogue with default
// aggregation constants.
func NewDefault() *Engine {
	return New(rules.NewStore(), domain.DefaultEngineConfig())
}

// Store exposes the underlying catalogue for read-only inspection.
func (e *Engine) Store() *rules.Store {
	return e.store
}

// Evaluate scores a single message. The pipeline, in order:
//
//  1. Content rules, in catalogue order. Each rule's weight counts once
//     regardless of how many times its pattern occurs.
//  2. Sender rules, skipped entirely for allow-listed senders.
//  3. Trusted-sender dampening: a trusted sender whose message carries
//     transactional vocabulary gets a flat score reduction, floored at 0.
//  4. Compounding bonus: once the count of distinct matched rules reaches
//     the threshold, a single flat bonus is added.
//  5. Clamp to [0,100], derive verdict and level, cap the reason list.
//
// An empty message scores 0 against content rules but the sender is still
// checked: a scam sender ID with no body is still worth flagging.
func (e *Engine) Evaluate(sender, content string) domain.ScanResult {
	score := 0
	matches := 0
	reasons := make([]string, 0, 8)
	seen := make(map[string]bool)

	for _, rule := range e.store.ContentRules() {
		if content == "" || !rule.Pattern.MatchString(content) {
			continue
		}
		score += rule.Weight
		matches++
		if !seen[rule.Reason] {
			seen[rule.Reason] = true
			reasons = append(reasons, rule.Reason)
		}
	}

	trusted := e.store.IsTrusted(sender)
	if !trusted && sender != "" {
		for _, rule := range e.store.SenderRules() {
			if !rule.Pattern.MatchString(sender) {
				continue
			}
			score += rule.Weight
			matches++
			if !seen[rule.Reason] {
				seen[rule.Reason] = true
				reasons = append(reasons, rule.Reason)
			}
		}
	}

	if trusted && e.store.HasTransactionalKeyword(content) {
		score -= e.cfg.DampeningPenalty
		if score < 0 {
			score = 0
		}
	}

	if matches >= e.cfg.CompoundThreshold {
		score += e.cfg.CompoundBonus
	}

	if score > 100 {
		score = 100
	}
	if score < 0 {
		score = 0
	}

	if len(reasons) > e.cfg.MaxReasons {
		reasons = reasons[:e.cfg.MaxReasons]
	}

	return domain.ScanResult{
		Sender:        sender,
		Content:       content,
		Score:         score,
		IsScam:        risk.IsScam(score),
		RiskLevel:     risk.Classify(score),
		Reasons:       reasons,
		TrustedSender: trusted,
		Matches:       matches,
		Timestamp:     time.Now().UTC(),
	}
}
