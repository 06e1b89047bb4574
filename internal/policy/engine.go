// Package policy provides the CEL-Go based alert-routing engine.
//
// Policies run after the scoring engine has produced a final result and
// decide only whether the result is escalated to the alert topic. They
// have read-only access to the scan outcome and can never change the
// score, the verdict or the reasons.
package policy

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/digirakshak/kavach/internal/domain"
	"github.com/google/cel-go/cel"
	"github.com/google/cel-go/common/types"
)

// Engine compiles and evaluates alert policies.
type Engine struct {
	mu               sync.RWMutex
	env              *cel.Env
	compiledPolicies map[string]*CompiledPolicy
	senderScanGetter SenderScanGetter
	maxWorkers       int
}

// CompiledPolicy holds a pre-compiled CEL program.
type CompiledPolicy struct {
	Config  *domain.AlertPolicy
	Program cel.Program
}

// SenderScanGetter returns how many times a sender was scanned for a
// tenant within a time window.
type SenderScanGetter func(ctx context.Context, tenantID, sender string, windowSecs int) (int64, error)

// NewEngine creates a new policy engine.
func NewEngine(senderScanGetter SenderScanGetter, maxWorkers int) (*Engine, error) {
	if maxWorkers <= 0 {
		maxWorkers = 10
	}

	// CEL environment exposing the scan-result fields
	env, err := cel.NewEnv(
		cel.Variable("score", cel.IntType),
		cel.Variable("risk", cel.StringType),
		cel.Variable("is_scam", cel.BoolType),
		cel.Variable("sender", cel.StringType),
		cel.Variable("trusted", cel.BoolType),
		cel.Variable("matches", cel.IntType),
		cel.Variable("reasons", cel.ListType(cel.StringType)),
		// Windowed count of scans seen from the same sender
		cel.Variable("sender_scans", cel.IntType),
	)
	if err != nil {
		return nil, fmt.Errorf("failed to create CEL environment: %w", err)
	}

	return &Engine{
		env:              env,
		compiledPolicies: make(map[string]*CompiledPolicy),
		senderScanGetter: senderScanGetter,
		maxWorkers:       maxWorkers,
	}, nil
}

// ValidatePolicy compiles a policy without mutating the loaded set.
func (e *Engine) ValidatePolicy(cfg *domain.AlertPolicy) error {
	if cfg == nil {
		return fmt.Errorf("policy config is required")
	}

	e.mu.RLock()
	defer e.mu.RUnlock()

	_, err := e.compilePolicy(cfg)
	return err
}

// LoadPolicy compiles and loads a policy into the engine.
func (e *Engine) LoadPolicy(cfg *domain.AlertPolicy) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	compiled, err := e.compilePolicy(cfg)
	if err != nil {
		return err
	}

	e.compiledPolicies[cfg.ID] = compiled

	return nil
}

// LoadPolicies compiles and loads multiple policies, skipping disabled ones.
func (e *Engine) LoadPolicies(configs []*domain.AlertPolicy) error {
	for _, cfg := range configs {
		if cfg.Enabled {
			if err := e.LoadPolicy(cfg); err != nil {
				return err
			}
		}
	}
	return nil
}

// EvaluateInput carries a finished scan into policy evaluation.
type EvaluateInput struct {
	TenantID string
	Result   *domain.ScanResult

	// SenderScanWindow is the lookback window in seconds for the
	// sender_scans variable. Zero disables the lookup.
	SenderScanWindow int
}

// EvaluateAll evaluates all loaded policies in parallel against one scan.
func (e *Engine) EvaluateAll(ctx context.Context, input *EvaluateInput) ([]domain.PolicyDecision, error) {
	e.mu.RLock()
	policies := make([]*CompiledPolicy, 0, len(e.compiledPolicies))
	for _, p := range e.compiledPolicies {
		policies = append(policies, p)
	}
	e.mu.RUnlock()

	if len(policies) == 0 {
		return nil, nil
	}

	var senderScans int64
	if e.senderScanGetter != nil && input.SenderScanWindow > 0 {
		count, err := e.senderScanGetter(ctx, input.TenantID, input.Result.Sender, input.SenderScanWindow)
		if err == nil {
			senderScans = count
		}
	}

	result := input.Result
	activation := map[string]any{
		"score":        int64(result.Score),
		"risk":         string(result.RiskLevel),
		"is_scam":      result.IsScam,
		"sender":       result.Sender,
		"trusted":      result.TrustedSender,
		"matches":      int64(result.Matches),
		"reasons":      result.Reasons,
		"sender_scans": senderScans,
	}

	decisions := make([]domain.PolicyDecision, len(policies))
	var wg sync.WaitGroup

	sem := make(chan struct{}, e.maxWorkers)

	for i, p := range policies {
		wg.Add(1)
		go func(idx int, cp *CompiledPolicy) {
			defer wg.Done()

			sem <- struct{}{}
			defer func() { <-sem }()

			decisions[idx] = evaluatePolicy(cp, activation)
		}(i, p)
	}

	wg.Wait()

	return decisions, nil
}

// ShouldAlert reports whether any policy matched.
func ShouldAlert(decisions []domain.PolicyDecision) bool {
	for _, d := range decisions {
		if d.Matched {
			return true
		}
	}
	return false
}

func evaluatePolicy(p *CompiledPolicy, activation map[string]any) domain.PolicyDecision {
	start := time.Now()

	decision := domain.PolicyDecision{
		PolicyID: p.Config.ID,
	}

	out, _, err := p.Program.Eval(activation)
	if err != nil {
		decision.Error = fmt.Sprintf("evaluation error: %v", err)
		decision.ProcessMs = time.Since(start).Milliseconds()
		return decision
	}

	if matched, ok := out.(types.Bool); ok {
		decision.Matched = bool(matched)
	}
	decision.ProcessMs = time.Since(start).Milliseconds()

	return decision
}

// PoliciesCount returns the number of loaded policies.
func (e *Engine) PoliciesCount() int {
	e.mu.RLock()
	defer e.mu.RUnlock()
	return len(e.compiledPolicies)
}

// ReloadPolicies clears all existing policies and loads new ones.
// This enables hot-reloading of policies from the database.
func (e *Engine) ReloadPolicies(configs []*domain.AlertPolicy) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	newPolicies := make(map[string]*CompiledPolicy)

	for _, cfg := range configs {
		if !cfg.Enabled {
			continue
		}

		compiled, err := e.compilePolicy(cfg)
		if err != nil {
			return err
		}
		newPolicies[cfg.ID] = compiled
	}

	e.compiledPolicies = newPolicies

	return nil
}

// GetLoadedPolicies returns the currently loaded policy configurations.
func (e *Engine) GetLoadedPolicies() []*domain.AlertPolicy {
	e.mu.RLock()
	defer e.mu.RUnlock()

	policies := make([]*domain.AlertPolicy, 0, len(e.compiledPolicies))
	for _, compiled := range e.compiledPolicies {
		policies = append(policies, compiled.Config)
	}
	return policies
}

// Close cleans up the engine.
func (e *Engine) Close() error {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.compiledPolicies = make(map[string]*CompiledPolicy)
	return nil
}

func (e *Engine) compilePolicy(cfg *domain.AlertPolicy) (*CompiledPolicy, error) {
	ast, issues := e.env.Compile(cfg.Expression)
	if issues != nil && issues.Err() != nil {
		return nil, fmt.Errorf("failed to compile policy %s: %w", cfg.ID, issues.Err())
	}

	if ast.OutputType() != cel.BoolType {
		return nil, fmt.Errorf("policy %s: expression must return bool, got %s", cfg.ID, ast.OutputType())
	}

	program, err := e.env.Program(ast)
	if err != nil {
		return nil, fmt.Errorf("failed to create program for policy %s: %w", cfg.ID, err)
	}

	return &CompiledPolicy{
		Config:  cfg,
		Program: program,
	}, nil
}
