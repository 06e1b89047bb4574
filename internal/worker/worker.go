// Package worker provides async scan processing from the EventBus.
//
// Capture layers (device notification monitors, SMS gateways) publish raw
// messages to the scan.requested topic; the worker scores them, persists
// the result and fans the outcome out to downstream consumers.
package worker

import (
	"context"
	"encoding/json"
	"log/slog"
	"sync"
	"time"

	"github.com/digirakshak/kavach/internal/domain"
	"github.com/digirakshak/kavach/internal/engine"
	"github.com/digirakshak/kavach/internal/policy"
	"github.com/google/uuid"
)

// Worker processes scan requests asynchronously from the EventBus.
type Worker struct {
	bus          domain.EventBus
	repo         domain.Repository
	engine       *engine.Engine
	policyEngine *policy.Engine

	subscriptions []domain.Subscription
	wg            sync.WaitGroup
	ctx           context.Context
	cancel        context.CancelFunc
}

// Config holds worker configuration.
type Config struct {
	// TenantIDs is the list of tenants to process (empty = all via wildcard if supported)
	TenantIDs []string

	// WorkerCount is the number of concurrent workers per tenant
	WorkerCount int
}

// NewWorker creates a new async worker.
func NewWorker(bus domain.EventBus, repo domain.Repository, eng *engine.Engine, policyEngine *policy.Engine) *Worker {
	ctx, cancel := context.WithCancel(context.Background())
	return &Worker{
		bus:          bus,
		repo:         repo,
		engine:       eng,
		policyEngine: policyEngine,
		ctx:          ctx,
		cancel:       cancel,
	}
}

// Start begins processing scan requests for the given tenants.
func (w *Worker) Start(cfg Config) error {
	if len(cfg.TenantIDs) == 0 {
		return w.startGlobalWorker()
	}

	for _, tenantID := range cfg.TenantIDs {
		if err := w.startTenantWorker(tenantID); err != nil {
			slog.Error("failed to start worker for tenant",
				"tenant_id", tenantID,
				"error", err,
			)
			continue
		}
	}

	slog.Info("workers started",
		"tenant_count", len(cfg.TenantIDs),
	)

	return nil
}

// startGlobalWorker starts a worker that processes all tenants (for testing/dev).
func (w *Worker) startGlobalWorker() error {
	sub, err := w.bus.Subscribe(w.ctx, "_global", domain.TopicScanRequested, w.handleMessage)
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("global worker started")
	return nil
}

// startTenantWorker starts workers for a specific tenant.
func (w *Worker) startTenantWorker(tenantID string) error {
	sub, err := w.bus.Subscribe(w.ctx, tenantID, domain.TopicScanRequested, func(ctx context.Context, msg *domain.Message) error {
		return w.processScan(ctx, tenantID, msg)
	})
	if err != nil {
		return err
	}
	w.subscriptions = append(w.subscriptions, sub)

	slog.Info("tenant worker started",
		"tenant_id", tenantID,
		"topic", domain.TopicScanRequested,
	)

	return nil
}

// handleMessage handles messages from global subscription.
func (w *Worker) handleMessage(ctx context.Context, msg *domain.Message) error {
	return w.processScan(ctx, msg.TenantID, msg)
}

// ScanMessage is the message payload for asynchronous scan processing.
type ScanMessage struct {
	ScanID   string `json:"scanId,omitempty"`
	TenantID string `json:"tenantId"`
	TraceID  string `json:"traceId,omitempty"`
	Sender   string `json:"sender"`
	Content  string `json:"content"`

	// SenderScanWindow is the policy lookback window in seconds.
	SenderScanWindow int `json:"senderScanWindow,omitempty"`
}

// processScan scores a message through the pipeline.
func (w *Worker) processScan(ctx context.Context, tenantID string, msg *domain.Message) error {
	start := time.Now()

	// Parse message
	var scanMsg ScanMessage
	if err := json.Unmarshal(msg.Payload, &scanMsg); err != nil {
		slog.Error("failed to parse scan message",
			"message_id", msg.ID,
			"error", err,
		)
		return err
	}

	// Use message tenant if provided
	if scanMsg.TenantID != "" {
		tenantID = scanMsg.TenantID
	}

	scanID := scanMsg.ScanID
	if scanID == "" {
		scanID = uuid.New().String()
	}

	slog.Debug("processing scan",
		"scan_id", scanID,
		"tenant_id", tenantID,
		"sender", scanMsg.Sender,
	)

	// 1. Score the message
	result := w.engine.Evaluate(scanMsg.Sender, scanMsg.Content)
	result.ID = scanID
	result.TenantID = tenantID

	// 2. Save scan result
	if w.repo != nil {
		if err := w.repo.SaveScan(ctx, tenantID, &result); err != nil {
			slog.Error("failed to save scan",
				"scan_id", scanID,
				"error", err,
			)
		}
	}

	// 3. Publish result to completed topic
	resultPayload, _ := json.Marshal(result)
	if err := w.bus.Publish(ctx, tenantID, domain.TopicScanCompleted, resultPayload); err != nil {
		slog.Error("failed to publish scan result",
			"scan_id", scanID,
			"error", err,
		)
	}

	// 4. Run alert policies and escalate on match
	if w.policyEngine != nil && w.policyEngine.PoliciesCount() > 0 {
		window := scanMsg.SenderScanWindow
		if window == 0 {
			window = 3600 // Default 1 hour
		}

		decisions, err := w.policyEngine.EvaluateAll(ctx, &policy.EvaluateInput{
			TenantID:         tenantID,
			Result:           &result,
			SenderScanWindow: window,
		})
		if err != nil {
			slog.Error("policy evaluation failed",
				"scan_id", scanID,
				"error", err,
			)
		} else if policy.ShouldAlert(decisions) {
			if err := w.bus.Publish(ctx, tenantID, domain.TopicScanAlert, resultPayload); err != nil {
				slog.Error("failed to publish alert",
					"scan_id", scanID,
					"error", err,
				)
			}
		}
	}

	slog.Info("scan processed",
		"scan_id", scanID,
		"tenant_id", tenantID,
		"score", result.Score,
		"risk", result.RiskLevel,
		"is_scam", result.IsScam,
		"duration_ms", time.Since(start).Milliseconds(),
	)

	return nil
}

// Stop gracefully stops all workers.
func (w *Worker) Stop() error {
	w.cancel()

	// Unsubscribe all
	for _, sub := range w.subscriptions {
		if err := sub.Unsubscribe(); err != nil {
			slog.Error("failed to unsubscribe",
				"topic", sub.Topic(),
				"error", err,
			)
		}
	}
	w.subscriptions = nil

	w.wg.Wait()

	slog.Info("workers stopped")
	return nil
}

// Stats returns worker statistics.
type Stats struct {
	SubscriptionCount int      `json:"subscriptionCount"`
	Topics            []string `json:"topics"`
}

// GetStats returns current worker statistics.
func (w *Worker) GetStats() Stats {
	topics := make([]string, len(w.subscriptions))
	for i, sub := range w.subscriptions {
		topics[i] = sub.Topic()
	}
	return Stats{
		SubscriptionCount: len(w.subscriptions),
		Topics:            topics,
	}
}
