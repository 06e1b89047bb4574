package worker

import (
	"context"
	"encoding/json"
	"sync/atomic"
	"testing"
	"time"

	"github.com/digirakshak/kavach/internal/bus"
	"github.com/digirakshak/kavach/internal/domain"
	"github.com/digirakshak/kavach/internal/engine"
	"github.com/digirakshak/kavach/internal/policy"
)

func newTestPolicyEngine(t *testing.T, policies ...*domain.AlertPolicy) *policy.Engine {
	t.Helper()

	eng, err := policy.NewEngine(nil, 4)
	if err != nil {
		t.Fatalf("failed to create policy engine: %v", err)
	}

	for _, p := range policies {
		if err := eng.LoadPolicy(p); err != nil {
			t.Fatalf("failed to load policy %s: %v", p.ID, err)
		}
	}

	return eng
}

func publishScan(t *testing.T, b domain.EventBus, tenantID string, msg ScanMessage) {
	t.Helper()

	payload, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("failed to marshal scan message: %v", err)
	}

	if err := b.Publish(context.Background(), tenantID, domain.TopicScanRequested, payload); err != nil {
		t.Fatalf("failed to publish scan request: %v", err)
	}
}

func TestWorkerStartStop(t *testing.T) {
	b := bus.NewChannelBus(100)
	defer b.Close()

	w := NewWorker(b, nil, engine.NewDefault(), nil)

	if err := w.Start(Config{TenantIDs: []string{"tenant-001", "tenant-002"}}); err != nil {
		t.Fatalf("start failed: %v", err)
	}

	stats := w.GetStats()
	if stats.SubscriptionCount != 2 {
		t.Errorf("expected 2 subscriptions, got %d", stats.SubscriptionCount)
	}

	if err := w.Stop(); err != nil {
		t.Fatalf("stop failed: %v", err)
	}

	stats = w.GetStats()
	if stats.SubscriptionCount != 0 {
		t.Errorf("expected 0 subscriptions after stop, got %d", stats.SubscriptionCount)
	}
}

func TestWorkerProcessScan(t *testing.T) {
	b := bus.NewChannelBus(100)
	defer b.Close()

	ctx := context.Background()
	tenantID := "tenant-001"

	w := NewWorker(b, nil, engine.NewDefault(), nil)
	if err := w.Start(Config{TenantIDs: []string{tenantID}}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer w.Stop()

	resultCh := make(chan *domain.ScanResult, 1)
	b.Subscribe(ctx, tenantID, domain.TopicScanCompleted, func(ctx context.Context, msg *domain.Message) error {
		var result domain.ScanResult
		if err := json.Unmarshal(msg.Payload, &result); err != nil {
			return err
		}
		select {
		case resultCh <- &result:
		default:
		}
		return nil
	})

	time.Sleep(10 * time.Millisecond)

	publishScan(t, b, tenantID, ScanMessage{
		ScanID:   "scan-001",
		TenantID: tenantID,
		Sender:   "+919876543210",
		Content:  "Congratulations! You have won Rs 25 lakh in the lucky draw. Click http://bit.ly/claim to claim now.",
	})

	select {
	case result := <-resultCh:
		if result.ID != "scan-001" {
			t.Errorf("expected scan ID 'scan-001', got '%s'", result.ID)
		}
		if result.TenantID != tenantID {
			t.Errorf("expected tenant '%s', got '%s'", tenantID, result.TenantID)
		}
		if !result.IsScam {
			t.Error("lottery message should be flagged as scam")
		}
		if result.RiskLevel != domain.RiskCritical {
			t.Errorf("expected critical risk, got %s", result.RiskLevel)
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for scan result")
	}
}

func TestWorkerGeneratesScanID(t *testing.T) {
	b := bus.NewChannelBus(100)
	defer b.Close()

	ctx := context.Background()
	tenantID := "tenant-001"

	w := NewWorker(b, nil, engine.NewDefault(), nil)
	if err := w.Start(Config{TenantIDs: []string{tenantID}}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer w.Stop()

	resultCh := make(chan *domain.ScanResult, 1)
	b.Subscribe(ctx, tenantID, domain.TopicScanCompleted, func(ctx context.Context, msg *domain.Message) error {
		var result domain.ScanResult
		if err := json.Unmarshal(msg.Payload, &result); err != nil {
			return err
		}
		select {
		case resultCh <- &result:
		default:
		}
		return nil
	})

	time.Sleep(10 * time.Millisecond)

	publishScan(t, b, tenantID, ScanMessage{
		TenantID: tenantID,
		Sender:   "HDFCBK",
		Content:  "Rs 500 debited from a/c no XX1234 on 01-Sep. Avl bal Rs 12,000.",
	})

	select {
	case result := <-resultCh:
		if result.ID == "" {
			t.Error("expected generated scan ID")
		}
		if result.IsScam {
			t.Error("trusted transactional message should not be flagged")
		}
	case <-time.After(2 * time.Second):
		t.Fatal("timeout waiting for scan result")
	}
}

func TestWorkerAlertPublished(t *testing.T) {
	b := bus.NewChannelBus(100)
	defer b.Close()

	ctx := context.Background()
	tenantID := "tenant-001"

	policyEngine := newTestPolicyEngine(t, &domain.AlertPolicy{
		ID:         "high-score",
		TenantID:   tenantID,
		Name:       "High Score Alert",
		Expression: `score >= 80`,
		Enabled:    true,
	})
	defer policyEngine.Close()

	w := NewWorker(b, nil, engine.NewDefault(), policyEngine)
	if err := w.Start(Config{TenantIDs: []string{tenantID}}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer w.Stop()

	var alerted atomic.Bool
	alertCh := make(chan *domain.ScanResult, 1)
	b.Subscribe(ctx, tenantID, domain.TopicScanAlert, func(ctx context.Context, msg *domain.Message) error {
		var result domain.ScanResult
		if err := json.Unmarshal(msg.Payload, &result); err != nil {
			return err
		}
		alerted.Store(true)
		select {
		case alertCh <- &result:
		default:
		}
		return nil
	})

	time.Sleep(10 * time.Millisecond)

	t.Run("ScamTriggersAlert", func(t *testing.T) {
		publishScan(t, b, tenantID, ScanMessage{
			ScanID:   "scan-alert",
			TenantID: tenantID,
			Sender:   "KBC-LOTTERY",
			Content:  "You have won the KBC lottery of Rs 25 lakh! Share your OTP to claim.",
		})

		select {
		case result := <-alertCh:
			if result.ID != "scan-alert" {
				t.Errorf("expected scan ID 'scan-alert', got '%s'", result.ID)
			}
		case <-time.After(2 * time.Second):
			t.Fatal("timeout waiting for alert")
		}
	})

	t.Run("SafeMessageNoAlert", func(t *testing.T) {
		alerted.Store(false)

		publishScan(t, b, tenantID, ScanMessage{
			ScanID:   "scan-safe",
			TenantID: tenantID,
			Sender:   "SWIGGY",
			Content:  "Your order has been delivered. Enjoy your meal!",
		})

		time.Sleep(100 * time.Millisecond)

		if alerted.Load() {
			t.Error("safe message should not trigger an alert")
		}
	})
}

func TestWorkerMultiTenant(t *testing.T) {
	b := bus.NewChannelBus(100)
	defer b.Close()

	ctx := context.Background()

	w := NewWorker(b, nil, engine.NewDefault(), nil)
	if err := w.Start(Config{TenantIDs: []string{"tenant-001", "tenant-002"}}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer w.Stop()

	var count1, count2 atomic.Int32
	b.Subscribe(ctx, "tenant-001", domain.TopicScanCompleted, func(ctx context.Context, msg *domain.Message) error {
		count1.Add(1)
		return nil
	})
	b.Subscribe(ctx, "tenant-002", domain.TopicScanCompleted, func(ctx context.Context, msg *domain.Message) error {
		count2.Add(1)
		return nil
	})

	time.Sleep(10 * time.Millisecond)

	publishScan(t, b, "tenant-001", ScanMessage{
		TenantID: "tenant-001",
		Sender:   "+919876543210",
		Content:  "Your account will be blocked today. Verify now at http://fake.example.com",
	})

	time.Sleep(100 * time.Millisecond)

	if count1.Load() != 1 {
		t.Errorf("tenant-001 should receive 1 result, got %d", count1.Load())
	}
	if count2.Load() != 0 {
		t.Errorf("tenant-002 should receive 0 results, got %d", count2.Load())
	}
}

func TestWorkerInvalidPayload(t *testing.T) {
	b := bus.NewChannelBus(100)
	defer b.Close()

	ctx := context.Background()
	tenantID := "tenant-001"

	w := NewWorker(b, nil, engine.NewDefault(), nil)
	if err := w.Start(Config{TenantIDs: []string{tenantID}}); err != nil {
		t.Fatalf("start failed: %v", err)
	}
	defer w.Stop()

	var completed atomic.Int32
	b.Subscribe(ctx, tenantID, domain.TopicScanCompleted, func(ctx context.Context, msg *domain.Message) error {
		completed.Add(1)
		return nil
	})

	time.Sleep(10 * time.Millisecond)

	// Malformed payload is dropped without publishing a result
	b.Publish(ctx, tenantID, domain.TopicScanRequested, []byte("not json"))

	time.Sleep(100 * time.Millisecond)

	if completed.Load() != 0 {
		t.Errorf("expected no results for invalid payload, got %d", completed.Load())
	}
}

func TestScanMessageRoundTrip(t *testing.T) {
	msg := ScanMessage{
		ScanID:           "scan-123",
		TenantID:         "tenant-001",
		TraceID:          "trace-abc",
		Sender:           "VM-HDFCBK",
		Content:          "Your KYC will expire today",
		SenderScanWindow: 1800,
	}

	data, err := json.Marshal(msg)
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}

	var decoded ScanMessage
	if err := json.Unmarshal(data, &decoded); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}

	if decoded != msg {
		t.Errorf("round trip mismatch: got %+v, want %+v", decoded, msg)
	}
}
