package repository

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/digirakshak/kavach/internal/domain"
)

func TestSQLiteRepository(t *testing.T) {
	// Create temp database file
	tmpFile, err := os.CreateTemp("", "kavach-test-*.db")
	if err != nil {
		t.Fatalf("failed to create temp file: %v", err)
	}
	tmpPath := tmpFile.Name()
	tmpFile.Close()
	defer os.Remove(tmpPath)

	cfg := domain.RepositoryConfig{
		Driver:     "sqlite",
		SQLitePath: tmpPath,
	}

	repo, err := New(cfg)
	if err != nil {
		t.Fatalf("failed to create repository: %v", err)
	}
	defer repo.Close()

	ctx := context.Background()
	tenantID := "tenant-001"

	t.Run("Ping", func(t *testing.T) {
		if err := repo.Ping(ctx); err != nil {
			t.Errorf("Ping failed: %v", err)
		}
	})

	t.Run("SaveAndGetScan", func(t *testing.T) {
		result := &domain.ScanResult{
			ID:            "scan-001",
			Sender:        "+919876543210",
			Content:       "Share your OTP to receive refund",
			Score:         100,
			IsScam:        true,
			RiskLevel:     domain.RiskCritical,
			Reasons:       []string{"Asks you to share OTP, PIN or password"},
			TrustedSender: false,
			Matches:       4,
			Timestamp:     time.Now().UTC(),
		}

		if err := repo.SaveScan(ctx, tenantID, result); err != nil {
			t.Fatalf("SaveScan failed: %v", err)
		}

		retrieved, err := repo.GetScan(ctx, tenantID, result.ID)
		if err != nil {
			t.Fatalf("GetScan failed: %v", err)
		}

		if retrieved.ID != result.ID {
			t.Errorf("expected ID %s, got %s", result.ID, retrieved.ID)
		}
		if retrieved.Score != result.Score {
			t.Errorf("expected Score %d, got %d", result.Score, retrieved.Score)
		}
		if !retrieved.IsScam {
			t.Error("expected IsScam true")
		}
		if retrieved.RiskLevel != domain.RiskCritical {
			t.Errorf("expected RiskLevel critical, got %s", retrieved.RiskLevel)
		}
		if len(retrieved.Reasons) != 1 || retrieved.Reasons[0] != result.Reasons[0] {
			t.Errorf("reasons round-trip mismatch: %v", retrieved.Reasons)
		}
		if retrieved.TenantID != tenantID {
			t.Errorf("expected TenantID %s, got %s", tenantID, retrieved.TenantID)
		}
	})

	t.Run("TenantIsolation", func(t *testing.T) {
		_, err := repo.GetScan(ctx, "tenant-002", "scan-001")
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound for different tenant, got: %v", err)
		}
	})

	t.Run("RequiresTenantID", func(t *testing.T) {
		err := repo.SaveScan(ctx, "", &domain.ScanResult{ID: "scan-x"})
		if err == nil {
			t.Error("expected error for empty tenantID")
		}

		_, err = repo.GetScan(ctx, "", "scan-001")
		if err == nil {
			t.Error("expected error for empty tenantID")
		}
	})

	t.Run("ListScansBySender", func(t *testing.T) {
		second := &domain.ScanResult{
			ID:        "scan-002",
			Sender:    "+919876543210",
			Content:   "Your KYC will expire today",
			Score:     75,
			IsScam:    true,
			RiskLevel: domain.RiskHigh,
			Reasons:   []string{"KYC expiry or update pressure"},
			Matches:   2,
			Timestamp: time.Now().UTC(),
		}
		if err := repo.SaveScan(ctx, tenantID, second); err != nil {
			t.Fatalf("SaveScan failed: %v", err)
		}

		since := time.Now().Add(-1 * time.Hour)
		scans, err := repo.ListScansBySender(ctx, tenantID, "+919876543210", since)
		if err != nil {
			t.Fatalf("ListScansBySender failed: %v", err)
		}
		if len(scans) != 2 {
			t.Errorf("expected 2 scans, got %d", len(scans))
		}

		scans, err = repo.ListScansBySender(ctx, tenantID, "HDFCBK", since)
		if err != nil {
			t.Fatalf("ListScansBySender failed: %v", err)
		}
		if len(scans) != 0 {
			t.Errorf("expected 0 scans for other sender, got %d", len(scans))
		}
	})

	t.Run("ListRecentScans", func(t *testing.T) {
		scans, err := repo.ListRecentScans(ctx, tenantID, 1)
		if err != nil {
			t.Fatalf("ListRecentScans failed: %v", err)
		}
		if len(scans) != 1 {
			t.Errorf("expected limit of 1 scan, got %d", len(scans))
		}
	})

	t.Run("CountScans", func(t *testing.T) {
		stats, err := repo.CountScans(ctx, tenantID, time.Now().Add(-1*time.Hour))
		if err != nil {
			t.Fatalf("CountScans failed: %v", err)
		}
		if stats.Total != 2 {
			t.Errorf("expected Total 2, got %d", stats.Total)
		}
		if stats.Scams != 2 {
			t.Errorf("expected Scams 2, got %d", stats.Scams)
		}
	})

	t.Run("SaveAndGetPolicy", func(t *testing.T) {
		policy := &domain.AlertPolicy{
			ID:         "policy-001",
			Name:       "critical alerts",
			Expression: `score >= 80`,
			Enabled:    true,
		}

		if err := repo.SavePolicy(ctx, tenantID, policy); err != nil {
			t.Fatalf("SavePolicy failed: %v", err)
		}

		retrieved, err := repo.GetPolicy(ctx, tenantID, policy.ID)
		if err != nil {
			t.Fatalf("GetPolicy failed: %v", err)
		}
		if retrieved.Expression != policy.Expression {
			t.Errorf("expected Expression %q, got %q", policy.Expression, retrieved.Expression)
		}
		if !retrieved.Enabled {
			t.Error("expected Enabled true")
		}
	})

	t.Run("UpsertPolicy", func(t *testing.T) {
		updated := &domain.AlertPolicy{
			ID:         "policy-001",
			Name:       "critical alerts",
			Expression: `score >= 90`,
			Enabled:    true,
		}
		if err := repo.SavePolicy(ctx, tenantID, updated); err != nil {
			t.Fatalf("SavePolicy upsert failed: %v", err)
		}

		retrieved, err := repo.GetPolicy(ctx, tenantID, "policy-001")
		if err != nil {
			t.Fatalf("GetPolicy failed: %v", err)
		}
		if retrieved.Expression != `score >= 90` {
			t.Errorf("upsert did not update expression, got %q", retrieved.Expression)
		}
	})

	t.Run("ListAndDeletePolicy", func(t *testing.T) {
		policies, err := repo.ListPolicies(ctx, tenantID)
		if err != nil {
			t.Fatalf("ListPolicies failed: %v", err)
		}
		if len(policies) != 1 {
			t.Fatalf("expected 1 policy, got %d", len(policies))
		}

		if err := repo.DeletePolicy(ctx, tenantID, "policy-001"); err != nil {
			t.Fatalf("DeletePolicy failed: %v", err)
		}

		policies, err = repo.ListPolicies(ctx, tenantID)
		if err != nil {
			t.Fatalf("ListPolicies failed: %v", err)
		}
		if len(policies) != 0 {
			t.Errorf("expected 0 policies after delete, got %d", len(policies))
		}

		if err := repo.DeletePolicy(ctx, tenantID, "no-such-policy"); err != ErrNotFound {
			t.Errorf("expected ErrNotFound deleting unknown policy, got: %v", err)
		}
	})

	t.Run("NotFound", func(t *testing.T) {
		_, err := repo.GetScan(ctx, tenantID, "nonexistent")
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}

		_, err = repo.GetPolicy(ctx, tenantID, "nonexistent")
		if err != ErrNotFound {
			t.Errorf("expected ErrNotFound, got: %v", err)
		}
	})
}

func TestUnsupportedDriver(t *testing.T) {
	cfg := domain.RepositoryConfig{
		Driver: "mysql",
	}

	_, err := New(cfg)
	if err == nil {
		t.Error("expected error for unsupported driver")
	}
}

func TestRebind(t *testing.T) {
	repo := &SQLRepository{driver: "postgres"}

	tests := []struct {
		input    string
		expected string
	}{
		{"SELECT * FROM t WHERE id = ?", "SELECT * FROM t WHERE id = $1"},
		{"INSERT INTO t (a, b) VALUES (?, ?)", "INSERT INTO t (a, b) VALUES ($1, $2)"},
		{"SELECT * FROM t", "SELECT * FROM t"},
	}

	for _, tt := range tests {
		result := repo.rebind(tt.input)
		if result != tt.expected {
			t.Errorf("rebind(%q) = %q, want %q", tt.input, result, tt.expected)
		}
	}
}
