// Package velocity tracks how often a sender shows up in scan history.
//
// A burst of scans from one sender is itself a fraud signal: campaigns
// blast the same number or header at many victims in a short window. The
// count feeds the sender_scans policy variable.
package velocity

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/digirakshak/kavach/internal/domain"
)

// Service counts recent scans per sender.
type Service struct {
	repo domain.Repository
	db   *sql.DB // Direct DB access for custom queries
}

// NewService creates a new velocity service.
func NewService(repo domain.Repository) *Service {
	return &Service{
		repo: repo,
	}
}

// GetSenderScanCount returns the number of scans recorded for a sender
// within a time window. This is the SenderScanGetter signature expected
// by the policy engine.
func (s *Service) GetSenderScanCount(ctx context.Context, tenantID, sender string, windowSecs int) (int64, error) {
	if tenantID == "" || sender == "" {
		return 0, fmt.Errorf("tenantID and sender are required")
	}

	since := time.Now().Add(-time.Duration(windowSecs) * time.Second)

	if s.db != nil {
		return s.countFromDB(ctx, tenantID, sender, since)
	}

	if s.repo != nil {
		return s.countFromRepo(ctx, tenantID, sender, since)
	}

	return 0, fmt.Errorf("no data source available")
}

// countFromDB queries the database directly for the scan count.
func (s *Service) countFromDB(ctx context.Context, tenantID, sender string, since time.Time) (int64, error) {
	query := `
		SELECT COUNT(*) FROM scans
		WHERE tenant_id = ?
		AND sender = ?
		AND timestamp >= ?
	`

	var count int64
	err := s.db.QueryRowContext(ctx, query, tenantID, sender, since).Scan(&count)
	if err != nil {
		return 0, fmt.Errorf("failed to count scans: %w", err)
	}

	return count, nil
}

// countFromRepo lists the sender's scans via the repository and counts them.
func (s *Service) countFromRepo(ctx context.Context, tenantID, sender string, since time.Time) (int64, error) {
	scans, err := s.repo.ListScansBySender(ctx, tenantID, sender, since)
	if err != nil {
		return 0, fmt.Errorf("failed to list scans: %w", err)
	}
	return int64(len(scans)), nil
}

// GetSenderScanGetter returns a SenderScanGetter function for the policy engine.
func (s *Service) GetSenderScanGetter() func(ctx context.Context, tenantID, sender string, windowSecs int) (int64, error) {
	return s.GetSenderScanCount
}
