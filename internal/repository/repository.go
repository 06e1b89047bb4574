// Package repository provides data persistence implementations.
package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/digirakshak/kavach/internal/domain"
)

var (
	ErrNotFound     = errors.New("record not found")
	ErrInvalidInput = errors.New("invalid input")
)

// SQLRepository implements domain.Repository using database/sql.
// Works with both SQLite and PostgreSQL drivers.
type SQLRepository struct {
	db     *sql.DB
	driver string
}

// New creates a new repository based on configuration.
func New(cfg domain.RepositoryConfig) (domain.Repository, error) {
	var db *sql.DB
	var err error

	switch cfg.Driver {
	case "sqlite":
		db, err = openSQLite(cfg)
	case "postgres":
		db, err = openPostgres(cfg)
	default:
		return nil, fmt.Errorf("unsupported driver: %s", cfg.Driver)
	}

	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// Configure connection pool
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	}

	repo := &SQLRepository{
		db:     db,
		driver: cfg.Driver,
	}

	// Run migrations
	if err := repo.migrate(); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to run migrations: %w", err)
	}

	return repo, nil
}

func (r *SQLRepository) migrate() error {
	for _, schema := range AllSchemas() {
		if _, err := r.db.Exec(schema); err != nil {
			return err
		}
	}
	return nil
}

// SaveScan stores a scan result with tenant isolation.
func (r *SQLRepository) SaveScan(ctx context.Context, tenantID string, result *domain.ScanResult) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}
	if result.ID == "" {
		return fmt.Errorf("%w: scan ID is required", ErrInvalidInput)
	}

	reasons, _ := json.Marshal(result.Reasons)

	isScam := 0
	if result.IsScam {
		isScam = 1
	}
	trusted := 0
	if result.TrustedSender {
		trusted = 1
	}

	query := `
		INSERT INTO scans (
			id, tenant_id, sender, content, score, is_scam,
			risk_level, reasons, trusted_sender, matches, timestamp
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		result.ID, tenantID, result.Sender, result.Content,
		result.Score, isScam, string(result.RiskLevel), string(reasons),
		trusted, result.Matches, result.Timestamp,
	)
	return err
}

// GetScan retrieves a scan by ID with tenant isolation.
func (r *SQLRepository) GetScan(ctx context.Context, tenantID string, scanID string) (*domain.ScanResult, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, sender, content, score, is_scam,
			   risk_level, reasons, trusted_sender, matches, timestamp
		FROM scans
		WHERE tenant_id = ? AND id = ?
	`

	row := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, scanID)
	result, err := scanRow(row.Scan)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}
	return result, nil
}

// ListScansBySender retrieves scans for a sender since a point in time,
// newest first, with tenant isolation.
func (r *SQLRepository) ListScansBySender(ctx context.Context, tenantID string, sender string, since time.Time) ([]*domain.ScanResult, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, sender, content, score, is_scam,
			   risk_level, reasons, trusted_sender, matches, timestamp
		FROM scans
		WHERE tenant_id = ? AND sender = ? AND timestamp >= ?
		ORDER BY timestamp DESC
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID, sender, since)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectScans(rows)
}

// ListRecentScans retrieves the most recent scans for a tenant.
func (r *SQLRepository) ListRecentScans(ctx context.Context, tenantID string, limit int) ([]*domain.ScanResult, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}
	if limit <= 0 {
		limit = 50
	}

	query := `
		SELECT id, tenant_id, sender, content, score, is_scam,
			   risk_level, reasons, trusted_sender, matches, timestamp
		FROM scans
		WHERE tenant_id = ?
		ORDER BY timestamp DESC
		LIMIT ?
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID, limit)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	return collectScans(rows)
}

// CountScans returns aggregate scan counters since a point in time.
func (r *SQLRepository) CountScans(ctx context.Context, tenantID string, since time.Time) (*domain.ScanStats, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT COUNT(*), COALESCE(SUM(is_scam), 0)
		FROM scans
		WHERE tenant_id = ? AND timestamp >= ?
	`

	stats := domain.ScanStats{
		TenantID: tenantID,
		Since:    since,
	}
	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, since).Scan(&stats.Total, &stats.Scams)
	if err != nil {
		return nil, err
	}

	return &stats, nil
}

// SavePolicy upserts an alert policy with tenant isolation.
func (r *SQLRepository) SavePolicy(ctx context.Context, tenantID string, policy *domain.AlertPolicy) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}
	if policy.ID == "" || policy.Expression == "" {
		return fmt.Errorf("%w: policy ID and expression are required", ErrInvalidInput)
	}

	enabled := 0
	if policy.Enabled {
		enabled = 1
	}

	now := time.Now().UTC()

	query := `
		INSERT INTO alert_policies (
			id, tenant_id, name, description, expression, enabled, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id, tenant_id) DO UPDATE SET
			name = excluded.name,
			description = excluded.description,
			expression = excluded.expression,
			enabled = excluded.enabled,
			updated_at = excluded.updated_at
	`

	_, err := r.db.ExecContext(ctx, r.rebind(query),
		policy.ID, tenantID, policy.Name, policy.Description,
		policy.Expression, enabled, now, now,
	)
	return err
}

// GetPolicy retrieves an alert policy with tenant isolation.
func (r *SQLRepository) GetPolicy(ctx context.Context, tenantID string, policyID string) (*domain.AlertPolicy, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, name, description, expression, enabled, created_at, updated_at
		FROM alert_policies
		WHERE tenant_id = ? AND id = ?
	`

	var p domain.AlertPolicy
	var enabled int

	err := r.db.QueryRowContext(ctx, r.rebind(query), tenantID, policyID).Scan(
		&p.ID, &p.TenantID, &p.Name, &p.Description,
		&p.Expression, &enabled, &p.CreatedAt, &p.UpdatedAt,
	)

	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, err
	}

	p.Enabled = enabled == 1

	return &p, nil
}

// ListPolicies retrieves all enabled alert policies for a tenant.
func (r *SQLRepository) ListPolicies(ctx context.Context, tenantID string) ([]*domain.AlertPolicy, error) {
	if tenantID == "" {
		return nil, fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		SELECT id, tenant_id, name, description, expression, enabled, created_at, updated_at
		FROM alert_policies
		WHERE tenant_id = ? AND enabled = 1
		ORDER BY name
	`

	rows, err := r.db.QueryContext(ctx, r.rebind(query), tenantID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var policies []*domain.AlertPolicy
	for rows.Next() {
		var p domain.AlertPolicy
		var enabled int

		if err := rows.Scan(
			&p.ID, &p.TenantID, &p.Name, &p.Description,
			&p.Expression, &enabled, &p.CreatedAt, &p.UpdatedAt,
		); err != nil {
			return nil, err
		}

		p.Enabled = enabled == 1
		policies = append(policies, &p)
	}

	return policies, rows.Err()
}

// DeletePolicy soft-deletes a policy by setting enabled = 0.
func (r *SQLRepository) DeletePolicy(ctx context.Context, tenantID string, policyID string) error {
	if tenantID == "" {
		return fmt.Errorf("%w: tenantID is required", ErrInvalidInput)
	}

	query := `
		UPDATE alert_policies
		SET enabled = 0, updated_at = ?
		WHERE tenant_id = ? AND id = ?
	`

	result, err := r.db.ExecContext(ctx, r.rebind(query), time.Now().UTC(), tenantID, policyID)
	if err != nil {
		return err
	}

	rows, err := result.RowsAffected()
	if err != nil {
		return err
	}
	if rows == 0 {
		return ErrNotFound
	}

	return nil
}

// Ping checks database connectivity.
func (r *SQLRepository) Ping(ctx context.Context) error {
	return r.db.PingContext(ctx)
}

// Close closes the database connection.
func (r *SQLRepository) Close() error {
	return r.db.Close()
}

// scanRow decodes one scans row via the given Scan function.
func scanRow(scan func(dest ...any) error) (*domain.ScanResult, error) {
	var result domain.ScanResult
	var isScam, trusted int
	var riskLevel, reasons string

	err := scan(
		&result.ID, &result.TenantID, &result.Sender, &result.Content,
		&result.Score, &isScam, &riskLevel, &reasons,
		&trusted, &result.Matches, &result.Timestamp,
	)
	if err != nil {
		return nil, err
	}

	result.IsScam = isScam == 1
	result.TrustedSender = trusted == 1
	result.RiskLevel = domain.RiskLevel(riskLevel)
	if reasons != "" {
		json.Unmarshal([]byte(reasons), &result.Reasons)
	}

	return &result, nil
}

func collectScans(rows *sql.Rows) ([]*domain.ScanResult, error) {
	var results []*domain.ScanResult
	for rows.Next() {
		result, err := scanRow(rows.Scan)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

// rebind converts ? placeholders to $1, $2, etc. for PostgreSQL.
func (r *SQLRepository) rebind(query string) string {
	if r.driver != "postgres" {
		return query
	}

	var result []byte
	n := 1
	for i := 0; i < len(query); i++ {
		if query[i] == '?' {
			result = append(result, '$')
			result = append(result, fmt.Sprintf("%d", n)...)
			n++
		} else {
			result = append(result, query[i])
		}
	}
	return string(result)
}
