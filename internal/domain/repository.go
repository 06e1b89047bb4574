// Package domain defines the core interfaces and types for Kavach.
package domain

import (
	"context"
	"time"
)

// Repository defines the interface for scan-history persistence.
// The scoring engine itself is stateless and never touches storage;
// only the API and worker layers persist results.
// All methods require tenantID for strict multi-tenancy isolation.
type Repository interface {
	// Scan history operations
	SaveScan(ctx context.Context, tenantID string, result *ScanResult) error
	GetScan(ctx context.Context, tenantID string, scanID string) (*ScanResult, error)
	ListScansBySender(ctx context.Context, tenantID string, sender string, since time.Time) ([]*ScanResult, error)
	ListRecentScans(ctx context.Context, tenantID string, limit int) ([]*ScanResult, error)

	// Aggregate counters for the stats endpoint
	CountScans(ctx context.Context, tenantID string, since time.Time) (*ScanStats, error)

	// Alert-policy operations
	SavePolicy(ctx context.Context, tenantID string, policy *AlertPolicy) error
	GetPolicy(ctx context.Context, tenantID string, policyID string) (*AlertPolicy, error)
	ListPolicies(ctx context.Context, tenantID string) ([]*AlertPolicy, error)
	DeletePolicy(ctx context.Context, tenantID string, policyID string) error

	// Health check
	Ping(ctx context.Context) error

	// Lifecycle
	Close() error
}

// RepositoryConfig holds configuration for repository initialization.
type RepositoryConfig struct {
	// Driver is the database driver: "sqlite" or "postgres"
	Driver string `json:"driver" yaml:"driver"`

	// SQLite specific
	SQLitePath string `json:"sqlitePath" yaml:"sqlitePath"`

	// PostgreSQL specific
	PostgresHost     string `json:"postgresHost" yaml:"postgresHost"`
	PostgresPort     int    `json:"postgresPort" yaml:"postgresPort"`
	PostgresUser     string `json:"postgresUser" yaml:"postgresUser"`
	PostgresPassword string `json:"postgresPassword" yaml:"postgresPassword"`
	PostgresDB       string `json:"postgresDb" yaml:"postgresDb"`
	PostgresSSLMode  string `json:"postgresSslMode" yaml:"postgresSslMode"`

	// Connection pool settings
	MaxOpenConns    int           `json:"maxOpenConns" yaml:"maxOpenConns"`
	MaxIdleConns    int           `json:"maxIdleConns" yaml:"maxIdleConns"`
	ConnMaxLifetime time.Duration `json:"connMaxLifetime" yaml:"connMaxLifetime"`
}
