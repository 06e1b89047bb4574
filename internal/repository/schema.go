package repository

// Schema definitions for the Kavach database.
// Compatible with both SQLite and PostgreSQL.

const schemaScans = `
CREATE TABLE IF NOT EXISTS scans (
    id TEXT PRIMARY KEY,
    tenant_id TEXT NOT NULL,
    sender TEXT NOT NULL,
    content TEXT NOT NULL,
    score INTEGER NOT NULL,
    is_scam INTEGER NOT NULL,
    risk_level TEXT NOT NULL,
    reasons TEXT NOT NULL,
    trusted_sender INTEGER NOT NULL,
    matches INTEGER NOT NULL,
    timestamp TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_scans_tenant ON scans(tenant_id);
CREATE INDEX IF NOT EXISTS idx_scans_sender ON scans(tenant_id, sender);
CREATE INDEX IF NOT EXISTS idx_scans_timestamp ON scans(tenant_id, timestamp);
CREATE INDEX IF NOT EXISTS idx_scans_verdict ON scans(tenant_id, is_scam);
`

const schemaAlertPolicies = `
CREATE TABLE IF NOT EXISTS alert_policies (
    id TEXT NOT NULL,
    tenant_id TEXT NOT NULL,
    name TEXT NOT NULL,
    description TEXT,
    expression TEXT NOT NULL,
    enabled INTEGER NOT NULL DEFAULT 1,
    created_at TIMESTAMP NOT NULL,
    updated_at TIMESTAMP NOT NULL,
    PRIMARY KEY (id, tenant_id)
);

CREATE INDEX IF NOT EXISTS idx_alert_policies_tenant ON alert_policies(tenant_id);
CREATE INDEX IF NOT EXISTS idx_alert_policies_enabled ON alert_policies(tenant_id, enabled);
`

// AllSchemas returns all schema statements in order.
func AllSchemas() []string {
	return []string{
		schemaScans,
		schemaAlertPolicies,
	}
}
