package db

import (
	"database/sql"
)

// MigrateUp creates the client table with its credit columns and indexes.
// Statements are idempotent so it can run on every start.
func MigrateUp(db *sql.DB) error {
	if _, err := db.Exec(`
CREATE TABLE IF NOT EXISTS clients (
    id                       BIGSERIAL PRIMARY KEY,
    name                     VARCHAR(150) NOT NULL,
    document_type            VARCHAR(10) NOT NULL,
    document_number          VARCHAR(20) NOT NULL,
    status                   VARCHAR(20) NOT NULL DEFAULT 'active',
    credit_score             INTEGER,
    risk_classification      VARCHAR(10),
    total_debts              NUMERIC(12, 2) DEFAULT 0,
    active_credits           INTEGER DEFAULT 0,
    overdue_credits          INTEGER DEFAULT 0,
    automatic_evaluation     VARCHAR(10),
    evaluation_justification TEXT,
    suggested_credit_limit   NUMERIC(12, 2) DEFAULT 0,
    last_credit_check        TIMESTAMPTZ,
    sentinel_data            JSONB,
    created_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
    updated_at               TIMESTAMPTZ NOT NULL DEFAULT now(),
    UNIQUE (document_type, document_number)
)`); err != nil {
		return err
	}

	indexes := []string{
		// re-check worker scans oldest checks first
		`CREATE INDEX IF NOT EXISTS idx_clients_last_credit_check ON clients(last_credit_check NULLS FIRST)`,
		`CREATE INDEX IF NOT EXISTS idx_clients_status ON clients(status)`,
		`CREATE INDEX IF NOT EXISTS idx_clients_document_number ON clients(document_number)`,
	}
	for _, idx := range indexes {
		if _, err := db.Exec(idx); err != nil {
			return err
		}
	}

	// Constraint syntax is PostgreSQL specific; ignore the error when it already exists.
	_, _ = db.Exec(`
DO $$
BEGIN
    IF NOT EXISTS (
        SELECT 1 FROM pg_constraint
        WHERE conname = 'chk_clients_status'
    ) THEN
        ALTER TABLE clients ADD CONSTRAINT chk_clients_status
        CHECK (status IN ('active', 'inactive', 'suspended', 'blacklisted'));
    END IF;
END $$;
`)

	return nil
}

// MigrateDown drops the client table and its indexes.
// Use with caution: this deletes every stored credit assessment.
func MigrateDown(db *sql.DB) error {
	dropStatements := []string{
		`DROP INDEX IF EXISTS idx_clients_document_number`,
		`DROP INDEX IF EXISTS idx_clients_status`,
		`DROP INDEX IF EXISTS idx_clients_last_credit_check`,
		`DROP TABLE IF EXISTS clients CASCADE`,
	}
	for _, stmt := range dropStatements {
		if _, err := db.Exec(stmt); err != nil {
			return err
		}
	}
	return nil
}
