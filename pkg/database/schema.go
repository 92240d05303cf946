package database

import (
	"context"
	"fmt"

	"github.com/jmoiron/sqlx"
)

// schema is the full database schema. Every statement is idempotent.
const schema = `
CREATE TABLE IF NOT EXISTS users (
    id            UUID PRIMARY KEY,
    username      TEXT NOT NULL UNIQUE,
    email         TEXT NOT NULL DEFAULT '',
    password_hash TEXT NOT NULL,
    full_name     TEXT NOT NULL DEFAULT '',
    role          TEXT NOT NULL DEFAULT 'STAFF' CHECK (role IN ('ADMIN', 'STAFF')),
    active        BOOLEAN NOT NULL DEFAULT TRUE,
    last_login    TIMESTAMPTZ,
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS refresh_tokens (
    id         UUID PRIMARY KEY,
    user_id    UUID NOT NULL REFERENCES users(id) ON DELETE CASCADE,
    token      TEXT NOT NULL UNIQUE,
    expires_at TIMESTAMPTZ NOT NULL,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    revoked    BOOLEAN NOT NULL DEFAULT FALSE,
    revoked_at TIMESTAMPTZ,
    ip_address TEXT NOT NULL DEFAULT '',
    user_agent TEXT NOT NULL DEFAULT ''
);

CREATE TABLE IF NOT EXISTS audit_logs (
    id          UUID PRIMARY KEY,
    user_id     UUID REFERENCES users(id) ON DELETE SET NULL,
    action      TEXT NOT NULL,
    resource    TEXT NOT NULL,
    resource_id TEXT,
    old_values  JSONB,
    new_values  JSONB,
    ip_address  TEXT NOT NULL DEFAULT '',
    user_agent  TEXT NOT NULL DEFAULT '',
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS employees (
    id          UUID PRIMARY KEY,
    first_name  TEXT NOT NULL,
    last_name   TEXT NOT NULL DEFAULT '',
    designation TEXT NOT NULL DEFAULT '',
    section     TEXT NOT NULL DEFAULT '',
    email       TEXT,
    phone       TEXT,
    created_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at  TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    CONSTRAINT uq_employees_name UNIQUE (first_name, last_name)
);

CREATE TABLE IF NOT EXISTS asset_types (
    id         UUID PRIMARY KEY,
    name       TEXT NOT NULL UNIQUE,
    created_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS assets (
    id               UUID PRIMARY KEY,
    asset_tag        UUID NOT NULL UNIQUE,
    type_id          UUID NOT NULL REFERENCES asset_types(id),
    make_model       TEXT NOT NULL DEFAULT '',
    serial_number    TEXT,
    ram              TEXT NOT NULL DEFAULT '',
    hdd              TEXT NOT NULL DEFAULT '',
    ssd              TEXT NOT NULL DEFAULT '',
    os               TEXT NOT NULL DEFAULT '',
    year_of_purchase INTEGER NOT NULL DEFAULT 0,
    condition        TEXT NOT NULL DEFAULT 'working'
                     CHECK (condition IN ('working', 'damaged', 'repair', 'obsolete', 'disposed')),
    remarks          TEXT NOT NULL DEFAULT '',
    is_active        BOOLEAN NOT NULL DEFAULT TRUE,
    alloted_to       UUID REFERENCES employees(id) ON DELETE SET NULL,
    created_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    updated_at       TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    deleted_at       TIMESTAMPTZ
);

CREATE INDEX IF NOT EXISTS idx_assets_alloted_to ON assets(alloted_to) WHERE deleted_at IS NULL;
CREATE INDEX IF NOT EXISTS idx_assets_created_at ON assets(created_at DESC);

CREATE TABLE IF NOT EXISTS asset_history (
    id           UUID PRIMARY KEY,
    asset_id     UUID NOT NULL REFERENCES assets(id),
    employee_id  UUID REFERENCES employees(id) ON DELETE SET NULL,
    performed_by UUID REFERENCES users(id) ON DELETE SET NULL,
    action       TEXT NOT NULL
                 CHECK (action IN ('created', 'assigned', 'transferred', 'returned', 'repaired', 'disposed', 'updated', 'deleted')),
    timestamp    TIMESTAMPTZ NOT NULL DEFAULT NOW(),
    remarks      TEXT NOT NULL DEFAULT ''
);

CREATE INDEX IF NOT EXISTS idx_asset_history_asset ON asset_history(asset_id, timestamp DESC);

CREATE TABLE IF NOT EXISTS disposal_records (
    id            UUID PRIMARY KEY,
    asset_id      UUID NOT NULL UNIQUE REFERENCES assets(id),
    disposal_date DATE NOT NULL,
    method        TEXT NOT NULL,
    certificate   TEXT,
    remarks       TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS repair_statuses (
    id            UUID PRIMARY KEY,
    asset_id      UUID NOT NULL REFERENCES assets(id),
    issue         TEXT NOT NULL,
    status        TEXT NOT NULL DEFAULT 'reported'
                  CHECK (status IN ('reported', 'in_progress', 'resolved', 'replaced', 'closed')),
    date_reported DATE NOT NULL,
    date_resolved DATE,
    remarks       TEXT NOT NULL DEFAULT '',
    created_at    TIMESTAMPTZ NOT NULL DEFAULT NOW()
);

CREATE TABLE IF NOT EXISTS asset_documents (
    id          UUID PRIMARY KEY,
    asset_id    UUID NOT NULL REFERENCES assets(id),
    name        TEXT NOT NULL,
    file_path   TEXT NOT NULL,
    mime_type   TEXT NOT NULL DEFAULT '',
    size_bytes  BIGINT NOT NULL DEFAULT 0,
    uploaded_at TIMESTAMPTZ NOT NULL DEFAULT NOW()
);
`

// EnsureSchema creates every table and index that does not exist yet.
func EnsureSchema(ctx context.Context, db *sqlx.DB) error {
	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
