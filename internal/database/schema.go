package database

import (
	"context"
	"database/sql"
	"fmt"
)

// Monetary amounts and quantities are stored as exact decimal text (SQLite) or
// NUMERIC (Postgres); they are never handled as floats.
//
// ledger_entries, stock_movements and feed_batches are append-only: triggers
// reject any UPDATE or DELETE so corrections must be posted as new rows.
const sqliteSchema = `
CREATE TABLE IF NOT EXISTS parties (
    id          TEXT PRIMARY KEY,
    code        TEXT NOT NULL UNIQUE,
    name        TEXT NOT NULL,
    kind        TEXT NOT NULL CHECK (kind IN ('customer', 'supplier')),
    created_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_entries (
    seq               INTEGER PRIMARY KEY AUTOINCREMENT,
    id                TEXT NOT NULL UNIQUE,
    party_id          TEXT NOT NULL REFERENCES parties(id),
    entry_date        TIMESTAMP NOT NULL,
    description       TEXT NOT NULL,
    debit_primary     TEXT NOT NULL,
    credit_primary    TEXT NOT NULL,
    debit_secondary   TEXT NOT NULL,
    credit_secondary  TEXT NOT NULL,
    exchange_rate     TEXT NOT NULL,
    ref_kind          TEXT NOT NULL,
    ref_id            TEXT NOT NULL,
    reverses_id       TEXT UNIQUE REFERENCES ledger_entries(id),
    created_at        TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_entries_party_date
    ON ledger_entries(party_id, entry_date, seq);

CREATE TRIGGER IF NOT EXISTS ledger_entries_no_update
BEFORE UPDATE ON ledger_entries
BEGIN
    SELECT RAISE(ABORT, 'ledger_entries rows are append-only');
END;

CREATE TRIGGER IF NOT EXISTS ledger_entries_no_delete
BEFORE DELETE ON ledger_entries
BEGIN
    SELECT RAISE(ABORT, 'ledger_entries rows are append-only');
END;

CREATE TABLE IF NOT EXISTS inventory_pools (
    id                   TEXT PRIMARY KEY,
    kind                 TEXT NOT NULL CHECK (kind IN ('raw_material', 'finished_feed')),
    name                 TEXT NOT NULL UNIQUE,
    unit                 TEXT NOT NULL,
    stock                TEXT NOT NULL,
    unit_cost_primary    TEXT NOT NULL,
    unit_cost_secondary  TEXT NOT NULL,
    created_at           TIMESTAMP NOT NULL,
    updated_at           TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS stock_movements (
    seq                    INTEGER PRIMARY KEY AUTOINCREMENT,
    id                     TEXT NOT NULL UNIQUE,
    pool_id                TEXT NOT NULL REFERENCES inventory_pools(id),
    direction              TEXT NOT NULL CHECK (direction IN ('in', 'out')),
    quantity               TEXT NOT NULL,
    unit_cost_primary      TEXT NOT NULL,
    unit_cost_secondary    TEXT NOT NULL,
    stock_before           TEXT NOT NULL,
    stock_after            TEXT NOT NULL,
    avg_before_primary     TEXT NOT NULL,
    avg_before_secondary   TEXT NOT NULL,
    avg_after_primary      TEXT NOT NULL,
    avg_after_secondary    TEXT NOT NULL,
    ref_kind               TEXT NOT NULL,
    ref_id                 TEXT NOT NULL,
    created_at             TIMESTAMP NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stock_movements_pool
    ON stock_movements(pool_id, seq);

CREATE TRIGGER IF NOT EXISTS stock_movements_no_update
BEFORE UPDATE ON stock_movements
BEGIN
    SELECT RAISE(ABORT, 'stock_movements rows are append-only');
END;

CREATE TRIGGER IF NOT EXISTS stock_movements_no_delete
BEFORE DELETE ON stock_movements
BEGIN
    SELECT RAISE(ABORT, 'stock_movements rows are append-only');
END;

CREATE TABLE IF NOT EXISTS feed_formulas (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    created_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS formula_ingredients (
    formula_id   TEXT NOT NULL REFERENCES feed_formulas(id),
    position     INTEGER NOT NULL,
    material_id  TEXT NOT NULL REFERENCES inventory_pools(id),
    percentage   TEXT NOT NULL,
    PRIMARY KEY (formula_id, position),
    UNIQUE (formula_id, material_id)
);

CREATE TABLE IF NOT EXISTS feed_batches (
    id                    TEXT PRIMARY KEY,
    formula_id            TEXT NOT NULL REFERENCES feed_formulas(id),
    feed_pool_id          TEXT NOT NULL REFERENCES inventory_pools(id),
    quantity              TEXT NOT NULL,
    total_cost_primary    TEXT NOT NULL,
    total_cost_secondary  TEXT NOT NULL,
    unit_cost_primary     TEXT NOT NULL,
    unit_cost_secondary   TEXT NOT NULL,
    produced_at           TIMESTAMP NOT NULL
);

CREATE TRIGGER IF NOT EXISTS feed_batches_no_update
BEFORE UPDATE ON feed_batches
BEGIN
    SELECT RAISE(ABORT, 'feed_batches rows are append-only');
END;

CREATE TRIGGER IF NOT EXISTS feed_batches_no_delete
BEFORE DELETE ON feed_batches
BEGIN
    SELECT RAISE(ABORT, 'feed_batches rows are append-only');
END;

CREATE TABLE IF NOT EXISTS sheds (
    id          TEXT PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    farm        TEXT NOT NULL,
    created_at  TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS payments (
    id                TEXT PRIMARY KEY,
    party_id          TEXT NOT NULL REFERENCES parties(id),
    payment_date      TIMESTAMP NOT NULL,
    direction         TEXT NOT NULL CHECK (direction IN ('received', 'paid')),
    description       TEXT NOT NULL,
    amount_primary    TEXT NOT NULL,
    amount_secondary  TEXT NOT NULL,
    exchange_rate     TEXT NOT NULL,
    ref_kind          TEXT NOT NULL,
    ref_id            TEXT,
    entry_id          TEXT NOT NULL REFERENCES ledger_entries(id),
    created_at        TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS sales (
    id                    TEXT PRIMARY KEY,
    party_id              TEXT NOT NULL REFERENCES parties(id),
    sale_date             TIMESTAMP NOT NULL,
    product               TEXT NOT NULL,
    pool_id               TEXT REFERENCES inventory_pools(id),
    quantity              TEXT NOT NULL,
    unit_price_primary    TEXT NOT NULL,
    unit_price_secondary  TEXT NOT NULL,
    total_primary         TEXT NOT NULL,
    total_secondary       TEXT NOT NULL,
    exchange_rate         TEXT NOT NULL,
    cost_primary          TEXT NOT NULL,
    cost_secondary        TEXT NOT NULL,
    basis                 TEXT NOT NULL CHECK (basis IN ('cash', 'credit')),
    entry_id              TEXT NOT NULL REFERENCES ledger_entries(id),
    payment_id            TEXT REFERENCES payments(id),
    movement_id           TEXT REFERENCES stock_movements(id),
    created_at            TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS purchases (
    id                    TEXT PRIMARY KEY,
    party_id              TEXT NOT NULL REFERENCES parties(id),
    purchase_date         TIMESTAMP NOT NULL,
    pool_id               TEXT NOT NULL REFERENCES inventory_pools(id),
    quantity              TEXT NOT NULL,
    unit_price_primary    TEXT NOT NULL,
    unit_price_secondary  TEXT NOT NULL,
    total_primary         TEXT NOT NULL,
    total_secondary       TEXT NOT NULL,
    exchange_rate         TEXT NOT NULL,
    basis                 TEXT NOT NULL CHECK (basis IN ('cash', 'credit')),
    entry_id              TEXT NOT NULL REFERENCES ledger_entries(id),
    payment_id            TEXT REFERENCES payments(id),
    movement_id           TEXT NOT NULL REFERENCES stock_movements(id),
    created_at            TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS expenses (
    id                TEXT PRIMARY KEY,
    party_id          TEXT REFERENCES parties(id),
    expense_date      TIMESTAMP NOT NULL,
    category          TEXT NOT NULL,
    description       TEXT NOT NULL,
    amount_primary    TEXT NOT NULL,
    amount_secondary  TEXT NOT NULL,
    exchange_rate     TEXT NOT NULL,
    basis             TEXT NOT NULL CHECK (basis IN ('cash', 'credit')),
    entry_id          TEXT REFERENCES ledger_entries(id),
    payment_id        TEXT REFERENCES payments(id),
    created_at        TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS feed_issues (
    id                   TEXT PRIMARY KEY,
    shed_id              TEXT NOT NULL REFERENCES sheds(id),
    pool_id              TEXT NOT NULL REFERENCES inventory_pools(id),
    issue_date           TIMESTAMP NOT NULL,
    quantity             TEXT NOT NULL,
    unit_cost_primary    TEXT NOT NULL,
    unit_cost_secondary  TEXT NOT NULL,
    total_primary        TEXT NOT NULL,
    total_secondary      TEXT NOT NULL,
    movement_id          TEXT NOT NULL REFERENCES stock_movements(id),
    created_at           TIMESTAMP NOT NULL
);

CREATE TABLE IF NOT EXISTS operations (
    idempotency_key  TEXT PRIMARY KEY,
    kind             TEXT NOT NULL,
    record_id        TEXT NOT NULL,
    created_at       TIMESTAMP NOT NULL
);
`

const postgresSchema = `
CREATE TABLE IF NOT EXISTS parties (
    id          UUID PRIMARY KEY,
    code        TEXT NOT NULL UNIQUE,
    name        TEXT NOT NULL,
    kind        TEXT NOT NULL CHECK (kind IN ('customer', 'supplier')),
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS ledger_entries (
    seq               BIGSERIAL PRIMARY KEY,
    id                UUID NOT NULL UNIQUE,
    party_id          UUID NOT NULL REFERENCES parties(id),
    entry_date        TIMESTAMPTZ NOT NULL,
    description       TEXT NOT NULL,
    debit_primary     NUMERIC(20, 6) NOT NULL,
    credit_primary    NUMERIC(20, 6) NOT NULL,
    debit_secondary   NUMERIC(20, 6) NOT NULL,
    credit_secondary  NUMERIC(20, 6) NOT NULL,
    exchange_rate     NUMERIC(20, 6) NOT NULL,
    ref_kind          TEXT NOT NULL,
    ref_id            UUID NOT NULL,
    reverses_id       UUID UNIQUE REFERENCES ledger_entries(id),
    created_at        TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_ledger_entries_party_date
    ON ledger_entries(party_id, entry_date, seq);

CREATE TABLE IF NOT EXISTS inventory_pools (
    id                   UUID PRIMARY KEY,
    kind                 TEXT NOT NULL CHECK (kind IN ('raw_material', 'finished_feed')),
    name                 TEXT NOT NULL UNIQUE,
    unit                 TEXT NOT NULL,
    stock                NUMERIC(20, 6) NOT NULL,
    unit_cost_primary    NUMERIC(20, 6) NOT NULL,
    unit_cost_secondary  NUMERIC(20, 6) NOT NULL,
    created_at           TIMESTAMPTZ NOT NULL,
    updated_at           TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS stock_movements (
    seq                    BIGSERIAL PRIMARY KEY,
    id                     UUID NOT NULL UNIQUE,
    pool_id                UUID NOT NULL REFERENCES inventory_pools(id),
    direction              TEXT NOT NULL CHECK (direction IN ('in', 'out')),
    quantity               NUMERIC(20, 6) NOT NULL,
    unit_cost_primary      NUMERIC(20, 6) NOT NULL,
    unit_cost_secondary    NUMERIC(20, 6) NOT NULL,
    stock_before           NUMERIC(20, 6) NOT NULL,
    stock_after            NUMERIC(20, 6) NOT NULL,
    avg_before_primary     NUMERIC(20, 6) NOT NULL,
    avg_before_secondary   NUMERIC(20, 6) NOT NULL,
    avg_after_primary      NUMERIC(20, 6) NOT NULL,
    avg_after_secondary    NUMERIC(20, 6) NOT NULL,
    ref_kind               TEXT NOT NULL,
    ref_id                 UUID NOT NULL,
    created_at             TIMESTAMPTZ NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_stock_movements_pool
    ON stock_movements(pool_id, seq);

CREATE TABLE IF NOT EXISTS feed_formulas (
    id          UUID PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS formula_ingredients (
    formula_id   UUID NOT NULL REFERENCES feed_formulas(id),
    position     INTEGER NOT NULL,
    material_id  UUID NOT NULL REFERENCES inventory_pools(id),
    percentage   NUMERIC(9, 4) NOT NULL,
    PRIMARY KEY (formula_id, position),
    UNIQUE (formula_id, material_id)
);

CREATE TABLE IF NOT EXISTS feed_batches (
    id                    UUID PRIMARY KEY,
    formula_id            UUID NOT NULL REFERENCES feed_formulas(id),
    feed_pool_id          UUID NOT NULL REFERENCES inventory_pools(id),
    quantity              NUMERIC(20, 6) NOT NULL,
    total_cost_primary    NUMERIC(20, 6) NOT NULL,
    total_cost_secondary  NUMERIC(20, 6) NOT NULL,
    unit_cost_primary     NUMERIC(20, 6) NOT NULL,
    unit_cost_secondary   NUMERIC(20, 6) NOT NULL,
    produced_at           TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sheds (
    id          UUID PRIMARY KEY,
    name        TEXT NOT NULL UNIQUE,
    farm        TEXT NOT NULL,
    created_at  TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS payments (
    id                UUID PRIMARY KEY,
    party_id          UUID NOT NULL REFERENCES parties(id),
    payment_date      TIMESTAMPTZ NOT NULL,
    direction         TEXT NOT NULL CHECK (direction IN ('received', 'paid')),
    description       TEXT NOT NULL,
    amount_primary    NUMERIC(20, 6) NOT NULL,
    amount_secondary  NUMERIC(20, 6) NOT NULL,
    exchange_rate     NUMERIC(20, 6) NOT NULL,
    ref_kind          TEXT NOT NULL,
    ref_id            UUID,
    entry_id          UUID NOT NULL REFERENCES ledger_entries(id),
    created_at        TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS sales (
    id                    UUID PRIMARY KEY,
    party_id              UUID NOT NULL REFERENCES parties(id),
    sale_date             TIMESTAMPTZ NOT NULL,
    product               TEXT NOT NULL,
    pool_id               UUID REFERENCES inventory_pools(id),
    quantity              NUMERIC(20, 6) NOT NULL,
    unit_price_primary    NUMERIC(20, 6) NOT NULL,
    unit_price_secondary  NUMERIC(20, 6) NOT NULL,
    total_primary         NUMERIC(20, 6) NOT NULL,
    total_secondary       NUMERIC(20, 6) NOT NULL,
    exchange_rate         NUMERIC(20, 6) NOT NULL,
    cost_primary          NUMERIC(20, 6) NOT NULL,
    cost_secondary        NUMERIC(20, 6) NOT NULL,
    basis                 TEXT NOT NULL CHECK (basis IN ('cash', 'credit')),
    entry_id              UUID NOT NULL REFERENCES ledger_entries(id),
    payment_id            UUID REFERENCES payments(id),
    movement_id           UUID REFERENCES stock_movements(id),
    created_at            TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS purchases (
    id                    UUID PRIMARY KEY,
    party_id              UUID NOT NULL REFERENCES parties(id),
    purchase_date         TIMESTAMPTZ NOT NULL,
    pool_id               UUID NOT NULL REFERENCES inventory_pools(id),
    quantity              NUMERIC(20, 6) NOT NULL,
    unit_price_primary    NUMERIC(20, 6) NOT NULL,
    unit_price_secondary  NUMERIC(20, 6) NOT NULL,
    total_primary         NUMERIC(20, 6) NOT NULL,
    total_secondary       NUMERIC(20, 6) NOT NULL,
    exchange_rate         NUMERIC(20, 6) NOT NULL,
    basis                 TEXT NOT NULL CHECK (basis IN ('cash', 'credit')),
    entry_id              UUID NOT NULL REFERENCES ledger_entries(id),
    payment_id            UUID REFERENCES payments(id),
    movement_id           UUID NOT NULL REFERENCES stock_movements(id),
    created_at            TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS expenses (
    id                UUID PRIMARY KEY,
    party_id          UUID REFERENCES parties(id),
    expense_date      TIMESTAMPTZ NOT NULL,
    category          TEXT NOT NULL,
    description       TEXT NOT NULL,
    amount_primary    NUMERIC(20, 6) NOT NULL,
    amount_secondary  NUMERIC(20, 6) NOT NULL,
    exchange_rate     NUMERIC(20, 6) NOT NULL,
    basis             TEXT NOT NULL CHECK (basis IN ('cash', 'credit')),
    entry_id          UUID REFERENCES ledger_entries(id),
    payment_id        UUID REFERENCES payments(id),
    created_at        TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS feed_issues (
    id                   UUID PRIMARY KEY,
    shed_id              UUID NOT NULL REFERENCES sheds(id),
    pool_id              UUID NOT NULL REFERENCES inventory_pools(id),
    issue_date           TIMESTAMPTZ NOT NULL,
    quantity             NUMERIC(20, 6) NOT NULL,
    unit_cost_primary    NUMERIC(20, 6) NOT NULL,
    unit_cost_secondary  NUMERIC(20, 6) NOT NULL,
    total_primary        NUMERIC(20, 6) NOT NULL,
    total_secondary      NUMERIC(20, 6) NOT NULL,
    movement_id          UUID NOT NULL REFERENCES stock_movements(id),
    created_at           TIMESTAMPTZ NOT NULL
);

CREATE TABLE IF NOT EXISTS operations (
    idempotency_key  TEXT PRIMARY KEY,
    kind             TEXT NOT NULL,
    record_id        UUID NOT NULL,
    created_at       TIMESTAMPTZ NOT NULL
);

CREATE OR REPLACE FUNCTION reject_append_only_mutation() RETURNS trigger AS $$
BEGIN
    RAISE EXCEPTION '% rows are append-only', TG_TABLE_NAME;
END;
$$ LANGUAGE plpgsql;

DROP TRIGGER IF EXISTS ledger_entries_append_only ON ledger_entries;
CREATE TRIGGER ledger_entries_append_only
    BEFORE UPDATE OR DELETE ON ledger_entries
    FOR EACH ROW EXECUTE FUNCTION reject_append_only_mutation();

DROP TRIGGER IF EXISTS stock_movements_append_only ON stock_movements;
CREATE TRIGGER stock_movements_append_only
    BEFORE UPDATE OR DELETE ON stock_movements
    FOR EACH ROW EXECUTE FUNCTION reject_append_only_mutation();

DROP TRIGGER IF EXISTS feed_batches_append_only ON feed_batches;
CREATE TRIGGER feed_batches_append_only
    BEFORE UPDATE OR DELETE ON feed_batches
    FOR EACH ROW EXECUTE FUNCTION reject_append_only_mutation();
`

// InitializeSchema creates every table, index and trigger that does not exist yet.
func InitializeSchema(ctx context.Context, db *sql.DB, driver string) error {
	schema := sqliteSchema
	if driver == DriverPostgres {
		schema = postgresSchema
	}

	if _, err := db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("applying %s schema: %w", driver, err)
	}

	return nil
}
