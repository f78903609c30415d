package store

import (
	"context"
	"fmt"
)

// schema is applied idempotently on startup. The transactions table keeps
// amounts as unsigned magnitudes; direction lives in the type column.
const schema = `
CREATE TABLE IF NOT EXISTS categories (
	id   UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	name TEXT NOT NULL UNIQUE
);

CREATE TABLE IF NOT EXISTS import_logs (
	id             UUID PRIMARY KEY,
	source_kind    TEXT NOT NULL,
	file_name      TEXT NOT NULL,
	accepted_count INTEGER NOT NULL,
	total_amount   NUMERIC(14,2) NOT NULL,
	status         TEXT NOT NULL DEFAULT 'active',
	created_at     TIMESTAMPTZ NOT NULL DEFAULT now(),
	reversed_at    TIMESTAMPTZ
);

CREATE TABLE IF NOT EXISTS transactions (
	id          UUID PRIMARY KEY DEFAULT gen_random_uuid(),
	description TEXT NOT NULL,
	amount      NUMERIC(14,2) NOT NULL CHECK (amount >= 0),
	date        DATE NOT NULL,
	type        TEXT NOT NULL CHECK (type IN ('income', 'bill', 'expense')),
	category_id UUID REFERENCES categories(id),
	category    TEXT,
	payer_id    TEXT NOT NULL,
	import_id   UUID REFERENCES import_logs(id),
	is_paid     BOOLEAN NOT NULL DEFAULT false,
	created_at  TIMESTAMPTZ NOT NULL DEFAULT now()
);

CREATE INDEX IF NOT EXISTS idx_transactions_import_id ON transactions(import_id);
CREATE INDEX IF NOT EXISTS idx_transactions_date ON transactions(date);
`

// Migrate creates the tables if they do not exist.
func (s *Store) Migrate(ctx context.Context) error {
	if _, err := s.db.Exec(ctx, schema); err != nil {
		return fmt.Errorf("apply schema: %w", err)
	}
	return nil
}
