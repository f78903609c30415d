// Package store implements the persistence side of the import flow on
// PostgreSQL via pgx: category lookup, import-log creation, bulk
// transaction insertion and import reversal.
package store

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/gbrl23/dindin-sub002/internal/importer"
)

// DBTX is the interface for database operations.
// Satisfied by both *pgxpool.Pool and pgx.Tx.
type DBTX interface {
	Exec(context.Context, string, ...interface{}) (pgconn.CommandTag, error)
	Query(context.Context, string, ...interface{}) (pgx.Rows, error)
	QueryRow(context.Context, string, ...interface{}) pgx.Row
	Begin(context.Context) (pgx.Tx, error)
}

// Store is the pgx-backed implementation of importer.Store.
type Store struct {
	db DBTX
}

// New creates a Store on top of a connection pool.
func New(db DBTX) *Store {
	return &Store{db: db}
}

// ListCategories returns all categories ordered by name.
func (s *Store) ListCategories(ctx context.Context) ([]importer.Category, error) {
	rows, err := s.db.Query(ctx,
		`SELECT id, name FROM categories ORDER BY name`)
	if err != nil {
		return nil, fmt.Errorf("query categories: %w", err)
	}
	defer rows.Close()

	var categories []importer.Category
	for rows.Next() {
		var c importer.Category
		if err := rows.Scan(&c.ID, &c.Name); err != nil {
			return nil, fmt.Errorf("scan category: %w", err)
		}
		categories = append(categories, c)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("category rows: %w", err)
	}

	return categories, nil
}

// CreateImportLog records one import attempt and returns its identifier.
// The log row must exist before any transaction referencing it is written.
func (s *Store) CreateImportLog(ctx context.Context, params importer.ImportLogParams) (uuid.UUID, error) {
	id := uuid.New()

	_, err := s.db.Exec(ctx, `
		INSERT INTO import_logs (id, source_kind, file_name, accepted_count, total_amount, status)
		VALUES ($1, $2, $3, $4, $5, 'active')`,
		id, params.SourceKind, params.FileName, params.AcceptedCount, params.TotalAmount,
	)
	if err != nil {
		return uuid.Nil, fmt.Errorf("insert import log: %w", err)
	}

	return id, nil
}

// InsertTransactions bulk-inserts accepted records tied to an import log
// using the COPY protocol. The whole batch is one transaction: either
// every record lands or none does.
func (s *Store) InsertTransactions(ctx context.Context, importID uuid.UUID, payerID string, records []importer.Record) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	copied, err := tx.CopyFrom(ctx,
		pgx.Identifier{"transactions"},
		[]string{"description", "amount", "date", "type", "category_id", "category", "payer_id", "import_id", "is_paid"},
		pgx.CopyFromSlice(len(records), func(i int) ([]any, error) {
			r := records[i]
			var categoryID *string
			if r.CategoryID != "" {
				categoryID = &r.CategoryID
			}
			var categoryName *string
			if r.CategoryName != "" {
				categoryName = &r.CategoryName
			}
			return []any{
				r.Description,
				r.Amount,
				r.Date,
				string(r.Type),
				categoryID,
				categoryName,
				payerID,
				importID,
				false,
			}, nil
		}),
	)
	if err != nil {
		return 0, fmt.Errorf("copy transactions: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	return copied, nil
}

// DeleteImport removes every transaction tied to an import log and marks
// the log reversed. A log that was already reversed is refused.
func (s *Store) DeleteImport(ctx context.Context, importID uuid.UUID) (int64, error) {
	tx, err := s.db.Begin(ctx)
	if err != nil {
		return 0, fmt.Errorf("begin: %w", err)
	}
	defer tx.Rollback(ctx)

	var status string
	err = tx.QueryRow(ctx,
		`SELECT status FROM import_logs WHERE id = $1 FOR UPDATE`, importID,
	).Scan(&status)
	if errors.Is(err, pgx.ErrNoRows) {
		return 0, fmt.Errorf("import %s not found", importID)
	}
	if err != nil {
		return 0, fmt.Errorf("lock import log: %w", err)
	}
	if status == "reversed" {
		return 0, importer.ErrAlreadyReversed
	}

	tag, err := tx.Exec(ctx,
		`DELETE FROM transactions WHERE import_id = $1`, importID)
	if err != nil {
		return 0, fmt.Errorf("delete transactions: %w", err)
	}

	if _, err := tx.Exec(ctx,
		`UPDATE import_logs SET status = 'reversed', reversed_at = now() WHERE id = $1`,
		importID,
	); err != nil {
		return 0, fmt.Errorf("mark reversed: %w", err)
	}

	if err := tx.Commit(ctx); err != nil {
		return 0, fmt.Errorf("commit: %w", err)
	}

	return tag.RowsAffected(), nil
}
