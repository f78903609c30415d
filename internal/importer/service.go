package importer

// service.go ties the pure core to the persistence collaborator.
//
// Commit is deliberately strict about ordering: the import log is created
// before any transaction is written, and a log failure aborts the attempt
// without touching the ledger. Undo reverses everything tied to one log.

import (
	"context"
	"errors"
	"fmt"
	"log/slog"

	"github.com/google/uuid"
)

var (
	// ErrNothingToImport is returned by Commit when no record passed
	// validation.
	ErrNothingToImport = errors.New("nenhuma linha válida para importar")

	// ErrAlreadyReversed is returned by Undo when the import was undone
	// before.
	ErrAlreadyReversed = errors.New("importação já desfeita")
)

// SourceCSV is the source kind recorded on import logs created here.
const SourceCSV = "csv"

// ImportLogParams describes one import attempt for the log.
type ImportLogParams struct {
	SourceKind    string
	FileName      string
	AcceptedCount int
	TotalAmount   float64
}

// Store is the persistence collaborator the import flow needs. The core
// never opens a connection itself; cmd/server wires in the pgx-backed
// implementation from internal/store.
type Store interface {
	ListCategories(ctx context.Context) ([]Category, error)
	CreateImportLog(ctx context.Context, params ImportLogParams) (uuid.UUID, error)
	InsertTransactions(ctx context.Context, importID uuid.UUID, payerID string, records []Record) (int64, error)
	DeleteImport(ctx context.Context, importID uuid.UUID) (int64, error)
}

// Service exposes the import operations to transport layers.
type Service struct {
	store Store
}

// NewService creates a Service backed by the given store.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// Categories returns the category references used for row matching.
func (s *Service) Categories(ctx context.Context) ([]Category, error) {
	cats, err := s.store.ListCategories(ctx)
	if err != nil {
		return nil, fmt.Errorf("list categories: %w", err)
	}
	return cats, nil
}

// CommitResult reports a successful import.
type CommitResult struct {
	ImportID    uuid.UUID `json:"importId"`
	Inserted    int64     `json:"inserted"`
	TotalAmount float64   `json:"totalAmount"`
}

// Commit persists the accepted subset of records as one import attempt.
// The import log is created first; if that fails nothing is inserted and
// the whole attempt fails. Rejected records are ignored here, they were
// already reported through the preview summary.
func (s *Service) Commit(ctx context.Context, fileName, payerID string, records []Record) (*CommitResult, error) {
	accepted := Accepted(records)
	if len(accepted) == 0 {
		return nil, ErrNothingToImport
	}

	summary := Summarize(records)

	importID, err := s.store.CreateImportLog(ctx, ImportLogParams{
		SourceKind:    SourceCSV,
		FileName:      fileName,
		AcceptedCount: summary.Accepted,
		TotalAmount:   summary.TotalAmount,
	})
	if err != nil {
		return nil, fmt.Errorf("create import log: %w", err)
	}

	inserted, err := s.store.InsertTransactions(ctx, importID, payerID, accepted)
	if err != nil {
		return nil, fmt.Errorf("insert transactions: %w", err)
	}

	slog.Info("import committed",
		"import_id", importID,
		"file", fileName,
		"inserted", inserted,
		"rejected", summary.Rejected,
		"total", summary.TotalAmount,
	)

	return &CommitResult{
		ImportID:    importID,
		Inserted:    inserted,
		TotalAmount: summary.TotalAmount,
	}, nil
}

// UndoResult reports a reversed import.
type UndoResult struct {
	ImportID uuid.UUID `json:"importId"`
	Removed  int64     `json:"removed"`
	Success  bool      `json:"success"`
}

// Undo removes every transaction tied to an import log and marks the log
// reversed.
func (s *Service) Undo(ctx context.Context, importID uuid.UUID) (*UndoResult, error) {
	removed, err := s.store.DeleteImport(ctx, importID)
	if err != nil {
		return nil, fmt.Errorf("undo import %s: %w", importID, err)
	}

	slog.Info("import reversed", "import_id", importID, "removed", removed)

	return &UndoResult{ImportID: importID, Removed: removed, Success: true}, nil
}
