package importer

import (
	"context"
	"errors"
	"testing"

	"github.com/google/uuid"
)

// fakeStore records calls so tests can assert ordering and payloads.
type fakeStore struct {
	categories []Category

	logParams  *ImportLogParams
	logErr     error
	insertRecs []Record
	insertErr  error
	deleted    []uuid.UUID
	deleteErr  error
}

func (f *fakeStore) ListCategories(ctx context.Context) ([]Category, error) {
	return f.categories, nil
}

func (f *fakeStore) CreateImportLog(ctx context.Context, params ImportLogParams) (uuid.UUID, error) {
	f.logParams = &params
	if f.logErr != nil {
		return uuid.Nil, f.logErr
	}
	return uuid.New(), nil
}

func (f *fakeStore) InsertTransactions(ctx context.Context, importID uuid.UUID, payerID string, records []Record) (int64, error) {
	f.insertRecs = records
	if f.insertErr != nil {
		return 0, f.insertErr
	}
	return int64(len(records)), nil
}

func (f *fakeStore) DeleteImport(ctx context.Context, importID uuid.UUID) (int64, error) {
	f.deleted = append(f.deleted, importID)
	if f.deleteErr != nil {
		return 0, f.deleteErr
	}
	return 3, nil
}

func TestCommitInsertsAcceptedOnly(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	records := []Record{
		{Index: 0, Valid: true, Description: "Mercado", Amount: 50, Date: "2024-01-01", Type: TypeExpense},
		{Index: 1, Valid: false, ErrorReason: "Sem descrição"},
		{Index: 2, Valid: true, Description: "Salário", Amount: 1000, Date: "2024-01-05", Type: TypeIncome},
	}

	result, err := svc.Commit(context.Background(), "extrato.csv", "payer-1", records)
	if err != nil {
		t.Fatalf("Commit returned error: %v", err)
	}

	if result.Inserted != 2 {
		t.Errorf("Inserted = %d, want 2", result.Inserted)
	}
	if result.TotalAmount != 1050 {
		t.Errorf("TotalAmount = %v, want 1050", result.TotalAmount)
	}
	if len(store.insertRecs) != 2 {
		t.Fatalf("store received %d records, want accepted subset of 2", len(store.insertRecs))
	}
	if store.insertRecs[0].Index != 0 || store.insertRecs[1].Index != 2 {
		t.Error("accepted records must keep row order")
	}

	if store.logParams == nil {
		t.Fatal("import log was not created")
	}
	if store.logParams.SourceKind != SourceCSV || store.logParams.FileName != "extrato.csv" {
		t.Errorf("log params = %+v", store.logParams)
	}
	if store.logParams.AcceptedCount != 2 || store.logParams.TotalAmount != 1050 {
		t.Errorf("log aggregates = %+v", store.logParams)
	}
}

func TestCommitRequiresValidRecords(t *testing.T) {
	svc := NewService(&fakeStore{})
	_, err := svc.Commit(context.Background(), "x.csv", "p", []Record{{Valid: false}})
	if !errors.Is(err, ErrNothingToImport) {
		t.Errorf("err = %v, want ErrNothingToImport", err)
	}
}

func TestCommitLogFailureIsHardStop(t *testing.T) {
	store := &fakeStore{logErr: errors.New("db down")}
	svc := NewService(store)

	_, err := svc.Commit(context.Background(), "x.csv", "p", []Record{{Valid: true, Amount: 1}})
	if err == nil {
		t.Fatal("Commit should fail when the log cannot be created")
	}
	if store.insertRecs != nil {
		t.Error("no insert may be attempted after a log creation failure")
	}
}

func TestCommitInsertFailurePropagates(t *testing.T) {
	store := &fakeStore{insertErr: errors.New("copy failed")}
	svc := NewService(store)

	_, err := svc.Commit(context.Background(), "x.csv", "p", []Record{{Valid: true, Amount: 1}})
	if err == nil {
		t.Fatal("Commit should fail when the bulk insert fails")
	}
}

func TestUndo(t *testing.T) {
	store := &fakeStore{}
	svc := NewService(store)

	id := uuid.New()
	result, err := svc.Undo(context.Background(), id)
	if err != nil {
		t.Fatalf("Undo returned error: %v", err)
	}
	if !result.Success || result.Removed != 3 {
		t.Errorf("result = %+v", result)
	}
	if len(store.deleted) != 1 || store.deleted[0] != id {
		t.Errorf("store.deleted = %v", store.deleted)
	}
}

func TestUndoFailurePropagates(t *testing.T) {
	store := &fakeStore{deleteErr: ErrAlreadyReversed}
	svc := NewService(store)

	_, err := svc.Undo(context.Background(), uuid.New())
	if !errors.Is(err, ErrAlreadyReversed) {
		t.Errorf("err = %v, want ErrAlreadyReversed", err)
	}
}
