package web

import (
	"bytes"
	"context"
	"encoding/json"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/google/uuid"

	"github.com/gbrl23/dindin-sub002/internal/config"
	"github.com/gbrl23/dindin-sub002/internal/importer"
)

type fakeStore struct {
	categories []importer.Category
	inserted   []importer.Record
	undone     []uuid.UUID
}

func (f *fakeStore) ListCategories(ctx context.Context) ([]importer.Category, error) {
	return f.categories, nil
}

func (f *fakeStore) CreateImportLog(ctx context.Context, params importer.ImportLogParams) (uuid.UUID, error) {
	return uuid.New(), nil
}

func (f *fakeStore) InsertTransactions(ctx context.Context, importID uuid.UUID, payerID string, records []importer.Record) (int64, error) {
	f.inserted = records
	return int64(len(records)), nil
}

func (f *fakeStore) DeleteImport(ctx context.Context, importID uuid.UUID) (int64, error) {
	f.undone = append(f.undone, importID)
	return 2, nil
}

func newTestServer(store importer.Store) *Server {
	cfg := &config.Config{}
	cfg.Import.MaxFileSize = 1 << 20
	cfg.Server.RequestTimeout = 0
	return NewServer(importer.NewService(store), cfg)
}

func multipartBody(t *testing.T, fileName, content string) (*bytes.Buffer, string) {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", fileName)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatal(err)
	}
	mw.Close()
	return &buf, mw.FormDataContentType()
}

func TestHandleParse(t *testing.T) {
	srv := newTestServer(&fakeStore{})

	body, contentType := multipartBody(t, "extrato.csv",
		"Data,Descrição,Valor\n2024-01-01,Mercado,\"50,00\"\n")
	req := httptest.NewRequest(http.MethodPost, "/api/import/parse", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp parseResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.RowCount != 1 || len(resp.Headers) != 3 {
		t.Errorf("resp = %+v", resp)
	}
	if resp.SuggestedMapping["Descrição"] != importer.FieldDescription {
		t.Errorf("suggested mapping = %v", resp.SuggestedMapping)
	}
}

func TestHandleParseRejectsEmptyFile(t *testing.T) {
	srv := newTestServer(&fakeStore{})

	body, contentType := multipartBody(t, "vazio.csv", "")
	req := httptest.NewRequest(http.MethodPost, "/api/import/parse", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusUnprocessableEntity {
		t.Errorf("status = %d, want 422", rec.Code)
	}
}

func TestHandlePreview(t *testing.T) {
	store := &fakeStore{categories: []importer.Category{{ID: "c1", Name: "Mercado"}}}
	srv := newTestServer(store)

	payload := `{
		"headers": ["Data", "Descricao", "Valor", "Categoria"],
		"rows": [
			{"Data": "2024-01-01", "Descricao": "Feira", "Valor": "30,00", "Categoria": "mercado"},
			{"Data": "2024-01-02", "Descricao": "", "Valor": "10,00"}
		],
		"mapping": {"Data": "date", "Descricao": "description", "Valor": "amount", "Categoria": "category"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/import/preview", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}

	var resp previewResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &resp); err != nil {
		t.Fatal(err)
	}
	if resp.Summary.Accepted != 1 || resp.Summary.Rejected != 1 {
		t.Errorf("summary = %+v", resp.Summary)
	}
	if resp.Records[0].CategoryID != "c1" {
		t.Errorf("category not matched: %+v", resp.Records[0])
	}
	if resp.Records[1].ErrorReason != "Sem descrição" {
		t.Errorf("ErrorReason = %q", resp.Records[1].ErrorReason)
	}
}

func TestHandleCommit(t *testing.T) {
	store := &fakeStore{}
	srv := newTestServer(store)

	payload := `{
		"fileName": "extrato.csv",
		"payerId": "payer-1",
		"headers": ["Data", "Descricao", "Valor"],
		"rows": [{"Data": "2024-01-01", "Descricao": "Mercado", "Valor": "50,00"}],
		"mapping": {"Data": "date", "Descricao": "description", "Valor": "amount"}
	}`
	req := httptest.NewRequest(http.MethodPost, "/api/import/commit", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(store.inserted) != 1 || store.inserted[0].Amount != 50 {
		t.Errorf("inserted = %+v", store.inserted)
	}
}

func TestHandleCommitRequiresPayer(t *testing.T) {
	srv := newTestServer(&fakeStore{})

	payload := `{"fileName": "x.csv", "headers": [], "rows": [], "mapping": {}}`
	req := httptest.NewRequest(http.MethodPost, "/api/import/commit", strings.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleUndo(t *testing.T) {
	store := &fakeStore{}
	srv := newTestServer(store)

	id := uuid.New()
	req := httptest.NewRequest(http.MethodPost, "/api/import/"+id.String()+"/undo", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d, body = %s", rec.Code, rec.Body.String())
	}
	if len(store.undone) != 1 || store.undone[0] != id {
		t.Errorf("undone = %v", store.undone)
	}
}

func TestHandleUndoRejectsBadID(t *testing.T) {
	srv := newTestServer(&fakeStore{})

	req := httptest.NewRequest(http.MethodPost, "/api/import/not-a-uuid/undo", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", rec.Code)
	}
}

func TestHandleCategories(t *testing.T) {
	store := &fakeStore{categories: []importer.Category{{ID: "c1", Name: "Mercado"}}}
	srv := newTestServer(store)

	req := httptest.NewRequest(http.MethodGet, "/api/categories", nil)
	rec := httptest.NewRecorder()

	srv.Router().ServeHTTP(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("status = %d", rec.Code)
	}
	var cats []importer.Category
	if err := json.Unmarshal(rec.Body.Bytes(), &cats); err != nil {
		t.Fatal(err)
	}
	if len(cats) != 1 || cats[0].Name != "Mercado" {
		t.Errorf("cats = %+v", cats)
	}
}
