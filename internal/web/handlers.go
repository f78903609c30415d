package web

// handlers.go implements the import wizard's API:
//
//	POST /api/import/parse    multipart file -> table + suggested mapping
//	POST /api/import/preview  rows + mapping -> records + summary
//	POST /api/import/commit   rows + mapping -> import log + bulk insert
//	POST /api/import/{id}/undo
//	GET  /api/categories
//
// Preview and commit both recompute records from scratch from the posted
// snapshot; the server keeps no state between wizard steps.

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"unicode/utf8"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"

	"github.com/gbrl23/dindin-sub002/internal/importer"
)

// parseResponse carries everything the wizard's mapping step needs.
type parseResponse struct {
	FileName         string                `json:"fileName"`
	Headers          []string              `json:"headers"`
	Rows             []map[string]string   `json:"rows"`
	RowCount         int                   `json:"rowCount"`
	SuggestedMapping importer.FieldMapping `json:"suggestedMapping"`
}

// handleParse accepts a multipart upload, tokenizes it and suggests a
// column mapping. A failed parse returns the user to file selection with
// a message; no partial table is ever returned.
func (s *Server) handleParse(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, s.cfg.Import.MaxFileSize)

	file, header, err := r.FormFile("file")
	if err != nil {
		respondError(w, r, fmt.Errorf("arquivo ausente: %w", err), http.StatusBadRequest)
		return
	}
	defer file.Close()

	data, err := io.ReadAll(file)
	if err != nil {
		respondError(w, r, fmt.Errorf("ler arquivo: %w", err), http.StatusBadRequest)
		return
	}

	table, err := importer.Parse(string(sanitizeUTF8(data)))
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, parseResponse{
		FileName:         header.Filename,
		Headers:          table.Headers,
		Rows:             table.Rows,
		RowCount:         len(table.Rows),
		SuggestedMapping: importer.SuggestMapping(table.Headers),
	})
}

// previewRequest is the wizard's snapshot of table and mapping state.
type previewRequest struct {
	Headers []string              `json:"headers"`
	Rows    []map[string]string   `json:"rows"`
	Mapping importer.FieldMapping `json:"mapping"`
}

type previewResponse struct {
	Records []importer.Record `json:"records"`
	Summary importer.Summary  `json:"summary"`
}

// handlePreview rebuilds records for the posted snapshot. Row failures are
// payload data here, never HTTP errors.
func (s *Server) handlePreview(w http.ResponseWriter, r *http.Request) {
	var req previewRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}

	categories, err := s.service.Categories(r.Context())
	if err != nil {
		respondError(w, r, err, http.StatusBadGateway)
		return
	}

	table := &importer.RawTable{Headers: req.Headers, Rows: req.Rows}
	records := importer.BuildRecords(table, req.Mapping, categories)

	writeJSON(w, http.StatusOK, previewResponse{
		Records: records,
		Summary: importer.Summarize(records),
	})
}

type commitRequest struct {
	FileName string                `json:"fileName"`
	PayerID  string                `json:"payerId"`
	Headers  []string              `json:"headers"`
	Rows     []map[string]string   `json:"rows"`
	Mapping  importer.FieldMapping `json:"mapping"`
}

// handleCommit revalidates the posted snapshot and persists the accepted
// records as one import attempt.
func (s *Server) handleCommit(w http.ResponseWriter, r *http.Request) {
	var req commitRequest
	if err := decodeJSON(r, &req); err != nil {
		respondError(w, r, err, http.StatusBadRequest)
		return
	}
	if req.PayerID == "" {
		respondError(w, r, fmt.Errorf("payerId é obrigatório"), http.StatusBadRequest)
		return
	}

	categories, err := s.service.Categories(r.Context())
	if err != nil {
		respondError(w, r, err, http.StatusBadGateway)
		return
	}

	table := &importer.RawTable{Headers: req.Headers, Rows: req.Rows}
	records := importer.BuildRecords(table, req.Mapping, categories)

	result, err := s.service.Commit(r.Context(), req.FileName, req.PayerID, records)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleUndo reverses a committed import by its log id.
func (s *Server) handleUndo(w http.ResponseWriter, r *http.Request) {
	importID, err := uuid.Parse(chi.URLParam(r, "importID"))
	if err != nil {
		respondError(w, r, fmt.Errorf("importID inválido: %w", err), http.StatusBadRequest)
		return
	}

	result, err := s.service.Undo(r.Context(), importID)
	if err != nil {
		respondError(w, r, err, statusFor(err))
		return
	}

	writeJSON(w, http.StatusOK, result)
}

// handleCategories returns the category references used for row matching.
func (s *Server) handleCategories(w http.ResponseWriter, r *http.Request) {
	categories, err := s.service.Categories(r.Context())
	if err != nil {
		respondError(w, r, err, http.StatusBadGateway)
		return
	}
	if categories == nil {
		categories = []importer.Category{}
	}
	writeJSON(w, http.StatusOK, categories)
}

// decodeJSON decodes a JSON request body.
func decodeJSON(r *http.Request, v any) error {
	if err := json.NewDecoder(r.Body).Decode(v); err != nil {
		return fmt.Errorf("corpo JSON inválido: %w", err)
	}
	return nil
}

// sanitizeUTF8 replaces invalid byte sequences with the replacement
// character so legacy 8-bit exports cannot poison downstream parsing.
func sanitizeUTF8(data []byte) []byte {
	if utf8.Valid(data) {
		return data
	}

	var buf bytes.Buffer
	buf.Grow(len(data))

	for len(data) > 0 {
		r, size := utf8.DecodeRune(data)
		if r == utf8.RuneError && size == 1 {
			buf.WriteRune('\uFFFD')
			data = data[1:]
		} else {
			buf.WriteRune(r)
			data = data[size:]
		}
	}

	return buf.Bytes()
}
