/*
handlers.go - HTTP API handlers for the reconciliation engine

PURPOSE:
  Exposes the ingestion pipeline and reconciliation aggregator via REST.
  Handles HTTP request/response, multipart parsing, and delegates every
  decision to the ingest/money/recon packages.

ENDPOINTS:
  Reconciliation:
    POST   /api/reconcile              Upload both files, run, persist

  Run history:
    GET    /api/runs                   List runs (summaries only)
    GET    /api/runs/{id}              One run with full results
    GET    /api/runs/{id}/summary      Rollup for the assistant collaborator
    GET    /api/runs/{id}/export       Results as downloadable CSV

REQUEST FLOW (POST /api/reconcile):
  1. Parse multipart form: "lendings" and "settlements" file parts,
     optional "amount_policy" field (strict|lenient, default strict)
  2. Ingest + validate both files under the SAME policy
  3. recon.Reconcile + recon.Summarize
  4. Persist the run (append-only)
  5. Return the run with full results

ERROR HANDLING:
  Ingestion errors map to statuses and their text is surfaced verbatim:
  - 400: schema/record/amount/empty-dataset errors, bad policy name
  - 404: unknown run id
  - 415: unsupported file extension
  - 500: store failures

SECURITY NOTE:
  No authentication. The assistant's API key never passes through here;
  it belongs to the external assistant client.

SEE ALSO:
  - dto.go:    Response shapes
  - server.go: Router setup and middleware
*/
package api

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"

	"github.com/warp/recon-engine/ingest"
	"github.com/warp/recon-engine/money"
	"github.com/warp/recon-engine/recon"
)

// Uploads beyond this size are rejected before parsing.
const maxUploadBytes = 32 << 20

// =============================================================================
// HANDLER CONTEXT
// =============================================================================

// Handler holds all dependencies for HTTP handlers.
type Handler struct {
	Runs recon.RunStore

	// now is swappable in tests for stable run timestamps.
	now func() time.Time
}

// NewHandler creates a new handler backed by the given run store.
func NewHandler(runs recon.RunStore) *Handler {
	return &Handler{Runs: runs, now: time.Now}
}

// =============================================================================
// RECONCILE
// =============================================================================

// Reconcile ingests both uploads, aggregates, and persists the run.
// POST /api/reconcile
func (h *Handler) Reconcile(w http.ResponseWriter, r *http.Request) {
	ctx := r.Context()

	if err := r.ParseMultipartForm(maxUploadBytes); err != nil {
		writeError(w, http.StatusBadRequest, "Invalid multipart form", err)
		return
	}

	policy, err := money.ParsePolicy(r.FormValue("amount_policy"))
	if err != nil {
		writeError(w, http.StatusBadRequest, "Invalid amount policy", err)
		return
	}

	lendingData, lendingName, err := formFile(r, "lendings")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing or unreadable lendings file", err)
		return
	}
	settlementData, settlementName, err := formFile(r, "settlements")
	if err != nil {
		writeError(w, http.StatusBadRequest, "Missing or unreadable settlements file", err)
		return
	}

	// One policy for both files; strict-for-one, lenient-for-the-other is
	// not representable from here.
	lendings, err := ingest.IngestLendings(lendingData, lendingName, policy)
	if err != nil {
		writeIngestError(w, "lendings", err)
		return
	}
	settlements, err := ingest.IngestSettlements(settlementData, settlementName, policy)
	if err != nil {
		writeIngestError(w, "settlements", err)
		return
	}

	results := recon.Reconcile(lendings, settlements)

	now := h.now()
	run := recon.Run{
		ID:             fmt.Sprintf("run-%d", now.UnixNano()),
		CreatedAt:      now,
		LendingFile:    lendingName,
		SettlementFile: settlementName,
		LendingRows:    len(lendings),
		SettlementRows: len(settlements),
		AmountPolicy:   string(policy),
		Summary:        recon.Summarize(results),
		Results:        results,
	}

	if err := h.Runs.Save(ctx, run); err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to persist run", err)
		return
	}

	writeJSON(w, http.StatusCreated, toRunDTO(run, true))
}

// formFile reads one named multipart file fully into memory.
func formFile(r *http.Request, field string) ([]byte, string, error) {
	file, header, err := r.FormFile(field)
	if err != nil {
		return nil, "", err
	}
	defer func(f multipart.File) { _ = f.Close() }(file)

	data, err := io.ReadAll(file)
	if err != nil {
		return nil, "", err
	}
	return data, header.Filename, nil
}

// =============================================================================
// RUN HISTORY
// =============================================================================

// ListRuns returns all runs newest-first, without result sets.
// GET /api/runs
func (h *Handler) ListRuns(w http.ResponseWriter, r *http.Request) {
	runs, err := h.Runs.List(r.Context())
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to list runs", err)
		return
	}

	dtos := make([]RunDTO, len(runs))
	for i, run := range runs {
		dtos[i] = toRunDTO(run, false)
	}
	writeJSON(w, http.StatusOK, dtos)
}

// GetRun returns one run with its full result set.
// GET /api/runs/{id}
func (h *Handler) GetRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}

	// Optional re-ordering for presentation.
	if r.URL.Query().Get("sort") == "net_balance" {
		run.Results = recon.SortByNetBalance(run.Results)
	}

	writeJSON(w, http.StatusOK, toRunDTO(run, true))
}

// GetRunSummary returns only the rollup, including the preformatted text
// line the assistant collaborator embeds in its prompt context.
// GET /api/runs/{id}/summary
func (h *Handler) GetRunSummary(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}
	writeJSON(w, http.StatusOK, toSummaryDTO(run.Summary))
}

// ExportRun streams a run's result set as comma-delimited text.
// GET /api/runs/{id}/export
func (h *Handler) ExportRun(w http.ResponseWriter, r *http.Request) {
	run, ok := h.loadRun(w, r)
	if !ok {
		return
	}

	w.Header().Set("Content-Type", "text/csv")
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", run.ID+".csv"))
	// Status and headers are committed once the first row is written, so a
	// mid-stream failure can't be turned into an error response.
	_ = recon.ExportCSV(w, run.Results)
}

// loadRun fetches the {id} run, writing the error response itself on
// failure.
func (h *Handler) loadRun(w http.ResponseWriter, r *http.Request) (recon.Run, bool) {
	id := chi.URLParam(r, "id")
	run, err := h.Runs.Get(r.Context(), id)
	if errors.Is(err, recon.ErrRunNotFound) {
		writeError(w, http.StatusNotFound, "Run not found", err)
		return recon.Run{}, false
	}
	if err != nil {
		writeError(w, http.StatusInternalServerError, "Failed to load run", err)
		return recon.Run{}, false
	}
	return run, true
}

// =============================================================================
// RESPONSE HELPERS
// =============================================================================

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	json.NewEncoder(w).Encode(data)
}

func writeError(w http.ResponseWriter, status int, message string, err error) {
	resp := ErrorResponse{Error: message}
	if err != nil {
		resp.Details = err.Error()
	}
	writeJSON(w, status, resp)
}

// writeIngestError maps the ingestion taxonomy onto HTTP statuses. The
// error text (with row/column detail) is passed through verbatim for the
// UI to surface.
func writeIngestError(w http.ResponseWriter, dataset string, err error) {
	status := http.StatusInternalServerError
	switch {
	case errors.Is(err, ingest.ErrUnsupportedFormat):
		status = http.StatusUnsupportedMediaType
	case ingest.IsClientError(err):
		status = http.StatusBadRequest
	}
	writeError(w, status, fmt.Sprintf("Failed to ingest %s file", dataset), err)
}
