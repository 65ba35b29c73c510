package api_test

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/warp/recon-engine/api"
	"github.com/warp/recon-engine/store"
)

// =============================================================================
// TEST SETUP
// =============================================================================

func newTestRouter() http.Handler {
	return api.NewRouter(api.NewHandler(store.NewMemory()))
}

// multipartUpload builds a POST /api/reconcile body from two in-memory
// files plus optional extra form fields.
func multipartUpload(t *testing.T, lendingName, lendingData, settlementName, settlementData string, fields map[string]string) (*bytes.Buffer, string) {
	t.Helper()
	var body bytes.Buffer
	w := multipart.NewWriter(&body)

	lf, err := w.CreateFormFile("lendings", lendingName)
	require.NoError(t, err)
	_, err = io.WriteString(lf, lendingData)
	require.NoError(t, err)

	sf, err := w.CreateFormFile("settlements", settlementName)
	require.NoError(t, err)
	_, err = io.WriteString(sf, settlementData)
	require.NoError(t, err)

	for k, v := range fields {
		require.NoError(t, w.WriteField(k, v))
	}
	require.NoError(t, w.Close())

	return &body, w.FormDataContentType()
}

func postReconcile(t *testing.T, router http.Handler, lendingCSV, settlementCSV string, fields map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	body, contentType := multipartUpload(t,
		"loans.csv", lendingCSV, "payments.csv", settlementCSV, fields)

	req := httptest.NewRequest(http.MethodPost, "/api/reconcile", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	return rec
}

func decodeRun(t *testing.T, body *bytes.Buffer) api.RunDTO {
	t.Helper()
	var dto api.RunDTO
	require.NoError(t, json.NewDecoder(body).Decode(&dto))
	return dto
}

const (
	goodLendings    = "counterparty_id,loan_amount\nacme,200\n"
	goodSettlements = "counterparty_id,payment_amount\nacme,150\ninitech,30\n"
)

// =============================================================================
// RECONCILE ENDPOINT
// =============================================================================

func TestReconcile_HappyPath(t *testing.T) {
	router := newTestRouter()

	rec := postReconcile(t, router, goodLendings, goodSettlements, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	run := decodeRun(t, rec.Body)
	assert.NotEmpty(t, run.ID)
	assert.Equal(t, "loans.csv", run.LendingFile)
	assert.Equal(t, "payments.csv", run.SettlementFile)
	assert.Equal(t, "strict", run.AmountPolicy, "default policy is strict")

	require.Len(t, run.Results, 2)
	assert.Equal(t, "acme", run.Results[0].CounterpartyID)
	assert.Equal(t, "-50", run.Results[0].NetBalance)
	assert.Equal(t, "underpaid", run.Results[0].Status)
	assert.Equal(t, "initech", run.Results[1].CounterpartyID)
	assert.Equal(t, "30", run.Results[1].NetBalance)
	assert.Equal(t, "overpaid", run.Results[1].Status)

	assert.Equal(t, 2, run.Summary.TotalCounterparties)
	assert.Equal(t, 1, run.Summary.Underpaid)
	assert.Equal(t, 1, run.Summary.Overpaid)
	assert.Contains(t, run.Summary.Text, "2 counterparties")
}

func TestReconcile_SchemaErrorNamesAllColumns(t *testing.T) {
	router := newTestRouter()

	rec := postReconcile(t, router, "firm,amount\nacme,200\n", goodSettlements, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Error, "lendings")
	assert.Contains(t, resp.Details, "counterparty_id")
	assert.Contains(t, resp.Details, "loan_amount")
}

func TestReconcile_UnsupportedExtension(t *testing.T) {
	router := newTestRouter()

	body, contentType := multipartUpload(t,
		"loans.pdf", goodLendings, "payments.csv", goodSettlements, nil)
	req := httptest.NewRequest(http.MethodPost, "/api/reconcile", body)
	req.Header.Set("Content-Type", contentType)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusUnsupportedMediaType, rec.Code)
}

func TestReconcile_StrictPolicyRejectsBadAmount(t *testing.T) {
	router := newTestRouter()

	rec := postReconcile(t, router,
		"counterparty_id,loan_amount\nacme,n/a\n", goodSettlements, nil)
	require.Equal(t, http.StatusBadRequest, rec.Code)

	var resp api.ErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Contains(t, resp.Details, `"n/a"`)
	assert.Contains(t, resp.Details, "row 1")
}

func TestReconcile_LenientPolicyCoercesBadAmount(t *testing.T) {
	router := newTestRouter()

	rec := postReconcile(t, router,
		"counterparty_id,loan_amount\nacme,n/a\n",
		"counterparty_id,payment_amount\nacme,10\n",
		map[string]string{"amount_policy": "lenient"})
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())

	run := decodeRun(t, rec.Body)
	assert.Equal(t, "lenient", run.AmountPolicy)
	require.Len(t, run.Results, 1)
	assert.Equal(t, "0", run.Results[0].TotalLent)
	assert.Equal(t, "overpaid", run.Results[0].Status)
}

func TestReconcile_UnknownPolicyRejected(t *testing.T) {
	router := newTestRouter()

	rec := postReconcile(t, router, goodLendings, goodSettlements,
		map[string]string{"amount_policy": "fuzzy"})
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestReconcile_MissingFilePart(t *testing.T) {
	router := newTestRouter()

	var body bytes.Buffer
	w := multipart.NewWriter(&body)
	lf, err := w.CreateFormFile("lendings", "loans.csv")
	require.NoError(t, err)
	_, err = io.WriteString(lf, goodLendings)
	require.NoError(t, err)
	require.NoError(t, w.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/reconcile", &body)
	req.Header.Set("Content-Type", w.FormDataContentType())
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

// =============================================================================
// RUN HISTORY ENDPOINTS
// =============================================================================

func createRun(t *testing.T, router http.Handler) api.RunDTO {
	t.Helper()
	rec := postReconcile(t, router, goodLendings, goodSettlements, nil)
	require.Equal(t, http.StatusCreated, rec.Code, rec.Body.String())
	return decodeRun(t, rec.Body)
}

func TestListRuns(t *testing.T) {
	router := newTestRouter()
	created := createRun(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/runs", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var runs []api.RunDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&runs))
	require.Len(t, runs, 1)
	assert.Equal(t, created.ID, runs[0].ID)
	assert.Empty(t, runs[0].Results, "listings omit result sets")
	assert.Equal(t, 2, runs[0].Summary.TotalCounterparties)
}

func TestGetRun(t *testing.T) {
	router := newTestRouter()
	created := createRun(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+created.ID, nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	run := decodeRun(t, rec.Body)
	assert.Equal(t, created.ID, run.ID)
	require.Len(t, run.Results, 2)
}

func TestGetRun_SortByNetBalance(t *testing.T) {
	router := newTestRouter()
	created := createRun(t, router)

	req := httptest.NewRequest(http.MethodGet,
		fmt.Sprintf("/api/runs/%s?sort=net_balance", created.ID), nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	run := decodeRun(t, rec.Body)
	require.Len(t, run.Results, 2)
	// acme at -50 sorts before initech at +30.
	assert.Equal(t, "acme", run.Results[0].CounterpartyID)
	assert.Equal(t, "initech", run.Results[1].CounterpartyID)
}

func TestGetRun_NotFound(t *testing.T) {
	router := newTestRouter()

	req := httptest.NewRequest(http.MethodGet, "/api/runs/run-missing", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusNotFound, rec.Code)
}

func TestGetRunSummary(t *testing.T) {
	router := newTestRouter()
	created := createRun(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+created.ID+"/summary", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	var summary api.SummaryDTO
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&summary))
	assert.Equal(t, 2, summary.TotalCounterparties)
	assert.Equal(t, "200", summary.TotalLent)
	assert.Equal(t, "180", summary.TotalPaid)
	assert.Equal(t, "-20", summary.NetBalance)
	assert.Contains(t, summary.Text, "total lent 200")
}

func TestExportRun(t *testing.T) {
	router := newTestRouter()
	created := createRun(t, router)

	req := httptest.NewRequest(http.MethodGet, "/api/runs/"+created.ID+"/export", nil)
	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code)

	assert.Equal(t, "text/csv", rec.Header().Get("Content-Type"))
	assert.Contains(t, rec.Header().Get("Content-Disposition"), created.ID)

	lines := strings.Split(strings.TrimSpace(rec.Body.String()), "\n")
	require.Len(t, lines, 3)
	assert.Equal(t, "counterparty_id,total_lent,total_paid,net_balance,status", lines[0])
	assert.Equal(t, "acme,200,150,-50,underpaid", lines[1])
	assert.Equal(t, "initech,0,30,30,overpaid", lines[2])
}
