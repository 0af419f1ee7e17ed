package server

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/mockpay/paygen/internal/domain"
	"github.com/mockpay/paygen/internal/generator"
	"github.com/mockpay/paygen/internal/repository"
	"github.com/mockpay/paygen/internal/service"
)

type apiStubRepo struct {
	inserted []domain.Transaction
	listOpts repository.ListOptions
	listOut  []domain.Transaction
	findOpts repository.FindOptions
	findOut  []domain.Transaction
	total    int64
	recent   int64
	byType   map[string]domain.TypeStat
	byStatus map[string]int64
	deleted  int64
}

func (a *apiStubRepo) Insert(_ context.Context, tx domain.Transaction) error {
	a.inserted = append(a.inserted, tx)
	return nil
}

func (a *apiStubRepo) List(_ context.Context, opts repository.ListOptions) ([]domain.Transaction, error) {
	a.listOpts = opts
	return a.listOut, nil
}

func (a *apiStubRepo) Count(context.Context) (int64, error)                 { return a.total, nil }
func (a *apiStubRepo) CountSince(context.Context, time.Time) (int64, error) { return a.recent, nil }
func (a *apiStubRepo) StatsByType(context.Context) (map[string]domain.TypeStat, error) {
	return a.byType, nil
}
func (a *apiStubRepo) StatsByStatus(context.Context) (map[string]int64, error) {
	return a.byStatus, nil
}

func (a *apiStubRepo) Find(_ context.Context, opts repository.FindOptions) ([]domain.Transaction, error) {
	a.findOpts = opts
	return a.findOut, nil
}

func (a *apiStubRepo) DeleteAll(context.Context) (int64, error) { return a.deleted, nil }

func newTestHandlers(repo *apiStubRepo) *APIHandlers {
	svc := service.NewTransactionService(repo, generator.New(generator.Config{Seed: 42}))
	return NewAPIHandlers(slog.New(slog.NewTextHandler(io.Discard, nil)), svc)
}

func sampleStoredTransaction() domain.Transaction {
	ts := time.Date(2026, 8, 20, 9, 0, 0, 0, time.UTC)
	return domain.Transaction{
		ID:             "id-1",
		TransactionID:  "TXN123456789",
		Type:           domain.TypePayment,
		Status:         domain.StatusCompleted,
		Amount:         75.50,
		Currency:       "USD",
		Fee:            2.49,
		NetAmount:      73.01,
		PayerEmail:     "john.smith@email.com",
		PayerName:      "John Smith",
		RecipientEmail: "sarah.j@gmail.com",
		RecipientName:  "Sarah Johnson",
		MerchantID:     "MERCHANT123456",
		Description:    "Consulting Services",
		Timestamp:      ts,
		CreatedAt:      ts,
	}
}

func TestHandleGenerate(t *testing.T) {
	repo := &apiStubRepo{}
	handlers := newTestHandlers(repo)

	body := `{"count": 5, "transaction_type": "payment", "status": "completed", "min_amount": 10, "max_amount": 20, "days_back": 7}`
	req := httptest.NewRequest(http.MethodPost, "/api/transactions/generate", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handlers.handleGenerate(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}

	var payload []transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload) != 5 {
		t.Fatalf("expected 5 transactions, got %d", len(payload))
	}
	for _, tx := range payload {
		if tx.Status != domain.StatusCompleted {
			t.Fatalf("expected status completed, got %q", tx.Status)
		}
		if tx.Amount < 10 || tx.Amount > 20 {
			t.Fatalf("amount %v outside requested bounds", tx.Amount)
		}
	}
	if len(repo.inserted) != 5 {
		t.Fatalf("expected 5 records persisted, got %d", len(repo.inserted))
	}
}

func TestHandleGenerateRejectsBadCount(t *testing.T) {
	handlers := newTestHandlers(&apiStubRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/generate", strings.NewReader(`{"count": 2000}`))
	rec := httptest.NewRecorder()

	handlers.handleGenerate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
	if !strings.Contains(rec.Body.String(), "count") {
		t.Fatalf("expected field-level message, got %s", rec.Body.String())
	}
}

func TestHandleGenerateRejectsMalformedBody(t *testing.T) {
	handlers := newTestHandlers(&apiStubRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/generate", strings.NewReader(`{`))
	rec := httptest.NewRecorder()

	handlers.handleGenerate(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestListTransactions(t *testing.T) {
	repo := &apiStubRepo{listOut: []domain.Transaction{sampleStoredTransaction()}}
	handlers := newTestHandlers(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions?limit=10&skip=5&status=completed", nil)
	rec := httptest.NewRecorder()

	handlers.handleTransactions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var payload []transactionResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload) != 1 {
		t.Fatalf("expected 1 transaction, got %d", len(payload))
	}
	if payload[0].TransactionID != "TXN123456789" {
		t.Fatalf("unexpected reference code %s", payload[0].TransactionID)
	}
	if payload[0].InvoiceID != nil {
		t.Fatalf("expected null invoice reference, got %v", *payload[0].InvoiceID)
	}
	if repo.listOpts.Limit != 10 || repo.listOpts.Skip != 5 || repo.listOpts.Status != "completed" {
		t.Fatalf("query params not plumbed: %+v", repo.listOpts)
	}
}

func TestListTransactionsDefaults(t *testing.T) {
	repo := &apiStubRepo{}
	handlers := newTestHandlers(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions", nil)
	rec := httptest.NewRecorder()

	handlers.handleTransactions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if repo.listOpts.Limit != defaultListLimit || repo.listOpts.Skip != 0 {
		t.Fatalf("expected default pagination, got %+v", repo.listOpts)
	}
	// An empty store must serialize as an empty array, not null.
	if body := strings.TrimSpace(rec.Body.String()); body != "[]" {
		t.Fatalf("expected empty array body, got %q", body)
	}
}

func TestHandleStats(t *testing.T) {
	repo := &apiStubRepo{
		total:  20,
		recent: 6,
		byType: map[string]domain.TypeStat{
			"payment": {Count: 15, TotalAmount: 950.25},
		},
		byStatus: map[string]int64{"completed": 18, "failed": 2},
	}
	handlers := newTestHandlers(repo)

	req := httptest.NewRequest(http.MethodGet, "/api/transactions/stats", nil)
	rec := httptest.NewRecorder()

	handlers.handleStats(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var payload statsResponse
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload.TotalTransactions != 20 || payload.RecentTransactions != 6 {
		t.Fatalf("unexpected counts: %+v", payload)
	}
	if payload.ByType["payment"].Count != 15 || payload.ByType["payment"].TotalAmount != 950.25 {
		t.Fatalf("unexpected type bucket: %+v", payload.ByType)
	}
	if payload.ByStatus["failed"] != 2 {
		t.Fatalf("unexpected status bucket: %+v", payload.ByStatus)
	}
}

func TestHandleExportCSV(t *testing.T) {
	repo := &apiStubRepo{findOut: []domain.Transaction{sampleStoredTransaction()}}
	handlers := newTestHandlers(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/export", strings.NewReader(`{"format": "csv"}`))
	rec := httptest.NewRecorder()

	handlers.handleExport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if ct := rec.Header().Get("Content-Type"); ct != "text/csv" {
		t.Fatalf("expected text/csv content type, got %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != "attachment; filename=transactions.csv" {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	rows, err := csv.NewReader(bytes.NewReader(rec.Body.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}
	if len(rows) != 2 {
		t.Fatalf("expected header + 1 row, got %d", len(rows))
	}
}

func TestHandleExportEmptyCSV(t *testing.T) {
	handlers := newTestHandlers(&apiStubRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/export", strings.NewReader(`{"format": "csv"}`))
	rec := httptest.NewRecorder()

	handlers.handleExport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200 on empty set, got %d", rec.Code)
	}

	rows, err := csv.NewReader(bytes.NewReader(rec.Body.Bytes())).ReadAll()
	if err != nil {
		t.Fatalf("failed to parse csv: %v", err)
	}
	if len(rows) != 1 {
		t.Fatalf("expected header-only body, got %d rows", len(rows))
	}
}

func TestHandleExportDefaultsToJSON(t *testing.T) {
	repo := &apiStubRepo{findOut: []domain.Transaction{sampleStoredTransaction()}}
	handlers := newTestHandlers(repo)

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/export", strings.NewReader(`{}`))
	rec := httptest.NewRecorder()

	handlers.handleExport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}
	if ct := rec.Header().Get("Content-Type"); ct != "application/json" {
		t.Fatalf("expected application/json content type, got %s", ct)
	}
	if cd := rec.Header().Get("Content-Disposition"); cd != "attachment; filename=transactions.json" {
		t.Fatalf("unexpected content disposition %q", cd)
	}

	var payload []map[string]any
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode export json: %v", err)
	}
	if len(payload) != 1 {
		t.Fatalf("expected 1 object, got %d", len(payload))
	}
}

func TestHandleExportFiltersPlumbed(t *testing.T) {
	repo := &apiStubRepo{}
	handlers := newTestHandlers(repo)

	body := `{"format": "json", "start_date": "2026-01-01T00:00:00Z", "end_date": "2026-01-31T00:00:00Z", "transaction_type": "payment"}`
	req := httptest.NewRequest(http.MethodPost, "/api/transactions/export", strings.NewReader(body))
	rec := httptest.NewRecorder()

	handlers.handleExport(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d: %s", rec.Code, rec.Body.String())
	}
	if repo.findOpts.Start == nil || repo.findOpts.End == nil {
		t.Fatalf("date bounds not plumbed: %+v", repo.findOpts)
	}
	if repo.findOpts.Type != domain.TypePayment {
		t.Fatalf("type filter not plumbed: %+v", repo.findOpts)
	}
}

func TestHandleExportRejectsBadDate(t *testing.T) {
	handlers := newTestHandlers(&apiStubRepo{})

	req := httptest.NewRequest(http.MethodPost, "/api/transactions/export", strings.NewReader(`{"start_date": "yesterday"}`))
	rec := httptest.NewRecorder()

	handlers.handleExport(rec, req)

	if rec.Code != http.StatusBadRequest {
		t.Fatalf("expected status 400, got %d", rec.Code)
	}
}

func TestClearTransactions(t *testing.T) {
	repo := &apiStubRepo{deleted: 3}
	handlers := newTestHandlers(repo)

	req := httptest.NewRequest(http.MethodDelete, "/api/transactions", nil)
	rec := httptest.NewRecorder()

	handlers.handleTransactions(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var payload map[string]string
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if payload["message"] != "Cleared 3 transactions" {
		t.Fatalf("unexpected message %q", payload["message"])
	}
}

func TestTransactionsMethodNotAllowed(t *testing.T) {
	handlers := newTestHandlers(&apiStubRepo{})

	req := httptest.NewRequest(http.MethodPut, "/api/transactions", nil)
	rec := httptest.NewRecorder()

	handlers.handleTransactions(rec, req)

	if rec.Code != http.StatusMethodNotAllowed {
		t.Fatalf("expected status 405, got %d", rec.Code)
	}
	if allow := rec.Header().Get("Allow"); !strings.Contains(allow, http.MethodGet) {
		t.Fatalf("expected Allow header, got %q", allow)
	}
}

func TestHandleRootDescriptor(t *testing.T) {
	handlers := newTestHandlers(&apiStubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/", nil)
	rec := httptest.NewRecorder()

	handlers.handleRoot(rec, req)

	if rec.Code != http.StatusOK {
		t.Fatalf("expected status 200, got %d", rec.Code)
	}

	var payload serviceDescriptor
	if err := json.Unmarshal(rec.Body.Bytes(), &payload); err != nil {
		t.Fatalf("failed to decode response: %v", err)
	}
	if len(payload.Endpoints) != 4 {
		t.Fatalf("expected 4 endpoints, got %d", len(payload.Endpoints))
	}
}

func TestHandleRootUnknownPath(t *testing.T) {
	handlers := newTestHandlers(&apiStubRepo{})

	req := httptest.NewRequest(http.MethodGet, "/api/unknown", nil)
	rec := httptest.NewRecorder()

	handlers.handleRoot(rec, req)

	if rec.Code != http.StatusNotFound {
		t.Fatalf("expected status 404, got %d", rec.Code)
	}
}
