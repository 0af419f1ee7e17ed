package server

import (
	"encoding/json"
	"errors"
	"fmt"
	"log/slog"
	"net/http"
	"strconv"
	"strings"
	"time"

	"github.com/mockpay/paygen/internal/domain"
	"github.com/mockpay/paygen/internal/export"
	"github.com/mockpay/paygen/internal/service"
)

const (
	apiVersion       = "1.0.0"
	defaultListLimit = 50
)

// APIHandlers exposes HTTP handlers for the REST API.
type APIHandlers struct {
	logger  *slog.Logger
	service *service.TransactionService
}

// NewAPIHandlers constructs an APIHandlers instance.
func NewAPIHandlers(logger *slog.Logger, svc *service.TransactionService) *APIHandlers {
	return &APIHandlers{
		logger:  logger,
		service: svc,
	}
}

func (h *APIHandlers) handleRoot(w http.ResponseWriter, r *http.Request) {
	if r.URL.Path != "/api/" && r.URL.Path != "/api" {
		writeError(w, http.StatusNotFound, "not found")
		return
	}
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	respondJSON(w, http.StatusOK, serviceDescriptor{
		Message: "Mock Payment Transaction Generator API",
		Version: apiVersion,
		Endpoints: []string{
			"/api/transactions/generate",
			"/api/transactions",
			"/api/transactions/export",
			"/api/transactions/stats",
		},
	})
}

func (h *APIHandlers) handleTransactions(w http.ResponseWriter, r *http.Request) {
	switch r.Method {
	case http.MethodGet:
		h.listTransactions(w, r)
	case http.MethodDelete:
		h.clearTransactions(w, r)
	default:
		methodNotAllowed(w, http.MethodGet, http.MethodDelete)
	}
}

func (h *APIHandlers) handleGenerate(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload generateRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	created, err := h.service.Generate(r.Context(), payload.toServiceParams())
	if err != nil {
		h.respondServiceError(w, err, "failed to generate transactions")
		return
	}

	respondJSON(w, http.StatusOK, toTransactionResponses(created))
}

func (h *APIHandlers) listTransactions(w http.ResponseWriter, r *http.Request) {
	query := r.URL.Query()

	transactions, err := h.service.List(r.Context(), service.ListParams{
		Limit:  parseInt(query.Get("limit"), defaultListLimit),
		Skip:   parseInt(query.Get("skip"), 0),
		Type:   query.Get("transaction_type"),
		Status: query.Get("status"),
	})
	if err != nil {
		h.respondServiceError(w, err, "failed to list transactions")
		return
	}

	respondJSON(w, http.StatusOK, toTransactionResponses(transactions))
}

func (h *APIHandlers) handleStats(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodGet {
		methodNotAllowed(w, http.MethodGet)
		return
	}

	stats, err := h.service.Stats(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "failed to compute transaction stats")
		return
	}

	resp := statsResponse{
		TotalTransactions:  stats.TotalTransactions,
		RecentTransactions: stats.RecentTransactions,
		ByType:             make(map[string]typeStatResponse, len(stats.ByType)),
		ByStatus:           stats.ByStatus,
	}
	if resp.ByStatus == nil {
		resp.ByStatus = map[string]int64{}
	}
	for key, stat := range stats.ByType {
		resp.ByType[key] = typeStatResponse{
			Count:       stat.Count,
			TotalAmount: stat.TotalAmount,
		}
	}

	respondJSON(w, http.StatusOK, resp)
}

func (h *APIHandlers) handleExport(w http.ResponseWriter, r *http.Request) {
	if r.Method != http.MethodPost {
		methodNotAllowed(w, http.MethodPost)
		return
	}

	var payload exportRequest
	if err := decodeJSON(r, &payload); err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	params, err := payload.toServiceParams()
	if err != nil {
		writeError(w, http.StatusBadRequest, err.Error())
		return
	}

	transactions, err := h.service.Export(r.Context(), params)
	if err != nil {
		h.respondServiceError(w, err, "failed to export transactions")
		return
	}

	var body []byte
	var contentType, filename string
	switch params.Format {
	case service.FormatCSV:
		body, err = export.CSV(transactions)
		contentType = "text/csv"
		filename = "transactions.csv"
	default:
		body, err = export.JSON(transactions)
		contentType = "application/json"
		filename = "transactions.json"
	}
	if err != nil {
		h.respondServiceError(w, err, "failed to serialize export")
		return
	}

	w.Header().Set("Content-Type", contentType)
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%s", filename))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(body)
}

func (h *APIHandlers) clearTransactions(w http.ResponseWriter, r *http.Request) {
	deleted, err := h.service.ClearAll(r.Context())
	if err != nil {
		h.respondServiceError(w, err, "failed to clear transactions")
		return
	}

	respondJSON(w, http.StatusOK, map[string]string{
		"message": fmt.Sprintf("Cleared %d transactions", deleted),
	})
}

func (h *APIHandlers) respondServiceError(w http.ResponseWriter, err error, msg string) {
	var verr *service.ValidationError
	if errors.As(err, &verr) {
		writeError(w, http.StatusBadRequest, verr.Error())
		return
	}
	h.logger.Error(msg, "error", err)
	writeError(w, http.StatusInternalServerError, msg)
}

// --- Request & Response DTOs ---

type serviceDescriptor struct {
	Message   string   `json:"message"`
	Version   string   `json:"version"`
	Endpoints []string `json:"endpoints"`
}

type generateRequest struct {
	Count           int     `json:"count"`
	TransactionType string  `json:"transaction_type"`
	Status          string  `json:"status"`
	MinAmount       float64 `json:"min_amount"`
	MaxAmount       float64 `json:"max_amount"`
	Currency        string  `json:"currency"`
	DaysBack        int     `json:"days_back"`
}

func (req generateRequest) toServiceParams() service.GenerateParams {
	params := service.GenerateParams{
		Count:     req.Count,
		Type:      req.TransactionType,
		Status:    req.Status,
		MinAmount: req.MinAmount,
		MaxAmount: req.MaxAmount,
		Currency:  req.Currency,
		DaysBack:  req.DaysBack,
	}
	if params.Count == 0 {
		params.Count = 10
	}
	if params.MinAmount == 0 {
		params.MinAmount = 1.0
	}
	if params.MaxAmount == 0 {
		params.MaxAmount = 1000.0
	}
	if params.Currency == "" {
		params.Currency = "USD"
	}
	if params.DaysBack == 0 {
		params.DaysBack = 30
	}
	return params
}

type exportRequest struct {
	Format          string `json:"format"`
	StartDate       string `json:"start_date"`
	EndDate         string `json:"end_date"`
	TransactionType string `json:"transaction_type"`
	Status          string `json:"status"`
}

func (req exportRequest) toServiceParams() (service.ExportParams, error) {
	params := service.ExportParams{
		Format: req.Format,
		Type:   req.TransactionType,
		Status: req.Status,
	}
	if params.Format == "" {
		params.Format = service.FormatJSON
	}

	if req.StartDate != "" {
		ts, err := time.Parse(time.RFC3339, req.StartDate)
		if err != nil {
			return service.ExportParams{}, errors.New("invalid start_date")
		}
		params.Start = &ts
	}
	if req.EndDate != "" {
		ts, err := time.Parse(time.RFC3339, req.EndDate)
		if err != nil {
			return service.ExportParams{}, errors.New("invalid end_date")
		}
		params.End = &ts
	}

	return params, nil
}

type transactionResponse struct {
	ID             string  `json:"id"`
	TransactionID  string  `json:"transaction_id"`
	Type           string  `json:"transaction_type"`
	Status         string  `json:"status"`
	Amount         float64 `json:"amount"`
	Currency       string  `json:"currency"`
	Fee            float64 `json:"fee"`
	NetAmount      float64 `json:"net_amount"`
	PayerEmail     string  `json:"payer_email"`
	PayerName      string  `json:"payer_name"`
	RecipientEmail string  `json:"recipient_email"`
	RecipientName  string  `json:"recipient_name"`
	MerchantID     string  `json:"merchant_id"`
	Description    string  `json:"description"`
	InvoiceID      *string `json:"invoice_id"`
	Timestamp      string  `json:"timestamp"`
	CreatedAt      string  `json:"created_at"`
}

type typeStatResponse struct {
	Count       int64   `json:"count"`
	TotalAmount float64 `json:"total_amount"`
}

type statsResponse struct {
	TotalTransactions  int64                       `json:"total_transactions"`
	RecentTransactions int64                       `json:"recent_transactions"`
	ByType             map[string]typeStatResponse `json:"by_type"`
	ByStatus           map[string]int64            `json:"by_status"`
}

func toTransactionResponses(transactions []domain.Transaction) []transactionResponse {
	responses := make([]transactionResponse, 0, len(transactions))
	for _, tx := range transactions {
		responses = append(responses, toTransactionResponse(tx))
	}
	return responses
}

func toTransactionResponse(tx domain.Transaction) transactionResponse {
	var invoice *string
	if tx.InvoiceID != "" {
		invoiceID := tx.InvoiceID
		invoice = &invoiceID
	}
	return transactionResponse{
		ID:             tx.ID,
		TransactionID:  tx.TransactionID,
		Type:           tx.Type,
		Status:         tx.Status,
		Amount:         tx.Amount,
		Currency:       tx.Currency,
		Fee:            tx.Fee,
		NetAmount:      tx.NetAmount,
		PayerEmail:     tx.PayerEmail,
		PayerName:      tx.PayerName,
		RecipientEmail: tx.RecipientEmail,
		RecipientName:  tx.RecipientName,
		MerchantID:     tx.MerchantID,
		Description:    tx.Description,
		InvoiceID:      invoice,
		Timestamp:      formatTime(tx.Timestamp),
		CreatedAt:      formatTime(tx.CreatedAt),
	}
}

// --- Helpers ---

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return errors.New("request body is required")
	}
	defer r.Body.Close()

	decoder := json.NewDecoder(r.Body)
	decoder.DisallowUnknownFields()
	if err := decoder.Decode(dst); err != nil {
		return err
	}
	return nil
}

func parseInt(value string, fallback int) int {
	if value == "" {
		return fallback
	}
	if v, err := strconv.Atoi(value); err == nil {
		return v
	}
	return fallback
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}

func writeError(w http.ResponseWriter, status int, msg string) {
	respondJSON(w, status, map[string]string{
		"error": msg,
	})
}

func methodNotAllowed(w http.ResponseWriter, allowed ...string) {
	w.Header().Set("Allow", strings.Join(allowed, ", "))
	writeError(w, http.StatusMethodNotAllowed, "method not allowed")
}
