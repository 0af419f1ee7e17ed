// Package export serializes transaction result sets into the interchange
// formats offered by the bulk export operation.
package export

import (
	"bytes"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"strconv"
	"time"

	"github.com/mockpay/paygen/internal/domain"
)

// columns is the declared CSV schema. Deriving the header from a fixed column
// table keeps rows aligned even if a record were to carry an empty field.
var columns = []string{
	"id",
	"transaction_id",
	"transaction_type",
	"status",
	"amount",
	"currency",
	"fee",
	"net_amount",
	"payer_email",
	"payer_name",
	"recipient_email",
	"recipient_name",
	"merchant_id",
	"description",
	"invoice_id",
	"timestamp",
	"created_at",
}

type record struct {
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

func toRecord(tx domain.Transaction) record {
	var invoice *string
	if tx.InvoiceID != "" {
		invoice = &tx.InvoiceID
	}
	return record{
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

// JSON renders the result set as a pretty-printed array of full objects.
// An empty set yields an empty array, not null.
func JSON(transactions []domain.Transaction) ([]byte, error) {
	records := make([]record, 0, len(transactions))
	for _, tx := range transactions {
		records = append(records, toRecord(tx))
	}

	data, err := json.MarshalIndent(records, "", "  ")
	if err != nil {
		return nil, fmt.Errorf("encode export json: %w", err)
	}
	return data, nil
}

// CSV renders the result set as a delimited table. The header row is always
// emitted, so an empty set yields a header-only body.
func CSV(transactions []domain.Transaction) ([]byte, error) {
	var buf bytes.Buffer
	writer := csv.NewWriter(&buf)

	if err := writer.Write(columns); err != nil {
		return nil, fmt.Errorf("write csv header: %w", err)
	}

	for _, tx := range transactions {
		rec := toRecord(tx)
		invoice := ""
		if rec.InvoiceID != nil {
			invoice = *rec.InvoiceID
		}
		row := []string{
			rec.ID,
			rec.TransactionID,
			rec.Type,
			rec.Status,
			formatAmount(rec.Amount),
			rec.Currency,
			formatAmount(rec.Fee),
			formatAmount(rec.NetAmount),
			rec.PayerEmail,
			rec.PayerName,
			rec.RecipientEmail,
			rec.RecipientName,
			rec.MerchantID,
			rec.Description,
			invoice,
			rec.Timestamp,
			rec.CreatedAt,
		}
		if err := writer.Write(row); err != nil {
			return nil, fmt.Errorf("write csv row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return nil, fmt.Errorf("flush csv: %w", err)
	}
	return buf.Bytes(), nil
}

func formatAmount(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339)
}
