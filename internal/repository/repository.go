package repository

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/mockpay/paygen/internal/domain"
	"github.com/mockpay/paygen/internal/store"
)

const (
	defaultListLimit = 50
	maxListLimit     = 1000
	maxExportRecords = 10000
)

// ListOptions defines filters and pagination for transaction listing.
type ListOptions struct {
	Limit  int
	Skip   int
	Type   string
	Status string
}

// FindOptions defines filters for the export query. Date bounds are inclusive.
type FindOptions struct {
	Start  *time.Time
	End    *time.Time
	Type   string
	Status string
	Limit  int
}

// Repository encapsulates transaction persistence against the store.
type Repository struct {
	client store.Client
}

// New instantiates a Repository backed by the supplied store client.
func New(client store.Client) *Repository {
	return &Repository{client: client}
}

// Insert persists one transaction. Records are write-once, so this is a plain
// create rather than a merge.
func (r *Repository) Insert(ctx context.Context, tx domain.Transaction) error {
	if tx.ID == "" {
		return errors.New("transaction id is required")
	}

	params := map[string]any{
		"props": transactionProperties(tx),
	}

	if _, err := r.client.ExecuteWrite(ctx, createTransactionCypher, params); err != nil {
		return fmt.Errorf("insert transaction %s: %w", tx.ID, err)
	}
	return nil
}

// List returns transactions matching the provided filters, newest first.
func (r *Repository) List(ctx context.Context, opts ListOptions) ([]domain.Transaction, error) {
	limit := opts.Limit
	if limit <= 0 {
		limit = defaultListLimit
	}
	if limit > maxListLimit {
		limit = maxListLimit
	}
	skip := opts.Skip
	if skip < 0 {
		skip = 0
	}

	params := map[string]any{
		"type":   opts.Type,
		"status": opts.Status,
		"skip":   skip,
		"limit":  limit,
	}

	res, err := r.client.ExecuteRead(ctx, listTransactionsCypher, params)
	if err != nil {
		return nil, fmt.Errorf("list transactions query: %w", err)
	}

	return decodeTransactions(res), nil
}

// Count returns the total number of stored transactions.
func (r *Repository) Count(ctx context.Context) (int64, error) {
	res, err := r.client.ExecuteRead(ctx, countTransactionsCypher, nil)
	if err != nil {
		return 0, fmt.Errorf("count transactions query: %w", err)
	}
	return singleCount(res, "total"), nil
}

// CountSince returns the number of transactions with a timestamp at or after since.
func (r *Repository) CountSince(ctx context.Context, since time.Time) (int64, error) {
	res, err := r.client.ExecuteRead(ctx, countSinceCypher, map[string]any{
		"since": formatTime(since),
	})
	if err != nil {
		return 0, fmt.Errorf("count recent transactions query: %w", err)
	}
	return singleCount(res, "total"), nil
}

// StatsByType groups stored transactions by type with count and amount sum.
// Types never observed are absent from the result.
func (r *Repository) StatsByType(ctx context.Context) (map[string]domain.TypeStat, error) {
	res, err := r.client.ExecuteRead(ctx, statsByTypeCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("stats by type query: %w", err)
	}

	stats := make(map[string]domain.TypeStat, len(res.Records))
	for _, record := range res.Records {
		key := toString(record["type"])
		if key == "" {
			continue
		}
		stats[key] = domain.TypeStat{
			Count:       toInt64(record["count"]),
			TotalAmount: toFloat64(record["totalAmount"]),
		}
	}
	return stats, nil
}

// StatsByStatus groups stored transactions by status with a count per status.
func (r *Repository) StatsByStatus(ctx context.Context) (map[string]int64, error) {
	res, err := r.client.ExecuteRead(ctx, statsByStatusCypher, nil)
	if err != nil {
		return nil, fmt.Errorf("stats by status query: %w", err)
	}

	stats := make(map[string]int64, len(res.Records))
	for _, record := range res.Records {
		key := toString(record["status"])
		if key == "" {
			continue
		}
		stats[key] = toInt64(record["count"])
	}
	return stats, nil
}

// Find returns the filtered result set used for exports, newest first,
// capped at the export record limit.
func (r *Repository) Find(ctx context.Context, opts FindOptions) ([]domain.Transaction, error) {
	limit := opts.Limit
	if limit <= 0 || limit > maxExportRecords {
		limit = maxExportRecords
	}

	start := ""
	if opts.Start != nil && !opts.Start.IsZero() {
		start = formatTime(*opts.Start)
	}
	end := ""
	if opts.End != nil && !opts.End.IsZero() {
		end = formatTime(*opts.End)
	}

	params := map[string]any{
		"type":    opts.Type,
		"status":  opts.Status,
		"startTs": start,
		"endTs":   end,
		"limit":   limit,
	}

	res, err := r.client.ExecuteRead(ctx, findTransactionsCypher, params)
	if err != nil {
		return nil, fmt.Errorf("find transactions query: %w", err)
	}

	return decodeTransactions(res), nil
}

// DeleteAll removes every stored transaction and returns the number deleted.
func (r *Repository) DeleteAll(ctx context.Context) (int64, error) {
	res, err := r.client.ExecuteWrite(ctx, deleteAllCypher, nil)
	if err != nil {
		return 0, fmt.Errorf("delete all transactions query: %w", err)
	}
	return singleCount(res, "deleted"), nil
}

func transactionProperties(tx domain.Transaction) map[string]any {
	return map[string]any{
		"id":              tx.ID,
		"transactionId":   tx.TransactionID,
		"transactionType": tx.Type,
		"status":          tx.Status,
		"amount":          tx.Amount,
		"currency":        tx.Currency,
		"fee":             tx.Fee,
		"netAmount":       tx.NetAmount,
		"payerEmail":      tx.PayerEmail,
		"payerName":       tx.PayerName,
		"recipientEmail":  tx.RecipientEmail,
		"recipientName":   tx.RecipientName,
		"merchantId":      tx.MerchantID,
		"description":     tx.Description,
		"invoiceId":       tx.InvoiceID,
		"timestamp":       formatTime(tx.Timestamp),
		"createdAt":       formatTime(tx.CreatedAt),
	}
}

func decodeTransactions(res store.Result) []domain.Transaction {
	transactions := make([]domain.Transaction, 0, len(res.Records))
	for _, record := range res.Records {
		transactions = append(transactions, decodeTransaction(record))
	}
	return transactions
}

func decodeTransaction(record store.Record) domain.Transaction {
	tx := domain.Transaction{
		ID:             toString(record["id"]),
		TransactionID:  toString(record["transactionId"]),
		Type:           toString(record["transactionType"]),
		Status:         toString(record["status"]),
		Amount:         toFloat64(record["amount"]),
		Currency:       toString(record["currency"]),
		Fee:            toFloat64(record["fee"]),
		NetAmount:      toFloat64(record["netAmount"]),
		PayerEmail:     toString(record["payerEmail"]),
		PayerName:      toString(record["payerName"]),
		RecipientEmail: toString(record["recipientEmail"]),
		RecipientName:  toString(record["recipientName"]),
		MerchantID:     toString(record["merchantId"]),
		Description:    toString(record["description"]),
		InvoiceID:      toString(record["invoiceId"]),
	}
	if ts := toTimePtr(record["timestamp"]); ts != nil {
		tx.Timestamp = *ts
	}
	if created := toTimePtr(record["createdAt"]); created != nil {
		tx.CreatedAt = *created
	}
	return tx
}

func singleCount(res store.Result, key string) int64 {
	if len(res.Records) == 0 {
		return 0
	}
	return toInt64(res.Records[0][key])
}

func formatTime(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.UTC().Format(time.RFC3339Nano)
}

func toString(val any) string {
	switch v := val.(type) {
	case string:
		return v
	case fmt.Stringer:
		return v.String()
	case []byte:
		return string(v)
	default:
		return ""
	}
}

func toFloat64(val any) float64 {
	switch v := val.(type) {
	case float64:
		return v
	case float32:
		return float64(v)
	case int64:
		return float64(v)
	case int:
		return float64(v)
	default:
		return 0
	}
}

func toInt64(val any) int64 {
	switch v := val.(type) {
	case int64:
		return v
	case int:
		return int64(v)
	case float64:
		return int64(v)
	default:
		return 0
	}
}

func toTimePtr(val any) *time.Time {
	switch v := val.(type) {
	case time.Time:
		return &v
	case string:
		if v == "" {
			return nil
		}
		if parsed, err := time.Parse(time.RFC3339Nano, v); err == nil {
			return &parsed
		}
		if parsed, err := time.Parse(time.RFC3339, v); err == nil {
			return &parsed
		}
	}
	return nil
}

const createTransactionCypher = `
CREATE (t:Transaction)
SET t = $props
RETURN t.id AS id
`

const transactionReturnClause = `
RETURN t.id AS id,
       t.transactionId AS transactionId,
       t.transactionType AS transactionType,
       t.status AS status,
       t.amount AS amount,
       t.currency AS currency,
       t.fee AS fee,
       t.netAmount AS netAmount,
       t.payerEmail AS payerEmail,
       t.payerName AS payerName,
       t.recipientEmail AS recipientEmail,
       t.recipientName AS recipientName,
       t.merchantId AS merchantId,
       t.description AS description,
       t.invoiceId AS invoiceId,
       t.timestamp AS timestamp,
       t.createdAt AS createdAt`

const listTransactionsCypher = `
MATCH (t:Transaction)
WHERE ($type = "" OR t.transactionType = $type)
  AND ($status = "" OR t.status = $status)` +
	transactionReturnClause + `
ORDER BY datetime(t.timestamp) DESC
SKIP $skip LIMIT $limit
`

const findTransactionsCypher = `
MATCH (t:Transaction)
WHERE ($type = "" OR t.transactionType = $type)
  AND ($status = "" OR t.status = $status)
  AND ($startTs = "" OR datetime(t.timestamp) >= datetime($startTs))
  AND ($endTs = "" OR datetime(t.timestamp) <= datetime($endTs))` +
	transactionReturnClause + `
ORDER BY datetime(t.timestamp) DESC
LIMIT $limit
`

const countTransactionsCypher = `
MATCH (t:Transaction)
RETURN count(t) AS total
`

const countSinceCypher = `
MATCH (t:Transaction)
WHERE datetime(t.timestamp) >= datetime($since)
RETURN count(t) AS total
`

const statsByTypeCypher = `
MATCH (t:Transaction)
RETURN t.transactionType AS type,
       count(t) AS count,
       sum(t.amount) AS totalAmount
`

const statsByStatusCypher = `
MATCH (t:Transaction)
RETURN t.status AS status,
       count(t) AS count
`

const deleteAllCypher = `
MATCH (t:Transaction)
DETACH DELETE t
RETURN count(t) AS deleted
`
