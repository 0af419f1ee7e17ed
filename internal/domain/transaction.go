package domain

import "time"

// Transaction models a single mock payment record. Records are write-once:
// they are synthesized, persisted, and never updated afterwards.
type Transaction struct {
	ID             string
	TransactionID  string // human-readable reference code, distinct from ID
	Type           string
	Status         string
	Amount         float64
	Currency       string
	Fee            float64
	NetAmount      float64
	PayerEmail     string
	PayerName      string
	RecipientEmail string
	RecipientName  string
	MerchantID     string
	Description    string
	InvoiceID      string // empty when no invoice reference was attached
	Timestamp      time.Time
	CreatedAt      time.Time
}

// Transaction type values.
const (
	TypePayment      = "payment"
	TypeRefund       = "refund"
	TypeSubscription = "subscription"
	TypeDispute      = "dispute"
	TypeChargeback   = "chargeback"
)

// Transaction status values.
const (
	StatusCompleted = "completed"
	StatusPending   = "pending"
	StatusFailed    = "failed"
	StatusCancelled = "cancelled"
	StatusRefunded  = "refunded"
	StatusDisputed  = "disputed"
)

// Types returns the closed set of transaction types.
func Types() []string {
	return []string{TypePayment, TypeRefund, TypeSubscription, TypeDispute, TypeChargeback}
}

// Statuses returns the closed set of transaction statuses.
func Statuses() []string {
	return []string{StatusCompleted, StatusPending, StatusFailed, StatusCancelled, StatusRefunded, StatusDisputed}
}

// ValidType reports whether value is a member of the transaction type set.
func ValidType(value string) bool {
	return contains(Types(), value)
}

// ValidStatus reports whether value is a member of the transaction status set.
func ValidStatus(value string) bool {
	return contains(Statuses(), value)
}

func contains(set []string, value string) bool {
	for _, v := range set {
		if v == value {
			return true
		}
	}
	return false
}
