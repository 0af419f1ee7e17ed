package service

import (
	"fmt"

	"github.com/mockpay/paygen/internal/domain"
)

// Generation and query bounds enforced on every inbound request.
const (
	minBatchCount  = 1
	maxBatchCount  = 1000
	minAmountFloor = 0.01
	minDaysBack    = 1
	maxDaysBack    = 365
	minListLimit   = 1
	maxListLimit   = 1000
)

// ValidationError reports a client-input violation. It carries the offending
// field so handlers can surface a field-level message with a 4xx status.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Field + ": " + e.Message
}

func invalid(field, format string, args ...any) *ValidationError {
	return &ValidationError{Field: field, Message: fmt.Sprintf(format, args...)}
}

// ValidateGenerateParams bounds-checks a generation request without mutating state.
func ValidateGenerateParams(p GenerateParams) error {
	if p.Count < minBatchCount || p.Count > maxBatchCount {
		return invalid("count", "must be between %d and %d", minBatchCount, maxBatchCount)
	}
	if p.MinAmount < minAmountFloor {
		return invalid("min_amount", "must be at least %v", minAmountFloor)
	}
	if p.MaxAmount < p.MinAmount {
		return invalid("max_amount", "must be greater than or equal to min_amount")
	}
	if p.DaysBack < minDaysBack || p.DaysBack > maxDaysBack {
		return invalid("days_back", "must be between %d and %d", minDaysBack, maxDaysBack)
	}
	if p.Type != "" && !domain.ValidType(p.Type) {
		return invalid("transaction_type", "unknown value %q", p.Type)
	}
	if p.Status != "" && !domain.ValidStatus(p.Status) {
		return invalid("status", "unknown value %q", p.Status)
	}
	return nil
}

// ValidateListParams bounds-checks a listing request.
func ValidateListParams(p ListParams) error {
	if p.Limit < minListLimit || p.Limit > maxListLimit {
		return invalid("limit", "must be between %d and %d", minListLimit, maxListLimit)
	}
	if p.Skip < 0 {
		return invalid("skip", "must not be negative")
	}
	if p.Type != "" && !domain.ValidType(p.Type) {
		return invalid("transaction_type", "unknown value %q", p.Type)
	}
	if p.Status != "" && !domain.ValidStatus(p.Status) {
		return invalid("status", "unknown value %q", p.Status)
	}
	return nil
}

// ValidateExportParams bounds-checks an export request.
func ValidateExportParams(p ExportParams) error {
	if p.Format != FormatJSON && p.Format != FormatCSV {
		return invalid("format", "must be %q or %q", FormatJSON, FormatCSV)
	}
	if p.Start != nil && p.End != nil && p.Start.After(*p.End) {
		return invalid("start_date", "must not be after end_date")
	}
	if p.Type != "" && !domain.ValidType(p.Type) {
		return invalid("transaction_type", "unknown value %q", p.Type)
	}
	if p.Status != "" && !domain.ValidStatus(p.Status) {
		return invalid("status", "unknown value %q", p.Status)
	}
	return nil
}
