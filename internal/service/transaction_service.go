package service

import (
	"context"
	"fmt"
	"time"

	"github.com/mockpay/paygen/internal/domain"
	"github.com/mockpay/paygen/internal/generator"
	"github.com/mockpay/paygen/internal/repository"
)

// recentWindow is the lookback used for the recent-activity count in stats.
const recentWindow = 7 * 24 * time.Hour

// Export formats accepted by the bulk export operation.
const (
	FormatJSON = "json"
	FormatCSV  = "csv"
)

// TransactionRepository is the storage contract required by the transaction service.
type TransactionRepository interface {
	Insert(ctx context.Context, tx domain.Transaction) error
	List(ctx context.Context, opts repository.ListOptions) ([]domain.Transaction, error)
	Count(ctx context.Context) (int64, error)
	CountSince(ctx context.Context, since time.Time) (int64, error)
	StatsByType(ctx context.Context) (map[string]domain.TypeStat, error)
	StatsByStatus(ctx context.Context) (map[string]int64, error)
	Find(ctx context.Context, opts repository.FindOptions) ([]domain.Transaction, error)
	DeleteAll(ctx context.Context) (int64, error)
}

// GenerateParams describes one batch-generation request.
type GenerateParams struct {
	Count     int
	Type      string
	Status    string
	MinAmount float64
	MaxAmount float64
	Currency  string
	DaysBack  int
}

// ListParams describes a paginated listing request.
type ListParams struct {
	Limit  int
	Skip   int
	Type   string
	Status string
}

// ExportParams describes a bulk export request. Date bounds are inclusive.
type ExportParams struct {
	Format string
	Start  *time.Time
	End    *time.Time
	Type   string
	Status string
}

// TransactionService validates requests, synthesizes records, and delegates
// persistence to the repository.
type TransactionService struct {
	repo  TransactionRepository
	gen   *generator.Generator
	nowFn func() time.Time
}

// NewTransactionService constructs the service with its collaborators injected.
func NewTransactionService(repo TransactionRepository, gen *generator.Generator) *TransactionService {
	return &TransactionService{
		repo:  repo,
		gen:   gen,
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// Generate synthesizes and persists a batch of transactions. Each record is
// inserted independently; a store failure partway through leaves the earlier
// inserts in place and surfaces the error to the caller.
func (s *TransactionService) Generate(ctx context.Context, params GenerateParams) ([]domain.Transaction, error) {
	if err := ValidateGenerateParams(params); err != nil {
		return nil, err
	}

	genParams := generator.Params{
		Type:      params.Type,
		Status:    params.Status,
		MinAmount: params.MinAmount,
		MaxAmount: params.MaxAmount,
		Currency:  params.Currency,
		DaysBack:  params.DaysBack,
	}

	created := make([]domain.Transaction, 0, params.Count)
	for i := 0; i < params.Count; i++ {
		tx := s.gen.Transaction(genParams)
		if err := s.repo.Insert(ctx, tx); err != nil {
			return nil, fmt.Errorf("persist generated transaction: %w", err)
		}
		created = append(created, tx)
	}

	return created, nil
}

// List returns stored transactions matching the filters, newest first.
func (s *TransactionService) List(ctx context.Context, params ListParams) ([]domain.Transaction, error) {
	if err := ValidateListParams(params); err != nil {
		return nil, err
	}

	return s.repo.List(ctx, repository.ListOptions{
		Limit:  params.Limit,
		Skip:   params.Skip,
		Type:   params.Type,
		Status: params.Status,
	})
}

// Stats aggregates the stored transaction set.
func (s *TransactionService) Stats(ctx context.Context) (domain.Stats, error) {
	total, err := s.repo.Count(ctx)
	if err != nil {
		return domain.Stats{}, err
	}

	recent, err := s.repo.CountSince(ctx, s.nowFn().Add(-recentWindow))
	if err != nil {
		return domain.Stats{}, err
	}

	byType, err := s.repo.StatsByType(ctx)
	if err != nil {
		return domain.Stats{}, err
	}

	byStatus, err := s.repo.StatsByStatus(ctx)
	if err != nil {
		return domain.Stats{}, err
	}

	return domain.Stats{
		TotalTransactions:  total,
		RecentTransactions: recent,
		ByType:             byType,
		ByStatus:           byStatus,
	}, nil
}

// Export returns the full filtered result set for serialization by the caller.
func (s *TransactionService) Export(ctx context.Context, params ExportParams) ([]domain.Transaction, error) {
	if err := ValidateExportParams(params); err != nil {
		return nil, err
	}

	return s.repo.Find(ctx, repository.FindOptions{
		Start:  params.Start,
		End:    params.End,
		Type:   params.Type,
		Status: params.Status,
	})
}

// ClearAll deletes every stored transaction and reports the count removed.
// Calling it on an empty store is safe and reports zero.
func (s *TransactionService) ClearAll(ctx context.Context) (int64, error) {
	return s.repo.DeleteAll(ctx)
}
