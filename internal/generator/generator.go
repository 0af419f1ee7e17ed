package generator

import (
	"fmt"
	"math"
	"math/rand"
	"time"

	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/mockpay/paygen/internal/domain"
)

// Fee schedule applied to every non-refund record: 2.9% of the amount plus a
// flat 0.30 in the record's currency.
var (
	feeRate = decimal.NewFromFloat(0.029)
	feeFlat = decimal.NewFromFloat(0.30)
)

// maxDistinctAttempts bounds the redraw loop that keeps payer and recipient
// apart. Once exhausted the next pool element is taken deterministically, so
// generation terminates even when a reference pool shrinks to one entry.
const maxDistinctAttempts = 20

// statusWeights is the categorical distribution used when no status is pinned.
// Sampling walks the cumulative weights against a single uniform draw.
var statusWeights = []struct {
	status string
	weight float64
}{
	{domain.StatusCompleted, 0.70},
	{domain.StatusPending, 0.15},
	{domain.StatusFailed, 0.05},
	{domain.StatusCancelled, 0.03},
	{domain.StatusRefunded, 0.04},
	{domain.StatusDisputed, 0.03},
}

// Generator synthesizes internally-consistent mock payment transactions.
type Generator struct {
	rand  *rand.Rand
	pools referencePools
	nowFn func() time.Time
}

// New returns a configured Generator instance.
func New(cfg Config) *Generator {
	if cfg.Seed == 0 {
		cfg.Seed = time.Now().UnixNano()
	}

	return &Generator{
		rand:  rand.New(rand.NewSource(cfg.Seed)),
		pools: defaultReferencePools(),
		nowFn: func() time.Time { return time.Now().UTC() },
	}
}

// Transaction produces one record. It cannot fail given valid bounds
// (MinAmount <= MaxAmount, both positive); persistence is the caller's concern.
func (g *Generator) Transaction(params Params) domain.Transaction {
	amount := round2(params.MinAmount + g.rand.Float64()*(params.MaxAmount-params.MinAmount))
	fee := g.feeFor(amount)
	netAmount := subRound2(amount, fee)

	timestamp := g.randomTimestamp(params.DaysBack)

	payerName := g.pick(g.pools.names)
	payerEmail := g.pick(g.pools.emails)
	recipientName := g.distinctFrom(g.pools.names, payerName)
	recipientEmail := g.distinctFrom(g.pools.emails, payerEmail)

	txType := params.Type
	if txType == "" {
		txType = g.pick(domain.Types())
	}
	status := params.Status
	if status == "" {
		status = g.weightedStatus()
	}

	if txType == domain.TypeRefund {
		amount = -math.Abs(amount)
		fee = -math.Abs(fee)
		netAmount = subRound2(amount, fee)
	}

	return domain.Transaction{
		ID:             uuid.NewString(),
		TransactionID:  fmt.Sprintf("TXN%09d", g.rand.Intn(900000000)+100000000),
		Type:           txType,
		Status:         status,
		Amount:         amount,
		Currency:       params.Currency,
		Fee:            fee,
		NetAmount:      netAmount,
		PayerEmail:     payerEmail,
		PayerName:      payerName,
		RecipientEmail: recipientEmail,
		RecipientName:  recipientName,
		MerchantID:     fmt.Sprintf("MERCHANT%06d", g.rand.Intn(900000)+100000),
		Description:    g.pick(g.pools.descriptions),
		InvoiceID:      g.maybeInvoiceID(),
		Timestamp:      timestamp,
		CreatedAt:      timestamp,
	}
}

// Batch produces count records sharing the same generation parameters.
func (g *Generator) Batch(count int, params Params) []domain.Transaction {
	transactions := make([]domain.Transaction, count)
	for i := range transactions {
		transactions[i] = g.Transaction(params)
	}
	return transactions
}

func (g *Generator) feeFor(amount float64) float64 {
	fee, _ := decimal.NewFromFloat(amount).Mul(feeRate).Add(feeFlat).Round(2).Float64()
	return fee
}

func (g *Generator) randomTimestamp(daysBack int) time.Time {
	now := g.nowFn()
	if daysBack <= 0 {
		return now
	}
	windowSeconds := int64(daysBack) * 24 * 60 * 60
	offset := g.rand.Int63n(windowSeconds + 1)
	return now.Add(-time.Duration(offset) * time.Second)
}

func (g *Generator) weightedStatus() string {
	draw := g.rand.Float64()
	cumulative := 0.0
	for _, entry := range statusWeights {
		cumulative += entry.weight
		if draw < cumulative {
			return entry.status
		}
	}
	return statusWeights[len(statusWeights)-1].status
}

func (g *Generator) pick(pool []string) string {
	return pool[g.rand.Intn(len(pool))]
}

// distinctFrom redraws until the value differs from taken, capped at
// maxDistinctAttempts. On exhaustion it falls back to the pool element
// following the taken one.
func (g *Generator) distinctFrom(pool []string, taken string) string {
	for i := 0; i < maxDistinctAttempts; i++ {
		if v := g.pick(pool); v != taken {
			return v
		}
	}
	for i, v := range pool {
		if v == taken {
			return pool[(i+1)%len(pool)]
		}
	}
	return pool[0]
}

func (g *Generator) maybeInvoiceID() string {
	if g.rand.Float64() < 0.5 {
		return ""
	}
	return fmt.Sprintf("INV-%04d", g.rand.Intn(9000)+1000)
}

func round2(v float64) float64 {
	rounded, _ := decimal.NewFromFloat(v).Round(2).Float64()
	return rounded
}

func subRound2(a, b float64) float64 {
	diff, _ := decimal.NewFromFloat(a).Sub(decimal.NewFromFloat(b)).Round(2).Float64()
	return diff
}

type referencePools struct {
	names        []string
	emails       []string
	descriptions []string
}

func defaultReferencePools() referencePools {
	return referencePools{
		names: []string{
			"John Smith", "Sarah Johnson", "Michael Brown", "Emily Davis", "David Wilson",
			"Jessica Garcia", "Christopher Martinez", "Ashley Anderson", "Matthew Taylor",
			"Amanda Thomas", "Daniel Jackson", "Jennifer White", "James Harris", "Lisa Martin",
		},
		emails: []string{
			"john.smith@email.com", "sarah.j@gmail.com", "mike.brown@yahoo.com",
			"emily.davis@outlook.com", "david.w@company.com", "jessica.g@business.org",
			"chris.m@startup.io", "ashley.a@freelance.net", "matt.t@agency.com",
			"amanda.th@consultant.biz", "daniel.j@enterprise.com", "jennifer.w@shop.store",
		},
		descriptions: []string{
			"Online Purchase - Electronics", "Digital Service Subscription", "Freelance Web Development",
			"Online Course Payment", "E-commerce Store Purchase", "Consulting Services",
			"Software License Fee", "Marketplace Commission", "Digital Download",
			"Monthly Subscription", "Product Return Refund", "Service Cancellation",
		},
	}
}
