package generator

// Config drives the transaction synthesizer.
type Config struct {
	// Seed makes generation deterministic when non-zero.
	Seed int64
}

// Params controls how a single transaction is synthesized.
type Params struct {
	Type      string // empty means draw uniformly from the type set
	Status    string // empty means draw from the weighted status distribution
	MinAmount float64
	MaxAmount float64
	Currency  string
	DaysBack  int
}

// DefaultParams returns baseline generation settings.
func DefaultParams() Params {
	return Params{
		MinAmount: 1.0,
		MaxAmount: 1000.0,
		Currency:  "USD",
		DaysBack:  30,
	}
}
