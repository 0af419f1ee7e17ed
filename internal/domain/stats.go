package domain

// TypeStat aggregates transactions sharing one type.
type TypeStat struct {
	Count       int64
	TotalAmount float64
}

// Stats summarizes the stored transaction set. Types and statuses that were
// never observed are absent from the maps rather than zero-filled.
type Stats struct {
	TotalTransactions  int64
	RecentTransactions int64 // records with timestamp within the last 7 days
	ByType             map[string]TypeStat
	ByStatus           map[string]int64
}
