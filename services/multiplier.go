package services

// Accrual is the outcome of one multiplier-based task completion.
type Accrual struct {
	Claimed int `json:"claimed"`
	Total   int `json:"total"`
}

// Accrue awards multiplicand*(completions+1) on top of held, so the n-th
// completion is worth n times the multiplicand.
func Accrue(held, completions, multiplicand int) Accrual {
	claimed := multiplicand + multiplicand*completions
	return Accrual{
		Claimed: claimed,
		Total:   held + claimed,
	}
}
