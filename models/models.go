package models

// All lists every table migrated at startup.
func All() []any {
	return []any{
		&Campaign{},
		&WeeklyFragmentClaim{},
		&Visit{},
		&DailySwap{},
		&Reward{},
		&RewardClaim{},
	}
}
