package models

// TaskType tags every fragment-earning activity.
type TaskType string

const (
	TaskDailyVisit         TaskType = "DAILY_VISIT"
	TaskDailySwaps         TaskType = "DAILY_SWAPS"
	TaskLiquidityProvision TaskType = "LIQUIDITY_PROVISION"
	TaskLiquidityStaking   TaskType = "LIQUIDITY_STAKING"
)

// IsWeekly reports whether the task is claimed once per ISO week.
func (t TaskType) IsWeekly() bool {
	return t == TaskLiquidityProvision || t == TaskLiquidityStaking
}

// Valid reports whether t is one of the known task types.
func (t TaskType) Valid() bool {
	switch t {
	case TaskDailyVisit, TaskDailySwaps, TaskLiquidityProvision, TaskLiquidityStaking:
		return true
	}
	return false
}
