package services

import "sort"

// StreakBonus awards unit for every consecutive week directly preceding current
// in history. The walk stops at the first gap.
func StreakBonus(history []WeekRef, current WeekWindow, unit int) int {
	seen := map[WeekRef]struct{}{current.Ref(): {}}
	weeks := []WeekRef{current.Ref()}
	for _, h := range history {
		if _, ok := seen[h]; ok {
			continue
		}
		seen[h] = struct{}{}
		weeks = append(weeks, h)
	}

	sort.Slice(weeks, func(i, j int) bool {
		if weeks[i].Year != weeks[j].Year {
			return weeks[i].Year > weeks[j].Year
		}
		return weeks[i].Week > weeks[j].Week
	})

	// Only the streak ending at the current week counts.
	start := -1
	for i, w := range weeks {
		if w == current.Ref() {
			start = i
			break
		}
	}

	bonus := 0
	for i := start; i+1 < len(weeks); i++ {
		if !consecutive(weeks[i+1], weeks[i]) {
			break
		}
		bonus += unit
	}
	return bonus
}

// consecutive reports whether next is the ISO week right after prev, including
// the rollover from the last week of a year (52 or 53) into week 1.
func consecutive(prev, next WeekRef) bool {
	if prev.Year == next.Year {
		return next.Week-prev.Week == 1
	}
	return next.Year == prev.Year+1 && next.Week == 1 && prev.Week == isoWeeksIn(prev.Year)
}
