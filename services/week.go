package services

import (
	"time"
)

const dateLayout = "2006-01-02"

// WeekWindow is an ISO-8601 week: Monday 00:00:00.000 to Sunday 23:59:59.999 UTC.
type WeekWindow struct {
	Year       int       `json:"year"`
	WeekNumber int       `json:"week_number"`
	StartDate  time.Time `json:"start_date"`
	EndDate    time.Time `json:"end_date"`
}

// WeekRef is the persisted coordinate of a week.
type WeekRef struct {
	Week int `json:"week"`
	Year int `json:"year"`
}

func (w WeekWindow) Ref() WeekRef {
	return WeekRef{Week: w.WeekNumber, Year: w.Year}
}

// Contains reports whether t falls inside the window, bounds included.
func (w WeekWindow) Contains(t time.Time) bool {
	return !t.Before(w.StartDate) && !t.After(w.EndDate)
}

// WeekOf returns the ISO week containing reference (YYYY-MM-DD), or the week
// containing now when reference is empty.
func WeekOf(reference string, now time.Time) (WeekWindow, error) {
	if reference == "" {
		return WeekContaining(now), nil
	}
	day, err := ParseDate(reference)
	if err != nil {
		return WeekWindow{}, err
	}
	return WeekContaining(day), nil
}

// ParseDate parses a strict YYYY-MM-DD string as a UTC midnight.
func ParseDate(s string) (time.Time, error) {
	if len(s) != len(dateLayout) {
		return time.Time{}, ErrInvalidDateFormat
	}
	day, err := time.ParseInLocation(dateLayout, s, time.UTC)
	if err != nil {
		return time.Time{}, ErrInvalidDateFormat
	}
	return day, nil
}

func WeekContaining(t time.Time) WeekWindow {
	t = t.UTC()
	year, week := t.ISOWeek()

	// Monday is ISO weekday 1, Sunday is 7.
	offset := (int(t.Weekday()) + 6) % 7
	start := time.Date(t.Year(), t.Month(), t.Day()-offset, 0, 0, 0, 0, time.UTC)
	end := start.AddDate(0, 0, 7).Add(-time.Millisecond)

	return WeekWindow{
		Year:       year,
		WeekNumber: week,
		StartDate:  start,
		EndDate:    end,
	}
}

// isoWeeksIn returns 52 or 53. Dec 28 always sits in the last ISO week of its year.
func isoWeeksIn(year int) int {
	_, w := time.Date(year, time.December, 28, 0, 0, 0, 0, time.UTC).ISOWeek()
	return w
}

// StartOfDay truncates t to UTC midnight.
func StartOfDay(t time.Time) time.Time {
	t = t.UTC()
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// EndOfDay returns the last millisecond of t's UTC day.
func EndOfDay(t time.Time) time.Time {
	return StartOfDay(t).AddDate(0, 0, 1).Add(-time.Millisecond)
}
