package models

import "time"

// Period is the calendar month a report covers.
type Period struct {
	Start time.Time
	End   time.Time
}

// PreviousMonth returns the calendar month before the one containing now.
func PreviousMonth(now time.Time) Period {
	firstOfMonth := time.Date(now.Year(), now.Month(), 1, 0, 0, 0, 0, now.Location())
	start := firstOfMonth.AddDate(0, -1, 0)
	return Period{Start: start, End: firstOfMonth.AddDate(0, 0, -1)}
}

// Name formats the period the way output files are named, e.g. September2026.
func (p Period) Name() string {
	return p.End.Format("January2006")
}

// YearStart is the first day of the year the period belongs to.
func (p Period) YearStart() time.Time {
	return time.Date(p.End.Year(), time.January, 1, 0, 0, 0, 0, p.End.Location())
}
