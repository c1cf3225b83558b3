package model

import "time"

// Profile owns a user's ledger and selects the active fiscal year.
type Profile struct {
	ID          int64
	Name        string
	CurrentYear int // 0 = use the calendar year at query time
}

// Year returns the active fiscal year, defaulting to the calendar year
// when none has been chosen.
func (p Profile) Year(now time.Time) int {
	if p.CurrentYear == 0 {
		return now.Year()
	}
	return p.CurrentYear
}
