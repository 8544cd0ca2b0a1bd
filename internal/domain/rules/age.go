package rules

import "time"

const (
	DefaultMinPreferredAge = 18
	DefaultMaxPreferredAge = 99
)

// DOBWindow converts a preferred age range into a date-of-birth window.
// A candidate aged at least minAge was born on or before now-minAge years
// (MaxDOB); a candidate aged at most maxAge was born on or after
// now-maxAge years (MinDOB). Returns ok=false when neither bound is set,
// meaning no age constraint applies.
func DOBWindow(now time.Time, minAge, maxAge int) (minDOB, maxDOB time.Time, ok bool) {
	if minAge <= 0 && maxAge <= 0 {
		return time.Time{}, time.Time{}, false
	}
	if minAge <= 0 {
		minAge = DefaultMinPreferredAge
	}
	if maxAge <= 0 {
		maxAge = DefaultMaxPreferredAge
	}
	if minAge > maxAge {
		minAge, maxAge = maxAge, minAge
	}

	today := now.UTC().Truncate(24 * time.Hour)
	maxDOB = today.AddDate(-minAge, 0, 0)
	minDOB = today.AddDate(-maxAge, 0, 0)
	return minDOB, maxDOB, true
}
