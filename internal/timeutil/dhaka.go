package timeutil

import (
	"time"
)

// BST is Bangladesh Standard Time (UTC+6)
var BST *time.Location

func init() {
	var err error
	BST, err = time.LoadLocation("Asia/Dhaka")
	if err != nil {
		// Fallback: create fixed zone if tzdata is not available
		BST = time.FixedZone("BST", 6*60*60)
	}
}

// Clock lets services take "now" as a dependency; tests pin it.
type Clock func() time.Time

// Now returns the current time in BST
func Now() time.Time {
	return time.Now().In(BST)
}

// Today returns the current BST date as YYYY-MM-DD
func Today(now time.Time) string {
	return now.In(BST).Format(DateLayout)
}

// Month returns the YYYY-MM key of the given time in BST
func Month(now time.Time) string {
	return now.In(BST).Format(MonthLayout)
}

// ParseDate parses a YYYY-MM-DD date in BST
func ParseDate(value string) (time.Time, error) {
	return time.ParseInLocation(DateLayout, value, BST)
}

// ValidDate reports whether value is a YYYY-MM-DD date
func ValidDate(value string) bool {
	_, err := ParseDate(value)
	return err == nil
}

// ValidMonth reports whether value is a YYYY-MM month key
func ValidMonth(value string) bool {
	_, err := time.ParseInLocation(MonthLayout, value, BST)
	return err == nil
}

// StartOfDay returns the start of day (00:00:00) in BST for the given time
func StartOfDay(t time.Time) time.Time {
	b := t.In(BST)
	return time.Date(b.Year(), b.Month(), b.Day(), 0, 0, 0, 0, BST)
}

// DaysBetween returns whole calendar days from the date string to now, or -1 if the date is invalid
func DaysBetween(date string, now time.Time) int {
	d, err := ParseDate(date)
	if err != nil {
		return -1
	}
	return int(StartOfDay(now).Sub(d).Hours() / 24)
}

const (
	DateLayout     = "2006-01-02"
	MonthLayout    = "2006-01"
	DateTimeLayout = "2006-01-02 15:04:05"
	DisplayLayout  = "02 Jan 2006"
)
