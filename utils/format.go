package utils

import (
	"fmt"
	"strings"
	"time"
)

// FullName joins the non-empty parts of a deceased person's name in
// display order: first, middle, maiden, last.
func FullName(first string, middle, maiden *string, last string) string {
	parts := make([]string, 0, 4)
	for _, p := range []string{first, Deref(middle, ""), Deref(maiden, ""), last} {
		if strings.TrimSpace(p) != "" {
			parts = append(parts, strings.TrimSpace(p))
		}
	}
	return strings.Join(parts, " ")
}

// AgeAt returns the whole-year age at the date of passing. The age is the
// floor of elapsed years: it is decremented when the passing month/day falls
// before the birth anniversary in that year. Returns nil when either date is
// missing or the result would be negative.
func AgeAt(birth time.Time, passed *time.Time) *int {
	if birth.IsZero() || passed == nil || passed.IsZero() {
		return nil
	}
	age := passed.Year() - birth.Year()
	monthDiff := int(passed.Month()) - int(birth.Month())
	if monthDiff < 0 || (monthDiff == 0 && passed.Day() < birth.Day()) {
		age--
	}
	if age < 0 {
		return nil
	}
	return &age
}

// FormatYearRange renders "1941 - 2023" style year spans; a missing side is
// left open ("1941 -" / "- 2023").
func FormatYearRange(birth time.Time, passed *time.Time) string {
	hasBirth := !birth.IsZero()
	hasPassed := passed != nil && !passed.IsZero()
	switch {
	case hasBirth && hasPassed:
		return fmt.Sprintf("%d - %d", birth.Year(), passed.Year())
	case hasBirth:
		return fmt.Sprintf("%d -", birth.Year())
	case hasPassed:
		return fmt.Sprintf("- %d", passed.Year())
	default:
		return ""
	}
}

// FormatLongDate renders a date as "January 2, 2006" for notice display.
func FormatLongDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("January 2, 2006")
}
