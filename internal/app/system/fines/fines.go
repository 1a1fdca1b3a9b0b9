// internal/app/system/fines/fines.go

// Package fines computes the contribution amount due on a given date from a
// group's base amount plus its cumulative date-triggered fine rules.
package fines

import (
	"time"

	"github.com/anisham/contribhub/internal/domain/models"
)

// Tiered fallback used when no group (or no base amount) is configured.
const (
	defaultEarly = 1000 // day of month 1-5
	defaultMid   = 1100 // day of month 6-10
	defaultLate  = 1600 // day of month 11+
)

// AmountDue returns the contribution due on the given date.
//
// The total starts at the group's base amount. Each fine rule whose from-date
// (re-anchored to the evaluation year, comparing only month and day) falls
// on or before the evaluation date adds its amount. Rules stack and the sum
// is order-independent; a rule's to-date is ignored. Malformed rules are
// skipped. Fines only ever add: the result is never below the base amount.
//
// With a nil group or a non-positive base amount, the tiered default applies.
func AmountDue(g *models.Group, on time.Time) int64 {
	if g == nil || g.BaseAmount <= 0 {
		return DefaultAmount(on)
	}
	total := g.BaseAmount
	for _, rule := range g.FineRules {
		if !rule.Valid() {
			continue
		}
		m, d, ok := monthDay(rule.FromDate)
		if !ok {
			continue
		}
		if inEffect(m, d, on) {
			total += rule.Amount
		}
	}
	return total
}

// FineDue returns only the fine portion due on the given date (zero when the
// group has no qualifying rules).
func FineDue(g *models.Group, on time.Time) int64 {
	if g == nil || g.BaseAmount <= 0 {
		return 0
	}
	return AmountDue(g, on) - g.BaseAmount
}

// DefaultAmount is the tiered fallback amount keyed on the day of month.
func DefaultAmount(on time.Time) int64 {
	switch day := on.Day(); {
	case day <= 5:
		return defaultEarly
	case day <= 10:
		return defaultMid
	default:
		return defaultLate
	}
}

// inEffect reports whether a rule anchored at (month, day) has started by
// the evaluation date. Both sides are projected into the evaluation year, so
// the comparison is always within a single synthetic year.
func inEffect(m time.Month, d int, on time.Time) bool {
	if m != on.Month() {
		return m < on.Month()
	}
	return d <= on.Day()
}

// monthDay extracts the month and day from a "YYYY-MM-DD" rule date. The
// year is deliberately discarded.
func monthDay(s string) (time.Month, int, bool) {
	t, err := time.Parse("2006-01-02", s)
	if err != nil {
		return 0, 0, false
	}
	return t.Month(), t.Day(), true
}
