// Package lockkey derives the deterministic per-day lock keys that make a
// booked calendar day claimable exactly once. The key doubles as the lock
// document's _id, so key equality is enforced by the store.
package lockkey

import (
	"time"

	"lendly/pkg/model"
)

const dateLayout = "2006-01-02"

// Key maps one (item, calendar day) pair to its lock key.
func Key(itemID string, day time.Time) string {
	return itemID + "_" + day.UTC().Format(dateLayout)
}

// Derive expands a date range into the ordered key set it would consume: one
// key per calendar day from r.Start to r.End inclusive, ascending. The caller
// guarantees r.Start <= r.End.
func Derive(itemID string, r model.DateRange) []string {
	keys := make([]string, 0, r.Days())
	for day := r.Start; !day.After(r.End); day = day.AddDate(0, 0, 1) {
		keys = append(keys, Key(itemID, day))
	}
	return keys
}
