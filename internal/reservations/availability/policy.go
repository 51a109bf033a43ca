// Package availability evaluates whether a candidate date range is permitted
// by an item's configured availability policy. It is pure: no I/O, no clock
// access beyond the caller-supplied "today".
package availability

import (
	"time"

	"lendly/pkg/model"
)

// Rejection reasons surfaced verbatim to the caller.
const (
	ReasonPastStart    = "start date is in the past"
	ReasonInvertedMsg  = "end date is before start date"
	ReasonBeforeStart  = "before window start"
	ReasonAfterEnd     = "after window end"
	ReasonMultiDay     = "multi-day not allowed"
	ReasonWrongWeekday = "weekday not available"
	ReasonUnknownType  = "unknown availability type"
)

// Rejection reports why a candidate range is not bookable. It is a
// user-correctable outcome, distinct from infrastructure failures.
type Rejection struct {
	Reason string
}

func (r *Rejection) Error() string {
	return r.Reason
}

func reject(reason string) error {
	return &Rejection{Reason: reason}
}

// Day truncates t to its UTC calendar date.
func Day(t time.Time) time.Time {
	return time.Date(t.Year(), t.Month(), t.Day(), 0, 0, 0, 0, time.UTC)
}

// CheckRange is the policy-independent precheck. It runs before Evaluate and
// rejects ranges starting strictly before today or ending before they start.
func CheckRange(r model.DateRange, today time.Time) error {
	if r.End.Before(r.Start) {
		return reject(ReasonInvertedMsg)
	}
	if r.Start.Before(Day(today)) {
		return reject(ReasonPastStart)
	}
	return nil
}

// Evaluate applies the item's availability policy to a candidate range that
// has already passed CheckRange.
func Evaluate(policy model.Availability, r model.DateRange) error {
	switch policy.Type {
	case model.AvailabilityAlways:
		return nil

	case model.AvailabilityDateRange:
		if policy.StartDate != nil && r.Start.Before(Day(*policy.StartDate)) {
			return reject(ReasonBeforeStart)
		}
		if policy.EndDate != nil && r.End.After(Day(*policy.EndDate)) {
			return reject(ReasonAfterEnd)
		}
		return nil

	case model.AvailabilityRecurring:
		// Multi-day spans are rejected outright, regardless of weekday
		// membership.
		if !r.Start.Equal(r.End) {
			return reject(ReasonMultiDay)
		}
		weekday := int(r.Start.Weekday())
		for _, day := range policy.DaysOfWeek {
			if day == weekday {
				return nil
			}
		}
		return reject(ReasonWrongWeekday)

	default:
		return reject(ReasonUnknownType)
	}
}

// IsRejection reports whether err is a policy or precheck rejection rather
// than an infrastructure failure.
func IsRejection(err error) bool {
	_, ok := err.(*Rejection)
	return ok
}
