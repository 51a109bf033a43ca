package model

import (
	"fmt"
	"time"
)

const isoDateLayout = "2006-01-02"

// ReservationRequest is the validated submission payload. Dates arrive as ISO
// calendar-date strings from the booking UI flow.
type ReservationRequest struct {
	ItemID      string `json:"item_id" validate:"required"`
	RenterID    string `json:"renter_id" validate:"required"`
	RenterName  string `json:"renter_name" validate:"required,min=2,max=100"`
	RenterEmail string `json:"renter_email" validate:"omitempty,email"`

	StartDate string `json:"start_date" validate:"required,isodate"`
	EndDate   string `json:"end_date" validate:"required,isodate"`

	IdempotencyKey string `json:"idempotency_key,omitempty" validate:"omitempty,uuid4"`
}

// Range parses the request dates into a calendar range (UTC midnight).
func (r *ReservationRequest) Range() (DateRange, error) {
	start, err := ParseISODate(r.StartDate)
	if err != nil {
		return DateRange{}, err
	}
	end, err := ParseISODate(r.EndDate)
	if err != nil {
		return DateRange{}, err
	}
	return DateRange{Start: start, End: end}, nil
}

// ParseISODate parses a "YYYY-MM-DD" string into a UTC midnight time.
func ParseISODate(s string) (time.Time, error) {
	t, err := time.Parse(isoDateLayout, s)
	if err != nil {
		return time.Time{}, fmt.Errorf("invalid date %q: must be YYYY-MM-DD", s)
	}
	return t, nil
}
