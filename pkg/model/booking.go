package model

import "time"

// Booking statuses. The enum is closed; the legacy "confirmed" label written
// by older clients is normalized to StatusAccepted at read time and rewritten
// by the migration service.
const (
	StatusPending  = "pending"
	StatusAccepted = "accepted"
	StatusDeclined = "declined"
	StatusArchived = "archived"

	legacyStatusConfirmed = "confirmed"
)

// DateRange is a pair of inclusive calendar dates (UTC midnight).
type DateRange struct {
	Start time.Time `json:"start_date"`
	End   time.Time `json:"end_date"`
}

// Days returns the number of calendar days the range covers, inclusive.
func (r DateRange) Days() int {
	return int(r.End.Sub(r.Start).Hours()/24) + 1
}

type StatusEntry struct {
	Status string    `json:"status" bson:"status"`
	At     time.Time `json:"at" bson:"at"`
	By     string    `json:"by" bson:"by"`
}

type Booking struct {
	ID          string `json:"id,omitempty" bson:"_id,omitempty"`
	ItemID      string `json:"item_id" bson:"item_id" validate:"required"`
	ItemName    string `json:"item_name" bson:"item_name"`
	RenterID    string `json:"renter_id" bson:"renter_id" validate:"required"`
	RenterName  string `json:"renter_name" bson:"renter_name"`
	RenterEmail string `json:"renter_email" bson:"renter_email" validate:"omitempty,email"`
	OwnerID     string `json:"owner_id" bson:"owner_id" validate:"required"`
	OwnerName   string `json:"owner_name" bson:"owner_name"`
	OwnerEmail  string `json:"owner_email" bson:"owner_email" validate:"omitempty,email"`

	StartDate time.Time `json:"start_date" bson:"start_date" validate:"required"`
	EndDate   time.Time `json:"end_date" bson:"end_date" validate:"required"`

	Status        string        `json:"status" bson:"status" validate:"required,oneof=pending accepted declined archived"`
	StatusHistory []StatusEntry `json:"status_history" bson:"status_history"`

	// The exact lock keys claimed at creation, kept for release and audit.
	LockIDs []string `json:"lock_ids" bson:"lock_ids"`

	// Client-supplied token making retried submissions safe; unique sparse
	// index in the store.
	IdempotencyKey string `json:"idempotency_key,omitempty" bson:"idempotency_key,omitempty"`

	CreatedAt time.Time `json:"created_at" bson:"created_at"`
	UpdatedAt time.Time `json:"updated_at" bson:"updated_at"`
}

// Range returns the booking's requested calendar range.
func (b *Booking) Range() DateRange {
	return DateRange{Start: b.StartDate, End: b.EndDate}
}

// NormalizeStatus maps the legacy "confirmed" label onto the closed enum.
func NormalizeStatus(status string) string {
	if status == legacyStatusConfirmed {
		return StatusAccepted
	}
	return status
}

// EffectiveStatus applies read-time archival: a pending or accepted booking
// whose end date is strictly before today is reported as archived without a
// persisted write. Declined bookings never archive.
func (b *Booking) EffectiveStatus(today time.Time) string {
	status := NormalizeStatus(b.Status)
	if status != StatusPending && status != StatusAccepted {
		return status
	}
	if b.EndDate.Before(today.Truncate(24 * time.Hour)) {
		return StatusArchived
	}
	return status
}
