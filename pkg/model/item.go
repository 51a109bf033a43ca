package model

import "time"

// Availability type discriminators.
const (
	AvailabilityAlways    = "always"
	AvailabilityDateRange = "dateRange"
	AvailabilityRecurring = "recurring"
)

// Availability is the per-item rule set constraining which date ranges may be
// requested. Exactly one variant applies, selected by Type:
//   - always: no constraint
//   - dateRange: candidate range must lie within [StartDate, EndDate]; a nil
//     bound means no limit on that side
//   - recurring: only single-day requests whose weekday is in DaysOfWeek
type Availability struct {
	Type      string     `json:"type" bson:"type" validate:"required,oneof=always dateRange recurring"`
	StartDate *time.Time `json:"start_date,omitempty" bson:"start_date,omitempty"`
	EndDate   *time.Time `json:"end_date,omitempty" bson:"end_date,omitempty"`
	// Weekdays 0-6, Sunday = 0.
	DaysOfWeek []int `json:"days_of_week,omitempty" bson:"days_of_week,omitempty" validate:"omitempty,min=1,max=7,dive,min=0,max=6"`
}

type Item struct {
	ID              string       `json:"id,omitempty" bson:"_id,omitempty"`
	OwnerID         string       `json:"owner_id" bson:"owner_id" validate:"required"`
	OwnerName       string       `json:"owner_name" bson:"owner_name" validate:"required,min=2,max=100"`
	OwnerEmail      string       `json:"owner_email" bson:"owner_email" validate:"required,email"`
	Name            string       `json:"name" bson:"name" validate:"required,min=2,max=100"`
	Description     string       `json:"description,omitempty" bson:"description" validate:"omitempty,max=2000"`
	DailyPriceCents int64        `json:"daily_price_cents" bson:"daily_price_cents" validate:"required,min=0"`
	Availability    Availability `json:"availability" bson:"availability" validate:"required"`
	// Optional handover window, local times of day as "HH:MM".
	HandoverStart string    `json:"handover_start,omitempty" bson:"handover_start" validate:"omitempty,handover_time"`
	HandoverEnd   string    `json:"handover_end,omitempty" bson:"handover_end" validate:"omitempty,handover_time"`
	CreatedAt     time.Time `json:"created_at" bson:"created_at" validate:"omitempty"`
	UpdatedAt     time.Time `json:"updated_at" bson:"updated_at" validate:"omitempty"`
}

// ItemUpdate carries owner-editable fields; nil/zero means "leave unchanged".
type ItemUpdate struct {
	Name            string        `json:"name,omitempty" validate:"omitempty,min=2,max=100"`
	Description     *string       `json:"description,omitempty" validate:"omitempty,max=2000"`
	DailyPriceCents *int64        `json:"daily_price_cents,omitempty" validate:"omitempty,min=0"`
	Availability    *Availability `json:"availability,omitempty"`
	HandoverStart   *string       `json:"handover_start,omitempty" validate:"omitempty,handover_time"`
	HandoverEnd     *string       `json:"handover_end,omitempty" validate:"omitempty,handover_time"`
}
