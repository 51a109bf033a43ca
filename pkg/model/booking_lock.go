package model

import "time"

// BookingLock marks one (item, calendar day) pair as claimed by a booking.
// Its ID is the deterministic lock key "itemID_YYYY-MM-DD"; the store's
// uniqueness on _id is what arbitrates between concurrent submitters.
type BookingLock struct {
	ID        string    `json:"id" bson:"_id"`
	BookingID string    `json:"booking_id" bson:"booking_id"`
	ItemID    string    `json:"item_id" bson:"item_id"`
	Date      string    `json:"date" bson:"date"`
	OwnerID   string    `json:"owner_id" bson:"owner_id"`
	CreatedAt time.Time `json:"created_at" bson:"created_at"`
}
