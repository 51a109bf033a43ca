package events

import (
	"context"
	"time"

	"lendly/pkg/kafka"
	kafka_config "lendly/pkg/kafka/config"
	"lendly/pkg/logger"
	"lendly/pkg/model"
)

const (
	Topic = "reservation-events"

	TypeRequested = "reservation.requested"
	TypeAccepted  = "reservation.accepted"
	TypeDeclined  = "reservation.declined"
)

// Publisher emits reservation lifecycle events. Publishing is best-effort:
// failures are logged, never surfaced to the booking flow.
type Publisher interface {
	Publish(ctx context.Context, eventType string, booking *model.Booking)
	Close() error
}

type event struct {
	BookingID string    `json:"booking_id"`
	ItemID    string    `json:"item_id"`
	RenterID  string    `json:"renter_id"`
	OwnerID   string    `json:"owner_id"`
	StartDate time.Time `json:"start_date"`
	EndDate   time.Time `json:"end_date"`
	Status    string    `json:"status"`
}

type kafkaPublisher struct {
	producer *kafka.Producer
	service  string
	log      *logger.Logger
}

func NewKafkaPublisher(serviceName string, log *logger.Logger) (Publisher, error) {
	cfg, err := kafka_config.Load()
	if err != nil {
		return nil, err
	}

	producer, err := kafka.NewProducer(cfg, Topic)
	if err != nil {
		return nil, err
	}

	return &kafkaPublisher{
		producer: producer,
		service:  serviceName,
		log:      log,
	}, nil
}

func (p *kafkaPublisher) Publish(ctx context.Context, eventType string, booking *model.Booking) {
	msg, err := kafka.NewMessage().
		WithKey(booking.ID).
		WithEventType(eventType).
		WithSource(p.service).
		WithJSONValue(event{
			BookingID: booking.ID,
			ItemID:    booking.ItemID,
			RenterID:  booking.RenterID,
			OwnerID:   booking.OwnerID,
			StartDate: booking.StartDate,
			EndDate:   booking.EndDate,
			Status:    booking.Status,
		}).
		Build()
	if err != nil {
		p.log.Error("Failed to build reservation event", "event_type", eventType, "booking_id", booking.ID, "error", err)
		return
	}

	if err := p.producer.Publish(ctx, msg); err != nil {
		p.log.Error("Failed to publish reservation event", "event_type", eventType, "booking_id", booking.ID, "error", err)
	}
}

func (p *kafkaPublisher) Close() error {
	return p.producer.Close()
}

// NopPublisher is used when event publishing is disabled.
type NopPublisher struct{}

func (NopPublisher) Publish(context.Context, string, *model.Booking) {}

func (NopPublisher) Close() error { return nil }
