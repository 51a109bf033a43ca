package main

import (
	"lendly/internal/reservations/events"
	"lendly/internal/reservations/handler"
	"lendly/internal/reservations/repository"
	"lendly/internal/reservations/service"
	"lendly/internal/reservations/validator"
	"lendly/pkg/app"
	"lendly/pkg/config"
)

const ServiceName = "reservations"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Reservations service")
	reservationService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewReservationHandler(reservationService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ReservationService {
	reservationValidator := validator.NewReservationValidator(cfg.Log)
	bookingRepo := repository.NewMongoBookingRepository(cfg)
	lockRepo := repository.NewBookingLockRepository(cfg)
	itemReader := repository.NewItemReader(cfg)

	var publisher events.Publisher = events.NopPublisher{}
	if cfg.KafkaEventsEnabled {
		p, err := events.NewKafkaPublisher(ServiceName, cfg.Log)
		if err != nil {
			cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
		}
		publisher = p
	}

	reservationService := service.NewReservationService(
		bookingRepo,
		lockRepo,
		itemReader,
		reservationValidator,
		publisher,
		cfg,
	)

	cfg.Log.Info("Reservation service initialized",
		"database", cfg.MongoDatabaseName,
		"events_enabled", cfg.KafkaEventsEnabled,
	)
	return reservationService
}
