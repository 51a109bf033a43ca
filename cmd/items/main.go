package main

import (
	"lendly/internal/items/handler"
	"lendly/internal/items/repository"
	"lendly/internal/items/service"
	"lendly/internal/items/validator"
	"lendly/pkg/app"
	"lendly/pkg/config"
)

const ServiceName = "items"

func main() {
	cfg := config.Load(ServiceName)
	cfg.SetMongo()

	cfg.Log.Info("Starting Items service")
	itemService := initServices(cfg)
	serverApp := app.NewApplication(cfg)
	serverApp.SetApp(handler.NewItemHandler(itemService, cfg.Log))
	serverApp.Run()
}

func initServices(cfg *config.Config) service.ItemService {
	itemValidator := validator.NewItemValidator(cfg.Log)
	itemRepo := repository.NewMongoItemRepository(cfg)
	itemService := service.NewItemService(
		itemRepo,
		itemValidator,
		cfg,
	)

	cfg.Log.Info("Item service initialized", "database", cfg.MongoDatabaseName)
	return itemService
}
