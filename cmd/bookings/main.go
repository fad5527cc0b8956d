package main

import (
	availabilityhandler "reserva/internal/availability/handler"
	availabilityrepo "reserva/internal/availability/repository"
	availabilityservice "reserva/internal/availability/service"
	availabilityvalidator "reserva/internal/availability/validator"
	"reserva/internal/bookings/handler"
	"reserva/internal/bookings/repository"
	"reserva/internal/bookings/service"
	"reserva/internal/bookings/validator"
	usershandler "reserva/internal/users/handler"
	usersrepo "reserva/internal/users/repository"
	usersservice "reserva/internal/users/service"
	"reserva/pkg/app"
	"reserva/pkg/cache"
	"reserva/pkg/config"
	"reserva/pkg/events"
	"reserva/pkg/idempotency"
	kafka_config "reserva/pkg/kafka/config"
	"reserva/pkg/lock"
)

const ServiceName = "bookings"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting Bookings service")
	cfg.SetMongo()
	cfg.SetRedis()

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	publisher, err := events.NewKafkaPublisher(kafkaCfg, ServiceName)
	if err != nil {
		cfg.Log.Fatal("Failed to initialize event publisher", "error", err)
	}

	store := cache.NewRedisStore(cfg.Client.Redis)
	guard := idempotency.NewGuard(store, cfg.Log, idempotency.Config{
		TTL:    cfg.IdempotencyTTL,
		Strict: cfg.IdempotencyStrict,
	})
	locks := lock.NewManager(store, cfg.Log, cfg.LockTTL, cfg.LockGranularity)

	userRepo := usersrepo.NewMongoUserRepository(cfg)
	bookingService := service.NewBookingService(
		repository.NewMongoBookingRepository(cfg),
		userRepo,
		guard,
		locks,
		publisher,
		validator.NewBookingValidator(cfg.Log),
		cfg,
	)
	availabilityService := availabilityservice.NewAvailabilityService(
		availabilityrepo.NewMongoAvailabilityRepository(cfg),
		userRepo,
		publisher,
		availabilityvalidator.NewAvailabilityValidator(cfg.Log),
		cfg,
	)
	userService := usersservice.NewUserService(
		userRepo,
		guard,
		publisher,
		cfg,
	)

	cfg.Log.Info("Services initialized", "database", cfg.MongoDatabaseName)

	serverApp := app.NewApplication()
	serverApp.SetApp(cfg,
		handler.NewBookingHandler(bookingService, cfg.Log),
		availabilityhandler.NewAvailabilityHandler(availabilityService, cfg.Log),
		usershandler.NewUserHandler(userService, cfg.Log),
	)
	serverApp.OnShutdown(func() {
		if err := publisher.Close(); err != nil {
			cfg.Log.Error("Failed to close event publisher", "error", err)
		}
		cfg.GracefulShutdown()
	})
	serverApp.Run()
}
