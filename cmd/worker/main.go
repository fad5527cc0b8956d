package main

import (
	"context"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"reserva/pkg/config"
	"reserva/pkg/contracts"
	"reserva/pkg/events"
	"reserva/pkg/kafka"
	kafka_config "reserva/pkg/kafka/config"
	kafka_middleware "reserva/pkg/kafka/middleware"
	"reserva/pkg/logger"
)

const ServiceName = "worker"

func main() {
	cfg := config.Load(ServiceName)

	cfg.Log.Info("Starting event worker")

	kafkaCfg := kafka_config.Load()
	kafkaCfg.LogConfiguration(cfg.Log.Info)

	topics := []string{
		events.TopicBookingCreated,
		events.TopicBookingUpdated,
		events.TopicBookingDeleted,
	}

	// Shared semaphore bounding in-flight handler executions across all
	// topic consumers.
	slots := make(chan struct{}, cfg.WorkerConcurrency)

	consumers := make([]contracts.Runner, 0, len(topics))
	for _, topic := range topics {
		consumer, err := kafka.NewConsumer(
			kafkaCfg,
			topic,
			kafkaCfg.ConsumerGroupID,
			events.DLQTopic(topic),
			boundedHandler(slots, eventLogger(cfg.Log, topic)),
		)
		if err != nil {
			cfg.Log.Fatal("Failed to create consumer", "topic", topic, "error", err)
		}
		consumer.Use(kafka_middleware.LoggingConsumerMiddleware(cfg.Log))
		consumer.Use(kafka_middleware.MetricsConsumerMiddleware())
		consumer.OnDeadLetter(func(msg kafka.Message, err error) {
			kafka_middleware.GetMetrics().RecordDeadLetter()
			cfg.Log.Error("Event dead-lettered",
				"topic", msg.Topic,
				"event_id", msg.GetEventID(),
				"retry_count", msg.GetRetryCount(),
				"error", err,
			)
		})
		consumers = append(consumers, consumer)
	}

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var wg sync.WaitGroup
	for _, consumer := range consumers {
		wg.Add(1)
		go func(runner contracts.Runner) {
			defer wg.Done()
			if err := runner.Start(ctx); err != nil && ctx.Err() == nil {
				cfg.Log.Error("Consumer stopped unexpectedly", "error", err)
			}
		}(consumer)
	}

	cfg.Log.Info("Worker running",
		"topics", len(consumers),
		"concurrency", cfg.WorkerConcurrency,
	)

	shutdown := make(chan os.Signal, 1)
	signal.Notify(shutdown, os.Interrupt, syscall.SIGTERM)
	sig := <-shutdown
	cfg.Log.Info("Shutdown signal received", "signal", sig)

	cancel()
	for _, consumer := range consumers {
		if err := consumer.Close(); err != nil {
			cfg.Log.Error("Failed to close consumer", "error", err)
		}
	}
	wg.Wait()

	cfg.Log.Info("Worker stopped gracefully")
}

// boundedHandler gates handler execution on the shared concurrency slots.
func boundedHandler(slots chan struct{}, next kafka.MessageHandler) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		select {
		case slots <- struct{}{}:
		case <-ctx.Done():
			return ctx.Err()
		}
		defer func() { <-slots }()
		return next(ctx, msg)
	}
}

// eventLogger records consumed booking events. It stands in for real
// subscribers and exercises the retry and dead-letter path end to end.
func eventLogger(log *logger.Logger, topic string) kafka.MessageHandler {
	return func(ctx context.Context, msg kafka.Message) error {
		var event events.BookingEvent
		if err := msg.DecodeValue(&event); err != nil {
			return kafka.NewPermanentError("decode booking event", err)
		}

		log.Info("Booking event consumed",
			"topic", topic,
			"event_id", event.EventID,
			"event_type", event.Type,
			"booking_id", event.Booking.ID,
			"provider_id", event.Booking.ProviderID,
			"occurred_at", event.OccurredAt,
		)
		return nil
	}
}
