package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"

	"askalma-be/internal/config"
	"askalma-be/internal/pkg/logger"
	"askalma-be/pkg/events"
	pktNats "askalma-be/pkg/nats"
)

// Analytics worker: consumes answered-chat events and writes them to the
// structured log, where the usual log shipping picks them up.
func main() {
	cfg := config.Load()
	appLogger := logger.NewZapLogger(cfg.App.LogFilePath, cfg.App.Environment == "production")
	defer appLogger.Sync()

	subscriber, err := pktNats.NewSubscriber(cfg.App.NatsURL)
	if err != nil {
		log.Fatalf("Unable to connect to NATS: %v", err)
	}
	defer subscriber.Close()

	err = subscriber.Subscribe("events."+events.ChatAnsweredEventType, "askalma-analytics", func(ctx context.Context, event events.Event) error {
		appLogger.Info("analytics", "Chat answered", event.Payload())
		return nil
	})
	if err != nil {
		log.Fatalf("Unable to subscribe: %v", err)
	}

	appLogger.Info("analytics", "Worker started", map[string]interface{}{
		"nats_url": cfg.App.NatsURL,
	})

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit
	appLogger.Info("analytics", "Worker stopping", nil)
}
