package main

import (
	"context"
	"log"
	"time"

	"github.com/joho/godotenv"

	"github.com/oksasatya/go-ddd-todo/config"
	"github.com/oksasatya/go-ddd-todo/internal/application"
	"github.com/oksasatya/go-ddd-todo/internal/infrastructure/store"
	"github.com/oksasatya/go-ddd-todo/pkg/helpers"
)

// reminder is a one-shot job (cron it): every owner with incomplete tasks due
// within REMINDER_WINDOW gets one digest email job on the email queue.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-reminder", cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Minute)
	defer cancel()

	records, err := store.Open(ctx, cfg, logger, false)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer records.Close()

	pub, err := helpers.NewRabbitPublisher(cfg.RabbitMQURL, cfg.RabbitMQEmailQueue)
	if err != nil {
		log.Fatalf("amqp publisher: %v", err)
	}
	defer pub.Close()

	svc := application.NewReminderService(records.Tasks, records.Users, pub, logger, cfg.AppName, cfg.FrontendURL, cfg.ReminderWindow)
	n, err := svc.EnqueueDueSoon(ctx)
	if err != nil {
		logger.WithError(err).Fatal("reminder run failed")
	}
	logger.WithField("emails", n).Info("reminders enqueued")
}
