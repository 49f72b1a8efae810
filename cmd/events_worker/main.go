package main

import (
	"context"
	"log"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/joho/godotenv"
	amqp "github.com/rabbitmq/amqp091-go"
	"github.com/sirupsen/logrus"

	"github.com/oksasatya/go-ddd-todo/config"
	"github.com/oksasatya/go-ddd-todo/internal/application"
	"github.com/oksasatya/go-ddd-todo/internal/infrastructure/esindex"
	"github.com/oksasatya/go-ddd-todo/internal/infrastructure/store"
	"github.com/oksasatya/go-ddd-todo/pkg/helpers"
)

// events_worker consumes domain events to finish list cascades on stores
// without transactions, and periodically sweeps tasks whose list is gone.
func main() {
	_ = godotenv.Load()
	cfg := config.Load()
	logger := helpers.NewLogger(cfg.AppName+"-events-worker", cfg.Env, cfg.LogLevel)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	records, err := store.Open(ctx, cfg, logger, false)
	if err != nil {
		log.Fatalf("failed to open %s store: %v", cfg.StoreDriver, err)
	}
	defer records.Close()

	var index application.TaskIndexer
	if addrs := cfg.ESAddrs(); len(addrs) > 0 {
		es, err := helpers.NewESClient(helpers.ESOptions{Addrs: addrs, Username: cfg.ElasticsearchUser, Password: cfg.ElasticsearchPass})
		if err != nil {
			logger.WithError(err).Warn("elasticsearch unavailable; index cleanup disabled")
		} else {
			index = esindex.NewTaskIndex(es, cfg.ESTasksIndex)
		}
	}
	svc := application.NewReconcileService(records.Tasks, index, logger)

	consumer, err := helpers.NewRabbitConsumer(cfg.RabbitMQURL, cfg.RabbitMQEventsQueue, 8)
	if err != nil {
		log.Fatalf("amqp consumer: %v", err)
	}
	defer consumer.Close()

	stop := make(chan os.Signal, 1)
	signal.Notify(stop, syscall.SIGINT, syscall.SIGTERM)
	done := make(chan struct{})

	go func() {
		for msg := range consumer.Msgs {
			handle(ctx, logger, svc, msg)
		}
		close(done)
	}()
	go sweep(ctx, logger, svc, cfg.OrphanSweepInterval)

	logger.WithFields(logrus.Fields{"queue": cfg.RabbitMQEventsQueue, "store": records.Driver}).Info("events worker listening")
	<-stop
	logger.Info("shutting down...")
	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
	}
}

func handle(ctx context.Context, logger *logrus.Logger, svc *application.ReconcileService, msg amqp.Delivery) {
	ev, err := application.DecodeEvent(msg.Body)
	if err != nil {
		logger.WithError(err).Warn("bad event")
		_ = msg.Nack(false, false)
		return
	}
	c, cancel := context.WithTimeout(ctx, 30*time.Second)
	defer cancel()
	if err := svc.HandleEvent(c, ev); err != nil {
		logger.WithError(err).WithFields(logrus.Fields{"type": ev.Type, "user_id": ev.UserID}).Error("event failed")
		_ = msg.Nack(false, !msg.Redelivered)
		return
	}
	_ = msg.Ack(false)
}

func sweep(ctx context.Context, logger *logrus.Logger, svc *application.ReconcileService, every time.Duration) {
	if every <= 0 {
		return
	}
	t := time.NewTicker(every)
	defer t.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-t.C:
			n, err := svc.SweepOrphans(ctx)
			if err != nil {
				logger.WithError(err).Error("orphan sweep failed")
				continue
			}
			if n > 0 {
				logger.WithField("deleted", n).Info("orphan tasks removed")
			}
		}
	}
}
