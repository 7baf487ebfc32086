// cmd/worker/main.go
//
// Ingestion worker: long-lived consumer that folds customer-upsert events
// from the broker into the customer store, one message at a time.
package main

import (
	"context"
	"errors"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/xenolabs/engage-backend/internal/config"
	"github.com/xenolabs/engage-backend/internal/db"
	appErrors "github.com/xenolabs/engage-backend/internal/errors"
	"github.com/xenolabs/engage-backend/internal/queue"
	"github.com/xenolabs/engage-backend/internal/repository"
	"github.com/xenolabs/engage-backend/internal/service"
)

func main() {
	if err := godotenv.Load(); err != nil {
		logrus.Warn("no .env file found, relying on OS environment variables")
	}
	cfg := config.Load()

	conn, err := db.Connect(cfg.DB)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to database")
	}
	defer conn.Close()

	broker, err := queue.NewBroker(cfg.AMQP.URL, cfg.AMQP.Exchange)
	if err != nil {
		logrus.WithError(err).Fatal("failed to connect to broker")
	}
	defer broker.Close()

	ingestion := service.NewIngestionService(&repository.CustomerRepository{DB: conn})

	deliveries, err := broker.Consume(cfg.AMQP.IngestionQueue, cfg.AMQP.CustomerKey)
	if err != nil {
		logrus.WithError(err).Fatal("failed to start consumer")
	}

	logrus.WithFields(logrus.Fields{
		"queue":       cfg.AMQP.IngestionQueue,
		"routing_key": cfg.AMQP.CustomerKey,
	}).Info("ingestion worker running, waiting for messages")

	ctx := context.Background()
	for d := range deliveries {
		err := ingestion.Process(ctx, d.Body)
		if err == nil {
			d.Ack(false)
			continue
		}

		var malformed *appErrors.ErrMalformedEvent
		if errors.As(err, &malformed) {
			// Poison message: requeueing would loop forever.
			logrus.WithError(err).Warn("dropping malformed ingestion event")
			d.Ack(false)
			continue
		}

		// Store failure: requeue for redelivery.
		logrus.WithError(err).Error("failed to process ingestion event, requeueing")
		d.Nack(false, true)
	}
}
