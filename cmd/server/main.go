// cmd/server/main.go
package main

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/xenolabs/engage-backend/internal/config"
	"github.com/xenolabs/engage-backend/internal/controller"
	"github.com/xenolabs/engage-backend/internal/db"
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

	customerRepo := &repository.CustomerRepository{DB: conn}
	campaignRepo := &repository.CampaignRepository{DB: conn, Customers: customerRepo}

	campaignService := &service.CampaignService{
		CampaignRepo: campaignRepo,
		CustomerRepo: customerRepo,
		Broker:       broker,
		SendKey:      cfg.AMQP.SendKey,
	}
	receiptService := &service.ReceiptService{CampaignRepo: campaignRepo}

	campaignController := controller.NewCampaignController(campaignService, receiptService)
	customerController := controller.NewCustomerController(broker, cfg.AMQP.CustomerKey)

	r := chi.NewRouter()

	// Segments and campaigns
	r.Post("/segments/preview", campaignController.PreviewSegment)
	r.Post("/campaigns", campaignController.CreateCampaign)
	r.Get("/campaigns", campaignController.ListCampaigns)

	// Inbound write paths: delivery receipts and customer ingestion
	r.Post("/webhooks/delivery-receipts", campaignController.DeliveryReceipt)
	r.Post("/customers", customerController.IngestCustomer)

	logrus.WithField("addr", cfg.HTTPAddr).Info("server running")
	logrus.Fatal(http.ListenAndServe(cfg.HTTPAddr, r))
}
