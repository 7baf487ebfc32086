package controller

import (
	"encoding/json"
	"net/http"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	"github.com/xenolabs/engage-backend/internal/model"
	"github.com/xenolabs/engage-backend/internal/queue"
)

// CustomerController accepts customer-ingestion requests and hands them to
// the broker. The HTTP path never writes the customers table itself; the
// ingestion worker is its sole writer.
type CustomerController struct {
	Broker      queue.Publisher
	CustomerKey string
	Validate    *validator.Validate
}

func NewCustomerController(broker queue.Publisher, customerKey string) *CustomerController {
	return &CustomerController{
		Broker:      broker,
		CustomerKey: customerKey,
		Validate:    validator.New(),
	}
}

// IngestCustomer validates and publishes one customer-upsert event, then
// returns 202: accepted for processing, not yet processed.
func (c *CustomerController) IngestCustomer(w http.ResponseWriter, r *http.Request) {
	var event model.CustomerUpsert
	if err := json.NewDecoder(r.Body).Decode(&event); err != nil {
		http.Error(w, "invalid request body", http.StatusBadRequest)
		return
	}
	if err := c.Validate.Struct(event); err != nil {
		http.Error(w, "name and a valid email are required", http.StatusBadRequest)
		return
	}

	if err := c.Broker.Publish(c.CustomerKey, event); err != nil {
		logrus.WithError(err).Error("failed to publish customer event")
		http.Error(w, "internal server error", http.StatusInternalServerError)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusAccepted)
	json.NewEncoder(w).Encode(map[string]string{"message": "Request accepted for processing."})
}
