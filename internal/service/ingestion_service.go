package service

import (
	"context"
	"encoding/json"

	"github.com/go-playground/validator/v10"
	"github.com/sirupsen/logrus"

	appErrors "github.com/xenolabs/engage-backend/internal/errors"
	"github.com/xenolabs/engage-backend/internal/model"
	"github.com/xenolabs/engage-backend/internal/repository"
)

// IngestionService folds customer-upsert events from the broker into the
// customer store. It is the only writer of the customers table.
type IngestionService struct {
	CustomerRepo repository.CustomerRepositoryInterface
	validate     *validator.Validate
}

func NewIngestionService(customerRepo repository.CustomerRepositoryInterface) *IngestionService {
	return &IngestionService{
		CustomerRepo: customerRepo,
		validate:     validator.New(),
	}
}

// Process handles one raw message body. A payload that cannot ever be
// processed returns ErrMalformedEvent so the consumer acks and drops it
// instead of requeueing a poison message; store failures propagate as-is and
// get the message redelivered. Redelivery of a good event increments
// visit_count again — at-least-once delivery with no deduplication id.
func (s *IngestionService) Process(ctx context.Context, body []byte) error {
	var event model.CustomerUpsert
	if err := json.Unmarshal(body, &event); err != nil {
		return appErrors.NewMalformedEvent(err.Error())
	}
	if err := s.validate.Struct(event); err != nil {
		return appErrors.NewMalformedEvent(err.Error())
	}

	if err := s.CustomerRepo.UpsertByEmail(ctx, event.Name, event.Email); err != nil {
		return err
	}

	logrus.WithField("email", event.Email).Info("customer upserted")
	return nil
}
