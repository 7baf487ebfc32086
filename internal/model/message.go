package model

// SendTask is the outbound per-recipient message published to the broker
// after the campaign transaction commits. The external send channel consumes
// these and acknowledges each one via the delivery-receipt webhook.
type SendTask struct {
	LogID    int      `json:"logId"`
	Customer Customer `json:"customer"`
	Message  string   `json:"message"`
}

// CustomerUpsert is the inbound customer-ingestion event. It carries no
// delivery-deduplication identifier, so redeliveries are indistinguishable
// from genuine repeat visits.
type CustomerUpsert struct {
	Name  string `json:"name" validate:"required"`
	Email string `json:"email" validate:"required,email"`
}
