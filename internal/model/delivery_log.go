package model

import "time"

// Delivery log statuses. Entries are created PENDING inside the campaign
// transaction and moved to SENT or FAILED by delivery receipts.
const (
	StatusPending = "PENDING"
	StatusSent    = "SENT"
	StatusFailed  = "FAILED"
)

type DeliveryLogEntry struct {
	ID          int        `db:"id" json:"id"`
	CampaignID  int        `db:"campaign_id" json:"campaign_id"`
	CustomerID  int        `db:"customer_id" json:"customer_id"`
	MessageBody string     `db:"message_body" json:"message_body"`
	Status      string     `db:"status" json:"status"`
	SentAt      *time.Time `db:"sent_at" json:"sent_at,omitempty"`
}
