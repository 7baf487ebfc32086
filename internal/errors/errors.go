package appErrors

import "fmt"

// ErrEmptyAudience signals the campaign was rejected because its rules
// resolved to zero customers. A business-rule rejection, not a system fault.
type ErrEmptyAudience struct{}

func (e *ErrEmptyAudience) Error() string {
	return "campaign not created: audience is empty"
}

// Helper constructor
func NewEmptyAudience() error {
	return &ErrEmptyAudience{}
}

// ErrInvalidReceipt signals a malformed delivery receipt. Nothing is written
// to the store when this is returned.
type ErrInvalidReceipt struct {
	Reason string
}

func (e *ErrInvalidReceipt) Error() string {
	return fmt.Sprintf("invalid delivery receipt: %s", e.Reason)
}

func NewInvalidReceipt(reason string) error {
	return &ErrInvalidReceipt{Reason: reason}
}

// ErrMalformedEvent signals an ingestion message that cannot be processed no
// matter how often it is redelivered. Consumers ack and drop these instead of
// requeueing them.
type ErrMalformedEvent struct {
	Reason string
}

func (e *ErrMalformedEvent) Error() string {
	return fmt.Sprintf("malformed ingestion event: %s", e.Reason)
}

func NewMalformedEvent(reason string) error {
	return &ErrMalformedEvent{Reason: reason}
}
