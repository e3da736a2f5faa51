package models

import (
	"encoding/json"
	"errors"
	"fmt"
)

// MessageKind tags an envelope with the record type it carries.
type MessageKind string

const (
	KindMetadata MessageKind = "metadata"
	KindContent  MessageKind = "content"
	KindComments MessageKind = "comments"
)

var ErrInvalidEnvelope = errors.New("invalid message envelope")

// Envelope is the wire format between collectors and the ingestion consumer.
// Redeliveries counts how many times the consumer has put the message back
// on its topic after a transient store failure.
type Envelope struct {
	Kind         MessageKind     `json:"kind"`
	BatchID      string          `json:"batch_id"`
	Redeliveries int             `json:"redeliveries,omitempty"`
	Payload      json.RawMessage `json:"payload"`
}

// Validate checks the envelope shape without decoding the payload.
func (e *Envelope) Validate() error {
	switch e.Kind {
	case KindMetadata, KindContent, KindComments:
	default:
		return fmt.Errorf("%w: unknown kind %q", ErrInvalidEnvelope, e.Kind)
	}
	if e.BatchID == "" {
		return fmt.Errorf("%w: missing batch_id", ErrInvalidEnvelope)
	}
	if len(e.Payload) == 0 {
		return fmt.Errorf("%w: empty payload", ErrInvalidEnvelope)
	}
	return nil
}
