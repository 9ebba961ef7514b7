// Package webhook verifies inbound identity-provider callbacks.
//
// Verification is a security boundary: an event must never reach
// reconciliation without passing a Verifier. The concrete HMAC scheme is
// behind an interface so it can be swapped without touching the
// reconciliation logic.
package webhook

import (
	"encoding/json"
	"errors"
)

// Header names used by the provider's delivery service (svix).
const (
	HeaderID        = "svix-id"
	HeaderTimestamp = "svix-timestamp"
	HeaderSignature = "svix-signature"
)

// ErrInvalidSignature covers every authenticity failure: bad signature,
// malformed secret, stale timestamp. Callers map it to a 400.
var ErrInvalidSignature = errors.New("invalid webhook signature")

// Headers carries the three transport headers of a delivery. The handler
// checks presence before calling Verify.
type Headers struct {
	ID        string
	Timestamp string
	Signature string
}

// Event is the verified envelope of a delivery.
type Event struct {
	Type string          `json:"type"`
	Data json.RawMessage `json:"data"`
}

// Verifier authenticates a raw delivery and returns its parsed envelope.
type Verifier interface {
	Verify(payload []byte, h Headers) (*Event, error)
}
