package events

import (
	"time"

	"github.com/storacha/go-ucanto/did"
	"github.com/storacha/go-ucanto/ucan"
)

// Approval is announced when an owner creates or overwrites a standing
// approval for a spender.
type Approval struct {
	Owner        did.DID
	Spender      did.DID
	Ceiling      uint64
	NextChargeAt time.Time
	Cause        ucan.Link
	At           time.Time
}

// Transfer is announced when a charge settles.
type Transfer struct {
	From         did.DID
	To           did.DID
	Value        uint64
	NextChargeAt time.Time
	Cause        ucan.Link
	At           time.Time
}

// Event is either an Approval or a Transfer.
type Event interface {
	isEvent()
}

func (Approval) isEvent() {}
func (Transfer) isEvent() {}

// Announcer accepts fire-and-forget event announcements. Announcing never
// blocks and never fails the announcing operation.
type Announcer interface {
	Announce(evt Event)
}
