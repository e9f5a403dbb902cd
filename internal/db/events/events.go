package events

import (
	"context"
	"errors"
	"time"

	"github.com/storacha/go-ucanto/did"
	"github.com/storacha/go-ucanto/ucan"
)

var ErrNotFound = errors.New("event not found")

type Kind string

const (
	KindApproval Kind = "approval"
	KindTransfer Kind = "transfer"
)

// EventRecord is one persisted notification, keyed by the owner it concerns
// and the invocation that caused it.
type EventRecord struct {
	Owner did.DID
	Cause ucan.Link
	Kind  Kind

	// Counterparty is the spender for approvals and the recipient for
	// transfers.
	Counterparty did.DID

	// Value is the transferred amount; zero for approvals.
	Value uint64

	// Ceiling is the approved per-charge cap; zero for transfers.
	Ceiling uint64

	NextChargeAt time.Time
	EmittedAt    time.Time
}

type EventTable interface {
	Add(ctx context.Context, record EventRecord) error
	Get(ctx context.Context, owner did.DID, cause ucan.Link) (*EventRecord, error)
	ListByOwner(ctx context.Context, owner did.DID, limit int) ([]EventRecord, error)
}
