package allowance

import (
	"context"
	"time"

	"github.com/storacha/go-ucanto/did"
)

// Record holds the standing approval for one ordered (owner, spender) pair.
//
// The zero Record means "no approval": a zero ceiling never passes the charge
// checks, so absent keys and revoked approvals behave identically.
type Record struct {
	// Ceiling is the maximum value transferable in a single charge. It is a
	// recurring per-charge cap, not a spend-down budget, and is never
	// decremented by charges.
	Ceiling uint64

	// NextChargeAt is the earliest time the next charge may occur.
	NextChargeAt time.Time

	// PeriodIndex points at the next period to consume from the period table.
	PeriodIndex int
}

// Table is durable keyed storage for allowance records.
type Table interface {
	// Get returns the record for the (owner, spender) pair, or the zero
	// Record when none exists. A missing key is not an error.
	Get(ctx context.Context, owner did.DID, spender did.DID) (Record, error)

	// Put unconditionally overwrites the record for the (owner, spender) pair.
	Put(ctx context.Context, owner did.DID, spender did.DID, record Record) error
}
