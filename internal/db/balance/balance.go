package balance

import (
	"context"
	"errors"

	"github.com/storacha/go-ucanto/did"
)

var ErrInsufficientFunds = errors.New("insufficient funds")

// Table is durable keyed storage for account balances. It backs the in-house
// token ledger; accounts are identified by DID.
type Table interface {
	// Balance returns the current balance of the account, zero when the
	// account has never been credited.
	Balance(ctx context.Context, account did.DID) (uint64, error)

	// Credit adds value to the account, creating it if necessary.
	Credit(ctx context.Context, account did.DID, value uint64) error

	// Debit atomically subtracts value from the account. It fails with
	// ErrInsufficientFunds when the balance is smaller than value, leaving
	// the balance untouched.
	Debit(ctx context.Context, account did.DID, value uint64) error
}
