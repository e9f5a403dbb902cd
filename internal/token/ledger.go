package token

import (
	"context"
	"fmt"

	"github.com/storacha/go-ucanto/did"

	"github.com/storacha/payme/internal/db/balance"
)

var _ Token = (*Ledger)(nil)

// Ledger is a Token backed by a balance table, with the service identity as
// the custody account.
type Ledger struct {
	table   balance.Table
	custody did.DID
}

func NewLedger(table balance.Table, custody did.DID) *Ledger {
	return &Ledger{table: table, custody: custody}
}

func (l *Ledger) TransferFrom(ctx context.Context, from did.DID, to did.DID, value uint64) error {
	if err := l.table.Debit(ctx, from, value); err != nil {
		return fmt.Errorf("debiting %s: %w", from, err)
	}

	if err := l.table.Credit(ctx, to, value); err != nil {
		// The debit already landed. Put it back so the failed transfer
		// leaves no trace.
		if refundErr := l.table.Credit(ctx, from, value); refundErr != nil {
			return fmt.Errorf("crediting %s after failed transfer (funds held at %s): %w", from, to, refundErr)
		}
		return fmt.Errorf("crediting %s: %w", to, err)
	}

	return nil
}

func (l *Ledger) Transfer(ctx context.Context, to did.DID, value uint64) error {
	return l.TransferFrom(ctx, l.custody, to, value)
}
