package balance

import (
	"context"
	"sync"

	"github.com/storacha/go-ucanto/did"
)

var _ Table = (*MemoryBalanceTable)(nil)

// MemoryBalanceTable is an in-process Table for tests and dev mode.
type MemoryBalanceTable struct {
	mu       sync.Mutex
	balances map[string]uint64
}

func NewMemoryBalanceTable() *MemoryBalanceTable {
	return &MemoryBalanceTable{balances: map[string]uint64{}}
}

func (m *MemoryBalanceTable) Balance(ctx context.Context, account did.DID) (uint64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.balances[account.String()], nil
}

func (m *MemoryBalanceTable) Credit(ctx context.Context, account did.DID, value uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.balances[account.String()] += value
	return nil
}

func (m *MemoryBalanceTable) Debit(ctx context.Context, account did.DID, value uint64) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	if m.balances[account.String()] < value {
		return ErrInsufficientFunds
	}
	m.balances[account.String()] -= value
	return nil
}
