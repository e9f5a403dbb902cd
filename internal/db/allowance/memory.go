package allowance

import (
	"context"
	"sync"

	"github.com/storacha/go-ucanto/did"
)

var _ Table = (*MemoryAllowanceTable)(nil)

// MemoryAllowanceTable is an in-process Table used by tests and by dev mode,
// where running without AWS credentials is the point.
type MemoryAllowanceTable struct {
	mu      sync.Mutex
	records map[pairKey]Record
}

type pairKey struct {
	owner   string
	spender string
}

func NewMemoryAllowanceTable() *MemoryAllowanceTable {
	return &MemoryAllowanceTable{records: map[pairKey]Record{}}
}

func (m *MemoryAllowanceTable) Get(ctx context.Context, owner did.DID, spender did.DID) (Record, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.records[pairKey{owner.String(), spender.String()}], nil
}

func (m *MemoryAllowanceTable) Put(ctx context.Context, owner did.DID, spender did.DID, record Record) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.records[pairKey{owner.String(), spender.String()}] = record
	return nil
}
