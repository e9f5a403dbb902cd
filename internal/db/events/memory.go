package events

import (
	"context"
	"sync"

	"github.com/storacha/go-ucanto/did"
	"github.com/storacha/go-ucanto/ucan"
)

var _ EventTable = (*MemoryEventTable)(nil)

// MemoryEventTable is an in-process EventTable for tests and dev mode.
type MemoryEventTable struct {
	mu      sync.Mutex
	records map[string][]EventRecord
}

func NewMemoryEventTable() *MemoryEventTable {
	return &MemoryEventTable{records: map[string][]EventRecord{}}
}

func (m *MemoryEventTable) Add(ctx context.Context, record EventRecord) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	key := record.Owner.String()
	m.records[key] = append(m.records[key], record)
	return nil
}

func (m *MemoryEventTable) Get(ctx context.Context, owner did.DID, cause ucan.Link) (*EventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, record := range m.records[owner.String()] {
		if record.Cause.String() == cause.String() {
			r := record
			return &r, nil
		}
	}
	return nil, ErrNotFound
}

func (m *MemoryEventTable) ListByOwner(ctx context.Context, owner did.DID, limit int) ([]EventRecord, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	records := m.records[owner.String()]
	if limit > 0 && len(records) > limit {
		records = records[len(records)-limit:]
	}
	out := make([]EventRecord, len(records))
	copy(out, records)
	return out, nil
}
