package events

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/storacha/go-ucanto/did"
	ed25519 "github.com/storacha/go-ucanto/principal/ed25519/signer"
)

type recordingSink struct {
	mu     sync.Mutex
	events []Event
}

func (s *recordingSink) Deliver(ctx context.Context, evt Event) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.events = append(s.events, evt)
}

func (s *recordingSink) snapshot() []Event {
	s.mu.Lock()
	defer s.mu.Unlock()
	out := make([]Event, len(s.events))
	copy(out, s.events)
	return out
}

func randomDID(t *testing.T) did.DID {
	t.Helper()
	signer, err := ed25519.Generate()
	require.NoError(t, err)
	return signer.DID()
}

func TestBus(t *testing.T) {
	t.Run("delivers announced events to all sinks", func(t *testing.T) {
		sink1 := &recordingSink{}
		sink2 := &recordingSink{}
		bus := NewBus(sink1, sink2)

		ctx, cancel := context.WithCancel(context.Background())
		defer cancel()
		done := make(chan struct{})
		go func() {
			bus.Start(ctx)
			close(done)
		}()

		owner := randomDID(t)
		spender := randomDID(t)
		bus.Announce(Approval{Owner: owner, Spender: spender, Ceiling: 100})
		bus.Announce(Transfer{From: owner, To: spender, Value: 42})

		bus.Stop()
		<-done

		for _, sink := range []*recordingSink{sink1, sink2} {
			events := sink.snapshot()
			require.Len(t, events, 2)
			approval, ok := events[0].(Approval)
			require.True(t, ok)
			assert.Equal(t, uint64(100), approval.Ceiling)
			transfer, ok := events[1].(Transfer)
			require.True(t, ok)
			assert.Equal(t, uint64(42), transfer.Value)
		}
	})

	t.Run("announce never blocks when the buffer is full", func(t *testing.T) {
		bus := NewBus() // never started

		doneCh := make(chan struct{})
		go func() {
			for i := 0; i < busBuffer+10; i++ {
				bus.Announce(Transfer{Value: uint64(i)})
			}
			close(doneCh)
		}()

		select {
		case <-doneCh:
		case <-time.After(5 * time.Second):
			t.Fatal("Announce blocked on a full buffer")
		}
	})
}
