package events

import (
	"context"

	logging "github.com/ipfs/go-log/v2"
)

var log = logging.Logger("events")

const busBuffer = 256

var _ Announcer = (*Bus)(nil)

// Bus fans announced events out to its sinks from a single background
// goroutine. Events are observational only: when the buffer is full they are
// dropped rather than slowing down the operation that produced them.
type Bus struct {
	ch     chan Event
	sinks  []Sink
	stopCh chan struct{}
}

// Sink receives events delivered by the bus.
type Sink interface {
	Deliver(ctx context.Context, evt Event)
}

func NewBus(sinks ...Sink) *Bus {
	return &Bus{
		ch:     make(chan Event, busBuffer),
		sinks:  sinks,
		stopCh: make(chan struct{}),
	}
}

func (b *Bus) Announce(evt Event) {
	select {
	case b.ch <- evt:
	default:
		log.Warnf("event buffer full, dropping %T", evt)
	}
}

func (b *Bus) Start(ctx context.Context) {
	log.Infof("Event bus started with %d sinks", len(b.sinks))

	for {
		select {
		case <-ctx.Done():
			log.Info("Event bus stopping due to context cancellation")
			return
		case <-b.stopCh:
			b.drain(ctx)
			log.Info("Event bus stopping")
			return
		case evt := <-b.ch:
			b.deliver(ctx, evt)
		}
	}
}

func (b *Bus) Stop() {
	close(b.stopCh)
}

func (b *Bus) deliver(ctx context.Context, evt Event) {
	for _, sink := range b.sinks {
		sink.Deliver(ctx, evt)
	}
}

func (b *Bus) drain(ctx context.Context) {
	for {
		select {
		case evt := <-b.ch:
			b.deliver(ctx, evt)
		default:
			return
		}
	}
}
