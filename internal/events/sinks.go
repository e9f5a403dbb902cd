package events

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"

	evdb "github.com/storacha/payme/internal/db/events"
	"github.com/storacha/payme/internal/metrics"
)

var _ Sink = (*LogSink)(nil)

// LogSink writes every event to the structured log.
type LogSink struct{}

func (LogSink) Deliver(ctx context.Context, evt Event) {
	switch e := evt.(type) {
	case Approval:
		log.Infow("approval", "owner", e.Owner, "spender", e.Spender, "ceiling", e.Ceiling, "nextChargeAt", e.NextChargeAt)
	case Transfer:
		log.Infow("transfer", "from", e.From, "to", e.To, "value", e.Value, "nextChargeAt", e.NextChargeAt)
	}
}

var _ Sink = (*MetricsSink)(nil)

// MetricsSink bumps the otel counters. Register it only after metrics.Init.
type MetricsSink struct{}

func (MetricsSink) Deliver(ctx context.Context, evt Event) {
	switch e := evt.(type) {
	case Approval:
		attributes := attribute.NewSet(attribute.String("owner", e.Owner.String()))
		metrics.ApprovalsCreated.Add(ctx, 1, metric.WithAttributeSet(attributes))
	case Transfer:
		attributes := attribute.NewSet(attribute.String("spender", e.To.String()))
		metrics.ChargesExecuted.Add(ctx, 1, metric.WithAttributeSet(attributes))
		metrics.ChargedValue.Add(ctx, int64(e.Value), metric.WithAttributeSet(attributes))
	}
}

var _ Sink = (*TableSink)(nil)

// TableSink persists events to the event table.
type TableSink struct {
	table evdb.EventTable
}

func NewTableSink(table evdb.EventTable) *TableSink {
	return &TableSink{table: table}
}

func (s *TableSink) Deliver(ctx context.Context, evt Event) {
	var record evdb.EventRecord

	switch e := evt.(type) {
	case Approval:
		record = evdb.EventRecord{
			Owner:        e.Owner,
			Cause:        e.Cause,
			Kind:         evdb.KindApproval,
			Counterparty: e.Spender,
			Ceiling:      e.Ceiling,
			NextChargeAt: e.NextChargeAt,
			EmittedAt:    e.At,
		}
	case Transfer:
		record = evdb.EventRecord{
			Owner:        e.From,
			Cause:        e.Cause,
			Kind:         evdb.KindTransfer,
			Counterparty: e.To,
			Value:        e.Value,
			NextChargeAt: e.NextChargeAt,
			EmittedAt:    e.At,
		}
	default:
		return
	}

	if err := s.table.Add(ctx, record); err != nil {
		log.Errorf("persisting %s event: %v", record.Kind, err)
	}
}
