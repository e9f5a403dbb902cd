package metrics

import (
	"fmt"

	logging "github.com/ipfs/go-log/v2"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
)

var log = logging.Logger("metrics")

// Instruments are created against the global meter so they are usable
// immediately; they start recording once Init installs a real provider.
var meter = otel.Meter("github.com/storacha/payme")

var (
	// ApprovalsCreated counts standing approvals created or overwritten per owner
	ApprovalsCreated = mustInt64Counter(
		"payme_approvals_total",
		"Total number of approvals created per owner",
	)

	// ChargesExecuted counts successful charges per spender
	ChargesExecuted = mustInt64Counter(
		"payme_charges_total",
		"Total number of successful charges per spender",
	)

	// ChargedValue accumulates the total value moved by successful charges
	ChargedValue = mustInt64Counter(
		"payme_charged_value_total",
		"Total value moved by successful charges",
	)

	// ChargesRejected counts rejected operations by reason
	ChargesRejected = mustInt64Counter(
		"payme_rejections_total",
		"Total number of rejected operations by reason",
	)
)

func mustInt64Counter(name, description string) metric.Int64Counter {
	counter, err := meter.Int64Counter(name, metric.WithDescription(description))
	if err != nil {
		panic(fmt.Errorf("creating %s counter: %w", name, err))
	}
	return counter
}

// Init initializes the OpenTelemetry metrics with Prometheus exporter
func Init() error {
	exporter, err := prometheus.New()
	if err != nil {
		return fmt.Errorf("failed to create prometheus exporter: %w", err)
	}

	// Create a MeterProvider with the Prometheus exporter and set it as the
	// global provider, which backfills the instruments above.
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(exporter))
	otel.SetMeterProvider(provider)

	log.Info("OpenTelemetry metrics initialized with Prometheus exporter")
	return nil
}
