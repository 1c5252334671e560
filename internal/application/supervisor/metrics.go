package supervisor

import (
	"context"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// FatalEventsCounterName counts process-level fatal events.
const FatalEventsCounterName = "process_fatal_events_total"

// AttrReason is the attribute key naming the fatal path taken.
const AttrReason = "reason"

const (
	reasonUncaught  = "uncaught"
	reasonRejection = "rejection"
	reasonStartup   = "startup"
)

type fatalMetrics struct {
	fatalEvents metric.Int64Counter
}

func newFatalMetrics(provider metric.MeterProvider) (*fatalMetrics, error) {
	meter := provider.Meter("userapi/supervisor", metric.WithInstrumentationVersion("1.0.0"))

	counter, err := meter.Int64Counter(
		FatalEventsCounterName,
		metric.WithDescription("Number of fatal process events by reason"),
		metric.WithUnit("{event}"),
	)
	if err != nil {
		return nil, err
	}
	return &fatalMetrics{fatalEvents: counter}, nil
}

func (m *fatalMetrics) recordFatal(ctx context.Context, reason string) {
	m.fatalEvents.Add(ctx, 1, metric.WithAttributes(attribute.String(AttrReason, reason)))
}
