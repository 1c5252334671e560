package api

import (
	"context"
	"strconv"

	"userapi/internal/domain/errors/domain"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

// Metric names following OpenTelemetry semantic conventions.
const (
	ErrorResponsesCounterName = "http_error_responses_total"
)

// Attribute keys for error response metrics.
const (
	AttrStatusCode  = "status_code"
	AttrStatusClass = "status_class"
	AttrOperational = "operational"
	AttrEnvironment = "environment"
)

// ErrorMetrics counts rendered failure responses.
type ErrorMetrics struct {
	errorResponses metric.Int64Counter
}

// NewErrorMetrics creates ErrorMetrics from the global meter provider.
func NewErrorMetrics() (*ErrorMetrics, error) {
	return NewErrorMetricsWithProvider(otel.GetMeterProvider())
}

// NewErrorMetricsWithProvider creates ErrorMetrics with a specific meter provider.
func NewErrorMetricsWithProvider(provider metric.MeterProvider) (*ErrorMetrics, error) {
	meter := provider.Meter("userapi/api", metric.WithInstrumentationVersion("1.0.0"))

	counter, err := meter.Int64Counter(
		ErrorResponsesCounterName,
		metric.WithDescription("Number of failure responses written, by status and classification"),
		metric.WithUnit("{response}"),
	)
	if err != nil {
		return nil, err
	}

	return &ErrorMetrics{errorResponses: counter}, nil
}

// RecordErrorResponse records one failure response. A nil receiver records nothing.
func (m *ErrorMetrics) RecordErrorResponse(ctx context.Context, appErr *domain.AppError, statusCode int, environment string) {
	if m == nil {
		return
	}
	m.errorResponses.Add(ctx, 1, metric.WithAttributes(
		attribute.String(AttrStatusCode, strconv.Itoa(statusCode)),
		attribute.String(AttrStatusClass, appErr.Status()),
		attribute.Bool(AttrOperational, appErr.IsOperational()),
		attribute.String(AttrEnvironment, environment),
	))
}
