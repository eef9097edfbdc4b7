package observability

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/prometheus"
	otelmetric "go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/sdk/metric"
)

// Observability records trigger invocations through the OpenTelemetry meter,
// exported on the default Prometheus registry next to the promauto metrics.
type Observability struct {
	meterProvider   *metric.MeterProvider
	meter           otelmetric.Meter
	triggerCounter  otelmetric.Int64Counter
	triggerDuration otelmetric.Float64Histogram
}

// New never fails: if the exporter cannot be built the returned value is a no-op.
func New(serviceName string) *Observability {
	exporter, err := prometheus.New()
	if err != nil {
		return &Observability{}
	}
	return newWithReader(serviceName, exporter)
}

func newWithReader(serviceName string, reader metric.Reader) *Observability {
	provider := metric.NewMeterProvider(metric.WithReader(reader))
	otel.SetMeterProvider(provider)

	meter := provider.Meter(serviceName)

	triggerCounter, _ := meter.Int64Counter(
		"triggers.processed",
		otelmetric.WithDescription("Number of trigger invocations processed"),
	)

	triggerDuration, _ := meter.Float64Histogram(
		"triggers.duration",
		otelmetric.WithDescription("Trigger processing duration"),
		otelmetric.WithUnit("ms"),
	)

	return &Observability{
		meterProvider:   provider,
		meter:           meter,
		triggerCounter:  triggerCounter,
		triggerDuration: triggerDuration,
	}
}

func (o *Observability) RecordTrigger(ctx context.Context, trigger, status string, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := otelmetric.WithAttributes(
		attribute.String("trigger", trigger),
		attribute.String("status", status),
	)
	if o.triggerCounter != nil {
		o.triggerCounter.Add(ctx, 1, attrs)
	}
	if o.triggerDuration != nil {
		o.triggerDuration.Record(ctx, float64(duration.Milliseconds()), attrs)
	}
}

func (o *Observability) Shutdown() {
	if o == nil || o.meterProvider == nil {
		return
	}
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	_ = o.meterProvider.Shutdown(ctx)
}
