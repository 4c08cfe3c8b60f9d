package metrics

import (
	"context"
	"net/http"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	promexporter "go.opentelemetry.io/otel/exporters/prometheus"
	"go.opentelemetry.io/otel/metric"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
)

var (
	promReaderFactory = prometheusComponents
	otlpReaderFactory = buildOTLPReader
	instrumentFactory = newOtelInstruments
)

// TelemetryConfig controls how metrics are exported.
type TelemetryConfig struct {
	Enabled      bool
	Port         string
	ServiceName  string
	OtlpEndpoint string
	OtlpInsecure bool
}

// Setup configures OpenTelemetry metrics with a Prometheus exporter and optional OTLP exporter.
// It returns a Recorder, the Prometheus HTTP handler, and a shutdown function.
func Setup(ctx context.Context, cfg TelemetryConfig) (*Recorder, http.Handler, func(context.Context) error, error) {
	if !cfg.Enabled {
		return NewRecorder(), nil, func(context.Context) error { return nil }, nil
	}

	if cfg.ServiceName == "" {
		cfg.ServiceName = "padel-score-service"
	}

	promReader, promHandler, err := promReaderFactory()
	if err != nil {
		return nil, nil, nil, err
	}

	opts := []sdkmetric.Option{sdkmetric.WithReader(promReader)}

	if cfg.OtlpEndpoint != "" {
		otlpReader, err := otlpReaderFactory(ctx, cfg.OtlpEndpoint, cfg.OtlpInsecure)
		if err != nil {
			return nil, nil, nil, err
		}
		opts = append(opts, sdkmetric.WithReader(otlpReader))
	}

	res, err := resource.New(ctx,
		resource.WithAttributes(semconv.ServiceName(cfg.ServiceName)),
	)
	if err != nil {
		return nil, nil, nil, err
	}

	opts = append(opts, sdkmetric.WithResource(res))

	provider := sdkmetric.NewMeterProvider(opts...)

	otelInst, err := instrumentFactory(provider)
	if err != nil {
		return nil, nil, nil, err
	}

	rec := newRecorder(otelInst)
	shutdown := func(c context.Context) error {
		return provider.Shutdown(c)
	}

	return rec, promHandler, shutdown, nil
}

func buildOTLPReader(ctx context.Context, endpoint string, insecure bool) (sdkmetric.Reader, error) {
	otlpOpts := []otlpmetrichttp.Option{otlpmetrichttp.WithEndpoint(endpoint)}
	if insecure {
		otlpOpts = append(otlpOpts, otlpmetrichttp.WithInsecure())
	}
	otlpExp, err := otlpmetrichttp.New(ctx, otlpOpts...)
	if err != nil {
		return nil, err
	}
	return sdkmetric.NewPeriodicReader(otlpExp, sdkmetric.WithInterval(15*time.Second)), nil
}

type otelInstruments struct {
	ctx              context.Context
	meter            metric.Meter
	requests         metric.Int64Counter
	requestLatencyMs metric.Float64Histogram
	scorePoints      metric.Int64Counter
	undos            metric.Int64Counter
	persistWrites    metric.Int64Counter
	persistSkipped   metric.Int64Counter
	persistCoalesced metric.Int64Counter
	persistErrors    metric.Int64Counter
	persistFlushMs   metric.Float64Histogram
	restores         metric.Int64Counter
	wsClients        metric.Int64UpDownCounter
}

func prometheusComponents() (sdkmetric.Reader, http.Handler, error) {
	reg := prometheus.NewRegistry()
	promExp, err := promexporter.New(promexporter.WithRegisterer(reg))
	if err != nil {
		return nil, nil, err
	}
	return promExp, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}), nil
}

func newOtelInstruments(provider metric.MeterProvider) (*otelInstruments, error) {
	meter := provider.Meter("padel-score-service")
	ctx := context.Background()

	requests, err := meter.Int64Counter("http_requests_total")
	if err != nil {
		return nil, err
	}
	requestLatency, err := meter.Float64Histogram("http_request_duration_ms")
	if err != nil {
		return nil, err
	}

	scorePoints, err := meter.Int64Counter("score_points_total")
	if err != nil {
		return nil, err
	}
	undos, err := meter.Int64Counter("undo_total")
	if err != nil {
		return nil, err
	}

	persistWrites, err := meter.Int64Counter("persist_writes_total")
	if err != nil {
		return nil, err
	}
	persistSkipped, err := meter.Int64Counter("persist_writes_skipped_total")
	if err != nil {
		return nil, err
	}
	persistCoalesced, err := meter.Int64Counter("persist_coalesced_total")
	if err != nil {
		return nil, err
	}
	persistErrors, err := meter.Int64Counter("persist_errors_total")
	if err != nil {
		return nil, err
	}
	persistFlush, err := meter.Float64Histogram("persist_flush_duration_ms")
	if err != nil {
		return nil, err
	}

	restores, err := meter.Int64Counter("restore_total")
	if err != nil {
		return nil, err
	}
	wsClients, err := meter.Int64UpDownCounter("ws_clients")
	if err != nil {
		return nil, err
	}

	return &otelInstruments{
		ctx:              ctx,
		meter:            meter,
		requests:         requests,
		requestLatencyMs: requestLatency,
		scorePoints:      scorePoints,
		undos:            undos,
		persistWrites:    persistWrites,
		persistSkipped:   persistSkipped,
		persistCoalesced: persistCoalesced,
		persistErrors:    persistErrors,
		persistFlushMs:   persistFlush,
		restores:         restores,
		wsClients:        wsClients,
	}, nil
}

func (o *otelInstruments) recordHTTPRequest(method, path string, status int, duration time.Duration) {
	if o == nil {
		return
	}
	attrs := []attribute.KeyValue{
		attribute.String(AttrMethod, method),
		attribute.String(AttrPath, path),
		attribute.Int(AttrStatus, status),
	}
	o.recordCounter(o.requests, 1, attrs...)
	o.recordHistogram(o.requestLatencyMs, float64(duration.Milliseconds()), attrs...)
}

func (o *otelInstruments) recordPoint(team string) {
	if o == nil {
		return
	}
	o.recordCounter(o.scorePoints, 1, attribute.String(AttrTeam, team))
}

func (o *otelInstruments) recordUndo(kind string) {
	if o == nil {
		return
	}
	o.recordCounter(o.undos, 1, attribute.String(AttrKind, kind))
}

func (o *otelInstruments) recordFlush(duration time.Duration, err error) {
	if o == nil {
		return
	}
	if err != nil {
		o.recordCounter(o.persistErrors, 1)
	} else {
		o.recordCounter(o.persistWrites, 1)
	}
	o.recordHistogram(o.persistFlushMs, float64(duration.Milliseconds()))
}

func (o *otelInstruments) recordWriteSkipped() {
	if o == nil {
		return
	}
	o.recordCounter(o.persistSkipped, 1)
}

func (o *otelInstruments) recordCoalesced() {
	if o == nil {
		return
	}
	o.recordCounter(o.persistCoalesced, 1)
}

func (o *otelInstruments) recordRestore(source string) {
	if o == nil {
		return
	}
	o.recordCounter(o.restores, 1, attribute.String(AttrSource, source))
}

func (o *otelInstruments) recordWSDelta(delta int64) {
	if o == nil {
		return
	}
	o.wsClients.Add(o.ctx, delta)
}

func (o *otelInstruments) recordCounter(counter metric.Int64Counter, value int64, attrs ...attribute.KeyValue) {
	if o == nil {
		return
	}
	counter.Add(o.ctx, value, metric.WithAttributes(attrs...))
}

func (o *otelInstruments) recordHistogram(hist metric.Float64Histogram, value float64, attrs ...attribute.KeyValue) {
	if o == nil {
		return
	}
	hist.Record(o.ctx, value, metric.WithAttributes(attrs...))
}
