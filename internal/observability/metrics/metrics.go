package metrics

import (
	"context"
	"fmt"
	"strings"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
	sdkmetric "go.opentelemetry.io/otel/sdk/metric"
	"go.uber.org/fx"
	"go.uber.org/zap"
)

// Config configures the metrics provider.
type Config struct {
	Enabled          bool
	ExporterEndpoint string
	ExporterProtocol string
	ServiceName      string
	Environment      string
}

// Metrics holds the domain counters. A nil *Metrics records nothing, so
// services may run without instrumentation.
type Metrics struct {
	counters map[string]metric.Int64Counter
}

const (
	counterIntentions       = "intentions"
	counterAdmissions       = "admissions"
	counterIndications      = "indications"
	counterThanks           = "thanks"
	counterRateLimitAllowed = "rate_limit_allowed"
	counterRateLimitDenied  = "rate_limit_denied"
)

var counterDescriptions = map[string]string{
	counterIntentions:       "Intention lifecycle events by event type.",
	counterAdmissions:       "Invitation redemption attempts by outcome.",
	counterIndications:      "Referral ledger events by event type and status.",
	counterThanks:           "Recorded acknowledgments.",
	counterRateLimitAllowed: "Public requests admitted by the rate limiter.",
	counterRateLimitDenied:  "Public requests rejected by the rate limiter.",
}

// NewProvider configures and registers the meter provider.
func NewProvider(lc fx.Lifecycle, cfg Config, log *zap.Logger) (metric.MeterProvider, error) {
	if !cfg.Enabled {
		provider := noop.NewMeterProvider()
		otel.SetMeterProvider(provider)
		return provider, nil
	}

	exporter, err := newExporter(cfg.ExporterProtocol, cfg.ExporterEndpoint)
	if err != nil {
		return nil, err
	}

	reader := sdkmetric.NewPeriodicReader(exporter, sdkmetric.WithInterval(10*time.Second))
	provider := sdkmetric.NewMeterProvider(sdkmetric.WithReader(reader))
	otel.SetMeterProvider(provider)

	if lc != nil {
		lc.Append(fx.Hook{
			OnStop: func(ctx context.Context) error {
				if log != nil {
					log.Info("shutting down meter provider")
				}
				return provider.Shutdown(ctx)
			},
		})
	}

	if log != nil {
		log.Info("metrics initialized",
			zap.String("endpoint", cfg.ExporterEndpoint),
			zap.String("protocol", cfg.ExporterProtocol),
		)
	}

	return provider, nil
}

// New registers one <service>_<name>_total counter per domain event.
func New(cfg Config, provider metric.MeterProvider) (*Metrics, error) {
	name := strings.TrimSpace(cfg.ServiceName)
	if name == "" {
		name = "referralhub"
	}
	meter := provider.Meter(name)

	m := &Metrics{counters: make(map[string]metric.Int64Counter, len(counterDescriptions))}
	for key, desc := range counterDescriptions {
		c, err := meter.Int64Counter(name+"_"+key+"_total", metric.WithDescription(desc))
		if err != nil {
			return nil, fmt.Errorf("metrics: counter %s: %w", key, err)
		}
		m.counters[key] = c
	}
	return m, nil
}

// NewNoop returns instruments backed by a no-op provider.
func NewNoop() *Metrics {
	m, _ := New(Config{}, noop.NewMeterProvider())
	return m
}

func (m *Metrics) add(ctx context.Context, key string, attrs ...attribute.KeyValue) {
	if m == nil {
		return
	}
	c, ok := m.counters[key]
	if !ok {
		return
	}
	c.Add(ctx, 1, metric.WithAttributes(FilterAttributes(attrs...)...))
}

// RecordIntention counts submitted, approved and rejected events.
func (m *Metrics) RecordIntention(ctx context.Context, eventType string) {
	m.add(ctx, counterIntentions, attribute.String("event_type", strings.TrimSpace(eventType)))
}

// RecordAdmission takes "admitted" or the error kind that stopped it.
func (m *Metrics) RecordAdmission(ctx context.Context, outcome string) {
	m.add(ctx, counterAdmissions, attribute.String("outcome", strings.TrimSpace(outcome)))
}

func (m *Metrics) RecordIndication(ctx context.Context, eventType, status string) {
	m.add(ctx, counterIndications,
		attribute.String("event_type", strings.TrimSpace(eventType)),
		attribute.String("status", strings.TrimSpace(status)),
	)
}

// RecordThanks labels whether the thanks points at an indication.
func (m *Metrics) RecordThanks(ctx context.Context, scoped bool) {
	m.add(ctx, counterThanks, attribute.Bool("scoped", scoped))
}

func (m *Metrics) RecordRateLimitAllowed(ctx context.Context, endpoint, backend string) {
	m.add(ctx, counterRateLimitAllowed,
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("backend", strings.TrimSpace(backend)),
	)
}

func (m *Metrics) RecordRateLimitDenied(ctx context.Context, endpoint, backend string) {
	m.add(ctx, counterRateLimitDenied,
		attribute.String("endpoint", strings.TrimSpace(endpoint)),
		attribute.String("backend", strings.TrimSpace(backend)),
	)
}

func newExporter(protocol, endpoint string) (sdkmetric.Exporter, error) {
	protocol = strings.ToLower(strings.TrimSpace(protocol))
	switch protocol {
	case "http", "http/protobuf":
		opts := []otlpmetrichttp.Option{}
		if endpoint != "" {
			opts = append(opts, otlpmetrichttp.WithEndpoint(endpoint))
		}
		return otlpmetrichttp.New(context.Background(), opts...)
	case "grpc", "grpc/protobuf", "":
		opts := []otlpmetricgrpc.Option{otlpmetricgrpc.WithInsecure()}
		if endpoint != "" {
			opts = append(opts, otlpmetricgrpc.WithEndpoint(endpoint))
		}
		return otlpmetricgrpc.New(context.Background(), opts...)
	default:
		return nil, fmt.Errorf("unsupported OTLP protocol %q", protocol)
	}
}

var allowedLabelKeys = map[attribute.Key]struct{}{
	"endpoint":    {},
	"status_code": {},
	"event_type":  {},
	"status":      {},
	"outcome":     {},
	"backend":     {},
	"scoped":      {},
}

// FilterAttributes strips disallowed labels to keep metrics low-cardinality.
func FilterAttributes(attrs ...attribute.KeyValue) []attribute.KeyValue {
	filtered := make([]attribute.KeyValue, 0, len(attrs))
	for _, attr := range attrs {
		if _, ok := allowedLabelKeys[attr.Key]; !ok {
			continue
		}
		filtered = append(filtered, attr)
	}
	return filtered
}
