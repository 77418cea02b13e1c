package observability

import (
	"context"
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/common/expfmt"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/sdk/resource"
	sdktrace "go.opentelemetry.io/otel/sdk/trace"
	semconv "go.opentelemetry.io/otel/semconv/v1.24.0"
	"go.opentelemetry.io/otel/trace"

	"github.com/wbrown/fieldvalues/internal/logging"
)

// Config controls telemetry exporters
type Config struct {
	ServiceName string
	// OTLPEndpoint receives spans over gRPC when set
	OTLPEndpoint string
	// TraceOutput receives one line per finished span when set
	TraceOutput io.Writer
}

// Telemetry owns the tracer provider built by Start
type Telemetry struct {
	provider *sdktrace.TracerProvider
}

// Start configures OpenTelemetry tracing. With no exporter configured the
// provider still records spans but drops them. Shutdown flushes exporters.
func Start(ctx context.Context, cfg Config) (*Telemetry, error) {
	logger := logging.FromContext(ctx)

	opts := []sdktrace.TracerProviderOption{
		sdktrace.WithResource(resource.NewWithAttributes(
			semconv.SchemaURL,
			semconv.ServiceName(cfg.ServiceName),
		)),
	}
	if cfg.OTLPEndpoint != "" {
		exporter, err := otlptracegrpc.New(ctx, otlptracegrpc.WithEndpoint(cfg.OTLPEndpoint), otlptracegrpc.WithInsecure())
		if err != nil {
			return nil, fmt.Errorf("failed to create otlp exporter: %w", err)
		}
		opts = append(opts, sdktrace.WithBatcher(exporter))
		logger.Infow("otlp tracing enabled", "endpoint", cfg.OTLPEndpoint)
	}
	if cfg.TraceOutput != nil {
		opts = append(opts, sdktrace.WithSyncer(NewLineExporter(cfg.TraceOutput)))
	}

	provider := sdktrace.NewTracerProvider(opts...)
	otel.SetTracerProvider(provider)
	return &Telemetry{provider: provider}, nil
}

// TracerProvider returns the provider installed by Start
func (t *Telemetry) TracerProvider() trace.TracerProvider {
	return t.provider
}

// Shutdown flushes and stops the exporters
func (t *Telemetry) Shutdown(ctx context.Context) error {
	return t.provider.Shutdown(ctx)
}

// LineExporter writes each span as one line: name, duration, status and
// attributes
type LineExporter struct {
	mu sync.Mutex
	w  io.Writer
}

var _ sdktrace.SpanExporter = (*LineExporter)(nil)

// NewLineExporter creates an exporter writing to w
func NewLineExporter(w io.Writer) *LineExporter {
	return &LineExporter{w: w}
}

// ExportSpans writes spans to the underlying writer
func (e *LineExporter) ExportSpans(ctx context.Context, spans []sdktrace.ReadOnlySpan) error {
	e.mu.Lock()
	defer e.mu.Unlock()

	for _, span := range spans {
		var b strings.Builder
		fmt.Fprintf(&b, "span %s %s %s", span.Name(), span.EndTime().Sub(span.StartTime()), span.Status().Code)
		for _, kv := range span.Attributes() {
			fmt.Fprintf(&b, " %s=%s", kv.Key, kv.Value.Emit())
		}
		if desc := span.Status().Description; desc != "" {
			fmt.Fprintf(&b, " error=%q", desc)
		}
		b.WriteByte('\n')
		if _, err := io.WriteString(e.w, b.String()); err != nil {
			return err
		}
	}
	return nil
}

// Shutdown is a no-op; the writer belongs to the caller
func (e *LineExporter) Shutdown(ctx context.Context) error {
	return nil
}

// WriteMetrics writes the metric families of g whose names start with
// prefix in the Prometheus text exposition format
func WriteMetrics(w io.Writer, g prometheus.Gatherer, prefix string) error {
	families, err := g.Gather()
	if err != nil {
		return fmt.Errorf("failed to gather metrics: %w", err)
	}
	for _, family := range families {
		if !strings.HasPrefix(family.GetName(), prefix) {
			continue
		}
		if _, err := expfmt.MetricFamilyToText(w, family); err != nil {
			return fmt.Errorf("failed to write %s: %w", family.GetName(), err)
		}
	}
	return nil
}
