package observability

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"go.opentelemetry.io/contrib/bridges/otelslog"
	"go.opentelemetry.io/contrib/processors/minsev"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/stdout/stdoutlog"
	"go.opentelemetry.io/otel/propagation"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// instrumentationName identifies llmwire records in the OpenTelemetry log pipeline.
const instrumentationName = "github.com/florianilch/llmwire"

// ShutdownFunc flushes and releases logging resources.
type ShutdownFunc func(context.Context) error

// Instrument installs the default slog logger and the W3C trace context
// propagator. Logs go to stderr; stdout belongs to the demo output.
//
// Formats:
//   - text, json: slog handlers
//   - otel: OpenTelemetry log records printed to stderr
//   - otlp-http, otlp-grpc: OpenTelemetry log records exported over OTLP,
//     configured through the standard OTEL_EXPORTER_OTLP_* variables
//
// Every format adds the attributes attached with WithAttrs and, inside a
// span, trace_id and span_id.
func Instrument(ctx context.Context, level slog.Level, logFormat string) (ShutdownFunc, error) {
	otel.SetTextMapPropagator(propagation.NewCompositeTextMapPropagator(
		propagation.TraceContext{},
		propagation.Baggage{},
	))

	handler, shutdown, err := newHandler(ctx, os.Stderr, level, logFormat)
	if err != nil {
		return nil, err
	}

	slog.SetDefault(slog.New(handler))

	return shutdown, nil
}

func newHandler(ctx context.Context, w io.Writer, level slog.Level, logFormat string) (slog.Handler, ShutdownFunc, error) {
	noop := func(context.Context) error { return nil }

	switch format := strings.ToLower(logFormat); format {
	case "json", "text":
		return newRunContextHandler(newStdHandler(w, level, format)), noop, nil

	case "otel", "otlp-http", "otlp-grpc":
		exporter, err := newExporter(ctx, w, format)
		if err != nil {
			return nil, nil, fmt.Errorf("create %s log exporter: %w", format, err)
		}

		var processor sdklog.Processor
		if format == "otel" {
			processor = sdklog.NewSimpleProcessor(exporter)
		} else {
			processor = sdklog.NewBatchProcessor(exporter)
		}

		provider := sdklog.NewLoggerProvider(
			sdklog.WithProcessor(minsev.NewLogProcessor(processor, toSeverity(level))),
		)
		handler := otelslog.NewHandler(instrumentationName, otelslog.WithLoggerProvider(provider))
		return newRunContextHandler(handler), provider.Shutdown, nil

	default:
		return nil, nil, fmt.Errorf("unsupported log format %q (expected: json, text, otel, otlp-http, otlp-grpc)", logFormat)
	}
}

// newStdHandler creates a handler for human-readable logs.
func newStdHandler(w io.Writer, level slog.Level, format string) slog.Handler {
	opts := &slog.HandlerOptions{
		Level: level,
	}
	if format == "json" {
		return slog.NewJSONHandler(w, opts)
	}
	return slog.NewTextHandler(w, opts)
}

func newExporter(ctx context.Context, w io.Writer, format string) (sdklog.Exporter, error) {
	switch format {
	case "otlp-http":
		return otlploghttp.New(ctx)
	case "otlp-grpc":
		return otlploggrpc.New(ctx)
	default:
		return stdoutlog.New(stdoutlog.WithWriter(w))
	}
}

// toSeverity maps slog levels onto the minimum severity filter.
func toSeverity(level slog.Level) minsev.Severity {
	switch {
	case level <= slog.LevelDebug:
		return minsev.SeverityDebug
	case level <= slog.LevelInfo:
		return minsev.SeverityInfo
	case level <= slog.LevelWarn:
		return minsev.SeverityWarn
	default:
		return minsev.SeverityError
	}
}
