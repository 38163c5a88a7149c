// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelinit

import (
	"context"
	"log/slog"
	"os"

	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/metric/metricdata"
	"go.opentelemetry.io/otel/sdk/trace"
)

// noopSpanExporter stands in when no span exporter is configured.
type noopSpanExporter struct{}

// ExportSpans implements the [trace.SpanExporter] interface.
func (noopSpanExporter) ExportSpans(ctx context.Context, spans []trace.ReadOnlySpan) error {
	return nil
}

// Shutdown implements the [trace.SpanExporter] interface.
func (noopSpanExporter) Shutdown(ctx context.Context) error {
	return nil
}

// noopMetricExporter stands in when no metric exporter is configured.
type noopMetricExporter struct{}

// Aggregation implements the [metric.Exporter] interface.
func (noopMetricExporter) Aggregation(metric.InstrumentKind) metric.Aggregation {
	return nil
}

// Export implements the [metric.Exporter] interface.
func (noopMetricExporter) Export(context.Context, *metricdata.ResourceMetrics) error {
	return nil
}

// ForceFlush implements the [metric.Exporter] interface.
func (noopMetricExporter) ForceFlush(context.Context) error {
	return nil
}

// Shutdown implements the [metric.Exporter] interface.
func (noopMetricExporter) Shutdown(context.Context) error {
	return nil
}

// Temporality implements the [metric.Exporter] interface.
func (noopMetricExporter) Temporality(metric.InstrumentKind) metricdata.Temporality {
	return 0
}

// slogExporter writes log records as JSON to stdout. It is the fallback
// when no OTLP log exporter is configured so local runs still log.
type slogExporter struct {
	handler slog.Handler
}

func newSlogExporter() *slogExporter {
	return &slogExporter{
		handler: slog.NewJSONHandler(os.Stdout, &slog.HandlerOptions{}),
	}
}

// Export implements the [sdklog.Exporter] interface.
func (s *slogExporter) Export(ctx context.Context, records []sdklog.Record) error {
	const sevOffset = log.SeverityDebug - log.Severity(slog.LevelDebug)
	for _, record := range records {
		sr := slog.Record{
			Time:    record.Timestamp(),
			Level:   slog.Level(record.Severity() - sevOffset),
			Message: record.Body().AsString(),
		}

		record.WalkAttributes(func(kv log.KeyValue) bool {
			sr.AddAttrs(slog.Attr{
				Key:   kv.Key,
				Value: slogValue(kv.Value),
			})
			return true
		})

		sr.AddAttrs(slog.Group(
			"otel",
			slog.String("trace.id", record.TraceID().String()),
			slog.String("span.id", record.SpanID().String()),
		))

		err := s.handler.Handle(ctx, sr)
		if err != nil {
			return err
		}
	}
	return nil
}

// ForceFlush implements the [sdklog.Exporter] interface.
func (s *slogExporter) ForceFlush(ctx context.Context) error {
	return nil
}

// Shutdown implements the [sdklog.Exporter] interface.
func (s *slogExporter) Shutdown(ctx context.Context) error {
	return nil
}

func slogValue(v log.Value) slog.Value {
	switch v.Kind() {
	case log.KindBool:
		return slog.BoolValue(v.AsBool())
	case log.KindBytes:
		return slog.AnyValue(v.AsBytes())
	case log.KindFloat64:
		return slog.Float64Value(v.AsFloat64())
	case log.KindInt64:
		return slog.Int64Value(v.AsInt64())
	case log.KindMap:
		kvs := v.AsMap()
		attrs := make([]slog.Attr, len(kvs))
		for i, kv := range kvs {
			attrs[i] = slog.Attr{
				Key:   kv.Key,
				Value: slogValue(kv.Value),
			}
		}
		return slog.GroupValue(attrs...)
	case log.KindSlice:
		vs := v.AsSlice()
		vals := make([]slog.Value, len(vs))
		for i := range vs {
			vals[i] = slogValue(vs[i])
		}
		return slog.AnyValue(vals)
	case log.KindString:
		return slog.StringValue(v.AsString())
	default:
		return slog.StringValue(v.String())
	}
}
