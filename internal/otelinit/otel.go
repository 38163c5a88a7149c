// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package otelinit wires the global OTel trace, metric and log providers
// from their config sections.
package otelinit

import (
	"context"
	"fmt"
	"time"

	"github.com/z5labs/strata/concurrent"
	"github.com/z5labs/strata/config"
	"github.com/z5labs/strata/internal/detector"

	"go.opentelemetry.io/contrib/instrumentation/runtime"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploggrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlplog/otlploghttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetricgrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlpmetric/otlpmetrichttp"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracegrpc"
	"go.opentelemetry.io/otel/exporters/otlp/otlptrace/otlptracehttp"
	"go.opentelemetry.io/otel/log/global"
	"go.opentelemetry.io/otel/sdk/log"
	"go.opentelemetry.io/otel/sdk/metric"
	"go.opentelemetry.io/otel/sdk/resource"
	"go.opentelemetry.io/otel/sdk/trace"
	"google.golang.org/grpc"
	"google.golang.org/grpc/credentials/insecure"
)

// Initialize registers the global trace, metric and log providers.
// Exporters targeting the same OTLP gRPC endpoint share one client conn.
func Initialize(ctx context.Context, cfg config.OTel) error {
	r, err := resource.Detect(
		ctx,
		detector.TelemetrySDK(),
		detector.Host(),
		detector.ServiceName(cfg.Resource.ServiceName),
		detector.ServiceVersion(cfg.Resource.ServiceVersion),
	)
	if err != nil {
		return err
	}

	conns := concurrent.NewCache[string, *grpc.ClientConn]()

	if err := initTraces(ctx, cfg.Trace, r, conns); err != nil {
		return err
	}
	if err := initMetrics(ctx, cfg.Metric, r, conns); err != nil {
		return err
	}
	return initLogs(ctx, cfg.Log, r, conns)
}

func otlpConn(cfg config.OTLP, conns *concurrent.Cache[string, *grpc.ClientConn]) (*grpc.ClientConn, error) {
	return conns.GetOr(cfg.Target, func() (*grpc.ClientConn, error) {
		return grpc.NewClient(
			cfg.Target,
			// TODO: support secure transport credentials
			grpc.WithTransportCredentials(insecure.NewCredentials()),
		)
	})
}

// UnknownOTLPConnTypeError is returned for an unrecognized OTLP
// transport in any exporter section.
type UnknownOTLPConnTypeError struct {
	Type config.OTLPConnType
}

func (e UnknownOTLPConnTypeError) Error() string {
	return fmt.Sprintf("unknown otlp conn type: %q", e.Type)
}

// UnknownSpanProcessorTypeError is returned for an unrecognized span
// processor type.
type UnknownSpanProcessorTypeError struct {
	Type config.SpanProcessorType
}

func (e UnknownSpanProcessorTypeError) Error() string {
	return fmt.Sprintf("unknown span processor type: %q", e.Type)
}

// UnknownMetricReaderTypeError is returned for an unrecognized metric
// reader type.
type UnknownMetricReaderTypeError struct {
	Type config.MetricReaderType
}

func (e UnknownMetricReaderTypeError) Error() string {
	return fmt.Sprintf("unknown metric reader type: %q", e.Type)
}

// UnknownLogProcessorTypeError is returned for an unrecognized log
// processor type.
type UnknownLogProcessorTypeError struct {
	Type config.LogProcessorType
}

func (e UnknownLogProcessorTypeError) Error() string {
	return fmt.Sprintf("unknown log processor type: %q", e.Type)
}

func initTraces(ctx context.Context, cfg config.Trace, r *resource.Resource, conns *concurrent.Cache[string, *grpc.ClientConn]) error {
	var exp trace.SpanExporter = noopSpanExporter{}
	if cfg.Exporter.Type == config.OTLPSpanExporterType {
		var err error
		switch cfg.Exporter.OTLP.Type {
		case config.OTLPGRPC:
			var cc *grpc.ClientConn
			cc, err = otlpConn(cfg.Exporter.OTLP, conns)
			if err != nil {
				return err
			}
			exp, err = otlptracegrpc.New(ctx, otlptracegrpc.WithGRPCConn(cc))
		case config.OTLPHTTP:
			exp, err = otlptracehttp.New(ctx, otlptracehttp.WithEndpoint(cfg.Exporter.OTLP.Target))
		default:
			err = UnknownOTLPConnTypeError{Type: cfg.Exporter.OTLP.Type}
		}
		if err != nil {
			return err
		}
	}

	if cfg.Processor.Type != config.BatchSpanProcessorType {
		return UnknownSpanProcessorTypeError{Type: cfg.Processor.Type}
	}
	sp := trace.NewBatchSpanProcessor(
		exp,
		trace.WithBatchTimeout(cfg.Processor.Batch.ExportInterval),
		trace.WithMaxExportBatchSize(cfg.Processor.Batch.MaxSize),
	)

	otel.SetTracerProvider(trace.NewTracerProvider(
		trace.WithSpanProcessor(sp),
		trace.WithSampler(trace.TraceIDRatioBased(cfg.Sampling.Ratio)),
		trace.WithResource(r),
	))
	return nil
}

func initMetrics(ctx context.Context, cfg config.Metric, r *resource.Resource, conns *concurrent.Cache[string, *grpc.ClientConn]) error {
	var exp metric.Exporter = noopMetricExporter{}
	if cfg.Exporter.Type == config.OTLPMetricExporterType {
		var err error
		switch cfg.Exporter.OTLP.Type {
		case config.OTLPGRPC:
			var cc *grpc.ClientConn
			cc, err = otlpConn(cfg.Exporter.OTLP, conns)
			if err != nil {
				return err
			}
			exp, err = otlpmetricgrpc.New(ctx, otlpmetricgrpc.WithGRPCConn(cc))
		case config.OTLPHTTP:
			exp, err = otlpmetrichttp.New(ctx, otlpmetrichttp.WithEndpoint(cfg.Exporter.OTLP.Target))
		default:
			err = UnknownOTLPConnTypeError{Type: cfg.Exporter.OTLP.Type}
		}
		if err != nil {
			return err
		}
	}

	if cfg.Reader.Type != config.PeriodicReaderType {
		return UnknownMetricReaderTypeError{Type: cfg.Reader.Type}
	}
	reader := metric.NewPeriodicReader(
		exp,
		metric.WithInterval(cfg.Reader.Periodic.ExportInterval),
		metric.WithProducer(runtime.NewProducer()),
	)

	otel.SetMeterProvider(metric.NewMeterProvider(
		metric.WithReader(reader),
		metric.WithResource(r),
	))

	return runtime.Start(
		runtime.WithMinimumReadMemStatsInterval(time.Second),
	)
}

func initLogs(ctx context.Context, cfg config.Log, r *resource.Resource, conns *concurrent.Cache[string, *grpc.ClientConn]) error {
	var exp log.Exporter = newSlogExporter()
	if cfg.Exporter.Type == config.OTLPLogExporterType {
		var err error
		switch cfg.Exporter.OTLP.Type {
		case config.OTLPGRPC:
			var cc *grpc.ClientConn
			cc, err = otlpConn(cfg.Exporter.OTLP, conns)
			if err != nil {
				return err
			}
			exp, err = otlploggrpc.New(ctx, otlploggrpc.WithGRPCConn(cc))
		case config.OTLPHTTP:
			exp, err = otlploghttp.New(ctx, otlploghttp.WithEndpoint(cfg.Exporter.OTLP.Target))
		default:
			err = UnknownOTLPConnTypeError{Type: cfg.Exporter.OTLP.Type}
		}
		if err != nil {
			return err
		}
	}

	var proc log.Processor
	switch cfg.Processor.Type {
	case config.SimpleLogProcessorType:
		proc = log.NewSimpleProcessor(exp)
	case config.BatchLogProcessorType:
		proc = log.NewBatchProcessor(
			exp,
			log.WithExportInterval(cfg.Processor.Batch.ExportInterval),
			log.WithExportMaxBatchSize(cfg.Processor.Batch.MaxSize),
		)
	default:
		return UnknownLogProcessorTypeError{Type: cfg.Processor.Type}
	}

	if len(cfg.Levels) > 0 {
		proc = newLevelFilter(proc, cfg.Levels)
	}

	global.SetLoggerProvider(log.NewLoggerProvider(
		log.WithProcessor(proc),
		log.WithResource(r),
	))
	return nil
}
