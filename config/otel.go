// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package config declares the telemetry config schema shared by the
// top level strata package and its initializers.
package config

import (
	"time"
)

// Resource identifies the service in every exported signal.
type Resource struct {
	ServiceName    string `config:"service_name"`
	ServiceVersion string `config:"service_version"`
}

// Batch holds shared batching parameters for span and log processors.
type Batch struct {
	ExportInterval time.Duration `config:"export_interval"`
	MaxSize        int           `config:"max_size"`
}

// OTLPConnType selects the OTLP transport.
type OTLPConnType string

const (
	OTLPHTTP OTLPConnType = "http"
	OTLPGRPC OTLPConnType = "grpc"
)

// OTLP describes an OTLP endpoint.
type OTLP struct {
	Type   OTLPConnType `config:"type"`
	Target string       `config:"target"`
}

// SpanProcessorType selects the span processor implementation.
type SpanProcessorType string

const (
	BatchSpanProcessorType SpanProcessorType = "batch"
)

// SpanProcessor configures how finished spans are handed to the exporter.
type SpanProcessor struct {
	Type  SpanProcessorType `config:"type"`
	Batch Batch             `config:"batch"`
}

// SpanSampling configures trace id ratio based sampling.
type SpanSampling struct {
	Ratio float64 `config:"ratio"`
}

// SpanExporterType selects the span exporter implementation.
type SpanExporterType string

const (
	OTLPSpanExporterType SpanExporterType = "otlp"
)

// SpanExporter configures where spans are exported to.
type SpanExporter struct {
	Type SpanExporterType `config:"type"`
	OTLP OTLP             `config:"otlp"`
}

// Trace is the tracing section of the OTel config.
type Trace struct {
	Processor SpanProcessor `config:"processor"`
	Sampling  SpanSampling  `config:"sampling"`
	Exporter  SpanExporter  `config:"exporter"`
}

// MetricReaderType selects the metric reader implementation.
type MetricReaderType string

const (
	PeriodicReaderType MetricReaderType = "periodic"
)

type PeriodicReader struct {
	ExportInterval time.Duration `config:"export_interval"`
}

// MetricReader configures how measurements are collected for export.
type MetricReader struct {
	Type     MetricReaderType `config:"type"`
	Periodic PeriodicReader   `config:"periodic"`
}

// MetricExporterType selects the metric exporter implementation.
type MetricExporterType string

const (
	OTLPMetricExporterType MetricExporterType = "otlp"
)

// MetricExporter configures where metrics are exported to.
type MetricExporter struct {
	Type MetricExporterType `config:"type"`
	OTLP OTLP               `config:"otlp"`
}

// Metric is the metrics section of the OTel config.
type Metric struct {
	Reader   MetricReader   `config:"reader"`
	Exporter MetricExporter `config:"exporter"`
}

// LogProcessorType selects the log processor implementation.
type LogProcessorType string

const (
	SimpleLogProcessorType LogProcessorType = "simple"
	BatchLogProcessorType  LogProcessorType = "batch"
)

// LogProcessor configures how records are handed to the exporter.
type LogProcessor struct {
	Type  LogProcessorType `config:"type"`
	Batch Batch            `config:"batch"`
}

// LogExporterType selects the log exporter implementation.
type LogExporterType string

const (
	OTLPLogExporterType LogExporterType = "otlp"
)

// LogExporter configures where log records are exported to.
type LogExporter struct {
	Type LogExporterType `config:"type"`
	OTLP OTLP            `config:"otlp"`
}

// Log is the logging section of the OTel config.
type Log struct {
	Processor LogProcessor `config:"processor"`
	Exporter  LogExporter  `config:"exporter"`

	// Levels maps logger names to their minimum severity. Names match
	// by prefix so a single entry can cover an entire module subtree.
	Levels map[string]string `config:"levels"`
}

// OTel is the complete telemetry configuration.
type OTel struct {
	Resource Resource `config:"resource"`
	Trace    Trace    `config:"trace"`
	Metric   Metric   `config:"metric"`
	Log      Log      `config:"log"`
}
