// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package otelinit

import (
	"context"
	"sort"
	"strings"

	"go.opentelemetry.io/otel/log"
	sdklog "go.opentelemetry.io/otel/sdk/log"
)

// levelFilter drops log records below a per-logger minimum severity
// before they reach the wrapped processor. Logger names match exactly or
// by longest configured prefix; unconfigured loggers pass everything.
type levelFilter struct {
	inner    sdklog.Processor
	minimums map[string]log.Severity

	// prefixes holds the configured names longest first so prefix
	// lookups find the most specific entry.
	prefixes []string
}

func newLevelFilter(inner sdklog.Processor, levels map[string]string) *levelFilter {
	minimums := make(map[string]log.Severity, len(levels))
	prefixes := make([]string, 0, len(levels))
	for name, level := range levels {
		minimums[name] = parseSeverity(level)
		prefixes = append(prefixes, name)
	}
	sort.Slice(prefixes, func(i, j int) bool {
		return len(prefixes[i]) > len(prefixes[j])
	})

	return &levelFilter{
		inner:    inner,
		minimums: minimums,
		prefixes: prefixes,
	}
}

// parseSeverity maps a config level string to its OTel severity. An
// unrecognized level is treated as debug so nothing gets dropped.
func parseSeverity(level string) log.Severity {
	switch strings.ToLower(level) {
	case "info":
		return log.SeverityInfo
	case "warn", "warning":
		return log.SeverityWarn
	case "error":
		return log.SeverityError
	default:
		return log.SeverityDebug
	}
}

// OnEmit implements the [sdklog.Processor] interface.
func (f *levelFilter) OnEmit(ctx context.Context, record *sdklog.Record) error {
	min, ok := f.minimum(record.InstrumentationScope().Name)
	if ok && record.Severity() < min {
		return nil
	}
	return f.inner.OnEmit(ctx, record)
}

func (f *levelFilter) minimum(logger string) (log.Severity, bool) {
	if min, ok := f.minimums[logger]; ok {
		return min, true
	}
	for _, prefix := range f.prefixes {
		if strings.HasPrefix(logger, prefix) {
			return f.minimums[prefix], true
		}
	}
	return 0, false
}

// Shutdown implements the [sdklog.Processor] interface.
func (f *levelFilter) Shutdown(ctx context.Context) error {
	return f.inner.Shutdown(ctx)
}

// ForceFlush implements the [sdklog.Processor] interface.
func (f *levelFilter) ForceFlush(ctx context.Context) error {
	return f.inner.ForceFlush(ctx)
}
