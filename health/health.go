// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package health defines the health reporting contract behind the
// readiness and liveness probes of a generated API.
package health

import (
	"context"
	"errors"
	"sync/atomic"
)

// Monitor represents anything which can report its current state of health.
type Monitor interface {
	Healthy(context.Context) (bool, error)
}

// Binary is a [Monitor] with exactly two states, healthy or unhealthy.
// It is safe for concurrent use. The zero value reports unhealthy.
type Binary struct {
	healthy atomic.Bool
}

// MarkHealthy transitions the state to healthy.
func (b *Binary) MarkHealthy() {
	b.healthy.Store(true)
}

// MarkUnhealthy transitions the state to unhealthy.
func (b *Binary) MarkUnhealthy() {
	b.healthy.Store(false)
}

// Healthy implements the [Monitor] interface.
func (b *Binary) Healthy(ctx context.Context) (bool, error) {
	return b.healthy.Load(), nil
}

// AndMonitor combines [Monitor]s with logical AND semantics: it is
// healthy only when every member is. It fails fast on the first
// unhealthy or erroring member.
type AndMonitor []Monitor

// And initializes a [AndMonitor] in a more functional style.
func And(ms ...Monitor) AndMonitor {
	return AndMonitor(ms)
}

// Healthy implements the [Monitor] interface.
func (am AndMonitor) Healthy(ctx context.Context) (bool, error) {
	for _, m := range am {
		healthy, err := m.Healthy(ctx)
		if !healthy || err != nil {
			return healthy, err
		}
	}
	return true, nil
}

// OrMonitor combines [Monitor]s with logical OR semantics: it is
// healthy when any member is. Every member is checked and any errors
// encountered are joined via [errors.Join].
type OrMonitor []Monitor

// Or initializes a [OrMonitor] in a more functional style.
func Or(ms ...Monitor) OrMonitor {
	return OrMonitor(ms)
}

// Healthy implements the [Monitor] interface.
func (om OrMonitor) Healthy(ctx context.Context) (bool, error) {
	errs := make([]error, 0, len(om))
	for _, m := range om {
		healthy, err := m.Healthy(ctx)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if healthy {
			return true, nil
		}
	}
	return false, errors.Join(errs...)
}
