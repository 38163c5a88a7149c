// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"encoding/json"
	"net/http"
	"time"

	"github.com/z5labs/strata/schema"

	"github.com/go-chi/httprate"
)

const defaultRateLimitWindow = time.Minute

// ApplicationHeader identifies the calling application for
// by-application rate limiting.
const ApplicationHeader = "X-Application-Id"

// rateLimiter builds the httprate middleware for one route from its
// resolved rate limit settings. It returns nil when rate limiting is
// disabled or no limit is configured.
//
// The keyed limiter maps select how requests are bucketed: by client IP,
// by authenticated user, by calling application, or any combination. A
// map may override the shared request limit and window with its "limit"
// and "window" (seconds) entries; with no keyed map configured the limit
// applies per client IP.
func rateLimiter(rl schema.RateLimit, authz Authorizer) func(http.Handler) http.Handler {
	if rl.Enabled == nil || !*rl.Enabled {
		return nil
	}

	limit := 0
	if rl.Limit != nil {
		limit = *rl.Limit
	}

	keyFuncs := make([]httprate.KeyFunc, 0, 3)
	if len(rl.ByIP) > 0 {
		limit, _ = limiterParams(rl.ByIP, limit)
		keyFuncs = append(keyFuncs, httprate.KeyByIP)
	}
	if len(rl.ByUser) > 0 {
		limit, _ = limiterParams(rl.ByUser, limit)
		keyFuncs = append(keyFuncs, func(r *http.Request) (string, error) {
			user, ok := authz.CurrentUser(r.Context())
			if !ok {
				return "anonymous", nil
			}
			return user.Subject(), nil
		})
	}
	if len(rl.ByApplication) > 0 {
		limit, _ = limiterParams(rl.ByApplication, limit)
		keyFuncs = append(keyFuncs, func(r *http.Request) (string, error) {
			return r.Header.Get(ApplicationHeader), nil
		})
	}
	if len(keyFuncs) == 0 {
		keyFuncs = append(keyFuncs, httprate.KeyByIP)
	}

	window := defaultRateLimitWindow
	for _, m := range []schema.Limiter{rl.ByIP, rl.ByUser, rl.ByApplication} {
		if _, w := limiterParams(m, 0); w > 0 {
			window = w
			break
		}
	}

	if limit <= 0 {
		return nil
	}

	return httprate.Limit(
		limit,
		window,
		httprate.WithKeyFuncs(keyFuncs...),
		httprate.WithLimitHandler(func(w http.ResponseWriter, r *http.Request) {
			w.Header().Set("Content-Type", "application/json")
			w.WriteHeader(http.StatusTooManyRequests)
			json.NewEncoder(w).Encode(Envelope{
				Error: &ErrorObject{
					Code:    http.StatusTooManyRequests,
					Message: "rate limit exceeded",
				},
			})
		}),
	)
}

func limiterParams(m schema.Limiter, fallbackLimit int) (int, time.Duration) {
	limit := fallbackLimit
	if v, ok := m["limit"]; ok && v > 0 {
		limit = v
	}
	var window time.Duration
	if v, ok := m["window"]; ok && v > 0 {
		window = time.Duration(v) * time.Second
	}
	return limit, window
}
