// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"net/http"

	"github.com/z5labs/strata/schema"

	"github.com/go-chi/cors"
)

// corsMiddleware builds the Access-Control header middleware for one
// provider's routes, or nil when the provider does not enable CORS.
// Headers are computed from the resolved configuration only and never
// influence the response body.
func corsMiddleware(c schema.CORS) func(http.Handler) http.Handler {
	if c.Enabled == nil || !*c.Enabled {
		return nil
	}

	opts := cors.Options{
		AllowedOrigins: c.Origins,
		AllowedMethods: c.Methods,
		AllowedHeaders: c.Headers,
		ExposedHeaders: c.ExposedHeaders,
	}
	if c.Credentials != nil {
		opts.AllowCredentials = *c.Credentials
	}
	if c.MaxAge != nil {
		opts.MaxAge = *c.MaxAge
	}
	return cors.Handler(opts)
}
