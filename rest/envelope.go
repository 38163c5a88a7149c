// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"context"
	"encoding/json"
	"log/slog"
	"net/http"
	"time"

	"github.com/google/uuid"
)

// Meta describes the request a response belongs to.
type Meta struct {
	RequestID string    `json:"request_id"`
	Timing    time.Time `json:"timing"`
	URI       string    `json:"uri"`
	Version   int       `json:"version"`
	Provider  string    `json:"provider"`
	State     string    `json:"state"`
}

// PageLinks are the five named pagination links, always all emitted.
type PageLinks struct {
	First string `json:"first"`
	Prev  string `json:"prev"`
	Self  string `json:"self"`
	Next  string `json:"next"`
	Last  string `json:"last"`
}

// PageInfo is the pagination block of a list or search response.
type PageInfo struct {
	Page    int       `json:"page"`
	Pages   int       `json:"pages"`
	PerPage int       `json:"per_page"`
	Total   int       `json:"total"`
	Links   PageLinks `json:"links"`
}

// ErrorObject carries a stable status code and a short human readable
// message. No stack traces or internal identifiers are ever exposed.
type ErrorObject struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}

// Envelope is the top-level response structure: {meta, pagination?, data}
// on success, {error} on failure.
type Envelope struct {
	Meta       *Meta        `json:"meta,omitempty"`
	Pagination *PageInfo    `json:"pagination,omitempty"`
	Data       any          `json:"data,omitempty"`
	Error      *ErrorObject `json:"error,omitempty"`
}

func newMeta(r *http.Request, version int, provider, state string) *Meta {
	return &Meta{
		RequestID: uuid.NewString(),
		Timing:    time.Now().UTC(),
		URI:       r.URL.RequestURI(),
		Version:   version,
		Provider:  provider,
		State:     state,
	}
}

func writeEnvelope(ctx context.Context, log *slog.Logger, w http.ResponseWriter, status int, env Envelope) {
	if status == http.StatusNoContent {
		w.WriteHeader(status)
		return
	}

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)

	enc := json.NewEncoder(w)
	err := enc.Encode(env)
	if err == nil {
		return
	}
	log.ErrorContext(ctx, "failed to encode response envelope", slog.Any("error", err))
}
