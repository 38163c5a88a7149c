// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package rest

import (
	"net/http"
	"strconv"
)

// decorateHeaders attaches the configuration derived response headers:
// the provider version and, when the resolved deprecation window is
// enabled, the Deprecation (RFC 9745) and Sunset (RFC 8594) headers.
// Headers are computed from the same resolved settings the body uses but
// never influence it.
func decorateHeaders(w http.ResponseWriter, rc Context) {
	h := w.Header()
	h.Set("X-Api-Version", strconv.Itoa(*rc.Provider.Version.Number))
	h.Set("X-Api-Provider", rc.Provider.Name)

	dep := rc.Provider.Deprecation
	if rc.Endpoint != nil {
		dep = rc.Endpoint.Deprecation
	}
	if dep.Enabled == nil || !*dep.Enabled {
		return
	}

	if dep.StartAt != nil {
		h.Set("Deprecation", "@"+strconv.FormatInt(dep.StartAt.Unix(), 10))
	} else {
		h.Set("Deprecation", "true")
	}
	if dep.SunsetAt != nil {
		h.Set("Sunset", dep.SunsetAt.UTC().Format(http.TimeFormat))
	}
}
