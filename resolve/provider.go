// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resolve

import (
	"strings"

	"github.com/z5labs/strata/schema"

	"github.com/z5labs/sdk-go/ptr"
)

// Builtin defaults applied at the provider level when no level of the
// cascade sets a value.
const (
	DefaultNamePattern   = "api:{provider}:{collection}:{action}"
	DefaultVersionPrefix = "v"
	DefaultSearchParam   = "q"
	DefaultPerPage       = 10
	DefaultMaxLimit      = 100
)

// assignVersionNumbers gives every provider a unique version number.
//
// Explicitly set numbers are claimed first-come-first-served over
// declaration order. Providers without a number, and providers whose
// explicit number was already claimed by an earlier provider, are then
// assigned the smallest unused positive integer, again in declaration
// order.
func assignVersionNumbers(t *schema.Tree) error {
	used := make(map[int]*schema.Provider)
	for _, p := range t.Providers {
		n := p.Version.Number
		if n == nil || *n < 1 {
			continue
		}
		if _, claimed := used[*n]; claimed {
			continue
		}
		used[*n] = p
	}

	nextFree := func() int {
		for n := 1; ; n++ {
			if _, ok := used[n]; !ok {
				return n
			}
		}
	}

	for _, p := range t.Providers {
		n := p.Version.Number
		if n != nil && *n >= 1 && used[*n] == p {
			continue
		}
		if p.Version.Mode == schema.VersionManual {
			return schema.ConfigurationError{
				Provider: p.Name,
				Detail:   "version mode is manual but no unique version number is set",
			}
		}
		assigned := nextFree()
		p.Version.Number = &assigned
		used[assigned] = p
	}
	return nil
}

// resolveProviderDefaults fills every unset provider level field with its
// builtin default and normalizes the router prefix.
func resolveProviderDefaults(t *schema.Tree) error {
	for _, p := range t.Providers {
		p.Enabled = coalesce(p.Enabled, ptr.Ref(true))

		p.Version.Prefix = coalesce(p.Version.Prefix, ptr.Ref(DefaultVersionPrefix))
		if p.Version.Location == "" {
			p.Version.Location = schema.VersionInPath
		}
		if p.Version.Mode == "" {
			p.Version.Mode = schema.VersionAuto
		}

		p.Router.NamePattern = coalesce(p.Router.NamePattern, ptr.Ref(DefaultNamePattern))
		p.Router.Prefix = ptr.Ref(normalizePrefix(p.Router.Prefix))

		p.Search.Enabled = coalesce(p.Search.Enabled, ptr.Ref(true))
		p.Search.Param = coalesce(p.Search.Param, ptr.Ref(DefaultSearchParam))

		p.Pagination.Enabled = coalesce(p.Pagination.Enabled, ptr.Ref(true))
		p.Pagination.PerPage = coalesce(p.Pagination.PerPage, ptr.Ref(DefaultPerPage))
		p.Pagination.MaxLimit = coalesce(p.Pagination.MaxLimit, ptr.Ref(DefaultMaxLimit))
		p.Pagination.AllowLimitOverride = coalesce(p.Pagination.AllowLimitOverride, ptr.Ref(true))

		p.RateLimit.Enabled = coalesce(p.RateLimit.Enabled, ptr.Ref(false))
		p.RateLimit.Limit = coalesce(p.RateLimit.Limit, ptr.Ref(0))

		p.Deprecation.Enabled = coalesce(p.Deprecation.Enabled, ptr.Ref(false))

		p.URLGenerator.Support = coalesce(p.URLGenerator.Support, ptr.Ref(true))
		p.URLGenerator.Absolute = coalesce(p.URLGenerator.Absolute, ptr.Ref(false))

		p.CORS.Enabled = coalesce(p.CORS.Enabled, ptr.Ref(false))
		p.CORS.Credentials = coalesce(p.CORS.Credentials, ptr.Ref(false))
	}
	return nil
}

// normalizePrefix guarantees a leading slash and strips any trailing one.
// The result still must pass [schema.ValidPrefix] at validation time.
func normalizePrefix(prefix *string) string {
	if prefix == nil {
		return "/"
	}
	s := strings.TrimSpace(*prefix)
	if s == "" {
		return "/"
	}
	if !strings.HasPrefix(s, "/") {
		s = "/" + s
	}
	if len(s) > 1 {
		s = strings.TrimSuffix(s, "/")
	}
	return s
}
