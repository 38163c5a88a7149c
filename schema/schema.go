// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package schema defines the configuration tree which strata generates a
// REST API from.
//
// The tree has three levels: [Provider] owns [Collection]s which own
// [Endpoint]s. Optional settings are pointer valued so the resolve package
// can distinguish "explicitly set" from "inherit from parent". A tree is
// built once at process start, resolved, validated and then treated as
// read-only for the lifetime of the process.
package schema

import "time"

// Tree is the root of the configuration. Provider declaration order is
// significant since automatic version assignment is first-come-first-served.
type Tree struct {
	Providers []*Provider `config:"providers"`
}

// Provider creates a shallow lookup of providers by name.
func (t *Tree) Provider(name string) (*Provider, bool) {
	for _, p := range t.Providers {
		if p.Name == name {
			return p, true
		}
	}
	return nil, false
}

// Provider is a top-level API namespace/version.
type Provider struct {
	Name         string        `config:"name"`
	Enabled      *bool         `config:"enabled"`
	Version      Version       `config:"version"`
	Router       Router        `config:"router"`
	Search       Search        `config:"search"`
	Pagination   Pagination    `config:"pagination"`
	RateLimit    RateLimit     `config:"rate_limit"`
	Deprecation  Deprecation   `config:"deprecation"`
	URLGenerator URLGenerator  `config:"url_generator"`
	CORS         CORS          `config:"cors"`
	Templates    Templates     `config:"templates"`
	Collections  []*Collection `config:"collections"`
}

// Collection looks up an owned collection by name.
func (p *Provider) Collection(name string) (*Collection, bool) {
	for _, c := range p.Collections {
		if c.Name == name {
			return c, true
		}
	}
	return nil, false
}

// VersionLocation controls where the API version is communicated.
type VersionLocation string

const (
	VersionInPath      VersionLocation = "path"
	VersionInHeader    VersionLocation = "header"
	VersionInQuery     VersionLocation = "query"
	VersionInSubdomain VersionLocation = "subdomain"
)

// VersionMode controls whether version numbers may be auto-assigned.
type VersionMode string

const (
	VersionAuto   VersionMode = "auto"
	VersionManual VersionMode = "manual"
)

// Version describes how a [Provider] is versioned.
type Version struct {
	Number   *int            `config:"number"`
	Prefix   *string         `config:"prefix"`
	Location VersionLocation `config:"location"`
	Mode     VersionMode     `config:"mode"`
}

// Router holds route naming and prefixing settings.
type Router struct {
	// NamePattern supports the {provider}, {collection} and {action} tokens.
	NamePattern *string `config:"name_pattern"`

	// Prefix is prepended to every synthesized path. Once resolved it must
	// match a URL path fragment grammar, see [ValidPrefix].
	Prefix *string `config:"prefix"`
}

// Search holds provider level search settings.
type Search struct {
	Enabled *bool   `config:"enabled"`
	Param   *string `config:"param"`
}

// Pagination settings cascade provider -> collection -> endpoint.
type Pagination struct {
	Enabled            *bool `config:"enabled"`
	PerPage            *int  `config:"per_page"`
	MaxLimit           *int  `config:"max_limit"`
	AllowLimitOverride *bool `config:"allow_limit_override"`
}

// Limiter holds the parameters for a single rate limiter keying strategy.
// Understood keys are "limit" (requests per window) and "window"
// (window length in seconds).
type Limiter map[string]int

// RateLimit settings cascade provider -> collection -> endpoint.
// The keyed limiter maps inherit wholesale: a child's empty map takes the
// parent's non-empty map, otherwise the child's map is authoritative.
type RateLimit struct {
	Enabled       *bool   `config:"enabled"`
	Limit         *int    `config:"limit"`
	ByIP          Limiter `config:"by_ip"`
	ByUser        Limiter `config:"by_user"`
	ByApplication Limiter `config:"by_application"`
}

// Deprecation describes a deprecation window signaled via response headers.
type Deprecation struct {
	Enabled  *bool      `config:"enabled"`
	StartAt  *time.Time `config:"start_at"`
	SunsetAt *time.Time `config:"sunset_at"`
}

// CORS controls the Access-Control response headers attached to every
// route of a provider. Unset allow lists fall back to permissive
// middleware defaults.
type CORS struct {
	Enabled        *bool    `config:"enabled"`
	Origins        []string `config:"origins"`
	Methods        []string `config:"methods"`
	Headers        []string `config:"headers"`
	ExposedHeaders []string `config:"exposed_headers"`
	Credentials    *bool    `config:"credentials"`
	MaxAge         *int     `config:"max_age"`
}

// URLGenerator controls pagination link generation.
type URLGenerator struct {
	Support  *bool `config:"support"`
	Absolute *bool `config:"absolute"`
}

// Templates maps response shape names to overriding template identifiers.
// It inherits wholesale like the limiter maps.
type Templates map[string]string

// Collection is a resource type bound to one storage entity type.
type Collection struct {
	Name             string           `config:"name"`
	Entity           string           `config:"entity"`
	Paths            Paths            `config:"paths"`
	Privileges       []Privilege      `config:"privileges"`
	SerializerGroups []string         `config:"serializer_groups"`
	Search           CollectionSearch `config:"search"`
	Results          Results          `config:"results"`
	Pagination       Pagination       `config:"pagination"`
	RateLimit        RateLimit        `config:"rate_limit"`
	Deprecation      Deprecation      `config:"deprecation"`
	Templates        Templates        `config:"templates"`
	Endpoints        []*Endpoint      `config:"endpoints"`
}

// Endpoint looks up an owned endpoint by name.
func (c *Collection) Endpoint(name string) (*Endpoint, bool) {
	for _, e := range c.Endpoints {
		if e.Name == name {
			return e, true
		}
	}
	return nil, false
}

// Paths holds the URL segments a collection is served under. Unset
// segments are derived from the collection name by the resolve package.
type Paths struct {
	Singular *string `config:"singular"`
	Plural   *string `config:"plural"`
}

// Privilege pairs a permission expression with the HTTP methods it allows.
// An empty Granted expression is public and matches any actor, including
// unauthenticated ones. Declaration order is the matching order.
type Privilege struct {
	Granted string   `config:"granted"`
	Methods []string `config:"methods"`
}

// CollectionSearch controls a collection's participation in provider search.
type CollectionSearch struct {
	Excluded *bool               `config:"excluded"`
	Criteria map[string]Operator `config:"criteria"`
}

// Results controls list ordering and hyperlink injection.
type Results struct {
	Sorter map[string]SortOrder `config:"sorter"`
	Links  LinkMode             `config:"links"`
}

// LinkMode controls how entity hyperlinks are rendered.
type LinkMode string

const (
	LinksNone     LinkMode = "none"
	LinksRelative LinkMode = "relative"
	LinksAbsolute LinkMode = "absolute"
)

// Endpoint is one CRUD action on a [Collection].
type Endpoint struct {
	Name        string      `config:"name"`
	Route       Route       `config:"route"`
	Pagination  Pagination  `config:"pagination"`
	RateLimit   RateLimit   `config:"rate_limit"`
	Deprecation Deprecation `config:"deprecation"`
}

// Handler identifies which generic CRUD operation serves an endpoint.
// Dispatch over this closed set is static, there is no by-name handler
// lookup at request time.
type Handler string

const (
	ListHandler   Handler = "list"
	ReadHandler   Handler = "read"
	CreateHandler Handler = "create"
	UpdateHandler Handler = "update"
	DeleteHandler Handler = "delete"
)

// Route holds endpoint level routing overrides.
type Route struct {
	Pattern *string           `config:"pattern"`
	Handler *Handler          `config:"handler"`
	Options map[string]string `config:"options"`

	// Requirements names the URL parameters the endpoint cannot be
	// dispatched without. Inferred from the endpoint name when unset.
	Requirements []string `config:"requirements"`
}
