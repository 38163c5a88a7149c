// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package schema

import (
	"fmt"
	"regexp"
)

// prefixGrammar is the URL path fragment grammar a resolved router prefix
// must match.
var prefixGrammar = regexp.MustCompile(`^/([A-Za-z0-9\-._~%]+/?)*$`)

// ValidPrefix reports whether s is an acceptable resolved router prefix.
func ValidPrefix(s string) bool {
	return prefixGrammar.MatchString(s)
}

var pathSegment = regexp.MustCompile(`^[a-z0-9-]+$`)

// ConfigurationError is a load-time validation failure. It is fatal: the
// process must not start serving with an invalid tree.
type ConfigurationError struct {
	Provider   string
	Collection string
	Endpoint   string
	Detail     string
}

func (e ConfigurationError) Error() string {
	msg := "schema: invalid configuration"
	if e.Provider != "" {
		msg += " for provider " + e.Provider
	}
	if e.Collection != "" {
		msg += ", collection " + e.Collection
	}
	if e.Endpoint != "" {
		msg += ", endpoint " + e.Endpoint
	}
	return msg + ": " + e.Detail
}

// Validate checks a resolved [Tree] against the load-time rules:
// unique version numbers, well-formed router prefixes, non-empty entity
// bindings, URL-safe path segments, known sorter directions, known search
// operators and resolvable endpoint handlers.
//
// Validate expects every optional field to already be filled in by the
// resolve package; a nil field is itself a configuration error.
func Validate(t *Tree) error {
	versions := make(map[int]string)

	for _, p := range t.Providers {
		if p.Name == "" {
			return ConfigurationError{Detail: "provider name must not be empty"}
		}
		if err := validateProvider(p, versions); err != nil {
			return err
		}
	}
	return nil
}

func validateProvider(p *Provider, versions map[int]string) error {
	if p.Version.Number == nil {
		return ConfigurationError{Provider: p.Name, Detail: "version number is unresolved"}
	}
	if other, ok := versions[*p.Version.Number]; ok {
		return ConfigurationError{
			Provider: p.Name,
			Detail:   fmt.Sprintf("version number %d is already used by provider %s", *p.Version.Number, other),
		}
	}
	versions[*p.Version.Number] = p.Name

	if p.Router.Prefix == nil || !ValidPrefix(*p.Router.Prefix) {
		return ConfigurationError{
			Provider: p.Name,
			Detail:   fmt.Sprintf("router prefix %s does not match the path fragment grammar", strOrUnset(p.Router.Prefix)),
		}
	}

	for _, c := range p.Collections {
		if err := validateCollection(p, c); err != nil {
			return err
		}
	}
	return nil
}

func validateCollection(p *Provider, c *Collection) error {
	if c.Entity == "" {
		return ConfigurationError{Provider: p.Name, Collection: c.Name, Detail: "collection must be bound to an entity"}
	}

	for _, s := range []*string{c.Paths.Singular, c.Paths.Plural} {
		if s == nil || !pathSegment.MatchString(*s) {
			return ConfigurationError{
				Provider:   p.Name,
				Collection: c.Name,
				Detail:     fmt.Sprintf("path segment %s is not a lowercase URL-safe slug", strOrUnset(s)),
			}
		}
	}

	for field, order := range c.Results.Sorter {
		if order != Ascending && order != Descending {
			return ConfigurationError{
				Provider:   p.Name,
				Collection: c.Name,
				Detail:     fmt.Sprintf("sorter for field %q must be ASC or DESC, got %q", field, order),
			}
		}
	}

	for field, op := range c.Search.Criteria {
		if !op.Valid() {
			return ConfigurationError{
				Provider:   p.Name,
				Collection: c.Name,
				Detail:     fmt.Sprintf("unknown search operator %q for field %q", op, field),
			}
		}
	}

	for _, e := range c.Endpoints {
		if e.Route.Handler == nil {
			return ConfigurationError{
				Provider:   p.Name,
				Collection: c.Name,
				Endpoint:   e.Name,
				Detail:     "no handler could be bound; endpoint name is not a recognized action",
			}
		}
	}
	return nil
}

func strOrUnset(s *string) string {
	if s == nil {
		return "(unset)"
	}
	return fmt.Sprintf("%q", *s)
}
