// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resolve

import (
	"strings"
	"unicode"

	"github.com/jinzhu/inflection"
)

func init() {
	// inflection ships the common English irregulars (person/people,
	// child/children, ...); these cover words collections tend to use
	// which it misses.
	inflection.AddIrregular("staff", "staff")
	inflection.AddIrregular("media", "media")
}

// Pluralize returns the URL-safe plural slug of word.
func Pluralize(word string) string {
	return Slugify(inflection.Plural(word))
}

// Singularize returns the URL-safe singular slug of word.
func Singularize(word string) string {
	return Slugify(inflection.Singular(word))
}

// Slugify lowercases s, replaces every run of characters outside
// [a-z0-9-] with a single hyphen and trims leading/trailing hyphens.
// CamelCase humps become hyphen separated words.
func Slugify(s string) string {
	var b strings.Builder
	b.Grow(len(s) + 4)

	prevHyphen := true // suppress a leading hyphen
	prevLower := false
	for _, r := range s {
		switch {
		case unicode.IsUpper(r):
			if prevLower && !prevHyphen {
				b.WriteByte('-')
			}
			b.WriteRune(unicode.ToLower(r))
			prevHyphen = false
			prevLower = false
		case (r >= 'a' && r <= 'z') || (r >= '0' && r <= '9'):
			b.WriteRune(r)
			prevHyphen = false
			prevLower = r >= 'a' && r <= 'z'
		default:
			if !prevHyphen {
				b.WriteByte('-')
			}
			prevHyphen = true
			prevLower = false
		}
	}
	return strings.TrimRight(b.String(), "-")
}
