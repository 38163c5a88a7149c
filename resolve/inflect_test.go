// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package resolve

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestPluralize(t *testing.T) {
	cases := map[string]string{
		"article":  "articles",
		"articles": "articles",
		"person":   "people",
		"category": "categories",
		"staff":    "staff",
		"media":    "media",
		"blogPost": "blog-posts",
	}
	for word, want := range cases {
		t.Run(word, func(t *testing.T) {
			assert.Equal(t, want, Pluralize(word))
		})
	}
}

func TestSingularize(t *testing.T) {
	cases := map[string]string{
		"articles":   "article",
		"article":    "article",
		"people":     "person",
		"categories": "category",
		"staff":      "staff",
	}
	for word, want := range cases {
		t.Run(word, func(t *testing.T) {
			assert.Equal(t, want, Singularize(word))
		})
	}
}

func TestSlugify(t *testing.T) {
	cases := map[string]string{
		"Article":      "article",
		"blogPost":     "blog-post",
		"BlogPost":     "blog-post",
		"blog post":    "blog-post",
		"blog_post":    "blog-post",
		"blog--post":   "blog-post",
		" blog post ":  "blog-post",
		"HTTPServer":   "httpserver",
		"v2Collection": "v2collection",
	}
	for in, want := range cases {
		t.Run(in, func(t *testing.T) {
			assert.Equal(t, want, Slugify(in))
		})
	}
}
