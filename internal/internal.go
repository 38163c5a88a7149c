// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

// Package internal holds the config source glue shared by the top
// level strata and rest packages.
package internal

import (
	"io"
	"os"

	"github.com/z5labs/bedrock/config"
)

// ConfigSource reads r as a YAML document after rendering it as a text
// template. The template exposes an "env" function for environment
// lookups and a "default" function for fallback values, so config files
// can write {{env "PORT" | default 8080}}.
func ConfigSource(r io.Reader) config.Source {
	return config.FromYaml(
		config.RenderTextTemplate(
			r,
			config.TemplateFunc("env", func(key string) any {
				v, ok := os.LookupEnv(key)
				if ok {
					return v
				}
				return nil
			}),
			config.TemplateFunc("default", func(def, v any) any {
				if v == nil {
					return def
				}
				return v
			}),
		),
	)
}
