// Copyright (c) 2026 Z5Labs and Contributors
//
// This software is released under the MIT License.
// https://opensource.org/licenses/MIT

package strata

import (
	"context"
	_ "embed"
	"io"

	"github.com/z5labs/strata/config"
	"github.com/z5labs/strata/internal"
	"github.com/z5labs/strata/internal/otelinit"

	bedrockcfg "github.com/z5labs/bedrock/config"
)

// ConfigSource standardizes the template for configuration of strata applications.
// The [io.Reader] is expected to be YAML with support for Go templating. Currently,
// only 2 template functions are supported:
//   - env - this allows environment variables to be substituted into the YAML
//   - default - define a default value in case the original value is nil
func ConfigSource(r io.Reader) bedrockcfg.Source {
	return internal.ConfigSource(r)
}

//go:embed default_config.yaml
var DefaultConfig []byte

// Config defines the common configuration for all strata based applications.
type Config struct {
	OTel config.OTel `config:"otel"`
}

// InitializeOTel implements the [appbuilder.OTelInitializer] interface.
func (cfg Config) InitializeOTel(ctx context.Context) error {
	return otelinit.Initialize(ctx, cfg.OTel)
}
