// Copyright 2025 The Rivaas Authors
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
//     http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package app

import (
	"context"
	"errors"
	"fmt"
	"time"

	"rivaas.dev/web/config"
	"rivaas.dev/web/logging"
	"rivaas.dev/web/router/middleware/realip"
)

// EnvPrefix is the prefix of environment variables read by LoadSettings.
// RIVAAS_LOG_LEVEL=debug sets log.level.
const EnvPrefix = "RIVAAS_"

// Settings is the file and environment driven configuration of an App.
// Keys are single lowercase words per level because environment variables
// nest on underscores.
type Settings struct {
	Service   ServiceSettings   `config:"service"`
	Log       LogSettings       `config:"log"`
	Server    ServerSettings    `config:"server"`
	RequestID RequestIDSettings `config:"requestid"`
	Errors    ErrorSettings     `config:"errors"`
	Metrics   MetricsSettings   `config:"metrics"`
	Tracing   TracingSettings   `config:"tracing"`
	HTTP      HTTPSettings      `config:"http"`
}

// ServiceSettings identifies the service in logs, metrics and traces.
type ServiceSettings struct {
	Name        string `config:"name" default:"rivaas-service"`
	Version     string `config:"version" default:"v1.0.0"`
	Environment string `config:"environment" default:"development"`
}

// LogSettings configures the logger.
type LogSettings struct {
	Format string `config:"format" default:"json"`
	Level  string `config:"level" default:"info"`
	// AccessLog is "all", "errors" for 4xx, 5xx and slow requests only, or
	// "off".
	AccessLog string `config:"accesslog" default:"all"`
	// SlowThreshold marks slower requests in the access log. Zero disables it.
	SlowThreshold time.Duration `config:"slowthreshold"`
}

// ServerSettings configures the http.Server started by Run.
type ServerSettings struct {
	Addr            string        `config:"addr" default:":8080"`
	H2C             bool          `config:"h2c"`
	ReadTimeout     time.Duration `config:"readtimeout" default:"15s"`
	WriteTimeout    time.Duration `config:"writetimeout" default:"30s"`
	IdleTimeout     time.Duration `config:"idletimeout" default:"60s"`
	ShutdownTimeout time.Duration `config:"shutdowntimeout" default:"10s"`
	// HandlerTimeout bounds the time spent in the middleware chain.
	// Zero disables it.
	HandlerTimeout time.Duration `config:"handlertimeout"`
	// MaxBody limits request bodies in bytes. Zero disables it.
	MaxBody int64 `config:"maxbody"`
}

// RequestIDSettings configures request ID propagation.
type RequestIDSettings struct {
	Header string `config:"header" default:"X-Request-ID"`
	ULID   bool   `config:"ulid"`
}

// ErrorSettings configures error rendering.
type ErrorSettings struct {
	// BaseURL prefixes the problem type URIs of RFC 9457 responses.
	BaseURL string `config:"baseurl"`
}

// MetricsSettings configures Prometheus metrics.
type MetricsSettings struct {
	Enabled   bool   `config:"enabled"`
	Path      string `config:"path" default:"/metrics"`
	Namespace string `config:"namespace"`
}

// TracingSettings configures OpenTelemetry tracing.
type TracingSettings struct {
	Enabled bool `config:"enabled"`
	// Exporter is "none" or "stdout".
	Exporter   string  `config:"exporter" default:"none"`
	SampleRate float64 `config:"samplerate" default:"1"`
}

// HTTPSettings toggles the response shaping middleware.
type HTTPSettings struct {
	// Compress enables Brotli and gzip response compression.
	Compress bool `config:"compress"`
	// CompressMin is the smallest body worth compressing.
	CompressMin int `config:"compressmin" default:"1024"`
	// SecurityHeaders adds X-Frame-Options, Content-Security-Policy and
	// related headers with strict defaults.
	SecurityHeaders bool `config:"securityheaders"`
	// CORSOrigins enables CORS for the listed origins; "*" allows any.
	CORSOrigins []string `config:"corsorigins"`
	// CORSCredentials allows cookies on cross-origin requests.
	CORSCredentials bool `config:"corscredentials"`
	// TrustedProxies lists the reverse proxies (addresses or CIDR ranges)
	// whose forwarding headers are believed when resolving the client address.
	TrustedProxies []string `config:"trustedproxies"`
	// ProxyHeaders overrides the client address headers, in order of preference.
	ProxyHeaders []string `config:"proxyheaders"`
	// ProxyMaxHops is how many trusted proxies may appear in X-Forwarded-For.
	ProxyMaxHops int `config:"proxymaxhops" default:"1"`
}

// DefaultSettings returns the settings used when no source sets a key.
func DefaultSettings() Settings {
	s, err := bindSettings(context.Background())
	if err != nil {
		panic(err)
	}
	return s
}

// Validate implements config.Validator.
func (s *Settings) Validate() error {
	var errs []error
	if s.Service.Name == "" {
		errs = append(errs, errors.New("service.name cannot be empty"))
	}
	switch logging.HandlerType(s.Log.Format) {
	case logging.JSONHandler, logging.TextHandler, logging.ConsoleHandler:
	default:
		errs = append(errs, fmt.Errorf("log.format must be json, text or console, got %q", s.Log.Format))
	}
	switch s.Log.AccessLog {
	case "all", "errors", "off":
	default:
		errs = append(errs, fmt.Errorf("log.accesslog must be all, errors or off, got %q", s.Log.AccessLog))
	}
	if _, err := logging.ParseLevel(s.Log.Level); err != nil {
		errs = append(errs, fmt.Errorf("log.level: %w", err))
	}
	if s.RequestID.Header == "" {
		errs = append(errs, errors.New("requestid.header cannot be empty"))
	}
	if s.Metrics.Enabled && (s.Metrics.Path == "" || s.Metrics.Path[0] != '/') {
		errs = append(errs, fmt.Errorf("metrics.path must start with /, got %q", s.Metrics.Path))
	}
	switch s.Tracing.Exporter {
	case "none", "stdout":
	default:
		errs = append(errs, fmt.Errorf("tracing.exporter must be none or stdout, got %q", s.Tracing.Exporter))
	}
	if s.Tracing.SampleRate < 0 || s.Tracing.SampleRate > 1 {
		errs = append(errs, fmt.Errorf("tracing.samplerate must be between 0 and 1, got %v", s.Tracing.SampleRate))
	}
	if s.Server.ShutdownTimeout < 0 {
		errs = append(errs, errors.New("server.shutdowntimeout cannot be negative"))
	}
	if s.Server.HandlerTimeout < 0 {
		errs = append(errs, errors.New("server.handlertimeout cannot be negative"))
	}
	if s.Server.MaxBody < 0 {
		errs = append(errs, errors.New("server.maxbody cannot be negative"))
	}
	if s.HTTP.CompressMin < 0 {
		errs = append(errs, errors.New("http.compressmin cannot be negative"))
	}
	if s.HTTP.ProxyMaxHops < 0 {
		errs = append(errs, errors.New("http.proxymaxhops cannot be negative"))
	}
	if _, err := realip.New(realip.WithProxies(s.HTTP.TrustedProxies...)); err != nil {
		errs = append(errs, fmt.Errorf("http.trustedproxies: %w", err))
	}
	return errors.Join(errs...)
}

// LoadSettings merges the given sources, then environment variables with
// the RIVAAS_ prefix, and binds the result. Unset keys take the defaults
// of DefaultSettings.
//
//	s, err := app.LoadSettings(ctx,
//	    config.WithFile("app.yaml"),
//	    config.WithFile("app.local.toml"),
//	)
func LoadSettings(ctx context.Context, opts ...config.Option) (Settings, error) {
	return bindSettings(ctx, append(opts[:len(opts):len(opts)], config.WithEnv(EnvPrefix))...)
}

func bindSettings(ctx context.Context, opts ...config.Option) (Settings, error) {
	var s Settings
	cfg, err := config.New(append(opts, config.WithBinding(&s))...)
	if err != nil {
		return Settings{}, fmt.Errorf("app: settings: %w", err)
	}
	if err := cfg.Load(ctx); err != nil {
		return Settings{}, fmt.Errorf("app: settings: %w", err)
	}
	return s, nil
}
