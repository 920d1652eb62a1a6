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

package config

import (
	"context"
	"errors"
	"fmt"
	"os"
	"reflect"
	"strings"
	"sync"
	"time"

	"dario.cat/mergo"
	"github.com/go-viper/mapstructure/v2"
	"github.com/spf13/cast"

	"rivaas.dev/web/config/codec"
)

// Option configures a Config.
type Option func(c *Config) error

// Validator is implemented by bound structs that check themselves.
type Validator interface {
	Validate() error
}

// Config holds the merged values of its sources.
//
// Config is safe for concurrent use.
type Config struct {
	mu      sync.RWMutex
	values  map[string]any
	sources []Source

	binding    any
	tagName    string
	validators []func(map[string]any) error
}

// New creates a Config. All option errors are joined; the returned
// Config is usable for inspection even when err is non-nil.
func New(options ...Option) (*Config, error) {
	c := &Config{
		values:  map[string]any{},
		tagName: "config",
	}

	var errs error
	for _, option := range options {
		if option == nil {
			continue
		}
		if err := option(c); err != nil {
			errs = errors.Join(errs, err)
		}
	}
	return c, errs
}

// MustNew creates a Config or panics.
func MustNew(options ...Option) *Config {
	c, err := New(options...)
	if err != nil {
		panic(fmt.Sprintf("config: failed to create config: %v", err))
	}
	return c
}

// WithSource adds a source.
func WithSource(src Source) Option {
	return func(c *Config) error {
		if src == nil {
			return errors.New("source cannot be nil")
		}
		c.sources = append(c.sources, src)
		return nil
	}
}

// WithFile adds a file whose format is detected from its extension.
func WithFile(path string) Option {
	return func(c *Config) error {
		format, err := detectFormat(path)
		if err != nil {
			return err
		}
		return WithFileAs(path, format)(c)
	}
}

// WithFileAs adds a file decoded with the named codec.
func WithFileAs(path string, format codec.Type) Option {
	return func(c *Config) error {
		decoder, err := codec.Get(format)
		if err != nil {
			return err
		}
		c.sources = append(c.sources, &fileSource{path: path, decoder: decoder})
		return nil
	}
}

// WithContent adds fixed content decoded with the named codec.
func WithContent(data []byte, format codec.Type) Option {
	return func(c *Config) error {
		decoder, err := codec.Get(format)
		if err != nil {
			return err
		}
		c.sources = append(c.sources, &fileSource{data: data, decoder: decoder})
		return nil
	}
}

// WithEnv adds environment variables starting with prefix.
// APP_SERVER_PORT with prefix "APP_" sets "server.port".
func WithEnv(prefix string) Option {
	return func(c *Config) error {
		c.sources = append(c.sources, &envSource{prefix: prefix, environ: os.Environ})
		return nil
	}
}

// WithValues adds fixed values, typically defaults placed first.
func WithValues(values map[string]any) Option {
	return WithSource(mapSource(values))
}

// WithBinding decodes the merged values into v, a pointer to a struct,
// on every Load.
func WithBinding(v any) Option {
	return func(c *Config) error {
		rv := reflect.ValueOf(v)
		if rv.Kind() != reflect.Pointer || rv.IsNil() || rv.Elem().Kind() != reflect.Struct {
			return fmt.Errorf("binding must be a non-nil pointer to a struct, got %T", v)
		}
		c.binding = v
		return nil
	}
}

// WithTag sets the struct tag used for binding. Defaults to "config".
func WithTag(tagName string) Option {
	return func(c *Config) error {
		if tagName == "" {
			return errors.New("tag name cannot be empty")
		}
		c.tagName = tagName
		return nil
	}
}

// WithValidator runs fn on the merged values before they are accepted.
func WithValidator(fn func(map[string]any) error) Option {
	return func(c *Config) error {
		if fn == nil {
			return errors.New("validator cannot be nil")
		}
		c.validators = append(c.validators, fn)
		return nil
	}
}

// Load reads and merges all sources, validates the result, binds it and
// only then replaces the current values. On error nothing changes.
func (c *Config) Load(ctx context.Context) error {
	values, err := c.loadSources(ctx)
	if err != nil {
		return err
	}

	for i, fn := range c.validators {
		if err := fn(values); err != nil {
			return NewError(fmt.Sprintf("validator[%d]", i), "validate", err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.binding != nil {
		staged := reflect.New(reflect.TypeOf(c.binding).Elem()).Interface()
		if err := c.decode(values, staged); err != nil {
			return NewError("binding", "bind", err)
		}
		if v, ok := staged.(Validator); ok {
			if err := v.Validate(); err != nil {
				return NewError("binding", "validate", err)
			}
		}
		reflect.ValueOf(c.binding).Elem().Set(reflect.ValueOf(staged).Elem())
	}

	c.values = values
	return nil
}

// MustLoad loads or panics.
func (c *Config) MustLoad(ctx context.Context) {
	if err := c.Load(ctx); err != nil {
		panic(err)
	}
}

// Bind decodes the current values into v without retaining it.
func (c *Config) Bind(v any) error {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.decode(c.values, v)
}

func (c *Config) loadSources(ctx context.Context) (map[string]any, error) {
	merged := make(map[string]any)
	for i, src := range c.sources {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		conf, err := src.Load(ctx)
		if err != nil {
			return nil, NewError(fmt.Sprintf("source[%d]", i), "load", err)
		}
		if err := mergo.Map(&merged, normalizeKeys(conf), mergo.WithOverride); err != nil {
			return nil, NewError(fmt.Sprintf("source[%d]", i), "merge", err)
		}
	}
	return merged, nil
}

func (c *Config) decode(values map[string]any, target any) error {
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:          c.tagName,
		Squash:           true,
		WeaklyTypedInput: true,
		Result:           target,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToSliceHookFunc(","),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
		),
	})
	if err != nil {
		return fmt.Errorf("failed to create decoder: %w", err)
	}
	if err := decoder.Decode(values); err != nil {
		return fmt.Errorf("failed to decode configuration: %w", err)
	}
	if err := applyDefaults(reflect.ValueOf(target).Elem()); err != nil {
		return fmt.Errorf("failed to apply defaults: %w", err)
	}
	return nil
}

// normalizeKeys lowercases keys recursively so sources merge
// case-insensitively. TOML and YAML decoders may produce map[any]any or
// typed maps; those are converted as well.
func normalizeKeys(m map[string]any) map[string]any {
	out := make(map[string]any, len(m))
	for k, v := range m {
		out[strings.ToLower(k)] = normalizeValue(v)
	}
	return out
}

func normalizeValue(v any) any {
	switch t := v.(type) {
	case map[string]any:
		return normalizeKeys(t)
	case map[any]any:
		converted := make(map[string]any, len(t))
		for k, val := range t {
			converted[cast.ToString(k)] = val
		}
		return normalizeKeys(converted)
	}
	return v
}

// applyDefaults sets fields tagged `default:"..."` that are still zero.
func applyDefaults(val reflect.Value) error {
	if val.Kind() != reflect.Struct {
		return nil
	}
	typ := val.Type()
	for i := range val.NumField() {
		field, meta := val.Field(i), typ.Field(i)
		if !field.CanSet() {
			continue
		}
		if field.Kind() == reflect.Struct && field.Type() != reflect.TypeOf(time.Time{}) {
			if err := applyDefaults(field); err != nil {
				return err
			}
			continue
		}

		def, ok := meta.Tag.Lookup("default")
		if !ok || !field.IsZero() {
			continue
		}
		if err := setDefault(field, def); err != nil {
			return fmt.Errorf("field %s: %w", meta.Name, err)
		}
	}
	return nil
}

func setDefault(field reflect.Value, def string) error {
	if field.Type() == reflect.TypeOf(time.Duration(0)) {
		d, err := cast.ToDurationE(def)
		if err != nil {
			return err
		}
		field.SetInt(int64(d))
		return nil
	}

	switch field.Kind() {
	case reflect.String:
		field.SetString(def)
	case reflect.Int, reflect.Int8, reflect.Int16, reflect.Int32, reflect.Int64:
		i, err := cast.ToInt64E(def)
		if err != nil {
			return err
		}
		field.SetInt(i)
	case reflect.Uint, reflect.Uint8, reflect.Uint16, reflect.Uint32, reflect.Uint64:
		u, err := cast.ToUint64E(def)
		if err != nil {
			return err
		}
		field.SetUint(u)
	case reflect.Float32, reflect.Float64:
		f, err := cast.ToFloat64E(def)
		if err != nil {
			return err
		}
		field.SetFloat(f)
	case reflect.Bool:
		b, err := cast.ToBoolE(def)
		if err != nil {
			return err
		}
		field.SetBool(b)
	case reflect.Slice:
		if field.Type().Elem().Kind() != reflect.String {
			return fmt.Errorf("unsupported slice type %s for default tag", field.Type())
		}
		field.Set(reflect.ValueOf(cast.ToStringSlice(strings.Split(def, ","))))
	default:
		return fmt.Errorf("unsupported type %s for default tag", field.Kind())
	}
	return nil
}
