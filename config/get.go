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
	"maps"
	"strings"
	"time"

	"github.com/spf13/cast"
)

// Values returns a copy of the top-level merged values.
func (c *Config) Values() map[string]any {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return maps.Clone(c.values)
}

// Get returns the value at a dot-separated, case-insensitive key, or nil.
func (c *Config) Get(key string) any {
	if c == nil || key == "" {
		return nil
	}

	c.mu.RLock()
	defer c.mu.RUnlock()

	key = strings.ToLower(key)
	if v, ok := c.values[key]; ok {
		return v
	}

	var current any = c.values
	for _, segment := range strings.Split(key, ".") {
		m, ok := current.(map[string]any)
		if !ok {
			return nil
		}
		if current, ok = m[segment]; !ok {
			return nil
		}
	}
	return current
}

// Has reports whether key is set.
func (c *Config) Has(key string) bool {
	return c.Get(key) != nil
}

// String returns the value at key as a string.
func (c *Config) String(key string) string { return cast.ToString(c.Get(key)) }

// Int returns the value at key as an int.
func (c *Config) Int(key string) int { return cast.ToInt(c.Get(key)) }

// Int64 returns the value at key as an int64.
func (c *Config) Int64(key string) int64 { return cast.ToInt64(c.Get(key)) }

// Float64 returns the value at key as a float64.
func (c *Config) Float64(key string) float64 { return cast.ToFloat64(c.Get(key)) }

// Bool returns the value at key as a bool.
func (c *Config) Bool(key string) bool { return cast.ToBool(c.Get(key)) }

// Duration returns the value at key as a time.Duration ("5s", 5000000000).
func (c *Config) Duration(key string) time.Duration { return cast.ToDuration(c.Get(key)) }

// StringSlice returns the value at key as a []string. A string value is
// split on commas.
func (c *Config) StringSlice(key string) []string {
	if s, ok := c.Get(key).(string); ok {
		parts := strings.Split(s, ",")
		for i := range parts {
			parts[i] = strings.TrimSpace(parts[i])
		}
		return parts
	}
	return cast.ToStringSlice(c.Get(key))
}

// StringMap returns the section at key.
func (c *Config) StringMap(key string) map[string]any { return cast.ToStringMap(c.Get(key)) }

// StringOr returns the string at key, or def when unset or not convertible.
func (c *Config) StringOr(key, def string) string { return GetOr(c, key, def) }

// IntOr returns the int at key, or def.
func (c *Config) IntOr(key string, def int) int { return GetOr(c, key, def) }

// BoolOr returns the bool at key, or def.
func (c *Config) BoolOr(key string, def bool) bool { return GetOr(c, key, def) }

// DurationOr returns the duration at key, or def.
func (c *Config) DurationOr(key string, def time.Duration) time.Duration { return GetOr(c, key, def) }

// Get returns the value at key converted to T, or the zero value.
//
//	port := config.Get[int](cfg, "server.port")
func Get[T any](c *Config, key string) T {
	v, _ := GetE[T](c, key)
	return v
}

// GetOr returns the value at key converted to T, or def.
func GetOr[T any](c *Config, key string, def T) T {
	v, err := GetE[T](c, key)
	if err != nil {
		return def
	}
	return v
}

// GetE returns the value at key converted to T. It fails when the key is
// unset or the value cannot be converted.
func GetE[T any](c *Config, key string) (T, error) {
	var zero T
	raw := c.Get(key)
	if raw == nil {
		return zero, &Error{Source: "get", Field: key, Operation: "lookup", Err: ErrKeyNotFound}
	}
	if v, ok := raw.(T); ok {
		return v, nil
	}

	var (
		out any
		err error
	)
	switch any(zero).(type) {
	case string:
		out, err = cast.ToStringE(raw)
	case int:
		out, err = cast.ToIntE(raw)
	case int64:
		out, err = cast.ToInt64E(raw)
	case uint:
		out, err = cast.ToUintE(raw)
	case float64:
		out, err = cast.ToFloat64E(raw)
	case bool:
		out, err = cast.ToBoolE(raw)
	case time.Duration:
		out, err = cast.ToDurationE(raw)
	case time.Time:
		out, err = cast.ToTimeE(raw)
	case []string:
		out, err = cast.ToStringSliceE(raw)
	case []int:
		out, err = cast.ToIntSliceE(raw)
	case map[string]any:
		out, err = cast.ToStringMapE(raw)
	case map[string]string:
		out, err = cast.ToStringMapStringE(raw)
	default:
		return zero, &Error{Source: "get", Field: key, Operation: "convert", Err: ErrUnsupportedType}
	}
	if err != nil {
		return zero, &Error{Source: "get", Field: key, Operation: "convert", Err: err}
	}
	return out.(T), nil
}
