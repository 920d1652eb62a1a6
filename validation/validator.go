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

package validation

import (
	"errors"
	"fmt"
	"reflect"
	"regexp"
	"strings"

	"github.com/go-playground/validator/v10"
)

// Option configures a Validator.
type Option func(*config)

type config struct {
	maxErrors  int
	redact     func(path string) bool
	customTags map[string]validator.Func
}

// WithMaxErrors caps the number of reported fields. Zero reports all.
func WithMaxErrors(n int) Option {
	return func(cfg *config) {
		cfg.maxErrors = max(0, n)
	}
}

// WithRedactor hides the values of fields for which fn returns true.
//
// Example:
//
//	validation.WithRedactor(func(path string) bool {
//	    return strings.Contains(path, "password")
//	})
func WithRedactor(fn func(path string) bool) Option {
	return func(cfg *config) {
		cfg.redact = fn
	}
}

// WithCustomTag registers a validation tag.
//
// Example:
//
//	validation.WithCustomTag("isbn", func(fl validator.FieldLevel) bool {
//	    return isbnPattern.MatchString(fl.Field().String())
//	})
func WithCustomTag(name string, fn validator.Func) Option {
	return func(cfg *config) {
		cfg.customTags[name] = fn
	}
}

// Validator evaluates `validate` struct tags. It is safe for concurrent use.
type Validator struct {
	cfg      *config
	validate *validator.Validate
}

var (
	reSlug     = regexp.MustCompile(`^[a-z0-9]+(?:-[a-z0-9]+)*$`)
	reUsername = regexp.MustCompile(`^[a-zA-Z0-9_]{3,20}$`)
)

// New creates a Validator. Besides the go-playground tags it understands
// "slug" and "username". Field paths use json tag names.
func New(opts ...Option) (*Validator, error) {
	cfg := &config{customTags: make(map[string]validator.Func)}
	for _, opt := range opts {
		opt(cfg)
	}

	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(jsonName)

	builtin := map[string]validator.Func{
		"slug":     func(fl validator.FieldLevel) bool { return reSlug.MatchString(fl.Field().String()) },
		"username": func(fl validator.FieldLevel) bool { return reUsername.MatchString(fl.Field().String()) },
	}
	for name, fn := range builtin {
		if err := v.RegisterValidation(name, fn); err != nil {
			return nil, fmt.Errorf("validation: register %q: %w", name, err)
		}
	}
	for name, fn := range cfg.customTags {
		if err := v.RegisterValidation(name, fn); err != nil {
			return nil, fmt.Errorf("validation: register %q: %w", name, err)
		}
	}

	return &Validator{cfg: cfg, validate: v}, nil
}

// MustNew is like New but panics on error.
func MustNew(opts ...Option) *Validator {
	v, err := New(opts...)
	if err != nil {
		panic(err)
	}
	return v
}

// Validate checks the tags of a struct or pointer to struct.
// Failures are reported as [*Error].
func (v *Validator) Validate(value any) error {
	if value == nil {
		return ErrNilValue
	}
	rv := reflect.ValueOf(value)
	if rv.Kind() == reflect.Pointer && rv.IsNil() {
		return ErrNilValue
	}

	err := v.validate.Struct(value)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return fmt.Errorf("validation: %w", err)
	}
	return v.format(verrs)
}

func (v *Validator) format(errs validator.ValidationErrors) *Error {
	var result Error
	for _, e := range errs {
		path := e.Namespace()
		// Drop the top level struct name.
		if _, rest, ok := strings.Cut(path, "."); ok {
			path = rest
		}

		msg := tagMessage(e)
		value := fmt.Sprint(e.Value())
		if v.cfg.redact != nil && v.cfg.redact(path) {
			msg = strings.ReplaceAll(msg, value, "***REDACTED***")
			value = "***REDACTED***"
		}

		result.Add(path, "tag."+e.Tag(), msg, map[string]any{
			"tag":   e.Tag(),
			"param": e.Param(),
			"value": value,
		})
		if v.cfg.maxErrors > 0 && len(result.Fields) >= v.cfg.maxErrors {
			result.Truncated = len(errs) > len(result.Fields)
			break
		}
	}
	result.Sort()
	return &result
}

func jsonName(fld reflect.StructField) string {
	name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
	switch name {
	case "-":
		return ""
	case "":
		return fld.Name
	}
	return name
}

func tagMessage(e validator.FieldError) string {
	isString := e.Kind() == reflect.String
	switch e.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "url":
		return "must be a valid URL"
	case "min", "gte":
		if isString {
			return fmt.Sprintf("must be at least %s characters", e.Param())
		}
		return fmt.Sprintf("must be at least %s", e.Param())
	case "max", "lte":
		if isString {
			return fmt.Sprintf("must be at most %s characters", e.Param())
		}
		return fmt.Sprintf("must be at most %s", e.Param())
	case "oneof":
		return fmt.Sprintf("must be one of [%s]", e.Param())
	case "slug":
		return "must be lowercase words separated by hyphens"
	case "username":
		return "must be 3 to 20 letters, digits or underscores"
	}
	return fmt.Sprintf("failed validation (%s)", e.Tag())
}
