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

package binding

import (
	"io"
	"mime"
	"net/http"
	"net/url"
	"reflect"
	"strings"
	"time"

	"github.com/go-viper/mapstructure/v2"
	"google.golang.org/protobuf/proto"

	"rivaas.dev/web/router/middleware/routing"
)

// Body decodes the request body into a new T.
// T may be a pointer to a protobuf message type.
//
//	book, err := binding.Body[CreateBook](r, binding.WithValidator(v))
func Body[T any](r *http.Request, opts ...Option) (T, error) {
	var out T
	target := any(&out)
	// *pb.Message: allocate the message and decode into it.
	if _, ok := any(out).(proto.Message); ok {
		out = reflect.New(reflect.TypeOf(out).Elem()).Interface().(T) //nolint:forcetypeassert // same type
		target = out
	}
	err := BodyTo(r, target, opts...)
	return out, err
}

// BodyTo decodes the request body into out.
func BodyTo(r *http.Request, out any, opts ...Option) error {
	cfg := newConfig(opts)
	if err := bodyTo(r, out, cfg); err != nil {
		return err
	}
	return validate(out, cfg)
}

func bodyTo(r *http.Request, out any, cfg *config) error {
	ct := r.Header.Get("Content-Type")
	mediaType, _, err := mime.ParseMediaType(ct)
	if err != nil {
		return &UnsupportedMediaTypeError{MediaType: ct}
	}
	decode, ok := decoderFor(strings.ToLower(mediaType))
	if !ok {
		return &UnsupportedMediaTypeError{MediaType: mediaType}
	}

	body, err := readBody(r, cfg.maxBytes)
	if err != nil {
		return err
	}
	if len(body) == 0 {
		return &BindError{Source: SourceBody, Err: ErrEmptyBody}
	}
	if err := decode(body, out, cfg); err != nil {
		return &BindError{Source: SourceBody, Err: err}
	}
	return nil
}

func readBody(r *http.Request, limit int64) ([]byte, error) {
	if r.Body == nil || r.Body == http.NoBody {
		return nil, nil
	}
	defer r.Body.Close()

	var src io.Reader = r.Body
	if limit > 0 {
		src = io.LimitReader(r.Body, limit+1)
	}
	body, err := io.ReadAll(src)
	if err != nil {
		// Errors that know their status, such as body limits, pass through.
		if _, ok := err.(interface{ HTTPStatus() int }); ok {
			return nil, err
		}
		return nil, &BindError{Source: SourceBody, Err: err}
	}
	if limit > 0 && int64(len(body)) > limit {
		return nil, &TooLargeError{Limit: limit}
	}
	return body, nil
}

// Query binds the query string into a new T using `query` tags.
func Query[T any](r *http.Request, opts ...Option) (T, error) {
	var out T
	err := QueryTo(r, &out, opts...)
	return out, err
}

// QueryTo binds the query string into out.
func QueryTo(r *http.Request, out any, opts ...Option) error {
	cfg := newConfig(opts)
	if err := decodeValues(SourceQuery, "query", valuesMap(r.URL.Query()), out); err != nil {
		return err
	}
	return validate(out, cfg)
}

// Path binds matched route parameters into a new T using `path` tags.
func Path[T any](r *http.Request, opts ...Option) (T, error) {
	var out T
	err := PathTo(r, &out, opts...)
	return out, err
}

// PathTo binds matched route parameters into out.
func PathTo(r *http.Request, out any, opts ...Option) error {
	cfg := newConfig(opts)
	if err := decodeValues(SourcePath, "path", paramsMap(routing.Params(r)), out); err != nil {
		return err
	}
	return validate(out, cfg)
}

// Header binds request headers into a new T using `header` tags.
// Header names match case-insensitively.
func Header[T any](r *http.Request, opts ...Option) (T, error) {
	var out T
	err := HeaderTo(r, &out, opts...)
	return out, err
}

// HeaderTo binds request headers into out.
func HeaderTo(r *http.Request, out any, opts ...Option) error {
	cfg := newConfig(opts)
	if err := decodeValues(SourceHeader, "header", valuesMap(url.Values(r.Header)), out); err != nil {
		return err
	}
	return validate(out, cfg)
}

// Request binds route parameters, the query string, headers and, when the
// request has one, the body into a new T, then validates it once.
// Later sources overwrite earlier ones for fields tagged in both.
func Request[T any](r *http.Request, opts ...Option) (T, error) {
	var out T
	err := RequestTo(r, &out, opts...)
	return out, err
}

// RequestTo is Request for an existing value.
func RequestTo(r *http.Request, out any, opts ...Option) error {
	cfg := newConfig(opts)
	if err := decodeValues(SourcePath, "path", paramsMap(routing.Params(r)), out); err != nil {
		return err
	}
	if err := decodeValues(SourceQuery, "query", valuesMap(r.URL.Query()), out); err != nil {
		return err
	}
	if err := decodeValues(SourceHeader, "header", valuesMap(url.Values(r.Header)), out); err != nil {
		return err
	}
	if r.Body != nil && r.Body != http.NoBody && r.ContentLength != 0 {
		if err := bodyTo(r, out, cfg); err != nil {
			return err
		}
	}
	return validate(out, cfg)
}

func validate(out any, cfg *config) error {
	if cfg.validator == nil {
		return nil
	}
	return cfg.validator.Validate(out)
}

func decodeValues(src Source, tag string, values map[string]any, out any) error {
	if len(values) == 0 {
		return nil
	}
	dec, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		TagName:              tag,
		WeaklyTypedInput:     true,
		IgnoreUntaggedFields: true,
		MatchName:            strings.EqualFold,
		Result:               out,
		DecodeHook: mapstructure.ComposeDecodeHookFunc(
			mapstructure.StringToTimeDurationHookFunc(),
			mapstructure.StringToTimeHookFunc(time.RFC3339),
			mapstructure.StringToSliceHookFunc(","),
		),
	})
	if err != nil {
		return &BindError{Source: src, Err: err}
	}
	if err := dec.Decode(values); err != nil {
		return &BindError{Source: src, Err: err}
	}
	return nil
}

// valuesMap keeps single values as strings so they bind to scalars, and
// repeated values as slices.
func valuesMap(v url.Values) map[string]any {
	m := make(map[string]any, len(v))
	for k, vs := range v {
		switch len(vs) {
		case 0:
		case 1:
			m[k] = vs[0]
		default:
			m[k] = vs
		}
	}
	return m
}

func paramsMap(p map[string]string) map[string]any {
	m := make(map[string]any, len(p))
	for k, v := range p {
		m[k] = v
	}
	return m
}
