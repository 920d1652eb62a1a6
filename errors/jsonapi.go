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

package errors

import (
	"net/http"
	"strconv"
	"strings"

	"github.com/goccy/go-json"
)

// JSONAPI formats errors as JSON:API error objects.
// See https://jsonapi.org/format/#errors.
type JSONAPI struct {
	// StatusResolver overrides StatusOf.
	StatusResolver func(err error) int
}

type jsonAPIError struct {
	ID     string         `json:"id,omitempty"`
	Status string         `json:"status,omitempty"`
	Code   string         `json:"code,omitempty"`
	Title  string         `json:"title,omitempty"`
	Detail string         `json:"detail,omitempty"`
	Source *jsonAPISource `json:"source,omitempty"`
	Meta   map[string]any `json:"meta,omitempty"`
}

type jsonAPISource struct {
	Pointer   string `json:"pointer,omitempty"`
	Parameter string `json:"parameter,omitempty"`
	Header    string `json:"header,omitempty"`
}

type jsonAPIErrorResponse struct {
	Errors []jsonAPIError `json:"errors"`
}

// MediaType returns application/vnd.api+json.
func (f *JSONAPI) MediaType() string {
	return "application/vnd.api+json"
}

// Format converts err into a JSON:API error document. Details that are a
// list of field errors ({"path", "code", "message", "meta"}) become one
// error object each, with the path turned into a JSON Pointer.
func (f *JSONAPI) Format(_ *http.Request, err error) Response {
	status := resolveStatus(f.StatusResolver, err)
	code, _ := codeOf(err)

	base := jsonAPIError{
		Status: strconv.Itoa(status),
		Title:  http.StatusText(status),
		Detail: err.Error(),
		Code:   code,
	}

	var apiErrors []jsonAPIError
	if details, ok := detailsOf(err); ok {
		apiErrors = fieldErrors(base, details)
		if len(apiErrors) == 0 {
			generic := base
			generic.Meta = map[string]any{"details": details}
			apiErrors = []jsonAPIError{generic}
		}
	} else {
		apiErrors = []jsonAPIError{base}
	}

	for i := range apiErrors {
		apiErrors[i].ID = generateErrorID()
	}

	return Response{
		Status:      status,
		ContentType: "application/vnd.api+json; charset=utf-8",
		Body:        jsonAPIErrorResponse{Errors: apiErrors},
	}
}

// fieldErrors converts a list of field errors through their JSON form so
// that any struct with matching JSON names is understood.
func fieldErrors(base jsonAPIError, details any) []jsonAPIError {
	raw, err := json.Marshal(details)
	if err != nil {
		return nil
	}
	var fields []map[string]any
	if err := json.Unmarshal(raw, &fields); err != nil {
		return nil
	}

	out := make([]jsonAPIError, 0, len(fields))
	for _, field := range fields {
		apiErr := base
		if path, ok := field["path"].(string); ok && path != "" {
			apiErr.Source = &jsonAPISource{Pointer: convertPathToPointer(path)}
		}
		if code, ok := field["code"].(string); ok && code != "" {
			apiErr.Code = code
		}
		if message, ok := field["message"].(string); ok && message != "" {
			apiErr.Detail = message
		}
		if meta, ok := field["meta"].(map[string]any); ok && len(meta) > 0 {
			apiErr.Meta = meta
		}
		out = append(out, apiErr)
	}
	return out
}

// convertPathToPointer converts "items.0.price" to
// "/data/attributes/items/0/price".
func convertPathToPointer(path string) string {
	if path == "" {
		return ""
	}
	return "/data/attributes/" + strings.ReplaceAll(path, ".", "/")
}
