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

	"github.com/goccy/go-json"

	"rivaas.dev/web/router"
)

// Render formats err with f and encodes the body as JSON into a response.
// A body that cannot be encoded degrades to a plain-text 500.
func Render(f Formatter, req *http.Request, err error) *router.Response {
	formatted := f.Format(req, err)

	status := formatted.Status
	if status == 0 {
		status = http.StatusInternalServerError
	}

	resp := router.NewResponse(status)
	for name, values := range formatted.Headers {
		for _, v := range values {
			resp.Header().Add(name, v)
		}
	}

	if formatted.Body == nil {
		return resp
	}
	body, marshalErr := json.Marshal(formatted.Body)
	if marshalErr != nil {
		fallback := router.NewResponse(http.StatusInternalServerError).
			WithHeader("Content-Type", "text/plain; charset=utf-8")
		_, _ = fallback.WriteString(http.StatusText(http.StatusInternalServerError))
		return fallback
	}

	resp.Header().Set("Content-Type", formatted.ContentType)
	_, _ = resp.Write(body)
	return resp
}

// Handler adapts f to router.HTTPHandler.
func Handler(f Formatter) router.ErrorHandler {
	return func(w http.ResponseWriter, r *http.Request, err error) {
		_ = Render(f, r, err).Emit(w)
	}
}
