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

package middleware

import (
	"errors"
	"net/http"

	"rivaas.dev/web/router"
)

// Outcome derives the status and body size the client will see for the
// result of a handler. Errors carrying an HTTPStatus method report that
// status, other errors and nil responses count as 500. A zero status code
// means 200.
func Outcome(resp *router.Response, err error) (status, size int) {
	if err != nil {
		var withStatus interface{ HTTPStatus() int }
		if errors.As(err, &withStatus) {
			return withStatus.HTTPStatus(), 0
		}
		return http.StatusInternalServerError, 0
	}
	if resp == nil {
		return http.StatusInternalServerError, 0
	}
	status = resp.StatusCode
	if status == 0 {
		status = http.StatusOK
	}
	return status, resp.BodyLen()
}
