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

package router

import "errors"

var (
	// ErrNoMiddleware indicates that a dispatcher was created without middleware.
	ErrNoMiddleware = errors.New("dispatcher requires at least one middleware")

	// ErrNilMiddleware indicates that a nil middleware was passed to a dispatcher.
	ErrNilMiddleware = errors.New("middleware must not be nil")

	// ErrNilResponse indicates that a handler returned neither a response nor an error.
	ErrNilResponse = errors.New("handler returned a nil response")
)
