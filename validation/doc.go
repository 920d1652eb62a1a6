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

// Package validation checks decoded request data.
//
// Two strategies are available. Struct tags are evaluated with
// go-playground/validator:
//
//	type CreateBook struct {
//	    Title string `json:"title" validate:"required,max=200"`
//	    Year  int    `json:"year" validate:"gte=1450"`
//	}
//
//	v := validation.MustNew()
//	err := v.Validate(&book)
//
// Arbitrary JSON documents are checked against a JSON Schema:
//
//	s := validation.MustCompileSchema("book.json", schemaBytes)
//	err := s.Validate(doc)
//
// Both report failures as [*Error], which lists the failing fields and
// renders as 422 Unprocessable Entity.
package validation
