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
	"bytes"
	"errors"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"github.com/santhosh-tekuri/jsonschema/v6"
)

// Schema is a compiled JSON Schema. It is safe for concurrent use.
type Schema struct {
	id     string
	schema *jsonschema.Schema
}

// CompileSchema compiles a JSON Schema document. id names the schema in
// error messages and resolves relative references; "schema.json" is used
// when empty. Formats such as "email" are asserted.
func CompileSchema(id string, schema []byte) (*Schema, error) {
	if id == "" {
		id = "schema.json"
	}

	doc, err := jsonschema.UnmarshalJSON(bytes.NewReader(schema))
	if err != nil {
		return nil, fmt.Errorf("validation: invalid schema JSON: %w", err)
	}

	c := jsonschema.NewCompiler()
	c.AssertFormat()
	if err := c.AddResource(id, doc); err != nil {
		return nil, fmt.Errorf("validation: add schema %q: %w", id, err)
	}
	compiled, err := c.Compile(id)
	if err != nil {
		return nil, fmt.Errorf("validation: compile schema %q: %w", id, err)
	}
	return &Schema{id: id, schema: compiled}, nil
}

// MustCompileSchema is like CompileSchema but panics on error.
func MustCompileSchema(id string, schema []byte) *Schema {
	s, err := CompileSchema(id, schema)
	if err != nil {
		panic(err)
	}
	return s
}

// ID returns the schema identifier.
func (s *Schema) ID() string {
	return s.id
}

// Validate checks a decoded JSON document, as produced by unmarshalling
// into any. Failures are reported as [*Error] with one field per leaf
// violation.
func (s *Schema) Validate(doc any) error {
	// Round-trip so numbers reach the schema as json.Number.
	raw, err := json.Marshal(doc)
	if err != nil {
		return fmt.Errorf("validation: encode document: %w", err)
	}
	return s.ValidateJSON(raw)
}

// ValidateJSON validates a raw JSON document.
func (s *Schema) ValidateJSON(raw []byte) error {
	inst, err := jsonschema.UnmarshalJSON(bytes.NewReader(raw))
	if err != nil {
		return &Error{Fields: []FieldError{{Code: "schema.invalid_json", Message: err.Error()}}}
	}

	err = s.schema.Validate(inst)
	if err == nil {
		return nil
	}
	var verr *jsonschema.ValidationError
	if !errors.As(err, &verr) {
		return fmt.Errorf("validation: %w", err)
	}

	var result Error
	collectSchemaErrors(verr, &result)
	result.Sort()
	return &result
}

func collectSchemaErrors(verr *jsonschema.ValidationError, result *Error) {
	if len(verr.Causes) == 0 {
		kind := "schema"
		if verr.ErrorKind != nil {
			if kw := verr.ErrorKind.KeywordPath(); len(kw) > 0 {
				kind = strings.Join(kw, "/")
			}
		}
		result.Add(strings.Join(verr.InstanceLocation, "."), "schema."+kind, verr.Error(), map[string]any{
			"kind":       kind,
			"schema_url": verr.SchemaURL,
		})
		return
	}
	for _, cause := range verr.Causes {
		collectSchemaErrors(cause, result)
	}
}
