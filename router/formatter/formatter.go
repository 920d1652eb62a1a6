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

package formatter

import (
	"bytes"
	"encoding/xml"
	"fmt"
	"strings"

	"github.com/goccy/go-json"
	"gopkg.in/yaml.v3"

	"rivaas.dev/web/router"
)

// Formatter writes the Data of a response into its body.
type Formatter interface {
	// MediaType is the media type offered during negotiation.
	MediaType() string

	// Format encodes resp.Data into the body and sets Content-Type.
	// The body is left untouched when encoding fails.
	Format(resp *router.Response) error
}

// Data creates a response whose payload is serialized later by a Formatter.
func Data(status int, data any) *router.Response {
	resp := router.NewResponse(status)
	resp.Data = data
	return resp
}

// JSON encodes data with goccy/go-json.
type JSON struct {
	contentType string
	indent      string
	escapeHTML  bool
}

// NewJSON creates a JSON formatter. HTML characters are not escaped.
func NewJSON() *JSON {
	return &JSON{contentType: "application/json; charset=utf-8"}
}

// WithContentType returns a copy answering with a different Content-Type.
func (f *JSON) WithContentType(contentType string) *JSON {
	c := *f
	c.contentType = contentType
	return &c
}

// WithIndent returns a copy that pretty-prints with indent.
func (f *JSON) WithIndent(indent string) *JSON {
	c := *f
	c.indent = indent
	return &c
}

// WithEscapeHTML returns a copy that escapes <, > and &.
func (f *JSON) WithEscapeHTML(escape bool) *JSON {
	c := *f
	c.escapeHTML = escape
	return &c
}

// MediaType implements Formatter.
func (f *JSON) MediaType() string { return mediaTypeOf(f.contentType) }

// Format implements Formatter.
func (f *JSON) Format(resp *router.Response) error {
	var buf bytes.Buffer
	enc := json.NewEncoder(&buf)
	enc.SetEscapeHTML(f.escapeHTML)
	if f.indent != "" {
		enc.SetIndent("", f.indent)
	}
	if err := enc.Encode(resp.Data); err != nil {
		return fmt.Errorf("formatter: JSON encoding failed for type %T: %w", resp.Data, err)
	}
	return commit(resp, f.contentType, buf.Bytes())
}

// XML encodes data with encoding/xml and prepends the XML declaration.
type XML struct {
	contentType string
}

// NewXML creates an XML formatter.
func NewXML() *XML {
	return &XML{contentType: "application/xml; charset=utf-8"}
}

// MediaType implements Formatter.
func (f *XML) MediaType() string { return mediaTypeOf(f.contentType) }

// Format implements Formatter.
func (f *XML) Format(resp *router.Response) error {
	out, err := xml.Marshal(resp.Data)
	if err != nil {
		return fmt.Errorf("formatter: XML encoding failed for type %T: %w", resp.Data, err)
	}
	return commit(resp, f.contentType, append([]byte(xml.Header), out...))
}

// YAML encodes data with gopkg.in/yaml.v3.
type YAML struct {
	contentType string
}

// NewYAML creates a YAML formatter.
func NewYAML() *YAML {
	return &YAML{contentType: "application/yaml; charset=utf-8"}
}

// MediaType implements Formatter.
func (f *YAML) MediaType() string { return mediaTypeOf(f.contentType) }

// Format implements Formatter.
func (f *YAML) Format(resp *router.Response) (err error) {
	// yaml.v3 panics on values it cannot represent, such as channels.
	defer func() {
		if rec := recover(); rec != nil {
			err = fmt.Errorf("formatter: YAML encoding failed for type %T: %v", resp.Data, rec)
		}
	}()

	out, marshalErr := yaml.Marshal(resp.Data)
	if marshalErr != nil {
		return fmt.Errorf("formatter: YAML encoding failed for type %T: %w", resp.Data, marshalErr)
	}
	return commit(resp, f.contentType, out)
}

// Text writes fmt.Sprint of the data.
type Text struct{}

// NewText creates a plain text formatter.
func NewText() *Text { return &Text{} }

// MediaType implements Formatter.
func (*Text) MediaType() string { return "text/plain" }

// Format implements Formatter.
func (*Text) Format(resp *router.Response) error {
	return commit(resp, "text/plain; charset=utf-8", []byte(fmt.Sprint(resp.Data)))
}

func commit(resp *router.Response, contentType string, body []byte) error {
	resp.ResetBody()
	if _, err := resp.Write(body); err != nil {
		return err
	}
	resp.Header().Set("Content-Type", contentType)
	return nil
}

func mediaTypeOf(contentType string) string {
	mediaType, _, _ := strings.Cut(contentType, ";")
	return strings.TrimSpace(mediaType)
}
