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

// Package binding decodes request data into Go values.
//
// Bodies are decoded according to their Content-Type:
//
//   - application/json and +json types with goccy/go-json
//   - application/xml and text/xml with encoding/xml
//   - application/yaml with gopkg.in/yaml.v3
//   - application/toml with BurntSushi/toml
//   - application/msgpack with vmihailenco/msgpack
//   - application/x-protobuf into proto.Message values
//
// Query strings, route parameters and headers are bound through struct tags
// named "query", "path" and "header". Untagged fields are left alone.
//
//	type GetBook struct {
//	    ID     int    `path:"id"`
//	    Fields []string `query:"fields"`
//	    Lang   string `header:"Accept-Language"`
//	}
//
//	in, err := binding.Request[GetBook](r)
//
// Decoding failures are reported as [*BindError] (400 Bad Request) and
// unknown content types as [*UnsupportedMediaTypeError] (415). With
// [WithValidator] the bound value is validated before it is returned.
package binding
