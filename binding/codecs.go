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
	"bytes"
	"encoding/xml"
	"errors"
	"fmt"
	"strings"

	"github.com/BurntSushi/toml"
	"github.com/goccy/go-json"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"
	"gopkg.in/yaml.v3"
)

type decodeFunc func(body []byte, out any, cfg *config) error

// decoderFor returns the decoder for a media type without parameters.
func decoderFor(mediaType string) (decodeFunc, bool) {
	switch mediaType {
	case "application/json":
		return decodeJSON, true
	case "application/xml", "text/xml":
		return decodeXML, true
	case "application/yaml", "application/x-yaml", "text/yaml":
		return decodeYAML, true
	case "application/toml":
		return decodeTOML, true
	case "application/msgpack", "application/x-msgpack", "application/vnd.msgpack":
		return decodeMsgPack, true
	case "application/x-protobuf", "application/protobuf", "application/vnd.google.protobuf":
		return decodeProto, true
	}
	switch {
	case strings.HasSuffix(mediaType, "+json"):
		return decodeJSON, true
	case strings.HasSuffix(mediaType, "+xml"):
		return decodeXML, true
	}
	return nil, false
}

func decodeJSON(body []byte, out any, cfg *config) error {
	dec := json.NewDecoder(bytes.NewReader(body))
	if cfg.disallowUnknown {
		dec.DisallowUnknownFields()
	}
	if err := dec.Decode(out); err != nil {
		return err
	}
	if dec.More() {
		return errors.New("unexpected data after top-level value")
	}
	return nil
}

func decodeXML(body []byte, out any, _ *config) error {
	return xml.Unmarshal(body, out)
}

func decodeYAML(body []byte, out any, cfg *config) error {
	dec := yaml.NewDecoder(bytes.NewReader(body))
	dec.KnownFields(cfg.disallowUnknown)
	return dec.Decode(out)
}

func decodeTOML(body []byte, out any, cfg *config) error {
	md, err := toml.Decode(string(body), out)
	if err != nil {
		return err
	}
	if cfg.disallowUnknown {
		if undecoded := md.Undecoded(); len(undecoded) > 0 {
			keys := make([]string, len(undecoded))
			for i, k := range undecoded {
				keys[i] = k.String()
			}
			return fmt.Errorf("unknown keys: %s", strings.Join(keys, ", "))
		}
	}
	return nil
}

func decodeMsgPack(body []byte, out any, cfg *config) error {
	dec := msgpack.NewDecoder(bytes.NewReader(body))
	dec.DisallowUnknownFields(cfg.disallowUnknown)
	return dec.Decode(out)
}

// decodeProto only checks top-level unknown fields; protobuf itself keeps
// them rather than failing.
func decodeProto(body []byte, out any, cfg *config) error {
	msg, ok := out.(proto.Message)
	if !ok {
		return fmt.Errorf("%w: %T", ErrNotProtoMessage, out)
	}
	if err := proto.Unmarshal(body, msg); err != nil {
		return err
	}
	if cfg.disallowUnknown && len(msg.ProtoReflect().GetUnknown()) > 0 {
		return errors.New("unknown protobuf fields")
	}
	return nil
}
