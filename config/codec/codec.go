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

// Package codec decodes configuration content into nested maps.
//
// Codecs register themselves by Type. The config package picks one from a
// file extension (".yaml", ".yml", ".toml", ".json") or from an explicit
// Type.
package codec

import (
	"fmt"
	"sync"
)

// Type identifies a codec.
type Type string

// Decoder converts encoded content into the value pointed to by v.
// Implementations must be safe for concurrent use.
type Decoder interface {
	Decode(data []byte, v any) error
}

// DecoderFunc adapts a function to Decoder.
type DecoderFunc func(data []byte, v any) error

// Decode calls f(data, v).
func (f DecoderFunc) Decode(data []byte, v any) error {
	return f(data, v)
}

var (
	mu       sync.RWMutex
	decoders = map[Type]Decoder{}
)

// Register makes a decoder available under name, replacing any previous one.
func Register(name Type, decoder Decoder) {
	mu.Lock()
	defer mu.Unlock()
	decoders[name] = decoder
}

// Get returns the decoder registered under name.
func Get(name Type) (Decoder, error) {
	mu.RLock()
	defer mu.RUnlock()
	decoder, ok := decoders[name]
	if !ok {
		return nil, fmt.Errorf("codec: no decoder registered for %q", name)
	}
	return decoder, nil
}
