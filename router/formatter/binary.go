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
	"errors"
	"fmt"

	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"

	"rivaas.dev/web/router"
)

// ErrNotProtoMessage is returned by the Protobuf formatter when the data
// does not implement proto.Message.
var ErrNotProtoMessage = errors.New("formatter: data is not a proto.Message")

// MsgPack encodes data with vmihailenco/msgpack. Struct fields are named
// after their json tags so both encodings share one field naming.
type MsgPack struct{}

// NewMsgPack creates a MessagePack formatter.
func NewMsgPack() *MsgPack { return &MsgPack{} }

// MediaType implements Formatter.
func (*MsgPack) MediaType() string { return "application/msgpack" }

// Format implements Formatter.
func (*MsgPack) Format(resp *router.Response) error {
	var buf bytes.Buffer
	enc := msgpack.NewEncoder(&buf)
	enc.SetCustomStructTag("json")
	if err := enc.Encode(resp.Data); err != nil {
		return fmt.Errorf("formatter: msgpack encoding failed for type %T: %w", resp.Data, err)
	}
	return commit(resp, "application/msgpack", buf.Bytes())
}

// Protobuf encodes proto.Message data in the binary wire format.
type Protobuf struct{}

// NewProtobuf creates a Protocol Buffers formatter.
func NewProtobuf() *Protobuf { return &Protobuf{} }

// MediaType implements Formatter.
func (*Protobuf) MediaType() string { return "application/x-protobuf" }

// Format implements Formatter.
func (*Protobuf) Format(resp *router.Response) error {
	msg, ok := resp.Data.(proto.Message)
	if !ok {
		return fmt.Errorf("%w: got %T", ErrNotProtoMessage, resp.Data)
	}
	out, err := proto.Marshal(msg)
	if err != nil {
		return fmt.Errorf("formatter: protobuf encoding failed for type %T: %w", resp.Data, err)
	}
	return commit(resp, "application/x-protobuf", out)
}
