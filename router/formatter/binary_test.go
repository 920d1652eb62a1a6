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
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/vmihailenco/msgpack/v5"
	"google.golang.org/protobuf/proto"
	"google.golang.org/protobuf/types/known/wrapperspb"

	"rivaas.dev/web/router"
)

func TestMsgPack(t *testing.T) {
	t.Parallel()

	resp := Data(http.StatusOK, book{ID: 3, Title: "Emma"})
	require.NoError(t, NewMsgPack().Format(resp))
	assert.Equal(t, "application/msgpack", resp.Header().Get("Content-Type"))

	var out map[string]any
	require.NoError(t, msgpack.Unmarshal(resp.Body(), &out))
	assert.Equal(t, "Emma", out["title"])
	assert.Contains(t, out, "id")
}

func TestProtobuf(t *testing.T) {
	t.Parallel()

	resp := Data(http.StatusOK, wrapperspb.String("hello"))
	require.NoError(t, NewProtobuf().Format(resp))
	assert.Equal(t, "application/x-protobuf", resp.Header().Get("Content-Type"))

	var out wrapperspb.StringValue
	require.NoError(t, proto.Unmarshal(resp.Body(), &out))
	assert.Equal(t, "hello", out.GetValue())
}

func TestProtobuf_RejectsPlainValues(t *testing.T) {
	t.Parallel()

	resp := Data(http.StatusOK, book{ID: 1})
	err := NewProtobuf().Format(resp)
	require.ErrorIs(t, err, ErrNotProtoMessage)
	assert.Zero(t, resp.BodyLen())
}

func TestNegotiator_BinaryFormats(t *testing.T) {
	t.Parallel()

	n := New(NewJSON(), NewMsgPack(), NewProtobuf())
	d := router.MustNewDispatcher([]router.Middleware{n, dataHandler(wrapperspb.Int64(42))})

	req := httptest.NewRequest(http.MethodGet, "/", nil)
	req.Header.Set("Accept", "application/x-protobuf")
	resp, err := d.Handle(req)
	require.NoError(t, err)
	assert.Equal(t, "application/x-protobuf", resp.Header().Get("Content-Type"))

	var out wrapperspb.Int64Value
	require.NoError(t, proto.Unmarshal(resp.Body(), &out))
	assert.Equal(t, int64(42), out.GetValue())
}
