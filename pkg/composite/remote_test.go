// Copyright 2025 Kadir Pekel
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

package composite

import (
	"context"
	"encoding/json"
	"testing"

	"github.com/kadirpekel/hector/pkg/wireproto"
)

func TestRemoteAgent_InvokeRoundTripsThroughKernel(t *testing.T) {
	kernel := wireproto.NewKernel()
	kernel.Handle(wireproto.DaemonRequest, func(ctx context.Context, req *wireproto.Message) (*wireproto.Message, error) {
		var in Request
		if err := json.Unmarshal(req.Content, &in); err != nil {
			t.Fatalf("unmarshal request: %v", err)
		}
		return wireproto.Reply(req, wireproto.DaemonReply, Response{
			Payload: map[string]any{"echoed": in.Payload["x"]},
		})
	})

	remote := NewRemoteAgent("remote-1", kernel)
	resp, err := remote.Invoke(context.Background(), Request{Payload: map[string]any{"x": "hello"}})
	if err != nil {
		t.Fatalf("Invoke: %v", err)
	}
	if resp.Payload["echoed"] != "hello" {
		t.Fatalf("expected echoed payload, got %+v", resp.Payload)
	}
}

func TestRemoteAgent_InvokeErrorsWhenNoHandlerRegistered(t *testing.T) {
	remote := NewRemoteAgent("remote-2", wireproto.NewKernel())
	if _, err := remote.Invoke(context.Background(), Request{}); err == nil {
		t.Fatal("expected an error when no daemon_request handler is registered")
	}
}
