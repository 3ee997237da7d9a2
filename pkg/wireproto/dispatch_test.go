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

package wireproto

import (
	"context"
	"encoding/json"
	"testing"
	"time"
)

func TestKernel_DispatchRoutesToHandler(t *testing.T) {
	k := NewKernel()
	k.Handle(KernelInfoRequest, func(ctx context.Context, req *Message) (*Message, error) {
		return Reply(req, KernelInfoReply, map[string]string{"implementation": "agentkit"})
	})

	req := &Message{Header: Header{MsgID: "1", MsgType: KernelInfoRequest, Session: "s1", Date: time.Now(), Version: "5.3"}}
	reply, err := k.Dispatch(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	if reply.ParentHeader == nil || reply.ParentHeader.MsgID != "1" {
		t.Fatalf("expected reply to copy parent header, got %+v", reply.ParentHeader)
	}
	if reply.Header.MsgType != KernelInfoReply {
		t.Fatalf("got %v", reply.Header.MsgType)
	}
}

func TestKernel_UnhandledExecuteRequestReturnsAborted(t *testing.T) {
	k := NewKernel()
	req := &Message{Header: Header{MsgID: "2", MsgType: ExecuteRequest, Session: "s1", Date: time.Now(), Version: "5.3"}}
	reply, err := k.Dispatch(context.Background(), req)
	if err != nil {
		t.Fatal(err)
	}
	var content ExecuteReplyContent
	if err := json.Unmarshal(reply.Content, &content); err != nil {
		t.Fatal(err)
	}
	if content.Status != StatusAborted {
		t.Fatalf("expected aborted status, got %v", content.Status)
	}
}

func TestKernel_UnhandledNonExecuteReturnsNotFound(t *testing.T) {
	k := NewKernel()
	req := &Message{Header: Header{MsgID: "3", MsgType: CompleteRequest, Session: "s1", Date: time.Now(), Version: "5.3"}}
	if _, err := k.Dispatch(context.Background(), req); err == nil {
		t.Fatal("expected error for unhandled non-execute message type")
	}
}
