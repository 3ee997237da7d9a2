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
	"fmt"

	"github.com/google/uuid"

	"github.com/kadirpekel/hector/pkg/wireproto"
)

// RemoteAgent adapts a wireproto.Kernel to Agent, so a DelegatingAgent
// strategy can target a peer that only exposes its Invoke surface
// through the wire protocol's daemon_request/daemon_reply messages
// (spec 6's daemon_* family) instead of a direct Go call. wireproto
// itself implements no transport, so kernel is whatever is wired
// in-process here; a real deployment would put a socket between this
// Dispatch call and the kernel it answers.
type RemoteAgent struct {
	id     string
	kernel *wireproto.Kernel
}

// NewRemoteAgent builds a RemoteAgent with id, dispatching every Invoke
// through kernel as a daemon_request.
func NewRemoteAgent(id string, kernel *wireproto.Kernel) *RemoteAgent {
	return &RemoteAgent{id: id, kernel: kernel}
}

// ID satisfies Agent.
func (r *RemoteAgent) ID() string { return r.id }

// Invoke marshals req as a daemon_request's content, dispatches it
// through the kernel, and unmarshals the daemon_reply's content back
// into a Response.
func (r *RemoteAgent) Invoke(ctx context.Context, req Request) (Response, error) {
	content, err := json.Marshal(req)
	if err != nil {
		return Response{}, fmt.Errorf("composite: marshal remote request for %q: %w", r.id, err)
	}

	msg := &wireproto.Message{
		Header: wireproto.Header{
			MsgID:   uuid.NewString(),
			MsgType: wireproto.DaemonRequest,
			Session: r.id,
		},
		Content: content,
	}

	reply, err := r.kernel.Dispatch(ctx, msg)
	if err != nil {
		return Response{}, fmt.Errorf("composite: dispatch to remote agent %q: %w", r.id, err)
	}

	var resp Response
	if err := json.Unmarshal(reply.Content, &resp); err != nil {
		return Response{}, fmt.Errorf("composite: unmarshal remote response from %q: %w", r.id, err)
	}
	return resp, nil
}

var _ Agent = (*RemoteAgent)(nil)
