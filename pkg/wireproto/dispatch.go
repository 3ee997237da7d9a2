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
	"fmt"

	"github.com/kadirpekel/hector/pkg/corerr"
)

// HandlerFunc processes one request Message and returns its reply.
type HandlerFunc func(ctx context.Context, req *Message) (*Message, error)

// Kernel routes recognized message types to registered handlers. An
// unhandled execute_request gets an aborted execute_reply; any other
// unhandled type returns a NotFound error. No request is silently dropped.
type Kernel struct {
	handlers map[MsgType]HandlerFunc
	execSeq  int
}

// NewKernel builds an empty Kernel.
func NewKernel() *Kernel {
	return &Kernel{handlers: make(map[MsgType]HandlerFunc)}
}

// Handle registers fn for msgType, overwriting any previous handler.
func (k *Kernel) Handle(msgType MsgType, fn HandlerFunc) {
	k.handlers[msgType] = fn
}

// Dispatch routes req to its handler and returns the reply. Unhandled
// execute_request messages fall back to a built-in responder that
// increments the execution counter and returns an aborted status, so a
// kernel with nothing wired still answers every request it receives.
func (k *Kernel) Dispatch(ctx context.Context, req *Message) (*Message, error) {
	if h, ok := k.handlers[req.Header.MsgType]; ok {
		return h(ctx, req)
	}
	if req.Header.MsgType == ExecuteRequest {
		return k.abortedExecuteReply(req)
	}
	return nil, corerr.NotFoundf("dispatch", "no handler registered for message type %q", req.Header.MsgType)
}

func (k *Kernel) abortedExecuteReply(req *Message) (*Message, error) {
	k.execSeq++
	return Reply(req, ExecuteReply, ExecuteReplyContent{
		Status:         StatusAborted,
		ExecutionCount: k.execSeq,
		ErrorName:      "NoHandler",
		ErrorValue:     fmt.Sprintf("no handler registered for %q", req.Header.MsgType),
	})
}
