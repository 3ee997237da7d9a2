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

// Package wireproto implements the optional kernel-mode wire protocol:
// a Jupyter-like request/reply envelope, expressed as plain Go structs
// dispatched in-process -- no transport is implemented here, per the
// spec's "wire protocol implemented as plain Go structs + a Dispatch
// function, no transport" scoping.
package wireproto

import (
	"encoding/json"
	"time"
)

// MsgType is the closed set of recognized message types.
type MsgType string

const (
	KernelInfoRequest MsgType = "kernel_info_request"
	KernelInfoReply    MsgType = "kernel_info_reply"
	ExecuteRequest     MsgType = "execute_request"
	ExecuteReply       MsgType = "execute_reply"
	Stream             MsgType = "stream"
	DisplayData        MsgType = "display_data"
	Status             MsgType = "status"
	ShutdownRequest    MsgType = "shutdown_request"
	ShutdownReply      MsgType = "shutdown_reply"
	InterruptRequest   MsgType = "interrupt_request"
	InterruptReply     MsgType = "interrupt_reply"
	CompleteRequest    MsgType = "complete_request"
	CompleteReply      MsgType = "complete_reply"
	InspectRequest     MsgType = "inspect_request"
	InspectReply       MsgType = "inspect_reply"
	DebugRequest       MsgType = "debug_request"
	DebugReply         MsgType = "debug_reply"
	DaemonRequest      MsgType = "daemon_request"
	DaemonReply        MsgType = "daemon_reply"
)

// ExecuteStatus is execute_reply.status.
type ExecuteStatus string

const (
	StatusOK       ExecuteStatus = "ok"
	StatusError    ExecuteStatus = "error"
	StatusAborted  ExecuteStatus = "aborted"
)

// Header identifies one message.
type Header struct {
	MsgID   string    `json:"msg_id"`
	MsgType MsgType   `json:"msg_type"`
	Session string    `json:"session"`
	Date    time.Time `json:"date"`
	Version string    `json:"version"`
}

// Message is the full envelope exchanged with a kernel-mode client.
type Message struct {
	Header       Header          `json:"header"`
	ParentHeader *Header         `json:"parent_header,omitempty"`
	Metadata     map[string]any  `json:"metadata,omitempty"`
	Content      json.RawMessage `json:"content,omitempty"`

	// Identities carries transport-level routing identities (e.g. ZMQ
	// multipart frames); opaque to this package, copied onto replies.
	Identities []string `json:"-"`
}

// Reply builds a response Message that copies parent_header and routing
// identities from req, per the spec's reply-construction rule.
func Reply(req *Message, msgType MsgType, content any) (*Message, error) {
	raw, err := json.Marshal(content)
	if err != nil {
		return nil, err
	}
	return &Message{
		Header: Header{
			MsgID:   req.Header.MsgID + "-reply",
			MsgType: msgType,
			Session: req.Header.Session,
			Date:    req.Header.Date,
			Version: req.Header.Version,
		},
		ParentHeader: &req.Header,
		Content:      raw,
		Identities:   req.Identities,
	}, nil
}

// ExecuteReplyContent is execute_reply's content payload.
type ExecuteReplyContent struct {
	Status         ExecuteStatus `json:"status"`
	ExecutionCount int           `json:"execution_count"`
	ErrorName      string        `json:"ename,omitempty"`
	ErrorValue     string        `json:"evalue,omitempty"`
}

// StatusContent is a `status` message's content payload.
type StatusContent struct {
	ExecutionState string `json:"execution_state"`
}
