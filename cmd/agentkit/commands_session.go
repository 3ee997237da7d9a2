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

package main

import (
	"context"
	"encoding/json"
	"fmt"
)

// SessionCmd manages sessions and the artifacts written under them.
// Replay is not wired in this build: it needs a checkpoint encoder/decoder
// over the hook replay log, which pkg/injection.ArtifactSessionAdapter
// also leaves unimplemented for the same reason.
type SessionCmd struct {
	Create SessionCreateCmd `cmd:"" help:"Create a session."`
	List   SessionListCmd   `cmd:"" help:"List artifacts in a session."`
	Show   SessionShowCmd   `cmd:"" help:"Print one artifact's content."`
	Replay SessionReplayCmd `cmd:"" help:"Replay a session's recorded executions."`
	Delete SessionDeleteCmd `cmd:"" help:"Delete a session and its artifacts."`
	Export SessionExportCmd `cmd:"" help:"Export a session's artifact metadata as JSON."`
}

type SessionCreateCmd struct {
	Name      string `arg:"" help:"Session name."`
	CreatedBy string `arg:"" help:"Identity of the session creator."`
}

func (c *SessionCreateCmd) Run(rt *runtime) error {
	s, err := rt.artifacts.CreateSession(context.Background(), c.Name, c.CreatedBy)
	if err != nil {
		return err
	}
	fmt.Println(s.ID)
	return nil
}

type SessionListCmd struct {
	Session string `arg:"" help:"Session id."`
}

func (c *SessionListCmd) Run(rt *runtime) error {
	arts, err := rt.artifacts.ListArtifacts(context.Background(), c.Session)
	if err != nil {
		return err
	}
	for _, a := range arts {
		fmt.Printf("%s\t%s\t%d bytes\n", a.ID, a.Name, a.Size)
	}
	return nil
}

type SessionShowCmd struct {
	Session  string `arg:"" help:"Session id."`
	Artifact string `arg:"" help:"Artifact id."`
}

func (c *SessionShowCmd) Run(rt *runtime) error {
	_, data, err := rt.artifacts.GetArtifact(context.Background(), c.Session, c.Artifact)
	if err != nil {
		return err
	}
	_, err = fmt.Println(string(data))
	return err
}

type SessionReplayCmd struct {
	Session string `arg:"" help:"Session id."`
}

func (c *SessionReplayCmd) Run(rt *runtime) error {
	return fmt.Errorf("session replay is not wired in this build: needs a checkpoint encoder/decoder over pkg/replay")
}

type SessionDeleteCmd struct {
	Session string `arg:"" help:"Session id."`
}

func (c *SessionDeleteCmd) Run(rt *runtime) error {
	return rt.artifacts.DeleteSession(context.Background(), c.Session)
}

type SessionExportCmd struct {
	Session string `arg:"" help:"Session id."`
}

func (c *SessionExportCmd) Run(rt *runtime) error {
	arts, err := rt.artifacts.ListArtifacts(context.Background(), c.Session)
	if err != nil {
		return err
	}
	out, err := json.MarshalIndent(arts, "", "  ")
	if err != nil {
		return err
	}
	fmt.Println(string(out))
	return nil
}
