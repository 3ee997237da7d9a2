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
	"fmt"
	"time"

	"github.com/kadirpekel/hector/pkg/statestore"
	"github.com/kadirpekel/hector/pkg/wireproto"
)

// BackupCmd snapshots the vector store into the shared state store. There
// is no file-system-backed statestore.Store wired into this build, so a
// backup here means "write a durable snapshot key", not "write a file";
// the destination backend is swappable without touching this command.
// Every namespace is snapshotted; the scope arguments are not read.
type BackupCmd struct {
	ScopeKind string `arg:"" help:"Scope kind (not read; every namespace is snapshotted)."`
	ScopeID   string `arg:"" help:"Scope id (not read; every namespace is snapshotted)."`
}

func (c *BackupCmd) Run(rt *runtime) error {
	if err := rt.vectors.Save(context.Background(), rt.store); err != nil {
		return err
	}
	fmt.Println("snapshot written")
	return nil
}

// KeysCmd manages credentials held in the process-local vault. Secrets
// never round-trip through List, which prints names only; only Expose
// prints a value, and that's deliberately a separate, narrower surface.
type KeysCmd struct {
	Set    KeysSetCmd    `cmd:"" help:"Store a credential."`
	Expose KeysExposeCmd `cmd:"" help:"Print a stored credential's value."`
	Forget KeysForgetCmd `cmd:"" help:"Zeroize and remove a stored credential."`
	List   KeysListCmd   `cmd:"" help:"List credential names (never values)."`
}

type KeysSetCmd struct {
	Name  string `arg:"" help:"Credential name."`
	Value string `arg:"" help:"Credential value."`
}

func (c *KeysSetCmd) Run(rt *runtime) error {
	rt.vault.Store(c.Name, c.Value)
	return nil
}

type KeysExposeCmd struct {
	Name string `arg:"" help:"Credential name."`
}

func (c *KeysExposeCmd) Run(rt *runtime) error {
	value, ok := rt.vault.ExposeSecret(c.Name)
	if !ok {
		return fmt.Errorf("no credential named %q", c.Name)
	}
	fmt.Println(value)
	return nil
}

type KeysForgetCmd struct {
	Name string `arg:"" help:"Credential name."`
}

func (c *KeysForgetCmd) Run(rt *runtime) error {
	rt.vault.Forget(c.Name)
	return nil
}

type KeysListCmd struct{}

func (c *KeysListCmd) Run(rt *runtime) error {
	for _, name := range rt.vault.Names() {
		fmt.Println(name)
	}
	return nil
}

// ConfigCmd scaffolds or inspects runtime configuration. Config loading
// itself is out of scope for this build (runtime wiring is in-memory
// only, see newRuntime); these subcommands report the resolved path.
type ConfigCmd struct {
	Init     ConfigInitCmd     `cmd:"" help:"Print a starter config path."`
	Validate ConfigValidateCmd `cmd:"" help:"Check that a config path was given."`
	Show     ConfigShowCmd     `cmd:"" help:"Print the resolved config path."`
}

type ConfigInitCmd struct {
	Path string `arg:"" type:"path" help:"Where a starter config would be written."`
}

func (c *ConfigInitCmd) Run(rt *runtime) error {
	fmt.Println(c.Path)
	return nil
}

type ConfigValidateCmd struct{}

func (c *ConfigValidateCmd) Run(rt *runtime) error {
	if rt.configPath == "" {
		return fmt.Errorf("no config path set; pass --config")
	}
	fmt.Println("ok")
	return nil
}

type ConfigShowCmd struct{}

func (c *ConfigShowCmd) Run(rt *runtime) error {
	if rt.configPath == "" {
		fmt.Println("(no config path set)")
		return nil
	}
	fmt.Println(rt.configPath)
	return nil
}

// KernelCmd controls the kernel-mode wire protocol server. This build
// wires wireproto.Kernel in-process only, per the spec's wire protocol
// being plain structs and a Dispatch function rather than a transport
// (SPEC_FULL 6): there is no long-lived daemon for Connect to reach, so
// Start/Status double as a smoke test of Dispatch rather than a real
// server lifecycle.
type KernelCmd struct {
	Start   KernelStartCmd   `cmd:"" help:"Build a kernel and dispatch a kernel_info_request."`
	Stop    KernelStopCmd    `cmd:"" help:"No-op: no persistent kernel daemon exists in this build."`
	Status  KernelStatusCmd  `cmd:"" help:"Report kernel daemon status."`
	Connect KernelConnectCmd `cmd:"" help:"Report why remote connect is unsupported."`
}

func newSmokeTestKernel() *wireproto.Kernel {
	k := wireproto.NewKernel()
	k.Handle(wireproto.KernelInfoRequest, func(ctx context.Context, req *wireproto.Message) (*wireproto.Message, error) {
		return wireproto.Reply(req, wireproto.KernelInfoReply, map[string]string{"implementation": "agentkit"})
	})
	return k
}

type KernelStartCmd struct{}

func (c *KernelStartCmd) Run(rt *runtime) error {
	k := newSmokeTestKernel()
	req := &wireproto.Message{Header: wireproto.Header{
		MsgID: statestore.Global().String(), MsgType: wireproto.KernelInfoRequest,
		Session: "cli", Date: time.Now(), Version: "5.3",
	}}
	reply, err := k.Dispatch(context.Background(), req)
	if err != nil {
		return err
	}
	fmt.Printf("kernel responded: %s\n", reply.Header.MsgType)
	return nil
}

type KernelStopCmd struct{}

func (c *KernelStopCmd) Run(rt *runtime) error {
	fmt.Println("no persistent kernel daemon in this build")
	return nil
}

type KernelStatusCmd struct{}

func (c *KernelStatusCmd) Run(rt *runtime) error {
	fmt.Println("not running")
	return nil
}

type KernelConnectCmd struct {
	Address string `arg:"" help:"Kernel address (unused)."`
}

func (c *KernelConnectCmd) Run(rt *runtime) error {
	return fmt.Errorf("remote kernel connect is not supported: wireproto has no transport in this build")
}
