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

// Command agentkit is the CLI front end for the agent runtime core:
// state, session and RAG surfaces over the same packages the scripting
// host is handed (pkg/injection), plus lifecycle and kernel-mode
// subcommands. Exit codes: 0 success, 1 general error, 2 usage error,
// 3 validation error.
package main

import (
	"fmt"
	"os"

	"github.com/alecthomas/kong"

	"github.com/kadirpekel/hector/pkg/corerr"
)

// CLI mirrors the runtime's documented subcommand shape.
type CLI struct {
	Config   string `short:"c" help:"Path to config file." type:"path"`
	LogLevel string `help:"Log level (debug, info, warn, error)." default:"info"`

	Run     RunCmd     `cmd:"" help:"Run an agent against a single input."`
	Exec    ExecCmd    `cmd:"" help:"Execute a script file against the runtime."`
	Repl    ReplCmd    `cmd:"" help:"Start an interactive REPL."`
	Debug   DebugCmd   `cmd:"" help:"Run an agent with state-transition logging."`
	State   StateCmd   `cmd:"" help:"Inspect or mutate state store contents."`
	Session  SessionCmd  `cmd:"" help:"Manage sessions and their artifacts."`
	Workflow WorkflowCmd `cmd:"" help:"Drive the coordination graph as Workflow.*."`
	RAG      RAGCmd      `cmd:"" help:"Manage the vector store."`
	Backup  BackupCmd  `cmd:"" help:"Snapshot the vector store into the state store."`
	Keys    KeysCmd    `cmd:"" help:"Manage stored credentials."`
	Config2 ConfigCmd  `cmd:"" name:"config" help:"Inspect or scaffold runtime configuration."`
	Kernel  KernelCmd  `cmd:"" help:"Control the kernel-mode wire protocol server."`
}

func main() {
	cli := CLI{}
	ctx := kong.Parse(&cli,
		kong.Name("agentkit"),
		kong.Description("agentkit - a scriptable LLM-agent runtime"),
		kong.UsageOnError(),
		kong.Exit(func(code int) {
			// kong's own parse-usage errors already use exit code 2;
			// defer to that rather than overriding it here.
			os.Exit(code)
		}),
	)

	rt := newRuntime(cli.Config)
	err := ctx.Run(rt)
	if err == nil {
		return
	}
	fmt.Fprintln(os.Stderr, "agentkit:", err)
	os.Exit(exitCodeFor(err))
}

func exitCodeFor(err error) int {
	switch corerr.KindOf(err) {
	case corerr.Validation:
		return 3
	default:
		return 1
	}
}
