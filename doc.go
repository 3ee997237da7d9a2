// Package agentkit provides the core runtime for a scriptable LLM-agent
// host: scoped state, a hook system with replay, an explicit agent
// lifecycle state machine, composite/delegating agents, session-scoped
// artifact storage, a hybrid vector store, rate limiting and resource
// accounting, named execution-chain coordination, and the injection
// surface a scripting engine is handed to drive all of it.
//
// # Using as a Go library
//
// Import the packages a host needs directly:
//
//	import (
//	    "github.com/kadirpekel/hector/pkg/statestore"
//	    "github.com/kadirpekel/hector/pkg/agentfsm"
//	    "github.com/kadirpekel/hector/pkg/injection"
//	)
//
// # CLI
//
// The agentkit binary wraps the same packages behind subcommands:
//
//	go install github.com/kadirpekel/hector/cmd/agentkit@latest
//	agentkit run myagent "hello"
//
// # Architecture
//
// A scripting host receives an injection.Bundle built from the packages
// above; agentkit itself never calls into a script engine or an LLM
// provider directly -- those are opaque collaborators on the other side
// of the injection surface.
//
// # License
//
// AGPL-3.0 - See LICENSE.md for details.
package hector
