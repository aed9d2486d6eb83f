// Command mindbase is the CLI for a local MindBase store: agent key
// management, MBQL import/export, and an interactive REPL.
//
// Usage:
//
//	mindbase [flags] <command> [subcommand] [args]
//
// Commands:
//
//	auth     - Agent key management (show, select, create, login, logout, reset)
//	import   - Apply an MBQL file to the store
//	export   - Dump the store to a JSONL file
//	repl     - Interactive MBQL shell
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/mindbeam/mindbase/cmd/mindbase/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
