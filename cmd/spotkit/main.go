// Package main is the entry point for the spotkit CLI.
//
// Usage:
//
//	spotkit [flags] <command> [args]
//
// Commands:
//
//	run      - Spot keywords in an audio file or stream
//	serve    - Serve the spotter over WebSocket
//	profile  - Manage model profiles (add, use, list, delete, show)
//	version  - Show version information
package main

import (
	"fmt"
	"os"

	"github.com/haivivi/spotkit/cmd/spotkit/commands"
)

func main() {
	if err := commands.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
