// Package cli provides common utilities for the spotkit command-line tool.
//
// This package includes:
//   - Profile management (named model/detection configurations)
//   - Output formatting (JSON, YAML, raw)
//   - Detection event rendering for the terminal
//   - Config file loading (YAML/JSON)
//
// Configuration is stored in the ~/.spotkit/ directory, supporting multiple
// named profiles similar to kubectl contexts: each profile bundles a model
// path with its labels and detection parameters.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig()
//
//	profile, err := cfg.ResolveProfile("")
//
//	cli.Output(result, cli.OutputOptions{Format: cli.FormatJSON})
package cli
