// Package cli provides common CLI utilities for mindbase command-line tools.
//
// This package includes:
//   - Configuration management (store location, default agent, ground agents)
//   - Output formatting (JSON, YAML, raw)
//   - Directory layout helpers (config, cache, log, data paths)
//
// Configuration is stored in ~/.mindbase/<app>/config.yaml.
//
// Example usage:
//
//	cfg, err := cli.LoadConfig("mindbase")
//
//	cli.Output(result, cli.OutputOptions{
//	    Format: cli.FormatJSON,
//	    File:   outputPath,
//	})
package cli
