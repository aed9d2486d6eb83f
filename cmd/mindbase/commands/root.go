package commands

import (
	"fmt"

	"github.com/spf13/cobra"

	"github.com/mindbeam/mindbase/pkg/cli"
)

const appName = "mindbase"

var (
	// Global flags
	verbose bool

	// Global configuration (loaded at init time)
	globalConfig *cli.Config
)

var rootCmd = &cobra.Command{
	Use:   "mindbase",
	Short: "CLI for a local MindBase knowledge store",
	Long: `mindbase - agent key management, MBQL import/export, and an
interactive shell over a local MindBase store.

Configuration and the badger-backed store directory default to
~/.mindbase/mindbase/.

Examples:
  # Create your first agent identity and open a fresh store
  mindbase auth create

  # Feed it some MBQL
  mindbase import taxonomy.mbql

  # Poke around interactively
  mindbase repl`,
	SilenceUsage:  true,
	SilenceErrors: true,
}

// Execute runs the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "verbose output")
}

// configLoadErr stores the error from cli.LoadConfig() for deferred reporting.
var configLoadErr error

func initConfig() {
	cfg, err := cli.LoadConfig(appName)
	if err != nil {
		// Store error for deferred reporting — commands that don't need
		// config (like 'mindbase version') still work.
		configLoadErr = err
		return
	}
	globalConfig = cfg
}

// GetConfig returns the global configuration. If init-time loading failed,
// it returns that error; if no load has run yet, it loads the config now.
func GetConfig() (*cli.Config, error) {
	if globalConfig == nil {
		if configLoadErr != nil {
			return nil, fmt.Errorf("config not available: %w", configLoadErr)
		}
		cfg, err := cli.LoadConfig(appName)
		if err != nil {
			return nil, fmt.Errorf("config not available: %w", err)
		}
		globalConfig = cfg
	}
	return globalConfig, nil
}

// IsVerbose returns whether verbose mode is enabled.
func IsVerbose() bool {
	return verbose
}
