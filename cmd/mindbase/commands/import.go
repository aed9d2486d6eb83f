package commands

import (
	"fmt"
	"io"
	"log"
	"os"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"github.com/mindbeam/mindbase/pkg/cli"
	"github.com/mindbeam/mindbase/pkg/mbql"
)

var importEcho bool

var importCmd = &cobra.Command{
	Use:   "import <file>",
	Short: "Apply an MBQL file to the store",
	Long: `Parse and apply an MBQL program against the current agent's store.
With --echo, Diag(...) statements print to stdout; without it their
output is discarded.

Exit code is 0 on success; non-zero with the MBQL parse/evaluation error on
stderr on failure.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		runID := uuid.New().String()
		logger := log.New(os.Stderr, fmt.Sprintf("[import %s] ", runID[:8]), log.LstdFlags)

		data, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("read %s: %w", args[0], err)
		}

		mb, _, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer mb.Close()

		cli.PrintVerbose(IsVerbose(), "parsing %s (%d bytes)", args[0], len(data))
		q, err := mbql.NewQuery(mb, string(data))
		if err != nil {
			return err
		}

		var diagWriter io.Writer = io.Discard
		if importEcho {
			diagWriter = os.Stdout
		}
		if err := q.Apply(cmd.Context(), diagWriter); err != nil {
			return err
		}

		logger.Printf("applied %s", args[0])
		cli.PrintSuccess("imported %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(importCmd)
	importCmd.Flags().BoolVar(&importEcho, "echo", false, "print Diag(...) output to stdout")
}
