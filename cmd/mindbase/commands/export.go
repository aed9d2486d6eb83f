package commands

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/mindbeam/mindbase/pkg/cli"
	"github.com/mindbeam/mindbase/pkg/xport"
)

var exportCmd = &cobra.Command{
	Use:   "export <file>",
	Short: "Dump the store to a JSONL file",
	Long: `Write every artifact and claim in the current agent's store to
<file> as newline-delimited JSON (one {"Artifact":...} or
{"Allegation":...} record per line). This is a different format from the
MBQL files 'mindbase import' reads; use pkg/xport.Load directly to read
a dump back in.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		mb, _, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer mb.Close()

		f, err := os.Create(args[0])
		if err != nil {
			return fmt.Errorf("create %s: %w", args[0], err)
		}
		defer f.Close()

		if err := xport.Dump(cmd.Context(), mb, f); err != nil {
			return fmt.Errorf("dump: %w", err)
		}

		cli.PrintSuccess("exported to %s", args[0])
		return nil
	},
}

func init() {
	rootCmd.AddCommand(exportCmd)
}
