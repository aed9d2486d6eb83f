package commands

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/mindbeam/mindbase/pkg/mbql"
)

var replCmd = &cobra.Command{
	Use:   "repl",
	Short: "Interactive MBQL shell",
	Long: `Read MBQL statements from stdin one line at a time, applying each as
it's entered. Variables bound by an earlier line (@v, $v) stay in scope
for later ones within the same session; Diag(...) output prints
immediately.

Blank lines are ignored. Ctrl-D (EOF) ends the session.`,
	RunE: func(cmd *cobra.Command, args []string) error {
		mb, _, err := openApp(cmd.Context())
		if err != nil {
			return err
		}
		defer mb.Close()

		q, err := mbql.NewQuery(mb, "")
		if err != nil {
			return err
		}

		ctx := cmd.Context()
		in := bufio.NewScanner(cmd.InOrStdin())
		out := cmd.OutOrStdout()
		return runRepl(ctx, q, in, out)
	},
}

func init() {
	rootCmd.AddCommand(replCmd)
}

// runRepl drives one MBQL REPL session: each non-blank line is appended to
// q's program and applied on its own, so a mistyped or failing line leaves
// already-bound variables untouched and can simply be retried (Apply does
// not re-run a statement that already failed).
func runRepl(ctx context.Context, q *mbql.Query, in *bufio.Scanner, out io.Writer) error {
	fmt.Fprintln(out, "mindbase repl; Ctrl-D to exit")
	for {
		fmt.Fprint(out, "mbql> ")
		if !in.Scan() {
			fmt.Fprintln(out)
			return in.Err()
		}
		line := strings.TrimSpace(in.Text())
		if line == "" {
			continue
		}
		if err := q.AddStatements(line); err != nil {
			fmt.Fprintf(out, "parse error: %v\n", err)
			continue
		}
		if err := q.Apply(ctx, out); err != nil {
			fmt.Fprintf(out, "error: %v\n", err)
			continue
		}
	}
}
