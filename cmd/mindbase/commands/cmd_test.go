package commands

import (
	"bytes"
	"os"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
)

// setupTestEnv points HOME at a fresh temp dir, so cli.LoadConfig("mindbase")
// resolves to an isolated ~/.mindbase/mindbase/config.yaml per test.
func setupTestEnv(t *testing.T) func() {
	t.Helper()
	dir := t.TempDir()
	old, hadOld := os.LookupEnv("HOME")
	os.Setenv("HOME", dir)
	return func() {
		if hadOld {
			os.Setenv("HOME", old)
		} else {
			os.Unsetenv("HOME")
		}
	}
}

func runCmd(t *testing.T, stdin string, args ...string) (stdout, stderr string, exitCode int) {
	t.Helper()

	oldStdout := os.Stdout
	oldStderr := os.Stderr

	rOut, wOut, _ := os.Pipe()
	rErr, wErr, _ := os.Pipe()
	os.Stdout = wOut
	os.Stderr = wErr

	verbose = false
	globalConfig = nil
	configLoadErr = nil

	rootCmd.SetArgs(args)
	rootCmd.SetIn(bytes.NewBufferString(stdin))
	err := rootCmd.Execute()

	wOut.Close()
	wErr.Close()
	os.Stdout = oldStdout
	os.Stderr = oldStderr

	var outBuf, errBuf bytes.Buffer
	outBuf.ReadFrom(rOut)
	errBuf.ReadFrom(rErr)

	stdout = outBuf.String()
	stderr = errBuf.String()
	if err != nil {
		exitCode = 1
		if stderr == "" {
			stderr = err.Error()
		}
	}

	resetFlags(rootCmd)
	return
}

func resetFlags(cmd *cobra.Command) {
	cmd.Flags().VisitAll(func(f *pflag.Flag) {
		f.Changed = false
		f.Value.Set(f.DefValue)
	})
	for _, sub := range cmd.Commands() {
		resetFlags(sub)
	}
}
