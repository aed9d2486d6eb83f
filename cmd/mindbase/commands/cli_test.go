package commands

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
)

func TestVersion(t *testing.T) {
	defer setupTestEnv(t)()

	stdout, _, code := runCmd(t, "", "version")
	if code != 0 {
		t.Fatalf("exit %d", code)
	}
	if !strings.Contains(stdout, "mindbase") {
		t.Fatalf("expected 'mindbase', got: %s", stdout)
	}
}

func TestAuthCreateAndShow(t *testing.T) {
	defer setupTestEnv(t)()

	stdout, stderr, code := runCmd(t, "", "auth", "create", "--email", "a@example.com")
	if code != 0 {
		t.Fatalf("auth create failed, exit %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "created agent") {
		t.Fatalf("expected 'created agent', got: %s", stdout)
	}

	stdout, _, code = runCmd(t, "", "auth", "show")
	if code != 0 {
		t.Fatalf("auth show failed, exit %d", code)
	}
	if !strings.Contains(stdout, ">") {
		t.Fatalf("expected a current-agent marker, got: %s", stdout)
	}
}

func TestAuthShowYAMLOutput(t *testing.T) {
	defer setupTestEnv(t)()

	runCmd(t, "", "auth", "create")
	stdout, _, code := runCmd(t, "", "auth", "show", "--output", "yaml")
	if code != 0 {
		t.Fatalf("auth show --output yaml failed, exit %d", code)
	}
	if !strings.Contains(stdout, "current: true") {
		t.Fatalf("expected YAML listing with current: true, got: %s", stdout)
	}
}

func TestAuthResetClearsIdentities(t *testing.T) {
	defer setupTestEnv(t)()

	runCmd(t, "", "auth", "create")
	stdout, _, code := runCmd(t, "", "auth", "reset")
	if code != 0 {
		t.Fatalf("auth reset failed, exit %d", code)
	}
	if !strings.Contains(stdout, "removed") {
		t.Fatalf("expected removal confirmation, got: %s", stdout)
	}

	stdout, _, code = runCmd(t, "", "auth", "show")
	if code != 0 {
		t.Fatalf("auth show failed, exit %d", code)
	}
	if !strings.Contains(stdout, "no agent identities") {
		t.Fatalf("expected no identities after reset, got: %s", stdout)
	}
}

func TestAuthLoginIsHonestStub(t *testing.T) {
	defer setupTestEnv(t)()

	_, stderr, code := runCmd(t, "", "auth", "login")
	if code == 0 {
		t.Fatal("expected auth login to fail")
	}
	if !strings.Contains(stderr, "not implemented") {
		t.Fatalf("expected a not-implemented error, got: %s", stderr)
	}
}

func TestImportThenExportRoundTrip(t *testing.T) {
	defer setupTestEnv(t)()

	runCmd(t, "", "auth", "create", "--no-seed")

	dir := t.TempDir()
	mbqlPath := filepath.Join(dir, "seed.mbql")
	if err := os.WriteFile(mbqlPath, []byte(`
@word = Text("hello")
$sym = Symbolize(@word)
`), 0644); err != nil {
		t.Fatal(err)
	}

	_, stderr, code := runCmd(t, "", "import", mbqlPath)
	if code != 0 {
		t.Fatalf("import failed, exit %d, stderr: %s", code, stderr)
	}

	dumpPath := filepath.Join(dir, "dump.jsonl")
	stdout, _, code := runCmd(t, "", "export", dumpPath)
	if code != 0 {
		t.Fatalf("export failed, exit %d", code)
	}
	if !strings.Contains(stdout, "exported") {
		t.Fatalf("expected export confirmation, got: %s", stdout)
	}

	data, err := os.ReadFile(dumpPath)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(data), "hello") {
		t.Fatalf("expected dump to contain the imported artifact text, got: %s", data)
	}
}

func TestReplEvaluatesLinesAndKeepsVarsInScope(t *testing.T) {
	defer setupTestEnv(t)()

	runCmd(t, "", "auth", "create", "--no-seed")

	stdin := "@word = Text(\"hi\")\n$sym = Symbolize(@word)\nDiag($sym)\n"
	stdout, stderr, code := runCmd(t, stdin, "repl")
	if code != 0 {
		t.Fatalf("repl failed, exit %d, stderr: %s", code, stderr)
	}
	if !strings.Contains(stdout, "$sym") {
		t.Fatalf("expected Diag output naming $sym, got: %s", stdout)
	}
}
