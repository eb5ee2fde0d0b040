package cli

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
)

// isolateEnv points the ledger at a temp dir and blanks the variables that
// would reach real services.
func isolateEnv(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	t.Setenv("MIDAS_LEDGER_PATH", filepath.Join(dir, "ledger.sqlite"))
	t.Setenv("MIDAS_LOG_LEVEL", "error")
	t.Setenv("MIDAS_LOG_FORMAT", "")
	t.Setenv("MIDAS_PUBLISH_URI", "")
	t.Setenv("MIDAS_GENE_LOOKUP_URL", "http://127.0.0.1:1/query")
	t.Setenv("MIDAS_GENE_LOOKUP_TIMEOUT", "2s")
	for _, k := range []string{"NEO4J_URI", "NEO4J_USER", "NEO4J_PASSWORD", "KEY_ID", "SECRET", "MIDAS_S3_KEY_ID", "MIDAS_S3_SECRET"} {
		t.Setenv(k, "")
	}
	return dir
}

// runCLI executes the root command with args and returns what it printed
// on stdout. No .env file is read.
func runCLI(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	cmd := newRootCmd()
	cmd.SetOut(&out)
	cmd.SetErr(io.Discard)
	cmd.SetArgs(append([]string{"--env-file", filepath.Join(t.TempDir(), "absent.env")}, args...))
	err := cmd.Execute()
	return out.String(), err
}

func writeFile(t *testing.T, dir, name, body string) string {
	t.Helper()
	p := filepath.Join(dir, name)
	require.NoError(t, os.MkdirAll(filepath.Dir(p), 0o755))
	require.NoError(t, os.WriteFile(p, []byte(body), 0o644))
	return p
}

func readLines(t *testing.T, path string) []string {
	t.Helper()
	data, err := os.ReadFile(path) //nolint:gosec // test path
	require.NoError(t, err)
	return strings.Split(strings.TrimSpace(string(data)), "\n")
}
