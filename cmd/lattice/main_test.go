package main

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// resetFlags restores every flag to its default, since commands are package globals.
func resetFlags(cmd *cobra.Command) {
	reset := func(f *pflag.Flag) {
		if sv, ok := f.Value.(pflag.SliceValue); ok {
			_ = sv.Replace(nil)
		} else {
			_ = f.Value.Set(f.DefValue)
		}
		f.Changed = false
	}
	cmd.Flags().VisitAll(reset)
	cmd.PersistentFlags().VisitAll(reset)
	for _, c := range cmd.Commands() {
		resetFlags(c)
	}
}

func run(t *testing.T, dir string, args ...string) (string, error) {
	t.Helper()
	resetFlags(rootCmd)
	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(&bytes.Buffer{})
	rootCmd.SetIn(strings.NewReader(""))
	rootCmd.SetArgs(append([]string{
		"--config", filepath.Join(dir, "lattice.yaml"),
	}, args...))
	err := rootCmd.Execute()
	return out.String(), err
}

func setupDir(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	cfg := "store:\n  backend: file\n  path: " + filepath.Join(dir, "pages") + "\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, "lattice.yaml"), []byte(cfg), 0o644))
	return dir
}

func TestVersion(t *testing.T) {
	out, err := run(t, setupDir(t), "version")
	require.NoError(t, err)
	assert.Contains(t, out, "lattice version")
}

func TestCatalogCommands(t *testing.T) {
	dir := setupDir(t)

	out, err := run(t, dir, "types")
	require.NoError(t, err)
	assert.Contains(t, out, "headline")
	assert.Contains(t, out, "TYPE")

	out, err = run(t, dir, "templates", "sales", "--category", "all")
	require.NoError(t, err)
	assert.Contains(t, out, "sales-page")

	out, err = run(t, dir, "templates", "no-such-thing")
	require.NoError(t, err)
	assert.Contains(t, out, "No templates found.")
}

func TestPageCommands(t *testing.T) {
	dir := setupDir(t)

	out, err := run(t, dir, "page", "add", "home", "headline")
	require.NoError(t, err)
	headline := strings.TrimSpace(out)
	require.NotEmpty(t, headline)

	_, err = run(t, dir, "page", "add", "home", "")
	assert.Error(t, err, "an empty block type is rejected")

	out, err = run(t, dir, "page", "add", "home", "cta")
	require.NoError(t, err)
	cta := strings.TrimSpace(out)

	out, err = run(t, dir, "page", "update", "home", cta, "--content", "buttonText=Buy Now", "--style", "padding=24")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: update")

	_, err = run(t, dir, "page", "reorder", "home", "1", "0")
	require.NoError(t, err)
	_, err = run(t, dir, "page", "toggle", "home", headline)
	require.NoError(t, err)

	out, err = run(t, dir, "page", "move", "home", headline, "up")
	require.NoError(t, err)
	assert.Contains(t, out, "OK: move")

	out, err = run(t, dir, "page", "rm-block", "home", "missing")
	require.NoError(t, err)
	assert.Contains(t, out, "Nothing changed")

	out, err = run(t, dir, "page", "inspect", "home")
	require.NoError(t, err)
	lines := strings.Split(strings.TrimSpace(out), "\n")
	require.Len(t, lines, 3)
	assert.Contains(t, lines[1], headline)
	assert.Contains(t, lines[1], "false")
	assert.Contains(t, lines[2], cta)

	out, err = run(t, dir, "page", "inspect", "home", "--json")
	require.NoError(t, err)
	assert.Contains(t, out, `"buttonText": "Buy Now"`)
	assert.Contains(t, out, `"padding": 24`)

	out, err = run(t, dir, "page", "ls")
	require.NoError(t, err)
	assert.Equal(t, "- home\n", out)

	out, err = run(t, dir, "render", "home")
	require.NoError(t, err)
	assert.Contains(t, out, "Buy Now")

	_, err = run(t, dir, "page", "rm", "home")
	require.NoError(t, err)
	_, err = run(t, dir, "page", "inspect", "home")
	assert.Error(t, err)
}

func TestExportImport(t *testing.T) {
	dir := setupDir(t)

	out, err := run(t, dir, "page", "apply", "src", "sales-page")
	require.NoError(t, err)
	assert.NotEmpty(t, strings.TrimSpace(out))

	exportPath := filepath.Join(dir, "src.json")
	_, err = run(t, dir, "page", "export", "src", "-o", exportPath)
	require.NoError(t, err)

	out, err = run(t, dir, "page", "import", "dst", exportPath)
	require.NoError(t, err)
	assert.Contains(t, out, "imported")

	exported, err := os.ReadFile(exportPath)
	require.NoError(t, err)
	out, err = run(t, dir, "page", "export", "dst")
	require.NoError(t, err)
	assert.Equal(t, string(exported)+"\n", out)

	bad := filepath.Join(dir, "bad.json")
	require.NoError(t, os.WriteFile(bad, []byte(`{"not": "an array"}`), 0o644))
	_, err = run(t, dir, "page", "import", "dst", bad)
	assert.Error(t, err)
}

func TestConfigOverrides(t *testing.T) {
	dir := setupDir(t)

	_, err := run(t, dir, "page", "ls", "--set", "store.backend=postgres")
	assert.Error(t, err)

	_, err = run(t, dir, "page", "ls", "--set", "broken")
	assert.Error(t, err)

	_, err = run(t, dir, "page", "ls", "--log-level", "loud")
	assert.Error(t, err)
}
