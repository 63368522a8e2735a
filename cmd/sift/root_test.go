package main

import (
	"bytes"
	"io"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// Command failures must reach stderr. The root command leaves
// SilenceErrors unset so cobra reports the error before main exits 1.
func TestExecute_FailureReportsError(t *testing.T) {
	missing := filepath.Join(t.TempDir(), "missing.yaml")

	var stderr bytes.Buffer
	rootCmd.SetOut(io.Discard)
	rootCmd.SetErr(&stderr)
	rootCmd.SetArgs([]string{"score", "hello", "--config", missing})
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
		configPath = ""
	})

	err := rootCmd.Execute()
	require.Error(t, err)
	assert.Contains(t, stderr.String(), "Error:")
	assert.Contains(t, stderr.String(), missing)
}
