package main

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCmd_Version(t *testing.T) {
	root, a := newRootCmd()
	defer a.close()

	var out bytes.Buffer
	root.SetOut(&out)
	root.SetArgs([]string{"version"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "Inked Draw Client")
	assert.Nil(t, a.cli, "version does not open the database")
}

func TestRootCmd_BuildsFromFlags(t *testing.T) {
	dir := t.TempDir()
	cfgFile := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("logging:\n  level: error\n"), 0o600))
	dbPath := filepath.Join(dir, "nested", "inked.db")

	root, a := newRootCmd()
	root.SetArgs([]string{"--config", cfgFile, "--db", dbPath, "--server", "http://127.0.0.1:1/", "queue"})
	require.NoError(t, root.ExecuteContext(context.Background()))

	require.NotNil(t, a.cli)
	assert.FileExists(t, dbPath)
	assert.Len(t, a.closers, 2)

	a.close()
	assert.Empty(t, a.closers)
}

func TestRootCmd_InvalidConfig(t *testing.T) {
	cfgFile := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(cfgFile, []byte("logging:\n  level: loud\n"), 0o600))

	root, a := newRootCmd()
	defer a.close()
	root.SetArgs([]string{"--config", cfgFile, "status"})
	assert.Error(t, root.ExecuteContext(context.Background()))
}
