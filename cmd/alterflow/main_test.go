package main

import (
	"bytes"
	"io"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/vk/alterflow/internal/cli"
)

func TestRun_Help(t *testing.T) {
	out := &bytes.Buffer{}
	err := run(out, io.Discard, []string{"-h"})
	require.NoError(t, err)
	assert.Contains(t, out.String(), "Usage:")
}

func TestRun_InvalidFlag(t *testing.T) {
	err := run(io.Discard, io.Discard, []string{"-log-level", "loud"})
	require.Error(t, err)

	exitErr, ok := err.(*cli.ExitError)
	require.True(t, ok)
	assert.Equal(t, 2, exitErr.Code)
}

func TestRun_PrintSequence(t *testing.T) {
	dir := t.TempDir()

	wfPath := filepath.Join(dir, "tiny.yxmd")
	workflowXML := `<?xml version="1.0"?>
<AlteryxDocument yxmdVer="2021.4">
  <Nodes>
    <Node ToolID="5">
      <GuiSettings Plugin="AlteryxBasePluginsGui.TextInput.TextInput" />
      <Properties />
    </Node>
  </Nodes>
  <Connections />
</AlteryxDocument>`
	require.NoError(t, os.WriteFile(wfPath, []byte(workflowXML), 0o600))

	cfgPath := filepath.Join(dir, "alterflow.hcl")
	require.NoError(t, os.WriteFile(cfgPath, []byte("history {\n  path = \":memory:\"\n}\n"), 0o600))

	out := &bytes.Buffer{}
	err := run(out, io.Discard, []string{
		"-config", cfgPath,
		"-workflow", wfPath,
		"-print-sequence",
	})
	require.NoError(t, err)
	assert.Equal(t, "5", strings.TrimSpace(out.String()))
}
