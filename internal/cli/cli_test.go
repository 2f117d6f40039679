package cli

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	var out bytes.Buffer
	opts, exit, err := Parse(nil, &out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Empty(t, opts.ConfigPath)
	assert.Equal(t, "text", opts.LogFormat)
	assert.Equal(t, "info", opts.LogLevel)
	assert.Equal(t, "direct", opts.ConvertMode)
	assert.Empty(t, opts.WorkflowPath)
}

func TestParse_OneShotConversion(t *testing.T) {
	var out bytes.Buffer
	opts, exit, err := Parse([]string{
		"-workflow", "report.yxmd",
		"-convert", "sql",
		"-mode", "advanced",
		"-tools", "1, 2,11,",
	}, &out)
	require.NoError(t, err)
	require.False(t, exit)

	assert.Equal(t, "report.yxmd", opts.WorkflowPath)
	assert.Equal(t, "sql", opts.ConvertTarget)
	assert.Equal(t, "advanced", opts.ConvertMode)
	assert.Equal(t, []string{"1", "2", "11"}, opts.Tools)
}

func TestParse_Help(t *testing.T) {
	var out bytes.Buffer
	_, exit, err := Parse([]string{"-h"}, &out)
	require.NoError(t, err)
	assert.True(t, exit)
	assert.Contains(t, out.String(), "Usage:")
}

func TestParse_Invalid(t *testing.T) {
	cases := []struct {
		name string
		args []string
	}{
		{"unknown flag", []string{"-nope"}},
		{"bad log format", []string{"-log-format", "yaml"}},
		{"bad log level", []string{"-log-level", "loud"}},
		{"bad convert target", []string{"-workflow", "a.yxmd", "-convert", "cobol"}},
		{"bad mode", []string{"-mode", "turbo"}},
		{"convert without workflow", []string{"-convert", "python"}},
		{"print-sequence without workflow", []string{"-print-sequence"}},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			var out bytes.Buffer
			_, _, err := Parse(tc.args, &out)
			require.Error(t, err)

			exitErr, ok := err.(*ExitError)
			require.True(t, ok)
			assert.Equal(t, 2, exitErr.Code)
		})
	}
}
