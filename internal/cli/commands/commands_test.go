package commands

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Grainular-Nord/nord.dev/internal/testutil"
)

const minimalSite = `
title: Demo
description: "Demo ${npm:demo}"
themeConfig:
  nav:
    - text: "v${npm:demo}"
      link: /guide/
`

func execute(t *testing.T, cmd *cobra.Command, args ...string) (string, error) {
	t.Helper()
	buf := new(bytes.Buffer)
	cmd.SetOut(buf)
	cmd.SetErr(buf)
	cmd.SetArgs(args)
	err := cmd.Execute()
	return buf.String(), err
}

func TestNewBuildCommand(t *testing.T) {
	cmd := NewBuildCommand()

	assert.Equal(t, "build", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotEmpty(t, cmd.Example, "Example should not be empty")

	for _, flag := range []string{"site", "out", "format", "offline", "stdout"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewServeCommand(t *testing.T) {
	cmd := NewServeCommand()

	assert.Equal(t, "serve", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	for _, flag := range []string{"site", "port", "offline"} {
		assert.NotNil(t, cmd.Flags().Lookup(flag), "flag %q should exist", flag)
	}
}

func TestNewVersionsCommand(t *testing.T) {
	cmd := NewVersionsCommand()

	assert.Equal(t, "versions [package...]", cmd.Use)
	assert.NotEmpty(t, cmd.Short, "Short should not be empty")
	assert.NotNil(t, cmd.Flags().Lookup("json"))
}

func TestBuildCommand_OfflineStdout(t *testing.T) {
	out, err := execute(t, NewBuildCommand(), "--offline", "--stdout")
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, json.Unmarshal([]byte(out), &doc))
	assert.Equal(t, "Nord", doc["title"])
	assert.Contains(t, out, `"vlatest"`)
	assert.NotContains(t, out, "${npm:")
}

func TestBuildCommand_WritesFileInferredFormat(t *testing.T) {
	sitePath := testutil.WriteFile(t, "site.yaml", minimalSite)
	outPath := filepath.Join(t.TempDir(), "nested", "config.yaml")

	out, err := execute(t, NewBuildCommand(), "--site", sitePath, "--out", outPath, "--offline")
	require.NoError(t, err)
	assert.Contains(t, out, "Wrote "+outPath+" (yaml)")

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(data, &doc))
	assert.Equal(t, "Demo", doc["title"])
	assert.Equal(t, "Demo latest", doc["description"])
}

func TestBuildCommand_ExplicitFormatWins(t *testing.T) {
	sitePath := testutil.WriteFile(t, "site.yaml", minimalSite)
	outPath := filepath.Join(t.TempDir(), "config.yaml")

	_, err := execute(t, NewBuildCommand(), "--site", sitePath, "--out", outPath, "--format", "json", "--offline")
	require.NoError(t, err)

	data, err := os.ReadFile(outPath)
	require.NoError(t, err)
	assert.True(t, json.Valid(data), "expected JSON output, got: %s", data)
}

func TestBuildCommand_Errors(t *testing.T) {
	tests := []struct {
		name    string
		site    string
		args    []string
		wantErr string
	}{
		{
			name:    "invalid site",
			site:    "title: \"\"\n",
			wantErr: "site definition is invalid",
		},
		{
			name:    "unknown format",
			site:    minimalSite,
			args:    []string{"--format", "toml"},
			wantErr: "unknown output format",
		},
		{
			name:    "bad placeholder package",
			site:    "title: \"${npm:Not Valid}\"\n",
			wantErr: "Not Valid",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			sitePath := testutil.WriteFile(t, "site.yaml", tt.site)
			outPath := filepath.Join(t.TempDir(), "config.json")
			args := append([]string{"--site", sitePath, "--out", outPath, "--offline"}, tt.args...)

			_, err := execute(t, NewBuildCommand(), args...)
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
			assert.NoFileExists(t, outPath)
		})
	}
}

func TestBuildCommand_MissingSiteFile(t *testing.T) {
	_, err := execute(t, NewBuildCommand(), "--site", filepath.Join(t.TempDir(), "missing.yaml"), "--stdout", "--offline")
	require.Error(t, err)
}

func TestValidateCommand(t *testing.T) {
	out, err := execute(t, NewValidateCommand())
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Nord is valid")
	assert.Contains(t, out, "packages:         nord, nord-cli")

	sitePath := testutil.WriteFile(t, "site.yaml", minimalSite)
	out, err = execute(t, NewValidateCommand(), "--site", sitePath)
	require.NoError(t, err)
	assert.Contains(t, out, "✓ Demo is valid")
	assert.Contains(t, out, "nav entries:      1")
}

func TestValidateCommand_ReportsAllProblems(t *testing.T) {
	sitePath := testutil.WriteFile(t, "site.yaml", `
title: ""
themeConfig:
  nav:
    - text: ""
      link: guide
`)
	_, err := execute(t, NewValidateCommand(), "--site", sitePath)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "title")
	assert.Contains(t, err.Error(), "themeConfig.nav[0]")
}

func TestVersionsCommand_NoPackages(t *testing.T) {
	sitePath := testutil.WriteFile(t, "site.yaml", "title: Plain\n")
	out, err := execute(t, NewVersionsCommand(), "--site", sitePath)
	require.NoError(t, err)
	assert.Contains(t, out, "No packages referenced.")
}

func TestVersionsTable_Markdown(t *testing.T) {
	buf := new(bytes.Buffer)
	versionsTable(buf, []packageInfo{
		{Package: "nord", Version: "2.1.0", License: "MIT", Description: "Reactive UI"},
		{Package: "gone", Error: "package not found"},
	})

	out := buf.String()
	assert.Contains(t, strings.ToLower(out), "| package |")
	assert.Contains(t, out, "| nord | 2.1.0 | MIT | Reactive UI |")
	assert.Contains(t, out, "| gone | - |")
	assert.Contains(t, out, "package not found")
}
