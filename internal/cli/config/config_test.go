package config

import (
	"bytes"
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/Grainular-Nord/nord.dev/internal/emit"
	"github.com/Grainular-Nord/nord.dev/internal/registry"
)

// chdir switches into dir for the duration of the test.
func chdir(t *testing.T, dir string) {
	t.Helper()
	t.Chdir(dir)
	t.Cleanup(ResetConfig)
}

func newFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.String("site", "", "")
	fs.String("out", "", "")
	fs.String("format", "", "")
	fs.String("registry-url", "", "")
	fs.String("scope", "", "")
	fs.Duration("timeout", 0, "")
	fs.Float64("rate", 0, "")
	fs.Int("port", 0, "")
	fs.Bool("verbose", false, "")
	fs.String("log-level", "", "")
	return fs
}

func TestLoadConfig_Defaults(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, DefaultOutput), cfg.Output)
	assert.Empty(t, cfg.SiteFile)
	assert.Equal(t, DefaultFormat, cfg.Format)
	assert.Equal(t, registry.DefaultBaseURL, cfg.Registry.URL)
	assert.Equal(t, registry.DefaultScope, cfg.Registry.Scope)
	assert.Equal(t, DefaultTimeout, cfg.Registry.Timeout)
	assert.Equal(t, DefaultPort, cfg.Serve.Port)
	assert.Empty(t, GetConfigFileUsed())
	assert.Same(t, cfg, GetCurrentConfig())
}

func TestLoadConfig_FileFoundUpward(t *testing.T) {
	root := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(root, "nordsite.yaml"), []byte(`
site_file: docs/site.yaml
output: docs/.vitepress/config.yaml
format: yaml
registry:
  scope: acme
  timeout: 3s
  rate: 2.5
serve:
  port: 9000
`), 0o600))
	sub := filepath.Join(root, "docs", "guide")
	require.NoError(t, os.MkdirAll(sub, 0o750))
	chdir(t, sub)

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)

	// macOS temp dirs are symlinked; compare against the resolved root.
	resolvedRoot := filepath.Dir(GetConfigFileUsed())
	assert.Equal(t, filepath.Join(resolvedRoot, "docs", "site.yaml"), cfg.SiteFile)
	assert.Equal(t, filepath.Join(resolvedRoot, "docs", ".vitepress", "config.yaml"), cfg.Output)
	assert.Equal(t, "acme", cfg.Registry.Scope)
	assert.Equal(t, 3*time.Second, cfg.Registry.Timeout)
	assert.InDelta(t, 2.5, cfg.Registry.Rate, 0.001)
	assert.Equal(t, 9000, cfg.Serve.Port)
	assert.Equal(t, emit.FormatYAML, cfg.OutputFormat())
}

func TestLoadConfig_Precedence(t *testing.T) {
	dir := t.TempDir()
	cfgPath := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(cfgPath, []byte(`
registry:
  url: https://file.example
  scope: from-file
serve:
  port: 7000
`), 0o600))
	chdir(t, dir)

	t.Setenv("NORDSITE_REGISTRY_SCOPE", "from-env")
	t.Setenv("NORDSITE_SERVE_PORT", "7100")
	t.Setenv("NORDSITE_LOG_LEVEL", "warn")

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--port", "7200", "--timeout", "250ms"}))

	cfg, err := LoadConfig(cfgPath, flags)
	require.NoError(t, err)

	assert.Equal(t, "https://file.example", cfg.Registry.URL, "file beats default")
	assert.Equal(t, "from-env", cfg.Registry.Scope, "env beats file")
	assert.Equal(t, 7200, cfg.Serve.Port, "flag beats env")
	assert.Equal(t, 250*time.Millisecond, cfg.Registry.Timeout)
	assert.Equal(t, "warn", cfg.LogLevel)
	assert.Equal(t, cfgPath, GetConfigFileUsed())
}

func TestLoadConfig_FlagPathsRelativeToCwd(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--site", "site.yaml", "--out", "out/config.json"}))

	cfg, err := LoadConfig("", flags)
	require.NoError(t, err)

	cwd, err := os.Getwd()
	require.NoError(t, err)
	assert.Equal(t, filepath.Join(cwd, "site.yaml"), cfg.SiteFile)
	assert.Equal(t, filepath.Join(cwd, "out", "config.json"), cfg.Output)
}

func TestLoadConfig_ExpandsRegistryURL(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("MIRROR_HOST", "npm.mirror.test")
	t.Setenv("NORDSITE_REGISTRY_URL", "https://${MIRROR_HOST}/npm")

	cfg, err := LoadConfig("", nil)
	require.NoError(t, err)
	assert.Equal(t, "https://npm.mirror.test/npm", cfg.Registry.URL)
}

func TestLoadConfig_Invalid(t *testing.T) {
	chdir(t, t.TempDir())

	flags := newFlags()
	require.NoError(t, flags.Parse([]string{"--format", "toml", "--registry-url", "registry.npmjs.org"}))

	_, err := LoadConfig("", flags)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unknown output format")
	assert.Contains(t, err.Error(), "registry.url")
}

func TestLoadConfig_MissingExplicitFile(t *testing.T) {
	chdir(t, t.TempDir())
	_, err := LoadConfig("does-not-exist.yaml", nil)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "error reading config file")
}

func TestEnvKey(t *testing.T) {
	tests := map[string]string{
		"NORDSITE_SITE_FILE":        "site_file",
		"NORDSITE_REGISTRY_URL":     "registry.url",
		"NORDSITE_REGISTRY_TIMEOUT": "registry.timeout",
		"NORDSITE_SERVE_PORT":       "serve.port",
		"NORDSITE_LOG_LEVEL":        "log_level",
	}
	for in, want := range tests {
		assert.Equal(t, want, envKey(in), in)
	}
}

func TestOutputFormat(t *testing.T) {
	tests := []struct {
		name   string
		cfg    Config
		expect emit.Format
	}{
		{"default json", Config{Output: "x/config.json", Format: "json"}, emit.FormatJSON},
		{"inferred yaml", Config{Output: "x/config.yml", Format: "json"}, emit.FormatYAML},
		{"explicit yaml wins", Config{Output: "x/config.json", Format: "yaml"}, emit.FormatYAML},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.expect, tt.cfg.OutputFormat())
		})
	}
}

func TestLogger(t *testing.T) {
	var buf bytes.Buffer
	logger := NewLogger(&buf, &Config{LogLevel: "warn"})
	logger.Info("hidden")
	logger.Warn("shown")
	assert.NotContains(t, buf.String(), "hidden")
	assert.Contains(t, buf.String(), "shown")

	buf.Reset()
	logger = NewLogger(&buf, &Config{LogLevel: "error", Verbose: true})
	logger.Debug("debug on")
	assert.Contains(t, buf.String(), "debug on")

	assert.Equal(t, slog.LevelInfo, ParseLogLevel("bogus"))

	ctx := WithLogger(context.Background(), logger)
	assert.Same(t, logger, GetLogger(ctx))
	assert.NotNil(t, GetLogger(context.Background()))
}
