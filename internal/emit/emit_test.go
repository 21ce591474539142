package emit

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/Grainular-Nord/nord.dev/internal/site"
)

func TestParseFormat(t *testing.T) {
	tests := []struct {
		in      string
		want    Format
		wantErr bool
	}{
		{"", FormatJSON, false},
		{"json", FormatJSON, false},
		{"JSON", FormatJSON, false},
		{"yaml", FormatYAML, false},
		{" yml ", FormatYAML, false},
		{"toml", "", true},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			got, err := ParseFormat(tt.in)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestFormatForPath(t *testing.T) {
	assert.Equal(t, FormatYAML, FormatForPath("out/config.yml", FormatJSON))
	assert.Equal(t, FormatJSON, FormatForPath("out/config.json", FormatYAML))
	assert.Equal(t, FormatYAML, FormatForPath("out/config", FormatYAML))
}

func TestEncode_JSON(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, site.Nord(), FormatJSON))

	var doc map[string]any
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	assert.Equal(t, "Nord", doc["title"])
	theme := doc["themeConfig"].(map[string]any)
	assert.Equal(t, map[string]any{"provider": "local"}, theme["search"])
	assert.Contains(t, theme, "socialLinks")
	assert.Contains(t, theme, "editLink")
	assert.Equal(t, map[string]any{"hostname": site.Hostname}, doc["sitemap"])
	assert.Contains(t, doc, "srcExclude")

	// Placeholders pass through untouched and are not HTML-escaped.
	assert.Contains(t, buf.String(), `"v${npm:nord}"`)
	// Leaf entries carry no empty items array.
	assert.NotContains(t, buf.String(), `"items": null`)
}

func TestEncode_SidebarCollapsedOnlyWhenSet(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, site.Nord(), FormatJSON))

	var doc struct {
		ThemeConfig struct {
			Sidebar map[string][]map[string]any `json:"sidebar"`
		} `json:"themeConfig"`
	}
	require.NoError(t, json.Unmarshal(buf.Bytes(), &doc))

	guide := doc.ThemeConfig.Sidebar["/guide/"]
	require.GreaterOrEqual(t, len(guide), 2)
	assert.NotContains(t, guide[0], "collapsed")
	assert.Equal(t, true, guide[len(guide)-1]["collapsed"])

	for _, sec := range doc.ThemeConfig.Sidebar["/reference/"] {
		assert.NotContains(t, sec, "collapsed")
	}
}

func TestEncode_YAML(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Encode(&buf, site.Nord(), FormatYAML))

	var doc map[string]any
	require.NoError(t, yaml.Unmarshal(buf.Bytes(), &doc))
	assert.Equal(t, "Nord", doc["title"])
	theme := doc["themeConfig"].(map[string]any)
	assert.Contains(t, theme["sidebar"], "/guide/")
}

func TestEncode_UnknownFormat(t *testing.T) {
	err := Encode(&bytes.Buffer{}, site.Nord(), Format("xml"))
	require.Error(t, err)
}

func TestWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, ".vitepress", "config.json")

	require.NoError(t, Write(path, site.Nord(), FormatJSON))
	first, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(first), `"title": "Nord"`)

	s := site.Nord()
	s.Title = "Nord Docs"
	require.NoError(t, Write(path, s, FormatJSON))
	second, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.Contains(t, string(second), `"title": "Nord Docs"`)

	// No temp files are left behind.
	entries, err := os.ReadDir(filepath.Dir(path))
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}
