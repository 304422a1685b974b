package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/ByLCY/conformist/layout"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "conformist.yaml", `
minFontSizePx: 0
maxFontSizePx: 200
maxShrinkSteps: 40
exemptClass: free
measure: text
`)
	f, err := Load(path)
	require.NoError(t, err)

	opts := f.Apply(layout.DefaultOptions())
	assert.Zero(t, opts.MinFontSizePx)
	assert.Equal(t, 200.0, opts.MaxFontSizePx)
	assert.Equal(t, 40, opts.MaxShrinkSteps)
	assert.Equal(t, "free", opts.ExemptClass)
	assert.Equal(t, layout.DefaultLineAttr, opts.LineAttr)
	require.NotNil(t, f.Measure)
	assert.Equal(t, "text", *f.Measure)
}

func TestLoadJSONC(t *testing.T) {
	path := writeFile(t, "conformist.jsonc", `{
  // 只改行属性名
  "lineAttr": "data-row",
  "containerIdPrefix": "box",
}`)
	f, err := Load(path)
	require.NoError(t, err)

	opts := f.Apply(layout.DefaultOptions())
	assert.Equal(t, "data-row", opts.LineAttr)
	assert.Equal(t, "box", opts.ContainerIDPrefix)
	assert.Equal(t, float64(layout.DefaultMinFontSizePx), opts.MinFontSizePx)
}

func TestLoadEmptyFile(t *testing.T) {
	f, err := Load(writeFile(t, "empty.yml", ""))
	require.NoError(t, err)
	assert.Equal(t, layout.DefaultOptions().MaxFontSizePx, f.Apply(layout.DefaultOptions()).MaxFontSizePx)
}

func TestLoadErrors(t *testing.T) {
	cases := map[string]string{
		"unknown.yaml":  "colour: red\n",
		"unknown.json":  `{"colour": "red"}`,
		"negative.yaml": "maxShrinkSteps: -1\n",
		"inverted.json": `{"minFontSizePx": 50, "maxFontSizePx": 20}`,
		"measure.yaml":  "measure: laser\n",
		"config.toml":   "a = 1\n",
	}
	for name, content := range cases {
		_, err := Load(writeFile(t, name, content))
		assert.Error(t, err, name)
	}

	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}

func TestApplyNil(t *testing.T) {
	var f *File
	opts := layout.DefaultOptions()
	assert.Equal(t, opts.MinFontSizePx, f.Apply(opts).MinFontSizePx)
}
