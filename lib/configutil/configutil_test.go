package configutil

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

type testConfig struct {
	Name     string `json:"name" yaml:"name"`
	Interval int    `json:"interval" yaml:"interval"`
	Nested   struct {
		Url string `json:"url" yaml:"url"`
	} `json:"nested" yaml:"nested"`
}

func TestReadConfigLocalOverride(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "config.json5"), []byte(`{
		// comments are allowed
		name: "films",
		interval: 24,
		nested: { url: "https://example.com" },
	}`), 0600)
	require.NoError(t, err)
	err = os.WriteFile(filepath.Join(dir, "config.local.json5"), []byte(`{ interval: 6 }`), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.json5"))
	require.NoError(t, err)
	require.Equal(t, "films", cfg.Name)
	require.Equal(t, 6, cfg.Interval)
	require.Equal(t, "https://example.com", cfg.Nested.Url)
}

func TestReadConfigYaml(t *testing.T) {
	dir := t.TempDir()
	err := os.WriteFile(filepath.Join(dir, "config.yaml"), []byte("name: films\ninterval: 12\nnested:\n  url: file.db\n"), 0600)
	require.NoError(t, err)

	cfg, err := ReadConfig[testConfig](filepath.Join(dir, "config.yaml"))
	require.NoError(t, err)
	require.Equal(t, "films", cfg.Name)
	require.Equal(t, 12, cfg.Interval)
	require.Equal(t, "file.db", cfg.Nested.Url)
}

func TestReadConfigMissing(t *testing.T) {
	_, err := ReadConfig[testConfig](filepath.Join(t.TempDir(), "config.json5"))
	require.ErrorIs(t, err, os.ErrNotExist)
}

func TestWithDefaults(t *testing.T) {
	defaults := testConfig{Name: "default", Interval: 24}
	defaults.Nested.Url = "films.db"

	cfg := testConfig{Interval: 1}
	merged, err := WithDefaults(cfg, defaults)
	require.NoError(t, err)
	require.Equal(t, "default", merged.Name)
	require.Equal(t, 1, merged.Interval)
	require.Equal(t, "films.db", merged.Nested.Url)
}
