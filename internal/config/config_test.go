package config_test

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/treegrep/treegrep/internal/config"
)

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := config.LoadConfig(filepath.Join(t.TempDir(), "missing.yml"))
	require.Error(t, err)
	assert.Nil(t, cfg)

	// No explicit path: missing file falls back to defaults.
	t.Chdir(t.TempDir())

	cfg, err = config.LoadConfig("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultScanWorkers, cfg.Scan.Workers)
	assert.EqualValues(t, config.DefaultScanMaxFileSize, cfg.Scan.MaxFileSize)
	assert.Equal(t, "text", cfg.Output.Format)
	assert.Equal(t, "auto", cfg.Output.Color)
}

func TestLoadConfigFromFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "treegrep.yml")
	doc := "scan:\n  workers: 4\noutput:\n  format: json\nrules:\n  dirs: [rules]\n"
	require.NoError(t, os.WriteFile(path, []byte(doc), 0o600))

	cfg, err := config.LoadConfig(path)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Scan.Workers)
	assert.Equal(t, "json", cfg.Output.Format)
	assert.Equal(t, []string{"rules"}, cfg.Rules.Dirs)
	// Unset keys keep their defaults.
	assert.Equal(t, "auto", cfg.Output.Color)
}

func TestValidateRejectsBadValues(t *testing.T) {
	cases := []struct {
		name string
		mut  func(*config.Config)
		want error
	}{
		{"negative workers", func(c *config.Config) { c.Scan.Workers = -1 }, config.ErrInvalidWorkers},
		{"zero max file size", func(c *config.Config) { c.Scan.MaxFileSize = 0 }, config.ErrInvalidMaxFileSize},
		{"bad format", func(c *config.Config) { c.Output.Format = "xml" }, config.ErrInvalidFormat},
		{"bad color", func(c *config.Config) { c.Output.Color = "sometimes" }, config.ErrInvalidColor},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			t.Parallel()

			cfg := &config.Config{
				Scan:   config.ScanConfig{MaxFileSize: 1},
				Output: config.OutputConfig{Format: "text", Color: "auto"},
			}
			tc.mut(cfg)
			assert.ErrorIs(t, cfg.Validate(), tc.want)
		})
	}
}
