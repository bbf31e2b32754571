package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"context-cvss4/cvss"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadDefault(t *testing.T) {
	c, err := Load("")
	require.NoError(t, err)
	assert.Equal(t, Default(), c)
}

func TestLoad(t *testing.T) {
	path := writeConfig(t, `
log_level: debug
workers: 8
metrics:
  cr: H
  ir: L
  msi: S
  smart: true
nvd:
  api_key: abc
server:
  addr: 127.0.0.1:9000
`)
	c, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "debug", c.LogLevel)
	assert.Equal(t, 8, c.Workers)
	assert.Equal(t, cvss.MetricsOptions{CR: "H", IR: "L", MSI: "S", Smart: true}, c.Metrics)
	assert.Equal(t, "abc", c.NVD.APIKey)
	assert.Equal(t, "127.0.0.1:9000", c.Server.Addr)
}

func TestLoadKeepsDefaults(t *testing.T) {
	c, err := Load(writeConfig(t, "metrics:\n  e: P\n"))
	require.NoError(t, err)
	assert.Equal(t, ":8080", c.Server.Addr)
	assert.Equal(t, 4, c.Workers)
	assert.Equal(t, "P", c.Metrics.E)
}

func TestLoadErrors(t *testing.T) {
	tests := map[string]string{
		"bad yaml":    "metrics: [",
		"bad level":   "log_level: loud",
		"bad workers": "workers: 0",
		"bad metric":  "metrics:\n  cr: Q\n",
	}
	for name, body := range tests {
		t.Run(name, func(t *testing.T) {
			_, err := Load(writeConfig(t, body))
			assert.Error(t, err)
		})
	}
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
