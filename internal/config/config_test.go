package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeFile(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	return path
}

func envMap(m map[string]string) func(string) string {
	return func(k string) string { return m[k] }
}

func TestLoadTOML(t *testing.T) {
	path := writeFile(t, "config.toml", `
[window]
size = 3

[evaluation]
show_max = 10
align = "id"

[memgraph]
uri = "bolt://graph:7687"
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 3, cfg.Window.Size)
	assert.Equal(t, "<ASP>", cfg.Window.OpenMarker, "defaults survive partial files")
	assert.Equal(t, 10, cfg.Evaluation.ShowMax)
	assert.Equal(t, "id", cfg.Evaluation.Align)
	assert.Equal(t, "bolt://graph:7687", cfg.Memgraph.URI)
	assert.Empty(t, cfg.Dataset.DropPolarities, "nothing is dropped unless configured")
}

func TestLoadYAML(t *testing.T) {
	path := writeFile(t, "config.yaml", `
window:
  size: 7
dataset:
  drop_polarities: [conflict]
logging:
  format: console
`)
	cfg, err := Load(path)
	require.NoError(t, err)

	assert.Equal(t, 7, cfg.Window.Size)
	assert.Equal(t, []string{"conflict"}, cfg.Dataset.DropPolarities)
	assert.Equal(t, "console", cfg.Logging.Format)
	assert.Equal(t, 50, cfg.Evaluation.ShowMax)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.toml"))
	assert.Error(t, err)

	path := writeFile(t, "bad.toml", "[window\nsize=")
	_, err = Load(path)
	assert.ErrorContains(t, err, "TOML")
}

func TestApplyEnv(t *testing.T) {
	cfg := Default()
	err := cfg.ApplyEnv(envMap(map[string]string{
		"ABSA_WINDOW_SIZE":  "2",
		"ABSA_SHOW_MAX":     "5",
		"PORT":              "9090",
		"MEMGRAPH_PASSWORD": "secret",
		"LOG_LEVEL":         "debug",
	}))
	require.NoError(t, err)

	assert.Equal(t, 2, cfg.Window.Size)
	assert.Equal(t, 5, cfg.Evaluation.ShowMax)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "secret", cfg.Memgraph.Password)
	assert.Equal(t, "debug", cfg.Logging.Level)

	err = cfg.ApplyEnv(envMap(map[string]string{"ABSA_WINDOW_SIZE": "wide"}))
	assert.ErrorContains(t, err, "ABSA_WINDOW_SIZE")
}

func TestValidate(t *testing.T) {
	assert.NoError(t, Default().Validate())

	cfg := Default()
	cfg.Window.Size = -1
	cfg.Window.CloseMarker = cfg.Window.OpenMarker
	cfg.Evaluation.Align = "fuzzy"
	cfg.Concurrency.BulkExport = 0

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "window.size")
	assert.Contains(t, err.Error(), "markers must differ")
	assert.Contains(t, err.Error(), "evaluation.align")
	assert.Contains(t, err.Error(), "bulk_export")
}

func TestResolve(t *testing.T) {
	path := writeFile(t, "config.toml", "[window]\nsize = 1\n")

	cfg, err := Resolve("", envMap(map[string]string{"CONFIG_PATH": path, "ABSA_SHOW_MAX": "3"}))
	require.NoError(t, err)
	assert.Equal(t, 1, cfg.Window.Size)
	assert.Equal(t, 3, cfg.Evaluation.ShowMax)

	cfg, err = Resolve("", envMap(nil))
	require.NoError(t, err)
	assert.Equal(t, 5, cfg.Window.Size)

	_, err = Resolve("", envMap(map[string]string{"ABSA_WINDOW_SIZE": "-3"}))
	assert.ErrorContains(t, err, "invalid configuration")
}
