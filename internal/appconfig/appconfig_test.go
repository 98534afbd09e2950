package appconfig

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestLoad_ProjectFileOverridesNothingWhenAbsent(t *testing.T) {
	cfg, err := Load(t.TempDir())
	require.NoError(t, err)
	require.Equal(t, Config{}, cfg)
}

func TestLoad_ProjectFileIsRead(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".ragit.yaml"), []byte("log_level: debug\ndefault_model: gpt-4o\n"), 0o644))

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "debug", cfg.LogLevel)
	require.Equal(t, "gpt-4o", cfg.DefaultModel)
}

func TestLoad_EnvVarsWinOverProjectFile(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".ragit.yaml"), []byte("log_level: debug\n"), 0o644))
	t.Setenv("RAGIT_LOG_LEVEL", "error")

	cfg, err := Load(dir)
	require.NoError(t, err)
	require.Equal(t, "error", cfg.LogLevel)
}

func TestConfig_MergeOnlyOverridesSetFields(t *testing.T) {
	base := Config{LogLevel: "info", DefaultModel: "claude"}
	merged := base.merge(Config{DefaultModel: "gpt-4o"})
	require.Equal(t, "info", merged.LogLevel)
	require.Equal(t, "gpt-4o", merged.DefaultModel)
}
