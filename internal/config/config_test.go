package config

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	t.Setenv("DATACHAT_CONFIG", filepath.Join(t.TempDir(), "nonexistent.json"))

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, 10, cfg.Database.MaxConnections)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
	assert.Equal(t, "gemini-1.5-flash", cfg.LLM.Model)
	assert.Equal(t, 5001, cfg.Server.Port)
	assert.Equal(t, 30, cfg.Tracker.MaxIssues)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.Equal(t, "stderr", cfg.Logging.Output)
}

func TestLoadConfig_EnvOverrides(t *testing.T) {
	t.Setenv("DATACHAT_CONFIG", filepath.Join(t.TempDir(), "nonexistent.json"))
	t.Setenv("DATACHAT_LLM_PROVIDER", "ollama")
	t.Setenv("DATACHAT_LLM_MODEL", "llama3")
	t.Setenv("DATACHAT_SERVER_PORT", "8080")
	t.Setenv("DATACHAT_LOG_LEVEL", "debug")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "llama3", cfg.LLM.Model)
	assert.Equal(t, 8080, cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
}

func TestLoadConfig_PrefixAppliedOnce(t *testing.T) {
	t.Setenv("DATACHAT_CONFIG", filepath.Join(t.TempDir(), "nonexistent.json"))

	// A doubled prefix must not be read; only DATACHAT_* names apply.
	t.Setenv("DATACHAT_DATACHAT_LLM_PROVIDER", "openai")

	cfg, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "gemini", cfg.LLM.Provider)
}

func TestSaveConfig_RoundTrip(t *testing.T) {
	configPath := filepath.Join(t.TempDir(), "config.json")
	t.Setenv("DATACHAT_CONFIG", configPath)

	cfg, err := LoadConfig()
	require.NoError(t, err)

	cfg.LLM.Provider = "anthropic"
	cfg.Tracker.Owner = "acme"
	require.NoError(t, SaveConfig(cfg))

	loaded, err := LoadConfig()
	require.NoError(t, err)
	assert.Equal(t, "anthropic", loaded.LLM.Provider)
	assert.Equal(t, "acme", loaded.Tracker.Owner)
}

func TestLoadConfig_FileThenEnv(t *testing.T) {
	dir := t.TempDir()
	configPath := filepath.Join(dir, "config.json")

	fileContent := `{
		"llm": {"provider": "openai", "model": "gpt-4o-mini"},
		"tracker": {"owner": "acme", "repo": "widgets"}
	}`
	require.NoError(t, os.WriteFile(configPath, []byte(fileContent), 0600))

	t.Setenv("DATACHAT_CONFIG", configPath)
	t.Setenv("DATACHAT_LLM_MODEL", "gpt-4o")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	// Environment overrides the file; file values survive where no
	// override exists
	assert.Equal(t, "gpt-4o", cfg.LLM.Model)
	assert.Equal(t, "openai", cfg.LLM.Provider)
	assert.Equal(t, "acme", cfg.Tracker.Owner)
	assert.Equal(t, "widgets", cfg.Tracker.Repo)
}

func TestLoadConfig_InvalidValues(t *testing.T) {
	tests := []struct {
		name  string
		env   map[string]string
		inErr string
	}{
		{
			name:  "bad log level",
			env:   map[string]string{"DATACHAT_LOG_LEVEL": "verbose"},
			inErr: "invalid log level",
		},
		{
			name:  "bad log format",
			env:   map[string]string{"DATACHAT_LOG_FORMAT": "xml"},
			inErr: "invalid log format",
		},
		{
			name:  "bad server port",
			env:   map[string]string{"DATACHAT_SERVER_PORT": "70000"},
			inErr: "invalid server port",
		},
		{
			name:  "bad llm timeout",
			env:   map[string]string{"DATACHAT_LLM_TIMEOUT": "fast"},
			inErr: "invalid llm timeout",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("DATACHAT_CONFIG", filepath.Join(t.TempDir(), "nonexistent.json"))

			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.inErr)
		})
	}
}

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)

	assert.Equal(t, filepath.Join(home, "data"), expandPath("~/data"))
	assert.Equal(t, home, expandPath("~"))
	assert.Equal(t, "/absolute/path", expandPath("/absolute/path"))
	assert.Equal(t, "relative/path", expandPath("relative/path"))
}
