package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	apperrors "screengpt/internal/platform/errors"
)

var envKeys = []string{
	"GOOGLE_API_KEY", "GEMINI_API_KEY", "VISION_BASE_URL", "VISION_MODEL", "VISION_TEMPERATURE",
	"VISION_MAX_TOKENS", "PROMPT", "SCREENSHOT_DIR", "LOG_FILE", "LOG_FORMAT", "PREVIEW_LIMIT",
	"MAX_IMAGE_SIDE", "HOTKEY", "AUTO_INTERVAL", "TELEGRAM_TOKEN", "TELEGRAM_CHAT_ID",
	"LOG_LEVEL", "VERBOSE", "CONFIG_PATH",
}

func clearEnv(t *testing.T) {
	t.Helper()
	for _, k := range envKeys {
		t.Setenv(k, "")
	}
}

func TestLoad_Defaults(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "key")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "key", cfg.Vision.APIKey)
	require.Equal(t, "gemini-2.0-flash", cfg.Vision.Model)
	require.InDelta(t, 0.1, cfg.Vision.Temperature, 1e-6)
	require.Equal(t, "crew_temp_screenshots", cfg.Capture.Dir)
	require.Equal(t, "leetcode_solutions.md", cfg.Log.File)
	require.Equal(t, 500, cfg.Log.PreviewLimit)
	require.Zero(t, cfg.Trigger.AutoInterval)
}

func TestLoad_MissingKeyIsConfigError(t *testing.T) {
	clearEnv(t)

	_, err := Load("")
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindConfig))
}

func TestLoad_GeminiKeyFallback(t *testing.T) {
	clearEnv(t)
	t.Setenv("GEMINI_API_KEY", "gemini")

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "gemini", cfg.Vision.APIKey)
}

func TestLoad_FileThenEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
vision:
  api_key: from-file
  model: gpt-4o
capture:
  dir: shots
log:
  format: jsonl
trigger:
  auto_interval: 30s
telegram:
  chat_id: 42
`), 0o644))

	t.Setenv("VISION_MODEL", "gemini-2.5-pro")
	t.Setenv("PREVIEW_LIMIT", "120")

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, "from-file", cfg.Vision.APIKey)
	require.Equal(t, "gemini-2.5-pro", cfg.Vision.Model)
	require.Equal(t, "shots", cfg.Capture.Dir)
	require.Equal(t, "jsonl", cfg.Log.Format)
	require.Equal(t, 120, cfg.Log.PreviewLimit)
	require.Equal(t, 30*time.Second, cfg.Trigger.AutoInterval)
	require.Equal(t, int64(42), cfg.Telegram.ChatID)
}

func TestLoad_ConfigPathEnv(t *testing.T) {
	clearEnv(t)
	path := filepath.Join(t.TempDir(), "c.yaml")
	require.NoError(t, os.WriteFile(path, []byte("vision:\n  api_key: k\n"), 0o644))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := Load("")
	require.NoError(t, err)
	require.Equal(t, "k", cfg.Vision.APIKey)
}

func TestLoad_MissingFile(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "key")

	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.True(t, apperrors.IsKind(err, apperrors.KindConfig))
}

func TestLoad_BadEnvValues(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "key")
	t.Setenv("PREVIEW_LIMIT", "many")
	t.Setenv("AUTO_INTERVAL", "soon")

	_, err := Load("")
	require.Error(t, err)
	require.True(t, apperrors.IsKind(err, apperrors.KindConfig))
	require.Contains(t, err.Error(), "PREVIEW_LIMIT")
	require.Contains(t, err.Error(), "AUTO_INTERVAL")
}

func TestValidate(t *testing.T) {
	cases := map[string]func(c *Config){
		"format":      func(c *Config) { c.Log.Format = "xml" },
		"preview":     func(c *Config) { c.Log.PreviewLimit = 0 },
		"hotkey":      func(c *Config) { c.Trigger.Hotkey = "banana" },
		"temperature": func(c *Config) { c.Vision.Temperature = 3 },
		"interval":    func(c *Config) { c.Trigger.AutoInterval = -time.Second },
		"prompt":      func(c *Config) { c.Vision.Prompt = "poetry" },
		"f15":         func(c *Config) { c.Trigger.Hotkey = "ctrl+f15" },
	}

	for name, mutate := range cases {
		t.Run(name, func(t *testing.T) {
			cfg := Default()
			cfg.Vision.APIKey = "key"
			mutate(cfg)
			require.True(t, apperrors.IsKind(cfg.Validate(), apperrors.KindConfig))
		})
	}
}

func TestTriggerConfig_HotkeyEnabled(t *testing.T) {
	require.True(t, TriggerConfig{Hotkey: "ctrl+shift+a"}.HotkeyEnabled())
	require.False(t, TriggerConfig{Hotkey: "none"}.HotkeyEnabled())
	require.False(t, TriggerConfig{}.HotkeyEnabled())

	cfg := Default()
	cfg.Vision.APIKey = "key"
	cfg.Trigger.Hotkey = "None"
	require.NoError(t, cfg.Validate())
}

func TestLoad_RejectsLogInsideScreenshotDir(t *testing.T) {
	clearEnv(t)
	t.Setenv("GOOGLE_API_KEY", "key")
	t.Setenv("SCREENSHOT_DIR", ".")

	_, err := Load("")
	require.True(t, apperrors.IsKind(err, apperrors.KindConfig))
	require.Contains(t, err.Error(), "screenshot directory")
}

func TestValidate_LogBesideScreenshotDir(t *testing.T) {
	root := t.TempDir()
	cfg := Default()
	cfg.Vision.APIKey = "key"
	cfg.Capture.Dir = filepath.Join(root, "shots")
	cfg.Log.File = filepath.Join(root, "leetcode_solutions.md")
	require.NoError(t, cfg.Validate())

	cfg.Log.File = filepath.Join(root, "shots", "leetcode_solutions.md")
	require.True(t, apperrors.IsKind(cfg.Validate(), apperrors.KindConfig))
}
