package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"runtime"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"screengpt/internal/infrastructure/storage"
	"screengpt/internal/infrastructure/vision"
	apperrors "screengpt/internal/platform/errors"
	"screengpt/internal/trigger"
)

type Config struct {
	Vision   VisionConfig   `yaml:"vision"`
	Capture  CaptureConfig  `yaml:"capture"`
	Log      LogConfig      `yaml:"log"`
	Trigger  TriggerConfig  `yaml:"trigger"`
	Telegram TelegramConfig `yaml:"telegram"`
}

type VisionConfig struct {
	APIKey       string  `yaml:"api_key"`
	BaseURL      string  `yaml:"base_url"`
	Model        string  `yaml:"model"`
	Temperature  float32 `yaml:"temperature"`
	MaxTokens    int     `yaml:"max_tokens"`
	Prompt       string  `yaml:"prompt"`
	MaxImageSide int     `yaml:"max_image_side"`
}

type CaptureConfig struct {
	// Dir каталог временных снимков, очищается после каждого запуска
	Dir string `yaml:"dir"`
}

type LogConfig struct {
	File         string `yaml:"file"`
	Format       string `yaml:"format"`
	PreviewLimit int    `yaml:"preview_limit"`
	Level        string `yaml:"level"`
	Verbose      bool   `yaml:"verbose"`
}

type TriggerConfig struct {
	Hotkey       string        `yaml:"hotkey"`
	AutoInterval time.Duration `yaml:"auto_interval"`
}

// HotkeyEnabled false, если горячая клавиша отключена значением "none" или пустой строкой.
func (t TriggerConfig) HotkeyEnabled() bool {
	h := strings.TrimSpace(strings.ToLower(t.Hotkey))
	return h != "" && h != "none"
}

type TelegramConfig struct {
	Token  string `yaml:"token"`
	ChatID int64  `yaml:"chat_id"`
}

// Default значения без файла и переменных окружения.
func Default() *Config {
	hotkey := "ctrl+shift+a"
	if runtime.GOOS == "darwin" {
		hotkey = "cmd+shift+a"
	}

	return &Config{
		Vision: VisionConfig{
			BaseURL:      vision.DefaultBaseURL,
			Model:        vision.DefaultModel,
			Temperature:  0.1,
			MaxTokens:    4096,
			Prompt:       vision.PromptLeetCode,
			MaxImageSide: 1600,
		},
		Capture: CaptureConfig{Dir: "crew_temp_screenshots"},
		Log: LogConfig{
			File:         "leetcode_solutions.md",
			Format:       "markdown",
			PreviewLimit: 500,
			Level:        "info",
		},
		Trigger: TriggerConfig{Hotkey: hotkey},
	}
}

// Load читает конфигурацию: значения по умолчанию, затем YAML-файл, затем окружение.
// path может быть пустым, тогда используется CONFIG_PATH.
func Load(path string) (*Config, error) {
	// Загружаем .env файл (игнорируем ошибку если файла нет)
	_ = godotenv.Load()

	cfg := Default()

	if path == "" {
		path = os.Getenv("CONFIG_PATH")
	}
	if path != "" {
		if err := cfg.loadFile(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.loadEnv(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) loadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return apperrors.New(apperrors.KindConfig, "load", fmt.Sprintf("config file not found: %s", path))
		}
		return apperrors.Wrap(apperrors.KindConfig, "load", "read config file", err)
	}

	if err := yaml.Unmarshal(data, c); err != nil {
		return apperrors.Wrap(apperrors.KindConfig, "load", "parse config file", err)
	}
	return nil
}

func (c *Config) loadEnv() error {
	if v := firstEnv("GOOGLE_API_KEY", "GEMINI_API_KEY"); v != "" {
		c.Vision.APIKey = v
	}
	setString(&c.Vision.BaseURL, "VISION_BASE_URL")
	setString(&c.Vision.Model, "VISION_MODEL")
	setString(&c.Vision.Prompt, "PROMPT")
	setString(&c.Capture.Dir, "SCREENSHOT_DIR")
	setString(&c.Log.File, "LOG_FILE")
	setString(&c.Log.Format, "LOG_FORMAT")
	setString(&c.Log.Level, "LOG_LEVEL")
	setString(&c.Trigger.Hotkey, "HOTKEY")
	setString(&c.Telegram.Token, "TELEGRAM_TOKEN")

	var errs []error
	if v := os.Getenv("VISION_TEMPERATURE"); v != "" {
		f, err := strconv.ParseFloat(v, 32)
		errs = append(errs, envErr("VISION_TEMPERATURE", err))
		c.Vision.Temperature = float32(f)
	}
	errs = append(errs,
		setInt(&c.Vision.MaxTokens, "VISION_MAX_TOKENS"),
		setInt(&c.Vision.MaxImageSide, "MAX_IMAGE_SIDE"),
		setInt(&c.Log.PreviewLimit, "PREVIEW_LIMIT"),
	)
	if v := os.Getenv("TELEGRAM_CHAT_ID"); v != "" {
		id, err := strconv.ParseInt(v, 10, 64)
		errs = append(errs, envErr("TELEGRAM_CHAT_ID", err))
		c.Telegram.ChatID = id
	}
	if v := os.Getenv("AUTO_INTERVAL"); v != "" {
		d, err := time.ParseDuration(v)
		errs = append(errs, envErr("AUTO_INTERVAL", err))
		c.Trigger.AutoInterval = d
	}
	if v := os.Getenv("VERBOSE"); v != "" {
		b, err := strconv.ParseBool(v)
		errs = append(errs, envErr("VERBOSE", err))
		c.Log.Verbose = b
	}

	if err := errors.Join(errs...); err != nil {
		return apperrors.Wrap(apperrors.KindConfig, "env", "invalid environment", err)
	}
	return nil
}

// Validate проверяет, что с конфигурацией можно запуститься.
func (c *Config) Validate() error {
	if c.Vision.APIKey == "" {
		return apperrors.New(apperrors.KindConfig, "validate", "GOOGLE_API_KEY is required")
	}

	var problems []string
	if c.Vision.Model == "" {
		problems = append(problems, "vision model is empty")
	}
	if c.Vision.Temperature < 0 || c.Vision.Temperature > 2 {
		problems = append(problems, fmt.Sprintf("temperature %.2f out of range [0, 2]", c.Vision.Temperature))
	}
	if c.Vision.MaxTokens < 0 {
		problems = append(problems, "max tokens must not be negative")
	}
	if _, err := vision.Prompt(c.Vision.Prompt); err != nil {
		problems = append(problems, err.Error())
	}
	if c.Vision.MaxImageSide < 0 {
		problems = append(problems, "max image side must not be negative")
	}
	if c.Capture.Dir == "" {
		problems = append(problems, "screenshot dir is empty")
	}
	if c.Log.File == "" {
		problems = append(problems, "log file is empty")
	}
	if err := storage.CheckSeparate(c.Log.File, c.Capture.Dir); err != nil {
		problems = append(problems, err.Error())
	}
	if f := strings.ToLower(c.Log.Format); f != "markdown" && f != "jsonl" {
		problems = append(problems, fmt.Sprintf("log format %q must be markdown or jsonl", c.Log.Format))
	}
	if c.Log.PreviewLimit <= 0 {
		problems = append(problems, "preview limit must be positive")
	}
	if c.Trigger.AutoInterval < 0 {
		problems = append(problems, "auto interval must not be negative")
	}
	if c.Trigger.HotkeyEnabled() {
		if _, err := trigger.ParseCombo(c.Trigger.Hotkey); err != nil {
			problems = append(problems, err.Error())
		}
	}

	if len(problems) > 0 {
		return apperrors.New(apperrors.KindConfig, "validate", strings.Join(problems, "; "))
	}
	return nil
}

func firstEnv(keys ...string) string {
	for _, k := range keys {
		if v := os.Getenv(k); v != "" {
			return v
		}
	}
	return ""
}

func setString(dst *string, key string) {
	if v := os.Getenv(key); v != "" {
		*dst = v
	}
}

func setInt(dst *int, key string) error {
	v := os.Getenv(key)
	if v == "" {
		return nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return envErr(key, err)
	}
	*dst = n
	return nil
}

func envErr(key string, err error) error {
	if err == nil {
		return nil
	}
	return fmt.Errorf("%s: %w", key, err)
}
