// Package config loads the gateway configuration from an optional TOML file
// with environment variables taking precedence, so container deployments can
// run without a config file at all.
package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/go-playground/validator/v10"
)

const (
	DefaultConfigPath     = "config.toml"
	DefaultHTTPAddr       = ":8080"
	DefaultTimeoutSeconds = 300
	DefaultMaxUploadMB    = 50
	DefaultDownloadsDir   = "./downloads"
	DefaultTextModel      = "openai/gpt-oss-120b"
)

type Config struct {
	Log      LogConfig      `toml:"log"`
	Server   ServerConfig   `toml:"server"`
	Telegram TelegramConfig `toml:"telegram"`
	Groq     GroqConfig     `toml:"groq"`
	Media    MediaConfig    `toml:"media"`
}

type LogConfig struct {
	Level  string `toml:"level"`
	Format string `toml:"format"`
}

type ServerConfig struct {
	Addr string `toml:"addr"`
}

type TelegramConfig struct {
	BotToken string `toml:"bot_token" validate:"required"`
	// RequiredChannel optionally gates the bot behind channel membership.
	// Empty disables the gate.
	RequiredChannel string `toml:"required_channel"`
	// AdminChatID receives a best-effort forward of every inbound media
	// message. Zero disables forwarding.
	AdminChatID int64 `toml:"admin_chat_id"`
}

type GroqConfig struct {
	// Keys is the comma-separated credential pool.
	Keys           string `toml:"keys"`
	TextModel      string `toml:"text_model" validate:"required"`
	TimeoutSeconds int    `toml:"timeout_seconds" validate:"min=1"`
}

type MediaConfig struct {
	MaxUploadMB  int    `toml:"max_upload_mb" validate:"min=1"`
	DownloadsDir string `toml:"downloads_dir" validate:"required"`
}

// RequestTimeout is the fixed timeout shared by every upstream call.
func (c GroqConfig) RequestTimeout() time.Duration {
	return time.Duration(c.TimeoutSeconds) * time.Second
}

// MaxUploadBytes is the inbound media size cap in bytes.
func (c MediaConfig) MaxUploadBytes() int64 {
	return int64(c.MaxUploadMB) * 1024 * 1024
}

// Load reads the config file at path (skipped when absent), applies
// environment overrides, and validates the result. An empty path falls back
// to DefaultConfigPath.
func Load(path string) (Config, error) {
	cfg := Config{
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Server: ServerConfig{
			Addr: DefaultHTTPAddr,
		},
		Groq: GroqConfig{
			TextModel:      DefaultTextModel,
			TimeoutSeconds: DefaultTimeoutSeconds,
		},
		Media: MediaConfig{
			MaxUploadMB:  DefaultMaxUploadMB,
			DownloadsDir: DefaultDownloadsDir,
		},
	}

	if path == "" {
		path = DefaultConfigPath
	}
	if _, err := os.Stat(path); err == nil {
		if _, err := toml.DecodeFile(path, &cfg); err != nil {
			return cfg, fmt.Errorf("decode config file: %w", err)
		}
	} else if !os.IsNotExist(err) {
		return cfg, err
	}

	applyEnv(&cfg)

	if err := validator.New().Struct(cfg); err != nil {
		return cfg, fmt.Errorf("invalid configuration: %w", err)
	}
	return cfg, nil
}

// applyEnv overlays environment variables onto the file-based configuration.
func applyEnv(cfg *Config) {
	setString(&cfg.Telegram.BotToken, "BOT_TOKEN")
	// Presence-based so REQUIRED_CHANNEL="" can disable a gate configured
	// in the file.
	if v, ok := os.LookupEnv("REQUIRED_CHANNEL"); ok {
		cfg.Telegram.RequiredChannel = v
	}
	setInt64(&cfg.Telegram.AdminChatID, "ADMIN_CHAT_ID")
	if port := os.Getenv("PORT"); port != "" {
		cfg.Server.Addr = ":" + port
	}
	setInt(&cfg.Groq.TimeoutSeconds, "REQUEST_TIMEOUT")
	setString(&cfg.Groq.TextModel, "GROQ_TEXT_MODEL")
	setInt(&cfg.Media.MaxUploadMB, "MAX_UPLOAD_MB")
	setString(&cfg.Media.DownloadsDir, "DOWNLOADS_DIR")
	setString(&cfg.Log.Level, "LOG_LEVEL")
	setString(&cfg.Log.Format, "LOG_FORMAT")

	// GROQ_KEYS falls back to the singular form.
	for _, name := range []string{"GROQ_KEYS", "GROQ_KEY"} {
		if v := os.Getenv(name); v != "" {
			cfg.Groq.Keys = v
			break
		}
	}
}

func setString(target *string, name string) {
	if v := os.Getenv(name); v != "" {
		*target = v
	}
}

func setInt(target *int, name string) {
	if v := os.Getenv(name); v != "" {
		if parsed, err := strconv.Atoi(v); err == nil {
			*target = parsed
		}
	}
}

func setInt64(target *int64, name string) {
	if v := os.Getenv(name); v != "" {
		if parsed, err := strconv.ParseInt(v, 10, 64); err == nil {
			*target = parsed
		}
	}
}
