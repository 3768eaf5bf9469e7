// Package config handles loading and validating the yuban configuration.
package config

import (
	"fmt"
	"log/slog"
	"os"
	"strings"

	"github.com/spf13/viper"
)

// Config is the root configuration for the yuban daemon.
type Config struct {
	Server  ServerConfig  `mapstructure:"server"`
	Groq    GroqConfig    `mapstructure:"groq"`
	Tutor   TutorConfig   `mapstructure:"tutor"`
	Speech  SpeechConfig  `mapstructure:"speech"`
	Store   StoreConfig   `mapstructure:"store"`
	Logging LoggingConfig `mapstructure:"logging"`
}

// ServerConfig holds the API and health server settings.
type ServerConfig struct {
	Port       int `mapstructure:"port"`
	HealthPort int `mapstructure:"health_port"`
}

// GroqConfig holds settings for the Groq OpenAI-compatible API, which
// provides transcription, translation, and tutor reply generation.
type GroqConfig struct {
	// APIKey is required; the daemon refuses to start without it.
	APIKey             string `mapstructure:"api_key"`
	BaseURL            string `mapstructure:"base_url"`
	TranscriptionModel string `mapstructure:"transcription_model"`
	ChatModel          string `mapstructure:"chat_model"`
}

// TutorConfig tunes the reply generation pipeline.
type TutorConfig struct {
	// HistoryWindow is how many recent turns are replayed into the prompt.
	HistoryWindow int `mapstructure:"history_window"`
}

// SpeechConfig selects and configures the text-to-speech backend.
type SpeechConfig struct {
	// Backend is "gtts", "gemini", or "none".
	Backend string       `mapstructure:"backend"`
	GTTS    GTTSConfig   `mapstructure:"gtts"`
	Gemini  GeminiConfig `mapstructure:"gemini"`

	// Normalize runs synthesized audio through the ffmpeg loudness chain.
	Normalize  bool   `mapstructure:"normalize"`
	FFmpegPath string `mapstructure:"ffmpeg_path"`
}

// GTTSConfig holds Google Translate TTS settings.
type GTTSConfig struct {
	Endpoint string `mapstructure:"endpoint"`
	Language string `mapstructure:"language"`
}

// GeminiConfig holds Gemini TTS settings. An empty APIKey disables the
// backend rather than failing startup.
type GeminiConfig struct {
	APIKey string `mapstructure:"api_key"`
	Model  string `mapstructure:"model"`
	Voice  string `mapstructure:"voice"`
}

// StoreConfig selects and configures conversation persistence.
type StoreConfig struct {
	// Backend is "file" or "postgres".
	Backend  string         `mapstructure:"backend"`
	File     FileConfig     `mapstructure:"file"`
	Postgres PostgresConfig `mapstructure:"postgres"`
	Blob     BlobConfig     `mapstructure:"blob"`
}

// FileConfig holds the local JSON history file settings.
type FileConfig struct {
	Path string `mapstructure:"path"`
}

// PostgresConfig holds the managed-table settings.
type PostgresConfig struct {
	DSN string `mapstructure:"dsn"`
}

// BlobConfig selects where synthesized audio artifacts are stored.
type BlobConfig struct {
	// Backend is "local" or "supabase".
	Backend  string         `mapstructure:"backend"`
	Local    LocalConfig    `mapstructure:"local"`
	Supabase SupabaseConfig `mapstructure:"supabase"`
}

// LocalConfig holds local audio artifact settings. Files written here are
// served by the API under URLPrefix.
type LocalConfig struct {
	Dir       string `mapstructure:"dir"`
	URLPrefix string `mapstructure:"url_prefix"`
}

// SupabaseConfig holds Supabase Storage settings. Empty URL or Key disables
// the backend rather than failing startup.
type SupabaseConfig struct {
	URL    string `mapstructure:"url"`
	Key    string `mapstructure:"key"`
	Bucket string `mapstructure:"bucket"`
}

// LoggingConfig holds structured logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`  // debug, info, warn, error
	Format string `mapstructure:"format"` // json, text
}

// Load reads the configuration from file, environment variables, and defaults.
// If configFile is non-empty it is used directly; otherwise the standard
// search order applies: ./yuban.yaml, ./configs/yuban.yaml, /etc/yuban/yuban.yaml.
func Load(configFile string) (*Config, error) {
	v := viper.New()

	// Defaults
	v.SetDefault("server.port", 8001)
	v.SetDefault("server.health_port", 8081)
	v.SetDefault("groq.api_key", "${GROQ_API_KEY}")
	v.SetDefault("groq.base_url", "https://api.groq.com/openai/v1")
	v.SetDefault("groq.transcription_model", "whisper-large-v3")
	v.SetDefault("groq.chat_model", "meta-llama/llama-4-scout-17b-16e-instruct")
	v.SetDefault("tutor.history_window", 8)
	v.SetDefault("speech.backend", "gtts")
	v.SetDefault("speech.gtts.endpoint", "https://translate.google.com/translate_tts")
	v.SetDefault("speech.gtts.language", "zh-CN")
	v.SetDefault("speech.gemini.api_key", "${GEMINI_API_KEY}")
	v.SetDefault("speech.gemini.model", "gemini-2.5-flash-preview-tts")
	v.SetDefault("speech.gemini.voice", "Zephyr")
	v.SetDefault("speech.normalize", false)
	v.SetDefault("speech.ffmpeg_path", "ffmpeg")
	v.SetDefault("store.backend", "file")
	v.SetDefault("store.file.path", "chat_history.json")
	v.SetDefault("store.postgres.dsn", "${DATABASE_URL}")
	v.SetDefault("store.blob.backend", "local")
	v.SetDefault("store.blob.local.dir", "static/audio")
	v.SetDefault("store.blob.local.url_prefix", "/audio/")
	v.SetDefault("store.blob.supabase.url", "${SUPABASE_URL}")
	v.SetDefault("store.blob.supabase.key", "${SUPABASE_KEY}")
	v.SetDefault("store.blob.supabase.bucket", "audioresponses")
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")

	// Config file
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("yuban")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./configs")
		v.AddConfigPath("/etc/yuban")
	}

	// Environment variables: YUBAN_SERVER_PORT, YUBAN_SPEECH_BACKEND, etc.
	v.SetEnvPrefix("YUBAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config file (optional — env vars and defaults are sufficient)
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("reading config: %w", err)
		}
		slog.Info("no config file found, using defaults and environment variables")
	} else {
		slog.Info("loaded config file", "path", v.ConfigFileUsed())
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshalling config: %w", err)
	}

	// Resolve env var references in sensitive fields (e.g., "${GROQ_API_KEY}")
	cfg.Groq.APIKey = resolveEnvRef(cfg.Groq.APIKey)
	cfg.Speech.Gemini.APIKey = resolveEnvRef(cfg.Speech.Gemini.APIKey)
	cfg.Store.Postgres.DSN = resolveEnvRef(cfg.Store.Postgres.DSN)
	cfg.Store.Blob.Supabase.URL = resolveEnvRef(cfg.Store.Blob.Supabase.URL)
	cfg.Store.Blob.Supabase.Key = resolveEnvRef(cfg.Store.Blob.Supabase.Key)

	// The Groq credential backs transcription and generation; without it the
	// daemon has no pipeline to run.
	if cfg.Groq.APIKey == "" {
		return nil, fmt.Errorf("groq.api_key is required (set GROQ_API_KEY)")
	}

	return &cfg, nil
}

// resolveEnvRef replaces "${VAR_NAME}" patterns with the corresponding env
// var value. An unset variable resolves to empty, which disables the
// dependent feature for optional credentials.
func resolveEnvRef(val string) string {
	if strings.HasPrefix(val, "${") && strings.HasSuffix(val, "}") {
		return os.Getenv(val[2 : len(val)-1])
	}
	return val
}

// SetupLogging configures the global slog logger based on config.
func SetupLogging(cfg LoggingConfig) {
	var level slog.Level
	switch strings.ToLower(cfg.Level) {
	case "debug":
		level = slog.LevelDebug
	case "warn":
		level = slog.LevelWarn
	case "error":
		level = slog.LevelError
	default:
		level = slog.LevelInfo
	}

	opts := &slog.HandlerOptions{Level: level}

	var handler slog.Handler
	if strings.ToLower(cfg.Format) == "text" {
		handler = slog.NewTextHandler(os.Stdout, opts)
	} else {
		handler = slog.NewJSONHandler(os.Stdout, opts)
	}

	slog.SetDefault(slog.New(handler))
}
