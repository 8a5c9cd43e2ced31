package config

import (
	"strings"
	"time"

	"github.com/knadh/koanf/parsers/yaml"
	"github.com/knadh/koanf/providers/env"
	"github.com/knadh/koanf/providers/file"
	"github.com/knadh/koanf/v2"
)

const envPrefix = "SPAMSNIFFER_"

type Config struct {
	Server   ServerConfig   `koanf:"server"`
	Model    ModelConfig    `koanf:"model"`
	Summary  SummaryConfig  `koanf:"summary"`
	Storage  StorageConfig  `koanf:"storage"`
	Redis    RedisConfig    `koanf:"redis"`
	Queue    QueueConfig    `koanf:"queue"`
	Notifier NotifierConfig `koanf:"notifier"`
	Log      LogConfig      `koanf:"log"`
}

type ServerConfig struct {
	Port         string   `koanf:"port"`
	AllowOrigins []string `koanf:"allow_origins"`
	BodyLimit    string   `koanf:"body_limit"`
}

type ModelConfig struct {
	Path string `koanf:"path"`
}

type SummaryConfig struct {
	Sentences int `koanf:"sentences"`
}

type StorageConfig struct {
	Driver string `koanf:"driver"`
	DSN    string `koanf:"dsn"`
}

type RedisConfig struct {
	Addr string        `koanf:"addr"`
	TTL  time.Duration `koanf:"ttl"`
}

type QueueConfig struct {
	Brokers     []string `koanf:"brokers"`
	Topic       string   `koanf:"topic"`
	ResultTopic string   `koanf:"result_topic"`
	GroupID     string   `koanf:"group_id"`
}

type NotifierConfig struct {
	TelegramToken   string   `koanf:"telegram_token"`
	TelegramChatIDs []string `koanf:"telegram_chat_ids"`
}

type LogConfig struct {
	Level  string `koanf:"level"`
	Format string `koanf:"format"`
}

func defaults() Config {
	return Config{
		Server: ServerConfig{
			Port:         ":5000",
			AllowOrigins: []string{"http://localhost:5173"},
			BodyLimit:    "2M",
		},
		Model:   ModelConfig{Path: "model.json.gz"},
		Summary: SummaryConfig{Sentences: 3},
		Storage: StorageConfig{Driver: "sqlite", DSN: "spamsniffer.db"},
		Redis:   RedisConfig{TTL: 24 * time.Hour},
		Queue: QueueConfig{
			Topic:       "emails",
			ResultTopic: "verdicts",
			GroupID:     "spamsniffer",
		},
		Log: LogConfig{Level: "info", Format: "json"},
	}
}

// Load reads config.yaml from the working directory.
func Load() (*Config, error) {
	return LoadFile("config.yaml")
}

// LoadFile reads path on top of the defaults, then applies SPAMSNIFFER_*
// environment overrides; "__" in a variable name separates sections, e.g.
// SPAMSNIFFER_STORAGE__DSN.
func LoadFile(path string) (*Config, error) {
	k := koanf.New(".")

	if path != "" {
		if err := k.Load(file.Provider(path), yaml.Parser()); err != nil {
			return nil, err
		}
	}

	if err := k.Load(env.Provider(envPrefix, ".", envKey), nil); err != nil {
		return nil, err
	}

	cfg := defaults()
	if err := k.Unmarshal("", &cfg); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func envKey(s string) string {
	s = strings.TrimPrefix(s, envPrefix)
	return strings.ReplaceAll(strings.ToLower(s), "__", ".")
}
