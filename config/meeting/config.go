package config

import (
	"time"

	"github.com/ilyakaznacheev/cleanenv"
)

type Config struct {
	Port           int      `env:"PORT" env-default:"5000"`
	DatabaseURL    string   `env:"DATABASE_URL"`
	UploadDir      string   `env:"UPLOAD_DIR" env-default:"./uploads"`
	AllowedOrigins []string `env:"ALLOWED_ORIGINS" env-separator:"," env-default:"*"`
	LogFile        string   `env:"LOG_FILE"`

	Transcriber TranscriberConfig `env-prefix:""`
	Summarizer  SummarizerConfig  `env-prefix:""`
}

type TranscriberConfig struct {
	APIKey       string        `env:"ASSEMBLYAI_API_KEY"`
	PollInterval time.Duration `env:"TRANSCRIBE_POLL_INTERVAL" env-default:"3s"`
	MaxAttempts  int           `env:"TRANSCRIBE_MAX_ATTEMPTS" env-default:"3"`
}

type SummarizerConfig struct {
	Url string `env:"SUMMARIZER_URL"`
}

func MustLoad() *Config {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		panic("failed to read environment variables: " + err.Error())
	}
	return &cfg
}
