package config

import (
	"fmt"
	"strings"

	"github.com/kelseyhightower/envconfig"
)

// Config содержит конфигурацию приложения
type Config struct {
	Env      string `envconfig:"ENV" default:"development"`
	LogLevel string `envconfig:"LOG_LEVEL" default:"info"`

	Server   ServerConfig
	Database DatabaseConfig
	AI       AIConfig
}

// ServerConfig содержит конфигурацию HTTP сервера
type ServerConfig struct {
	Port                int    `envconfig:"SERVER_PORT" default:"8080"`
	BasePath            string `envconfig:"SERVER_BASE_PATH" default:"/api"`
	ReadTimeoutSeconds  int    `envconfig:"SERVER_READ_TIMEOUT" default:"15"`
	WriteTimeoutSeconds int    `envconfig:"SERVER_WRITE_TIMEOUT" default:"60"`
	IdleTimeoutSeconds  int    `envconfig:"SERVER_IDLE_TIMEOUT" default:"60"`
}

// DatabaseConfig содержит конфигурацию базы данных
type DatabaseConfig struct {
	Host               string `envconfig:"DB_HOST" default:"localhost"`
	Port               int    `envconfig:"DB_PORT" default:"5432"`
	User               string `envconfig:"DB_USER" default:"postgres"`
	Password           string `envconfig:"DB_PASSWORD" default:"postgres"`
	Name               string `envconfig:"DB_NAME" default:"storytime"`
	SSLMode            string `envconfig:"DB_SSL_MODE" default:"disable"`
	MaxConnections     int    `envconfig:"DB_MAX_CONNECTIONS" default:"10"`
	MaxConnIdleMinutes int    `envconfig:"DB_MAX_IDLE_MINUTES" default:"5"`
}

// AIConfig содержит конфигурацию для OpenAI API.
// Ключ обязателен: без него процесс не стартует.
type AIConfig struct {
	APIKey         string  `envconfig:"OPENAI_API_KEY"`
	Model          string  `envconfig:"OPENAI_MODEL" default:"gpt-4o"`
	SpeechModel    string  `envconfig:"OPENAI_SPEECH_MODEL" default:"tts-1"`
	BaseURL        string  `envconfig:"OPENAI_BASE_URL" default:""`
	TimeoutSeconds int     `envconfig:"OPENAI_TIMEOUT" default:"60"`
	Temperature    float32 `envconfig:"OPENAI_TEMPERATURE" default:"0.8"`
	MaxTokens      int     `envconfig:"OPENAI_MAX_TOKENS" default:"2000"`
}

// ConnString возвращает строку подключения к Postgres
func (c DatabaseConfig) ConnString() string {
	return fmt.Sprintf("postgres://%s:%s@%s:%d/%s?sslmode=%s",
		c.User, c.Password, c.Host, c.Port, c.Name, c.SSLMode)
}

// Load загружает конфигурацию из переменных окружения
func Load() (*Config, error) {
	var cfg Config
	if err := envconfig.Process("", &cfg); err != nil {
		return nil, fmt.Errorf("failed to process environment config: %w", err)
	}

	if strings.TrimSpace(cfg.AI.APIKey) == "" {
		return nil, fmt.Errorf("OPENAI_API_KEY not set")
	}

	return &cfg, nil
}

// IsProduction сообщает, работает ли сервис в production окружении.
// В production ответы об ошибках не содержат внутренних деталей.
func (c *Config) IsProduction() bool {
	return c.Env == "production"
}
