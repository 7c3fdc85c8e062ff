package config

import (
	"os"

	"github.com/joho/godotenv"
)

// Config - настройки процесса, читаются из окружения.
type Config struct {
	HTTPPort       string
	DatabasePath   string
	StaticDir      string
	RabbitMQURL    string // пусто - работаем без брокера
	RecurrenceCron string
}

func Load() (*Config, error) {
	// .env необязателен
	_ = godotenv.Load()

	return &Config{
		HTTPPort:       getEnv("HTTP_PORT", "3000"),
		DatabasePath:   getEnv("DATABASE_PATH", "demandas.db"),
		StaticDir:      getEnv("STATIC_DIR", "public"),
		RabbitMQURL:    os.Getenv("RABBITMQ_URL"),
		RecurrenceCron: getEnv("RECURRENCE_CRON", "0 0 * * *"),
	}, nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
