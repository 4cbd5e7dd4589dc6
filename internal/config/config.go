// Package config collects the environment configuration for the backend.
package config

import (
	"fmt"
	"os"
	"strings"
)

// Config holds everything the server reads from the environment.
type Config struct {
	Port string

	DBHost     string
	DBUser     string
	DBPassword string
	DBName     string
	DBPort     string

	RedisAddr string

	// SMTP credentials for admin notification mail.
	EmailHost string
	EmailPort string
	EmailUser string
	EmailPass string

	// Optional Telegram notification channel. Disabled when the token is empty.
	TelegramBotToken  string
	TelegramAdminChat string

	JWTSecret string
	UploadDir string

	// AllowedOrigins is the browser origin allow-list for CORS.
	AllowedOrigins []string
}

// Load reads the configuration from environment variables, applying defaults
// suitable for local development.
func Load() *Config {
	cfg := &Config{
		Port:              getEnv("PORT", "8080"),
		DBHost:            getEnv("DB_HOST", "localhost"),
		DBUser:            getEnv("DB_USER", "user"),
		DBPassword:        getEnv("DB_PASSWORD", "password"),
		DBName:            getEnv("DB_NAME", "complaintdb"),
		DBPort:            getEnv("DB_PORT", "5432"),
		RedisAddr:         getEnv("REDIS_ADDR", "localhost:6379"),
		EmailHost:         getEnv("EMAIL_HOST", "smtp.gmail.com"),
		EmailPort:         getEnv("EMAIL_PORT", "587"),
		EmailUser:         os.Getenv("EMAIL_USER"),
		EmailPass:         os.Getenv("EMAIL_PASS"),
		TelegramBotToken:  os.Getenv("TELEGRAM_BOT_TOKEN"),
		TelegramAdminChat: os.Getenv("TELEGRAM_ADMIN_CHAT_ID"),
		JWTSecret:         getEnv("JWT_SECRET", "dev-secret-change-me"),
		UploadDir:         getEnv("UPLOAD_DIR", "uploads"),
	}

	if origins := os.Getenv("ALLOWED_ORIGINS"); origins != "" {
		for _, o := range strings.Split(origins, ",") {
			if o = strings.TrimSpace(o); o != "" {
				cfg.AllowedOrigins = append(cfg.AllowedOrigins, o)
			}
		}
	}

	return cfg
}

// DSN builds the PostgreSQL connection string.
func (c *Config) DSN() string {
	return fmt.Sprintf("host=%s user=%s password=%s dbname=%s port=%s sslmode=disable",
		c.DBHost, c.DBUser, c.DBPassword, c.DBName, c.DBPort)
}

func getEnv(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
