package config

import (
	"os"

	"github.com/joho/godotenv"
)

type Config struct {
	Port      string
	Env       string
	ClientURL string
	JWTSecret string
	DB        DBConfig
}

type DBConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Name     string
	SSLMode  string
}

// Load reads configuration from the environment, with a .env file applied
// first if one is present.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Port:      getEnv("PORT", "8080"),
		Env:       getEnv("ENV", "production"),
		ClientURL: getEnv("CLIENT_URL", "http://localhost:3000"),
		JWTSecret: getEnv("JWT_SECRET", "change-me-in-production"),
		DB: DBConfig{
			Host:     getEnv("DB_HOST", "127.0.0.1"),
			Port:     getEnv("DB_PORT", "5432"),
			User:     getEnv("DB_USER", "linklytics"),
			Password: getEnv("DB_PASSWORD", "linklytics"),
			Name:     getEnv("DB_NAME", "linklytics"),
			SSLMode:  getEnv("DB_SSLMODE", "disable"),
		},
	}
}

func (c *Config) IsDev() bool {
	return c.Env == "development"
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
