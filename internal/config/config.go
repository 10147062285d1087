package config

import (
	"os"
	"strconv"
)

type EligibilityServiceConfig struct {
	Port        string
	APIKey      string
	PostgresCfg PostgresConfig
	RabbitMQCfg RabbitMQConfig
	RedisCfg    RedisConfig
	CreditCfg   CreditBureauConfig
	ProfileCfg  ProfileServiceConfig
}

type PostgresConfig struct {
	DBname   string
	Username string
	Password string
	Host     string
	Port     string
}

type RabbitMQConfig struct {
	Username string
	Password string
	Host     string
	Port     string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type CreditBureauConfig struct {
	BaseURL         string
	APIKey          string
	TimeoutSeconds  int
	FallbackEnabled bool
}

type ProfileServiceConfig struct {
	BaseURL string
}

func New() *EligibilityServiceConfig {
	return &EligibilityServiceConfig{
		Port:   getEnvOrDefault("PORT", "8086"),
		APIKey: getEnvOrDefault("API_KEY", ""),
		PostgresCfg: PostgresConfig{
			DBname:   getEnvOrDefault("POSTGRES_DB", "agripro"),
			Username: getEnvOrDefault("POSTGRES_USER", "postgres"),
			Password: getEnvOrDefault("POSTGRES_PASSWORD", "postgres"),
			Host:     getEnvOrDefault("POSTGRES_HOST", "localhost"),
			Port:     getEnvOrDefault("POSTGRES_PORT", "5432"),
		},
		RabbitMQCfg: RabbitMQConfig{
			Username: getEnvOrDefault("RABBITMQ_USER", "admin"),
			Password: getEnvOrDefault("RABBITMQ_PWD", "admin"),
			Host:     getEnvOrDefault("RABBITMQ_HOST", "localhost"),
			Port:     getEnvOrDefault("RABBITMQ_PORT", "5672"),
		},
		RedisCfg: RedisConfig{
			Host:     getEnvOrDefault("REDIS_HOST", "localhost"),
			Port:     getEnvOrDefault("REDIS_PORT", "6379"),
			Password: getEnvOrDefault("REDIS_PASSWORD", ""),
			DB:       0,
		},
		CreditCfg: CreditBureauConfig{
			BaseURL:         getEnvOrDefault("CREDIT_BUREAU_URL", "http://localhost:8099"),
			APIKey:          getEnvOrDefault("CREDIT_BUREAU_KEY", ""),
			TimeoutSeconds:  getEnvIntOrDefault("CREDIT_BUREAU_TIMEOUT_SECONDS", 10),
			FallbackEnabled: getEnvBoolOrDefault("CREDIT_FALLBACK_ENABLED", true),
		},
		ProfileCfg: ProfileServiceConfig{
			BaseURL: getEnvOrDefault("PROFILE_SERVICE_URL", "http://localhost:8082"),
		},
	}
}

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvIntOrDefault(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getEnvBoolOrDefault(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}
