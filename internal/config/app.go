package config

import (
	"fmt"
	"medchat/internal/logger"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

// Store drivers accepted by STORE_DRIVER
const (
	StoreDriverPostgres = "postgres"
	StoreDriverMemory   = "memory"
)

// AppConfig holds all application configuration
type AppConfig struct {
	Server   ServerConfig
	Database DatabaseConfig
	LLM      LLMConfig
	Storage  StorageConfig
	Audio    AudioConfig
	Models   *ModelsConfig
}

// ServerConfig holds server-related configuration
type ServerConfig struct {
	Port         string
	ReadTimeout  time.Duration
	WriteTimeout time.Duration
}

// DatabaseConfig holds database connection configuration
type DatabaseConfig struct {
	Driver         string
	Host           string
	Port           string
	User           string
	Password       string
	Name           string
	SSLMode        string
	MigrationsPath string
}

// LLMConfig holds the language service configuration.
// An empty APIKey is accepted here; the provider rejects it on first use.
type LLMConfig struct {
	APIKey         string
	BaseURL        string
	RequestTimeout time.Duration
}

// StorageConfig holds S3-compatible object storage configuration for audio clips
type StorageConfig struct {
	Enabled   bool
	Bucket    string
	Endpoint  string
	Region    string
	AccessKey string
	SecretKey string
	URLExpiry time.Duration
}

// AudioConfig holds limits for uploaded recordings
type AudioConfig struct {
	MaxBytes int64
}

// LoadConfig loads and validates application configuration from environment
func LoadConfig() (*AppConfig, error) {
	config := &AppConfig{}

	config.Server = ServerConfig{
		Port:         getEnvOrDefault("SERVER_PORT", "8080"),
		ReadTimeout:  getEnvAsDuration("SERVER_READ_TIMEOUT", 15*time.Second),
		WriteTimeout: getEnvAsDuration("SERVER_WRITE_TIMEOUT", 90*time.Second),
	}

	config.Database = DatabaseConfig{
		Driver:         strings.ToLower(getEnvOrDefault("STORE_DRIVER", StoreDriverPostgres)),
		Host:           getEnvOrDefault("DB_HOST", "localhost"),
		Port:           getEnvOrDefault("DB_PORT", "5432"),
		User:           getEnvOrDefault("DB_USER", "postgres"),
		Password:       getEnvOrDefault("DB_PASSWORD", "postgres"),
		Name:           getEnvOrDefault("DB_NAME", "medchat"),
		SSLMode:        getEnvOrDefault("DB_SSLMODE", "disable"),
		MigrationsPath: getEnvOrDefault("MIGRATIONS_PATH", "migrations"),
	}
	if config.Database.Driver != StoreDriverPostgres && config.Database.Driver != StoreDriverMemory {
		return nil, fmt.Errorf("STORE_DRIVER must be %q or %q, got %q", StoreDriverPostgres, StoreDriverMemory, config.Database.Driver)
	}

	apiKey := os.Getenv("GROQ_API_KEY")
	if apiKey == "" {
		logger.Log.Warn("GROQ_API_KEY environment variable not set; language service calls will fail")
	}

	config.LLM = LLMConfig{
		APIKey:         apiKey,
		BaseURL:        getEnvOrDefault("LLM_BASE_URL", "https://api.groq.com/openai/v1"),
		RequestTimeout: getEnvAsDuration("LLM_REQUEST_TIMEOUT", 30*time.Second),
	}
	if config.LLM.RequestTimeout <= 0 {
		return nil, fmt.Errorf("LLM_REQUEST_TIMEOUT must be positive")
	}

	config.Storage = StorageConfig{
		Enabled:   getEnvAsBool("S3_ENABLED", false),
		Bucket:    os.Getenv("S3_BUCKET"),
		Endpoint:  os.Getenv("S3_ENDPOINT"),
		Region:    getEnvOrDefault("S3_REGION", "us-east-1"),
		AccessKey: os.Getenv("S3_ACCESS_KEY"),
		SecretKey: os.Getenv("S3_SECRET_KEY"),
		URLExpiry: getEnvAsDuration("S3_URL_EXPIRY", 24*time.Hour),
	}
	if config.Storage.Enabled {
		if config.Storage.Bucket == "" || config.Storage.AccessKey == "" || config.Storage.SecretKey == "" {
			return nil, fmt.Errorf("S3_BUCKET, S3_ACCESS_KEY and S3_SECRET_KEY are required when S3_ENABLED is set")
		}
	}

	config.Audio = AudioConfig{
		MaxBytes: int64(getEnvAsInt("AUDIO_MAX_BYTES", 25<<20)),
	}

	modelsConfig, err := LoadModelsConfig(os.Getenv("MODELS_CONFIG_PATH"))
	if err != nil {
		return nil, fmt.Errorf("failed to load models config: %w", err)
	}
	if chat := os.Getenv("LLM_CHAT_MODEL"); chat != "" {
		modelsConfig.Override(TaskChat, chat)
	}
	if stt := os.Getenv("LLM_TRANSCRIPTION_MODEL"); stt != "" {
		modelsConfig.Override(TaskTranscription, stt)
	}
	config.Models = modelsConfig

	return config, nil
}

// GetDSN returns the database connection string
func (c *DatabaseConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Password, c.Name, c.SSLMode,
	)
}

// RedactedDSN is GetDSN with the password masked, for logging
func (c *DatabaseConfig) RedactedDSN() string {
	return fmt.Sprintf(
		"host=%s port=%s user=%s password=*** dbname=%s sslmode=%s",
		c.Host, c.Port, c.User, c.Name, c.SSLMode,
	)
}

// Helper functions for environment variable parsing

func getEnvOrDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvAsInt(key string, defaultValue int) int {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.Atoi(valueStr)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid integer value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsBool(key string, defaultValue bool) bool {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := strconv.ParseBool(valueStr)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid boolean value, using default")
		return defaultValue
	}
	return value
}

func getEnvAsDuration(key string, defaultValue time.Duration) time.Duration {
	valueStr := os.Getenv(key)
	if valueStr == "" {
		return defaultValue
	}
	value, err := time.ParseDuration(valueStr)
	if err != nil {
		logger.Log.WithFields(logrus.Fields{"key": key, "default": defaultValue}).Warn("Invalid duration value, using default")
		return defaultValue
	}
	return value
}
