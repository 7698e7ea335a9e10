package app

import (
	"medchat/internal/config"
	"medchat/internal/repository/db"
)

// Config holds all application dependencies and configuration
type Config struct {
	// Database interface for data persistence
	DB db.Database
	// Centralized application configuration
	AppConfig *config.AppConfig
}

// NewConfig creates a new application configuration
func NewConfig(database db.Database, appConfig *config.AppConfig) *Config {
	return &Config{
		DB:        database,
		AppConfig: appConfig,
	}
}

// ModelsConfig returns the configured model catalogue
func (c *Config) ModelsConfig() *config.ModelsConfig {
	return c.AppConfig.Models
}

// MaxAudioBytes returns the upload limit for recordings
func (c *Config) MaxAudioBytes() int64 {
	return c.AppConfig.Audio.MaxBytes
}
