// ABOUTME: Centralized configuration for the todo assistant
// ABOUTME: Loads from environment variables with validation and defaults
package config

import (
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/adrg/xdg"
)

// Config holds all configuration for the assistant
type Config struct {
	// Storage settings
	DataDir    string
	MemoryFile string
	MaxHistory int

	// OpenAI settings
	OpenAIKey  string
	ChatModel  string
	Timeout    time.Duration
	MaxRetries int
	RetryDelay time.Duration
}

// Load reads configuration from environment variables
func Load() (*Config, error) {
	cfg := &Config{
		// Defaults
		DataDir:    getEnv("TODO_DATA_DIR", defaultDataDir()),
		MemoryFile: getEnv("TODO_MEMORY_FILE", "memory.json"),
		MaxHistory: getEnvInt("TODO_MAX_HISTORY", 50),
		OpenAIKey:  os.Getenv("OPENAI_API_KEY"),
		ChatModel:  getEnv("TODO_OPENAI_MODEL", "gpt-4o-mini"),
		Timeout:    getEnvDuration("OPENAI_TIMEOUT", 30*time.Second),
		MaxRetries: getEnvInt("OPENAI_MAX_RETRIES", 3),
		RetryDelay: getEnvDuration("OPENAI_RETRY_DELAY", 2*time.Second),
	}

	return cfg, cfg.Validate()
}

func (c *Config) Validate() error {
	if c.MaxHistory < 1 {
		return fmt.Errorf("TODO_MAX_HISTORY must be positive, got %d", c.MaxHistory)
	}
	if c.MaxRetries < 0 || c.MaxRetries > 10 {
		return fmt.Errorf("OPENAI_MAX_RETRIES must be 0-10, got %d", c.MaxRetries)
	}
	return nil
}

// MemoryPath returns the full path to the persisted memory document
func (c *Config) MemoryPath() string {
	return filepath.Join(c.DataDir, c.MemoryFile)
}

// defaultDataDir resolves the XDG data directory for the assistant,
// respecting an XDG_DATA_HOME override for testing
func defaultDataDir() string {
	dataHome := os.Getenv("XDG_DATA_HOME")
	if dataHome == "" {
		dataHome = xdg.DataHome
	}
	return filepath.Join(dataHome, "todo-agent")
}

// Helper functions
func getEnv(key, defaultVal string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return defaultVal
}

func getEnvInt(key string, defaultVal int) int {
	if v := os.Getenv(key); v != "" {
		if i, err := strconv.Atoi(v); err == nil {
			return i
		}
	}
	return defaultVal
}

func getEnvDuration(key string, defaultVal time.Duration) time.Duration {
	if v := os.Getenv(key); v != "" {
		if d, err := time.ParseDuration(v); err == nil {
			return d
		}
	}
	return defaultVal
}
