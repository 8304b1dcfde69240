package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"sync"
	"time"

	"prizedraw/database"

	"github.com/joho/godotenv"
)

// Config holds all application configuration
type Config struct {
	// Discord configuration
	DiscordToken      string
	DiscordGuildID    string
	AnnounceChannelID string  // Channel for jackpot announcements
	AdminDiscordIDs   []int64 // Discord IDs allowed to grant free spins

	// Database configuration
	DatabaseURL  string
	DatabaseName string

	// HTTP API configuration
	HTTPAddr           string
	CORSAllowedOrigins []string

	// Wheel configuration
	SpinCost          int64
	StartingBalance   int64
	StartingFreeSpins int
	PrizeTablePath    string        // Empty uses the embedded default table
	SessionTTL        time.Duration // Idle sessions older than this are discarded
	RevealDelay       time.Duration // Presentation delay before the bot reveals a result

	// Logging
	LogLevel string

	// Environment
	Environment string // "development", "production" or "test"
}

var (
	instance *Config
	once     sync.Once
	mu       sync.Mutex // Protects instance for test setup
)

// Get returns the global configuration instance
func Get() *Config {
	mu.Lock()
	defer mu.Unlock()

	if instance != nil {
		return instance
	}

	once.Do(func() {
		var err error
		instance, err = load()
		if err != nil {
			if os.Getenv("ENVIRONMENT") == "test" {
				instance = NewTestConfig()
			} else {
				panic(fmt.Sprintf("failed to load config: %v", err))
			}
		}
	})
	return instance
}

// GetDatabaseURL combines the base URL and database name
func (c *Config) GetDatabaseURL() string {
	return database.ConstructDatabaseURL(c.DatabaseURL, c.DatabaseName)
}

// IsAdmin reports whether discordID may use admin commands
func (c *Config) IsAdmin(discordID int64) bool {
	for _, id := range c.AdminDiscordIDs {
		if id == discordID {
			return true
		}
	}
	return false
}

// BotEnabled reports whether a Discord token was configured
func (c *Config) BotEnabled() bool {
	return c.DiscordToken != ""
}

// load loads configuration from environment variables
func load() (*Config, error) {
	// A missing .env file is fine; real deployments use the environment
	_ = godotenv.Load()

	config := &Config{
		// Discord
		DiscordToken:      os.Getenv("DISCORD_TOKEN"),
		DiscordGuildID:    os.Getenv("DISCORD_GUILD_ID"),
		AnnounceChannelID: os.Getenv("ANNOUNCE_CHANNEL_ID"),
		AdminDiscordIDs:   parseIDList(os.Getenv("ADMIN_DISCORD_IDS")),

		// Database
		DatabaseURL:  os.Getenv("DATABASE_URL"),
		DatabaseName: os.Getenv("DATABASE_NAME"),

		// HTTP
		HTTPAddr:           getEnvWithDefault("HTTP_ADDR", ":8080"),
		CORSAllowedOrigins: parseList(getEnvWithDefault("CORS_ALLOWED_ORIGINS", "*")),

		// Wheel settings with defaults
		SpinCost:          100,
		StartingBalance:   1000,
		StartingFreeSpins: 3,
		PrizeTablePath:    os.Getenv("PRIZE_TABLE_PATH"),
		SessionTTL:        time.Hour,
		RevealDelay:       3 * time.Second,

		LogLevel:    getEnvWithDefault("LOG_LEVEL", "info"),
		Environment: os.Getenv("ENVIRONMENT"),
	}

	// Override defaults if environment variables are set
	if cost := os.Getenv("SPIN_COST"); cost != "" {
		parsed, err := strconv.ParseInt(cost, 10, 64)
		if err != nil || parsed < 0 {
			return nil, fmt.Errorf("SPIN_COST must be a non-negative integer, got %q", cost)
		}
		config.SpinCost = parsed
	}
	if balance := os.Getenv("STARTING_BALANCE"); balance != "" {
		if parsedBalance, err := strconv.ParseInt(balance, 10, 64); err == nil && parsedBalance >= 0 {
			config.StartingBalance = parsedBalance
		}
	}
	if spins := os.Getenv("STARTING_FREE_SPINS"); spins != "" {
		if parsedSpins, err := strconv.Atoi(spins); err == nil && parsedSpins >= 0 {
			config.StartingFreeSpins = parsedSpins
		}
	}
	if ttl := os.Getenv("SESSION_TTL"); ttl != "" {
		parsed, err := time.ParseDuration(ttl)
		if err != nil {
			return nil, fmt.Errorf("invalid SESSION_TTL: %w", err)
		}
		config.SessionTTL = parsed
	}
	if delay := os.Getenv("REVEAL_DELAY"); delay != "" {
		parsed, err := time.ParseDuration(delay)
		if err != nil {
			return nil, fmt.Errorf("invalid REVEAL_DELAY: %w", err)
		}
		config.RevealDelay = parsed
	}

	// Set default environment if not specified
	if config.Environment == "" {
		config.Environment = "development"
	}

	if config.Environment != "test" {
		if config.DatabaseURL == "" {
			return nil, fmt.Errorf("DATABASE_URL is required")
		}
	}

	return config, nil
}

// getEnvWithDefault returns the environment variable value or a default if not set
func getEnvWithDefault(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func parseList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func parseIDList(raw string) []int64 {
	var ids []int64
	for _, idStr := range parseList(raw) {
		if id, err := strconv.ParseInt(idStr, 10, 64); err == nil {
			ids = append(ids, id)
		}
	}
	return ids
}

// Test helpers - only use in tests

// SetTestConfig overrides the global config instance for testing
func SetTestConfig(testConfig *Config) {
	mu.Lock()
	defer mu.Unlock()
	instance = testConfig
}

// ResetConfig resets the global config instance and sync.Once for testing
func ResetConfig() {
	mu.Lock()
	defer mu.Unlock()
	instance = nil
	once = sync.Once{}
}

// NewTestConfig creates a minimal config suitable for unit tests
func NewTestConfig() *Config {
	return &Config{
		Environment:        "test",
		HTTPAddr:           ":0",
		CORSAllowedOrigins: []string{"*"},
		SpinCost:           100,
		StartingBalance:    1000,
		StartingFreeSpins:  3,
		SessionTTL:         time.Hour,
		AdminDiscordIDs:    []int64{999999},
		LogLevel:           "debug",
	}
}
