package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setEnv(t *testing.T, values map[string]string) {
	t.Helper()
	for k, v := range values {
		t.Setenv(k, v)
	}
}

func TestLoad_Defaults(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL": "postgres://localhost:5432",
		"ENVIRONMENT":  "",
	})

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, "development", cfg.Environment)
	assert.Equal(t, int64(100), cfg.SpinCost)
	assert.Equal(t, int64(1000), cfg.StartingBalance)
	assert.Equal(t, 3, cfg.StartingFreeSpins)
	assert.Equal(t, time.Hour, cfg.SessionTTL)
	assert.Equal(t, 3*time.Second, cfg.RevealDelay)
	assert.Equal(t, ":8080", cfg.HTTPAddr)
	assert.Equal(t, []string{"*"}, cfg.CORSAllowedOrigins)
	assert.False(t, cfg.BotEnabled())
}

func TestLoad_Overrides(t *testing.T) {
	setEnv(t, map[string]string{
		"DATABASE_URL":         "postgres://localhost:5432",
		"DATABASE_NAME":        "wheel",
		"DISCORD_TOKEN":        "token",
		"SPIN_COST":            "250",
		"STARTING_BALANCE":     "5000",
		"STARTING_FREE_SPINS":  "1",
		"SESSION_TTL":          "15m",
		"REVEAL_DELAY":         "500ms",
		"ADMIN_DISCORD_IDS":    "111, 222,notanumber,",
		"CORS_ALLOWED_ORIGINS": "https://a.example, https://b.example",
		"ENVIRONMENT":          "production",
	})

	cfg, err := load()
	require.NoError(t, err)

	assert.Equal(t, int64(250), cfg.SpinCost)
	assert.Equal(t, int64(5000), cfg.StartingBalance)
	assert.Equal(t, 1, cfg.StartingFreeSpins)
	assert.Equal(t, 15*time.Minute, cfg.SessionTTL)
	assert.Equal(t, 500*time.Millisecond, cfg.RevealDelay)
	assert.Equal(t, []int64{111, 222}, cfg.AdminDiscordIDs)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSAllowedOrigins)
	assert.True(t, cfg.IsAdmin(222))
	assert.False(t, cfg.IsAdmin(333))
	assert.True(t, cfg.BotEnabled())
	assert.Equal(t, "postgres://localhost:5432/wheel?sslmode=disable", cfg.GetDatabaseURL())
}

func TestLoad_Errors(t *testing.T) {
	testCases := []struct {
		name string
		env  map[string]string
	}{
		{"missing database url", map[string]string{"DATABASE_URL": "", "ENVIRONMENT": "production"}},
		{"negative spin cost", map[string]string{"DATABASE_URL": "postgres://x", "SPIN_COST": "-5"}},
		{"bad session ttl", map[string]string{"DATABASE_URL": "postgres://x", "SESSION_TTL": "soon"}},
		{"bad reveal delay", map[string]string{"DATABASE_URL": "postgres://x", "REVEAL_DELAY": "3 seconds"}},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			setEnv(t, tc.env)
			_, err := load()
			assert.Error(t, err)
		})
	}
}

func TestGet_ReturnsTestConfig(t *testing.T) {
	ResetConfig()
	t.Cleanup(ResetConfig)

	testCfg := NewTestConfig()
	SetTestConfig(testCfg)

	assert.Same(t, testCfg, Get())
}
