package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfig_Defaults(t *testing.T) {
	chdir(t, t.TempDir())
	t.Setenv("ENVIRONMENT", "development")

	cfg := LoadConfig()
	assert.Equal(t, "1337", cfg.Port)
	assert.Equal(t, "3000", cfg.WebPort)
	assert.Equal(t, "sqlite3", cfg.DBDriver)
	assert.Equal(t, 3, cfg.ContactRateLimit)
	assert.Equal(t, 5*time.Minute, cfg.ContactRateWindow)
	assert.Equal(t, time.Minute, cfg.ContactSweepInterval)
	assert.Equal(t, time.Hour, cfg.LocalesCacheTTL)
	assert.True(t, cfg.HeaderSectionPopulate)
	assert.True(t, cfg.IsDevelopment())
	require.NoError(t, cfg.Validate())
}

func TestLoadConfig_EnvFileAndOverride(t *testing.T) {
	dir := t.TempDir()
	chdir(t, dir)
	content := "CMS_URL=\"http://cms.internal:1337/\"\nALLOWED_ORIGINS=https://a.example, https://b.example\nCONTACT_RATE_LIMIT=5\n"
	require.NoError(t, os.WriteFile(filepath.Join(dir, ".env.local"), []byte(content), 0o600))
	t.Setenv("ENVIRONMENT", "development")
	t.Setenv("CONTACT_RATE_LIMIT", "7")

	cfg := LoadConfig()
	assert.Equal(t, "http://cms.internal:1337", cfg.CMSURL)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.AllowedOrigins)
	assert.Equal(t, 7, cfg.ContactRateLimit, "environment wins over the env file")
}

func TestValidate(t *testing.T) {
	base := func() *Config {
		return &Config{
			Environment:       "production",
			Port:              "1337",
			WebPort:           "3000",
			DBDriver:          "pgx",
			PostgresDSN:       "postgres://localhost/wedding",
			JWTSecret:         "s3cret",
			ContactRateLimit:  3,
			ContactRateWindow: time.Minute,
		}
	}

	require.NoError(t, base().Validate())

	c := base()
	c.JWTSecret = defaultJWTSecret
	assert.Error(t, c.Validate())

	c = base()
	c.PostgresDSN = ""
	assert.Error(t, c.Validate())

	c = base()
	c.DBDriver = "mysql"
	assert.Error(t, c.Validate())

	c = base()
	c.ContactRateLimit = 0
	assert.Error(t, c.Validate())
}

// chdir mirrors testing.T.Chdir (Go 1.24+) for older toolchains.
func chdir(t *testing.T, dir string) {
	t.Helper()
	prev, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(prev) })
}
