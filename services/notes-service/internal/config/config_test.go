package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setRequired(t *testing.T) {
	t.Helper()
	t.Setenv("MONGODB_URI", "mongodb://localhost:27017")
	t.Setenv("JWT_SECRET", "jwt-secret")
	t.Setenv("ENCRYPTION_KEY", "encryption-secret")
}

func TestLoad_Defaults(t *testing.T) {
	setRequired(t)

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, ":3000", cfg.HTTPAddr)
	assert.Equal(t, "notes", cfg.Mongo.Database)
	assert.Equal(t, 30*24*time.Hour, cfg.JWT.TTL)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, 587, cfg.SMTP.Port)
	assert.Empty(t, cfg.RedisURL)
	assert.Empty(t, cfg.TrustedProxies)
	assert.False(t, cfg.IsProduction())
}

func TestLoad_MissingRequired(t *testing.T) {
	tests := []struct {
		name  string
		unset string
		want  string
	}{
		{name: "mongo uri", unset: "MONGODB_URI", want: "MONGODB_URI"},
		{name: "jwt secret", unset: "JWT_SECRET", want: "JWT_SECRET"},
		{name: "encryption key", unset: "ENCRYPTION_KEY", want: "ENCRYPTION_KEY"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			setRequired(t)
			t.Setenv(tt.unset, "")

			_, err := Load()
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.want)
		})
	}
}

func TestLoad_FileThenEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	content := `
environment: production
http_addr: ":9000"
cors_origins:
  - https://notes.example.com
mongo:
  uri: mongodb://file:27017
  database: notes_file
jwt:
  secret: file-secret
  ttl: 1h
encryption:
  secret: file-key
smtp:
  host: smtp.example.com
  port: 2525
`
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))

	t.Setenv(FileEnvVar, path)
	t.Setenv("MONGODB_URI", "")
	t.Setenv("APP_ENV", "")
	t.Setenv("MONGODB_DATABASE", "notes_env")
	t.Setenv("CORS_ORIGINS", "https://a.example.com,https://b.example.com")
	t.Setenv("TRUSTED_PROXIES", "10.0.0.0/8,192.0.2.10")
	t.Setenv("LOG_FORMAT", "")

	cfg, err := Load()
	require.NoError(t, err)

	assert.True(t, cfg.IsProduction())
	assert.Equal(t, "json", cfg.LogFormat())
	assert.Equal(t, ":9000", cfg.HTTPAddr)
	assert.Equal(t, "mongodb://file:27017", cfg.Mongo.URI)
	assert.Equal(t, "notes_env", cfg.Mongo.Database)
	assert.Equal(t, time.Hour, cfg.JWT.TTL)
	assert.Equal(t, "smtp.example.com", cfg.SMTP.Host)
	assert.Equal(t, 2525, cfg.SMTP.Port)
	assert.Equal(t, []string{"https://a.example.com", "https://b.example.com"}, cfg.CORSOrigins)
	assert.Equal(t, []string{"10.0.0.0/8", "192.0.2.10"}, cfg.TrustedProxies)
	assert.Equal(t, "notes-api", cfg.JWT.Issuer)
}

func TestConfig_LogFormat(t *testing.T) {
	tests := []struct {
		name        string
		environment string
		format      string
		want        string
	}{
		{name: "development defaults to console", environment: "development", want: "console"},
		{name: "production defaults to json", environment: "production", want: "json"},
		{name: "explicit format wins", environment: "production", format: "console", want: "console"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := Default()
			cfg.Environment = tt.environment
			cfg.Log.Format = tt.format

			assert.Equal(t, tt.want, cfg.LogFormat())
		})
	}
}

func TestLoad_UnreadableFile(t *testing.T) {
	setRequired(t)
	t.Setenv(FileEnvVar, filepath.Join(t.TempDir(), "missing.yaml"))

	_, err := Load()
	assert.Error(t, err)
}
