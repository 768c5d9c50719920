package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad_Defaults(t *testing.T) {
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0", cfg.Server.Host)
	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
	assert.Equal(t, 30*time.Second, cfg.Server.WriteTimeout)
	assert.Equal(t, 120*time.Second, cfg.Server.IdleTimeout)

	assert.Equal(t, 8192, cfg.Decode.MaxWidth)
	assert.Equal(t, 8192, cfg.Decode.MaxHeight)
	assert.Equal(t, int64(32<<20), cfg.Decode.MaxUploadBytes)

	assert.Empty(t, cfg.Security.AllowedOrigins)
	assert.False(t, cfg.Security.EnableTLS)

	assert.Equal(t, "info", cfg.Logging.Level)
}

func TestLoad_EnvironmentVariables(t *testing.T) {
	t.Setenv("SERVER_HOST", "127.0.0.1")
	t.Setenv("SERVER_PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("DECODE_MAX_WIDTH", "4096")
	t.Setenv("DECODE_MAX_HEIGHT", "2048")
	t.Setenv("DECODE_MAX_UPLOAD_BYTES", "1048576")
	t.Setenv("ALLOWED_ORIGINS", "https://a.example, https://b.example")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "127.0.0.1", cfg.Server.Host)
	assert.Equal(t, "9090", cfg.Server.Port)
	assert.Equal(t, "debug", cfg.Logging.Level)
	assert.Equal(t, 4096, cfg.Decode.MaxWidth)
	assert.Equal(t, 2048, cfg.Decode.MaxHeight)
	assert.Equal(t, int64(1048576), cfg.Decode.MaxUploadBytes)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.Security.AllowedOrigins)
}

func TestLoad_MalformedEnvFallsBackToDefault(t *testing.T) {
	t.Setenv("DECODE_MAX_WIDTH", "not-a-number")
	t.Setenv("SERVER_READ_TIMEOUT", "soon")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, 8192, cfg.Decode.MaxWidth)
	assert.Equal(t, 30*time.Second, cfg.Server.ReadTimeout)
}

func TestLoadWithOverrides(t *testing.T) {
	t.Setenv("SERVER_HOST", "10.0.0.1")
	t.Setenv("SERVER_PORT", "9090")

	cfg, err := LoadWithOverrides(LoadOptions{
		Host:           "192.168.1.100",
		Port:           "8443",
		LogLevel:       "warn",
		MaxUploadBytes: 1 << 20,
	})
	require.NoError(t, err)

	// Command-line options win over environment variables.
	assert.Equal(t, "192.168.1.100", cfg.Server.Host)
	assert.Equal(t, "8443", cfg.Server.Port)
	assert.Equal(t, "warn", cfg.Logging.Level)
	assert.Equal(t, int64(1<<20), cfg.Decode.MaxUploadBytes)
}

func TestLoadWithOverrides_EmptyOptionsUseEnv(t *testing.T) {
	t.Setenv("SERVER_PORT", "9999")

	cfg, err := LoadWithOverrides(LoadOptions{})
	require.NoError(t, err)

	assert.Equal(t, "9999", cfg.Server.Port)
}

func TestValidate(t *testing.T) {
	valid := func() *Config {
		return &Config{
			Server: ServerConfig{Host: "0.0.0.0", Port: "8080"},
			Decode: DecodeConfig{
				MaxWidth:       8192,
				MaxHeight:      8192,
				MaxUploadBytes: 32 << 20,
			},
			Logging: LoggingConfig{Level: "info"},
		}
	}

	tests := []struct {
		name    string
		mutate  func(*Config)
		wantErr string
	}{
		{
			name:   "valid configuration",
			mutate: func(c *Config) {},
		},
		{
			name:    "empty port",
			mutate:  func(c *Config) { c.Server.Port = "" },
			wantErr: "port cannot be empty",
		},
		{
			name:    "non-numeric port",
			mutate:  func(c *Config) { c.Server.Port = "http" },
			wantErr: "invalid server port",
		},
		{
			name:    "port out of range",
			mutate:  func(c *Config) { c.Server.Port = "70000" },
			wantErr: "invalid server port",
		},
		{
			name:    "zero max width",
			mutate:  func(c *Config) { c.Decode.MaxWidth = 0 },
			wantErr: "dimensions must be positive",
		},
		{
			name:    "zero upload limit",
			mutate:  func(c *Config) { c.Decode.MaxUploadBytes = 0 },
			wantErr: "upload size must be positive",
		},
		{
			name:    "TLS without cert files",
			mutate:  func(c *Config) { c.Security.EnableTLS = true },
			wantErr: "certificate and key files",
		},
		{
			name:    "bad log level",
			mutate:  func(c *Config) { c.Logging.Level = "verbose" },
			wantErr: "invalid log level",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			cfg := valid()
			tt.mutate(cfg)

			err := cfg.Validate()
			if tt.wantErr == "" {
				assert.NoError(t, err)
				return
			}
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestGetGlobalConfig(t *testing.T) {
	cfg, err := LoadWithOverrides(LoadOptions{Port: "8081"})
	require.NoError(t, err)

	stored := GetGlobalConfig()
	require.NotNil(t, stored)
	assert.Equal(t, cfg.Server.Port, stored.Server.Port)
}
