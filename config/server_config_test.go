package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/lb-conn/xml-signer/application/models"
	"github.com/lb-conn/xml-signer/config"
)

func writeConfig(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestDefaultServiceConfig(t *testing.T) {
	cfg := config.DefaultServiceConfig()

	assert.Equal(t, ":8080", cfg.HTTP.ListenAddress)
	assert.Equal(t, "/api/v1/xml-signer", cfg.HTTP.BasePath)
	assert.Equal(t, models.SignatureMethodRSASHA256, cfg.Signer.SignatureMethod)
	assert.Equal(t, models.CanonicalizationExclusive, cfg.Signer.CanonicalizationMethod)
	assert.True(t, cfg.Metrics.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadWithoutFile(t *testing.T) {
	cfg, err := config.Load("")
	require.NoError(t, err)
	assert.Equal(t, config.DefaultServiceConfig().HTTP, cfg.HTTP)
}

func TestLoadYAML(t *testing.T) {
	path := writeConfig(t, `
dev_mode: true
http:
  listen_address: "127.0.0.1:9090"
  read_timeout: 5s
logger:
  level: debug
  pretty: true
metrics:
  enabled: false
signer:
  signature_method: RSA-SHA512
  canonicalization_method: "http://www.w3.org/2006/12/xml-c14n11"
`)

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.True(t, cfg.DevMode)
	assert.Equal(t, "127.0.0.1:9090", cfg.HTTP.ListenAddress)
	assert.Equal(t, 5*time.Second, cfg.HTTP.ReadTimeout)
	// Campos ausentes no arquivo mantêm o padrão.
	assert.Equal(t, 30*time.Second, cfg.HTTP.WriteTimeout)
	assert.Equal(t, zerolog.DebugLevel, cfg.Logger.Level)
	assert.True(t, cfg.Logger.Pretty)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, models.SignatureMethodRSASHA512, cfg.Signer.SignatureMethod)
	assert.Equal(t, models.Canonicalization11, cfg.Signer.CanonicalizationMethod)
}

func TestLoadEnvOverridesFile(t *testing.T) {
	path := writeConfig(t, `
http:
  listen_address: ":9090"
`)
	t.Setenv("XMLSIGNER_HTTP_LISTEN_ADDRESS", ":7070")
	t.Setenv("XMLSIGNER_METRICS_ENABLED", "false")
	t.Setenv("XMLSIGNER_HTTP_SHUTDOWN_TIMEOUT", "3s")

	cfg, err := config.Load(path)
	require.NoError(t, err)

	assert.Equal(t, ":7070", cfg.HTTP.ListenAddress)
	assert.False(t, cfg.Metrics.Enabled)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
}

func TestLoadInvalidEnvKeepsDefault(t *testing.T) {
	t.Setenv("XMLSIGNER_METRICS_ENABLED", "maybe")
	t.Setenv("XMLSIGNER_HTTP_READ_TIMEOUT", "soon")

	cfg, err := config.Load("")
	require.NoError(t, err)

	assert.True(t, cfg.Metrics.Enabled)
	assert.Equal(t, 30*time.Second, cfg.HTTP.ReadTimeout)
}

func TestLoadErrors(t *testing.T) {
	tests := []struct {
		name string
		path func(t *testing.T) string
	}{
		{
			name: "missing file",
			path: func(t *testing.T) string { return filepath.Join(t.TempDir(), "missing.yaml") },
		},
		{
			name: "invalid yaml",
			path: func(t *testing.T) string { return writeConfig(t, "http: [not a map") },
		},
		{
			name: "unsupported signature method",
			path: func(t *testing.T) string { return writeConfig(t, "signer:\n  signature_method: DSA-SHA1\n") },
		},
		{
			name: "unsupported canonicalization method",
			path: func(t *testing.T) string {
				return writeConfig(t, "signer:\n  canonicalization_method: urn:unknown\n")
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := config.Load(tt.path(t))
			assert.Error(t, err)
		})
	}
}
