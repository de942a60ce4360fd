package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)

	require.Equal(t, -1, cfg.Crawler.MaxPages)
	require.Equal(t, "website_content", cfg.Crawler.OutputDir)
	require.Equal(t, 1, cfg.Crawler.DelaySeconds)
	require.False(t, cfg.Crawler.DisambiguateImages)
	require.Equal(t, 15, cfg.HTTP.TimeoutSeconds)
	require.True(t, cfg.Logging.Development)
}

func TestLoadWithFileOverrides(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	configYAML := `
crawler:
  max_pages: 25
  output_dir: snapshots
  delay_seconds: 3
  user_agent: custom-agent/2.0
  disambiguate_images: true
http:
  timeout_seconds: 30
logging:
  development: false
`
	require.NoError(t, os.WriteFile(path, []byte(configYAML), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	require.Equal(t, 25, cfg.Crawler.MaxPages)
	require.Equal(t, "snapshots", cfg.Crawler.OutputDir)
	require.Equal(t, 3, cfg.Crawler.DelaySeconds)
	require.Equal(t, "custom-agent/2.0", cfg.Crawler.UserAgent)
	require.True(t, cfg.Crawler.DisambiguateImages)
	require.Equal(t, 30, cfg.HTTP.TimeoutSeconds)
	require.False(t, cfg.Logging.Development)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	valid := func() Config {
		cfg, err := Load("")
		require.NoError(t, err)
		cfg.Crawler.SeedURL = "https://ex.com"
		return cfg
	}

	t.Run("Valid", func(t *testing.T) {
		require.NoError(t, valid().Validate())
	})
	t.Run("MissingSeed", func(t *testing.T) {
		cfg := valid()
		cfg.Crawler.SeedURL = ""
		require.Error(t, cfg.Validate())
	})
	t.Run("EmptyOutputDir", func(t *testing.T) {
		cfg := valid()
		cfg.Crawler.OutputDir = ""
		require.Error(t, cfg.Validate())
	})
	t.Run("NegativeDelay", func(t *testing.T) {
		cfg := valid()
		cfg.Crawler.DelaySeconds = -1
		require.Error(t, cfg.Validate())
	})
	t.Run("ZeroTimeout", func(t *testing.T) {
		cfg := valid()
		cfg.HTTP.TimeoutSeconds = 0
		require.Error(t, cfg.Validate())
	})
}

func TestValidateSeedURL(t *testing.T) {
	tests := []struct {
		name    string
		url     string
		wantErr bool
	}{
		{"https", "https://ex.com", false},
		{"http", "http://ex.com/start", false},
		{"empty", "", true},
		{"relative", "/start", true},
		{"ftp", "ftp://ex.com", true},
		{"no host", "https://", true},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			err := ValidateSeedURL(tc.url)
			if tc.wantErr {
				require.Error(t, err)
			} else {
				require.NoError(t, err)
			}
		})
	}
}

func TestEngineConfig(t *testing.T) {
	cfg, err := Load("")
	require.NoError(t, err)
	cfg.Crawler.SeedURL = "https://ex.com"
	cfg.Crawler.DelaySeconds = 2
	cfg.HTTP.TimeoutSeconds = 20

	engineCfg := cfg.EngineConfig()
	require.Equal(t, "https://ex.com", engineCfg.SeedURL)
	require.Equal(t, 2*time.Second, engineCfg.Delay)
	require.Equal(t, 20*time.Second, engineCfg.RequestTimeout)
}
