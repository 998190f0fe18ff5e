package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var boundEnvironmentVariables = []string{
	"GM_API_KEY", "GEMINI_MODEL", "GEMINI_BASE_URL", "PORT", "DEBUG",
	"CORS_ALLOWED_ORIGINS", "LOG_LEVEL", "LOG_FORMAT",
}

// isolateEnvironment unsets every bound variable for the duration of the test
// and moves into an empty working and home directory.
func isolateEnvironment(t *testing.T) string {
	t.Helper()
	for _, key := range boundEnvironmentVariables {
		t.Setenv(key, "")
		require.NoError(t, os.Unsetenv(key))
	}
	tempDir := t.TempDir()
	t.Setenv("HOME", tempDir)
	t.Chdir(tempDir)
	return tempDir
}

func defaultConfig() *Config {
	return &Config{
		Server: ServerConfig{
			Host:            "0.0.0.0",
			Port:            10000,
			MaxBodyBytes:    1 << 20,
			ShutdownTimeout: 5 * time.Second,
			CORS:            CORSConfig{AllowedOrigins: []string{"*"}},
		},
		Gemini: GeminiConfig{
			Model:           "gemini-2.5-flash-preview-05-20",
			BaseURL:         "https://generativelanguage.googleapis.com/v1beta",
			Timeout:         30 * time.Second,
			MaxOutputTokens: 1000,
			EnforceSchema:   true,
		},
		Log: LogConfig{Level: "info", Format: "text"},
	}
}

func TestConfigLoader_Load(t *testing.T) {
	tests := []struct {
		name              string
		configContent     string
		useExplicitPath   bool
		env               map[string]string
		wantErr           bool
		want              func(tempDir string) *Config
		wantErrorContains []string
	}{
		{
			name: "no config file uses defaults",
			want: func(string) *Config {
				return defaultConfig()
			},
		},
		{
			name: "valid config file with custom values",
			configContent: `server:
  host: 127.0.0.1
  port: 5000
  debug: true
  cors:
    allowed_origins:
      - http://localhost:3000
gemini:
  model: gemini-2.0-flash
  timeout: 10s
  max_output_tokens: 2048
  enforce_schema: false
log:
  level: debug
  format: json
`,
			want: func(string) *Config {
				cfg := defaultConfig()
				cfg.Server.Host = "127.0.0.1"
				cfg.Server.Port = 5000
				cfg.Server.Debug = true
				cfg.Server.CORS.AllowedOrigins = []string{"http://localhost:3000"}
				cfg.Gemini.Model = "gemini-2.0-flash"
				cfg.Gemini.Timeout = 10 * time.Second
				cfg.Gemini.MaxOutputTokens = 2048
				cfg.Gemini.EnforceSchema = false
				cfg.Log = LogConfig{Level: "debug", Format: "json"}
				return cfg
			},
		},
		{
			name: "explicit config file path",
			configContent: `server:
  port: 5001
`,
			useExplicitPath: true,
			want: func(string) *Config {
				cfg := defaultConfig()
				cfg.Server.Port = 5001
				return cfg
			},
		},
		{
			name: "environment variables override the config file",
			configContent: `server:
  port: 5000
gemini:
  model: from-file
`,
			env: map[string]string{
				"GM_API_KEY":           "  secret-key  ",
				"GEMINI_MODEL":         "from-env",
				"PORT":                 "8080",
				"DEBUG":                "true",
				"CORS_ALLOWED_ORIGINS": "http://a.test,http://b.test",
			},
			want: func(string) *Config {
				cfg := defaultConfig()
				cfg.Server.Port = 8080
				cfg.Server.Debug = true
				cfg.Server.CORS.AllowedOrigins = []string{"http://a.test", "http://b.test"}
				cfg.Gemini.APIKey = "secret-key"
				cfg.Gemini.Model = "from-env"
				return cfg
			},
		},
		{
			name: "existing index page template passes validation",
			configContent: `templates:
  index_page: index.html
`,
			want: func(tempDir string) *Config {
				cfg := defaultConfig()
				cfg.Templates.IndexPage = "index.html"
				return cfg
			},
		},
		{
			name: "invalid YAML format",
			configContent: `server:
  port: 5000
  invalid yaml format here [[[
`,
			wantErr: true,
			wantErrorContains: []string{
				"configuration file found but could not be read",
				"Please check the file format and permissions",
			},
		},
		{
			name: "missing template file",
			configContent: `templates:
  entry_markdown: /non/existent/entry.md.go.tmpl
`,
			wantErr: true,
			wantErrorContains: []string{
				"invalid configuration",
				"templates.entry_markdown must be an existing and readable file",
			},
		},
		{
			name: "out of range port and unknown log level",
			configContent: `server:
  port: 70000
log:
  level: verbose
`,
			wantErr: true,
			wantErrorContains: []string{
				"invalid configuration",
				"port",
				"level",
			},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			tempDir := isolateEnvironment(t)
			for key, value := range tt.env {
				t.Setenv(key, value)
			}
			require.NoError(t, os.WriteFile(filepath.Join(tempDir, "index.html"), []byte("<html></html>"), 0644))

			var configPath string
			if tt.configContent != "" {
				fileName := "config.yaml"
				if tt.useExplicitPath {
					fileName = "explicit.yml"
				}
				path := filepath.Join(tempDir, fileName)
				require.NoError(t, os.WriteFile(path, []byte(tt.configContent), 0644))
				if tt.useExplicitPath {
					configPath = path
				}
			}

			loader, err := NewConfigLoader(configPath)
			require.NoError(t, err)
			got, err := loader.Load()

			if tt.wantErr {
				assert.Error(t, err)
				assert.Nil(t, got)
				for _, wantMsg := range tt.wantErrorContains {
					assert.Contains(t, err.Error(), wantMsg)
				}
				return
			}

			require.NoError(t, err)
			require.NotNil(t, got)
			assert.Equal(t, tt.want(tempDir), got)
		})
	}
}

func TestConfigLoader_Load_EnvFile(t *testing.T) {
	tempDir := isolateEnvironment(t)
	envFile := filepath.Join(tempDir, ".env")
	require.NoError(t, os.WriteFile(envFile, []byte("GM_API_KEY=from-dotenv\nPORT=7000\n"), 0644))
	// Variables already present in the environment take precedence over the file
	t.Setenv("PORT", "7001")

	loader, err := NewConfigLoader("", envFile, filepath.Join(tempDir, "missing.env"))
	require.NoError(t, err)
	got, err := loader.Load()
	require.NoError(t, err)

	assert.Equal(t, "from-dotenv", got.Gemini.APIKey)
	assert.Equal(t, 7001, got.Server.Port)
}

func TestServerConfig_Address(t *testing.T) {
	assert.Equal(t, "0.0.0.0:10000", ServerConfig{Host: "0.0.0.0", Port: 10000}.Address())
	assert.Equal(t, ":8080", ServerConfig{Port: 8080}.Address())
}
