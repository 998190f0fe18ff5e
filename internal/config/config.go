package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	ut "github.com/go-playground/universal-translator"
	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

type Config struct {
	Server    ServerConfig    `mapstructure:"server"`
	Gemini    GeminiConfig    `mapstructure:"gemini"`
	Templates TemplatesConfig `mapstructure:"templates"`
	Log       LogConfig       `mapstructure:"log"`
}

type ServerConfig struct {
	Host            string        `mapstructure:"host"`
	Port            int           `mapstructure:"port" validate:"min=1,max=65535"`
	Debug           bool          `mapstructure:"debug"`
	MaxBodyBytes    int64         `mapstructure:"max_body_bytes" validate:"min=1"`
	ShutdownTimeout time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
	CORS            CORSConfig    `mapstructure:"cors"`
}

type CORSConfig struct {
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

// GeminiConfig configures the generative-language upstream.
// APIKey may be empty; requests are then rejected instead of refusing to start.
type GeminiConfig struct {
	APIKey          string        `mapstructure:"api_key"`
	Model           string        `mapstructure:"model" validate:"required"`
	BaseURL         string        `mapstructure:"base_url" validate:"required,url"`
	Timeout         time.Duration `mapstructure:"timeout" validate:"gt=0"`
	MaxOutputTokens int           `mapstructure:"max_output_tokens" validate:"min=0"`
	EnforceSchema   bool          `mapstructure:"enforce_schema"`
}

type TemplatesConfig struct {
	IndexPage     string `mapstructure:"index_page" validate:"omitempty,file"`
	EntryMarkdown string `mapstructure:"entry_markdown" validate:"omitempty,file"`
}

type LogConfig struct {
	Level  string `mapstructure:"level" validate:"oneof=debug info warn error"`
	Format string `mapstructure:"format" validate:"oneof=text json"`
}

// Address returns the listen address of the HTTP server
func (c ServerConfig) Address() string {
	return fmt.Sprintf("%s:%d", c.Host, c.Port)
}

type ConfigLoader struct {
	viper      *viper.Viper
	validator  *validator.Validate
	translator ut.Translator
	envFiles   []string
}

// NewConfigLoader creates a loader for configFile. envFiles are dotenv files
// loaded into the process environment before binding; missing ones are skipped
// and variables already set in the environment win.
func NewConfigLoader(configFile string, envFiles ...string) (*ConfigLoader, error) {
	validate, trans, err := newValidator()
	if err != nil {
		return nil, fmt.Errorf("failed to create new validator: %w", err)
	}

	v := viper.New()
	v.SetConfigType("yaml")
	if configFile != "" {
		v.SetConfigFile(configFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.config/qamus")
	}

	return &ConfigLoader{
		viper:      v,
		validator:  validate,
		translator: trans,
		envFiles:   envFiles,
	}, nil
}

func (loader *ConfigLoader) Load() (*Config, error) {
	if err := loader.loadEnvFiles(); err != nil {
		return nil, err
	}

	v := loader.viper

	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 10000)
	v.SetDefault("server.debug", false)
	v.SetDefault("server.max_body_bytes", 1<<20)
	v.SetDefault("server.shutdown_timeout", 5*time.Second)
	v.SetDefault("server.cors.allowed_origins", []string{"*"})
	v.SetDefault("gemini.model", "gemini-2.5-flash-preview-05-20")
	v.SetDefault("gemini.base_url", "https://generativelanguage.googleapis.com/v1beta")
	v.SetDefault("gemini.timeout", 30*time.Second)
	v.SetDefault("gemini.max_output_tokens", 1000)
	v.SetDefault("gemini.enforce_schema", true)
	// Templates are optional - if not specified, embedded fallbacks are used
	v.SetDefault("templates.index_page", "")
	v.SetDefault("templates.entry_markdown", "")
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "text")

	bindings := []struct {
		key string
		env string
	}{
		// The credential is bound to the environment only (not read from config files in practice)
		{key: "gemini.api_key", env: "GM_API_KEY"},
		{key: "gemini.model", env: "GEMINI_MODEL"},
		{key: "gemini.base_url", env: "GEMINI_BASE_URL"},
		{key: "server.port", env: "PORT"},
		{key: "server.debug", env: "DEBUG"},
		{key: "server.cors.allowed_origins", env: "CORS_ALLOWED_ORIGINS"},
		{key: "log.level", env: "LOG_LEVEL"},
		{key: "log.format", env: "LOG_FORMAT"},
	}
	for _, b := range bindings {
		if err := v.BindEnv(b.key, b.env); err != nil {
			return nil, fmt.Errorf("failed to bind %s environment variable: %w", b.env, err)
		}
	}

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("configuration file found but could not be read: %w. Please check the file format and permissions", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("invalid configuration format: %w", err)
	}
	cfg.Gemini.APIKey = strings.TrimSpace(cfg.Gemini.APIKey)

	if err := loader.validator.Struct(cfg); err != nil {
		var validationErrors validator.ValidationErrors
		if !errors.As(err, &validationErrors) {
			return nil, fmt.Errorf("validator.Struct > %w", err)
		}
		var errorMsgs []string
		for _, e := range validationErrors {
			errorMsgs = append(errorMsgs, e.Translate(loader.translator))
		}
		return nil, fmt.Errorf("invalid configuration: %s", strings.Join(errorMsgs, ", "))
	}

	return &cfg, nil
}

func (loader *ConfigLoader) loadEnvFiles() error {
	var existing []string
	for _, path := range loader.envFiles {
		if _, err := os.Stat(path); err != nil {
			continue
		}
		existing = append(existing, path)
	}
	if len(existing) == 0 {
		return nil
	}
	if err := godotenv.Load(existing...); err != nil {
		return fmt.Errorf("godotenv.Load(%v) > %w", existing, err)
	}
	return nil
}
