package config

import (
	"github.com/spf13/viper"
)

type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Database DatabaseConfig `mapstructure:"database"`
	Auth     AuthConfig     `mapstructure:"auth"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Ollama   OllamaConfig   `mapstructure:"ollama"`
	OpenAI   OpenAIConfig   `mapstructure:"openai"`
	Tts      TtsConfig      `mapstructure:"tts"`
}

type ServerConfig struct {
	Port           string   `mapstructure:"port"`
	AllowedOrigins []string `mapstructure:"allowed_origins"`
}

type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

type AuthConfig struct {
	SessionSecret string `mapstructure:"session_secret"`
}

// LLM provider selection for the shop assistant
type LLMConfig struct {
	Provider string `mapstructure:"provider"` // "ollama" or "openai"
}

type OllamaConfig struct {
	Host    string `mapstructure:"host"`
	Model   string `mapstructure:"model"`
	Timeout int    `mapstructure:"timeout"` // seconds
}

type OpenAIConfig struct {
	APIKey    string `mapstructure:"api_key"`
	Model     string `mapstructure:"model"`
	BaseURL   string `mapstructure:"base_url"`   // Optional, defaults to OpenAI API
	MaxTokens int    `mapstructure:"max_tokens"` // Optional, defaults to model's max
	Timeout   int    `mapstructure:"timeout"`
}

type TtsConfig struct {
	Type            string `mapstructure:"type"`
	Enabled         bool   `mapstructure:"enabled"`
	Voice           string `mapstructure:"voice"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

func Load() (*Config, error) {
	viper.SetConfigName("config")
	viper.SetConfigType("yaml")
	viper.AddConfigPath(".")
	viper.AddConfigPath("./config")

	viper.BindEnv("openai.api_key", "GREENBASKET_OPENAI_API_KEY")
	viper.BindEnv("openai.model", "OPENAI_MODEL")
	viper.BindEnv("openai.base_url", "OPENAI_BASE_URL")
	viper.BindEnv("llm.provider", "LLM_PROVIDER")

	// Set defaults
	viper.SetDefault("server.port", "8080")
	viper.SetDefault("server.allowed_origins", []string{"http://localhost:3000", "http://localhost:8080"})

	viper.SetDefault("database.path", "./greenbasket.db")
	viper.SetDefault("auth.session_secret", "change-this-in-production")

	viper.SetDefault("llm.provider", "ollama")

	viper.SetDefault("ollama.host", "http://localhost:11434")
	viper.SetDefault("ollama.model", "llama3.2")
	viper.SetDefault("ollama.timeout", 30)

	viper.SetDefault("openai.timeout", 30)
	viper.SetDefault("openai.max_tokens", 1000)

	viper.SetDefault("tts.enabled", false)
	viper.SetDefault("tts.type", "dummy")
	viper.SetDefault("tts.voice", "en-US-Standard-C")

	// Allow environment variables
	viper.SetEnvPrefix("GREENBASKET")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, err
		}
		// Config file not found, use defaults
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return nil, err
	}

	return &config, nil
}
