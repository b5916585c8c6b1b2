package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type AssistantConfig struct {
	BaseURL string        `mapstructure:"base_url"`
	Model   string        `mapstructure:"model"`
	Timeout time.Duration `mapstructure:"timeout"`
	// APIKeyEnv names the environment variable holding the key; the key
	// itself never lives in config files.
	APIKeyEnv string `mapstructure:"api_key_env"`
}

type Config struct {
	Mode          string          `mapstructure:"mode"`
	Port          int             `mapstructure:"port"`
	Secret        string          `mapstructure:"secret"`
	DefaultFolder string          `mapstructure:"default_folder"`
	Folders       []string        `mapstructure:"folders"`
	Transcribe    time.Duration   `mapstructure:"transcribe_after"`
	Summarize     time.Duration   `mapstructure:"summarize_after"`
	Success       time.Duration   `mapstructure:"success_after"`
	ConnectDelay  time.Duration   `mapstructure:"connect_delay"`
	ReadLimit     int64           `mapstructure:"read_limit"`
	JoinLimit     int             `mapstructure:"join_limit"`
	JoinInterval  time.Duration   `mapstructure:"join_interval"`
	Assistant     AssistantConfig `mapstructure:"assistant"`
}

// AssistantAPIKey resolves the collaborator credential from the environment.
// Empty means run with the stub assistant.
func (c *Config) AssistantAPIKey() string {
	return os.Getenv(c.Assistant.APIKeyEnv)
}

func Load() (*Config, error) {
	v := viper.New()
	v.SetConfigType("yaml")

	env := os.Getenv("CONFIG_ENV")
	if env == "" {
		env = "dev"
	}
	fileName := fmt.Sprintf("config/config.%s.yaml", env)

	v.SetConfigFile(fileName)
	v.AddConfigPath(".")
	v.AddConfigPath("./config")

	v.SetDefault("mode", "release")
	v.SetDefault("port", 8080)
	v.SetDefault("secret", "change-me-in-production")
	v.SetDefault("default_folder", "Product Team")
	v.SetDefault("folders", []string{"Unsorted", "Product Team", "Client Interviews", "Q3 Planning", "Engineering Syncs"})
	v.SetDefault("transcribe_after", "1s")
	v.SetDefault("summarize_after", "2s")
	v.SetDefault("success_after", "3s")
	v.SetDefault("connect_delay", "1500ms")
	v.SetDefault("read_limit", 32768)
	v.SetDefault("join_limit", 10)
	v.SetDefault("join_interval", "1m")
	v.SetDefault("assistant.base_url", "https://generativelanguage.googleapis.com")
	v.SetDefault("assistant.model", "gemini-3-flash-preview")
	v.SetDefault("assistant.timeout", "15s")
	v.SetDefault("assistant.api_key_env", "CLERKBOT_GEMINI_API_KEY")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("⚠️ Config file not found (%s), using defaults\n", fileName)
	} else {
		fmt.Printf("✅ Loaded config: %s\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	fmt.Printf("🧩 Mode: %s | Port: %d | Default folder: %s\n", cfg.Mode, cfg.Port, cfg.DefaultFolder)
	return &cfg, nil
}
