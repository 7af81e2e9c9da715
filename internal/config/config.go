package config

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/viper"
)

type Config struct {
	Mode   string `mapstructure:"mode"`
	Port   int    `mapstructure:"port"`
	Secret string `mapstructure:"secret"`

	BackendURL string `mapstructure:"backend_url"`
	MediaWSURL string `mapstructure:"media_ws_url"`

	MediaAPIKey    string        `mapstructure:"media_api_key"`
	MediaAPISecret string        `mapstructure:"media_api_secret"`
	TokenTTL       time.Duration `mapstructure:"token_ttl"`

	AllowedOrigins []string `mapstructure:"allowed_origins"`

	Email            string `mapstructure:"email"`
	DisplayName      string `mapstructure:"display_name"`
	AuthAPIKey       string `mapstructure:"auth_api_key"`
	AuthRefreshToken string `mapstructure:"auth_refresh_token"`

	ParticipantsPoll time.Duration `mapstructure:"participants_poll"`
	MetadataPoll     time.Duration `mapstructure:"metadata_poll"`
	ExtractsPoll     time.Duration `mapstructure:"extracts_poll"`
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
	v.SetDefault("backend_url", "http://localhost:8000")
	v.SetDefault("media_ws_url", "ws://localhost:7880/rtc")
	v.SetDefault("token_ttl", "6h")
	v.SetDefault("participants_poll", "5s")
	v.SetDefault("metadata_poll", "2s")
	v.SetDefault("extracts_poll", "5s")

	if err := v.ReadInConfig(); err != nil {
		fmt.Printf("config file not found (%s), using defaults\n", fileName)
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config: %w", err)
	}
	return &cfg, nil
}
