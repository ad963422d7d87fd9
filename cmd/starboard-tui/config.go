package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tinytelemetry/starboard/internal/model"
)

// cliConfig holds only TUI-relevant configuration.
type cliConfig struct {
	Repo           string        `mapstructure:"repo"`
	APIBaseURL     string        `mapstructure:"api-base-url"`
	PollInterval   time.Duration `mapstructure:"poll-interval"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
	NotesPath      string        `mapstructure:"notes-path"`
	TokenKey       string        `mapstructure:"token-key"`
	Title          string        `mapstructure:"title"`
	LinkURL        string        `mapstructure:"link-url"`
	LinkText       string        `mapstructure:"link-text"`
	SocketPath     string        `mapstructure:"socket-path"`
}

func (c cliConfig) branding() model.Branding {
	return model.Branding{Title: c.Title, LinkURL: c.LinkURL, LinkText: c.LinkText}
}

func loadCLIConfig(configPath string) (cliConfig, error) {
	var cfg cliConfig

	home, err := os.UserHomeDir()
	if err != nil {
		return cfg, fmt.Errorf("finding home directory: %w", err)
	}

	branding := model.DefaultBranding()

	v := viper.New()
	v.SetEnvPrefix("STARBOARD")
	v.AutomaticEnv()
	v.SetEnvKeyReplacer(strings.NewReplacer("-", "_"))

	v.SetDefault("repo", model.DefaultRepo)
	v.SetDefault("api-base-url", model.DefaultAPIBaseURL)
	v.SetDefault("poll-interval", model.DefaultPollInterval)
	v.SetDefault("request-timeout", model.DefaultRequestTimeout)
	v.SetDefault("notes-path", filepath.Join(home, ".config", "starboard", "notes.yml"))
	v.SetDefault("token-key", model.DefaultTokenKey)
	v.SetDefault("title", branding.Title)
	v.SetDefault("link-url", branding.LinkURL)
	v.SetDefault("link-text", branding.LinkText)
	v.SetDefault("socket-path", "")

	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigFile(filepath.Join(home, ".config", "starboard", "config.yml"))
	}

	if err := v.ReadInConfig(); err != nil {
		var configFileNotFound viper.ConfigFileNotFoundError
		if !errors.As(err, &configFileNotFound) && !os.IsNotExist(err) {
			return cfg, err
		}
	}

	if err := v.Unmarshal(&cfg); err != nil {
		return cfg, err
	}

	if cfg.PollInterval <= 0 {
		return cfg, fmt.Errorf("invalid poll-interval: %s", cfg.PollInterval)
	}
	if strings.HasPrefix(cfg.NotesPath, "~/") {
		cfg.NotesPath = filepath.Join(home, cfg.NotesPath[2:])
	}
	if strings.HasPrefix(cfg.SocketPath, "~/") {
		cfg.SocketPath = filepath.Join(home, cfg.SocketPath[2:])
	}

	return cfg, nil
}
