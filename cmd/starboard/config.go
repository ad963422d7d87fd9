package main

import (
	"errors"
	"fmt"
	"net"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/spf13/viper"
	"github.com/tinytelemetry/starboard/internal/model"
	"github.com/tinytelemetry/starboard/internal/socketrpc"
)

const (
	defaultBindHost = "127.0.0.1"
	defaultAPIPort  = 3000
)

// appConfig is internal runtime configuration.
// It is package-private to keep defaults and shape local to the CLI entrypoint.
type appConfig struct {
	Repo           string        `mapstructure:"repo"`
	APIBaseURL     string        `mapstructure:"api-base-url"`
	PollInterval   time.Duration `mapstructure:"poll-interval"`
	RequestTimeout time.Duration `mapstructure:"request-timeout"`
	NotesPath      string        `mapstructure:"notes-path"`
	TokenKey       string        `mapstructure:"token-key"`
	Title          string        `mapstructure:"title"`
	LinkURL        string        `mapstructure:"link-url"`
	LinkText       string        `mapstructure:"link-text"`
	Host           string        `mapstructure:"host"`
	APIPort        int           `mapstructure:"api-port"`
	APIAddr        string        `mapstructure:"api-addr"`
	SocketPath     string        `mapstructure:"socket-path"`
	ConfigPath     string        `mapstructure:"-"` // not from config file
}

func (c appConfig) branding() model.Branding {
	return model.Branding{Title: c.Title, LinkURL: c.LinkURL, LinkText: c.LinkText}
}

func loadConfig(configPath string) (appConfig, error) {
	var cfg appConfig

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
	v.SetDefault("host", defaultBindHost)
	v.SetDefault("api-port", defaultAPIPort)
	v.SetDefault("api-addr", "")
	v.SetDefault("socket-path", socketrpc.DefaultSocketPath())

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
	cfg.ConfigPath = v.ConfigFileUsed()

	if cfg.PollInterval <= 0 {
		return cfg, fmt.Errorf("invalid poll-interval: %s", cfg.PollInterval)
	}
	if cfg.RequestTimeout <= 0 {
		return cfg, fmt.Errorf("invalid request-timeout: %s", cfg.RequestTimeout)
	}
	if cfg.APIPort <= 0 || cfg.APIPort > 65535 {
		return cfg, fmt.Errorf("invalid api-port: %d", cfg.APIPort)
	}
	if !strings.Contains(strings.Trim(cfg.Repo, "/"), "/") {
		return cfg, fmt.Errorf("invalid repo %q: want owner/name", cfg.Repo)
	}

	// Expand ~ in notes-path and socket-path
	if strings.HasPrefix(cfg.NotesPath, "~/") {
		cfg.NotesPath = filepath.Join(home, cfg.NotesPath[2:])
	}
	if strings.HasPrefix(cfg.SocketPath, "~/") {
		cfg.SocketPath = filepath.Join(home, cfg.SocketPath[2:])
	}

	if cfg.APIAddr == "" {
		cfg.APIAddr = net.JoinHostPort(cfg.Host, strconv.Itoa(cfg.APIPort))
	}

	return cfg, nil
}
