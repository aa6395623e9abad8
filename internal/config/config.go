package config

import (
	"fmt"
	"os"
	"time"

	"github.com/go-core-fx/config"
)

type http struct {
	Address     string   `koanf:"address"`
	ProxyHeader string   `koanf:"proxy_header"`
	Proxies     []string `koanf:"proxies"`
}

type storageConfig struct {
	DataDir  string `koanf:"data_dir"`
	InMemory bool   `koanf:"in_memory"`
}

type gitConfig struct {
	Binary         string        `koanf:"binary"`
	Timeout        time.Duration `koanf:"timeout"`
	NetworkTimeout time.Duration `koanf:"network_timeout"`
	LockTimeout    time.Duration `koanf:"lock_timeout"`

	InitialBranch string `koanf:"initial_branch"`
	DefaultRemote string `koanf:"default_remote"`
	DefaultBranch string `koanf:"default_branch"`

	AuthorName  string `koanf:"author_name"`
	AuthorEmail string `koanf:"author_email"`

	MaxConcurrentReads int64 `koanf:"max_concurrent_reads"`
}

type secretsConfig struct {
	Extension string `koanf:"extension"`
}

type eventsConfig struct {
	BufferSize int `koanf:"buffer_size"`
}

type Config struct {
	HTTP http `koanf:"http"`

	Storage storageConfig `koanf:"storage"`
	Git     gitConfig     `koanf:"git"`
	Secrets secretsConfig `koanf:"secrets"`
	Events  eventsConfig  `koanf:"events"`
}

func Default() Config {
	//nolint:exhaustruct,mnd //default values
	return Config{
		HTTP: http{
			Address:     "127.0.0.1:3000",
			ProxyHeader: "X-Forwarded-For",
			Proxies:     []string{},
		},

		Storage: storageConfig{
			DataDir: "./data",
		},

		Git: gitConfig{
			Binary:         "git",
			Timeout:        30 * time.Second,
			NetworkTimeout: 60 * time.Second,
			LockTimeout:    30 * time.Second,

			InitialBranch: "main",
			DefaultRemote: "origin",
			DefaultBranch: "main",

			MaxConcurrentReads: 8,
		},

		Secrets: secretsConfig{
			Extension: ".bru",
		},

		Events: eventsConfig{
			BufferSize: 32,
		},
	}
}

func New() (Config, error) {
	cfg := Default()

	options := []config.Option{}
	if yamlPath := os.Getenv("CONFIG_PATH"); yamlPath != "" {
		options = append(options, config.WithLocalYAML(yamlPath))
	}

	if err := config.Load(&cfg, options...); err != nil {
		return Config{}, fmt.Errorf("failed to load config: %w", err)
	}

	return cfg, nil
}
