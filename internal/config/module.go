package config

import (
	"github.com/gitsyncd/gitsyncd/internal/events"
	"github.com/gitsyncd/gitsyncd/internal/git"
	"github.com/gitsyncd/gitsyncd/internal/gitsync"
	"github.com/gitsyncd/gitsyncd/internal/secrets"
	"github.com/gitsyncd/gitsyncd/pkg/badgerfx"
	"github.com/go-core-fx/fiberfx"
	"go.uber.org/fx"
)

func Module() fx.Option {
	return fx.Module(
		"config",
		fx.Provide(New),
		fx.Provide(func(cfg Config) fiberfx.Config {
			return fiberfx.Config{
				Address:     cfg.HTTP.Address,
				ProxyHeader: cfg.HTTP.ProxyHeader,
				Proxies:     cfg.HTTP.Proxies,
			}
		}),
		fx.Provide(func(cfg Config) badgerfx.Config {
			return badgerfx.Config{
				Dir:      cfg.Storage.DataDir,
				InMemory: cfg.Storage.InMemory,
			}
		}),
		fx.Provide(func(cfg Config) git.Config {
			return git.Config{
				Binary:        cfg.Git.Binary,
				Timeout:       cfg.Git.Timeout,
				InitialBranch: cfg.Git.InitialBranch,
				AuthorName:    cfg.Git.AuthorName,
				AuthorEmail:   cfg.Git.AuthorEmail,
			}
		}),
		fx.Provide(func(cfg Config) gitsync.Config {
			return gitsync.Config{
				DefaultRemote:      cfg.Git.DefaultRemote,
				DefaultBranch:      cfg.Git.DefaultBranch,
				NetworkTimeout:     cfg.Git.NetworkTimeout,
				LockTimeout:        cfg.Git.LockTimeout,
				MaxConcurrentReads: cfg.Git.MaxConcurrentReads,
			}
		}),
		fx.Provide(func(cfg Config) secrets.Config {
			return secrets.Config{
				Extension: cfg.Secrets.Extension,
			}
		}),
		fx.Provide(func(cfg Config) events.Config {
			return events.Config{
				BufferSize: cfg.Events.BufferSize,
			}
		}),
	)
}
