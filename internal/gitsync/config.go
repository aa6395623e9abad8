package gitsync

import "time"

const (
	DefaultRemote             = "origin"
	DefaultBranch             = "main"
	DefaultNetworkTimeout     = 60 * time.Second
	DefaultLockTimeout        = 30 * time.Second
	DefaultMaxConcurrentReads = 8
)

type Config struct {
	DefaultRemote string
	DefaultBranch string

	NetworkTimeout time.Duration
	LockTimeout    time.Duration

	// Read operations allowed to run at once on a single repository
	MaxConcurrentReads int64
}

func (c Config) withDefaults() Config {
	if c.DefaultRemote == "" {
		c.DefaultRemote = DefaultRemote
	}
	if c.DefaultBranch == "" {
		c.DefaultBranch = DefaultBranch
	}
	if c.NetworkTimeout <= 0 {
		c.NetworkTimeout = DefaultNetworkTimeout
	}
	if c.LockTimeout <= 0 {
		c.LockTimeout = DefaultLockTimeout
	}
	if c.MaxConcurrentReads <= 0 {
		c.MaxConcurrentReads = DefaultMaxConcurrentReads
	}
	return c
}
