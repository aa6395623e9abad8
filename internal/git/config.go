package git

import "time"

type Config struct {
	// Binary is the git executable, resolved through PATH when not absolute.
	Binary string
	// Timeout bounds local commands (status, add, commit, remote).
	Timeout time.Duration
	// InitialBranch is passed to git init.
	InitialBranch string

	// AuthorName and AuthorEmail override the identity from the user's git
	// configuration when set.
	AuthorName  string
	AuthorEmail string
}

func (c Config) binary() string {
	if c.Binary == "" {
		return "git"
	}
	return c.Binary
}
