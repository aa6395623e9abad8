package config_test

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/gitsyncd/gitsyncd/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefault(t *testing.T) {
	cfg := config.Default()

	assert.Equal(t, "127.0.0.1:3000", cfg.HTTP.Address)
	assert.Equal(t, "git", cfg.Git.Binary)
	assert.Equal(t, "origin", cfg.Git.DefaultRemote)
	assert.Equal(t, "main", cfg.Git.DefaultBranch)
	assert.Equal(t, 60*time.Second, cfg.Git.NetworkTimeout)
	assert.Equal(t, ".bru", cfg.Secrets.Extension)
}

func TestNew_YAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  address: 0.0.0.0:8080
git:
  default_branch: trunk
  lock_timeout: 5s
secrets:
  extension: .req
`), 0o600))
	t.Setenv("CONFIG_PATH", path)

	cfg, err := config.New()
	require.NoError(t, err)

	assert.Equal(t, "0.0.0.0:8080", cfg.HTTP.Address)
	assert.Equal(t, "trunk", cfg.Git.DefaultBranch)
	assert.Equal(t, 5*time.Second, cfg.Git.LockTimeout)
	assert.Equal(t, ".req", cfg.Secrets.Extension)
	assert.Equal(t, "origin", cfg.Git.DefaultRemote, "unset keys keep defaults")
}
