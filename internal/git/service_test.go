package git

import (
	"context"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/afero"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

func newTestService(t *testing.T) *Service {
	t.Helper()

	if _, err := exec.LookPath("git"); err != nil {
		t.Skip("git is not installed")
	}

	// Keep the user's global settings (signing, hooks, default branch) out of the tests.
	t.Setenv("GIT_CONFIG_GLOBAL", os.DevNull)
	t.Setenv("GIT_CONFIG_NOSYSTEM", "1")

	config := Config{
		Timeout:       30 * time.Second,
		InitialBranch: "main",
		AuthorName:    "Test Author",
		AuthorEmail:   "test@example.com",
	}

	return NewService(config, afero.NewOsFs(), zaptest.NewLogger(t))
}

func runGit(t *testing.T, dir string, args ...string) string {
	t.Helper()

	cmd := exec.Command("git", args...)
	cmd.Dir = dir
	cmd.Env = append(os.Environ(),
		"GIT_AUTHOR_NAME=Other Author",
		"GIT_AUTHOR_EMAIL=other@example.com",
		"GIT_COMMITTER_NAME=Other Author",
		"GIT_COMMITTER_EMAIL=other@example.com",
	)

	out, err := cmd.CombinedOutput()
	require.NoError(t, err, "git %v: %s", args, out)

	return string(out)
}

func writeFile(t *testing.T, dir, name, content string) string {
	t.Helper()

	path := filepath.Join(dir, filepath.FromSlash(name))
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0o755))
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))

	return path
}

func initRepo(t *testing.T, svc *Service) string {
	t.Helper()

	repoPath := filepath.Join(t.TempDir(), "collection")
	require.NoError(t, svc.Initialize(context.Background(), repoPath))

	return repoPath
}

func TestService_Initialize(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	repoPath := filepath.Join(t.TempDir(), "collection")
	assert.False(t, svc.IsRepository(ctx, repoPath))

	require.NoError(t, svc.Initialize(ctx, repoPath))
	assert.True(t, svc.IsRepository(ctx, repoPath))

	content, err := os.ReadFile(filepath.Join(repoPath, ".gitignore"))
	require.NoError(t, err)
	assert.Contains(t, string(content), "*.secrets.bru")

	status, err := svc.RawStatus(ctx, repoPath)
	require.NoError(t, err)
	assert.Equal(t, "main", status.Branch)
	assert.Equal(t, []string{".gitignore"}, status.NotAdded)
	assert.False(t, status.Clean)
}

func TestService_InitializeKeepsExistingIgnoreFile(t *testing.T) {
	svc := newTestService(t)

	repoPath := t.TempDir()
	writeFile(t, repoPath, ".gitignore", "custom\n")

	require.NoError(t, svc.Initialize(context.Background(), repoPath))

	content, err := os.ReadFile(filepath.Join(repoPath, ".gitignore"))
	require.NoError(t, err)
	assert.Equal(t, "custom\n", string(content))
}

func TestService_NotARepository(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	dir := t.TempDir()

	_, err := svc.RawStatus(ctx, dir)
	require.ErrorIs(t, err, ErrRepositoryNotFound)

	_, _, err = svc.GetRemote(ctx, dir, "origin")
	require.ErrorIs(t, err, ErrRepositoryNotFound)
}

func TestService_StageUnstageCommit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	repoPath := initRepo(t, svc)

	absolute := writeFile(t, repoPath, "requests/get.bru", "get {\n  url: https://example.com\n}\n")

	require.NoError(t, svc.StageFile(ctx, repoPath, absolute))
	staged, err := svc.StagedFiles(ctx, repoPath)
	require.NoError(t, err)
	assert.Equal(t, []string{"requests/get.bru"}, staged)

	// Unborn branch: unstaging goes through the index only.
	require.NoError(t, svc.UnstageFile(ctx, repoPath, "requests/get.bru"))
	staged, err = svc.StagedFiles(ctx, repoPath)
	require.NoError(t, err)
	assert.Empty(t, staged)

	require.NoError(t, svc.StageAll(ctx, repoPath))
	staged, err = svc.StagedFiles(ctx, repoPath)
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{".gitignore", "requests/get.bru"}, staged)

	commit, err := svc.CommitRaw(ctx, repoPath, "initial collection")
	require.NoError(t, err)
	assert.Len(t, commit.Hash, 40)
	assert.Equal(t, "main", commit.Branch)
	assert.Equal(t, 2, commit.Summary.Changes)
	assert.Positive(t, commit.Summary.Insertions)

	status, err := svc.RawStatus(ctx, repoPath)
	require.NoError(t, err)
	assert.True(t, status.Clean)

	writeFile(t, repoPath, "requests/get.bru", "get {\n  url: https://example.org\n}\n")
	require.NoError(t, svc.StageAll(ctx, repoPath))
	require.NoError(t, svc.UnstageFile(ctx, repoPath, absolute))

	status, err = svc.RawStatus(ctx, repoPath)
	require.NoError(t, err)
	assert.Empty(t, status.Staged)
	assert.Equal(t, []string{"requests/get.bru"}, status.Modified)

	history, err := svc.History(ctx, repoPath, 0)
	require.NoError(t, err)
	require.Len(t, history, 1)
	assert.Equal(t, commit.Hash, history[0].Hash)
	assert.Equal(t, "initial collection", history[0].Message)
	assert.Equal(t, "Test Author", history[0].Author)
	assert.Equal(t, "test@example.com", history[0].Email)
}

func TestService_StageFileOutsideRepository(t *testing.T) {
	svc := newTestService(t)
	repoPath := initRepo(t, svc)

	err := svc.StageFile(context.Background(), repoPath, filepath.Join(filepath.Dir(repoPath), "elsewhere.bru"))
	require.ErrorIs(t, err, ErrInvalidPath)
}

func TestService_CommitNothingStaged(t *testing.T) {
	svc := newTestService(t)
	repoPath := initRepo(t, svc)

	_, err := svc.CommitRaw(context.Background(), repoPath, "empty")
	require.ErrorIs(t, err, ErrCommandFailed)
}

func TestService_HistoryLimit(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	repoPath := initRepo(t, svc)

	history, err := svc.History(ctx, repoPath, 10)
	require.NoError(t, err)
	assert.Empty(t, history)

	for i, name := range []string{"a.bru", "b.bru", "c.bru"} {
		writeFile(t, repoPath, name, strings.Repeat("x", i+1))
		require.NoError(t, svc.StageAll(ctx, repoPath))
		_, err = svc.CommitRaw(ctx, repoPath, "add "+name)
		require.NoError(t, err)
	}

	history, err = svc.History(ctx, repoPath, 2)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "add c.bru", history[0].Message)
	assert.Equal(t, "add b.bru", history[1].Message)
}

func TestService_SetRemote(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()
	repoPath := initRepo(t, svc)

	url, found, err := svc.GetRemote(ctx, repoPath, "origin")
	require.NoError(t, err)
	assert.False(t, found)
	assert.Empty(t, url)

	require.NoError(t, svc.SetRemote(ctx, repoPath, "origin", "https://example.com/first.git"))
	require.NoError(t, svc.SetRemote(ctx, repoPath, "origin", "https://example.com/second.git"))

	url, found, err = svc.GetRemote(ctx, repoPath, "origin")
	require.NoError(t, err)
	assert.True(t, found)
	assert.Equal(t, "https://example.com/second.git", url)

	remotes := strings.Fields(runGit(t, repoPath, "remote"))
	assert.Equal(t, []string{"origin"}, remotes)
}

func TestService_PushPull(t *testing.T) {
	svc := newTestService(t)
	ctx := context.Background()

	root := t.TempDir()
	remotePath := filepath.Join(root, "remote.git")
	runGit(t, root, "init", "--bare", "--initial-branch=main", remotePath)

	repoPath := initRepo(t, svc)
	require.NoError(t, svc.SetRemote(ctx, repoPath, "origin", remotePath))

	writeFile(t, repoPath, "a.bru", "meta {\n  name: a\n}\n")
	require.NoError(t, svc.StageAll(ctx, repoPath))
	_, err := svc.CommitRaw(ctx, repoPath, "first")
	require.NoError(t, err)

	unpushed, err := svc.UnpushedCount(ctx, repoPath, "origin", "main")
	require.NoError(t, err)
	assert.Equal(t, 1, unpushed)

	pushed, err := svc.Push(ctx, repoPath, "origin", "main")
	require.NoError(t, err)
	require.Len(t, pushed.Pushed, 1)
	assert.Equal(t, "*", pushed.Pushed[0].Flag)
	assert.Equal(t, "refs/heads/main", pushed.Pushed[0].Remote)

	unpushed, err = svc.UnpushedCount(ctx, repoPath, "origin", "main")
	require.NoError(t, err)
	assert.Zero(t, unpushed)

	clonePath := filepath.Join(root, "clone")
	runGit(t, root, "clone", remotePath, clonePath)
	writeFile(t, clonePath, "b.bru", "meta {\n  name: b\n}\n")
	runGit(t, clonePath, "add", "--all")
	runGit(t, clonePath, "commit", "-m", "from clone")
	runGit(t, clonePath, "push", "origin", "main")

	pulled, err := svc.Pull(ctx, repoPath, "origin", "main")
	require.NoError(t, err)
	assert.Equal(t, []string{"b.bru"}, pulled.Files)
	assert.Equal(t, 1, pulled.Summary.Changes)
	assert.Equal(t, 3, pulled.Summary.Insertions)

	history, err := svc.History(ctx, repoPath, 0)
	require.NoError(t, err)
	require.Len(t, history, 2)
	assert.Equal(t, "from clone", history[0].Message)
	assert.Equal(t, "Other Author", history[0].Author)
}

func TestService_PushTimeoutIsNetworkError(t *testing.T) {
	svc := newTestService(t)
	repoPath := initRepo(t, svc)

	ctx, cancel := context.WithDeadline(context.Background(), time.Now().Add(-time.Second))
	defer cancel()

	_, err := svc.Push(ctx, repoPath, "origin", "main")
	require.ErrorIs(t, err, ErrNetwork)
	require.ErrorIs(t, err, ErrTimeout)
}

func TestService_IsBackendInstalled(t *testing.T) {
	svc := newTestService(t)
	assert.True(t, svc.IsBackendInstalled(context.Background()))

	missing := NewService(Config{Binary: "definitely-not-git"}, afero.NewOsFs(), zaptest.NewLogger(t))
	assert.False(t, missing.IsBackendInstalled(context.Background()))
}
