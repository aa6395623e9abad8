package gitsync

import (
	"context"

	"github.com/gitsyncd/gitsyncd/internal/events"
	"github.com/gitsyncd/gitsyncd/internal/git"
	"github.com/gitsyncd/gitsyncd/internal/repositories"
	"github.com/gitsyncd/gitsyncd/internal/secrets"
)

// StatusSnapshot is the reconciled working copy state. Staged and Modified
// never share a path.
type StatusSnapshot struct {
	Branch     string
	Staged     []string
	Modified   []string
	Created    []string
	Deleted    []string
	Renamed    []git.Rename
	Conflicted []string
	Ahead      int
	Behind     int
	Clean      bool
	Remote     *string
}

// PendingChanges counts staged and modified paths.
func (s StatusSnapshot) PendingChanges() int {
	return len(s.Staged) + len(s.Modified)
}

type CommitAndPushResult struct {
	// Nil when the commit step was skipped
	Commit        *git.CommitResult
	CommitSkipped bool
	Push          git.PushResult
}

// ConfigUpdate changes only the non-nil settings.
type ConfigUpdate struct {
	Enabled   *bool
	AutoStage *bool
}

type Gateway interface {
	IsBackendInstalled(ctx context.Context) bool
	IsRepository(ctx context.Context, repoPath string) bool
	Initialize(ctx context.Context, repoPath string) error

	RawStatus(ctx context.Context, repoPath string) (git.RawStatus, error)
	StagedFiles(ctx context.Context, repoPath string) ([]string, error)
	StageAll(ctx context.Context, repoPath string) error
	StageFile(ctx context.Context, repoPath, file string) error
	UnstageFile(ctx context.Context, repoPath, file string) error

	CommitRaw(ctx context.Context, repoPath, message string) (git.CommitResult, error)
	Push(ctx context.Context, repoPath, remote, branch string) (git.PushResult, error)
	Pull(ctx context.Context, repoPath, remote, branch string) (git.PullResult, error)
	UnpushedCount(ctx context.Context, repoPath, remote, branch string) (int, error)

	SetRemote(ctx context.Context, repoPath, name, url string) error
	GetRemote(ctx context.Context, repoPath, name string) (string, bool, error)
	History(ctx context.Context, repoPath string, limit int) ([]git.LogEntry, error)
}

type SecretScanner interface {
	Scan(ctx context.Context, repoPath string) ([]secrets.Warning, error)
}

type ConfigStore interface {
	Get(ctx context.Context, path string) (*repositories.RepositoryConfig, error)
	Patch(ctx context.Context, path string, updater func(*repositories.RepositoryConfig)) (*repositories.RepositoryConfig, error)
}

type Publisher interface {
	Publish(event events.Event)
}
