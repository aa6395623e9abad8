package git

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os/exec"
	"strconv"
	"strings"
	"time"

	"github.com/go-git/go-git/v6"
	"github.com/go-git/go-git/v6/plumbing"
	"github.com/spf13/afero"
	"go.uber.org/zap"
)

const (
	DefaultHistoryLimit = 50

	installedProbeTimeout = 5 * time.Second
)

// Service runs git primitives against one repository path per call. Index and
// network operations shell out to the git binary so user credentials, hooks and
// config apply; read-only introspection goes through go-git.
type Service struct {
	config Config
	runner *runner
	fs     afero.Fs

	logger *zap.Logger
}

// NewService creates a new GitService.
func NewService(config Config, fs afero.Fs, logger *zap.Logger) *Service {
	return &Service{
		config: config,
		runner: newRunner(config, logger),
		fs:     fs,

		logger: logger,
	}
}

// IsBackendInstalled reports whether the git binary can be executed.
func (s *Service) IsBackendInstalled(ctx context.Context) bool {
	if _, err := exec.LookPath(s.config.binary()); err != nil {
		s.logger.Warn("git binary not found", zap.String("binary", s.config.binary()), zap.Error(err))
		return false
	}

	ctx, cancel := context.WithTimeout(ctx, installedProbeTimeout)
	defer cancel()

	res, err := s.runner.run(ctx, "", "version")
	if err != nil {
		s.logger.Warn("git version probe failed", zap.Error(err))
		return false
	}

	s.logger.Debug("git is installed", zap.String("version", strings.TrimSpace(res.Stdout)))
	return true
}

// IsRepository reports whether repoPath is the root of a git repository.
func (s *Service) IsRepository(_ context.Context, repoPath string) bool {
	_, err := git.PlainOpen(repoPath)
	return err == nil
}

// Initialize creates a repository at repoPath and a default ignore file.
func (s *Service) Initialize(ctx context.Context, repoPath string) error {
	s.logger.Info("initializing repository", zap.String("path", repoPath))

	if err := s.fs.MkdirAll(repoPath, 0o755); err != nil {
		return fmt.Errorf("failed to create %s: %w", repoPath, err)
	}

	args := []string{"init"}
	if s.config.InitialBranch != "" {
		args = append(args, "--initial-branch="+s.config.InitialBranch)
	}

	ctx, cancel := s.localContext(ctx)
	defer cancel()

	if _, err := s.runner.run(ctx, repoPath, args...); err != nil {
		s.logger.Error("failed to initialize repository", zap.Error(err))
		return err
	}

	created, err := writeIgnoreFile(s.fs, repoPath)
	if err != nil {
		s.logger.Error("failed to write ignore file", zap.Error(err))
		return err
	}

	s.logger.Info("repository initialized",
		zap.String("path", repoPath),
		zap.Bool("ignore_file_created", created))

	return nil
}

// RawStatus returns the unreconciled working tree status.
func (s *Service) RawStatus(ctx context.Context, repoPath string) (RawStatus, error) {
	ctx, cancel := s.localContext(ctx)
	defer cancel()

	res, err := s.runner.run(ctx, repoPath,
		"status", "--porcelain=v2", "--branch", "-z", "--untracked-files=all")
	if err != nil {
		s.logger.Error("failed to get status", zap.String("path", repoPath), zap.Error(err))
		return RawStatus{}, err
	}

	return parseStatus(res.Stdout), nil
}

// StagedFiles returns the paths currently staged, queried fresh from git.
func (s *Service) StagedFiles(ctx context.Context, repoPath string) ([]string, error) {
	status, err := s.RawStatus(ctx, repoPath)
	if err != nil {
		return nil, err
	}
	return status.Staged, nil
}

// StageAll stages every change, including deletions and untracked files.
func (s *Service) StageAll(ctx context.Context, repoPath string) error {
	ctx, cancel := s.localContext(ctx)
	defer cancel()

	if _, err := s.runner.run(ctx, repoPath, "add", "--all"); err != nil {
		s.logger.Error("failed to stage changes", zap.String("path", repoPath), zap.Error(err))
		return err
	}

	s.logger.Info("staged all changes", zap.String("path", repoPath))
	return nil
}

// StageFile stages a single file given as absolute or repository-relative path.
func (s *Service) StageFile(ctx context.Context, repoPath, file string) error {
	rel, err := relativePath(repoPath, file)
	if err != nil {
		return err
	}

	ctx, cancel := s.localContext(ctx)
	defer cancel()

	if _, runErr := s.runner.run(ctx, repoPath, "add", "--", rel); runErr != nil {
		s.logger.Error("failed to stage file", zap.String("file", rel), zap.Error(runErr))
		return runErr
	}

	s.logger.Info("staged file", zap.String("path", repoPath), zap.String("file", rel))
	return nil
}

// UnstageFile removes a file from the index, keeping working tree changes.
func (s *Service) UnstageFile(ctx context.Context, repoPath, file string) error {
	rel, err := relativePath(repoPath, file)
	if err != nil {
		return err
	}

	hasHead, err := s.hasHead(repoPath)
	if err != nil {
		return err
	}

	// An unborn branch has no HEAD to reset to.
	args := []string{"rm", "--cached", "-q", "--", rel}
	if hasHead {
		args = []string{"reset", "-q", "HEAD", "--", rel}
	}

	ctx, cancel := s.localContext(ctx)
	defer cancel()

	if _, runErr := s.runner.run(ctx, repoPath, args...); runErr != nil {
		s.logger.Error("failed to unstage file", zap.String("file", rel), zap.Error(runErr))
		return runErr
	}

	s.logger.Info("unstaged file", zap.String("path", repoPath), zap.String("file", rel))
	return nil
}

// CommitRaw commits the index. It does not inspect staged content.
func (s *Service) CommitRaw(ctx context.Context, repoPath, message string) (CommitResult, error) {
	ctx, cancel := s.localContext(ctx)
	defer cancel()

	res, err := s.runner.run(ctx, repoPath, "commit", "-m", message)
	if err != nil {
		s.logger.Error("failed to commit", zap.String("path", repoPath), zap.Error(err))
		return CommitResult{}, err
	}

	head, err := s.runner.run(ctx, repoPath, "rev-parse", "HEAD")
	if err != nil {
		return CommitResult{}, err
	}

	commit := CommitResult{
		Hash:    strings.TrimSpace(head.Stdout),
		Branch:  parseCommitBranch(res.Stdout),
		Summary: parseChangeSummary(res.Stdout),
	}

	s.logger.Info("committed changes",
		zap.String("path", repoPath),
		zap.String("hash", commit.Hash),
		zap.Int("changes", commit.Summary.Changes))

	return commit, nil
}

// Push pushes branch to remote. The caller bounds the network time through ctx.
func (s *Service) Push(ctx context.Context, repoPath, remote, branch string) (PushResult, error) {
	s.logger.Info("pushing",
		zap.String("path", repoPath),
		zap.String("remote", remote),
		zap.String("branch", branch))

	res, err := s.runner.run(ctx, repoPath, "push", "--porcelain", remote, branch)
	if err = asNetworkError(res, err); err != nil {
		s.logger.Error("failed to push", zap.String("path", repoPath), zap.Error(err))
		return PushResult{}, err
	}

	pushed := parsePush(res.Stdout, res.Stderr)

	s.logger.Info("pushed",
		zap.String("path", repoPath),
		zap.Int("refs", len(pushed.Pushed)))

	return pushed, nil
}

// Pull merges branch from remote into the current branch.
func (s *Service) Pull(ctx context.Context, repoPath, remote, branch string) (PullResult, error) {
	s.logger.Info("pulling",
		zap.String("path", repoPath),
		zap.String("remote", remote),
		zap.String("branch", branch))

	res, err := s.runner.run(ctx, repoPath, "pull", "--no-rebase", "--stat", remote, branch)
	if err = asNetworkError(res, err); err != nil {
		s.logger.Error("failed to pull", zap.String("path", repoPath), zap.Error(err))
		return PullResult{}, err
	}

	pulled := PullResult{
		Summary: parseChangeSummary(res.Stdout),
		Files:   parseDiffstatFiles(res.Stdout),
	}

	s.logger.Info("pulled",
		zap.String("path", repoPath),
		zap.Int("files", len(pulled.Files)),
		zap.Int("insertions", pulled.Summary.Insertions),
		zap.Int("deletions", pulled.Summary.Deletions))

	return pulled, nil
}

// SetRemote points remote name at url, creating the remote when missing.
func (s *Service) SetRemote(ctx context.Context, repoPath, name, url string) error {
	_, exists, err := s.GetRemote(ctx, repoPath, name)
	if err != nil {
		return err
	}

	args := []string{"remote", "add", name, url}
	if exists {
		args = []string{"remote", "set-url", name, url}
	}

	ctx, cancel := s.localContext(ctx)
	defer cancel()

	if _, runErr := s.runner.run(ctx, repoPath, args...); runErr != nil {
		s.logger.Error("failed to set remote", zap.String("remote", name), zap.Error(runErr))
		return runErr
	}

	s.logger.Info("remote set",
		zap.String("path", repoPath),
		zap.String("remote", name),
		zap.Bool("updated", exists))

	return nil
}

// GetRemote returns the fetch URL of remote name. A missing remote is reported
// with found == false, not as an error.
func (s *Service) GetRemote(_ context.Context, repoPath, name string) (string, bool, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrRepositoryNotFound, err)
	}

	remote, err := repo.Remote(name)
	if errors.Is(err, git.ErrRemoteNotFound) {
		return "", false, nil
	}
	if err != nil {
		return "", false, fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}

	urls := remote.Config().URLs
	if len(urls) == 0 {
		return "", false, nil
	}

	return urls[0], true, nil
}

// History returns up to limit commits reachable from HEAD, most recent first.
func (s *Service) History(_ context.Context, repoPath string, limit int) ([]LogEntry, error) {
	if limit <= 0 {
		limit = DefaultHistoryLimit
	}

	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrRepositoryNotFound, err)
	}

	iter, err := repo.Log(&git.LogOptions{})
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return []LogEntry{}, nil
	}
	if err != nil {
		return nil, fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}
	defer iter.Close()

	entries := make([]LogEntry, 0, limit)
	for len(entries) < limit {
		commit, nextErr := iter.Next()
		if errors.Is(nextErr, io.EOF) {
			break
		}
		if nextErr != nil {
			return nil, fmt.Errorf("%w: %w", ErrCommandFailed, nextErr)
		}

		entries = append(entries, LogEntry{
			Hash:    commit.Hash.String(),
			Message: strings.TrimSpace(commit.Message),
			Author:  commit.Author.Name,
			Email:   commit.Author.Email,
			Date:    commit.Author.When,
		})
	}

	return entries, nil
}

// UnpushedCount counts commits on HEAD that the remote-tracking ref of
// remote/branch does not contain. Without a tracking ref every commit counts.
func (s *Service) UnpushedCount(ctx context.Context, repoPath, remote, branch string) (int, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return 0, fmt.Errorf("%w: %w", ErrRepositoryNotFound, err)
	}

	if _, headErr := repo.Head(); headErr != nil {
		if errors.Is(headErr, plumbing.ErrReferenceNotFound) {
			return 0, nil
		}
		return 0, fmt.Errorf("%w: %w", ErrCommandFailed, headErr)
	}

	revisions := "HEAD"
	tracking := plumbing.NewRemoteReferenceName(remote, branch)
	if _, refErr := repo.Reference(tracking, true); refErr == nil {
		revisions = tracking.String() + "..HEAD"
	}

	ctx, cancel := s.localContext(ctx)
	defer cancel()

	res, err := s.runner.run(ctx, repoPath, "rev-list", "--count", revisions)
	if err != nil {
		return 0, err
	}

	count, err := strconv.Atoi(strings.TrimSpace(res.Stdout))
	if err != nil {
		return 0, fmt.Errorf("%w: unexpected rev-list output %q", ErrCommandFailed, res.Stdout)
	}

	return count, nil
}

func (s *Service) hasHead(repoPath string) (bool, error) {
	repo, err := git.PlainOpen(repoPath)
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrRepositoryNotFound, err)
	}

	_, err = repo.Head()
	if errors.Is(err, plumbing.ErrReferenceNotFound) {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}

	return true, nil
}

func (s *Service) localContext(ctx context.Context) (context.Context, context.CancelFunc) {
	if s.config.Timeout <= 0 {
		return context.WithCancel(ctx)
	}
	return context.WithTimeout(ctx, s.config.Timeout)
}
