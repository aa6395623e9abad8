package gitsync

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/gitsyncd/gitsyncd/internal/events"
	"github.com/gitsyncd/gitsyncd/internal/git"
	"github.com/gitsyncd/gitsyncd/internal/repositories"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

const (
	OperationInit          = "init"
	OperationStatus        = "status"
	OperationStageAll      = "stage_all"
	OperationStageFile     = "stage_file"
	OperationUnstageFile   = "unstage_file"
	OperationCommit        = "commit"
	OperationPush          = "push"
	OperationPull          = "pull"
	OperationCommitAndPush = "commit_and_push"
	OperationSetRemote     = "set_remote"
	OperationGetRemote     = "get_remote"
	OperationHistory       = "history"
	OperationIsRepository  = "is_repo"
	OperationConfig        = "config"
	OperationConfigure     = "configure"
)

const shortHashLength = 7

type Service struct {
	config Config

	gateway Gateway
	scanner SecretScanner
	store   ConfigStore
	events  Publisher

	locks   *locks
	metrics *Metrics
	logger  *zap.Logger
}

func NewService(
	config Config,
	gateway Gateway,
	scanner SecretScanner,
	store ConfigStore,
	publisher Publisher,
	metrics *Metrics,
	logger *zap.Logger,
) *Service {
	config = config.withDefaults()

	return &Service{
		config: config,

		gateway: gateway,
		scanner: scanner,
		store:   store,
		events:  publisher,

		locks:   newLocks(config.MaxConcurrentReads, config.LockTimeout),
		metrics: metrics,
		logger:  logger,
	}
}

// CheckInstalled reports whether the git binary can be executed.
func (s *Service) CheckInstalled(ctx context.Context) bool {
	return s.gateway.IsBackendInstalled(ctx)
}

func (s *Service) IsRepository(ctx context.Context, path string) (bool, error) {
	var isRepo bool
	err := s.run(ctx, OperationIsRepository, path, false, func(ctx context.Context, path string) error {
		isRepo = s.gateway.IsRepository(ctx, path)
		return nil
	})

	return isRepo, err
}

// Initialize creates the repository and enables sync for it. When remoteURL is
// set it becomes the default remote; a failure there leaves the initialized
// repository in place and returns a *PartialError.
func (s *Service) Initialize(ctx context.Context, path, remoteURL string) error {
	remoteURL = strings.TrimSpace(remoteURL)

	return s.run(ctx, OperationInit, path, true, func(ctx context.Context, path string) error {
		if err := s.gateway.Initialize(ctx, path); err != nil {
			return fmt.Errorf("failed to initialize repository: %w", err)
		}

		s.patchConfig(ctx, path, func(cfg *repositories.RepositoryConfig) {
			cfg.Enabled = true
			cfg.Initialized = true
			cfg.AutoStage = true
		})

		if remoteURL == "" {
			return nil
		}

		if err := s.gateway.SetRemote(ctx, path, s.config.DefaultRemote, remoteURL); err != nil {
			return &PartialError{
				Completed: "repository initialized",
				Failed:    "setting remote",
				Err:       err,
			}
		}

		s.patchConfig(ctx, path, func(cfg *repositories.RepositoryConfig) {
			cfg.Remote = &remoteURL
		})

		return nil
	})
}

func (s *Service) FetchStatus(ctx context.Context, path string) (StatusSnapshot, error) {
	var snapshot StatusSnapshot

	err := s.run(ctx, OperationStatus, path, false, func(ctx context.Context, path string) error {
		if !s.gateway.IsRepository(ctx, path) {
			return fmt.Errorf("%w: %s", ErrNotARepository, path)
		}

		raw, err := s.gateway.RawStatus(ctx, path)
		if err != nil {
			return fmt.Errorf("failed to get status: %w", err)
		}

		snapshot = Reconcile(raw)

		url, found, remoteErr := s.gateway.GetRemote(ctx, path, s.config.DefaultRemote)
		switch {
		case remoteErr != nil:
			s.logger.Debug("failed to resolve remote for status",
				zap.String("path", path),
				zap.Error(remoteErr))
		case found:
			snapshot.Remote = &url
		}

		return nil
	})

	return snapshot, err
}

func (s *Service) StageAll(ctx context.Context, path string) error {
	return s.run(ctx, OperationStageAll, path, true, func(ctx context.Context, path string) error {
		if err := s.gateway.StageAll(ctx, path); err != nil {
			return fmt.Errorf("failed to stage changes: %w", err)
		}
		return nil
	})
}

func (s *Service) StageFile(ctx context.Context, path, file string) error {
	return s.run(ctx, OperationStageFile, path, true, func(ctx context.Context, path string) error {
		if strings.TrimSpace(file) == "" {
			return fmt.Errorf("%w: file is required", ErrInvalidInput)
		}
		if err := s.gateway.StageFile(ctx, path, file); err != nil {
			return fmt.Errorf("failed to stage %s: %w", file, err)
		}
		return nil
	})
}

func (s *Service) UnstageFile(ctx context.Context, path, file string) error {
	return s.run(ctx, OperationUnstageFile, path, true, func(ctx context.Context, path string) error {
		if strings.TrimSpace(file) == "" {
			return fmt.Errorf("%w: file is required", ErrInvalidInput)
		}
		if err := s.gateway.UnstageFile(ctx, path, file); err != nil {
			return fmt.Errorf("failed to unstage %s: %w", file, err)
		}
		return nil
	})
}

// Commit records the staged changes after the secret scan passes. Warnings
// are returned as a *SecretsError and nothing is committed.
func (s *Service) Commit(ctx context.Context, path, message string) (git.CommitResult, error) {
	var res git.CommitResult

	err := s.run(ctx, OperationCommit, path, true, func(ctx context.Context, path string) error {
		if err := validateMessage(message); err != nil {
			return err
		}

		var err error
		res, err = s.commit(ctx, path, message)
		return err
	})

	return res, err
}

func (s *Service) Push(ctx context.Context, path, remote, branch string) (git.PushResult, error) {
	var res git.PushResult

	err := s.run(ctx, OperationPush, path, true, func(ctx context.Context, path string) error {
		var err error
		res, err = s.push(ctx, path, remote, branch)
		return err
	})

	return res, err
}

func (s *Service) Pull(ctx context.Context, path, remote, branch string) (git.PullResult, error) {
	var res git.PullResult

	err := s.run(ctx, OperationPull, path, true, func(ctx context.Context, path string) error {
		remote, branch := s.target(remote, branch)

		netCtx, cancel := context.WithTimeout(ctx, s.config.NetworkTimeout)
		defer cancel()

		var err error
		if res, err = s.gateway.Pull(netCtx, path, remote, branch); err != nil {
			return fmt.Errorf("failed to pull: %w", err)
		}

		s.stampSync(ctx, path)
		return nil
	})

	return res, err
}

// CommitAndPush commits the staged changes and pushes the branch. When nothing
// is staged but earlier commits are still unpushed, the commit step is skipped
// so a retry after a failed push only pushes. A push failure after a new
// commit is a *PartialError carrying that commit.
func (s *Service) CommitAndPush(ctx context.Context, path, message, remote, branch string) (CommitAndPushResult, error) {
	var res CommitAndPushResult

	err := s.run(ctx, OperationCommitAndPush, path, true, func(ctx context.Context, path string) error {
		if err := validateMessage(message); err != nil {
			return err
		}

		if s.onlyUnpushed(ctx, path, remote, branch) {
			res.CommitSkipped = true
		} else {
			commit, err := s.commit(ctx, path, message)
			if err != nil {
				return err
			}
			res.Commit = &commit
		}

		pushed, err := s.push(ctx, path, remote, branch)
		if err != nil {
			if res.Commit == nil {
				return err
			}
			return &PartialError{
				Completed: fmt.Sprintf("commit %s succeeded", shortHash(res.Commit.Hash)),
				Failed:    "push",
				Err:       err,
				Commit:    res.Commit,
			}
		}

		res.Push = pushed
		return nil
	})

	return res, err
}

// SetRemote adds or updates a remote. The default remote is remembered in the
// repository config.
func (s *Service) SetRemote(ctx context.Context, path, name, url string) error {
	name = strings.TrimSpace(name)
	if name == "" {
		name = s.config.DefaultRemote
	}
	url = strings.TrimSpace(url)

	return s.run(ctx, OperationSetRemote, path, true, func(ctx context.Context, path string) error {
		if url == "" {
			return fmt.Errorf("%w: remote url is required", ErrInvalidInput)
		}

		if err := s.gateway.SetRemote(ctx, path, name, url); err != nil {
			return fmt.Errorf("failed to set remote %s: %w", name, err)
		}

		if name == s.config.DefaultRemote {
			s.patchConfig(ctx, path, func(cfg *repositories.RepositoryConfig) {
				cfg.Remote = &url
			})
		}

		return nil
	})
}

func (s *Service) GetRemote(ctx context.Context, path, name string) (string, bool, error) {
	var (
		url   string
		found bool
	)

	if strings.TrimSpace(name) == "" {
		name = s.config.DefaultRemote
	}

	err := s.run(ctx, OperationGetRemote, path, false, func(ctx context.Context, path string) error {
		var err error
		if url, found, err = s.gateway.GetRemote(ctx, path, name); err != nil {
			return fmt.Errorf("failed to get remote %s: %w", name, err)
		}
		return nil
	})

	return url, found, err
}

// History lists the most recent commits, newest first. A non-positive limit
// means git.DefaultHistoryLimit.
func (s *Service) History(ctx context.Context, path string, limit int) ([]git.LogEntry, error) {
	if limit <= 0 {
		limit = git.DefaultHistoryLimit
	}

	var entries []git.LogEntry
	err := s.run(ctx, OperationHistory, path, false, func(ctx context.Context, path string) error {
		var err error
		if entries, err = s.gateway.History(ctx, path, limit); err != nil {
			return fmt.Errorf("failed to get history: %w", err)
		}
		return nil
	})

	return entries, err
}

// Config returns the stored settings of path. A repository that was never
// initialized through this service gets a transient default record.
func (s *Service) Config(ctx context.Context, path string) (*repositories.RepositoryConfig, error) {
	var cfg *repositories.RepositoryConfig

	err := s.run(ctx, OperationConfig, path, false, func(ctx context.Context, path string) error {
		stored, err := s.store.Get(ctx, path)
		if err == nil {
			cfg = stored
			return nil
		}
		if !errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("failed to get repository config: %w", err)
		}

		if !s.gateway.IsRepository(ctx, path) {
			return fmt.Errorf("%w: %s", ErrNotARepository, path)
		}

		cfg = &repositories.RepositoryConfig{Path: path, Initialized: true}
		return nil
	})

	return cfg, err
}

func (s *Service) Configure(ctx context.Context, path string, update ConfigUpdate) (*repositories.RepositoryConfig, error) {
	var cfg *repositories.RepositoryConfig

	err := s.run(ctx, OperationConfigure, path, true, func(ctx context.Context, path string) error {
		if !s.gateway.IsRepository(ctx, path) {
			return fmt.Errorf("%w: %s", ErrNotARepository, path)
		}

		var err error
		cfg, err = s.store.Patch(ctx, path, func(cfg *repositories.RepositoryConfig) {
			cfg.Initialized = true
			if update.Enabled != nil {
				cfg.Enabled = *update.Enabled
			}
			if update.AutoStage != nil {
				cfg.AutoStage = *update.AutoStage
			}
		})
		if err != nil {
			return fmt.Errorf("failed to update repository config: %w", err)
		}

		return nil
	})

	return cfg, err
}

// run validates path, holds its lock while fn executes, and records the
// outcome. Mutating operations also publish a completion event.
func (s *Service) run(
	ctx context.Context,
	operation, path string,
	exclusive bool,
	fn func(ctx context.Context, path string) error,
) error {
	started := time.Now()

	path, err := normalizePath(path)
	if err == nil {
		err = s.locked(ctx, path, exclusive, fn)
	}

	s.metrics.observe(operation, started, err)

	if err != nil {
		s.logger.Warn("operation failed",
			zap.String("operation", operation),
			zap.String("path", path),
			zap.String("kind", string(KindOf(err))),
			zap.Error(err))
	}

	if exclusive {
		s.publish(operation, path, err)
	}

	return err
}

func (s *Service) locked(
	ctx context.Context,
	path string,
	exclusive bool,
	fn func(ctx context.Context, path string) error,
) error {
	release, err := s.locks.acquire(ctx, path, exclusive)
	if err != nil {
		return err
	}
	defer release()

	return fn(ctx, path)
}

func (s *Service) commit(ctx context.Context, path, message string) (git.CommitResult, error) {
	warnings, err := s.scanner.Scan(ctx, path)
	if err != nil {
		return git.CommitResult{}, fmt.Errorf("failed to scan staged files: %w", err)
	}
	if len(warnings) > 0 {
		return git.CommitResult{}, &SecretsError{Warnings: warnings}
	}

	res, err := s.gateway.CommitRaw(ctx, path, message)
	if err != nil {
		return git.CommitResult{}, fmt.Errorf("failed to commit: %w", err)
	}

	return res, nil
}

func (s *Service) push(ctx context.Context, path, remote, branch string) (git.PushResult, error) {
	remote, branch = s.target(remote, branch)

	netCtx, cancel := context.WithTimeout(ctx, s.config.NetworkTimeout)
	defer cancel()

	res, err := s.gateway.Push(netCtx, path, remote, branch)
	if err != nil {
		return res, fmt.Errorf("failed to push: %w", err)
	}

	s.stampSync(ctx, path)
	return res, nil
}

// onlyUnpushed reports whether the index is empty while the branch is ahead of
// its remote. Probe failures fall back to a normal commit attempt.
func (s *Service) onlyUnpushed(ctx context.Context, path, remote, branch string) bool {
	staged, err := s.gateway.StagedFiles(ctx, path)
	if err != nil || len(staged) > 0 {
		return false
	}

	remote, branch = s.target(remote, branch)
	unpushed, err := s.gateway.UnpushedCount(ctx, path, remote, branch)
	if err != nil {
		s.logger.Debug("failed to count unpushed commits",
			zap.String("path", path),
			zap.Error(err))
		return false
	}

	return unpushed > 0
}

func (s *Service) target(remote, branch string) (string, string) {
	if remote = strings.TrimSpace(remote); remote == "" {
		remote = s.config.DefaultRemote
	}
	if branch = strings.TrimSpace(branch); branch == "" {
		branch = s.config.DefaultBranch
	}
	return remote, branch
}

func (s *Service) stampSync(ctx context.Context, path string) {
	now := time.Now()
	s.patchConfig(ctx, path, func(cfg *repositories.RepositoryConfig) {
		cfg.LastSync = &now
	})
}

// patchConfig records a side effect of a successful git call. Store failures
// are logged and never fail the operation.
func (s *Service) patchConfig(ctx context.Context, path string, updater func(*repositories.RepositoryConfig)) {
	if _, err := s.store.Patch(ctx, path, updater); err != nil {
		s.logger.Error("failed to update repository config",
			zap.String("path", path),
			zap.Error(err))
	}
}

func (s *Service) publish(operation, path string, err error) {
	event := events.Event{
		ID:      uuid.Must(uuid.NewV7()).String(),
		Type:    operation,
		Path:    path,
		Success: err == nil,
		At:      time.Now(),
	}
	if err != nil {
		event.Error = err.Error()
	}

	s.events.Publish(event)
}

func normalizePath(path string) (string, error) {
	path = strings.TrimSpace(path)
	if path == "" {
		return "", fmt.Errorf("%w: repository path is required", ErrInvalidInput)
	}
	if !filepath.IsAbs(path) {
		return path, fmt.Errorf("%w: repository path must be absolute: %s", ErrInvalidInput, path)
	}
	return filepath.Clean(path), nil
}

func validateMessage(message string) error {
	if strings.TrimSpace(message) == "" {
		return fmt.Errorf("%w: commit message is required", ErrInvalidInput)
	}
	return nil
}

func shortHash(hash string) string {
	if len(hash) > shortHashLength {
		return hash[:shortHashLength]
	}
	return hash
}
