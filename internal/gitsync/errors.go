package gitsync

import (
	"errors"
	"fmt"

	"github.com/gitsyncd/gitsyncd/internal/git"
	"github.com/gitsyncd/gitsyncd/internal/secrets"
)

var (
	ErrNotARepository  = errors.New("not a git repository")
	ErrInvalidInput    = errors.New("invalid input")
	ErrSecretsDetected = errors.New("secrets detected")
	ErrPartialSuccess  = errors.New("operation partially succeeded")
	ErrLockTimeout     = errors.New("timed out waiting for repository lock")
)

// SecretsError blocks a commit. Nothing was committed.
type SecretsError struct {
	Warnings []secrets.Warning
}

func (e *SecretsError) Error() string {
	return secrets.FormatWarnings(e.Warnings)
}

func (e *SecretsError) Unwrap() error {
	return ErrSecretsDetected
}

// PartialError reports a workflow whose first durable step succeeded while a
// later one failed. The completed step is not rolled back.
type PartialError struct {
	Completed string
	Failed    string
	Err       error

	// Set when the completed step created a commit
	Commit *git.CommitResult
}

func (e *PartialError) Error() string {
	return fmt.Sprintf("%s; %s failed: %v", e.Completed, e.Failed, e.Err)
}

func (e *PartialError) Unwrap() []error {
	return []error{ErrPartialSuccess, e.Err}
}

type Kind string

const (
	KindNotARepository  Kind = "not_a_repository"
	KindInvalidInput    Kind = "invalid_input"
	KindSecretsDetected Kind = "secrets_detected"
	KindCommandFailed   Kind = "command_failed"
	KindNetwork         Kind = "network"
	KindPartialSuccess  Kind = "partial_success"
	KindLockTimeout     Kind = "lock_timeout"
	KindCancelled       Kind = "cancelled"
	KindInternal        Kind = "internal"
)

// KindOf classifies err. A partial failure is reported as such even though it
// also wraps the cause of the failed step.
func KindOf(err error) Kind {
	switch {
	case err == nil:
		return ""
	case errors.Is(err, ErrPartialSuccess):
		return KindPartialSuccess
	case errors.Is(err, ErrSecretsDetected):
		return KindSecretsDetected
	case errors.Is(err, ErrLockTimeout):
		return KindLockTimeout
	case errors.Is(err, ErrInvalidInput), errors.Is(err, git.ErrInvalidPath):
		return KindInvalidInput
	case errors.Is(err, ErrNotARepository), errors.Is(err, git.ErrRepositoryNotFound):
		return KindNotARepository
	case errors.Is(err, git.ErrNetwork):
		return KindNetwork
	case errors.Is(err, git.ErrOperationCancelled):
		return KindCancelled
	case errors.Is(err, git.ErrCommandFailed), errors.Is(err, git.ErrTimeout):
		return KindCommandFailed
	default:
		return KindInternal
	}
}
