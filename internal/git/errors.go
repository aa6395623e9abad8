package git

import "errors"

var (
	ErrRepositoryNotFound = errors.New("not a git repository")
	ErrCommandFailed      = errors.New("git command failed")
	ErrNetwork            = errors.New("network error")
	ErrTimeout            = errors.New("operation timeout")
	ErrOperationCancelled = errors.New("operation cancelled")
	ErrInvalidPath        = errors.New("invalid path")
)
