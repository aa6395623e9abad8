package git

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"strings"
	"time"

	"go.uber.org/zap"
)

// waitDelay bounds how long a killed git process may keep its output pipes open.
const waitDelay = 2 * time.Second

type result struct {
	Stdout   string
	Stderr   string
	ExitCode int
}

// message returns the most useful diagnostic text of a failed command.
func (r result) message() string {
	if msg := strings.TrimSpace(r.Stderr); msg != "" {
		return msg
	}
	if msg := strings.TrimSpace(r.Stdout); msg != "" {
		return msg
	}
	return fmt.Sprintf("exit code %d", r.ExitCode)
}

type runner struct {
	binary string
	env    []string

	logger *zap.Logger
}

func newRunner(config Config, logger *zap.Logger) *runner {
	env := []string{
		"GIT_TERMINAL_PROMPT=0",
		"LC_ALL=C",
	}
	if config.AuthorName != "" {
		env = append(env, "GIT_AUTHOR_NAME="+config.AuthorName, "GIT_COMMITTER_NAME="+config.AuthorName)
	}
	if config.AuthorEmail != "" {
		env = append(env, "GIT_AUTHOR_EMAIL="+config.AuthorEmail, "GIT_COMMITTER_EMAIL="+config.AuthorEmail)
	}

	return &runner{
		binary: config.binary(),
		env:    env,
		logger: logger,
	}
}

// run executes git in dir. The process is killed when ctx is done, so a
// returned error never leaves a command running in the background.
func (r *runner) run(ctx context.Context, dir string, args ...string) (result, error) {
	cmd := exec.CommandContext(ctx, r.binary, args...) // #nosec G204
	cmd.Dir = dir
	cmd.Env = append(os.Environ(), r.env...)
	cmd.WaitDelay = waitDelay

	var stdout bytes.Buffer
	var stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr

	started := time.Now()
	err := cmd.Run()
	res := result{
		Stdout:   stdout.String(),
		Stderr:   stderr.String(),
		ExitCode: exitCode(err),
	}

	r.logger.Debug("git command finished",
		zap.String("dir", dir),
		zap.Strings("args", args),
		zap.Int("exit_code", res.ExitCode),
		zap.Duration("elapsed", time.Since(started)))

	if err == nil {
		return res, nil
	}

	if ctxErr := ctx.Err(); ctxErr != nil {
		if errors.Is(ctxErr, context.DeadlineExceeded) {
			return res, fmt.Errorf("%w: git %s", ErrTimeout, args[0])
		}
		return res, fmt.Errorf("%w: git %s", ErrOperationCancelled, args[0])
	}

	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return res, fmt.Errorf("%w: %w", ErrCommandFailed, err)
	}

	if strings.Contains(strings.ToLower(res.Stderr), "not a git repository") {
		return res, fmt.Errorf("%w: %s", ErrRepositoryNotFound, dir)
	}

	return res, fmt.Errorf("%w: %s", ErrCommandFailed, res.message())
}

func exitCode(err error) int {
	if err == nil {
		return 0
	}
	var exitErr *exec.ExitError
	if !errors.As(err, &exitErr) {
		return -1
	}
	return exitErr.ExitCode()
}

var networkFailureMarkers = []string{
	"could not resolve host",
	"could not read from remote repository",
	"unable to access",
	"connection refused",
	"connection timed out",
	"operation timed out",
	"network is unreachable",
	"failed to connect",
	"the remote end hung up unexpectedly",
	"ssh: connect to host",
}

// asNetworkError reclassifies push/pull failures caused by the transport.
func asNetworkError(res result, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, ErrTimeout) {
		return fmt.Errorf("%w: %w", ErrNetwork, err)
	}
	if !errors.Is(err, ErrCommandFailed) {
		return err
	}

	stderr := strings.ToLower(res.Stderr)
	for _, marker := range networkFailureMarkers {
		if strings.Contains(stderr, marker) {
			return fmt.Errorf("%w: %s", ErrNetwork, res.message())
		}
	}

	return err
}
