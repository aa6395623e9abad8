package secrets

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"
	"go.uber.org/zap"
)

type Scanner struct {
	config Config
	staged StagedLister
	fs     afero.Fs

	logger *zap.Logger
}

func NewScanner(config Config, staged StagedLister, fs afero.Fs, logger *zap.Logger) *Scanner {
	if config.Extension == "" {
		config.Extension = DefaultExtension
	}

	return &Scanner{
		config: config,
		staged: staged,
		fs:     fs,

		logger: logger,
	}
}

// Scan inspects the files staged right now in repoPath. An empty result means
// the index is safe to commit. Unstaged files are never inspected.
func (s *Scanner) Scan(ctx context.Context, repoPath string) ([]Warning, error) {
	staged, err := s.staged.StagedFiles(ctx, repoPath)
	if err != nil {
		return nil, fmt.Errorf("failed to list staged files: %w", err)
	}

	warnings := []Warning{}
	for _, file := range staged {
		if !strings.HasSuffix(file, s.config.Extension) {
			continue
		}

		content, readErr := afero.ReadFile(s.fs, filepath.Join(repoPath, filepath.FromSlash(file)))
		if errors.Is(readErr, os.ErrNotExist) {
			// staged deletion
			continue
		}
		if readErr != nil {
			return nil, fmt.Errorf("failed to read %s: %w", file, readErr)
		}

		for _, p := range patterns {
			if p.re.Match(content) {
				warnings = append(warnings, Warning{File: file, Kind: p.kind})
			}
		}
	}

	if len(warnings) > 0 {
		s.logger.Warn("potential secrets in staged files",
			zap.String("path", repoPath),
			zap.Int("warnings", len(warnings)))
	}

	return warnings, nil
}

// FormatWarnings renders warnings as a user facing message.
func FormatWarnings(warnings []Warning) string {
	lines := make([]string, 0, len(warnings))
	for _, w := range warnings {
		lines = append(lines, fmt.Sprintf("%s: Potential %s detected", w.File, w.Kind.Label()))
	}

	return "Potential secrets detected in staged files:\n" +
		strings.Join(lines, "\n") +
		"\n\nPlease use environment variables for sensitive data."
}
