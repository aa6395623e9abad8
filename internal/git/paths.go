package git

import (
	"fmt"
	"path/filepath"
	"strings"
)

// relativePath converts file to a slash-separated path relative to repoPath.
// git resolves pathspecs against the working directory, so commands always get
// repository-relative paths.
func relativePath(repoPath, file string) (string, error) {
	rel := file
	if filepath.IsAbs(file) {
		var err error
		rel, err = filepath.Rel(filepath.Clean(repoPath), file)
		if err != nil {
			return "", fmt.Errorf("%w: %w", ErrInvalidPath, err)
		}
	}

	rel = filepath.Clean(rel)
	if rel == "." || rel == ".." || strings.HasPrefix(rel, ".."+string(filepath.Separator)) {
		return "", fmt.Errorf("%w: %q is outside of %s", ErrInvalidPath, file, repoPath)
	}

	return filepath.ToSlash(rel), nil
}
