package git

import (
	"fmt"
	"path/filepath"

	"github.com/spf13/afero"
)

const ignoreFileName = ".gitignore"

const defaultIgnoreFile = `# Dependencies
node_modules/

# System files
.DS_Store
*.log

# Environment files
.env
.env.local
.env.*.local

# Collection environments (contain secrets)
environments/

# Secret request files
*.secrets.bru

# IMPORTANT: Review all .bru files before committing
# Make sure they don't contain:
# - Real API keys (use environment variables instead)
# - Passwords or tokens
# - Sensitive data in request bodies
#
# Keep sensitive values in environment variables`

// writeIgnoreFile creates the default ignore file unless one already exists.
func writeIgnoreFile(fs afero.Fs, repoPath string) (bool, error) {
	path := filepath.Join(repoPath, ignoreFileName)

	exists, err := afero.Exists(fs, path)
	if err != nil {
		return false, fmt.Errorf("failed to check %s: %w", ignoreFileName, err)
	}
	if exists {
		return false, nil
	}

	if writeErr := afero.WriteFile(fs, path, []byte(defaultIgnoreFile+"\n"), 0o644); writeErr != nil {
		return false, fmt.Errorf("failed to write %s: %w", ignoreFileName, writeErr)
	}

	return true, nil
}
