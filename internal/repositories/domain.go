package repositories

import "time"

// RepositoryConfig holds the persisted sync settings of one working copy.
type RepositoryConfig struct {
	Path        string
	Enabled     bool
	Initialized bool
	AutoStage   bool
	Remote      *string
	LastSync    *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}
