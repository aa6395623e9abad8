package repositories

import (
	"encoding/json"
	"time"

	"github.com/gitsyncd/gitsyncd/pkg/badgerfx"
)

const (
	prefix       = "repository:"
	prefixByPath = prefix + "path:"
)

type repositoryConfigModel struct {
	Path        string     `json:"path"`
	Enabled     bool       `json:"enabled"`
	Initialized bool       `json:"initialized"`
	AutoStage   bool       `json:"auto_stage"`
	Remote      *string    `json:"remote,omitempty"`
	LastSync    *time.Time `json:"last_sync,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

func newRepositoryConfigModel(cfg *RepositoryConfig) *repositoryConfigModel {
	return &repositoryConfigModel{
		Path:        cfg.Path,
		Enabled:     cfg.Enabled,
		Initialized: cfg.Initialized,
		AutoStage:   cfg.AutoStage,
		Remote:      cfg.Remote,
		LastSync:    cfg.LastSync,
		CreatedAt:   cfg.CreatedAt,
		UpdatedAt:   cfg.UpdatedAt,
	}
}

func newRepositoryConfig(model *repositoryConfigModel) *RepositoryConfig {
	if model == nil {
		return nil
	}

	return &RepositoryConfig{
		Path:        model.Path,
		Enabled:     model.Enabled,
		Initialized: model.Initialized,
		AutoStage:   model.AutoStage,
		Remote:      model.Remote,
		LastSync:    model.LastSync,
		CreatedAt:   model.CreatedAt,
		UpdatedAt:   model.UpdatedAt,
	}
}

func pathKey(path string) string {
	return prefixByPath + path
}

// StorageKey implements badgerfx.Entity.
func (m *repositoryConfigModel) StorageKey() string {
	return pathKey(m.Path)
}

// MarshalStorage implements badgerfx.Entity.
func (m *repositoryConfigModel) MarshalStorage() ([]byte, error) {
	return json.Marshal(m)
}

// UnmarshalStorage implements badgerfx.Entity.
func (m *repositoryConfigModel) UnmarshalStorage(data []byte) error {
	return json.Unmarshal(data, m)
}

var _ badgerfx.Entity = (*repositoryConfigModel)(nil)
