package repositories

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/dgraph-io/badger/v4"
	"github.com/gitsyncd/gitsyncd/pkg/badgerfx"
)

type Repository struct {
	db      *badger.DB
	configs *badgerfx.Repository[*repositoryConfigModel]
}

func NewRepository(db *badger.DB) *Repository {
	return &Repository{
		db: db,
		configs: badgerfx.NewRepository(func() *repositoryConfigModel {
			return new(repositoryConfigModel)
		}),
	}
}

// Get returns the config stored for path.
func (r *Repository) Get(_ context.Context, path string) (*RepositoryConfig, error) {
	var model *repositoryConfigModel

	err := r.db.View(func(txn *badger.Txn) error {
		found, err := r.read(txn, path)
		if err == nil {
			model = found
		}

		return err
	})

	if err != nil {
		return nil, fmt.Errorf("failed to get repository config: %w", err)
	}

	return newRepositoryConfig(model), nil
}

// Patch applies updater to the config of path, creating the record when it
// does not exist yet. Path and creation time cannot be changed by updater.
func (r *Repository) Patch(_ context.Context, path string, updater func(*RepositoryConfig)) (*RepositoryConfig, error) {
	var patched *RepositoryConfig

	err := r.db.Update(func(txn *badger.Txn) error {
		now := time.Now()

		cfg := &RepositoryConfig{Path: path, CreatedAt: now}
		old, err := r.read(txn, path)
		switch {
		case err == nil:
			cfg = newRepositoryConfig(old)
		case !errors.Is(err, ErrNotFound):
			return err
		}

		createdAt := cfg.CreatedAt
		updater(cfg)

		cfg.Path = path
		cfg.CreatedAt = createdAt
		cfg.UpdatedAt = now

		if wrErr := r.configs.Write(txn, newRepositoryConfigModel(cfg)); wrErr != nil {
			return fmt.Errorf("failed to store repository config: %w", wrErr)
		}

		patched = cfg
		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to patch repository config: %w", err)
	}

	return patched, nil
}

// Delete removes the config of path.
func (r *Repository) Delete(_ context.Context, path string) error {
	err := r.db.Update(func(txn *badger.Txn) error {
		delErr := r.configs.Delete(txn, pathKey(path))
		if errors.Is(delErr, badgerfx.ErrNotFound) {
			return fmt.Errorf("%w: %s", ErrNotFound, path)
		}

		return delErr
	})

	if err != nil {
		return fmt.Errorf("failed to delete repository config: %w", err)
	}

	return nil
}

// List returns every stored config ordered by path.
func (r *Repository) List(_ context.Context) ([]RepositoryConfig, error) {
	var configs []RepositoryConfig

	err := r.db.View(func(txn *badger.Txn) error {
		models, err := r.configs.List(txn, prefixByPath, badger.DefaultIteratorOptions)
		if err != nil {
			return err
		}

		configs = make([]RepositoryConfig, 0, len(models))
		for _, m := range models {
			configs = append(configs, *newRepositoryConfig(m))
		}

		return nil
	})

	if err != nil {
		return nil, fmt.Errorf("failed to list repository configs: %w", err)
	}

	return configs, nil
}

func (r *Repository) read(txn *badger.Txn, path string) (*repositoryConfigModel, error) {
	model, err := r.configs.Read(txn, pathKey(path))
	if errors.Is(err, badgerfx.ErrNotFound) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, path)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read repository config: %w", err)
	}

	return model, nil
}
