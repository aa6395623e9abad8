package gitsync

import (
	"slices"

	"github.com/gitsyncd/gitsyncd/internal/git"
	"github.com/samber/lo"
)

// Reconcile folds untracked paths into Modified and removes every staged path
// from it. Order of first appearance is kept.
func Reconcile(raw git.RawStatus) StatusSnapshot {
	staged := lo.Uniq(raw.Staged)

	changed := make([]string, 0, len(raw.Modified)+len(raw.NotAdded))
	changed = append(changed, raw.Modified...)
	changed = append(changed, raw.NotAdded...)

	return StatusSnapshot{
		Branch:     raw.Branch,
		Staged:     staged,
		Modified:   lo.Without(lo.Uniq(changed), staged...),
		Created:    clone(raw.Created),
		Deleted:    clone(raw.Deleted),
		Renamed:    clone(raw.Renamed),
		Conflicted: clone(raw.Conflicted),
		Ahead:      raw.Ahead,
		Behind:     raw.Behind,
		Clean:      raw.Clean,
		Remote:     nil,
	}
}

func clone[T any](s []T) []T {
	if s == nil {
		return []T{}
	}
	return slices.Clone(s)
}
