package gitsync_test

import (
	"fmt"
	"math/rand/v2"
	"slices"
	"testing"

	"github.com/gitsyncd/gitsyncd/internal/git"
	"github.com/gitsyncd/gitsyncd/internal/gitsync"
	"github.com/stretchr/testify/assert"
)

func TestReconcile(t *testing.T) {
	raw := git.RawStatus{
		Branch:     "main",
		Staged:     []string{"b.bru"},
		Modified:   []string{"a.bru", "b.bru"},
		NotAdded:   []string{"c.bru"},
		Created:    []string{"b.bru"},
		Deleted:    nil,
		Renamed:    []git.Rename{{From: "old.bru", To: "new.bru"}},
		Conflicted: nil,
		Ahead:      2,
		Behind:     1,
	}

	snapshot := gitsync.Reconcile(raw)

	assert.Equal(t, "main", snapshot.Branch)
	assert.Equal(t, []string{"b.bru"}, snapshot.Staged)
	assert.Equal(t, []string{"a.bru", "c.bru"}, snapshot.Modified)
	assert.Equal(t, []string{"b.bru"}, snapshot.Created)
	assert.Equal(t, []git.Rename{{From: "old.bru", To: "new.bru"}}, snapshot.Renamed)
	assert.NotNil(t, snapshot.Deleted)
	assert.NotNil(t, snapshot.Conflicted)
	assert.Equal(t, 2, snapshot.Ahead)
	assert.Equal(t, 1, snapshot.Behind)
	assert.False(t, snapshot.Clean)
	assert.Nil(t, snapshot.Remote)
	assert.Equal(t, 3, snapshot.PendingChanges())
}

func TestReconcile_Clean(t *testing.T) {
	snapshot := gitsync.Reconcile(git.RawStatus{Branch: "main", Clean: true})

	assert.True(t, snapshot.Clean)
	assert.Empty(t, snapshot.Staged)
	assert.Empty(t, snapshot.Modified)
	assert.NotNil(t, snapshot.Staged)
	assert.NotNil(t, snapshot.Modified)
	assert.Zero(t, snapshot.PendingChanges())
}

func TestReconcile_StagedAndModifiedAreDisjoint(t *testing.T) {
	//nolint:gosec // deterministic test data
	rng := rand.New(rand.NewPCG(1, 2))

	names := make([]string, 12)
	for i := range names {
		names[i] = fmt.Sprintf("file%d.bru", i)
	}
	pick := func() []string {
		out := []string{}
		for _, name := range names {
			if rng.IntN(3) == 0 {
				out = append(out, name)
			}
		}
		return out
	}

	for range 200 {
		raw := git.RawStatus{Staged: pick(), Modified: pick(), NotAdded: pick()}

		snapshot := gitsync.Reconcile(raw)

		for _, path := range snapshot.Modified {
			assert.NotContains(t, snapshot.Staged, path)
		}
		for _, path := range slices.Concat(raw.Modified, raw.NotAdded) {
			if !slices.Contains(raw.Staged, path) {
				assert.Contains(t, snapshot.Modified, path)
			}
		}
		assert.Len(t, snapshot.Modified, len(uniq(snapshot.Modified)))
	}
}

func uniq(s []string) []string {
	seen := map[string]struct{}{}
	out := []string{}
	for _, v := range s {
		if _, ok := seen[v]; !ok {
			seen[v] = struct{}{}
			out = append(out, v)
		}
	}
	return out
}
