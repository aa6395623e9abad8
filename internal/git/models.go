package git

import (
	"time"
)

// Rename is a staged rename or copy of a tracked file.
type Rename struct {
	From string
	To   string
}

// RawStatus is the working tree status as reported by git, before any
// reconciliation between categories. A path may appear in several lists.
type RawStatus struct {
	Branch     string   // Current branch, "HEAD" when detached
	Staged     []string // Paths with index changes
	Modified   []string // Paths modified in the index or the working tree
	NotAdded   []string // Untracked paths
	Created    []string // Paths added to the index
	Deleted    []string // Paths deleted in the index or the working tree
	Renamed    []Rename // Renames and copies recorded in the index
	Conflicted []string // Unmerged paths
	Ahead      int      // Commits ahead of upstream
	Behind     int      // Commits behind upstream
	Clean      bool     // No tracked or untracked changes
}

// ChangeSummary is the diffstat line of a commit or merge.
type ChangeSummary struct {
	Changes    int
	Insertions int
	Deletions  int
}

// CommitResult describes a created commit.
type CommitResult struct {
	Hash    string
	Branch  string
	Summary ChangeSummary
}

// PushedRef is one ref update reported by git push --porcelain.
type PushedRef struct {
	Local   string
	Remote  string
	Flag    string // "*" new, " " fast-forward, "+" forced, "=" up to date, "!" rejected, "-" deleted
	Summary string
}

// PushResult describes a completed push.
type PushResult struct {
	Pushed         []PushedRef
	RemoteMessages []string
}

// PullResult describes a completed pull.
type PullResult struct {
	Summary ChangeSummary
	Files   []string
}

// LogEntry is one commit of the repository history.
type LogEntry struct {
	Hash    string
	Message string
	Author  string
	Email   string
	Date    time.Time
}
