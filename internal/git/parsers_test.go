package git

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func porcelain(records ...string) string {
	return strings.Join(records, "\x00") + "\x00"
}

func TestParseStatus(t *testing.T) {
	out := porcelain(
		"# branch.oid 1d2c3b4a",
		"# branch.head main",
		"# branch.upstream origin/main",
		"# branch.ab +2 -1",
		"1 M. N... 100644 100644 100644 aaaa bbbb staged.bru",
		"1 MM N... 100644 100644 100644 aaaa bbbb both.bru",
		"1 .M N... 100644 100644 100644 aaaa bbbb dirty file.bru",
		"1 A. N... 000000 100644 100644 0000 bbbb added.bru",
		"1 .D N... 100644 100644 000000 aaaa aaaa gone.bru",
		"2 R. N... 100644 100644 100644 aaaa aaaa R100 new.bru",
		"old.bru",
		"u UU N... 100644 100644 100644 100644 aaaa bbbb cccc conflict.bru",
		"? untracked.bru",
	)

	status := parseStatus(out)

	assert.Equal(t, "main", status.Branch)
	assert.Equal(t, 2, status.Ahead)
	assert.Equal(t, 1, status.Behind)
	assert.False(t, status.Clean)
	assert.Equal(t, []string{"staged.bru", "both.bru", "added.bru", "new.bru"}, status.Staged)
	assert.Equal(t, []string{"staged.bru", "both.bru", "dirty file.bru"}, status.Modified)
	assert.Equal(t, []string{"added.bru"}, status.Created)
	assert.Equal(t, []string{"gone.bru"}, status.Deleted)
	assert.Equal(t, []Rename{{From: "old.bru", To: "new.bru"}}, status.Renamed)
	assert.Equal(t, []string{"conflict.bru"}, status.Conflicted)
	assert.Equal(t, []string{"untracked.bru"}, status.NotAdded)
}

func TestParseStatus_Clean(t *testing.T) {
	status := parseStatus(porcelain("# branch.oid (initial)", "# branch.head main"))

	assert.True(t, status.Clean)
	assert.Equal(t, "main", status.Branch)
	assert.Empty(t, status.Staged)
	assert.NotNil(t, status.Staged)
}

func TestParseStatus_Detached(t *testing.T) {
	status := parseStatus(porcelain("# branch.head (detached)"))
	assert.Equal(t, "HEAD", status.Branch)
}

func TestParseCommitOutput(t *testing.T) {
	tests := []struct {
		name    string
		out     string
		branch  string
		summary ChangeSummary
	}{
		{
			name:    "root commit",
			out:     "[main (root-commit) 3f2a1b0] initial\n 2 files changed, 10 insertions(+)\n create mode 100644 a.bru\n",
			branch:  "main",
			summary: ChangeSummary{Changes: 2, Insertions: 10},
		},
		{
			name:    "regular commit",
			out:     "[feature/x 9e8d7c6] update\n 1 file changed, 1 insertion(+), 3 deletions(-)\n",
			branch:  "feature/x",
			summary: ChangeSummary{Changes: 1, Insertions: 1, Deletions: 3},
		},
		{
			name:    "deletions only",
			out:     "[main 9e8d7c6] drop\n 1 file changed, 4 deletions(-)\n",
			branch:  "main",
			summary: ChangeSummary{Changes: 1, Deletions: 4},
		},
		{
			name:    "detached",
			out:     "[detached HEAD 1a2b3c4] msg\n 1 file changed, 1 insertion(+)\n",
			branch:  "HEAD",
			summary: ChangeSummary{Changes: 1, Insertions: 1},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.branch, parseCommitBranch(tt.out))
			assert.Equal(t, tt.summary, parseChangeSummary(tt.out))
		})
	}
}

func TestParsePullOutput(t *testing.T) {
	out := "Updating 1a2b3c4..5d6e7f8\nFast-forward\n a.bru     | 2 +-\n dir/b.bru | 1 +\n img.png   | Bin 0 -> 12 bytes\n" +
		" 3 files changed, 2 insertions(+), 1 deletion(-)\n create mode 100644 dir/b.bru\n"

	assert.Equal(t, []string{"a.bru", "dir/b.bru", "img.png"}, parseDiffstatFiles(out))
	assert.Equal(t, ChangeSummary{Changes: 3, Insertions: 2, Deletions: 1}, parseChangeSummary(out))

	upToDate := "Already up to date.\n"
	assert.Empty(t, parseDiffstatFiles(upToDate))
	assert.Equal(t, ChangeSummary{}, parseChangeSummary(upToDate))
}

func TestParsePush(t *testing.T) {
	stdout := "To /tmp/remote.git\n*\trefs/heads/main:refs/heads/main\t[new branch]\n \trefs/heads/dev:refs/heads/dev\t1a2b..3c4d\nDone\n"
	stderr := "remote: \nremote: Create a pull request for 'main':\nremote:   https://example.com/pr/new\n"

	res := parsePush(stdout, stderr)

	require.Len(t, res.Pushed, 2)
	assert.Equal(t, PushedRef{
		Local:   "refs/heads/main",
		Remote:  "refs/heads/main",
		Flag:    "*",
		Summary: "[new branch]",
	}, res.Pushed[0])
	assert.Equal(t, " ", res.Pushed[1].Flag)
	assert.Equal(t, []string{"Create a pull request for 'main':", "https://example.com/pr/new"}, res.RemoteMessages)
}
