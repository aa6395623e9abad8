package git

import (
	"regexp"
	"strconv"
	"strings"

	"github.com/samber/lo"
)

const (
	headerBranchHead   = "# branch.head "
	headerBranchAB     = "# branch.ab "
	detachedBranchHead = "(detached)"
	detachedBranchName = "HEAD"
)

// parseStatus parses `git status --porcelain=v2 --branch -z` output.
func parseStatus(out string) RawStatus {
	status := RawStatus{
		Staged:     []string{},
		Modified:   []string{},
		NotAdded:   []string{},
		Created:    []string{},
		Deleted:    []string{},
		Renamed:    []Rename{},
		Conflicted: []string{},
	}

	entries := 0
	records := strings.Split(out, "\x00")
	for i := 0; i < len(records); i++ {
		record := records[i]
		if record == "" {
			continue
		}

		switch record[0] {
		case '#':
			parseStatusHeader(&status, record)
		case '1':
			// 1 <XY> <sub> <mH> <mI> <mW> <hH> <hI> <path>
			fields := strings.SplitN(record, " ", 9)
			if len(fields) < 9 {
				continue
			}
			status.addEntry(fields[1], fields[8], "")
			entries++
		case '2':
			// 2 <XY> <sub> <mH> <mI> <mW> <hH> <hI> <X><score> <path>\0<origPath>
			fields := strings.SplitN(record, " ", 10)
			if len(fields) < 10 {
				continue
			}
			orig := ""
			if i+1 < len(records) {
				i++
				orig = records[i]
			}
			status.addEntry(fields[1], fields[9], orig)
			entries++
		case 'u':
			// u <XY> <sub> <m1> <m2> <m3> <mW> <h1> <h2> <h3> <path>
			fields := strings.SplitN(record, " ", 11)
			if len(fields) < 11 {
				continue
			}
			status.Conflicted = append(status.Conflicted, fields[10])
			entries++
		case '?':
			if len(record) > 2 {
				status.NotAdded = append(status.NotAdded, record[2:])
				entries++
			}
		}
	}

	status.Clean = entries == 0

	return status
}

func parseStatusHeader(status *RawStatus, record string) {
	switch {
	case strings.HasPrefix(record, headerBranchHead):
		head := strings.TrimPrefix(record, headerBranchHead)
		if head == detachedBranchHead {
			head = detachedBranchName
		}
		status.Branch = head
	case strings.HasPrefix(record, headerBranchAB):
		fields := strings.Fields(strings.TrimPrefix(record, headerBranchAB))
		if len(fields) != 2 {
			return
		}
		status.Ahead, _ = strconv.Atoi(strings.TrimPrefix(fields[0], "+"))
		status.Behind, _ = strconv.Atoi(strings.TrimPrefix(fields[1], "-"))
	}
}

func (s *RawStatus) addEntry(xy, path, orig string) {
	if len(xy) != 2 {
		return
	}
	index, worktree := xy[0], xy[1]

	if index != '.' {
		s.Staged = append(s.Staged, path)
	}
	if index == 'M' || worktree == 'M' {
		s.Modified = append(s.Modified, path)
	}
	if index == 'A' {
		s.Created = append(s.Created, path)
	}
	if index == 'D' || worktree == 'D' {
		s.Deleted = append(s.Deleted, path)
	}
	if index == 'R' || index == 'C' {
		s.Renamed = append(s.Renamed, Rename{From: orig, To: path})
	}
}

var (
	commitHeaderPattern = regexp.MustCompile(`^\[(.+?)(?: \(root-commit\))? [0-9a-f]+\]`)
	summaryPattern      = regexp.MustCompile(
		`(\d+) files? changed(?:, (\d+) insertions?\(\+\))?(?:, (\d+) deletions?\(-\))?`,
	)
	diffstatPattern = regexp.MustCompile(`^\s*(.+?)\s+\|\s+(?:\d+|Bin)`)
)

// parseCommitBranch extracts the branch from the first line of git commit output.
func parseCommitBranch(out string) string {
	match := commitHeaderPattern.FindStringSubmatch(out)
	if match == nil {
		return ""
	}
	if strings.HasPrefix(match[1], "detached HEAD") {
		return detachedBranchName
	}
	return match[1]
}

// parseChangeSummary extracts the "N files changed" line of commit or pull output.
func parseChangeSummary(out string) ChangeSummary {
	match := summaryPattern.FindStringSubmatch(out)
	if match == nil {
		return ChangeSummary{}
	}

	atoi := func(s string) int {
		n, _ := strconv.Atoi(s)
		return n
	}

	return ChangeSummary{
		Changes:    atoi(match[1]),
		Insertions: atoi(match[2]),
		Deletions:  atoi(match[3]),
	}
}

// parseDiffstatFiles lists the files of a diffstat block.
func parseDiffstatFiles(out string) []string {
	files := []string{}
	for _, line := range strings.Split(out, "\n") {
		if match := diffstatPattern.FindStringSubmatch(line); match != nil {
			files = append(files, match[1])
		}
	}
	return lo.Uniq(files)
}

// parsePush parses `git push --porcelain` output.
func parsePush(stdout, stderr string) PushResult {
	res := PushResult{
		Pushed:         []PushedRef{},
		RemoteMessages: []string{},
	}

	for _, line := range strings.Split(stdout, "\n") {
		fields := strings.Split(line, "\t")
		if len(fields) < 3 || len(fields[0]) != 1 {
			continue
		}

		local, remote, _ := strings.Cut(fields[1], ":")
		res.Pushed = append(res.Pushed, PushedRef{
			Local:   local,
			Remote:  remote,
			Flag:    fields[0],
			Summary: fields[2],
		})
	}

	for _, line := range strings.Split(stderr, "\n") {
		msg, ok := strings.CutPrefix(line, "remote:")
		if !ok {
			continue
		}
		if msg = strings.TrimSpace(msg); msg != "" {
			res.RemoteMessages = append(res.RemoteMessages, msg)
		}
	}

	return res
}
