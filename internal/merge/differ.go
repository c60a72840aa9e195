package merge

import (
	"fmt"
	"strings"
)

// EditOp is a single line operation of an edit script.
type EditOp int

const (
	// OpEqual keeps the line.
	OpEqual EditOp = iota
	// OpInsert adds a line from the new text.
	OpInsert
	// OpDelete drops a line of the old text.
	OpDelete
)

// Edit is one line of an edit script.
type Edit struct {
	Op   EditOp
	Text string
	Old  int // 0-based line in the old text, -1 for inserts
	New  int // 0-based line in the new text, -1 for deletes
}

// DiffLines returns the full edit script (including equal lines) turning a
// into b, based on the longest common subsequence.
func DiffLines(a, b []string) []Edit {
	m, n := len(a), len(b)

	// lcs[i][j] is the LCS length of a[i:] and b[j:].
	lcs := make([][]int, m+1)
	for i := range lcs {
		lcs[i] = make([]int, n+1)
	}
	for i := m - 1; i >= 0; i-- {
		for j := n - 1; j >= 0; j-- {
			switch {
			case a[i] == b[j]:
				lcs[i][j] = lcs[i+1][j+1] + 1
			case lcs[i+1][j] >= lcs[i][j+1]:
				lcs[i][j] = lcs[i+1][j]
			default:
				lcs[i][j] = lcs[i][j+1]
			}
		}
	}

	edits := make([]Edit, 0, m+n)
	i, j := 0, 0
	for i < m || j < n {
		switch {
		case i < m && j < n && a[i] == b[j]:
			edits = append(edits, Edit{Op: OpEqual, Text: a[i], Old: i, New: j})
			i++
			j++
		case j < n && (i == m || lcs[i][j+1] > lcs[i+1][j]):
			edits = append(edits, Edit{Op: OpInsert, Text: b[j], Old: -1, New: j})
			j++
		default:
			edits = append(edits, Edit{Op: OpDelete, Text: a[i], Old: i, New: -1})
			i++
		}
	}
	return edits
}

// contextLines is the number of unchanged lines shown around each hunk.
const contextLines = 3

// UnifiedDiff renders a unified diff between before and after. It returns
// an empty string when both are identical.
func UnifiedDiff(filename string, before, after []byte) string {
	edits := DiffLines(splitLines(string(before)), splitLines(string(after)))

	var changed []int
	for idx, e := range edits {
		if e.Op != OpEqual {
			changed = append(changed, idx)
		}
	}
	if len(changed) == 0 {
		return ""
	}

	var sb strings.Builder
	fmt.Fprintf(&sb, "--- a/%s\n+++ b/%s\n", filename, filename)

	for k := 0; k < len(changed); {
		start := max(changed[k]-contextLines, 0)
		end := changed[k]
		// Grow the hunk while the next change is within two context windows.
		for k < len(changed) && changed[k]-end <= 2*contextLines {
			end = changed[k]
			k++
		}
		end = min(end+contextLines+1, len(edits))
		writeHunk(&sb, edits[start:end])
	}
	return sb.String()
}

func writeHunk(sb *strings.Builder, hunk []Edit) {
	oldStart, newStart := -1, -1
	oldCount, newCount := 0, 0
	for _, e := range hunk {
		if e.Old >= 0 {
			if oldStart < 0 {
				oldStart = e.Old
			}
			oldCount++
		}
		if e.New >= 0 {
			if newStart < 0 {
				newStart = e.New
			}
			newCount++
		}
	}
	fmt.Fprintf(sb, "@@ -%d,%d +%d,%d @@\n", oldStart+1, oldCount, newStart+1, newCount)
	for _, e := range hunk {
		switch e.Op {
		case OpEqual:
			sb.WriteString(" " + e.Text + "\n")
		case OpDelete:
			sb.WriteString("-" + e.Text + "\n")
		case OpInsert:
			sb.WriteString("+" + e.Text + "\n")
		}
	}
}

// splitLines splits a string into lines, ignoring a final newline.
func splitLines(s string) []string {
	s = strings.TrimSuffix(s, "\n")
	if s == "" {
		return []string{}
	}
	return strings.Split(s, "\n")
}
