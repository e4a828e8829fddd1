// Package diff computes line edit scripts with a longest common
// subsequence, merges two texts into one with conflict blocks, and
// renders unified diffs.
package diff

import "strings"

// Op tags one line of an edit script.
type Op string

const (
	Add  Op = "+"
	Del  Op = "-"
	Same Op = "="
)

// Edit is one line of an edit script.
type Edit struct {
	Op   Op
	Line string
}

func (e Edit) String() string {
	return string(e.Op) + " " + e.Line
}

// Script is the edit script turning one line sequence into another.
type Script []Edit

// Old returns the lines the script was computed from.
func (s Script) Old() []string {
	return s.pick(Del)
}

// New returns the lines the script produces.
func (s Script) New() []string {
	return s.pick(Add)
}

func (s Script) pick(op Op) []string {
	lines := []string{}
	for _, e := range s {
		if e.Op == op || e.Op == Same {
			lines = append(lines, e.Line)
		}
	}
	return lines
}

// Changed reports whether the script contains anything but Same.
func (s Script) Changed() bool {
	for _, e := range s {
		if e.Op != Same {
			return true
		}
	}
	return false
}

// Lines returns the edit script from a to b.
//
// The common lines are a longest common subsequence found with the
// usual O(len(a)*len(b)) length table.  Where several such sequences
// exist, the backtrack from the bottom right corner takes the diagonal
// on a match, moves up only when the cell above is strictly longer,
// and moves left otherwise.  The result is deterministic for a given
// input order.
//
// When neither current line is the next common line, the pair is
// emitted as a Del of the a line followed by an Add of the b line.
// After the last common line, every remaining a line is emitted as a
// Del, then every remaining b line as an Add.
func Lines(a, b []string) (script Script) {
	lcs := commonLines(a, b)

	i, j, k := 0, 0, 0
	for k < len(lcs) {
		inA := a[i] == lcs[k]
		inB := b[j] == lcs[k]
		switch {
		case inA && inB:
			script = append(script, Edit{Same, lcs[k]})
			i++
			j++
			k++
		case inA:
			script = append(script, Edit{Add, b[j]})
			j++
		case inB:
			script = append(script, Edit{Del, a[i]})
			i++
		default:
			script = append(script, Edit{Del, a[i]}, Edit{Add, b[j]})
			i++
			j++
		}
	}
	for ; i < len(a); i++ {
		script = append(script, Edit{Del, a[i]})
	}
	for ; j < len(b); j++ {
		script = append(script, Edit{Add, b[j]})
	}
	return
}

// commonLines returns one longest common subsequence of a and b.
func commonLines(a, b []string) []string {
	n, m := len(a), len(b)
	table := make([][]int, n+1)
	for i := range table {
		table[i] = make([]int, m+1)
	}
	for i := 1; i <= n; i++ {
		for j := 1; j <= m; j++ {
			switch {
			case a[i-1] == b[j-1]:
				table[i][j] = table[i-1][j-1] + 1
			case table[i-1][j] > table[i][j-1]:
				table[i][j] = table[i-1][j]
			default:
				table[i][j] = table[i][j-1]
			}
		}
	}

	lcs := make([]string, table[n][m])
	k := len(lcs)
	for i, j := n, m; i > 0 && j > 0; {
		switch {
		case a[i-1] == b[j-1]:
			k--
			lcs[k] = a[i-1]
			i--
			j--
		case table[i-1][j] > table[i][j-1]:
			i--
		default:
			j--
		}
	}
	return lcs
}

// SplitLines splits text on newlines.  A trailing newline does not
// produce an empty last line, and "" has no lines.
func SplitLines(text string) []string {
	if text == "" {
		return []string{}
	}
	return strings.Split(strings.TrimSuffix(text, "\n"), "\n")
}

// JoinLines is the inverse of SplitLines.
func JoinLines(lines []string) string {
	if len(lines) == 0 {
		return ""
	}
	return strings.Join(lines, "\n") + "\n"
}
