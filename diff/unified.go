package diff

import (
	"github.com/pmezard/go-difflib/difflib"
)

// Unified renders a unified diff of a and b with context lines around
// each hunk.  Identical inputs render as "".
func Unified(a, b, fromName, toName string, context int) (string, error) {
	ud := difflib.UnifiedDiff{
		A:        terminated(a),
		B:        terminated(b),
		FromFile: fromName,
		ToFile:   toName,
		Context:  context,
	}
	return difflib.GetUnifiedDiffString(ud)
}

// terminated splits text into newline-terminated lines.
func terminated(text string) []string {
	lines := SplitLines(text)
	for i := range lines {
		lines[i] += "\n"
	}
	return lines
}
