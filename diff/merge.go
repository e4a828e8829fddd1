package diff

import "strings"

// conflict block markers
var (
	markA   = strings.Repeat("<", 10)
	markSep = strings.Repeat("=", 20)
	markB   = strings.Repeat(">", 10)
)

// MergeText merges two versions of a file.  Lines common to both are
// kept once; each run of diverging lines becomes a conflict block
// holding the a side then the b side, bounded by labelA and labelB.
// conflicts is the number of blocks written.
func MergeText(a, b, labelA, labelB string) (text string, conflicts int) {
	var out, bufA, bufB []string
	flush := func() {
		if len(bufA) == 0 && len(bufB) == 0 {
			return
		}
		out = append(out, markA+" "+labelA)
		out = append(out, bufA...)
		out = append(out, markSep)
		out = append(out, bufB...)
		out = append(out, markB+" "+labelB)
		bufA, bufB = nil, nil
		conflicts++
	}
	for _, e := range Lines(SplitLines(a), SplitLines(b)) {
		switch e.Op {
		case Del:
			bufA = append(bufA, e.Line)
		case Add:
			bufB = append(bufB, e.Line)
		case Same:
			flush()
			out = append(out, e.Line)
		}
	}
	flush()
	return JoinLines(out), conflicts
}
