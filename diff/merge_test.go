package diff

import (
	"strings"
	"testing"
)

func TestMergeText(t *testing.T) {
	a := "one\ntwo\nthree\nfour\n"
	b := "one\nTWO\nTHREE\nfour\n"
	got, n := MergeText(a, b, "ours", "theirs")
	expect := strings.Join([]string{
		"one",
		"<<<<<<<<<< ours",
		"two",
		"three",
		"====================",
		"TWO",
		"THREE",
		">>>>>>>>>> theirs",
		"four",
		"",
	}, "\n")
	tassert(t, n == 1, "expected 1 conflict, got %d", n)
	tassert(t, got == expect, "expected\n%s\ngot\n%s", expect, got)
}

func TestMergeTextClean(t *testing.T) {
	a := "x\ny\n"
	got, n := MergeText(a, a, "a", "b")
	tassert(t, n == 0, "expected no conflicts, got %d", n)
	tassert(t, got == a, "expected %q, got %q", a, got)

	got, n = MergeText("", "", "a", "b")
	tassert(t, n == 0 && got == "", "empty merge: %q %d", got, n)
}

func TestMergeTextEdges(t *testing.T) {
	// divergence at the end is flushed
	got, n := MergeText("same\nold\n", "same\n", "a", "b")
	expect := "same\n<<<<<<<<<< a\nold\n====================\n>>>>>>>>>> b\n"
	tassert(t, n == 1, "expected 1 conflict, got %d", n)
	tassert(t, got == expect, "expected %q, got %q", expect, got)

	// two separate ranges
	_, n = MergeText("1\n2\n3\n4\n5\n", "1\nX\n3\nY\n5\n", "a", "b")
	tassert(t, n == 2, "expected 2 conflicts, got %d", n)
}
