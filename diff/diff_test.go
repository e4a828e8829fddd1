package diff

import (
	"reflect"
	"strings"
	"testing"
)

func tassert(t *testing.T, cond bool, txt string, args ...interface{}) {
	t.Helper() // cause file:line info to show caller
	if !cond {
		t.Fatalf(txt, args...)
	}
}

func render(s Script) string {
	var parts []string
	for _, e := range s {
		parts = append(parts, e.String())
	}
	return strings.Join(parts, "|")
}

func TestLines(t *testing.T) {
	cases := []struct {
		a, b   []string
		expect string
	}{
		{nil, nil, ""},
		{nil, []string{"x", "y"}, "+ x|+ y"},
		{[]string{"x", "y"}, nil, "- x|- y"},
		{[]string{"a", "b", "c"}, []string{"a", "b", "c"}, "= a|= b|= c"},
		{[]string{"a", "b", "c"}, []string{"a", "x", "c"}, "= a|- b|+ x|= c"},
		{[]string{"a", "c"}, []string{"a", "b", "c"}, "= a|+ b|= c"},
		{[]string{"a", "b", "c"}, []string{"a", "c"}, "= a|- b|= c"},
		{
			[]string{"hello", "hello", "hello"},
			[]string{"hello", "hi", "hello", "hi"},
			"= hello|+ hi|= hello|- hello|+ hi",
		},
	}
	for _, c := range cases {
		got := render(Lines(c.a, c.b))
		tassert(t, got == c.expect, "%q -> %q: expected %q, got %q", c.a, c.b, c.expect, got)
	}
}

func TestLinesRoundTrip(t *testing.T) {
	texts := [][]string{
		{},
		{"a"},
		{"a", "b", "a", "b"},
		{"b", "a", "b", "a", "a"},
		{"x", "", "y", ""},
		{"one", "two", "three", "four", "five"},
		{"five", "three", "one"},
	}
	for _, a := range texts {
		for _, b := range texts {
			s := Lines(a, b)
			tassert(t, reflect.DeepEqual(s.Old(), a), "old: expected %q, got %q", a, s.Old())
			tassert(t, reflect.DeepEqual(s.New(), b), "new: expected %q, got %q", b, s.New())
		}
		s := Lines(a, a)
		tassert(t, !s.Changed(), "self diff of %q changed: %s", a, render(s))
		tassert(t, len(s) == len(a), "self diff of %q has %d edits", a, len(s))
	}
}

func TestSplitLines(t *testing.T) {
	tassert(t, len(SplitLines("")) == 0, "empty text has lines")
	got := SplitLines("a\nb\n")
	tassert(t, reflect.DeepEqual(got, []string{"a", "b"}), "got %q", got)
	got = SplitLines("a\nb")
	tassert(t, reflect.DeepEqual(got, []string{"a", "b"}), "got %q", got)
	tassert(t, JoinLines([]string{"a", "b"}) == "a\nb\n", "join")
	tassert(t, JoinLines(nil) == "", "join empty")
}
