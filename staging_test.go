package goldfish

import (
	"os"
	"reflect"
	"testing"

	"github.com/pkg/errors"
)

func TestTrack(t *testing.T) {
	r := setup(t)
	write(t, r, "a.txt", "a")
	write(t, r, "dir/b.txt", "b")
	write(t, r, "dir/sub/c.txt", "c")

	changed, err := r.Track("dir")
	tassert(t, err == nil, "%v", err)
	expect := []string{"dir/b.txt", "dir/sub/c.txt"}
	tassert(t, reflect.DeepEqual(changed, expect), "expected %v, got %v", expect, changed)

	// same content again is a no-op
	changed, err = r.Track("dir/b.txt")
	tassert(t, err == nil && len(changed) == 0, "changed %v %v", changed, err)

	write(t, r, "dir/b.txt", "B")
	changed, err = r.Track(r.AbsPath("dir/b.txt"))
	tassert(t, err == nil && len(changed) == 1, "changed %v %v", changed, err)
	m, _ := r.Manifest()
	tassert(t, m["dir/b.txt"] == hexhash("B"), "manifest %v", m)
	staged, _ := r.stagedFiles()
	tassert(t, reflect.DeepEqual(staged, expect), "staged %v", staged)

	_, err = r.Track("missing.txt")
	tassert(t, os.IsNotExist(errors.Cause(err)), "expected not exist, got %v", err)
	_, err = r.Track("../outside")
	tassert(t, errors.Is(err, ErrOutsideRepo), "expected ErrOutsideRepo, got %v", err)
}

func TestTrackRoot(t *testing.T) {
	r := setup(t)
	write(t, r, "a.txt", "a")
	write(t, r, "b/c.txt", "c")
	changed, err := r.Track(".")
	tassert(t, err == nil, "%v", err)
	expect := []string{"a.txt", "b/c.txt"}
	tassert(t, reflect.DeepEqual(changed, expect), "expected %v, got %v", expect, changed)
}

func TestUntrack(t *testing.T) {
	r := setup(t)
	write(t, r, "a.txt", "a")
	write(t, r, "dir/b.txt", "b")
	write(t, r, "dir/c.txt", "c")
	track(t, r, "a.txt", "dir")

	removed, err := r.Untrack("dir")
	tassert(t, err == nil, "%v", err)
	tassert(t, reflect.DeepEqual(removed, []string{"dir/b.txt", "dir/c.txt"}), "removed %v", removed)
	m, _ := r.Manifest()
	tassert(t, len(m) == 1 && m["a.txt"] != "", "manifest %v", m)
	staged, _ := r.stagedFiles()
	tassert(t, reflect.DeepEqual(staged, []string{"a.txt"}), "staged %v", staged)
	tassert(t, read(t, r, "dir/b.txt") == "b", "working file touched")

	_, err = r.Untrack("dir/b.txt")
	tassert(t, errors.Is(err, ErrNotTracked), "expected ErrNotTracked, got %v", err)
}

func TestTrackNewlinePath(t *testing.T) {
	r := setup(t)
	write(t, r, "a\nb", "x")
	write(t, r, "ok.txt", "ok")

	_, err := r.Track("a\nb")
	tassert(t, errors.Is(err, ErrInvalidPath), "expected ErrInvalidPath, got %v", err)
	m, err := r.Manifest()
	tassert(t, err == nil && len(m) == 0, "manifest %v %v", m, err)

	// a directory walk passes over the file instead of staging it
	changed, err := r.Track(".")
	tassert(t, err == nil, "%v", err)
	tassert(t, reflect.DeepEqual(changed, []string{"ok.txt"}), "changed %v", changed)
	st, err := r.Status()
	tassert(t, err == nil, "%v", err)
	tassert(t, reflect.DeepEqual(st.StagedAdded, []string{"ok.txt"}), "staged %v", st.StagedAdded)
	tassert(t, len(st.Untracked) == 0, "untracked %v", st.Untracked)
	commit(t, r)
}
