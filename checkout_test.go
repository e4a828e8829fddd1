package goldfish

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	"github.com/vu-dinh-hung/goldfish/db"
)

func TestCheckoutRestores(t *testing.T) {
	r := setup(t)
	write(t, r, "f.txt", "v1")
	track(t, r, "f.txt")
	id := commit(t, r)

	write(t, r, "f.txt", "v2")
	head, err := r.ResolveCommit("HEAD")
	tassert(t, err == nil && head == id, "HEAD %s %v", head, err)
	err = r.Checkout(head)
	tassert(t, err == nil, "%v", err)
	tassert(t, read(t, r, "f.txt") == "v1", "got %q", read(t, r, "f.txt"))
}

func TestCheckoutOlder(t *testing.T) {
	r := setup(t)
	write(t, r, "a.txt", "a1")
	track(t, r, "a.txt")
	first := commit(t, r)

	write(t, r, "a.txt", "a2")
	write(t, r, "sub/b.txt", "b")
	track(t, r, "a.txt", "sub/b.txt")
	second := commit(t, r)

	err := r.Checkout(first)
	tassert(t, err == nil, "%v", err)
	tassert(t, read(t, r, "a.txt") == "a1", "a.txt %q", read(t, r, "a.txt"))
	_, err = os.Stat(r.AbsPath("sub/b.txt"))
	tassert(t, os.IsNotExist(err), "stale file kept: %v", err)
	m, _ := r.Manifest()
	tassert(t, len(m) == 1 && m["a.txt"] == hexhash("a1"), "manifest %v", m)
	head, _ := r.Head()
	tassert(t, head == first, "HEAD %s", head)
	st, err := r.Status()
	tassert(t, err == nil && st.Clean(), "not clean after checkout: %#v %v", st, err)

	err = r.Checkout(second)
	tassert(t, err == nil, "%v", err)
	tassert(t, read(t, r, "sub/b.txt") == "b", "b.txt %q", read(t, r, "sub/b.txt"))
}

func TestCheckoutMissingBlob(t *testing.T) {
	r := setup(t)
	write(t, r, "a.txt", "a")
	write(t, r, "b.txt", "b")
	track(t, r, "a.txt", "b.txt")
	id := commit(t, r)

	// lose one blob, then scribble on the tree
	path, err := db.Path{}.New(r.Db, "blob/"+hexhash("b"))
	tassert(t, err == nil, "%v", err)
	err = r.Db.Rm(path)
	tassert(t, err == nil, "%v", err)
	write(t, r, "a.txt", "scribble")

	err = r.Checkout(id)
	tassert(t, errors.Is(err, db.ErrCorrupt), "expected ErrCorrupt, got %v", err)
	tassert(t, read(t, r, "a.txt") == "scribble", "tree modified by failed checkout")

	bogus := hexhash("no such commit")
	err = r.Checkout(bogus)
	tassert(t, errors.Is(err, db.ErrNotFound), "expected ErrNotFound, got %v", err)
}

func TestCommitNothingStaged(t *testing.T) {
	r := setup(t)
	_, err := r.Commit()
	tassert(t, errors.Is(err, ErrNothingStaged), "expected ErrNothingStaged, got %v", err)

	write(t, r, "a.txt", "a")
	track(t, r, "a.txt")
	commit(t, r)
	_, err = r.Untrack("a.txt")
	tassert(t, err == nil, "%v", err)
	_, err = r.Commit()
	tassert(t, errors.Is(err, ErrNothingStaged), "expected ErrNothingStaged, got %v", err)
}

func TestCommitMissingBlob(t *testing.T) {
	r := setup(t)
	write(t, r, "a.txt", "a")
	track(t, r, "a.txt")
	// lose the staged copy so no blob can be written for it
	err := os.Remove(filepath.Join(r.Db.Dir, stagingDir, "a.txt"))
	tassert(t, err == nil, "%v", err)
	_, err = r.Commit()
	tassert(t, errors.Is(err, db.ErrCorrupt), "expected ErrCorrupt, got %v", err)
	head, _ := r.Head()
	tassert(t, head == "", "HEAD moved to %s", head)
}
