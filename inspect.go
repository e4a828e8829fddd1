package goldfish

import (
	"sort"
	"strings"

	"github.com/pkg/errors"
	"github.com/vu-dinh-hung/goldfish/db"
	"github.com/vu-dinh-hung/goldfish/diff"
)

// Heads returns the current commit id, "" before the first commit.
func (r *Repo) Heads() (string, error) {
	return r.Db.Head()
}

// ResolveCommit expands ref, "HEAD" or a unique prefix of a commit id,
// to a full id.
func (r *Repo) ResolveCommit(ref string) (id string, err error) {
	if ref == "HEAD" {
		id, err = r.Db.Head()
		if err == nil && id == "" {
			err = errors.Wrapf(db.ErrNotFound, "HEAD")
		}
		return
	}
	ref = strings.ToLower(ref)
	if r.Db.IsHash(ref) {
		if !r.Db.HasCommit(ref) {
			return "", errors.Wrapf(db.ErrNotFound, "commit %s", ref)
		}
		return ref, nil
	}
	if ref == "" {
		return "", errors.Wrapf(db.ErrNotFound, "empty commit id")
	}
	ids, err := r.Db.Commits()
	if err != nil {
		return
	}
	var matches []string
	for _, c := range ids {
		if strings.HasPrefix(c, ref) {
			matches = append(matches, c)
		}
	}
	switch len(matches) {
	case 0:
		return "", errors.Wrapf(db.ErrNotFound, "commit %s", ref)
	case 1:
		return matches[0], nil
	}
	return "", errors.Wrapf(ErrAmbiguous, "%s matches %d commits", ref, len(matches))
}

// Cat returns the content of path as of commit id.
func (r *Repo) Cat(id, path string) (content []byte, err error) {
	c, err := r.Db.GetCommit(id)
	if err != nil {
		return
	}
	rel, err := r.RelPath(path)
	if err != nil {
		return
	}
	hash, ok := c.Manifest[rel]
	if !ok {
		return nil, errors.Wrapf(db.ErrNotFound, "%s in commit %s", rel, id)
	}
	return r.Db.GetBlob(hash)
}

// FileDiff is the edit script of one path between two commits.  A
// path missing on one side diffs against empty content.
type FileDiff struct {
	Path   string
	Old    string // content in the first commit
	New    string // content in the second commit
	Script diff.Script
}

// DiffCommits returns a FileDiff for every path whose blob differs
// between id1 and id2, sorted by path.
func (r *Repo) DiffCommits(id1, id2 string) (diffs []FileDiff, err error) {
	c1, err := r.Db.GetCommit(id1)
	if err != nil {
		return
	}
	c2, err := r.Db.GetCommit(id2)
	if err != nil {
		return
	}
	paths := map[string]bool{}
	for path := range c1.Manifest {
		paths[path] = true
	}
	for path := range c2.Manifest {
		paths[path] = true
	}
	var sorted []string
	for path := range paths {
		if c1.Manifest[path] != c2.Manifest[path] {
			sorted = append(sorted, path)
		}
	}
	sort.Strings(sorted)

	for _, path := range sorted {
		a, err := r.blobText(c1.Manifest, path)
		if err != nil {
			return nil, err
		}
		b, err := r.blobText(c2.Manifest, path)
		if err != nil {
			return nil, err
		}
		diffs = append(diffs, FileDiff{
			Path:   path,
			Old:    a,
			New:    b,
			Script: diff.Lines(diff.SplitLines(a), diff.SplitLines(b)),
		})
	}
	return
}

func (r *Repo) blobText(m db.Manifest, path string) (string, error) {
	hash, ok := m[path]
	if !ok {
		return "", nil
	}
	buf, err := r.Db.GetBlob(hash)
	if err != nil {
		return "", err
	}
	return string(buf), nil
}
