package goldfish

import (
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vu-dinh-hung/goldfish/db"
	"github.com/vu-dinh-hung/goldfish/diff"
)

// Reconciliation splits the paths of two manifests.  Added paths are
// only in b, Removed only in a, Common in both.
type Reconciliation struct {
	Added   []string
	Removed []string
	Common  []string
}

func Reconcile(a, b db.Manifest) (rec Reconciliation) {
	for _, path := range a.Paths() {
		if _, ok := b[path]; ok {
			rec.Common = append(rec.Common, path)
		} else {
			rec.Removed = append(rec.Removed, path)
		}
	}
	for _, path := range b.Paths() {
		if _, ok := a[path]; !ok {
			rec.Added = append(rec.Added, path)
		}
	}
	return
}

// MergeReport describes what Merge did.
type MergeReport struct {
	Base        string // merge base
	Head        string // HEAD before the merge
	Target      string // commit merged in
	UpToDate    bool
	FastForward bool     // resolved by checking out Target
	Added       []string // written from Target
	Removed     []string // kept from Head
	Merged      []string // combined without conflicts
	Conflicted  []string // written with conflict blocks
}

// Merge merges commit id into the working tree.  The tree must be
// clean.  When one side contains the other the merge is a checkout of
// id; otherwise files are combined, clean results are staged, and id
// is recorded as MERGE_HEAD for the next commit.  Conflicted files are
// left unstaged for the user to resolve and track.
func (r *Repo) Merge(id string) (rep *MergeReport, err error) {
	st, err := r.Status()
	if err != nil {
		return
	}
	if !st.Clean() {
		return nil, ErrDirtyTree
	}
	head, err := r.Db.Head()
	if err != nil {
		return
	}
	target, err := r.Db.GetCommit(id)
	if err != nil {
		return
	}
	rep = &MergeReport{Head: head, Target: target.Hash}

	if head == "" {
		log.Debugf("merge: no HEAD, checking out %s", target.Hash)
		rep.FastForward = true
		return rep, r.Checkout(target.Hash)
	}
	if head == target.Hash {
		rep.Base = head
		rep.UpToDate = true
		return rep, nil
	}

	base, err := r.LowestCommonAncestor(head, target.Hash)
	if err != nil {
		return nil, err
	}
	rep.Base = base
	if base == target.Hash || base == head {
		log.Debugf("merge: base %s, checking out %s", base, target.Hash)
		rep.FastForward = true
		return rep, r.Checkout(target.Hash)
	}

	ours, err := r.Db.GetCommit(head)
	if err != nil {
		return nil, err
	}
	rec := Reconcile(ours.Manifest, target.Manifest)

	// an untracked file in the way of an added one would be lost
	for _, path := range rec.Added {
		if _, serr := os.Lstat(r.AbsPath(path)); serr == nil {
			return nil, errors.Wrapf(ErrDirtyTree, "untracked %s would be overwritten", path)
		}
	}

	// read everything first so a missing blob aborts before any write
	var differ []string
	for _, path := range rec.Common {
		if ours.Manifest[path] != target.Manifest[path] {
			differ = append(differ, path)
		}
	}
	theirs, err := r.loadBlobs(target.Manifest, append(append([]string{}, rec.Added...), differ...))
	if err != nil {
		return nil, err
	}
	mine, err := r.loadBlobs(ours.Manifest, append(append([]string{}, rec.Removed...), differ...))
	if err != nil {
		return nil, err
	}

	var stage []string
	for _, path := range rec.Added {
		err = writeFile(r.AbsPath(path), theirs[path])
		if err != nil {
			return nil, err
		}
		stage = append(stage, path)
		rep.Added = append(rep.Added, path)
	}
	for _, path := range rec.Removed {
		err = writeFile(r.AbsPath(path), mine[path])
		if err != nil {
			return nil, err
		}
		rep.Removed = append(rep.Removed, path)
	}
	for _, path := range differ {
		text, conflicts := diff.MergeText(string(mine[path]), string(theirs[path]), head, target.Hash)
		err = writeFile(r.AbsPath(path), []byte(text))
		if err != nil {
			return nil, err
		}
		if conflicts > 0 {
			rep.Conflicted = append(rep.Conflicted, path)
			log.Debugf("merge %s: %d conflicts", path, conflicts)
			continue
		}
		stage = append(stage, path)
		rep.Merged = append(rep.Merged, path)
	}

	for _, path := range stage {
		_, err = r.Track(r.AbsPath(path))
		if err != nil {
			return nil, errors.Wrapf(err, "staging %s", path)
		}
	}
	err = r.setMergeHead(target.Hash)
	if err != nil {
		return nil, err
	}
	log.Debugf("merge %s into %s: base %s", target.Hash, head, base)
	return
}
