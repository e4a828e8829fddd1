package goldfish

import (
	"github.com/pkg/errors"
	"github.com/vu-dinh-hung/goldfish/db"
)

// Ancestors returns id and every commit reachable from it through
// direct or secondary parents.
func (r *Repo) Ancestors(id string) (seen map[string]bool, err error) {
	seen = map[string]bool{}
	stack := []string{id}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		c, err := r.getCommit(cur)
		if err != nil {
			return nil, err
		}
		seen[cur] = true
		stack = append(stack, c.Parents()...)
	}
	return
}

// LowestCommonAncestor returns the merge base of a and b: b itself if
// it is an ancestor of a, else the first ancestor of a found by a
// depth-first walk from b that visits the direct parent before
// secondary parents.  In graphs with several merge bases this is not
// necessarily the most recent one.
func (r *Repo) LowestCommonAncestor(a, b string) (id string, err error) {
	ancA, err := r.Ancestors(a)
	if err != nil {
		return
	}
	if ancA[b] {
		return b, nil
	}

	seen := map[string]bool{}
	stack := []string{b}
	for len(stack) > 0 {
		cur := stack[len(stack)-1]
		stack = stack[:len(stack)-1]
		if seen[cur] {
			continue
		}
		seen[cur] = true
		if ancA[cur] {
			return cur, nil
		}
		c, err := r.getCommit(cur)
		if err != nil {
			return "", err
		}
		parents := c.Parents()
		// push in reverse so the direct parent pops first
		for i := len(parents) - 1; i >= 0; i-- {
			stack = append(stack, parents[i])
		}
	}
	return "", errors.Wrapf(ErrDisjointHistory, "%s and %s", a, b)
}

// Log returns the commits on the direct-parent chain from HEAD, newest
// first.
func (r *Repo) Log() (commits []*db.Commit, err error) {
	id, err := r.Db.Head()
	if err != nil {
		return
	}
	for id != "" {
		c, err := r.getCommit(id)
		if err != nil {
			return nil, err
		}
		commits = append(commits, c)
		id = c.Parent
	}
	return
}

// getCommit treats a dangling parent reference as corruption.
func (r *Repo) getCommit(id string) (c *db.Commit, err error) {
	c, err = r.Db.GetCommit(id)
	if errors.Is(err, db.ErrNotFound) {
		return nil, errors.Wrapf(db.ErrCorrupt, "%v", err)
	}
	return
}
