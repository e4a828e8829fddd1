package goldfish

// Status compares the staging manifest with HEAD (staged changes) and
// the working tree with the staging manifest (unstaged changes).  All
// lists hold sorted relpaths.
type Status struct {
	StagedAdded      []string
	StagedDeleted    []string
	StagedModified   []string
	UnstagedModified []string
	UnstagedDeleted  []string
	Untracked        []string
}

// Staged reports whether anything differs between staging and HEAD.
func (s *Status) Staged() bool {
	return len(s.StagedAdded)+len(s.StagedDeleted)+len(s.StagedModified) > 0
}

// Unstaged reports whether any tracked working file differs from
// staging.
func (s *Status) Unstaged() bool {
	return len(s.UnstagedModified)+len(s.UnstagedDeleted) > 0
}

// Clean is true when there is nothing staged and nothing unstaged.
// Untracked files do not count.
func (s *Status) Clean() bool {
	return !s.Staged() && !s.Unstaged()
}

func (r *Repo) Status() (st *Status, err error) {
	st = &Status{}
	_, headm, err := r.headManifest()
	if err != nil {
		return
	}
	m, err := r.Manifest()
	if err != nil {
		return
	}

	for _, path := range m.Paths() {
		hash, ok := headm[path]
		switch {
		case !ok:
			st.StagedAdded = append(st.StagedAdded, path)
		case hash != m[path]:
			st.StagedModified = append(st.StagedModified, path)
		}

		live := r.hashFile(r.AbsPath(path))
		switch {
		case live == "":
			st.UnstagedDeleted = append(st.UnstagedDeleted, path)
		case live != m[path]:
			st.UnstagedModified = append(st.UnstagedModified, path)
		}
	}
	for _, path := range headm.Paths() {
		if _, ok := m[path]; !ok {
			st.StagedDeleted = append(st.StagedDeleted, path)
		}
	}

	files, err := r.walkTree(r.Root)
	if err != nil {
		return
	}
	for _, path := range files {
		if _, ok := m[path]; !ok {
			st.Untracked = append(st.Untracked, path)
		}
	}
	return
}

// Clean reports whether the repository has no staged or unstaged
// changes.
func (r *Repo) Clean() (ok bool, err error) {
	st, err := r.Status()
	if err != nil {
		return
	}
	return st.Clean(), nil
}
