package goldfish

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vu-dinh-hung/goldfish/db"
)

// Track stages the file at path, or every file below path if it is a
// directory.  A file whose content hash is already staged is left
// alone.  It returns the relpaths whose staged content changed.
func (r *Repo) Track(path string) (changed []string, err error) {
	rel, err := r.RelPath(path)
	if err != nil {
		return
	}
	abs := r.AbsPath(rel)
	info, err := os.Stat(abs)
	if err != nil {
		return
	}

	var rels []string
	if info.IsDir() {
		rels, err = r.walkTree(abs)
		if err != nil {
			return
		}
	} else {
		rels = []string{rel}
	}

	m, err := r.Manifest()
	if err != nil {
		return
	}
	for _, rel := range rels {
		buf, err := ioutil.ReadFile(r.AbsPath(rel))
		if err != nil {
			return nil, err
		}
		hash, err := db.HexHash(r.Db.Algo, buf)
		if err != nil {
			return nil, err
		}
		if m[rel] == hash {
			log.Debugf("track %s: unchanged", rel)
			continue
		}
		err = writeFile(r.stagingPath(filepath.FromSlash(rel)), buf)
		if err != nil {
			return nil, err
		}
		m[rel] = hash
		changed = append(changed, rel)
		log.Debugf("track %s: %s", rel, hash)
	}
	if len(changed) > 0 {
		err = r.writeManifest(m)
	}
	return
}

// Untrack removes path, or every tracked path below it, from the
// staging manifest and the staging dir.  The working file is not
// touched.
func (r *Repo) Untrack(path string) (removed []string, err error) {
	rel, err := r.RelPath(path)
	if err != nil {
		return
	}
	m, err := r.Manifest()
	if err != nil {
		return
	}
	for _, p := range m.Paths() {
		if p == rel || rel == "." || strings.HasPrefix(p, rel+"/") {
			removed = append(removed, p)
		}
	}
	if len(removed) == 0 {
		return nil, errors.Wrapf(ErrNotTracked, "%s", rel)
	}
	for _, p := range removed {
		delete(m, p)
		err = os.Remove(r.stagingPath(filepath.FromSlash(p)))
		if err != nil && !os.IsNotExist(err) {
			return nil, err
		}
		log.Debugf("untrack %s", p)
	}
	err = r.writeManifest(m)
	return
}

// walkTree returns the relpaths of all regular files at or below dir,
// sorted, skipping the control dir and paths with a newline.
func (r *Repo) walkTree(dir string) (rels []string, err error) {
	control := filepath.Join(r.Root, ControlDir)
	err = filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() && path == control {
			return filepath.SkipDir
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(r.Root, path)
		if err != nil {
			return err
		}
		if strings.Contains(rel, "\n") {
			log.Debugf("skipping %q: newline in path", rel)
			return nil
		}
		rels = append(rels, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(rels)
	return
}

// stagedFiles lists the relpaths present in the staging dir.
func (r *Repo) stagedFiles() (rels []string, err error) {
	base := r.stagingPath()
	err = filepath.Walk(base, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		rel, err := filepath.Rel(base, path)
		if err != nil {
			return err
		}
		rels = append(rels, filepath.ToSlash(rel))
		return nil
	})
	sort.Strings(rels)
	return
}
