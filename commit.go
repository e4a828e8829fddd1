package goldfish

import (
	"io/ioutil"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vu-dinh-hung/goldfish/db"
)

// Commit snapshots the staging manifest and moves HEAD to the new
// commit.  A pending MERGE_HEAD becomes the secondary parent.
func (r *Repo) Commit() (id string, err error) {
	head, headm, err := r.headManifest()
	if err != nil {
		return
	}
	m, err := r.Manifest()
	if err != nil {
		return
	}
	merging, err := r.MergeHead()
	if err != nil {
		return
	}
	if head != "" && merging == "" && m.Equal(headm) {
		return "", ErrNothingToCommit
	}
	if len(m) == 0 {
		return "", ErrNothingStaged
	}

	// store the staged copies
	staged, err := r.stagedFiles()
	if err != nil {
		return
	}
	for _, rel := range staged {
		if _, ok := m[rel]; !ok {
			continue
		}
		buf, err := ioutil.ReadFile(r.stagingPath(filepath.FromSlash(rel)))
		if err != nil {
			return "", err
		}
		hash, err := r.Db.PutBlob(buf)
		if err != nil {
			return "", err
		}
		if hash != m[rel] {
			log.Debugf("%s staged as %s but stored as %s", rel, m[rel], hash)
			m[rel] = hash
		}
	}

	// every entry must resolve before the commit can reference it
	for _, rel := range m.Paths() {
		if !r.Db.HasBlob(m[rel]) {
			return "", errors.Wrapf(db.ErrCorrupt, "%s: missing blob %s", rel, m[rel])
		}
	}

	var secondary []string
	if merging != "" {
		secondary = []string{merging}
	}
	id, err = r.Db.CreateCommit(head, secondary, m)
	if err != nil {
		return
	}

	err = r.writeManifest(m)
	if err != nil {
		return
	}
	err = r.clearStaging()
	if err != nil {
		return
	}
	err = r.clearMergeHead()
	if err != nil {
		return
	}
	log.Debugf("committed %s", id)
	return
}
