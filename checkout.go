package goldfish

import (
	"os"
	"path/filepath"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/vu-dinh-hung/goldfish/db"
)

// Checkout makes the working tree, staging manifest, and HEAD match
// commit id.  Every blob is loaded before anything is written, so a
// missing blob leaves the repository untouched.
func (r *Repo) Checkout(id string) (err error) {
	c, err := r.Db.GetCommit(id)
	if err != nil {
		return
	}
	contents, err := r.loadBlobs(c.Manifest, c.Manifest.Paths())
	if err != nil {
		return
	}
	old, err := r.Manifest()
	if err != nil {
		return
	}

	// blob -> staging -> working tree
	err = r.clearStaging()
	if err != nil {
		return
	}
	for rel, buf := range contents {
		err = writeFile(r.stagingPath(filepath.FromSlash(rel)), buf)
		if err != nil {
			return
		}
	}
	err = r.writeManifest(c.Manifest)
	if err != nil {
		return
	}
	for _, rel := range c.Manifest.Paths() {
		err = copyFile(r.AbsPath(rel), r.stagingPath(filepath.FromSlash(rel)))
		if err != nil {
			return
		}
	}

	// files tracked before but absent from the target go away
	for _, rel := range old.Paths() {
		if _, ok := c.Manifest[rel]; ok {
			continue
		}
		err = os.Remove(r.AbsPath(rel))
		if err != nil && !os.IsNotExist(err) {
			return
		}
		log.Debugf("checkout: removed %s", rel)
	}

	err = r.clearStaging()
	if err != nil {
		return
	}
	err = r.Db.SetHead(c.Hash)
	if err != nil {
		return
	}
	err = r.clearMergeHead()
	if err != nil {
		return
	}
	log.Debugf("checked out %s", c.Hash)
	return
}

// loadBlobs reads the blobs m holds for paths.  A blob the manifest
// names but the store lacks is corruption.
func (r *Repo) loadBlobs(m db.Manifest, paths []string) (contents map[string][]byte, err error) {
	contents = make(map[string][]byte, len(paths))
	for _, rel := range paths {
		buf, err := r.Db.GetBlob(m[rel])
		if errors.Is(err, db.ErrNotFound) {
			return nil, errors.Wrapf(db.ErrCorrupt, "%s: %v", rel, err)
		}
		if err != nil {
			return nil, errors.Wrapf(err, "%s", rel)
		}
		contents[rel] = buf
	}
	return
}
