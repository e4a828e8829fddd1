package goldfish

import (
	"io/ioutil"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/renameio"
	"github.com/pkg/fileutils"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
	"github.com/vu-dinh-hung/goldfish/db"
)

const (
	ControlDir   = ".dvcs"
	trackedFile  = "tracked_files"
	mergeHead    = "MERGE_HEAD"
	stagingDir   = "staging"
	pullDirGlob  = ".pull-*"
	defaultPerms = 0644
)

// Repo is an open repository.
type Repo struct {
	Root string // working tree
	Db   *db.Db
}

// Create initializes a repository with root dir and returns it.  An
// existing control dir is ErrExists.
func Create(dir string, algo string) (r *Repo, err error) {
	defer Return(&err)
	root, err := filepath.Abs(dir)
	Ck(err)
	control := filepath.Join(root, ControlDir)
	if _, serr := os.Stat(control); serr == nil {
		return nil, errors.Wrapf(ErrExists, "%s", control)
	}
	err = os.MkdirAll(root, 0755)
	Ck(err)

	store, err := db.Db{Dir: control, Algo: algo}.Create()
	Ck(err)
	r = &Repo{Root: root, Db: store}

	err = os.Mkdir(r.stagingPath(), 0755)
	Ck(err)
	err = r.writeManifest(db.Manifest{})
	Ck(err)

	log.Debugf("initialized %s", control)
	return r, nil
}

// Open finds the control dir in dir or the nearest parent of dir and
// opens the repository.
func Open(dir string) (r *Repo, err error) {
	start, err := filepath.Abs(dir)
	if err != nil {
		return
	}
	root := start
	for {
		info, serr := os.Stat(filepath.Join(root, ControlDir))
		if serr == nil && info.IsDir() {
			break
		}
		parent := filepath.Dir(root)
		if parent == root {
			return nil, &NotRepoError{Dir: start}
		}
		root = parent
	}
	store, err := db.Open(filepath.Join(root, ControlDir))
	if err != nil {
		return
	}
	r = &Repo{Root: root, Db: store}
	err = os.MkdirAll(r.stagingPath(), 0755)
	if err != nil {
		return
	}
	log.Debugf("opened %s", store.Dir)
	return
}

func (r *Repo) stagingPath(rel ...string) string {
	parts := append([]string{r.Db.Dir, stagingDir}, rel...)
	return filepath.Join(parts...)
}

// RelPath converts a path, absolute or relative to root, into a
// relpath.  Paths leaving root or entering the control dir are
// ErrOutsideRepo; a newline, which manifest lines cannot hold, is
// ErrInvalidPath.
func (r *Repo) RelPath(path string) (rel string, err error) {
	abs := path
	if !filepath.IsAbs(abs) {
		abs = filepath.Join(r.Root, abs)
	}
	rel, err = filepath.Rel(r.Root, filepath.Clean(abs))
	if err != nil {
		return "", errors.Wrapf(ErrOutsideRepo, "%s", path)
	}
	rel = filepath.ToSlash(rel)
	if rel == ".." || strings.HasPrefix(rel, "../") {
		return "", errors.Wrapf(ErrOutsideRepo, "%s", path)
	}
	if strings.Contains(rel, "\n") {
		return "", errors.Wrapf(ErrInvalidPath, "%q", path)
	}
	if rel == ControlDir || strings.HasPrefix(rel, ControlDir+"/") {
		return "", errors.Wrapf(ErrOutsideRepo, "%s is inside the control directory", path)
	}
	return
}

// AbsPath is the working tree location of rel.
func (r *Repo) AbsPath(rel string) string {
	return filepath.Join(r.Root, filepath.FromSlash(rel))
}

// Manifest returns the staging manifest.
func (r *Repo) Manifest() (m db.Manifest, err error) {
	buf, err := ioutil.ReadFile(filepath.Join(r.Db.Dir, trackedFile))
	if os.IsNotExist(err) {
		return db.Manifest{}, nil
	}
	if err != nil {
		return
	}
	return db.ParseManifest(string(buf))
}

func (r *Repo) writeManifest(m db.Manifest) error {
	return renameio.WriteFile(filepath.Join(r.Db.Dir, trackedFile), []byte(m.Txt()), defaultPerms)
}

// Head returns the current commit id, "" before the first commit.
func (r *Repo) Head() (string, error) {
	return r.Db.Head()
}

// headManifest returns HEAD's manifest, empty before the first commit.
func (r *Repo) headManifest() (head string, m db.Manifest, err error) {
	head, err = r.Db.Head()
	if err != nil || head == "" {
		return head, db.Manifest{}, err
	}
	c, err := r.Db.GetCommit(head)
	if err != nil {
		return
	}
	return head, c.Manifest, nil
}

// MergeHead returns the pending merge parent, or "".
func (r *Repo) MergeHead() (id string, err error) {
	buf, err := ioutil.ReadFile(filepath.Join(r.Db.Dir, mergeHead))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return
	}
	id = strings.TrimSpace(string(buf))
	if id != "" && !r.Db.HasCommit(id) {
		return "", errors.Wrapf(db.ErrCorrupt, "%s: %q", mergeHead, id)
	}
	return
}

func (r *Repo) setMergeHead(id string) error {
	return renameio.WriteFile(filepath.Join(r.Db.Dir, mergeHead), []byte(id), defaultPerms)
}

func (r *Repo) clearMergeHead() error {
	err := os.Remove(filepath.Join(r.Db.Dir, mergeHead))
	if os.IsNotExist(err) {
		return nil
	}
	return err
}

// clearStaging empties the staging dir.
func (r *Repo) clearStaging() (err error) {
	err = os.RemoveAll(r.stagingPath())
	if err != nil {
		return
	}
	return os.Mkdir(r.stagingPath(), 0755)
}

// hashFile returns the blob hash the file at abs would get, or "" if
// it cannot be read.
func (r *Repo) hashFile(abs string) string {
	buf, err := ioutil.ReadFile(abs)
	if err != nil {
		return ""
	}
	hash, err := db.HexHash(r.Db.Algo, buf)
	if err != nil {
		return ""
	}
	return hash
}

// writeFile replaces the file at abs, creating parent dirs.
func writeFile(abs string, buf []byte) (err error) {
	err = os.MkdirAll(filepath.Dir(abs), 0755)
	if err != nil {
		return
	}
	return renameio.WriteFile(abs, buf, defaultPerms)
}

// copyFile copies src over dst, creating parent dirs.
func copyFile(dst, src string) (err error) {
	err = os.MkdirAll(filepath.Dir(dst), 0755)
	if err != nil {
		return
	}
	err = fileutils.CopyFile(dst, src)
	if err != nil {
		return
	}
	return os.Chmod(dst, defaultPerms)
}
