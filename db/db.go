package db

import (
	"encoding/json"
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/google/renameio"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
)

const (
	DefaultAlgo        = "sha256"
	DefaultSyncCommand = "rsync -a"
	configFile         = "config.json"
	headFile           = "HEAD"
)

// Db is a content-addressed object store rooted at Dir.  Blobs live
// under blobs/ and commits under commits/, one flat directory per
// class; the file name is the full hex hash.  Algo and SyncCommand are
// persisted in config.json at creation and reloaded by Open.
type Db struct {
	Dir         string `json:"-"` // control directory
	Algo        string // hash algorithm for every object in this store
	SyncCommand string // external copy command used for remote transfer
}

// Open loads an existing db object from dir.
func Open(dir string) (db *Db, err error) {
	dir = filepath.Clean(dir)

	if !canstat(dir) {
		return nil, fmt.Errorf("cannot open: %s", dir)
	}

	// load config
	buf, err := ioutil.ReadFile(filepath.Join(dir, configFile))
	if err != nil {
		return nil, &NotDbError{Dir: dir}
	}
	db = &Db{}
	err = json.Unmarshal(buf, db)
	if err != nil {
		return nil, errors.Wrapf(ErrCorrupt, "%s: %v", configFile, err)
	}
	db.Dir = dir
	if db.Algo == "" {
		db.Algo = DefaultAlgo
	}
	_, err = newHash(db.Algo)
	if err != nil {
		return nil, err
	}

	return
}

// Create initializes a db directory and its contents
func (db Db) Create() (out *Db, err error) {
	defer Return(&err)

	dir := db.Dir
	Assert(dir != "", "empty db dir")

	// if directory exists, make sure it's empty
	if canstat(dir) {
		var files []os.FileInfo
		files, err = ioutil.ReadDir(dir)
		Ck(err)
		if len(files) > 0 {
			return nil, &ExistsError{Dir: dir}
		}
	}

	if db.Algo == "" {
		db.Algo = DefaultAlgo
	}
	_, err = newHash(db.Algo)
	Ck(err)
	if db.SyncCommand == "" {
		db.SyncCommand = DefaultSyncCommand
	}

	err = mkdir(dir)
	Ck(err)

	// the blobs dir is where we store file content
	err = mkdir(filepath.Join(dir, "blobs"))
	Ck(err)

	// the commits dir is where we store snapshots
	err = mkdir(filepath.Join(dir, "commits"))
	Ck(err)

	buf, err := json.Marshal(db)
	Ck(err)
	err = renameio.WriteFile(filepath.Join(dir, configFile), buf, 0644)
	Ck(err)

	// empty HEAD means no commits yet
	err = renameio.WriteFile(filepath.Join(dir, headFile), nil, 0644)
	Ck(err)

	log.Debugf("created db %s algo %s", dir, db.Algo)
	return &db, nil
}

type NotDbError struct {
	Dir string
}

func (e *NotDbError) Error() string {
	return fmt.Sprintf("not a database: %s", e.Dir)
}

type ExistsError struct {
	Dir string
}

func (e *ExistsError) Error() string {
	return fmt.Sprintf("directory not empty: %s", e.Dir)
}

func (db *Db) tmpFile() (fh *os.File, err error) {
	fh, err = ioutil.TempFile(db.Dir, ".tmp-*")
	if err != nil {
		return
	}
	return
}

// Head returns the current commit hash, or "" before the first commit.
func (db *Db) Head() (hash string, err error) {
	buf, err := ioutil.ReadFile(filepath.Join(db.Dir, headFile))
	if os.IsNotExist(err) {
		return "", nil
	}
	if err != nil {
		return
	}
	hash = strings.TrimSpace(string(buf))
	if hash != "" && !db.validHash(hash) {
		return "", errors.Wrapf(ErrCorrupt, "HEAD: %q", hash)
	}
	return
}

// SetHead atomically replaces the HEAD pointer.
func (db *Db) SetHead(hash string) (err error) {
	if hash != "" && !db.HasCommit(hash) {
		return errors.Wrapf(ErrNotFound, "commit %s", hash)
	}
	err = renameio.WriteFile(filepath.Join(db.Dir, headFile), []byte(hash), 0644)
	if err != nil {
		return
	}
	log.Debugf("HEAD -> %q", hash)
	return
}

// list returns the sorted hashes of every object stored in class.
func (db *Db) list(class string) (hashes []string, err error) {
	dir := filepath.Join(db.Dir, classDirs[class])
	files, err := ioutil.ReadDir(dir)
	if err != nil {
		return
	}
	for _, info := range files {
		name := info.Name()
		if info.IsDir() || !db.validHash(name) {
			continue
		}
		hashes = append(hashes, name)
	}
	sort.Strings(hashes)
	return
}

// Rm deletes the file associated with a path and returns an error if
// the file doesn't exist.
func (db *Db) Rm(path *Path) (err error) {
	err = os.Chmod(path.Abs, WRITE)
	if err != nil {
		return err
	}
	return os.Remove(path.Abs)
}

func canstat(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}

func exists(path string) bool {
	_, err := os.Stat(path)
	if os.IsNotExist(err) {
		return false
	}
	return true
}

func mkdir(dir string) (err error) {
	if _, err = os.Stat(dir); os.IsNotExist(err) {
		err = os.MkdirAll(dir, 0755)
		if err != nil {
			return
		}
	}
	return
}
