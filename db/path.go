package db

import (
	"fmt"
	"path/filepath"
	"strings"
	"syscall"

	. "github.com/stevegt/goadapt"
)

// classDirs maps an object class to its directory under Db.Dir.
var classDirs = map[string]string{
	"blob":   "blobs",
	"commit": "commits",
}

// Path locates one object.  It can be built from a canpath
// ("blob/<hash>"), a relpath ("blobs/<hash>"), or an abspath under
// db.Dir.
type Path struct {
	Db    *Db
	Raw   string
	Abs   string // absolute
	Rel   string // relative
	Canon string // canonical
	Class string
	Hash  string
}

func (path Path) New(db *Db, raw string) (res *Path, err error) {
	defer Return(&err)
	path.Db = db
	path.Raw = raw

	clean := filepath.ToSlash(filepath.Clean(raw))

	// remove db.Dir
	prefix := filepath.ToSlash(path.Db.Dir) + "/"
	if strings.HasPrefix(clean, prefix) {
		clean = strings.TrimPrefix(clean, prefix)
	}

	// split into parts
	parts := strings.Split(clean, "/")
	ErrnoIf(len(parts) != 2, syscall.EINVAL, "malformed path: %s", raw)

	class := strings.TrimSuffix(parts[0], "s")
	_, ok := classDirs[class]
	ErrnoIf(!ok, syscall.EINVAL, "unknown class in path: %s", raw)
	path.Class = class

	path.Hash = strings.ToLower(parts[1])
	ErrnoIf(!db.validHash(path.Hash), syscall.EINVAL, "malformed hash in path: %s", raw)

	path.Rel = filepath.Join(classDirs[class], path.Hash)
	path.Abs = filepath.Join(path.Db.Dir, path.Rel)
	path.Canon = class + "/" + path.Hash

	return &path, nil
}

// objectPath is the Path of hash in class; a malformed hash is
// reported as not found since nothing can be stored under it.
func (db *Db) objectPath(class, hash string) (path *Path, err error) {
	path, err = Path{}.New(db, class+"/"+hash)
	if err != nil {
		return nil, fmt.Errorf("%w: %s %q: %v", ErrNotFound, class, hash, err)
	}
	return
}

func (path *Path) header() string {
	return path.Class + "\n"
}
