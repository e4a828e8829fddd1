package db

import (
	"fmt"
	"hash"
	"io"
	"os"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
)

// file modes
const (
	NEW   = 0
	READ  = 0444
	WRITE = 0644
)

// WORM is a write-once-read-many object file.  A new WORM streams
// into a temp file in Db.Dir while hashing the body; Close renames the
// temp file to its content address.  An opened WORM reads the body
// with the class header stripped.
type WORM struct {
	Db *Db
	*Path
	_mode os.FileMode
	fh    *os.File
	hash  hash.Hash
}

func CreateWORM(db *Db, class string) (file *WORM, err error) {
	defer Return(&err)
	_, ok := classDirs[class]
	Assert(ok, "unknown class %q", class)
	file = &WORM{}
	file.Db = db
	// we don't call Path.New() here 'cause we don't know the hash yet
	file.Path = &Path{Db: db, Class: class}
	file.Mode(WRITE)
	file.hash, err = newHash(db.Algo)
	Ck(err)
	return
}

func OpenWORM(db *Db, path *Path) (file *WORM, err error) {
	if !exists(path.Abs) {
		return nil, errors.Wrapf(ErrNotFound, "%s", path.Canon)
	}
	file = &WORM{}
	file.Db = db
	file.Path = path
	file._mode = READ
	return
}

// gets called by Read(), Write(), etc.
func (file *WORM) ckopen() (err error) {
	if file.fh != nil {
		return
	}
	header := file.header()
	switch file.Mode() {
	case WRITE:
		// open temporary file
		file.fh, err = file.Db.tmpFile()
		if err != nil {
			return
		}
		// the header goes to disk but not into the hash
		_, err = file.fh.Write([]byte(header))
		if err != nil {
			return
		}
	case READ:
		// open existing file
		file.fh, err = os.Open(file.Path.Abs)
		if err != nil {
			return
		}
		// strip file header
		buf := make([]byte, len(header))
		n, rerr := io.ReadFull(file.fh, buf)
		if rerr != nil || string(buf[:n]) != header {
			file.fh.Close()
			file.fh = nil
			return errors.Wrapf(ErrCorrupt, "malformed header %q in %s", string(buf[:n]), file.Path.Canon)
		}
	default:
		Assert(false, "bad mode %v", file.Mode())
	}
	return
}

// Close finishes a WORM.  For a writeable WORM this computes the hash,
// moves the temp file into place, and leaves the object read-only.
func (file *WORM) Close() (err error) {
	defer Return(&err)
	switch file.Mode() {
	case NEW, READ:
		if file.fh == nil {
			return
		}
		// no err check needed because readonly
		file.fh.Close()
		file.fh = nil
		return
	case WRITE:
		// an empty body never called Write, so open now to get the header
		// onto disk
		err = file.ckopen()
		Ck(err)

		tmpname := file.fh.Name()
		err = file.fh.Close()
		Ck(err)
		file.fh = nil

		// now that we know what the data's hash is, we can replace tmp
		// Path with permanent Path
		hexhash := bin2hex(file.hash.Sum(nil))
		file.Path, err = Path{}.New(file.Db, fmt.Sprintf("%s/%s", file.Path.Class, hexhash))
		Ck(err)

		if exists(file.Path.Abs) {
			// identical content is already stored
			err = os.Remove(tmpname)
			Ck(err)
			log.Debugf("%s already stored", file.Path.Canon)
		} else {
			err = os.Rename(tmpname, file.Path.Abs)
			Ck(err)
			log.Debugf("stored %s", file.Path.Canon)
		}
		file.Mode(READ)
		return
	}
	return
}

func (file *WORM) Mode(newmode ...os.FileMode) (oldmode os.FileMode) {
	Assert(len(newmode) < 2)
	oldmode = file._mode
	if len(newmode) > 0 {
		file._mode = newmode[0]
		if file.Path.Abs != "" && exists(file.Path.Abs) {
			err := os.Chmod(file.Path.Abs, file._mode)
			Ck(err)
		}
	}
	return
}

// Read reads body bytes into buf.  Supports the io.Reader interface.
func (file *WORM) Read(buf []byte) (n int, err error) {
	if file.Mode() != READ {
		return 0, fmt.Errorf("cannot read from unfinished object")
	}
	err = file.ckopen()
	if err != nil {
		return
	}
	return file.fh.Read(buf)
}

// ReadAll returns the whole body.
func (file *WORM) ReadAll() (buf []byte, err error) {
	err = file.ckopen()
	if err != nil {
		return
	}
	for {
		b := make([]byte, 4096)
		n, err := file.fh.Read(b)
		buf = append(buf, b[:n]...)
		if errors.Cause(err) == io.EOF {
			break
		}
		if err != nil {
			return nil, err
		}
	}
	return
}

// Write feeds data into both the hash and the temp file.  Large
// objects can be written using multiple Write() calls.  Supports the
// io.Writer interface.
func (file *WORM) Write(data []byte) (n int, err error) {
	if file.Mode() == READ {
		err = fmt.Errorf("cannot write to existing object: %s", file.Path.Canon)
		return
	}

	err = file.ckopen()
	if err != nil {
		return
	}

	// add data to hash digest
	_, err = file.hash.Write(data)
	if err != nil {
		return
	}

	// write data to disk file
	return file.fh.Write(data)
}

// Verify re-hashes the object at path and checks the result against
// its address.
func (db *Db) Verify(path *Path) (err error) {
	file, err := OpenWORM(db, path)
	if err != nil {
		return
	}
	defer file.Close()
	buf, err := file.ReadAll()
	if err != nil {
		return
	}
	got, err := HexHash(db.Algo, buf)
	if err != nil {
		return
	}
	if got != path.Hash {
		return errors.Wrapf(ErrCorrupt, "%s hashes to %s", path.Canon, got)
	}
	return
}
