package db

import (
	"github.com/pkg/errors"
)

// Blob is the stored content of one tracked file.
type Blob struct {
	Db *Db
	*WORM
}

func (blob Blob) New(db *Db, file *WORM) *Blob {
	blob.Db = db
	blob.WORM = file
	return &blob
}

// PutBlob stores content and returns its hash.  Storing the same
// content twice returns the same hash and leaves one object.
func (db *Db) PutBlob(content []byte) (hash string, err error) {
	file, err := CreateWORM(db, "blob")
	if err != nil {
		return
	}
	blob := Blob{}.New(db, file)
	_, err = blob.Write(content)
	if err != nil {
		return
	}
	err = blob.Close()
	if err != nil {
		return
	}
	return blob.Path.Hash, nil
}

// OpenBlob returns a readable Blob for hash.
func (db *Db) OpenBlob(hash string) (blob *Blob, err error) {
	path, err := db.objectPath("blob", hash)
	if err != nil {
		return
	}
	file, err := OpenWORM(db, path)
	if err != nil {
		return
	}
	return Blob{}.New(db, file), nil
}

// GetBlob returns the content stored under hash.
func (db *Db) GetBlob(hash string) (content []byte, err error) {
	blob, err := db.OpenBlob(hash)
	if err != nil {
		return
	}
	defer blob.Close()
	content, err = blob.ReadAll()
	if err != nil {
		return nil, errors.Wrapf(err, "blob %s", hash)
	}
	return
}

func (db *Db) HasBlob(hash string) bool {
	path, err := db.objectPath("blob", hash)
	if err != nil {
		return false
	}
	return exists(path.Abs)
}

// Blobs lists every stored blob hash.
func (db *Db) Blobs() ([]string, error) {
	return db.list("blob")
}
