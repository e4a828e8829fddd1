package db

import (
	"fmt"
	"io/ioutil"
	"os"
	"path/filepath"
	"testing"

	"github.com/pkg/errors"
	. "github.com/stevegt/goadapt"
)

const testDbDirPrefix = "goldfish-test-"

func setup(t *testing.T, db *Db) *Db {
	var err error
	var dir string

	if db == nil {
		db = &Db{}
	}
	Assert(db.Dir == "")

	debug := os.Getenv("DEBUG")
	if debug == "1" {
		dir, err = ioutil.TempDir("", testDbDirPrefix)
		Ck(err)
		fmt.Println(dir)
		// no cleanup
	} else {
		dir = t.TempDir()
		// automatically cleaned up
	}
	db.Dir = filepath.Join(dir, ".dvcs")

	db, err = db.Create()
	Ck(err)
	return db
}

func tassert(t *testing.T, cond bool, txt string, args ...interface{}) {
	t.Helper() // cause file:line info to show caller
	if !cond {
		t.Fatalf(txt, args...)
	}
}

func mkbuf(s string) []byte {
	tmp := []byte(s)
	return tmp
}

func TestHash(t *testing.T) {
	val := mkbuf("somevalue")
	binhash, err := Hash("sha256", val)
	if err != nil {
		t.Fatal(err)
	}
	hexhash := bin2hex(binhash)
	expect := "70a524688ced8e45d26776fd4dc56410725b566cd840c044546ab30c4b499342"
	tassert(t, expect == hexhash, "expected %q got %q", expect, hexhash)

	hexhash, err = HexHash("sha512", val)
	tassert(t, err == nil, "%v", err)
	expect = "8e77e71abe427ced1c93d883aeeddfa57ce39b787f229caaf176fdd71353f3466d340a2cdb5a219c429c53ad37f2f144c7ce01b985b6b33e397c4b8fd1433cc3"
	tassert(t, expect == hexhash, "expected %q got %q", expect, hexhash)

	_, err = Hash("md4", val)
	tassert(t, err != nil, "expected error for unknown algo")
}

func TestCreate(t *testing.T) {
	db := setup(t, nil)

	for _, sub := range []string{"blobs", "commits"} {
		info, err := os.Stat(filepath.Join(db.Dir, sub))
		tassert(t, err == nil && info.IsDir(), "missing %s: %v", sub, err)
	}
	head, err := db.Head()
	tassert(t, err == nil, "%v", err)
	tassert(t, head == "", "expected empty HEAD, got %q", head)

	// a second create in the same place must fail
	_, err = Db{Dir: db.Dir}.Create()
	_, ok := err.(*ExistsError)
	tassert(t, ok, "expected ExistsError, got %#v", err)
}

func TestOpen(t *testing.T) {
	db := setup(t, &Db{Algo: "sha512"})
	got, err := Open(db.Dir)
	tassert(t, err == nil, "%v", err)
	tassert(t, got.Algo == "sha512", "algo not persisted: %q", got.Algo)
	tassert(t, got.SyncCommand == DefaultSyncCommand, "sync command %q", got.SyncCommand)

	_, err = Open(t.TempDir())
	_, ok := err.(*NotDbError)
	tassert(t, ok, "expected NotDbError, got %#v", err)

	err = ioutil.WriteFile(filepath.Join(db.Dir, configFile), mkbuf("{"), 0644)
	tassert(t, err == nil, "%v", err)
	_, err = Open(db.Dir)
	tassert(t, errors.Is(err, ErrCorrupt), "expected ErrCorrupt, got %v", err)
}

func TestHead(t *testing.T) {
	db := setup(t, nil)

	bogus := "7669a6133e007a9213e26476eb627aced7577752b0d6bbd19512c210361b287e"
	err := db.SetHead(bogus)
	tassert(t, errors.Is(err, ErrNotFound), "expected ErrNotFound, got %v", err)

	blob, err := db.PutBlob(mkbuf("hello"))
	tassert(t, err == nil, "%v", err)
	id, err := db.PutCommit("", nil, Manifest{"f.txt": blob})
	tassert(t, err == nil, "%v", err)
	head, err := db.Head()
	tassert(t, err == nil && head == "", "PutCommit moved HEAD to %q", head)

	err = db.SetHead(id)
	tassert(t, err == nil, "%v", err)
	head, err = db.Head()
	tassert(t, err == nil && head == id, "expected %s, got %q %v", id, head, err)

	err = ioutil.WriteFile(filepath.Join(db.Dir, headFile), mkbuf("garbage"), 0644)
	tassert(t, err == nil, "%v", err)
	_, err = db.Head()
	tassert(t, errors.Is(err, ErrCorrupt), "expected ErrCorrupt, got %v", err)
}

func TestRm(t *testing.T) {
	db := setup(t, nil)
	hash, err := db.PutBlob(mkbuf("somevalue"))
	tassert(t, err == nil, "%v", err)
	path, err := Path{}.New(db, "blob/"+hash)
	tassert(t, err == nil, "%v", err)
	err = db.Rm(path)
	tassert(t, err == nil, "%v", err)
	_, err = db.GetBlob(hash)
	tassert(t, errors.Is(err, ErrNotFound), "blob not deleted: %v", err)
}
