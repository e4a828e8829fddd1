package db

import (
	"fmt"
	"strings"

	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Commit is a parsed commit record.
type Commit struct {
	Hash      string
	Parent    string   // direct parent, "" for a root commit
	Secondary []string // merge parents
	Manifest  Manifest
}

// Parents returns the direct parent followed by any secondary parents.
func (c *Commit) Parents() (parents []string) {
	if c.Parent != "" {
		parents = append(parents, c.Parent)
	}
	return append(parents, c.Secondary...)
}

// body renders the commit as stored after the class header.
func (c *Commit) body() []byte {
	var b strings.Builder
	for _, parent := range c.Parents() {
		fmt.Fprintf(&b, "parent %s\n", parent)
	}
	for _, path := range c.Manifest.Paths() {
		fmt.Fprintf(&b, "tracked_file %s %s\n", path, c.Manifest[path])
	}
	return []byte(b.String())
}

// PutCommit writes the commit record without touching HEAD and
// returns its hash.
func (db *Db) PutCommit(parent string, secondary []string, manifest Manifest) (hash string, err error) {
	if len(manifest) == 0 {
		return "", ErrEmptyCommit
	}
	if parent == "" && len(secondary) > 0 {
		return "", fmt.Errorf("secondary parents without a direct parent")
	}
	c := &Commit{Parent: parent, Secondary: secondary, Manifest: manifest}
	for _, p := range c.Parents() {
		if !db.HasCommit(p) {
			return "", errors.Wrapf(ErrNotFound, "parent commit %s", p)
		}
	}
	for path, h := range manifest {
		if path == "" || strings.ContainsAny(path, "\n") || !db.validHash(h) {
			return "", fmt.Errorf("invalid manifest entry %q %q", path, h)
		}
	}

	file, err := CreateWORM(db, "commit")
	if err != nil {
		return
	}
	_, err = file.Write(c.body())
	if err != nil {
		return
	}
	err = file.Close()
	if err != nil {
		return
	}
	return file.Path.Hash, nil
}

// CreateCommit writes a commit record and then moves HEAD to it.
func (db *Db) CreateCommit(parent string, secondary []string, manifest Manifest) (hash string, err error) {
	hash, err = db.PutCommit(parent, secondary, manifest)
	if err != nil {
		return
	}
	err = db.SetHead(hash)
	if err != nil {
		return
	}
	log.Debugf("commit %s parent %q secondary %v", hash, parent, secondary)
	return
}

// GetCommit reads and parses the commit stored under hash.
func (db *Db) GetCommit(hash string) (c *Commit, err error) {
	path, err := db.objectPath("commit", hash)
	if err != nil {
		return
	}
	file, err := OpenWORM(db, path)
	if err != nil {
		return
	}
	defer file.Close()
	buf, err := file.ReadAll()
	if err != nil {
		return
	}
	c, err = parseCommit(string(buf))
	if err != nil {
		return nil, errors.Wrapf(err, "commit %s", hash)
	}
	c.Hash = path.Hash
	return
}

func parseCommit(body string) (c *Commit, err error) {
	c = &Commit{Manifest: Manifest{}}
	lines := strings.Split(strings.TrimSuffix(body, "\n"), "\n")
	inManifest := false
	for _, line := range lines {
		switch {
		case strings.HasPrefix(line, "parent ") && !inManifest:
			id := strings.TrimPrefix(line, "parent ")
			if c.Parent == "" {
				c.Parent = id
			} else {
				c.Secondary = append(c.Secondary, id)
			}
		case strings.HasPrefix(line, "tracked_file "):
			inManifest = true
			path, hash, ok := splitLast(strings.TrimPrefix(line, "tracked_file "))
			if !ok {
				return nil, errors.Wrapf(ErrCorrupt, "bad manifest line %q", line)
			}
			if _, dup := c.Manifest[path]; dup {
				return nil, errors.Wrapf(ErrCorrupt, "duplicate path %q", path)
			}
			c.Manifest[path] = hash
		default:
			return nil, errors.Wrapf(ErrCorrupt, "unexpected line %q", line)
		}
	}
	if len(c.Manifest) == 0 {
		return nil, errors.Wrapf(ErrCorrupt, "%v", ErrEmptyCommit)
	}
	return
}

func (db *Db) HasCommit(hash string) bool {
	path, err := db.objectPath("commit", hash)
	if err != nil {
		return false
	}
	return exists(path.Abs)
}

// Commits lists every stored commit hash.
func (db *Db) Commits() ([]string, error) {
	return db.list("commit")
}
