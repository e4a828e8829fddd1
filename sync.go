package goldfish

import (
	"bytes"
	"fmt"
	"io/ioutil"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/google/shlex"
	"github.com/pkg/fileutils"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
	"github.com/vu-dinh-hung/goldfish/db"
)

// Syncer mirrors the directory tree at src into dst.
type Syncer interface {
	Sync(src, dst string) error
}

// LocalSyncer copies between two local directories.  Files in dst
// that src lacks are left alone.
type LocalSyncer struct{}

func (LocalSyncer) Sync(src, dst string) (err error) {
	defer Return(&err)
	info, err := os.Stat(src)
	Ck(err)
	ErrnoIf(!info.IsDir(), syscall.ENOTDIR, "not a directory: %s", src)
	err = filepath.Walk(src, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, err := filepath.Rel(src, path)
		if err != nil {
			return err
		}
		target := filepath.Join(dst, rel)
		if info.IsDir() {
			return os.MkdirAll(target, 0755)
		}
		if !info.Mode().IsRegular() {
			return nil
		}
		// objects are read-only
		if exists(target) {
			err = os.Chmod(target, 0644)
			if err != nil {
				return err
			}
		}
		err = fileutils.CopyFile(target, path)
		if err != nil {
			return err
		}
		return os.Chmod(target, info.Mode().Perm())
	})
	Ck(err)
	log.Debugf("synced %s -> %s", src, dst)
	return
}

// CommandSyncer runs an external copy command such as "rsync -a" with
// src and dst appended.
type CommandSyncer struct {
	Command string
}

func (s CommandSyncer) Sync(src, dst string) (err error) {
	argv, err := shlex.Split(s.Command)
	if err != nil {
		return
	}
	if len(argv) == 0 {
		return fmt.Errorf("empty sync command")
	}
	argv = append(argv, strings.TrimSuffix(src, "/")+"/", strings.TrimSuffix(dst, "/")+"/")
	cmd := exec.Command(argv[0], argv[1:]...)
	var stderr bytes.Buffer
	cmd.Stderr = &stderr
	log.Debugf("sync: %v", argv)
	err = cmd.Run()
	if err != nil {
		return fmt.Errorf("%s: %v: %s", argv[0], err, strings.TrimSpace(stderr.String()))
	}
	return
}

// IsRemote reports whether url names a location on another host,
// either a scheme URL other than file:// or scp-style host:path.
func IsRemote(url string) bool {
	if strings.HasPrefix(url, "file://") {
		return false
	}
	if strings.Contains(url, "://") {
		return true
	}
	i := strings.Index(url, ":")
	if i <= 0 {
		return false
	}
	// a drive letter or a colon after the first slash is still local
	return i > 1 && !strings.Contains(url[:i], "/")
}

// NewSyncer returns a CommandSyncer running command for remote urls
// and a LocalSyncer otherwise.
func NewSyncer(url, command string) Syncer {
	if IsRemote(url) {
		if command == "" {
			command = db.DefaultSyncCommand
		}
		return CommandSyncer{Command: command}
	}
	return LocalSyncer{}
}

// controlURL is the control dir of the repository rooted at url.
func controlURL(url string) string {
	url = strings.TrimPrefix(url, "file://")
	return strings.TrimSuffix(url, "/") + "/" + ControlDir
}

// syncer picks the transfer for url; GOLDFISH_SYNC overrides the
// configured command.
func (r *Repo) syncer(url string) Syncer {
	command := r.Db.SyncCommand
	if env, ok := os.LookupEnv("GOLDFISH_SYNC"); ok {
		command = env
	}
	return NewSyncer(url, command)
}

// Push mirrors the local control dir over the control dir of the
// repository at url.  There is no locking; the remote is overwritten
// wholesale, HEAD included.
func (r *Repo) Push(url string) (err error) {
	dst := controlURL(url)
	if !IsRemote(url) {
		err = os.MkdirAll(dst, 0755)
		if err != nil {
			return
		}
	}
	err = r.syncer(url).Sync(r.Db.Dir, dst)
	if err != nil {
		return errors.Wrapf(err, "push %s", url)
	}
	log.Debugf("pushed to %s", url)
	return
}

// Pull fetches every object of the repository at url into the local
// store and returns the remote HEAD.  Nothing else changes locally;
// merging the returned id is up to the caller.
func (r *Repo) Pull(url string) (remoteHead string, err error) {
	defer Return(&err)
	tmp, err := ioutil.TempDir(r.Db.Dir, pullDirGlob)
	Ck(err)
	defer os.RemoveAll(tmp)

	err = r.syncer(url).Sync(controlURL(url), tmp)
	if err != nil {
		return "", errors.Wrapf(err, "pull %s", url)
	}
	remote, err := db.Open(tmp)
	Ck(err)
	remoteHead, err = remote.Head()
	Ck(err)

	n, err := r.importObjects(remote)
	Ck(err)
	if remoteHead != "" && !r.Db.HasCommit(remoteHead) {
		return "", errors.Wrapf(db.ErrCorrupt, "remote HEAD %s has no commit", remoteHead)
	}
	log.Debugf("pulled %d objects from %s, HEAD %s", n, url, remoteHead)
	return
}

// importObjects copies the objects of other that the local store
// lacks, checking each against its address.
func (r *Repo) importObjects(other *db.Db) (n int, err error) {
	for _, class := range []string{"blob", "commit"} {
		var hashes []string
		if class == "blob" {
			hashes, err = other.Blobs()
		} else {
			hashes, err = other.Commits()
		}
		if err != nil {
			return
		}
		for _, hash := range hashes {
			src, err := db.Path{}.New(other, class+"/"+hash)
			if err != nil {
				return n, err
			}
			dst, err := db.Path{}.New(r.Db, class+"/"+hash)
			if err != nil {
				return n, err
			}
			if exists(dst.Abs) {
				continue
			}
			err = other.Verify(src)
			if err != nil {
				return n, err
			}
			err = fileutils.CopyFile(dst.Abs, src.Abs)
			if err != nil {
				return n, err
			}
			err = os.Chmod(dst.Abs, db.READ)
			if err != nil {
				return n, err
			}
			n++
		}
	}
	return
}

// Clone copies the repository at url into dir and checks out its
// HEAD.
func Clone(url, dir, command string) (r *Repo, err error) {
	root, err := filepath.Abs(dir)
	if err != nil {
		return
	}
	control := filepath.Join(root, ControlDir)
	if exists(control) {
		return nil, errors.Wrapf(ErrExists, "%s", control)
	}
	err = os.MkdirAll(control, 0755)
	if err != nil {
		return
	}
	if env, ok := os.LookupEnv("GOLDFISH_SYNC"); ok {
		command = env
	}
	err = NewSyncer(url, command).Sync(controlURL(url), control)
	if err != nil {
		return nil, errors.Wrapf(err, "clone %s", url)
	}
	r, err = Open(root)
	if err != nil {
		return
	}
	head, err := r.Db.Head()
	if err != nil {
		return
	}
	if head == "" {
		err = r.writeManifest(db.Manifest{})
		return
	}
	err = r.Checkout(head)
	return
}

func exists(path string) bool {
	_, err := os.Stat(path)
	return err == nil
}
