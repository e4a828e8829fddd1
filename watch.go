package goldfish

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"
	log "github.com/sirupsen/logrus"
	. "github.com/stevegt/goadapt"
)

// WatchDelay is how long the working tree must be quiet after a change
// before Watch reports it.
var WatchDelay = 200 * time.Millisecond

// Watch calls fn each time the working tree settles after a change,
// until ctx is done.  The control dir is not watched.
func (r *Repo) Watch(ctx context.Context, fn func()) (err error) {
	defer Return(&err)
	watcher, err := fsnotify.NewWatcher()
	Ck(err)
	defer watcher.Close()

	err = r.watchDirs(watcher, r.Root)
	Ck(err)

	var debounce <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case event, ok := <-watcher.Events:
			if !ok {
				return nil
			}
			if r.inControlDir(event.Name) {
				continue
			}
			log.Debugf("watch: %v", event)
			if event.Op&fsnotify.Create == fsnotify.Create {
				info, serr := os.Stat(event.Name)
				if serr == nil && info.IsDir() {
					err = r.watchDirs(watcher, event.Name)
					Ck(err)
				}
			}
			debounce = time.After(WatchDelay)
		case err, ok := <-watcher.Errors:
			if !ok {
				return nil
			}
			return err
		case <-debounce:
			debounce = nil
			fn()
		}
	}
}

// watchDirs adds dir and its subdirs, minus the control dir.
func (r *Repo) watchDirs(watcher *fsnotify.Watcher, dir string) error {
	return filepath.Walk(dir, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if !info.IsDir() {
			return nil
		}
		if r.inControlDir(path) {
			return filepath.SkipDir
		}
		return watcher.Add(path)
	})
}

func (r *Repo) inControlDir(path string) bool {
	control := filepath.Join(r.Root, ControlDir)
	return path == control || strings.HasPrefix(path, control+string(filepath.Separator))
}
