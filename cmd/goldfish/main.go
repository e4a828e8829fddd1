package main

import (
	"bufio"
	"bytes"
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"runtime"
	"strconv"
	"strings"

	"github.com/docopt/docopt-go"
	"github.com/google/shlex"
	"github.com/sirupsen/logrus"
	log "github.com/sirupsen/logrus"
	"github.com/vu-dinh-hung/goldfish"
	"github.com/vu-dinh-hung/goldfish/diff"
)

const version = "0.1"

const usage = `goldfish

Usage:
  goldfish init
  goldfish clone <url> [<dir>]
  goldfish add <path>...
  goldfish remove <path>...
  goldfish commit
  goldfish status [-w]
  goldfish heads
  goldfish diff [-u] <id1> <id2>
  goldfish cat <id> <path>...
  goldfish log
  goldfish checkout <id>
  goldfish merge <id>
  goldfish push <url>
  goldfish pull <url>
  goldfish shell

Options:
  -h --help     Show this screen.
  -w --watch    Reprint status whenever the working tree changes.
  -u --unified  Show unified diffs.
`

func init() {
	var debug string
	debug = os.Getenv("DEBUG")
	if debug == "1" {
		log.SetLevel(log.DebugLevel)
	}
	logrus.SetReportCaller(true)
	formatter := &logrus.TextFormatter{
		CallerPrettyfier: caller(),
		FieldMap: logrus.FieldMap{
			logrus.FieldKeyFile: "caller",
		},
	}
	formatter.TimestampFormat = "15:04:05.999999999"
	logrus.SetFormatter(formatter)
}

// caller returns string presentation of log caller which is formatted as
// `/path/to/file.go:line_number`. e.g. `/internal/app/api.go:25`
func caller() func(*runtime.Frame) (function string, file string) {
	return func(f *runtime.Frame) (function string, file string) {
		p, _ := os.Getwd()
		return "", fmt.Sprintf("%s:%d gid %d", strings.TrimPrefix(f.File, p), f.Line, getGID())
	}
}

func getGID() uint64 {
	b := make([]byte, 64)
	b = b[:runtime.Stack(b, false)]
	b = bytes.TrimPrefix(b, []byte("goroutine "))
	b = b[:bytes.IndexByte(b, ' ')]
	n, _ := strconv.ParseUint(string(b), 10, 64)
	return n
}

type Opts struct {
	Init     bool
	Clone    bool
	Add      bool
	Remove   bool
	Commit   bool
	Status   bool
	Heads    bool
	Diff     bool
	Cat      bool
	Log      bool
	Checkout bool
	Merge    bool
	Push     bool
	Pull     bool
	Shell    bool
	Watch    bool `docopt:"--watch"`
	Unified  bool `docopt:"--unified"`
	Url      string
	Dir      string
	Path     []string
	Id       string
	Id1      string
	Id2      string
}

func main() {
	// see https://github.com/google/go-cmdtest
	os.Exit(run())
}

func run() (rc int) {
	return dispatch(os.Args[1:], true)
}

// dispatch runs one command line and returns its exit code.
func dispatch(argv []string, interactive bool) (rc int) {
	parser := &docopt.Parser{HelpHandler: docopt.PrintHelpOnly}
	o, err := parser.ParseArgs(usage, argv, version)
	if err != nil {
		return 22
	}
	var opts Opts
	err = o.Bind(&opts)
	if err != nil {
		log.Error(err)
		return 22
	}
	log.Debug(opts)

	if opts.Shell {
		if !interactive {
			fmt.Fprintln(os.Stderr, "Error: already in a shell")
			return 1
		}
		return shell()
	}

	err = execute(&opts)
	if err != nil {
		if goldfish.Informational(err) {
			fmt.Println(err)
			return 0
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func execute(opts *Opts) (err error) {
	switch true {
	case opts.Init:
		return initRepo()
	case opts.Clone:
		return clone(opts.Url, opts.Dir)
	}

	r, err := openRepo()
	if err != nil {
		return
	}
	switch true {
	case opts.Add:
		return add(r, opts.Path)
	case opts.Remove:
		return remove(r, opts.Path)
	case opts.Commit:
		id, err := r.Commit()
		if err != nil {
			return err
		}
		fmt.Printf("committed %s\n", id)
	case opts.Status:
		if opts.Watch {
			return watchStatus(r)
		}
		return status(r)
	case opts.Heads:
		head, err := r.Heads()
		if err != nil {
			return err
		}
		if head == "" {
			head = "(no commits)"
		}
		fmt.Println(head)
	case opts.Diff:
		return diffCommits(r, opts.Id1, opts.Id2, opts.Unified)
	case opts.Cat:
		return cat(r, opts.Id, opts.Path)
	case opts.Log:
		return logCommits(r)
	case opts.Checkout:
		id, err := r.ResolveCommit(opts.Id)
		if err != nil {
			return err
		}
		err = r.Checkout(id)
		if err != nil {
			return err
		}
		fmt.Printf("HEAD is now at %s\n", id)
	case opts.Merge:
		id, err := r.ResolveCommit(opts.Id)
		if err != nil {
			return err
		}
		return merge(r, id)
	case opts.Push:
		err = r.Push(remoteURL(opts.Url))
		if err != nil {
			return
		}
		fmt.Printf("pushed to %s\n", opts.Url)
	case opts.Pull:
		return pull(r, opts.Url)
	}
	return
}

// startDir is where repository discovery begins and what relative
// path arguments are relative to.
func startDir() (dir string, err error) {
	dir, ok := os.LookupEnv("GOLDFISH_DIR")
	if !ok {
		dir, err = os.Getwd()
	}
	return
}

func absPath(path string) (abs string, err error) {
	if filepath.IsAbs(path) {
		return path, nil
	}
	dir, err := startDir()
	if err != nil {
		return
	}
	return filepath.Join(dir, path), nil
}

// remoteURL makes a relative local url absolute.
func remoteURL(url string) string {
	if goldfish.IsRemote(url) || strings.HasPrefix(url, "file://") {
		return url
	}
	abs, err := absPath(url)
	if err != nil {
		return url
	}
	return abs
}

func openRepo() (r *goldfish.Repo, err error) {
	dir, err := startDir()
	if err != nil {
		return
	}
	return goldfish.Open(dir)
}

func initRepo() (err error) {
	dir, err := startDir()
	if err != nil {
		return
	}
	r, err := goldfish.Create(dir, "")
	if err != nil {
		return
	}
	fmt.Printf("Initialized empty goldfish repository in %s\n", r.Db.Dir)
	return
}

func clone(url, dir string) (err error) {
	if dir == "" {
		dir = filepath.Base(strings.TrimRight(url, "/"))
		if i := strings.LastIndex(dir, ":"); i >= 0 {
			dir = dir[i+1:]
		}
	}
	dir, err = absPath(dir)
	if err != nil {
		return
	}
	r, err := goldfish.Clone(remoteURL(url), dir, "")
	if err != nil {
		return
	}
	fmt.Printf("Cloned %s into %s\n", url, r.Root)
	return
}

func add(r *goldfish.Repo, paths []string) (err error) {
	for _, path := range paths {
		abs, err := absPath(path)
		if err != nil {
			return err
		}
		changed, err := r.Track(abs)
		if err != nil {
			return err
		}
		for _, rel := range changed {
			fmt.Printf("added %s\n", rel)
		}
	}
	return
}

func remove(r *goldfish.Repo, paths []string) (err error) {
	for _, path := range paths {
		abs, err := absPath(path)
		if err != nil {
			return err
		}
		removed, err := r.Untrack(abs)
		if err != nil {
			return err
		}
		for _, rel := range removed {
			fmt.Printf("removed %s\n", rel)
		}
	}
	return
}

func status(r *goldfish.Repo) (err error) {
	head, err := r.Heads()
	if err != nil {
		return
	}
	if head == "" {
		fmt.Println("No commits yet")
	} else {
		fmt.Printf("On commit %s\n", head)
	}
	merging, err := r.MergeHead()
	if err != nil {
		return
	}
	if merging != "" {
		fmt.Printf("Merging %s\n", merging)
	}
	st, err := r.Status()
	if err != nil {
		return
	}
	section("Changes to be committed:", []group{
		{"added:   ", st.StagedAdded},
		{"deleted: ", st.StagedDeleted},
		{"modified:", st.StagedModified},
	})
	section("Changes not staged for commit:", []group{
		{"modified:", st.UnstagedModified},
		{"deleted: ", st.UnstagedDeleted},
	})
	if len(st.Untracked) > 0 {
		fmt.Println("Untracked files:")
		for _, path := range st.Untracked {
			fmt.Printf("  %s\n", path)
		}
	}
	if st.Clean() && len(st.Untracked) == 0 {
		fmt.Println("nothing to commit, working tree clean")
	}
	return
}

type group struct {
	label string
	paths []string
}

// section prints title and the labelled paths, or nothing when every
// group is empty.
func section(title string, groups []group) {
	n := 0
	for _, g := range groups {
		n += len(g.paths)
	}
	if n == 0 {
		return
	}
	fmt.Println(title)
	for _, g := range groups {
		for _, path := range g.paths {
			fmt.Printf("  %s %s\n", g.label, path)
		}
	}
}

// watchStatus reprints status on every change until interrupted.
func watchStatus(r *goldfish.Repo) (err error) {
	err = status(r)
	if err != nil {
		return
	}
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return r.Watch(ctx, func() {
		fmt.Println()
		err := status(r)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		}
	})
}

func diffCommits(r *goldfish.Repo, ref1, ref2 string, unified bool) (err error) {
	id1, err := r.ResolveCommit(ref1)
	if err != nil {
		return
	}
	id2, err := r.ResolveCommit(ref2)
	if err != nil {
		return
	}
	diffs, err := r.DiffCommits(id1, id2)
	if err != nil {
		return
	}
	for _, fd := range diffs {
		if unified {
			txt, err := diff.Unified(fd.Old, fd.New, "a/"+fd.Path, "b/"+fd.Path, 3)
			if err != nil {
				return err
			}
			fmt.Print(txt)
			continue
		}
		fmt.Printf("--- %s\n", fd.Path)
		for _, e := range fd.Script {
			fmt.Println(e)
		}
	}
	return
}

func cat(r *goldfish.Repo, ref string, paths []string) (err error) {
	id, err := r.ResolveCommit(ref)
	if err != nil {
		return
	}
	for _, path := range paths {
		abs, err := absPath(path)
		if err != nil {
			return err
		}
		buf, err := r.Cat(id, abs)
		if err != nil {
			return err
		}
		_, err = os.Stdout.Write(buf)
		if err != nil {
			return err
		}
	}
	return
}

func logCommits(r *goldfish.Repo) (err error) {
	commits, err := r.Log()
	if err != nil {
		return
	}
	for _, c := range commits {
		fmt.Printf("commit %s\n", c.Hash)
		for _, p := range c.Parents() {
			fmt.Printf("parent %s\n", p)
		}
	}
	return
}

func merge(r *goldfish.Repo, id string) (err error) {
	rep, err := r.Merge(id)
	if err != nil {
		return
	}
	switch {
	case rep.UpToDate:
		fmt.Println("Already up to date.")
		return
	case rep.FastForward:
		fmt.Printf("Fast-forward to %s\n", rep.Target)
		return
	}
	for _, path := range rep.Added {
		fmt.Printf("added %s\n", path)
	}
	for _, path := range rep.Removed {
		fmt.Printf("kept %s\n", path)
	}
	for _, path := range rep.Merged {
		fmt.Printf("merged %s\n", path)
	}
	for _, path := range rep.Conflicted {
		fmt.Printf("CONFLICT %s\n", path)
	}
	if len(rep.Conflicted) > 0 {
		fmt.Println("Fix conflicts, add the files, then commit.")
	} else {
		fmt.Println("Merge staged; commit to record it.")
	}
	return
}

func pull(r *goldfish.Repo, url string) (err error) {
	head, err := r.Pull(remoteURL(url))
	if err != nil {
		return
	}
	if head == "" {
		fmt.Println("remote has no commits")
		return
	}
	fmt.Printf("fetched %s\n", head)
	return merge(r, head)
}

// shell reads command lines from stdin until EOF or "exit".
func shell() (rc int) {
	prompt := false
	if info, err := os.Stdin.Stat(); err == nil && info.Mode()&os.ModeCharDevice != 0 {
		prompt = true
	}
	scanner := bufio.NewScanner(os.Stdin)
	for {
		if prompt {
			fmt.Print("goldfish> ")
		}
		if !scanner.Scan() {
			break
		}
		parts, err := shlex.Split(scanner.Text())
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			continue
		}
		if len(parts) == 0 {
			continue
		}
		if parts[0] == "exit" || parts[0] == "quit" {
			break
		}
		if parts[0] == "goldfish" {
			parts = parts[1:]
		}
		dispatch(parts, false)
	}
	if prompt {
		fmt.Println()
	}
	err := scanner.Err()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return
}
