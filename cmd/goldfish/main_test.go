package main

import (
	"flag"
	"fmt"
	"io/ioutil"
	"strings"
	"testing"

	"github.com/google/go-cmdtest"
)

var update = flag.Bool("update", false, "update test files with results")

// write FILE WORDS... replaces FILE with the words joined by spaces;
// a "|" word starts a new line.
func write(args []string, inputFile string) (out []byte, err error) {
	if len(args) < 1 {
		return nil, fmt.Errorf("usage: write FILE [WORDS...]")
	}
	txt := strings.Join(args[1:], " ")
	txt = strings.ReplaceAll(txt, " | ", "\n")
	return nil, ioutil.WriteFile(args[0], []byte(txt+"\n"), 0644)
}

func TestCLI(t *testing.T) {
	ts, err := cmdtest.Read("testdata")
	if err != nil {
		t.Fatal(err)
	}
	ts.KeepRootDirs = true
	ts.Commands["goldfish"] = cmdtest.InProcessProgram("goldfish", run)
	ts.Commands["write"] = write
	ts.Run(t, *update)
}

func TestRemoteURL(t *testing.T) {
	for _, url := range []string{"host:/srv/repo", "ssh://host/srv/repo", "file:///srv/repo", "/srv/repo"} {
		if got := remoteURL(url); got != url {
			t.Fatalf("remoteURL(%q) = %q", url, got)
		}
	}
}
