package db

import (
	"fmt"
	"sort"
	"strings"

	"github.com/pkg/errors"
)

// Manifest maps repository-relative slash paths to blob hashes.
type Manifest map[string]string

// Paths returns the manifest keys in sorted order.
func (m Manifest) Paths() (paths []string) {
	for path := range m {
		paths = append(paths, path)
	}
	sort.Strings(paths)
	return
}

func (m Manifest) Equal(other Manifest) bool {
	if len(m) != len(other) {
		return false
	}
	for path, hash := range m {
		h, ok := other[path]
		if !ok || h != hash {
			return false
		}
	}
	return true
}

func (m Manifest) Copy() Manifest {
	out := make(Manifest, len(m))
	for path, hash := range m {
		out[path] = hash
	}
	return out
}

// Txt renders the manifest as sorted "<path> <hash>" lines.
func (m Manifest) Txt() string {
	var b strings.Builder
	for _, path := range m.Paths() {
		fmt.Fprintf(&b, "%s %s\n", path, m[path])
	}
	return b.String()
}

// ParseManifest is the inverse of Txt.  Blank lines are ignored; any
// other line without a space is an error.
func ParseManifest(txt string) (m Manifest, err error) {
	m = Manifest{}
	for _, line := range strings.Split(txt, "\n") {
		if line == "" {
			continue
		}
		path, hash, ok := splitLast(line)
		if !ok {
			return nil, errors.Wrapf(ErrCorrupt, "manifest line %q", line)
		}
		m[path] = hash
	}
	return
}

// splitLast splits s at its last space.  Hashes never contain a
// space, so paths are free to.
func splitLast(s string) (head, tail string, ok bool) {
	i := strings.LastIndex(s, " ")
	if i <= 0 || i == len(s)-1 {
		return
	}
	return s[:i], s[i+1:], true
}
