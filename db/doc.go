/*

Package db is the content-addressed object store behind a goldfish
repository.  Every object is a write-once file named after the
cryptographic hash of its body.

Vocabulary:

- dir: the repository control directory (".dvcs"), the base of the store
- abspath: absolute path on hard disk
- relpath: path relative to db.Dir, e.g. "blobs/<hash>"
- canpath: canonical path, class plus hash, e.g. "blob/<hash>"
- hash: lowercase hex digest of an object body
- algo: name (string) of the hash algorithm, fixed at creation
- class: "blob" or "commit"; also the first line of every object file
- blob: raw content of one tracked file; stored as "blob\n" + content
- commit: snapshot node; stored as "commit\n" followed by zero or more
  "parent <hash>" lines and one or more "tracked_file <path> <hash>"
  lines
- manifest: mapping of repository-relative path to blob hash
- HEAD: single-line file naming the current commit, empty before the
  first commit

The hash of an object covers the body only, never the class header, so
a blob's address is the digest of the file content itself and a
commit's address is the digest of its parent and manifest lines.

*/

package db
