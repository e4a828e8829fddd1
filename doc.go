/*

Goldfish is a small distributed version-control engine.  A repository
is a working tree plus a hidden control directory holding a
content-addressed object store (package db), the staging manifest, and
the HEAD pointer.

Vocabulary:

- root: top of the working tree; the directory holding ".dvcs"
- control dir: root/.dvcs, the object store and all mutable state
- relpath: slash-separated path of a working file relative to root
- blob: stored content of one file, named by its hash
- commit: snapshot of a manifest plus zero or more parent ids
- manifest: relpath -> blob hash
- staging manifest: the manifest under construction, kept in
  .dvcs/tracked_files
- staging dir: .dvcs/staging, scratch copies of staged files between
  track and commit, and between blob and working tree on checkout
- HEAD: the current commit id, empty before the first commit
- MERGE_HEAD: the id of a merged-in commit, recorded until the next
  commit makes it a secondary parent

All state lives on disk and is reached through a *Repo; nothing
consults the process working directory.  A repository assumes a
single writer.

*/

package goldfish
