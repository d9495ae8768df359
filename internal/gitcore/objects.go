// Package gitcore implements the content-addressed object store, refs,
// index, diff/merge engine, and working-copy reconciler for the vcs.
package gitcore

import (
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sort"
)

// ObjectKind is the classification produced by ClassifyType: it is NOT a
// reliable discriminant between blob and tree (see the note on
// ClassifyType), only a best-effort label used by plumbing commands like
// cat-file.
type ObjectKind string

const (
	KindCommit ObjectKind = "commit"
	KindTree   ObjectKind = "tree"
	KindBlob   ObjectKind = "blob"
)

// Store is the content-addressed object store rooted at <gitDir>/objects.
// Every write is idempotent: writing the same bytes twice yields the same
// hash and leaves the store unchanged the second time.
type Store struct {
	dir string
}

// NewStore opens the object store rooted at <gitDir>/objects. The directory
// is created lazily by Write, not here.
func NewStore(gitDir string) *Store {
	return &Store{dir: filepath.Join(gitDir, "objects")}
}

func (s *Store) path(h Hash) string {
	return filepath.Join(s.dir, string(h))
}

// Write computes the hash of content and stores it, returning the hash.
// Writing identical content twice is a no-op the second time (O1: an
// object's filename always equals the hash of its content).
func (s *Store) Write(content []byte) (Hash, error) {
	h := HashContent(content)
	p := s.path(h)
	if _, err := os.Stat(p); err == nil {
		return h, nil
	}
	if err := os.MkdirAll(s.dir, 0o755); err != nil {
		return "", fmt.Errorf("gitcore: creating objects dir: %w", err)
	}
	tmp, err := os.CreateTemp(s.dir, "obj-*.tmp")
	if err != nil {
		return "", fmt.Errorf("gitcore: staging object: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.Write(content); err != nil {
		tmp.Close() //nolint:errcheck
		os.Remove(tmpPath)
		return "", fmt.Errorf("gitcore: writing object: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("gitcore: closing object: %w", err)
	}
	if err := os.Rename(tmpPath, p); err != nil {
		os.Remove(tmpPath)
		return "", fmt.Errorf("gitcore: finalizing object: %w", err)
	}
	return h, nil
}

// Read returns the stored content for hash, or ok=false if no such object
// exists. A missing object is not an error — callers encode the meaning.
func (s *Store) Read(h Hash) (content []byte, ok bool) {
	data, err := os.ReadFile(s.path(h))
	if err != nil {
		return nil, false
	}
	return data, true
}

// Exists reports whether an object with the given hash is present.
func (s *Store) Exists(h Hash) bool {
	_, err := os.Stat(s.path(h))
	return err == nil
}

// All returns the sorted hashes of every stored object. Used by TransferObjects
// during fetch/push; this store has no packing, so "all objects" is simply
// every file under objects/.
func (s *Store) All() ([]Hash, error) {
	entries, err := os.ReadDir(s.dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("gitcore: listing objects: %w", err)
	}
	hashes := make([]Hash, 0, len(entries))
	for _, e := range entries {
		if e.IsDir() || !looksLikeHash(e.Name()) {
			continue
		}
		hashes = append(hashes, Hash(e.Name()))
	}
	sort.Slice(hashes, func(i, j int) bool { return hashes[i] < hashes[j] })
	return hashes, nil
}

// ClassifyType classifies content by its first whitespace-separated token:
// "commit" is KindCommit, "tree" is KindTree, anything else is KindBlob.
//
// This intentionally reproduces a quirk from the reference implementation:
// content whose first token is "blob" is classified as KindTree, not
// KindBlob. A tree object is a line-oriented listing of "<kind> <hash>
// <name>" entries, so a tree whose first entry is blob-typed still comes
// out as KindTree; a blob whose own content begins with the word "blob" (or
// "tree") is reported as a tree.
// No call site in this package relies on the blob/tree distinction (tree
// traversal reads each entry's kind token directly rather than calling
// ClassifyType), so the quirk is harmless in practice; it is preserved
// rather than "fixed" because fixing it would diverge from the specified
// observable behavior for no functional gain.
func ClassifyType(content []byte) ObjectKind {
	tok := firstToken(content)
	switch tok {
	case "commit":
		return KindCommit
	case "tree", "blob":
		return KindTree
	default:
		return KindBlob
	}
}

func firstToken(content []byte) string {
	i := 0
	for i < len(content) && content[i] != ' ' && content[i] != '\n' {
		i++
	}
	return string(content[:i])
}

// logSkip logs a recoverable problem encountered while traversing objects
// and lets the caller continue with whatever else is valid.
func logSkip(format string, args ...any) {
	log.Printf("gitcore: "+format, args...)
}
