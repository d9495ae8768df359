package gitcore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"
)

// indexKey identifies one index slot: a repo-relative path at a conflict
// stage (0 = clean, 1/2/3 = base/receiver/giver of a conflict).
type indexKey struct {
	Path  string
	Stage int
}

// Index is the staging area: a persistent mapping from (path, stage) to
// blob hash, serialized one entry per line as "<path> <stage> <hash>".
type Index struct {
	path    string
	workDir string
	store   *Store
}

// NewIndex opens the index file at <gitDir>/index, backed by store, into
// which WriteNonConflict writes staged content; referenced blobs are not
// validated against it.
func NewIndex(gitDir, workDir string, store *Store) *Index {
	return &Index{path: filepath.Join(gitDir, "index"), workDir: workDir, store: store}
}

// Read loads every (path, stage) -> hash entry currently on disk.
func (idx *Index) Read() (map[indexKey]Hash, error) {
	data, err := os.ReadFile(idx.path)
	if err != nil {
		if os.IsNotExist(err) {
			return map[indexKey]Hash{}, nil
		}
		return nil, fmt.Errorf("gitcore: reading index: %w", err)
	}
	entries := map[indexKey]Hash{}
	text := strings.TrimSuffix(string(data), "\n")
	if text == "" {
		return entries, nil
	}
	for _, line := range strings.Split(text, "\n") {
		fields := strings.SplitN(line, " ", 3)
		if len(fields) != 3 {
			return nil, fmt.Errorf("gitcore: malformed index line %q", line)
		}
		stage, err := strconv.Atoi(fields[1])
		if err != nil {
			return nil, fmt.Errorf("gitcore: malformed index stage %q", fields[1])
		}
		entries[indexKey{Path: fields[0], Stage: stage}] = Hash(fields[2])
	}
	return entries, nil
}

// Write rewrites the whole index file from entries, sorted for a stable
// on-disk order.
func (idx *Index) Write(entries map[indexKey]Hash) error {
	keys := make([]indexKey, 0, len(entries))
	for k := range entries {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if keys[i].Path != keys[j].Path {
			return keys[i].Path < keys[j].Path
		}
		return keys[i].Stage < keys[j].Stage
	})

	var b strings.Builder
	for _, k := range keys {
		fmt.Fprintf(&b, "%s %d %s\n", k.Path, k.Stage, entries[k])
	}

	if err := os.MkdirAll(filepath.Dir(idx.path), 0o755); err != nil {
		return fmt.Errorf("gitcore: creating index dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(idx.path), ".index-*.tmp")
	if err != nil {
		return fmt.Errorf("gitcore: staging index: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(b.String()); err != nil {
		tmp.Close() //nolint:errcheck
		os.Remove(tmpPath)
		return fmt.Errorf("gitcore: writing index: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, idx.path)
}

// HasFile reports whether (p, stage) is present in the index.
func (idx *Index) HasFile(p string, stage int) (bool, error) {
	entries, err := idx.Read()
	if err != nil {
		return false, err
	}
	_, ok := entries[indexKey{Path: p, Stage: stage}]
	return ok, nil
}

// TOC projects the index onto its stage-0 (non-conflicted) path->hash table
// of contents.
func (idx *Index) TOC() (TOC, error) {
	entries, err := idx.Read()
	if err != nil {
		return nil, err
	}
	toc := TOC{}
	for k, h := range entries {
		if k.Stage == 0 {
			toc[k.Path] = h
		}
	}
	return toc, nil
}

// WorkingCopyTOC recomputes the hash of the on-disk copy of every
// stage-0 indexed path, skipping paths whose file is missing from disk.
func (idx *Index) WorkingCopyTOC() (TOC, error) {
	toc, err := idx.TOC()
	if err != nil {
		return nil, err
	}
	result := TOC{}
	for p := range toc {
		content, err := os.ReadFile(filepath.Join(idx.workDir, filepath.FromSlash(p)))
		if err != nil {
			continue
		}
		result[p] = HashContent(content)
	}
	return result, nil
}

// ConflictedPaths returns every path currently staged at 2/3 (i.e. has an
// unresolved conflict).
func (idx *Index) ConflictedPaths() ([]string, error) {
	entries, err := idx.Read()
	if err != nil {
		return nil, err
	}
	seen := map[string]bool{}
	for k := range entries {
		if k.Stage == 2 {
			seen[k.Path] = true
		}
	}
	paths := make([]string, 0, len(seen))
	for p := range seen {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	return paths, nil
}

// MatchingFiles returns every indexed path whose slash-separated path has
// pathspec as a prefix component (not merely a string prefix): pathspec
// "a/b" matches "a/b" and "a/b/c.txt" but not "a/bc.txt".
func (idx *Index) MatchingFiles(pathspec string) ([]string, error) {
	toc, err := idx.TOC()
	if err != nil {
		return nil, err
	}
	var matches []string
	for p := range toc {
		if p == pathspec || strings.HasPrefix(p, pathspec+"/") {
			matches = append(matches, p)
		}
	}
	sort.Strings(matches)
	return matches, nil
}

// WriteRm deletes every stage recorded for p.
func (idx *Index) WriteRm(p string) error {
	entries, err := idx.Read()
	if err != nil {
		return err
	}
	for stage := 0; stage <= 3; stage++ {
		delete(entries, indexKey{Path: p, Stage: stage})
	}
	return idx.Write(entries)
}

// WriteNonConflict stages p's current content at stage 0, first clearing
// any conflict stages it previously held (enforces I1).
func (idx *Index) WriteNonConflict(p string, content []byte) (Hash, error) {
	h, err := idx.store.Write(content)
	if err != nil {
		return "", err
	}
	entries, err := idx.Read()
	if err != nil {
		return "", err
	}
	for stage := 0; stage <= 3; stage++ {
		delete(entries, indexKey{Path: p, Stage: stage})
	}
	entries[indexKey{Path: p, Stage: 0}] = h
	return h, idx.Write(entries)
}

// WriteConflict stages p's two (or three) conflicting sides: receiver at
// stage 2, giver at stage 3, and base at stage 1 when provided. Stage 0 is
// never present alongside these (enforces I1).
func (idx *Index) WriteConflict(p string, receiver, giver Hash, base Hash, hasBase bool) error {
	entries, err := idx.Read()
	if err != nil {
		return err
	}
	for stage := 0; stage <= 3; stage++ {
		delete(entries, indexKey{Path: p, Stage: stage})
	}
	entries[indexKey{Path: p, Stage: 2}] = receiver
	entries[indexKey{Path: p, Stage: 3}] = giver
	if hasBase {
		entries[indexKey{Path: p, Stage: 1}] = base
	}
	return idx.Write(entries)
}
