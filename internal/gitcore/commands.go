package gitcore

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"
	"time"

	"go.uber.org/multierr"
)

// Add recursively enumerates path (a file or directory relative to
// WorkDir) and routes every file found through UpdateIndex(add).
func (repo *Repository) Add(path string) error {
	if repo.Bare {
		return ErrBareRepository
	}
	full := filepath.Join(repo.WorkDir, filepath.FromSlash(path))
	info, err := os.Stat(full)
	if err != nil {
		return fmt.Errorf("gitcore: %s: %w", path, err)
	}

	var targets []string
	if info.IsDir() {
		walkErr := filepath.Walk(full, func(p string, fi os.FileInfo, err error) error {
			if err != nil {
				return err
			}
			rel, relErr := filepath.Rel(repo.WorkDir, p)
			if relErr != nil {
				return relErr
			}
			rel = filepath.ToSlash(rel)
			if fi.IsDir() {
				if rel == MetaDirName {
					return filepath.SkipDir
				}
				return nil
			}
			targets = append(targets, rel)
			return nil
		})
		if walkErr != nil {
			return fmt.Errorf("gitcore: walking %s: %w", path, walkErr)
		}
	} else {
		targets = []string{filepath.ToSlash(path)}
	}

	var errs error
	for _, t := range targets {
		if err := repo.UpdateIndex(NormalizePath(t), true, false); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// Rm removes path from the index (and, unless it no longer exists, from
// disk). It refuses a directory-shaped pathspec without recursive, refuses
// force (reserved but unsupported), and refuses any target with
// uncommitted changes.
func (repo *Repository) Rm(pathspec string, recursive, force bool) error {
	if repo.Bare {
		return ErrBareRepository
	}
	if force {
		return fmt.Errorf("gitcore: rm -f: %w", ErrUnsupported)
	}

	matches, err := repo.Index.MatchingFiles(pathspec)
	if err != nil {
		return err
	}
	if len(matches) == 0 {
		return fmt.Errorf("gitcore: pathspec %q did not match any files", pathspec)
	}
	isDirShaped := len(matches) > 1 || matches[0] != pathspec
	if isDirShaped && !recursive {
		return fmt.Errorf("gitcore: not removing %q recursively without -r", pathspec)
	}

	headTOC, err := CommitTOC(repo.Store, repo.Refs.HeadHash())
	if err != nil {
		return err
	}
	indexTOC, err := repo.Index.TOC()
	if err != nil {
		return err
	}
	wcTOC, err := repo.Index.WorkingCopyTOC()
	if err != nil {
		return err
	}

	var errs error
	for _, p := range matches {
		if headTOC[p] != indexTOC[p] {
			errs = multierr.Append(errs, fmt.Errorf("gitcore: %s has staged changes", p))
			continue
		}
		if h, onDisk := wcTOC[p]; onDisk && h != indexTOC[p] {
			errs = multierr.Append(errs, fmt.Errorf("gitcore: %s has unstaged changes", p))
		}
	}
	if errs != nil {
		return errs
	}

	for _, p := range matches {
		full := filepath.Join(repo.WorkDir, filepath.FromSlash(p))
		if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
			errs = multierr.Append(errs, fmt.Errorf("gitcore: removing %s: %w", p, err))
			continue
		}
		if err := repo.Index.WriteRm(p); err != nil {
			errs = multierr.Append(errs, err)
		}
	}
	return errs
}

// UpdateIndex applies the precondition matrix from spec.md §7: (on-disk,
// in-index, add, remove) -> action.
func (repo *Repository) UpdateIndex(path string, add, remove bool) error {
	if repo.Bare {
		return ErrBareRepository
	}
	full := filepath.Join(repo.WorkDir, filepath.FromSlash(path))
	info, statErr := os.Stat(full)
	onDisk := statErr == nil && !info.IsDir()
	isDir := statErr == nil && info.IsDir()

	if isDir {
		return fmt.Errorf("gitcore: %s: is a directory", path)
	}

	hasStage0, err := repo.Index.HasFile(path, 0)
	if err != nil {
		return err
	}
	conflicted, err := repo.Index.HasFile(path, 2)
	if err != nil {
		return err
	}
	inIndex := hasStage0 || conflicted

	switch {
	case !onDisk && inIndex && remove:
		if conflicted {
			return fmt.Errorf("gitcore: removing a conflicted path: %w", ErrUnsupported)
		}
		return repo.Index.WriteRm(path)
	case !onDisk && !inIndex && remove:
		return nil
	case onDisk && !inIndex && !add:
		return fmt.Errorf("gitcore: %s: not staged (use --add)", path)
	case onDisk && (add || inIndex):
		content, err := os.ReadFile(full)
		if err != nil {
			return fmt.Errorf("gitcore: reading %s: %w", path, err)
		}
		_, err = repo.Index.WriteNonConflict(path, content)
		return err
	case !onDisk && !remove:
		return fmt.Errorf("gitcore: %s: does not exist and --remove not passed", path)
	default:
		return nil
	}
}

// Commit builds a tree from the index and records a commit, refusing when
// there is nothing new relative to HEAD or when conflicts remain
// unresolved mid-merge.
func (repo *Repository) Commit(message string) (Hash, error) {
	if repo.Bare {
		return "", ErrBareRepository
	}

	if repo.Refs.IsMerging() {
		conflicts, err := repo.Index.ConflictedPaths()
		if err != nil {
			return "", err
		}
		if len(conflicts) > 0 {
			return "", fmt.Errorf("gitcore: %d conflicted path(s) remain", len(conflicts))
		}
		if msg, ok := repo.Refs.MergeMsg(); ok {
			message = msg
		}
	}

	indexTOC, err := repo.Index.TOC()
	if err != nil {
		return "", err
	}
	treeHash, err := WriteTree(repo.Store, BuildTreeFromTOC(indexTOC))
	if err != nil {
		return "", err
	}

	head := repo.Refs.HeadHash()
	if head.IsZero() && len(indexTOC) == 0 {
		return "", ErrNothingToCommit
	}
	if !head.IsZero() {
		headTree, err := TreeHash(mustRead(repo.Store, head))
		if err != nil {
			return "", err
		}
		if headTree == treeHash {
			return "", ErrNothingToCommit
		}
	}

	commit := &Commit{
		Tree:    treeHash,
		Parents: repo.Refs.CommitParentHashes(),
		Date:    time.Now().Format(time.RFC3339),
		Message: message,
	}
	h, err := repo.Store.Write(commit.Serialize())
	if err != nil {
		return "", err
	}

	branch, attached := repo.Refs.HeadBranchName()
	if attached {
		if err := repo.Refs.Write("refs/heads/"+branch, h); err != nil {
			return "", err
		}
	} else {
		if err := repo.Refs.SetHeadDetached(h); err != nil {
			return "", err
		}
	}

	if repo.Refs.IsMerging() {
		if err := repo.Refs.ClearMerge(); err != nil {
			return "", err
		}
	}
	return h, nil
}

func mustRead(store *Store, h Hash) []byte {
	content, _ := store.Read(h)
	return content
}

// BranchList is the result of Branch() called with no name: every local
// branch, with Current marking HEAD's (when attached).
type BranchList struct {
	Names   []string
	Current string // "" if HEAD is detached
}

// Branch lists branches when name is empty, or creates one at HEAD.
func (repo *Repository) Branch(name string) (*BranchList, error) {
	if name == "" {
		branches, err := repo.Refs.Branches()
		if err != nil {
			return nil, err
		}
		names := make([]string, 0, len(branches))
		for n := range branches {
			names = append(names, n)
		}
		sort.Strings(names)
		current, _ := repo.Refs.HeadBranchName()
		return &BranchList{Names: names, Current: current}, nil
	}

	head := repo.Refs.HeadHash()
	if head.IsZero() {
		return nil, fmt.Errorf("gitcore: cannot create a branch before the first commit")
	}
	if repo.Refs.Exists("refs/heads/" + name) {
		return nil, fmt.Errorf("gitcore: a branch named %s already exists", name)
	}
	if err := repo.Refs.Write("refs/heads/"+name, head); err != nil {
		return nil, err
	}
	return nil, nil
}

// Checkout switches the working copy, index, and HEAD to ref.
func (repo *Repository) Checkout(ref string) (string, error) {
	h, ok := repo.Refs.Hash(ref)
	if !ok {
		return "", fmt.Errorf("gitcore: unknown ref %q", ref)
	}
	content, ok := repo.Store.Read(h)
	if !ok || ClassifyType(content) != KindCommit {
		if _, parseErr := ParseCommit(content); parseErr != nil {
			return "", fmt.Errorf("gitcore: %q is not a commit", ref)
		}
	}

	if branch, attached := repo.Refs.HeadBranchName(); attached && branch == ref {
		return "", fmt.Errorf("gitcore: already on %s", ref)
	}
	detaching := looksLikeHash(ref) && repo.Store.Exists(Hash(ref))
	if detaching && repo.Refs.IsHeadDetached() && repo.Refs.HeadHash() == Hash(ref) {
		return "", fmt.Errorf("gitcore: already at %s", ref)
	}

	if !repo.Bare {
		overwritten, err := ChangedFilesCommitWouldOverwrite(repo.Store, repo.Refs, repo.Index, repo.WorkDir, repo.GitDir, h)
		if err != nil {
			return "", err
		}
		if len(overwritten) > 0 {
			return "", fmt.Errorf("gitcore: %w: %s", ErrWouldOverwrite, strings.Join(overwritten, ", "))
		}
	}

	headTOC, err := CommitTOC(repo.Store, repo.Refs.HeadHash())
	if err != nil {
		return "", err
	}
	targetTOC, err := CommitTOC(repo.Store, h)
	if err != nil {
		return "", err
	}

	if !repo.Bare {
		diff := TocDiff(headTOC, targetTOC, nil)
		if err := ApplyDiff(repo.Store, diff, repo.WorkDir); err != nil {
			return "", err
		}
	}

	entries := map[indexKey]Hash{}
	for p, bh := range targetTOC {
		entries[indexKey{Path: p, Stage: 0}] = bh
	}
	if err := repo.Index.Write(entries); err != nil {
		return "", err
	}

	if detaching {
		if err := repo.Refs.SetHeadDetached(h); err != nil {
			return "", err
		}
		return fmt.Sprintf("HEAD is now at %s", h.Short()), nil
	}
	if err := repo.Refs.SetHeadAttached(ref); err != nil {
		return "", err
	}
	return "Switched to branch " + ref, nil
}

// DiffLines runs the diff() entry point and formats it as "status path"
// lines, dropping SAME paths, sorted for determinism.
func (repo *Repository) DiffLines(hash1, hash2 string) ([]string, error) {
	diff, err := ComputeDiff(repo.Store, repo.Refs, repo.Index, repo.WorkDir, repo.GitDir, hash1, hash2)
	if err != nil {
		return nil, err
	}
	statuses := NameStatus(diff)
	paths := make([]string, 0, len(statuses))
	for p := range statuses {
		paths = append(paths, p)
	}
	sort.Strings(paths)
	lines := make([]string, 0, len(paths))
	for _, p := range paths {
		lines = append(lines, fmt.Sprintf("%s %s", statuses[p], p))
	}
	return lines, nil
}

// RemoteAdd persists remote.<name>.url, rejecting duplicates. "add" is the
// only supported verb; any other is an explicit unsupported error.
func (repo *Repository) RemoteAdd(verb, name, url string) error {
	if verb != "add" {
		return fmt.Errorf("gitcore: remote %s: %w", verb, ErrUnsupported)
	}
	return repo.Config.AddRemote(name, url)
}
