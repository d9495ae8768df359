package gitcore

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
)

// Sentinel errors for the location/precondition error classes named in the
// error handling design: callers can match on these with errors.Is rather
// than string comparison.
var (
	ErrNotARepository  = errors.New("not a vcs repository")
	ErrBareRepository  = errors.New("this operation does not work in a bare repository")
	ErrNothingToCommit = errors.New("nothing to commit, working directory clean")
	ErrMergeConflict   = errors.New("Automatic merge failed. Fix conflicts and commit the result.")
	ErrWouldOverwrite  = errors.New("local changes would be overwritten")
	ErrNotFastForward  = errors.New("not a fast-forward")
	ErrUnsupported     = errors.New("unsupported")
)

// Repository is the loaded handle to one vcs repository: its metadata
// directory, optional working copy, and the subsystems layered on them.
type Repository struct {
	GitDir  string
	WorkDir string // "" for a bare repository
	Bare    bool

	Store  *Store
	Refs   *Refs
	Index  *Index
	Config *Config
}

// open wires a Repository's subsystems once GitDir/WorkDir/Bare are known.
func open(gitDir, workDir string, bare bool) *Repository {
	store := NewStore(gitDir)
	return &Repository{
		GitDir:  gitDir,
		WorkDir: workDir,
		Bare:    bare,
		Store:   store,
		Refs:    NewRefs(gitDir, store),
		Index:   NewIndex(gitDir, workDir, store),
		Config:  NewConfig(gitDir),
	}
}

// DiscoverRepository walks up from startDir looking for a non-bare
// repository's metadata subdirectory (<dir>/MetaDirName) or a bare
// repository rooted directly at a directory (HEAD and objects/ present at
// its top level).
func DiscoverRepository(startDir string) (*Repository, error) {
	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("gitcore: resolving %s: %w", startDir, err)
	}
	for {
		metaDir := filepath.Join(dir, MetaDirName)
		if isRepoLayout(metaDir) {
			return open(metaDir, dir, false), nil
		}
		if isRepoLayout(dir) {
			return open(dir, "", true), nil
		}
		parent := filepath.Dir(dir)
		if parent == dir {
			return nil, fmt.Errorf("gitcore: %w (or any parent up to %s)", ErrNotARepository, startDir)
		}
		dir = parent
	}
}

func isRepoLayout(dir string) bool {
	headInfo, err := os.Stat(filepath.Join(dir, "HEAD"))
	if err != nil || headInfo.IsDir() {
		return false
	}
	objInfo, err := os.Stat(filepath.Join(dir, "objects"))
	return err == nil && objInfo.IsDir()
}

// Init lays out a fresh repository rooted at startDir: a non-bare
// repository's metadata lives under startDir/MetaDirName; a bare
// repository's metadata lives directly at startDir.
func Init(startDir string, bare bool) (*Repository, error) {
	if _, err := DiscoverRepository(startDir); err == nil {
		return nil, fmt.Errorf("gitcore: already in a repository")
	}

	dir, err := filepath.Abs(startDir)
	if err != nil {
		return nil, fmt.Errorf("gitcore: resolving %s: %w", startDir, err)
	}

	var gitDir, workDir string
	if bare {
		gitDir, workDir = dir, ""
	} else {
		gitDir, workDir = filepath.Join(dir, MetaDirName), dir
	}

	for _, d := range []string{gitDir, filepath.Join(gitDir, "objects"), filepath.Join(gitDir, "refs", "heads")} {
		if err := os.MkdirAll(d, 0o755); err != nil {
			return nil, fmt.Errorf("gitcore: creating %s: %w", d, err)
		}
	}

	repo := open(gitDir, workDir, bare)
	if err := repo.Refs.SetHeadAttached("master"); err != nil {
		return nil, err
	}
	if err := repo.Config.SetBare(bare); err != nil {
		return nil, err
	}
	return repo, nil
}
