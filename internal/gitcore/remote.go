package gitcore

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/vcslab/minivcs/internal/transport"
)

// Fetch ingests remote's branch into refs/remotes/<remote>/<branch> and
// FETCH_HEAD, reporting whether the update was a non-fast-forward rewrite.
func (repo *Repository) Fetch(remoteName, branch string) (string, error) {
	url, ok, err := repo.Config.RemoteURL(remoteName)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("gitcore: unknown remote %q", remoteName)
	}

	prevHash, hadPrev := repo.Refs.Hash("refs/remotes/" + remoteName + "/" + branch)

	var newHash Hash
	err = transport.OnRemote(url, func() error {
		remote, err := DiscoverRepository(".")
		if err != nil {
			return fmt.Errorf("gitcore: %s is not a vcs repository: %w", url, err)
		}
		h, ok := remote.Refs.Hash("refs/heads/" + branch)
		if !ok {
			return fmt.Errorf("gitcore: remote has no branch %q", branch)
		}
		newHash = h
		return TransferObjects(remote.Store, repo.Store)
	})
	if err != nil {
		return "", err
	}

	if err := repo.Refs.Write("refs/remotes/"+remoteName+"/"+branch, newHash); err != nil {
		return "", err
	}
	if err := repo.Refs.SetFetchHead(newHash, branch, url); err != nil {
		return "", err
	}

	if hadPrev && !IsAncestor(repo.Store, newHash, prevHash) {
		return "(forced)", nil
	}
	return "", nil
}

// Pull fetches remote's branch and merges FETCH_HEAD into the current
// branch.
func (repo *Repository) Pull(remoteName, branch string) (string, error) {
	if _, err := repo.Fetch(remoteName, branch); err != nil {
		return "", err
	}
	return repo.Merge("FETCH_HEAD")
}

// Merge merges giverRef into HEAD: fast-forwarding when possible, otherwise
// entering the MERGING state with a three-way diff.
func (repo *Repository) Merge(giverRef string) (string, error) {
	if repo.Bare {
		return "", ErrBareRepository
	}
	if repo.Refs.IsMerging() {
		return "", fmt.Errorf("gitcore: a merge is already in progress")
	}
	branch, attached := repo.Refs.HeadBranchName()
	if !attached {
		return "", fmt.Errorf("gitcore: merge requires an attached HEAD")
	}
	g, ok := repo.Refs.Hash(giverRef)
	if !ok {
		return "", fmt.Errorf("gitcore: unknown ref %q", giverRef)
	}
	r := repo.Refs.HeadHash()

	if IsUpToDate(repo.Store, r, g) {
		return "Already up to date.", nil
	}

	if !repo.Bare {
		overwritten, err := ChangedFilesCommitWouldOverwrite(repo.Store, repo.Refs, repo.Index, repo.WorkDir, repo.GitDir, g)
		if err != nil {
			return "", err
		}
		if len(overwritten) > 0 {
			return "", fmt.Errorf("gitcore: %w: %v", ErrWouldOverwrite, overwritten)
		}
	}

	if CanFastForward(repo.Store, r, g) {
		if err := FastForwardMerge(repo.Store, repo.Refs, repo.Index, repo.WorkDir, repo.GitDir, repo.Bare, r, g); err != nil {
			return "", err
		}
		return "Fast-forward", nil
	}

	if err := NonFastForwardMerge(repo.Store, repo.Refs, repo.Index, repo.WorkDir, repo.GitDir, repo.Bare, giverRef, branch, r, g); err != nil {
		return "", err
	}
	diff, err := MergeDiff(repo.Store, r, g)
	if err != nil {
		return "", err
	}
	if HasConflicts(diff) {
		return "", fmt.Errorf("gitcore: %w", ErrMergeConflict)
	}
	return repo.Commit("")
}

// Push copies local objects to remote and advances remote's branch,
// refusing a non-fast-forward update unless force is set, and refusing
// outright if the remote currently has that branch checked out.
func (repo *Repository) Push(remoteName, branch string, force bool) (string, error) {
	url, ok, err := repo.Config.RemoteURL(remoteName)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", fmt.Errorf("gitcore: unknown remote %q", remoteName)
	}
	local, ok := repo.Refs.Hash("refs/heads/" + branch)
	if !ok {
		return "", fmt.Errorf("gitcore: no local branch %q", branch)
	}

	var forced bool
	err = transport.OnRemote(url, func() error {
		remote, err := DiscoverRepository(".")
		if err != nil {
			return fmt.Errorf("gitcore: %s is not a vcs repository: %w", url, err)
		}
		if !remote.Bare {
			if checkedOut, _ := remote.Refs.HeadBranchName(); checkedOut == branch {
				return fmt.Errorf("gitcore: refusing to push to the branch %q currently checked out there", branch)
			}
		}
		remoteHash, hadRemote := remote.Refs.Hash("refs/heads/" + branch)
		if hadRemote && remoteHash != local && !CanFastForward(repo.Store, remoteHash, local) {
			if !force {
				return fmt.Errorf("gitcore: failed to push some refs to %s: %w", url, ErrNotFastForward)
			}
			forced = true
		}
		if err := TransferObjects(repo.Store, remote.Store); err != nil {
			return err
		}
		return remote.Refs.Write("refs/heads/"+branch, local)
	})
	if err != nil {
		return "", err
	}
	if err := repo.Refs.Write("refs/remotes/"+remoteName+"/"+branch, local); err != nil {
		return "", err
	}
	if forced {
		return "(forced)", nil
	}
	return "", nil
}

// Clone validates src as a repository and dst as empty-or-absent, inits dst,
// registers src as the "origin" remote, and — when src has a master branch —
// fetches and fast-forwards it.
func Clone(src, dst string, bare bool) (*Repository, error) {
	srcRepo, err := DiscoverRepository(src)
	if err != nil {
		return nil, fmt.Errorf("gitcore: %s is not a vcs repository: %w", src, err)
	}

	entries, statErr := os.ReadDir(dst)
	if statErr == nil && len(entries) > 0 {
		return nil, fmt.Errorf("gitcore: destination path %q already exists and is not empty", dst)
	}
	if statErr != nil && !os.IsNotExist(statErr) {
		return nil, fmt.Errorf("gitcore: checking destination %s: %w", dst, statErr)
	}

	absSrc, err := filepath.Abs(src)
	if err != nil {
		return nil, fmt.Errorf("gitcore: resolving %s: %w", src, err)
	}

	repo, err := Init(dst, bare)
	if err != nil {
		return nil, err
	}
	if err := repo.Config.AddRemote("origin", absSrc); err != nil {
		return nil, err
	}

	if _, ok := srcRepo.Refs.Hash("refs/heads/master"); !ok {
		return repo, nil
	}
	if _, err := repo.Fetch("origin", "master"); err != nil {
		return nil, err
	}
	if _, err := repo.Merge("refs/remotes/origin/master"); err != nil {
		return nil, err
	}
	return repo, nil
}
