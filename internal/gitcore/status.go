package gitcore

import (
	"os"
	"path/filepath"
	"sort"
)

// FileStatus is one path's classification in a WorkingTreeStatus report.
type FileStatus struct {
	Path   string
	Status Status
}

// WorkingTreeStatus is the report `status` prints: changes staged for
// commit (HEAD vs index), changes not staged (index vs disk), untracked
// files (on disk, with no stage-0 index entry), and conflicted paths.
type WorkingTreeStatus struct {
	Staged    []FileStatus
	Unstaged  []FileStatus
	Untracked []string
	Conflicts []string
}

// ComputeStatus mirrors the teacher's three-pass comparison shape: HEAD
// tree vs index for staged changes, index vs on-disk content for unstaged
// changes, and a working-copy walk (honoring .gitignore) for untracked
// files.
func ComputeStatus(store *Store, refs *Refs, index *Index, workDir, gitDir string) (*WorkingTreeStatus, error) {
	headTOC, err := CommitTOC(store, refs.HeadHash())
	if err != nil {
		return nil, err
	}
	indexTOC, err := index.TOC()
	if err != nil {
		return nil, err
	}
	wcTOC, err := index.WorkingCopyTOC()
	if err != nil {
		return nil, err
	}

	staged := toFileStatuses(NameStatus(TocDiff(headTOC, indexTOC, nil)))
	unstaged := toFileStatuses(NameStatus(TocDiff(indexTOC, wcTOC, nil)))

	conflicts, err := index.ConflictedPaths()
	if err != nil {
		return nil, err
	}

	untracked, err := untrackedFiles(workDir, gitDir, indexTOC)
	if err != nil {
		return nil, err
	}

	return &WorkingTreeStatus{
		Staged:    staged,
		Unstaged:  unstaged,
		Untracked: untracked,
		Conflicts: conflicts,
	}, nil
}

func toFileStatuses(m map[string]Status) []FileStatus {
	result := make([]FileStatus, 0, len(m))
	for p, s := range m {
		result = append(result, FileStatus{Path: p, Status: s})
	}
	sort.Slice(result, func(i, j int) bool { return result[i].Path < result[j].Path })
	return result
}

func untrackedFiles(workDir, gitDir string, indexTOC TOC) ([]string, error) {
	matcher := NewIgnoreMatcher(workDir, gitDir)
	var untracked []string
	err := filepath.Walk(workDir, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		rel, relErr := filepath.Rel(workDir, p)
		if relErr != nil {
			return relErr
		}
		if rel == "." {
			return nil
		}
		rel = filepath.ToSlash(rel)
		if info.IsDir() {
			if rel == MetaDirName || matcher.IsIgnored(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.IsIgnored(rel, false) {
			return nil
		}
		if _, tracked := indexTOC[rel]; tracked {
			return nil
		}
		untracked = append(untracked, rel)
		return nil
	})
	if err != nil {
		return nil, err
	}
	sort.Strings(untracked)
	return untracked, nil
}
