package gitcore

import (
	"os"
	"path/filepath"
)

// MetaDirName is the repository metadata directory for non-bare repos,
// skipped while walking a working copy.
const MetaDirName = ".gitlet"

// ScanWorkingCopy walks workDir and returns the path->hash table of
// contents of every file currently on disk, skipping the metadata
// directory and anything excluded by .gitignore rules.
func ScanWorkingCopy(workDir, gitDir string) (TOC, error) {
	matcher := NewIgnoreMatcher(workDir, gitDir)
	toc := TOC{}
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
			if rel == MetaDirName {
				return filepath.SkipDir
			}
			if matcher.IsIgnored(rel, true) {
				return filepath.SkipDir
			}
			return nil
		}
		if matcher.IsIgnored(rel, false) {
			return nil
		}
		content, readErr := os.ReadFile(p)
		if readErr != nil {
			return readErr
		}
		toc[rel] = HashContent(content)
		return nil
	})
	if err != nil {
		return nil, err
	}
	return toc, nil
}
