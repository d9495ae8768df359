package gitcore

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strings"
)

var qualifiedRefRe = regexp.MustCompile(
	`^(refs/heads/[A-Za-z-]+|refs/remotes/[A-Za-z-]+/[A-Za-z-]+|HEAD|FETCH_HEAD|MERGE_HEAD)$`,
)

// Refs manages the ref namespace under a repository's metadata directory:
// HEAD, refs/heads/*, refs/remotes/*/*, and the merge/fetch marker files.
type Refs struct {
	gitDir string
	store  *Store
}

// NewRefs opens the ref namespace rooted at gitDir.
func NewRefs(gitDir string, store *Store) *Refs {
	return &Refs{gitDir: gitDir, store: store}
}

// IsRef reports whether s matches one of the qualified ref shapes:
// refs/heads/<name>, refs/remotes/<remote>/<branch>, or one of the three
// special names HEAD, FETCH_HEAD, MERGE_HEAD.
func IsRef(s string) bool { return qualifiedRefRe.MatchString(s) }

func (r *Refs) path(ref string) string { return filepath.Join(r.gitDir, filepath.FromSlash(ref)) }

func (r *Refs) readFile(ref string) (string, bool) {
	data, err := os.ReadFile(r.path(ref))
	if err != nil {
		return "", false
	}
	return strings.TrimRight(string(data), "\n"), true
}

func (r *Refs) writeFile(ref, content string) error {
	p := r.path(ref)
	if err := os.MkdirAll(filepath.Dir(p), 0o755); err != nil {
		return fmt.Errorf("gitcore: creating ref dir: %w", err)
	}
	tmp, err := os.CreateTemp(filepath.Dir(p), ".tmp-*")
	if err != nil {
		return fmt.Errorf("gitcore: staging ref write: %w", err)
	}
	tmpPath := tmp.Name()
	if _, err := tmp.WriteString(content); err != nil {
		tmp.Close() //nolint:errcheck
		os.Remove(tmpPath)
		return fmt.Errorf("gitcore: writing ref: %w", err)
	}
	if err := tmp.Close(); err != nil {
		os.Remove(tmpPath)
		return err
	}
	return os.Rename(tmpPath, p)
}

// TerminalRef resolves HEAD through one symbolic indirection: it returns
// the branch ref HEAD points at when attached, the literal "HEAD" when
// detached, or a fabricated "refs/heads/<s>" when s is an unqualified
// branch name (regardless of whether that branch currently exists).
func (r *Refs) TerminalRef(s string) string {
	if s == "HEAD" {
		content, ok := r.readFile("HEAD")
		if ok {
			if branch, isAttached := strings.CutPrefix(content, "ref: "); isAttached {
				return branch
			}
		}
		return "HEAD"
	}
	if IsRef(s) {
		return s
	}
	return "refs/heads/" + s
}

// Hash resolves s to a commit hash. s may be a qualified or unqualified ref
// name, or an already-known object hash, which passes through unchanged so
// callers can treat both uniformly.
func (r *Refs) Hash(s string) (Hash, bool) {
	if s == "FETCH_HEAD" {
		return r.fetchHeadForCurrentBranch()
	}

	if looksLikeHash(s) && r.store.Exists(Hash(s)) {
		return Hash(s), true
	}

	term := r.TerminalRef(s)
	if term == "HEAD" {
		content, ok := r.readFile("HEAD")
		if !ok || content == "" {
			return "", false
		}
		return Hash(content), true
	}
	content, ok := r.readFile(term)
	if !ok || content == "" {
		return "", false
	}
	return Hash(content), true
}

// Exists reports whether s resolves to a known commit hash.
func (r *Refs) Exists(s string) bool {
	_, ok := r.Hash(s)
	return ok
}

// Write sets an unqualified or qualified branch/remote-tracking ref to h.
// HEAD itself is updated via SetHeadAttached/SetHeadDetached, not Write.
func (r *Refs) Write(s string, h Hash) error {
	term := r.TerminalRef(s)
	if term == "HEAD" {
		return r.SetHeadDetached(h)
	}
	return r.writeFile(term, string(h)+"\n")
}

// Rm deletes a ref file.
func (r *Refs) Rm(s string) error {
	term := r.TerminalRef(s)
	err := os.Remove(r.path(term))
	if err != nil && !os.IsNotExist(err) {
		return fmt.Errorf("gitcore: removing ref %s: %w", s, err)
	}
	return nil
}

// HeadBranchName returns the branch name HEAD points at when attached.
func (r *Refs) HeadBranchName() (string, bool) {
	content, ok := r.readFile("HEAD")
	if !ok {
		return "", false
	}
	branch, isAttached := strings.CutPrefix(content, "ref: refs/heads/")
	return branch, isAttached
}

// IsHeadDetached reports whether HEAD holds a raw commit hash rather than a
// symbolic ref.
func (r *Refs) IsHeadDetached() bool {
	content, ok := r.readFile("HEAD")
	if !ok {
		return false
	}
	return !strings.Contains(content, "refs")
}

// HeadHash resolves HEAD to a commit hash, or the zero hash if there are no
// commits yet.
func (r *Refs) HeadHash() Hash {
	h, ok := r.Hash("HEAD")
	if !ok {
		return ""
	}
	return h
}

// SetHeadAttached points HEAD at a local branch.
func (r *Refs) SetHeadAttached(branch string) error {
	return r.writeFile("HEAD", "ref: refs/heads/"+branch+"\n")
}

// SetHeadDetached points HEAD directly at a commit hash.
func (r *Refs) SetHeadDetached(h Hash) error {
	return r.writeFile("HEAD", string(h)+"\n")
}

// IsMerging reports whether a merge is in progress (MERGE_HEAD present).
func (r *Refs) IsMerging() bool {
	_, ok := r.readFile("MERGE_HEAD")
	return ok
}

// MergeHead returns the "giver" commit of an in-progress merge.
func (r *Refs) MergeHead() (Hash, bool) {
	content, ok := r.readFile("MERGE_HEAD")
	if !ok || content == "" {
		return "", false
	}
	return Hash(content), true
}

// SetMergeHead records the giver commit of a merge that needs manual
// resolution.
func (r *Refs) SetMergeHead(h Hash) error {
	return r.writeFile("MERGE_HEAD", string(h)+"\n")
}

// MergeMsg returns the pre-staged commit message for the merge in progress.
func (r *Refs) MergeMsg() (string, bool) {
	return r.readFile("MERGE_MSG")
}

// SetMergeMsg stores the pre-staged commit message for a merge.
func (r *Refs) SetMergeMsg(msg string) error {
	return r.writeFile("MERGE_MSG", msg+"\n")
}

// ClearMerge removes MERGE_HEAD and MERGE_MSG, exiting the MERGING state.
func (r *Refs) ClearMerge() error {
	for _, ref := range []string{"MERGE_HEAD", "MERGE_MSG"} {
		if err := os.Remove(r.path(ref)); err != nil && !os.IsNotExist(err) {
			return fmt.Errorf("gitcore: clearing %s: %w", ref, err)
		}
	}
	return nil
}

// CommitParentHashes computes the parents the next commit will record:
// mid-merge it is [HEAD, MERGE_HEAD]; otherwise [HEAD] if HEAD resolves,
// else none (the first commit in the repository).
func (r *Refs) CommitParentHashes() []Hash {
	head := r.HeadHash()
	if giver, merging := r.MergeHead(); merging {
		return []Hash{head, giver}
	}
	if head.IsZero() {
		return nil
	}
	return []Hash{head}
}

// SetFetchHead overwrites FETCH_HEAD with the result of a single fetch.
func (r *Refs) SetFetchHead(h Hash, branch, url string) error {
	return r.writeFile("FETCH_HEAD", fmt.Sprintf("%s branch %s of %s\n", h, branch, url))
}

// fetchHeadForCurrentBranch implements the FETCH_HEAD special-case of Hash:
// it returns the commit hash recorded for the branch currently named by
// HEAD, by scanning FETCH_HEAD's lines.
func (r *Refs) fetchHeadForCurrentBranch() (Hash, bool) {
	branch, attached := r.HeadBranchName()
	if !attached {
		return "", false
	}
	content, ok := r.readFile("FETCH_HEAD")
	if !ok {
		return "", false
	}
	var found Hash
	for _, line := range strings.Split(content, "\n") {
		fields := strings.Fields(line)
		if len(fields) >= 3 && fields[1] == "branch" && fields[2] == branch {
			found = Hash(fields[0])
		}
	}
	if found.IsZero() {
		return "", false
	}
	return found, true
}

// Branches returns every local branch name mapped to its tip commit hash.
func (r *Refs) Branches() (map[string]Hash, error) {
	return r.listRefsUnder("refs/heads")
}

// RemoteBranches returns every "<remote>/<branch>" remote-tracking ref
// mapped to its last-known commit hash.
func (r *Refs) RemoteBranches() (map[string]Hash, error) {
	return r.listRefsUnder("refs/remotes")
}

func (r *Refs) listRefsUnder(prefix string) (map[string]Hash, error) {
	result := map[string]Hash{}
	root := r.path(prefix)
	err := filepath.Walk(root, func(p string, info os.FileInfo, err error) error {
		if err != nil {
			if os.IsNotExist(err) {
				return nil
			}
			return err
		}
		if info.IsDir() {
			return nil
		}
		rel, err := filepath.Rel(root, p)
		if err != nil {
			return err
		}
		content, ok := r.readFile(prefix + "/" + filepath.ToSlash(rel))
		if !ok {
			return nil
		}
		result[filepath.ToSlash(rel)] = Hash(content)
		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("gitcore: listing %s: %w", prefix, err)
	}
	return result, nil
}
