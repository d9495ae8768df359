package gitcore

import (
	"fmt"
	"sort"
)

// CommonAncestor selects a single most-recent common ancestor of a and b.
// The pair is sorted first so the result is independent of argument order;
// in a criss-cross history this deliberately does NOT reproduce a
// recursive merge-base: it intersects [a]+ancestors(a) with
// [b]+ancestors(b) and returns the first match found while walking the
// first list, which is sort-order-dependent rather than graph-optimal.
func CommonAncestor(store *Store, a, b Hash) Hash {
	if a > b {
		a, b = b, a
	}
	listA := append([]Hash{a}, Ancestors(store, a)...)
	setB := map[Hash]bool{b: true}
	for _, h := range Ancestors(store, b) {
		setB[h] = true
	}
	for _, h := range listA {
		if setB[h] {
			return h
		}
	}
	return ""
}

// CanFastForward reports whether merging g into r can be done by simply
// moving the branch pointer: r has no commits yet, or r is already an
// ancestor of g.
func CanFastForward(store *Store, r, g Hash) bool {
	return r.IsZero() || IsAncestor(store, g, r)
}

// MergeDiff computes the three-way diff between r's and g's trees relative
// to their common ancestor.
func MergeDiff(store *Store, r, g Hash) (Diff, error) {
	ancestor := CommonAncestor(store, r, g)
	rTOC, err := CommitTOC(store, r)
	if err != nil {
		return nil, err
	}
	gTOC, err := CommitTOC(store, g)
	if err != nil {
		return nil, err
	}
	aTOC, err := CommitTOC(store, ancestor)
	if err != nil {
		return nil, err
	}
	return TocDiff(rTOC, gTOC, aTOC), nil
}

// HasConflicts reports whether any path in diff is CONFLICT.
func HasConflicts(diff Diff) bool {
	for _, e := range diff {
		if e.Status == StatusConflict {
			return true
		}
	}
	return false
}

// FastForwardMerge points the current branch at g, replaces the index with
// g's tree of contents, and (unless bare) reconciles the working copy
// against the prior HEAD.
func FastForwardMerge(store *Store, refs *Refs, index *Index, workDir, gitDir string, bare bool, r, g Hash) error {
	branch, attached := refs.HeadBranchName()
	if !attached {
		return fmt.Errorf("gitcore: fast-forward merge requires an attached HEAD")
	}
	if err := refs.Write("refs/heads/"+branch, g); err != nil {
		return err
	}

	gTOC, err := CommitTOC(store, g)
	if err != nil {
		return err
	}
	entries := map[indexKey]Hash{}
	for p, h := range gTOC {
		entries[indexKey{Path: p, Stage: 0}] = h
	}
	if err := index.Write(entries); err != nil {
		return err
	}

	if bare {
		return nil
	}
	rTOC := TOC{}
	if !r.IsZero() {
		rTOC, err = CommitTOC(store, r)
		if err != nil {
			return err
		}
	}
	diff := TocDiff(rTOC, gTOC, nil)
	return ApplyDiff(store, diff, workDir)
}

// NonFastForwardMerge enters the MERGING state: it records MERGE_HEAD and a
// pre-staged MERGE_MSG, rebuilds the index from merge_diff(r,g) (conflicted
// paths staged at 2/3, modified paths taking the giver's blob, added/same
// paths taking whichever side has it), and, unless bare, applies the merge
// diff to the working copy.
func NonFastForwardMerge(store *Store, refs *Refs, index *Index, workDir, gitDir string, bare bool, giverRef, branch string, r, g Hash) error {
	diff, err := MergeDiff(store, r, g)
	if err != nil {
		return err
	}

	if err := refs.SetMergeHead(g); err != nil {
		return err
	}
	msg := "Merge " + giverRef + " into " + branch
	if conflicts := conflictedPaths(diff); len(conflicts) > 0 {
		msg += "\nConflicts:\n"
		for _, p := range conflicts {
			msg += "\t" + p + "\n"
		}
	}
	if err := refs.SetMergeMsg(msg); err != nil {
		return err
	}

	entries := map[indexKey]Hash{}
	for p, e := range diff {
		switch e.Status {
		case StatusModify:
			entries[indexKey{Path: p, Stage: 0}] = e.Giver
		case StatusAdd, StatusSame:
			h := e.Receiver
			if h.IsZero() {
				h = e.Giver
			}
			entries[indexKey{Path: p, Stage: 0}] = h
		case StatusConflict, StatusDelete:
			// conflicts are staged below via WriteConflict; deletes hold
			// neither side's content going forward.
		}
	}
	if err := index.Write(entries); err != nil {
		return err
	}
	for _, p := range conflictedPaths(diff) {
		e := diff[p]
		if err := index.WriteConflict(p, e.Receiver, e.Giver, e.Base, !e.Base.IsZero()); err != nil {
			return err
		}
	}

	if bare {
		return nil
	}
	return ApplyDiff(store, diff, workDir)
}

func conflictedPaths(diff Diff) []string {
	var paths []string
	for p, e := range diff {
		if e.Status == StatusConflict {
			paths = append(paths, p)
		}
	}
	sort.Strings(paths)
	return paths
}
