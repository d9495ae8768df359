package gitcore

import (
	"path/filepath"
	"testing"
)

func writeCommitWithTree(t *testing.T, store *Store, toc TOC, parents ...Hash) Hash {
	t.Helper()
	treeHash, err := WriteTree(store, BuildTreeFromTOC(toc))
	if err != nil {
		t.Fatal(err)
	}
	c := &Commit{Tree: treeHash, Parents: parents, Date: "d", Message: "m"}
	h, err := store.Write(c.Serialize())
	if err != nil {
		t.Fatal(err)
	}
	return h
}

func TestCommonAncestorLinearHistory(t *testing.T) {
	store := NewStore(t.TempDir())
	root := writeCommitWithTree(t, store, TOC{"f": Hash("1")})
	a := writeCommitWithTree(t, store, TOC{"f": Hash("2")}, root)
	b := writeCommitWithTree(t, store, TOC{"f": Hash("3")}, a)

	if got := CommonAncestor(store, root, b); got != root {
		t.Errorf("CommonAncestor(root, b) = %s, want %s", got, root)
	}
}

func TestCommonAncestorDivergentBranches(t *testing.T) {
	store := NewStore(t.TempDir())
	base := writeCommitWithTree(t, store, TOC{"f": Hash("1")})
	left := writeCommitWithTree(t, store, TOC{"f": Hash("2")}, base)
	right := writeCommitWithTree(t, store, TOC{"f": Hash("3")}, base)

	if got := CommonAncestor(store, left, right); got != base {
		t.Errorf("CommonAncestor(left, right) = %s, want %s", got, base)
	}
	// order-independence
	if got := CommonAncestor(store, right, left); got != base {
		t.Errorf("CommonAncestor(right, left) = %s, want %s", got, base)
	}
}

func TestCanFastForward(t *testing.T) {
	store := NewStore(t.TempDir())
	root := writeCommitWithTree(t, store, TOC{"f": Hash("1")})
	ahead := writeCommitWithTree(t, store, TOC{"f": Hash("2")}, root)

	if !CanFastForward(store, Hash(""), ahead) {
		t.Error("expected fast-forward when receiver has no commits yet")
	}
	if !CanFastForward(store, root, ahead) {
		t.Error("expected fast-forward when receiver is an ancestor of giver")
	}

	divergedA := writeCommitWithTree(t, store, TOC{"f": Hash("3")}, root)
	divergedB := writeCommitWithTree(t, store, TOC{"f": Hash("4")}, root)
	if CanFastForward(store, divergedA, divergedB) {
		t.Error("did not expect fast-forward between diverged commits")
	}
}

func TestHasConflicts(t *testing.T) {
	clean := Diff{"a": {Status: StatusModify}}
	if HasConflicts(clean) {
		t.Error("did not expect conflicts")
	}
	dirty := Diff{"a": {Status: StatusConflict}}
	if !HasConflicts(dirty) {
		t.Error("expected conflicts to be detected")
	}
}

func TestMergeDiffConflict(t *testing.T) {
	store := NewStore(t.TempDir())
	base := writeCommitWithTree(t, store, TOC{"f.txt": HashContent([]byte("base"))})
	for _, c := range [][]byte{[]byte("base"), []byte("ours"), []byte("theirs")} {
		if _, err := store.Write(c); err != nil {
			t.Fatal(err)
		}
	}
	left := writeCommitWithTree(t, store, TOC{"f.txt": HashContent([]byte("ours"))}, base)
	right := writeCommitWithTree(t, store, TOC{"f.txt": HashContent([]byte("theirs"))}, base)

	diff, err := MergeDiff(store, left, right)
	if err != nil {
		t.Fatal(err)
	}
	if !HasConflicts(diff) {
		t.Fatal("expected a conflict on f.txt")
	}
	if diff["f.txt"].Status != StatusConflict {
		t.Errorf("f.txt = %s, want CONFLICT", diff["f.txt"].Status)
	}
}

func TestFastForwardMergeMovesBranchAndIndex(t *testing.T) {
	workDir := t.TempDir()
	gitDir := filepath.Join(workDir, MetaDirName)
	store := NewStore(gitDir)
	refs := NewRefs(gitDir, store)
	index := NewIndex(gitDir, workDir, store)

	if err := refs.SetHeadAttached("master"); err != nil {
		t.Fatal(err)
	}

	blobOld, _ := store.Write([]byte("old"))
	root := writeCommitWithTree(t, store, TOC{"f.txt": blobOld})
	blobNew, _ := store.Write([]byte("new"))
	ahead := writeCommitWithTree(t, store, TOC{"f.txt": blobNew}, root)

	if err := refs.Write("master", root); err != nil {
		t.Fatal(err)
	}

	if err := FastForwardMerge(store, refs, index, workDir, gitDir, false, root, ahead); err != nil {
		t.Fatalf("FastForwardMerge: %v", err)
	}

	got, ok := refs.Hash("master")
	if !ok || got != ahead {
		t.Fatalf("expected master to fast-forward to %s, got %s", ahead, got)
	}
	toc, err := index.TOC()
	if err != nil {
		t.Fatal(err)
	}
	if toc["f.txt"] != blobNew {
		t.Fatalf("expected index to reflect fast-forwarded tree, got %v", toc)
	}
}

func TestNonFastForwardMergeConflictMessage(t *testing.T) {
	workDir := t.TempDir()
	gitDir := filepath.Join(workDir, MetaDirName)
	store := NewStore(gitDir)
	refs := NewRefs(gitDir, store)
	index := NewIndex(gitDir, workDir, store)

	for _, c := range [][]byte{[]byte("base"), []byte("ours"), []byte("theirs")} {
		if _, err := store.Write(c); err != nil {
			t.Fatal(err)
		}
	}
	base := writeCommitWithTree(t, store, TOC{"f.txt": HashContent([]byte("base"))})
	left := writeCommitWithTree(t, store, TOC{"f.txt": HashContent([]byte("ours"))}, base)
	right := writeCommitWithTree(t, store, TOC{"f.txt": HashContent([]byte("theirs"))}, base)

	if err := NonFastForwardMerge(store, refs, index, workDir, gitDir, true, "feat", "master", left, right); err != nil {
		t.Fatalf("NonFastForwardMerge: %v", err)
	}

	if !refs.IsMerging() {
		t.Fatal("expected MERGING state entered")
	}
	msg, ok := refs.MergeMsg()
	if !ok {
		t.Fatal("expected MERGE_MSG to be set")
	}
	want := "Merge feat into master\nConflicts:\n\tf.txt\n"
	if msg != want {
		t.Fatalf("MergeMsg = %q, want %q", msg, want)
	}

	conflicted, err := index.ConflictedPaths()
	if err != nil {
		t.Fatal(err)
	}
	if len(conflicted) != 1 || conflicted[0] != "f.txt" {
		t.Fatalf("ConflictedPaths = %v, want [f.txt]", conflicted)
	}
}
