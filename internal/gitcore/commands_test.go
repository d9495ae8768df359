package gitcore

import (
	"os"
	"path/filepath"
	"testing"
)

func writeFile(t *testing.T, repo *Repository, rel, content string) {
	t.Helper()
	full := filepath.Join(repo.WorkDir, rel)
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		t.Fatal(err)
	}
	if err := os.WriteFile(full, []byte(content), 0o644); err != nil {
		t.Fatal(err)
	}
}

func TestAddStagesFile(t *testing.T) {
	repo, err := Init(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, repo, "a.txt", "hello")

	if err := repo.Add("a.txt"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	ok, err := repo.Index.HasFile("a.txt", 0)
	if err != nil {
		t.Fatal(err)
	}
	if !ok {
		t.Fatal("expected a.txt staged after Add")
	}
}

func TestAddDirectoryRecurses(t *testing.T) {
	repo, err := Init(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, repo, "dir/a.txt", "a")
	writeFile(t, repo, "dir/b.txt", "b")

	if err := repo.Add("dir"); err != nil {
		t.Fatalf("Add: %v", err)
	}
	for _, p := range []string{"dir/a.txt", "dir/b.txt"} {
		ok, err := repo.Index.HasFile(p, 0)
		if err != nil {
			t.Fatal(err)
		}
		if !ok {
			t.Errorf("expected %s staged", p)
		}
	}
}

func TestCommitNothingToCommit(t *testing.T) {
	repo, err := Init(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	_, err = repo.Commit("empty")
	if err == nil {
		t.Fatal("expected ErrNothingToCommit on an empty repo with no staged changes")
	}
}

func TestAddCommitProducesCommit(t *testing.T) {
	repo, err := Init(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, repo, "a.txt", "hello")
	if err := repo.Add("a.txt"); err != nil {
		t.Fatal(err)
	}
	h, err := repo.Commit("initial commit")
	if err != nil {
		t.Fatalf("Commit: %v", err)
	}
	if h.IsZero() {
		t.Fatal("expected a non-zero commit hash")
	}
	if got := repo.Refs.HeadHash(); got != h {
		t.Errorf("HEAD = %s, want %s", got, h)
	}

	// Committing again with no further staged changes refuses.
	if _, err := repo.Commit("again"); err == nil {
		t.Fatal("expected second commit with no changes to be refused")
	}
}

func TestUpdateIndexPreconditionMatrix(t *testing.T) {
	repo, err := Init(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}

	// on-disk, not in index, add=false -> refused
	writeFile(t, repo, "a.txt", "v1")
	if err := repo.UpdateIndex("a.txt", false, false); err == nil {
		t.Error("expected refusal to stage an untracked file without --add")
	}

	// on-disk, not in index, add=true -> staged
	if err := repo.UpdateIndex("a.txt", true, false); err != nil {
		t.Fatalf("UpdateIndex(add): %v", err)
	}

	// not on disk, not in index, remove=true -> no-op, no error
	if err := repo.UpdateIndex("never-existed.txt", false, true); err != nil {
		t.Errorf("UpdateIndex(remove, absent) should be a no-op, got: %v", err)
	}

	// not on disk, in index, remove=true -> removed
	if err := os.Remove(filepath.Join(repo.WorkDir, "a.txt")); err != nil {
		t.Fatal(err)
	}
	if err := repo.UpdateIndex("a.txt", false, true); err != nil {
		t.Fatalf("UpdateIndex(remove): %v", err)
	}
	ok, err := repo.Index.HasFile("a.txt", 0)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected a.txt removed from index")
	}

	// not on disk, not in index, remove=false -> refused
	if err := repo.UpdateIndex("a.txt", false, false); err == nil {
		t.Error("expected refusal for a path that is neither on disk nor staged for removal")
	}
}

func TestBranchCreateAndList(t *testing.T) {
	repo, err := Init(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, repo, "a.txt", "v1")
	if err := repo.Add("a.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Commit("initial"); err != nil {
		t.Fatal(err)
	}

	if _, err := repo.Branch("feature"); err != nil {
		t.Fatalf("Branch(create): %v", err)
	}

	list, err := repo.Branch("")
	if err != nil {
		t.Fatal(err)
	}
	if list.Current != "master" {
		t.Errorf("Current = %s, want master", list.Current)
	}
	found := false
	for _, n := range list.Names {
		if n == "feature" {
			found = true
		}
	}
	if !found {
		t.Errorf("expected feature branch in list, got %v", list.Names)
	}
}

func TestBranchDuplicateRejected(t *testing.T) {
	repo, err := Init(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, repo, "a.txt", "v1")
	if err := repo.Add("a.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Commit("initial"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Branch("feature"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Branch("feature"); err == nil {
		t.Fatal("expected an error creating a branch with a name that already exists")
	}
}

func TestBranchBeforeFirstCommit(t *testing.T) {
	repo, err := Init(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Branch("feature"); err == nil {
		t.Fatal("expected an error creating a branch before the first commit")
	}
}

func TestCheckoutSwitchesBranch(t *testing.T) {
	repo, err := Init(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, repo, "a.txt", "v1")
	if err := repo.Add("a.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Commit("initial"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Branch("feature"); err != nil {
		t.Fatal(err)
	}

	msg, err := repo.Checkout("feature")
	if err != nil {
		t.Fatalf("Checkout: %v", err)
	}
	if msg != "Switched to branch feature" {
		t.Errorf("Checkout message = %q", msg)
	}
	branch, attached := repo.Refs.HeadBranchName()
	if !attached || branch != "feature" {
		t.Errorf("expected HEAD on feature, got (%q, %v)", branch, attached)
	}
}

func TestCheckoutAlreadyOnBranch(t *testing.T) {
	repo, err := Init(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, repo, "a.txt", "v1")
	if err := repo.Add("a.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Commit("initial"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Checkout("master"); err == nil {
		t.Fatal("expected an error checking out the branch already checked out")
	}
}

func TestDiffLinesReportsAdd(t *testing.T) {
	repo, err := Init(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, repo, "a.txt", "v1")
	if err := repo.Add("a.txt"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, repo, "b.txt", "v2")
	lines, err := repo.DiffLines("", "")
	if err != nil {
		t.Fatalf("DiffLines: %v", err)
	}
	if len(lines) == 0 {
		t.Fatal("expected at least one diff line for a file on disk that is not in the index")
	}
}

func TestRemoteAddRejectsNonAddVerb(t *testing.T) {
	repo, err := Init(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.RemoteAdd("remove", "origin", "/srv/repo"); err == nil {
		t.Fatal("expected remote verbs other than add to be rejected")
	}
}

func TestRemoteAddPersists(t *testing.T) {
	repo, err := Init(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	if err := repo.RemoteAdd("add", "origin", "/srv/repo"); err != nil {
		t.Fatalf("RemoteAdd: %v", err)
	}
	url, ok, err := repo.Config.RemoteURL("origin")
	if err != nil || !ok || url != "/srv/repo" {
		t.Fatalf("RemoteURL = (%q, %v, %v)", url, ok, err)
	}
}

func TestRmRefusesForce(t *testing.T) {
	repo, err := Init(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, repo, "a.txt", "v1")
	if err := repo.Add("a.txt"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Rm("a.txt", false, true); err == nil {
		t.Fatal("expected rm -f to be rejected as unsupported")
	}
}

func TestRmRemovesCleanFile(t *testing.T) {
	repo, err := Init(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, repo, "a.txt", "v1")
	if err := repo.Add("a.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Commit("initial"); err != nil {
		t.Fatal(err)
	}
	if err := repo.Rm("a.txt", false, false); err != nil {
		t.Fatalf("Rm: %v", err)
	}
	if _, err := os.Stat(filepath.Join(repo.WorkDir, "a.txt")); !os.IsNotExist(err) {
		t.Error("expected a.txt removed from disk")
	}
	ok, err := repo.Index.HasFile("a.txt", 0)
	if err != nil {
		t.Fatal(err)
	}
	if ok {
		t.Error("expected a.txt removed from index")
	}
}

func TestRmRefusesUnstagedChanges(t *testing.T) {
	repo, err := Init(t.TempDir(), false)
	if err != nil {
		t.Fatal(err)
	}
	writeFile(t, repo, "a.txt", "v1")
	if err := repo.Add("a.txt"); err != nil {
		t.Fatal(err)
	}
	if _, err := repo.Commit("initial"); err != nil {
		t.Fatal(err)
	}
	writeFile(t, repo, "a.txt", "v2")
	if err := repo.Rm("a.txt", false, false); err == nil {
		t.Fatal("expected rm to refuse a file with unstaged changes")
	}
}
