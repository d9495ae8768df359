package gitcore

import (
	"os"
	"path/filepath"
	"testing"
)

func newTestIndex(t *testing.T) (*Index, *Store, string) {
	t.Helper()
	gitDir := t.TempDir()
	workDir := t.TempDir()
	store := NewStore(gitDir)
	return NewIndex(gitDir, workDir, store), store, workDir
}

func TestIndexReadEmpty(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	entries, err := idx.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected empty index, got %v", entries)
	}
}

func TestIndexWriteReadRoundTrip(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	want := map[indexKey]Hash{
		{Path: "a.txt", Stage: 0}: Hash("aaa"),
		{Path: "b.txt", Stage: 0}: Hash("bbb"),
	}
	if err := idx.Write(want); err != nil {
		t.Fatal(err)
	}
	got, err := idx.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(got) != len(want) {
		t.Fatalf("Read returned %v, want %v", got, want)
	}
	for k, v := range want {
		if got[k] != v {
			t.Errorf("entry %v = %s, want %s", k, got[k], v)
		}
	}
}

func TestIndexHasFile(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	if err := idx.Write(map[indexKey]Hash{{Path: "a.txt", Stage: 0}: Hash("aaa")}); err != nil {
		t.Fatal(err)
	}
	ok, err := idx.HasFile("a.txt", 0)
	if err != nil || !ok {
		t.Fatalf("HasFile = (%v, %v), want (true, nil)", ok, err)
	}
	ok, err = idx.HasFile("a.txt", 2)
	if err != nil || ok {
		t.Fatalf("HasFile stage 2 = (%v, %v), want (false, nil)", ok, err)
	}
}

func TestIndexTOCOnlyStageZero(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	err := idx.Write(map[indexKey]Hash{
		{Path: "clean.txt", Stage: 0}: Hash("c"),
		{Path: "conf.txt", Stage: 2}:  Hash("r"),
		{Path: "conf.txt", Stage: 3}:  Hash("g"),
	})
	if err != nil {
		t.Fatal(err)
	}
	toc, err := idx.TOC()
	if err != nil {
		t.Fatal(err)
	}
	if len(toc) != 1 || toc["clean.txt"] != Hash("c") {
		t.Fatalf("TOC = %v, want only clean.txt", toc)
	}
}

func TestIndexWorkingCopyTOCSkipsMissingFiles(t *testing.T) {
	idx, _, workDir := newTestIndex(t)
	if err := os.WriteFile(filepath.Join(workDir, "present.txt"), []byte("hi"), 0o644); err != nil {
		t.Fatal(err)
	}
	err := idx.Write(map[indexKey]Hash{
		{Path: "present.txt", Stage: 0}: HashContent([]byte("hi")),
		{Path: "missing.txt", Stage: 0}: Hash("anything"),
	})
	if err != nil {
		t.Fatal(err)
	}
	toc, err := idx.WorkingCopyTOC()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := toc["missing.txt"]; ok {
		t.Error("expected missing.txt to be skipped")
	}
	if toc["present.txt"] != HashContent([]byte("hi")) {
		t.Errorf("present.txt hash = %s", toc["present.txt"])
	}
}

func TestIndexConflictedPaths(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	err := idx.Write(map[indexKey]Hash{
		{Path: "a.txt", Stage: 0}: Hash("a"),
		{Path: "b.txt", Stage: 2}: Hash("r"),
		{Path: "b.txt", Stage: 3}: Hash("g"),
	})
	if err != nil {
		t.Fatal(err)
	}
	paths, err := idx.ConflictedPaths()
	if err != nil {
		t.Fatal(err)
	}
	if len(paths) != 1 || paths[0] != "b.txt" {
		t.Fatalf("ConflictedPaths = %v, want [b.txt]", paths)
	}
}

func TestIndexMatchingFiles(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	err := idx.Write(map[indexKey]Hash{
		{Path: "a/b", Stage: 0}:     Hash("1"),
		{Path: "a/b/c.txt", Stage: 0}: Hash("2"),
		{Path: "a/bc.txt", Stage: 0}: Hash("3"),
	})
	if err != nil {
		t.Fatal(err)
	}
	matches, err := idx.MatchingFiles("a/b")
	if err != nil {
		t.Fatal(err)
	}
	want := map[string]bool{"a/b": true, "a/b/c.txt": true}
	if len(matches) != len(want) {
		t.Fatalf("MatchingFiles = %v, want %v", matches, want)
	}
	for _, m := range matches {
		if !want[m] {
			t.Errorf("unexpected match %q", m)
		}
	}
}

func TestIndexWriteRm(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	err := idx.Write(map[indexKey]Hash{
		{Path: "a.txt", Stage: 2}: Hash("r"),
		{Path: "a.txt", Stage: 3}: Hash("g"),
	})
	if err != nil {
		t.Fatal(err)
	}
	if err := idx.WriteRm("a.txt"); err != nil {
		t.Fatal(err)
	}
	entries, err := idx.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 0 {
		t.Fatalf("expected all stages removed, got %v", entries)
	}
}

func TestIndexWriteNonConflictClearsConflictStages(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	err := idx.Write(map[indexKey]Hash{
		{Path: "a.txt", Stage: 2}: Hash("r"),
		{Path: "a.txt", Stage: 3}: Hash("g"),
	})
	if err != nil {
		t.Fatal(err)
	}
	h, err := idx.WriteNonConflict("a.txt", []byte("resolved"))
	if err != nil {
		t.Fatal(err)
	}
	entries, err := idx.Read()
	if err != nil {
		t.Fatal(err)
	}
	if len(entries) != 1 {
		t.Fatalf("expected only stage 0 to remain, got %v", entries)
	}
	if entries[indexKey{Path: "a.txt", Stage: 0}] != h {
		t.Errorf("expected stage 0 entry to be %s", h)
	}
}

func TestIndexWriteConflict(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	if err := idx.WriteConflict("a.txt", Hash("r"), Hash("g"), Hash("b"), true); err != nil {
		t.Fatal(err)
	}
	entries, err := idx.Read()
	if err != nil {
		t.Fatal(err)
	}
	if entries[indexKey{Path: "a.txt", Stage: 1}] != Hash("b") {
		t.Error("expected base at stage 1")
	}
	if entries[indexKey{Path: "a.txt", Stage: 2}] != Hash("r") {
		t.Error("expected receiver at stage 2")
	}
	if entries[indexKey{Path: "a.txt", Stage: 3}] != Hash("g") {
		t.Error("expected giver at stage 3")
	}
	if _, ok := entries[indexKey{Path: "a.txt", Stage: 0}]; ok {
		t.Error("stage 0 must not coexist with a conflict")
	}
}

func TestIndexWriteConflictNoBase(t *testing.T) {
	idx, _, _ := newTestIndex(t)
	if err := idx.WriteConflict("a.txt", Hash("r"), Hash("g"), Hash(""), false); err != nil {
		t.Fatal(err)
	}
	entries, err := idx.Read()
	if err != nil {
		t.Fatal(err)
	}
	if _, ok := entries[indexKey{Path: "a.txt", Stage: 1}]; ok {
		t.Error("expected no base stage when hasBase is false")
	}
}
