package transport

import (
	"os"
	"path/filepath"
	"testing"
)

func TestOnRemoteRestoresDirOnSuccess(t *testing.T) {
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	remote := t.TempDir()

	err = OnRemote(remote, func() error {
		cwd, err := os.Getwd()
		if err != nil {
			return err
		}
		if resolved, _ := filepath.EvalSymlinks(cwd); resolved != mustEval(t, remote) {
			t.Errorf("inside OnRemote, cwd = %q, want %q", cwd, remote)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("OnRemote returned error: %v", err)
	}

	after, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if after != orig {
		t.Errorf("cwd after OnRemote = %q, want %q", after, orig)
	}
}

func TestOnRemoteRestoresDirOnError(t *testing.T) {
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	remote := t.TempDir()

	_ = OnRemote(remote, func() error {
		return os.ErrInvalid
	})

	after, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if after != orig {
		t.Errorf("cwd after failing OnRemote = %q, want %q", after, orig)
	}
}

func mustEval(t *testing.T, p string) string {
	t.Helper()
	resolved, err := filepath.EvalSymlinks(p)
	if err != nil {
		t.Fatal(err)
	}
	return resolved
}

func TestOnRemoteSequentialCallsBothRestore(t *testing.T) {
	orig, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	a, b := t.TempDir(), t.TempDir()

	if err := OnRemote(a, func() error { return nil }); err != nil {
		t.Fatalf("first OnRemote: %v", err)
	}
	if err := OnRemote(b, func() error { return nil }); err != nil {
		t.Fatalf("second OnRemote: %v", err)
	}

	after, err := os.Getwd()
	if err != nil {
		t.Fatal(err)
	}
	if after != orig {
		t.Errorf("cwd after two sequential OnRemote calls = %q, want %q", after, orig)
	}
}
