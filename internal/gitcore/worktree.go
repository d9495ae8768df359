package gitcore

import (
	"fmt"
	"os"
	"path/filepath"
)

// ApplyDiff reconciles the working copy at workDir with diff: ADD writes
// whichever of receiver/giver content is present, MODIFY writes the giver's
// content, DELETE unlinks the file, CONFLICT writes the whole-file marker
// concatenation, and SAME is a no-op. Directories left empty afterward are
// pruned, except the metadata directory.
func ApplyDiff(store *Store, diff Diff, workDir string) error {
	for path, entry := range diff {
		full := filepath.Join(workDir, filepath.FromSlash(path))
		switch entry.Status {
		case StatusAdd:
			h := entry.Receiver
			if h.IsZero() {
				h = entry.Giver
			}
			if err := writeBlobToPath(store, full, h); err != nil {
				return err
			}
		case StatusModify:
			if err := writeBlobToPath(store, full, entry.Giver); err != nil {
				return err
			}
		case StatusDelete:
			if err := os.Remove(full); err != nil && !os.IsNotExist(err) {
				return fmt.Errorf("gitcore: removing %s: %w", path, err)
			}
		case StatusConflict:
			if err := writeConflictMarker(store, full, entry.Receiver, entry.Giver); err != nil {
				return err
			}
		case StatusSame:
			// no-op
		}
	}
	return pruneEmptyDirs(workDir, workDir)
}

func writeBlobToPath(store *Store, full string, h Hash) error {
	content, ok := store.Read(h)
	if !ok {
		return fmt.Errorf("gitcore: %w: %s", ErrObjectNotFound, h)
	}
	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("gitcore: creating directories for %s: %w", full, err)
	}
	return os.WriteFile(full, content, 0o644)
}

func writeConflictMarker(store *Store, full string, receiver, giver Hash) error {
	var receiverContent, giverContent []byte
	if !receiver.IsZero() {
		receiverContent, _ = store.Read(receiver)
	}
	if !giver.IsZero() {
		giverContent, _ = store.Read(giver)
	}
	var combined []byte
	combined = append(combined, "<<<<<<\n"...)
	combined = append(combined, receiverContent...)
	combined = append(combined, "======\n"...)
	combined = append(combined, giverContent...)
	combined = append(combined, ">>>>>>\n"...)

	if err := os.MkdirAll(filepath.Dir(full), 0o755); err != nil {
		return fmt.Errorf("gitcore: creating directories for %s: %w", full, err)
	}
	return os.WriteFile(full, combined, 0o644)
}

// pruneEmptyDirs recursively removes directories under root that became
// empty, excluding the metadata directory itself.
func pruneEmptyDirs(dir, root string) error {
	entries, err := os.ReadDir(dir)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("gitcore: reading %s: %w", dir, err)
	}
	for _, e := range entries {
		if !e.IsDir() {
			continue
		}
		if dir == root && e.Name() == MetaDirName {
			continue
		}
		child := filepath.Join(dir, e.Name())
		if err := pruneEmptyDirs(child, root); err != nil {
			return err
		}
	}
	if dir == root {
		return nil
	}
	remaining, err := os.ReadDir(dir)
	if err != nil {
		return fmt.Errorf("gitcore: reading %s: %w", dir, err)
	}
	if len(remaining) == 0 {
		return os.Remove(dir)
	}
	return nil
}
