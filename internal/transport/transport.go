// Package transport implements the "execute F against repository R"
// primitive: a remote in this system is a sibling directory reachable
// through the same filesystem, not a network endpoint, so the only
// transport mechanism is a scoped working-directory swap.
package transport

import (
	"fmt"
	"os"
	"sync"
)

// remoteMu serializes onRemote scopes: two simultaneous directory swaps on
// one process are disallowed, per the single-threaded concurrency model.
var remoteMu sync.Mutex

// OnRemote changes the current working directory to remoteDir, runs fn, and
// restores the original directory on every exit path, including a panic or
// an error return from fn. Calls are serialized against each other.
func OnRemote(remoteDir string, fn func() error) error {
	remoteMu.Lock()
	defer remoteMu.Unlock()

	orig, err := os.Getwd()
	if err != nil {
		return fmt.Errorf("transport: getting cwd: %w", err)
	}
	if err := os.Chdir(remoteDir); err != nil {
		return fmt.Errorf("transport: entering remote %s: %w", remoteDir, err)
	}
	defer os.Chdir(orig) //nolint:errcheck // best-effort restore; original dir is assumed to still exist

	return fn()
}
