package main

import (
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/fsnotify/fsnotify"

	"github.com/vcslab/minivcs/internal/gitcore"
	"github.com/vcslab/minivcs/internal/termui"
)

const statusWatchDebounce = 100 * time.Millisecond

func runStatus(repo *gitcore.Repository, args []string, ui *termui.UI) int {
	watch := false
	for _, a := range args {
		if a == "--watch" {
			watch = true
		}
	}

	if !watch {
		return printStatus(repo, ui)
	}
	return watchStatus(repo, ui)
}

func printStatus(repo *gitcore.Repository, ui *termui.UI) int {
	status, err := gitcore.ComputeStatus(repo.Store, repo.Refs, repo.Index, repo.WorkDir, repo.GitDir)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	if branch, attached := repo.Refs.HeadBranchName(); attached {
		fmt.Printf("On branch %s\n", branch)
	} else {
		fmt.Printf("HEAD detached at %s\n", repo.Refs.HeadHash().Short())
	}

	if len(status.Staged) == 0 && len(status.Unstaged) == 0 && len(status.Untracked) == 0 && len(status.Conflicts) == 0 {
		fmt.Println("nothing to commit, working directory clean")
		return 0
	}

	if len(status.Staged) > 0 {
		ui.Section("Changes staged for commit")
		for _, f := range status.Staged {
			fmt.Println(ui.StatusLine(string(f.Status), f.Path))
		}
	}
	if len(status.Unstaged) > 0 {
		ui.Section("Changes not staged")
		for _, f := range status.Unstaged {
			fmt.Println(ui.StatusLine(string(f.Status), f.Path))
		}
	}
	if len(status.Conflicts) > 0 {
		ui.Section("Unmerged paths")
		for _, p := range status.Conflicts {
			fmt.Println(ui.StatusLine("CONFLICT", p))
		}
	}
	if len(status.Untracked) > 0 {
		ui.Section("Untracked files")
		for _, p := range status.Untracked {
			fmt.Println(ui.StatusLine("?", p))
		}
	}
	return 0
}

// watchStatus reprints status whenever an entry directly inside the
// working-copy root or the metadata directory changes (the watch is not
// recursive, so changes inside subdirectories do not trigger a reprint),
// coalescing bursts of events behind a short debounce —
// the same shape the teacher's server package uses for its own status
// watcher, adapted here to a plain terminal loop instead of a broadcast hub.
func watchStatus(repo *gitcore.Repository, ui *termui.UI) int {
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	defer watcher.Close()

	if err := watcher.Add(repo.WorkDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if err := watcher.Add(repo.GitDir); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}

	printStatus(repo, ui)

	var debounce *time.Timer
	changed := make(chan struct{}, 1)
	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return 0
			}
			if event.Op == fsnotify.Chmod {
				continue
			}
			if debounce == nil {
				debounce = time.AfterFunc(statusWatchDebounce, func() { changed <- struct{}{} })
			} else {
				debounce.Reset(statusWatchDebounce)
			}
		case <-changed:
			debounce = nil
			fmt.Println()
			printStatus(repo, ui)
		case err, ok := <-watcher.Errors:
			if !ok {
				return 0
			}
			fmt.Fprintf(os.Stderr, "watch error: %v\n", err)
		}
	}
}

func runLog(repo *gitcore.Repository, args []string) int {
	oneline := false
	ref := "HEAD"
	for _, a := range args {
		if a == "--oneline" {
			oneline = true
			continue
		}
		ref = a
	}

	h, ok := repo.Refs.Hash(ref)
	if !ok {
		fmt.Fprintf(os.Stderr, "fatal: unknown ref %q\n", ref)
		return 128
	}

	for !h.IsZero() {
		content, ok := repo.Store.Read(h)
		if !ok {
			fmt.Fprintf(os.Stderr, "fatal: missing commit object %s\n", h)
			return 128
		}
		c, err := gitcore.ParseCommit(content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			return 128
		}

		if oneline {
			fmt.Printf("%s %s\n", h.Short(), firstLine(c.Message))
		} else {
			fmt.Printf("commit %s\n", h)
			fmt.Printf("Date:  %s\n\n", c.Date)
			for _, line := range strings.Split(c.Message, "\n") {
				fmt.Printf("    %s\n", line)
			}
			fmt.Println()
		}

		if len(c.Parents) == 0 {
			break
		}
		h = c.Parents[0]
	}
	return 0
}

func firstLine(s string) string {
	if i := strings.IndexByte(s, '\n'); i >= 0 {
		return s[:i]
	}
	return s
}
