package main

import (
	"fmt"
	"os"

	"github.com/vcslab/minivcs/internal/gitcore"
	"github.com/vcslab/minivcs/internal/termui"
)

func runDiff(repo *gitcore.Repository, args []string, ui *termui.UI) int {
	var hash1, hash2 string
	if len(args) > 0 {
		hash1 = args[0]
	}
	if len(args) > 1 {
		hash2 = args[1]
	}
	lines, err := repo.DiffLines(hash1, hash2)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	for _, l := range lines {
		fmt.Println(ui.StatusLine(statusWord(l), pathFromLine(l)))
	}
	return 0
}

func statusWord(line string) string {
	for i, c := range line {
		if c == ' ' {
			return line[:i]
		}
	}
	return line
}

func pathFromLine(line string) string {
	for i, c := range line {
		if c == ' ' {
			return line[i+1:]
		}
	}
	return ""
}

func runMerge(repo *gitcore.Repository, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: vcs merge <ref>")
		return 1
	}
	msg, err := repo.Merge(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println(msg)
	return 0
}

func runRemote(repo *gitcore.Repository, args []string) int {
	if len(args) != 3 {
		fmt.Fprintln(os.Stderr, "usage: vcs remote add <name> <url>")
		return 1
	}
	if err := repo.RemoteAdd(args[0], args[1], args[2]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func runFetch(repo *gitcore.Repository, args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: vcs fetch <remote> <branch>")
		return 1
	}
	note, err := repo.Fetch(args[0], args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if note != "" {
		fmt.Println(note)
	}
	return 0
}

func runPull(repo *gitcore.Repository, args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: vcs pull <remote> <branch>")
		return 1
	}
	msg, err := repo.Pull(args[0], args[1])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println(msg)
	return 0
}

func runPush(repo *gitcore.Repository, args []string) int {
	force := false
	var positional []string
	for _, a := range args {
		if a == "-f" {
			force = true
			continue
		}
		positional = append(positional, a)
	}
	if len(positional) != 2 {
		fmt.Fprintln(os.Stderr, "usage: vcs push [-f] <remote> <branch>")
		return 1
	}
	note, err := repo.Push(positional[0], positional[1], force)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if note != "" {
		fmt.Println(note)
	}
	return 0
}
