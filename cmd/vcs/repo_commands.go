package main

import (
	"fmt"
	"os"

	"github.com/vcslab/minivcs/internal/gitcore"
	"github.com/vcslab/minivcs/internal/termui"
)

func runInit(args []string) int {
	bare := false
	dir := "."
	for _, a := range args {
		switch a {
		case "--bare":
			bare = true
		default:
			dir = a
		}
	}
	if _, err := gitcore.Init(dir, bare); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}
	fmt.Printf("Initialized empty vcs repository in %s\n", dir)
	return 0
}

func runClone(args []string) int {
	bare := false
	var positional []string
	for _, a := range args {
		if a == "--bare" {
			bare = true
			continue
		}
		positional = append(positional, a)
	}
	if len(positional) != 2 {
		fmt.Fprintln(os.Stderr, "usage: vcs clone [--bare] <src> <dst>")
		return 1
	}
	if _, err := gitcore.Clone(positional[0], positional[1], bare); err != nil {
		fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
		return 128
	}
	return 0
}

func runAdd(repo *gitcore.Repository, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: vcs add <path>")
		return 1
	}
	if err := repo.Add(args[0]); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func runRm(repo *gitcore.Repository, args []string) int {
	recursive, force := false, false
	var pathspec string
	for _, a := range args {
		switch a {
		case "-r":
			recursive = true
		case "-f":
			force = true
		default:
			pathspec = a
		}
	}
	if pathspec == "" {
		fmt.Fprintln(os.Stderr, "usage: vcs rm [-r] [-f] <pathspec>")
		return 1
	}
	if err := repo.Rm(pathspec, recursive, force); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func runUpdateIndex(repo *gitcore.Repository, args []string) int {
	add, remove := false, false
	var path string
	for _, a := range args {
		switch a {
		case "--add":
			add = true
		case "--remove":
			remove = true
		default:
			path = a
		}
	}
	if path == "" {
		fmt.Fprintln(os.Stderr, "usage: vcs update-index [--add] [--remove] <path>")
		return 1
	}
	if err := repo.UpdateIndex(path, add, remove); err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	return 0
}

func runCommit(repo *gitcore.Repository, args []string) int {
	var message string
	for i := 0; i < len(args); i++ {
		if args[i] == "-m" && i+1 < len(args) {
			message = args[i+1]
			i++
		}
	}
	if message == "" {
		fmt.Fprintln(os.Stderr, "usage: vcs commit -m <message>")
		return 1
	}
	h, err := repo.Commit(message)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Printf("[%s] %s\n", h.Short(), message)
	return 0
}

func runBranch(repo *gitcore.Repository, args []string, ui *termui.UI) int {
	var name string
	if len(args) > 0 {
		name = args[0]
	}
	list, err := repo.Branch(name)
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	if list == nil {
		return 0
	}
	for _, n := range list.Names {
		fmt.Println(ui.BranchLine(n, n == list.Current))
	}
	return 0
}

func runCheckout(repo *gitcore.Repository, args []string) int {
	if len(args) != 1 {
		fmt.Fprintln(os.Stderr, "usage: vcs checkout <branch-or-hash>")
		return 1
	}
	msg, err := repo.Checkout(args[0])
	if err != nil {
		fmt.Fprintf(os.Stderr, "error: %v\n", err)
		return 1
	}
	fmt.Println(msg)
	return 0
}
