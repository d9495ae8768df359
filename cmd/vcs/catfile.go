package main

import (
	"fmt"
	"os"

	"github.com/vcslab/minivcs/internal/gitcore"
)

func runCatFile(repo *gitcore.Repository, args []string) int {
	if len(args) != 2 {
		fmt.Fprintln(os.Stderr, "usage: vcs cat-file (-t|-s|-p) <object>")
		return 1
	}
	flag, rev := args[0], args[1]

	h, ok := repo.Refs.Hash(rev)
	if !ok {
		fmt.Fprintf(os.Stderr, "fatal: not a valid object name %q\n", rev)
		return 128
	}
	content, ok := repo.Store.Read(h)
	if !ok {
		fmt.Fprintf(os.Stderr, "fatal: object %s not found\n", h)
		return 128
	}

	switch flag {
	case "-t":
		fmt.Println(objectKind(content))
		return 0
	case "-s":
		fmt.Println(len(content))
		return 0
	case "-p":
		return prettyPrint(h, content)
	default:
		fmt.Fprintf(os.Stderr, "error: unknown flag: %q\n", flag)
		return 1
	}
}

// objectKind prefers structural detection over ClassifyType, since
// ClassifyType's first-token heuristic reports a blob whose content begins
// with the word "blob" or "tree" as a tree (see gitcore.ClassifyType).
func objectKind(content []byte) gitcore.ObjectKind {
	if _, err := gitcore.TreeHash(content); err == nil {
		return gitcore.KindCommit
	}
	if _, err := gitcore.ParseTree(content); err == nil {
		return gitcore.KindTree
	}
	return gitcore.KindBlob
}

func prettyPrint(h gitcore.Hash, content []byte) int {
	switch objectKind(content) {
	case gitcore.KindCommit:
		c, err := gitcore.ParseCommit(content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			return 128
		}
		fmt.Printf("tree %s\n", c.Tree)
		for _, p := range c.Parents {
			fmt.Printf("parent %s\n", p)
		}
		fmt.Printf("Date:  %s\n\n", c.Date)
		fmt.Println(c.Message)
		return 0
	case gitcore.KindTree:
		entries, err := gitcore.ParseTree(content)
		if err != nil {
			fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
			return 128
		}
		for _, e := range entries {
			fmt.Printf("%s %s\t%s\n", e.Kind, e.Hash, e.Name)
		}
		return 0
	default:
		_, _ = os.Stdout.Write(content)
		return 0
	}
}
