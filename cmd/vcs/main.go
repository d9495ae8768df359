package main

import (
	"fmt"
	"os"
	"runtime"

	"github.com/vcslab/minivcs/internal/cli"
	"github.com/vcslab/minivcs/internal/gitcore"
	"github.com/vcslab/minivcs/internal/termcolor"
	"github.com/vcslab/minivcs/internal/termui"
)

// Build-time variables set via -ldflags.
var (
	version   = "dev"
	commit    = "unknown"
	buildDate = "unknown"
)

func main() {
	gf, args := parseGlobalFlags(os.Args[1:])

	for _, a := range args {
		if a == "--version" {
			printVersion()
			os.Exit(0)
		}
	}

	cw := termcolor.NewWriter(os.Stdout, gf.colorMode)
	ui := termui.New(os.Stdout, gf.colorMode)

	app := cli.NewApp("vcs", version)
	app.Stderr = os.Stderr

	// repo is populated after dispatch determines the matched command's
	// NeedsRepo, before any command closure runs.
	var repo *gitcore.Repository

	app.Register(&cli.Command{
		Name:    "init",
		Summary: "Create an empty repository",
		Usage:   "vcs init [--bare] [<directory>]",
		Run:     func(args []string) int { return runInit(args) },
	})

	app.Register(&cli.Command{
		Name:    "clone",
		Summary: "Clone a repository into a new directory",
		Usage:   "vcs clone [--bare] <src> <dst>",
		Run:     func(args []string) int { return runClone(args) },
	})

	app.Register(&cli.Command{
		Name:      "add",
		Summary:   "Stage a file or directory",
		Usage:     "vcs add <path>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runAdd(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "rm",
		Summary:   "Remove a file from the working copy and the index",
		Usage:     "vcs rm [-r] <pathspec>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runRm(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "update-index",
		Summary:   "Stage or unstage a single path directly",
		Usage:     "vcs update-index [--add] [--remove] <path>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runUpdateIndex(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "commit",
		Summary:   "Record a commit of the staged changes",
		Usage:     "vcs commit -m <message>",
		Examples:  []string{"vcs commit -m \"fix off-by-one\""},
		NeedsRepo: true,
		Run:       func(args []string) int { return runCommit(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "branch",
		Summary:   "List branches, or create one at HEAD",
		Usage:     "vcs branch [<name>]",
		NeedsRepo: true,
		Run:       func(args []string) int { return runBranch(repo, args, ui) },
	})

	app.Register(&cli.Command{
		Name:      "checkout",
		Summary:   "Switch branches or restore a commit",
		Usage:     "vcs checkout <branch-or-hash>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runCheckout(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "diff",
		Summary:   "Show changes between commits, the index, and the working copy",
		Usage:     "vcs diff [<hash1>] [<hash2>]",
		Examples:  []string{"vcs diff", "vcs diff HEAD", "vcs diff main feature"},
		NeedsRepo: true,
		Run:       func(args []string) int { return runDiff(repo, args, ui) },
	})

	app.Register(&cli.Command{
		Name:      "merge",
		Summary:   "Merge a ref into the current branch",
		Usage:     "vcs merge <ref>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runMerge(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "remote",
		Summary:   "Manage remotes",
		Usage:     "vcs remote add <name> <url>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runRemote(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "fetch",
		Summary:   "Download objects and refs from a remote",
		Usage:     "vcs fetch <remote> <branch>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runFetch(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "pull",
		Summary:   "Fetch and merge a remote branch",
		Usage:     "vcs pull <remote> <branch>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runPull(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "push",
		Summary:   "Upload objects and update a remote ref",
		Usage:     "vcs push [-f] <remote> <branch>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runPush(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "status",
		Summary:   "Show the working tree status",
		Usage:     "vcs status [--watch]",
		NeedsRepo: true,
		Run:       func(args []string) int { return runStatus(repo, args, ui) },
	})

	app.Register(&cli.Command{
		Name:      "log",
		Summary:   "Show commit history",
		Usage:     "vcs log [--oneline] [<ref>]",
		NeedsRepo: true,
		Run:       func(args []string) int { return runLog(repo, args) },
	})

	app.Register(&cli.Command{
		Name:      "cat-file",
		Summary:   "Show object content, type, or size",
		Usage:     "vcs cat-file (-t|-s|-p) <object>",
		NeedsRepo: true,
		Run:       func(args []string) int { return runCatFile(repo, args) },
	})

	app.Register(&cli.Command{
		Name:    "version",
		Summary: "Show version information",
		Usage:   "vcs version",
		Run:     func([]string) int { printVersion(); return 0 },
	})

	if len(args) > 0 {
		if matched := app.Lookup(args[0]); matched != nil && matched.NeedsRepo {
			var err error
			repo, err = gitcore.DiscoverRepository(".")
			if err != nil {
				fmt.Fprintf(os.Stderr, "fatal: %v\n", err)
				os.Exit(128)
			}
		}
	}

	os.Exit(app.Run(args, cw))
}

func printVersion() {
	fmt.Printf("vcs %s\n", version)
	fmt.Printf("  commit:     %s\n", commit)
	fmt.Printf("  built:      %s\n", buildDate)
	fmt.Printf("  go version: %s\n", runtime.Version())
	fmt.Printf("  platform:   %s/%s\n", runtime.GOOS, runtime.GOARCH)
}
