// Package termui renders command output: colored branch lines, status
// sections and tables when stdout is a terminal, plain text otherwise, plus
// a spinner helper.
package termui

import (
	"fmt"
	"os"

	"github.com/pterm/pterm"

	"github.com/vcslab/minivcs/internal/termcolor"
)

// UI renders command output, honoring a resolved color mode the way
// termcolor.Writer does (auto/always/never, NO_COLOR-aware).
type UI struct {
	cw *termcolor.Writer
}

// New creates a UI bound to f, resolving mode the same way
// termcolor.NewWriter does, and toggles pterm's global color switch to
// match so pterm's own print helpers respect the same decision.
func New(f *os.File, mode termcolor.ColorMode) *UI {
	cw := termcolor.NewWriter(f, mode)
	if cw.Enabled() {
		pterm.EnableColor()
	} else {
		pterm.DisableColor()
	}
	return &UI{cw: cw}
}

// Section prints a titled section header.
func (u *UI) Section(title string) {
	pterm.DefaultSection.Println(title)
}

// BranchLine formats one line of `branch` output: a green "* " marker and
// green name for the currently checked-out branch, plain otherwise.
func (u *UI) BranchLine(name string, current bool) string {
	if current {
		return u.cw.Green("* " + name)
	}
	return "  " + name
}

// StatusLine formats one path's status line for `status`/`diff` output.
func (u *UI) StatusLine(status, path string) string {
	switch status {
	case "ADD":
		return u.cw.Green(status) + " " + path
	case "DELETE":
		return u.cw.Red(status) + " " + path
	case "CONFLICT":
		return u.cw.Red(status) + " " + path
	default:
		return u.cw.Yellow(status) + " " + path
	}
}

// Table renders rows under headers with pterm; if pterm fails to render, it
// falls back to printing each row slice with fmt.Println, unaligned and
// without headers.
func (u *UI) Table(headers []string, rows [][]string) {
	data := make(pterm.TableData, 0, len(rows)+1)
	data = append(data, headers)
	data = append(data, rows...)
	if err := pterm.DefaultTable.WithHasHeader().WithData(data).Render(); err != nil {
		for _, row := range rows {
			fmt.Println(row)
		}
	}
}

// Success prints a success-styled line.
func (u *UI) Success(msg string) {
	pterm.Success.Println(msg)
}

// Error prints an error-styled line.
func (u *UI) Error(msg string) {
	pterm.Error.Println(msg)
}

// Spinner starts a spinner with the given text and returns its pterm
// printer; the caller stops it through that printer (Success, Fail or Stop).
func (u *UI) Spinner(text string) (*pterm.SpinnerPrinter, error) {
	return pterm.DefaultSpinner.Start(text)
}
