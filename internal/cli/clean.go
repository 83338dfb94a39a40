package cli

import (
	"fmt"
	"log/slog"
	"os"

	"github.com/dustin/go-humanize"
	"github.com/fatih/color"
	"github.com/mattn/go-isatty"
)

func (c *CLI) Clean() error {
	slog.Debug("cli.clean started")
	defer slog.Debug("cli.clean finished")

	opt := c.option.Clean
	if opt.Immediate && !opt.Force && c.interactive() {
		ok, err := c.ask(fmt.Sprintf("Permanently delete everything in %s?", c.manager.Dir()))
		if err != nil {
			return fmt.Errorf("confirmation failed: %w", err)
		}
		if !ok {
			fmt.Fprintln(c.stdout, "Cleaning canceled.")
			return nil
		}
	}

	result, err := c.manager.Purge(opt.Immediate)
	if result != nil {
		c.printPurgeResult(len(result.Removed), result.Size)
	}
	return err
}

func (c *CLI) printPurgeResult(count int, size int64) {
	if count == 0 {
		fmt.Fprintln(c.stdout, "Nothing to clean.")
		return
	}
	green := color.New(color.FgHiGreen).SprintfFunc()
	noun := "items"
	if count == 1 {
		noun = "item"
	}
	fmt.Fprintf(c.stdout, "Removed %s %s, %s freed.\n",
		green("%d", count), noun, green("%s", humanize.Bytes(uint64(size))))
}

// interactive reports whether stdin is a terminal a prompt can be shown on
func (c *CLI) interactive() bool {
	f, ok := c.stdin.(*os.File)
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}
