package cli

import (
	"fmt"
	"log/slog"
)

func (c *CLI) Restore() error {
	slog.Debug("cli.restore started")
	defer slog.Debug("cli.restore finished")

	opt := c.option.Restore
	dst, err := c.manager.Restore(opt.Args.ID, opt.Rename)
	if dst != "" {
		fmt.Fprintf(c.stdout, "restored '%s' to %s\n", opt.Args.ID, dst)
	}
	return err
}
