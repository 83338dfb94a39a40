package cli

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"

	"al.essio.dev/pkg/shellescape"
	"github.com/babarot/rmt/internal/config"
	"github.com/babarot/rmt/internal/trash"
	"github.com/babarot/rmt/internal/utils/fs"
	"github.com/fatih/color"
	"github.com/samber/lo"
)

func (c *CLI) Rm() error {
	slog.Debug("cli.rm started")
	defer slog.Debug("cli.rm finished")

	opt := c.option.Rm
	if opt.Immediate {
		return c.deletePaths(opt.Args.Paths)
	}

	days := c.config.GracePeriodInDays
	if opt.GracePeriodInDays != nil {
		days = *opt.GracePeriodInDays
	}
	grace, err := config.GracePeriod(days)
	if err != nil {
		return err
	}
	deletionDate := c.now().Add(grace)

	paths := lo.Filter(opt.Args.Paths, func(path string, _ int) bool {
		return c.exists(path)
	})

	var putErr error
	if len(paths) > 0 {
		var items []*trash.Item
		items, putErr = c.manager.Put(paths, deletionDate)
		for _, item := range items {
			slog.Debug("trashed", "item", item.String())
			if opt.Print {
				fmt.Fprintf(c.stdout, "moved '%s' to trash (id: %s)\n", item.OriginalPath, item.ID)
				fmt.Fprintf(c.stdout, "  restore with: %s restore %s\n", c.version.AppName, shellescape.Quote(item.ID))
			}
		}
	}

	if opt.AutoClean {
		slog.Info("automatically cleaning trash, items that have passed the grace period will be deleted")
		result, err := c.manager.Purge(false)
		if result != nil {
			slog.Info("auto clean finished", "removed", len(result.Removed), "size", result.Size)
		}
		if err != nil {
			return errors.Join(putErr, err)
		}
	}

	return putErr
}

// deletePaths removes paths permanently, bypassing the trash
func (c *CLI) deletePaths(paths []string) error {
	var errs []error
	for _, path := range paths {
		if !c.exists(path) {
			continue
		}
		if err := c.validatePath(path); err != nil {
			errs = append(errs, err)
			continue
		}

		fi, err := os.Lstat(path)
		if err != nil {
			errs = append(errs, err)
			continue
		}
		if fi.IsDir() {
			err = os.RemoveAll(path)
		} else {
			err = os.Remove(path)
		}
		if err != nil {
			slog.Error("failed to delete", "path", path, "error", err)
			errs = append(errs, err)
			continue
		}
		slog.Info("deleted permanently", "path", path)
	}
	return errors.Join(errs...)
}

// validatePath refuses paths whose removal would take the filesystem root
// or the trash directory with it
func (c *CLI) validatePath(path string) error {
	if unsafe, err := fs.IsUnsafePath(path); err != nil {
		return err
	} else if unsafe {
		return fmt.Errorf("%w: %s", trash.ErrUnsafePath, path)
	}

	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	if fs.Contains(abs, c.manager.Dir()) {
		return fmt.Errorf("%w: %s", trash.ErrUnsafePath, path)
	}
	return nil
}

// exists warns about paths that are not there
func (c *CLI) exists(path string) bool {
	_, err := os.Lstat(path)
	if os.IsNotExist(err) {
		c.warnf("%s: No such file or directory", path)
		return false
	}
	return true
}

func (c *CLI) warnf(format string, a ...any) {
	color.New(color.FgYellow).Fprintf(c.stderr, format+"\n", a...)
}
