package cli

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"slices"
	"time"

	"github.com/babarot/rmt/internal/trash"
	"github.com/babarot/rmt/internal/utils/fs"
	"github.com/dustin/go-humanize"
	"github.com/olekukonko/tablewriter"
	"github.com/samber/lo"
	"gopkg.in/yaml.v2"
)

type listEntry struct {
	ID           string    `json:"id" yaml:"id"`
	OriginalPath string    `json:"original_path" yaml:"original_path"`
	Kind         string    `json:"kind" yaml:"kind"`
	Size         int64     `json:"size" yaml:"size"`
	DeletionDate time.Time `json:"deletion_date" yaml:"deletion_date"`
}

func (c *CLI) List() error {
	slog.Debug("cli.list started")
	defer slog.Debug("cli.list finished")

	opt := c.option.List
	items, err := c.manager.List()
	if err != nil {
		return err
	}
	total := len(items)

	now := c.now()
	items = trash.Filter(items, trash.FilterOptions{
		PathContains:  opt.FilterPath,
		Globs:         opt.Globs,
		Patterns:      opt.Excludes,
		Size:          trash.SizeOptions{Min: opt.MinSize, Max: opt.MaxSize},
		ExpiresWithin: opt.ExpiresWithin,
		Now:           now,
	})
	slog.Debug("filtered trash items", "total", total, "shown", len(items))

	slices.SortStableFunc(items, func(a, b *trash.Item) int {
		return a.DeletionDate.Compare(b.DeletionDate)
	})

	switch opt.Format {
	case "json":
		return c.printJSON(items)
	case "yaml":
		return c.printYAML(items)
	}

	filtered := total != len(items) || opt.FilterPath != ""
	switch {
	case opt.FilterPath != "" && len(items) > 0:
		fmt.Fprintf(c.stdout, "Items in the trash matching the path filter: '%s'\n", opt.FilterPath)
	case opt.FilterPath != "":
		fmt.Fprintf(c.stdout, "No items found in the trash matching the path filter: '%s'\n", opt.FilterPath)
		return nil
	case len(items) == 0 && filtered:
		fmt.Fprintln(c.stdout, "No items found in the trash matching the filters.")
		return nil
	case len(items) == 0:
		fmt.Fprintln(c.stdout, "The trash is empty.")
		return nil
	}

	table := tablewriter.NewWriter(c.stdout)
	table.SetHeader([]string{"Original Path", "ID", "Kind", "Size", "Deletion Date"})
	table.SetAutoFormatHeaders(false)
	table.SetAutoWrapText(false)
	for _, item := range items {
		size := "-"
		if n, err := fs.DirSize(item.Path); err == nil {
			size = humanize.Bytes(uint64(n))
		}
		table.Append([]string{
			item.OriginalPath,
			item.ID,
			item.Kind().String(),
			size,
			item.FormatDeletionDate(now),
		})
	}
	table.Render()
	return nil
}

func toEntries(items []*trash.Item) []listEntry {
	return lo.Map(items, func(item *trash.Item, _ int) listEntry {
		size, _ := fs.DirSize(item.Path)
		return listEntry{
			ID:           item.ID,
			OriginalPath: item.OriginalPath,
			Kind:         item.Kind().String(),
			Size:         size,
			DeletionDate: item.DeletionDate,
		}
	})
}

func (c *CLI) printJSON(items []*trash.Item) error {
	enc := json.NewEncoder(c.stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(toEntries(items))
}

func (c *CLI) printYAML(items []*trash.Item) error {
	out, err := yaml.Marshal(toEntries(items))
	if err != nil {
		return err
	}
	_, err = c.stdout.Write(out)
	return err
}
