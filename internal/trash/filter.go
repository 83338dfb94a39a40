package trash

import (
	"log/slog"
	"regexp"
	"strings"
	"time"

	"github.com/babarot/rmt/internal/utils/fs"
	"github.com/docker/go-units"
	"github.com/gobwas/glob"
	"github.com/k1LoW/duration"
	"github.com/samber/lo"
)

// Filterable defines the interface that trashed items must implement to be filtered
type Filterable interface {
	// GetName returns the original name of the item
	GetName() string
	// GetPath returns the current path in trash
	GetPath() string
	// GetOriginalPath returns where the item was trashed from
	GetOriginalPath() string
	// GetDeletionDate returns when the item becomes eligible for deletion
	GetDeletionDate() time.Time
}

// SizeOptions bounds the size of listed items, e.g. "10KB" or "1GB"
type SizeOptions struct {
	Min string
	Max string
}

// FilterOptions holds filtering configuration
type FilterOptions struct {
	// PathContains keeps items whose original path contains the substring
	PathContains string

	// Globs keeps items whose name matches any of the globs
	Globs []string

	// Patterns rejects items whose name matches any of the regular expressions
	Patterns []string

	Size SizeOptions

	// ExpiresWithin keeps items that become eligible for deletion within
	// the duration, e.g. "2 days"
	ExpiresWithin string

	// Now is the reference time for ExpiresWithin; zero means time.Now
	Now time.Time
}

// Filter applies filtering rules to a slice of items
func Filter[T Filterable](items []T, opts FilterOptions) []T {
	items = filterByPath(items, opts.PathContains)
	items = filterByGlobs(items, opts.Globs)
	items = rejectByPatterns(items, opts.Patterns)
	items = rejectBySize(items, opts.Size, fs.DirSize)

	now := opts.Now
	if now.IsZero() {
		now = time.Now()
	}
	items = filterByExpiry(items, opts.ExpiresWithin, now)

	return items
}

func filterByPath[T Filterable](items []T, substr string) []T {
	if substr == "" {
		return items
	}
	return lo.Filter(items, func(item T, _ int) bool {
		return strings.Contains(item.GetOriginalPath(), substr)
	})
}

func filterByGlobs[T Filterable](items []T, globs []string) []T {
	if len(globs) == 0 {
		return items
	}

	var matchers []glob.Glob
	for _, g := range globs {
		m, err := glob.Compile(g)
		if err != nil {
			slog.Warn("ignored invalid glob", "glob", g, "error", err)
			continue
		}
		matchers = append(matchers, m)
	}

	return lo.Filter(items, func(item T, _ int) bool {
		return lo.SomeBy(matchers, func(m glob.Glob) bool {
			return m.Match(item.GetName())
		})
	})
}

func rejectByPatterns[T Filterable](items []T, patterns []string) []T {
	if len(patterns) == 0 {
		return items
	}

	var res []*regexp.Regexp
	for _, pattern := range patterns {
		re, err := regexp.Compile(pattern)
		if err != nil {
			slog.Warn("ignored invalid pattern", "pattern", pattern, "error", err)
			continue
		}
		res = append(res, re)
	}

	return lo.Reject(items, func(item T, _ int) bool {
		return lo.SomeBy(res, func(re *regexp.Regexp) bool {
			return re.MatchString(item.GetName())
		})
	})
}

func rejectBySize[T Filterable](items []T, size SizeOptions, sizeFunc func(string) (int64, error)) []T {
	if size.Min == "" && size.Max == "" {
		return items
	}

	var filtered []T
	for _, item := range items {
		itemSize, err := sizeFunc(item.GetPath())
		if err != nil {
			continue // Skip items we can't size
		}

		include := true
		if size.Min != "" {
			if min, err := units.FromHumanSize(size.Min); err == nil {
				if itemSize < min {
					include = false
				}
			}
		}
		if size.Max != "" {
			if max, err := units.FromHumanSize(size.Max); err == nil {
				if max < itemSize {
					include = false
				}
			}
		}
		if include {
			filtered = append(filtered, item)
		}
	}
	return filtered
}

func filterByExpiry[T Filterable](items []T, within string, now time.Time) []T {
	if within == "" {
		return items
	}

	d, err := duration.Parse(within)
	if err != nil {
		slog.Error("failed to parse duration", "duration", within, "error", err)
		return items
	}

	return lo.Filter(items, func(item T, _ int) bool {
		return item.GetDeletionDate().Sub(now) <= d
	})
}
