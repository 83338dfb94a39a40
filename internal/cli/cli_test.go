package cli

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/babarot/rmt/internal/config"
	"github.com/babarot/rmt/internal/trash"
	"github.com/babarot/rmt/internal/xattr"
	"github.com/fatih/color"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParseArgs(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		command string
		check   func(t *testing.T, opt Option)
	}{
		{
			name:    "rm with options",
			args:    []string{"-vv", "rm", "-g", "3", "-a", "a.txt", "b.txt"},
			command: "rm",
			check: func(t *testing.T, opt Option) {
				assert.Len(t, opt.Verbose, 2)
				require.NotNil(t, opt.Rm.GracePeriodInDays)
				assert.Equal(t, 3, *opt.Rm.GracePeriodInDays)
				assert.True(t, opt.Rm.AutoClean)
				assert.Equal(t, []string{"a.txt", "b.txt"}, opt.Rm.Args.Paths)
			},
		},
		{
			name:    "rm without grace period",
			args:    []string{"rm", "a.txt"},
			command: "rm",
			check: func(t *testing.T, opt Option) {
				assert.Nil(t, opt.Rm.GracePeriodInDays)
				assert.Empty(t, opt.Verbose)
			},
		},
		{
			name:    "list defaults",
			args:    []string{"list"},
			command: "list",
			check: func(t *testing.T, opt Option) {
				assert.Equal(t, "table", opt.List.Format)
			},
		},
		{
			name:    "list filters",
			args:    []string{"list", "--format", "yaml", "-g", "*.txt", "-g", "*.md", "--filter-path", "docs", "--min-size", "1KB"},
			command: "list",
			check: func(t *testing.T, opt Option) {
				assert.Equal(t, "yaml", opt.List.Format)
				assert.Equal(t, []string{"*.txt", "*.md"}, opt.List.Globs)
				assert.Equal(t, "docs", opt.List.FilterPath)
				assert.Equal(t, "1KB", opt.List.MinSize)
			},
		},
		{
			name:    "restore",
			args:    []string{"restore", "abc", "--rename", "new.txt"},
			command: "restore",
			check: func(t *testing.T, opt Option) {
				assert.Equal(t, "abc", opt.Restore.Args.ID)
				assert.Equal(t, "new.txt", opt.Restore.Rename)
			},
		},
		{
			name:    "clean",
			args:    []string{"clean", "-i", "-f"},
			command: "clean",
			check: func(t *testing.T, opt Option) {
				assert.True(t, opt.Clean.Immediate)
				assert.True(t, opt.Clean.Force)
			},
		},
		{
			name:    "config get",
			args:    []string{"config", "get", "--key", "grace-period"},
			command: "config get",
			check: func(t *testing.T, opt Option) {
				assert.Equal(t, "grace-period", opt.Config.Get.Key)
			},
		},
		{
			name:    "config set",
			args:    []string{"config", "set", "-k", "trash-dir", "--value", "/tmp/trash"},
			command: "config set",
			check: func(t *testing.T, opt Option) {
				assert.Equal(t, "trash-dir", opt.Config.Set.Key)
				assert.Equal(t, "/tmp/trash", opt.Config.Set.Value)
			},
		},
		{
			name:    "version flag",
			args:    []string{"--version"},
			command: "",
			check: func(t *testing.T, opt Option) {
				assert.True(t, opt.Version)
			},
		},
		{
			name:    "version command",
			args:    []string{"version"},
			command: "version",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var opt Option
			parser := newParser(&opt, Version{AppName: "rmt"})
			_, err := parser.ParseArgs(tt.args)
			require.NoError(t, err)
			assert.Equal(t, tt.command, activeCommand(parser))
			if tt.check != nil {
				tt.check(t, opt)
			}
		})
	}
}

func TestParseArgsErrors(t *testing.T) {
	tests := [][]string{
		{"rm"},
		{"restore"},
		{"list", "--format", "xml"},
		{"config"},
		{"config", "get"},
		{"config", "get", "--key", "colour"},
		{"config", "set", "--key", "grace-period"},
	}
	for _, args := range tests {
		t.Run(strings.Join(args, " "), func(t *testing.T) {
			var opt Option
			_, err := newParser(&opt, Version{AppName: "rmt"}).ParseArgs(args)
			assert.Error(t, err)
		})
	}
}

type testCLI struct {
	*CLI
	stdout *bytes.Buffer
	stderr *bytes.Buffer
	store  *xattr.Memory
	work   string
	clock  time.Time
	asked  []string
}

func newTestCLI(t *testing.T) *testCLI {
	t.Helper()
	color.NoColor = true

	dir := t.TempDir()
	anchor := filepath.Join(dir, "rmt")
	require.NoError(t, os.WriteFile(anchor, nil, 0755))

	store := xattr.NewMemory()
	cfg, err := config.Load(store,
		config.WithAnchor(anchor),
		config.WithDefaultTrashDir(filepath.Join(dir, "trash")),
	)
	require.NoError(t, err)

	tc := &testCLI{
		stdout: &bytes.Buffer{},
		stderr: &bytes.Buffer{},
		store:  store,
		work:   t.TempDir(),
		clock:  time.Date(2024, 5, 10, 12, 0, 0, 0, time.UTC),
	}
	now := func() time.Time { return tc.clock }
	tc.CLI = &CLI{
		version: Version{AppName: "rmt", Version: "1.2.3", Revision: "abc", BuildDate: "today"},
		config:  cfg,
		manager: trash.NewManager(cfg.TrashDir, store, trash.WithClock(now)),
		now:     now,
		ask: func(prompt string) (bool, error) {
			tc.asked = append(tc.asked, prompt)
			return false, nil
		},
		stdin:  strings.NewReader(""),
		stdout: tc.stdout,
		stderr: tc.stderr,
	}
	return tc
}

func (tc *testCLI) file(t *testing.T, name, content string) string {
	t.Helper()
	path := filepath.Join(tc.work, name)
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))
	return path
}

func (tc *testCLI) rm(t *testing.T, opt RmOption, paths ...string) error {
	t.Helper()
	opt.Args.Paths = paths
	tc.option.Rm = opt
	return tc.Run("rm")
}

func (tc *testCLI) list(t *testing.T, opt ListOption) string {
	t.Helper()
	if opt.Format == "" {
		opt.Format = "table"
	}
	tc.option.List = opt
	tc.stdout.Reset()
	require.NoError(t, tc.Run("list"))
	return tc.stdout.String()
}

func (tc *testCLI) entries(t *testing.T) []*trash.Item {
	t.Helper()
	items, err := tc.manager.List()
	require.NoError(t, err)
	return items
}

func TestRmListRestore(t *testing.T) {
	tc := newTestCLI(t)
	a := tc.file(t, "a.txt", "aaa")
	b := tc.file(t, "b.txt", "bbbb")

	require.NoError(t, tc.rm(t, RmOption{Print: true}, a, b))
	assert.NoFileExists(t, a)
	assert.NoFileExists(t, b)
	assert.Contains(t, tc.stdout.String(), "moved '")
	assert.Contains(t, tc.stdout.String(), "restore with: rmt restore ")

	items := tc.entries(t)
	require.Len(t, items, 2)
	for _, item := range items {
		assert.True(t, tc.clock.Add(7*24*time.Hour).Equal(item.DeletionDate), item.DeletionDate)
	}

	out := tc.list(t, ListOption{})
	assert.Contains(t, out, "Original Path")
	assert.Contains(t, out, "a.txt")
	assert.Contains(t, out, "b.txt")
	assert.Contains(t, out, "2024-05-17 12:00:00")

	var id string
	for _, item := range items {
		if item.Name() == "a.txt" {
			id = item.ID
		}
	}
	require.NotEmpty(t, id)

	tc.stdout.Reset()
	tc.option.Restore.Args.ID = id
	tc.option.Restore.Rename = "a2.txt"
	require.NoError(t, tc.Run("restore"))
	assert.Contains(t, tc.stdout.String(), "restored '"+id+"' to ")
	assert.FileExists(t, filepath.Join(tc.work, "a2.txt"))
	assert.Len(t, tc.entries(t), 1)
}

func TestRmMissingPathWarns(t *testing.T) {
	tc := newTestCLI(t)
	a := tc.file(t, "a.txt", "a")
	missing := filepath.Join(tc.work, "missing.txt")

	require.NoError(t, tc.rm(t, RmOption{}, missing, a))
	assert.Contains(t, tc.stderr.String(), missing+": No such file or directory")
	assert.Len(t, tc.entries(t), 1)
}

func TestRmReportsFailures(t *testing.T) {
	tc := newTestCLI(t)
	a := tc.file(t, "a.txt", "a")
	tc.store.Fail = func(op xattr.Op, path, key string) error {
		if op == xattr.OpSet {
			return os.ErrPermission
		}
		return nil
	}

	err := tc.rm(t, RmOption{}, a)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "1 error occurred")
	assert.FileExists(t, a)
}

func TestRmImmediate(t *testing.T) {
	tc := newTestCLI(t)
	a := tc.file(t, "a.txt", "a")
	dir := filepath.Join(tc.work, "dir")
	require.NoError(t, os.MkdirAll(filepath.Join(dir, "sub"), 0755))

	require.NoError(t, tc.rm(t, RmOption{Immediate: true}, a, dir, filepath.Join(tc.work, "nope")))
	assert.NoFileExists(t, a)
	assert.NoDirExists(t, dir)
	assert.Empty(t, tc.entries(t))
	assert.Contains(t, tc.stderr.String(), "No such file or directory")
}

func TestRmImmediateRefusesTrashDir(t *testing.T) {
	tc := newTestCLI(t)
	trashDir := tc.manager.Dir()

	for _, path := range []string{trashDir, filepath.Dir(trashDir), "."} {
		err := tc.rm(t, RmOption{Immediate: true}, path)
		assert.ErrorIs(t, err, trash.ErrUnsafePath, path)
	}
	assert.DirExists(t, trashDir)
}

func TestRmGracePeriodOverrideAndClean(t *testing.T) {
	tc := newTestCLI(t)
	zero := 0
	require.NoError(t, tc.rm(t, RmOption{GracePeriodInDays: &zero}, tc.file(t, "a.txt", "12345")))
	require.NoError(t, tc.rm(t, RmOption{}, tc.file(t, "b.txt", "b")))

	// due exactly now: not expired yet
	tc.stdout.Reset()
	require.NoError(t, tc.Run("clean"))
	assert.Contains(t, tc.stdout.String(), "Nothing to clean.")
	assert.Len(t, tc.entries(t), 2)

	tc.clock = tc.clock.Add(time.Second)
	tc.stdout.Reset()
	require.NoError(t, tc.Run("clean"))
	assert.Contains(t, tc.stdout.String(), "Removed 1 item, 5 B freed.")
	assert.Len(t, tc.entries(t), 1)
}

func TestRmNegativeGracePeriod(t *testing.T) {
	tc := newTestCLI(t)
	a := tc.file(t, "a.txt", "a")
	negative := -1

	assert.Error(t, tc.rm(t, RmOption{GracePeriodInDays: &negative}, a))
	assert.FileExists(t, a)
}

func TestRmAutoClean(t *testing.T) {
	tc := newTestCLI(t)
	zero := 0
	require.NoError(t, tc.rm(t, RmOption{GracePeriodInDays: &zero}, tc.file(t, "old.txt", "old")))

	tc.clock = tc.clock.Add(time.Hour)
	require.NoError(t, tc.rm(t, RmOption{AutoClean: true}, tc.file(t, "new.txt", "new")))

	items := tc.entries(t)
	require.Len(t, items, 1)
	assert.Equal(t, "new.txt", items[0].Name())
}

func TestListMessages(t *testing.T) {
	tc := newTestCLI(t)
	assert.Equal(t, "The trash is empty.\n", tc.list(t, ListOption{}))

	require.NoError(t, tc.rm(t, RmOption{}, tc.file(t, "notes.md", "n"), tc.file(t, "a.txt", "a")))

	assert.Equal(t,
		"No items found in the trash matching the path filter: 'nothing'\n",
		tc.list(t, ListOption{FilterPath: "nothing"}))

	out := tc.list(t, ListOption{FilterPath: "notes"})
	assert.True(t, strings.HasPrefix(out, "Items in the trash matching the path filter: 'notes'\n"), out)
	assert.Contains(t, out, "notes.md")
	assert.NotContains(t, out, "a.txt")

	assert.Equal(t,
		"No items found in the trash matching the filters.\n",
		tc.list(t, ListOption{Globs: []string{"*.go"}}))

	out = tc.list(t, ListOption{Excludes: []string{`\.md$`}})
	assert.Contains(t, out, "a.txt")
	assert.NotContains(t, out, "notes.md")
}

func TestListSortedByDeletionDate(t *testing.T) {
	tc := newTestCLI(t)
	three, one := 3, 1
	require.NoError(t, tc.rm(t, RmOption{GracePeriodInDays: &three}, tc.file(t, "late.txt", "l")))
	require.NoError(t, tc.rm(t, RmOption{GracePeriodInDays: &one}, tc.file(t, "soon.txt", "s")))

	out := tc.list(t, ListOption{})
	assert.Less(t, strings.Index(out, "soon.txt"), strings.Index(out, "late.txt"))
	assert.Contains(t, out, "Tomorrow")
}

func TestListJSON(t *testing.T) {
	tc := newTestCLI(t)
	a := tc.file(t, "a.txt", "abc")
	require.NoError(t, tc.rm(t, RmOption{}, a))

	var entries []listEntry
	require.NoError(t, json.Unmarshal([]byte(tc.list(t, ListOption{Format: "json"})), &entries))
	require.Len(t, entries, 1)
	assert.Equal(t, "a.txt", filepath.Base(entries[0].OriginalPath))
	assert.Equal(t, "File", entries[0].Kind)
	assert.Equal(t, int64(3), entries[0].Size)
	assert.True(t, entries[0].DeletionDate.Equal(tc.clock.Add(7*24*time.Hour)))
}

func TestListYAML(t *testing.T) {
	tc := newTestCLI(t)
	require.NoError(t, tc.rm(t, RmOption{}, tc.file(t, "a.txt", "abc")))

	out := tc.list(t, ListOption{Format: "yaml"})
	assert.Contains(t, out, "original_path: ")
	assert.Contains(t, out, "kind: File")
	assert.Contains(t, out, "size: 3")
}

func TestCleanImmediateWithoutTerminal(t *testing.T) {
	tc := newTestCLI(t)
	require.NoError(t, tc.rm(t, RmOption{}, tc.file(t, "a.txt", "a"), tc.file(t, "b.txt", "b")))

	tc.option.Clean = CleanOption{Immediate: true}
	tc.stdout.Reset()
	require.NoError(t, tc.Run("clean"))

	assert.Empty(t, tc.asked, "no prompt without a terminal")
	assert.Contains(t, tc.stdout.String(), "Removed 2 items")
	assert.Empty(t, tc.entries(t))
}

func TestConfigGetSet(t *testing.T) {
	tc := newTestCLI(t)

	tc.option.Config.Get.Key = "grace-period"
	require.NoError(t, tc.Run("config get"))
	assert.Equal(t, "Grace period in days: 7\n", tc.stdout.String())

	tc.stdout.Reset()
	tc.option.Config.Set.Key = "grace-period"
	tc.option.Config.Set.Value = "3"
	require.NoError(t, tc.Run("config set"))
	assert.Equal(t, "Set grace period in days to 3\n", tc.stdout.String())

	tc.stdout.Reset()
	require.NoError(t, tc.Run("config get"))
	assert.Equal(t, "Grace period in days: 3\n", tc.stdout.String())

	tc.stdout.Reset()
	tc.option.Config.Get.Key = "trash-dir"
	require.NoError(t, tc.Run("config get"))
	assert.Equal(t, "Trash directory: "+tc.manager.Dir()+"\n", tc.stdout.String())

	tc.option.Config.Set.Value = "soon"
	assert.Error(t, tc.Run("config set"))
}

func TestVersion(t *testing.T) {
	tc := newTestCLI(t)
	require.NoError(t, tc.Run("version"))
	out := tc.stdout.String()
	assert.Contains(t, out, "version: 1.2.3")
	assert.Contains(t, out, "revision: abc")
	assert.Contains(t, out, "buildDate: today")
}

func TestUnknownCommand(t *testing.T) {
	tc := newTestCLI(t)
	assert.Error(t, tc.Run("frobnicate"))
}
