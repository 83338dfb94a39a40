package trash

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"syscall"
	"time"
	"unicode/utf8"

	"github.com/babarot/rmt/internal/utils/fs"
	"github.com/babarot/rmt/internal/xattr"
	"github.com/google/uuid"
)

// Attribute keys stored on every trash entry
const (
	AttrOriginalPath = "original_path"
	AttrDeletionDate = "deletion_date"
)

// Manager owns the trash directory: it is the only component that
// creates, renames or deletes entries inside it.
type Manager struct {
	dir   string
	store xattr.Store
	now   func() time.Time
}

// ManagerOption configures a Manager
type ManagerOption func(*Manager)

// WithClock replaces time.Now as the source of the current time
func WithClock(now func() time.Time) ManagerOption {
	return func(m *Manager) {
		m.now = now
	}
}

// NewManager creates a manager for the trash directory dir. The directory
// must already exist.
func NewManager(dir string, store xattr.Store, opts ...ManagerOption) *Manager {
	m := &Manager{
		dir:   filepath.Clean(dir),
		store: store,
		now:   time.Now,
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Dir returns the trash directory
func (m *Manager) Dir() string {
	return m.dir
}

// Put moves every path into the trash, stamping it with its original
// location and deletionDate. A failing path does not stop the others; the
// returned error is a *BatchError listing every path that was not trashed.
func (m *Manager) Put(paths []string, deletionDate time.Time) ([]*Item, error) {
	slog.Debug("trash.put started", "paths", len(paths), "deletion_date", deletionDate)
	defer slog.Debug("trash.put finished")

	var (
		items []*Item
		errs  []error
	)
	for _, path := range paths {
		item, err := m.put(path, deletionDate)
		if err != nil {
			slog.Error("failed to move to trash", "path", path, "error", err)
			errs = append(errs, &PathError{Op: "put", Path: path, Err: err})
			continue
		}
		slog.Info("moved to trash", "path", item.OriginalPath, "id", item.ID)
		items = append(items, item)
	}
	return items, newBatchError(errs)
}

func (m *Manager) put(path string, deletionDate time.Time) (*Item, error) {
	if unsafe, err := fs.IsUnsafePath(path); err != nil {
		return nil, err
	} else if unsafe {
		return nil, ErrUnsafePath
	}

	original, fi, err := canonicalize(path)
	if err != nil {
		return nil, err
	}
	if fi.Mode()&os.ModeSymlink != 0 {
		return nil, ErrUnsupportedEntry
	}
	if !utf8.ValidString(original) {
		return nil, ErrNotUTF8
	}
	if dir, err := filepath.EvalSymlinks(m.dir); err == nil {
		if fs.Contains(original, dir) || fs.Contains(dir, original) {
			return nil, ErrUnsafePath
		}
	}

	// Attributes go on the entry while it is still in place; the rename
	// below is what makes the entry part of the trash.
	deletionDate = deletionDate.UTC()
	if err := m.store.Set(original, AttrOriginalPath, original); err != nil {
		return nil, err
	}
	if err := m.store.Set(original, AttrDeletionDate, deletionDate.Format(time.RFC3339Nano)); err != nil {
		m.clearAttrs(original)
		return nil, err
	}

	id := uuid.NewString()
	dst := filepath.Join(m.dir, id)
	if err := os.Rename(original, dst); err != nil {
		m.clearAttrs(original)
		if errors.Is(err, syscall.EXDEV) {
			return nil, m.crossDevice(original, err)
		}
		return nil, err
	}
	m.moved(original, dst)

	return &Item{
		ID:           id,
		Path:         dst,
		OriginalPath: original,
		DeletionDate: deletionDate,
	}, nil
}

// List scans the trash directory. Entries without valid trash attributes
// are skipped with a warning. The order of the result is unspecified.
func (m *Manager) List() ([]*Item, error) {
	entries, err := os.ReadDir(m.dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read trash directory: %w", err)
	}

	items := make([]*Item, 0, len(entries))
	for _, entry := range entries {
		item, err := m.load(entry.Name())
		if err != nil {
			slog.Warn("skipped trash entry, maybe it was not deleted by rmt?",
				"entry", entry.Name(),
				"error", err,
			)
			continue
		}
		items = append(items, item)
	}
	return items, nil
}

func (m *Manager) load(name string) (*Item, error) {
	id := name
	if !utf8.ValidString(name) {
		id = InvalidID
	}
	path := filepath.Join(m.dir, name)

	original, ok, err := m.store.Get(path, AttrOriginalPath)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &MissingAttributeError{Attr: AttrOriginalPath, ID: id}
	}

	value, ok, err := m.store.Get(path, AttrDeletionDate)
	if err != nil {
		return nil, err
	}
	if !ok {
		return nil, &MissingAttributeError{Attr: AttrDeletionDate, ID: id}
	}
	deletionDate, err := time.Parse(time.RFC3339Nano, value)
	if err != nil {
		return nil, fmt.Errorf("failed to parse deletion date of %s: %w", id, err)
	}

	return &Item{
		ID:           id,
		Path:         path,
		OriginalPath: original,
		DeletionDate: deletionDate.UTC(),
	}, nil
}

// Restore moves the entry id back to where it came from, or next to it
// under the name rename when rename is not empty, and returns the
// destination. It never overwrites an existing path and never creates
// missing parent directories.
//
// The entry is moved before its attributes are cleared. If clearing fails
// the entry is already restored and the error says so.
func (m *Manager) Restore(id, rename string) (string, error) {
	slog.Debug("trash.restore started", "id", id, "rename", rename)
	defer slog.Debug("trash.restore finished")

	if !isPlainName(id) {
		return "", fmt.Errorf("%w: %s", ErrItemNotFound, id)
	}
	path := filepath.Join(m.dir, id)
	if _, err := os.Lstat(path); err != nil {
		if os.IsNotExist(err) {
			return "", fmt.Errorf("%w: %s", ErrItemNotFound, id)
		}
		return "", err
	}

	original, ok, err := m.store.Get(path, AttrOriginalPath)
	if err != nil {
		return "", err
	}
	if !ok {
		return "", &MissingAttributeError{Attr: AttrOriginalPath, ID: id}
	}

	dst := original
	if rename != "" {
		if !isPlainName(rename) {
			return "", fmt.Errorf("%w: %q", ErrInvalidName, rename)
		}
		dst = filepath.Join(filepath.Dir(original), rename)
	}

	if _, err := os.Lstat(dst); err == nil {
		return "", fmt.Errorf("%w: '%s'", ErrPathAlreadyExists, dst)
	} else if !os.IsNotExist(err) {
		return "", err
	}

	parent := filepath.Dir(dst)
	if fi, err := os.Stat(parent); err != nil || !fi.IsDir() {
		slog.Warn("parent directory of the original path does not exist", "parent", parent)
		return "", fmt.Errorf("%w: '%s'", ErrInvalidOriginalPath, dst)
	}

	if err := os.Rename(path, dst); err != nil {
		if errors.Is(err, syscall.EXDEV) {
			return "", m.crossDevice(dst, err)
		}
		return "", err
	}
	m.moved(path, dst)

	var errs []error
	for _, key := range []string{AttrOriginalPath, AttrDeletionDate} {
		if err := m.store.Remove(dst, key); err != nil && !errors.Is(err, xattr.ErrNoAttribute) {
			errs = append(errs, err)
		}
	}
	if len(errs) > 0 {
		return dst, fmt.Errorf("restored to %s but trash metadata is left on it: %w", dst, errors.Join(errs...))
	}

	slog.Info("restored", "id", id, "to", dst)
	return dst, nil
}

// PurgeResult summarises a Purge call
type PurgeResult struct {
	// Removed lists the entries that were permanently deleted
	Removed []*Item

	// Size is the number of bytes reclaimed
	Size int64
}

// Purge permanently deletes every entry whose deletion date has passed, or
// every entry when immediate is true. Entries that vanish in the meantime
// are skipped. There is no undo.
func (m *Manager) Purge(immediate bool) (*PurgeResult, error) {
	items, err := m.List()
	if err != nil {
		return nil, err
	}
	slog.Info("trash items found", "count", len(items), "immediate", immediate)

	now := m.now()
	result := &PurgeResult{}
	var errs []error
	for _, item := range items {
		if !immediate && !item.Expired(now) {
			continue
		}
		size, removed, err := remove(item.Path)
		if err != nil {
			slog.Error("failed to delete trash item", "id", item.ID, "error", err)
			errs = append(errs, &PathError{Op: "purge", Path: item.Path, Err: err})
			continue
		}
		if !removed {
			slog.Debug("trash item vanished before deletion", "id", item.ID)
			continue
		}
		slog.Info("deleted trash item", "id", item.ID, "original_path", item.OriginalPath)
		result.Removed = append(result.Removed, item)
		result.Size += size
	}

	slog.Info("items deleted from trash", "count", len(result.Removed))
	return result, newBatchError(errs)
}

// remove deletes path recursively. removed is false when path was already gone.
func remove(path string) (size int64, removed bool, err error) {
	fi, err := os.Lstat(path)
	if err != nil {
		if os.IsNotExist(err) {
			return 0, false, nil
		}
		return 0, false, err
	}

	if fi.IsDir() {
		size, _ = fs.DirSize(path)
		err = os.RemoveAll(path)
	} else {
		size = fi.Size()
		err = os.Remove(path)
	}
	if os.IsNotExist(err) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	return size, true, nil
}

// clearAttrs is a best effort rollback of the attributes written by put
func (m *Manager) clearAttrs(path string) {
	for _, key := range []string{AttrOriginalPath, AttrDeletionDate} {
		if err := m.store.Remove(path, key); err != nil && !errors.Is(err, xattr.ErrNoAttribute) {
			slog.Warn("failed to roll back trash attribute", "path", path, "key", key, "error", err)
		}
	}
}

// crossDevice names the mount points on both sides of a failed rename when
// they can be determined
func (m *Manager) crossDevice(path string, err error) error {
	from, ferr := fs.MountPoint(path)
	to, terr := fs.MountPoint(m.dir)
	if ferr != nil || terr != nil {
		return fmt.Errorf("%w: %v", ErrCrossDevice, err)
	}
	return fmt.Errorf("%w: %s is on %s but the trash is on %s", ErrCrossDevice, path, from, to)
}

func (m *Manager) moved(src, dst string) {
	if mv, ok := m.store.(xattr.Mover); ok {
		mv.Move(src, dst)
	}
}

// canonicalize returns the absolute path of an existing entry with every
// symlink in its parent directories resolved, along with the entry's own
// Lstat info. The final component is not followed.
func canonicalize(path string) (string, os.FileInfo, error) {
	abs, err := filepath.Abs(path)
	if err != nil {
		return "", nil, err
	}
	fi, err := os.Lstat(abs)
	if err != nil {
		return "", nil, err
	}
	parent, err := filepath.EvalSymlinks(filepath.Dir(abs))
	if err != nil {
		return "", nil, err
	}
	return filepath.Join(parent, filepath.Base(abs)), fi, nil
}

func isPlainName(name string) bool {
	return name != "" && name != "." && name != ".." &&
		!strings.ContainsRune(name, filepath.Separator) && !strings.ContainsRune(name, '/')
}
