package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/docker/go-units"
)

// Rotation defaults for file output
const (
	DefaultMaxSize  = "10MB"
	DefaultMaxFiles = 3
)

// RotateWriter appends to a log file. When a write would take the file past
// its limit, the file becomes path.1, older backups shift up by one and
// anything beyond path.<maxFiles> is dropped.
type RotateWriter struct {
	mu       sync.Mutex
	path     string
	file     *os.File
	size     int64
	limit    int64
	maxFiles int
}

// NewRotateWriter opens path for appending, creating its directory. maxSize
// is a human readable size such as "10MB".
func NewRotateWriter(path, maxSize string, maxFiles int) (*RotateWriter, error) {
	limit, err := units.FromHumanSize(maxSize)
	if err != nil {
		return nil, fmt.Errorf("invalid log size %q: %w", maxSize, err)
	}
	if err := os.MkdirAll(filepath.Dir(path), 0755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	w := &RotateWriter{path: path, limit: limit, maxFiles: maxFiles}
	if err := w.open(); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *RotateWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.size > 0 && w.size+int64(len(p)) > w.limit {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *RotateWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.file.Close()
}

func (w *RotateWriter) open() error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	fi, err := f.Stat()
	if err != nil {
		f.Close()
		return err
	}
	w.file = f
	w.size = fi.Size()
	return nil
}

func (w *RotateWriter) backup(i int) string {
	return fmt.Sprintf("%s.%d", w.path, i)
}

func (w *RotateWriter) rotate() error {
	if err := w.file.Close(); err != nil {
		return err
	}
	if w.maxFiles <= 0 {
		if err := os.Remove(w.path); err != nil && !os.IsNotExist(err) {
			return err
		}
		return w.open()
	}

	if err := os.Remove(w.backup(w.maxFiles)); err != nil && !os.IsNotExist(err) {
		return err
	}
	for i := w.maxFiles - 1; i >= 1; i-- {
		if err := os.Rename(w.backup(i), w.backup(i+1)); err != nil && !os.IsNotExist(err) {
			return err
		}
	}
	if err := os.Rename(w.path, w.backup(1)); err != nil && !os.IsNotExist(err) {
		return err
	}
	return w.open()
}
