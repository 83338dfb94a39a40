package xattr

import (
	"path/filepath"
	"strings"
	"sync"
)

// Memory is an in-process Store keyed by (path, key). It never touches the
// filesystem, so callers renaming entries must report moves through Move.
type Memory struct {
	mu    sync.Mutex
	attrs map[string]map[string]string

	// Fail, when set, is consulted before every operation; a non-nil
	// return value is reported as the operation's underlying error.
	Fail func(op Op, path, key string) error
}

// NewMemory returns an empty in-memory store
func NewMemory() *Memory {
	return &Memory{attrs: make(map[string]map[string]string)}
}

func (m *Memory) Set(path, key, value string) error {
	if err := m.fail(OpSet, path, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	if m.attrs[path] == nil {
		m.attrs[path] = make(map[string]string)
	}
	m.attrs[path][key] = value
	return nil
}

func (m *Memory) Get(path, key string) (string, bool, error) {
	if err := m.fail(OpGet, path, key); err != nil {
		return "", false, err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	value, ok := m.attrs[filepath.Clean(path)][key]
	return value, ok, nil
}

func (m *Memory) Remove(path, key string) error {
	if err := m.fail(OpRemove, path, key); err != nil {
		return err
	}
	m.mu.Lock()
	defer m.mu.Unlock()

	path = filepath.Clean(path)
	attrs, ok := m.attrs[path]
	if !ok {
		return newAttrError(OpRemove, key, path, ErrNoAttribute)
	}
	if _, ok := attrs[key]; !ok {
		return newAttrError(OpRemove, key, path, ErrNoAttribute)
	}
	delete(attrs, key)
	if len(attrs) == 0 {
		delete(m.attrs, path)
	}
	return nil
}

// Move re-keys the attributes of oldpath, and of anything below it, to newpath
func (m *Memory) Move(oldpath, newpath string) {
	m.mu.Lock()
	defer m.mu.Unlock()

	oldpath, newpath = filepath.Clean(oldpath), filepath.Clean(newpath)
	prefix := oldpath + string(filepath.Separator)
	moved := make(map[string]map[string]string)
	for p, attrs := range m.attrs {
		switch {
		case p == oldpath:
			moved[newpath] = attrs
		case strings.HasPrefix(p, prefix):
			moved[filepath.Join(newpath, strings.TrimPrefix(p, prefix))] = attrs
		default:
			continue
		}
		delete(m.attrs, p)
	}
	for p, attrs := range moved {
		m.attrs[p] = attrs
	}
}

// Keys returns the keys set on path
func (m *Memory) Keys(path string) []string {
	m.mu.Lock()
	defer m.mu.Unlock()

	var keys []string
	for k := range m.attrs[filepath.Clean(path)] {
		keys = append(keys, k)
	}
	return keys
}

func (m *Memory) fail(op Op, path, key string) error {
	if m.Fail == nil {
		return nil
	}
	if err := m.Fail(op, path, key); err != nil {
		return newAttrError(op, key, path, err)
	}
	return nil
}
