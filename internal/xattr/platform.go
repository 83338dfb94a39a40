//go:build linux || darwin

package xattr

import (
	"errors"
	"fmt"
	"unicode/utf8"

	"golang.org/x/sys/unix"
)

// Platform is a Store backed by the extended attributes of the host
// filesystem. Symbolic links are never followed.
type Platform struct {
	namespace string
}

// New returns the platform store, or ErrUnsupportedPlatform when the host
// has no extended attribute mechanism.
func New() (*Platform, error) {
	return &Platform{namespace: namespace}, nil
}

func (p *Platform) name(key string) string {
	return p.namespace + key
}

func (p *Platform) Set(path, key, value string) error {
	name := p.name(key)
	if err := unix.Lsetxattr(path, name, []byte(value), 0); err != nil {
		return newAttrError(OpSet, name, path, err)
	}
	return nil
}

func (p *Platform) Get(path, key string) (string, bool, error) {
	name := p.name(key)
	for {
		size, err := unix.Lgetxattr(path, name, nil)
		if err != nil {
			if errors.Is(err, errNoAttr) {
				return "", false, nil
			}
			return "", false, newAttrError(OpGet, name, path, err)
		}

		if size == 0 {
			return "", true, nil
		}

		buf := make([]byte, size)
		n, err := unix.Lgetxattr(path, name, buf)
		if err != nil {
			switch {
			case errors.Is(err, errNoAttr):
				return "", false, nil
			case errors.Is(err, unix.ERANGE):
				// value grew between the two calls
				continue
			default:
				return "", false, newAttrError(OpGet, name, path, err)
			}
		}

		if n > len(buf) {
			continue
		}
		data := buf[:n]
		if !utf8.Valid(data) {
			return "", false, fmt.Errorf("%w: %q on %q", ErrInvalidEncoding, name, path)
		}
		return string(data), true, nil
	}
}

func (p *Platform) Remove(path, key string) error {
	name := p.name(key)
	if err := unix.Lremovexattr(path, name); err != nil {
		if errors.Is(err, errNoAttr) {
			return newAttrError(OpRemove, name, path, ErrNoAttribute)
		}
		return newAttrError(OpRemove, name, path, err)
	}
	return nil
}
