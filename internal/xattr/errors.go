package xattr

import (
	"errors"
	"fmt"
)

var (
	// ErrUnsupportedPlatform is returned by New when the platform offers no
	// extended attribute mechanism at all
	ErrUnsupportedPlatform = errors.New("extended attributes are not supported on this platform")

	// ErrInvalidEncoding is returned when a stored value is not valid UTF-8
	ErrInvalidEncoding = errors.New("attribute value is not valid UTF-8")

	// ErrNoAttribute is returned when removing an attribute that is not set
	ErrNoAttribute = errors.New("attribute not set")
)

// Op names the attribute operation that failed
type Op string

const (
	OpSet    Op = "set"
	OpGet    Op = "get"
	OpRemove Op = "remove"
)

// AttrError wraps a failed attribute operation with the attribute and path involved
type AttrError struct {
	Op   Op
	Key  string
	Path string
	Err  error
}

func (e *AttrError) Error() string {
	switch e.Op {
	case OpSet:
		return fmt.Sprintf("failed to set attribute %q on %q: %v", e.Key, e.Path, e.Err)
	case OpGet:
		return fmt.Sprintf("failed to get attribute %q from %q: %v", e.Key, e.Path, e.Err)
	case OpRemove:
		return fmt.Sprintf("failed to remove attribute %q from %q: %v", e.Key, e.Path, e.Err)
	default:
		return fmt.Sprintf("attribute %q on %q: %v", e.Key, e.Path, e.Err)
	}
}

func (e *AttrError) Unwrap() error {
	return e.Err
}

func newAttrError(op Op, key, path string, err error) error {
	return &AttrError{Op: op, Key: key, Path: path, Err: err}
}

// IsWriteFailed reports whether err is a failed set operation
func IsWriteFailed(err error) bool { return isOp(err, OpSet) }

// IsReadFailed reports whether err is a failed get operation
func IsReadFailed(err error) bool { return isOp(err, OpGet) }

// IsRemoveFailed reports whether err is a failed remove operation
func IsRemoveFailed(err error) bool { return isOp(err, OpRemove) }

// IsInvalidEncoding reports whether err is caused by a non UTF-8 value
func IsInvalidEncoding(err error) bool {
	return errors.Is(err, ErrInvalidEncoding)
}

func isOp(err error, op Op) bool {
	var ae *AttrError
	if errors.As(err, &ae) {
		return ae.Op == op
	}
	return false
}
