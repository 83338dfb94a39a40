package trash

import (
	"errors"
	"fmt"
	"strings"

	"github.com/muesli/reflow/indent"
)

// Errors returned by Manager operations
var (
	// ErrItemNotFound is returned when no entry with the given id exists in the trash
	ErrItemNotFound = errors.New("item not found in the trash")

	// ErrMissingAttribute is returned when a trash entry lacks metadata this
	// tool requires, i.e. it was not put there by us
	ErrMissingAttribute = errors.New("missing trash attribute")

	// ErrInvalidOriginalPath is returned when the parent directory of a
	// restore destination no longer exists
	ErrInvalidOriginalPath = errors.New("invalid original path")

	// ErrPathAlreadyExists is returned when a restore would overwrite an existing path
	ErrPathAlreadyExists = errors.New("path already exists")

	// ErrInvalidName is returned when a restore rename is not a single path component
	ErrInvalidName = errors.New("invalid file name")

	// ErrNotUTF8 is returned when a path cannot be represented as UTF-8 text
	ErrNotUTF8 = errors.New("path cannot be represented as UTF-8")

	// ErrUnsafePath is returned when trashing a path would remove the
	// filesystem root, the trash directory or one of its ancestors
	ErrUnsafePath = errors.New("refusing to trash unsafe path")

	// ErrUnsupportedEntry is returned for symbolic links. Linux refuses user
	// attributes on them, so they could never carry trash metadata.
	ErrUnsupportedEntry = errors.New("symbolic links cannot be moved to the trash")

	// ErrCrossDevice is returned when the path lives on another filesystem
	// than the trash directory
	ErrCrossDevice = errors.New("cross-device move is not supported")
)

// MissingAttributeError reports which attribute a trash entry lacks
type MissingAttributeError struct {
	Attr string
	ID   string
}

func (e *MissingAttributeError) Error() string {
	return fmt.Sprintf("the attribute '%s' is missing from the item '%s'", e.Attr, e.ID)
}

// Is makes errors.Is(err, ErrMissingAttribute) hold
func (e *MissingAttributeError) Is(target error) bool {
	return target == ErrMissingAttribute
}

// PathError wraps an error with the operation and path it occurred on
type PathError struct {
	// Op is the operation that failed (e.g., "put", "purge")
	Op string

	// Path is the path of the file that caused the error
	Path string

	// Err is the underlying error
	Err error
}

func (e *PathError) Error() string {
	if e.Path == "" {
		return e.Op + ": " + e.Err.Error()
	}
	return e.Op + " " + e.Path + ": " + e.Err.Error()
}

func (e *PathError) Unwrap() error {
	return e.Err
}

// BatchError collects the per-path failures of a bulk operation. The
// operation has already made as much progress as it could.
type BatchError struct {
	Errs []error
}

func (e *BatchError) Error() string {
	var s strings.Builder
	if len(e.Errs) == 1 {
		s.WriteString("1 error occurred:\n")
	} else {
		fmt.Fprintf(&s, "%d errors occurred:\n", len(e.Errs))
	}
	for _, err := range e.Errs {
		s.WriteString(indent.String("* "+err.Error(), 2))
		s.WriteString("\n")
	}
	return strings.TrimSuffix(s.String(), "\n")
}

func (e *BatchError) Unwrap() []error {
	return e.Errs
}

func newBatchError(errs []error) error {
	if len(errs) == 0 {
		return nil
	}
	return &BatchError{Errs: errs}
}

// IsNotFound returns true if the error is ErrItemNotFound
func IsNotFound(err error) bool {
	return errors.Is(err, ErrItemNotFound)
}

// IsPathAlreadyExists returns true if the error is ErrPathAlreadyExists
func IsPathAlreadyExists(err error) bool {
	return errors.Is(err, ErrPathAlreadyExists)
}

// IsMissingAttribute returns true if the error is ErrMissingAttribute
func IsMissingAttribute(err error) bool {
	return errors.Is(err, ErrMissingAttribute)
}
