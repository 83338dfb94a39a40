// Package xattr stores small string values on filesystem entries using
// extended attributes.
package xattr

// Store attaches string key/value pairs to a filesystem path. Values
// survive a rename of the path.
//
// Removing a key that is not set is an error (ErrNoAttribute) for every
// implementation in this package.
type Store interface {
	// Set writes value under key on path
	Set(path, key, value string) error

	// Get returns the value under key on path. ok is false when the key
	// is not set, which is not an error.
	Get(path, key string) (value string, ok bool, err error)

	// Remove deletes key from path
	Remove(path, key string) error
}

// Mover is implemented by stores that key attributes by path instead of
// attaching them to the entry itself. Callers that rename an entry notify
// such a store so the attributes follow the entry.
type Mover interface {
	Move(oldpath, newpath string)
}
