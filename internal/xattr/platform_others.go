//go:build !linux && !darwin

package xattr

// Platform is unavailable on this operating system.
type Platform struct{}

// New always fails with ErrUnsupportedPlatform on this operating system.
func New() (*Platform, error) {
	return nil, ErrUnsupportedPlatform
}

func (p *Platform) Set(path, key, value string) error {
	return newAttrError(OpSet, key, path, ErrUnsupportedPlatform)
}

func (p *Platform) Get(path, key string) (string, bool, error) {
	return "", false, newAttrError(OpGet, key, path, ErrUnsupportedPlatform)
}

func (p *Platform) Remove(path, key string) error {
	return newAttrError(OpRemove, key, path, ErrUnsupportedPlatform)
}
