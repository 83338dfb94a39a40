package fs

import (
	"fmt"

	"github.com/moby/sys/mountinfo"
)

// MountPoint returns the mount point of the filesystem path lives on
func MountPoint(path string) (string, error) {
	mounts, err := mountinfo.GetMounts(mountinfo.ParentsFilter(path))
	if err != nil {
		return "", fmt.Errorf("failed to get mount info: %w", err)
	}

	var point string
	for _, m := range mounts {
		if len(m.Mountpoint) > len(point) {
			point = m.Mountpoint
		}
	}
	if point == "" {
		return "", fmt.Errorf("no mount point found for %s", path)
	}
	return point, nil
}
