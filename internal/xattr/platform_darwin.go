package xattr

import "golang.org/x/sys/unix"

// macOS has no attribute namespaces
const namespace = ""

var errNoAttr = unix.ENOATTR
