package xattr

import "golang.org/x/sys/unix"

// user attributes live in the "user." namespace on Linux
const namespace = "user."

var errNoAttr = unix.ENODATA
