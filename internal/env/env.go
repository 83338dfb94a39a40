package env

import (
	"os"
	"path/filepath"
)

const (
	defaultTrashDirname = ".tmp_trash"
)

var (
	// RMT_TRASH_DIR is the trash directory used when none is configured
	RMT_TRASH_DIR string

	// RMT_LOG_PATH is the file logs are appended to; empty means stderr
	RMT_LOG_PATH string
)

func init() {
	// https://github.com/charmbracelet/log/issues/35
	os.Setenv("CLICOLOR_FORCE", "1")

	homeDir, err := os.UserHomeDir()
	if err != nil {
		// keep the trash beside the working directory rather than at the root
		homeDir = "."
	}
	RMT_TRASH_DIR = filepath.Join(homeDir, defaultTrashDirname)

	RMT_LOG_PATH = os.Getenv("RMT_LOG_PATH")
}
