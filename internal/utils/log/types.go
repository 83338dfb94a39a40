package log

import (
	charmlog "github.com/charmbracelet/log"
)

type (
	Level  = charmlog.Level
	Styles = charmlog.Styles
)

const (
	DebugLevel = charmlog.DebugLevel
	InfoLevel  = charmlog.InfoLevel
	WarnLevel  = charmlog.WarnLevel
	ErrorLevel = charmlog.ErrorLevel
	FatalLevel = charmlog.FatalLevel
)

// LevelFromVerbosity maps the number of -v flags to a level. Without any,
// only fatal records are written.
func LevelFromVerbosity(v int) Level {
	switch {
	case v <= 0:
		return FatalLevel
	case v == 1:
		return WarnLevel
	case v == 2:
		return InfoLevel
	default:
		return DebugLevel
	}
}
