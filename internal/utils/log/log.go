// Package log builds the slog logger rmt writes its diagnostics to.
package log

import (
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/charmbracelet/lipgloss"
	charmlog "github.com/charmbracelet/log"
	"github.com/muesli/termenv"
)

// Options controls where records go and how they look
type Options struct {
	Level     Level
	Writer    io.Writer
	Path      string
	Timestamp bool
	Fields    []any
}

type Option func(*Options)

// UseVerbosity sets the level from the number of -v flags
func UseVerbosity(v int) Option {
	return func(o *Options) {
		o.Level = LevelFromVerbosity(v)
	}
}

func UseLevel(l Level) Option {
	return func(o *Options) {
		o.Level = l
	}
}

func UseOutput(w io.Writer) Option {
	return func(o *Options) {
		o.Writer = w
	}
}

// UseFile sends records to a rotated file at path instead of the writer.
// An empty path is ignored.
func UseFile(path string) Option {
	return func(o *Options) {
		o.Path = path
	}
}

func UseTimestamp(report bool) Option {
	return func(o *Options) {
		o.Timestamp = report
	}
}

// UseFields attaches key/value pairs to every record
func UseFields(kv ...any) Option {
	return func(o *Options) {
		o.Fields = append(o.Fields, kv...)
	}
}

// New returns a logger backed by a charmbracelet/log handler. File output
// is always plain text.
func New(opts ...Option) (*slog.Logger, error) {
	o := Options{Level: FatalLevel, Writer: os.Stderr}
	for _, opt := range opts {
		opt(&o)
	}

	w := o.Writer
	if o.Path != "" {
		f, err := NewRotateWriter(o.Path, DefaultMaxSize, DefaultMaxFiles)
		if err != nil {
			return nil, err
		}
		w = f
	}

	handler := charmlog.NewWithOptions(w, charmlog.Options{
		Level:           o.Level,
		ReportTimestamp: o.Timestamp,
		TimeFormat:      "2006-01-02 15:04:05",
	})
	handler.SetStyles(styles())
	if o.Path != "" {
		handler.SetColorProfile(termenv.Ascii)
	}

	return slog.New(handler).With(o.Fields...), nil
}

// styles pads every level label to the same width
func styles() *charmlog.Styles {
	s := charmlog.DefaultStyles()
	colors := map[Level]lipgloss.Color{
		DebugLevel: lipgloss.Color("8"),
		InfoLevel:  lipgloss.Color("4"),
		WarnLevel:  lipgloss.Color("3"),
		ErrorLevel: lipgloss.Color("1"),
		FatalLevel: lipgloss.Color("9"),
	}
	for level, color := range colors {
		label := strings.ToUpper(level.String())
		style := lipgloss.NewStyle().Foreground(color)
		if level == FatalLevel {
			style = style.Bold(true)
		}
		s.Levels[level] = style.SetString(label + strings.Repeat(" ", 5-len(label)))
	}
	return s
}
