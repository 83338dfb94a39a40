package cli

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"sync"
	"time"

	"github.com/babarot/rmt/internal/config"
	"github.com/babarot/rmt/internal/env"
	"github.com/babarot/rmt/internal/trash"
	"github.com/babarot/rmt/internal/ui/confirm"
	"github.com/babarot/rmt/internal/utils/log"
	"github.com/babarot/rmt/internal/xattr"
	"github.com/jessevdk/go-flags"
	"github.com/rs/xid"
)

var ErrNoCommand = errors.New("please specify one command of: rm, restore, list, clean, config or version")

type Option struct {
	Verbose []bool `short:"v" long:"verbose" description:"Increase verbosity level (use multiple times for more verbosity)"`
	Version bool   `short:"V" long:"version" description:"Show version"`

	Rm      RmOption      `command:"rm" description:"Remove files or directories"`
	Restore RestoreOption `command:"restore" description:"Restore a file or directory from the trash"`
	List    ListOption    `command:"list" description:"List files and directories in the trash"`
	Clean   CleanOption   `command:"clean" description:"Clean files and directories that have passed the grace period"`
	Config  ConfigOption  `command:"config" description:"Show or edit the configuration"`
	Ver     VersionOption `command:"version" description:"Show version"`
}

type RmOption struct {
	Immediate         bool `short:"i" long:"immediate" description:"Immediately delete files or directories without moving them to the trash"`
	AutoClean         bool `short:"a" long:"auto-clean" description:"Automatically clean files and directories that have passed the grace period"`
	GracePeriodInDays *int `short:"g" long:"grace-period-in-days" description:"The number of days to wait before deleting the files or directories permanently"`
	Print             bool `short:"p" long:"print" description:"Print the trash id of every removed item with a restore hint"`

	Args struct {
		Paths []string `positional-arg-name:"path" required:"1"`
	} `positional-args:"yes" required:"yes"`
}

type RestoreOption struct {
	Rename string `short:"r" long:"rename" description:"Rename the item to the specified name after restoring it"`

	Args struct {
		ID string `positional-arg-name:"id" description:"The ID of the file or directory to restore"`
	} `positional-args:"yes" required:"yes"`
}

type ListOption struct {
	FilterPath    string   `short:"f" long:"filter-path" description:"Filter by original path substring"`
	Globs         []string `short:"g" long:"glob" description:"Only show items whose name matches the glob (repeatable)"`
	Excludes      []string `short:"e" long:"exclude" description:"Hide items whose name matches the regular expression (repeatable)"`
	MinSize       string   `long:"min-size" description:"Only show items of at least this size (e.g. 10KB)"`
	MaxSize       string   `long:"max-size" description:"Only show items of at most this size (e.g. 1GB)"`
	ExpiresWithin string   `long:"expires-within" description:"Only show items due for deletion within this duration (e.g. \"3 days\")"`
	Format        string   `long:"format" description:"Output format" default:"table" choice:"table" choice:"json" choice:"yaml"`
}

type CleanOption struct {
	Immediate bool `short:"i" long:"immediate" description:"Immediately delete all files or directories in the trash, even if they have not passed the grace period"`
	Force     bool `short:"f" long:"force" description:"Do not ask for confirmation"`
}

type ConfigOption struct {
	Get struct {
		Key string `short:"k" long:"key" description:"The name of the configuration key to get" required:"yes" choice:"trash-dir" choice:"grace-period"`
	} `command:"get" description:"Get the value of a configuration key"`

	Set struct {
		Key   string `short:"k" long:"key" description:"The name of the configuration key to set" required:"yes" choice:"trash-dir" choice:"grace-period"`
		Value string `long:"value" description:"The value to set the configuration key to" required:"yes"`
	} `command:"set" description:"Set the value of a configuration key"`
}

type VersionOption struct{}

type CLI struct {
	version Version
	option  Option
	config  *config.Config
	manager *trash.Manager
	runID   string

	now    func() time.Time
	ask    func(prompt string) (bool, error)
	stdin  io.Reader
	stdout io.Writer
	stderr io.Writer
}

var runID = sync.OnceValue(func() string {
	id := xid.New().String()
	return id
})

func newParser(opt *Option, v Version) *flags.Parser {
	parser := flags.NewParser(opt, flags.HelpFlag|flags.PassDoubleDash)
	parser.Name = v.AppName
	parser.SubcommandsOptional = true
	return parser
}

func Run(v Version) error {
	var opt Option
	parser := newParser(&opt, v)
	if _, err := parser.ParseArgs(os.Args[1:]); err != nil {
		if flags.WroteHelp(err) {
			fmt.Fprintln(os.Stdout, err)
			return nil
		}
		return err
	}

	logger, err := log.New(
		log.UseVerbosity(len(opt.Verbose)),
		log.UseFile(env.RMT_LOG_PATH),
		log.UseTimestamp(true),
		log.UseFields("run_id", runID()),
	)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}
	slog.SetDefault(logger)

	defer slog.Debug("main function finished")
	slog.Debug("main function started", "version", v.Version, "revision", v.Revision, "buildDate", v.BuildDate)

	command := activeCommand(parser)
	if opt.Version || command == "version" {
		fmt.Fprint(os.Stdout, v.Print())
		return nil
	}
	if command == "" {
		parser.WriteHelp(os.Stderr)
		return ErrNoCommand
	}

	store, err := xattr.New()
	if err != nil {
		return err
	}

	cfg, err := config.Load(store)
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	cli := &CLI{
		version: v,
		option:  opt,
		config:  cfg,
		manager: trash.NewManager(cfg.TrashDir, store),
		runID:   runID(),
		now:     time.Now,
		stdin:   os.Stdin,
		stdout:  os.Stdout,
		stderr:  os.Stderr,
	}
	cli.ask = func(prompt string) (bool, error) {
		return confirm.Ask(cli.stdin, cli.stdout, prompt)
	}

	if err := cli.Run(command); err != nil {
		slog.Error("exit", "error", fmt.Errorf("cli.run failed: %w", err))
		return err
	}
	return nil
}

// activeCommand returns the name of the selected command, with nested
// commands joined by a space (e.g. "config get")
func activeCommand(parser *flags.Parser) string {
	cmd := parser.Active
	if cmd == nil {
		return ""
	}
	name := cmd.Name
	for cmd.Active != nil {
		cmd = cmd.Active
		name += " " + cmd.Name
	}
	return name
}

func (c *CLI) Run(command string) error {
	switch command {
	case "rm":
		return c.Rm()
	case "restore":
		return c.Restore()
	case "list":
		return c.List()
	case "clean":
		return c.Clean()
	case "config get":
		return c.ConfigGet()
	case "config set":
		return c.ConfigSet()
	case "version":
		fmt.Fprint(c.stdout, c.version.Print())
		return nil
	default:
		return fmt.Errorf("unknown command: %q", command)
	}
}
