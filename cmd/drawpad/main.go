package main

import (
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"

	"github.com/example/drawpad/internal/action"
	"github.com/example/drawpad/internal/appstate"
	"github.com/example/drawpad/internal/config"
	"github.com/example/drawpad/internal/export"
	"github.com/example/drawpad/internal/keymap"
	"github.com/example/drawpad/internal/logging"
	"github.com/example/drawpad/internal/notify"
	"github.com/example/drawpad/internal/theme"
)

var (
	version            = "dev"
	commit             = ""
	date               = ""
	configPathOverride = ""
)

type runnable interface{ Run() error }

type root struct {
	fs           *flag.FlagSet
	program      string
	notifier     *notify.Notifier
	config       *config.Config
	configPath   string
	exportAlerts bool
	copyAlerts   bool
	themeName    string
	logLevel     string
	activeTheme  *theme.Theme
	stdout       io.Writer
	stderr       io.Writer
}

func (r *root) Program() string {
	return r.program
}

func (r *root) FlagSet() *flag.FlagSet {
	return r.fs
}

func newRoot() *root {
	r := &root{
		fs:       flag.NewFlagSet("drawpad", flag.ExitOnError),
		program:  "drawpad",
		notifier: notify.New(notify.LoadPreferences()),
		config:   config.New(),
		stdout:   os.Stdout,
		stderr:   os.Stderr,
	}
	r.bindFlags()
	r.fs.Usage = usageFunc(r)
	return r
}

func (r *root) bindFlags() {
	r.fs.StringVar(&r.configPath, "config", configPathOverride, "path to the configuration file")
	r.fs.BoolVar(&r.exportAlerts, "notify-export", false, "show a desktop notification after exporting a drawing")
	r.fs.BoolVar(&r.copyAlerts, "notify-copy", false, "show a desktop notification after copying to the clipboard")

	// Precedence: CLI > Env > Config > Default
	r.fs.StringVar(&r.themeName, "theme", "", "color theme to use (default, dark, high_contrast)")
	r.fs.StringVar(&r.logLevel, "log-level", "", "log level: debug, info, warn or error (default warn)")
}

func (r *root) Run(args []string) error {
	if err := r.fs.Parse(args); err != nil {
		return err
	}
	if r.fs.NArg() < 1 {
		return &UsageError{of: r}
	}
	if err := r.setupLogging(); err != nil {
		return err
	}

	loader := config.NewLoader(version, r.configPath)
	cfg, err := loader.Load()
	if err != nil {
		fmt.Fprintf(r.stderr, "warning: failed to load config: %v\n", err)
		cfg = config.New()
	}
	r.config = cfg
	logging.Logger().Debug("config loaded", "path", loader.GetConfigPath())

	// Flags that were not given fall back to the config file.
	set := map[string]bool{}
	r.fs.Visit(func(f *flag.Flag) { set[f.Name] = true })
	if !set["notify-export"] {
		r.exportAlerts = cfg.Notify.Export
	}
	if !set["notify-copy"] {
		r.copyAlerts = cfg.Notify.Copy
	}
	if r.notifier != nil {
		r.notifier.Enable(notify.EventExport, r.exportAlerts)
		r.notifier.Enable(notify.EventCopy, r.copyAlerts)
	}
	r.activeTheme = r.resolveTheme()

	cmdName := r.fs.Arg(0)
	subArgs := r.fs.Args()[1:]

	var cmd runnable
	switch cmdName {
	case "open":
		cmd, err = parseOpenCmd(subArgs, r)
	case "replay":
		cmd, err = parseReplayCmd(subArgs, r)
	case "interactive":
		cmd, err = parseInteractiveCmd(subArgs, r)
	case "colors":
		cmd, err = parseColorsCmd(subArgs, r)
	case "widths":
		cmd, err = parseWidthsCmd(subArgs, r)
	case "keys":
		cmd, err = parseKeysCmd(subArgs, r)
	case "config":
		cmd, err = parseConfigCmd(subArgs, r)
	case "version":
		cmd = &versionCmd{r: r}
	default:
		err = &UsageError{of: r}
	}
	if err != nil {
		return err
	}
	return cmd.Run()
}

func (r *root) setupLogging() error {
	name := r.logLevel
	if name == "" {
		name = os.Getenv("DRAWPAD_LOG_LEVEL")
	}
	level, err := logging.ParseLevel(name)
	if err != nil {
		return err
	}
	logging.SetLogger(slog.New(slog.NewTextHandler(r.stderr, &slog.HandlerOptions{Level: level})))
	return nil
}

func (r *root) resolveTheme() *theme.Theme {
	name := r.themeName
	if name == "" {
		name = os.Getenv("DRAWPAD_THEME")
	}
	if name == "" {
		name = r.config.Theme
	}
	loader := theme.NewLoader()
	loader.Extra = r.config.Themes
	t, err := loader.Load(name)
	if err != nil {
		// Only warn when a specific theme was requested.
		if name != "" && name != "default" {
			fmt.Fprintf(r.stderr, "warning: failed to load theme '%s': %v. using default.\n", name, err)
		}
		t = theme.Default()
	}
	return t
}

// stateOptions turns the loaded configuration into session options.
// Options added later by a subcommand override these.
func (r *root) stateOptions() ([]appstate.Option, error) {
	cfg := r.config
	if cfg == nil {
		cfg = config.New()
	}
	opts := []appstate.Option{appstate.WithLogger(logging.Logger())}
	if r.notifier != nil {
		opts = append(opts, appstate.WithNotifier(r.notifier))
	}
	if r.activeTheme != nil {
		opts = append(opts, appstate.WithTheme(r.activeTheme))
	}
	if cfg.Width > 0 && cfg.Height > 0 {
		opts = append(opts, appstate.WithSize(cfg.Width, cfg.Height))
	}
	if cfg.Density > 0 {
		opts = append(opts, appstate.WithDensity(cfg.Density))
	}
	if cfg.Color != "" {
		c, err := action.ParseColor(cfg.Color)
		if err != nil {
			return nil, fmt.Errorf("config color: %w", err)
		}
		opts = append(opts, appstate.WithColor(c))
	}
	if cfg.Size > 0 {
		opts = append(opts, appstate.WithWidth(cfg.Size))
	}
	if cfg.History > 0 {
		opts = append(opts, appstate.WithHistoryCapacity(cfg.History))
	}
	format, err := export.ParseFormat(cfg.Format)
	if err != nil {
		return nil, fmt.Errorf("config format: %w", err)
	}
	opts = append(opts, appstate.WithExporter(&export.Exporter{Dir: cfg.SaveDir, Format: format}))
	km := keymap.Default()
	if err := km.Apply(cfg.Keys); err != nil {
		return nil, fmt.Errorf("config keys: %w", err)
	}
	opts = append(opts, appstate.WithKeymap(km))
	return opts, nil
}

func (r *root) newState(extra ...appstate.Option) (*appstate.AppState, error) {
	opts, err := r.stateOptions()
	if err != nil {
		return nil, err
	}
	return appstate.New(append(opts, extra...)...), nil
}

func main() {
	r := newRoot()
	if err := r.Run(os.Args[1:]); err != nil {
		var uerr *UsageError
		if errors.As(err, &uerr) {
			fmt.Fprintln(os.Stderr, uerr.Error())
			os.Exit(2)
		}
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func subProgram(r *root, name string) string {
	if r == nil {
		return name
	}
	return strings.TrimSpace(r.program + " " + name)
}
