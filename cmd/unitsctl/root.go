package main

import (
	"io"
	"os"
	"time"

	"github.com/go-logr/logr"
	"github.com/mattn/go-isatty"
	"github.com/spf13/cobra"
	"github.com/spf13/pflag"

	"pkt.systems/unitsctl/internal/config"
	"pkt.systems/unitsctl/internal/dashboard"
	"pkt.systems/unitsctl/internal/logger"
	"pkt.systems/unitsctl/internal/rpc"
	"pkt.systems/unitsctl/nestjson"
)

// backend is everything the commands call on the units service.
type backend interface {
	dashboard.Backend
	Close() error
}

type app struct {
	in     io.Reader
	out    io.Writer
	errOut io.Writer

	cfgPath  string
	server   string
	timeout  time.Duration
	verbose  int
	palette  string
	noColor  bool
	compact  bool
	noUnwrap bool

	cfg config.Config
	log logr.Logger

	newLogger  func(level int8) logr.Logger
	dial       func(cfg config.Config, log logr.Logger) (backend, error)
	isTerminal func(w io.Writer) bool
}

func newApp(in io.Reader, out, errOut io.Writer) *app {
	return &app{
		in:         in,
		out:        out,
		errOut:     errOut,
		log:        logr.Discard(),
		newLogger:  func(level int8) logr.Logger { return *logger.Get(level) },
		dial:       dialBackend,
		isTerminal: isTerminal,
	}
}

func dialBackend(cfg config.Config, log logr.Logger) (backend, error) {
	return rpc.Dial(cfg.Server, rpc.WithTimeout(cfg.Timeout), rpc.WithLogger(log))
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(interface{ Fd() uintptr })
	if !ok {
		return false
	}
	return isatty.IsTerminal(f.Fd()) || isatty.IsCygwinTerminal(f.Fd())
}

func (a *app) rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "unitsctl",
		Short: "Operate a units backend and prettify the JSON it returns",
		Long: `unitsctl talks to a units backend over gRPC: load and unload drivers,
bind paths to drivers, submit and execute programs. Every response is
printed as indented JSON with JSON-encoded strings decoded in place.

The pretty command does the same for files, stdin and URLs.`,
		SilenceUsage:      true,
		SilenceErrors:     true,
		PersistentPreRunE: a.setup,
	}
	root.SetIn(a.in)
	root.SetOut(a.out)
	root.SetErr(a.errOut)

	pf := root.PersistentFlags()
	pf.StringVar(&a.cfgPath, "config", "", "config file (default $XDG_CONFIG_HOME/unitsctl/config.yaml)")
	pf.StringVarP(&a.server, "server", "s", "", "backend address, overrides the config file and "+config.EnvServer)
	pf.DurationVar(&a.timeout, "timeout", 0, "per-call timeout")
	pf.CountVarP(&a.verbose, "verbose", "v", "increase log verbosity, repeatable")
	pf.AddFlagSet(a.renderFlags())

	root.AddCommand(
		a.prettyCmd(),
		a.driversCmd(),
		a.bindCmd(),
		a.unbindCmd(),
		a.executeCmd(),
		a.submitCmd(),
		a.programsCmd(),
		a.usersCmd(),
		a.shellCmd(),
		a.serveCmd(),
		a.palettesCmd(),
		a.configCmd(),
	)
	return root
}

func (a *app) renderFlags() *pflag.FlagSet {
	fs := pflag.NewFlagSet("render", pflag.ContinueOnError)
	fs.BoolVarP(&a.compact, "compact", "c", false, "print each document on one line")
	fs.BoolVar(&a.noColor, "no-color", false, "disable colorized output, even when writing to a TTY")
	fs.BoolVar(&a.noUnwrap, "no-unwrap", false, "keep JSON-looking strings as strings")
	fs.StringVarP(&a.palette, "palette", "p", "", "color palette, see the palettes command")
	return fs
}

func (a *app) setup(cmd *cobra.Command, _ []string) error {
	if a.cfgPath == "" {
		p, err := config.DefaultPath()
		if err != nil {
			return err
		}
		a.cfgPath = p
	}
	cfg, err := config.Load(a.cfgPath)
	if err != nil {
		return err
	}
	if a.server != "" {
		cfg.Server = a.server
	}
	if a.timeout > 0 {
		cfg.Timeout = a.timeout
	}
	a.cfg = cfg
	a.log = a.newLogger(cfg.LogLevel - int8(a.verbose)).WithName("unitsctl")
	nestjson.SetLogger(a.log.WithName("nestjson"))
	a.log.V(1).Info("configuration loaded", "path", a.cfgPath, "server", cfg.Server, "command", cmd.Name())
	return nil
}

func (a *app) options() *nestjson.Options {
	opts := *nestjson.DefaultOptions
	opts.NoUnwrap = a.noUnwrap
	opts.Palette = a.palette
	if opts.Palette == "" {
		opts.Palette = a.cfg.Palette
	}
	return &opts
}

func (a *app) colorPalette(opts *nestjson.Options) (nestjson.ColorPalette, error) {
	color := !a.noColor && os.Getenv("NO_COLOR") == "" && a.isTerminal(a.out)
	return nestjson.ResolvePalette(opts.Palette, color)
}

// render prints a backend response the way the dashboard shows it.
func (a *app) render(v any) error {
	opts := a.options()
	if a.compact {
		return nestjson.CompactTo(a.out, v, opts)
	}
	pal, err := a.colorPalette(opts)
	if err != nil {
		return err
	}
	return nestjson.PrettyTo(a.out, v, opts, pal)
}

// withBackend dials the backend for the duration of fn.
func (a *app) withBackend(fn func(b backend) error) error {
	b, err := a.dial(a.cfg, a.log.WithName("rpc"))
	if err != nil {
		return err
	}
	defer b.Close()
	return fn(b)
}

func (a *app) updateState(fn func(*config.State)) {
	if err := config.Update(config.StatePath(a.cfgPath), fn); err != nil {
		a.log.Error(err, "save state")
	}
}
