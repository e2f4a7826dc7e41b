// Package shell is a line-oriented file-system view of the resolver. Bound
// paths look like files whose contents are their account info.
package shell

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"os"
	"path"
	"strings"

	"github.com/charmbracelet/lipgloss"
	"github.com/go-logr/logr"

	"pkt.systems/unitsctl/internal/rpc"
	"pkt.systems/unitsctl/nestjson"
)

// Backend is the part of the rpc client the shell drives.
type Backend interface {
	ListResolver(ctx context.Context) (*rpc.ListResolverResponse, error)
	DriverDetails(ctx context.Context) (*rpc.DriverDetailsResponse, error)
	LoadDriver(ctx context.Context, name, version string, binary []byte) (*rpc.LoadDriverResponse, error)
	UnloadDriver(ctx context.Context, name, version string) (*rpc.UnloadDriverResponse, error)
	Bind(ctx context.Context, req rpc.BindRequest) (*rpc.BindResponse, error)
}

const clearScreen = "\x1b[H\x1b[2J"

var helpLines = []string{
	"Available commands:",
	"  cat <path>                              Display the account info bound to a path",
	"  cd <path>                               Change the current directory",
	"  clear                                   Clear the screen",
	"  exit                                    Exit the shell",
	"  help                                    Display this help text",
	"  insdriver <name> <version> file://<fn>  Load a driver",
	"  ls                                      List bindings in the current directory",
	"  lsdriver                                List loaded drivers",
	"  link <name> <version> <path>            Bind a driver, account info follows, end with '.'",
	"  pwd                                     Print the current directory",
	"  rmdriver <name> <version>               Unload a driver",
	"  stat <path>                             Display details of a binding",
}

// Shell holds the session state.
type Shell struct {
	backend  Backend
	in       *bufio.Scanner
	out      io.Writer
	errOut   io.Writer
	cwd      string
	log      logr.Logger
	palette  nestjson.ColorPalette
	readFile func(string) ([]byte, error)

	promptStyle lipgloss.Style
	errStyle    lipgloss.Style
}

// Option configures a Shell.
type Option func(*Shell)

// WithLogger sets the logger for command tracing.
func WithLogger(l logr.Logger) Option {
	return func(s *Shell) { s.log = l }
}

// WithPalette sets the palette used by cat.
func WithPalette(p nestjson.ColorPalette) Option {
	return func(s *Shell) { s.palette = p }
}

// WithReadFile replaces os.ReadFile for insdriver.
func WithReadFile(fn func(string) ([]byte, error)) Option {
	return func(s *Shell) { s.readFile = fn }
}

// New returns a shell reading commands from in. Colors are chosen from out's
// terminal capabilities.
func New(b Backend, in io.Reader, out, errOut io.Writer, opts ...Option) *Shell {
	r := lipgloss.NewRenderer(out)
	s := &Shell{
		backend:     b,
		in:          bufio.NewScanner(in),
		out:         out,
		errOut:      errOut,
		cwd:         "/",
		log:         logr.Discard(),
		palette:     nestjson.NoColorPalette(),
		readFile:    os.ReadFile,
		promptStyle: r.NewStyle().Foreground(lipgloss.Color("12")).Bold(true),
		errStyle:    lipgloss.NewRenderer(errOut).NewStyle().Foreground(lipgloss.Color("9")),
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Cwd returns the current directory, always ending in a slash.
func (s *Shell) Cwd() string { return s.cwd }

// Prompt returns the rendered prompt.
func (s *Shell) Prompt() string {
	return s.promptStyle.Render(s.cwd+"$") + " "
}

// Run reads and executes commands until exit, end of input or ctx is done.
func (s *Shell) Run(ctx context.Context) error {
	for {
		if err := ctx.Err(); err != nil {
			return err
		}
		fmt.Fprint(s.out, s.Prompt())
		if !s.in.Scan() {
			fmt.Fprintln(s.out)
			return s.in.Err()
		}
		if s.Exec(ctx, s.in.Text()) {
			return nil
		}
	}
}

// Exec runs one command line and reports whether the shell should exit.
func (s *Shell) Exec(ctx context.Context, line string) bool {
	fields := strings.Fields(line)
	if len(fields) == 0 {
		return false
	}
	arg := func(i int) string {
		if i < len(fields) {
			return fields[i]
		}
		return ""
	}
	s.log.V(1).Info("shell command", "command", fields[0], "cwd", s.cwd)

	switch fields[0] {
	case "cd":
		s.cd(ctx, arg(1))
	case "ls":
		s.ls(ctx)
	case "lsdriver":
		s.lsdriver(ctx)
	case "pwd":
		fmt.Fprintln(s.out, s.cwd)
	case "clear":
		fmt.Fprint(s.out, clearScreen)
	case "exit":
		return true
	case "help":
		for _, l := range helpLines {
			fmt.Fprintln(s.out, l)
		}
	case "stat":
		s.stat(ctx, arg(1))
	case "cat":
		s.cat(ctx, arg(1))
	case "insdriver":
		s.insdriver(ctx, arg(1), arg(2), arg(3))
	case "rmdriver":
		s.rmdriver(ctx, arg(1), arg(2))
	case "link":
		s.link(ctx, arg(1), arg(2), arg(3))
	default:
		s.errorf("shell: command not found: %s", fields[0])
	}
	return false
}

func (s *Shell) errorf(format string, args ...any) {
	fmt.Fprintln(s.errOut, s.errStyle.Render(fmt.Sprintf(format, args...)))
}

func (s *Shell) resolve(p string) string {
	if strings.HasPrefix(p, "/") {
		return p
	}
	return s.cwd + p
}

func (s *Shell) mappings(ctx context.Context) ([]rpc.PathMapping, error) {
	resp, err := s.backend.ListResolver(ctx)
	if err != nil {
		return nil, err
	}
	return resp.PathMappings, nil
}

func (s *Shell) cd(ctx context.Context, target string) {
	dir := "/"
	switch {
	case target == "":
	case strings.HasPrefix(target, "/"):
		dir = path.Clean(target)
	default:
		dir = path.Join(s.cwd, target)
	}
	mappings, err := s.mappings(ctx)
	if err != nil {
		s.errorf("cd: %v", err)
		return
	}
	for _, m := range mappings {
		if strings.HasPrefix(m.Path, dir) {
			if dir == "/" {
				s.cwd = dir
			} else {
				s.cwd = dir + "/"
			}
			return
		}
	}
	s.errorf("cd: no such file or directory: %s", target)
}

func (s *Shell) ls(ctx context.Context) {
	mappings, err := s.mappings(ctx)
	if err != nil {
		s.errorf("ls: cannot access '%s': %v", s.cwd, err)
		return
	}
	for _, m := range mappings {
		if rel, ok := strings.CutPrefix(m.Path, s.cwd); ok {
			fmt.Fprintf(s.out, "%s\t%s@%s\n", rel, m.DriverName, m.DriverVersion)
		}
	}
}

func (s *Shell) lsdriver(ctx context.Context) {
	resp, err := s.backend.DriverDetails(ctx)
	if err != nil {
		s.errorf("lsdriver: %v", err)
		return
	}
	for _, d := range resp.Drivers {
		fmt.Fprintln(s.out, d.Ref())
	}
}

func (s *Shell) find(ctx context.Context, cmd, name string) (rpc.PathMapping, bool) {
	mappings, err := s.mappings(ctx)
	if err != nil {
		s.errorf("%s: %v", cmd, err)
		return rpc.PathMapping{}, false
	}
	want := s.resolve(name)
	for _, m := range mappings {
		if m.Path == want {
			return m, true
		}
	}
	switch cmd {
	case "stat":
		s.errorf("stat: cannot stat '%s': No such file or directory", name)
	default:
		s.errorf("%s: cannot read '%s': No such file or directory", cmd, name)
	}
	return rpc.PathMapping{}, false
}

func (s *Shell) stat(ctx context.Context, name string) {
	m, ok := s.find(ctx, "stat", name)
	if !ok {
		return
	}
	fmt.Fprintf(s.out, "path: %s\ndriver: %s\nversion: %s\n", m.Path, m.DriverName, m.DriverVersion)
}

func (s *Shell) cat(ctx context.Context, name string) {
	m, ok := s.find(ctx, "cat", name)
	if !ok {
		return
	}
	opts := *nestjson.DefaultOptions
	if err := nestjson.PrettyTo(s.out, m.AccountInfo, &opts, s.palette); err != nil {
		s.errorf("cat: %v", err)
	}
}

func (s *Shell) insdriver(ctx context.Context, name, version, fn string) {
	file, ok := strings.CutPrefix(fn, "file://")
	if !ok {
		s.errorf("insdriver: invalid path: %s", fn)
		return
	}
	data, err := s.readFile(file)
	if err != nil {
		s.errorf("insdriver: %v", err)
		return
	}
	resp, err := s.backend.LoadDriver(ctx, name, version, data)
	if err != nil {
		s.errorf("insdriver: %v", err)
		return
	}
	fmt.Fprintf(s.out, "The driver %s@%s has been loaded\n", resp.DriverName, resp.DriverVersion)
}

func (s *Shell) rmdriver(ctx context.Context, name, version string) {
	resp, err := s.backend.UnloadDriver(ctx, name, version)
	if err != nil {
		s.errorf("rmdriver: %v", err)
		return
	}
	fmt.Fprintf(s.out, "The driver %s@%s has been unloaded\n", resp.DriverName, resp.DriverVersion)
}

// link reads the account info from the following input lines, up to a line
// holding a single dot or the end of input.
func (s *Shell) link(ctx context.Context, name, version, target string) {
	var lines []string
	for s.in.Scan() {
		line := s.in.Text()
		if line == "." {
			break
		}
		lines = append(lines, line)
	}
	req := rpc.BindRequest{
		DriverName:    name,
		DriverVersion: version,
		Path:          target,
		AccountInfo:   strings.Join(lines, "\n"),
	}
	if _, err := s.backend.Bind(ctx, req); err != nil {
		s.errorf("link: %v", err)
		return
	}
	fmt.Fprintf(s.out, "The bind action has been completed: %s@%s -> %s\n", name, version, target)
}
