package main

import (
	"context"
	"encoding/json"
	"errors"
	"flag"
	"fmt"
	"io"
	"log/slog"
	"os"
	"os/signal"
	"strconv"
	"syscall"

	"github.com/1broseidon/minwm/internal/config"
	"github.com/1broseidon/minwm/internal/daemon"
	"github.com/1broseidon/minwm/internal/hotkeys"
	"github.com/1broseidon/minwm/internal/ipc"
	"github.com/1broseidon/minwm/internal/platform"
	"github.com/1broseidon/minwm/internal/runtimepath"
	"github.com/1broseidon/minwm/internal/session"
	"github.com/1broseidon/minwm/internal/x11"
	"github.com/charmbracelet/lipgloss"
	"github.com/charmbracelet/lipgloss/table"
	"golang.org/x/term"
	"gopkg.in/yaml.v3"
)

const noWindowsHelp = "\n" +
	"--/\\/\\in \\/\\/ /\\/\\-------------------------------------------------\n" +
	"No windows found!\n" +
	"Before starting xinit, set `.xinitrc` to run a term before minwm,\n" +
	"\n" +
	" xterm -rv -ls +sb -sl 4096 &\n" +
	" $HOME/minwm\n" +
	"\n"

var _ ipc.StateSource = (*daemon.Runner)(nil)

func main() {
	if len(os.Args) < 2 {
		os.Exit(runWM(nil))
	}

	switch os.Args[1] {
	case "run":
		os.Exit(runWM(os.Args[2:]))
	case "status":
		os.Exit(runStatus(os.Args[2:], os.Stdout))
	case "keys":
		os.Exit(runKeys(os.Args[2:], os.Stdout))
	case "config":
		os.Exit(runConfig(os.Args[2:], os.Stdout))
	case "help", "-h", "--help":
		printMainUsage(os.Stdout)
		os.Exit(0)
	default:
		if len(os.Args[1]) > 0 && os.Args[1][0] == '-' {
			os.Exit(runWM(os.Args[1:]))
		}
		fmt.Fprintf(os.Stderr, "Unknown command: %s\n\n", os.Args[1])
		printMainUsage(os.Stderr)
		os.Exit(2)
	}
}

func printMainUsage(w io.Writer) {
	fmt.Fprintln(w, "Usage: minwm [command] [options]")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  run                 Manage the X display (default)")
	fmt.Fprintln(w, "  status              Show the running window manager's state")
	fmt.Fprintln(w, "  keys                List the keyboard shortcuts")
	fmt.Fprintln(w, "  config              Print the effective configuration")
	fmt.Fprintln(w, "")
	fmt.Fprintln(w, "Run 'minwm <command> --help' for command-specific options.")
}

// settingFlags registers one string flag per configuration key. Only flags
// given on the command line are applied, so unset flags never shadow the
// environment.
func settingFlags(fs *flag.FlagSet) {
	fs.String(config.KeyDisplay, "", "X display to manage (default $DISPLAY)")
	fs.String(config.KeyCapacity, "", "Maximum number of windows, root included (default 256)")
	fs.String(config.KeyStartupAttempts, "", "Window scans before giving up at startup (default 21)")
	fs.String(config.KeyStartupInterval, "", "Delay between startup scans (default 100ms)")
	fs.String(config.KeyLogLevel, "", "Log level: debug, info, warn, error (default info)")
}

// loadConfig builds the effective configuration from the environment and the
// parsed flag set.
func loadConfig(fs *flag.FlagSet, lookup func(string) (string, bool)) (*config.Config, error) {
	cfg, err := config.FromEnv(lookup)
	if err != nil {
		return nil, err
	}
	var setErr error
	fs.Visit(func(f *flag.Flag) {
		if setErr != nil {
			return
		}
		setErr = cfg.Set(f.Name, f.Value.String(), config.SourceFlag)
	})
	if setErr != nil {
		return nil, setErr
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// newLogger writes human readable logs to a terminal and JSON otherwise.
func newLogger(w io.Writer, level slog.Level, isTerminal bool) *slog.Logger {
	opts := &slog.HandlerOptions{Level: level}
	if isTerminal {
		return slog.New(slog.NewTextHandler(w, opts))
	}
	return slog.New(slog.NewJSONHandler(w, opts))
}

func runWM(args []string) int {
	fs := flag.NewFlagSet("run", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	settingFlags(fs)
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: minwm run [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Options:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() > 0 {
		fmt.Fprintf(os.Stderr, "run takes no arguments, got %q\n", fs.Arg(0))
		return 2
	}

	cfg, err := loadConfig(fs, os.LookupEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}
	level, _ := cfg.Level()
	logger := newLogger(os.Stderr, level, term.IsTerminal(int(os.Stderr.Fd())))
	slog.SetDefault(logger)

	backend, err := platform.NewLinuxBackendFromDisplay(cfg.Display, logger)
	if err != nil {
		if errors.Is(err, x11.ErrAnotherWM) {
			logger.Error("cannot manage display", "display", cfg.Display, "error", err)
		} else {
			logger.Error("failed to connect to display", "display", cfg.Display, "error", err)
		}
		return 1
	}
	defer backend.Disconnect()

	keys, err := hotkeys.Resolve(backend, hotkeys.DefaultBindings())
	if err != nil {
		logger.Error("failed to resolve key bindings", "error", err)
		return 1
	}

	sess, err := session.New(backend, keys, session.Options{Capacity: cfg.Capacity, Logger: logger})
	if err != nil {
		logger.Error("failed to start session", "error", err)
		return 1
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	runner := daemon.NewRunner(daemon.RunnerConfig{
		StartupAttempts: cfg.StartupAttempts,
		StartupInterval: cfg.StartupInterval,
		Logger:          logger,
	}, backend, sess, keys)

	if socketPath, err := runtimepath.SocketPath(cfg.Display); err != nil {
		logger.Warn("status socket disabled", "error", err)
	} else {
		srv := ipc.NewServer(socketPath, runner, logger)
		if err := srv.Start(); err != nil {
			logger.Warn("status socket disabled", "error", err)
		} else {
			defer srv.Stop()
		}
	}

	return exitCode(runner.Run(ctx), os.Stdout, logger)
}

// exitCode maps the runner's result to a process exit status.
func exitCode(err error, stdout io.Writer, logger *slog.Logger) int {
	switch {
	case err == nil:
		return 0
	case errors.Is(err, daemon.ErrNothingToManage):
		fmt.Fprint(stdout, noWindowsHelp)
		return 0
	case errors.Is(err, session.ErrNoWindows), errors.Is(err, context.Canceled):
		return 0
	default:
		logger.Error("window manager failed", "error", err)
		return 1
	}
}

func runStatus(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("status", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	display := fs.String("display", "", "X display of the window manager to query (default $DISPLAY)")
	windows := fs.Bool("windows", false, "List managed windows in most recently used order")
	asJSON := fs.Bool("json", false, "Print as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: minwm status [--display NAME] [--windows] [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Show the state of a running minwm via its status socket.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}
	if fs.NArg() != 0 {
		fmt.Fprintln(os.Stderr, "status takes no arguments")
		fs.Usage()
		return 2
	}

	socketPath, err := runtimepath.SocketPath(*display)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	client := ipc.NewClient(socketPath)

	var out any
	if *windows {
		data, err := client.ListWindows()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out = data
		if !*asJSON {
			printWindows(stdout, data)
			return 0
		}
	} else {
		status, err := client.GetStatus()
		if err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		out = status
		if !*asJSON {
			fmt.Fprintf(stdout, "managed:        %d/%d\n", status.Managed, status.Capacity-1)
			fmt.Fprintf(stdout, "focused:        %s\n", status.Focused)
			fmt.Fprintf(stdout, "cycling:        %v\n", status.Cycling)
			fmt.Fprintf(stdout, "uptime_seconds: %d\n", status.UptimeSeconds)
			return 0
		}
	}

	enc := json.NewEncoder(stdout)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	return 0
}

var (
	headerStyle  = lipgloss.NewStyle().Foreground(lipgloss.Color("62")).Bold(true).Padding(0, 1)
	cellStyle    = lipgloss.NewStyle().Padding(0, 1)
	focusedStyle = cellStyle.Foreground(lipgloss.Color("42"))
	hiddenStyle  = cellStyle.Foreground(lipgloss.Color("241"))
)

func printWindows(w io.Writer, data *ipc.WindowsData) {
	rows := make([][]string, 0, len(data.Windows))
	for _, win := range data.Windows {
		screen := "current"
		if !win.Visible {
			screen = fmt.Sprintf("%+d", win.Offset)
		}
		focus := ""
		if win.Focused {
			focus = "*"
		}
		rows = append(rows, []string{strconv.Itoa(win.Slot), win.ID, win.Shape, screen, focus})
	}

	t := table.New().
		Border(lipgloss.NormalBorder()).
		Headers("SLOT", "WINDOW", "SHAPE", "SCREEN", "FOCUS").
		Rows(rows...).
		StyleFunc(func(row, col int) lipgloss.Style {
			switch {
			case row == table.HeaderRow:
				return headerStyle
			case row < 0 || row >= len(data.Windows):
				return cellStyle
			case data.Windows[row].Focused:
				return focusedStyle
			case !data.Windows[row].Visible:
				return hiddenStyle
			}
			return cellStyle
		})
	fmt.Fprintln(w, t.Render())
}

type keyRow struct {
	Key    string `yaml:"key" json:"key"`
	Keysym string `yaml:"keysym" json:"keysym"`
	Mods   string `yaml:"mods" json:"mods"`
	Event  string `yaml:"event" json:"event"`
}

func keyRows() []keyRow {
	bindings := hotkeys.DefaultBindings()
	rows := make([]keyRow, 0, len(bindings))
	for _, b := range bindings {
		event := "release"
		switch b.Key {
		case hotkeys.KeyCycle, hotkeys.KeyClose, hotkeys.KeyCycleShape:
			event = "press"
		}
		rows = append(rows, keyRow{
			Key:    b.Key.String(),
			Keysym: b.Keysym,
			Mods:   hotkeys.FormatMods(b.Mods),
			Event:  event,
		})
	}
	return rows
}

func runKeys(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("keys", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	asJSON := fs.Bool("json", false, "Print as JSON")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: minwm keys [--json]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Every shortcut is also active with NumLock on.")
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	rows := keyRows()
	if *asJSON {
		enc := json.NewEncoder(stdout)
		enc.SetIndent("", "  ")
		if err := enc.Encode(rows); err != nil {
			fmt.Fprintln(os.Stderr, err)
			return 1
		}
		return 0
	}
	data, err := yaml.Marshal(rows)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprint(stdout, string(data))
	return 0
}

func runConfig(args []string, stdout io.Writer) int {
	fs := flag.NewFlagSet("config", flag.ContinueOnError)
	fs.SetOutput(os.Stderr)
	settingFlags(fs)
	explain := fs.Bool("explain", false, "Show where each value comes from")
	fs.Usage = func() {
		fmt.Fprintln(os.Stderr, "Usage: minwm config [--explain] [options]")
		fmt.Fprintln(os.Stderr, "")
		fmt.Fprintln(os.Stderr, "Options:")
		fs.PrintDefaults()
	}
	if err := fs.Parse(args); err != nil {
		if err == flag.ErrHelp {
			return 0
		}
		return 2
	}

	// explain is not a setting; hide it from loadConfig.
	settings := flag.NewFlagSet("settings", flag.ContinueOnError)
	settingFlags(settings)
	fs.Visit(func(f *flag.Flag) {
		if f.Name != "explain" {
			_ = settings.Set(f.Name, f.Value.String())
		}
	})

	cfg, err := loadConfig(settings, os.LookupEnv)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 2
	}

	var out any = cfg
	if *explain {
		out = cfg.Explain()
	}
	data, err := yaml.Marshal(out)
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		return 1
	}
	fmt.Fprint(stdout, string(data))
	return 0
}
