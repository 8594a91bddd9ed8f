// Package main is the entry point for keystrike.
package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/dshills/keystrike/internal/app"
	"github.com/dshills/keystrike/internal/config"
	"github.com/dshills/keystrike/internal/hid"
	"github.com/dshills/keystrike/internal/scanner"
)

// Version information (set via ldflags during build).
var (
	version = "dev"
	commit  = "unknown"
	date    = "unknown"
)

type cliOptions struct {
	app      app.Options
	logPath  string
	terminal bool
	settings bool
	quiet    bool
	hold     uint
	scripts  []string
}

func main() {
	os.Exit(run())
}

func run() int {
	cli := parseFlags()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	logOut, closeLog, err := openLog(cli)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer closeLog()
	cli.app.LogOutput = logOut

	switch {
	case len(cli.scripts) > 0:
		return runScenarios(ctx, cli)
	case cli.terminal:
		return runTerminal(ctx, cli)
	case cli.settings:
		return runSettings(ctx, cli)
	default:
		flag.Usage()
		return 2
	}
}

func openLog(cli cliOptions) (io.Writer, func(), error) {
	if cli.logPath == "" {
		if cli.terminal {
			return nil, func() {}, nil
		}
		return os.Stderr, func() {}, nil
	}
	f, err := os.OpenFile(cli.logPath, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, nil, fmt.Errorf("opening log file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

// runScenarios replays every script and reports mismatches.
func runScenarios(ctx context.Context, cli cliOptions) int {
	failed := 0
	for _, path := range cli.scripts {
		s, err := scanner.LoadScript(path)
		if err != nil {
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		}

		opts := cli.app
		if !cli.quiet {
			opts.Sink = hid.WriterSink{W: os.Stdout, Prefix: s.Name + ": "}
		}
		res, err := app.RunScenario(ctx, opts, s)
		switch {
		case errors.Is(err, scanner.ErrMismatch):
			failed++
			fmt.Fprintf(os.Stderr, "FAIL %v\n", err)
		case err != nil:
			fmt.Fprintf(os.Stderr, "Error: %v\n", err)
			return 1
		default:
			fmt.Printf("ok   %s (%d reports, %d cycles)\n", res.Name, len(res.Reports), res.Stats.Cycles)
		}
	}
	if failed > 0 {
		return 1
	}
	return 0
}

// runTerminal reads the terminal as a keyboard until Ctrl-C.
func runTerminal(ctx context.Context, cli cliOptions) int {
	var term *scanner.Terminal

	opts := cli.app
	opts.Sink = hid.SinkFunc(func(r hid.Report) error {
		if term == nil {
			return nil
		}
		return term.SendReport(r)
	})

	application, err := app.New(opts)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	term, err = scanner.NewTerminal(application.Keymap(),
		scanner.WithHold(uint32(cli.hold)),
		scanner.WithTerminalLogger(application.Logger()),
	)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if err := term.Start(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	defer term.Stop()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	go func() {
		select {
		case <-term.Done():
			cancel()
		case <-ctx.Done():
		}
	}()

	if err := application.Run(ctx, term); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

// runSettings serves the settings protocol on stdin and stdout while the
// cycle loop runs.
func runSettings(ctx context.Context, cli cliOptions) int {
	application, err := app.New(cli.app)
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: failed to initialize: %v\n", err)
		return 1
	}
	defer application.Shutdown()

	ctx, cancel := context.WithCancel(ctx)
	defer cancel()
	errc := make(chan error, 1)
	go func() { errc <- application.Run(ctx, nil) }()

	serveErr := application.ServeCommands(ctx, os.Stdin, os.Stdout)
	cancel()
	if err := <-errc; err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	if serveErr != nil && !errors.Is(serveErr, context.Canceled) {
		fmt.Fprintf(os.Stderr, "Error: %v\n", serveErr)
		return 1
	}
	return 0
}

func parseFlags() cliOptions {
	var cli cliOptions
	var showVersion bool
	var showHelp bool

	flag.StringVar(&cli.app.ConfigPath, "config", config.DefaultPath(), "Path to configuration file")
	flag.StringVar(&cli.app.ConfigPath, "c", config.DefaultPath(), "Path to configuration file (shorthand)")
	flag.BoolVar(&cli.app.Watch, "watch", false, "Reload the configuration file when it changes")
	flag.StringVar(&cli.logPath, "log", "", "Write logs to this file instead of stderr")
	flag.BoolVar(&cli.terminal, "terminal", false, "Use the terminal as a keyboard")
	flag.BoolVar(&cli.terminal, "t", false, "Use the terminal as a keyboard (shorthand)")
	flag.UintVar(&cli.hold, "hold", uint(scanner.DefaultHold), "Terminal key hold time in milliseconds")
	flag.BoolVar(&cli.settings, "settings", false, "Serve settings commands on stdin")
	flag.BoolVar(&cli.settings, "s", false, "Serve settings commands on stdin (shorthand)")
	flag.BoolVar(&cli.quiet, "q", false, "Do not print scenario reports")
	flag.BoolVar(&showVersion, "version", false, "Show version information")
	flag.BoolVar(&showVersion, "v", false, "Show version information (shorthand)")
	flag.BoolVar(&showHelp, "help", false, "Show help message")
	flag.BoolVar(&showHelp, "h", false, "Show help message (shorthand)")

	flag.Usage = func() {
		fmt.Fprintf(os.Stderr, "Keystrike - keyboard event pipeline with timing-based key resolvers\n\n")
		fmt.Fprintf(os.Stderr, "Usage: keystrike [options] [scenario.yaml...]\n\n")
		fmt.Fprintf(os.Stderr, "Options:\n")
		flag.PrintDefaults()
		fmt.Fprintf(os.Stderr, "\nExamples:\n")
		fmt.Fprintf(os.Stderr, "  keystrike tap.yaml hold.yaml    Replay scenarios and check their reports\n")
		fmt.Fprintf(os.Stderr, "  keystrike -t                    Type in the terminal, watch the reports\n")
		fmt.Fprintf(os.Stderr, "  keystrike -s -watch             Settings commands on stdin, live config reload\n")
	}

	flag.Parse()

	if showHelp {
		flag.Usage()
		os.Exit(0)
	}

	if showVersion {
		fmt.Printf("Keystrike %s\n", version)
		fmt.Printf("Commit: %s\n", commit)
		fmt.Printf("Built: %s\n", date)
		os.Exit(0)
	}

	if cli.hold == 0 || cli.hold > 1<<16 {
		fmt.Fprintf(os.Stderr, "Error: invalid hold time %d\n", cli.hold)
		os.Exit(1)
	}

	cli.scripts = flag.Args()
	return cli
}
