package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log"
	"os"
	"os/signal"
	"path/filepath"
	"strconv"
	"strings"
	"sync/atomic"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/spf13/cobra"

	"kmmacro/src/clipboard"
	"kmmacro/src/config"
	"kmmacro/src/desktop"
	"kmmacro/src/input"
	"kmmacro/src/listener"
	"kmmacro/src/logutil"
	"kmmacro/src/macro"
	"kmmacro/src/notification"
	"kmmacro/src/pixel"
	"kmmacro/src/screenshot"
	"kmmacro/src/timing"
	"kmmacro/src/tray"
	"kmmacro/src/winapi"
)

const (
	exitOK = iota
	exitUsage
	exitMissingFile
	exitAborted
	exitWindowChanged
	exitPermission
	exitFatal
)

const infoDelay = 3 * time.Second

type cliOptions struct {
	verbose    bool
	tray       bool
	abortKey   string
	configPath string
	watch      bool
}

// usageError marks bad command lines so they exit with exitUsage.
type usageError struct {
	err error
}

func (e *usageError) Error() string { return e.err.Error() }
func (e *usageError) Unwrap() error { return e.err }

func usagef(format string, args ...any) error {
	return &usageError{err: fmt.Errorf(format, args...)}
}

func main() {
	err := run()
	if err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
	}
	os.Exit(exitCode(err))
}

func run() error {
	return runWithArgs(os.Args, os.Stdout)
}

func runWithArgs(args []string, out io.Writer) error {
	if len(args) == 0 {
		args = []string{"kmmacro"}
	}

	opts := &cliOptions{}
	cmd := newRootCmd(opts, out)
	cmd.SetArgs(args[1:])
	cmd.SetOut(out)
	return cmd.Execute()
}

func exitCode(err error) int {
	var usage *usageError
	switch {
	case err == nil:
		return exitOK
	case errors.As(err, &usage):
		return exitUsage
	case errors.Is(err, os.ErrNotExist):
		return exitMissingFile
	case errors.Is(err, macro.ErrAborted):
		return exitAborted
	case errors.Is(err, macro.ErrWindowChanged):
		return exitWindowChanged
	case errors.Is(err, os.ErrPermission):
		return exitPermission
	default:
		return exitFatal
	}
}

// parseRepeat accepts positive integers written without sign or leading
// zeros.
func parseRepeat(s string) (int, error) {
	n, err := strconv.Atoi(s)
	if err != nil || n <= 0 || strconv.Itoa(n) != s {
		return 0, usagef("repeat count %q must be a positive integer", s)
	}
	return n, nil
}

func exactArgs(n int) cobra.PositionalArgs {
	return func(cmd *cobra.Command, args []string) error {
		if len(args) != n {
			return usagef("usage: %s", cmd.UseLine())
		}
		return nil
	}
}

func newRootCmd(opts *cliOptions, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:           "kmmacro <macro-file> <repeat>",
		Short:         "Replay a keyboard and mouse macro against one application window",
		SilenceUsage:  true,
		SilenceErrors: true,
		Args:          exactArgs(2),
		RunE: func(cmd *cobra.Command, args []string) error {
			n, err := parseRepeat(args[1])
			if err != nil {
				return err
			}
			return runMacro(*opts, args[0], n, out)
		},
	}
	cmd.SetFlagErrorFunc(func(_ *cobra.Command, err error) error {
		return &usageError{err: err}
	})

	flags := cmd.PersistentFlags()
	flags.BoolVarP(&opts.verbose, "verbose", "v", false, "Verbose output to stderr")
	flags.StringVar(&opts.configPath, "config", "", "Path to a .env file (highest precedence)")
	flags.StringVar(&opts.abortKey, "abort-key", "", "Modifier key that aborts the run (default LSHIFT)")
	cmd.Flags().BoolVar(&opts.tray, "tray", false, "Show a tray icon with an abort item while running")

	cmd.AddCommand(newValidateCmd(opts, out), newInfoCmd(opts, out))
	return cmd
}

func newValidateCmd(opts *cliOptions, out io.Writer) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "validate <macro-file>",
		Short: "Check a macro file without running it",
		Args:  exactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, abortKey, err := loadConfig(*opts)
			if err != nil {
				return err
			}
			logutil.Setup(logutil.Options{EnableFileLogging: cfg.EnableFileLogging, Verbose: cfg.Verbose})
			if !opts.watch {
				m, err := loadMacro(args[0], abortKey)
				if err != nil {
					return err
				}
				reportValid(out, m)
				return nil
			}
			return watchMacro(args[0], abortKey, out)
		},
	}
	cmd.Flags().BoolVar(&opts.watch, "watch", false, "Revalidate whenever the file changes")
	return cmd
}

func newInfoCmd(opts *cliOptions, out io.Writer) *cobra.Command {
	return &cobra.Command{
		Use:   "info",
		Short: "Print screen, active window and mouse information after a short delay",
		Args:  exactArgs(0),
		RunE: func(cmd *cobra.Command, args []string) error {
			setupLogging(*opts)
			return printInfo(out)
		},
	}
}

// setupLogging is used by info, which does not need the rest of the
// configuration to be valid.
func setupLogging(opts cliOptions) {
	cfg, err := config.LoadWithOptions(config.LoadOptions{EnvPathOverride: opts.configPath, Verbose: opts.verbose})
	if err != nil {
		logutil.Setup(logutil.Options{Verbose: opts.verbose})
		log.Printf("config: %v", err)
		return
	}
	logutil.Setup(logutil.Options{EnableFileLogging: cfg.EnableFileLogging, Verbose: cfg.Verbose})
}

// loadConfig reads the configuration and the abort key. A configuration the
// operator pointed at but that cannot be read is a usage error, not a missing
// macro.
func loadConfig(opts cliOptions) (*config.Config, input.Modifier, error) {
	cfg, err := config.LoadWithOptions(config.LoadOptions{
		EnvPathOverride:  opts.configPath,
		AbortKeyOverride: opts.abortKey,
		EnableTray:       opts.tray,
		Verbose:          opts.verbose,
	})
	if err != nil {
		return nil, input.None, usagef("failed to load configuration: %v", err)
	}
	abortKey, err := input.ParseModifier(cfg.AbortKey)
	if err != nil || !abortKey.Single() {
		return nil, input.None, usagef("abort key %q must be a single modifier key", cfg.AbortKey)
	}
	return cfg, abortKey, nil
}

// loadMacro reads and validates a macro, including that none of its steps
// holds the abort key.
func loadMacro(path string, abortKey input.Modifier) (*macro.Macro, error) {
	m, err := macro.Load(path)
	if err != nil {
		return nil, err
	}
	if err := m.ValidateAbortKey(abortKey); err != nil {
		return nil, fmt.Errorf("%s: %w", path, err)
	}
	return m, nil
}

func reportValid(out io.Writer, m *macro.Macro) {
	fmt.Fprintf(out, "ok: %q, %d probes, %d captures, %d steps\n", m.Title, len(m.Probes), len(m.Captures), len(m.Steps))
}

func watchMacro(path string, abortKey input.Modifier, out io.Writer) error {
	if m, err := loadMacro(path, abortKey); err != nil {
		fmt.Fprintf(out, "invalid: %v\n", err)
	} else {
		reportValid(out, m)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()
	return macro.Watch(ctx, path, func(m *macro.Macro, err error) {
		if err == nil {
			if err = m.ValidateAbortKey(abortKey); err != nil {
				err = fmt.Errorf("%s: %w", path, err)
			}
		}
		if err != nil {
			fmt.Fprintf(out, "invalid: %v\n", err)
			return
		}
		reportValid(out, m)
	})
}

func printInfo(out io.Writer) error {
	backend, err := winapi.New()
	if err != nil {
		return err
	}
	sched := timing.NewScheduler()
	desk := desktop.New(backend, sched)
	kb := input.NewKeyboard(input.RobotInjector{}, sched)
	mouse := input.NewMouse(input.RobotInjector{}, sched, desk, kb)

	fmt.Fprintf(out, "switch to the window to inspect, reading in %v\n", infoDelay)
	time.Sleep(infoDelay)

	screen, err := desk.Screen()
	if err != nil {
		return err
	}
	window, err := desk.ActiveWindow()
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "screen: box=%v origin=%+v size=%+v primary=%q\n", screen.Box, screen.Origin, screen.Size, screen.Primary().Name)
	for _, m := range screen.Monitors {
		fmt.Fprintf(out, "  monitor %q: %v primary=%v\n", m.Name, m.Rect, m.Primary)
	}
	fmt.Fprintf(out, "window: %v\n", window)
	fmt.Fprintf(out, "mouse: %v\n", mouse.Position())
	return nil
}

// clipboardWriter adapts the process clipboard to macro.Clipboard.
type clipboardWriter struct{}

func (clipboardWriter) Write(text string) error { return clipboard.Write(text) }

func macroName(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func timestamp() string {
	return time.Now().Format("2006-01-02 15:04:05")
}

// abortOn sets abort when a signal arrives on sigs, so the run unwinds
// through its deferred key releases. stop ends the watch.
func abortOn(sigs <-chan os.Signal, abort *atomic.Bool) (stop func()) {
	done := make(chan struct{})
	finished := make(chan struct{})
	go func() {
		defer close(finished)
		select {
		case sig := <-sigs:
			log.Printf("received %v, aborting", sig)
			abort.Store(true)
		case <-done:
		}
	}()
	return func() {
		close(done)
		<-finished
	}
}

// abortOnInterrupt turns Ctrl+C and console close into an abort request.
func abortOnInterrupt(abort *atomic.Bool) (stop func()) {
	sigs := make(chan os.Signal, 1)
	signal.Notify(sigs, os.Interrupt, syscall.SIGTERM)
	stopWatch := abortOn(sigs, abort)
	return func() {
		signal.Stop(sigs)
		stopWatch()
	}
}

// saveSnapshot writes the capture a failed probe read into dir, named after
// the macro and the run.
func saveSnapshot(dir, name, runID string, s *pixel.Snapshot) (string, error) {
	if s == nil || s.Image == nil {
		return "", errors.New("no capture to save")
	}
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.png", name, runID[:8]))
	if err := screenshot.SavePNG(s.Image, path); err != nil {
		return "", err
	}
	return path, nil
}

func runMacro(opts cliOptions, path string, n int, out io.Writer) (err error) {
	cfg, abortKey, err := loadConfig(opts)
	if err != nil {
		return err
	}
	logutil.Setup(logutil.Options{EnableFileLogging: cfg.EnableFileLogging, Verbose: cfg.Verbose})

	runID := uuid.NewString()
	name := macroName(path)
	log.Printf("run %s: %s x%d (config %q)", runID, path, n, cfg.EnvPath)

	m, err := loadMacro(path, abortKey)
	if err != nil {
		return err
	}

	defer func() {
		if err != nil {
			log.Printf("run %s: failed: %v", runID, err)
			notification.ShowDialog(cfg.DialogTitle, fmt.Sprintf("%s: stopped at %s\n%v", name, timestamp(), err))
		}
	}()

	backend, err := winapi.New()
	if err != nil {
		return err
	}
	sched := timing.NewScheduler()
	desk := desktop.New(backend, sched)
	desk.SetSwitchTimeout(cfg.SwitchTimeout)

	kb := input.NewKeyboard(input.RobotInjector{}, sched)
	mouse := input.NewMouse(input.RobotInjector{}, sched, desk, kb)
	defer func() {
		if err := mouse.ReleaseAll(); err != nil {
			log.Printf("run %s: release buttons: %v", runID, err)
		}
		if err := kb.ReleaseAll(); err != nil {
			log.Printf("run %s: release keys: %v", runID, err)
		}
	}()

	hook := listener.NewHook()
	if err := hook.Start(); err != nil {
		return fmt.Errorf("failed to start input listener: %w", err)
	}
	defer hook.Stop()

	if err := clipboard.Init(); err != nil {
		// Only command steps need it; they fail with ErrNotInitialized.
		log.Printf("run %s: clipboard unavailable: %v", runID, err)
	}

	r, err := macro.NewRunner(m, macro.Env{
		Desktop:        desk,
		Sched:          sched,
		Keyboard:       kb,
		Mouse:          mouse,
		Capturer:       screenshot.Capturer{},
		Clicks:         hook.Clicks,
		Clipboard:      clipboardWriter{},
		AbortKey:       abortKey,
		DefaultTimeout: cfg.DefaultTimeout,
		Out:            out,
	})
	if err != nil {
		return err
	}

	var abort atomic.Bool
	defer abortOnInterrupt(&abort)()
	guard := macro.NewGuard(hook.Keys, abortKey, &abort, desk, r.Title())
	work := func() error {
		return timing.Run(r.Task(n), guard.Tick)
	}

	fmt.Fprintf(out, "%s: start at %s (press %v to abort)\n", name, timestamp(), abortKey)
	if cfg.EnableTray {
		err = tray.Run(cfg.DialogTitle, func() { abort.Store(true) }, work)
	} else {
		err = work()
	}
	if errors.Is(err, pixel.ErrPixelNotFound) {
		// Kept next to the log so the failing colors can be inspected.
		if saved, saveErr := saveSnapshot("", name, runID, r.LastSnapshot()); saveErr != nil {
			log.Printf("run %s: failed to save capture: %v", runID, saveErr)
		} else {
			log.Printf("run %s: saved capture to %s", runID, saved)
		}
	}
	if err != nil {
		return err
	}

	done := fmt.Sprintf("%s: completed at %s", name, timestamp())
	fmt.Fprintln(out, done)
	log.Printf("run %s: completed", runID)
	notification.ShowDialog(cfg.DialogTitle, done)
	return nil
}
