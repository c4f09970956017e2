package macro

import (
	"fmt"
	"io"
	"log"
	"time"

	"kmmacro/src/desktop"
	"kmmacro/src/geometry"
	"kmmacro/src/input"
	"kmmacro/src/listener"
	"kmmacro/src/pixel"
	"kmmacro/src/timing"
)

// Clipboard receives the text of command steps.
type Clipboard interface {
	Write(text string) error
}

// Env is everything a Runner drives.
type Env struct {
	Desktop    *desktop.Desktop
	Sched      *timing.Scheduler
	Keyboard   *input.Keyboard
	Mouse      *input.Mouse
	Capturer   pixel.Capturer
	Clicks     *listener.ClickSlot
	Clipboard  Clipboard
	AllScreens bool
	// AbortKey is rejected in step modifiers.
	AbortKey input.Modifier
	// DefaultTimeout applies to waits when the macro sets no timeout_ms.
	DefaultTimeout time.Duration
	// Out receives progress lines for the operator.
	Out io.Writer
}

// Runner executes one validated macro.
type Runner struct {
	env       Env
	prog      *program
	inspector *pixel.Inspector
	offsets   map[string]geometry.OffsetInWindow
	last      *pixel.Snapshot
}

func NewRunner(m *Macro, env Env) (*Runner, error) {
	if env.DefaultTimeout <= 0 {
		env.DefaultTimeout = 2 * time.Second
	}
	if env.Out == nil {
		env.Out = io.Discard
	}
	prog, err := m.compile(env.DefaultTimeout, env.AbortKey)
	if err != nil {
		return nil, err
	}
	return &Runner{
		env:  env,
		prog: prog,
		inspector: &pixel.Inspector{
			Desktop:    env.Desktop,
			Capturer:   env.Capturer,
			Title:      prog.title,
			AllScreens: env.AllScreens,
			Tables:     prog.tables,
		},
		offsets: map[string]geometry.OffsetInWindow{},
	}, nil
}

// Title is the window title the macro drives.
func (r *Runner) Title() string { return r.prog.title }

// LastSnapshot is the capture the most recent probe read, or nil before any
// probe ran.
func (r *Runner) LastSnapshot() *pixel.Snapshot { return r.last }

func (r *Runner) printf(format string, args ...any) {
	msg := fmt.Sprintf(format, args...)
	log.Printf("macro: %s", msg)
	fmt.Fprintln(r.env.Out, msg)
}

// Task returns the macro as a cooperative task that runs the steps n times.
func (r *Runner) Task(n int) timing.Task {
	if n <= 0 {
		panic(fmt.Sprintf("macro: repeat count %d is not positive", n))
	}
	return func(y timing.Yield) error {
		return r.run(y, n)
	}
}

func (r *Runner) run(y timing.Yield, n int) error {
	title := r.prog.title
	r.printf("activate window %q", title)
	ok, err := r.env.Desktop.Activate(title)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: %q", ErrWindowNotFound, title)
	}
	r.printf("waiting for window %q", title)
	w, err := r.env.Desktop.WaitForTitle(y, title)
	if err != nil {
		return err
	}
	if err := r.env.Sched.Sleep(y, time.Second); err != nil {
		return err
	}
	screen, err := r.env.Desktop.Screen()
	if err != nil {
		return err
	}
	log.Printf("macro: %v", w)
	log.Printf("macro: screen %v origin %+v", screen.Box, screen.Origin)
	if err := checkOnScreen(w, screen); err != nil {
		return err
	}

	for _, name := range r.prog.captures {
		off, err := r.capture(y, name)
		if err != nil {
			return err
		}
		r.offsets[name] = off
	}

	for i := 0; i < n; i++ {
		r.printf("start %d / %d", i+1, n)
		for _, a := range r.prog.actions {
			if err := r.exec(y, a); err != nil {
				return err
			}
		}
		r.printf("finish %d / %d", i+1, n)
	}
	return nil
}

func checkOnScreen(w desktop.WindowInfo, screen desktop.ScreenInfo) error {
	if w.Rect.Width() == 0 || w.Rect.Height() == 0 || w.Client.Width() == 0 || w.Client.Height() == 0 {
		return fmt.Errorf("%w: %q is minimized", ErrWindowOffscreen, w.Title)
	}
	if !w.Rect.IsIntersect(screen.Box) {
		return fmt.Errorf("%w: %v is outside %v", ErrWindowOffscreen, w.Rect, screen.Box)
	}
	if !w.ClientBounds().IsIntersect(w.Rect) {
		return fmt.Errorf("%w: client area %v is outside %v", ErrWindowOffscreen, w.ClientBounds(), w.Rect)
	}
	return nil
}

// inClient reports whether pos hits the client area of w on screen.
func inClient(pos geometry.PositionInScreen, w desktop.WindowInfo, screen desktop.ScreenInfo) bool {
	if w.Client.Width() == 0 || w.Client.Height() == 0 {
		return false
	}
	return screen.Box.Includes(pos.X, pos.Y) && w.Rect.Includes(pos.X, pos.Y) && w.ClientBounds().Includes(pos.X, pos.Y)
}

// capture waits for the operator to click inside the window and returns
// the client offset of the click.
func (r *Runner) capture(y timing.Yield, name string) (geometry.OffsetInWindow, error) {
	r.env.Clicks.Take() // discard old input
	r.printf("waiting for a click on %s", name)
	for {
		if pos, ok := r.env.Clicks.Take(); ok {
			w, err := r.env.Desktop.ActiveWindow()
			if err != nil {
				return geometry.OffsetInWindow{}, err
			}
			screen, err := r.env.Desktop.Screen()
			if err != nil {
				return geometry.OffsetInWindow{}, err
			}
			if inClient(pos, w, screen) {
				off := desktop.ScreenToWindowOffset(pos, w, screen)
				r.printf("captured %s at %v as %v", name, pos, off)
				return off, nil
			}
			r.printf("click at %v is outside the client area of %q, click again", pos, w.Title)
		}
		if err := r.env.Sched.SleepMoment(y); err != nil {
			return geometry.OffsetInWindow{}, err
		}
	}
}

// readFlags evaluates the named probes against one fresh snapshot.
func (r *Runner) readFlags(labels ...string) ([]bool, error) {
	s, err := r.inspector.Snapshot()
	if err != nil {
		return nil, err
	}
	r.last = s
	values := make([]bool, len(labels))
	for i, label := range labels {
		t := r.table(label)
		for _, rule := range t.Rules {
			if rule.At != nil && !s.Window.Client.Includes(rule.At.X, rule.At.Y) {
				return nil, fmt.Errorf("probe %q reads %v outside the client area %v", label, *rule.At, s.Window.Client)
			}
		}
		if values[i], err = t.Evaluate(s); err != nil {
			return nil, err
		}
	}
	return values, nil
}

func (r *Runner) readFlag(label string) (bool, error) {
	v, err := r.readFlags(label)
	if err != nil {
		return false, err
	}
	return v[0], nil
}

func (r *Runner) table(label string) pixel.Table {
	for _, t := range r.prog.tables {
		if t.Label == label {
			return t
		}
	}
	panic(fmt.Sprintf("macro: no probe %q", label))
}

func (r *Runner) exec(y timing.Yield, a action) error {
	for t := 0; t < a.times; t++ {
		if t > 0 && (a.kind == kindKey || a.kind == kindClick) {
			if err := r.env.Sched.SleepEnsure(y); err != nil {
				return err
			}
		}
		if err := r.execOnce(y, a); err != nil {
			return err
		}
	}
	return nil
}

func (r *Runner) execOnce(y timing.Yield, a action) error {
	s := r.env.Sched
	switch a.kind {
	case kindKey:
		return r.env.Keyboard.Press(&a.key, a.mod)
	case kindClick:
		return r.click(y, a)
	case kindSleep:
		return s.Sleep(y, a.period)
	case kindMoment:
		for i := 0; i < a.count; i++ {
			if err := s.SleepMoment(y); err != nil {
				return err
			}
		}
	case kindEnsure:
		for i := 0; i < a.count; i++ {
			if err := s.SleepEnsure(y); err != nil {
				return err
			}
		}
	case kindWaitUntil:
		return timing.UntilTrue(s, y, a.timeout, a.flag, func() (bool, error) { return r.readFlag(a.flag) })
	case kindWaitWhile:
		return timing.While(s, y, a.timeout, a.flag, func() (bool, error) { return r.readFlag(a.flag) })
	case kindRequire:
		v, err := r.readFlag(a.flag)
		if err != nil {
			return err
		}
		if !v {
			return &RequirementError{Step: a.index, Flag: a.flag, Expected: true}
		}
	case kindCommand:
		return r.command(y, a)
	case kindLog:
		r.printf("%s", a.text)
	default:
		panic(fmt.Sprintf("macro: unknown step kind %d", a.kind))
	}
	return nil
}

func (r *Runner) click(y timing.Yield, a action) error {
	off := a.at
	if a.capture != "" {
		off = r.offsets[a.capture]
	}
	w, err := r.env.Desktop.ActiveWindow()
	if err != nil {
		return err
	}
	screen, err := r.env.Desktop.Screen()
	if err != nil {
		return err
	}
	if w.Client.Width() == 0 || w.Client.Height() == 0 || !w.Client.Includes(off.X, off.Y) {
		return fmt.Errorf("step %d: %v is outside the client area %v", a.index, off, w.Client)
	}
	if pos := w.ClientOrigin().Move(off.X, off.Y); !screen.Box.Includes(pos.X, pos.Y) {
		return fmt.Errorf("step %d: %v is off screen at %v", a.index, off, pos)
	}
	if err := r.env.Mouse.MoveTo(off); err != nil {
		return err
	}
	if err := r.env.Sched.SleepMoment(y); err != nil {
		return err
	}
	return r.env.Mouse.Click(a.button, a.mod)
}
