package macro

import (
	"errors"
	"fmt"
	"slices"
	"strings"
	"time"

	"kmmacro/src/geometry"
	"kmmacro/src/input"
	"kmmacro/src/pixel"
)

// Probe labels the command step consults when a macro defines them.
const (
	BusyProbe  = "busy"
	InputProbe = "input"
)

type stepKind int

const (
	kindKey stepKind = iota + 1
	kindClick
	kindSleep
	kindMoment
	kindEnsure
	kindWaitUntil
	kindWaitWhile
	kindRequire
	kindCommand
	kindLog
)

var kindNames = map[stepKind]string{
	kindKey:       "key",
	kindClick:     "click",
	kindSleep:     "sleep_ms",
	kindMoment:    "moment",
	kindEnsure:    "ensure",
	kindWaitUntil: "wait_until",
	kindWaitWhile: "wait_while",
	kindRequire:   "require",
	kindCommand:   "command",
	kindLog:       "log",
}

func (k stepKind) String() string { return kindNames[k] }

// action is a validated step.
type action struct {
	index   int
	kind    stepKind
	key     input.Key
	mod     input.Modifier
	button  input.Button
	capture string
	at      geometry.OffsetInWindow
	period  time.Duration
	count   int
	flag    string
	text    string
	times   int
	timeout time.Duration
}

// program is a macro ready to run.
type program struct {
	title    string
	timeout  time.Duration
	tables   []pixel.Table
	captures []string
	actions  []action
}

func (p *program) hasProbe(label string) bool {
	return slices.ContainsFunc(p.tables, func(t pixel.Table) bool { return t.Label == label })
}

// StepError names the step a validation failure belongs to. Index is
// 1-based, as an operator counts the steps in the file.
type StepError struct {
	Index int
	Err   error
}

func (e *StepError) Error() string { return fmt.Sprintf("step %d: %v", e.Index, e.Err) }

func (e *StepError) Unwrap() error { return e.Err }

// commandModifiers are held by the command step while it pastes.
const commandModifiers = input.Ctrl

// Validate reports the first problem in m.
func (m *Macro) Validate() error {
	return m.ValidateAbortKey(input.None)
}

// ValidateAbortKey is Validate plus a check that no step presses abortKey.
// The input listener cannot tell injected presses from the operator's, so
// such a step would abort its own run.
func (m *Macro) ValidateAbortKey(abortKey input.Modifier) error {
	_, err := m.compile(time.Second, abortKey)
	return err
}

func offset(at []int) (geometry.OffsetInWindow, error) {
	if len(at) != 2 {
		return geometry.OffsetInWindow{}, fmt.Errorf("at must be [x, y], got %v", at)
	}
	if at[0] < 0 || at[1] < 0 {
		return geometry.OffsetInWindow{}, fmt.Errorf("at %v is negative", at)
	}
	return geometry.NewOffsetInWindow(at[0], at[1]), nil
}

func compileProbe(p ProbeSpec) (pixel.Table, error) {
	t := pixel.Table{Label: p.Label}
	if len(p.Rules) == 0 {
		return t, fmt.Errorf("probe %q has no rules", p.Label)
	}
	for i, r := range p.Rules {
		var rule pixel.Rule
		switch {
		case r.At == nil && r.Color == "":
		case r.At == nil || r.Color == "":
			return t, fmt.Errorf("probe %q rule %d: at and color go together", p.Label, i+1)
		default:
			off, err := offset(r.At)
			if err != nil {
				return t, fmt.Errorf("probe %q rule %d: %w", p.Label, i+1, err)
			}
			c, err := pixel.ParseColor(r.Color)
			if err != nil {
				return t, fmt.Errorf("probe %q rule %d: %w", p.Label, i+1, err)
			}
			rule.At, rule.Color = &off, &c
		}
		rule.Value = r.Value
		t.Rules = append(t.Rules, rule)
	}
	return t, nil
}

func (m *Macro) compile(defaultTimeout time.Duration, abortKey input.Modifier) (*program, error) {
	if strings.TrimSpace(m.Title) == "" {
		return nil, errors.New("title is required")
	}
	if m.TimeoutMS < 0 {
		return nil, fmt.Errorf("timeout_ms %d is negative", m.TimeoutMS)
	}
	p := &program{title: m.Title, timeout: defaultTimeout}
	if m.TimeoutMS > 0 {
		p.timeout = time.Duration(m.TimeoutMS) * time.Millisecond
	}

	for _, spec := range m.Probes {
		if spec.Label == "" {
			return nil, errors.New("probe without label")
		}
		if p.hasProbe(spec.Label) {
			return nil, fmt.Errorf("duplicate probe %q", spec.Label)
		}
		t, err := compileProbe(spec)
		if err != nil {
			return nil, err
		}
		p.tables = append(p.tables, t)
	}

	for _, name := range m.Captures {
		if name == "" {
			return nil, errors.New("capture without name")
		}
		if slices.Contains(p.captures, name) {
			return nil, fmt.Errorf("duplicate capture %q", name)
		}
		p.captures = append(p.captures, name)
	}

	if len(m.Steps) == 0 {
		return nil, errors.New("macro has no steps")
	}
	for i, s := range m.Steps {
		a, err := p.compileStep(s)
		if err == nil {
			err = a.checkAbortKey(abortKey)
		}
		if err != nil {
			return nil, &StepError{Index: i + 1, Err: err}
		}
		a.index = i + 1
		p.actions = append(p.actions, a)
	}
	return p, nil
}

// held is every modifier the action keeps down while it runs.
func (a action) held() input.Modifier {
	if a.kind == kindCommand {
		return a.mod | commandModifiers
	}
	return a.mod
}

func (a action) checkAbortKey(abortKey input.Modifier) error {
	if clash := a.held() & abortKey; clash != input.None {
		return fmt.Errorf("%w: %v step holds %v", ErrAbortKeyHeld, a.kind, clash)
	}
	return nil
}

func (s Step) kinds() []stepKind {
	var kinds []stepKind
	set := func(ok bool, k stepKind) {
		if ok {
			kinds = append(kinds, k)
		}
	}
	set(s.Key != "", kindKey)
	set(s.Click != nil, kindClick)
	set(s.SleepMS != 0, kindSleep)
	set(s.Moment != 0, kindMoment)
	set(s.Ensure != 0, kindEnsure)
	set(s.WaitUntil != "", kindWaitUntil)
	set(s.WaitWhile != "", kindWaitWhile)
	set(s.Require != "", kindRequire)
	set(s.Command != "", kindCommand)
	set(s.Log != "", kindLog)
	return kinds
}

func (p *program) compileStep(s Step) (action, error) {
	kinds := s.kinds()
	switch len(kinds) {
	case 0:
		return action{}, errors.New("no action")
	case 1:
	default:
		return action{}, fmt.Errorf("more than one action: %v", kinds)
	}
	a := action{kind: kinds[0], times: 1, timeout: p.timeout}
	if s.Times < 0 {
		return a, fmt.Errorf("times %d is negative", s.Times)
	}
	if s.Times > 0 {
		a.times = s.Times
	}
	if s.TimeoutMS < 0 {
		return a, fmt.Errorf("timeout_ms %d is negative", s.TimeoutMS)
	}
	if s.TimeoutMS > 0 {
		a.timeout = time.Duration(s.TimeoutMS) * time.Millisecond
	}
	if s.Modifiers != "" && a.kind != kindKey {
		return a, fmt.Errorf("modifiers only apply to key steps; use click.modifiers for clicks")
	}

	var err error
	switch a.kind {
	case kindKey:
		var ok bool
		if a.key, ok = input.KeyByName(s.Key); !ok {
			return a, fmt.Errorf("unknown key %q", s.Key)
		}
		a.mod, err = input.ParseModifier(s.Modifiers)
	case kindClick:
		err = p.compileClick(&a, s.Click)
	case kindSleep:
		if s.SleepMS < 0 {
			return a, fmt.Errorf("sleep_ms %d is negative", s.SleepMS)
		}
		a.period = time.Duration(s.SleepMS) * time.Millisecond
	case kindMoment, kindEnsure:
		a.count = max(s.Moment, s.Ensure)
		if a.count <= 0 {
			return a, fmt.Errorf("%v count must be positive", a.kind)
		}
	case kindWaitUntil, kindWaitWhile, kindRequire:
		a.flag = s.WaitUntil + s.WaitWhile + s.Require
		if !p.hasProbe(a.flag) {
			return a, fmt.Errorf("unknown probe %q", a.flag)
		}
	case kindCommand:
		if !strings.HasPrefix(s.Command, "/") {
			return a, fmt.Errorf("command %q must start with /", s.Command)
		}
		a.text = s.Command
	case kindLog:
		a.text = s.Log
	}
	return a, err
}

func (p *program) compileClick(a *action, c *ClickSpec) error {
	var err error
	if a.button, err = input.ParseButton(c.Button); err != nil {
		return err
	}
	if a.mod, err = input.ParseModifier(c.Modifiers); err != nil {
		return err
	}
	switch {
	case c.Capture != "" && c.At != nil:
		return errors.New("click takes a capture or at, not both")
	case c.Capture != "":
		if !slices.Contains(p.captures, c.Capture) {
			return fmt.Errorf("unknown capture %q", c.Capture)
		}
		a.capture = c.Capture
	case c.At != nil:
		a.at, err = offset(c.At)
	default:
		return errors.New("click needs a capture or at")
	}
	return err
}
