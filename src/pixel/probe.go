package pixel

import (
	"errors"
	"fmt"
	"strings"

	"kmmacro/src/desktop"
	"kmmacro/src/geometry"
)

// ErrPixelNotFound is matched by every *NotFoundError.
var ErrPixelNotFound = errors.New("pixel not found")

// NotFoundError means no rule of a table matched the captured pixels. The
// table no longer reflects what the application draws.
type NotFoundError struct {
	Label string
}

func (e *NotFoundError) Error() string {
	return fmt.Sprintf("pixel not found for %s", e.Label)
}

func (e *NotFoundError) Is(target error) bool { return target == ErrPixelNotFound }

// Rule maps the color at At to Value. A rule without an offset or a color
// matches unconditionally.
type Rule struct {
	At    *geometry.OffsetInWindow
	Color *Color
	Value bool
}

func (r Rule) wildcard() bool { return r.At == nil || r.Color == nil }

// Table infers one flag.
type Table struct {
	Label string
	Rules []Rule
}

// Evaluate returns the value of the first matching rule. Wildcard rules do
// not read the snapshot.
func (t Table) Evaluate(s *Snapshot) (bool, error) {
	for _, r := range t.Rules {
		if r.wildcard() {
			return r.Value, nil
		}
		if s.GetPixel(*r.At) == *r.Color {
			return r.Value, nil
		}
	}
	return false, &NotFoundError{Label: t.Label}
}

// Probe evaluates tables into caller-owned fields, in the order they were
// bound.
type Probe struct {
	bindings []binding
}

type binding struct {
	field *bool
	table Table
}

// Bind makes Evaluate store the result of table in *field.
func (p *Probe) Bind(field *bool, table Table) *Probe {
	p.bindings = append(p.bindings, binding{field: field, table: table})
	return p
}

// Evaluate fills every bound field or fails at the first table without a
// match. Fields of tables after the failure are left untouched.
func (p *Probe) Evaluate(s *Snapshot) error {
	for _, b := range p.bindings {
		v, err := b.table.Evaluate(s)
		if err != nil {
			return err
		}
		*b.field = v
	}
	return nil
}

// Flag is one evaluated table.
type Flag struct {
	Label string
	Value bool
}

// Flags holds evaluated tables in table order.
type Flags []Flag

// EvaluateAll evaluates tables in order.
func EvaluateAll(s *Snapshot, tables []Table) (Flags, error) {
	flags := make(Flags, 0, len(tables))
	for _, t := range tables {
		v, err := t.Evaluate(s)
		if err != nil {
			return nil, err
		}
		flags = append(flags, Flag{Label: t.Label, Value: v})
	}
	return flags, nil
}

// Get returns the value of label and whether it was evaluated.
func (f Flags) Get(label string) (bool, bool) {
	for _, flag := range f {
		if flag.Label == label {
			return flag.Value, true
		}
	}
	return false, false
}

func (f Flags) String() string {
	parts := make([]string, len(f))
	for i, flag := range f {
		parts[i] = fmt.Sprintf("%s=%v", flag.Label, flag.Value)
	}
	return "Flags(" + strings.Join(parts, ", ") + ")"
}

// Inspector takes fresh snapshots of the expected window and evaluates
// tables against them.
type Inspector struct {
	Desktop    *desktop.Desktop
	Capturer   Capturer
	Title      string
	AllScreens bool
	Tables     []Table
}

// Snapshot captures the active window and fails with
// desktop.ErrWindowMismatch when it is not the expected one.
func (in *Inspector) Snapshot() (*Snapshot, error) {
	s, err := Take(in.Desktop, in.Capturer, in.AllScreens)
	if err != nil {
		return nil, err
	}
	if in.Title != "" {
		if err := desktop.CheckTitle(s.Window, in.Title); err != nil {
			return nil, err
		}
	}
	return s, nil
}

// Inspect evaluates every table against a fresh snapshot.
func (in *Inspector) Inspect() (Flags, error) {
	s, err := in.Snapshot()
	if err != nil {
		return nil, err
	}
	return EvaluateAll(s, in.Tables)
}
