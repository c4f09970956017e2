package input

import (
	"fmt"
	"log"

	"kmmacro/src/desktop"
	"kmmacro/src/geometry"
	"kmmacro/src/timing"
)

type Button string

const (
	Left   Button = "left"
	Right  Button = "right"
	Middle Button = "middle"
)

// ParseButton accepts left, right or middle; empty means left.
func ParseButton(s string) (Button, error) {
	switch Button(s) {
	case "", Left:
		return Left, nil
	case Right, Middle:
		return Button(s), nil
	}
	return "", fmt.Errorf("unknown mouse button %q", s)
}

// Mouse moves the cursor in window offsets and clicks with the same
// release guarantees as Keyboard.
type Mouse struct {
	inj   Injector
	sched *timing.Scheduler
	desk  *desktop.Desktop
	kb    *Keyboard
	held  map[Button]bool
}

func NewMouse(inj Injector, sched *timing.Scheduler, desk *desktop.Desktop, kb *Keyboard) *Mouse {
	return &Mouse{inj: inj, sched: sched, desk: desk, kb: kb, held: map[Button]bool{}}
}

func (m *Mouse) down(b Button) error {
	if m.held[b] {
		panic(fmt.Sprintf("input: mouse button %s is already down", b))
	}
	log.Printf("mouseDown: %s", b)
	if err := m.inj.MouseDown(string(b)); err != nil {
		return fmt.Errorf("mouse down %s: %w", b, err)
	}
	m.held[b] = true
	return nil
}

func (m *Mouse) up(b Button) error {
	if !m.held[b] {
		panic(fmt.Sprintf("input: mouse button %s is not down", b))
	}
	log.Printf("mouseUp: %s", b)
	delete(m.held, b)
	if err := m.inj.MouseUp(string(b)); err != nil {
		return fmt.Errorf("mouse up %s: %w", b, err)
	}
	return nil
}

// Held reports whether b is down.
func (m *Mouse) Held(b Button) bool { return m.held[b] }

// ReleaseAll lets go of every held button.
func (m *Mouse) ReleaseAll() error {
	var first error
	for _, b := range []Button{Left, Right, Middle} {
		if m.held[b] {
			if err := m.up(b); err != nil && first == nil {
				first = err
			}
		}
	}
	return first
}

// Click presses and releases b while mod is held.
func (m *Mouse) Click(b Button, mod Modifier) error {
	return m.kb.WithModifiers(mod, func() (err error) {
		defer func() {
			if rerr := m.ReleaseAll(); rerr != nil && err == nil {
				err = rerr
			}
			m.sched.BlockMoment()
		}()
		if err := m.down(b); err != nil {
			return err
		}
		m.sched.BlockMoment()
		return nil
	})
}

// MoveTo places the cursor at a client offset of the active window.
func (m *Mouse) MoveTo(off geometry.OffsetInWindow) error {
	pos, err := m.desk.FromWindowOffset(off, nil, nil)
	if err != nil {
		return err
	}
	log.Printf("mouseMove: %v -> %v", off, pos)
	return m.inj.MoveTo(pos.X, pos.Y)
}

func (m *Mouse) MoveRelative(dx, dy int) error {
	return m.inj.MoveRelative(dx, dy)
}

// Position is the current cursor position.
func (m *Mouse) Position() geometry.PositionInScreen {
	x, y := m.inj.Location()
	return geometry.PositionInScreen{X: x, Y: y}
}
