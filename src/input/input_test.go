package input

import (
	"errors"
	"reflect"
	"testing"
	"time"

	"kmmacro/src/desktop"
	"kmmacro/src/desktop/desktoptest"
	"kmmacro/src/geometry"
	"kmmacro/src/timing"
)

type recorder struct {
	events []string
	failOn string
	x, y   int
}

func (r *recorder) record(ev string) error {
	r.events = append(r.events, ev)
	if ev == r.failOn {
		return errors.New("injection failed")
	}
	return nil
}

func (r *recorder) KeyDown(code string) error     { return r.record("down " + code) }
func (r *recorder) KeyUp(code string) error       { return r.record("up " + code) }
func (r *recorder) MouseDown(button string) error { return r.record("mousedown " + button) }
func (r *recorder) MouseUp(button string) error   { return r.record("mouseup " + button) }
func (r *recorder) Location() (int, int)          { return r.x, r.y }

func (r *recorder) MoveRelative(dx, dy int) error {
	r.x += dx
	r.y += dy
	return nil
}

func (r *recorder) MoveTo(x, y int) error {
	r.x, r.y = x, y
	return nil
}

func newScheduler() *timing.Scheduler {
	return &timing.Scheduler{
		Clock:   timing.NewManualClock(time.Unix(1700000000, 0)),
		Uniform: func() float64 { return 0.5 },
	}
}

func TestParseModifier(t *testing.T) {
	tests := []struct {
		input    string
		expected Modifier
		wantErr  bool
	}{
		{"", None, false},
		{"shift", LShift, false},
		{"ctrl+shift", LCtrl | LShift, false},
		{"RALT", RAlt, false},
		{"Win + RCtrl", LWin | RCtrl, false},
		{"hyper", None, true},
	}
	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParseModifier(tt.input)
			if (err != nil) != tt.wantErr {
				t.Fatalf("ParseModifier(%q) error = %v, wantErr %v", tt.input, err, tt.wantErr)
			}
			if got != tt.expected {
				t.Errorf("ParseModifier(%q) = %v, expected %v", tt.input, got, tt.expected)
			}
		})
	}
}

func TestModifierAliasesAndOrder(t *testing.T) {
	if Shift != LShift || Ctrl != LCtrl || Alt != LAlt || Win != LWin {
		t.Error("aliases do not match the left-hand modifiers")
	}
	if got := (RWin | LCtrl | LShift).String(); got != "LSHIFT+LCTRL+RWIN" {
		t.Errorf("String() = %q, expected LSHIFT+LCTRL+RWIN", got)
	}
	if !RAlt.Single() || (LAlt | RAlt).Single() || None.Single() {
		t.Error("Single() misreports")
	}
}

func TestKeyByName(t *testing.T) {
	tests := []struct {
		name     string
		expected string
	}{
		{"Enter", "enter"},
		{"ESC", "esc"},
		{"NUM_0", "num0"},
		{"num_multiply", "num*"},
		{"v", "v"},
		{"Z", "z"},
		{"One", "1"},
		{"7", "7"},
		{"F12", "f12"},
		{"Slash", "/"},
		{"Backspace", "backspace"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			k, ok := KeyByName(tt.name)
			if !ok {
				t.Fatalf("KeyByName(%q) not found", tt.name)
			}
			if k.Code != tt.expected {
				t.Errorf("KeyByName(%q).Code = %q, expected %q", tt.name, k.Code, tt.expected)
			}
		})
	}
	if _, ok := KeyByName("F13"); ok {
		t.Error("KeyByName(F13) should not exist")
	}
}

func TestPressWithModifiers(t *testing.T) {
	rec := &recorder{}
	kb := NewKeyboard(rec, newScheduler())
	v := MustKey("V")

	if err := kb.Press(&v, Ctrl|Shift); err != nil {
		t.Fatalf("Press returned %v", err)
	}
	expected := []string{"down lshift", "down lctrl", "down v", "up v", "up lshift", "up lctrl"}
	if !reflect.DeepEqual(rec.events, expected) {
		t.Errorf("events = %v, expected %v", rec.events, expected)
	}
	if len(kb.Held()) != 0 {
		t.Errorf("Held() = %v after Press", kb.Held())
	}
}

func TestPressNilKeyPressesModifiersOnly(t *testing.T) {
	rec := &recorder{}
	kb := NewKeyboard(rec, newScheduler())
	if err := kb.Press(nil, RAlt); err != nil {
		t.Fatalf("Press returned %v", err)
	}
	expected := []string{"down ralt", "up ralt"}
	if !reflect.DeepEqual(rec.events, expected) {
		t.Errorf("events = %v, expected %v", rec.events, expected)
	}
}

func TestWithModifiersReleasesOnError(t *testing.T) {
	rec := &recorder{}
	kb := NewKeyboard(rec, newScheduler())
	errAction := errors.New("action failed")
	a := MustKey("A")

	err := kb.WithModifiers(Alt, func() error {
		if err := kb.down(a); err != nil {
			return err
		}
		return errAction
	})
	if !errors.Is(err, errAction) {
		t.Errorf("WithModifiers returned %v, expected action error", err)
	}
	if len(kb.Held()) != 0 {
		t.Errorf("Held() = %v, expected empty", kb.Held())
	}
	expected := []string{"down lalt", "down a", "up lalt", "up a"}
	if !reflect.DeepEqual(rec.events, expected) {
		t.Errorf("events = %v, expected %v", rec.events, expected)
	}
}

func TestWithModifiersReleasesOnPanic(t *testing.T) {
	rec := &recorder{}
	kb := NewKeyboard(rec, newScheduler())

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic to propagate")
			}
		}()
		_ = kb.WithModifiers(Ctrl, func() error { panic("boom") })
	}()
	if len(kb.Held()) != 0 {
		t.Errorf("Held() = %v, expected empty", kb.Held())
	}
}

func TestDoubleKeyDownPanics(t *testing.T) {
	kb := NewKeyboard(&recorder{}, newScheduler())
	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic on double key down")
			}
		}()
		_ = kb.WithModifiers(Shift, func() error { return kb.Press(nil, Shift) })
	}()
	if len(kb.Held()) != 0 {
		t.Errorf("Held() = %v, expected empty", kb.Held())
	}

	func() {
		defer func() {
			if recover() == nil {
				t.Error("expected panic on releasing a key that is not down")
			}
		}()
		_ = kb.up(MustKey("B"))
	}()
}

func TestInjectionFailureStillReleases(t *testing.T) {
	rec := &recorder{failOn: "down x"}
	kb := NewKeyboard(rec, newScheduler())
	x := MustKey("X")
	if err := kb.Press(&x, Shift); err == nil {
		t.Fatal("Press succeeded, expected injection error")
	}
	if len(kb.Held()) != 0 {
		t.Errorf("Held() = %v, expected empty", kb.Held())
	}
}

func TestMouseClick(t *testing.T) {
	rec := &recorder{}
	sched := newScheduler()
	kb := NewKeyboard(rec, sched)
	m := NewMouse(rec, sched, nil, kb)

	if err := m.Click(Right, Ctrl); err != nil {
		t.Fatalf("Click returned %v", err)
	}
	expected := []string{"down lctrl", "mousedown right", "mouseup right", "up lctrl"}
	if !reflect.DeepEqual(rec.events, expected) {
		t.Errorf("events = %v, expected %v", rec.events, expected)
	}
	if m.Held(Right) {
		t.Error("right button still held")
	}
}

func TestMouseMoveTo(t *testing.T) {
	rec := &recorder{}
	sched := newScheduler()
	b := desktoptest.NewBackend(desktoptest.Window{
		Handle: 9, Title: "game",
		Outer:  geometry.NewRect(50, 900, 650, 100),
		Client: geometry.NewRect(0, 784, 561, 0),
	})
	m := NewMouse(rec, sched, desktop.New(b, sched), NewKeyboard(rec, sched))

	if err := m.MoveTo(geometry.NewOffsetInWindow(0, 0)); err != nil {
		t.Fatalf("MoveTo returned %v", err)
	}
	if got := m.Position(); got != (geometry.PositionInScreen{X: 108, Y: 81}) {
		t.Errorf("Position() = %v, expected PositionInScreen(108, 81)", got)
	}
	_ = m.MoveRelative(-8, -31)
	if got := m.Position(); got != (geometry.PositionInScreen{X: 100, Y: 50}) {
		t.Errorf("Position() after MoveRelative = %v", got)
	}
}

func TestParseButton(t *testing.T) {
	for _, tt := range []struct {
		input    string
		expected Button
		wantErr  bool
	}{
		{"", Left, false},
		{"left", Left, false},
		{"middle", Middle, false},
		{"back", "", true},
	} {
		got, err := ParseButton(tt.input)
		if (err != nil) != tt.wantErr || got != tt.expected {
			t.Errorf("ParseButton(%q) = %q, %v", tt.input, got, err)
		}
	}
}
