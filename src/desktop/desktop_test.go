package desktop_test

import (
	"errors"
	"testing"
	"time"

	"kmmacro/src/desktop"
	"kmmacro/src/desktop/desktoptest"
	"kmmacro/src/geometry"
	"kmmacro/src/timing"
)

func manualScheduler() *timing.Scheduler {
	return &timing.Scheduler{
		Clock:   timing.NewManualClock(time.Unix(1700000000, 0)),
		Uniform: func() float64 { return 0.5 },
	}
}

func expectPanic(t *testing.T, name string, f func()) {
	t.Helper()
	defer func() {
		if recover() == nil {
			t.Errorf("%s: expected panic", name)
		}
	}()
	f()
}

// Two monitors: the primary at the origin and a second one to its left and
// slightly above, so screen positions go negative.
func dualScreen() desktop.ScreenInfo {
	return desktop.NewScreenInfo([]desktop.Monitor{
		{Rect: geometry.NewRect(0, 1920, 1080, 0), Primary: true, Name: "DISPLAY1"},
		{Rect: geometry.NewRect(-200, 0, 1240, -2560), Name: "DISPLAY2"},
	})
}

func TestPaddingScenario(t *testing.T) {
	outer := geometry.NewRect(50, 900, 650, 100)
	client := geometry.NewRect(0, 784, 561, 0)
	w := desktop.NewWindowInfo(1, "target", outer, client)

	expected := desktop.Padding{Top: 31, Right: 8, Bottom: 8, Left: 8}
	if w.Padding != expected {
		t.Errorf("Padding = %+v, expected %+v", w.Padding, expected)
	}

	screen := desktop.NewScreenInfo([]desktop.Monitor{{Rect: geometry.NewRect(0, 1920, 1080, 0), Primary: true}})
	pos := desktop.WindowOffsetToScreen(geometry.NewOffsetInWindow(0, 0), w, screen)
	if pos != (geometry.PositionInScreen{X: 108, Y: 81}) {
		t.Errorf("WindowOffsetToScreen(0,0) = %v, expected PositionInScreen(108, 81)", pos)
	}
}

func TestNewWindowInfoPadding(t *testing.T) {
	tests := []struct {
		name     string
		outer    geometry.Rect
		client   geometry.Rect
		expected desktop.Padding
	}{
		{"borderless", geometry.NewRect(0, 800, 600, 0), geometry.NewRect(0, 800, 600, 0), desktop.Padding{}},
		{"title bar only", geometry.NewRect(0, 800, 630, 0), geometry.NewRect(0, 800, 600, 0), desktop.Padding{Top: 30}},
		{"zero client", geometry.NewRect(0, 800, 600, 0), geometry.NewRect(0, 0, 0, 0), desktop.Padding{}},
		{"negative position", geometry.NewRect(-500, -100, 100, -900), geometry.NewRect(0, 780, 560, 0), desktop.Padding{Top: 30, Right: 10, Bottom: 10, Left: 10}},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			w := desktop.NewWindowInfo(1, "", tt.outer, tt.client)
			if w.Padding != tt.expected {
				t.Errorf("Padding = %+v, expected %+v", w.Padding, tt.expected)
			}
		})
	}
}

func TestNewWindowInfoRejectsOddChrome(t *testing.T) {
	expectPanic(t, "odd horizontal border", func() {
		desktop.NewWindowInfo(1, "", geometry.NewRect(0, 801, 630, 0), geometry.NewRect(0, 800, 600, 0))
	})
	expectPanic(t, "client wider than window", func() {
		desktop.NewWindowInfo(1, "", geometry.NewRect(0, 800, 630, 0), geometry.NewRect(0, 820, 600, 0))
	})
	expectPanic(t, "top border thinner than side border", func() {
		desktop.NewWindowInfo(1, "", geometry.NewRect(0, 820, 605, 0), geometry.NewRect(0, 800, 600, 0))
	})
}

func TestNewScreenInfo(t *testing.T) {
	s := dualScreen()
	if s.Origin != (desktop.Origin{X: 2560, Y: 200}) {
		t.Errorf("Origin = %+v, expected {2560 200}", s.Origin)
	}
	if s.Size != (desktop.Size{Width: 4480, Height: 1440}) {
		t.Errorf("Size = %+v, expected {4480 1440}", s.Size)
	}
	if s.Box != geometry.NewRect(-200, 1920, 1240, -2560) {
		t.Errorf("Box = %v", s.Box)
	}
	if s.Primary().Name != "DISPLAY1" {
		t.Errorf("Primary() = %q, expected DISPLAY1", s.Primary().Name)
	}

	expectPanic(t, "union without origin", func() {
		desktop.NewScreenInfo([]desktop.Monitor{{Rect: geometry.NewRect(10, 100, 100, 10)}})
	})
}

func TestScreenOffsetRoundTrip(t *testing.T) {
	s := dualScreen()
	for x := s.Box.Left; x < s.Box.Right; x += 97 {
		for y := s.Box.Top; y < s.Box.Bottom; y += 53 {
			p := geometry.PositionInScreen{X: x, Y: y}
			off := desktop.ScreenToScreenOffset(p, s)
			if back := desktop.ScreenOffsetToScreen(off, s); back != p {
				t.Fatalf("round trip of %v through %v = %v", p, off, back)
			}
		}
	}
	if off := desktop.ScreenToScreenOffset(geometry.PositionInScreen{X: -2560, Y: -200}, s); off != geometry.NewOffsetInScreen(0, 0) {
		t.Errorf("top-left offset = %v, expected OffsetInScreen(0, 0)", off)
	}
}

func TestWindowOffsetRoundTrip(t *testing.T) {
	s := dualScreen()
	// Window on the left monitor, partially off the top of the screen.
	w := desktop.NewWindowInfo(7, "game", geometry.NewRect(-230, -1000, 600, -2400), geometry.NewRect(0, 1384, 791, 0))

	for x := 0; x < w.Client.Right; x += 37 {
		for y := 0; y < w.Client.Bottom; y += 29 {
			pos := w.ClientOrigin().Move(x, y)
			if !s.Box.Includes(pos.X, pos.Y) {
				continue
			}
			off := desktop.ScreenToWindowOffset(pos, w, s)
			if off != geometry.NewOffsetInWindow(x, y) {
				t.Fatalf("ScreenToWindowOffset(%v) = %v, expected (%d, %d)", pos, off, x, y)
			}
			if back := desktop.WindowOffsetToScreen(off, w, s); back != pos {
				t.Fatalf("round trip of %v through %v = %v", pos, off, back)
			}
		}
	}
}

func TestConversionPreconditions(t *testing.T) {
	s := dualScreen()
	w := desktop.NewWindowInfo(7, "game", geometry.NewRect(50, 900, 650, 100), geometry.NewRect(0, 784, 561, 0))

	expectPanic(t, "outside screen", func() {
		desktop.ScreenToScreenOffset(geometry.PositionInScreen{X: 1920, Y: 0}, s)
	})
	expectPanic(t, "on window border", func() {
		desktop.ScreenToWindowOffset(geometry.PositionInScreen{X: 102, Y: 60}, w, s)
	})
	expectPanic(t, "outside window", func() {
		desktop.ScreenToWindowOffset(geometry.PositionInScreen{X: 50, Y: 60}, w, s)
	})
	expectPanic(t, "offset outside client", func() {
		desktop.WindowOffsetToScreen(geometry.NewOffsetInWindow(784, 0), w, s)
	})
}

func TestActiveWindowRetriesDuringSwitch(t *testing.T) {
	b := desktoptest.NewBackend(desktoptest.Window{
		Handle: 42, Title: "game",
		Outer:  geometry.NewRect(50, 900, 650, 100),
		Client: geometry.NewRect(0, 784, 561, 0),
	})
	b.Foreground = []uintptr{0, 0}
	d := desktop.New(b, manualScheduler())

	w, err := d.ActiveWindow()
	if err != nil {
		t.Fatalf("ActiveWindow returned %v", err)
	}
	if w.Handle != 42 || w.Title != "game" {
		t.Errorf("ActiveWindow = %v", w)
	}
}

func TestActiveWindowSwitchTimeout(t *testing.T) {
	b := desktoptest.NewBackend(desktoptest.Window{Handle: 42})
	b.Active = 0
	d := desktop.New(b, manualScheduler())

	if _, err := d.ActiveWindow(); !errors.Is(err, desktop.ErrWindowSwitchTimeout) {
		t.Errorf("ActiveWindow returned %v, expected ErrWindowSwitchTimeout", err)
	}
}

func TestActivate(t *testing.T) {
	b := desktoptest.NewBackend(desktoptest.Window{Handle: 1, Title: "editor"})
	b.Windows = append(b.Windows, desktoptest.Window{Handle: 2, Title: "game"})
	d := desktop.New(b, manualScheduler())

	ok, err := d.Activate("missing")
	if ok || err != nil {
		t.Errorf("Activate(missing) = %v, %v, expected false, nil", ok, err)
	}

	ok, err = d.Activate("game")
	if !ok || err != nil {
		t.Fatalf("Activate(game) = %v, %v, expected true, nil", ok, err)
	}
	if b.ForegroundWindow() != 2 {
		t.Errorf("foreground = %d, expected 2", b.ForegroundWindow())
	}
	if len(b.Restored) != 1 || b.Restored[0] != 2 {
		t.Errorf("Restored = %v, expected [2]", b.Restored)
	}

	b.Stubborn = true
	b.SetActive(1)
	if _, err := d.Activate("game"); !errors.Is(err, desktop.ErrWindowSwitchTimeout) {
		t.Errorf("Activate on stubborn backend returned %v, expected ErrWindowSwitchTimeout", err)
	}
}

func TestWaitForTitle(t *testing.T) {
	b := desktoptest.NewBackend(desktoptest.Window{Handle: 1, Title: "editor"})
	b.Windows = append(b.Windows, desktoptest.Window{Handle: 2, Title: "game"})
	d := desktop.New(b, manualScheduler())

	ticks := 0
	var w desktop.WindowInfo
	err := timing.Run(func(y timing.Yield) error {
		var err error
		w, err = d.WaitForTitle(y, "game")
		return err
	}, func() error {
		ticks++
		if ticks == 3 {
			b.SetActive(2)
		}
		return nil
	})
	if err != nil {
		t.Fatalf("WaitForTitle returned %v", err)
	}
	if w.Handle != 2 {
		t.Errorf("WaitForTitle = %v, expected handle 2", w)
	}
}

func TestCheckTitle(t *testing.T) {
	w := desktop.WindowInfo{Title: "editor"}
	if err := desktop.CheckTitle(w, "editor"); err != nil {
		t.Errorf("CheckTitle(editor) = %v", err)
	}
	if err := desktop.CheckTitle(w, "game"); !errors.Is(err, desktop.ErrWindowMismatch) {
		t.Errorf("CheckTitle(game) = %v, expected ErrWindowMismatch", err)
	}
}

func TestFreshSnapshotConversions(t *testing.T) {
	b := desktoptest.NewBackend(desktoptest.Window{
		Handle: 42, Title: "game",
		Outer:  geometry.NewRect(50, 900, 650, 100),
		Client: geometry.NewRect(0, 784, 561, 0),
	})
	d := desktop.New(b, manualScheduler())

	pos, err := d.FromWindowOffset(geometry.NewOffsetInWindow(10, 20), nil, nil)
	if err != nil {
		t.Fatalf("FromWindowOffset returned %v", err)
	}
	if pos != (geometry.PositionInScreen{X: 118, Y: 101}) {
		t.Errorf("FromWindowOffset = %v, expected PositionInScreen(118, 101)", pos)
	}
	off, err := d.ToWindowOffset(pos, nil, nil)
	if err != nil || off != geometry.NewOffsetInWindow(10, 20) {
		t.Errorf("ToWindowOffset = %v, %v", off, err)
	}
	soff, err := d.ToScreenOffset(pos, nil)
	if err != nil || soff != geometry.NewOffsetInScreen(118, 101) {
		t.Errorf("ToScreenOffset = %v, %v", soff, err)
	}
	back, err := d.FromScreenOffset(soff, nil)
	if err != nil || back != pos {
		t.Errorf("FromScreenOffset = %v, %v", back, err)
	}
}
