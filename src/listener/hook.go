package listener

import (
	"errors"
	"log"
	"sync"

	gohook "github.com/robotn/gohook"

	"kmmacro/src/geometry"
	"kmmacro/src/input"
)

// modifierRawcodes maps Windows virtual key codes to modifier keys.
var modifierRawcodes = map[uint16]input.Modifier{
	160: input.LShift, // VK_LSHIFT
	161: input.RShift, // VK_RSHIFT
	162: input.LCtrl,  // VK_LCONTROL
	163: input.RCtrl,  // VK_RCONTROL
	164: input.LAlt,   // VK_LMENU
	165: input.RAlt,   // VK_RMENU
	91:  input.LWin,   // VK_LWIN
	92:  input.RWin,   // VK_RWIN
}

var leftButton = gohook.MouseMap["left"]

// Hook feeds a KeyCounter and a ClickSlot from the global gohook event
// stream.
type Hook struct {
	Keys   *KeyCounter
	Clicks *ClickSlot

	mu      sync.Mutex
	running bool
	done    chan struct{}
}

func NewHook() *Hook {
	return &Hook{Keys: &KeyCounter{}, Clicks: NewClickSlot()}
}

// Start launches the listener goroutine.
func (h *Hook) Start() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.running {
		return errors.New("listener already running")
	}

	evChan := gohook.Start()
	if evChan == nil {
		return errors.New("gohook.Start() returned nil channel")
	}
	h.running = true
	h.done = make(chan struct{})

	go func() {
		defer close(h.done)
		defer func() {
			if r := recover(); r != nil {
				log.Printf("PANIC in listener goroutine: %v", r)
			}
		}()
		for ev := range evChan {
			h.handle(ev)
		}
		log.Printf("listener: event channel closed")
	}()
	return nil
}

// Stop ends the gohook session and waits for the goroutine to drain.
func (h *Hook) Stop() {
	h.mu.Lock()
	if !h.running {
		h.mu.Unlock()
		return
	}
	h.running = false
	done := h.done
	h.mu.Unlock()

	gohook.End()
	<-done
}

func (h *Hook) handle(ev gohook.Event) {
	switch ev.Kind {
	case gohook.KeyDown:
		if m, ok := modifierRawcodes[ev.Rawcode]; ok {
			log.Printf("listener: %v pressed", m)
			h.Keys.Press(m)
		}
	case gohook.MouseUp:
		// The release edge completes a click; the press edge is ignored.
		if ev.Button == leftButton {
			h.Clicks.Offer(geometry.PositionInScreen{X: int(ev.X), Y: int(ev.Y)})
		}
	}
}
