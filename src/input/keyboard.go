package input

import (
	"fmt"
	"log"

	"kmmacro/src/timing"
)

// Injector synthesizes raw input events.
type Injector interface {
	KeyDown(code string) error
	KeyUp(code string) error
	MouseDown(button string) error
	MouseUp(button string) error
	MoveTo(x, y int) error
	MoveRelative(dx, dy int) error
	Location() (x, y int)
}

// Keyboard presses keys through an Injector and owns the set of keys that
// are currently held down. It is meant for a single goroutine.
type Keyboard struct {
	inj   Injector
	sched *timing.Scheduler
	held  []Key
}

func NewKeyboard(inj Injector, sched *timing.Scheduler) *Keyboard {
	return &Keyboard{inj: inj, sched: sched}
}

// Held returns the keys currently down, in press order.
func (k *Keyboard) Held() []Key {
	return append([]Key(nil), k.held...)
}

func (k *Keyboard) index(key Key) int {
	for i, h := range k.held {
		if h == key {
			return i
		}
	}
	return -1
}

func (k *Keyboard) down(key Key) error {
	if k.index(key) >= 0 {
		panic(fmt.Sprintf("input: key %s is already down", key))
	}
	log.Printf("keyDown: %s", key)
	if err := k.inj.KeyDown(key.Code); err != nil {
		return fmt.Errorf("key down %s: %w", key, err)
	}
	k.held = append(k.held, key)
	return nil
}

func (k *Keyboard) up(key Key) error {
	i := k.index(key)
	if i < 0 {
		panic(fmt.Sprintf("input: key %s is not down", key))
	}
	log.Printf("keyUp: %s", key)
	k.held = append(k.held[:i], k.held[i+1:]...)
	if err := k.inj.KeyUp(key.Code); err != nil {
		return fmt.Errorf("key up %s: %w", key, err)
	}
	return nil
}

// ReleaseAll lets go of every held key and returns the first failure.
func (k *Keyboard) ReleaseAll() error {
	var first error
	for len(k.held) > 0 {
		if err := k.up(k.held[0]); err != nil && first == nil {
			first = err
		}
	}
	return first
}

// WithModifiers holds the modifier keys in mod while action runs. Whatever
// action does, including panicking, every key still held afterwards is
// released before WithModifiers returns.
func (k *Keyboard) WithModifiers(mod Modifier, action func() error) (err error) {
	defer func() {
		if len(k.held) == 0 {
			return
		}
		k.sched.BlockMoment()
		if rerr := k.ReleaseAll(); rerr != nil && err == nil {
			err = rerr
		}
		k.sched.BlockMoment()
	}()
	for _, key := range mod.Keys() {
		if err := k.down(key); err != nil {
			return err
		}
		k.sched.BlockMoment()
	}
	return action()
}

// Press taps key while mod is held. A nil key taps the modifiers only.
func (k *Keyboard) Press(key *Key, mod Modifier) error {
	return k.WithModifiers(mod, func() error {
		if key == nil {
			return nil
		}
		if err := k.down(*key); err != nil {
			return err
		}
		k.sched.BlockMoment()
		return k.up(*key)
	})
}
