// Package listener observes the physical keyboard and mouse from a
// background goroutine and hands the observations to the macro goroutine
// without either side blocking the other.
package listener

import (
	"fmt"
	"sync/atomic"

	"kmmacro/src/geometry"
	"kmmacro/src/input"
)

const modifierCount = 8

func modifierIndex(m input.Modifier) int {
	if !m.Single() {
		panic(fmt.Sprintf("listener: %v is not a single modifier key", m))
	}
	i := 0
	for m > 1 {
		m >>= 1
		i++
	}
	return i
}

// KeyCounter counts presses of each modifier key. Press is called by the
// listener goroutine; PressedSinceLastCall by exactly one consumer. The
// counters wrap at 2^32, which only matters if the consumer skips 4 billion
// presses.
type KeyCounter struct {
	counts [modifierCount]atomic.Uint32
	seen   [modifierCount]uint32
}

func (c *KeyCounter) Press(m input.Modifier) {
	c.counts[modifierIndex(m)].Add(1)
}

// PressedSinceLastCall reports whether m was pressed since the previous
// call for m. A press shorter than the consumer's polling interval is still
// seen.
func (c *KeyCounter) PressedSinceLastCall(m input.Modifier) bool {
	i := modifierIndex(m)
	n := c.counts[i].Load()
	if n == c.seen[i] {
		return false
	}
	c.seen[i] = n
	return true
}

// ClickSlot holds the position of the most recent click. An unconsumed
// click is overwritten by the next one.
type ClickSlot struct {
	ch chan geometry.PositionInScreen
}

func NewClickSlot() *ClickSlot {
	return &ClickSlot{ch: make(chan geometry.PositionInScreen, 1)}
}

// Offer stores p, dropping any older click. It must only be called from one
// goroutine.
func (s *ClickSlot) Offer(p geometry.PositionInScreen) {
	for {
		select {
		case s.ch <- p:
			return
		default:
		}
		select {
		case <-s.ch:
		default:
		}
	}
}

// Take empties the slot.
func (s *ClickSlot) Take() (geometry.PositionInScreen, bool) {
	select {
	case p := <-s.ch:
		return p, true
	default:
		return geometry.PositionInScreen{}, false
	}
}
