// Package tray shows a system tray icon for the duration of a run, with
// menu items to abort it.
package tray

import (
	"log"

	"github.com/getlantern/systray"
)

// outcome is how work ended: an error, or a recovered panic.
type outcome struct {
	err      error
	panicked bool
	value    any
}

// capture runs work, recovering a panic into the outcome.
func capture(work func() error) (o outcome) {
	defer func() {
		if v := recover(); v != nil {
			log.Printf("tray: work panicked: %v", v)
			o = outcome{panicked: true, value: v}
		}
	}()
	return outcome{err: work()}
}

// result returns the error, or re-raises the panic on the calling goroutine.
func (o outcome) result() error {
	if o.panicked {
		panic(o.value)
	}
	return o.err
}

// Run shows the tray icon, runs work on its own goroutine and removes the
// icon when work returns. Abort and Quit both call onAbort; work is expected
// to notice and return. A panic in work is re-raised from Run, so the
// caller's deferred cleanup still runs. Run must be called from the main
// goroutine.
func Run(title string, onAbort func(), work func() error) error {
	done := make(chan outcome, 1)
	systray.Run(func() {
		systray.SetIcon(Icon())
		systray.SetTitle(title)
		systray.SetTooltip(title)

		mAbort := systray.AddMenuItem("Abort", "Stop the macro")
		systray.AddSeparator()
		mQuit := systray.AddMenuItem("Quit", "Stop the macro and exit")

		go func() {
			for {
				select {
				case <-mAbort.ClickedCh:
					log.Printf("tray: abort requested")
					mAbort.Disable()
					onAbort()
				case <-mQuit.ClickedCh:
					log.Printf("tray: quit requested")
					onAbort()
				}
			}
		}()

		go func() {
			done <- capture(work)
			systray.Quit()
		}()
	}, func() {
		log.Printf("tray: exited")
	})
	return (<-done).result()
}
