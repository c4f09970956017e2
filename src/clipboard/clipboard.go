// Package clipboard holds the text handed to the target application by paste.
package clipboard

import (
	"errors"
	"sync"

	"golang.design/x/clipboard"
)

var (
	initOnce sync.Once
	initErr  error
	writeMu  sync.Mutex
)

// ErrNotInitialized is returned by Write before a successful Init.
var ErrNotInitialized = errors.New("clipboard is not initialized")

// Init prepares the system clipboard. Later calls return the first result.
func Init() error {
	initOnce.Do(func() {
		initErr = clipboard.Init()
	})
	return initErr
}

// Write replaces the clipboard text. Writes are serialized.
func Write(text string) error {
	if err := Init(); err != nil {
		return errors.Join(ErrNotInitialized, err)
	}
	writeMu.Lock()
	defer writeMu.Unlock()
	clipboard.Write(clipboard.FmtText, []byte(text))
	return nil
}
