package macro

import (
	"context"
	"fmt"
	"log"
	"path/filepath"

	"github.com/fsnotify/fsnotify"
)

// Watch reloads the macro file at path whenever it changes and reports the
// result to onChange, until ctx is done. The directory is watched rather
// than the file so editors that save by renaming are still seen.
func Watch(ctx context.Context, path string, onChange func(*Macro, error)) error {
	abs, err := filepath.Abs(path)
	if err != nil {
		return err
	}
	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return err
	}
	defer watcher.Close()

	if err := watcher.Add(filepath.Dir(abs)); err != nil {
		return fmt.Errorf("watch %s: %w", filepath.Dir(abs), err)
	}
	log.Printf("watch: watching %s", abs)

	for {
		select {
		case event, ok := <-watcher.Events:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			if filepath.Clean(event.Name) != abs || !event.Has(fsnotify.Write|fsnotify.Create) {
				continue
			}
			log.Printf("watch: %v", event)
			onChange(Load(abs))
		case err, ok := <-watcher.Errors:
			if !ok {
				return fmt.Errorf("watcher closed")
			}
			log.Printf("watch: %v", err)
		case <-ctx.Done():
			return nil
		}
	}
}
