// Package logutil configures the standard logger for the whole process.
package logutil

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
)

const (
	LogFileName  = "kmmacro.log"
	maxSizeBytes = 10 * 1024 * 1024 // 10 MB
	maxArchives  = 3
)

// Options selects where log lines go.
type Options struct {
	EnableFileLogging bool
	Verbose           bool
	// Dir holds the log file and its archives; empty means the working
	// directory.
	Dir string
}

// Setup routes the standard logger. File logging rotates at 10MB keeping
// three archives; verbose mode also copies lines to stderr. With neither,
// logs are discarded so stdout and stderr stay clean.
func Setup(opts Options) {
	log.SetFlags(log.LstdFlags | log.Lshortfile)
	var writers []io.Writer
	if opts.EnableFileLogging {
		path := filepath.Join(opts.Dir, LogFileName)
		if w, err := openRotating(path); err != nil {
			fmt.Fprintf(os.Stderr, "Failed to open log file: %v\n", err)
		} else {
			writers = append(writers, w)
		}
	}
	if opts.Verbose {
		writers = append(writers, os.Stderr)
	}
	switch len(writers) {
	case 0:
		log.SetOutput(io.Discard)
	case 1:
		log.SetOutput(writers[0])
	default:
		log.SetOutput(io.MultiWriter(writers...))
	}
}

type rotatingWriter struct {
	path  string
	limit int64
	f     *os.File
}

func openRotating(path string) (*rotatingWriter, error) {
	w := &rotatingWriter{path: path, limit: maxSizeBytes}
	rotateIfNeeded(path, w.limit)
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
	if err != nil {
		return nil, err
	}
	w.f = f
	return w, nil
}

func (w *rotatingWriter) Write(p []byte) (int, error) {
	// naive rotation check per write
	if st, err := w.f.Stat(); err == nil && st.Size()+int64(len(p)) > w.limit {
		_ = w.f.Close()
		rotate(w.path)
		nf, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o666)
		if err != nil {
			return 0, err
		}
		w.f = nf
	}
	return w.f.Write(p)
}

func (w *rotatingWriter) Close() error { return w.f.Close() }

func rotateIfNeeded(path string, limit int64) {
	if st, err := os.Stat(path); err == nil && st.Size() > limit {
		rotate(path)
	}
}

// rotate shifts path to .1, .1 to .2 and so on; the oldest archive is dropped.
func rotate(path string) {
	_ = os.Remove(archiveName(path, maxArchives))
	for i := maxArchives - 1; i >= 1; i-- {
		_ = os.Rename(archiveName(path, i), archiveName(path, i+1))
	}
	_ = os.Rename(path, archiveName(path, 1))
}

func archiveName(path string, n int) string { return fmt.Sprintf("%s.%d", path, n) }
