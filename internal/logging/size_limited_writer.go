package logging

import (
	"os"
	"sync"
)

// defaultLogCapMB applies when LOG_MAX_MB is unset or nonsense.
const defaultLogCapMB = 10

// sizeLimitedWriter appends to the LOG_FILE path and starts the file
// over whenever the next write would cross the cap. zerolog writes one
// whole event per call, so a restart lands between events, never
// inside a line.
type sizeLimitedWriter struct {
	path  string
	limit int64

	mu   sync.Mutex
	file *os.File
	size int64
}

func newSizeLimitedWriter(path string, maxMB int) (*sizeLimitedWriter, error) {
	if maxMB <= 0 {
		maxMB = defaultLogCapMB
	}
	w := &sizeLimitedWriter{path: path, limit: int64(maxMB) << 20}
	if err := w.open(os.O_APPEND); err != nil {
		return nil, err
	}
	return w, nil
}

func (w *sizeLimitedWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		if err := w.open(os.O_APPEND); err != nil {
			return 0, err
		}
	}
	if w.size+int64(len(p)) > w.limit {
		_ = w.file.Close()
		if err := w.open(os.O_TRUNC); err != nil {
			return 0, err
		}
	}
	n, err := w.file.Write(p)
	w.size += int64(n)
	return n, err
}

func (w *sizeLimitedWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()
	if w.file == nil {
		return nil
	}
	err := w.file.Close()
	w.file = nil
	return err
}

// open replaces w.file with a fresh handle on w.path, O_APPEND to
// continue an existing file or O_TRUNC to start it over.
func (w *sizeLimitedWriter) open(mode int) error {
	f, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|mode, 0o644)
	if err != nil {
		return err
	}
	w.file = f
	w.size = 0
	if mode&os.O_APPEND != 0 {
		info, err := f.Stat()
		if err != nil {
			_ = f.Close()
			w.file = nil
			return err
		}
		w.size = info.Size()
	}
	return nil
}
