package logging

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
)

// RotatingFileWriter is an io.WriteCloser that appends to a log file and
// rotates it through numbered backups once it exceeds a size limit.
type RotatingFileWriter struct {
	mu      sync.Mutex
	path    string
	limit   int64
	backups int
	out     *os.File
	written int64
}

func NewRotatingFileWriter(path string, limit int64, backups int) (*RotatingFileWriter, error) {
	if path == "" {
		return nil, fmt.Errorf("log path is required")
	}
	if limit <= 0 {
		return nil, fmt.Errorf("size limit must be > 0")
	}
	if backups < 0 {
		backups = 0
	}

	if err := os.MkdirAll(filepath.Dir(path), 0o755); err != nil {
		return nil, err
	}

	out, written, err := openAppend(path)
	if err != nil {
		return nil, err
	}

	w := &RotatingFileWriter{path: path, limit: limit, backups: backups, out: out, written: written}

	// A file left oversized by a previous run rotates before the first write.
	if w.written > w.limit {
		if err := w.rotate(); err != nil {
			return nil, err
		}
	}
	return w, nil
}

func (w *RotatingFileWriter) Write(p []byte) (int, error) {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.out == nil {
		return 0, os.ErrClosed
	}

	// A single line larger than the limit still gets written into an empty
	// file rather than rotating forever.
	if w.written > 0 && w.written+int64(len(p)) > w.limit {
		if err := w.rotate(); err != nil {
			return 0, err
		}
	}

	n, err := w.out.Write(p)
	w.written += int64(n)
	return n, err
}

func (w *RotatingFileWriter) Close() error {
	w.mu.Lock()
	defer w.mu.Unlock()

	if w.out == nil {
		return nil
	}
	err := w.out.Close()
	w.out = nil
	return err
}

func (w *RotatingFileWriter) rotate() error {
	if w.out != nil {
		if err := w.out.Close(); err != nil {
			return err
		}
		w.out = nil
	}

	if w.backups == 0 {
		if err := removeIfExists(w.path); err != nil {
			return err
		}
	} else if err := w.shiftBackups(); err != nil {
		return err
	}

	out, err := os.OpenFile(w.path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return err
	}
	w.out = out
	w.written = 0
	return nil
}

// shiftBackups renames path.N-1 -> path.N for every slot, dropping the
// oldest, then moves the live file into slot 1.
func (w *RotatingFileWriter) shiftBackups() error {
	if err := removeIfExists(w.backupName(w.backups)); err != nil {
		return err
	}

	for idx := w.backups - 1; idx >= 1; idx-- {
		src := w.backupName(idx)
		if _, err := os.Stat(src); err != nil {
			if errors.Is(err, os.ErrNotExist) {
				continue
			}
			return err
		}
		dst := w.backupName(idx + 1)
		if err := removeIfExists(dst); err != nil {
			return err
		}
		if err := os.Rename(src, dst); err != nil {
			return err
		}
	}

	if _, err := os.Stat(w.path); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return nil
		}
		return err
	}
	first := w.backupName(1)
	if err := removeIfExists(first); err != nil {
		return err
	}
	return os.Rename(w.path, first)
}

func (w *RotatingFileWriter) backupName(idx int) string {
	return fmt.Sprintf("%s.%d", w.path, idx)
}

func openAppend(path string) (*os.File, int64, error) {
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, 0, err
	}
	var size int64
	if stat, err := f.Stat(); err == nil {
		size = stat.Size()
	}
	return f, size, nil
}

func removeIfExists(path string) error {
	if err := os.Remove(path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	return nil
}
