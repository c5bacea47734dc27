package progress

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Stream is the append-only per-run status file consumed by the web front
// end. One line per milestone or error; the file persists across folder and
// file skips and is removed only when the run reaches a terminal state.
type Stream struct {
	mu     sync.Mutex
	path   string
	file   *os.File
	closed bool
}

// Open creates the status file for a run. An existing file at the same path
// is truncated; runs are never resumed.
func Open(dir, collection, runID string) (*Stream, error) {
	path := filepath.Join(dir, fmt.Sprintf("%s-%s.status", collection, runID))
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_TRUNC, 0o644)
	if err != nil {
		return nil, fmt.Errorf("open progress stream: %w", err)
	}
	return &Stream{path: path, file: file}, nil
}

// Path returns the status file location.
func (s *Stream) Path() string {
	return s.path
}

// Record appends one timestamped milestone line.
func (s *Stream) Record(format string, args ...any) error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return errors.New("progress stream closed")
	}
	line := fmt.Sprintf("%s %s\n", time.Now().Format(time.RFC3339), fmt.Sprintf(format, args...))
	if _, err := s.file.WriteString(line); err != nil {
		return fmt.Errorf("write progress stream: %w", err)
	}
	return s.file.Sync()
}

// Finish writes the success marker and removes the file. The front end
// treats disappearance of the file as end of run.
func (s *Stream) Finish(collection string) error {
	if err := s.Record("DONE collection %s ingest complete", collection); err != nil {
		return err
	}
	return s.remove()
}

// Abort writes the failure marker and removes the file so the front end
// stops polling a dead run. The reason survives in the structured log, not
// here.
func (s *Stream) Abort(reason string) error {
	if err := s.Record("ABORTED %s", reason); err != nil {
		return err
	}
	return s.remove()
}

// Close releases the file handle without removing the status file.
func (s *Stream) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.closed {
		return nil
	}
	s.closed = true
	return s.file.Close()
}

func (s *Stream) remove() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if !s.closed {
		s.closed = true
		if err := s.file.Close(); err != nil {
			return err
		}
	}
	if err := os.Remove(s.path); err != nil && !errors.Is(err, os.ErrNotExist) {
		return fmt.Errorf("remove progress stream: %w", err)
	}
	return nil
}
