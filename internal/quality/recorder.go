package quality

import (
	"context"
	"encoding/json"
	"os"
	"sync"
)

// FileRecorder appends check results to a JSONL file, one verdict per line.
type FileRecorder struct {
	mu   sync.Mutex
	path string
}

var _ Recorder = (*FileRecorder)(nil)

// NewFileRecorder creates a recorder writing to path.
func NewFileRecorder(path string) *FileRecorder {
	return &FileRecorder{path: path}
}

// Record appends the result as one JSON line.
func (r *FileRecorder) Record(ctx context.Context, result *Result) error {
	b, err := json.Marshal(result)
	if err != nil {
		return err
	}

	r.mu.Lock()
	defer r.mu.Unlock()

	f, err := os.OpenFile(r.path, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.Write(append(b, '\n')); err != nil {
		return err
	}
	return nil
}
