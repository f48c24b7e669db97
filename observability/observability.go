package observability

import (
	"encoding/json"
	"fmt"
	"log"
	"os"
	"path/filepath"
	"sync"
	"time"
)

// Sink receives one record per orchestration step. Records are fire-and-forget
// and append-only; a failing sink never fails the run.
type Sink interface {
	Record(stepName string, input map[string]interface{}, output map[string]interface{})
}

type stepRecord struct {
	Timestamp string                 `json:"timestamp"`
	Step      string                 `json:"step"`
	Input     map[string]interface{} `json:"input"`
	Output    map[string]interface{} `json:"output"`
}

// FileSink writes one JSON line per step to a log file. It is constructed
// once at process start and passed into the services that need it, replacing
// any process-global log handle.
type FileSink struct {
	mu   sync.Mutex
	file *os.File
	enc  *json.Encoder
}

func NewFileSink(logDir string) (*FileSink, error) {
	if err := os.MkdirAll(logDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}

	path := filepath.Join(logDir, "agent.log")
	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return nil, fmt.Errorf("failed to open step log: %w", err)
	}

	return &FileSink{file: file, enc: json.NewEncoder(file)}, nil
}

func (s *FileSink) Record(stepName string, input map[string]interface{}, output map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	rec := stepRecord{
		Timestamp: time.Now().Format(time.RFC3339),
		Step:      stepName,
		Input:     input,
		Output:    output,
	}
	if err := s.enc.Encode(rec); err != nil {
		log.Printf("[WARN] Failed to record step %s: %v", stepName, err)
	}
}

func (s *FileSink) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if err := s.file.Sync(); err != nil {
		return fmt.Errorf("failed to flush step log: %w", err)
	}
	return s.file.Close()
}

// NopSink discards all records. Useful for tests and tooling.
type NopSink struct{}

func (NopSink) Record(string, map[string]interface{}, map[string]interface{}) {}
