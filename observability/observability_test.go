package observability

import (
	"bufio"
	"encoding/json"
	"os"
	"path/filepath"
	"testing"
)

func TestFileSinkWritesOneLinePerStep(t *testing.T) {
	dir := t.TempDir()

	sink, err := NewFileSink(dir)
	if err != nil {
		t.Fatalf("NewFileSink() returned error: %v", err)
	}

	sink.Record("retrieve",
		map[string]interface{}{"query": "restaurants"},
		map[string]interface{}{"datasets": []string{"restaurants.geojson"}},
	)
	sink.Record("agent",
		map[string]interface{}{"messages": []string{"restaurants"}},
		map[string]interface{}{"response": "answer"},
	)

	if err := sink.Close(); err != nil {
		t.Fatalf("Close() returned error: %v", err)
	}

	file, err := os.Open(filepath.Join(dir, "agent.log"))
	if err != nil {
		t.Fatalf("failed to open step log: %v", err)
	}
	defer file.Close()

	var steps []string
	scanner := bufio.NewScanner(file)
	for scanner.Scan() {
		var record struct {
			Timestamp string `json:"timestamp"`
			Step      string `json:"step"`
		}
		if err := json.Unmarshal(scanner.Bytes(), &record); err != nil {
			t.Fatalf("invalid JSON line %q: %v", scanner.Text(), err)
		}
		if record.Timestamp == "" {
			t.Error("record missing timestamp")
		}
		steps = append(steps, record.Step)
	}

	if len(steps) != 2 || steps[0] != "retrieve" || steps[1] != "agent" {
		t.Errorf("recorded steps = %v, expected [retrieve agent]", steps)
	}
}

func TestFileSinkAppendsAcrossInstances(t *testing.T) {
	dir := t.TempDir()

	for i := 0; i < 2; i++ {
		sink, err := NewFileSink(dir)
		if err != nil {
			t.Fatalf("NewFileSink() returned error: %v", err)
		}
		sink.Record("tool_execution", nil, nil)
		if err := sink.Close(); err != nil {
			t.Fatalf("Close() returned error: %v", err)
		}
	}

	data, err := os.ReadFile(filepath.Join(dir, "agent.log"))
	if err != nil {
		t.Fatalf("failed to read step log: %v", err)
	}

	lines := 0
	for _, b := range data {
		if b == '\n' {
			lines++
		}
	}
	if lines != 2 {
		t.Errorf("step log has %d lines, expected 2 (append, not truncate)", lines)
	}
}
