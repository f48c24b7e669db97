package agent

import (
	"context"
	"fmt"
	"testing"

	"github.com/antoniamayaobrador/lisbon-agent/models"
	"github.com/antoniamayaobrador/lisbon-agent/observability"
)

func newDispatchService(tools ...AgentTool) *Service {
	accessor := &fakeAccessor{results: map[string][]models.DatasetDescriptor{}}
	client := &fakeClient{replies: []models.AgentMessage{{Role: "assistant"}}}
	return NewService(client, accessor, tools, observability.NopSink{}, 10)
}

func TestDispatchCorrelatesRepliesInOrder(t *testing.T) {
	first := &fakeTool{name: "inspect_dataset", result: "ten rows"}
	second := &fakeTool{name: "analyze_data", result: "count = 3"}
	service := newDispatchService(first, second)

	calls := []models.ToolCall{
		{ID: "c1", Name: "inspect_dataset", Arguments: map[string]interface{}{"file_path": "a.geojson"}},
		{ID: "c2", Name: "analyze_data", Arguments: map[string]interface{}{"expression": "count"}},
		{ID: "c3", Name: "inspect_dataset", Arguments: map[string]interface{}{"file_path": "b.geojson"}},
	}

	replies := service.dispatch(context.Background(), calls)

	if len(replies) != len(calls) {
		t.Fatalf("dispatch produced %d replies for %d requests", len(replies), len(calls))
	}
	for i, reply := range replies {
		if reply.Role != "tool" {
			t.Errorf("reply %d role = %q, expected tool", i, reply.Role)
		}
		if len(reply.ToolResults) != 1 {
			t.Fatalf("reply %d carries %d results", i, len(reply.ToolResults))
		}
		if reply.ToolResults[0].ToolCallID != calls[i].ID {
			t.Errorf("reply %d correlation = %q, expected %q", i, reply.ToolResults[0].ToolCallID, calls[i].ID)
		}
	}

	if replies[0].ToolResults[0].Content != "ten rows" {
		t.Errorf("reply 0 content = %q", replies[0].ToolResults[0].Content)
	}
	if replies[1].ToolResults[0].Content != "count = 3" {
		t.Errorf("reply 1 content = %q", replies[1].ToolResults[0].Content)
	}
}

func TestDispatchUnknownToolStillReplies(t *testing.T) {
	service := newDispatchService()

	calls := []models.ToolCall{
		{ID: "c1", Name: "delete_everything", Arguments: map[string]interface{}{}},
	}

	replies := service.dispatch(context.Background(), calls)

	if len(replies) != 1 {
		t.Fatalf("dispatch produced %d replies for 1 request", len(replies))
	}
	result := replies[0].ToolResults[0]
	if result.ToolCallID != "c1" {
		t.Errorf("correlation = %q, expected c1", result.ToolCallID)
	}
	if result.Content != "Error: tool delete_everything not found" {
		t.Errorf("content = %q", result.Content)
	}
}

func TestDispatchToolFailureBecomesErrorReply(t *testing.T) {
	failing := &fakeTool{name: "web_search", err: fmt.Errorf("network unreachable")}
	working := &fakeTool{name: "inspect_dataset", result: "ok"}
	service := newDispatchService(failing, working)

	calls := []models.ToolCall{
		{ID: "c1", Name: "web_search", Arguments: map[string]interface{}{"query": "tile prices"}},
		{ID: "c2", Name: "inspect_dataset", Arguments: map[string]interface{}{"file_path": "a.geojson"}},
	}

	replies := service.dispatch(context.Background(), calls)

	if len(replies) != 2 {
		t.Fatalf("dispatch produced %d replies for 2 requests", len(replies))
	}
	if replies[0].ToolResults[0].Content != "Error: network unreachable" {
		t.Errorf("failed tool reply = %q", replies[0].ToolResults[0].Content)
	}
	if replies[1].ToolResults[0].Content != "ok" {
		t.Errorf("second tool reply = %q, failure must stay local", replies[1].ToolResults[0].Content)
	}
}
