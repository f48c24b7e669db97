package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/antoniamayaobrador/lisbon-agent/models"
)

// dispatch executes every requested tool call and returns exactly one
// tool-role reply per request, in request order, correlated by the request's
// ID. Tool failures and unknown tools become error-text replies; they never
// abort the batch or the run.
func (s *Service) dispatch(ctx context.Context, calls []models.ToolCall) []models.AgentMessage {
	replies := make([]models.AgentMessage, 0, len(calls))

	for _, call := range calls {
		log.Printf("[INFO] Executing tool: %s with arguments: %v", call.Name, call.Arguments)

		content := s.invokeTool(ctx, call)

		replies = append(replies, models.AgentMessage{
			Role: "tool",
			ToolResults: []models.ToolResult{
				{ToolCallID: call.ID, Content: content},
			},
		})

		s.sink.Record("tool_execution",
			map[string]interface{}{"tool": call.Name, "args": call.Arguments},
			map[string]interface{}{"result": content},
		)
	}

	return replies
}

func (s *Service) invokeTool(ctx context.Context, call models.ToolCall) string {
	tool, ok := s.toolIndex[call.Name]
	if !ok {
		log.Printf("[ERROR] Unknown tool requested: %s", call.Name)
		return fmt.Sprintf("Error: tool %s not found", call.Name)
	}

	input, err := json.Marshal(call.Arguments)
	if err != nil {
		return fmt.Sprintf("Error: invalid tool arguments: %v", err)
	}

	result, err := tool.Call(ctx, string(input))
	if err != nil {
		log.Printf("[ERROR] Tool execution failed: %v", err)
		return fmt.Sprintf("Error: %v", err)
	}

	log.Printf("[INFO] Tool execution result: %.200s", result)
	return result
}
