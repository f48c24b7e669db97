package models

// AgentMessage is one entry of a run's conversation history. Messages are
// immutable once appended: stages only ever add new messages.
type AgentMessage struct {
	Role        string       `json:"role"`
	Content     string       `json:"content"`
	ToolCalls   []ToolCall   `json:"tool_calls,omitempty"`
	ToolResults []ToolResult `json:"tool_results,omitempty"`
}

type ToolCall struct {
	ID        string                 `json:"id"`
	Name      string                 `json:"name"`
	Arguments map[string]interface{} `json:"arguments"`
}

type ToolResult struct {
	ToolCallID string `json:"tool_call_id"`
	Content    string `json:"content"`
}

type QueryRequest struct {
	Question string `json:"question"`
}

type QueryResponse struct {
	Answer string `json:"answer"`
	RunID  string `json:"run_id"`
}

type RatingRequest struct {
	RunID   string `json:"run_id"`
	Rating  int    `json:"rating"`
	Comment string `json:"comment,omitempty"`
}
