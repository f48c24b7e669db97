package agent

import (
	"context"
	"fmt"
	"regexp"
	"strings"

	"github.com/antoniamayaobrador/lisbon-agent/models"

	"github.com/samber/lo"
)

// ReasoningClient produces the next conversational step given the history,
// the system prompt carrying the dataset context, and the tool catalog. The
// reply may request tool calls.
type ReasoningClient interface {
	Invoke(ctx context.Context, systemPrompt string, messages []models.AgentMessage, tools []AgentTool) (*models.AgentMessage, error)
}

// StreamEvent is one increment of a streaming reply: a text delta while the
// reply is being produced, then exactly one event carrying Final. The
// producer closes the channel after the final event; cancelling the context
// cancels the in-flight call and closes the channel.
type StreamEvent struct {
	TextDelta string
	Final     *models.AgentMessage
	Err       error
}

// StreamingReasoningClient is the optional incremental variant of
// ReasoningClient.
type StreamingReasoningClient interface {
	ReasoningClient
	InvokeStream(ctx context.Context, systemPrompt string, messages []models.AgentMessage, tools []AgentTool) (<-chan StreamEvent, error)
}

// reason invokes the reasoning client over the run state and post-processes
// the reply. When the client supports streaming and a delta consumer is
// configured, partial text flows to the consumer and is accumulated into the
// one final message evaluated for transitions.
func (s *Service) reason(ctx context.Context, state *runState) (*models.AgentMessage, error) {
	systemPrompt := fmt.Sprintf(systemPromptTemplate, buildDatasetContext(state.datasets))

	reply, err := s.invokeReasoning(ctx, systemPrompt, state.messages)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrReasoning, err)
	}

	reply.Role = "assistant"
	reply.Content = appendPlotReference(reply.Content)

	s.sink.Record("agent",
		map[string]interface{}{
			"messages": lo.Map(state.messages, func(m models.AgentMessage, _ int) string {
				return m.Content
			}),
		},
		map[string]interface{}{"response": reply.Content},
	)

	return reply, nil
}

func (s *Service) invokeReasoning(ctx context.Context, systemPrompt string, messages []models.AgentMessage) (*models.AgentMessage, error) {
	streamer, ok := s.client.(StreamingReasoningClient)
	if !ok || s.onDelta == nil {
		return s.client.Invoke(ctx, systemPrompt, messages, s.tools)
	}

	events, err := streamer.InvokeStream(ctx, systemPrompt, messages, s.tools)
	if err != nil {
		return nil, err
	}

	var final *models.AgentMessage
	for event := range events {
		if event.Err != nil {
			return nil, event.Err
		}
		if event.TextDelta != "" {
			s.onDelta(event.TextDelta)
		}
		if event.Final != nil {
			final = event.Final
		}
	}
	if final == nil {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		return nil, fmt.Errorf("stream closed without a final message")
	}
	return final, nil
}

// buildDatasetContext renders one line per descriptor for the system prompt.
func buildDatasetContext(datasets []models.DatasetDescriptor) string {
	if len(datasets) == 0 {
		return "(no datasets retrieved)"
	}
	lines := lo.Map(datasets, func(d models.DatasetDescriptor, _ int) string {
		return fmt.Sprintf("- %s (Path: %s): %s", d.Filename, d.Source, d.Description)
	})
	return strings.Join(lines, "\n")
}

var plotPathPattern = regexp.MustCompile(`(data/plots/[^\s\n"]+\.png)`)

// appendPlotReference adds one inline markdown image for the first plot
// artifact path mentioned in the text, so clients render it. A text that
// already carries an inline image is left untouched.
func appendPlotReference(content string) string {
	if !strings.Contains(content, "data/plots/") || !strings.Contains(content, ".png") {
		return content
	}
	if strings.Contains(content, "![") {
		return content
	}
	match := plotPathPattern.FindString(content)
	if match == "" {
		return content
	}
	return content + fmt.Sprintf("\n\n![Generated Plot](%s)", match)
}
