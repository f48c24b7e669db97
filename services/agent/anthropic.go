package agent

import (
	"context"
	"encoding/json"
	"fmt"
	"log"

	"github.com/antoniamayaobrador/lisbon-agent/models"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
)

// AnthropicClient is the production ReasoningClient, backed by the Anthropic
// Messages API. It also implements the streaming variant.
type AnthropicClient struct {
	client *anthropic.Client
}

func NewAnthropicClient(apiKey string) *AnthropicClient {
	client := anthropic.NewClient(option.WithAPIKey(apiKey))
	return &AnthropicClient{client: &client}
}

func (c *AnthropicClient) Invoke(ctx context.Context, systemPrompt string, messages []models.AgentMessage, tools []AgentTool) (*models.AgentMessage, error) {
	response, err := c.client.Messages.New(ctx, c.buildParams(systemPrompt, messages, tools))
	if err != nil {
		return nil, fmt.Errorf("failed to call Anthropic API: %v", err)
	}

	log.Printf("[INFO] Anthropic response: model=%s stop_reason=%s blocks=%d",
		response.Model, response.StopReason, len(response.Content))

	return messageFromResponse(response), nil
}

func (c *AnthropicClient) InvokeStream(ctx context.Context, systemPrompt string, messages []models.AgentMessage, tools []AgentTool) (<-chan StreamEvent, error) {
	stream := c.client.Messages.NewStreaming(ctx, c.buildParams(systemPrompt, messages, tools))

	events := make(chan StreamEvent)
	go func() {
		defer close(events)

		accumulated := anthropic.Message{}
		for stream.Next() {
			event := stream.Current()
			if err := accumulated.Accumulate(event); err != nil {
				events <- StreamEvent{Err: fmt.Errorf("failed to accumulate stream event: %v", err)}
				return
			}

			switch eventVariant := event.AsAny().(type) {
			case anthropic.ContentBlockDeltaEvent:
				switch deltaVariant := eventVariant.Delta.AsAny().(type) {
				case anthropic.TextDelta:
					select {
					case events <- StreamEvent{TextDelta: deltaVariant.Text}:
					case <-ctx.Done():
						return
					}
				}
			}
		}
		if err := stream.Err(); err != nil {
			events <- StreamEvent{Err: fmt.Errorf("Anthropic stream failed: %v", err)}
			return
		}

		select {
		case events <- StreamEvent{Final: messageFromResponse(&accumulated)}:
		case <-ctx.Done():
		}
	}()

	return events, nil
}

func (c *AnthropicClient) buildParams(systemPrompt string, messages []models.AgentMessage, tools []AgentTool) anthropic.MessageNewParams {
	return anthropic.MessageNewParams{
		Model:     anthropic.ModelClaude4Sonnet20250514,
		MaxTokens: 4096,
		System:    []anthropic.TextBlockParam{{Text: systemPrompt}},
		Messages:  convertToAnthropicMessages(messages),
		Tools:     buildAnthropicToolSpecs(tools),
	}
}

func messageFromResponse(response *anthropic.Message) *models.AgentMessage {
	msg := &models.AgentMessage{Role: "assistant"}

	for _, block := range response.Content {
		switch block := block.AsAny().(type) {
		case anthropic.TextBlock:
			msg.Content += block.Text
		case anthropic.ToolUseBlock:
			inputJSON, _ := json.Marshal(block.Input)
			var inputMap map[string]interface{}
			json.Unmarshal(inputJSON, &inputMap)

			msg.ToolCalls = append(msg.ToolCalls, models.ToolCall{
				ID:        block.ID,
				Name:      block.Name,
				Arguments: inputMap,
			})
		}
	}

	return msg
}

func convertToAnthropicMessages(messages []models.AgentMessage) []anthropic.MessageParam {
	var anthropicMessages []anthropic.MessageParam

	for _, msg := range messages {
		switch msg.Role {
		case "user":
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(anthropic.NewTextBlock(msg.Content)))
		case "assistant":
			contentBlocks := []anthropic.ContentBlockParamUnion{}

			if msg.Content != "" {
				contentBlocks = append(contentBlocks, anthropic.ContentBlockParamUnion{
					OfText: &anthropic.TextBlockParam{Text: msg.Content},
				})
			}

			for _, toolCall := range msg.ToolCalls {
				contentBlocks = append(contentBlocks, anthropic.ContentBlockParamUnion{
					OfToolUse: &anthropic.ToolUseBlockParam{
						ID:    toolCall.ID,
						Name:  toolCall.Name,
						Input: toolCall.Arguments,
					},
				})
			}

			anthropicMessages = append(anthropicMessages, anthropic.NewAssistantMessage(contentBlocks...))
		case "tool":
			// Tool results travel back as user-role tool_result blocks.
			toolResultBlocks := []anthropic.ContentBlockParamUnion{}
			for _, result := range msg.ToolResults {
				toolResultBlocks = append(toolResultBlocks, anthropic.ContentBlockParamUnion{
					OfToolResult: &anthropic.ToolResultBlockParam{
						ToolUseID: result.ToolCallID,
						Content: []anthropic.ToolResultBlockParamContentUnion{
							{OfText: &anthropic.TextBlockParam{Text: result.Content}},
						},
					},
				})
			}
			anthropicMessages = append(anthropicMessages, anthropic.NewUserMessage(toolResultBlocks...))
		}
	}

	return anthropicMessages
}

func buildAnthropicToolSpecs(tools []AgentTool) []anthropic.ToolUnionParam {
	var toolSpecs []anthropic.ToolUnionParam

	for _, tool := range tools {
		toolSpecs = append(toolSpecs, anthropic.ToolUnionParam{
			OfTool: &anthropic.ToolParam{
				Name:        tool.Name(),
				Description: anthropic.String(tool.Description()),
				InputSchema: tool.GetAnthropicToolSpec(),
			},
		})
	}

	return toolSpecs
}

var (
	_ ReasoningClient          = (*AnthropicClient)(nil)
	_ StreamingReasoningClient = (*AnthropicClient)(nil)
)
