package agent

import (
	"context"
	"fmt"
	"log"

	"github.com/antoniamayaobrador/lisbon-agent/observability"
	"github.com/antoniamayaobrador/lisbon-agent/services/catalog"
)

// Service orchestrates one run per question:
//
//	Retrieve -> Reason -> {Dispatch -> Reason}* -> Done
//
// Retrieval happens exactly once; the dataset set is frozen afterwards. The
// Reason/Dispatch cycle is bounded by maxSteps, beyond which the run ends in
// a MaxStepsExceededError instead of looping on a client that keeps
// requesting tools.
type Service struct {
	retriever *Retriever
	client    ReasoningClient
	tools     []AgentTool
	toolIndex map[string]AgentTool
	sink      observability.Sink
	maxSteps  int
	onDelta   func(text string)
}

const defaultMaxSteps = 10

func NewService(client ReasoningClient, accessor catalog.Accessor, tools []AgentTool, sink observability.Sink, maxSteps int) *Service {
	if maxSteps <= 0 {
		maxSteps = defaultMaxSteps
	}
	if sink == nil {
		sink = observability.NopSink{}
	}

	toolIndex := make(map[string]AgentTool, len(tools))
	for _, tool := range tools {
		toolIndex[tool.Name()] = tool
	}

	return &Service{
		retriever: NewRetriever(accessor, sink),
		client:    client,
		tools:     tools,
		toolIndex: toolIndex,
		sink:      sink,
		maxSteps:  maxSteps,
	}
}

// WithDeltaConsumer makes the service forward partial reply text to fn when
// the reasoning client supports streaming.
func (s *Service) WithDeltaConsumer(fn func(text string)) *Service {
	s.onDelta = fn
	return s
}

// Run answers one question. The returned error is nil only when the run
// reached a final answer; a *MaxStepsExceededError carries the partial
// answer of a run that hit the cycle cap.
func (s *Service) Run(ctx context.Context, question string) (string, error) {
	log.Printf("[INFO] Starting agent run for question: %.80s", question)

	state := newRunState(question)

	datasets, err := s.retriever.Retrieve(ctx, question)
	if err != nil {
		return "", fmt.Errorf("%w: %v", ErrRetrieval, err)
	}
	state.addDatasets(datasets)

	partialAnswer := ""
	for step := 0; ; step++ {
		reply, err := s.reason(ctx, state)
		if err != nil {
			return "", err
		}
		state.appendMessage(*reply)

		if len(reply.ToolCalls) == 0 {
			state.finalAnswer = reply.Content
			log.Printf("[INFO] Agent run completed in %d tool cycles", step)
			return state.finalAnswer, nil
		}
		if reply.Content != "" {
			partialAnswer = reply.Content
		}

		if step >= s.maxSteps {
			log.Printf("[ERROR] Agent run exceeded %d tool cycles", s.maxSteps)
			return partialAnswer, &MaxStepsExceededError{
				MaxSteps:      s.maxSteps,
				PartialAnswer: partialAnswer,
			}
		}

		replies := s.dispatch(ctx, reply.ToolCalls)
		state.appendMessages(replies)
	}
}
