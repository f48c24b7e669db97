package agent

import (
	"errors"
	"fmt"
)

// Run-fatal error classes. Tool failures are not errors at this level: they
// are absorbed into the message history as error-text replies.
var (
	// ErrRetrieval marks a failed catalog query. The run aborts instead of
	// proceeding with a silently empty dataset set.
	ErrRetrieval = errors.New("dataset retrieval failed")

	// ErrReasoning marks a failed reasoning client call.
	ErrReasoning = errors.New("reasoning client failed")
)

// MaxStepsExceededError terminates a run whose reasoning client keeps
// requesting tools past the configured cap. PartialAnswer carries whatever
// text the last reply contained.
type MaxStepsExceededError struct {
	MaxSteps      int
	PartialAnswer string
}

func (e *MaxStepsExceededError) Error() string {
	return fmt.Sprintf("agent exceeded maximum of %d tool cycles without a final answer", e.MaxSteps)
}
