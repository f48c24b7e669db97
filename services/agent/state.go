package agent

import (
	"github.com/antoniamayaobrador/lisbon-agent/models"
)

// runState is the working state of one orchestration run. It is owned by
// exactly one run and never shared. The message history is append-only:
// stages add messages, never mutate or remove earlier ones.
type runState struct {
	messages    []models.AgentMessage
	datasets    []models.DatasetDescriptor
	seenFiles   map[string]bool
	finalAnswer string
}

func newRunState(question string) *runState {
	return &runState{
		messages: []models.AgentMessage{
			{Role: "user", Content: question},
		},
		seenFiles: make(map[string]bool),
	}
}

func (st *runState) appendMessage(msg models.AgentMessage) {
	st.messages = append(st.messages, msg)
}

func (st *runState) appendMessages(msgs []models.AgentMessage) {
	st.messages = append(st.messages, msgs...)
}

// addDatasets merges descriptors into the state set, keeping the first
// occurrence of each filename and its position.
func (st *runState) addDatasets(datasets []models.DatasetDescriptor) {
	for _, d := range datasets {
		if st.seenFiles[d.Filename] {
			continue
		}
		st.seenFiles[d.Filename] = true
		st.datasets = append(st.datasets, d)
	}
}
