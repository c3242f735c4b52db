package agents

import (
	"github.com/cloudwego/eino/schema"
)

type ItemType string

const (
	ItemMessageOutput ItemType = "message_output_item"
	ItemToolCall      ItemType = "tool_call_item"
	ItemToolOutput    ItemType = "tool_call_output_item"
	ItemHandoffCall   ItemType = "handoff_call_item"
	ItemHandoffOutput ItemType = "handoff_output_item"
)

// Item is one thing produced during a run.
type Item struct {
	Type    ItemType
	Agent   string
	Message *schema.Message
}

type RunResult struct {
	// Input is the prompt the run started from: session history plus the user turn.
	Input       []*schema.Message
	NewItems    []Item
	FinalOutput string
	LastAgent   *Agent
}

// ToInputList is the conversation to feed the next turn. Tool traffic is
// left out; only message outputs are appended to the input.
func (r *RunResult) ToInputList() []*schema.Message {
	out := append([]*schema.Message(nil), r.Input...)
	for _, it := range r.NewItems {
		if it.Type == ItemMessageOutput {
			out = append(out, it.Message)
		}
	}
	return out
}

// ItemTypes lists the type of every new item, in order.
func (r *RunResult) ItemTypes() []ItemType {
	types := make([]ItemType, len(r.NewItems))
	for i, it := range r.NewItems {
		types[i] = it.Type
	}
	return types
}

type EventType string

const (
	EventRawDelta   EventType = "raw_delta"
	EventToolCall   EventType = "tool_call"
	EventToolOutput EventType = "tool_output"
	EventHandoff    EventType = "handoff"
	EventDone       EventType = "done"
)

// Event is streamed by RunStreamed.
type Event struct {
	Type   EventType
	Agent  string
	Delta  string
	Tool   string
	Args   string
	Output string
	Result *RunResult
}
