// Package llmtest provides a deterministic chat model for graph and agent tests.
package llmtest

import (
	"context"
	"errors"
	"strings"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/schema"
)

var ErrNoReply = errors.New("scripted model has no reply left")

// Responder computes a reply from the prompt. Returning nil falls through
// to the queued replies.
type Responder func(input []*schema.Message) *schema.Message

type script struct {
	mu        sync.Mutex
	replies   []*schema.Message
	responder Responder
	calls     [][]*schema.Message
}

// ScriptedModel answers from a queue of canned replies, or from a Responder.
// Copies made by WithTools share the queue and call log.
type ScriptedModel struct {
	s     *script
	tools []*schema.ToolInfo
}

func New(replies ...*schema.Message) *ScriptedModel {
	return &ScriptedModel{s: &script{replies: replies}}
}

// NewResponder builds a model that answers every call with fn.
func NewResponder(fn Responder) *ScriptedModel {
	return &ScriptedModel{s: &script{responder: fn}}
}

// Push queues more replies.
func (m *ScriptedModel) Push(replies ...*schema.Message) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	m.s.replies = append(m.s.replies, replies...)
}

func (m *ScriptedModel) Generate(_ context.Context, input []*schema.Message, _ ...model.Option) (*schema.Message, error) {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()

	m.s.calls = append(m.s.calls, append([]*schema.Message(nil), input...))
	if m.s.responder != nil {
		if out := m.s.responder(input); out != nil {
			return out, nil
		}
	}
	if len(m.s.replies) == 0 {
		return nil, ErrNoReply
	}
	out := m.s.replies[0]
	m.s.replies = m.s.replies[1:]
	return out, nil
}

// Stream splits a text reply into word chunks. Tool-call replies arrive as one chunk.
func (m *ScriptedModel) Stream(ctx context.Context, input []*schema.Message, opts ...model.Option) (*schema.StreamReader[*schema.Message], error) {
	out, err := m.Generate(ctx, input, opts...)
	if err != nil {
		return nil, err
	}
	if len(out.ToolCalls) > 0 || out.Content == "" {
		return schema.StreamReaderFromArray([]*schema.Message{out}), nil
	}

	words := strings.SplitAfter(out.Content, " ")
	chunks := make([]*schema.Message, 0, len(words))
	for _, w := range words {
		chunks = append(chunks, &schema.Message{Role: out.Role, Content: w})
	}
	return schema.StreamReaderFromArray(chunks), nil
}

func (m *ScriptedModel) WithTools(tools []*schema.ToolInfo) (model.ToolCallingChatModel, error) {
	return &ScriptedModel{s: m.s, tools: tools}, nil
}

// Tools reports the tools bound by the last WithTools call on this copy.
func (m *ScriptedModel) Tools() []*schema.ToolInfo { return m.tools }

// Calls returns every prompt the model has seen, oldest first.
func (m *ScriptedModel) Calls() [][]*schema.Message {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return append([][]*schema.Message(nil), m.s.calls...)
}

func (m *ScriptedModel) CallCount() int {
	m.s.mu.Lock()
	defer m.s.mu.Unlock()
	return len(m.s.calls)
}

// Text is an assistant reply with content only.
func Text(content string) *schema.Message {
	return schema.AssistantMessage(content, nil)
}

// ToolCall is an assistant reply that asks for one tool call.
func ToolCall(id, name, arguments string) *schema.Message {
	return schema.AssistantMessage("", []schema.ToolCall{{
		ID:       id,
		Type:     "function",
		Function: schema.FunctionCall{Name: name, Arguments: arguments},
	}})
}

// LastUser returns the content of the newest user message in input.
func LastUser(input []*schema.Message) string {
	for i := len(input) - 1; i >= 0; i-- {
		if input[i].Role == schema.User {
			return input[i].Content
		}
	}
	return ""
}

// SystemPrompt returns the first system message's content.
func SystemPrompt(input []*schema.Message) string {
	for _, msg := range input {
		if msg.Role == schema.System {
			return msg.Content
		}
	}
	return ""
}

var _ model.ToolCallingChatModel = (*ScriptedModel)(nil)
