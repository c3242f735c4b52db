// Package team runs multi-agent group chats on top of compiled eino graphs.
package team

import "strings"

const (
	TypeText       = "text"
	TypeToolCall   = "tool_call"
	TypeToolResult = "tool_result"
	TypeStop       = "stop"
)

// UserSource is the source name given to task messages.
const UserSource = "user"

// Message is one entry of a team transcript or stream.
type Message struct {
	Source  string `json:"source"`
	Content string `json:"content"`
	Type    string `json:"type"`
}

func textMessage(source, content string) Message {
	return Message{Source: source, Content: content, Type: TypeText}
}

// TaskResult holds the messages produced by one Run, task first.
type TaskResult struct {
	Messages   []Message `json:"messages"`
	StopReason string    `json:"stop_reason"`
}

// Last returns the final text message of the run.
func (r *TaskResult) Last() Message {
	for i := len(r.Messages) - 1; i >= 0; i-- {
		if r.Messages[i].Type == TypeText {
			return r.Messages[i]
		}
	}
	return Message{}
}

// State is the part of a team that survives between runs.
type State struct {
	Messages    []Message `json:"messages"`
	NextSpeaker int       `json:"next_speaker"`
	PrevSpeaker string    `json:"prev_speaker,omitempty"`
}

func formatHistory(msgs []Message) string {
	var sb strings.Builder
	for _, m := range msgs {
		if m.Type != TypeText {
			continue
		}
		sb.WriteString(m.Source)
		sb.WriteString(": ")
		sb.WriteString(m.Content)
		sb.WriteString("\n")
	}
	return strings.TrimRight(sb.String(), "\n")
}
