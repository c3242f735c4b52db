package console

import (
	"bytes"
	"errors"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"context_bench/internal/agents"
	"context_bench/internal/team"
	"context_bench/internal/workflow"
)

func TestTeam(t *testing.T) {
	sr := schema.StreamReaderFromArray([]*team.Message{
		{Source: "user", Content: "task", Type: team.TypeText},
		{Source: "bot", Content: "get_fx({})", Type: team.TypeToolCall},
		{Source: "bot", Content: "done", Type: team.TypeText},
		{Source: "round_robin_group_chat", Content: "Text 'done' mentioned", Type: team.TypeStop},
	})
	var buf bytes.Buffer
	res, err := Team(&buf, sr)
	require.NoError(t, err)

	assert.Len(t, res.Messages, 3)
	assert.Equal(t, "Text 'done' mentioned", res.StopReason)
	out := buf.String()
	assert.Contains(t, out, "---------- user ----------\ntask\n")
	assert.Contains(t, out, "---------- bot (tool call) ----------\nget_fx({})\n")
	assert.Contains(t, out, "---------- stop ----------\nText 'done' mentioned\n")
}

func TestAgentEvents(t *testing.T) {
	final := &agents.RunResult{FinalOutput: "hi there"}
	sr := schema.StreamReaderFromArray([]agents.Event{
		{Type: agents.EventToolCall, Tool: "calc"},
		{Type: agents.EventToolOutput, Output: "5754"},
		{Type: agents.EventRawDelta, Delta: "hi "},
		{Type: agents.EventRawDelta, Delta: "there"},
		{Type: agents.EventDone, Result: final},
	})
	var buf bytes.Buffer
	res, err := AgentEvents(&buf, sr)
	require.NoError(t, err)
	assert.Same(t, final, res)
	assert.Equal(t, "\n[tool_call] model decided to call a tool\n\n[tool_output] 5754\nhi there\n--- done ---\n", buf.String())
}

func TestAgentEventsError(t *testing.T) {
	sr, sw := schema.Pipe[agents.Event](1)
	go func() {
		sw.Send(agents.Event{}, errors.New("boom"))
		sw.Close()
	}()
	_, err := AgentEvents(&bytes.Buffer{}, sr)
	assert.EqualError(t, err, "boom")
}

func TestDeltas(t *testing.T) {
	sr := schema.StreamReaderFromArray([]*schema.Message{
		schema.AssistantMessage("a", nil), schema.AssistantMessage("b", nil),
	})
	var buf bytes.Buffer
	text, err := Deltas(&buf, sr)
	require.NoError(t, err)
	assert.Equal(t, "ab", text)
	assert.Equal(t, "ab\n", buf.String())
}

func TestInterrupt(t *testing.T) {
	var buf bytes.Buffer
	err := Interrupt(&buf, &workflow.Interrupt{ThreadID: "t1", Node: "approval", Payload: map[string]any{"action": "review_draft"}})
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "== Interrupt at approval (thread t1) ==")
	assert.Contains(t, buf.String(), `"action": "review_draft"`)
}
