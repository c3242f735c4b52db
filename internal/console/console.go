// Package console prints team transcripts, agent event streams and
// workflow interrupts the way the scenarios show them.
package console

import (
	"errors"
	"fmt"
	"io"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/schema"

	"context_bench/internal/agents"
	"context_bench/internal/team"
	"context_bench/internal/workflow"
)

// Team prints every message of a team stream in its own block and returns
// the collected result. The closing stop message is reported as the stop reason.
func Team(w io.Writer, sr *schema.StreamReader[*team.Message]) (*team.TaskResult, error) {
	defer sr.Close()
	res := &team.TaskResult{}
	for {
		msg, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			return res, nil
		}
		if err != nil {
			return res, err
		}
		if msg.Type == team.TypeStop {
			res.StopReason = msg.Content
			fmt.Fprintf(w, "---------- stop ----------\n%s\n", msg.Content)
			continue
		}
		res.Messages = append(res.Messages, *msg)
		fmt.Fprintf(w, "---------- %s ----------\n", header(msg))
		fmt.Fprintln(w, msg.Content)
	}
}

func header(msg *team.Message) string {
	switch msg.Type {
	case team.TypeToolCall:
		return msg.Source + " (tool call)"
	case team.TypeToolResult:
		return msg.Source + " (tool result)"
	default:
		return msg.Source
	}
}

// AgentEvents prints token deltas inline and tool activity on separate lines.
func AgentEvents(w io.Writer, sr *schema.StreamReader[agents.Event]) (*agents.RunResult, error) {
	defer sr.Close()
	var res *agents.RunResult
	for {
		ev, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		switch ev.Type {
		case agents.EventRawDelta:
			fmt.Fprint(w, ev.Delta)
		case agents.EventToolCall:
			fmt.Fprint(w, "\n[tool_call] model decided to call a tool\n")
		case agents.EventToolOutput:
			fmt.Fprintf(w, "\n[tool_output] %s\n", ev.Output)
		case agents.EventHandoff:
			fmt.Fprintf(w, "\n[handoff] %s\n", ev.Agent)
		case agents.EventDone:
			res = ev.Result
		}
	}
	fmt.Fprintln(w, "\n--- done ---")
	return res, nil
}

// Deltas prints a model stream as it arrives and returns the full text.
func Deltas(w io.Writer, sr *schema.StreamReader[*schema.Message]) (string, error) {
	defer sr.Close()
	var text string
	for {
		chunk, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			fmt.Fprintln(w)
			return text, nil
		}
		if err != nil {
			return text, err
		}
		text += chunk.Content
		fmt.Fprint(w, chunk.Content)
	}
}

// Interrupt prints what a paused workflow is waiting for.
func Interrupt(w io.Writer, it *workflow.Interrupt) error {
	payload, err := sonic.ConfigStd.MarshalIndent(it.Payload, "", "  ")
	if err != nil {
		return fmt.Errorf("marshal interrupt payload: %w", err)
	}
	fmt.Fprintf(w, "== Interrupt at %s (thread %s) ==\n%s\n", it.Node, it.ThreadID, payload)
	return nil
}

// Event prints one workflow progress event.
func Event(w io.Writer, ev workflow.Event) {
	data, _ := sonic.ConfigStd.MarshalToString(ev.Data)
	fmt.Fprintf(w, "[%s] %s\n", ev.Node, data)
}

// JSON pretty-prints v.
func JSON(w io.Writer, v any) error {
	out, err := sonic.ConfigStd.MarshalIndent(v, "", "  ")
	if err != nil {
		return err
	}
	_, err = fmt.Fprintln(w, string(out))
	return err
}
