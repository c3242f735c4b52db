// Package workflow holds the stateful eino graphs behind the writer, brief
// and review scenarios.
package workflow

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

// ErrUnknownThread is returned when resuming a thread that has no checkpoint.
var ErrUnknownThread = errors.New("unknown thread")

func requireCheckpoint(ctx context.Context, store compose.CheckPointStore, threadID string) error {
	if store == nil {
		return fmt.Errorf("%w: %s (no checkpoint store)", ErrUnknownThread, threadID)
	}
	_, ok, err := store.Get(ctx, threadID)
	if err != nil {
		return fmt.Errorf("load checkpoint %s: %w", threadID, err)
	}
	if !ok {
		return fmt.Errorf("%w: %s", ErrUnknownThread, threadID)
	}
	return nil
}

// Interrupt is a paused run waiting for a human decision.
type Interrupt struct {
	ThreadID string
	Node     string
	Payload  map[string]any
}

func (i *Interrupt) String() string {
	return fmt.Sprintf("interrupt at %s (thread %s): %v", i.Node, i.ThreadID, i.Payload)
}

// asInterrupt converts an eino interrupt error into an *Interrupt. Other
// errors come back unchanged with a nil interrupt.
func asInterrupt(threadID string, err error) (*Interrupt, error) {
	info, ok := compose.ExtractInterruptInfo(err)
	if !ok {
		return nil, err
	}
	it := &Interrupt{ThreadID: threadID}
	for node, extra := range info.RerunNodesExtra {
		it.Node = node
		if payload, ok := extra.(map[string]any); ok {
			it.Payload = payload
		}
	}
	if it.Node == "" && len(info.RerunNodes) > 0 {
		it.Node = info.RerunNodes[0]
	}
	return it, nil
}

func ask(ctx context.Context, m model.BaseChatModel, system, user string) (string, error) {
	if m == nil {
		return "", errors.New("no chat model configured")
	}
	out, err := m.Generate(ctx, []*schema.Message{
		schema.SystemMessage(system),
		schema.UserMessage(user),
	})
	if err != nil {
		return "", err
	}
	return out.Content, nil
}

func truncate(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

// Event is a progress notification streamed out of a running graph.
type Event struct {
	Node string         `json:"node"`
	Data map[string]any `json:"data"`
}

type eventKey struct{}

// WithEvents makes graphs started with ctx report progress to fn.
func WithEvents(ctx context.Context, fn func(Event)) context.Context {
	return context.WithValue(ctx, eventKey{}, fn)
}

func emit(ctx context.Context, node string, data map[string]any) {
	if fn, ok := ctx.Value(eventKey{}).(func(Event)); ok {
		fn(Event{Node: node, Data: data})
	}
}

func nonEmptyLines(s string) []string {
	var out []string
	for _, l := range strings.Split(s, "\n") {
		if strings.TrimSpace(l) != "" {
			out = append(out, l)
		}
	}
	return out
}
