package agents

import (
	"context"
	"errors"
	"fmt"
	"io"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"context_bench/internal/guardrail"
	"context_bench/internal/llm"
	"context_bench/internal/session"
)

// Runner executes agents with a default chat model.
type Runner struct {
	Model    model.ToolCallingChatModel
	MaxSteps int
}

func NewRunner(m model.ToolCallingChatModel) *Runner {
	return &Runner{Model: m, MaxSteps: 12}
}

type runOptions struct {
	session session.Session
	value   any
}

type RunOption func(*runOptions)

// WithSession reads history before the run and appends the turn after it.
func WithSession(s session.Session) RunOption {
	return func(o *runOptions) { o.session = s }
}

// WithContext makes v available to tools through ContextValue.
func WithContext[T any](v T) RunOption {
	return func(o *runOptions) { o.value = &RunContext[T]{Context: v} }
}

// run collects what one Run produces. Tool callbacks may fire concurrently.
type run struct {
	mu    sync.Mutex
	items []Item
	last  *Agent
	sink  *schema.StreamWriter[Event]
}

func (rn *run) add(it Item, ev *Event) {
	rn.mu.Lock()
	rn.items = append(rn.items, it)
	rn.mu.Unlock()
	if ev != nil {
		rn.send(*ev)
	}
}

func (rn *run) send(ev Event) {
	if rn.sink != nil {
		rn.sink.Send(ev, nil)
	}
}

func (rn *run) observer(a *Agent) llm.ToolObserver {
	return llm.ToolObserver{
		OnCall: func(_ context.Context, name, args string) {
			msg := schema.AssistantMessage("", []schema.ToolCall{{
				Type:     "function",
				Function: schema.FunctionCall{Name: name, Arguments: args},
			}})
			rn.add(Item{Type: ItemToolCall, Agent: a.Name, Message: msg},
				&Event{Type: EventToolCall, Agent: a.Name, Tool: name, Args: args})
		},
		OnResult: func(_ context.Context, name, result string) {
			msg := schema.ToolMessage(result, "")
			msg.ToolName = name
			rn.add(Item{Type: ItemToolOutput, Agent: a.Name, Message: msg},
				&Event{Type: EventToolOutput, Agent: a.Name, Tool: name, Output: result})
		},
	}
}

// Run answers input with a. Input guardrails run before any model call and
// fail with a *guardrail.TripwireError.
func (r *Runner) Run(ctx context.Context, a *Agent, input string, opts ...RunOption) (*RunResult, error) {
	return r.run(ctx, a, input, opts, &run{})
}

// RunStreamed runs a in the background and streams its events. The last
// event is EventDone carrying the result; a failed run ends the stream
// with the error instead.
func (r *Runner) RunStreamed(ctx context.Context, a *Agent, input string, opts ...RunOption) (*schema.StreamReader[Event], error) {
	sr, sw := schema.Pipe[Event](16)
	go func() {
		defer sw.Close()
		res, err := r.run(ctx, a, input, opts, &run{sink: sw})
		if err != nil {
			sw.Send(Event{}, err)
			return
		}
		sw.Send(Event{Type: EventDone, Agent: res.LastAgent.Name, Result: res}, nil)
	}()
	return sr, nil
}

func (r *Runner) run(ctx context.Context, a *Agent, input string, opts []RunOption, rn *run) (*RunResult, error) {
	var o runOptions
	for _, opt := range opts {
		opt(&o)
	}
	ctx = withRunContext(ctx, o.value)

	if err := guardrail.Run(ctx, input, a.InputGuardrails...); err != nil {
		return nil, err
	}

	var msgs []*schema.Message
	if o.session != nil {
		history, err := o.session.GetItems(ctx, 0)
		if err != nil {
			return nil, fmt.Errorf("load session %s: %w", o.session.ID(), err)
		}
		msgs = append(msgs, history...)
	}
	user := schema.UserMessage(input)
	msgs = append(msgs, user)

	out, err := r.invoke(ctx, a, msgs, rn)
	if err != nil {
		return nil, err
	}

	if o.session != nil {
		if err := o.session.AddItems(ctx, user, out); err != nil {
			return nil, fmt.Errorf("save session %s: %w", o.session.ID(), err)
		}
	}
	return &RunResult{Input: msgs, NewItems: rn.items, FinalOutput: out.Content, LastAgent: rn.last}, nil
}

func (r *Runner) invoke(ctx context.Context, a *Agent, msgs []*schema.Message, rn *run) (*schema.Message, error) {
	if len(a.Handoffs) == 0 {
		return r.respond(ctx, a, msgs, rn)
	}
	g, err := r.handoffGraph(ctx, a, rn)
	if err != nil {
		return nil, err
	}
	return g.Invoke(ctx, msgs)
}

func (r *Runner) modelFor(a *Agent) (model.ToolCallingChatModel, error) {
	if a.Model != nil {
		return a.Model, nil
	}
	if r.Model == nil {
		return nil, fmt.Errorf("agent %s has no model", a.Name)
	}
	return r.Model, nil
}

func prepend(system string, msgs []*schema.Message) []*schema.Message {
	if system == "" {
		return msgs
	}
	return append([]*schema.Message{schema.SystemMessage(system)}, msgs...)
}

// respond produces a's final message, running a ReAct loop when a has tools.
func (r *Runner) respond(ctx context.Context, a *Agent, msgs []*schema.Message, rn *run) (*schema.Message, error) {
	m, err := r.modelFor(a)
	if err != nil {
		return nil, err
	}
	prompt := prepend(a.instructions(ctx), msgs)

	var out *schema.Message
	if len(a.Tools) == 0 {
		if rn.sink != nil {
			out, err = r.forward(ctx, a, rn, func() (*schema.StreamReader[*schema.Message], error) {
				return m.Stream(ctx, prompt)
			})
		} else {
			out, err = m.Generate(ctx, prompt)
		}
	} else {
		var ra *react.Agent
		ra, err = react.NewAgent(ctx, &react.AgentConfig{
			ToolCallingModel: m,
			ToolsConfig:      compose.ToolsNodeConfig{Tools: a.Tools},
			MaxStep:          r.maxSteps(),
		})
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", a.Name, err)
		}
		opt := agent.WithComposeOptions(compose.WithCallbacks(rn.observer(a).Handler()))
		if rn.sink != nil {
			out, err = r.forward(ctx, a, rn, func() (*schema.StreamReader[*schema.Message], error) {
				return ra.Stream(ctx, prompt, opt)
			})
		} else {
			out, err = ra.Generate(ctx, prompt, opt)
		}
	}
	if err != nil {
		return nil, fmt.Errorf("agent %s: %w", a.Name, err)
	}

	rn.add(Item{Type: ItemMessageOutput, Agent: a.Name, Message: out}, nil)
	rn.last = a
	return out, nil
}

func (r *Runner) maxSteps() int {
	if r.MaxSteps <= 0 {
		return 12
	}
	return r.MaxSteps
}

// forward relays content deltas to the sink and returns the joined message.
func (r *Runner) forward(ctx context.Context, a *Agent, rn *run, open func() (*schema.StreamReader[*schema.Message], error)) (*schema.Message, error) {
	sr, err := open()
	if err != nil {
		return nil, err
	}
	defer sr.Close()

	var chunks []*schema.Message
	for {
		chunk, err := sr.Recv()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, err
		}
		chunks = append(chunks, chunk)
		if chunk.Content != "" {
			rn.send(Event{Type: EventRawDelta, Agent: a.Name, Delta: chunk.Content})
		}
	}
	if len(chunks) == 0 {
		return schema.AssistantMessage("", nil), nil
	}
	return schema.ConcatMessages(chunks)
}
