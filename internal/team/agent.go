package team

import (
	"context"
	"fmt"
	"sync"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/components/tool"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/flow/agent"
	"github.com/cloudwego/eino/flow/agent/react"
	"github.com/cloudwego/eino/schema"

	"context_bench/internal/llm"
)

// Agent is a team participant that produces one message per turn.
type Agent interface {
	Name() string
	Description() string
	Reply(ctx context.Context, history []Message) (Message, error)
}

// AssistantAgent answers with a chat model, running a ReAct loop when it has tools.
type AssistantAgent struct {
	AgentName     string
	Desc          string
	SystemMessage string
	Model         model.ToolCallingChatModel
	Tools         []tool.BaseTool
	// ReflectOnToolUse lets the model phrase the final answer after tool calls.
	// Without it the last tool output is the reply.
	ReflectOnToolUse bool
	MaxSteps         int

	once  sync.Once
	react *react.Agent
	err   error
}

func (a *AssistantAgent) Name() string        { return a.AgentName }
func (a *AssistantAgent) Description() string { return a.Desc }

func (a *AssistantAgent) buildReact(ctx context.Context) (*react.Agent, error) {
	a.once.Do(func() {
		if len(a.Tools) == 0 {
			return
		}
		cfg := &react.AgentConfig{
			ToolCallingModel: a.Model,
			ToolsConfig:      compose.ToolsNodeConfig{Tools: a.Tools},
			MaxStep:          a.MaxSteps,
		}
		if cfg.MaxStep == 0 {
			cfg.MaxStep = 12
		}
		if !a.ReflectOnToolUse {
			cfg.ToolReturnDirectly = make(map[string]struct{}, len(a.Tools))
			names, err := llm.ToolNames(ctx, a.Tools)
			if err != nil {
				a.err = err
				return
			}
			for _, n := range names {
				cfg.ToolReturnDirectly[n] = struct{}{}
			}
		}
		a.react, a.err = react.NewAgent(ctx, cfg)
	})
	return a.react, a.err
}

// prompt maps the transcript onto chat roles: own messages become
// assistant turns, everyone else's become named user turns.
func (a *AssistantAgent) prompt(history []Message) []*schema.Message {
	msgs := make([]*schema.Message, 0, len(history)+1)
	if a.SystemMessage != "" {
		msgs = append(msgs, schema.SystemMessage(a.SystemMessage))
	}
	for _, m := range history {
		if m.Type != TypeText {
			continue
		}
		if m.Source == a.AgentName {
			msgs = append(msgs, schema.AssistantMessage(m.Content, nil))
			continue
		}
		um := schema.UserMessage(m.Content)
		um.Name = m.Source
		msgs = append(msgs, um)
	}
	return msgs
}

func (a *AssistantAgent) Reply(ctx context.Context, history []Message) (Message, error) {
	if a.Model == nil {
		return Message{}, fmt.Errorf("agent %s has no model", a.AgentName)
	}
	msgs := a.prompt(history)

	ra, err := a.buildReact(ctx)
	if err != nil {
		return Message{}, fmt.Errorf("agent %s: %w", a.AgentName, err)
	}

	var out *schema.Message
	if ra == nil {
		out, err = a.Model.Generate(ctx, msgs)
	} else {
		observer := toolObserver(a.AgentName)
		out, err = ra.Generate(ctx, msgs, agent.WithComposeOptions(compose.WithCallbacks(observer.Handler())))
	}
	if err != nil {
		return Message{}, fmt.Errorf("agent %s: %w", a.AgentName, err)
	}
	return textMessage(a.AgentName, out.Content), nil
}

// RunStream runs the agent alone for one turn and streams the transcript.
func (a *AssistantAgent) RunStream(ctx context.Context, task string) (*schema.StreamReader[*Message], error) {
	t, err := RoundRobin(ctx, []Agent{a}, Options{MaxTurns: 1})
	if err != nil {
		return nil, err
	}
	return t.RunStream(ctx, task)
}

func toolObserver(source string) llm.ToolObserver {
	return llm.ToolObserver{
		OnCall: func(ctx context.Context, name, args string) {
			emit(ctx, Message{Source: source, Type: TypeToolCall, Content: fmt.Sprintf("%s(%s)", name, args)})
		},
		OnResult: func(ctx context.Context, name, result string) {
			emit(ctx, Message{Source: source, Type: TypeToolResult, Content: result})
		},
	}
}
