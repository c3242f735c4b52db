package agents

import (
	"context"
	"fmt"

	"github.com/bytedance/sonic"
	"github.com/cloudwego/eino/compose"
	"github.com/cloudwego/eino/schema"
)

const nodeRoute = "route"

type routeState struct {
	Input []*schema.Message
}

func handoffNode(target *Agent) string { return "handoff_" + snake(target.Name) }

// handoffGraph lets a decide between answering itself and calling one of its
// transfer tools. A transfer runs the target agent on the same conversation.
func (r *Runner) handoffGraph(ctx context.Context, a *Agent, rn *run) (compose.Runnable[[]*schema.Message, *schema.Message], error) {
	m, err := r.modelFor(a)
	if err != nil {
		return nil, err
	}
	infos := make([]*schema.ToolInfo, 0, len(a.Handoffs))
	byTool := make(map[string]*Agent, len(a.Handoffs))
	for _, h := range a.Handoffs {
		infos = append(infos, h.transferTool())
		byTool[h.TransferToolName()] = h
	}
	router, err := m.WithTools(infos)
	if err != nil {
		return nil, fmt.Errorf("bind handoffs of %s: %w", a.Name, err)
	}

	g := compose.NewGraph[[]*schema.Message, *schema.Message](compose.WithGenLocalState(func(ctx context.Context) *routeState {
		return &routeState{}
	}))

	err = g.AddLambdaNode(nodeRoute, compose.InvokableLambda(func(ctx context.Context, msgs []*schema.Message) (*schema.Message, error) {
		if err := compose.ProcessState[*routeState](ctx, func(_ context.Context, st *routeState) error {
			st.Input = msgs
			return nil
		}); err != nil {
			return nil, err
		}
		out, err := router.Generate(ctx, prepend(a.instructions(ctx), msgs))
		if err != nil {
			return nil, fmt.Errorf("agent %s: %w", a.Name, err)
		}
		if _, ok := transferTarget(out, byTool); !ok {
			rn.add(Item{Type: ItemMessageOutput, Agent: a.Name, Message: out}, nil)
			rn.last = a
		}
		return out, nil
	}))
	if err != nil {
		return nil, err
	}

	targets := map[string]bool{compose.END: true}
	for _, h := range a.Handoffs {
		targets[handoffNode(h)] = true
		err := g.AddLambdaNode(handoffNode(h), compose.InvokableLambda(func(ctx context.Context, call *schema.Message) (*schema.Message, error) {
			var input []*schema.Message
			if err := compose.ProcessState[*routeState](ctx, func(_ context.Context, st *routeState) error {
				input = st.Input
				return nil
			}); err != nil {
				return nil, err
			}
			tc, _ := transferTarget(call, byTool)
			rn.add(Item{Type: ItemHandoffCall, Agent: a.Name, Message: call}, nil)
			payload, _ := sonic.MarshalString(map[string]string{"assistant": h.Name})
			msg := schema.ToolMessage(payload, tc.ID)
			msg.ToolName = tc.Function.Name
			rn.add(Item{Type: ItemHandoffOutput, Agent: a.Name, Message: msg},
				&Event{Type: EventHandoff, Agent: h.Name, Tool: tc.Function.Name})
			return r.invoke(ctx, h, input, rn)
		}))
		if err != nil {
			return nil, fmt.Errorf("handoff %s of %s: %w", h.Name, a.Name, err)
		}
		if err := g.AddEdge(handoffNode(h), compose.END); err != nil {
			return nil, err
		}
	}

	if err := g.AddEdge(compose.START, nodeRoute); err != nil {
		return nil, err
	}
	err = g.AddBranch(nodeRoute, compose.NewGraphBranch(func(ctx context.Context, out *schema.Message) (string, error) {
		tc, ok := transferTarget(out, byTool)
		if !ok {
			return compose.END, nil
		}
		return handoffNode(byTool[tc.Function.Name]), nil
	}, targets))
	if err != nil {
		return nil, err
	}

	return g.Compile(ctx, compose.WithGraphName("handoffs_"+snake(a.Name)))
}

func transferTarget(msg *schema.Message, byTool map[string]*Agent) (schema.ToolCall, bool) {
	for _, tc := range msg.ToolCalls {
		if _, ok := byTool[tc.Function.Name]; ok {
			return tc, true
		}
	}
	return schema.ToolCall{}, false
}
