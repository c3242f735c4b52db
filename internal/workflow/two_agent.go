package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
)

// DocState is shared by the parent graph and both subgraphs.
type DocState struct {
	Topic   string `json:"topic"`
	Outline string `json:"outline"`
	Draft   string `json:"draft"`
	Final   string `json:"final"`
}

// TwoAgent routes a document between a writer subgraph and an editor subgraph
// until it has a final version.
type TwoAgent struct {
	model    model.BaseChatModel
	runnable compose.Runnable[*DocState, *DocState]
}

func NewTwoAgent(ctx context.Context, m model.BaseChatModel) (*TwoAgent, error) {
	t := &TwoAgent{model: m}

	writer := compose.NewGraph[*DocState, *DocState]()
	if err := writer.AddLambdaNode("plan_outline", compose.InvokableLambda(t.planOutline)); err != nil {
		return nil, err
	}
	if err := writer.AddLambdaNode("write_draft", compose.InvokableLambda(t.writeDraft)); err != nil {
		return nil, err
	}
	if err := writer.AddEdge(compose.START, "plan_outline"); err != nil {
		return nil, err
	}
	if err := writer.AddEdge("plan_outline", "write_draft"); err != nil {
		return nil, err
	}
	if err := writer.AddEdge("write_draft", compose.END); err != nil {
		return nil, err
	}

	editor := compose.NewGraph[*DocState, *DocState]()
	if err := editor.AddLambdaNode("edit_pass", compose.InvokableLambda(t.editPass)); err != nil {
		return nil, err
	}
	if err := editor.AddEdge(compose.START, "edit_pass"); err != nil {
		return nil, err
	}
	if err := editor.AddEdge("edit_pass", compose.END); err != nil {
		return nil, err
	}

	targets := map[string]bool{"writer": true, "editor": true, compose.END: true}
	parent := compose.NewGraph[*DocState, *DocState]()
	if err := parent.AddGraphNode("writer", writer); err != nil {
		return nil, err
	}
	if err := parent.AddGraphNode("editor", editor); err != nil {
		return nil, err
	}
	if err := parent.AddBranch(compose.START, compose.NewGraphBranch(Route, targets)); err != nil {
		return nil, err
	}
	if err := parent.AddBranch("writer", compose.NewGraphBranch(Route, targets)); err != nil {
		return nil, err
	}
	if err := parent.AddBranch("editor", compose.NewGraphBranch(Route, targets)); err != nil {
		return nil, err
	}

	r, err := parent.Compile(ctx, compose.WithGraphName("two_agent"), compose.WithMaxRunSteps(20))
	if err != nil {
		return nil, fmt.Errorf("compile two-agent graph: %w", err)
	}
	t.runnable = r
	return t, nil
}

// Route sends a document without a draft to the writer, a draft without a
// final version to the editor, and ends otherwise.
func Route(_ context.Context, s *DocState) (string, error) {
	switch {
	case s.Draft == "":
		return "writer", nil
	case s.Final == "":
		return "editor", nil
	default:
		return compose.END, nil
	}
}

func (t *TwoAgent) Run(ctx context.Context, topic string) (*DocState, error) {
	return t.runnable.Invoke(ctx, &DocState{Topic: topic})
}

func (t *TwoAgent) planOutline(ctx context.Context, s *DocState) (*DocState, error) {
	text, err := ask(ctx, t.model, "You are a technical content planner.",
		fmt.Sprintf("Create a 3–4 point outline for: %s.", s.Topic))
	if err != nil {
		return nil, fmt.Errorf("plan_outline: %w", err)
	}
	out := *s
	out.Outline = strings.TrimSpace(text)
	emit(ctx, "writer", map[string]any{"step": "plan_outline"})
	return &out, nil
}

func (t *TwoAgent) writeDraft(ctx context.Context, s *DocState) (*DocState, error) {
	text, err := ask(ctx, t.model, "You are a clear technical writer.",
		fmt.Sprintf("Write a ~400-word post using this outline:\n%s\nTopic: %s", s.Outline, s.Topic))
	if err != nil {
		return nil, fmt.Errorf("write_draft: %w", err)
	}
	out := *s
	out.Draft = strings.TrimSpace(text)
	emit(ctx, "writer", map[string]any{"step": "write_draft"})
	return &out, nil
}

func (t *TwoAgent) editPass(ctx context.Context, s *DocState) (*DocState, error) {
	text, err := ask(ctx, t.model, "You are a meticulous editor (improve clarity, flow; keep facts).",
		fmt.Sprintf("Improve the following draft without changing meaning:\n%s", s.Draft))
	if err != nil {
		return nil, fmt.Errorf("edit_pass: %w", err)
	}
	out := *s
	out.Final = strings.TrimSpace(text)
	emit(ctx, "editor", map[string]any{"step": "edit_pass"})
	return &out, nil
}
