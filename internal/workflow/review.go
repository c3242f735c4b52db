package workflow

import (
	"context"
	"fmt"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
)

// ReviewDecision answers the review interrupt. Non-empty Edits are applied
// and count as approval; otherwise Approve decides.
type ReviewDecision struct {
	Approve bool   `json:"approve"`
	Edits   string `json:"edits,omitempty"`
}

type ReviewResult struct {
	Final    string `json:"final"`
	Approved bool   `json:"approved"`
	Note     string `json:"note,omitempty"`
}

type reviewState struct {
	Draft   string          `json:"draft"`
	Pending *ReviewDecision `json:"pending,omitempty"`
}

func init() {
	_ = compose.RegisterSerializableType[reviewState]("context_bench_review_state")
	_ = compose.RegisterSerializableType[ReviewDecision]("context_bench_review_decision")
}

// Review composes a summary from bullet points, pauses for approval or edit
// requests and finalises accordingly.
type Review struct {
	model    model.BaseChatModel
	store    compose.CheckPointStore
	runnable compose.Runnable[string, *ReviewResult]
}

func NewReview(ctx context.Context, m model.BaseChatModel, store compose.CheckPointStore) (*Review, error) {
	rv := &Review{model: m, store: store}

	g := compose.NewGraph[string, *ReviewResult](compose.WithGenLocalState(func(ctx context.Context) *reviewState {
		return &reviewState{}
	}))
	if err := g.AddLambdaNode("compose", compose.InvokableLambda(rv.compose)); err != nil {
		return nil, err
	}
	if err := g.AddLambdaNode("review", compose.InvokableLambda(rv.review)); err != nil {
		return nil, err
	}
	if err := g.AddEdge(compose.START, "compose"); err != nil {
		return nil, err
	}
	if err := g.AddEdge("compose", "review"); err != nil {
		return nil, err
	}
	if err := g.AddEdge("review", compose.END); err != nil {
		return nil, err
	}

	r, err := g.Compile(ctx, compose.WithGraphName("functional_review"), compose.WithCheckPointStore(store))
	if err != nil {
		return nil, fmt.Errorf("compile review graph: %w", err)
	}
	rv.runnable = r
	return rv, nil
}

func (rv *Review) compose(ctx context.Context, bullets string) (string, error) {
	draft, err := ask(ctx, rv.model, "You are a concise technical writer.",
		fmt.Sprintf("Write ~200 words summarizing:\n%s", bullets))
	if err != nil {
		return "", fmt.Errorf("compose: %w", err)
	}
	err = compose.ProcessState[*reviewState](ctx, func(_ context.Context, st *reviewState) error {
		st.Draft = draft
		return nil
	})
	return draft, err
}

// review reads the draft from state: a resumed run does not replay the
// compose output into this node.
func (rv *Review) review(ctx context.Context, _ string) (*ReviewResult, error) {
	var pending *ReviewDecision
	var draft string
	err := compose.ProcessState[*reviewState](ctx, func(_ context.Context, st *reviewState) error {
		pending, draft = st.Pending, st.Draft
		return nil
	})
	if err != nil {
		return nil, err
	}
	if pending == nil {
		return nil, compose.NewInterruptAndRerunErr(map[string]any{
			"action": "approve_or_edit",
			"prompt": "Approve the draft? If not, include change requests text.",
			"draft":  truncate(draft, 1200),
		})
	}

	switch {
	case pending.Edits != "":
		final, err := ask(ctx, rv.model, "You are an assistant that applies edits faithfully.",
			fmt.Sprintf("Revise the draft with these edits:\n%s\n\nDraft:\n%s", pending.Edits, draft))
		if err != nil {
			return nil, fmt.Errorf("apply edits: %w", err)
		}
		return &ReviewResult{Final: final, Approved: true}, nil
	case pending.Approve:
		return &ReviewResult{Final: draft, Approved: true}, nil
	default:
		return &ReviewResult{Final: draft, Approved: false, Note: "No edits provided"}, nil
	}
}

func (rv *Review) Start(ctx context.Context, threadID, bullets string) (*ReviewResult, *Interrupt, error) {
	res, err := rv.runnable.Invoke(ctx, bullets, compose.WithCheckPointID(threadID))
	return reviewOutcome(threadID, res, err)
}

// Resume answers the pending review of threadID. It fails with
// ErrUnknownThread when no checkpoint exists for it.
func (rv *Review) Resume(ctx context.Context, threadID string, d ReviewDecision) (*ReviewResult, *Interrupt, error) {
	if err := requireCheckpoint(ctx, rv.store, threadID); err != nil {
		return nil, nil, err
	}
	res, err := rv.runnable.Invoke(ctx, "",
		compose.WithCheckPointID(threadID),
		compose.WithStateModifier(func(ctx context.Context, path compose.NodePath, state any) error {
			st, ok := state.(*reviewState)
			if !ok {
				return fmt.Errorf("unexpected review state %T", state)
			}
			st.Pending = &d
			return nil
		}),
	)
	return reviewOutcome(threadID, res, err)
}

func reviewOutcome(threadID string, res *ReviewResult, err error) (*ReviewResult, *Interrupt, error) {
	if err == nil {
		return res, nil, nil
	}
	it, err := asInterrupt(threadID, err)
	if err != nil {
		return nil, nil, fmt.Errorf("review thread %s: %w", threadID, err)
	}
	return nil, it, nil
}
