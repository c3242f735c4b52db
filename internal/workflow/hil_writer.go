package workflow

import (
	"context"
	"fmt"
	"os"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
)

const (
	nodeDraft    = "draft"
	nodeApproval = "approval"
	nodeRewrite  = "rewrite"
	nodeSave     = "save"
)

// WriterInput starts a README drafting thread.
type WriterInput struct {
	Topic        string `json:"topic"`
	Requirements string `json:"requirements"`
}

// Decision answers an approval interrupt.
type Decision struct {
	Approve  bool   `json:"approve"`
	Feedback string `json:"feedback,omitempty"`
}

// WriterState is checkpointed between the interrupt and the resume.
type WriterState struct {
	Topic        string    `json:"topic"`
	Requirements string    `json:"requirements"`
	Draft        string    `json:"draft"`
	Approved     bool      `json:"approved"`
	Feedback     string    `json:"feedback"`
	Path         string    `json:"path"`
	Revisions    int       `json:"revisions"`
	Pending      *Decision `json:"pending,omitempty"`
}

type WriterResult struct {
	Draft     string `json:"draft"`
	Path      string `json:"path"`
	Revisions int    `json:"revisions"`
}

func init() {
	_ = compose.RegisterSerializableType[WriterState]("context_bench_writer_state")
	_ = compose.RegisterSerializableType[WriterInput]("context_bench_writer_input")
	_ = compose.RegisterSerializableType[Decision]("context_bench_writer_decision")
}

// HILWriter drafts a README, pauses for approval and loops through rewrites
// until the draft is approved, then saves it to OutputPath.
type HILWriter struct {
	model      model.BaseChatModel
	store      compose.CheckPointStore
	outputPath string
	runnable   compose.Runnable[*WriterInput, *WriterResult]
}

func NewHILWriter(ctx context.Context, m model.BaseChatModel, store compose.CheckPointStore, outputPath string) (*HILWriter, error) {
	if outputPath == "" {
		outputPath = "output.md"
	}
	w := &HILWriter{model: m, store: store, outputPath: outputPath}

	g := compose.NewGraph[*WriterInput, *WriterResult](compose.WithGenLocalState(func(ctx context.Context) *WriterState {
		return &WriterState{}
	}))

	nodes := map[string]*compose.Lambda{
		nodeDraft:    compose.InvokableLambda(w.draft),
		nodeApproval: compose.InvokableLambda(w.approval),
		nodeRewrite:  compose.InvokableLambda(w.rewrite),
		nodeSave:     compose.InvokableLambda(w.save),
	}
	for _, name := range []string{nodeDraft, nodeApproval, nodeRewrite, nodeSave} {
		if err := g.AddLambdaNode(name, nodes[name]); err != nil {
			return nil, fmt.Errorf("add node %s: %w", name, err)
		}
	}

	if err := g.AddEdge(compose.START, nodeDraft); err != nil {
		return nil, err
	}
	if err := g.AddEdge(nodeDraft, nodeApproval); err != nil {
		return nil, err
	}
	if err := g.AddBranch(nodeApproval, compose.NewGraphBranch(w.routeAfterApproval,
		map[string]bool{nodeSave: true, nodeRewrite: true})); err != nil {
		return nil, err
	}
	if err := g.AddEdge(nodeRewrite, nodeApproval); err != nil {
		return nil, err
	}
	if err := g.AddEdge(nodeSave, compose.END); err != nil {
		return nil, err
	}

	r, err := g.Compile(ctx,
		compose.WithGraphName("hil_writer"),
		compose.WithCheckPointStore(store),
	)
	if err != nil {
		return nil, fmt.Errorf("compile writer graph: %w", err)
	}
	w.runnable = r
	return w, nil
}

func (w *HILWriter) draft(ctx context.Context, in *WriterInput) (string, error) {
	text, err := ask(ctx, w.model,
		"You write concise, production-ready Markdown.",
		fmt.Sprintf("Write an 8–12 sentence README about: %s.\nMust follow: %s", in.Topic, in.Requirements))
	if err != nil {
		return "", fmt.Errorf("draft: %w", err)
	}
	err = compose.ProcessState[*WriterState](ctx, func(_ context.Context, st *WriterState) error {
		st.Topic, st.Requirements, st.Draft = in.Topic, in.Requirements, text
		return nil
	})
	return text, err
}

// approval interrupts until a Decision has been put into the state.
func (w *HILWriter) approval(ctx context.Context, draft string) (string, error) {
	var pending *Decision
	var current string
	err := compose.ProcessState[*WriterState](ctx, func(_ context.Context, st *WriterState) error {
		pending, current = st.Pending, st.Draft
		return nil
	})
	if err != nil {
		return "", err
	}
	if pending == nil {
		return "", compose.NewInterruptAndRerunErr(map[string]any{
			"action":        "review_draft",
			"prompt":        "Approve the draft? If not, provide change requests.",
			"draft_preview": truncate(current, 1200),
		})
	}

	err = compose.ProcessState[*WriterState](ctx, func(_ context.Context, st *WriterState) error {
		st.Approved = pending.Approve
		st.Feedback = pending.Feedback
		st.Pending = nil
		return nil
	})
	return current, err
}

func (w *HILWriter) routeAfterApproval(ctx context.Context, _ string) (string, error) {
	next := nodeRewrite
	err := compose.ProcessState[*WriterState](ctx, func(_ context.Context, st *WriterState) error {
		if st.Approved {
			next = nodeSave
		}
		return nil
	})
	return next, err
}

func (w *HILWriter) rewrite(ctx context.Context, draft string) (string, error) {
	var feedback string
	if err := compose.ProcessState[*WriterState](ctx, func(_ context.Context, st *WriterState) error {
		feedback = st.Feedback
		return nil
	}); err != nil {
		return "", err
	}
	text, err := ask(ctx, w.model,
		"You are a careful technical editor.",
		fmt.Sprintf("Revise the markdown to address the request.\n\nFeedback:\n%s\n\nDraft:\n%s", feedback, draft))
	if err != nil {
		return "", fmt.Errorf("rewrite: %w", err)
	}
	err = compose.ProcessState[*WriterState](ctx, func(_ context.Context, st *WriterState) error {
		st.Draft = text
		st.Feedback = ""
		st.Revisions++
		return nil
	})
	return text, err
}

func (w *HILWriter) save(ctx context.Context, draft string) (*WriterResult, error) {
	if err := os.WriteFile(w.outputPath, []byte(draft), 0o644); err != nil {
		return nil, fmt.Errorf("save draft: %w", err)
	}
	res := &WriterResult{Draft: draft, Path: w.outputPath}
	err := compose.ProcessState[*WriterState](ctx, func(_ context.Context, st *WriterState) error {
		st.Path = w.outputPath
		res.Revisions = st.Revisions
		return nil
	})
	return res, err
}

// Start runs a new thread until it finishes or pauses for approval.
func (w *HILWriter) Start(ctx context.Context, threadID string, in WriterInput) (*WriterResult, *Interrupt, error) {
	res, err := w.runnable.Invoke(ctx, &in, compose.WithCheckPointID(threadID))
	return w.outcome(threadID, res, err)
}

// Resume answers the pending approval of threadID. It fails with
// ErrUnknownThread when no checkpoint exists for it.
func (w *HILWriter) Resume(ctx context.Context, threadID string, d Decision) (*WriterResult, *Interrupt, error) {
	if err := requireCheckpoint(ctx, w.store, threadID); err != nil {
		return nil, nil, err
	}
	res, err := w.runnable.Invoke(ctx, &WriterInput{},
		compose.WithCheckPointID(threadID),
		compose.WithStateModifier(func(ctx context.Context, path compose.NodePath, state any) error {
			st, ok := state.(*WriterState)
			if !ok {
				return fmt.Errorf("unexpected writer state %T", state)
			}
			st.Pending = &d
			return nil
		}),
	)
	return w.outcome(threadID, res, err)
}

func (w *HILWriter) outcome(threadID string, res *WriterResult, err error) (*WriterResult, *Interrupt, error) {
	if err == nil {
		return res, nil, nil
	}
	it, err := asInterrupt(threadID, err)
	if err != nil {
		return nil, nil, fmt.Errorf("writer thread %s: %w", threadID, err)
	}
	return nil, it, nil
}
