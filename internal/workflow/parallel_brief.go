package workflow

import (
	"context"
	"fmt"
	"strings"

	"github.com/cloudwego/eino/components/model"
	"github.com/cloudwego/eino/compose"
	"golang.org/x/sync/errgroup"
)

// BriefInput names the topic. Subtopics skip the planning call when given.
type BriefInput struct {
	Topic     string   `json:"topic"`
	Subtopics []string `json:"subtopics"`
}

type Brief struct {
	Topic     string   `json:"topic"`
	Subtopics []string `json:"subtopics"`
	Drafts    []string `json:"drafts"`
	Report    string   `json:"report"`
}

const maxSubtopics = 5

// ParallelBrief plans sections, writes them concurrently and merges the result.
type ParallelBrief struct {
	model       model.BaseChatModel
	concurrency int
	runnable    compose.Runnable[*BriefInput, *Brief]
}

func NewParallelBrief(ctx context.Context, m model.BaseChatModel, concurrency int) (*ParallelBrief, error) {
	if concurrency <= 0 {
		concurrency = maxSubtopics
	}
	p := &ParallelBrief{model: m, concurrency: concurrency}

	g := compose.NewGraph[*BriefInput, *Brief]()
	if err := g.AddLambdaNode("plan", compose.InvokableLambda(p.plan)); err != nil {
		return nil, err
	}
	if err := g.AddLambdaNode("write_sections", compose.InvokableLambda(p.writeSections)); err != nil {
		return nil, err
	}
	if err := g.AddLambdaNode("merge", compose.InvokableLambda(p.merge)); err != nil {
		return nil, err
	}
	if err := g.AddEdge(compose.START, "plan"); err != nil {
		return nil, err
	}
	if err := g.AddEdge("plan", "write_sections"); err != nil {
		return nil, err
	}
	if err := g.AddEdge("write_sections", "merge"); err != nil {
		return nil, err
	}
	if err := g.AddEdge("merge", compose.END); err != nil {
		return nil, err
	}

	r, err := g.Compile(ctx, compose.WithGraphName("parallel_brief"))
	if err != nil {
		return nil, fmt.Errorf("compile brief graph: %w", err)
	}
	p.runnable = r
	return p, nil
}

func (p *ParallelBrief) Run(ctx context.Context, in BriefInput) (*Brief, error) {
	return p.runnable.Invoke(ctx, &in)
}

func (p *ParallelBrief) plan(ctx context.Context, in *BriefInput) (*Brief, error) {
	b := &Brief{Topic: in.Topic, Subtopics: in.Subtopics}
	if len(b.Subtopics) > 0 {
		return b, nil
	}
	text, err := ask(ctx, p.model, "You are a researcher.",
		fmt.Sprintf("Propose 3 concise sections for a brief on: %s. Return only a bullet list of section titles.", in.Topic))
	if err != nil {
		return nil, fmt.Errorf("plan: %w", err)
	}
	b.Subtopics = ParseBullets(text, maxSubtopics)
	emit(ctx, "plan", map[string]any{"subtopics": b.Subtopics})
	return b, nil
}

// ParseBullets strips list markers from each non-empty line and keeps at most limit.
func ParseBullets(text string, limit int) []string {
	var out []string
	for _, l := range nonEmptyLines(text) {
		l = strings.TrimSpace(strings.Trim(strings.TrimSpace(l), "-• "))
		if l == "" {
			continue
		}
		out = append(out, l)
		if len(out) == limit {
			break
		}
	}
	return out
}

func (p *ParallelBrief) writeSections(ctx context.Context, b *Brief) (*Brief, error) {
	drafts := make([]string, len(b.Subtopics))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(p.concurrency)
	for i, s := range b.Subtopics {
		g.Go(func() error {
			emit(gctx, "write_section", map[string]any{"event": "start", "section": s})
			text, err := ask(gctx, p.model, "Write crisp, factual paragraphs with 2–4 sentences.",
				fmt.Sprintf("Write a section titled '%s' for the topic '%s'. Do not repeat other sections.", s, b.Topic))
			if err != nil {
				return fmt.Errorf("section %q: %w", s, err)
			}
			emit(gctx, "write_section", map[string]any{"event": "done", "section": s})
			drafts[i] = fmt.Sprintf("## %s\n%s", s, strings.TrimSpace(text))
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	b.Drafts = drafts
	return b, nil
}

func (p *ParallelBrief) merge(ctx context.Context, b *Brief) (*Brief, error) {
	b.Report = strings.Join(b.Drafts, "\n\n")
	emit(ctx, "merge", map[string]any{"sections": len(b.Drafts)})
	return b, nil
}
