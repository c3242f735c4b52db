package workflow

import (
	"context"
	"strings"
	"sync"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"context_bench/internal/llm/llmtest"
)

func TestParseBullets(t *testing.T) {
	text := "- Background\n\n• Market size\n  - Risks  \n-\nOutlook\nExtra\nMore"
	assert.Equal(t, []string{"Background", "Market size", "Risks", "Outlook"}, ParseBullets(text, 4))
	assert.Empty(t, ParseBullets("\n \n", 3))
}

func sectionResponder(input []*schema.Message) *schema.Message {
	user := llmtest.LastUser(input)
	if strings.HasPrefix(user, "Propose") {
		return llmtest.Text("- Alpha\n- Beta\n- Gamma")
	}
	start := strings.Index(user, "'") + 1
	end := strings.Index(user[start:], "'") + start
	return llmtest.Text("Body of " + user[start:end] + ".")
}

func TestParallelBriefPlansAndKeepsOrder(t *testing.T) {
	ctx := context.Background()
	m := llmtest.NewResponder(sectionResponder)

	p, err := NewParallelBrief(ctx, m, 2)
	require.NoError(t, err)

	var mu sync.Mutex
	var events []Event
	ctx = WithEvents(ctx, func(e Event) {
		mu.Lock()
		defer mu.Unlock()
		events = append(events, e)
	})

	b, err := p.Run(ctx, BriefInput{Topic: "Edge AI"})
	require.NoError(t, err)
	assert.Equal(t, []string{"Alpha", "Beta", "Gamma"}, b.Subtopics)
	assert.Equal(t, []string{
		"## Alpha\nBody of Alpha.",
		"## Beta\nBody of Beta.",
		"## Gamma\nBody of Gamma.",
	}, b.Drafts)
	assert.Equal(t, strings.Join(b.Drafts, "\n\n"), b.Report)
	assert.Equal(t, 4, m.CallCount())

	// plan + start/done per section + merge
	assert.Len(t, events, 1+2*3+1)
	assert.Equal(t, "merge", events[len(events)-1].Node)
}

func TestParallelBriefGivenSubtopicsSkipsPlanning(t *testing.T) {
	ctx := context.Background()
	m := llmtest.NewResponder(sectionResponder)
	p, err := NewParallelBrief(ctx, m, 0)
	require.NoError(t, err)

	b, err := p.Run(ctx, BriefInput{Topic: "x", Subtopics: []string{"Only"}})
	require.NoError(t, err)
	assert.Equal(t, "## Only\nBody of Only.", b.Report)
	assert.Equal(t, 1, m.CallCount())
}

func TestParallelBriefSectionError(t *testing.T) {
	ctx := context.Background()
	p, err := NewParallelBrief(ctx, llmtest.New(), 1)
	require.NoError(t, err)

	_, err = p.Run(ctx, BriefInput{Topic: "x", Subtopics: []string{"A"}})
	assert.ErrorIs(t, err, llmtest.ErrNoReply)
}
