package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"context_bench/internal/llm/llmtest"
)

func TestExtractRequirements(t *testing.T) {
	assert.Equal(t, "REQUIREMENTS:\nan app", ExtractRequirements("  an app \n"))
}

func TestCopyPipeline(t *testing.T) {
	ctx := context.Background()
	m := llmtest.New(llmtest.Text("# Headline"), llmtest.Text("# Titular"))

	var steps []string
	p, err := NewCopyPipeline(ctx, m, func(s StepOutput) { steps = append(steps, s.Step) })
	require.NoError(t, err)

	out, err := p.Run(ctx, " budgeting app ")
	require.NoError(t, err)
	assert.Equal(t, "# Titular", out)
	assert.Equal(t, []string{"extract_requirements", "copywriter", "translator"}, steps)

	calls := m.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, copywriterInstructions, llmtest.SystemPrompt(calls[0]))
	assert.Equal(t, "REQUIREMENTS:\nbudgeting app", llmtest.LastUser(calls[0]))
	assert.Equal(t, translatorInstructions, llmtest.SystemPrompt(calls[1]))
	assert.Equal(t, "# Headline", llmtest.LastUser(calls[1]))
}
