package workflow

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"context_bench/internal/checkpoint"
	"context_bench/internal/llm/llmtest"
)

func startReview(t *testing.T, m *llmtest.ScriptedModel) (*Review, *Interrupt) {
	t.Helper()
	ctx := context.Background()
	rv, err := NewReview(ctx, m, checkpoint.NewMemoryStore())
	require.NoError(t, err)

	res, it, err := rv.Start(ctx, "r1", "- fast\n- safe")
	require.NoError(t, err)
	assert.Nil(t, res)
	require.NotNil(t, it)
	return rv, it
}

func TestReviewInterruptPayload(t *testing.T) {
	m := llmtest.New(llmtest.Text("summary"))
	_, it := startReview(t, m)

	assert.Equal(t, "review", it.Node)
	assert.Equal(t, "approve_or_edit", it.Payload["action"])
	assert.Equal(t, "summary", it.Payload["draft"])
	assert.Contains(t, llmtest.LastUser(m.Calls()[0]), "- fast\n- safe")
}

func TestReviewApprove(t *testing.T) {
	m := llmtest.New(llmtest.Text("summary"))
	rv, _ := startReview(t, m)

	res, it, err := rv.Resume(context.Background(), "r1", ReviewDecision{Approve: true})
	require.NoError(t, err)
	assert.Nil(t, it)
	assert.Equal(t, &ReviewResult{Final: "summary", Approved: true}, res)
}

func TestReviewReject(t *testing.T) {
	m := llmtest.New(llmtest.Text("summary"))
	rv, _ := startReview(t, m)

	res, _, err := rv.Resume(context.Background(), "r1", ReviewDecision{})
	require.NoError(t, err)
	assert.False(t, res.Approved)
	assert.Equal(t, "summary", res.Final)
	assert.Equal(t, "No edits provided", res.Note)
}

func TestReviewResumeUnknownThread(t *testing.T) {
	ctx := context.Background()
	m := llmtest.New(llmtest.Text("fresh summary"))
	rv, err := NewReview(ctx, m, checkpoint.NewMemoryStore())
	require.NoError(t, err)

	res, it, err := rv.Resume(ctx, "no-such-thread", ReviewDecision{Approve: true})
	require.ErrorIs(t, err, ErrUnknownThread)
	assert.Nil(t, res)
	assert.Nil(t, it)
	assert.Equal(t, 0, m.CallCount())
}

func TestReviewEdits(t *testing.T) {
	m := llmtest.New(llmtest.Text("summary"), llmtest.Text("edited summary"))
	rv, _ := startReview(t, m)

	res, _, err := rv.Resume(context.Background(), "r1", ReviewDecision{Edits: "shorter"})
	require.NoError(t, err)
	assert.Equal(t, &ReviewResult{Final: "edited summary", Approved: true}, res)

	calls := m.Calls()
	require.Len(t, calls, 2)
	assert.Equal(t, "You are an assistant that applies edits faithfully.", llmtest.SystemPrompt(calls[1]))
	assert.Equal(t, "Revise the draft with these edits:\nshorter\n\nDraft:\nsummary", llmtest.LastUser(calls[1]))
}
