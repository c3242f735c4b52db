package workflow

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"context_bench/internal/checkpoint"
	"context_bench/internal/llm/llmtest"
)

func TestHILWriterApproveFirstDraft(t *testing.T) {
	ctx := context.Background()
	out := filepath.Join(t.TempDir(), "README.md")
	m := llmtest.New(llmtest.Text("# Tool\nFirst draft."))

	w, err := NewHILWriter(ctx, m, checkpoint.NewMemoryStore(), out)
	require.NoError(t, err)

	res, it, err := w.Start(ctx, "thread-1", WriterInput{Topic: "A CLI", Requirements: "mention install"})
	require.NoError(t, err)
	assert.Nil(t, res)
	require.NotNil(t, it)
	assert.Equal(t, nodeApproval, it.Node)
	assert.Equal(t, "review_draft", it.Payload["action"])
	assert.Equal(t, "# Tool\nFirst draft.", it.Payload["draft_preview"])

	res, it, err = w.Resume(ctx, "thread-1", Decision{Approve: true})
	require.NoError(t, err)
	assert.Nil(t, it)
	require.NotNil(t, res)
	assert.Equal(t, 0, res.Revisions)

	saved, err := os.ReadFile(out)
	require.NoError(t, err)
	assert.Equal(t, "# Tool\nFirst draft.", string(saved))
	assert.Equal(t, 1, m.CallCount())
}

func TestHILWriterRewriteLoop(t *testing.T) {
	ctx := context.Background()
	out := filepath.Join(t.TempDir(), "README.md")
	m := llmtest.New(llmtest.Text("draft one"), llmtest.Text("draft two"))

	w, err := NewHILWriter(ctx, m, checkpoint.NewMemoryStore(), out)
	require.NoError(t, err)

	_, it, err := w.Start(ctx, "t", WriterInput{Topic: "x"})
	require.NoError(t, err)
	require.NotNil(t, it)

	_, it, err = w.Resume(ctx, "t", Decision{Feedback: "add a usage section"})
	require.NoError(t, err)
	require.NotNil(t, it, "a rejected draft goes back for approval")
	assert.Equal(t, "draft two", it.Payload["draft_preview"])

	calls := m.Calls()
	require.Len(t, calls, 2)
	assert.True(t, strings.Contains(llmtest.LastUser(calls[1]), "add a usage section"))

	res, it, err := w.Resume(ctx, "t", Decision{Approve: true})
	require.NoError(t, err)
	assert.Nil(t, it)
	assert.Equal(t, "draft two", res.Draft)
	assert.Equal(t, 1, res.Revisions)
}

func TestHILWriterModelError(t *testing.T) {
	ctx := context.Background()
	w, err := NewHILWriter(ctx, llmtest.New(), checkpoint.NewMemoryStore(), filepath.Join(t.TempDir(), "o.md"))
	require.NoError(t, err)

	_, it, err := w.Start(ctx, "t", WriterInput{Topic: "x"})
	assert.Nil(t, it)
	assert.ErrorIs(t, err, llmtest.ErrNoReply)
}

func TestTruncateRunes(t *testing.T) {
	assert.Equal(t, "héé", truncate("héééé", 3))
	assert.Equal(t, "ab", truncate("ab", 10))
}

func TestAskWithoutModel(t *testing.T) {
	_, err := ask(context.Background(), nil, "s", "u")
	assert.Error(t, err)
}

func TestHILWriterResumeUnknownThread(t *testing.T) {
	ctx := context.Background()
	m := llmtest.New(llmtest.Text("fresh draft"))
	w, err := NewHILWriter(ctx, m, checkpoint.NewMemoryStore(), filepath.Join(t.TempDir(), "README.md"))
	require.NoError(t, err)

	res, it, err := w.Resume(ctx, "no-such-thread", Decision{Approve: true})
	require.ErrorIs(t, err, ErrUnknownThread)
	assert.Nil(t, res)
	assert.Nil(t, it)
	assert.Equal(t, 0, m.CallCount())
}
