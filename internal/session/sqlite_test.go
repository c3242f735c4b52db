package session

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/cloudwego/eino/schema"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func newTestSession(t *testing.T, id, path string) *SQLiteSession {
	t.Helper()
	s, err := NewSQLiteSession(id, path)
	require.NoError(t, err)
	t.Cleanup(func() { _ = s.Close() })
	return s
}

func TestSessionAddAndGet(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, "demo_user_123", filepath.Join(t.TempDir(), "conversation_history.db"))

	require.NoError(t, s.AddItems(ctx,
		schema.UserMessage("What's my city?"),
		schema.AssistantMessage("Seoul.", nil),
	))
	require.NoError(t, s.AddItems(ctx, schema.UserMessage("thanks")))

	items, err := s.GetItems(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 3)
	assert.Equal(t, schema.User, items[0].Role)
	assert.Equal(t, "Seoul.", items[1].Content)

	latest, err := s.GetItems(ctx, 2)
	require.NoError(t, err)
	require.Len(t, latest, 2)
	assert.Equal(t, "Seoul.", latest[0].Content)
	assert.Equal(t, "thanks", latest[1].Content)
}

func TestSessionPopAndClear(t *testing.T) {
	ctx := context.Background()
	s := newTestSession(t, "s1", filepath.Join(t.TempDir(), "h.db"))

	msg, err := s.PopItem(ctx)
	require.NoError(t, err)
	assert.Nil(t, msg)

	require.NoError(t, s.AddItems(ctx, schema.UserMessage("a"), schema.UserMessage("b")))
	msg, err = s.PopItem(ctx)
	require.NoError(t, err)
	require.NotNil(t, msg)
	assert.Equal(t, "b", msg.Content)

	items, err := s.GetItems(ctx, 0)
	require.NoError(t, err)
	assert.Len(t, items, 1)

	require.NoError(t, s.ClearSession(ctx))
	items, err = s.GetItems(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, items)
}

func TestSessionsAreIsolatedAndPersistent(t *testing.T) {
	ctx := context.Background()
	path := filepath.Join(t.TempDir(), "h.db")

	a := newTestSession(t, "alice", path)
	require.NoError(t, a.AddItems(ctx, schema.UserMessage("from alice")))
	require.NoError(t, a.Close())

	b := newTestSession(t, "bob", path)
	items, err := b.GetItems(ctx, 0)
	require.NoError(t, err)
	assert.Empty(t, items)

	again := newTestSession(t, "alice", path)
	items, err = again.GetItems(ctx, 0)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, "from alice", items[0].Content)
}

func TestEmptySessionID(t *testing.T) {
	_, err := NewSQLiteSession("", ":memory:")
	assert.ErrorIs(t, err, ErrEmptySessionID)
}
