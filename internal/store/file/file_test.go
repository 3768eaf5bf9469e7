package file

import (
	"context"
	"fmt"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/nihao-labs/yuban/internal/conversation"
)

func newTestStore(t *testing.T) *Store {
	t.Helper()
	return New(filepath.Join(t.TempDir(), "chat_history.json"))
}

func turnN(i int) conversation.Turn {
	role := conversation.RoleUser
	if i%2 == 1 {
		role = conversation.RoleAssistant
	}
	return conversation.Turn{
		Role:      role,
		Hanzi:     fmt.Sprintf("句子%d", i),
		Pinyin:    "jù zi",
		English:   fmt.Sprintf("sentence %d", i),
		CreatedAt: time.Date(2025, 1, 1, 0, 0, i, 0, time.UTC),
	}
}

func TestAppendListRoundTrip(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		require.NoError(t, s.Append(ctx, turnN(i)))
	}

	turns, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, turns, 5)
	for i, turn := range turns {
		assert.Equal(t, fmt.Sprintf("句子%d", i), turn.Hanzi)
	}
}

func TestListEmptyWithoutFile(t *testing.T) {
	s := newTestStore(t)
	turns, err := s.ListAll(context.Background())
	require.NoError(t, err)
	assert.Empty(t, turns)
}

func TestClear(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	require.NoError(t, s.Append(ctx, turnN(0)))
	require.NoError(t, s.Clear(ctx))

	turns, err := s.ListAll(ctx)
	require.NoError(t, err)
	assert.Empty(t, turns)

	// Clearing an already-empty history is fine.
	require.NoError(t, s.Clear(ctx))
}

func TestRetentionCap(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for i := 0; i < 60; i++ {
		require.NoError(t, s.Append(ctx, turnN(i)))
	}

	turns, err := s.ListAll(ctx)
	require.NoError(t, err)
	require.Len(t, turns, 50)

	// Oldest ten were trimmed; order stays ascending.
	assert.Equal(t, "句子10", turns[0].Hanzi)
	assert.Equal(t, "句子59", turns[49].Hanzi)
}
