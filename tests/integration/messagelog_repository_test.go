package integration

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wagate/internal/messagelog"
)

func seedEntries(t *testing.T, repo messagelog.Repository, entries []messagelog.Entry) {
	t.Helper()
	ctx := context.Background()
	for _, entry := range entries {
		require.NoError(t, repo.Insert(ctx, entry))
	}
}

func TestMessageLogInsertAndList(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, false)
	repo := messagelog.NewRepository(infra.MongoDB)
	ctx := context.Background()

	base := time.Now().Truncate(time.Millisecond)
	seedEntries(t, repo, []messagelog.Entry{
		{EventID: "evt-1", Instance: "main", ChatJID: "a@s.whatsapp.net", MessageType: "conversation", Content: "first", Timestamp: base},
		{EventID: "evt-2", Instance: "main", ChatJID: "a@s.whatsapp.net", MessageType: "image", Content: "image|evt-2", Timestamp: base.Add(time.Second)},
		{EventID: "evt-3", Instance: "main", ChatJID: "b@g.us", MessageType: "conversation", Content: "group", Timestamp: base.Add(2 * time.Second)},
		{EventID: "evt-4", Instance: "other", ChatJID: "a@s.whatsapp.net", MessageType: "conversation", Content: "other", Timestamp: base.Add(3 * time.Second)},
	})

	byChat, err := repo.ListByChat(ctx, "main", "a@s.whatsapp.net", 10)
	require.NoError(t, err)
	require.Len(t, byChat, 2)
	// Newest first.
	assert.Equal(t, "evt-2", byChat[0].EventID)
	assert.Equal(t, "evt-1", byChat[1].EventID)

	byInstance, err := repo.ListByInstance(ctx, "main", 10)
	require.NoError(t, err)
	assert.Len(t, byInstance, 3)

	limited, err := repo.ListByInstance(ctx, "main", 2)
	require.NoError(t, err)
	require.Len(t, limited, 2)
	assert.Equal(t, "evt-3", limited[0].EventID)
}

func TestMessageLogDuplicateEventID(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, false)
	repo := messagelog.NewRepository(infra.MongoDB)
	ctx := context.Background()

	entry := messagelog.Entry{
		EventID:     "evt-dup",
		Instance:    "main",
		ChatJID:     "a@s.whatsapp.net",
		MessageType: "conversation",
		Content:     "hello",
		Timestamp:   time.Now(),
	}
	require.NoError(t, repo.Insert(ctx, entry))

	// Redelivery of the same event is swallowed, not an error.
	require.NoError(t, repo.Insert(ctx, entry))

	entries, err := repo.ListByInstance(ctx, "main", 10)
	require.NoError(t, err)
	assert.Len(t, entries, 1)
}

func TestMessageLogDefaultLimit(t *testing.T) {
	infra := SetupTestInfraWithOptions(t, false, true, false)
	repo := messagelog.NewRepository(infra.MongoDB)
	ctx := context.Background()

	seedEntries(t, repo, []messagelog.Entry{
		{EventID: "evt-a", Instance: "main", ChatJID: "a@s.whatsapp.net", MessageType: "conversation", Timestamp: time.Now()},
		{EventID: "evt-b", Instance: "main", ChatJID: "a@s.whatsapp.net", MessageType: "conversation", Timestamp: time.Now()},
	})

	// Zero and negative limits fall back to the default page size.
	entries, err := repo.ListByInstance(ctx, "main", 0)
	require.NoError(t, err)
	assert.Len(t, entries, 2)

	entries, err = repo.ListByInstance(ctx, "main", -5)
	require.NoError(t, err)
	assert.Len(t, entries, 2)
}
