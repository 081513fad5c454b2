package repositories

import (
	"context"
	"testing"

	"github.com/prudhvinik1/linkup/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMessageRepository_Conversation(t *testing.T) {
	pool := getTestPool(t)
	repo := NewPostgresMessageRepository(pool)
	ctx := context.Background()
	alice := createTestUser(t, pool, "Alice")
	bob := createTestUser(t, pool, "Bob")
	carol := createTestUser(t, pool, "Carol")

	for _, m := range []*models.Message{
		{SenderID: alice.ID, ReceiverID: bob.ID, Content: "hello"},
		{SenderID: bob.ID, ReceiverID: alice.ID, Content: "hi"},
		{SenderID: carol.ID, ReceiverID: alice.ID, Content: "hey"},
	} {
		require.NoError(t, repo.Create(ctx, m))
		assert.False(t, m.CreatedAt.IsZero())
	}

	conversation, err := repo.GetConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	require.Len(t, conversation, 2)
	assert.Equal(t, "hello", conversation[0].Content)
	assert.Equal(t, "hi", conversation[1].Content)

	partners, err := repo.ListRecentPartners(ctx, alice.ID)
	require.NoError(t, err)
	assert.Equal(t, carol.ID, partners[0], "most recent conversation first")
	assert.Len(t, partners, 2)

	n, err := repo.MarkConversationRead(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.Equal(t, int64(1), n)

	conversation, err = repo.GetConversation(ctx, alice.ID, bob.ID)
	require.NoError(t, err)
	assert.True(t, conversation[1].IsRead)
	assert.NotNil(t, conversation[1].ReadAt)
	assert.False(t, conversation[0].IsRead, "messages Alice sent are untouched")
}
