package notify

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store/memstore"
)

func TestOnReplyRecipients(t *testing.T) {
	postAuthor, commentAuthor, replier := uuid.New(), uuid.New(), uuid.New()
	post := &models.Post{ID: uuid.New(), AuthorID: postAuthor}
	parent := &models.Comment{ID: uuid.New(), PostID: post.ID, AuthorID: commentAuthor}

	tests := []struct {
		name      string
		actor     uuid.UUID
		parent    *models.Comment
		recipient uuid.UUID
		notifType int16
		expected  int64
	}{
		{"top-level reply notifies post author", replier, nil, postAuthor, models.NotifyTypeReply, 1},
		{"nested reply notifies parent author", replier, parent, commentAuthor, models.NotifyTypeReplyComment, 1},
		{"own post is silent", postAuthor, nil, postAuthor, models.NotifyTypeReply, 0},
		{"own comment is silent", commentAuthor, parent, commentAuthor, models.NotifyTypeReplyComment, 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ctx := context.Background()
			s := memstore.New()
			require.NoError(t, OnReply(ctx, s, tt.actor, post, tt.parent, uuid.New()))

			svc := NewService(s)
			count, err := svc.UnreadCount(ctx, tt.recipient)
			require.NoError(t, err)
			assert.Equal(t, tt.expected, count)

			if tt.expected > 0 {
				page, err := svc.List(ctx, tt.recipient, false, 1, 10)
				require.NoError(t, err)
				require.Len(t, page.Items, 1)
				assert.Equal(t, tt.notifType, page.Items[0].Type)
				assert.Equal(t, tt.actor, page.Items[0].ActorID)
			}
		})
	}
}

func TestMarkReadFlow(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	svc := NewService(s)
	user := uuid.New()

	for i := 0; i < 3; i++ {
		require.NoError(t, OnFollow(ctx, s, uuid.New(), user))
	}

	unread, err := svc.List(ctx, user, true, 1, 2)
	require.NoError(t, err)
	assert.Len(t, unread.Items, 2)
	assert.True(t, unread.HasMore)

	changed, err := svc.MarkRead(ctx, user, []uuid.UUID{unread.Items[0].ID})
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	count, err := svc.UnreadCount(ctx, user)
	require.NoError(t, err)
	assert.Equal(t, int64(2), count)

	_, err = svc.MarkRead(ctx, user, nil)
	require.NoError(t, err)
	count, _ = svc.UnreadCount(ctx, user)
	assert.Zero(t, count)
}
