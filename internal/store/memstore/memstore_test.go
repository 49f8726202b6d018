package memstore

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
)

func TestTransactionRollback(t *testing.T) {
	ctx := context.Background()
	s := New()

	user := &models.User{Username: "alice", AuthProvider: "test", ProviderID: "1"}
	require.NoError(t, s.Users().Create(ctx, user))

	boom := errors.New("boom")
	err := s.Transaction(ctx, func(tx store.Repository) error {
		require.NoError(t, tx.Users().AddKarma(ctx, user.ID, 5))
		return boom
	})
	require.ErrorIs(t, err, boom)

	got, err := s.Users().GetByID(ctx, user.ID)
	require.NoError(t, err)
	assert.Equal(t, 0, got.Karma)

	require.NoError(t, s.Transaction(ctx, func(tx store.Repository) error {
		return tx.Users().AddKarma(ctx, user.ID, 2)
	}))
	got, _ = s.Users().GetByID(ctx, user.ID)
	assert.Equal(t, 2, got.Karma)
}

func TestWriteOutsideTransactionSurvivesRollback(t *testing.T) {
	ctx := context.Background()
	s := New()
	recipient := uuid.New()
	n := &models.Notification{RecipientID: recipient, ActorID: uuid.New(), Type: models.NotifyTypeFollow}
	require.NoError(t, s.Notifications().Create(ctx, n))

	started := make(chan struct{})
	release := make(chan struct{})
	boom := errors.New("boom")
	txErr := make(chan error, 1)
	go func() {
		txErr <- s.Transaction(ctx, func(tx store.Repository) error {
			close(started)
			<-release
			return boom
		})
	}()
	<-started

	marked := make(chan int64, 1)
	go func() {
		changed, _ := s.Notifications().MarkRead(ctx, recipient, nil)
		marked <- changed
	}()
	select {
	case <-marked:
		t.Fatal("write should wait for the running transaction")
	case <-time.After(50 * time.Millisecond):
	}

	close(release)
	require.ErrorIs(t, <-txErr, boom)
	assert.Equal(t, int64(1), <-marked)

	unread, err := s.Notifications().CountUnread(ctx, recipient)
	require.NoError(t, err)
	assert.Zero(t, unread)
}

func TestUniqueConstraints(t *testing.T) {
	ctx := context.Background()
	s := New()

	require.NoError(t, s.Users().Create(ctx, &models.User{Username: "bob", AuthProvider: "test", ProviderID: "1"}))
	err := s.Users().Create(ctx, &models.User{Username: "bob", AuthProvider: "test", ProviderID: "2"})
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(err))

	vote := &models.Vote{TargetType: models.TargetPost, TargetID: uuid.New(), VoterID: uuid.New(), Direction: models.DirectionUp}
	require.NoError(t, s.Votes().Create(ctx, vote))
	dup := *vote
	dup.ID = uuid.Nil
	dup.Direction = models.DirectionDown
	assert.Equal(t, apperr.KindConflict, apperr.KindOf(s.Votes().Create(ctx, &dup)))
}

func TestCommentVisibility(t *testing.T) {
	ctx := context.Background()
	s := New()
	postID := uuid.New()
	base := time.Now().UTC()

	parent := &models.Comment{PostID: postID, AuthorID: uuid.New(), Content: "parent", CreatedAt: base}
	leaf := &models.Comment{PostID: postID, AuthorID: uuid.New(), Content: models.DeletedPlaceholder, IsDeleted: true, CreatedAt: base.Add(time.Second)}
	require.NoError(t, s.Comments().Create(ctx, parent))
	require.NoError(t, s.Comments().Create(ctx, leaf))

	reply := &models.Comment{PostID: postID, AuthorID: uuid.New(), ParentID: &parent.ID, Content: "reply", CreatedAt: base.Add(2 * time.Second)}
	require.NoError(t, s.Comments().Create(ctx, reply))

	parent.IsDeleted = true
	parent.Content = models.DeletedPlaceholder
	require.NoError(t, s.Comments().Update(ctx, parent))

	top, total, err := s.Comments().ListTopLevel(ctx, postID, store.SortNew, store.PageQuery{Limit: 10})
	require.NoError(t, err)
	require.Equal(t, int64(1), total)
	assert.Equal(t, parent.ID, top[0].ID)

	counts, err := s.Comments().CountReplies(ctx, []uuid.UUID{parent.ID, leaf.ID})
	require.NoError(t, err)
	assert.Equal(t, 1, counts[parent.ID])
	assert.Zero(t, counts[leaf.ID])
}

func TestDeletedChainVisibility(t *testing.T) {
	ctx := context.Background()
	s := New()
	postID := uuid.New()

	root := &models.Comment{PostID: postID, AuthorID: uuid.New(), Content: "root"}
	require.NoError(t, s.Comments().Create(ctx, root))
	mid := &models.Comment{PostID: postID, AuthorID: uuid.New(), ParentID: &root.ID, Content: "mid"}
	require.NoError(t, s.Comments().Create(ctx, mid))
	leaf := &models.Comment{PostID: postID, AuthorID: uuid.New(), ParentID: &mid.ID, Content: "leaf"}
	require.NoError(t, s.Comments().Create(ctx, leaf))

	for _, c := range []*models.Comment{root, mid} {
		c.IsDeleted = true
		require.NoError(t, s.Comments().Update(ctx, c))
	}
	_, total, err := s.Comments().ListTopLevel(ctx, postID, store.SortNew, store.PageQuery{Limit: 10})
	require.NoError(t, err)
	assert.Equal(t, int64(1), total)

	leaf.IsDeleted = true
	require.NoError(t, s.Comments().Update(ctx, leaf))
	_, total, err = s.Comments().ListTopLevel(ctx, postID, store.SortNew, store.PageQuery{Limit: 10})
	require.NoError(t, err)
	assert.Zero(t, total)

	counts, err := s.Comments().CountReplies(ctx, []uuid.UUID{root.ID, mid.ID})
	require.NoError(t, err)
	assert.Empty(t, counts)
}

func TestListAfter(t *testing.T) {
	ctx := context.Background()
	s := New()
	for i := 0; i < 5; i++ {
		require.NoError(t, s.Users().Create(ctx, &models.User{
			Username:     uuid.NewString(),
			AuthProvider: "test",
			ProviderID:   uuid.NewString(),
		}))
	}

	first, err := s.Users().ListAfter(ctx, uuid.Nil, 3)
	require.NoError(t, err)
	require.Len(t, first, 3)
	rest, err := s.Users().ListAfter(ctx, first[2].ID, 3)
	require.NoError(t, err)
	assert.Len(t, rest, 2)
}

func TestMarkRead(t *testing.T) {
	ctx := context.Background()
	s := New()
	recipient := uuid.New()
	var ids []uuid.UUID
	for i := 0; i < 3; i++ {
		n := &models.Notification{RecipientID: recipient, ActorID: uuid.New(), Type: models.NotifyTypeFollow}
		require.NoError(t, s.Notifications().Create(ctx, n))
		ids = append(ids, n.ID)
	}

	changed, err := s.Notifications().MarkRead(ctx, recipient, ids[:1])
	require.NoError(t, err)
	assert.Equal(t, int64(1), changed)

	unread, _ := s.Notifications().CountUnread(ctx, recipient)
	assert.Equal(t, int64(2), unread)

	changed, _ = s.Notifications().MarkRead(ctx, recipient, nil)
	assert.Equal(t, int64(2), changed)
}
