package reconcile

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-social/agora/internal/comments"
	"github.com/agora-social/agora/internal/karma"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/posts"
	"github.com/agora-social/agora/internal/store/memstore"
	"github.com/agora-social/agora/internal/voting"
	"github.com/agora-social/agora/pkg/config"
)

func TestPassRepairsDrift(t *testing.T) {
	ctx := context.Background()
	s := memstore.New()
	acc := karma.NewAccumulator()
	cfg := config.CommentsConfig{MaxDepth: 6, DefaultLimit: 20, MaxLimit: 100}
	postSvc := posts.NewService(s, acc, cfg)
	commentSvc := comments.NewService(s, acc, nil, cfg)
	voteSvc := voting.NewService(s, acc, true, nil)

	var users []*models.User
	for _, name := range []string{"ann", "ben", "cid"} {
		u := &models.User{Username: name, AuthProvider: "test", ProviderID: name}
		require.NoError(t, s.Users().Create(ctx, u))
		users = append(users, u)
	}
	ann, ben, cid := users[0], users[1], users[2]

	post, err := postSvc.Create(ctx, ann.ID, "title", "body")
	require.NoError(t, err)
	c, err := commentSvc.Create(ctx, comments.CreateInput{PostID: post.ID, AuthorID: ben.ID, Content: "hi"})
	require.NoError(t, err)

	_, err = voteSvc.ApplyVote(ctx, models.TargetPost, post.ID, ben.ID, models.DirectionUp)
	require.NoError(t, err)
	_, err = voteSvc.ApplyVote(ctx, models.TargetComment, c.ID, ann.ID, models.DirectionDown)
	require.NoError(t, err)
	_, err = voteSvc.ApplyVote(ctx, models.TargetComment, c.ID, cid.ID, models.DirectionDown)
	require.NoError(t, err)

	r := New(s, config.ReconcilerConfig{BatchSize: 2, Interval: time.Second})

	report, err := r.Pass(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{Scanned: 3, Repaired: 0}, report)

	require.NoError(t, s.Users().SetKarma(ctx, ann.ID, 40))
	require.NoError(t, s.Users().SetKarma(ctx, cid.ID, -3))

	report, err = r.Pass(ctx)
	require.NoError(t, err)
	assert.Equal(t, Report{Scanned: 3, Repaired: 2}, report)

	tests := []struct {
		user *models.User
		want int
	}{
		{ann, 2},
		{ben, -1},
		{cid, 0},
	}
	for _, tt := range tests {
		got, err := s.Users().GetByID(ctx, tt.user.ID)
		require.NoError(t, err)
		assert.Equal(t, tt.want, got.Karma, tt.user.Username)
	}
}

func TestRunStopsOnCancel(t *testing.T) {
	r := New(memstore.New(), config.ReconcilerConfig{BatchSize: 10, Interval: time.Hour})
	ctx, cancel := context.WithCancel(context.Background())

	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()
	cancel()

	select {
	case err := <-done:
		assert.ErrorIs(t, err, context.Canceled)
	case <-time.After(5 * time.Second):
		t.Fatal("Run did not return after cancel")
	}
}
