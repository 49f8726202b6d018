package objects

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-social/agora/internal/comments"
	"github.com/agora-social/agora/internal/models"
)

type stubUsers map[uuid.UUID]*models.User

func (s stubUsers) GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	out := make(map[uuid.UUID]*models.User)
	for _, id := range ids {
		if u, ok := s[id]; ok {
			out[id] = u
		}
	}
	return out, nil
}

type stubVotes struct {
	calls int
	dirs  map[uuid.UUID]models.Direction
}

func (s *stubVotes) Directions(ctx context.Context, voterID uuid.UUID, tt models.TargetType, ids []uuid.UUID) (map[uuid.UUID]models.Direction, error) {
	s.calls++
	return s.dirs, nil
}

func TestPostsHydration(t *testing.T) {
	ann := &models.User{ID: uuid.New(), Username: "ann", Karma: 7}
	live := &models.Post{ID: uuid.New(), AuthorID: ann.ID, Title: "t", Upvotes: 3, Downvotes: 1}
	gone := &models.Post{ID: uuid.New(), AuthorID: ann.ID, IsDeleted: true, Content: models.DeletedPlaceholder}

	votes := &stubVotes{dirs: map[uuid.UUID]models.Direction{live.ID: models.DirectionUp}}
	l := NewLoader(stubUsers{ann.ID: ann}, votes)

	anon, err := l.Posts(context.Background(), nil, []*models.Post{live, gone})
	require.NoError(t, err)
	assert.Zero(t, votes.calls)
	assert.Equal(t, "ann", anon[0].Author.Username)
	assert.Equal(t, 2, anon[0].Score)
	assert.Empty(t, anon[0].MyVote)
	assert.Nil(t, anon[1].Author)

	viewed, err := l.Posts(context.Background(), ann, []*models.Post{live})
	require.NoError(t, err)
	assert.Equal(t, models.DirectionUp, viewed[0].MyVote)
}

func TestNodesHydration(t *testing.T) {
	ann := &models.User{ID: uuid.New(), Username: "ann"}
	root := &models.Comment{ID: uuid.New(), AuthorID: ann.ID, IsDeleted: true, Content: models.DeletedPlaceholder}
	child := &models.Comment{ID: uuid.New(), AuthorID: ann.ID, ParentID: &root.ID, Content: "reply"}

	votes := &stubVotes{}
	l := NewLoader(stubUsers{ann.ID: ann}, votes)

	tree := []*comments.Node{{
		Comment:    root,
		ReplyCount: 1,
		Replies:    []*comments.Node{{Comment: child, Depth: 1, ReplyCount: 4, Collapsed: true}},
	}}
	out, err := l.Nodes(context.Background(), ann, tree)
	require.NoError(t, err)
	require.Len(t, out, 1)

	assert.Equal(t, 1, votes.calls)
	assert.Nil(t, out[0].Author)
	assert.Equal(t, models.DeletedPlaceholder, out[0].Content)
	require.Len(t, out[0].Replies, 1)

	reply := out[0].Replies[0]
	assert.Equal(t, "ann", reply.Author.Username)
	assert.Equal(t, 1, reply.Depth)
	assert.True(t, reply.Collapsed)
	assert.Equal(t, 4, reply.ReplyCount)
}

func TestMembersKeepsOrder(t *testing.T) {
	a := &models.User{ID: uuid.New(), Username: "a"}
	b := &models.User{ID: uuid.New(), Username: "b"}
	l := NewLoader(stubUsers{a.ID: a, b.ID: b}, &stubVotes{})

	out, err := l.Members(context.Background(), []uuid.UUID{b.ID, uuid.New(), a.ID})
	require.NoError(t, err)
	require.Len(t, out, 2)
	assert.Equal(t, "b", out[0].Username)
	assert.Equal(t, "a", out[1].Username)
}
