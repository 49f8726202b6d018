package voting

import (
	"context"
	"math/rand"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/karma"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store/memstore"
)

type fixture struct {
	store  *memstore.Store
	svc    *Service
	author *models.User
	post   *models.Post
}

func newFixture(t *testing.T, allowSelfVote bool) *fixture {
	t.Helper()
	ctx := context.Background()
	s := memstore.New()

	author := &models.User{Username: "author", AuthProvider: "test", ProviderID: "author"}
	require.NoError(t, s.Users().Create(ctx, author))
	post := &models.Post{AuthorID: author.ID, Title: "P", Content: "body"}
	require.NoError(t, s.Posts().Create(ctx, post))

	return &fixture{
		store:  s,
		svc:    NewService(s, karma.NewAccumulator(), allowSelfVote, nil),
		author: author,
		post:   post,
	}
}

func (f *fixture) karma(t *testing.T) int {
	t.Helper()
	u, err := f.store.Users().GetByID(context.Background(), f.author.ID)
	require.NoError(t, err)
	return u.Karma
}

func TestTransition(t *testing.T) {
	tests := []struct {
		prev, cast, want models.Direction
	}{
		{models.DirectionNone, models.DirectionUp, models.DirectionUp},
		{models.DirectionNone, models.DirectionDown, models.DirectionDown},
		{models.DirectionUp, models.DirectionUp, models.DirectionNone},
		{models.DirectionDown, models.DirectionDown, models.DirectionNone},
		{models.DirectionUp, models.DirectionDown, models.DirectionDown},
		{models.DirectionDown, models.DirectionUp, models.DirectionUp},
	}
	for _, tt := range tests {
		if got := Transition(tt.prev, tt.cast); got != tt.want {
			t.Errorf("Transition(%q, %q) = %q, want %q", tt.prev, tt.cast, got, tt.want)
		}
	}
}

func TestApplyVoteScenario(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	a, b := uuid.New(), uuid.New()

	steps := []struct {
		voter     uuid.UUID
		direction models.Direction
		score     int
		upvoted   bool
		downvoted bool
	}{
		{a, models.DirectionUp, 1, true, false},
		{b, models.DirectionDown, 0, false, true},
		{a, models.DirectionDown, -2, false, true},
		{a, models.DirectionDown, -1, false, false},
	}

	for i, step := range steps {
		res, err := f.svc.ApplyVote(ctx, models.TargetPost, f.post.ID, step.voter, step.direction)
		require.NoError(t, err, "step %d", i)
		assert.Equal(t, step.score, res.VoteScore, "step %d score", i)
		assert.Equal(t, step.upvoted, res.Upvoted, "step %d upvoted", i)
		assert.Equal(t, step.downvoted, res.Downvoted, "step %d downvoted", i)
		assert.Equal(t, step.score, f.karma(t), "step %d karma", i)
	}
}

func TestDoubleToggleRestoresScore(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	voter := uuid.New()

	first, err := f.svc.ApplyVote(ctx, models.TargetPost, f.post.ID, voter, models.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, 1, first.VoteScore)

	second, err := f.svc.ApplyVote(ctx, models.TargetPost, f.post.ID, voter, models.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, 0, second.VoteScore)
	assert.False(t, second.Upvoted)
	assert.False(t, second.Downvoted)
	assert.Equal(t, -1, second.KarmaDelta)

	v, err := f.store.Votes().Get(ctx, models.TargetPost, f.post.ID, voter)
	require.NoError(t, err)
	assert.Nil(t, v)
}

func TestSwitchDownToUpIsPlusTwo(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	voter := uuid.New()

	down, err := f.svc.ApplyVote(ctx, models.TargetPost, f.post.ID, voter, models.DirectionDown)
	require.NoError(t, err)
	up, err := f.svc.ApplyVote(ctx, models.TargetPost, f.post.ID, voter, models.DirectionUp)
	require.NoError(t, err)

	assert.Equal(t, 2, up.VoteScore-down.VoteScore)
	assert.Equal(t, 2, up.KarmaDelta)
}

func TestRandomSequencesKeepInvariants(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	rng := rand.New(rand.NewSource(42))

	comment := &models.Comment{PostID: f.post.ID, AuthorID: f.author.ID, Content: "c"}
	require.NoError(t, f.store.Comments().Create(ctx, comment))

	voters := make([]uuid.UUID, 6)
	for i := range voters {
		voters[i] = uuid.New()
	}
	targets := []struct {
		typ models.TargetType
		id  uuid.UUID
	}{
		{models.TargetPost, f.post.ID},
		{models.TargetComment, comment.ID},
	}

	for i := 0; i < 300; i++ {
		tgt := targets[rng.Intn(len(targets))]
		voter := voters[rng.Intn(len(voters))]
		dir := models.DirectionUp
		if rng.Intn(2) == 0 {
			dir = models.DirectionDown
		}

		res, err := f.svc.ApplyVote(ctx, tgt.typ, tgt.id, voter, dir)
		require.NoError(t, err)
		require.False(t, res.Upvoted && res.Downvoted, "voter in both sets at step %d", i)

		dirs, err := f.store.Votes().Directions(ctx, voter, tgt.typ, []uuid.UUID{tgt.id})
		require.NoError(t, err)
		switch {
		case res.Upvoted:
			require.Equal(t, models.DirectionUp, dirs[tgt.id])
		case res.Downvoted:
			require.Equal(t, models.DirectionDown, dirs[tgt.id])
		default:
			require.NotContains(t, dirs, tgt.id)
		}
	}

	p, err := f.store.Posts().GetByID(ctx, f.post.ID)
	require.NoError(t, err)
	c, err := f.store.Comments().GetByID(ctx, comment.ID)
	require.NoError(t, err)

	up, down := 0, 0
	for _, voter := range voters {
		dirs, err := f.store.Votes().Directions(ctx, voter, models.TargetPost, []uuid.UUID{f.post.ID})
		require.NoError(t, err)
		switch dirs[f.post.ID] {
		case models.DirectionUp:
			up++
		case models.DirectionDown:
			down++
		}
	}
	assert.Equal(t, up, p.Upvotes)
	assert.Equal(t, down, p.Downvotes)
	assert.Equal(t, p.Score()+c.Score(), f.karma(t))
}

func TestApplyVoteErrors(t *testing.T) {
	f := newFixture(t, false)
	ctx := context.Background()

	_, err := f.svc.ApplyVote(ctx, models.TargetPost, uuid.New(), uuid.New(), models.DirectionUp)
	assert.True(t, apperr.KindOf(err) == apperr.KindNotFound)

	_, err = f.svc.ApplyVote(ctx, models.TargetPost, f.post.ID, uuid.New(), models.Direction("sideways"))
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	_, err = f.svc.ApplyVote(ctx, models.TargetType("user"), f.post.ID, uuid.New(), models.DirectionUp)
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))

	_, err = f.svc.ApplyVote(ctx, models.TargetPost, f.post.ID, f.author.ID, models.DirectionUp)
	assert.Equal(t, apperr.KindForbidden, apperr.KindOf(err))

	deleted := *f.post
	deleted.IsDeleted = true
	require.NoError(t, f.store.Posts().Update(ctx, &deleted))
	_, err = f.svc.ApplyVote(ctx, models.TargetPost, f.post.ID, uuid.New(), models.DirectionUp)
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	assert.Equal(t, 0, f.karma(t))
}

func TestSelfVoteAllowedByDefault(t *testing.T) {
	f := newFixture(t, true)
	res, err := f.svc.ApplyVote(context.Background(), models.TargetPost, f.post.ID, f.author.ID, models.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, 1, res.VoteScore)
}

type recordingListener struct {
	calls []uuid.UUID
}

func (r *recordingListener) VoteChanged(ctx context.Context, targetType models.TargetType, targetID, postID uuid.UUID) {
	r.calls = append(r.calls, postID)
}

func TestListenerReceivesPostID(t *testing.T) {
	f := newFixture(t, true)
	ctx := context.Background()
	l := &recordingListener{}
	f.svc.listener = l

	comment := &models.Comment{PostID: f.post.ID, AuthorID: f.author.ID, Content: "c"}
	require.NoError(t, f.store.Comments().Create(ctx, comment))

	_, err := f.svc.ApplyVote(ctx, models.TargetComment, comment.ID, uuid.New(), models.DirectionUp)
	require.NoError(t, err)
	assert.Equal(t, []uuid.UUID{f.post.ID}, l.calls)
}
