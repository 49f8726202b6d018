package posts

import (
	"context"
	"strings"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/karma"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
	"github.com/agora-social/agora/internal/store/memstore"
	"github.com/agora-social/agora/pkg/config"
)

func newService(t *testing.T) (*Service, *memstore.Store, *models.User) {
	t.Helper()
	s := memstore.New()
	author := &models.User{Username: "writer", AuthProvider: "test", ProviderID: "writer"}
	require.NoError(t, s.Users().Create(context.Background(), author))
	cfg := config.CommentsConfig{MaxDepth: 6, DefaultLimit: 20, MaxLimit: 100}
	return NewService(s, karma.NewAccumulator(), cfg), s, author
}

func TestPostLifecycle(t *testing.T) {
	svc, s, author := newService(t)
	ctx := context.Background()

	post, err := svc.Create(ctx, author.ID, " Hello ", "world")
	require.NoError(t, err)
	assert.Equal(t, "Hello", post.Title)

	u, _ := s.Users().GetByID(ctx, author.ID)
	assert.Equal(t, 1, u.Karma)

	edited, err := svc.Edit(ctx, post.ID, "Hello again", "world!")
	require.NoError(t, err)
	assert.True(t, edited.IsEdited)
	assert.NotNil(t, edited.EditedAt)

	require.NoError(t, svc.SoftDelete(ctx, post.ID))
	got, err := svc.Get(ctx, post.ID)
	require.NoError(t, err)
	assert.True(t, got.IsDeleted)
	assert.Equal(t, models.DeletedPlaceholder, got.Content)

	_, err = svc.Edit(ctx, post.ID, "again", "x")
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))

	page, err := svc.List(ctx, store.SortNew, 1, 10)
	require.NoError(t, err)
	assert.Empty(t, page.Items)

	u, _ = s.Users().GetByID(ctx, author.ID)
	assert.Equal(t, 1, u.Karma)
}

func TestCreateValidation(t *testing.T) {
	svc, _, author := newService(t)
	ctx := context.Background()

	_, err := svc.Create(ctx, author.ID, "  ", "body")
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
	_, err = svc.Create(ctx, author.ID, strings.Repeat("t", MaxTitleLength+1), "body")
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
	_, err = svc.Get(ctx, uuid.New())
	assert.Equal(t, apperr.KindNotFound, apperr.KindOf(err))
	_, err = svc.List(ctx, store.Sort("hot"), 1, 10)
	assert.Equal(t, apperr.KindInvalid, apperr.KindOf(err))
}

func TestListTopOrder(t *testing.T) {
	svc, s, author := newService(t)
	ctx := context.Background()

	low, err := svc.Create(ctx, author.ID, "low", "")
	require.NoError(t, err)
	high, err := svc.Create(ctx, author.ID, "high", "")
	require.NoError(t, err)
	require.NoError(t, s.Posts().AddVoteCounts(ctx, low.ID, 0, 1))
	require.NoError(t, s.Posts().AddVoteCounts(ctx, high.ID, 3, 0))

	page, err := svc.List(ctx, store.SortTop, 1, 10)
	require.NoError(t, err)
	require.Len(t, page.Items, 2)
	assert.Equal(t, high.ID, page.Items[0].ID)
	assert.Equal(t, low.ID, page.Items[1].ID)
}
