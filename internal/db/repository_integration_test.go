//go:build integration

package db

import (
	"context"
	"sync"
	"testing"

	"github.com/google/uuid"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"

	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
	"github.com/agora-social/agora/pkg/config"
)

func setupRepository(t *testing.T) *Repository {
	t.Helper()
	ctx := context.Background()

	ctr, err := postgres.Run(ctx, "postgres:16-alpine",
		postgres.WithDatabase("agora"),
		postgres.WithUsername("agora"),
		postgres.WithPassword("agora"),
		postgres.BasicWaitStrategies(),
	)
	require.NoError(t, err)
	t.Cleanup(func() { _ = testcontainers.TerminateContainer(ctr) })

	dsn, err := ctr.ConnectionString(ctx, "sslmode=disable")
	require.NoError(t, err)

	database, err := New(&config.DatabaseConfig{URL: dsn, Driver: "postgres", AutoMigrate: true}, "ERROR")
	require.NoError(t, err)
	t.Cleanup(func() { _ = database.Close() })

	return NewRepository(database.DB)
}

func TestRepositoryIntegration(t *testing.T) {
	repo := setupRepository(t)
	ctx := context.Background()

	author := &models.User{Username: "author", AuthProvider: "test", ProviderID: "a"}
	require.NoError(t, repo.Users().Create(ctx, author))
	post := &models.Post{AuthorID: author.ID, Title: "hello", Content: "world"}
	require.NoError(t, repo.Posts().Create(ctx, post))

	t.Run("unique vote maps to conflict", func(t *testing.T) {
		voter := uuid.New()
		v := &models.Vote{TargetType: models.TargetPost, TargetID: post.ID, VoterID: voter, Direction: models.DirectionUp}
		require.NoError(t, repo.Votes().Create(ctx, v))
		dup := &models.Vote{TargetType: models.TargetPost, TargetID: post.ID, VoterID: voter, Direction: models.DirectionDown}
		assert.Equal(t, apperr.KindConflict, apperr.KindOf(repo.Votes().Create(ctx, dup)))
	})

	t.Run("transaction rolls back", func(t *testing.T) {
		err := repo.Transaction(ctx, func(tx store.Repository) error {
			require.NoError(t, tx.Users().AddKarma(ctx, author.ID, 10))
			return apperr.Invalid("abort")
		})
		require.Error(t, err)
		got, err := repo.Users().GetByID(ctx, author.ID)
		require.NoError(t, err)
		assert.Equal(t, 0, got.Karma)
	})

	t.Run("concurrent karma increments are not lost", func(t *testing.T) {
		var wg sync.WaitGroup
		for i := 0; i < 20; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				_ = repo.Transaction(ctx, func(tx store.Repository) error {
					if _, err := tx.Posts().GetForUpdate(ctx, post.ID); err != nil {
						return err
					}
					if err := tx.Posts().AddVoteCounts(ctx, post.ID, 1, 0); err != nil {
						return err
					}
					return tx.Users().AddKarma(ctx, author.ID, 1)
				})
			}()
		}
		wg.Wait()

		got, err := repo.Users().GetByID(ctx, author.ID)
		require.NoError(t, err)
		assert.Equal(t, 20, got.Karma)
		p, err := repo.Posts().GetByID(ctx, post.ID)
		require.NoError(t, err)
		assert.Equal(t, 20, p.Upvotes)
	})

	t.Run("deleted comments without live replies are hidden", func(t *testing.T) {
		root := &models.Comment{PostID: post.ID, AuthorID: author.ID, Content: "root"}
		require.NoError(t, repo.Comments().Create(ctx, root))
		reply := &models.Comment{PostID: post.ID, AuthorID: author.ID, ParentID: &root.ID, Content: "reply"}
		require.NoError(t, repo.Comments().Create(ctx, reply))

		reply.IsDeleted = true
		reply.Content = models.DeletedPlaceholder
		require.NoError(t, repo.Comments().Update(ctx, reply))

		replies, err := repo.Comments().ListReplies(ctx, root.ID, 10)
		require.NoError(t, err)
		assert.Empty(t, replies)

		root.IsDeleted = true
		require.NoError(t, repo.Comments().Update(ctx, root))
		top, total, err := repo.Comments().ListTopLevel(ctx, post.ID, store.SortTop, store.PageQuery{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(0), total)
		assert.Empty(t, top)

		// A live reply below the deleted one brings both placeholders back.
		deep := &models.Comment{PostID: post.ID, AuthorID: author.ID, ParentID: &reply.ID, Content: "deep"}
		require.NoError(t, repo.Comments().Create(ctx, deep))

		top, total, err = repo.Comments().ListTopLevel(ctx, post.ID, store.SortTop, store.PageQuery{Limit: 10})
		require.NoError(t, err)
		assert.Equal(t, int64(1), total)
		assert.Len(t, top, 1)

		counts, err := repo.Comments().CountReplies(ctx, []uuid.UUID{root.ID, reply.ID})
		require.NoError(t, err)
		assert.Equal(t, 1, counts[root.ID])
		assert.Equal(t, 1, counts[reply.ID])
	})
}
