package objects

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/comments"
	"github.com/agora-social/agora/internal/models"
	"github.com/agora-social/agora/internal/store"
)

// UserSource batch-loads members
type UserSource interface {
	GetMany(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error)
}

// VoteSource batch-loads a viewer's votes
type VoteSource interface {
	Directions(ctx context.Context, voterID uuid.UUID, targetType models.TargetType, ids []uuid.UUID) (map[uuid.UUID]models.Direction, error)
}

// Loader hydrates rows with their authors and the viewer's vote state in
// one query per kind.
type Loader struct {
	users UserSource
	votes VoteSource
}

// NewLoader creates a loader
func NewLoader(users UserSource, votes VoteSource) *Loader {
	return &Loader{users: users, votes: votes}
}

func (l *Loader) authors(ctx context.Context, ids []uuid.UUID) (map[uuid.UUID]*models.User, error) {
	if len(ids) == 0 {
		return map[uuid.UUID]*models.User{}, nil
	}
	m, err := l.users.GetMany(ctx, uniqueIDs(ids))
	if err != nil {
		return nil, fmt.Errorf("failed to load authors: %w", err)
	}
	return m, nil
}

func (l *Loader) myVotes(ctx context.Context, viewer *models.User, tt models.TargetType, ids []uuid.UUID) (map[uuid.UUID]models.Direction, error) {
	if viewer == nil || len(ids) == 0 {
		return map[uuid.UUID]models.Direction{}, nil
	}
	m, err := l.votes.Directions(ctx, viewer.ID, tt, ids)
	if err != nil {
		return nil, fmt.Errorf("failed to load votes: %w", err)
	}
	return m, nil
}

// Post renders a single post
func (l *Loader) Post(ctx context.Context, viewer *models.User, p *models.Post) (*Post, error) {
	out, err := l.Posts(ctx, viewer, []*models.Post{p})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// Posts renders posts. Authors of deleted posts are not disclosed.
func (l *Loader) Posts(ctx context.Context, viewer *models.User, posts []*models.Post) ([]*Post, error) {
	ids := make([]uuid.UUID, len(posts))
	authorIDs := make([]uuid.UUID, 0, len(posts))
	for i, p := range posts {
		ids[i] = p.ID
		if !p.IsDeleted {
			authorIDs = append(authorIDs, p.AuthorID)
		}
	}

	authors, err := l.authors(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	votes, err := l.myVotes(ctx, viewer, models.TargetPost, ids)
	if err != nil {
		return nil, err
	}

	out := make([]*Post, len(posts))
	for i, p := range posts {
		v := newPost(p)
		if !p.IsDeleted {
			v.Author = NewAuthor(authors[p.AuthorID])
		}
		v.MyVote = votes[p.ID]
		out[i] = v
	}
	return out, nil
}

// Comment renders a single comment
func (l *Loader) Comment(ctx context.Context, viewer *models.User, c *models.Comment) (*Comment, error) {
	out, err := l.Comments(ctx, viewer, []*models.Comment{c})
	if err != nil {
		return nil, err
	}
	return out[0], nil
}

// Comments renders a flat list of comments
func (l *Loader) Comments(ctx context.Context, viewer *models.User, list []*models.Comment) ([]*Comment, error) {
	render, err := l.commentRenderer(ctx, viewer, list)
	if err != nil {
		return nil, err
	}
	out := make([]*Comment, len(list))
	for i, c := range list {
		out[i] = render(c)
	}
	return out, nil
}

// Nodes renders comment trees, hydrating every node in the forest at once
func (l *Loader) Nodes(ctx context.Context, viewer *models.User, roots []*comments.Node) ([]*Comment, error) {
	var all []*models.Comment
	for _, r := range roots {
		r.Walk(func(n *comments.Node) { all = append(all, n.Comment) })
	}
	render, err := l.commentRenderer(ctx, viewer, all)
	if err != nil {
		return nil, err
	}

	var build func(n *comments.Node) *Comment
	build = func(n *comments.Node) *Comment {
		v := render(n.Comment)
		v.Depth = n.Depth
		v.ReplyCount = n.ReplyCount
		v.Collapsed = n.Collapsed
		v.HasMoreReplies = n.HasMoreReplies
		for _, r := range n.Replies {
			v.Replies = append(v.Replies, build(r))
		}
		return v
	}

	out := make([]*Comment, len(roots))
	for i, r := range roots {
		out[i] = build(r)
	}
	return out, nil
}

// commentRenderer loads what list needs and returns a function rendering
// one of its comments. Deleted comments keep their placeholder content and
// lose their author.
func (l *Loader) commentRenderer(ctx context.Context, viewer *models.User, list []*models.Comment) (func(*models.Comment) *Comment, error) {
	ids := make([]uuid.UUID, len(list))
	authorIDs := make([]uuid.UUID, 0, len(list))
	for i, c := range list {
		ids[i] = c.ID
		if !c.IsDeleted {
			authorIDs = append(authorIDs, c.AuthorID)
		}
	}

	authors, err := l.authors(ctx, authorIDs)
	if err != nil {
		return nil, err
	}
	votes, err := l.myVotes(ctx, viewer, models.TargetComment, ids)
	if err != nil {
		return nil, err
	}

	return func(c *models.Comment) *Comment {
		v := newComment(c)
		if c.IsDeleted {
			v.Content = models.DeletedPlaceholder
		} else {
			v.Author = NewAuthor(authors[c.AuthorID])
		}
		v.MyVote = votes[c.ID]
		return v
	}, nil
}

// Notifications renders notifications with their actors
func (l *Loader) Notifications(ctx context.Context, items []*models.Notification) ([]*Notification, error) {
	actorIDs := make([]uuid.UUID, len(items))
	for i, n := range items {
		actorIDs[i] = n.ActorID
	}
	actors, err := l.authors(ctx, actorIDs)
	if err != nil {
		return nil, err
	}

	out := make([]*Notification, len(items))
	for i, n := range items {
		out[i] = &Notification{
			ID:        n.ID,
			Type:      models.NotifyTypeName[n.Type],
			Actor:     NewAuthor(actors[n.ActorID]),
			PostID:    n.PostID,
			CommentID: n.CommentID,
			IsRead:    n.IsRead,
			CreatedAt: n.CreatedAt,
		}
	}
	return out, nil
}

// Members renders one side of a follow page as author summaries, keeping
// the order of the page.
func (l *Loader) Members(ctx context.Context, ids []uuid.UUID) ([]*Author, error) {
	users, err := l.authors(ctx, ids)
	if err != nil {
		return nil, err
	}
	out := make([]*Author, 0, len(ids))
	for _, id := range ids {
		if u := users[id]; u != nil {
			out = append(out, NewAuthor(u))
		}
	}
	return out, nil
}

// MapPage converts a page of rows into a page of views
func MapPage[T, V any](p *store.Page[T], items []*V) *store.Page[V] {
	if items == nil {
		items = []*V{}
	}
	return &store.Page[V]{
		Items:   items,
		Page:    p.Page,
		Limit:   p.Limit,
		Total:   p.Total,
		HasMore: p.HasMore,
	}
}

func uniqueIDs(ids []uuid.UUID) []uuid.UUID {
	seen := make(map[uuid.UUID]struct{}, len(ids))
	out := make([]uuid.UUID, 0, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		out = append(out, id)
	}
	return out
}
