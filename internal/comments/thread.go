package comments

import (
	"context"
	"fmt"

	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/store"
)

// Thread is a page of top-level comments with their replies expanded.
type Thread struct {
	PostID   uuid.UUID  `json:"post_id"`
	Sort     store.Sort `json:"sort"`
	Page     int        `json:"page"`
	Limit    int        `json:"limit"`
	Total    int64      `json:"total"`
	HasMore  bool       `json:"has_more"`
	Comments []*Node    `json:"comments"`
}

// Thread renders a page of a post's discussion. Replies are expanded level
// by level until the configured depth; deeper nodes come back collapsed
// with only their reply count.
func (s *Service) Thread(ctx context.Context, postID uuid.UUID, sort store.Sort, page, limit int) (*Thread, error) {
	top, err := s.GetTopLevelComments(ctx, postID, sort, page, limit)
	if err != nil {
		return nil, err
	}

	roots := make([]*Node, len(top.Items))
	for i, c := range top.Items {
		roots[i] = &Node{Comment: c}
	}
	if err := s.expand(ctx, roots); err != nil {
		return nil, err
	}

	return &Thread{
		PostID:   postID,
		Sort:     sort,
		Page:     top.Page,
		Limit:    top.Limit,
		Total:    top.Total,
		HasMore:  top.HasMore,
		Comments: roots,
	}, nil
}

// Expand renders the subtree under one comment, typically a node that a
// previous Thread call returned collapsed. Depth restarts at the comment.
func (s *Service) Expand(ctx context.Context, commentID uuid.UUID) (*Node, error) {
	c, err := s.Get(ctx, commentID)
	if err != nil {
		return nil, err
	}
	root := &Node{Comment: c}
	if err := s.expand(ctx, []*Node{root}); err != nil {
		return nil, err
	}
	return root, nil
}

// expand walks breadth first so each level costs one count query plus one
// replies query per node with children.
func (s *Service) expand(ctx context.Context, level []*Node) error {
	replyLimit := s.cfg.DefaultLimit

	for len(level) > 0 {
		ids := make([]uuid.UUID, len(level))
		for i, n := range level {
			ids[i] = n.Comment.ID
		}
		counts, err := s.store.Comments().CountReplies(ctx, ids)
		if err != nil {
			return fmt.Errorf("failed to count replies: %w", err)
		}

		var next []*Node
		for _, n := range level {
			n.ReplyCount = counts[n.Comment.ID]
			if n.ReplyCount == 0 {
				continue
			}
			if n.Depth+1 >= s.cfg.MaxDepth {
				n.Collapsed = true
				continue
			}

			replies, err := s.store.Comments().ListReplies(ctx, n.Comment.ID, replyLimit)
			if err != nil {
				return fmt.Errorf("failed to list replies: %w", err)
			}
			for _, r := range replies {
				child := &Node{Comment: r, Depth: n.Depth + 1}
				n.Replies = append(n.Replies, child)
				next = append(next, child)
			}
			n.HasMoreReplies = n.ReplyCount > len(replies)
		}
		level = next
	}
	return nil
}
