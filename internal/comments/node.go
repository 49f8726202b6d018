package comments

import "github.com/agora-social/agora/internal/models"

// Node is a comment positioned in a rendered tree. Depth 0 is the root of
// the rendering, not necessarily a top-level comment.
type Node struct {
	Comment        *models.Comment
	Depth          int
	ReplyCount     int
	Collapsed      bool
	HasMoreReplies bool
	Replies        []*Node
}

// Walk visits n and its expanded descendants depth first.
func (n *Node) Walk(fn func(*Node)) {
	fn(n)
	for _, r := range n.Replies {
		r.Walk(fn)
	}
}
