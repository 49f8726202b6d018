package content

import (
	"encoding/json"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"

	"github.com/agora-social/agora/internal/api/objects"
	"github.com/agora-social/agora/internal/api/params"
	"github.com/agora-social/agora/internal/apperr"
	"github.com/agora-social/agora/internal/auth"
	"github.com/agora-social/agora/internal/comments"
	"github.com/agora-social/agora/internal/models"
)

// CommentsAPI provides comment methods
type CommentsAPI struct {
	comments *comments.Service
	loader   *objects.Loader
}

// NewCommentsAPI creates a new comments API
func NewCommentsAPI(svc *comments.Service, loader *objects.Loader) *CommentsAPI {
	return &CommentsAPI{comments: svc, loader: loader}
}

type createCommentParams struct {
	PostID   uuid.UUID  `json:"post_id"`
	ParentID *uuid.UUID `json:"parent_id"`
	Content  string     `json:"content"`
}

type editCommentParams struct {
	ID      uuid.UUID `json:"id"`
	Content string    `json:"content"`
}

type commentIDParams struct {
	ID uuid.UUID `json:"id"`
}

type listCommentsParams struct {
	PostID uuid.UUID `json:"post_id"`
	Sort   string    `json:"sort"`
	Page   int       `json:"page"`
	Limit  int       `json:"limit"`
}

type repliesParams struct {
	CommentID uuid.UUID `json:"comment_id"`
	Limit     int       `json:"limit"`
}

type expandParams struct {
	CommentID uuid.UUID `json:"comment_id"`
}

// Create handles comments.create
func (a *CommentsAPI) Create(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	user, err := auth.RequireUser(c)
	if err != nil {
		return nil, err
	}
	var p createCommentParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}
	if err := params.RequireID("post_id", p.PostID); err != nil {
		return nil, err
	}

	comment, err := a.comments.Create(c.Request.Context(), comments.CreateInput{
		PostID:   p.PostID,
		AuthorID: user.ID,
		Content:  p.Content,
		ParentID: p.ParentID,
	})
	if err != nil {
		return nil, err
	}
	return a.loader.Comment(c.Request.Context(), user, comment)
}

// Edit handles comments.edit
func (a *CommentsAPI) Edit(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	user, err := auth.RequireUser(c)
	if err != nil {
		return nil, err
	}
	var p editCommentParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}
	if err := a.authorize(c, user, p.ID); err != nil {
		return nil, err
	}

	comment, err := a.comments.Edit(c.Request.Context(), p.ID, p.Content)
	if err != nil {
		return nil, err
	}
	return a.loader.Comment(c.Request.Context(), user, comment)
}

// Delete handles comments.delete
func (a *CommentsAPI) Delete(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	user, err := auth.RequireUser(c)
	if err != nil {
		return nil, err
	}
	var p commentIDParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}
	if err := a.authorize(c, user, p.ID); err != nil {
		return nil, err
	}

	if err := a.comments.SoftDelete(c.Request.Context(), p.ID); err != nil {
		return nil, err
	}
	return gin.H{"deleted": true}, nil
}

// List handles comments.list: one page of a post's top-level comments
func (a *CommentsAPI) List(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	var p listCommentsParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}
	if err := params.RequireID("post_id", p.PostID); err != nil {
		return nil, err
	}
	sort, err := parseSort(p.Sort)
	if err != nil {
		return nil, err
	}

	page, err := a.comments.GetTopLevelComments(c.Request.Context(), p.PostID, sort, p.Page, p.Limit)
	if err != nil {
		return nil, err
	}
	viewer, _ := auth.CurrentUser(c)
	items, err := a.loader.Comments(c.Request.Context(), viewer, page.Items)
	if err != nil {
		return nil, err
	}
	return objects.MapPage(page, items), nil
}

// Replies handles comments.replies
func (a *CommentsAPI) Replies(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	var p repliesParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}
	if err := params.RequireID("comment_id", p.CommentID); err != nil {
		return nil, err
	}

	replies, err := a.comments.GetReplies(c.Request.Context(), p.CommentID, p.Limit)
	if err != nil {
		return nil, err
	}
	viewer, _ := auth.CurrentUser(c)
	return a.loader.Comments(c.Request.Context(), viewer, replies)
}

// Thread handles comments.thread: a page of top-level comments with their
// replies expanded to the configured depth
func (a *CommentsAPI) Thread(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	var p listCommentsParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}
	if err := params.RequireID("post_id", p.PostID); err != nil {
		return nil, err
	}
	sort, err := parseSort(p.Sort)
	if err != nil {
		return nil, err
	}

	thread, err := a.comments.Thread(c.Request.Context(), p.PostID, sort, p.Page, p.Limit)
	if err != nil {
		return nil, err
	}
	viewer, _ := auth.CurrentUser(c)
	nodes, err := a.loader.Nodes(c.Request.Context(), viewer, thread.Comments)
	if err != nil {
		return nil, err
	}
	return gin.H{
		"post_id":  thread.PostID,
		"sort":     thread.Sort,
		"page":     thread.Page,
		"limit":    thread.Limit,
		"total":    thread.Total,
		"has_more": thread.HasMore,
		"comments": nodes,
	}, nil
}

// Expand handles comments.expand: the subtree under a collapsed comment
func (a *CommentsAPI) Expand(c *gin.Context, raw json.RawMessage) (interface{}, error) {
	var p expandParams
	if err := params.Bind(raw, &p); err != nil {
		return nil, err
	}
	if err := params.RequireID("comment_id", p.CommentID); err != nil {
		return nil, err
	}

	node, err := a.comments.Expand(c.Request.Context(), p.CommentID)
	if err != nil {
		return nil, err
	}
	viewer, _ := auth.CurrentUser(c)
	nodes, err := a.loader.Nodes(c.Request.Context(), viewer, []*comments.Node{node})
	if err != nil {
		return nil, err
	}
	return nodes[0], nil
}

func (a *CommentsAPI) authorize(c *gin.Context, user *models.User, id uuid.UUID) error {
	if err := params.RequireID("id", id); err != nil {
		return err
	}
	comment, err := a.comments.Get(c.Request.Context(), id)
	if err != nil {
		return err
	}
	if !auth.CanModify(user, comment.AuthorID) {
		return apperr.Forbidden("only the author can change this comment")
	}
	return nil
}
