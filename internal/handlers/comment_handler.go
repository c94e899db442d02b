package handlers

import (
	"log/slog"
	"net/http"

	"github.com/anonto42/travelsocial/backend/internal/engagement"
	"github.com/anonto42/travelsocial/backend/internal/events"
	"github.com/anonto42/travelsocial/backend/internal/models"
	"github.com/anonto42/travelsocial/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// CommentHandler handles HTTP requests related to comments
type CommentHandler struct {
	commentRepository repositories.CommentRepository
	postRepository    repositories.PostRepository
	tree              *engagement.TreeBuilder
	bus               EventPublisher
	logger            *slog.Logger
}

// NewCommentHandler creates a new CommentHandler
func NewCommentHandler(commentRepo repositories.CommentRepository, postRepo repositories.PostRepository, tree *engagement.TreeBuilder, bus EventPublisher, logger *slog.Logger) *CommentHandler {
	return &CommentHandler{
		commentRepository: commentRepo,
		postRepository:    postRepo,
		tree:              tree,
		bus:               bus,
		logger:            logger.With("component", "handlers.CommentHandler"),
	}
}

// RegisterCommentRoutes registers comment-related routes
func (h *CommentHandler) RegisterCommentRoutes(g *echo.Group) {
	g.POST("/posts/:post_id/comments", h.CreateComment)
	g.GET("/posts/:post_id/comments", h.GetCommentsForPost)
	g.GET("/comments/:id", h.GetComment)
}

// CreateComment adds a comment to a post, or a reply when parent_id is set
func (h *CommentHandler) CreateComment(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreateCommentRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	postID := c.Param("post_id")
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return toHTTPError(err, "Post not found")
	}

	var parent *models.Comment
	if req.ParentID != nil {
		parent, err = h.commentRepository.GetCommentByID(ctx, *req.ParentID)
		if err != nil {
			return toHTTPError(err, "Parent comment not found")
		}
		if parent.SubjectID != postID {
			return echo.NewHTTPError(http.StatusBadRequest, "Parent comment belongs to another post")
		}
		if parent.ParentID != nil {
			return echo.NewHTTPError(http.StatusBadRequest, "Replies can only be made to top-level comments")
		}
	}

	comment := &models.Comment{
		SubjectID:   postID,
		SubjectType: post.KindOrDefault(),
		ParentID:    req.ParentID,
		UserID:      userID,
		Content:     req.Content,
	}
	if err := h.commentRepository.CreateComment(ctx, comment); err != nil {
		return toHTTPError(err, "Post not found")
	}

	if err := h.postRepository.IncrementCommentsCount(ctx, postID); err != nil {
		h.logger.Warn("Failed to increment comments count", "post_id", postID, "error", err)
	}

	if parent != nil {
		h.bus.Publish(ctx, events.New(userID, parent.UserID, events.CommentRepliedPayload{
			PostID:    postID,
			PostKind:  comment.SubjectType,
			CommentID: parent.ID,
			ReplyID:   comment.ID,
		}))
	} else {
		h.bus.Publish(ctx, events.New(userID, post.UserID, events.PostCommentedPayload{
			PostID:    postID,
			PostKind:  comment.SubjectType,
			CommentID: comment.ID,
		}))
	}

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": comment})
}

// GetCommentsForPost returns the comment tree of a post
func (h *CommentHandler) GetCommentsForPost(c echo.Context) error {
	ctx := c.Request().Context()
	postID := c.Param("post_id")
	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		return toHTTPError(err, "Post not found")
	}

	tree, err := h.tree.Build(ctx, postID)
	if err != nil {
		return toHTTPError(err, "Post not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": tree})
}

// GetComment retrieves a single comment by ID
func (h *CommentHandler) GetComment(c echo.Context) error {
	id, err := parseIDParam(c, "id", "comment")
	if err != nil {
		return err
	}

	node, err := h.tree.GetComment(c.Request().Context(), id)
	if err != nil {
		return toHTTPError(err, "Comment not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": node})
}
