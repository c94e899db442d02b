package handlers

import (
	"net/http"
	"strconv"

	"github.com/anonto42/travelsocial/backend/internal/engagement"
	"github.com/anonto42/travelsocial/backend/internal/events"
	"github.com/anonto42/travelsocial/backend/internal/models"
	"github.com/anonto42/travelsocial/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// ReactionHandler handles reactions on posts and comments
type ReactionHandler struct {
	reactions         *engagement.ReactionService
	postRepository    repositories.PostRepository
	commentRepository repositories.CommentRepository
	bus               EventPublisher
}

// NewReactionHandler creates a new ReactionHandler
func NewReactionHandler(reactions *engagement.ReactionService, postRepo repositories.PostRepository, commentRepo repositories.CommentRepository, bus EventPublisher) *ReactionHandler {
	return &ReactionHandler{
		reactions:         reactions,
		postRepository:    postRepo,
		commentRepository: commentRepo,
		bus:               bus,
	}
}

// RegisterReactionRoutes registers reaction routes
func (h *ReactionHandler) RegisterReactionRoutes(g *echo.Group) {
	g.PUT("/posts/:post_id/reactions", h.ReactToPost)
	g.GET("/posts/:post_id/reactions", h.GetPostReactions)
	g.GET("/posts/:post_id/reactions/users", h.GetPostReactors)
	g.PUT("/comments/:id/reactions", h.ReactToComment)
	g.GET("/comments/:id/reactions", h.GetCommentReactions)
	g.GET("/comments/:id/reactions/users", h.GetCommentReactors)
}

// ReactToPost stores the caller's reaction. reaction_id 1 removes it.
func (h *ReactionHandler) ReactToPost(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.ReactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	postID := c.Param("post_id")
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return toHTTPError(err, "Post not found")
	}

	res, err := h.reactions.React(ctx, postID, models.SubjectPost, userID, models.ReactionKind(req.ReactionID))
	if err != nil {
		return toHTTPError(err, "Post not found")
	}

	h.bus.Publish(ctx, events.New(userID, post.UserID, events.PostLikedPayload{
		PostID:   postID,
		PostKind: post.KindOrDefault(),
		Reaction: res.Current,
		Previous: res.Previous,
	}))

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": res})
}

// ReactToComment stores the caller's reaction on a comment or reply.
func (h *ReactionHandler) ReactToComment(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	commentID, err := parseIDParam(c, "id", "comment")
	if err != nil {
		return err
	}
	var req models.ReactRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	comment, err := h.commentRepository.GetCommentByID(ctx, commentID)
	if err != nil {
		return toHTTPError(err, "Comment not found")
	}

	res, err := h.reactions.React(ctx, engagement.CommentSubjectID(commentID), models.SubjectComment, userID, models.ReactionKind(req.ReactionID))
	if err != nil {
		return toHTTPError(err, "Comment not found")
	}

	h.bus.Publish(ctx, events.New(userID, comment.UserID, events.CommentLikedPayload{
		PostID:    comment.SubjectID,
		PostKind:  comment.SubjectType,
		CommentID: comment.ID,
		Reaction:  res.Current,
		Previous:  res.Previous,
	}))

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": res})
}

// GetPostReactions returns per-kind reaction counts for a post
func (h *ReactionHandler) GetPostReactions(c echo.Context) error {
	ctx := c.Request().Context()
	postID := c.Param("post_id")
	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		return toHTTPError(err, "Post not found")
	}

	agg, err := h.reactions.Aggregate(ctx, postID, models.SubjectPost)
	if err != nil {
		return toHTTPError(err, "Post not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": agg})
}

// GetCommentReactions returns per-kind reaction counts for a comment
func (h *ReactionHandler) GetCommentReactions(c echo.Context) error {
	commentID, err := parseIDParam(c, "id", "comment")
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.commentRepository.GetCommentByID(ctx, commentID); err != nil {
		return toHTTPError(err, "Comment not found")
	}

	agg, err := h.reactions.Aggregate(ctx, engagement.CommentSubjectID(commentID), models.SubjectComment)
	if err != nil {
		return toHTTPError(err, "Comment not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": agg})
}

// GetPostReactors lists users reacting to a post, optionally one ?kind= only
func (h *ReactionHandler) GetPostReactors(c echo.Context) error {
	kind, err := reactionKindQuery(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	postID := c.Param("post_id")
	if _, err := h.postRepository.GetPostByID(ctx, postID); err != nil {
		return toHTTPError(err, "Post not found")
	}

	users, err := h.reactions.Reactors(ctx, postID, models.SubjectPost, kind)
	if err != nil {
		return toHTTPError(err, "Post not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": users})
}

// GetCommentReactors lists users reacting to a comment
func (h *ReactionHandler) GetCommentReactors(c echo.Context) error {
	commentID, err := parseIDParam(c, "id", "comment")
	if err != nil {
		return err
	}
	kind, err := reactionKindQuery(c)
	if err != nil {
		return err
	}
	ctx := c.Request().Context()
	if _, err := h.commentRepository.GetCommentByID(ctx, commentID); err != nil {
		return toHTTPError(err, "Comment not found")
	}

	users, err := h.reactions.Reactors(ctx, engagement.CommentSubjectID(commentID), models.SubjectComment, kind)
	if err != nil {
		return toHTTPError(err, "Comment not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": users})
}

func reactionKindQuery(c echo.Context) (*models.ReactionKind, error) {
	raw := c.QueryParam("kind")
	if raw == "" {
		return nil, nil
	}
	n, err := strconv.Atoi(raw)
	if err != nil {
		return nil, echo.NewHTTPError(http.StatusBadRequest, "Invalid reaction kind")
	}
	kind := models.ReactionKind(n)
	return &kind, nil
}
