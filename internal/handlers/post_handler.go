package handlers

import (
	"net/http"

	"github.com/anonto42/travelsocial/backend/internal/events"
	"github.com/anonto42/travelsocial/backend/internal/models"
	"github.com/anonto42/travelsocial/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// PostHandler handles HTTP requests related to posts and mini-blogs
type PostHandler struct {
	postRepository repositories.PostRepository
	bus            EventPublisher
}

// NewPostHandler creates a new PostHandler
func NewPostHandler(postRepo repositories.PostRepository, bus EventPublisher) *PostHandler {
	return &PostHandler{
		postRepository: postRepo,
		bus:            bus,
	}
}

// RegisterPostRoutes registers post routes
func (h *PostHandler) RegisterPostRoutes(g *echo.Group) {
	g.POST("/posts", h.CreatePost)
	g.GET("/posts/:post_id", h.GetPost)
	g.POST("/posts/:post_id/shares", h.SharePost)
}

// CreatePost creates a new post and announces it to the author's followers
func (h *PostHandler) CreatePost(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.CreatePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	post := &models.Post{
		UserID:    userID,
		Kind:      req.Kind,
		Content:   req.Content,
		ImageURLs: req.ImageURLs,
		VideoURLs: req.VideoURLs,
	}
	if err := h.postRepository.CreatePost(ctx, post); err != nil {
		return toHTTPError(err, "Post not found")
	}

	h.bus.Publish(ctx, events.New(userID, userID, events.NewPostPayload{
		PostID:   post.ID.Hex(),
		PostKind: post.KindOrDefault(),
	}))

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": post})
}

// GetPost retrieves a post by ID
func (h *PostHandler) GetPost(c echo.Context) error {
	post, err := h.postRepository.GetPostByID(c.Request().Context(), c.Param("post_id"))
	if err != nil {
		return toHTTPError(err, "Post not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": post})
}

// SharePost records a share and notifies the author
func (h *PostHandler) SharePost(c echo.Context) error {
	userID, err := currentUser(c)
	if err != nil {
		return err
	}
	var req models.SharePostRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}

	ctx := c.Request().Context()
	postID := c.Param("post_id")
	post, err := h.postRepository.GetPostByID(ctx, postID)
	if err != nil {
		return toHTTPError(err, "Post not found")
	}

	if err := h.postRepository.IncrementSharesCount(ctx, postID); err != nil {
		return toHTTPError(err, "Post not found")
	}

	h.bus.Publish(ctx, events.New(userID, post.UserID, events.PostSharedPayload{
		PostID:   postID,
		PostKind: post.KindOrDefault(),
		Platform: req.Platform,
	}))

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"post_id": postID, "shares_count": post.SharesCount + 1}})
}
