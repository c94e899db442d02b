package handlers

import (
	"net/http"

	"github.com/anonto42/travelsocial/backend/internal/models"
	"github.com/anonto42/travelsocial/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// UserHandler handles HTTP requests related to users
type UserHandler struct {
	userRepository   repositories.UserRepository
	followRepository repositories.FollowRepository
}

// NewUserHandler creates a new UserHandler
func NewUserHandler(userRepo repositories.UserRepository, followRepo repositories.FollowRepository) *UserHandler {
	return &UserHandler{userRepository: userRepo, followRepository: followRepo}
}

// RegisterProfileRoutes registers user profile-related routes
func (h *UserHandler) RegisterProfileRoutes(g *echo.Group) {
	g.GET("/profile", h.GetProfile)
	g.GET("/users/:id", h.GetUser)
}

// UserProfile is a user with follow information
type UserProfile struct {
	models.UserCompact
	FollowersCount int64 `json:"followers_count"`
	IsFollowing    bool  `json:"is_following"`
}

func (h *UserHandler) GetUser(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	return h.profile(c, id, currentUserID)
}

// GetProfile retrieves the authenticated user's profile
func (h *UserHandler) GetProfile(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	return h.profile(c, currentUserID, currentUserID)
}

func (h *UserHandler) profile(c echo.Context, id, viewerID uint) error {
	ctx := c.Request().Context()
	user, err := h.userRepository.GetUserByID(ctx, id)
	if err != nil {
		return toHTTPError(err, "User profile not found")
	}

	followers, err := h.followRepository.GetFollowersCount(ctx, id)
	if err != nil {
		return toHTTPError(err, "User profile not found")
	}
	following := false
	if viewerID != id {
		if following, err = h.followRepository.IsFollowing(ctx, viewerID, id); err != nil {
			return toHTTPError(err, "User profile not found")
		}
	}

	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": UserProfile{
		UserCompact:    user.ToCompact(),
		FollowersCount: followers,
		IsFollowing:    following,
	}})
}
