package handlers

import (
	"net/http"

	"github.com/anonto42/travelsocial/backend/internal/events"
	"github.com/anonto42/travelsocial/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// FollowHandler handles follow/unfollow HTTP requests
type FollowHandler struct {
	followRepository repositories.FollowRepository
	userRepository   repositories.UserRepository
	bus              EventPublisher
}

// NewFollowHandler creates a new FollowHandler
func NewFollowHandler(followRepo repositories.FollowRepository, userRepo repositories.UserRepository, bus EventPublisher) *FollowHandler {
	return &FollowHandler{
		followRepository: followRepo,
		userRepository:   userRepo,
		bus:              bus,
	}
}

// RegisterFollowRoutes registers follow-related routes
func (h *FollowHandler) RegisterFollowRoutes(g *echo.Group) {
	g.POST("/users/:id/follow", h.FollowUser)
	g.DELETE("/users/:id/follow", h.UnfollowUser)
}

// FollowUser follows a user
func (h *FollowHandler) FollowUser(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	targetID, err := parseIDParam(c, "id", "user")
	if err != nil {
		return err
	}
	if currentUserID == targetID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot follow yourself")
	}

	ctx := c.Request().Context()
	if _, err := h.userRepository.GetUserByID(ctx, targetID); err != nil {
		return toHTTPError(err, "User not found")
	}

	created, err := h.followRepository.CreateFollow(ctx, currentUserID, targetID)
	if err != nil {
		return toHTTPError(err, "User not found")
	}
	if !created {
		return echo.NewHTTPError(http.StatusConflict, "Already following this user")
	}

	h.bus.Publish(ctx, events.New(currentUserID, targetID, events.NewFollowerPayload{}))

	return c.JSON(http.StatusCreated, echo.Map{"success": true, "data": echo.Map{"following_id": targetID}})
}

// UnfollowUser unfollows a user
func (h *FollowHandler) UnfollowUser(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	targetID, err := parseIDParam(c, "id", "user")
	if err != nil {
		return err
	}

	if err := h.followRepository.DeleteFollow(c.Request().Context(), currentUserID, targetID); err != nil {
		return toHTTPError(err, "Not following this user")
	}
	return c.NoContent(http.StatusNoContent)
}
