package handlers

import (
	"net/http"

	"github.com/anonto42/travelsocial/backend/internal/events"
	"github.com/anonto42/travelsocial/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// InviteRequest defines the request body for inviting a user to a group
type InviteRequest struct {
	InviteeID uint   `json:"invitee_id" validate:"required"`
	GroupName string `json:"group_name" validate:"required,min=1,max=100"`
}

// GroupHandler handles group invitations. Group membership itself lives
// outside this service.
type GroupHandler struct {
	userRepository repositories.UserRepository
	bus            EventPublisher
}

// NewGroupHandler creates a new GroupHandler
func NewGroupHandler(userRepo repositories.UserRepository, bus EventPublisher) *GroupHandler {
	return &GroupHandler{userRepository: userRepo, bus: bus}
}

// RegisterGroupRoutes registers group routes
func (h *GroupHandler) RegisterGroupRoutes(g *echo.Group) {
	g.POST("/groups/:group_id/invitations", h.InviteToGroup)
}

// InviteToGroup notifies the invitee
func (h *GroupHandler) InviteToGroup(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	groupID, err := parseIDParam(c, "group_id", "group")
	if err != nil {
		return err
	}
	var req InviteRequest
	if err := bindAndValidate(c, &req); err != nil {
		return err
	}
	if req.InviteeID == currentUserID {
		return echo.NewHTTPError(http.StatusBadRequest, "Cannot invite yourself")
	}

	ctx := c.Request().Context()
	if _, err := h.userRepository.GetUserByID(ctx, req.InviteeID); err != nil {
		return toHTTPError(err, "User not found")
	}

	h.bus.Publish(ctx, events.New(currentUserID, req.InviteeID, events.GroupInvitationPayload{
		GroupID:   groupID,
		GroupName: req.GroupName,
	}))

	return c.JSON(http.StatusAccepted, echo.Map{"success": true, "data": echo.Map{"group_id": groupID, "invitee_id": req.InviteeID}})
}
