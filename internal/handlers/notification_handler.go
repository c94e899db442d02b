package handlers

import (
	"math"
	"net/http"
	"time"

	"github.com/anonto42/travelsocial/backend/internal/models"
	"github.com/anonto42/travelsocial/backend/internal/repositories"
	"github.com/labstack/echo/v4"
)

// NotificationHandler handles notification-related HTTP requests
type NotificationHandler struct {
	notificationRepository repositories.NotificationRepository
	now                    func() time.Time
}

// NewNotificationHandler creates a new NotificationHandler
func NewNotificationHandler(notifRepo repositories.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{
		notificationRepository: notifRepo,
		now:                    time.Now,
	}
}

// RegisterNotificationRoutes registers notification routes
func (h *NotificationHandler) RegisterNotificationRoutes(g *echo.Group) {
	g.GET("/notifications", h.GetNotifications)
	g.GET("/notifications/grouped", h.GetGroupedNotifications)
	g.GET("/notifications/unread-count", h.GetUnreadCount)
	g.PUT("/notifications/read-all", h.MarkAllAsRead)
	g.GET("/notifications/:id", h.GetNotification)
	g.PUT("/notifications/:id/read", h.MarkAsRead)
	g.DELETE("/notifications/:id", h.DeleteNotification)
}

func parseNotificationFilter(c echo.Context) (models.NotificationFilter, error) {
	var f models.NotificationFilter
	var isRead bool
	err := echo.QueryParamsBinder(c).
		Int("page", &f.Page).
		Int("per_page", &f.PerPage).
		Strings("sort", &f.Sorts).
		Bool("is_read", &isRead).
		BindError()
	if err != nil {
		return f, echo.NewHTTPError(http.StatusBadRequest, "Invalid query parameters")
	}
	if c.QueryParam("is_read") != "" {
		f.IsRead = &isRead
	}
	if kind := c.QueryParam("kind"); kind != "" {
		k := models.NotificationKind(kind)
		f.Kind = &k
	}
	return f, nil
}

// GetNotifications returns a filtered page of the caller's notifications
func (h *NotificationHandler) GetNotifications(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	filter, err := parseNotificationFilter(c)
	if err != nil {
		return err
	}

	page, err := h.notificationRepository.List(c.Request().Context(), currentUserID, filter)
	if err != nil {
		return toHTTPError(err, "Notification not found")
	}

	totalPages := int(math.Ceil(float64(page.Total) / float64(page.PerPage)))
	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": page.Data,
		},
		"meta": echo.Map{
			"currentPage":     page.Page,
			"totalPages":      totalPages,
			"totalItems":      page.Total,
			"itemsPerPage":    page.PerPage,
			"hasNextPage":     page.Page < totalPages,
			"hasPreviousPage": page.Page > 1,
		},
	})
}

// GetGroupedNotifications returns notifications grouped by time period
func (h *NotificationHandler) GetGroupedNotifications(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}

	ctx := c.Request().Context()
	grouped, err := h.notificationRepository.GetGrouped(ctx, currentUserID, h.now())
	if err != nil {
		return toHTTPError(err, "Notification not found")
	}
	unreadCount, err := h.notificationRepository.GetUnreadCount(ctx, currentUserID)
	if err != nil {
		return toHTTPError(err, "Notification not found")
	}

	return c.JSON(http.StatusOK, echo.Map{
		"success": true,
		"data": echo.Map{
			"notifications": grouped,
			"unreadCount":   unreadCount,
		},
	})
}

// GetUnreadCount returns the unread notification count
func (h *NotificationHandler) GetUnreadCount(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}

	count, err := h.notificationRepository.GetUnreadCount(c.Request().Context(), currentUserID)
	if err != nil {
		return toHTTPError(err, "Notification not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"count": count}})
}

// GetNotification returns one of the caller's notifications
func (h *NotificationHandler) GetNotification(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	n, err := h.notificationRepository.GetByID(c.Request().Context(), id, currentUserID)
	if err != nil {
		return toHTTPError(err, "Notification not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": n})
}

// MarkAsRead marks a notification as read
func (h *NotificationHandler) MarkAsRead(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	n, err := h.notificationRepository.MarkAsRead(c.Request().Context(), id, currentUserID)
	if err != nil {
		return toHTTPError(err, "Notification not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": n})
}

// MarkAllAsRead marks all notifications as read
func (h *NotificationHandler) MarkAllAsRead(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}

	updated, err := h.notificationRepository.MarkAllAsRead(c.Request().Context(), currentUserID)
	if err != nil {
		return toHTTPError(err, "Notification not found")
	}
	return c.JSON(http.StatusOK, echo.Map{"success": true, "data": echo.Map{"updated": updated}})
}

// DeleteNotification removes one of the caller's notifications
func (h *NotificationHandler) DeleteNotification(c echo.Context) error {
	currentUserID, err := currentUser(c)
	if err != nil {
		return err
	}
	id, err := parseIDParam(c, "id", "notification")
	if err != nil {
		return err
	}

	if err := h.notificationRepository.Delete(c.Request().Context(), id, currentUserID); err != nil {
		return toHTTPError(err, "Notification not found")
	}
	return c.NoContent(http.StatusNoContent)
}
