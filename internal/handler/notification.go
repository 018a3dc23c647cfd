package handler

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"

	"github.com/tunedhq/tuned-core/internal/middleware"
	"github.com/tunedhq/tuned-core/internal/repository"
)

type NotificationHandler struct {
	notifications repository.NotificationRepository
}

func NewNotificationHandler(notifications repository.NotificationRepository) *NotificationHandler {
	return &NotificationHandler{notifications: notifications}
}

func (h *NotificationHandler) List(c echo.Context) error {
	ctx := c.Request().Context()

	unreadOnly := c.QueryParam("unread") == "true"
	alerts, err := h.notifications.ListForUser(ctx, middleware.ClientID(c), unreadOnly)
	if err != nil {
		return err
	}
	return c.JSON(http.StatusOK, alerts)
}

func (h *NotificationHandler) MarkRead(c echo.Context) error {
	ctx := c.Request().Context()

	id, err := strconv.ParseUint(c.Param("id"), 10, 64)
	if err != nil {
		return echo.NewHTTPError(http.StatusBadRequest, "invalid notification id")
	}

	if err := h.notifications.MarkRead(ctx, middleware.ClientID(c), uint(id)); err != nil {
		if errors.Is(err, gorm.ErrRecordNotFound) {
			return echo.NewHTTPError(http.StatusNotFound, "not found")
		}
		return err
	}
	return c.NoContent(http.StatusOK)
}
